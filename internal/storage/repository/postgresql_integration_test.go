package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/hotspot-billing/internal/models"
)

func TestStorage_CreateUser(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	ctx := context.Background()
	expiry := time.Now().Add(24 * time.Hour)

	got, err := storage.CreateUser(ctx, models.User{
		Username:     "alice",
		PasswordHash: "hashedpassword",
		PlanID:       "daily_1000",
		Expiry:       expiry,
		IsActive:     true,
	})
	require.NoError(t, err)
	assert.NotZero(t, got.ID)
	assert.False(t, got.CreatedAt.IsZero())

	verification := NewTestVerification(storage)
	verification.VerifyUserExists(t, got.ID)

	// Повторное имя отклоняется.
	_, err = storage.CreateUser(ctx, models.User{
		Username:     "alice",
		PasswordHash: "otherhash",
		PlanID:       "daily_1000",
		Expiry:       expiry,
		IsActive:     true,
	})
	assert.ErrorIs(t, err, ErrUsernameTaken)
}

func TestStorage_GetUser(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	factory := NewTestDataFactory(storage)
	id := factory.CreateUser(t, "alice", "daily_1000", time.Now().Add(24*time.Hour), true)

	got, err := storage.GetUser(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Username)
	assert.Equal(t, "daily_1000", got.PlanID)
	assert.True(t, got.IsActive)

	_, err = storage.GetUser(context.Background(), 9999)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestStorage_SetActive(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	factory := NewTestDataFactory(storage)
	id := factory.CreateUser(t, "alice", "daily_1000", time.Now().Add(24*time.Hour), true)

	require.NoError(t, storage.SetActive(context.Background(), id, false))

	got, err := storage.GetUser(context.Background(), id)
	require.NoError(t, err)
	assert.False(t, got.IsActive)

	// Повторная установка того же значения не ошибка.
	require.NoError(t, storage.SetActive(context.Background(), id, false))

	assert.ErrorIs(t, storage.SetActive(context.Background(), 9999, true), ErrUserNotFound)
}

func TestStorage_Extend(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	factory := NewTestDataFactory(storage)

	t.Run("extension before expiry keeps remaining time", func(t *testing.T) {
		future := time.Now().Add(10 * time.Hour)
		id := factory.CreateUser(t, "alice", "daily_1000", future, true)

		got, err := storage.Extend(context.Background(), id, 24*time.Hour)
		require.NoError(t, err)
		// Новый expiry = старый + сутки, остаток не потерян.
		assert.WithinDuration(t, future.Add(24*time.Hour), got.Expiry, 5*time.Second)
	})

	t.Run("extension after expiry counts from now", func(t *testing.T) {
		past := time.Now().Add(-48 * time.Hour)
		id := factory.CreateUser(t, "bob", "daily_1000", past, false)

		got, err := storage.Extend(context.Background(), id, 24*time.Hour)
		require.NoError(t, err)
		assert.WithinDuration(t, time.Now().Add(24*time.Hour), got.Expiry, 5*time.Second)
	})

	t.Run("unknown user", func(t *testing.T) {
		_, err := storage.Extend(context.Background(), 9999, 24*time.Hour)
		assert.ErrorIs(t, err, ErrUserNotFound)
	})
}

func TestStorage_DeleteUser(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	factory := NewTestDataFactory(storage)
	id := factory.CreateUser(t, "alice", "daily_1000", time.Now().Add(24*time.Hour), true)
	paymentID := factory.CreatePayment(t, id, 1000, uuid.NewString())

	require.NoError(t, storage.DeleteUser(context.Background(), id))

	verification := NewTestVerification(storage)
	verification.VerifyUserDeleted(t, id)
	// Платёж переживает удаление абонента.
	verification.VerifyPaymentExists(t, paymentID)

	assert.ErrorIs(t, storage.DeleteUser(context.Background(), id), ErrUserNotFound)
}

func TestStorage_DeleteUserByUsername(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	factory := NewTestDataFactory(storage)
	factory.CreateUser(t, "alice", "daily_1000", time.Now().Add(24*time.Hour), true)

	affected, err := storage.DeleteUserByUsername(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)

	// Повторное удаление идемпотентно.
	affected, err = storage.DeleteUserByUsername(context.Background(), "alice")
	require.NoError(t, err)
	assert.Zero(t, affected)
}

func TestStorage_FindExpiredActive(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	factory := NewTestDataFactory(storage)
	factory.CreateUser(t, "expired_active", "daily_1000", time.Now().Add(-time.Hour), true)
	factory.CreateUser(t, "expired_inactive", "daily_1000", time.Now().Add(-time.Hour), false)
	factory.CreateUser(t, "current_active", "daily_1000", time.Now().Add(time.Hour), true)

	got, err := storage.FindExpiredActive(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "expired_active", got[0].Username)
}

func TestStorage_CreatePayment(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	factory := NewTestDataFactory(storage)
	userID := factory.CreateUser(t, "alice", "daily_1000", time.Now().Add(24*time.Hour), true)

	got, err := storage.CreatePayment(context.Background(), models.Payment{
		UserID:    userID,
		Amount:    1000,
		Reference: uuid.NewString(),
		Verified:  true,
	})
	require.NoError(t, err)
	assert.NotZero(t, got.ID)
	assert.False(t, got.Date.IsZero())

	// Платёж для несуществующего абонента отклоняется.
	_, err = storage.CreatePayment(context.Background(), models.Payment{
		UserID:    9999,
		Amount:    1000,
		Reference: uuid.NewString(),
	})
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestStorage_ListPayments(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	factory := NewTestDataFactory(storage)
	userID := factory.CreateUser(t, "alice", "daily_1000", time.Now().Add(24*time.Hour), true)
	factory.CreatePayment(t, userID, 1000, uuid.NewString())
	factory.CreatePayment(t, userID, 500, uuid.NewString())

	got, err := storage.ListPayments(context.Background())
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestStorage_Stats(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	factory := NewTestDataFactory(storage)
	activeID := factory.CreateUser(t, "active", "daily_1000", time.Now().Add(time.Hour), true)
	factory.CreateUser(t, "expired", "daily_1000", time.Now().Add(-time.Hour), false)
	factory.CreatePayment(t, activeID, 1000, uuid.NewString())

	got, err := storage.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, got.TotalUsers)
	assert.Equal(t, 1, got.ActiveUsers)
	assert.Equal(t, 1, got.ExpiredUsers)
	assert.Equal(t, 1, got.TotalPayments)
}

func TestStorage_Events(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	ctx := context.Background()
	require.NoError(t, storage.RecordEvent(ctx, "created user alice"))
	require.NoError(t, storage.RecordEvent(ctx, "payment of 1000.00 recorded for user id 1"))

	got, err := storage.ListEvents(ctx, 10)
	require.NoError(t, err)
	require.Len(t, got, 2)
	// Новые записи первыми.
	assert.Equal(t, "payment of 1000.00 recorded for user id 1", got[0].Event)
}

package toggle

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/hotspot-billing/internal/models"
	"github.com/magabrotheeeer/hotspot-billing/internal/routeros"
	"github.com/magabrotheeeer/hotspot-billing/internal/storage/repository"
)

// MockService реализует интерфейс toggle.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) Toggle(ctx context.Context, id int64) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func TestToggleHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	tests := []struct {
		name           string
		id             string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "успешное отключение",
			id:   "1",
			setupMock: func(m *MockService) {
				m.On("Toggle", mock.Anything, int64(1)).
					Return(&models.User{ID: 1, Username: "alice", IsActive: false}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"is_active":false`,
		},
		{
			name:           "некорректный id",
			id:             "abc",
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `invalid id`,
		},
		{
			name: "абонент не найден",
			id:   "42",
			setupMock: func(m *MockService) {
				m.On("Toggle", mock.Anything, int64(42)).Return(nil, repository.ErrUserNotFound)
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   `user not found`,
		},
		{
			name: "учётная запись отсутствует на роутере",
			id:   "7",
			setupMock: func(m *MockService) {
				m.On("Toggle", mock.Anything, int64(7)).Return(nil, routeros.ErrCredentialMissing)
			},
			expectedStatus: http.StatusConflict,
			expectedBody:   `not bound on router`,
		},
		{
			name: "роутер недоступен",
			id:   "7",
			setupMock: func(m *MockService) {
				m.On("Toggle", mock.Anything, int64(7)).Return(nil, routeros.ErrUnavailable)
			},
			expectedStatus: http.StatusServiceUnavailable,
			expectedBody:   `router unavailable`,
		},
		{
			name: "ошибка сервиса",
			id:   "7",
			setupMock: func(m *MockService) {
				m.On("Toggle", mock.Anything, int64(7)).Return(nil, errors.New("db error"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `could not toggle user`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			handler := New(logger, mockService)

			req := httptest.NewRequest(http.MethodPost, "/users/"+tt.id+"/toggle", nil)
			rctx := chi.NewRouteContext()
			rctx.URLParams.Add("id", tt.id)
			req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))

			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.True(t, strings.Contains(w.Body.String(), tt.expectedBody),
				"response body should contain %s, got %s", tt.expectedBody, w.Body.String())

			mockService.AssertExpectations(t)
		})
	}
}

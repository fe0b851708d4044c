package plans

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalog_Resolve(t *testing.T) {
	catalog := Default()

	tests := []struct {
		name     string
		planID   string
		wantErr  bool
		duration time.Duration
	}{
		{
			name:     "daily plan",
			planID:   "daily_1000",
			duration: 24 * time.Hour,
		},
		{
			name:     "monthly plan",
			planID:   "monthly_1000",
			duration: 30 * 24 * time.Hour,
		},
		{
			name:    "unknown plan",
			planID:  "weekly_500",
			wantErr: true,
		},
		{
			name:    "empty plan id",
			planID:  "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan, err := catalog.Resolve(tt.planID)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrUnknownPlan)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.planID, plan.ID)
			assert.Equal(t, tt.duration, plan.Duration)
			assert.Greater(t, plan.Price, 0)
		})
	}
}

func TestCatalog_All_Sorted(t *testing.T) {
	all := Default().All()
	require.Len(t, all, 2)
	assert.Equal(t, "daily_1000", all[0].ID)
	assert.Equal(t, "monthly_1000", all[1].ID)
}

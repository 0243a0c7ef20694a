package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestViewsTrend(t *testing.T) {
	tests := []struct {
		name     string
		recent   int64
		previous int64
		expected *Trend
	}{
		{"both zero", 0, 0, nil},
		{"new activity from nothing", 50, 0, &Trend{Value: 100, IsPositive: true}},
		{"halved", 30, 60, &Trend{Value: 50, IsPositive: false}},
		{"doubled", 120, 60, &Trend{Value: 100, IsPositive: true}},
		{"flat", 60, 60, &Trend{Value: 0, IsPositive: true}},
		{"dropped to zero", 0, 40, &Trend{Value: 100, IsPositive: false}},
		{"rounds to nearest", 100, 300, &Trend{Value: 67, IsPositive: false}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ViewsTrend(tt.recent, tt.previous)
			if tt.expected == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tt.expected.Value, got.Value)
			assert.Equal(t, tt.expected.IsPositive, got.IsPositive)
		})
	}
}

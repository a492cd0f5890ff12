package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRankConfig_ApplyDefaults(t *testing.T) {
	tests := []struct {
		name string
		in   RankConfig
		want RankConfig
	}{
		{"unset takes defaults", RankConfig{}, DefaultRankConfig()},
		{
			"explicit zero weight kept",
			RankConfig{OverlapWeight: 0, PositionCeiling: 6, PositionFloor: 1, PositionCap: 5},
			RankConfig{OverlapWeight: 0, PositionCeiling: 6, PositionFloor: 1, PositionCap: 5, PerStrategyLimit: 10, Cap: 12},
		},
		{
			"explicit zero floor kept",
			RankConfig{OverlapWeight: 3, PositionCeiling: 6, PositionFloor: 0, PositionCap: 5, Cap: 4},
			RankConfig{OverlapWeight: 3, PositionCeiling: 6, PositionFloor: 0, PositionCap: 5, PerStrategyLimit: 10, Cap: 4},
		},
		{
			"limits only",
			RankConfig{PerStrategyLimit: 20, Cap: 5},
			RankConfig{OverlapWeight: 3, PositionCeiling: 6, PositionFloor: 1, PositionCap: 5, PerStrategyLimit: 20, Cap: 5},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.in
			got.ApplyDefaults()
			assert.Equal(t, tt.want, got)
		})
	}
}

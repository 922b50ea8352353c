package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoundHalfUp(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{2.5, 3},
		{2.4999, 2},
		{-2.5, -2},
		{-2.6, -3},
		{1100.0000000000002, 1100},
		{0, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, RoundHalfUp(tt.in), "RoundHalfUp(%v)", tt.in)
	}
}

func TestGrow(t *testing.T) {
	tests := []struct {
		name          string
		base, percent float64
		want          float64
	}{
		{"ten percent", 1000, 10, 1100},
		{"compounded", 1210, 10, 1331},
		{"negative rate", 1000, -12.5, 875},
		{"zero rate", 333, 0, 333},
		{"zero base", 0, 50, 0},
		{"rounds half up", 5, 10, 6},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Grow(tt.base, tt.percent))
		})
	}
}

func TestRound2AndFormat(t *testing.T) {
	assert.Equal(t, 33.33, Round2(100.0/3.0))
	assert.Equal(t, "1400.00", FormatAmount(1400, 2))
	assert.Equal(t, "-0.5", FormatAmount(-0.5, 1))
}

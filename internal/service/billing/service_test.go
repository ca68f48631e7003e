package billing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeCoverage(t *testing.T) {
	tests := []struct {
		name       string
		amount     float64
		percentage float64
		covered    float64
		remaining  float64
	}{
		{"twenty percent", 1000, 20, 200, 800},
		{"full coverage", 500, 100, 500, 0},
		{"no coverage", 500, 0, 0, 500},
		{"rounds to cents", 333, 33, 109.89, 223.11},
		{"half percent", 100, 50.5, 50.5, 49.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := ComputeCoverage(tt.amount, tt.percentage)
			assert.InDelta(t, tt.covered, c.CoveredAmount, 0.001)
			assert.InDelta(t, tt.remaining, c.RemainingAmount, 0.001)
		})
	}
}

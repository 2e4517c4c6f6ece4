package grade

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/statforge/propgrade/internal/domain"
)

func TestGrade(t *testing.T) {
	tests := []struct {
		name      string
		value     float64
		line      float64
		direction domain.Direction
		want      Verdict
	}{
		{"over win", 2, 1.5, domain.DirectionOver, VerdictWin},
		{"over loss", 1, 1.5, domain.DirectionOver, VerdictLoss},
		{"under win", 1, 1.5, domain.DirectionUnder, VerdictWin},
		{"under loss", 2, 1.5, domain.DirectionUnder, VerdictLoss},
		{"push over", 1.5, 1.5, domain.DirectionOver, VerdictPush},
		{"push under", 1.5, 1.5, domain.DirectionUnder, VerdictPush},
		{"push at zero", 0, 0, domain.DirectionOver, VerdictPush},
		{"nan value", math.NaN(), 1.5, domain.DirectionOver, VerdictInvalid},
		{"inf line", 2, math.Inf(1), domain.DirectionOver, VerdictInvalid},
		{"bad direction", 2, 1.5, "sideways", VerdictInvalid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Grade(tt.value, tt.line, tt.direction))
		})
	}
}

func TestGradePushIgnoresDirection(t *testing.T) {
	for _, d := range []domain.Direction{domain.DirectionOver, domain.DirectionUnder} {
		for _, v := range []float64{0.5, 1, 1.5, 7, 27.5} {
			assert.Equal(t, VerdictPush, Grade(v, v, d), "value %.1f direction %s", v, d)
		}
	}
}

func TestVerdictOutcome(t *testing.T) {
	o, ok := VerdictWin.Outcome()
	assert.True(t, ok)
	assert.Equal(t, domain.OutcomeWin, o)

	o, ok = VerdictPush.Outcome()
	assert.True(t, ok)
	assert.Equal(t, domain.OutcomePush, o)

	_, ok = VerdictInvalid.Outcome()
	assert.False(t, ok)
}

package features

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/statforge/propgrade/internal/domain"
)

func outcomes(os ...domain.Outcome) []domain.Outcome { return os }

func TestCurrentStreak(t *testing.T) {
	tests := []struct {
		name string
		in   []domain.Outcome
		want domain.Streak
	}{
		{"empty is neutral", nil, domain.Streak{Type: domain.StreakNeutral, Count: 0}},
		{"two wins then loss", outcomes(domain.OutcomeWin, domain.OutcomeWin, domain.OutcomeLoss, domain.OutcomeWin), domain.Streak{Type: domain.StreakHot, Count: 2}},
		{"loss run", outcomes(domain.OutcomeLoss, domain.OutcomeLoss, domain.OutcomeLoss), domain.Streak{Type: domain.StreakCold, Count: 3}},
		{"single win is hot 1", outcomes(domain.OutcomeWin), domain.Streak{Type: domain.StreakHot, Count: 1}},
		{"single loss is cold 1", outcomes(domain.OutcomeLoss), domain.Streak{Type: domain.StreakCold, Count: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CurrentStreak(tt.in))
		})
	}
}

func TestStreakAsOfFiltersPushesAndFutureGames(t *testing.T) {
	asOf := day(0)
	win, loss, push := domain.OutcomeWin, domain.OutcomeLoss, domain.OutcomePush

	withOutcome := func(offset int, o *domain.Outcome) domain.Observation {
		ob := obsAt(offset, 1)
		ob.Outcome = o
		return ob
	}

	history := []domain.Observation{
		withOutcome(1, &loss),  // future: must not break the streak
		withOutcome(-1, &win),
		withOutcome(-2, &push), // pushes drop out before the walk
		withOutcome(-3, &win),
		withOutcome(-4, nil),   // unresolved
		withOutcome(-5, &loss),
	}

	got := StreakAsOf(history, asOf)
	assert.Equal(t, domain.Streak{Type: domain.StreakHot, Count: 2}, got)
}

func TestBuildRow(t *testing.T) {
	asOf := day(0)
	win, loss := domain.OutcomeWin, domain.OutcomeLoss

	mk := func(offset int, v float64, o *domain.Outcome) domain.Observation {
		ob := obsAt(offset, v)
		ob.Outcome = o
		return ob
	}
	history := []domain.Observation{
		mk(-1, 2, &win),
		mk(-2, 1, &loss),
		mk(-10, 3, &win),
		mk(-20, 0, &loss),
	}

	row, err := BuildRow(660271, domain.PropHits, asOf, history, nil)
	require.NoError(t, err)

	assert.Equal(t, int64(660271), row.PlayerID)
	assert.Equal(t, domain.PropHits, row.PropType)
	assert.Equal(t, 4, row.Observed)

	require.Contains(t, row.Averages, "d7_avg")
	require.NotNil(t, row.Averages["d7_avg"])
	assert.InDelta(t, 1.5, *row.Averages["d7_avg"], 1e-9)

	require.NotNil(t, row.Averages["d15_avg"])
	assert.InDelta(t, 2.0, *row.Averages["d15_avg"], 1e-9)

	require.NotNil(t, row.Averages["d30_avg"])
	assert.InDelta(t, 1.5, *row.Averages["d30_avg"], 1e-9)

	assert.Equal(t, domain.Streak{Type: domain.StreakHot, Count: 1}, row.Streak)

	require.NotNil(t, row.WinRate7)
	assert.InDelta(t, 0.5, *row.WinRate7, 1e-9)
}

func TestBuildRowEmptyHistory(t *testing.T) {
	row, err := BuildRow(1, domain.PropHits, day(0), nil, nil)
	require.NoError(t, err)
	assert.Nil(t, row.Averages["d7_avg"])
	assert.Nil(t, row.WinRate7)
	assert.Equal(t, domain.StreakNeutral, row.Streak.Type)
	assert.Zero(t, row.Observed)
}

func TestBuildRowUnknownPropType(t *testing.T) {
	_, err := BuildRow(1, "corner_kicks", day(0), nil, nil)
	assert.Error(t, err)
}

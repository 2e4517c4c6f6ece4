package domain

import "time"

// Observation is one historical resolved data point for a player and prop
// type, used as input to the rolling feature and streak engines. Valid is
// false when the stored result was non-numeric or never resolved; invalid
// observations are excluded from rolling averages.
type Observation struct {
	PlayerID int64     `db:"player_id"`
	GameID   int64     `db:"game_id"`
	PropType PropType  `db:"prop_type"`
	Date     time.Time `db:"game_date"`
	Value    float64   `db:"result"`
	Valid    bool      `db:"valid"`
	Outcome  *Outcome  `db:"outcome"`
}

// StreakType labels the direction of a player's current run of outcomes.
type StreakType string

const (
	StreakHot     StreakType = "hot"
	StreakCold    StreakType = "cold"
	StreakNeutral StreakType = "neutral"
)

// Streak is the consecutive run of same-direction outcomes ending strictly
// before the evaluation date.
type Streak struct {
	Type  StreakType `json:"streak_type"`
	Count int        `json:"streak_count"`
}

// DerivedFeatureRow carries the point-in-time features for one
// (player, prop type, as-of date) coordinate. Averages are keyed by window
// length in days ("d7_avg", "d15_avg", "d30_avg" by default). The row is
// computed fresh per request; persistence is an external concern.
type DerivedFeatureRow struct {
	PlayerID    int64               `json:"player_id"`
	PropType    PropType            `json:"prop_type"`
	AsOf        time.Time           `json:"as_of_date"`
	Averages    map[string]*float64 `json:"averages"`
	Streak      Streak              `json:"streak"`
	WinRate7    *float64            `json:"rolling_result_avg_7,omitempty"`
	Observed    int                 `json:"observations"`
	GeneratedAt time.Time           `json:"generated_at"`
}

// MatchupAggregate sums plate-appearance outcomes between one batter and
// one pitcher within a single game. Cross-game matchup history is out of
// scope for the engine.
type MatchupAggregate struct {
	BatterID         int64 `json:"batter_id"`
	PitcherID        int64 `json:"pitcher_id"`
	GameID           int64 `json:"game_id"`
	PlateAppearances int   `json:"plate_appearances"`
	AtBats           int   `json:"at_bats"`
	Hits             int   `json:"hits"`
	HomeRuns         int   `json:"home_runs"`
	Strikeouts       int   `json:"strikeouts"`
	Walks            int   `json:"walks"`
	RBIs             int   `json:"rbis"`
	TotalBases       int   `json:"total_bases"`
}

package domain

// StatsBlock is a per-player, per-game bag of named numeric fields from a
// boxscore-shaped source, split into batting and pitching sub-blocks.
// A field that is absent means "unknown", not "zero" — that distinction
// drives did-not-play classification downstream.
type StatsBlock struct {
	Batting  map[string]float64 `json:"batting,omitempty"`
	Pitching map[string]float64 `json:"pitching,omitempty"`
}

// Empty reports whether the block carries no fields at all.
func (b StatsBlock) Empty() bool {
	return len(b.Batting) == 0 && len(b.Pitching) == 0
}

// BattingField returns the first present field among the given aliases.
func (b StatsBlock) BattingField(aliases ...string) (float64, bool) {
	return lookupField(b.Batting, aliases)
}

// PitchingField returns the first present field among the given aliases.
func (b StatsBlock) PitchingField(aliases ...string) (float64, bool) {
	return lookupField(b.Pitching, aliases)
}

func lookupField(fields map[string]float64, aliases []string) (float64, bool) {
	for _, name := range aliases {
		if v, ok := fields[name]; ok {
			return v, true
		}
	}
	return 0, false
}

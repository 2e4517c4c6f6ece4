// Package extract maps a (prop type, stats block) pair to a single numeric
// value, normalizing the field-name variants that boxscore-shaped sources
// disagree on and deriving composite stats from simpler fields.
package extract

import (
	"errors"
	"fmt"
	"math"

	"github.com/statforge/propgrade/internal/domain"
)

// ErrUnknownPropType signals a taxonomy mismatch at the extractor boundary.
// It is reported to the caller and never fatal to a batch.
var ErrUnknownPropType = errors.New("unknown prop type")

// directField names the canonical boxscore field for a prop type together
// with the accepted source spellings, and which sub-block it lives under.
type directField struct {
	pitching bool
	aliases  []string
}

// The alias table is deliberately explicit so the mapping is testable and
// exhaustive-checkable against the closed prop-type set.
var directFields = map[domain.PropType]directField{
	domain.PropHits:               {aliases: []string{"hits"}},
	domain.PropHomeRuns:           {aliases: []string{"homeRuns", "home_runs"}},
	domain.PropRBIs:               {aliases: []string{"rbi", "rbis"}},
	domain.PropRuns:               {aliases: []string{"runs", "runs_scored"}},
	domain.PropWalks:              {aliases: []string{"baseOnBalls", "walks", "base_on_balls"}},
	domain.PropStolenBases:        {aliases: []string{"stolenBases", "stolen_bases"}},
	domain.PropDoubles:            {aliases: []string{"doubles"}},
	domain.PropTriples:            {aliases: []string{"triples"}},
	domain.PropStrikeoutsBatting:  {aliases: []string{"strikeOuts", "strikeouts", "strike_outs"}},
	domain.PropStrikeoutsPitching: {pitching: true, aliases: []string{"strikeOuts", "strikeouts", "strike_outs"}},
	domain.PropWalksAllowed:       {pitching: true, aliases: []string{"baseOnBalls", "walks", "base_on_balls"}},
	domain.PropHitsAllowed:        {pitching: true, aliases: []string{"hits"}},
	domain.PropEarnedRuns:         {pitching: true, aliases: []string{"earnedRuns", "earned_runs"}},
	domain.PropRunsAllowed:        {pitching: true, aliases: []string{"runs", "runs_allowed"}},
	domain.PropOutsRecorded:       {pitching: true, aliases: []string{"outs", "outs_recorded"}},
}

// Extract returns the canonical numeric value for propType in block.
// ok is false when the value cannot be established from the block — the
// caller must distinguish that from a legitimate zero. An unknown prop
// type returns ErrUnknownPropType.
func Extract(propType domain.PropType, block domain.StatsBlock) (value float64, ok bool, err error) {
	if !propType.Valid() {
		return 0, false, fmt.Errorf("%w: %q", ErrUnknownPropType, propType)
	}

	switch propType {
	case domain.PropSingles:
		return singles(block)
	case domain.PropTotalBases:
		return totalBases(block)
	case domain.PropHitsRunsRBIs:
		return sumOf(block, "hits", "runs", "rbi")
	case domain.PropRunsRBIs:
		return sumOf(block, "runs", "rbi")
	}

	spec, found := directFields[propType]
	if !found {
		// closed set and the composite switch above are exhaustive
		return 0, false, fmt.Errorf("%w: %q", ErrUnknownPropType, propType)
	}
	var v float64
	if spec.pitching {
		v, ok = block.PitchingField(spec.aliases...)
	} else {
		v, ok = block.BattingField(spec.aliases...)
	}
	if !ok {
		return 0, false, nil
	}
	return normalize(v)
}

// battingAddends resolves each canonical addend field, reporting how many
// were present. Absent addends contribute zero, but only when at least one
// addend is present — all-absent means "unknown", not zero.
var battingAliases = map[string][]string{
	"hits":     {"hits"},
	"runs":     {"runs", "runs_scored"},
	"rbi":      {"rbi", "rbis"},
	"doubles":  {"doubles"},
	"triples":  {"triples"},
	"homeRuns": {"homeRuns", "home_runs"},
}

func sumOf(block domain.StatsBlock, fields ...string) (float64, bool, error) {
	var sum float64
	present := 0
	for _, f := range fields {
		if v, ok := block.BattingField(battingAliases[f]...); ok {
			sum += v
			present++
		}
	}
	if present == 0 {
		return 0, false, nil
	}
	return normalize(sum)
}

func singles(block domain.StatsBlock) (float64, bool, error) {
	h, okH := block.BattingField(battingAliases["hits"]...)
	d, okD := block.BattingField(battingAliases["doubles"]...)
	t, okT := block.BattingField(battingAliases["triples"]...)
	hr, okHR := block.BattingField(battingAliases["homeRuns"]...)
	if !okH && !okD && !okT && !okHR {
		return 0, false, nil
	}
	return normalize(math.Max(0, h-d-t-hr))
}

// totalBases prefers the source's own total, deriving one from hit types
// when the field is absent or inconsistently zeroed while hits are present.
func totalBases(block domain.StatsBlock) (float64, bool, error) {
	tb, okTB := block.BattingField("totalBases", "total_bases")
	h, okH := block.BattingField(battingAliases["hits"]...)
	if okTB && !(tb == 0 && okH && h > 0) {
		return normalize(tb)
	}
	s, okS, err := singles(block)
	if err != nil || !okS {
		return 0, false, err
	}
	d, _ := block.BattingField(battingAliases["doubles"]...)
	t, _ := block.BattingField(battingAliases["triples"]...)
	hr, _ := block.BattingField(battingAliases["homeRuns"]...)
	return normalize(s + 2*d + 3*t + 4*hr)
}

// normalize rejects non-finite values so they surface as "unknown" rather
// than polluting grading or rolling averages.
func normalize(v float64) (float64, bool, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false, nil
	}
	return v, true, nil
}

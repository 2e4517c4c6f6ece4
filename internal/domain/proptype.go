package domain

import (
	"fmt"
	"strings"
)

// PropType identifies which statistic a prop is graded against. The set is
// closed: caller-supplied types outside it are rejected at the extractor
// boundary, never silently coerced.
type PropType string

const (
	PropHits               PropType = "hits"
	PropHomeRuns           PropType = "home_runs"
	PropRBIs               PropType = "rbis"
	PropRuns               PropType = "runs"
	PropTotalBases         PropType = "total_bases"
	PropWalks              PropType = "walks"
	PropStolenBases        PropType = "stolen_bases"
	PropSingles            PropType = "singles"
	PropDoubles            PropType = "doubles"
	PropTriples            PropType = "triples"
	PropStrikeoutsBatting  PropType = "strikeouts_batting"
	PropStrikeoutsPitching PropType = "strikeouts_pitching"
	PropOutsRecorded       PropType = "outs_recorded"
	PropEarnedRuns         PropType = "earned_runs"
	PropHitsAllowed        PropType = "hits_allowed"
	PropWalksAllowed       PropType = "walks_allowed"
	PropRunsAllowed        PropType = "runs_allowed"
	PropHitsRunsRBIs       PropType = "hits_runs_rbis"
	PropRunsRBIs           PropType = "runs_rbis"
)

// BatterPropTypes are graded from a player's batting line.
var BatterPropTypes = []PropType{
	PropSingles, PropHits, PropTotalBases, PropHitsRunsRBIs, PropRunsRBIs,
	PropRBIs, PropRuns, PropHomeRuns, PropDoubles, PropTriples,
	PropWalks, PropStrikeoutsBatting, PropStolenBases,
}

// PitcherPropTypes are graded from a player's pitching line.
var PitcherPropTypes = []PropType{
	PropStrikeoutsPitching, PropWalksAllowed, PropHitsAllowed,
	PropEarnedRuns, PropRunsAllowed, PropOutsRecorded,
}

var validPropTypes = func() map[PropType]bool {
	m := make(map[PropType]bool, len(BatterPropTypes)+len(PitcherPropTypes))
	for _, p := range BatterPropTypes {
		m[p] = true
	}
	for _, p := range PitcherPropTypes {
		m[p] = true
	}
	return m
}()

// Sportsbook feeds spell prop types inconsistently; canonicalize the known
// variants before validating against the closed set.
var propTypeAliases = map[string]PropType{
	"hitsrundrbis": PropHitsRunsRBIs,
	"h+r+rbi":      PropHitsRunsRBIs,
	"hrr":          PropHitsRunsRBIs,
	"runsrbis":     PropRunsRBIs,
	"r+rbi":        PropRunsRBIs,
	"runs_rbi":     PropRunsRBIs,
	"runs_scored":  PropRuns,
	"single":       PropSingles,
	"so_bat":       PropStrikeoutsBatting,
	"k_bat":        PropStrikeoutsBatting,
	"so_pit":       PropStrikeoutsPitching,
	"k_pit":        PropStrikeoutsPitching,
}

// Valid reports whether the prop type belongs to the closed set.
func (p PropType) Valid() bool {
	return validPropTypes[p]
}

// Batting reports whether the prop type is graded from the batting block.
func (p PropType) Batting() bool {
	for _, b := range BatterPropTypes {
		if p == b {
			return true
		}
	}
	return false
}

// Pitching reports whether the prop type is graded from the pitching block.
func (p PropType) Pitching() bool {
	for _, pt := range PitcherPropTypes {
		if p == pt {
			return true
		}
	}
	return false
}

// ParsePropType canonicalizes a caller-supplied spelling (case, hyphens,
// spaces, known aliases) and rejects anything outside the closed set.
func ParsePropType(s string) (PropType, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	key = strings.ReplaceAll(key, "-", " ")
	key = strings.Join(strings.Fields(key), "_")
	if alias, ok := propTypeAliases[key]; ok {
		return alias, nil
	}
	pt := PropType(key)
	if !pt.Valid() {
		return "", fmt.Errorf("unknown prop type: %q", s)
	}
	return pt, nil
}

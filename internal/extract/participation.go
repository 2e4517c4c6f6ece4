package extract

import (
	"strconv"
	"strings"

	"github.com/statforge/propgrade/internal/domain"
)

// Participated reports whether the block shows meaningful participation:
// at least one present batting or pitching field strictly greater than
// zero. A 0-for-4 game still counts (at-bats are nonzero); an entirely
// empty or all-zero block does not.
func Participated(block domain.StatsBlock) bool {
	for _, fields := range []map[string]float64{block.Batting, block.Pitching} {
		for _, v := range fields {
			if v > 0 {
				return true
			}
		}
	}
	return false
}

// ParseInningsPitched converts a boxscore innings-pitched string to outs.
// The fractional digit counts thirds of an inning: "5.2" means five full
// innings plus two outs, 17 in total.
func ParseInningsPitched(ip string) int {
	ip = strings.TrimSpace(ip)
	if ip == "" {
		return 0
	}
	whole, frac, _ := strings.Cut(ip, ".")
	w, err := strconv.Atoi(whole)
	if err != nil {
		return 0
	}
	outs := w * 3
	if frac != "" {
		if f, err := strconv.Atoi(frac); err == nil {
			outs += f
		}
	}
	return outs
}

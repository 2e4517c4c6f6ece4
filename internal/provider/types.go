package provider

import (
	"encoding/json"
	"strings"

	"github.com/statforge/propgrade/internal/domain"
	"github.com/statforge/propgrade/internal/extract"
)

// Wire shapes for the statsapi-style feed. Only the fields the engine
// consumes are declared; everything else in the payload is ignored.

type scheduleResponse struct {
	Dates []struct {
		Games []struct {
			GamePk int64 `json:"gamePk"`
			Status struct {
				DetailedState string `json:"detailedState"`
			} `json:"status"`
		} `json:"games"`
	} `json:"dates"`
}

// finalGamePks filters the schedule down to games in a terminal state.
func (s scheduleResponse) finalGamePks() []int64 {
	var out []int64
	for _, d := range s.Dates {
		for _, g := range d.Games {
			switch strings.ToLower(g.Status.DetailedState) {
			case "final", "game over":
				out = append(out, g.GamePk)
			}
		}
	}
	return out
}

type boxscoreResponse struct {
	Teams struct {
		Home boxscoreTeam `json:"home"`
		Away boxscoreTeam `json:"away"`
	} `json:"teams"`
}

type boxscoreTeam struct {
	Players map[string]boxscorePlayer `json:"players"`
}

type boxscorePlayer struct {
	Person struct {
		ID int64 `json:"id"`
	} `json:"person"`
	Stats struct {
		Batting  map[string]json.RawMessage `json:"batting"`
		Pitching map[string]json.RawMessage `json:"pitching"`
	} `json:"stats"`
}

// statsBlock converts a player's raw stat maps into a domain StatsBlock.
// Numeric fields pass through; the innings-pitched string becomes an outs
// count when the feed omitted the outs field. Non-numeric fields (names,
// notes) are dropped, which preserves the absent-means-unknown contract.
func (p boxscorePlayer) statsBlock() domain.StatsBlock {
	return domain.StatsBlock{
		Batting:  numericFields(p.Stats.Batting),
		Pitching: pitchingFields(p.Stats.Pitching),
	}
}

func numericFields(raw map[string]json.RawMessage) map[string]float64 {
	if len(raw) == 0 {
		return nil
	}
	out := make(map[string]float64, len(raw))
	for name, msg := range raw {
		var v float64
		if err := json.Unmarshal(msg, &v); err == nil {
			out[name] = v
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func pitchingFields(raw map[string]json.RawMessage) map[string]float64 {
	out := numericFields(raw)
	if _, hasOuts := out["outs"]; hasOuts || raw == nil {
		return out
	}
	if msg, ok := raw["inningsPitched"]; ok {
		var ip string
		if err := json.Unmarshal(msg, &ip); err == nil {
			if out == nil {
				out = make(map[string]float64, 1)
			}
			out["outs"] = float64(extract.ParseInningsPitched(ip))
		}
	}
	return out
}

type feedResponse struct {
	LiveData struct {
		Plays struct {
			AllPlays []feedPlay `json:"allPlays"`
		} `json:"plays"`
	} `json:"liveData"`
}

type feedPlay struct {
	About struct {
		AtBatIndex int `json:"atBatIndex"`
	} `json:"about"`
	Result struct {
		EventType string `json:"eventType"`
		RBI       int    `json:"rbi"`
	} `json:"result"`
	Count struct {
		Outs int `json:"outs"`
	} `json:"count"`
	Matchup struct {
		Batter struct {
			ID int64 `json:"id"`
		} `json:"batter"`
		Pitcher struct {
			ID int64 `json:"id"`
		} `json:"pitcher"`
	} `json:"matchup"`
}

// playEvents flattens the feed into the engine's ordered event log.
func (f feedResponse) playEvents(gameID int64) []domain.PlayEvent {
	plays := f.LiveData.Plays.AllPlays
	if len(plays) == 0 {
		return nil
	}
	out := make([]domain.PlayEvent, 0, len(plays))
	prevOuts := 0
	for _, p := range plays {
		outs := p.Count.Outs - prevOuts
		if outs < 0 {
			// new half-inning resets the outs count
			outs = p.Count.Outs
		}
		prevOuts = p.Count.Outs
		out = append(out, domain.PlayEvent{
			Index:        p.About.AtBatIndex,
			GameID:       gameID,
			BatterID:     p.Matchup.Batter.ID,
			PitcherID:    p.Matchup.Pitcher.ID,
			Type:         domain.ParseEventType(p.Result.EventType),
			RBI:          p.Result.RBI,
			OutsRecorded: outs,
		})
	}
	return out
}

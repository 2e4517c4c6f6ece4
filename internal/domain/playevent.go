package domain

import "strings"

// EventType classifies the terminal result of one plate appearance.
type EventType string

const (
	EventSingle               EventType = "single"
	EventDouble               EventType = "double"
	EventTriple               EventType = "triple"
	EventHomeRun              EventType = "home_run"
	EventWalk                 EventType = "walk"
	EventIntentionalWalk      EventType = "intent_walk"
	EventHitByPitch           EventType = "hit_by_pitch"
	EventStrikeout            EventType = "strikeout"
	EventSacBunt              EventType = "sac_bunt"
	EventSacFly               EventType = "sac_fly"
	EventCatcherInterference  EventType = "catcher_interf"
	EventFieldOut             EventType = "field_out"
	EventGroundedIntoDP       EventType = "grounded_into_double_play"
	EventFieldersChoice       EventType = "fielders_choice"
	EventFieldError           EventType = "field_error"
	EventForceOut             EventType = "force_out"
)

// nonABEvents do not consume an official at-bat.
var nonABEvents = map[EventType]bool{
	EventWalk:                true,
	EventIntentionalWalk:     true,
	EventHitByPitch:          true,
	EventSacBunt:             true,
	EventSacFly:              true,
	EventCatcherInterference: true,
}

// CountsAsAtBat reports whether the event consumes an official at-bat.
func (e EventType) CountsAsAtBat() bool {
	return !nonABEvents[e]
}

// Hit reports whether the event is a base hit, and its total-base value.
func (e EventType) Hit() (bases int, ok bool) {
	switch e {
	case EventSingle:
		return 1, true
	case EventDouble:
		return 2, true
	case EventTriple:
		return 3, true
	case EventHomeRun:
		return 4, true
	}
	return 0, false
}

// ParseEventType normalizes a feed event label ("Home Run", "intent_walk").
func ParseEventType(s string) EventType {
	key := strings.ToLower(strings.TrimSpace(s))
	key = strings.Join(strings.Fields(key), "_")
	return EventType(key)
}

// PlayEvent is one discrete plate appearance from a game's ordered
// play-by-play log. Immutable; Index preserves feed order within the game.
type PlayEvent struct {
	Index        int       `json:"index"`
	GameID       int64     `json:"game_id"`
	BatterID     int64     `json:"batter_id"`
	PitcherID    int64     `json:"pitcher_id"`
	Type         EventType `json:"event_type"`
	RBI          int       `json:"rbi"`
	OutsRecorded int       `json:"outs_recorded"`
}

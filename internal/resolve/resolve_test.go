package resolve

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/statforge/propgrade/internal/domain"
	"github.com/statforge/propgrade/internal/extract"
)

const (
	gameID   int64 = 716463
	playerID int64 = 660271
	otherID  int64 = 545361
)

// stubSource drives the chain with canned per-test data.
type stubSource struct {
	block      domain.StatsBlock
	blockFound bool
	blockErr   error
	events     []domain.PlayEvent
	playErr    error

	statsCalls int
	playCalls  int
}

func (s *stubSource) PlayerStats(_ context.Context, _, _ int64) (domain.StatsBlock, bool, error) {
	s.statsCalls++
	return s.block, s.blockFound, s.blockErr
}

func (s *stubSource) PlayLog(_ context.Context, _ int64) ([]domain.PlayEvent, error) {
	s.playCalls++
	return s.events, s.playErr
}

func play(idx int, et domain.EventType) domain.PlayEvent {
	return domain.PlayEvent{Index: idx, GameID: gameID, BatterID: playerID, PitcherID: otherID, Type: et}
}

func TestResolvePrimary(t *testing.T) {
	src := &stubSource{
		block:      domain.StatsBlock{Batting: map[string]float64{"hits": 2, "atBats": 4}},
		blockFound: true,
	}
	chain := NewChain(src)

	res, err := chain.Resolve(context.Background(), playerID, gameID, domain.PropHits)
	require.NoError(t, err)
	assert.Equal(t, Resolution{Value: 2, Source: SourcePrimary}, res)
	assert.True(t, res.Resolved())
	assert.Zero(t, src.playCalls, "primary success must not touch the play log")
}

func TestResolveFallbackWhenBlockMissing(t *testing.T) {
	// one single and one strikeout as batter reconstructs to 1 hit
	src := &stubSource{
		blockFound: false,
		events:     []domain.PlayEvent{play(0, domain.EventSingle), play(1, domain.EventStrikeout)},
	}
	chain := NewChain(src)

	res, err := chain.Resolve(context.Background(), playerID, gameID, domain.PropHits)
	require.NoError(t, err)
	assert.Equal(t, Resolution{Value: 1, Source: SourceFallback}, res)
	assert.Equal(t, 1, src.statsCalls)
	assert.Equal(t, 1, src.playCalls)
}

func TestResolveAllZeroBlockFallsThrough(t *testing.T) {
	// block technically present but every field zero: participation fails,
	// the chain proceeds to the fallback path
	src := &stubSource{
		block:      domain.StatsBlock{Batting: map[string]float64{"hits": 0, "atBats": 0}},
		blockFound: true,
		events:     []domain.PlayEvent{play(0, domain.EventDouble)},
	}
	chain := NewChain(src)

	res, err := chain.Resolve(context.Background(), playerID, gameID, domain.PropHits)
	require.NoError(t, err)
	assert.Equal(t, SourceFallback, res.Source)
	assert.Equal(t, 1.0, res.Value)
}

func TestResolveUnresolvable(t *testing.T) {
	src := &stubSource{blockFound: false}
	chain := NewChain(src)

	res, err := chain.Resolve(context.Background(), playerID, gameID, domain.PropHits)
	require.NoError(t, err)
	assert.Equal(t, Resolution{Source: SourceNone}, res)
	assert.False(t, res.Resolved())
}

func TestResolveFetchErrorsAreMissingData(t *testing.T) {
	src := &stubSource{
		blockErr: errors.New("503 from provider"),
		playErr:  errors.New("timeout"),
	}
	chain := NewChain(src)

	res, err := chain.Resolve(context.Background(), playerID, gameID, domain.PropHits)
	require.NoError(t, err, "exhausted retries classify as missing data, not a crash")
	assert.Equal(t, SourceNone, res.Source)
}

func TestResolveContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	src := &stubSource{blockErr: context.Canceled}
	chain := NewChain(src)

	_, err := chain.Resolve(ctx, playerID, gameID, domain.PropHits)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestResolveUnknownPropType(t *testing.T) {
	chain := NewChain(&stubSource{})
	_, err := chain.Resolve(context.Background(), playerID, gameID, "touchdowns")
	assert.ErrorIs(t, err, extract.ErrUnknownPropType)
}

func TestResolveFallbackCannotAttestRuns(t *testing.T) {
	// runs scored are invisible to plate-appearance events; the chain must
	// end unresolved rather than claim a zero
	src := &stubSource{
		blockFound: false,
		events:     []domain.PlayEvent{play(0, domain.EventSingle)},
	}
	chain := NewChain(src)

	res, err := chain.Resolve(context.Background(), playerID, gameID, domain.PropRuns)
	require.NoError(t, err)
	assert.Equal(t, SourceNone, res.Source)
}

func TestBlockFromPlays(t *testing.T) {
	events := []domain.PlayEvent{
		play(0, domain.EventSingle),
		play(1, domain.EventDouble),
		play(2, domain.EventWalk),
		play(3, domain.EventStrikeout),
		{Index: 4, GameID: gameID, BatterID: otherID, PitcherID: playerID, Type: domain.EventStrikeout, OutsRecorded: 1},
		{Index: 5, GameID: gameID, BatterID: otherID, PitcherID: playerID, Type: domain.EventHomeRun},
	}

	block := BlockFromPlays(playerID, events)

	require.NotNil(t, block.Batting)
	assert.Equal(t, 4.0, block.Batting["plateAppearances"])
	assert.Equal(t, 3.0, block.Batting["atBats"]) // walk excluded
	assert.Equal(t, 2.0, block.Batting["hits"])
	assert.Equal(t, 3.0, block.Batting["totalBases"])
	assert.Equal(t, 1.0, block.Batting["baseOnBalls"])
	assert.Equal(t, 1.0, block.Batting["strikeOuts"])

	require.NotNil(t, block.Pitching)
	assert.Equal(t, 1.0, block.Pitching["strikeOuts"])
	assert.Equal(t, 1.0, block.Pitching["homeRuns"])
	assert.Equal(t, 1.0, block.Pitching["outs"])

	// absence, not zero, for stats the log cannot attest
	_, hasRuns := block.Batting["runs"]
	assert.False(t, hasRuns)
	_, hasER := block.Pitching["earnedRuns"]
	assert.False(t, hasER)
}

func TestBlockFromPlaysNoEvents(t *testing.T) {
	block := BlockFromPlays(playerID, nil)
	assert.True(t, block.Empty())
	assert.False(t, extract.Participated(block))
}

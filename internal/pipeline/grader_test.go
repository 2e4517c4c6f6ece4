package pipeline

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/statforge/propgrade/internal/domain"
	"github.com/statforge/propgrade/internal/persistence"
)

// fakeSource serves canned boxscores and play logs, counting upstream
// calls so tests can assert the per-batch memoization.
type fakeSource struct {
	boxscores map[int64]map[int64]domain.StatsBlock
	playLogs  map[int64][]domain.PlayEvent

	boxscoreCalls atomic.Int64
	playLogCalls  atomic.Int64
}

func (s *fakeSource) Boxscore(_ context.Context, gameID int64) (map[int64]domain.StatsBlock, error) {
	s.boxscoreCalls.Add(1)
	blocks, ok := s.boxscores[gameID]
	if !ok {
		return nil, errors.New("game not found")
	}
	return blocks, nil
}

func (s *fakeSource) PlayLog(_ context.Context, gameID int64) ([]domain.PlayEvent, error) {
	s.playLogCalls.Add(1)
	return s.playLogs[gameID], nil
}

// fakePropsRepo is an in-memory PropsRepo with the same pending-only
// guard the SQL implementation enforces.
type fakePropsRepo struct {
	mu    sync.Mutex
	props map[uuid.UUID]*domain.Prop
}

func newFakePropsRepo(props ...domain.Prop) *fakePropsRepo {
	repo := &fakePropsRepo{props: make(map[uuid.UUID]*domain.Prop)}
	for i := range props {
		p := props[i]
		repo.props[p.ID] = &p
	}
	return repo
}

func (r *fakePropsRepo) ListPending(_ context.Context, gameIDs []int64, limit int) ([]domain.Prop, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Prop
	for _, p := range r.props {
		if p.Status != domain.StatusPending {
			continue
		}
		for _, id := range gameIDs {
			if p.GameID == id {
				out = append(out, *p)
				break
			}
		}
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r *fakePropsRepo) MarkResolved(_ context.Context, prop domain.Prop) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.props[prop.ID]
	if !ok || existing.Status != domain.StatusPending {
		return persistence.ErrAlreadyResolved
	}
	r.props[prop.ID] = &prop
	return nil
}

func (r *fakePropsRepo) MarkStatus(_ context.Context, id uuid.UUID, status domain.Status) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.props[id]; ok {
		p.Status = status
	}
	return nil
}

func (r *fakePropsRepo) get(id uuid.UUID) domain.Prop {
	r.mu.Lock()
	defer r.mu.Unlock()
	return *r.props[id]
}

// fakeObservationsRepo stores observations keyed by (player, game, type).
type fakeObservationsRepo struct {
	mu      sync.Mutex
	history []domain.Observation
	written []domain.Observation
}

func (r *fakeObservationsRepo) History(_ context.Context, playerID int64, propType domain.PropType, asOf time.Time, limit int) ([]domain.Observation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Observation
	for _, o := range r.history {
		if o.PlayerID == playerID && o.PropType == propType && o.Date.Before(asOf) {
			out = append(out, o)
		}
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r *fakeObservationsRepo) ActivePairs(_ context.Context, since time.Time) ([]persistence.PlayerProp, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	seen := make(map[persistence.PlayerProp]bool)
	var pairs []persistence.PlayerProp
	for _, o := range r.history {
		if o.Date.Before(since) {
			continue
		}
		pair := persistence.PlayerProp{PlayerID: o.PlayerID, PropType: o.PropType}
		if !seen[pair] {
			seen[pair] = true
			pairs = append(pairs, pair)
		}
	}
	return pairs, nil
}

func (r *fakeObservationsRepo) Record(_ context.Context, obs domain.Observation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.written = append(r.written, obs)
	return nil
}

func pendingProp(playerID, gameID int64, propType domain.PropType, line float64, direction domain.Direction) domain.Prop {
	return domain.Prop{
		ID:        uuid.New(),
		PlayerID:  playerID,
		GameID:    gameID,
		GameDate:  time.Date(2025, 8, 14, 0, 0, 0, 0, time.UTC),
		PropType:  propType,
		Line:      line,
		Direction: direction,
		Status:    domain.StatusPending,
		CreatedAt: time.Date(2025, 8, 13, 0, 0, 0, 0, time.UTC),
	}
}

func TestGraderResolvesBatch(t *testing.T) {
	hitter := pendingProp(660271, 777001, domain.PropHits, 1.5, domain.DirectionOver)
	pitcher := pendingProp(594798, 777001, domain.PropStrikeoutsPitching, 6.5, domain.DirectionUnder)
	absent := pendingProp(545361, 777001, domain.PropHits, 0.5, domain.DirectionOver)

	source := &fakeSource{
		boxscores: map[int64]map[int64]domain.StatsBlock{
			777001: {
				660271: {Batting: map[string]float64{"hits": 2, "atBats": 4}},
				594798: {Pitching: map[string]float64{"strikeOuts": 5, "outs": 18}},
			},
		},
		playLogs: map[int64][]domain.PlayEvent{777001: nil},
	}
	props := newFakePropsRepo(hitter, pitcher, absent)
	observations := &fakeObservationsRepo{}

	grader := NewGrader(props, observations, source, nil, 4)
	summary, err := grader.Grade(context.Background(), []domain.Prop{hitter, pitcher, absent})
	require.NoError(t, err)

	assert.Equal(t, 3, summary.Considered)
	assert.Equal(t, 2, summary.Resolved)
	assert.Equal(t, 1, summary.DNP)
	assert.Zero(t, summary.Skipped)
	assert.Zero(t, summary.Errors)
	assert.NotEqual(t, uuid.Nil, summary.RunID)

	graded := props.get(hitter.ID)
	require.Equal(t, domain.StatusResolved, graded.Status)
	require.NotNil(t, graded.Outcome)
	assert.Equal(t, domain.OutcomeWin, *graded.Outcome)
	require.NotNil(t, graded.Result)
	assert.Equal(t, 2.0, *graded.Result)

	under := props.get(pitcher.ID)
	require.NotNil(t, under.Outcome)
	assert.Equal(t, domain.OutcomeWin, *under.Outcome)

	assert.Equal(t, domain.StatusDNP, props.get(absent.ID).Status)
}

func TestGraderRecordsObservations(t *testing.T) {
	prop := pendingProp(660271, 777001, domain.PropHomeRuns, 0.5, domain.DirectionOver)
	source := &fakeSource{
		boxscores: map[int64]map[int64]domain.StatsBlock{
			777001: {660271: {Batting: map[string]float64{"homeRuns": 1, "atBats": 3}}},
		},
	}
	props := newFakePropsRepo(prop)
	observations := &fakeObservationsRepo{}

	grader := NewGrader(props, observations, source, nil, 1)
	_, err := grader.Grade(context.Background(), []domain.Prop{prop})
	require.NoError(t, err)

	require.Len(t, observations.written, 1)
	obs := observations.written[0]
	assert.Equal(t, prop.PlayerID, obs.PlayerID)
	assert.Equal(t, prop.GameID, obs.GameID)
	assert.True(t, obs.Valid)
	assert.Equal(t, 1.0, obs.Value)
	require.NotNil(t, obs.Outcome)
	assert.Equal(t, domain.OutcomeWin, *obs.Outcome)
}

func TestGraderSharesOneFetchPerGame(t *testing.T) {
	blocks := map[int64]domain.StatsBlock{}
	var batch []domain.Prop
	for i := int64(0); i < 20; i++ {
		playerID := 600000 + i
		blocks[playerID] = domain.StatsBlock{Batting: map[string]float64{"hits": 1, "atBats": 4}}
		batch = append(batch, pendingProp(playerID, 777002, domain.PropHits, 0.5, domain.DirectionOver))
	}
	source := &fakeSource{boxscores: map[int64]map[int64]domain.StatsBlock{777002: blocks}}
	props := newFakePropsRepo(batch...)

	grader := NewGrader(props, &fakeObservationsRepo{}, source, nil, 8)
	summary, err := grader.Grade(context.Background(), batch)
	require.NoError(t, err)

	assert.Equal(t, 20, summary.Resolved)
	assert.Equal(t, int64(1), source.boxscoreCalls.Load())
	assert.Zero(t, source.playLogCalls.Load())
}

func TestGraderSkipsTerminalAndRacedProps(t *testing.T) {
	done := pendingProp(660271, 777001, domain.PropHits, 1.5, domain.DirectionOver)
	done.Status = domain.StatusResolved

	raced := pendingProp(545361, 777001, domain.PropHits, 0.5, domain.DirectionOver)

	source := &fakeSource{
		boxscores: map[int64]map[int64]domain.StatsBlock{
			777001: {545361: {Batting: map[string]float64{"hits": 1, "atBats": 3}}},
		},
	}
	props := newFakePropsRepo(done)
	// raced is absent from the store, so MarkResolved reports the race.
	grader := NewGrader(props, &fakeObservationsRepo{}, source, nil, 2)
	summary, err := grader.Grade(context.Background(), []domain.Prop{done, raced})
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Skipped)
	assert.Zero(t, summary.Resolved)
	assert.Zero(t, summary.Errors)
}

func TestGraderCountsInvalidProps(t *testing.T) {
	bad := pendingProp(660271, 777001, domain.PropHits, -1.5, domain.DirectionOver)
	source := &fakeSource{boxscores: map[int64]map[int64]domain.StatsBlock{777001: {}}}
	props := newFakePropsRepo(bad)

	grader := NewGrader(props, &fakeObservationsRepo{}, source, nil, 1)
	summary, err := grader.Grade(context.Background(), []domain.Prop{bad})
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Skipped)
	assert.Equal(t, domain.StatusSkipped, props.get(bad.ID).Status)
}

func TestGraderFallsBackToPlayLog(t *testing.T) {
	prop := pendingProp(660271, 777003, domain.PropHits, 0.5, domain.DirectionOver)
	source := &fakeSource{
		boxscores: map[int64]map[int64]domain.StatsBlock{777003: {}},
		playLogs: map[int64][]domain.PlayEvent{
			777003: {
				{Index: 0, GameID: 777003, BatterID: 660271, PitcherID: 594798, Type: domain.EventSingle},
				{Index: 1, GameID: 777003, BatterID: 660271, PitcherID: 594798, Type: domain.EventStrikeout, OutsRecorded: 1},
			},
		},
	}
	props := newFakePropsRepo(prop)

	grader := NewGrader(props, &fakeObservationsRepo{}, source, nil, 1)
	summary, err := grader.Grade(context.Background(), []domain.Prop{prop})
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Resolved)
	assert.Equal(t, int64(1), source.playLogCalls.Load())
	graded := props.get(prop.ID)
	require.NotNil(t, graded.Result)
	assert.Equal(t, 1.0, *graded.Result)
}

func TestGraderEmptyBatch(t *testing.T) {
	grader := NewGrader(newFakePropsRepo(), &fakeObservationsRepo{}, &fakeSource{}, nil, 4)
	summary, err := grader.Grade(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, summary.Considered)
	assert.NotEqual(t, uuid.Nil, summary.RunID)
}

func TestGraderHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	prop := pendingProp(660271, 777001, domain.PropHits, 0.5, domain.DirectionOver)
	grader := NewGrader(newFakePropsRepo(prop), &fakeObservationsRepo{}, &fakeSource{}, nil, 1)
	_, err := grader.Grade(ctx, []domain.Prop{prop})
	assert.ErrorIs(t, err, context.Canceled)
}

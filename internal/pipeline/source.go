package pipeline

import (
	"context"
	"sync"

	"github.com/statforge/propgrade/internal/domain"
)

// GameDataSource is what the pipeline needs from the provider layer.
type GameDataSource interface {
	Boxscore(ctx context.Context, gameID int64) (map[int64]domain.StatsBlock, error)
	PlayLog(ctx context.Context, gameID int64) ([]domain.PlayEvent, error)
}

// GameDataCache is the optional cross-run cache in front of the provider.
type GameDataCache interface {
	Boxscore(ctx context.Context, gameID int64) (map[int64]domain.StatsBlock, bool, error)
	SetBoxscore(ctx context.Context, gameID int64, blocks map[int64]domain.StatsBlock) error
	PlayLog(ctx context.Context, gameID int64) ([]domain.PlayEvent, bool, error)
	SetPlayLog(ctx context.Context, gameID int64, events []domain.PlayEvent) error
}

// batchSource memoizes per-game fetches for the lifetime of one batch so
// concurrent workers grading props from the same game share a single
// upstream call. It is scoped to the batch — never a process-wide
// singleton — so concurrent batches cannot interfere. The outer cache, if
// present, persists results across runs.
type batchSource struct {
	upstream GameDataSource
	cache    GameDataCache // may be nil

	mu        sync.Mutex
	boxscores map[int64]*boxscoreEntry
	playLogs  map[int64]*playLogEntry
}

type boxscoreEntry struct {
	once   sync.Once
	blocks map[int64]domain.StatsBlock
	err    error
}

type playLogEntry struct {
	once   sync.Once
	events []domain.PlayEvent
	err    error
}

func newBatchSource(upstream GameDataSource, cache GameDataCache) *batchSource {
	return &batchSource{
		upstream:  upstream,
		cache:     cache,
		boxscores: make(map[int64]*boxscoreEntry),
		playLogs:  make(map[int64]*playLogEntry),
	}
}

// PlayerStats implements resolve.StatsSource against the memoized boxscore.
func (s *batchSource) PlayerStats(ctx context.Context, gameID, playerID int64) (domain.StatsBlock, bool, error) {
	entry := s.boxscoreFor(gameID)
	entry.once.Do(func() {
		entry.blocks, entry.err = s.fetchBoxscore(ctx, gameID)
	})
	if entry.err != nil {
		return domain.StatsBlock{}, false, entry.err
	}
	block, found := entry.blocks[playerID]
	return block, found, nil
}

// PlayLog implements resolve.StatsSource against the memoized play log.
func (s *batchSource) PlayLog(ctx context.Context, gameID int64) ([]domain.PlayEvent, error) {
	entry := s.playLogFor(gameID)
	entry.once.Do(func() {
		entry.events, entry.err = s.fetchPlayLog(ctx, gameID)
	})
	return entry.events, entry.err
}

func (s *batchSource) boxscoreFor(gameID int64) *boxscoreEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.boxscores[gameID]
	if !ok {
		entry = &boxscoreEntry{}
		s.boxscores[gameID] = entry
	}
	return entry
}

func (s *batchSource) playLogFor(gameID int64) *playLogEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.playLogs[gameID]
	if !ok {
		entry = &playLogEntry{}
		s.playLogs[gameID] = entry
	}
	return entry
}

func (s *batchSource) fetchBoxscore(ctx context.Context, gameID int64) (map[int64]domain.StatsBlock, error) {
	if s.cache != nil {
		if blocks, found, err := s.cache.Boxscore(ctx, gameID); err == nil && found {
			return blocks, nil
		}
	}
	blocks, err := s.upstream.Boxscore(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		// best effort: a failed cache write must not fail the batch
		_ = s.cache.SetBoxscore(ctx, gameID, blocks)
	}
	return blocks, nil
}

func (s *batchSource) fetchPlayLog(ctx context.Context, gameID int64) ([]domain.PlayEvent, error) {
	if s.cache != nil {
		if events, found, err := s.cache.PlayLog(ctx, gameID); err == nil && found {
			return events, nil
		}
	}
	events, err := s.upstream.PlayLog(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		_ = s.cache.SetPlayLog(ctx, gameID, events)
	}
	return events, nil
}

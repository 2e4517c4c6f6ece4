// Package cache provides the Redis-backed cache for fetched game data:
// play-by-play logs and boxscore blocks keyed by game id. Entries are
// written once per final game and shared read-only by batch workers, so a
// short TTL is enough to absorb re-runs without staleness risk.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/statforge/propgrade/internal/domain"
	"github.com/statforge/propgrade/internal/metrics"
)

const (
	playLogPrefix  = "playlog:"
	boxscorePrefix = "boxscore:"
)

// GameCache caches per-game provider payloads.
type GameCache struct {
	client *redis.Client
	ttl    time.Duration
}

// New connects to Redis and verifies the connection.
func New(addr, password string, db int, ttl time.Duration) (*GameCache, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		PoolSize:     10,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}
	return &GameCache{client: rdb, ttl: ttl}, nil
}

// NewWithClient wraps an existing client; used by tests with redismock.
func NewWithClient(client *redis.Client, ttl time.Duration) *GameCache {
	return &GameCache{client: client, ttl: ttl}
}

// PlayLog returns the cached play log for a game, with found=false on miss.
func (c *GameCache) PlayLog(ctx context.Context, gameID int64) ([]domain.PlayEvent, bool, error) {
	raw, found, err := c.get(ctx, playLogKey(gameID), "playlog")
	if err != nil || !found {
		return nil, false, err
	}
	var events []domain.PlayEvent
	if err := json.Unmarshal(raw, &events); err != nil {
		return nil, false, fmt.Errorf("decode cached play log for game %d: %w", gameID, err)
	}
	return events, true, nil
}

// SetPlayLog stores a game's play log.
func (c *GameCache) SetPlayLog(ctx context.Context, gameID int64, events []domain.PlayEvent) error {
	return c.set(ctx, playLogKey(gameID), events)
}

// Boxscore returns the cached per-player stats blocks for a game.
func (c *GameCache) Boxscore(ctx context.Context, gameID int64) (map[int64]domain.StatsBlock, bool, error) {
	raw, found, err := c.get(ctx, boxscoreKey(gameID), "boxscore")
	if err != nil || !found {
		return nil, false, err
	}
	var blocks map[int64]domain.StatsBlock
	if err := json.Unmarshal(raw, &blocks); err != nil {
		return nil, false, fmt.Errorf("decode cached boxscore for game %d: %w", gameID, err)
	}
	return blocks, true, nil
}

// SetBoxscore stores a game's per-player stats blocks.
func (c *GameCache) SetBoxscore(ctx context.Context, gameID int64, blocks map[int64]domain.StatsBlock) error {
	return c.set(ctx, boxscoreKey(gameID), blocks)
}

// Close releases the underlying connection pool.
func (c *GameCache) Close() error {
	return c.client.Close()
}

func (c *GameCache) get(ctx context.Context, key, kind string) ([]byte, bool, error) {
	val, err := c.client.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			metrics.CacheOps.WithLabelValues(kind, "miss").Inc()
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("redis get %s: %w", key, err)
	}
	metrics.CacheOps.WithLabelValues(kind, "hit").Inc()
	return []byte(val), true, nil
}

func (c *GameCache) set(ctx context.Context, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

func playLogKey(gameID int64) string  { return fmt.Sprintf("%s%d", playLogPrefix, gameID) }
func boxscoreKey(gameID int64) string { return fmt.Sprintf("%s%d", boxscorePrefix, gameID) }

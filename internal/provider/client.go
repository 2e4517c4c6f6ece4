// Package provider implements the HTTP client for the external
// sports-statistics feed: schedule, per-game boxscores, and ordered
// play-by-play logs. The provider applies rate limits and has variable
// per-request latency, so every call runs through a token bucket, a
// circuit breaker, and bounded retry with exponential backoff.
package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/statforge/propgrade/internal/domain"
	"github.com/statforge/propgrade/internal/metrics"
)

// ErrNotFound marks a well-formed 404 from the provider: the game or
// player simply has no data. Callers treat it as missing, not transient.
var ErrNotFound = errors.New("provider: not found")

// Config tunes the client's politeness and failure policy.
type Config struct {
	BaseURL        string
	RequestTimeout time.Duration
	RatePerSecond  float64
	Burst          int
	MaxRetries     int
	RetryBackoff   time.Duration
	BreakerWindow  time.Duration
}

// DefaultConfig matches the public feed's documented limits.
func DefaultConfig() Config {
	return Config{
		BaseURL:        "https://statsapi.mlb.com/api/v1",
		RequestTimeout: 15 * time.Second,
		RatePerSecond:  5,
		Burst:          10,
		MaxRetries:     3,
		RetryBackoff:   500 * time.Millisecond,
		BreakerWindow:  30 * time.Second,
	}
}

// Client is the provider-facing stats source. It satisfies
// resolve.StatsSource and is safe for concurrent use.
type Client struct {
	cfg     Config
	http    *http.Client
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker
	logger  zerolog.Logger
}

// NewClient builds a client with the config's rate and breaker policy.
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg = DefaultConfig()
	}
	logger := log.With().Str("component", "provider").Logger()
	settings := gobreaker.Settings{
		Name:     "stats-provider",
		Interval: cfg.BreakerWindow,
		Timeout:  cfg.BreakerWindow,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		IsSuccessful: func(err error) bool {
			// a 404 is an answer, not a provider failure
			return err == nil || errors.Is(err, ErrNotFound)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("circuit breaker state change")
		},
	}
	return &Client{
		cfg:     cfg,
		http:    &http.Client{Timeout: cfg.RequestTimeout},
		limiter: rate.NewLimiter(rate.Limit(cfg.RatePerSecond), cfg.Burst),
		breaker: gobreaker.NewCircuitBreaker(settings),
		logger:  logger,
	}
}

// FinalGames returns the game ids in a terminal state on the given date
// (YYYY-MM-DD).
func (c *Client) FinalGames(ctx context.Context, date string) ([]int64, error) {
	var sched scheduleResponse
	url := fmt.Sprintf("%s/schedule?sportId=1&date=%s", c.cfg.BaseURL, date)
	if err := c.getJSON(ctx, url, &sched); err != nil {
		return nil, fmt.Errorf("fetch schedule for %s: %w", date, err)
	}
	return sched.finalGamePks(), nil
}

// Boxscore fetches the full per-game boxscore and indexes it by player id.
func (c *Client) Boxscore(ctx context.Context, gameID int64) (map[int64]domain.StatsBlock, error) {
	var box boxscoreResponse
	url := fmt.Sprintf("%s/game/%d/boxscore", c.cfg.BaseURL, gameID)
	if err := c.getJSON(ctx, url, &box); err != nil {
		return nil, fmt.Errorf("fetch boxscore for game %d: %w", gameID, err)
	}
	blocks := make(map[int64]domain.StatsBlock)
	for _, team := range []boxscoreTeam{box.Teams.Home, box.Teams.Away} {
		for _, p := range team.Players {
			if p.Person.ID != 0 {
				blocks[p.Person.ID] = p.statsBlock()
			}
		}
	}
	return blocks, nil
}

// PlayerStats implements resolve.StatsSource for the primary source.
func (c *Client) PlayerStats(ctx context.Context, gameID, playerID int64) (domain.StatsBlock, bool, error) {
	blocks, err := c.Boxscore(ctx, gameID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return domain.StatsBlock{}, false, nil
		}
		return domain.StatsBlock{}, false, err
	}
	block, found := blocks[playerID]
	return block, found, nil
}

// PlayLog implements resolve.StatsSource for the fallback source.
func (c *Client) PlayLog(ctx context.Context, gameID int64) ([]domain.PlayEvent, error) {
	var feed feedResponse
	url := fmt.Sprintf("%s/game/%d/feed/live", c.cfg.BaseURL, gameID)
	if err := c.getJSON(ctx, url, &feed); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("fetch play log for game %d: %w", gameID, err)
	}
	return feed.playEvents(gameID), nil
}

// getJSON runs one GET through the limiter, breaker, and retry loop.
func (c *Client) getJSON(ctx context.Context, url string, dst any) error {
	var lastErr error
	for attempt := 0; attempt <= c.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := c.cfg.RetryBackoff * time.Duration(1<<(attempt-1))
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}

		body, err := c.breaker.Execute(func() (any, error) {
			return c.fetch(ctx, url)
		})
		if err == nil {
			metrics.ProviderRequests.WithLabelValues("ok").Inc()
			return json.Unmarshal(body.([]byte), dst)
		}
		if errors.Is(err, ErrNotFound) || ctx.Err() != nil {
			metrics.ProviderRequests.WithLabelValues("not_found").Inc()
			return err
		}
		metrics.ProviderRequests.WithLabelValues("error").Inc()
		lastErr = err
		c.logger.Warn().Err(err).Str("url", url).Int("attempt", attempt+1).Msg("provider request failed")
	}
	return fmt.Errorf("retries exhausted: %w", lastErr)
}

func (c *Client) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrNotFound
	case resp.StatusCode >= 400:
		return nil, fmt.Errorf("provider returned %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

package cache

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/go-redis/redismock/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/statforge/propgrade/internal/domain"
)

func testEvents() []domain.PlayEvent {
	return []domain.PlayEvent{
		{Index: 0, GameID: 716463, BatterID: 660271, PitcherID: 594798, Type: domain.EventSingle},
		{Index: 1, GameID: 716463, BatterID: 660271, PitcherID: 594798, Type: domain.EventStrikeout},
	}
}

func TestPlayLogRoundTrip(t *testing.T) {
	db, mock := redismock.NewClientMock()
	c := NewWithClient(db, 10*time.Minute)
	ctx := context.Background()

	events := testEvents()
	raw, err := json.Marshal(events)
	require.NoError(t, err)

	mock.ExpectSet("playlog:716463", raw, 10*time.Minute).SetVal("OK")
	require.NoError(t, c.SetPlayLog(ctx, 716463, events))

	mock.ExpectGet("playlog:716463").SetVal(string(raw))
	got, found, err := c.PlayLog(ctx, 716463)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, events, got)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPlayLogMiss(t *testing.T) {
	db, mock := redismock.NewClientMock()
	c := NewWithClient(db, time.Minute)

	mock.ExpectGet("playlog:1").RedisNil()
	_, found, err := c.PlayLog(context.Background(), 1)
	require.NoError(t, err, "a miss is not an error")
	assert.False(t, found)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBoxscoreRoundTrip(t *testing.T) {
	db, mock := redismock.NewClientMock()
	c := NewWithClient(db, time.Minute)
	ctx := context.Background()

	blocks := map[int64]domain.StatsBlock{
		660271: {Batting: map[string]float64{"hits": 2, "atBats": 4}},
	}
	raw, err := json.Marshal(blocks)
	require.NoError(t, err)

	mock.ExpectSet("boxscore:716463", raw, time.Minute).SetVal("OK")
	require.NoError(t, c.SetBoxscore(ctx, 716463, blocks))

	mock.ExpectGet("boxscore:716463").SetVal(string(raw))
	got, found, err := c.Boxscore(ctx, 716463)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, blocks, got)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCorruptEntryIsError(t *testing.T) {
	db, mock := redismock.NewClientMock()
	c := NewWithClient(db, time.Minute)

	mock.ExpectGet("playlog:9").SetVal("{not json")
	_, _, err := c.PlayLog(context.Background(), 9)
	assert.Error(t, err)
}

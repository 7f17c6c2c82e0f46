package programs

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"testing"
	"time"

	"eligibility-workers/internal/common/database"
	"eligibility-workers/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestSnapshot() Snapshot {
	return Snapshot{
		Jurisdiction: "IL",
		Programs: []models.Program{
			{Jurisdiction: "IL", ProgramID: "all-kids", Name: "All Kids", Pathway: models.PathwayMagi},
		},
		Rules: []models.ProgramRule{{
			Jurisdiction:  "IL",
			ProgramID:     "all-kids",
			Version:       decimal.RequireFromString("1.5"),
			EffectiveDate: date(2025, time.July, 1),
			Expression:    json.RawMessage(`{"<":[{"var":"age"},19]}`),
		}},
		LoadedAt: date(2026, time.March, 1),
	}
}

func TestCacheKey(t *testing.T) {
	assert.Equal(t, "eligibility:candidates:IL:2026", CacheKey("IL", 2026))
}

func TestCache_Get(t *testing.T) {
	t.Run("miss", func(t *testing.T) {
		client, mock := redismock.NewClientMock()
		cache := NewCache(database.NewRedisFromClient(client), time.Minute)
		mock.ExpectGet(CacheKey("IL", 2026)).RedisNil()

		snap, err := cache.Get(context.Background(), "IL", 2026)
		require.NoError(t, err)
		assert.Nil(t, snap)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("hit", func(t *testing.T) {
		client, mock := redismock.NewClientMock()
		cache := NewCache(database.NewRedisFromClient(client), time.Minute)
		data, _ := json.Marshal(createTestSnapshot())
		mock.ExpectGet(CacheKey("IL", 2026)).SetVal(string(data))

		snap, err := cache.Get(context.Background(), "IL", 2026)
		require.NoError(t, err)
		require.NotNil(t, snap)
		require.Len(t, snap.Rules, 1)
		assert.True(t, snap.Rules[0].Version.Equal(decimal.RequireFromString("1.5")))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("corrupt entry", func(t *testing.T) {
		client, mock := redismock.NewClientMock()
		cache := NewCache(database.NewRedisFromClient(client), time.Minute)
		mock.ExpectGet(CacheKey("IL", 2026)).SetVal("{not json")

		_, err := cache.Get(context.Background(), "IL", 2026)
		assert.Error(t, err)
	})

	t.Run("redis down", func(t *testing.T) {
		client, mock := redismock.NewClientMock()
		cache := NewCache(database.NewRedisFromClient(client), time.Minute)
		mock.ExpectGet(CacheKey("IL", 2026)).SetErr(stderrors.New("connection refused"))

		_, err := cache.Get(context.Background(), "IL", 2026)
		assert.Error(t, err)
	})
}

func TestCache_Set(t *testing.T) {
	client, mock := redismock.NewClientMock()
	cache := NewCache(database.NewRedisFromClient(client), 5*time.Minute)

	snap := createTestSnapshot()
	data, err := json.Marshal(snap)
	require.NoError(t, err)
	mock.ExpectSet(CacheKey("IL", 2026), data, 5*time.Minute).SetVal("OK")

	require.NoError(t, cache.Set(context.Background(), snap, 2026))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCache_Invalidate(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	cache := NewCache(database.NewRedisFromClient(client), time.Minute)
	ctx := context.Background()

	snap := createTestSnapshot()
	require.NoError(t, cache.Set(ctx, snap, 2025))
	require.NoError(t, cache.Set(ctx, snap, 2026))
	other := snap
	other.Jurisdiction = "CA"
	require.NoError(t, cache.Set(ctx, other, 2026))

	mr.FastForward(30 * time.Second)
	assert.True(t, mr.Exists(CacheKey("IL", 2026)))

	n, err := cache.Invalidate(ctx, "IL")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.True(t, mr.Exists(CacheKey("CA", 2026)))

	n, err = cache.Invalidate(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestCache_Expires(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	cache := NewCache(database.NewRedisFromClient(client), time.Minute)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, createTestSnapshot(), 2026))
	mr.FastForward(2 * time.Minute)

	snap, err := cache.Get(ctx, "IL", 2026)
	require.NoError(t, err)
	assert.Nil(t, snap)
}

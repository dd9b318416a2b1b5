package cache

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/andresuchdata/bestandsanalyse/internal/analytics"
	"github.com/andresuchdata/bestandsanalyse/internal/config"
	"github.com/andresuchdata/bestandsanalyse/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildRedisOptions(t *testing.T) {
	t.Run("defaults host and port", func(t *testing.T) {
		opts, err := buildRedisOptions(config.CacheConfig{RedisDB: 2, RedisPassword: "secret"})
		require.NoError(t, err)
		assert.Equal(t, "127.0.0.1:6379", opts.Addr)
		assert.Equal(t, 2, opts.DB)
		assert.Equal(t, "secret", opts.Password)
	})

	t.Run("url wins over host", func(t *testing.T) {
		opts, err := buildRedisOptions(config.CacheConfig{
			RedisURL:  "redis://cache.internal:6380/3",
			RedisHost: "ignored",
		})
		require.NoError(t, err)
		assert.Equal(t, "cache.internal:6380", opts.Addr)
		assert.Equal(t, 3, opts.DB)
	})

	t.Run("invalid url", func(t *testing.T) {
		_, err := buildRedisOptions(config.CacheConfig{RedisURL: "http://nope"})
		assert.Error(t, err)
	})
}

func TestTTLFromSeconds(t *testing.T) {
	assert.Equal(t, time.Minute, ttlFromSeconds(0, time.Minute))
	assert.Equal(t, time.Minute, ttlFromSeconds(-5, time.Minute))
	assert.Equal(t, 30*time.Second, ttlFromSeconds(30, time.Minute))
}

func TestNewReportCache(t *testing.T) {
	t.Run("disabled is noop", func(t *testing.T) {
		c, err := NewReportCache(config.CacheConfig{Enabled: false, Backend: config.CacheBackendRedis})
		require.NoError(t, err)
		assert.IsType(t, &noopReportCache{}, c)
	})

	t.Run("memory backend", func(t *testing.T) {
		c, err := NewReportCache(config.CacheConfig{Enabled: true, Backend: config.CacheBackendMemory})
		require.NoError(t, err)
		assert.IsType(t, &memoryReportCache{}, c)
	})

	t.Run("unknown backend", func(t *testing.T) {
		_, err := NewReportCache(config.CacheConfig{Enabled: true, Backend: "memcached"})
		assert.Error(t, err)
	})
}

func TestMemoryReportCache(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryReportCache(time.Minute)
	report := &domain.Report{Overview: domain.Overview{TotalRecords: 3}}

	_, ok, err := c.Get(ctx, "a")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, "a", report))
	require.NoError(t, c.Set(ctx, "b", report))
	require.NoError(t, c.Set(ctx, "nil", nil))

	got, ok, err := c.Get(ctx, "a")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 3, got.Overview.TotalRecords)

	_, ok, _ = c.Get(ctx, "nil")
	assert.False(t, ok)

	require.NoError(t, c.Invalidate(ctx, "a"))
	_, ok, _ = c.Get(ctx, "a")
	assert.False(t, ok)

	require.NoError(t, c.InvalidateAll(ctx))
	_, ok, _ = c.Get(ctx, "b")
	assert.False(t, ok)
}

func TestNoopReportCache(t *testing.T) {
	ctx := context.Background()
	c := NewNoopReportCache()

	require.NoError(t, c.Set(ctx, "a", &domain.Report{}))
	_, ok, err := c.Get(ctx, "a")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, c.Invalidate(ctx, "a"))
	assert.NoError(t, c.InvalidateAll(ctx))
}

func TestMemoryDatasetStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryDatasetStore(time.Minute)
	dataset := analytics.NewDataset([]domain.MovementRow{{
		Item:         "4711",
		MovementType: "Verkauf",
		User:         "MUELLER",
		Date:         domain.TextCell("01.02.2024"),
		Quantity:     domain.NumberCell(-2),
		LocalAmount:  domain.NumberCell(-5),
	}})
	info := domain.DatasetInfo{ID: "ds-1", FileName: "bestand.xlsx", Rows: dataset.Len()}

	require.NoError(t, store.Save(ctx, info, dataset))

	stored, ok, err := store.Load(ctx, "ds-1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "bestand.xlsx", stored.Info.FileName)
	assert.Equal(t, 1, stored.Dataset.Len())

	require.NoError(t, store.Delete(ctx, "ds-1"))
	_, ok, err = store.Load(ctx, "ds-1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestNewDatasetStoreFallsBackToMemory(t *testing.T) {
	store, err := NewDatasetStore(config.CacheConfig{Enabled: false, Backend: config.CacheBackendRedis})
	require.NoError(t, err)
	assert.IsType(t, &memoryDatasetStore{}, store)
}

func TestDatasetPayloadRoundTrip(t *testing.T) {
	dataset := analytics.NewDataset([]domain.MovementRow{
		{
			Item:         "4711",
			MovementType: "Verkauf",
			User:         "MUELLER",
			Date:         domain.NumberCell(45292),
			Quantity:     domain.NumberCell(-2.5),
			LocalAmount:  domain.TextCell("-1.250,50"),
		},
		{
			Item:         "4712",
			MovementType: "Inventur",
			User:         "SCHMIDT",
			Date:         domain.TimeCell(time.Date(2024, 2, 3, 0, 0, 0, 0, time.UTC)),
			Quantity:     domain.NumberCell(4),
		},
	})
	info := domain.DatasetInfo{ID: "ds-2", FileName: "bestand.xlsx", Rows: dataset.Len(), Cancelled: 2, Unknown: 1}

	payload, err := encodeDataset(info, dataset)
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(string(payload), `"time"`))

	stored, err := decodeDataset(payload)
	require.NoError(t, err)
	assert.Equal(t, info.ID, stored.Info.ID)
	assert.Equal(t, 2, stored.Dataset.Cancelled())
	assert.Equal(t, 1, stored.Dataset.Unknown())
	assert.Equal(t, dataset.Rows(), stored.Dataset.Rows())
	assert.Equal(t, dataset.Analyze(), stored.Dataset.Analyze())
}

func TestDecodeDatasetRejectsGarbage(t *testing.T) {
	_, err := decodeDataset([]byte("{"))
	assert.Error(t, err)
}

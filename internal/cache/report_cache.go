package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/andresuchdata/bestandsanalyse/internal/config"
	"github.com/andresuchdata/bestandsanalyse/internal/domain"
	gocache "github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
)

const (
	reportKeyPrefix  = keyPrefix + "report:"
	defaultReportTTL = 15 * time.Minute
)

// ReportCache keeps computed reports keyed by dataset id.
type ReportCache interface {
	Get(ctx context.Context, datasetID string) (*domain.Report, bool, error)
	Set(ctx context.Context, datasetID string, report *domain.Report) error
	Invalidate(ctx context.Context, datasetID string) error
	InvalidateAll(ctx context.Context) error
}

type redisReportCache struct {
	client *redis.Client
	ttl    time.Duration
}

type memoryReportCache struct {
	items *gocache.Cache
}

type noopReportCache struct{}

// NewReportCache picks the backend named in cfg. A disabled cache yields a
// no-op implementation.
func NewReportCache(cfg config.CacheConfig) (ReportCache, error) {
	if !cfg.Enabled {
		return &noopReportCache{}, nil
	}

	ttl := ttlFromSeconds(cfg.ReportTTLSeconds, defaultReportTTL)

	switch cfg.Backend {
	case config.CacheBackendRedis:
		client, err := newRedisClient(cfg)
		if err != nil {
			return nil, err
		}
		return &redisReportCache{client: client, ttl: ttl}, nil
	case config.CacheBackendMemory, "":
		return NewMemoryReportCache(ttl), nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}
}

func NewMemoryReportCache(ttl time.Duration) ReportCache {
	return &memoryReportCache{items: gocache.New(ttl, 2*ttl)}
}

func NewNoopReportCache() ReportCache {
	return &noopReportCache{}
}

func reportKey(datasetID string) string {
	return reportKeyPrefix + datasetID
}

func (c *redisReportCache) Get(ctx context.Context, datasetID string) (*domain.Report, bool, error) {
	payload, err := c.client.Get(ctx, reportKey(datasetID)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get failed: %w", err)
	}

	var report domain.Report
	if err := json.Unmarshal(payload, &report); err != nil {
		return nil, false, fmt.Errorf("decode report cache: %w", err)
	}

	return &report, true, nil
}

func (c *redisReportCache) Set(ctx context.Context, datasetID string, report *domain.Report) error {
	if report == nil {
		return nil
	}

	payload, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("encode report cache: %w", err)
	}

	if err := c.client.Set(ctx, reportKey(datasetID), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (c *redisReportCache) Invalidate(ctx context.Context, datasetID string) error {
	if err := c.client.Del(ctx, reportKey(datasetID)).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

func (c *redisReportCache) InvalidateAll(ctx context.Context) error {
	return deleteKeysWithPrefix(ctx, c.client, reportKeyPrefix)
}

func (c *memoryReportCache) Get(_ context.Context, datasetID string) (*domain.Report, bool, error) {
	value, ok := c.items.Get(reportKey(datasetID))
	if !ok {
		return nil, false, nil
	}
	report, ok := value.(*domain.Report)
	if !ok {
		return nil, false, fmt.Errorf("unexpected report cache entry %T", value)
	}
	return report, true, nil
}

func (c *memoryReportCache) Set(_ context.Context, datasetID string, report *domain.Report) error {
	if report == nil {
		return nil
	}
	c.items.Set(reportKey(datasetID), report, gocache.DefaultExpiration)
	return nil
}

func (c *memoryReportCache) Invalidate(_ context.Context, datasetID string) error {
	c.items.Delete(reportKey(datasetID))
	return nil
}

func (c *memoryReportCache) InvalidateAll(context.Context) error {
	c.items.Flush()
	return nil
}

func (c *noopReportCache) Get(context.Context, string) (*domain.Report, bool, error) {
	return nil, false, nil
}

func (c *noopReportCache) Set(context.Context, string, *domain.Report) error {
	return nil
}

func (c *noopReportCache) Invalidate(context.Context, string) error {
	return nil
}

func (c *noopReportCache) InvalidateAll(context.Context) error {
	return nil
}

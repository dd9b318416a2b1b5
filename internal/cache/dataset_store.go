package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/andresuchdata/bestandsanalyse/internal/analytics"
	"github.com/andresuchdata/bestandsanalyse/internal/config"
	"github.com/andresuchdata/bestandsanalyse/internal/domain"
	gocache "github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
)

const (
	datasetKeyPrefix  = keyPrefix + "dataset:"
	defaultDatasetTTL = time.Hour
)

// StoredDataset pairs an imported dataset with its import metadata.
type StoredDataset struct {
	Info    domain.DatasetInfo
	Dataset *analytics.Dataset
}

// DatasetStore holds imported datasets between requests. Unlike ReportCache
// it is always backed by something, since a dataset cannot be recomputed.
type DatasetStore interface {
	Save(ctx context.Context, info domain.DatasetInfo, dataset *analytics.Dataset) error
	Load(ctx context.Context, id string) (*StoredDataset, bool, error)
	Delete(ctx context.Context, id string) error
}

type redisDatasetStore struct {
	client *redis.Client
	ttl    time.Duration
}

type memoryDatasetStore struct {
	items *gocache.Cache
}

// datasetPayload is the redis representation of a StoredDataset.
type datasetPayload struct {
	Info domain.DatasetInfo   `json:"info"`
	Rows []domain.MovementRow `json:"rows"`
}

// NewDatasetStore uses redis only when the cache is enabled with the redis
// backend. Everything else keeps datasets in process memory.
func NewDatasetStore(cfg config.CacheConfig) (DatasetStore, error) {
	ttl := ttlFromSeconds(cfg.DatasetTTLSeconds, defaultDatasetTTL)

	if cfg.Enabled && cfg.Backend == config.CacheBackendRedis {
		client, err := newRedisClient(cfg)
		if err != nil {
			return nil, err
		}
		return &redisDatasetStore{client: client, ttl: ttl}, nil
	}

	return NewMemoryDatasetStore(ttl), nil
}

func NewMemoryDatasetStore(ttl time.Duration) DatasetStore {
	return &memoryDatasetStore{items: gocache.New(ttl, 2*ttl)}
}

func encodeDataset(info domain.DatasetInfo, dataset *analytics.Dataset) ([]byte, error) {
	payload, err := json.Marshal(datasetPayload{Info: info, Rows: dataset.Rows()})
	if err != nil {
		return nil, fmt.Errorf("encode dataset: %w", err)
	}
	return payload, nil
}

// decodeDataset restores the working rows as stored. The cancellation
// filter is not run a second time.
func decodeDataset(payload []byte) (*StoredDataset, error) {
	var decoded datasetPayload
	if err := json.Unmarshal(payload, &decoded); err != nil {
		return nil, fmt.Errorf("decode dataset: %w", err)
	}
	return &StoredDataset{
		Info:    decoded.Info,
		Dataset: analytics.RestoreDataset(decoded.Rows, decoded.Info.Cancelled, decoded.Info.Unknown),
	}, nil
}

func datasetKey(id string) string {
	return datasetKeyPrefix + id
}

func (s *redisDatasetStore) Save(ctx context.Context, info domain.DatasetInfo, dataset *analytics.Dataset) error {
	payload, err := encodeDataset(info, dataset)
	if err != nil {
		return err
	}

	if err := s.client.Set(ctx, datasetKey(info.ID), payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (s *redisDatasetStore) Load(ctx context.Context, id string) (*StoredDataset, bool, error) {
	payload, err := s.client.Get(ctx, datasetKey(id)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get failed: %w", err)
	}

	stored, err := decodeDataset(payload)
	if err != nil {
		return nil, false, err
	}
	return stored, true, nil
}

func (s *redisDatasetStore) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, datasetKey(id)).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

func (s *memoryDatasetStore) Save(_ context.Context, info domain.DatasetInfo, dataset *analytics.Dataset) error {
	s.items.Set(datasetKey(info.ID), &StoredDataset{Info: info, Dataset: dataset}, gocache.DefaultExpiration)
	return nil
}

func (s *memoryDatasetStore) Load(_ context.Context, id string) (*StoredDataset, bool, error) {
	value, ok := s.items.Get(datasetKey(id))
	if !ok {
		return nil, false, nil
	}
	stored, ok := value.(*StoredDataset)
	if !ok {
		return nil, false, fmt.Errorf("unexpected dataset store entry %T", value)
	}
	return stored, true, nil
}

func (s *memoryDatasetStore) Delete(_ context.Context, id string) error {
	s.items.Delete(datasetKey(id))
	return nil
}

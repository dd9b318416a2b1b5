package storage

import (
	"context"
	"fmt"

	"github.com/andresuchdata/bestandsanalyse/internal/config"
)

// ObjectInfo represents metadata for a remote file/object.
type ObjectInfo struct {
	Key  string
	Size int64
}

// ObjectStorage is the S3-compatible bucket workbooks are read from and
// exports are written to.
type ObjectStorage interface {
	ListObjects(ctx context.Context, prefix string) ([]ObjectInfo, error)
	GetObject(ctx context.Context, key string) ([]byte, error)
	UploadObject(ctx context.Context, key string, data []byte, contentType string) error
}

// New builds the client selected by cfg.Driver.
func New(cfg config.StorageConfig) (ObjectStorage, error) {
	switch cfg.Driver {
	case config.StorageDriverMinio, "":
		return NewMinioClient(MinioConfig{
			Endpoint:  cfg.Endpoint,
			AccessKey: cfg.AccessKey,
			SecretKey: cfg.SecretKey,
			Bucket:    cfg.Bucket,
			Region:    cfg.Region,
			UseSSL:    cfg.UseSSL,
		})
	case config.StorageDriverSevalla:
		return NewSevallaClient(SevallaConfig{
			Endpoint:  cfg.Endpoint,
			AccessKey: cfg.AccessKey,
			SecretKey: cfg.SecretKey,
			Bucket:    cfg.Bucket,
			Region:    cfg.Region,
			UseSSL:    cfg.UseSSL,
		})
	}
	return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
}

func validate(kind, endpoint, accessKey, secretKey, bucket string) error {
	if endpoint == "" {
		return fmt.Errorf("%s endpoint must be provided", kind)
	}
	if accessKey == "" || secretKey == "" {
		return fmt.Errorf("%s credentials must be provided", kind)
	}
	if bucket == "" {
		return fmt.Errorf("%s bucket must be provided", kind)
	}
	return nil
}

package upload

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"go.opentelemetry.io/otel"

	"github.com/portfoliobuilder/intake/internal/config"
)

var tracer = otel.Tracer("github.com/portfoliobuilder/intake/internal/upload")

// Object is a single blob to persist. Body is rewound before every write
// attempt so it must support seeking.
type Object struct {
	Body        io.ReadSeeker
	Key         string
	ContentType string
	Size        int64
}

//go:generate mockgen -destination ./mock/mock.go -package mock . Uploader

// Generic file persistence interface
type Uploader interface {
	// Create / Overwrite the blob named `obj.Key`
	Upload(ctx context.Context, obj Object) error
	// Check if a blob exists under `key`
	Exists(ctx context.Context, key string) (bool, error)
	// Provide an identifier for where files are being uploaded to. Useful for logging and auditing purposes.
	StoreIdentifier(ctx context.Context) (string, error)
	// Anonymous, readonly, internet accessible URL for downloading the blob
	PresignedReadURL(ctx context.Context, key string, duration time.Duration) (string, error)
}

var ErrUnknownBackend = errors.New("unknown storage backend")

// New builds the configured backend wrapped in a RetryUploader, creating the
// bucket or container first when the config asks for it.
func New(ctx context.Context, cfg *config.StorageConfig) (*RetryUploader, error) {
	var (
		backend Uploader
		err     error
	)

	switch cfg.Backend {
	case "minio":
		if cfg.S3 == nil {
			return nil, errors.New("missing s3 storage config")
		}
		var mu *MinioUploader
		mu, err = NewMinioUploader(
			cfg.S3.Endpoint,
			cfg.S3.AccessKeyID,
			cfg.S3.SecretAccessKey,
			cfg.S3.SSLEnabled,
			cfg.S3.BucketName,
		)
		if err == nil && cfg.S3.CreateBucket {
			err = mu.EnsureBucket(ctx)
		}
		backend = mu
	case "azure":
		if cfg.Azure == nil {
			return nil, errors.New("missing azure storage config")
		}
		var au *AzureUploader
		au, err = NewAzureUploader(
			cfg.Azure.AccountName,
			cfg.Azure.AccountKey,
			cfg.Azure.ServiceURL,
			cfg.Azure.Container,
		)
		if err == nil && cfg.Azure.Dev {
			err = au.EnsureContainer(ctx)
		}
		backend = au
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.Backend)
	}
	if err != nil {
		return nil, err
	}

	return NewRetryUploader(backend), nil
}

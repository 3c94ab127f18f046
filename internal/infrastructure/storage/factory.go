package storage

import (
	"context"
	"fmt"

	appcash "github.com/cortecaja/backend/internal/application/cashdrawer"
	"github.com/cortecaja/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

var (
	_ appcash.DocumentStore = (*S3DocumentStore)(nil)
	_ appcash.DocumentStore = (*StubDocumentStore)(nil)
)

// NewDocumentStore builds the store selected by cfg.Driver. For s3 the
// bucket is created when missing.
func NewDocumentStore(ctx context.Context, cfg *config.StorageConfig, logger *zap.Logger) (appcash.DocumentStore, error) {
	switch cfg.Driver {
	case "s3":
		store, err := NewS3DocumentStore(ctx, cfg, WithLogger(logger))
		if err != nil {
			return nil, err
		}
		if err := store.EnsureBucket(ctx); err != nil {
			return nil, err
		}
		logger.Info("S3 document store ready", zap.String("bucket", store.GetBucket()))
		return store, nil
	case "stub", "":
		logger.Warn("Using stub document store, uploads are kept in memory")
		stub := NewStubDocumentStore()
		if cfg.PublicBaseURL != "" {
			stub.BaseURL = cfg.PublicBaseURL
		}
		return stub, nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

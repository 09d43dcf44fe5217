// Package bootstrap provides dependency initialization for gifposter.
package bootstrap

import (
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/maauso/gifposter/internal/config"
	"github.com/maauso/gifposter/internal/media"
	"github.com/maauso/gifposter/internal/metrics"
	"github.com/maauso/gifposter/internal/poster"
	"github.com/maauso/gifposter/internal/publish"
	"github.com/maauso/gifposter/internal/storage"
	"github.com/maauso/gifposter/internal/tag"
)

// Dependencies holds all initialized dependencies for the binaries.
type Dependencies struct {
	Storage   storage.Storage
	Resolver  *poster.Resolver
	Expander  *tag.Expander
	Publisher *publish.Publisher
	Metrics   *metrics.Metrics
	Registry  *prometheus.Registry
}

// NewDependencies creates and initializes all dependencies for the application.
func NewDependencies(cfg *config.Config, logger *slog.Logger) (*Dependencies, error) {
	store, err := initStorage(cfg, logger)
	if err != nil {
		return nil, err
	}

	registry := prometheus.NewRegistry()
	m := metrics.New(registry, nil)

	resolver := poster.NewResolver(
		store,
		media.NewExecRunner(cfg.ToolTimeout),
		poster.Options{
			ConvertCmd:  cfg.ConvertCmd,
			IdentifyCmd: cfg.IdentifyCmd,
			CDNURL:      cfg.CDNURL,
			Caption:     cfg.Caption,
		},
		logger,
	)

	return &Dependencies{
		Storage:   store,
		Resolver:  resolver,
		Expander:  tag.NewExpander(metrics.Instrument(resolver, m), logger),
		Publisher: publish.NewPublisher(store, m, logger),
		Metrics:   m,
		Registry:  registry,
	}, nil
}

// initStorage creates the appropriate storage backend based on configuration.
func initStorage(cfg *config.Config, logger *slog.Logger) (storage.Storage, error) {
	if cfg.S3Enabled() {
		s3Cfg := storage.S3Config{
			Bucket:          cfg.S3Bucket,
			Region:          cfg.S3Region,
			Prefix:          cfg.S3Prefix,
			Endpoint:        cfg.S3Endpoint,
			AccessKeyID:     cfg.AWSAccessKeyID,
			SecretAccessKey: cfg.AWSSecretAccessKey,
		}
		s3Store, err := storage.NewS3Storage(cfg.SiteRoot, s3Cfg)
		if err != nil {
			return nil, fmt.Errorf("create S3 storage: %w", err)
		}
		logger.Info("S3 publishing configured",
			slog.String("bucket", cfg.S3Bucket),
			slog.String("region", cfg.S3Region),
		)
		return s3Store, nil
	}

	localStore, err := storage.NewLocalStorage(cfg.SiteRoot)
	if err != nil {
		return nil, fmt.Errorf("create local storage: %w", err)
	}
	logger.Info("local storage configured",
		slog.String("site_root", localStore.Root()),
	)
	return localStore, nil
}

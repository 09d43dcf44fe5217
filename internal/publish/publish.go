// Package publish uploads the posters and gifs referenced by expanded pages.
package publish

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/maauso/gifposter/internal/storage"
	"github.com/maauso/gifposter/internal/tag"
)

// Observer records publish attempts.
type Observer interface {
	ObservePublish(err error)
}

// Upload is one published file.
type Upload struct {
	Path string `json:"path"`
	URL  string `json:"url"`
}

// Publisher uploads asset files through Storage.Publish.
type Publisher struct {
	store    storage.Storage
	observer Observer
	logger   *slog.Logger
}

// NewPublisher creates a Publisher. observer may be nil.
func NewPublisher(store storage.Storage, observer Observer, logger *slog.Logger) *Publisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Publisher{store: store, observer: observer, logger: logger}
}

// Publish uploads every distinct poster and gif in assets, in order.
// It continues after failures and returns all errors joined.
func (p *Publisher) Publish(ctx context.Context, assets []tag.Asset) ([]Upload, error) {
	seen := make(map[string]bool)
	var uploads []Upload
	var errs []error

	for _, a := range assets {
		for _, rel := range []string{a.Poster, a.Gif} {
			if rel == "" || seen[rel] {
				continue
			}
			seen[rel] = true

			if err := ctx.Err(); err != nil {
				return uploads, fmt.Errorf("context cancelled: %w", err)
			}

			url, err := p.store.Publish(ctx, rel)
			if p.observer != nil {
				p.observer.ObservePublish(err)
			}
			if err != nil {
				if errors.Is(err, storage.ErrS3NotConfigured) {
					return uploads, err
				}
				p.logger.Warn("publish failed",
					slog.String("path", rel),
					slog.String("error", err.Error()),
				)
				errs = append(errs, fmt.Errorf("publish %s: %w", rel, err))
				continue
			}

			p.logger.Info("published asset",
				slog.String("path", rel),
				slog.String("url", url),
			)
			uploads = append(uploads, Upload{Path: rel, URL: url})
		}
	}

	return uploads, errors.Join(errs...)
}

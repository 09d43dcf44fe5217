// Package storage provides access to the site source tree and optional
// publishing of site assets. It defines the Storage interface (port) and
// implementations for local disk and S3.
package storage

import "context"

// Storage resolves site-relative asset paths and publishes assets.
// All rel arguments are relative to the site source root.
type Storage interface {
	// LocalPath returns the local filesystem path of rel for external tools.
	// Paths escaping the site root are rejected with ErrOutsideRoot.
	LocalPath(rel string) (string, error)

	// Exists reports whether rel names an existing file.
	Exists(ctx context.Context, rel string) bool

	// Size returns the size of rel in bytes.
	Size(ctx context.Context, rel string) (int64, error)

	// Publish uploads rel to remote storage and returns its public URL.
	// Returns ErrS3NotConfigured if no remote storage is configured.
	Publish(ctx context.Context, rel string) (url string, err error)
}

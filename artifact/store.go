// Package artifact persists the bundles produced by sampling runs to a local
// directory or an S3 bucket.
package artifact

import (
	"context"
	"io"
	"strings"
)

// Store creates named files below a root location.
type Store interface {
	// Create opens name for writing. The file becomes visible once the
	// returned writer is closed.
	Create(ctx context.Context, name string) (io.WriteCloser, error)

	// Remove deletes name. Removing a missing file is not an error.
	Remove(ctx context.Context, name string) error

	// Sub returns a store rooted at the name sub-location.
	Sub(name string) Store

	String() string
}

// Open returns the store for location, which is either a local directory or
// an s3://bucket/prefix URI.
func Open(ctx context.Context, location string) (Store, error) {
	if strings.HasPrefix(location, "s3://") {
		return NewS3(ctx, location)
	}
	return NewDir(location), nil
}

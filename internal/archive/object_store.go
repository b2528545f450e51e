package archive

import (
	"context"
	"errors"
	"fmt"

	"railpulse/internal/providers"
	"railpulse/internal/structures"
)

// ErrObjectNotFound distinguishes a missing object from a transport
// failure; callers must never conflate the two.
var ErrObjectNotFound = errors.New("object not found")

// ObjectStore is the durable storage consumed by the archive service.
// The logical container (directory, bucket) is fixed at construction.
// Put overwrites. List returns an empty slice when nothing matches.
type ObjectStore interface {
	Put(ctx context.Context, name string, data []byte) error
	Get(ctx context.Context, name string) ([]byte, error)
	List(ctx context.Context, prefix string) ([]string, error)
}

// NewObjectStore selects the configured backend.
func NewObjectStore(conf *structures.Config, logger providers.Logger) (ObjectStore, error) {
	switch conf.Archive.Backend {
	case "s3":
		return NewS3Store(conf, logger)
	case "fs":
		return NewFsStore(conf, logger)
	default:
		return nil, fmt.Errorf("unknown archive backend %q", conf.Archive.Backend)
	}
}

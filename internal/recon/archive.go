package recon

import (
	"context"
	"io"
)

// Archive is a destination for transferred files. Keys are slash-separated
// relative paths (normally "YYYY-MM-DD/<name>"). Implementations never
// overwrite: a key collision is an error, not a replacement.
type Archive interface {
	// Put stores size bytes from r under key. Fails if key already exists.
	Put(ctx context.Context, key string, r io.Reader, size int64) error

	// Open returns the stored bytes for post-transfer verification.
	Open(ctx context.Context, key string) (io.ReadCloser, error)

	// Exists reports whether key is already present.
	Exists(ctx context.Context, key string) (bool, error)

	// Path returns the store-native path for key, used as the path of the
	// disk inventory record created after a transfer.
	Path(key string) string
}

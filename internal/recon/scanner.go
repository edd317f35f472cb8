package recon

import (
	"context"
	"database/sql"
	"io"

	"rawdb/internal/model"
)

// Scanner discovers files for inventory refresh and opens them for transfer.
type Scanner interface {
	// Scan walks root and returns one BasicRecord per regular,
	// non-ignored file, ordered by path.
	Scan(ctx context.Context, root string) ([]model.BasicRecord, error)

	// Open opens a discovered file for reading.
	Open(path string) (io.ReadCloser, error)
}

// Metadata is what a Prober can extract without hashing: an optional capture
// date and, for audio/video assets, an optional playback duration.
type Metadata struct {
	Date     sql.NullString // model.DateFormat
	Duration sql.NullInt64  // milliseconds
}

// Prober extracts capture metadata from a file. Unknown file types and files
// without usable metadata yield a zero Metadata, not an error; errors are
// reserved for I/O-level failures.
type Prober interface {
	Probe(ctx context.Context, path string) (Metadata, error)
}

// Hasher is the pluggable content-addressing capability. Sum returns the
// digest of the file at path; SumReader digests an already-open stream
// (used for post-transfer verification).
type Hasher interface {
	Sum(ctx context.Context, path string) (model.Checksum, error)
	SumReader(r io.Reader) (model.Checksum, error)
}

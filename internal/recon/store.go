package recon

import (
	"context"
	"database/sql"
	"time"

	"rawdb/internal/model"
)

// Store provides access to the two persisted record collections.
// Implementations must enforce path uniqueness per inventory and perform
// every mutation inside its own transaction, rolled back on any exit path.
type Store interface {
	// ReadInventory returns one inventory ordered by path. A duplicate path
	// found at read time is reported as ErrStoreInconsistency.
	ReadInventory(ctx context.Context, side model.Side) ([]model.FileRecord, error)

	// Refresh diffs a fresh scan against the stored inventory: rows whose
	// (path, size) no longer appear in the scan are deleted, unchanged rows
	// are kept (camera rows keep their saved flag), and the scanned entries
	// not yet stored are returned, ordered by path, for probing.
	Refresh(ctx context.Context, side model.Side, scanned []model.BasicRecord) ([]model.BasicRecord, error)

	// InsertRecords adds fully described records to an inventory.
	InsertRecords(ctx context.Context, side model.Side, records []model.FileRecord) error

	// MarkSaved sets saved=1 on the camera records with the given paths.
	MarkSaved(ctx context.Context, paths []string) error

	// MarkUnsaved sets saved=0 on the camera records with the given paths.
	// Used when a previously matched disk record has disappeared.
	MarkUnsaved(ctx context.Context, paths []string) error

	// SetChecksum stores a backfilled digest for a single record.
	SetChecksum(ctx context.Context, side model.Side, path string, sum model.Checksum) error

	// RecordArchived atomically inserts the new disk record created by a
	// completed transfer and marks the originating camera record saved.
	RecordArchived(ctx context.Context, diskRecord model.FileRecord, cameraPath string) error

	// Run history.
	CreateRun(ctx context.Context, run *Run) error
	FinishRun(ctx context.Context, id string, status string) error
	ListRuns(ctx context.Context, limit int) ([]Run, error)

	Close() error
}

// Run records one CLI invocation that may have mutated the store.
type Run struct {
	ID         string
	Operation  string
	Parameters string
	Status     string
	StartedAt  time.Time
	FinishedAt sql.NullTime
}

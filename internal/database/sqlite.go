package database

import (
	"context"
	"database/sql"
	"fmt"

	"rawdb/internal/database/migrations"
	"rawdb/internal/model"
	"rawdb/internal/recon"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// SQLiteStore implements the recon.Store interface using SQLite.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// NewSQLiteStore creates a new SQLite store connection.
// path can be a file path or ":memory:" for an in-memory store.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := OpenConnection(path)
	if err != nil {
		return nil, err
	}
	return &SQLiteStore{db: db, path: path}, nil
}

// NewSQLiteStoreFromDB wraps an existing database connection.
// The caller is responsible for ensuring the connection is properly configured.
func NewSQLiteStoreFromDB(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// OpenConnection opens and configures a SQLite connection with appropriate
// PRAGMAs. Exported for tools and tests that need a raw configured handle.
func OpenConnection(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	return db, nil
}

// tableFor maps an inventory side to its table name.
func tableFor(side model.Side) string {
	if side == model.Camera {
		return "on_camera"
	}
	return "on_disk"
}

// Inventory operations

func (s *SQLiteStore) ReadInventory(ctx context.Context, side model.Side) ([]model.FileRecord, error) {
	query := fmt.Sprintf(
		"SELECT name, path, size, checksum, date, duration FROM %s ORDER BY path", tableFor(side))
	if side == model.Camera {
		query = "SELECT name, path, size, checksum, date, duration, saved FROM on_camera ORDER BY path"
	}

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("reading %s inventory: %w", side, err)
	}
	defer rows.Close()

	var records []model.FileRecord
	lastPath := ""
	for rows.Next() {
		var rec model.FileRecord
		var checksum []byte
		dest := []any{&rec.Name, &rec.Path, &rec.Size, &checksum, &rec.Date, &rec.Duration}
		if side == model.Camera {
			dest = append(dest, &rec.Saved)
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scanning %s row: %w", side, err)
		}
		// The unique index should make this impossible, but downstream
		// logic depends on it, so it is checked rather than assumed.
		if len(records) > 0 && rec.Path == lastPath {
			return nil, fmt.Errorf("%w: duplicate path %q in %s inventory",
				recon.ErrStoreInconsistency, rec.Path, side)
		}
		lastPath = rec.Path
		if checksum != nil {
			rec.Checksum = model.NewChecksum(checksum)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading %s inventory: %w", side, err)
	}
	return records, nil
}

// Refresh diffs a fresh scan against the stored inventory inside one
// transaction, using a temp table so the comparison happens in SQL:
// rows whose (path, size) vanished from the scan are deleted, unchanged rows
// are kept untouched (camera rows keep saved), and the scan entries with no
// stored counterpart come back for probing.
func (s *SQLiteStore) Refresh(ctx context.Context, side model.Side, scanned []model.BasicRecord) ([]model.BasicRecord, error) {
	table := tableFor(side)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		"CREATE TEMP TABLE scan_entries (name TEXT NOT NULL, path TEXT NOT NULL, size INTEGER NOT NULL)"); err != nil {
		return nil, fmt.Errorf("creating scan table: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, "INSERT INTO scan_entries (name, path, size) VALUES (?, ?, ?)")
	if err != nil {
		return nil, fmt.Errorf("preparing scan insert: %w", err)
	}
	for _, entry := range scanned {
		if _, err := stmt.ExecContext(ctx, entry.Name, entry.Path, entry.Size); err != nil {
			stmt.Close()
			return nil, fmt.Errorf("inserting scan entry %s: %w", entry.Path, err)
		}
	}
	stmt.Close()

	if _, err := tx.ExecContext(ctx, fmt.Sprintf(`
		DELETE FROM %[1]s
		WHERE rowid IN (
			SELECT %[1]s.rowid
			FROM %[1]s
			LEFT JOIN scan_entries
			ON %[1]s.path = scan_entries.path AND %[1]s.size = scan_entries.size
			WHERE scan_entries.path IS NULL
		)`, table)); err != nil {
		return nil, fmt.Errorf("deleting vanished records: %w", err)
	}

	rows, err := tx.QueryContext(ctx, fmt.Sprintf(`
		SELECT scan_entries.name, scan_entries.path, scan_entries.size
		FROM scan_entries
		LEFT JOIN %[1]s
		ON %[1]s.path = scan_entries.path AND %[1]s.size = scan_entries.size
		WHERE %[1]s.path IS NULL
		ORDER BY scan_entries.path`, table))
	if err != nil {
		return nil, fmt.Errorf("selecting new records: %w", err)
	}

	var fresh []model.BasicRecord
	for rows.Next() {
		var entry model.BasicRecord
		if err := rows.Scan(&entry.Name, &entry.Path, &entry.Size); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scanning new record: %w", err)
		}
		fresh = append(fresh, entry)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("selecting new records: %w", err)
	}
	rows.Close()

	// The temp table lives on the pooled connection, so it must not
	// outlive the transaction.
	if _, err := tx.ExecContext(ctx, "DROP TABLE scan_entries"); err != nil {
		return nil, fmt.Errorf("dropping scan table: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing transaction: %w", err)
	}
	return fresh, nil
}

func (s *SQLiteStore) InsertRecords(ctx context.Context, side model.Side, records []model.FileRecord) error {
	table := tableFor(side)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	query := fmt.Sprintf(
		"INSERT INTO %s (name, path, size, checksum, date, duration) VALUES (?, ?, ?, ?, ?, ?)", table)
	if side == model.Camera {
		query = "INSERT INTO on_camera (name, path, size, checksum, date, duration, saved) VALUES (?, ?, ?, ?, ?, ?, ?)"
	}

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for i := range records {
		rec := &records[i]
		args := []any{rec.Name, rec.Path, rec.Size, checksumArg(rec.Checksum), rec.Date, rec.Duration}
		if side == model.Camera {
			args = append(args, rec.Saved)
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("inserting %s: %w", rec.Path, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

func (s *SQLiteStore) MarkSaved(ctx context.Context, paths []string) error {
	return s.setSaved(ctx, paths, true)
}

func (s *SQLiteStore) MarkUnsaved(ctx context.Context, paths []string) error {
	return s.setSaved(ctx, paths, false)
}

func (s *SQLiteStore) setSaved(ctx context.Context, paths []string, saved bool) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, "UPDATE on_camera SET saved = ? WHERE path = ?")
	if err != nil {
		return fmt.Errorf("preparing saved update: %w", err)
	}
	defer stmt.Close()

	for _, p := range paths {
		if _, err := stmt.ExecContext(ctx, saved, p); err != nil {
			return fmt.Errorf("updating saved for %s: %w", p, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

func (s *SQLiteStore) SetChecksum(ctx context.Context, side model.Side, path string, sum model.Checksum) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		fmt.Sprintf("UPDATE %s SET checksum = ? WHERE path = ?", tableFor(side)),
		checksumArg(sum), path)
	if err != nil {
		return fmt.Errorf("updating checksum for %s: %w", path, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking checksum update: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("no %s record with path %q", side, path)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// RecordArchived inserts the disk record created by a completed transfer and
// marks the originating camera record saved, in a single transaction, so a
// crash mid-transfer can never leave the two inventories disagreeing about
// whether the file is represented.
func (s *SQLiteStore) RecordArchived(ctx context.Context, diskRecord model.FileRecord, cameraPath string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		"INSERT INTO on_disk (name, path, size, checksum, date, duration) VALUES (?, ?, ?, ?, ?, ?)",
		diskRecord.Name, diskRecord.Path, diskRecord.Size,
		checksumArg(diskRecord.Checksum), diskRecord.Date, diskRecord.Duration); err != nil {
		return fmt.Errorf("inserting disk record %s: %w", diskRecord.Path, err)
	}

	if _, err := tx.ExecContext(ctx,
		"UPDATE on_camera SET saved = 1 WHERE path = ?", cameraPath); err != nil {
		return fmt.Errorf("marking %s saved: %w", cameraPath, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// Run history

func (s *SQLiteStore) CreateRun(ctx context.Context, run *recon.Run) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO runs (id, operation, parameters, status, started_at) VALUES (?, ?, ?, ?, ?)",
		run.ID, run.Operation, run.Parameters, run.Status, run.StartedAt)
	if err != nil {
		return fmt.Errorf("creating run: %w", err)
	}
	return nil
}

func (s *SQLiteStore) FinishRun(ctx context.Context, id string, status string) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE runs SET status = ?, finished_at = CURRENT_TIMESTAMP WHERE id = ?", status, id)
	if err != nil {
		return fmt.Errorf("finishing run: %w", err)
	}
	return nil
}

func (s *SQLiteStore) ListRuns(ctx context.Context, limit int) ([]recon.Run, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, operation, parameters, status, started_at, finished_at FROM runs ORDER BY started_at DESC, id LIMIT ?",
		limit)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	defer rows.Close()

	var runs []recon.Run
	for rows.Next() {
		var run recon.Run
		if err := rows.Scan(&run.ID, &run.Operation, &run.Parameters, &run.Status, &run.StartedAt, &run.FinishedAt); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	return runs, nil
}

// checksumArg converts a Checksum to its stored form: NULL when absent.
// An empty-but-present digest stays an empty BLOB, distinct from NULL.
func checksumArg(c model.Checksum) any {
	if !c.Valid {
		return nil
	}
	return c.Sum
}

// Path returns the database file path (or ":memory:" for in-memory stores).
func (s *SQLiteStore) Path() string {
	return s.path
}

// CheckMigrations verifies the database schema is up-to-date.
func (s *SQLiteStore) CheckMigrations() error {
	return migrations.CheckStatus(s.db)
}

// MigrateUp brings the schema to the latest version.
func (s *SQLiteStore) MigrateUp() error {
	return migrations.Up(s.db)
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Compile-time check that SQLiteStore implements the recon.Store interface
var _ recon.Store = (*SQLiteStore)(nil)

package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"

	"rawdb/internal/archive"
	"rawdb/internal/config"
	"rawdb/internal/database"
	"rawdb/internal/hash"
	"rawdb/internal/model"
	"rawdb/internal/recon"
	"rawdb/internal/scan"
)

// OpMigrate is the operation name that bypasses the schema version gate;
// every other command refuses to run against an out-of-date database.
const OpMigrate = "Migrate"

// App is the application layer between the CLI and the reconciliation
// service. It constructs all dependencies from config, exposes high-level
// operations, and manages the store lifecycle on Close.
type App struct {
	cfg     *config.Config
	store   *database.SQLiteStore
	service *recon.Service
	run     *runState
	lock    *flock.Flock
	logFile *os.File
}

// NewApp creates a fully wired App from the given config.
// operation identifies the CLI command being run (e.g. "Scan", "Archive").
// The caller must call Close when done.
func NewApp(ctx context.Context, cfg *config.Config, operation, parameters string) (*App, error) {
	if err := os.MkdirAll(cfg.BaseDir, 0755); err != nil {
		return nil, fmt.Errorf("creating base directory: %w", err)
	}

	// One process at a time. Concurrent scans against the same database
	// would interleave temp-table refreshes.
	lock := flock.New(filepath.Join(cfg.BaseDir, "rawdb.lock"))
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquiring lock: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("another rawdb instance is already running")
	}

	store, err := database.NewStoreFromConfig(cfg.Database)
	if err != nil {
		lock.Unlock()
		return nil, fmt.Errorf("creating store: %w", err)
	}

	switch {
	case cfg.Database.Type == "memory":
		// A fresh in-memory database always needs the schema.
		if err := store.MigrateUp(); err != nil {
			store.Close()
			lock.Unlock()
			return nil, fmt.Errorf("applying schema: %w", err)
		}
	case operation == OpMigrate:
		// The migrate command exists to fix version mismatches; don't gate it.
	default:
		if err := store.CheckMigrations(); err != nil {
			store.Close()
			lock.Unlock()
			return nil, fmt.Errorf("database schema out of date: %w", err)
		}
	}

	arch, err := archive.NewArchiveFromConfig(ctx, cfg.Archive)
	if err != nil {
		store.Close()
		lock.Unlock()
		return nil, fmt.Errorf("creating archive: %w", err)
	}

	invocation := time.Now().UTC().Format("20060102T150405Z")
	logger, logFile, err := newLogger(cfg.LogDir, operation, invocation)
	if err != nil {
		store.Close()
		lock.Unlock()
		return nil, fmt.Errorf("creating logger: %w", err)
	}

	scanner := scan.NewFilesystemScanner(cfg.Scan.Ignore)
	prober := scan.NewMediaProber(cfg.Scan.FFProbePath)
	hasher := hash.NewSHA256Hasher()

	svc := recon.NewService(store, arch, scanner, prober, hasher,
		&slogAdapter{l: logger}, recon.RealClock{}, recon.UUIDGenerator{},
		cfg.Hash.Workers, time.Duration(cfg.Hash.TimeoutSeconds)*time.Second)

	return &App{
		cfg:     cfg,
		store:   store,
		service: svc,
		run:     newRunState(operation, parameters),
		lock:    lock,
		logFile: logFile,
	}, nil
}

// persistRun saves the run to the store, giving it an ID and start time.
// This should only be called for store-mutating commands.
func (a *App) persistRun(ctx context.Context) error {
	if a.run.Persisted() {
		return nil // already persisted
	}
	run, err := a.service.StartRun(ctx, a.run.Operation, a.run.Parameters)
	if err != nil {
		return fmt.Errorf("persisting run: %w", err)
	}
	a.run.ID = run.ID
	return nil
}

// SetStatus records the outcome Close will persist for a mutating run.
func (a *App) SetStatus(status string) {
	a.run.Status = status
}

// scanRoot resolves the directory to scan for a side: an explicit root wins,
// otherwise the camera side uses the configured source directory and the
// disk side uses the filesystem archive root.
func (a *App) scanRoot(side model.Side, root string) (string, error) {
	if root != "" {
		return root, nil
	}
	switch side {
	case model.Camera:
		if a.cfg.SourceDir == "" {
			return "", fmt.Errorf("no source_dir configured; pass a root")
		}
		return a.cfg.SourceDir, nil
	case model.Disk:
		if a.cfg.Archive.Type == "filesystem" && a.cfg.Archive.Root != "" {
			return a.cfg.Archive.Root, nil
		}
		return "", fmt.Errorf("no scannable archive root; pass a root")
	}
	return "", fmt.Errorf("unknown side: %s", side)
}

// Scan refreshes one inventory from the filesystem. An empty root falls
// back to the configured default for the side. Returns the number of new
// records added.
func (a *App) Scan(ctx context.Context, side model.Side, root string) (int, error) {
	if err := a.persistRun(ctx); err != nil {
		return 0, err
	}
	resolved, err := a.scanRoot(side, root)
	if err != nil {
		return 0, err
	}
	return a.service.Refresh(ctx, side, resolved)
}

// Reconcile runs one reconciliation pass and persists the resulting saved
// flag transitions.
func (a *App) Reconcile(ctx context.Context) (*recon.Result, error) {
	if err := a.persistRun(ctx); err != nil {
		return nil, err
	}
	return a.service.Reconcile(ctx)
}

// Plan computes the transfer plan without mutating anything.
func (a *App) Plan(ctx context.Context) ([]model.FileRecord, error) {
	return a.service.Plan(ctx)
}

// Archive reconciles and then executes the transfer plan. Returns the
// reconciliation result and the number of files archived.
func (a *App) Archive(ctx context.Context) (*recon.Result, int, error) {
	if err := a.persistRun(ctx); err != nil {
		return nil, 0, err
	}
	res, err := a.service.Reconcile(ctx)
	if err != nil {
		return nil, 0, err
	}
	archived, err := a.service.Transfer(ctx, res)
	if err != nil {
		return res, archived, err
	}
	return res, archived, nil
}

// Backfill computes checksums for records that are missing them.
// Returns the number of records updated.
func (a *App) Backfill(ctx context.Context, side model.Side) (int, error) {
	if err := a.persistRun(ctx); err != nil {
		return 0, err
	}
	return a.service.Backfill(ctx, side)
}

// Status summarizes both inventories.
func (a *App) Status(ctx context.Context) ([]recon.InventoryStatus, error) {
	return a.service.Status(ctx)
}

// History returns the most recent runs.
func (a *App) History(ctx context.Context, limit int) ([]recon.Run, error) {
	return a.store.ListRuns(ctx, limit)
}

// MigrateUp brings the database schema to the latest version.
func (a *App) MigrateUp() error {
	return a.store.MigrateUp()
}

// Close finalizes the run record and releases all resources.
func (a *App) Close() error {
	var firstErr error

	if a.run.Persisted() {
		if err := a.service.FinishRun(context.Background(), a.run.ID, a.run.Status); err != nil {
			firstErr = fmt.Errorf("finishing run: %w", err)
		}
	}

	if err := a.store.Close(); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("closing store: %w", err)
	}

	if err := a.lock.Unlock(); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("releasing lock: %w", err)
	}

	if a.logFile != nil {
		a.logFile.Close()
	}

	return firstErr
}

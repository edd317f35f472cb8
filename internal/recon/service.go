package recon

import (
	"context"
	"errors"
	"fmt"
	"path"
	"time"

	"golang.org/x/sync/errgroup"

	"rawdb/internal/model"
)

// Service is the orchestration layer that drives inventory refresh,
// reconciliation passes, checksum backfill, and transfer execution over the
// pluggable collaborators.
type Service struct {
	store   Store
	archive Archive
	scanner Scanner
	prober  Prober
	hasher  Hasher
	logger  Logger
	clock   Clock
	idgen   IDGenerator

	workers     int
	hashTimeout time.Duration
}

// NewService creates a Service with the provided dependencies.
// workers bounds the hashing/probing pool; hashTimeout limits one file's
// checksum computation (zero disables the limit).
func NewService(store Store, archive Archive, scanner Scanner, prober Prober, hasher Hasher, logger Logger, clock Clock, idgen IDGenerator, workers int, hashTimeout time.Duration) *Service {
	if workers <= 0 {
		workers = 1
	}
	return &Service{
		store:       store,
		archive:     archive,
		scanner:     scanner,
		prober:      prober,
		hasher:      hasher,
		logger:      logger,
		clock:       clock,
		idgen:       idgen,
		workers:     workers,
		hashTimeout: hashTimeout,
	}
}

// Refresh scans root, diffs the scan against the stored inventory, probes
// and hashes the new files through the bounded pool, and inserts them.
// Returns the number of records inserted.
func (s *Service) Refresh(ctx context.Context, side model.Side, root string) (int, error) {
	scanned, err := s.scanner.Scan(ctx, root)
	if err != nil {
		return 0, fmt.Errorf("scanning %s: %w", root, err)
	}
	s.logger.Info("scan complete", "side", side, "root", root, "files", len(scanned))

	fresh, err := s.store.Refresh(ctx, side, scanned)
	if err != nil {
		return 0, fmt.Errorf("refreshing %s inventory: %w", side, err)
	}
	if len(fresh) == 0 {
		return 0, nil
	}

	records := make([]model.FileRecord, len(fresh))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, basic := range fresh {
		g.Go(func() error {
			records[i] = s.describe(gctx, basic)
			return gctx.Err()
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}

	if err := s.store.InsertRecords(ctx, side, records); err != nil {
		return 0, fmt.Errorf("inserting %s records: %w", side, err)
	}
	s.logger.Info("inventory refreshed", "side", side, "new", len(records))
	return len(records), nil
}

// describe turns a scan entry into a full record: probe for date/duration,
// hash for the checksum. Neither failure is fatal — the record still
// participates in weaker match tiers.
func (s *Service) describe(ctx context.Context, basic model.BasicRecord) model.FileRecord {
	rec := model.FileRecord{Name: basic.Name, Path: basic.Path, Size: basic.Size}

	meta, err := s.prober.Probe(ctx, basic.Path)
	if err != nil {
		s.logger.Warn("probe failed", "path", basic.Path, "error", err)
	} else {
		rec.Date = meta.Date
		rec.Duration = meta.Duration
	}

	sum, err := s.hashFile(ctx, basic.Path)
	if err != nil {
		s.logger.Warn("hash failed", "path", basic.Path, "error", err)
	} else {
		rec.Checksum = sum
	}
	return rec
}

// hashFile computes a file's checksum under the per-file timeout.
// A timed-out checksum is "still absent", not an error.
func (s *Service) hashFile(ctx context.Context, filePath string) (model.Checksum, error) {
	hctx := ctx
	if s.hashTimeout > 0 {
		var cancel context.CancelFunc
		hctx, cancel = context.WithTimeout(ctx, s.hashTimeout)
		defer cancel()
	}

	sum, err := s.hasher.Sum(hctx, filePath)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			s.logger.Warn("hash timed out", "path", filePath)
			return model.Checksum{}, nil
		}
		return model.Checksum{}, err
	}
	return sum, nil
}

// Reconcile reads both inventories, runs one pass, and persists the saved
// flag transitions. The returned Result reflects the persisted state.
func (s *Service) Reconcile(ctx context.Context) (*Result, error) {
	disk, camera, err := s.readInventories(ctx)
	if err != nil {
		return nil, err
	}

	before := make(map[string]bool, len(camera))
	for i := range camera {
		before[camera[i].Path] = camera[i].Saved
	}

	res, err := Reconcile(ctx, disk, camera, Options{Workers: s.workers})
	if err != nil {
		return nil, err
	}

	var nowSaved, nowUnsaved []string
	for i := range res.Camera {
		rec := &res.Camera[i]
		if rec.Saved && !before[rec.Path] {
			nowSaved = append(nowSaved, rec.Path)
		}
		if !rec.Saved && before[rec.Path] {
			nowUnsaved = append(nowUnsaved, rec.Path)
		}
	}
	if len(nowSaved) > 0 {
		if err := s.store.MarkSaved(ctx, nowSaved); err != nil {
			return nil, fmt.Errorf("marking records saved: %w", err)
		}
	}
	if len(nowUnsaved) > 0 {
		if err := s.store.MarkUnsaved(ctx, nowUnsaved); err != nil {
			return nil, fmt.Errorf("marking records unsaved: %w", err)
		}
	}

	for i := range res.Regressed {
		s.logger.Warn("archived copy disappeared, record queued again", "path", res.Regressed[i].Path)
	}
	s.logger.Info("reconcile complete",
		"matched", res.Matched, "duplicates", res.Duplicates, "unmatched", res.Unmatched)
	return res, nil
}

// Plan computes the transfer plan from the current inventories without
// persisting anything.
func (s *Service) Plan(ctx context.Context) ([]model.FileRecord, error) {
	disk, camera, err := s.readInventories(ctx)
	if err != nil {
		return nil, err
	}
	res, err := Reconcile(ctx, disk, camera, Options{Workers: s.workers})
	if err != nil {
		return nil, err
	}
	return res.Plan, nil
}

// Transfer executes the plan of a completed pass: each file is copied into
// the archive, verified by re-reading and re-hashing, and recorded as a new
// disk record with its camera record marked saved, atomically per file.
// Per-file failures are logged and skipped; cancellation between files is
// honored and never rolls back completed work. Returns the number of files
// archived.
func (s *Service) Transfer(ctx context.Context, res *Result) (int, error) {
	archived := 0
	for i := range res.Plan {
		if err := ctx.Err(); err != nil {
			return archived, err
		}
		rec := &res.Plan[i]
		if err := s.transferOne(ctx, rec); err != nil {
			s.logger.Warn("transfer failed", "path", rec.Path, "error", err)
			continue
		}
		archived++
	}
	s.logger.Info("transfer complete", "archived", archived, "planned", len(res.Plan))
	return archived, nil
}

func (s *Service) transferOne(ctx context.Context, rec *model.FileRecord) error {
	key := archiveKey(rec)

	exists, err := s.archive.Exists(ctx, key)
	if err != nil {
		return fmt.Errorf("checking archive for %s: %w", key, err)
	}
	if exists {
		return fmt.Errorf("archive already contains %s", key)
	}

	src, err := s.scanner.Open(rec.Path)
	if err != nil {
		return fmt.Errorf("opening source: %w", err)
	}
	defer src.Close()

	if err := s.archive.Put(ctx, key, src, rec.Size); err != nil {
		return fmt.Errorf("writing %s: %w", key, err)
	}

	sum := rec.Checksum
	if !sum.Valid {
		// Last chance to get a verifiable digest before the copy is trusted.
		sum, err = s.hashFile(ctx, rec.Path)
		if err != nil {
			return fmt.Errorf("hashing source: %w", err)
		}
	}

	if sum.Valid {
		if err := s.verify(ctx, key, sum); err != nil {
			return err
		}
	} else {
		s.logger.Warn("archived without verification, checksum unavailable", "path", rec.Path)
	}

	diskRec := model.FileRecord{
		Name:     rec.Name,
		Path:     s.archive.Path(key),
		Size:     rec.Size,
		Checksum: sum,
		Date:     rec.Date,
		Duration: rec.Duration,
	}
	if err := s.store.RecordArchived(ctx, diskRec, rec.Path); err != nil {
		return fmt.Errorf("recording transfer: %w", err)
	}

	s.logger.Info("file archived", "path", rec.Path, "key", key)
	return nil
}

// verify re-reads the archived copy and compares digests.
func (s *Service) verify(ctx context.Context, key string, want model.Checksum) error {
	rc, err := s.archive.Open(ctx, key)
	if err != nil {
		return fmt.Errorf("re-reading %s: %w", key, err)
	}
	defer rc.Close()

	got, err := s.hasher.SumReader(rc)
	if err != nil {
		return fmt.Errorf("hashing archived copy of %s: %w", key, err)
	}
	if !got.Equal(want) {
		return fmt.Errorf("checksum mismatch after archiving %s", key)
	}
	return nil
}

// archiveKey places a record under its capture day, or under undated/ when
// the capture time is unknown.
func archiveKey(rec *model.FileRecord) string {
	if rec.Date.Valid && len(rec.Date.String) >= 10 {
		return path.Join(rec.Date.String[:10], rec.Name)
	}
	return path.Join("undated", rec.Name)
}

// StartRun opens a run history record for a mutating operation, stamped
// with a fresh ID and the current time.
func (s *Service) StartRun(ctx context.Context, operation, parameters string) (*Run, error) {
	run := &Run{
		ID:         s.idgen.New(),
		Operation:  operation,
		Parameters: parameters,
		Status:     "started",
		StartedAt:  s.clock.Now(),
	}
	if err := s.store.CreateRun(ctx, run); err != nil {
		return nil, fmt.Errorf("recording run: %w", err)
	}
	return run, nil
}

// FinishRun closes a run history record with its final status.
func (s *Service) FinishRun(ctx context.Context, id, status string) error {
	return s.store.FinishRun(ctx, id, status)
}

func (s *Service) readInventories(ctx context.Context) (disk, camera []model.FileRecord, err error) {
	disk, err = s.store.ReadInventory(ctx, model.Disk)
	if err != nil {
		return nil, nil, fmt.Errorf("reading disk inventory: %w", err)
	}
	camera, err = s.store.ReadInventory(ctx, model.Camera)
	if err != nil {
		return nil, nil, fmt.Errorf("reading camera inventory: %w", err)
	}
	return disk, camera, nil
}

package recon

import (
	"context"
	"fmt"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"rawdb/internal/model"
)

// Backfill computes checksums for records in one inventory that do not have
// one yet, across the bounded worker pool. Hashing is the dominant cost of
// the whole system and is independent per file, so the pool runs wide; each
// result is committed through its own per-path transaction.
//
// A per-file timeout leaves that record's checksum absent — it will be
// retried on the next backfill. Returns the number of digests stored.
func (s *Service) Backfill(ctx context.Context, side model.Side) (int, error) {
	records, err := s.store.ReadInventory(ctx, side)
	if err != nil {
		return 0, fmt.Errorf("reading %s inventory: %w", side, err)
	}

	var stored atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i := range records {
		rec := records[i]
		if rec.Checksum.Valid {
			continue
		}
		g.Go(func() error {
			sum, err := s.hashFile(gctx, rec.Path)
			if err != nil {
				// Unreadable file: expected for media pulled mid-scan.
				// Skip it; the pass must not abort on one record.
				s.logger.Warn("backfill skipped", "path", rec.Path, "error", err)
				return nil
			}
			if !sum.Valid {
				return nil // timed out, still absent
			}
			if err := s.store.SetChecksum(gctx, side, rec.Path, sum); err != nil {
				return fmt.Errorf("storing checksum for %s: %w", rec.Path, err)
			}
			stored.Add(1)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return int(stored.Load()), err
	}

	s.logger.Info("backfill complete", "side", side, "hashed", stored.Load())
	return int(stored.Load()), nil
}

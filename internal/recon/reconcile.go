package recon

import (
	"context"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"

	"rawdb/internal/model"
)

// Conflict surfaces a camera record whose match was ambiguous: more than one
// equally ranked disk candidate. The record still counts as represented, but
// resolution is left to a human or a downstream policy — never done here.
type Conflict struct {
	Record     model.FileRecord
	Candidates []*model.FileRecord
}

// Result is the outcome of one reconciliation pass.
type Result struct {
	// Camera is the full camera inventory, path-ordered, with saved flags
	// updated according to the verdicts.
	Camera []model.FileRecord

	// Conflicts lists ambiguous matches in camera path order.
	Conflicts []Conflict

	// Regressed lists previously saved records whose disk counterpart has
	// disappeared. Their saved flag has been reverted and they re-enter
	// the transfer plan; the reversion is never silent.
	Regressed []model.FileRecord

	// Plan is the deterministic transfer sequence for unmatched records.
	Plan []model.FileRecord

	Matched    int
	Duplicates int
	Unmatched  int
}

// Options tunes a reconciliation pass.
type Options struct {
	// Workers bounds the parallel matching goroutines. Zero means one per CPU.
	Workers int
}

// Reconcile runs one full pass of the camera inventory against the disk
// inventory. Both inventories are taken by value and owned by the caller;
// nothing here touches a store.
//
// The pass validates path uniqueness on both sides first and aborts with
// ErrStoreInconsistency before producing any verdict if it fails. Index
// construction completes before any matching starts; matching then runs
// across camera records in parallel, with each verdict written to its own
// slot so the outcome is independent of scheduling.
//
// The pass is idempotent: with unchanged inventories it produces the same
// partition and plan. Records whose checksum became available since the last
// pass may legitimately re-classify; that correction is the point of the
// checksum tier.
func Reconcile(ctx context.Context, disk, camera []model.FileRecord, opts Options) (*Result, error) {
	if err := checkUniquePaths(camera); err != nil {
		return nil, err
	}

	idx, err := BuildIndex(disk)
	if err != nil {
		return nil, err
	}

	records := make([]model.FileRecord, len(camera))
	copy(records, camera)
	sort.Slice(records, func(i, j int) bool { return records[i].Path < records[j].Path })

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	verdicts := make([]Verdict, len(records))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range records {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			verdicts[i] = Match(&records[i], idx)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	// The dispatch loop breaks early on cancellation; unwritten verdict
	// slots must never be read as real verdicts.
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res := &Result{}
	var candidates []model.FileRecord
	for i := range records {
		rec := &records[i]
		switch verdicts[i].Kind {
		case Matched:
			rec.Saved = true
			res.Matched++
		case Duplicate:
			rec.Saved = true
			res.Duplicates++
			res.Conflicts = append(res.Conflicts, Conflict{
				Record:     *rec,
				Candidates: verdicts[i].Candidates,
			})
		case Unmatched:
			if rec.Saved {
				// The disk record this was matched against is gone.
				rec.Saved = false
				res.Regressed = append(res.Regressed, *rec)
			}
			res.Unmatched++
			candidates = append(candidates, *rec)
		}
	}

	res.Camera = records
	res.Plan = PlanTransfers(candidates)
	return res, nil
}

func checkUniquePaths(records []model.FileRecord) error {
	seen := make(map[string]struct{}, len(records))
	for i := range records {
		if _, dup := seen[records[i].Path]; dup {
			return duplicatePathError(model.Camera, records[i].Path)
		}
		seen[records[i].Path] = struct{}{}
	}
	return nil
}

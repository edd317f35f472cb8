package recon

import (
	"context"
	"errors"
	"testing"

	"rawdb/internal/model"
)

func TestReconcile(t *testing.T) {
	const day = "2024-01-01T10:00:00"
	ctx := context.Background()

	t.Run("partitions camera records", func(t *testing.T) {
		disk := []model.FileRecord{
			withSum(rec("a.CR2", "/disk/a.CR2", 10), 1),
			withDate(rec("dup.CR2", "/disk/1/dup.CR2", 20), day),
			withDate(rec("dup.CR2", "/disk/2/dup.CR2", 20), day),
		}
		camera := []model.FileRecord{
			withSum(rec("a.CR2", "/cam/a.CR2", 10), 1),
			withDate(rec("dup.CR2", "/cam/dup.CR2", 20), day),
			rec("new.CR2", "/cam/new.CR2", 30),
		}

		res, err := Reconcile(ctx, disk, camera, Options{})
		if err != nil {
			t.Fatalf("Reconcile() error = %v", err)
		}

		if res.Matched != 1 || res.Duplicates != 1 || res.Unmatched != 1 {
			t.Errorf("counts = %d/%d/%d, want 1/1/1", res.Matched, res.Duplicates, res.Unmatched)
		}
		if len(res.Conflicts) != 1 {
			t.Fatalf("len(Conflicts) = %d, want 1", len(res.Conflicts))
		}
		if res.Conflicts[0].Record.Path != "/cam/dup.CR2" {
			t.Errorf("conflict record = %q", res.Conflicts[0].Record.Path)
		}
		if len(res.Conflicts[0].Candidates) != 2 {
			t.Errorf("conflict candidates = %d, want 2", len(res.Conflicts[0].Candidates))
		}
		if len(res.Plan) != 1 || res.Plan[0].Path != "/cam/new.CR2" {
			t.Errorf("Plan = %v, want just /cam/new.CR2", res.Plan)
		}
	})

	t.Run("matched and duplicate records are saved", func(t *testing.T) {
		disk := []model.FileRecord{
			withSum(rec("a.CR2", "/disk/a.CR2", 10), 1),
		}
		camera := []model.FileRecord{
			withSum(rec("a.CR2", "/cam/a.CR2", 10), 1),
			rec("new.CR2", "/cam/new.CR2", 30),
		}

		res, err := Reconcile(ctx, disk, camera, Options{})
		if err != nil {
			t.Fatalf("Reconcile() error = %v", err)
		}

		byPath := make(map[string]model.FileRecord)
		for _, r := range res.Camera {
			byPath[r.Path] = r
		}
		if !byPath["/cam/a.CR2"].Saved {
			t.Error("matched record not saved")
		}
		if byPath["/cam/new.CR2"].Saved {
			t.Error("unmatched record marked saved")
		}
	})

	t.Run("reverts and reports regressed records", func(t *testing.T) {
		// Previously saved camera record, but its disk counterpart is gone.
		camera := []model.FileRecord{
			func() model.FileRecord {
				r := withSum(rec("gone.CR2", "/cam/gone.CR2", 10), 1)
				r.Saved = true
				return r
			}(),
		}

		res, err := Reconcile(ctx, nil, camera, Options{})
		if err != nil {
			t.Fatalf("Reconcile() error = %v", err)
		}

		if len(res.Regressed) != 1 || res.Regressed[0].Path != "/cam/gone.CR2" {
			t.Fatalf("Regressed = %v, want /cam/gone.CR2", res.Regressed)
		}
		if res.Camera[0].Saved {
			t.Error("regressed record still saved")
		}
		if len(res.Plan) != 1 {
			t.Errorf("regressed record missing from plan: %v", res.Plan)
		}
	})

	t.Run("idempotent over unchanged inventories", func(t *testing.T) {
		disk := []model.FileRecord{
			withSum(rec("a.CR2", "/disk/a.CR2", 10), 1),
		}
		camera := []model.FileRecord{
			withSum(rec("a.CR2", "/cam/a.CR2", 10), 1),
			withDate(rec("b.CR2", "/cam/b.CR2", 20), day),
			rec("c.CR2", "/cam/c.CR2", 30),
		}

		first, err := Reconcile(ctx, disk, camera, Options{})
		if err != nil {
			t.Fatalf("first Reconcile() error = %v", err)
		}
		second, err := Reconcile(ctx, disk, first.Camera, Options{})
		if err != nil {
			t.Fatalf("second Reconcile() error = %v", err)
		}

		if first.Matched != second.Matched ||
			first.Duplicates != second.Duplicates ||
			first.Unmatched != second.Unmatched {
			t.Errorf("counts changed: %d/%d/%d vs %d/%d/%d",
				first.Matched, first.Duplicates, first.Unmatched,
				second.Matched, second.Duplicates, second.Unmatched)
		}
		if len(second.Regressed) != 0 {
			t.Errorf("second pass regressed %d records", len(second.Regressed))
		}
		for i := range first.Plan {
			if first.Plan[i].Path != second.Plan[i].Path {
				t.Fatalf("plan differs at %d", i)
			}
		}
	})

	t.Run("camera output is path ordered", func(t *testing.T) {
		camera := []model.FileRecord{
			rec("z.CR2", "/cam/z.CR2", 1),
			rec("a.CR2", "/cam/a.CR2", 1),
		}

		res, err := Reconcile(ctx, nil, camera, Options{})
		if err != nil {
			t.Fatalf("Reconcile() error = %v", err)
		}
		if res.Camera[0].Path != "/cam/a.CR2" {
			t.Errorf("Camera[0].Path = %q, want /cam/a.CR2", res.Camera[0].Path)
		}
	})

	t.Run("duplicate camera path aborts", func(t *testing.T) {
		camera := []model.FileRecord{
			rec("a.CR2", "/cam/a.CR2", 10),
			rec("b.CR2", "/cam/a.CR2", 20),
		}

		_, err := Reconcile(ctx, nil, camera, Options{})
		if !errors.Is(err, ErrStoreInconsistency) {
			t.Fatalf("error = %v, want ErrStoreInconsistency", err)
		}
	})

	t.Run("duplicate disk path aborts", func(t *testing.T) {
		disk := []model.FileRecord{
			rec("a.CR2", "/disk/a.CR2", 10),
			rec("b.CR2", "/disk/a.CR2", 20),
		}

		_, err := Reconcile(ctx, disk, nil, Options{})
		if !errors.Is(err, ErrStoreInconsistency) {
			t.Fatalf("error = %v, want ErrStoreInconsistency", err)
		}
	})

	t.Run("does not mutate caller slices", func(t *testing.T) {
		camera := []model.FileRecord{
			withSum(rec("a.CR2", "/cam/a.CR2", 10), 1),
		}
		disk := []model.FileRecord{
			withSum(rec("a.CR2", "/disk/a.CR2", 10), 1),
		}

		if _, err := Reconcile(ctx, disk, camera, Options{}); err != nil {
			t.Fatalf("Reconcile() error = %v", err)
		}
		if camera[0].Saved {
			t.Error("caller's camera slice was mutated")
		}
	})

	t.Run("honors cancellation", func(t *testing.T) {
		cctx, cancel := context.WithCancel(context.Background())
		cancel()

		camera := []model.FileRecord{rec("a.CR2", "/cam/a.CR2", 10)}
		_, err := Reconcile(cctx, nil, camera, Options{})
		if err == nil {
			t.Fatal("Reconcile() expected error for cancelled context")
		}
	})
}

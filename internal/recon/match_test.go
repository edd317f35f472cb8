package recon

import (
	"testing"

	"rawdb/internal/model"
)

func buildIdx(t *testing.T, records []model.FileRecord) *Index {
	t.Helper()
	idx, err := BuildIndex(records)
	if err != nil {
		t.Fatalf("BuildIndex() error = %v", err)
	}
	return idx
}

func TestMatch(t *testing.T) {
	const day = "2024-01-01T10:00:00"

	t.Run("unique checksum hit is matched", func(t *testing.T) {
		idx := buildIdx(t, []model.FileRecord{
			withSum(rec("other.CR2", "/disk/other.CR2", 99), 7),
		})
		camera := withSum(rec("a.CR2", "/cam/a.CR2", 10), 7)

		v := Match(&camera, idx)
		if v.Kind != Matched {
			t.Fatalf("Kind = %v, want Matched", v.Kind)
		}
		if len(v.Candidates) != 1 || v.Candidates[0].Path != "/disk/other.CR2" {
			t.Errorf("Candidates = %v", v.Candidates)
		}
	})

	t.Run("checksum group hit is duplicate", func(t *testing.T) {
		idx := buildIdx(t, []model.FileRecord{
			withSum(rec("a.CR2", "/disk/1/a.CR2", 10), 7),
			withSum(rec("a.CR2", "/disk/2/a.CR2", 10), 7),
		})
		camera := withSum(rec("a.CR2", "/cam/a.CR2", 10), 7)

		v := Match(&camera, idx)
		if v.Kind != Duplicate {
			t.Fatalf("Kind = %v, want Duplicate", v.Kind)
		}
		if len(v.Candidates) != 2 {
			t.Errorf("len(Candidates) = %d, want 2", len(v.Candidates))
		}
	})

	t.Run("checksum tier outranks composite tiers", func(t *testing.T) {
		// One disk record shares content, a different one shares metadata.
		idx := buildIdx(t, []model.FileRecord{
			withSum(rec("renamed.CR2", "/disk/renamed.CR2", 10), 7),
			withDate(rec("a.CR2", "/disk/a.CR2", 10), day),
		})
		camera := withDate(withSum(rec("a.CR2", "/cam/a.CR2", 10), 7), day)

		v := Match(&camera, idx)
		if v.Kind != Matched {
			t.Fatalf("Kind = %v, want Matched", v.Kind)
		}
		if v.Candidates[0].Path != "/disk/renamed.CR2" {
			t.Errorf("matched %q, want the content match", v.Candidates[0].Path)
		}
	})

	t.Run("falls through to full composite key", func(t *testing.T) {
		idx := buildIdx(t, []model.FileRecord{
			withDate(rec("a.CR2", "/disk/a.CR2", 10), day),
		})
		camera := withDate(rec("a.CR2", "/cam/a.CR2", 10), day)

		v := Match(&camera, idx)
		if v.Kind != Matched {
			t.Fatalf("Kind = %v, want Matched", v.Kind)
		}
	})

	t.Run("falls through to weak composite key", func(t *testing.T) {
		// Size differs, so only (name, date) can match.
		idx := buildIdx(t, []model.FileRecord{
			withDate(rec("a.CR2", "/disk/a.CR2", 999), day),
		})
		camera := withDate(rec("a.CR2", "/cam/a.CR2", 10), day)

		v := Match(&camera, idx)
		if v.Kind != Matched {
			t.Fatalf("Kind = %v, want Matched", v.Kind)
		}
	})

	t.Run("composite tier excludes content-provably different candidates", func(t *testing.T) {
		// Same name, size and date but both checksums present and different:
		// the metadata coincidence must not mask the content difference.
		idx := buildIdx(t, []model.FileRecord{
			withDate(withSum(rec("a.CR2", "/disk/a.CR2", 10), 1), day),
		})
		camera := withDate(withSum(rec("a.CR2", "/cam/a.CR2", 10), 2), day)

		v := Match(&camera, idx)
		if v.Kind != Unmatched {
			t.Fatalf("Kind = %v, want Unmatched", v.Kind)
		}
	})

	t.Run("composite tier keeps checksum-less candidates", func(t *testing.T) {
		idx := buildIdx(t, []model.FileRecord{
			withDate(rec("a.CR2", "/disk/a.CR2", 10), day),
		})
		camera := withDate(withSum(rec("a.CR2", "/cam/a.CR2", 10), 2), day)

		v := Match(&camera, idx)
		if v.Kind != Matched {
			t.Fatalf("Kind = %v, want Matched", v.Kind)
		}
	})

	t.Run("no date and no checksum hit is unmatched", func(t *testing.T) {
		idx := buildIdx(t, []model.FileRecord{
			withDate(rec("a.CR2", "/disk/a.CR2", 10), day),
		})
		camera := rec("a.CR2", "/cam/a.CR2", 10)

		v := Match(&camera, idx)
		if v.Kind != Unmatched {
			t.Fatalf("Kind = %v, want Unmatched", v.Kind)
		}
		if v.Candidates != nil {
			t.Errorf("Candidates = %v, want nil", v.Candidates)
		}
	})

	t.Run("empty index leaves everything unmatched", func(t *testing.T) {
		idx := buildIdx(t, nil)
		camera := withDate(withSum(rec("a.CR2", "/cam/a.CR2", 10), 7), day)

		if v := Match(&camera, idx); v.Kind != Unmatched {
			t.Fatalf("Kind = %v, want Unmatched", v.Kind)
		}
	})
}

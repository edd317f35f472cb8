package recon

import (
	"database/sql"
	"errors"
	"testing"

	"rawdb/internal/model"
)

func rec(name, path string, size int64) model.FileRecord {
	return model.FileRecord{Name: name, Path: path, Size: size}
}

func withDate(r model.FileRecord, date string) model.FileRecord {
	r.Date = sql.NullString{String: date, Valid: true}
	return r
}

func withSum(r model.FileRecord, sum ...byte) model.FileRecord {
	r.Checksum = model.NewChecksum(sum)
	return r
}

func TestBuildIndex(t *testing.T) {
	t.Run("rejects duplicate paths", func(t *testing.T) {
		records := []model.FileRecord{
			rec("a.CR2", "/disk/a.CR2", 10),
			rec("b.CR2", "/disk/a.CR2", 20),
		}

		_, err := BuildIndex(records)
		if err == nil {
			t.Fatal("BuildIndex() expected error for duplicate path")
		}
		if !errors.Is(err, ErrStoreInconsistency) {
			t.Errorf("error = %v, want ErrStoreInconsistency", err)
		}
	})

	t.Run("checksum groups are path ordered", func(t *testing.T) {
		records := []model.FileRecord{
			withSum(rec("a.CR2", "/disk/z/a.CR2", 10), 1),
			withSum(rec("a.CR2", "/disk/a/a.CR2", 10), 1),
			withSum(rec("a.CR2", "/disk/m/a.CR2", 10), 1),
		}

		idx, err := BuildIndex(records)
		if err != nil {
			t.Fatalf("BuildIndex() error = %v", err)
		}

		group := idx.ByChecksum(model.NewChecksum([]byte{1}))
		if len(group) != 3 {
			t.Fatalf("len(group) = %d, want 3", len(group))
		}
		want := []string{"/disk/a/a.CR2", "/disk/m/a.CR2", "/disk/z/a.CR2"}
		for i, p := range want {
			if group[i].Path != p {
				t.Errorf("group[%d].Path = %q, want %q", i, group[i].Path, p)
			}
		}
	})

	t.Run("records without checksum stay out of the checksum table", func(t *testing.T) {
		records := []model.FileRecord{
			rec("a.CR2", "/disk/a.CR2", 10),
		}

		idx, err := BuildIndex(records)
		if err != nil {
			t.Fatalf("BuildIndex() error = %v", err)
		}

		if got := idx.ByChecksum(model.Checksum{}); got != nil {
			t.Errorf("ByChecksum(absent) = %v, want nil", got)
		}
		if len(idx.byChecksum) != 0 {
			t.Errorf("checksum table has %d groups, want 0", len(idx.byChecksum))
		}
	})

	t.Run("records without date stay out of composite tables", func(t *testing.T) {
		records := []model.FileRecord{
			rec("a.CR2", "/disk/a.CR2", 10),
			withDate(rec("b.CR2", "/disk/b.CR2", 20), "2024-01-01T10:00:00"),
		}

		idx, err := BuildIndex(records)
		if err != nil {
			t.Fatalf("BuildIndex() error = %v", err)
		}

		if got := idx.ByNameSizeDate("a.CR2", 10, ""); got != nil {
			t.Errorf("ByNameSizeDate for dateless record = %v, want nil", got)
		}
		if got := idx.ByNameSizeDate("b.CR2", 20, "2024-01-01T10:00:00"); len(got) != 1 {
			t.Errorf("ByNameSizeDate for dated record has %d candidates, want 1", len(got))
		}
		if got := idx.ByNameDate("b.CR2", "2024-01-01T10:00:00"); len(got) != 1 {
			t.Errorf("ByNameDate for dated record has %d candidates, want 1", len(got))
		}
	})

	t.Run("same date different size splits the full key only", func(t *testing.T) {
		records := []model.FileRecord{
			withDate(rec("a.CR2", "/disk/1/a.CR2", 10), "2024-01-01T10:00:00"),
			withDate(rec("a.CR2", "/disk/2/a.CR2", 99), "2024-01-01T10:00:00"),
		}

		idx, err := BuildIndex(records)
		if err != nil {
			t.Fatalf("BuildIndex() error = %v", err)
		}

		if got := idx.ByNameSizeDate("a.CR2", 10, "2024-01-01T10:00:00"); len(got) != 1 {
			t.Errorf("full key group = %d candidates, want 1", len(got))
		}
		if got := idx.ByNameDate("a.CR2", "2024-01-01T10:00:00"); len(got) != 2 {
			t.Errorf("weak key group = %d candidates, want 2", len(got))
		}
	})
}

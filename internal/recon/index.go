package recon

import (
	"sort"

	"rawdb/internal/model"
)

type nameSizeDateKey struct {
	name string
	size int64
	date string
}

type nameDateKey struct {
	name string
	date string
}

// Index holds the identity lookup tables built over the disk inventory at
// the start of a pass. Each table maps a key to the non-empty, path-ordered
// group of disk records sharing it — duplicate keys are preserved as groups,
// never collapsed, since true duplicates on disk are legal.
type Index struct {
	byChecksum     map[string][]*model.FileRecord
	byNameSizeDate map[nameSizeDateKey][]*model.FileRecord
	byNameDate     map[nameDateKey][]*model.FileRecord
}

// BuildIndex constructs the identity index over one inventory. All three
// tables are built eagerly in a single linear pass. A duplicate path in the
// input is reported as ErrStoreInconsistency.
//
// Records without a checksum never enter the checksum table; records without
// a date never enter either composite table.
func BuildIndex(records []model.FileRecord) (*Index, error) {
	idx := &Index{
		byChecksum:     make(map[string][]*model.FileRecord),
		byNameSizeDate: make(map[nameSizeDateKey][]*model.FileRecord),
		byNameDate:     make(map[nameDateKey][]*model.FileRecord),
	}

	seen := make(map[string]struct{}, len(records))
	for i := range records {
		rec := &records[i]
		if _, dup := seen[rec.Path]; dup {
			return nil, duplicatePathError(model.Disk, rec.Path)
		}
		seen[rec.Path] = struct{}{}

		if rec.Checksum.Valid {
			key := rec.Checksum.Key()
			idx.byChecksum[key] = append(idx.byChecksum[key], rec)
		}
		if rec.Date.Valid {
			full := nameSizeDateKey{name: rec.Name, size: rec.Size, date: rec.Date.String}
			idx.byNameSizeDate[full] = append(idx.byNameSizeDate[full], rec)

			weak := nameDateKey{name: rec.Name, date: rec.Date.String}
			idx.byNameDate[weak] = append(idx.byNameDate[weak], rec)
		}
	}

	// Input order is not guaranteed; groups must be path-ordered so that
	// verdicts and conflict reports are deterministic.
	for _, group := range idx.byChecksum {
		sortByPath(group)
	}
	for _, group := range idx.byNameSizeDate {
		sortByPath(group)
	}
	for _, group := range idx.byNameDate {
		sortByPath(group)
	}

	return idx, nil
}

// ByChecksum returns the disk records sharing the given digest.
func (idx *Index) ByChecksum(sum model.Checksum) []*model.FileRecord {
	if !sum.Valid {
		return nil
	}
	return idx.byChecksum[sum.Key()]
}

// ByNameSizeDate returns the disk records sharing the full composite key.
func (idx *Index) ByNameSizeDate(name string, size int64, date string) []*model.FileRecord {
	return idx.byNameSizeDate[nameSizeDateKey{name: name, size: size, date: date}]
}

// ByNameDate returns the disk records sharing the weak composite key.
func (idx *Index) ByNameDate(name string, date string) []*model.FileRecord {
	return idx.byNameDate[nameDateKey{name: name, date: date}]
}

func sortByPath(group []*model.FileRecord) {
	sort.Slice(group, func(i, j int) bool { return group[i].Path < group[j].Path })
}

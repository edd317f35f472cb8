package recon

import "rawdb/internal/model"

// VerdictKind classifies the outcome of matching one camera record.
type VerdictKind int

const (
	// Unmatched means no disk candidate was found at any key tier.
	Unmatched VerdictKind = iota
	// Matched means exactly one disk record matched.
	Matched
	// Duplicate means more than one equally ranked disk record matched.
	Duplicate
)

func (k VerdictKind) String() string {
	switch k {
	case Matched:
		return "matched"
	case Duplicate:
		return "duplicate"
	case Unmatched:
		return "unmatched"
	default:
		return "unknown"
	}
}

// Verdict is the matcher output for one camera record. Candidates holds the
// disk records that matched, in path order: one for Matched, two or more for
// Duplicate, none for Unmatched.
type Verdict struct {
	Kind       VerdictKind
	Candidates []*model.FileRecord
}

// Match classifies a camera record against the index using the key tiers in
// strict priority order: checksum, then (name, size, date), then
// (name, date). The first tier that yields any candidate decides.
//
// Checksum is the only content-true signal; the composite tiers exist for
// records whose hashing has not run yet. To keep a metadata coincidence from
// masking a content-provable difference, composite candidates whose present
// checksum contradicts the camera record's present checksum are excluded.
func Match(rec *model.FileRecord, idx *Index) Verdict {
	if rec.Checksum.Valid {
		if group := idx.ByChecksum(rec.Checksum); len(group) > 0 {
			return verdictFor(group)
		}
	}

	if rec.Date.Valid {
		full := compatibleOnly(rec, idx.ByNameSizeDate(rec.Name, rec.Size, rec.Date.String))
		if len(full) > 0 {
			return verdictFor(full)
		}

		weak := compatibleOnly(rec, idx.ByNameDate(rec.Name, rec.Date.String))
		if len(weak) > 0 {
			return verdictFor(weak)
		}
	}

	return Verdict{Kind: Unmatched}
}

func verdictFor(group []*model.FileRecord) Verdict {
	if len(group) == 1 {
		return Verdict{Kind: Matched, Candidates: group}
	}
	return Verdict{Kind: Duplicate, Candidates: group}
}

// compatibleOnly drops candidates that are content-provably different from
// the camera record. Candidates without a checksum stay in.
func compatibleOnly(rec *model.FileRecord, group []*model.FileRecord) []*model.FileRecord {
	if !rec.Checksum.Valid {
		return group
	}
	var kept []*model.FileRecord
	for _, cand := range group {
		if rec.Checksum.Conflicts(cand.Checksum) {
			continue
		}
		kept = append(kept, cand)
	}
	return kept
}

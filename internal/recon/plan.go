package recon

import (
	"sort"

	"rawdb/internal/model"
)

// PlanTransfers orders transfer candidates deterministically: date ascending
// with unknown dates last, then name, then path. The path tiebreak makes the
// order total, so repeated planning over the same candidate set yields the
// same sequence and an interrupted transfer can resume from a fresh plan.
//
// The input is not modified; the planner performs no I/O.
func PlanTransfers(candidates []model.FileRecord) []model.FileRecord {
	plan := make([]model.FileRecord, len(candidates))
	copy(plan, candidates)

	sort.Slice(plan, func(i, j int) bool {
		return transferLess(&plan[i], &plan[j])
	})
	return plan
}

func transferLess(a, b *model.FileRecord) bool {
	// Unknown dates sort last. model.DateFormat is lexicographically
	// chronological, so plain string comparison orders known dates.
	switch {
	case a.Date.Valid && !b.Date.Valid:
		return true
	case !a.Date.Valid && b.Date.Valid:
		return false
	case a.Date.Valid && b.Date.Valid && a.Date.String != b.Date.String:
		return a.Date.String < b.Date.String
	}
	if a.Name != b.Name {
		return a.Name < b.Name
	}
	return a.Path < b.Path
}

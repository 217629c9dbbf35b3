// Package repository selects, from a catalog of activities and an existing
// enriched table, the activities that still need analyzing.
package repository

import "cycleload/internal/model"

// PendingActivities returns the activities in all that are of a supported
// type and whose id is not already present in existingIDs — the set
// difference that drives incremental processing.
func PendingActivities(all []model.Activity, existingIDs map[int64]bool) []model.Activity {
	var out []model.Activity
	for _, a := range all {
		if !a.IsSupported() {
			continue
		}
		if existingIDs[a.ID] {
			continue
		}
		out = append(out, a)
	}
	return out
}

// ExistingIDs builds the id set of activities already present in an
// enriched table, from the values of that table's id column.
func ExistingIDs(ids []int64) map[int64]bool {
	set := make(map[int64]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}

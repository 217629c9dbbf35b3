package repository

import (
	"testing"

	"cycleload/internal/model"
)

func TestPendingActivitiesFiltersUnsupportedAndExisting(t *testing.T) {
	all := []model.Activity{
		{ID: 1, Type: model.Ride},
		{ID: 2, Type: model.Walk},
		{ID: 3, Type: model.Run},
	}
	existing := ExistingIDs([]int64{1})

	pending := PendingActivities(all, existing)
	if len(pending) != 1 {
		t.Fatalf("got %d pending, want 1", len(pending))
	}
	if pending[0].ID != 3 {
		t.Errorf("pending[0].ID = %d, want 3", pending[0].ID)
	}
}

package repository

import (
	"testing"

	"neonclub_backend/internal/model"
	"neonclub_backend/internal/testutil"
)

func TestWorkshopReserveRespectsCapacity(t *testing.T) {
	db := testutil.DB(t)
	repo := NewWorkshopRepository(db)
	w := testutil.SeedWorkshop(t, db, 1, 0, 2)

	for i, want := range []bool{true, true, false} {
		ok, err := repo.Reserve(w.ID)
		if err != nil {
			t.Fatalf("Reserve #%d: %v", i, err)
		}
		if ok != want {
			t.Fatalf("Reserve #%d = %v, want %v", i, ok, want)
		}
	}

	if err := repo.Release(w.ID); err != nil {
		t.Fatalf("Release: %v", err)
	}
	got, err := repo.FindByID(w.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if got.RegisteredCount != 1 {
		t.Fatalf("registered = %d, want 1", got.RegisteredCount)
	}
}

func TestWorkshopReserveUnlimited(t *testing.T) {
	db := testutil.DB(t)
	repo := NewWorkshopRepository(db)
	w := testutil.SeedWorkshop(t, db, 1, 0, 0)

	for i := 0; i < 5; i++ {
		if ok, err := repo.Reserve(w.ID); err != nil || !ok {
			t.Fatalf("Reserve #%d = %v, %v", i, ok, err)
		}
	}
	var got model.Workshop
	db.First(&got, w.ID)
	if got.RegisteredCount != 5 {
		t.Fatalf("registered = %d, want 5", got.RegisteredCount)
	}
}

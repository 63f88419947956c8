package bookmarkstore_test

import (
	"testing"

	"github.com/google/uuid"

	bookmarkstore "github.com/tripbook/tripbook/internal/app/store/bookmarks"
	"github.com/tripbook/tripbook/internal/testutil"
)

func TestToggle(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	store := bookmarkstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	member := fixtures.CreateMember(ctx, "reader")
	trip := fixtures.CreateTrip(ctx, fixtures.CreateMember(ctx, "leader").ID, "Jeju", false)

	on, err := store.Toggle(ctx, member.ID, trip.ID)
	if err != nil {
		t.Fatalf("toggle on: %v", err)
	}
	if !on {
		t.Error("first toggle should bookmark")
	}
	exists, err := store.Exists(ctx, member.ID, trip.ID)
	if err != nil || !exists {
		t.Errorf("exists after toggle on: got (%v, %v)", exists, err)
	}

	on, err = store.Toggle(ctx, member.ID, trip.ID)
	if err != nil {
		t.Fatalf("toggle off: %v", err)
	}
	if on {
		t.Error("second toggle should unbookmark")
	}
	exists, err = store.Exists(ctx, member.ID, trip.ID)
	if err != nil || exists {
		t.Errorf("exists after toggle off: got (%v, %v)", exists, err)
	}
}

func TestCountByTripIDs(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	store := bookmarkstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	leader := fixtures.CreateMember(ctx, "leader")
	popular := fixtures.CreateTrip(ctx, leader.ID, "Popular", false)
	quiet := fixtures.CreateTrip(ctx, leader.ID, "Quiet", false)

	for i := 0; i < 3; i++ {
		fan := fixtures.CreateMember(ctx, uuid.New().String()[:8])
		fixtures.CreateBookmark(ctx, fan.ID, popular.ID)
	}

	counts, err := store.CountByTripIDs(ctx, []uuid.UUID{popular.ID, quiet.ID})
	if err != nil {
		t.Fatalf("CountByTripIDs: %v", err)
	}
	if counts[popular.ID] != 3 {
		t.Errorf("popular count: got %d, want 3", counts[popular.ID])
	}
	if _, ok := counts[quiet.ID]; ok {
		t.Error("unbookmarked trip should be absent from the map")
	}
}

func TestListByMemberPaging(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	store := bookmarkstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	member := fixtures.CreateMember(ctx, "reader")
	leader := fixtures.CreateMember(ctx, "leader")
	for i := 0; i < 5; i++ {
		trip := fixtures.CreateTrip(ctx, leader.ID, "Trip", false)
		fixtures.CreateBookmark(ctx, member.ID, trip.ID)
	}

	page0, err := store.ListByMember(ctx, member.ID, 0, 3)
	if err != nil {
		t.Fatalf("page 0: %v", err)
	}
	page1, err := store.ListByMember(ctx, member.ID, 1, 3)
	if err != nil {
		t.Fatalf("page 1: %v", err)
	}
	if len(page0) != 3 || len(page1) != 2 {
		t.Errorf("page sizes: got (%d, %d), want (3, 2)", len(page0), len(page1))
	}
}

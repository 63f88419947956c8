package bookmarks_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tripbook/tripbook/internal/app/features/bookmarks"
	"github.com/tripbook/tripbook/internal/app/policy/trippolicy"
	tripstore "github.com/tripbook/tripbook/internal/app/store/trips"
	"github.com/tripbook/tripbook/internal/domain/models"
)

type fakeBookmarkStore struct {
	rows []models.Bookmark
}

func (f *fakeBookmarkStore) Toggle(ctx context.Context, memberID, tripID uuid.UUID) (bool, error) {
	for i, b := range f.rows {
		if b.MemberID == memberID && b.TripID == tripID {
			f.rows = append(f.rows[:i], f.rows[i+1:]...)
			return false, nil
		}
	}
	f.rows = append(f.rows, models.Bookmark{ID: uuid.New(), MemberID: memberID, TripID: tripID})
	return true, nil
}

func (f *fakeBookmarkStore) ListByMember(ctx context.Context, memberID uuid.UUID, page, pageSize int) ([]models.Bookmark, error) {
	var mine []models.Bookmark
	for _, b := range f.rows {
		if b.MemberID == memberID {
			mine = append(mine, b)
		}
	}
	start := page * pageSize
	if start >= len(mine) {
		return nil, nil
	}
	end := start + pageSize
	if end > len(mine) {
		end = len(mine)
	}
	return mine[start:end], nil
}

type fakeTripReader struct {
	m map[uuid.UUID]models.Trip
}

func (f *fakeTripReader) FindByID(ctx context.Context, id uuid.UUID) (models.Trip, error) {
	t, ok := f.m[id]
	if !ok {
		return models.Trip{}, tripstore.ErrNotFound
	}
	return t, nil
}

func (f *fakeTripReader) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Trip, error) {
	var out []models.Trip
	for _, id := range ids {
		if t, ok := f.m[id]; ok {
			out = append(out, t)
		}
	}
	return out, nil
}

type fakeAccepted struct {
	pairs map[[2]uuid.UUID]bool
}

func (f *fakeAccepted) AcceptedExists(ctx context.Context, tripID, memberID uuid.UUID) (bool, error) {
	return f.pairs[[2]uuid.UUID{tripID, memberID}], nil
}

func newService(tripReader *fakeTripReader, store *fakeBookmarkStore, accepted *fakeAccepted, pageSize int) *bookmarks.Service {
	policy := trippolicy.New(accepted, nil)
	return bookmarks.NewService(store, tripReader, policy, pageSize, zap.NewNop())
}

func TestToggle(t *testing.T) {
	member := uuid.New()
	trip := models.Trip{ID: uuid.New(), LeaderID: uuid.New(), Private: false}
	reader := &fakeTripReader{m: map[uuid.UUID]models.Trip{trip.ID: trip}}
	svc := newService(reader, &fakeBookmarkStore{}, &fakeAccepted{}, 10)
	ctx := context.Background()

	on, err := svc.Toggle(ctx, member, trip.ID)
	if err != nil {
		t.Fatalf("first toggle: %v", err)
	}
	if !on {
		t.Error("first toggle should bookmark")
	}

	on, err = svc.Toggle(ctx, member, trip.ID)
	if err != nil {
		t.Fatalf("second toggle: %v", err)
	}
	if on {
		t.Error("second toggle should unbookmark")
	}
}

func TestToggle_Guards(t *testing.T) {
	member := uuid.New()
	private := models.Trip{ID: uuid.New(), LeaderID: uuid.New(), Private: true}
	reader := &fakeTripReader{m: map[uuid.UUID]models.Trip{private.ID: private}}
	svc := newService(reader, &fakeBookmarkStore{}, &fakeAccepted{}, 10)
	ctx := context.Background()

	if _, err := svc.Toggle(ctx, member, uuid.New()); !errors.Is(err, tripstore.ErrNotFound) {
		t.Errorf("missing trip: got %v, want store not-found", err)
	}
	if _, err := svc.Toggle(ctx, member, private.ID); !errors.Is(err, bookmarks.ErrNotAuthorized) {
		t.Errorf("unreadable trip: got %v, want ErrNotAuthorized", err)
	}
}

func TestList_FiltersHiddenWithoutBackfill(t *testing.T) {
	member := uuid.New()
	reader := &fakeTripReader{m: make(map[uuid.UUID]models.Trip)}
	store := &fakeBookmarkStore{}
	accepted := &fakeAccepted{pairs: make(map[[2]uuid.UUID]bool)}
	svc := newService(reader, store, accepted, 3)
	ctx := context.Background()

	// Three bookmarks fill page zero exactly. The middle trip then turns
	// private, and a fourth bookmark lands on page one.
	var ids []uuid.UUID
	for i := 0; i < 4; i++ {
		trip := models.Trip{ID: uuid.New(), LeaderID: uuid.New(), Private: false}
		reader.m[trip.ID] = trip
		store.Toggle(ctx, member, trip.ID)
		ids = append(ids, trip.ID)
	}
	hidden := reader.m[ids[1]]
	hidden.Private = true
	reader.m[ids[1]] = hidden

	page0, err := svc.List(ctx, member, 0)
	if err != nil {
		t.Fatalf("List page 0: %v", err)
	}
	// The hidden trip is filtered after the fetch; its slot is not
	// backfilled from page one.
	if len(page0) != 2 {
		t.Fatalf("page 0: got %d items, want 2", len(page0))
	}
	for _, item := range page0 {
		if item.ID == ids[1] {
			t.Error("hidden trip leaked into the listing")
		}
	}

	page1, err := svc.List(ctx, member, 1)
	if err != nil {
		t.Fatalf("List page 1: %v", err)
	}
	if len(page1) != 1 || page1[0].ID != ids[3] {
		t.Errorf("page 1: got %+v, want the fourth trip", page1)
	}
}

func TestList_AcceptedMemberSeesPrivateBookmarks(t *testing.T) {
	member := uuid.New()
	private := models.Trip{ID: uuid.New(), LeaderID: uuid.New(), Private: true}
	reader := &fakeTripReader{m: map[uuid.UUID]models.Trip{private.ID: private}}
	store := &fakeBookmarkStore{}
	accepted := &fakeAccepted{pairs: map[[2]uuid.UUID]bool{{private.ID, member}: true}}
	svc := newService(reader, store, accepted, 10)
	ctx := context.Background()

	store.Toggle(ctx, member, private.ID)

	items, err := svc.List(ctx, member, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(items) != 1 || items[0].ID != private.ID {
		t.Errorf("items: %+v, want the private trip", items)
	}
}

func TestList_SkipsDeletedTrips(t *testing.T) {
	member := uuid.New()
	reader := &fakeTripReader{m: make(map[uuid.UUID]models.Trip)}
	store := &fakeBookmarkStore{}
	svc := newService(reader, store, &fakeAccepted{}, 10)
	ctx := context.Background()

	trip := models.Trip{ID: uuid.New(), LeaderID: uuid.New()}
	reader.m[trip.ID] = trip
	store.Toggle(ctx, member, trip.ID)
	store.Toggle(ctx, member, uuid.New()) // bookmark outliving a deleted trip

	items, err := svc.List(ctx, member, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(items) != 1 || items[0].ID != trip.ID {
		t.Errorf("items: %+v, want only the live trip", items)
	}
}

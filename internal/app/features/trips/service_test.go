package trips_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tripbook/tripbook/internal/app/features/trips"
	"github.com/tripbook/tripbook/internal/app/policy/trippolicy"
	locationstore "github.com/tripbook/tripbook/internal/app/store/locations"
	participantstore "github.com/tripbook/tripbook/internal/app/store/participants"
	tripstore "github.com/tripbook/tripbook/internal/app/store/trips"
	"github.com/tripbook/tripbook/internal/app/system/authcache"
	"github.com/tripbook/tripbook/internal/domain/events"
	"github.com/tripbook/tripbook/internal/domain/models"
)

// The fakes below mirror the store contracts, sentinel errors included, so
// the service's transition logic can be exercised without a database.

type pairKey struct {
	tripID   uuid.UUID
	memberID uuid.UUID
}

type fakeTrips struct {
	m map[uuid.UUID]models.Trip
}

func (f *fakeTrips) Create(ctx context.Context, leaderID uuid.UUID, title, description string, private bool) (models.Trip, error) {
	t := models.Trip{ID: uuid.New(), Title: title, Description: description, Private: private, LeaderID: leaderID}
	f.m[t.ID] = t
	return t, nil
}

func (f *fakeTrips) FindByID(ctx context.Context, id uuid.UUID) (models.Trip, error) {
	t, ok := f.m[id]
	if !ok {
		return models.Trip{}, tripstore.ErrNotFound
	}
	return t, nil
}

func (f *fakeTrips) UpdateMeta(ctx context.Context, id uuid.UUID, title, description string, private bool) error {
	t, ok := f.m[id]
	if !ok {
		return tripstore.ErrNotFound
	}
	t.Title, t.Description, t.Private = title, description, private
	f.m[id] = t
	return nil
}

type fakeParticipants struct {
	m map[pairKey]models.Participant
}

func (f *fakeParticipants) Create(ctx context.Context, tripID, memberID uuid.UUID, state models.ParticipantState) (models.Participant, error) {
	p := models.Participant{ID: uuid.New(), TripID: tripID, MemberID: memberID, State: state}
	f.m[pairKey{tripID, memberID}] = p
	return p, nil
}

func (f *fakeParticipants) FindByPair(ctx context.Context, tripID, memberID uuid.UUID) (models.Participant, error) {
	p, ok := f.m[pairKey{tripID, memberID}]
	if !ok {
		return models.Participant{}, participantstore.ErrNotFound
	}
	return p, nil
}

func (f *fakeParticipants) AcceptedExists(ctx context.Context, tripID, memberID uuid.UUID) (bool, error) {
	p, ok := f.m[pairKey{tripID, memberID}]
	return ok && p.State == models.ParticipantAccepted, nil
}

func (f *fakeParticipants) Accept(ctx context.Context, tripID, memberID uuid.UUID) error {
	p, ok := f.m[pairKey{tripID, memberID}]
	if !ok {
		return participantstore.ErrNotFound
	}
	if p.State != models.ParticipantPending {
		return participantstore.ErrNotPending
	}
	p.State = models.ParticipantAccepted
	f.m[pairKey{tripID, memberID}] = p
	return nil
}

func (f *fakeParticipants) Delete(ctx context.Context, tripID, memberID uuid.UUID) error {
	if _, ok := f.m[pairKey{tripID, memberID}]; !ok {
		return participantstore.ErrNotFound
	}
	delete(f.m, pairKey{tripID, memberID})
	return nil
}

func (f *fakeParticipants) FilterWithoutRow(ctx context.Context, tripID uuid.UUID, memberIDs []uuid.UUID) ([]uuid.UUID, error) {
	var out []uuid.UUID
	for _, id := range memberIDs {
		if _, ok := f.m[pairKey{tripID, id}]; !ok {
			out = append(out, id)
		}
	}
	return out, nil
}

type fakeMembers struct {
	known map[uuid.UUID]bool
}

func (f *fakeMembers) ExistAll(ctx context.Context, ids []uuid.UUID) (bool, error) {
	for _, id := range ids {
		if !f.known[id] {
			return false, nil
		}
	}
	return true, nil
}

type fakeLocations struct {
	rows []models.Location
}

func (f *fakeLocations) Create(ctx context.Context, tripID uuid.UUID, name, thumbnailPath string) (models.Location, error) {
	loc := models.Location{ID: uuid.New(), TripID: tripID, Name: name, ThumbnailPath: thumbnailPath, CreatedAt: time.Now()}
	f.rows = append(f.rows, loc)
	return loc, nil
}

func (f *fakeLocations) Latest(ctx context.Context, tripID uuid.UUID) (models.Location, error) {
	for i := len(f.rows) - 1; i >= 0; i-- {
		if f.rows[i].TripID == tripID {
			return f.rows[i], nil
		}
	}
	return models.Location{}, locationstore.ErrNotFound
}

func (f *fakeLocations) ListByTrip(ctx context.Context, tripID uuid.UUID) ([]models.Location, error) {
	var out []models.Location
	for _, loc := range f.rows {
		if loc.TripID == tripID {
			out = append(out, loc)
		}
	}
	return out, nil
}

// passthroughTx runs the unit of work directly; commit semantics are the
// store tests' concern.
type passthroughTx struct{}

func (passthroughTx) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type recordingPublisher struct {
	published []events.Event
}

func (p *recordingPublisher) Publish(evts ...events.Event) {
	p.published = append(p.published, evts...)
}

type harness struct {
	svc          *trips.Service
	trips        *fakeTrips
	participants *fakeParticipants
	members      *fakeMembers
	locations    *fakeLocations
	pub          *recordingPublisher
}

func newHarness(t *testing.T, knownMembers ...uuid.UUID) *harness {
	t.Helper()
	h := &harness{
		trips:        &fakeTrips{m: make(map[uuid.UUID]models.Trip)},
		participants: &fakeParticipants{m: make(map[pairKey]models.Participant)},
		members:      &fakeMembers{known: make(map[uuid.UUID]bool)},
		locations:    &fakeLocations{},
		pub:          &recordingPublisher{},
	}
	for _, id := range knownMembers {
		h.members.known[id] = true
	}
	policy := trippolicy.New(h.participants, authcache.New(time.Minute))
	h.svc = trips.NewService(h.trips, h.participants, h.members, h.locations, policy, passthroughTx{}, h.pub, zap.NewNop())
	return h
}

func (h *harness) createTrip(t *testing.T, leaderID uuid.UUID, private bool, invitees ...uuid.UUID) models.Trip {
	t.Helper()
	trip, err := h.svc.Create(context.Background(), leaderID, trips.CreateInput{
		Title:      "Jeju Weekend",
		Private:    private,
		InviteeIDs: invitees,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	return trip
}

func TestCreate_LeaderAcceptedInviteesPending(t *testing.T) {
	leader, invitee := uuid.New(), uuid.New()
	h := newHarness(t, leader, invitee)

	trip := h.createTrip(t, leader, true, invitee, invitee, leader) // dupes and self collapse

	leaderRow, err := h.participants.FindByPair(context.Background(), trip.ID, leader)
	if err != nil {
		t.Fatalf("leader row: %v", err)
	}
	if leaderRow.State != models.ParticipantAccepted {
		t.Errorf("leader state: got %s, want ACCEPTED", leaderRow.State)
	}

	inviteeRow, err := h.participants.FindByPair(context.Background(), trip.ID, invitee)
	if err != nil {
		t.Fatalf("invitee row: %v", err)
	}
	if inviteeRow.State != models.ParticipantPending {
		t.Errorf("invitee state: got %s, want PENDING", inviteeRow.State)
	}

	if len(h.pub.published) != 1 {
		t.Fatalf("published events: got %d, want 1", len(h.pub.published))
	}
	evt, ok := h.pub.published[0].(events.TripCreateEvent)
	if !ok {
		t.Fatalf("event type: got %T", h.pub.published[0])
	}
	if len(evt.ParticipantIDs) != 2 {
		t.Errorf("event participants: got %v, want leader and one invitee", evt.ParticipantIDs)
	}
}

func TestCreate_UnknownInviteeRollsBack(t *testing.T) {
	leader := uuid.New()
	h := newHarness(t, leader)

	_, err := h.svc.Create(context.Background(), leader, trips.CreateInput{
		Title:      "Jeju",
		InviteeIDs: []uuid.UUID{uuid.New()},
	})
	if !errors.Is(err, trips.ErrUnknownInvitee) {
		t.Fatalf("err: got %v, want ErrUnknownInvitee", err)
	}
	if len(h.pub.published) != 0 {
		t.Error("no event should be published when the transaction fails")
	}
}

func TestInvite_RequiresAcceptedInviter(t *testing.T) {
	leader, member, invitee := uuid.New(), uuid.New(), uuid.New()
	h := newHarness(t, leader, member, invitee)
	trip := h.createTrip(t, leader, true)

	// A pending member cannot invite.
	h.participants.Create(context.Background(), trip.ID, member, models.ParticipantPending)
	err := h.svc.Invite(context.Background(), trip.ID, member, []uuid.UUID{invitee})
	if !errors.Is(err, trips.ErrNotAuthorized) {
		t.Fatalf("pending inviter: got %v, want ErrNotAuthorized", err)
	}

	// An accepted member can. Acceptance goes through the service so the
	// cached denial from the failed attempt above is invalidated.
	if err := h.svc.Accept(context.Background(), trip.ID, member); err != nil {
		t.Fatalf("accept: %v", err)
	}
	if err := h.svc.Invite(context.Background(), trip.ID, member, []uuid.UUID{invitee}); err != nil {
		t.Fatalf("accepted inviter: %v", err)
	}
	row, err := h.participants.FindByPair(context.Background(), trip.ID, invitee)
	if err != nil || row.State != models.ParticipantPending {
		t.Errorf("invitee row: got (%+v, %v), want PENDING", row, err)
	}
}

func TestInvite_AlreadyInvitedIsIdempotent(t *testing.T) {
	leader, invitee := uuid.New(), uuid.New()
	h := newHarness(t, leader, invitee)
	trip := h.createTrip(t, leader, true, invitee)
	publishedBefore := len(h.pub.published)

	if err := h.svc.Invite(context.Background(), trip.ID, leader, []uuid.UUID{invitee}); err != nil {
		t.Fatalf("re-invite: %v", err)
	}
	row, _ := h.participants.FindByPair(context.Background(), trip.ID, invitee)
	if row.State != models.ParticipantPending {
		t.Errorf("state after re-invite: got %s, want PENDING", row.State)
	}
	if len(h.pub.published) != publishedBefore {
		t.Error("a no-op invite should not publish an event")
	}
}

func TestAccept_Transitions(t *testing.T) {
	leader, invitee, outsider := uuid.New(), uuid.New(), uuid.New()
	h := newHarness(t, leader, invitee)
	trip := h.createTrip(t, leader, true, invitee)
	ctx := context.Background()

	if err := h.svc.Accept(ctx, trip.ID, outsider); !errors.Is(err, trips.ErrNotInvited) {
		t.Errorf("outsider accept: got %v, want ErrNotInvited", err)
	}

	if err := h.svc.Accept(ctx, trip.ID, invitee); err != nil {
		t.Fatalf("accept: %v", err)
	}
	row, _ := h.participants.FindByPair(ctx, trip.ID, invitee)
	if row.State != models.ParticipantAccepted {
		t.Errorf("state: got %s, want ACCEPTED", row.State)
	}

	if err := h.svc.Accept(ctx, trip.ID, invitee); !errors.Is(err, trips.ErrAlreadyAccepted) {
		t.Errorf("double accept: got %v, want ErrAlreadyAccepted", err)
	}

	if err := h.svc.Accept(ctx, uuid.New(), invitee); !errors.Is(err, tripstore.ErrNotFound) {
		t.Errorf("accept on missing trip: got %v, want store not-found", err)
	}
}

func TestAccept_MakesPrivateTripReadableDespiteCache(t *testing.T) {
	leader, invitee := uuid.New(), uuid.New()
	h := newHarness(t, leader, invitee)
	trip := h.createTrip(t, leader, true, invitee)
	ctx := context.Background()

	// Prime the cache with a denial.
	if _, _, err := h.svc.Detail(ctx, trip.ID, invitee); !errors.Is(err, trips.ErrNotAuthorized) {
		t.Fatalf("pending detail: got %v, want ErrNotAuthorized", err)
	}

	if err := h.svc.Accept(ctx, trip.ID, invitee); err != nil {
		t.Fatalf("accept: %v", err)
	}

	if _, _, err := h.svc.Detail(ctx, trip.ID, invitee); err != nil {
		t.Errorf("detail right after accept: %v", err)
	}
}

func TestDeny_OnlyPendingRows(t *testing.T) {
	leader, invitee := uuid.New(), uuid.New()
	h := newHarness(t, leader, invitee)
	trip := h.createTrip(t, leader, true, invitee)
	ctx := context.Background()

	if err := h.svc.Deny(ctx, trip.ID, uuid.New()); !errors.Is(err, trips.ErrNotInvited) {
		t.Errorf("deny without row: got %v, want ErrNotInvited", err)
	}

	if err := h.svc.Deny(ctx, trip.ID, invitee); err != nil {
		t.Fatalf("deny: %v", err)
	}
	if _, err := h.participants.FindByPair(ctx, trip.ID, invitee); !errors.Is(err, participantstore.ErrNotFound) {
		t.Error("denied row should be hard deleted")
	}

	// An accepted member cannot deny their way out.
	h.participants.Create(ctx, trip.ID, invitee, models.ParticipantAccepted)
	if err := h.svc.Deny(ctx, trip.ID, invitee); !errors.Is(err, trips.ErrAlreadyAccepted) {
		t.Errorf("deny accepted row: got %v, want ErrAlreadyAccepted", err)
	}
}

func TestRemove_LeaderOnlyAndLeaderImmovable(t *testing.T) {
	leader, member := uuid.New(), uuid.New()
	h := newHarness(t, leader, member)
	trip := h.createTrip(t, leader, true, member)
	ctx := context.Background()

	if err := h.svc.Remove(ctx, trip.ID, member, leader); !errors.Is(err, trips.ErrNotAuthorized) {
		t.Errorf("non-leader remove: got %v, want ErrNotAuthorized", err)
	}
	if err := h.svc.Remove(ctx, trip.ID, leader, leader); !errors.Is(err, trips.ErrLeaderImmovable) {
		t.Errorf("remove leader: got %v, want ErrLeaderImmovable", err)
	}
	if err := h.svc.Remove(ctx, trip.ID, leader, uuid.New()); !errors.Is(err, trips.ErrNotMember) {
		t.Errorf("remove stranger: got %v, want ErrNotMember", err)
	}

	if err := h.svc.Remove(ctx, trip.ID, leader, member); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, err := h.participants.FindByPair(ctx, trip.ID, member); !errors.Is(err, participantstore.ErrNotFound) {
		t.Error("removed row should be hard deleted")
	}

	last := h.pub.published[len(h.pub.published)-1]
	if _, ok := last.(events.TripKickOutEvent); !ok {
		t.Errorf("last event: got %T, want TripKickOutEvent", last)
	}
}

func TestRemove_RevokesReadImmediately(t *testing.T) {
	leader, member := uuid.New(), uuid.New()
	h := newHarness(t, leader, member)
	trip := h.createTrip(t, leader, true, member)
	ctx := context.Background()

	h.participants.Accept(ctx, trip.ID, member)
	if _, _, err := h.svc.Detail(ctx, trip.ID, member); err != nil {
		t.Fatalf("member detail: %v", err)
	}

	if err := h.svc.Remove(ctx, trip.ID, leader, member); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, _, err := h.svc.Detail(ctx, trip.ID, member); !errors.Is(err, trips.ErrNotAuthorized) {
		t.Errorf("detail after removal: got %v, want ErrNotAuthorized (no stale cache)", err)
	}
}

func TestLeave(t *testing.T) {
	leader, member := uuid.New(), uuid.New()
	h := newHarness(t, leader, member)
	trip := h.createTrip(t, leader, true, member)
	ctx := context.Background()

	if err := h.svc.Leave(ctx, trip.ID, leader); !errors.Is(err, trips.ErrLeaderImmovable) {
		t.Errorf("leader leave: got %v, want ErrLeaderImmovable", err)
	}

	// Pending members deny, they don't leave.
	if err := h.svc.Leave(ctx, trip.ID, member); !errors.Is(err, trips.ErrNotMember) {
		t.Errorf("pending leave: got %v, want ErrNotMember", err)
	}

	h.participants.Accept(ctx, trip.ID, member)
	if err := h.svc.Leave(ctx, trip.ID, member); err != nil {
		t.Fatalf("leave: %v", err)
	}
	if _, err := h.participants.FindByPair(ctx, trip.ID, member); !errors.Is(err, participantstore.ErrNotFound) {
		t.Error("left row should be hard deleted")
	}
}

func TestDetail_NotFoundVersusForbidden(t *testing.T) {
	leader, outsider := uuid.New(), uuid.New()
	h := newHarness(t, leader)
	private := h.createTrip(t, leader, true)
	public := h.createTrip(t, leader, false)
	ctx := context.Background()

	if _, _, err := h.svc.Detail(ctx, uuid.New(), outsider); !errors.Is(err, tripstore.ErrNotFound) {
		t.Errorf("missing trip: got %v, want store not-found", err)
	}
	if _, _, err := h.svc.Detail(ctx, private.ID, outsider); !errors.Is(err, trips.ErrNotAuthorized) {
		t.Errorf("private trip: got %v, want ErrNotAuthorized", err)
	}
	if _, _, err := h.svc.Detail(ctx, public.ID, outsider); err != nil {
		t.Errorf("public trip: %v", err)
	}
}

func TestUpdateMeta_LeaderOnly(t *testing.T) {
	leader, member := uuid.New(), uuid.New()
	h := newHarness(t, leader, member)
	trip := h.createTrip(t, leader, false)
	ctx := context.Background()

	err := h.svc.UpdateMeta(ctx, trip.ID, member, "New", "desc", true)
	if !errors.Is(err, trips.ErrNotAuthorized) {
		t.Fatalf("non-leader update: got %v, want ErrNotAuthorized", err)
	}

	if err := h.svc.UpdateMeta(ctx, trip.ID, leader, "New", "desc", true); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, _ := h.trips.FindByID(ctx, trip.ID)
	if got.Title != "New" || !got.Private {
		t.Errorf("trip after update: %+v", got)
	}

	last := h.pub.published[len(h.pub.published)-1]
	evt, ok := last.(events.TripUpdateEvent)
	if !ok {
		t.Fatalf("last event: got %T, want TripUpdateEvent", last)
	}
	if evt.Trip.Title != "New" {
		t.Errorf("event carries stale title %q", evt.Trip.Title)
	}
}

func TestAddLocation_ConsecutiveSameNameSharesRow(t *testing.T) {
	leader := uuid.New()
	h := newHarness(t, leader)
	trip := h.createTrip(t, leader, false)
	ctx := context.Background()

	first, err := h.svc.AddLocation(ctx, trip.ID, leader, "Seongsan", "/thumb/1.jpg")
	if err != nil {
		t.Fatalf("first add: %v", err)
	}
	again, err := h.svc.AddLocation(ctx, trip.ID, leader, "Seongsan", "/thumb/2.jpg")
	if err != nil {
		t.Fatalf("repeat add: %v", err)
	}
	if again.ID != first.ID {
		t.Error("consecutive posts at the same place should share one row")
	}

	other, err := h.svc.AddLocation(ctx, trip.ID, leader, "Hallasan", "")
	if err != nil {
		t.Fatalf("new place: %v", err)
	}
	back, err := h.svc.AddLocation(ctx, trip.ID, leader, "Seongsan", "")
	if err != nil {
		t.Fatalf("return visit: %v", err)
	}
	if back.ID == first.ID || back.ID == other.ID {
		t.Error("a return visit is a new row, not the old one")
	}

	// One LocationAddEvent per created row.
	var adds int
	for _, e := range h.pub.published {
		if _, ok := e.(events.LocationAddEvent); ok {
			adds++
		}
	}
	if adds != 3 {
		t.Errorf("LocationAddEvents: got %d, want 3", adds)
	}
}

func TestAddLocation_RequiresWriteCapability(t *testing.T) {
	leader, outsider := uuid.New(), uuid.New()
	h := newHarness(t, leader)
	trip := h.createTrip(t, leader, false) // public, still not writable by outsiders

	_, err := h.svc.AddLocation(context.Background(), trip.ID, outsider, "Seongsan", "")
	if !errors.Is(err, trips.ErrNotAuthorized) {
		t.Errorf("outsider add: got %v, want ErrNotAuthorized", err)
	}
}

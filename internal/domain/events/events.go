// Package events defines the immutable domain facts emitted by write
// operations against the membership store. Events are constructed inside the
// transaction that performs the state change and released to handlers only
// after that transaction commits. There is no persisted event log: delivery
// is at-least-once, best effort, and a lost event leaves the search index
// stale until a later write or an administrative rebuild catches it up.
package events

import (
	"github.com/google/uuid"

	"github.com/tripbook/tripbook/internal/domain/models"
)

// Event is a domain fact consumed by the index projector.
type Event interface {
	// Name identifies the event type for logging and dispatch.
	Name() string
	// ShardKey groups events that must be handled in publish order. Events
	// sharing a key are delivered to the same worker; events on different
	// keys may be reordered, which the projector's idempotent handlers and
	// versioned writes tolerate. Trip-scoped events key on the trip id, so
	// an invite and the kickout that follows it never race each other.
	ShardKey() string
}

// TripCreateEvent records that a trip was created. ParticipantIDs holds the
// leader and every invited member, so the projector can stamp the trip onto
// each of their member documents.
type TripCreateEvent struct {
	Trip           models.Trip
	ParticipantIDs []uuid.UUID
}

func (TripCreateEvent) Name() string { return "trip.create" }

func (e TripCreateEvent) ShardKey() string { return e.Trip.ID.String() }

// TripUpdateEvent records that a trip's title, description, or privacy
// changed, so the projected document can be refreshed.
type TripUpdateEvent struct {
	Trip models.Trip
}

func (TripUpdateEvent) Name() string { return "trip.update" }

func (e TripUpdateEvent) ShardKey() string { return e.Trip.ID.String() }

// TripInviteEvent records that members were invited to an existing trip.
type TripInviteEvent struct {
	TripID         uuid.UUID
	ParticipantIDs []uuid.UUID
}

func (TripInviteEvent) Name() string { return "trip.invite" }

func (e TripInviteEvent) ShardKey() string { return e.TripID.String() }

// TripKickOutEvent records that a member left a trip, denied an invitation,
// or was removed by the leader. The projector retracts the trip reference
// from the member's document.
type TripKickOutEvent struct {
	TripID   uuid.UUID
	MemberID uuid.UUID
}

func (TripKickOutEvent) Name() string { return "trip.kickout" }

func (e TripKickOutEvent) ShardKey() string { return e.TripID.String() }

// MemberRegisterEvent records that a new member registered.
type MemberRegisterEvent struct {
	Member models.Member
}

func (MemberRegisterEvent) Name() string { return "member.register" }

func (e MemberRegisterEvent) ShardKey() string { return e.Member.ID.String() }

// LocationAddEvent records that a trip gained a new named location.
type LocationAddEvent struct {
	TripID       uuid.UUID
	LocationName string
}

func (LocationAddEvent) Name() string { return "location.add" }

func (e LocationAddEvent) ShardKey() string { return e.TripID.String() }

// LocationRemoveEvent records that a named location was removed from a trip.
type LocationRemoveEvent struct {
	TripID       uuid.UUID
	LocationName string
}

func (LocationRemoveEvent) Name() string { return "location.remove" }

func (e LocationRemoveEvent) ShardKey() string { return e.TripID.String() }

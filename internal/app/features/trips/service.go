// internal/app/features/trips/service.go
package trips

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tripbook/tripbook/internal/app/policy/trippolicy"
	"github.com/tripbook/tripbook/internal/app/store/locations"
	"github.com/tripbook/tripbook/internal/app/store/participants"
	"github.com/tripbook/tripbook/internal/domain/events"
	"github.com/tripbook/tripbook/internal/domain/models"
)

var (
	// ErrNotAuthorized means the trip exists but the caller lacks the
	// required capability. Existence is not hidden: callers can tell a
	// missing trip from a denied one.
	ErrNotAuthorized = errors.New("not authorized for this trip")
	// ErrNotInvited means no PENDING invitation exists for the caller.
	ErrNotInvited = errors.New("not invited to this trip")
	// ErrAlreadyAccepted means the invitation was already accepted; the
	// requested transition is state-inconsistent and retrying is pointless.
	ErrAlreadyAccepted = errors.New("invitation already accepted")
	// ErrNotMember means no ACCEPTED participant row exists for the pair.
	ErrNotMember = errors.New("not a confirmed member of this trip")
	// ErrLeaderImmovable means the operation would detach the leader from
	// their own trip, which is not a supported transition.
	ErrLeaderImmovable = errors.New("the trip leader cannot be removed or leave")
	// ErrUnknownInvitee means an invited member id has no member row.
	ErrUnknownInvitee = errors.New("invited member does not exist")
)

// TripStore is the slice of the trip store the service needs.
type TripStore interface {
	Create(ctx context.Context, leaderID uuid.UUID, title, description string, private bool) (models.Trip, error)
	FindByID(ctx context.Context, id uuid.UUID) (models.Trip, error)
	UpdateMeta(ctx context.Context, id uuid.UUID, title, description string, private bool) error
}

// ParticipantStore is the slice of the participant store the service needs.
type ParticipantStore interface {
	Create(ctx context.Context, tripID, memberID uuid.UUID, state models.ParticipantState) (models.Participant, error)
	FindByPair(ctx context.Context, tripID, memberID uuid.UUID) (models.Participant, error)
	Accept(ctx context.Context, tripID, memberID uuid.UUID) error
	Delete(ctx context.Context, tripID, memberID uuid.UUID) error
	FilterWithoutRow(ctx context.Context, tripID uuid.UUID, memberIDs []uuid.UUID) ([]uuid.UUID, error)
}

// MemberStore verifies invitees exist.
type MemberStore interface {
	ExistAll(ctx context.Context, ids []uuid.UUID) (bool, error)
}

// LocationStore is the slice of the location store the service needs.
type LocationStore interface {
	Create(ctx context.Context, tripID uuid.UUID, name, thumbnailPath string) (models.Location, error)
	Latest(ctx context.Context, tripID uuid.UUID) (models.Location, error)
	ListByTrip(ctx context.Context, tripID uuid.UUID) ([]models.Location, error)
}

// TxRunner runs a unit of work in one committed transaction.
type TxRunner interface {
	InTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Publisher releases domain events after the transaction that produced
// them has committed.
type Publisher interface {
	Publish(evts ...events.Event)
}

// Service implements trip creation and the participant lifecycle:
// invite, accept, deny, remove, leave. Every state change happens inside a
// single transaction; the matching domain events are published only after
// that transaction commits.
type Service struct {
	trips        TripStore
	participants ParticipantStore
	members      MemberStore
	locations    LocationStore
	policy       *trippolicy.Engine
	tx           TxRunner
	pub          Publisher
	log          *zap.Logger
}

// NewService wires the trips service.
func NewService(tripStore TripStore, participantStore ParticipantStore, memberStore MemberStore, locationStore LocationStore, policy *trippolicy.Engine, tx TxRunner, pub Publisher, logger *zap.Logger) *Service {
	return &Service{
		trips:        tripStore,
		participants: participantStore,
		members:      memberStore,
		locations:    locationStore,
		policy:       policy,
		tx:           tx,
		pub:          pub,
		log:          logger,
	}
}

// CreateInput carries the fields for a new trip.
type CreateInput struct {
	Title       string
	Description string
	Private     bool
	InviteeIDs  []uuid.UUID
}

// Create makes a trip with the caller as leader. The leader's ACCEPTED
// participant row is created in the same transaction as the trip; each
// invitee gets a PENDING row.
func (s *Service) Create(ctx context.Context, leaderID uuid.UUID, in CreateInput) (models.Trip, error) {
	invitees := dedupe(in.InviteeIDs, leaderID)

	var trip models.Trip
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		ok, err := s.members.ExistAll(ctx, invitees)
		if err != nil {
			return err
		}
		if !ok {
			return ErrUnknownInvitee
		}

		trip, err = s.trips.Create(ctx, leaderID, in.Title, in.Description, in.Private)
		if err != nil {
			return err
		}
		if _, err := s.participants.Create(ctx, trip.ID, leaderID, models.ParticipantAccepted); err != nil {
			return err
		}
		for _, id := range invitees {
			if _, err := s.participants.Create(ctx, trip.ID, id, models.ParticipantPending); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return models.Trip{}, err
	}

	s.pub.Publish(events.TripCreateEvent{
		Trip:           trip,
		ParticipantIDs: append([]uuid.UUID{leaderID}, invitees...),
	})
	s.log.Info("trip created",
		zap.String("trip_id", trip.ID.String()),
		zap.Int("invitees", len(invitees)))
	return trip, nil
}

// Invite adds PENDING rows for the given members. The inviter must hold
// write capability on the trip. Members that already have a row, PENDING or
// ACCEPTED, are silently skipped so the operation is idempotent.
func (s *Service) Invite(ctx context.Context, tripID, inviterID uuid.UUID, inviteeIDs []uuid.UUID) error {
	trip, err := s.trips.FindByID(ctx, tripID)
	if err != nil {
		return err
	}
	ok, err := s.policy.CanWriteContent(ctx, trip, inviterID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotAuthorized
	}

	var added []uuid.UUID
	err = s.tx.InTx(ctx, func(ctx context.Context) error {
		added, err = s.participants.FilterWithoutRow(ctx, tripID, dedupe(inviteeIDs, trip.LeaderID))
		if err != nil {
			return err
		}
		exists, err := s.members.ExistAll(ctx, added)
		if err != nil {
			return err
		}
		if !exists {
			return ErrUnknownInvitee
		}
		for _, id := range added {
			if _, err := s.participants.Create(ctx, tripID, id, models.ParticipantPending); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	if len(added) > 0 {
		s.pub.Publish(events.TripInviteEvent{TripID: tripID, ParticipantIDs: added})
	}
	return nil
}

// Accept confirms the caller's PENDING invitation. Accepting without an
// invitation fails with ErrNotInvited; accepting twice with
// ErrAlreadyAccepted. Acceptance is the transition that flips the cached
// authority answer from false to true, so the cache entry is invalidated
// the moment the transaction commits.
func (s *Service) Accept(ctx context.Context, tripID, memberID uuid.UUID) error {
	if _, err := s.trips.FindByID(ctx, tripID); err != nil {
		return err
	}
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		return s.participants.Accept(ctx, tripID, memberID)
	})
	switch {
	case errors.Is(err, participantstore.ErrNotFound):
		return ErrNotInvited
	case errors.Is(err, participantstore.ErrNotPending):
		return ErrAlreadyAccepted
	case err != nil:
		return err
	}
	s.policy.InvalidateAcceptance(tripID, memberID)
	return nil
}

// Deny declines the caller's PENDING invitation and hard-deletes the row.
func (s *Service) Deny(ctx context.Context, tripID, memberID uuid.UUID) error {
	if _, err := s.trips.FindByID(ctx, tripID); err != nil {
		return err
	}
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		row, err := s.participants.FindByPair(ctx, tripID, memberID)
		if errors.Is(err, participantstore.ErrNotFound) {
			return ErrNotInvited
		}
		if err != nil {
			return err
		}
		if row.State != models.ParticipantPending {
			return ErrAlreadyAccepted
		}
		return s.participants.Delete(ctx, tripID, memberID)
	})
	if err != nil {
		return err
	}
	s.pub.Publish(events.TripKickOutEvent{TripID: tripID, MemberID: memberID})
	return nil
}

// Remove is the leader kicking a participant out. The row may be PENDING or
// ACCEPTED; the leader's own row cannot be removed.
func (s *Service) Remove(ctx context.Context, tripID, removerID, memberID uuid.UUID) error {
	trip, err := s.trips.FindByID(ctx, tripID)
	if err != nil {
		return err
	}
	if !s.policy.CanEditTrip(trip, removerID) {
		return ErrNotAuthorized
	}
	if memberID == trip.LeaderID {
		return ErrLeaderImmovable
	}
	err = s.tx.InTx(ctx, func(ctx context.Context) error {
		return s.participants.Delete(ctx, tripID, memberID)
	})
	if errors.Is(err, participantstore.ErrNotFound) {
		return ErrNotMember
	}
	if err != nil {
		return err
	}
	s.policy.InvalidateAcceptance(tripID, memberID)
	s.pub.Publish(events.TripKickOutEvent{TripID: tripID, MemberID: memberID})
	return nil
}

// Leave is a confirmed non-leader member removing themselves.
func (s *Service) Leave(ctx context.Context, tripID, memberID uuid.UUID) error {
	trip, err := s.trips.FindByID(ctx, tripID)
	if err != nil {
		return err
	}
	if memberID == trip.LeaderID {
		return ErrLeaderImmovable
	}
	err = s.tx.InTx(ctx, func(ctx context.Context) error {
		row, err := s.participants.FindByPair(ctx, tripID, memberID)
		if errors.Is(err, participantstore.ErrNotFound) {
			return ErrNotMember
		}
		if err != nil {
			return err
		}
		if row.State != models.ParticipantAccepted {
			return ErrNotMember
		}
		return s.participants.Delete(ctx, tripID, memberID)
	})
	if err != nil {
		return err
	}
	s.policy.InvalidateAcceptance(tripID, memberID)
	s.pub.Publish(events.TripKickOutEvent{TripID: tripID, MemberID: memberID})
	return nil
}

// Detail returns the trip and its locations if the caller may read it.
// A missing trip surfaces the store's not-found error; a present trip the
// caller cannot see surfaces ErrNotAuthorized.
func (s *Service) Detail(ctx context.Context, tripID, memberID uuid.UUID) (models.Trip, []models.Location, error) {
	trip, err := s.trips.FindByID(ctx, tripID)
	if err != nil {
		return models.Trip{}, nil, err
	}
	ok, err := s.policy.CanRead(ctx, trip, memberID)
	if err != nil {
		return models.Trip{}, nil, err
	}
	if !ok {
		return models.Trip{}, nil, ErrNotAuthorized
	}
	locs, err := s.locations.ListByTrip(ctx, tripID)
	if err != nil {
		return models.Trip{}, nil, err
	}
	return trip, locs, nil
}

// UpdateMeta changes the trip's title, description, or privacy. Leader only.
func (s *Service) UpdateMeta(ctx context.Context, tripID, memberID uuid.UUID, title, description string, private bool) error {
	trip, err := s.trips.FindByID(ctx, tripID)
	if err != nil {
		return err
	}
	if !s.policy.CanEditTrip(trip, memberID) {
		return ErrNotAuthorized
	}
	err = s.tx.InTx(ctx, func(ctx context.Context) error {
		return s.trips.UpdateMeta(ctx, tripID, title, description, private)
	})
	if err != nil {
		return err
	}
	trip.Title = title
	trip.Description = description
	trip.Private = private
	s.pub.Publish(events.TripUpdateEvent{Trip: trip})
	return nil
}

// AddLocation records the location of a new post. A new row is created only
// when the trip's most recent location has a different name; consecutive
// posts at the same place share one row. The caller needs write capability.
func (s *Service) AddLocation(ctx context.Context, tripID, memberID uuid.UUID, name, thumbnailPath string) (models.Location, error) {
	trip, err := s.trips.FindByID(ctx, tripID)
	if err != nil {
		return models.Location{}, err
	}
	ok, err := s.policy.CanWriteContent(ctx, trip, memberID)
	if err != nil {
		return models.Location{}, err
	}
	if !ok {
		return models.Location{}, ErrNotAuthorized
	}

	var loc models.Location
	var created bool
	err = s.tx.InTx(ctx, func(ctx context.Context) error {
		latest, err := s.locations.Latest(ctx, tripID)
		if err == nil && latest.Name == name {
			loc = latest
			return nil
		}
		if err != nil && !errors.Is(err, locationstore.ErrNotFound) {
			return err
		}
		loc, err = s.locations.Create(ctx, tripID, name, thumbnailPath)
		created = err == nil
		return err
	})
	if err != nil {
		return models.Location{}, err
	}
	if created {
		s.pub.Publish(events.LocationAddEvent{TripID: tripID, LocationName: name})
	}
	return loc, nil
}

func dedupe(ids []uuid.UUID, exclude uuid.UUID) []uuid.UUID {
	seen := map[uuid.UUID]bool{exclude: true}
	var out []uuid.UUID
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

// internal/app/store/participants/participantstore.go
package participantstore

// Terminology: participant rows
//   - PENDING: invited, not yet confirmed
//   - ACCEPTED: confirmed member with read/write capability
// A missing row means the member has no relationship with the trip at all.

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tripbook/tripbook/internal/app/system/txn"
	"github.com/tripbook/tripbook/internal/domain/models"
)

var (
	// ErrNotFound is returned when no participant row exists for the pair.
	ErrNotFound = errors.New("participant not found")
	// ErrNotPending is returned when a transition requires a PENDING row but
	// the existing row is already ACCEPTED.
	ErrNotPending = errors.New("participant is not pending")
)

type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) dbFrom(ctx context.Context) *gorm.DB {
	return txn.From(ctx, s.db)
}

// Create inserts a participant row in the given state. Callers must check
// for an existing row first; the unique (trip, member) index backstops them.
func (s *Store) Create(ctx context.Context, tripID, memberID uuid.UUID, state models.ParticipantState) (models.Participant, error) {
	now := time.Now().UTC()
	p := models.Participant{
		ID:        uuid.New(),
		TripID:    tripID,
		MemberID:  memberID,
		State:     state,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.dbFrom(ctx).Create(&p).Error; err != nil {
		return models.Participant{}, err
	}
	return p, nil
}

// FindByPair returns the participant row for (tripID, memberID).
func (s *Store) FindByPair(ctx context.Context, tripID, memberID uuid.UUID) (models.Participant, error) {
	var p models.Participant
	err := s.dbFrom(ctx).First(&p, "trip_id = ? AND member_id = ?", tripID, memberID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Participant{}, ErrNotFound
	}
	if err != nil {
		return models.Participant{}, err
	}
	return p, nil
}

// AcceptedExists reports whether an ACCEPTED row exists for the pair.
func (s *Store) AcceptedExists(ctx context.Context, tripID, memberID uuid.UUID) (bool, error) {
	var count int64
	err := s.dbFrom(ctx).Model(&models.Participant{}).
		Where("trip_id = ? AND member_id = ? AND state = ?", tripID, memberID, models.ParticipantAccepted).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Accept transitions the pair's row from PENDING to ACCEPTED. It returns
// ErrNotFound when no row exists and ErrNotPending when the row is already
// ACCEPTED; the single UPDATE keeps the precondition check and the
// transition atomic.
func (s *Store) Accept(ctx context.Context, tripID, memberID uuid.UUID) error {
	res := s.dbFrom(ctx).Model(&models.Participant{}).
		Where("trip_id = ? AND member_id = ? AND state = ?", tripID, memberID, models.ParticipantPending).
		Updates(map[string]any{"state": models.ParticipantAccepted, "updated_at": time.Now().UTC()})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		// Distinguish "no row" from "row already accepted" for the caller's
		// error taxonomy.
		exists, err := s.exists(ctx, tripID, memberID)
		if err != nil {
			return err
		}
		if exists {
			return ErrNotPending
		}
		return ErrNotFound
	}
	return nil
}

func (s *Store) exists(ctx context.Context, tripID, memberID uuid.UUID) (bool, error) {
	var count int64
	err := s.dbFrom(ctx).Model(&models.Participant{}).
		Where("trip_id = ? AND member_id = ?", tripID, memberID).
		Count(&count).Error
	return count > 0, err
}

// Delete hard-deletes the pair's row. Deleting an absent row returns
// ErrNotFound so callers can surface an invalid transition.
func (s *Store) Delete(ctx context.Context, tripID, memberID uuid.UUID) error {
	res := s.dbFrom(ctx).Delete(&models.Participant{}, "trip_id = ? AND member_id = ?", tripID, memberID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// FilterWithoutRow returns the subset of memberIDs that have no participant
// row for the trip, preserving input order. Invites use this to stay
// idempotent: members that already have a row (PENDING or ACCEPTED) are
// silently skipped.
func (s *Store) FilterWithoutRow(ctx context.Context, tripID uuid.UUID, memberIDs []uuid.UUID) ([]uuid.UUID, error) {
	if len(memberIDs) == 0 {
		return nil, nil
	}
	var existing []uuid.UUID
	err := s.dbFrom(ctx).Model(&models.Participant{}).
		Where("trip_id = ? AND member_id IN ?", tripID, memberIDs).
		Pluck("member_id", &existing).Error
	if err != nil {
		return nil, err
	}
	seen := make(map[uuid.UUID]bool, len(existing))
	for _, id := range existing {
		seen[id] = true
	}
	var missing []uuid.UUID
	for _, id := range memberIDs {
		if !seen[id] {
			missing = append(missing, id)
		}
	}
	return missing, nil
}

// ListByTrip returns all participant rows for a trip.
func (s *Store) ListByTrip(ctx context.Context, tripID uuid.UUID) ([]models.Participant, error) {
	var rows []models.Participant
	if err := s.dbFrom(ctx).Where("trip_id = ?", tripID).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// ListTripIDsByMember returns the ids of trips the member has any row for,
// optionally restricted to a state. Used by the administrative rebuild.
func (s *Store) ListTripIDsByMember(ctx context.Context, memberID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := s.dbFrom(ctx).Model(&models.Participant{}).
		Where("member_id = ?", memberID).
		Order("created_at").
		Pluck("trip_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

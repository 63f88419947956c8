// Package trippolicy decides who may read and write a trip.
//
// Visibility rules:
//   - Anyone can read a public trip.
//   - Only members with an ACCEPTED participant row can read a private trip.
//   - Only members with an ACCEPTED participant row can write trip-scoped
//     content (posts, comments); public visibility does not imply write.
//   - Only the leader can edit the trip itself (title, description, privacy).
//
// The predicates are evaluated against current membership-store state on
// every call. The acceptance lookup is memoized in a short-lived cache;
// transitions that change the answer invalidate their key directly.
package trippolicy

import (
	"context"

	"github.com/google/uuid"

	"github.com/tripbook/tripbook/internal/app/system/authcache"
	"github.com/tripbook/tripbook/internal/domain/models"
)

// ParticipantReader is the slice of the participant store the engine needs.
type ParticipantReader interface {
	AcceptedExists(ctx context.Context, tripID, memberID uuid.UUID) (bool, error)
}

// Engine answers read/write capability questions for trips.
type Engine struct {
	participants ParticipantReader
	cache        *authcache.Cache
}

// New creates an Engine over the participant store. cache may be nil to
// disable memoization (every call hits the store).
func New(participants ParticipantReader, cache *authcache.Cache) *Engine {
	return &Engine{participants: participants, cache: cache}
}

// CanRead reports whether memberID may read the trip: true for public
// trips, otherwise true only with an ACCEPTED participant row.
func (e *Engine) CanRead(ctx context.Context, trip models.Trip, memberID uuid.UUID) (bool, error) {
	if !trip.Private {
		return true, nil
	}
	return e.accepted(ctx, trip.ID, memberID)
}

// CanWriteContent reports whether memberID may write trip-scoped content.
func (e *Engine) CanWriteContent(ctx context.Context, trip models.Trip, memberID uuid.UUID) (bool, error) {
	return e.accepted(ctx, trip.ID, memberID)
}

// CanEditTrip reports whether memberID may change the trip's own metadata.
// Only the leader holds that capability.
func (e *Engine) CanEditTrip(trip models.Trip, memberID uuid.UUID) bool {
	return trip.LeaderID == memberID
}

// InvalidateAcceptance drops the cached acceptance answer for the pair.
// Called at the PENDING to ACCEPTED transition and on removal paths.
func (e *Engine) InvalidateAcceptance(tripID, memberID uuid.UUID) {
	if e.cache != nil {
		e.cache.Invalidate(tripID, memberID)
	}
}

func (e *Engine) accepted(ctx context.Context, tripID, memberID uuid.UUID) (bool, error) {
	if e.cache != nil {
		if accepted, ok := e.cache.Get(tripID, memberID); ok {
			return accepted, nil
		}
	}
	accepted, err := e.participants.AcceptedExists(ctx, tripID, memberID)
	if err != nil {
		return false, err
	}
	if e.cache != nil {
		e.cache.Put(tripID, memberID, accepted)
	}
	return accepted, nil
}

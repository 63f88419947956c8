// internal/app/features/bookmarks/service.go
package bookmarks

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tripbook/tripbook/internal/app/policy/trippolicy"
	"github.com/tripbook/tripbook/internal/domain/models"
)

// ErrNotAuthorized means the trip exists but the caller cannot read it.
var ErrNotAuthorized = errors.New("not authorized for this trip")

// BookmarkStore is the slice of the bookmark store the service needs.
type BookmarkStore interface {
	Toggle(ctx context.Context, memberID, tripID uuid.UUID) (bool, error)
	ListByMember(ctx context.Context, memberID uuid.UUID, page, pageSize int) ([]models.Bookmark, error)
}

// TripReader fetches trips for the listing.
type TripReader interface {
	FindByID(ctx context.Context, id uuid.UUID) (models.Trip, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Trip, error)
}

// Service implements bookmark toggling and the visibility-filtered listing.
type Service struct {
	bookmarks BookmarkStore
	trips     TripReader
	policy    *trippolicy.Engine
	pageSize  int
	log       *zap.Logger
}

// NewService wires the bookmarks service.
func NewService(bookmarkStore BookmarkStore, trips TripReader, policy *trippolicy.Engine, pageSize int, logger *zap.Logger) *Service {
	return &Service{
		bookmarks: bookmarkStore,
		trips:     trips,
		policy:    policy,
		pageSize:  pageSize,
		log:       logger,
	}
}

// Toggle bookmarks the trip if it isn't bookmarked and unbookmarks it if it
// is. The trip must exist and be readable by the caller.
func (s *Service) Toggle(ctx context.Context, memberID, tripID uuid.UUID) (bool, error) {
	trip, err := s.trips.FindByID(ctx, tripID)
	if err != nil {
		return false, err
	}
	ok, err := s.policy.CanRead(ctx, trip, memberID)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, ErrNotAuthorized
	}
	return s.bookmarks.Toggle(ctx, memberID, tripID)
}

// ListedTrip is one visible bookmarked trip.
type ListedTrip struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Private     bool      `json:"private"`
}

// List returns one fixed-size page of the member's bookmarks, post-filtered
// by CanRead per item. The bookmark rows are the source of truth, but a
// trip's privacy or the caller's membership may have changed since the
// bookmark was created, so every item is re-checked. Filtering happens
// after the page is fetched and removed items are not backfilled from the
// next page, so a page may legitimately hold fewer than pageSize entries.
func (s *Service) List(ctx context.Context, memberID uuid.UUID, page int) ([]ListedTrip, error) {
	rows, err := s.bookmarks.ListByMember(ctx, memberID, page, s.pageSize)
	if err != nil {
		return nil, err
	}
	ids := make([]uuid.UUID, 0, len(rows))
	for _, b := range rows {
		ids = append(ids, b.TripID)
	}
	trips, err := s.trips.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]models.Trip, len(trips))
	for _, t := range trips {
		byID[t.ID] = t
	}

	out := make([]ListedTrip, 0, len(rows))
	for _, b := range rows {
		trip, ok := byID[b.TripID]
		if !ok {
			// Soft-deleted trip; the bookmark row outlives it.
			continue
		}
		visible, err := s.policy.CanRead(ctx, trip, memberID)
		if err != nil {
			return nil, err
		}
		if !visible {
			continue
		}
		out = append(out, ListedTrip{
			ID:          trip.ID,
			Title:       trip.Title,
			Description: trip.Description,
			Private:     trip.Private,
		})
	}
	return out, nil
}

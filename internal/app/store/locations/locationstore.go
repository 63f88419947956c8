// internal/app/store/locations/locationstore.go
package locationstore

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tripbook/tripbook/internal/app/system/txn"
	"github.com/tripbook/tripbook/internal/domain/models"
)

// ErrNotFound is returned when no location row matches.
var ErrNotFound = errors.New("location not found")

type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) dbFrom(ctx context.Context) *gorm.DB {
	return txn.From(ctx, s.db)
}

// Create appends a location to the trip.
func (s *Store) Create(ctx context.Context, tripID uuid.UUID, name, thumbnailPath string) (models.Location, error) {
	loc := models.Location{
		ID:            uuid.New(),
		TripID:        tripID,
		Name:          name,
		ThumbnailPath: thumbnailPath,
		CreatedAt:     time.Now().UTC(),
	}
	if err := s.dbFrom(ctx).Create(&loc).Error; err != nil {
		return models.Location{}, err
	}
	return loc, nil
}

// Latest returns the most recently created location for the trip, or
// ErrNotFound when the trip has none yet.
func (s *Store) Latest(ctx context.Context, tripID uuid.UUID) (models.Location, error) {
	var loc models.Location
	err := s.dbFrom(ctx).Where("trip_id = ?", tripID).Order("created_at DESC").First(&loc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Location{}, ErrNotFound
	}
	if err != nil {
		return models.Location{}, err
	}
	return loc, nil
}

// ListByTrip returns the trip's locations in creation order.
func (s *Store) ListByTrip(ctx context.Context, tripID uuid.UUID) ([]models.Location, error) {
	var locs []models.Location
	err := s.dbFrom(ctx).Where("trip_id = ?", tripID).Order("created_at").Find(&locs).Error
	if err != nil {
		return nil, err
	}
	return locs, nil
}

// Delete removes the location row.
func (s *Store) Delete(ctx context.Context, id uuid.UUID) error {
	res := s.dbFrom(ctx).Delete(&models.Location{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

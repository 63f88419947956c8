// internal/app/store/trips/tripstore.go
package tripstore

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tripbook/tripbook/internal/app/system/txn"
	"github.com/tripbook/tripbook/internal/domain/models"
)

// ErrNotFound is returned when no live trip exists for the given id.
var ErrNotFound = errors.New("trip not found")

type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) dbFrom(ctx context.Context) *gorm.DB {
	return txn.From(ctx, s.db)
}

// Create inserts a new trip owned by leaderID and returns it.
func (s *Store) Create(ctx context.Context, leaderID uuid.UUID, title, description string, private bool) (models.Trip, error) {
	now := time.Now().UTC()
	trip := models.Trip{
		ID:          uuid.New(),
		Title:       title,
		Description: description,
		Private:     private,
		LeaderID:    leaderID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.dbFrom(ctx).Create(&trip).Error; err != nil {
		return models.Trip{}, err
	}
	return trip, nil
}

// FindByID returns the trip with the given id. Soft-deleted trips are
// treated as absent.
func (s *Store) FindByID(ctx context.Context, id uuid.UUID) (models.Trip, error) {
	var trip models.Trip
	err := s.dbFrom(ctx).First(&trip, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Trip{}, ErrNotFound
	}
	if err != nil {
		return models.Trip{}, err
	}
	return trip, nil
}

// FindByIDs returns the live trips among ids, in no particular order.
func (s *Store) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Trip, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var trips []models.Trip
	if err := s.dbFrom(ctx).Where("id IN ?", ids).Find(&trips).Error; err != nil {
		return nil, err
	}
	return trips, nil
}

// UpdateMeta overwrites the trip's title, description, and privacy flag.
func (s *Store) UpdateMeta(ctx context.Context, id uuid.UUID, title, description string, private bool) error {
	res := s.dbFrom(ctx).Model(&models.Trip{}).Where("id = ?", id).Updates(map[string]any{
		"title":       title,
		"description": description,
		"private":     private,
		"updated_at":  time.Now().UTC(),
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete soft-deletes the trip.
func (s *Store) Delete(ctx context.Context, id uuid.UUID) error {
	res := s.dbFrom(ctx).Delete(&models.Trip{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ListAll streams every live trip in batches of batchSize to fn. Used by the
// administrative index rebuild.
func (s *Store) ListAll(ctx context.Context, batchSize int, fn func([]models.Trip) error) error {
	var batch []models.Trip
	return s.dbFrom(ctx).FindInBatches(&batch, batchSize, func(_ *gorm.DB, _ int) error {
		return fn(batch)
	}).Error
}

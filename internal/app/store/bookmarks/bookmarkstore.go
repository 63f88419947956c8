// internal/app/store/bookmarks/bookmarkstore.go
package bookmarkstore

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tripbook/tripbook/internal/app/system/txn"
	"github.com/tripbook/tripbook/internal/domain/models"
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

// Toggle creates the bookmark if absent and deletes it if present. It
// returns true when the trip ended up bookmarked.
func (s *Store) Toggle(ctx context.Context, memberID, tripID uuid.UUID) (bool, error) {
	db := s.dbFrom(ctx)

	res := db.Delete(&models.Bookmark{}, "member_id = ? AND trip_id = ?", memberID, tripID)
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected > 0 {
		return false, nil
	}

	b := models.Bookmark{
		ID:        uuid.New(),
		MemberID:  memberID,
		TripID:    tripID,
		CreatedAt: time.Now().UTC(),
	}
	if err := db.Create(&b).Error; err != nil {
		return false, err
	}
	return true, nil
}

// Exists reports whether the member has bookmarked the trip.
func (s *Store) Exists(ctx context.Context, memberID, tripID uuid.UUID) (bool, error) {
	var count int64
	err := s.dbFrom(ctx).Model(&models.Bookmark{}).
		Where("member_id = ? AND trip_id = ?", memberID, tripID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// ExistingTripIDs returns the subset of tripIDs the member has bookmarked.
func (s *Store) ExistingTripIDs(ctx context.Context, memberID uuid.UUID, tripIDs []uuid.UUID) (map[uuid.UUID]bool, error) {
	out := make(map[uuid.UUID]bool)
	if len(tripIDs) == 0 {
		return out, nil
	}
	var ids []uuid.UUID
	err := s.dbFrom(ctx).Model(&models.Bookmark{}).
		Where("member_id = ? AND trip_id IN ?", memberID, tripIDs).
		Pluck("trip_id", &ids).Error
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		out[id] = true
	}
	return out, nil
}

// ListByMember returns one fixed-size page of the member's bookmarks, newest
// first. page is zero-based.
func (s *Store) ListByMember(ctx context.Context, memberID uuid.UUID, page, pageSize int) ([]models.Bookmark, error) {
	var rows []models.Bookmark
	err := s.dbFrom(ctx).
		Where("member_id = ?", memberID).
		Order("created_at DESC").
		Offset(page * pageSize).
		Limit(pageSize).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// CountByTripIDs returns bookmark counts per trip for ranking search
// results. Trips with no bookmarks are absent from the map.
func (s *Store) CountByTripIDs(ctx context.Context, tripIDs []uuid.UUID) (map[uuid.UUID]int64, error) {
	out := make(map[uuid.UUID]int64)
	if len(tripIDs) == 0 {
		return out, nil
	}
	rows, err := s.dbFrom(ctx).Model(&models.Bookmark{}).
		Select("trip_id, COUNT(*) AS n").
		Where("trip_id IN ?", tripIDs).
		Group("trip_id").
		Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var id uuid.UUID
		var n int64
		if err := rows.Scan(&id, &n); err != nil {
			return nil, err
		}
		out[id] = n
	}
	return out, rows.Err()
}

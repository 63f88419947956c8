package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Trip is a shared journal space owned by a leader.
//
// The leader always has an ACCEPTED participant row for the trip; it is
// created in the same transaction as the trip itself. Deleting a trip is a
// soft delete (DeletedAt), so bookmark rows pointing at it stay valid while
// the trip disappears from reads.
type Trip struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	Title       string    `gorm:"not null"`
	Description string
	Private     bool      `gorm:"not null"`
	LeaderID    uuid.UUID `gorm:"type:uuid;not null;index"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
	DeletedAt   gorm.DeletedAt `gorm:"index"`

	Participants []Participant `gorm:"foreignKey:TripID"`
	Locations    []Location    `gorm:"foreignKey:TripID"`
}

// Location belongs to exactly one trip. Locations accumulate in creation
// order as posts are added; consecutive posts at the same named location
// share one row.
type Location struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"`
	TripID        uuid.UUID `gorm:"type:uuid;not null;index"`
	Name          string    `gorm:"not null"`
	ThumbnailPath string
	CreatedAt     time.Time
}

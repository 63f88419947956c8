package models

import (
	"time"

	"github.com/google/uuid"
)

// Bookmark joins a member and a trip; existence means bookmarked.
// Toggling creates the row if absent and deletes it if present.
type Bookmark struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	MemberID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uidx_bookmark_member_trip"`
	TripID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uidx_bookmark_member_trip"`
	CreatedAt time.Time
}

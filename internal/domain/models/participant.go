package models

import (
	"time"

	"github.com/google/uuid"
)

// ParticipantState is the lifecycle state of a trip membership.
type ParticipantState string

const (
	// ParticipantPending means invited but not yet confirmed.
	ParticipantPending ParticipantState = "PENDING"
	// ParticipantAccepted means a confirmed member with read/write capability.
	ParticipantAccepted ParticipantState = "ACCEPTED"
)

// Participant joins a trip and a member. At most one row exists per
// (trip, member) pair, enforced by a unique index. Denial and removal hard
// delete the row; there is no residual membership state.
type Participant struct {
	ID        uuid.UUID        `gorm:"type:uuid;primaryKey"`
	TripID    uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex:uidx_participant_trip_member"`
	MemberID  uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex:uidx_participant_trip_member"`
	State     ParticipantState `gorm:"not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

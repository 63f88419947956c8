package models

import (
	"time"

	"github.com/google/uuid"
)

// Member roles. Ordinary accounts are always RoleUser; RoleSystem exists
// only for synthetic placeholder accounts.
const (
	RoleUser   = "user"
	RoleSystem = "system"
)

// Member is a registered account. Username, phone, and nickname are each
// unique across all members.
type Member struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey"`
	Username         string    `gorm:"not null;uniqueIndex"`
	Phone            string    `gorm:"not null;uniqueIndex"`
	Nickname         string    `gorm:"not null;uniqueIndex"`
	PasswordHash     string    `gorm:"not null"`
	ProfileImagePath string
	Role             string `gorm:"not null;default:user"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

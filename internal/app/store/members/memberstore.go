// internal/app/store/members/memberstore.go
package memberstore

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tripbook/tripbook/internal/app/system/txn"
	"github.com/tripbook/tripbook/internal/domain/models"
)

var (
	// ErrNotFound is returned when no member exists for the given id.
	ErrNotFound = errors.New("member not found")
	// ErrDuplicateUsername, ErrDuplicatePhone, and ErrDuplicateNickname map
	// the unique-index violations onto the field that collided.
	ErrDuplicateUsername = errors.New("username already taken")
	ErrDuplicatePhone    = errors.New("phone already registered")
	ErrDuplicateNickname = errors.New("nickname already taken")
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

// Create inserts a new member. Unique violations are translated to the
// matching ErrDuplicate* sentinel.
func (s *Store) Create(ctx context.Context, username, phone, nickname, passwordHash, profileImagePath string) (models.Member, error) {
	now := time.Now().UTC()
	m := models.Member{
		ID:               uuid.New(),
		Username:         username,
		Phone:            phone,
		Nickname:         nickname,
		PasswordHash:     passwordHash,
		ProfileImagePath: profileImagePath,
		Role:             models.RoleUser,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.dbFrom(ctx).Create(&m).Error; err != nil {
		return models.Member{}, translateDup(err)
	}
	return m, nil
}

// translateDup maps a postgres unique violation to a field-level sentinel by
// inspecting the constraint name embedded in the driver error.
func translateDup(err error) error {
	msg := err.Error()
	if !strings.Contains(msg, "duplicate key") && !strings.Contains(msg, "23505") {
		return err
	}
	switch {
	case strings.Contains(msg, "username"):
		return ErrDuplicateUsername
	case strings.Contains(msg, "phone"):
		return ErrDuplicatePhone
	case strings.Contains(msg, "nickname"):
		return ErrDuplicateNickname
	}
	return err
}

// FindByID returns the member with the given id.
func (s *Store) FindByID(ctx context.Context, id uuid.UUID) (models.Member, error) {
	var m models.Member
	err := s.dbFrom(ctx).First(&m, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Member{}, ErrNotFound
	}
	if err != nil {
		return models.Member{}, err
	}
	return m, nil
}

// FindByUsername returns the member with the given username.
func (s *Store) FindByUsername(ctx context.Context, username string) (models.Member, error) {
	var m models.Member
	err := s.dbFrom(ctx).First(&m, "username = ?", username).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Member{}, ErrNotFound
	}
	if err != nil {
		return models.Member{}, err
	}
	return m, nil
}

// ExistAll reports whether every id in ids has a member row.
func (s *Store) ExistAll(ctx context.Context, ids []uuid.UUID) (bool, error) {
	if len(ids) == 0 {
		return true, nil
	}
	var count int64
	err := s.dbFrom(ctx).Model(&models.Member{}).Where("id IN ?", ids).Count(&count).Error
	if err != nil {
		return false, err
	}
	return count == int64(len(ids)), nil
}

// ListAll streams every member in batches of batchSize to fn. Used by the
// administrative index rebuild.
func (s *Store) ListAll(ctx context.Context, batchSize int, fn func([]models.Member) error) error {
	var batch []models.Member
	return s.dbFrom(ctx).FindInBatches(&batch, batchSize, func(_ *gorm.DB, _ int) error {
		return fn(batch)
	}).Error
}

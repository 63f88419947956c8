package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tripbook/tripbook/internal/domain/models"
)

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *gorm.DB
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *gorm.DB) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *gorm.DB {
	return f.db
}

// CreateMember creates a test member. Username, phone, and nickname are
// derived from the given nickname so uniqueness holds across calls.
func (f *Fixtures) CreateMember(ctx context.Context, nickname string) models.Member {
	f.t.Helper()

	now := time.Now().UTC()
	m := models.Member{
		ID:           uuid.New(),
		Username:     nickname + "-login",
		Phone:        fmt.Sprintf("010-%010d", now.UnixNano()%1e10),
		Nickname:     nickname,
		PasswordHash: "$2a$10$test.hash.not.a.real.credential.value",
		Role:         models.RoleUser,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := f.db.WithContext(ctx).Create(&m).Error; err != nil {
		f.t.Fatalf("failed to create test member: %v", err)
	}
	return m
}

// CreateSystemMember creates a test member with the system role.
func (f *Fixtures) CreateSystemMember(ctx context.Context, nickname string) models.Member {
	f.t.Helper()

	m := f.CreateMember(ctx, nickname)
	if err := f.db.WithContext(ctx).Model(&m).Update("role", models.RoleSystem).Error; err != nil {
		f.t.Fatalf("failed to promote test member: %v", err)
	}
	m.Role = models.RoleSystem
	return m
}

// CreateTrip creates a test trip led by leaderID, including the leader's
// accepted participant row.
func (f *Fixtures) CreateTrip(ctx context.Context, leaderID uuid.UUID, title string, private bool) models.Trip {
	f.t.Helper()

	now := time.Now().UTC()
	trip := models.Trip{
		ID:          uuid.New(),
		Title:       title,
		Description: "fixture trip",
		Private:     private,
		LeaderID:    leaderID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := f.db.WithContext(ctx).Create(&trip).Error; err != nil {
		f.t.Fatalf("failed to create test trip: %v", err)
	}
	f.CreateParticipant(ctx, trip.ID, leaderID, models.ParticipantAccepted)
	return trip
}

// CreateParticipant creates a participant row in the given state.
func (f *Fixtures) CreateParticipant(ctx context.Context, tripID, memberID uuid.UUID, state models.ParticipantState) models.Participant {
	f.t.Helper()

	now := time.Now().UTC()
	p := models.Participant{
		ID:        uuid.New(),
		TripID:    tripID,
		MemberID:  memberID,
		State:     state,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := f.db.WithContext(ctx).Create(&p).Error; err != nil {
		f.t.Fatalf("failed to create test participant: %v", err)
	}
	return p
}

// CreateLocation appends a location to the trip.
func (f *Fixtures) CreateLocation(ctx context.Context, tripID uuid.UUID, name string) models.Location {
	f.t.Helper()

	loc := models.Location{
		ID:        uuid.New(),
		TripID:    tripID,
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}
	if err := f.db.WithContext(ctx).Create(&loc).Error; err != nil {
		f.t.Fatalf("failed to create test location: %v", err)
	}
	return loc
}

// CreateBookmark bookmarks the trip for the member.
func (f *Fixtures) CreateBookmark(ctx context.Context, memberID, tripID uuid.UUID) models.Bookmark {
	f.t.Helper()

	b := models.Bookmark{
		ID:        uuid.New(),
		MemberID:  memberID,
		TripID:    tripID,
		CreatedAt: time.Now().UTC(),
	}
	if err := f.db.WithContext(ctx).Create(&b).Error; err != nil {
		f.t.Fatalf("failed to create test bookmark: %v", err)
	}
	return b
}

// internal/app/features/members/service.go
package members

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/tripbook/tripbook/internal/domain/events"
	"github.com/tripbook/tripbook/internal/domain/models"
)

// ErrInvalidInput is returned when a required registration field is blank.
var ErrInvalidInput = errors.New("username, phone, nickname, and password are required")

// MemberStore is the slice of the member store the service needs.
type MemberStore interface {
	Create(ctx context.Context, username, phone, nickname, passwordHash, profileImagePath string) (models.Member, error)
}

// TxRunner runs a unit of work in one committed transaction.
type TxRunner interface {
	InTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Publisher releases domain events after commit.
type Publisher interface {
	Publish(evts ...events.Event)
}

// Service handles member registration.
type Service struct {
	members MemberStore
	tx      TxRunner
	pub     Publisher
	log     *zap.Logger
}

// NewService wires the members service.
func NewService(memberStore MemberStore, tx TxRunner, pub Publisher, logger *zap.Logger) *Service {
	return &Service{members: memberStore, tx: tx, pub: pub, log: logger}
}

// RegisterInput carries the fields for a new account.
type RegisterInput struct {
	Username         string
	Phone            string
	Nickname         string
	Password         string
	ProfileImagePath string
}

// Register creates a member with a bcrypt password hash and publishes
// MemberRegisterEvent after the insert commits, so the projector can create
// the member's search document.
func (s *Service) Register(ctx context.Context, in RegisterInput) (models.Member, error) {
	if in.Username == "" || in.Phone == "" || in.Nickname == "" || in.Password == "" {
		return models.Member{}, ErrInvalidInput
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return models.Member{}, err
	}

	var member models.Member
	err = s.tx.InTx(ctx, func(ctx context.Context) error {
		member, err = s.members.Create(ctx, in.Username, in.Phone, in.Nickname, string(hash), in.ProfileImagePath)
		return err
	})
	if err != nil {
		return models.Member{}, err
	}

	s.pub.Publish(events.MemberRegisterEvent{Member: member})
	s.log.Info("member registered", zap.String("member_id", member.ID.String()))
	return member, nil
}

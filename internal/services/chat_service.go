// Package services – ChatService
//
// ChatService manages chat registrations, the notification destinations used
// by the pregnancy scanner. A chat registers (or refreshes its name and
// activity time) every time it starts a session.
package services

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"

	"github.com/tbourn/go-rabbitry/internal/domain"
	"github.com/tbourn/go-rabbitry/internal/repo"
)

// ErrChatNotFound indicates that the requested chat is not registered.
var ErrChatNotFound = errors.New("chat not found")

// ChatRepo defines the repository contract required by ChatService.
type ChatRepo interface {
	// RegisterChat inserts or refreshes a chat registration.
	RegisterChat(ctx context.Context, db *gorm.DB, chatID int64, name string, now time.Time) (*domain.ChatRegistration, error)

	// ListChats returns every registration ordered by chat id.
	ListChats(ctx context.Context, db *gorm.DB) ([]domain.ChatRegistration, error)

	// GetChat fetches a registration by id.
	GetChat(ctx context.Context, db *gorm.DB, chatID int64) (*domain.ChatRegistration, error)
}

// ChatService provides chat registry operations.
type ChatService struct {
	DB   *gorm.DB
	Repo ChatRepo

	// NameMaxLen caps stored chat names by rune length.
	NameMaxLen int
	// Now stamps last_active; defaults to time.Now.
	Now func() time.Time
}

// NewChatService constructs a ChatService with sane defaults.
func NewChatService(db *gorm.DB, r ChatRepo) *ChatService {
	return &ChatService{
		DB:         db,
		Repo:       r,
		NameMaxLen: 128,
		Now:        time.Now,
	}
}

// Register records chatID as a notification destination. Names are
// normalized and clipped.
func (s *ChatService) Register(ctx context.Context, chatID int64, name string) (*domain.ChatRegistration, error) {
	ctx, span := startSpan(ctx, "ChatService", "Register", attribute.Int64("chat.id", chatID))
	defer span.End()

	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	return s.Repo.RegisterChat(ctx, s.DB, chatID, s.clip(normalizeName(name)), now())
}

// List returns every registered chat.
func (s *ChatService) List(ctx context.Context) ([]domain.ChatRegistration, error) {
	ctx, span := startSpan(ctx, "ChatService", "List")
	defer span.End()

	return s.Repo.ListChats(ctx, s.DB)
}

// Get returns one registration or ErrChatNotFound.
func (s *ChatService) Get(ctx context.Context, chatID int64) (*domain.ChatRegistration, error) {
	c, err := s.Repo.GetChat(ctx, s.DB, chatID)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrChatNotFound
	}
	return c, err
}

func (s *ChatService) clip(name string) string {
	if s.NameMaxLen > 0 && utf8.RuneCountInString(name) > s.NameMaxLen {
		return string([]rune(name)[:s.NameMaxLen])
	}
	return name
}

// normalizeName trims whitespace and collapses runs of it to one space.
func normalizeName(s string) string {
	return whitespaceRE.ReplaceAllString(strings.TrimSpace(s), " ")
}

// whitespaceRE collapses consecutive whitespace to a single space.
var whitespaceRE = regexp.MustCompile(`\s+`)

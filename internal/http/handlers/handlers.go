package handlers

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-rabbitry/internal/bot"
	"github.com/tbourn/go-rabbitry/internal/domain"
	"github.com/tbourn/go-rabbitry/internal/services"
	"github.com/tbourn/go-rabbitry/internal/utils"
)

//
// Service contracts (context-aware)
//

// RabbitService defines the cage operations consumed by HTTP handlers.
type RabbitService interface {
	// Load returns the occupant, or the empty sentinel for an unknown cage.
	Load(ctx context.Context, cageID int) (domain.Rabbit, error)
	// ResolveFather returns the father or nil.
	ResolveFather(ctx context.Context, rb *domain.Rabbit) (*domain.Rabbit, error)
	// Register stores a new occupant over whatever the cage held.
	Register(ctx context.Context, cageID int, gender domain.Gender, name string, fatherID *int) (*domain.Rabbit, error)
	// Delete empties the cage.
	Delete(ctx context.Context, cageID int) error
	// ResetBreeding clears a female's breeding date.
	ResetBreeding(ctx context.Context, cageID int) (bool, error)
	// ListPage returns a page of occupied cages and their total count.
	ListPage(ctx context.Context, page, pageSize int) ([]domain.Rabbit, int64, error)
	// BredFemales returns the pregnancy scan candidates.
	BredFemales(ctx context.Context) ([]domain.Rabbit, error)
	// Stats fingerprints the occupant list for ETags.
	Stats(ctx context.Context) (int64, *time.Time, error)
}

// BreedingService performs breeding attempts.
type BreedingService interface {
	AttemptBreed(ctx context.Context, a, b int) (*services.BreedOutcome, error)
}

// ChatService manages notification destinations.
type ChatService interface {
	Register(ctx context.Context, chatID int64, name string) (*domain.ChatRegistration, error)
	List(ctx context.Context) ([]domain.ChatRegistration, error)
}

// IdempotencyStore remembers outcomes of unsafe requests.
type IdempotencyStore interface {
	Lookup(ctx context.Context, actor, scope, key string, now time.Time) (*domain.Idempotency, error)
	Remember(ctx context.Context, actor, scope, key string, cageID, status int) error
}

// BotHandler answers one chat update.
type BotHandler interface {
	Handle(ctx context.Context, u bot.Update) bot.Reply
}

//
// Handler wiring
//

// Deps are the collaborators of Handlers. Idempotency may be nil, which
// disables replay; Locale selects the default language of rendered text.
type Deps struct {
	Rabbits     RabbitService
	Breeding    BreedingService
	Chats       ChatService
	Bot         BotHandler
	Idempotency IdempotencyStore
	Locale      string
	Now         func() time.Time
}

// Handlers groups the HTTP endpoints.
type Handlers struct {
	rabbits  RabbitService
	breeding BreedingService
	chats    ChatService
	bot      BotHandler
	idem     IdempotencyStore
	locale   string
	now      func() time.Time
}

// New constructs Handlers from d.
func New(d Deps) *Handlers {
	now := d.Now
	if now == nil {
		now = time.Now
	}
	return &Handlers{
		rabbits:  d.Rabbits,
		breeding: d.Breeding,
		chats:    d.Chats,
		bot:      d.Bot,
		idem:     d.Idempotency,
		locale:   d.Locale,
		now:      now,
	}
}

//
// DTOs
//

// Pagination carries pagination metadata for list responses.
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
}

func newPagination(page, pageSize int, total int64) Pagination {
	totalPages := utils.TotalPages(total, pageSize)
	return Pagination{
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
	}
}

//
// Helpers
//

// clampPagination parses and bounds the page and page_size query params.
func clampPagination(c *gin.Context) (page, pageSize int) {
	const (
		defaultPage     = 1
		defaultPageSize = 20
		maxPageSize     = 100
	)
	page = utils.AtoiDefault(c.Query("page"), defaultPage)
	if page < 1 {
		page = 1
	}
	pageSize = utils.Clamp(utils.AtoiDefault(c.Query("page_size"), defaultPageSize), 1, maxPageSize)
	return
}

// cageParam reads the :cage path parameter. Non-numeric and non-positive
// values yield 0, which the services reject as ErrInvalidCage.
func cageParam(c *gin.Context) int {
	n, _ := utils.ParseCageID(c.Param("cage"))
	return n
}

// Package httpapi wires the HTTP transport (Gin) to application services,
// middleware, and route handlers. It centralizes cross-cutting concerns such
// as tracing, correlation IDs, caller identity, logging/redaction, panic
// recovery, metrics, compression, CORS, security headers, idempotency, and
// rate limiting.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	"github.com/tbourn/go-rabbitry/docs"
	"github.com/tbourn/go-rabbitry/internal/bot"
	"github.com/tbourn/go-rabbitry/internal/config"
	"github.com/tbourn/go-rabbitry/internal/domain"
	"github.com/tbourn/go-rabbitry/internal/http/handlers"
	"github.com/tbourn/go-rabbitry/internal/http/middleware"
	"github.com/tbourn/go-rabbitry/internal/i18n"
	"github.com/tbourn/go-rabbitry/internal/repo"
	"github.com/tbourn/go-rabbitry/internal/services"
	"github.com/tbourn/go-rabbitry/internal/session"
)

// rabbitRepoShim adapts the repository free functions to services.RabbitRepo.
type rabbitRepoShim struct{}

func (rabbitRepoShim) GetRabbit(ctx context.Context, db *gorm.DB, cageID int) (*domain.Rabbit, error) {
	return repo.GetRabbit(ctx, db, cageID)
}

func (rabbitRepoShim) UpsertRabbit(ctx context.Context, db *gorm.DB, r *domain.Rabbit) error {
	return repo.UpsertRabbit(ctx, db, r)
}

func (rabbitRepoShim) UpdateBreedingDate(ctx context.Context, db *gorm.DB, cageID, version int, date *time.Time) error {
	return repo.UpdateBreedingDate(ctx, db, cageID, version, date)
}

func (rabbitRepoShim) MarkEmpty(ctx context.Context, db *gorm.DB, cageID int) error {
	return repo.MarkEmpty(ctx, db, cageID)
}

func (rabbitRepoShim) ListRabbits(ctx context.Context, db *gorm.DB, f repo.RabbitFilter) ([]domain.Rabbit, error) {
	return repo.ListRabbits(ctx, db, f)
}

func (rabbitRepoShim) CountRabbits(ctx context.Context, db *gorm.DB, f repo.RabbitFilter) (int64, error) {
	return repo.CountRabbits(ctx, db, f)
}

func (rabbitRepoShim) ListRabbitsPage(ctx context.Context, db *gorm.DB, f repo.RabbitFilter, offset, limit int) ([]domain.Rabbit, error) {
	return repo.ListRabbitsPage(ctx, db, f, offset, limit)
}

// chatRepoShim adapts the repository free functions to services.ChatRepo.
type chatRepoShim struct{}

func (chatRepoShim) RegisterChat(ctx context.Context, db *gorm.DB, chatID int64, name string, now time.Time) (*domain.ChatRegistration, error) {
	return repo.RegisterChat(ctx, db, chatID, name, now)
}

func (chatRepoShim) ListChats(ctx context.Context, db *gorm.DB) ([]domain.ChatRegistration, error) {
	return repo.ListChats(ctx, db)
}

func (chatRepoShim) GetChat(ctx context.Context, db *gorm.DB, chatID int64) (*domain.ChatRegistration, error) {
	return repo.GetChat(ctx, db, chatID)
}

// Services are the application services built over one database handle.
// cmd/rabbitry shares them between the HTTP API and the scanner.
type Services struct {
	DB          *gorm.DB
	Rabbits     *services.RabbitService
	Breeding    *services.BreedingService
	Chats       *services.ChatService
	Idempotency *services.IdempotencyService
}

// NewServices builds the services over db.
func NewServices(db *gorm.DB, cfg config.Config) Services {
	return Services{
		DB:          db,
		Rabbits:     services.NewRabbitService(db, rabbitRepoShim{}),
		Breeding:    services.NewBreedingService(db, rabbitRepoShim{}),
		Chats:       services.NewChatService(db, chatRepoShim{}),
		Idempotency: services.NewIdempotencyService(db, cfg.IdempotencyTTL),
	}
}

// RegisterRoutes attaches all middleware and HTTP endpoints to the given Gin
// engine and mounts the public API under cfg.APIBasePath.
//
// Middleware order matters:
//  1. OpenTelemetry: trace everything
//  2. RequestID and Actor: correlation id and caller identity
//  3. RedactingLogger (or Logger): structured access logs
//  4. Recovery: capture panics after logger
//  5. Body size limiter
//  6. Metrics
//  7. Idempotency validator (before rate limiter to allow bypass on replay)
//  8. Rate limiter (per actor/IP, bypass on replay)
//  9. CORS, security headers and gzip
func RegisterRoutes(r *gin.Engine, svc Services, sessions session.Store, cfg config.Config) {
	r.HandleMethodNotAllowed = true

	// 1) Trace all HTTP requests
	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))

	// 2) Correlate requests and logs, identify the caller
	r.Use(middleware.RequestID(), middleware.Actor())

	// 3) Structured access logging, redacted unless LOG_REDACT=false
	if cfg.LogRedact {
		r.Use(middleware.RedactingLogger(middleware.RedactOptions{
			MaskHeaders: []string{"X-Telegram-Bot-Api-Secret-Token"},
		}))
	} else {
		r.Use(middleware.Logger())
	}

	// 4) Panic recovery to JSON 500 (with request id)
	r.Use(middleware.Recovery())

	// 5) Global body size limit (1 MiB)
	r.Use(limitBody(1 << 20))

	// 6) Prometheus metrics and /metrics endpoint
	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 7) Idempotency validation (before rate limiting)
	r.Use(middleware.IdempotencyValidator(
		middleware.IdempotencyOptions{MaxLen: 200},
		svc.Idempotency.Exists,
	))

	// 8) Token-bucket rate limiter per actor/IP
	rl := middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.KeyByActorOrIP())
	r.Use(rl.Handler())

	// 9) CORS posture (safe defaults: allow all if none configured)
	r.Use(corsMiddleware(cfg.CORS.AllowedOrigins)...)
	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS:   cfg.Security.EnableHSTS,
		HSTSMaxAge:   cfg.Security.HSTSMaxAge,
		NoStore:      false,
		EnablePolicy: true,
	}))
	r.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/metrics"})))

	// Fallbacks
	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, handlers.ErrCodeNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, handlers.ErrCodeMethodNotAllowed, "method not allowed")
	})

	// Liveness plus store reachability
	r.GET("/health", health(svc.DB))

	if cfg.SwaggerEnabled {
		docs.SwaggerInfo.BasePath = cfg.APIBasePath
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	// Dependency injection: handlers ← services ← repo/db
	b := &bot.Bot{
		Rabbits:  svc.Rabbits,
		Breeding: svc.Breeding,
		Chats:    svc.Chats,
		Sessions: sessions,
		Printer:  i18n.NewPrinter(cfg.Locale),
	}
	h := handlers.New(handlers.Deps{
		Rabbits:     svc.Rabbits,
		Breeding:    svc.Breeding,
		Chats:       svc.Chats,
		Bot:         b,
		Idempotency: svc.Idempotency,
		Locale:      cfg.Locale,
	})

	api := groupWithPrefix(r, cfg.APIBasePath)
	{
		// Cages
		api.GET("/rabbits", h.ListRabbits)
		api.GET("/rabbits/:cage", h.GetRabbit)
		api.PUT("/rabbits/:cage", h.RegisterRabbit)
		api.DELETE("/rabbits/:cage", h.DeleteRabbit)

		// Breeding
		api.POST("/rabbits/:cage/breed", h.BreedRabbit)
		api.POST("/rabbits/:cage/breeding/reset", h.ResetBreeding)

		// Notification destinations
		api.GET("/chats", h.ListChats)
		api.POST("/chats", h.RegisterChat)
		api.GET("/notifications/preview", h.PreviewNotifications)

		// Conversational front-end
		api.POST("/bot/updates", h.BotUpdate)
	}
}

// corsMiddleware returns the origin echo shim and gin-contrib/cors for the
// configured allowlist. An empty list allows every origin without credentials.
func corsMiddleware(origins []string) []gin.HandlerFunc {
	base := cors.Config{
		AllowMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders: []string{
			"Origin", "Content-Type", "Accept", "Authorization", "If-None-Match",
			middleware.HeaderActor, middleware.HeaderIdempotencyKey,
		},
		ExposeHeaders:    []string{"X-Request-ID", "ETag", middleware.HeaderReplayed, "Content-Length"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}

	if len(origins) == 0 {
		base.AllowAllOrigins = true
		// Force ACAO: * even for requests without an Origin header.
		return []gin.HandlerFunc{
			func(c *gin.Context) {
				c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
				c.Next()
			},
			cors.New(base),
		}
	}

	allowed := make(map[string]struct{}, len(origins))
	for _, o := range origins {
		allowed[o] = struct{}{}
	}
	base.AllowOrigins = origins
	return []gin.HandlerFunc{
		func(c *gin.Context) {
			if origin := c.GetHeader("Origin"); origin != "" {
				if _, ok := allowed[origin]; ok {
					h := c.Writer.Header()
					h.Set("Access-Control-Allow-Origin", origin)
					h.Add("Vary", "Origin")
				}
			}
			c.Next()
		},
		cors.New(base),
	}
}

// health reports 200 when the store answers a ping within two seconds.
func health(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(ctx)
		}
		if err != nil {
			middleware.LoggerFrom(c).Error().Err(err).Msg("health: store unreachable")
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "store": "unreachable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}

// limitBody returns a Gin middleware that caps the request body size for all
// endpoints to maxBytes using http.MaxBytesReader. Requests exceeding the cap
// will cause downstream body reads to error.
func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// groupWithPrefix mounts a group at prefix, treating "/" (or empty) as root.
func groupWithPrefix(r *gin.Engine, prefix string) *gin.RouterGroup {
	if prefix == "" || prefix == "/" {
		return r.Group("")
	}
	return r.Group(prefix)
}

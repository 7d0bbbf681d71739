// Command rabbitry serves the rabbitry REST API and bot webhook and runs the
// pregnancy reminder scanner in the background.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/tbourn/go-rabbitry/internal/config"
	httpapi "github.com/tbourn/go-rabbitry/internal/http"
	"github.com/tbourn/go-rabbitry/internal/i18n"
	"github.com/tbourn/go-rabbitry/internal/notify"
	"github.com/tbourn/go-rabbitry/internal/observability"
	"github.com/tbourn/go-rabbitry/internal/repo"
	"github.com/tbourn/go-rabbitry/internal/scanner"
	"github.com/tbourn/go-rabbitry/internal/services"
	"github.com/tbourn/go-rabbitry/internal/session"
	"github.com/tbourn/go-rabbitry/internal/sysutil"
)

func main() {
	// A missing .env is normal outside development.
	_ = godotenv.Load()

	cfg := config.MustLoad()
	sysutil.ConfigureLogging(os.Stderr, cfg.OTEL.ServiceName, cfg.LogLevel, cfg.LogPretty)
	gin.SetMode(cfg.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		log.Fatal().Err(err).Msg("rabbitry stopped")
	}
	log.Info().Msg("rabbitry stopped")
}

func run(ctx context.Context, cfg config.Config) error {
	version := observability.Version()

	shutdownTracing, err := observability.SetupTracing(ctx, cfg.OTEL, version)
	if err != nil {
		return err
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(sctx); err != nil {
			log.Warn().Err(err).Msg("tracing shutdown")
		}
	}()

	db, err := repo.Open(repo.Options{
		Driver:  cfg.DB.Driver,
		Path:    cfg.DB.Path,
		DSN:     cfg.DB.DSN,
		Tracing: cfg.OTEL.Enabled,
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := repo.Close(db); err != nil {
			log.Warn().Err(err).Msg("close store")
		}
	}()
	if err := repo.AutoMigrate(db); err != nil {
		return err
	}
	observability.PublishBuildInfo(version, cfg.DB.Driver)

	sessions, closeSessions, err := openSessions(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeSessions()

	svc := httpapi.NewServices(db, cfg)

	var wg sync.WaitGroup
	scan := &scanner.Scanner{
		Females:  svc.Rabbits,
		Chats:    svc.Chats,
		Sender:   newSender(cfg.Bot),
		Printer:  i18n.NewPrinter(cfg.Locale),
		Interval: cfg.Scan.Interval,
		Backoff:  cfg.Scan.Backoff,
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		scan.Run(ctx)
	}()
	wg.Add(1)
	go func() {
		defer wg.Done()
		purgeIdempotency(ctx, svc.Idempotency, time.Hour)
	}()

	r := gin.New()
	httpapi.RegisterRoutes(r, svc, sessions, cfg)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().
			Str("addr", srv.Addr).
			Str("version", version).
			Str("store", cfg.DB.Driver).
			Str("base_path", cfg.APIBasePath).
			Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("shutdown requested")
	case err := <-errCh:
		if err != nil {
			return err
		}
	}

	sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		log.Error().Err(err).Msg("http shutdown")
	}
	wg.Wait()
	return nil
}

// openSessions returns the Redis store when REDIS_ADDR is set and reachable,
// otherwise the in-process store.
func openSessions(ctx context.Context, cfg config.Config) (session.Store, func(), error) {
	if cfg.Redis.Addr == "" {
		log.Info().Dur("ttl", cfg.SessionTTL).Msg("sessions kept in memory")
		return session.NewMemoryStore(cfg.SessionTTL), func() {}, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	store := session.NewRedisStore(client, cfg.SessionTTL)

	pctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := store.Ping(pctx); err != nil {
		_ = client.Close()
		return nil, nil, err
	}
	log.Info().Str("addr", cfg.Redis.Addr).Dur("ttl", cfg.SessionTTL).Msg("sessions kept in redis")
	return store, func() { _ = client.Close() }, nil
}

// newSender posts through the Bot API when a token is configured and only
// logs otherwise.
func newSender(cfg config.BotConfig) notify.Sender {
	if cfg.Token == "" {
		log.Warn().Msg("BOT_TOKEN not set, notifications will only be logged")
		return notify.LogSender{}
	}
	return notify.NewBotAPI(notify.BotAPIOptions{
		BaseURL:    cfg.APIURL,
		Token:      cfg.Token,
		Timeout:    cfg.Timeout,
		RetryCount: 2,
	})
}

// purgeIdempotency drops expired idempotency records every interval until
// ctx is done.
func purgeIdempotency(ctx context.Context, idem *services.IdempotencyService, every time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			n, err := idem.Purge(ctx, now.UTC())
			if err != nil {
				log.Warn().Err(err).Msg("idempotency purge")
				continue
			}
			if n > 0 {
				log.Debug().Int64("removed", n).Msg("idempotency purge")
			}
		}
	}
}

package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/mc-consultoria/proteccion-civil/internal/config"
	"github.com/mc-consultoria/proteccion-civil/internal/contact"
	"github.com/mc-consultoria/proteccion-civil/internal/db"
	"github.com/mc-consultoria/proteccion-civil/internal/es"
	"github.com/mc-consultoria/proteccion-civil/internal/events"
	"github.com/mc-consultoria/proteccion-civil/internal/fallback"
	"github.com/mc-consultoria/proteccion-civil/internal/handlers"
	"github.com/mc-consultoria/proteccion-civil/internal/hash"
	"github.com/mc-consultoria/proteccion-civil/internal/logging"
	loggingmw "github.com/mc-consultoria/proteccion-civil/internal/middleware/logging"
	"github.com/mc-consultoria/proteccion-civil/internal/repo"
	"github.com/mc-consultoria/proteccion-civil/internal/service/auth"
	"github.com/mc-consultoria/proteccion-civil/internal/service/catalog"
	"github.com/mc-consultoria/proteccion-civil/internal/service/requests"
	"github.com/mc-consultoria/proteccion-civil/internal/service/search"
	"github.com/mc-consultoria/proteccion-civil/internal/tokens"
	httpserver "github.com/mc-consultoria/proteccion-civil/internal/transport/http"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.LogLevel).With("service", cfg.ServiceName)
	slog.SetDefault(logger)

	gdb, err := db.Open(cfg.DBDriver, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db open: %v", err)
	}
	store := &repo.GormRepo{DB: gdb}

	bgCtx, stopBackground := context.WithCancel(context.Background())
	defer stopBackground()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	switch err := db.Ping(ctx, gdb); {
	case err != nil && cfg.DBAutoMigrate:
		logger.Warn("db_unreachable", "reason", "serving fallback data, migration deferred", "error", err)
		go func() {
			if err := store.MigrateWhenReachable(bgCtx, 5*time.Second); err != nil {
				if !errors.Is(err, context.Canceled) {
					logger.Error("db_migrate_failed", "error", err)
				}
				return
			}
			logger.Info("db_migrated", "deferred", true)
		}()
	case err != nil:
		logger.Warn("db_unreachable", "reason", "serving fallback data", "error", err)
	case cfg.DBAutoMigrate:
		if err := store.Migrate(ctx); err != nil {
			logger.Error("db_migrate_failed", "error", err)
		}
	}
	cancel()

	demo := fallback.Default()
	if cfg.DemoUsersFile != "" {
		if demo, err = fallback.Load(cfg.DemoUsersFile); err != nil {
			log.Fatalf("demo users: %v", err)
		}
	}

	hasher, err := hash.New(cfg.PasswordHasher)
	if err != nil {
		log.Fatalf("hasher: %v", err)
	}

	secret, configured := cfg.Secret()
	if !configured {
		logger.Warn("jwt_secret_generated", "reason", "JWT_SECRET is empty, tokens will not survive a restart")
	}

	var publisher events.Publisher = events.Nop{}
	var producer *events.Producer
	if len(cfg.KafkaBrokers) > 0 {
		producer = events.NewProducer(cfg.KafkaBrokers)
		publisher = producer
	}

	var searcher search.Searcher = search.Disabled{}
	if cfg.ESURL != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		client, err := es.NewClient(ctx, es.Config{URL: cfg.ESURL, User: cfg.ESUser, Password: cfg.ESPassword}, logger)
		cancel()
		if err != nil {
			logger.Warn("search_disabled", "reason", "elasticsearch unreachable", "error", err)
		} else {
			searcher = search.NewES(client, cfg.ESIndex)
		}
	}

	contactInfo := contact.Info{WhatsAppNumber: cfg.WhatsAppNumber, Email: cfg.CompanyEmail}

	authSvc := &auth.Service{
		Repo:   store,
		Demo:   demo,
		Hasher: hasher,
		Tokens: &tokens.Issuer{Secret: secret, TTL: cfg.AccessTokenTTL},
		Events: publisher,
	}
	catalogSvc := &catalog.Service{Repo: store, Search: searcher, Events: publisher, Contact: contactInfo}
	requestSvc := &requests.Service{Repo: store, Events: publisher, Contact: contactInfo}

	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = httpserver.ErrorHandler
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(loggingmw.RequestLogger(logger))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{AllowOrigins: cfg.CORSOrigins}))
	e.Use(echomw.BodyLimit("1M"))

	httpserver.Register(e, &httpserver.Deps{
		HealthHandler:  &handlers.HealthHandler{PingMessage: cfg.PingMessage, Auth: authSvc},
		AuthHandler:    &handlers.AuthHandler{Svc: authSvc},
		ProductHandler: &handlers.ProductHandler{Svc: catalogSvc},
		RequestHandler: &handlers.RequestHandler{Svc: requestSvc},
		JWTSecret:      secret,
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           e,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		ReadHeaderTimeout: 3 * time.Second,
	}

	go func() {
		logger.Info("server_listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	stopBackground()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server_shutdown_failed", "error", err)
	}
	if producer != nil {
		if err := producer.Close(); err != nil {
			logger.Warn("kafka_close_failed", "error", err)
		}
	}
	if err := db.Close(gdb); err != nil {
		logger.Warn("db_close_failed", "error", err)
	}

	logger.Info("server_stopped")
}

// Command seed loads the demo catalog and the fallback accounts into the
// primary store. Running it twice leaves the store unchanged.
package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"time"

	"github.com/mc-consultoria/proteccion-civil/internal/config"
	"github.com/mc-consultoria/proteccion-civil/internal/db"
	"github.com/mc-consultoria/proteccion-civil/internal/fallback"
	"github.com/mc-consultoria/proteccion-civil/internal/hash"
	"github.com/mc-consultoria/proteccion-civil/internal/logging"
	"github.com/mc-consultoria/proteccion-civil/internal/models"
	"github.com/mc-consultoria/proteccion-civil/internal/repo"
	"github.com/mc-consultoria/proteccion-civil/internal/service/catalog"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.LogLevel).With("service", cfg.ServiceName, "cmd", "seed")
	slog.SetDefault(logger)

	gdb, err := db.Open(cfg.DBDriver, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db open: %v", err)
	}
	defer db.Close(gdb)

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	store := &repo.GormRepo{DB: gdb}
	if err := store.Migrate(ctx); err != nil {
		log.Fatalf("migrate: %v", err)
	}

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

	if err := seed(ctx, store, demo, hasher, logger); err != nil {
		log.Fatalf("seed: %v", err)
	}
}

func seed(ctx context.Context, store *repo.GormRepo, demo *fallback.Registry, hasher hash.Hasher, l *slog.Logger) error {
	for _, p := range catalog.DemoCatalog() {
		created, err := store.SeedProduct(ctx, &p)
		if err != nil {
			return err
		}
		l.Info("seed_product", "product_id", p.ID, "titulo", p.Titulo, "created", created)
	}

	for _, du := range demo.Users() {
		pw, err := hasher.Hash(du.Password)
		if err != nil {
			return err
		}
		u := &models.User{
			Email:           du.Email,
			PasswordHash:    pw,
			Nombre:          du.Nombre,
			ApellidoPaterno: du.ApellidoPaterno,
			ApellidoMaterno: du.ApellidoMaterno,
			Role:            du.Role,
			IsActive:        true,
		}
		err = store.CreateUserIfNotExists(ctx, u)
		switch {
		case err == nil:
			l.Info("seed_user", "email", u.Email, "role", u.Role, "created", true)
		case errors.Is(err, repo.ErrUserAlreadyExists):
			l.Info("seed_user", "email", u.Email, "created", false)
		default:
			return err
		}
	}
	return nil
}

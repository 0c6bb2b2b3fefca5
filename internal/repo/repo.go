package repo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"gorm.io/gorm"

	pkgdb "github.com/mc-consultoria/proteccion-civil/internal/db"
	"github.com/mc-consultoria/proteccion-civil/internal/models"
)

var (
	ErrNotFound          = errors.New("record not found")
	ErrUserAlreadyExists = errors.New("user already exists")
)

const uniqueViolation = "23505"

type GormRepo struct {
	DB *gorm.DB
}

func (r *GormRepo) Migrate(ctx context.Context) error {
	if err := r.DB.WithContext(ctx).AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// MigrateWhenReachable pings every interval until the store answers, then
// migrates. It returns ctx.Err() if the store never comes up.
func (r *GormRepo) MigrateWhenReachable(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if err := r.Ping(ctx); err == nil {
			return r.Migrate(ctx)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (r *GormRepo) Ping(ctx context.Context) error {
	return pkgdb.Ping(ctx, r.DB)
}

// Now asks the store for its clock. It doubles as the connectivity probe
// behind /api/test-db.
func (r *GormRepo) Now(ctx context.Context) (string, error) {
	var now string
	if err := r.DB.WithContext(ctx).Raw("SELECT CURRENT_TIMESTAMP").Row().Scan(&now); err != nil {
		return "", err
	}
	return now, nil
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return true
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

package database

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"yamdb/internal/config"
	"yamdb/internal/microservices/http-api/models"

	"github.com/glebarez/sqlite"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const sqliteScheme = "sqlite://"

// Connect opens the database named by DATABASE_URL and verifies the connection.
func Connect(cfg *config.Config) (*gorm.DB, error) {
	db, err := Open(cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql handle: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		// close the handle if ping fails to avoid resource leak
		sqlDB.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	log.Info().Str("dialect", db.Dialector.Name()).Msg("connected to the database")
	return db, nil
}

// Open picks postgres or sqlite from the URL. sqlite://:memory: gives a
// private in-memory database, used by tests.
func Open(url string) (*gorm.DB, error) {
	gormCfg := &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
		NowFunc:        func() time.Time { return time.Now().UTC() },
	}

	var dialector gorm.Dialector
	isSQLite := strings.HasPrefix(url, sqliteScheme)
	if isSQLite {
		dialector = sqlite.Open(sqliteDSN(strings.TrimPrefix(url, sqliteScheme)))
	} else {
		dialector = postgres.Open(url)
	}

	db, err := gorm.Open(dialector, gormCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if isSQLite {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get sql handle: %w", err)
		}
		// sqlite allows one writer; a single connection also keeps :memory: databases alive
		sqlDB.SetMaxOpenConns(1)
	}

	if err := db.SetupJoinTable(&models.Title{}, "Genres", &models.TitleGenre{}); err != nil {
		return nil, fmt.Errorf("failed to set up title genres join table: %w", err)
	}
	return db, nil
}

func sqliteDSN(path string) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
}

// Migrate creates or updates the schema for every model.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	log.Info().Msg("database migrations applied successfully")
	return nil
}

// IsUniqueViolation reports whether err came from a unique index.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

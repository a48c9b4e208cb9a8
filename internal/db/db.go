package db

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"askboard/internal/config"
	"askboard/internal/models"
	"askboard/internal/utils"

	slogGorm "github.com/orandin/slog-gorm"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// Open connects to the datastore named by cfg.URL. Accepted forms are
// "postgres://...", "postgresql://...", "postgres=<dsn>", "sqlite://<path>"
// and "sqlite=<path>".
func Open(cfg config.DBConfig, logger *slog.Logger) (*gorm.DB, error) {
	var dial gorm.Dialector

	isSqlite := false
	openConns := cfg.MaxConns
	switch {
	case strings.HasPrefix(cfg.URL, "sqlite://"), strings.HasPrefix(cfg.URL, "sqlite="):
		path := strings.TrimPrefix(strings.TrimPrefix(cfg.URL, "sqlite://"), "sqlite=")
		if !strings.HasPrefix(path, ":memory:") {
			if err := os.MkdirAll(filepath.Dir(path), os.ModePerm); err != nil {
				return nil, fmt.Errorf("create sqlite dir: %w", err)
			}
		}
		dial = sqlite.Open(sqliteDSN(path))
		// sqlite has a single writer; one connection keeps transactions serial.
		openConns = 1
		isSqlite = true
	case strings.HasPrefix(cfg.URL, "postgresql://"), strings.HasPrefix(cfg.URL, "postgres://"):
		dial = postgres.Open(cfg.URL)
	case strings.HasPrefix(cfg.URL, "postgres="):
		dial = postgres.Open(strings.TrimPrefix(cfg.URL, "postgres="))
	default:
		return nil, fmt.Errorf("unsupported or unrecognized DATABASE_URL value")
	}

	if logger == nil {
		logger = slog.Default()
	}

	db, err := gorm.Open(dial, &gorm.Config{
		SkipDefaultTransaction: true,
		TranslateError:         true,
		Logger:                 slogGorm.New(slogGorm.WithLogger(logger)),
	})
	if err != nil {
		return nil, err
	}

	sqldb, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqldb.SetMaxIdleConns(openConns)
	sqldb.SetMaxOpenConns(openConns)
	// A closed sqlite connection takes an in-memory database with it.
	if !isSqlite {
		sqldb.SetConnMaxIdleTime(time.Hour)
	}

	logger.Info("database connection established", "dialect", db.Dialector.Name())
	return db, nil
}

// sqliteDSN appends the connection pragmas, so every connection the pool
// opens gets them rather than only the first one.
func sqliteDSN(path string) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_foreign_keys=on&_journal_mode=WAL&_synchronous=NORMAL"
}

// Migrate creates or updates every table.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// SeedAdmin makes sure an admin account exists for the configured e-mail.
// An existing user with that e-mail is promoted; nothing happens when the
// credentials are not configured.
func SeedAdmin(db *gorm.DB, cfg config.AdminConfig, logger *slog.Logger) error {
	if cfg.Email == "" || cfg.Password == "" {
		return nil
	}
	if logger == nil {
		logger = slog.Default()
	}

	var user models.User
	err := db.Where("email = ?", cfg.Email).Take(&user).Error
	switch {
	case err == nil:
		if user.IsAdmin() {
			logger.Info("admin already seeded, skipping", "user_id", user.ID)
			return nil
		}
		if err := db.Model(&user).Update("role", models.RoleAdmin).Error; err != nil {
			return fmt.Errorf("promote admin: %w", err)
		}
		logger.Info("existing user promoted to admin", "user_id", user.ID)
		return nil
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("lookup admin: %w", err)
	}

	hash, err := utils.HashPassword(cfg.Password)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}
	user = models.User{
		Username: "admin",
		Email:    cfg.Email,
		Password: hash,
		Role:     models.RoleAdmin,
	}
	if err := db.Create(&user).Error; err != nil {
		return fmt.Errorf("create admin: %w", err)
	}
	logger.Info("admin account created", "user_id", user.ID)
	return nil
}

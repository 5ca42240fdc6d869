package database

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go-shop-manager/internal/auth"
	"go-shop-manager/internal/config"
	"go-shop-manager/internal/logger"
	"go-shop-manager/internal/models"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// DB is the process-wide connection set by Connect.
var DB *gorm.DB

// Connect opens the configured database (waiting for it to come up),
// migrates the schema and seeds the default admin.
func Connect(cfg *config.Config) (*gorm.DB, error) {
	log := logger.For("database")

	retries := cfg.Database.Retries
	if retries < 1 {
		retries = 1
	}

	var (
		db  *gorm.DB
		err error
	)
	for i := 0; i < retries; i++ {
		db, err = Open(cfg.Database)
		if err == nil {
			break
		}
		log.WithError(err).Warnf("failed to connect to database, retrying in 2 seconds (%d/%d)", i+1, retries)
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		return nil, fmt.Errorf("connect after %d attempts: %w", retries, err)
	}
	log.WithField("driver", cfg.Database.Driver).Info("connected to database")

	if err := AutoMigrate(db); err != nil {
		return nil, err
	}
	log.Info("database schema synced")

	if err := SeedAdmin(db, cfg.Auth); err != nil {
		return nil, err
	}

	DB = db
	return db, nil
}

// Open creates a connection for the given driver without migrating.
func Open(cfg config.DatabaseConfig) (*gorm.DB, error) {
	if cfg.DSN == "" {
		return nil, errors.New("database dsn is empty")
	}

	gormLogger := gormlogger.Default.LogMode(gormlogger.Silent)
	if cfg.LogMode {
		gormLogger = gormlogger.Default.LogMode(gormlogger.Info)
	}

	var dialector gorm.Dialector
	switch strings.ToLower(cfg.Driver) {
	case "mysql":
		dialector = mysql.Open(cfg.DSN)
	case "sqlite", "":
		if !strings.HasPrefix(cfg.DSN, "file:") && cfg.DSN != ":memory:" {
			if err := os.MkdirAll(filepath.Dir(cfg.DSN), 0o755); err != nil {
				return nil, fmt.Errorf("create db dir: %w", err)
			}
		}
		dialector = sqlite.Open(cfg.DSN)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{Logger: gormLogger})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if cfg.Tracing {
		if err := db.Use(otelgorm.NewPlugin()); err != nil {
			return nil, fmt.Errorf("enable tracing: %w", err)
		}
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql db: %w", err)
	}

	if db.Dialector.Name() == "sqlite" {
		// one writer; keeps PRAGMAs on the single pooled connection
		sqlDB.SetMaxOpenConns(1)
		_, _ = sqlDB.Exec("PRAGMA foreign_keys = ON;")
		_, _ = sqlDB.Exec("PRAGMA busy_timeout = 5000;")
	} else {
		sqlDB.SetMaxOpenConns(20)
		sqlDB.SetMaxIdleConns(5)
		sqlDB.SetConnMaxLifetime(time.Hour)
	}

	return db, nil
}

// AutoMigrate runs schema migrations for all models.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

// SeedAdmin creates the configured admin account when no user has its email.
func SeedAdmin(db *gorm.DB, cfg config.AuthConfig) error {
	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		return nil
	}

	var count int64
	if err := db.Model(&models.User{}).Where("email = ?", cfg.AdminEmail).Count(&count).Error; err != nil {
		return fmt.Errorf("look up admin: %w", err)
	}
	if count > 0 {
		return nil
	}

	hash, err := auth.HashPassword(cfg.AdminPassword)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}
	admin := models.User{
		Username:     cfg.AdminUsername,
		Email:        cfg.AdminEmail,
		PasswordHash: hash,
		Role:         models.RoleAdmin,
	}
	if err := db.Create(&admin).Error; err != nil {
		return fmt.Errorf("create admin: %w", err)
	}
	logger.For("database").WithField("email", admin.Email).Info("default admin account created")
	return nil
}

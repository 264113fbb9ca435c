package infrastructure

import (
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	pgdriver "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"user-management-service/internal/adapter/db/orm"
	"user-management-service/internal/config"
	"user-management-service/pkg/logger"
)

// NewDatabase creates a new database connection with GORM configuration
func NewDatabase(cfg *config.Config, l *zap.Logger) (*gorm.DB, error) {
	dialector, err := dialectorFor(&cfg.DB)
	if err != nil {
		return nil, err
	}

	// Configure GORM logger
	gormLogger := logger.NewGormLoggerWithConfig(l, cfg.Logger.SlowQuerySeconds, cfg.Logger.Level)

	// TranslateError maps unique violations to gorm.ErrDuplicatedKey.
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         gormLogger,
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Get underlying sql.DB for connection pool configuration
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	// Configure connection pool
	sqlDB.SetMaxOpenConns(cfg.DB.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.DB.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.DB.ConnMaxLifetime) * time.Second)
	sqlDB.SetConnMaxIdleTime(time.Duration(cfg.DB.ConnMaxIdleTime) * time.Second)

	if cfg.DB.AutoMigrate {
		if err := orm.AutoMigrate(db); err != nil {
			_ = sqlDB.Close()
			return nil, fmt.Errorf("failed to migrate database: %w", err)
		}
		l.Info("database schema migrated")
	}

	l.Info("database connected successfully",
		zap.String("driver", cfg.DB.Driver),
		zap.Int("max_open_conns", cfg.DB.MaxOpenConns),
		zap.Int("max_idle_conns", cfg.DB.MaxIdleConns),
		zap.Int("conn_max_lifetime_seconds", cfg.DB.ConnMaxLifetime),
		zap.Int("conn_max_idle_time_seconds", cfg.DB.ConnMaxIdleTime),
	)

	return db, nil
}

func dialectorFor(cfg *config.DatabaseConfig) (gorm.Dialector, error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		return pgdriver.Open(cfg.DSN()), nil
	case config.DriverSQLite:
		// busy_timeout makes pooled connections wait on the file lock.
		return sqlite.Open(cfg.SQLitePath + "?_pragma=busy_timeout(5000)"), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

// CloseDatabase closes the database connection
func CloseDatabase(db *gorm.DB) error {
	if db == nil {
		return nil
	}

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	if err := sqlDB.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}

	return nil
}

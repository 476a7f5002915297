package database

import (
	"context"
	"fmt"
	"time"

	"github.com/stylehub/stylehub-api/internal/config"
	"github.com/stylehub/stylehub-api/internal/domain/entity"
	"github.com/stylehub/stylehub-api/internal/infrastructure/seed"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// NewPostgresDB creates a new PostgreSQL database connection. SQL logging
// goes through log at warn level, or info when debug is set.
func NewPostgresDB(cfg *config.DatabaseConfig, log *zap.Logger, debug bool) (*gorm.DB, error) {
	logLevel := logger.Warn
	if debug {
		logLevel = logger.Info
	}
	gormLogger := logger.New(zap.NewStdLog(log.Named("gorm")), logger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  logLevel,
		IgnoreRecordNotFoundError: true,
	})

	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  cfg.DSN(),
		PreferSimpleProtocol: true, // disables implicit prepared statement usage
	}), &gorm.Config{
		Logger:         gormLogger,
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	log.Info("connected to postgres", zap.String("host", cfg.Host), zap.String("database", cfg.Name))
	return db, nil
}

// AutoMigrate runs GORM auto-migration for all entities
func AutoMigrate(db *gorm.DB, log *zap.Logger) error {
	log.Info("running database migrations")

	err := db.AutoMigrate(
		&entity.User{},
		&entity.Category{},
		&entity.Product{},
		&entity.Order{},
		&entity.OrderItem{},
		&entity.IdempotencyKey{},
	)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// SeedDefaultData inserts data into an empty database. Users are inserted
// whenever their email is free, so the administrator is created even when
// the catalog already exists.
func SeedDefaultData(ctx context.Context, db *gorm.DB, data seed.Data, log *zap.Logger) error {
	db = db.WithContext(ctx)

	if len(data.Users) > 0 {
		result := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&data.Users)
		if result.Error != nil {
			return fmt.Errorf("seed users: %w", result.Error)
		}
		log.Info("seeded users", zap.Int64("inserted", result.RowsAffected))
	}

	var products int64
	if err := db.Model(&entity.Product{}).Count(&products).Error; err != nil {
		return fmt.Errorf("count products: %w", err)
	}
	if products > 0 {
		log.Info("catalog already present, skipping demo seed", zap.Int64("products", products))
		return nil
	}

	return db.Transaction(func(tx *gorm.DB) error {
		if len(data.Categories) > 0 {
			if err := tx.Omit("Products").Create(&data.Categories).Error; err != nil {
				return fmt.Errorf("seed categories: %w", err)
			}
		}
		if len(data.Products) > 0 {
			if err := tx.Omit("Category").Create(&data.Products).Error; err != nil {
				return fmt.Errorf("seed products: %w", err)
			}
		}
		for i := range data.Orders {
			if err := tx.Omit("Customer").Create(&data.Orders[i]).Error; err != nil {
				return fmt.Errorf("seed order %s: %w", data.Orders[i].OrderNumber, err)
			}
		}
		log.Info("seeded demo data",
			zap.Int("categories", len(data.Categories)),
			zap.Int("products", len(data.Products)),
			zap.Int("orders", len(data.Orders)))
		return nil
	})
}

package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stylehub/stylehub-api/internal/domain/entity"
	"github.com/stylehub/stylehub-api/internal/domain/enum"
	domainRepo "github.com/stylehub/stylehub-api/internal/domain/repository"
	"gorm.io/gorm"
)

type analyticsRepository struct {
	db *gorm.DB
}

// NewAnalyticsRepository creates a new analytics repository
func NewAnalyticsRepository(db *gorm.DB) domainRepo.AnalyticsRepository {
	return &analyticsRepository{db: db}
}

func (r *analyticsRepository) OrdersSince(ctx context.Context, since time.Time) ([]entity.Order, error) {
	var orders []entity.Order
	err := r.db.WithContext(ctx).
		Scopes(CreatedBetween(&since, nil)).
		Preload("Items").
		Order("created_at ASC").
		Find(&orders).Error
	return orders, err
}

func (r *analyticsRepository) UsersSince(ctx context.Context, since time.Time) ([]entity.User, error) {
	var users []entity.User
	err := r.db.WithContext(ctx).
		Scopes(CreatedBetween(&since, nil)).
		Find(&users).Error
	return users, err
}

func (r *analyticsRepository) Catalog(ctx context.Context) ([]entity.Product, error) {
	var products []entity.Product
	err := r.db.WithContext(ctx).
		Preload("Category").
		Order("created_at ASC, name ASC").
		Find(&products).Error
	return products, err
}

func (r *analyticsRepository) Totals(ctx context.Context) (*domainRepo.StoreTotals, error) {
	totals := &domainRepo.StoreTotals{}
	db := r.db.WithContext(ctx)

	if err := db.Model(&entity.Product{}).Count(&totals.Products).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&entity.Order{}).Count(&totals.Orders).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&entity.User{}).
		Where("role = ?", enum.UserRoleCustomer).
		Count(&totals.Customers).Error; err != nil {
		return nil, err
	}

	var revenue decimal.NullDecimal
	if err := db.Model(&entity.Order{}).
		Select("SUM(total)").
		Scan(&revenue).Error; err != nil {
		return nil, err
	}
	totals.Revenue = decimal.Zero
	if revenue.Valid {
		totals.Revenue = revenue.Decimal
	}
	return totals, nil
}

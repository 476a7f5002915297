package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/stylehub/stylehub-api/internal/domain/entity"
	"github.com/stylehub/stylehub-api/internal/domain/enum"
	domainRepo "github.com/stylehub/stylehub-api/internal/domain/repository"
	"gorm.io/gorm"
)

// errInsufficientStock rolls back a batch decrement.
var errInsufficientStock = errors.New("insufficient stock")

type productRepository struct {
	db *gorm.DB
}

// NewProductRepository creates a new product repository
func NewProductRepository(db *gorm.DB) domainRepo.ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) Create(ctx context.Context, product *entity.Product) error {
	return translate(r.db.WithContext(ctx).Omit("Category").Create(product).Error)
}

func (r *productRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Product, error) {
	var product entity.Product
	err := r.db.WithContext(ctx).Preload("Category").First(&product, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &product, err
}

func (r *productRepository) GetBySlug(ctx context.Context, slug string) (*entity.Product, error) {
	var product entity.Product
	err := r.db.WithContext(ctx).Preload("Category").First(&product, "slug = ?", slug).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &product, err
}

// GetByIDs retrieves multiple products by their IDs in a single query
func (r *productRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]entity.Product, error) {
	if len(ids) == 0 {
		return []entity.Product{}, nil
	}
	var products []entity.Product
	err := r.db.WithContext(ctx).
		Preload("Category").
		Where("id IN ?", ids).
		Find(&products).Error
	return products, err
}

func (r *productRepository) Update(ctx context.Context, product *entity.Product) error {
	return saveExisting(r.db.WithContext(ctx), product)
}

func (r *productRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&entity.Product{}, "id = ?", id).Error
}

func (r *productRepository) List(ctx context.Context, params *domainRepo.ProductFilterParams) ([]entity.Product, int64, error) {
	var products []entity.Product
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Product{})

	if params.Search != "" {
		query = query.Where("name ILIKE ?", "%"+params.Search+"%")
	}
	if params.CategoryID != nil {
		query = query.Where("category_id = ?", *params.CategoryID)
	}
	if params.Section != enum.SectionNone {
		query = query.Where("section = ?", params.Section)
	}
	if params.Featured != nil {
		query = query.Where("featured = ?", *params.Featured)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Scopes(Paginate(params.Pagination)).
		Preload("Category").
		Order("created_at DESC, name ASC").
		Find(&products).Error

	return products, total, err
}

func (r *productRepository) CountByCategory(ctx context.Context, categoryID uuid.UUID) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&entity.Product{}).
		Where("category_id = ?", categoryID).
		Count(&n).Error
	return n, err
}

// AtomicDecrementBatch runs one conditional UPDATE per product inside a
// transaction: UPDATE products SET inventory = inventory - n WHERE id = ? AND
// inventory >= n. Any miss rolls the whole batch back.
func (r *productRepository) AtomicDecrementBatch(ctx context.Context, decrements map[uuid.UUID]int) ([]uuid.UUID, error) {
	if len(decrements) == 0 {
		return nil, nil
	}

	var failedIDs []uuid.UUID

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for id, amount := range decrements {
			result := tx.Model(&entity.Product{}).
				Where("id = ? AND inventory >= ?", id, amount).
				Update("inventory", gorm.Expr("inventory - ?", amount))
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				failedIDs = append(failedIDs, id)
			}
		}
		if len(failedIDs) > 0 {
			return errInsufficientStock
		}
		return nil
	})

	if errors.Is(err, errInsufficientStock) {
		return failedIDs, nil
	}
	return nil, err
}

// AtomicIncrementBatch restores stock for multiple products in one transaction.
func (r *productRepository) AtomicIncrementBatch(ctx context.Context, increments map[uuid.UUID]int) error {
	if len(increments) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for id, amount := range increments {
			if err := tx.Model(&entity.Product{}).
				Where("id = ?", id).
				Update("inventory", gorm.Expr("inventory + ?", amount)).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

type categoryRepository struct {
	db *gorm.DB
}

// NewCategoryRepository creates a new category repository
func NewCategoryRepository(db *gorm.DB) domainRepo.CategoryRepository {
	return &categoryRepository{db: db}
}

func (r *categoryRepository) Create(ctx context.Context, category *entity.Category) error {
	return translate(r.db.WithContext(ctx).Create(category).Error)
}

func (r *categoryRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Category, error) {
	var category entity.Category
	err := r.db.WithContext(ctx).First(&category, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &category, err
}

func (r *categoryRepository) GetBySlug(ctx context.Context, slug string) (*entity.Category, error) {
	var category entity.Category
	err := r.db.WithContext(ctx).First(&category, "slug = ?", slug).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &category, err
}

// Update also rewrites the category label stored on its products.
func (r *categoryRepository) Update(ctx context.Context, category *entity.Category) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := saveExisting(tx, category); err != nil {
			return err
		}
		return tx.Model(&entity.Product{}).
			Where("category_id = ?", category.ID).
			Update("category_name", category.Name).Error
	})
}

func (r *categoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&entity.Category{}, "id = ?", id).Error
}

func (r *categoryRepository) List(ctx context.Context, section enum.Section) ([]entity.Category, error) {
	var categories []entity.Category
	query := r.db.WithContext(ctx).Model(&entity.Category{})
	if section != enum.SectionNone {
		query = query.Where("section = ?", section)
	}
	err := query.Order("name ASC").Find(&categories).Error
	return categories, err
}

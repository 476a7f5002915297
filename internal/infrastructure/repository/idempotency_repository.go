package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/stylehub/stylehub-api/internal/domain/entity"
	domainRepo "github.com/stylehub/stylehub-api/internal/domain/repository"
	"gorm.io/gorm"
)

type idempotencyRepository struct {
	db *gorm.DB
}

// NewIdempotencyRepository creates a new idempotency repository
func NewIdempotencyRepository(db *gorm.DB) domainRepo.IdempotencyRepository {
	return &idempotencyRepository{db: db}
}

func (r *idempotencyRepository) GetByKey(ctx context.Context, key string, userID uuid.UUID) (*entity.IdempotencyKey, error) {
	var ikey entity.IdempotencyKey
	err := r.db.WithContext(ctx).
		Where("key = ? AND user_id = ?", key, userID).
		First(&ikey).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &ikey, err
}

func (r *idempotencyRepository) Create(ctx context.Context, ikey *entity.IdempotencyKey) error {
	return translate(r.db.WithContext(ctx).Create(ikey).Error)
}

func (r *idempotencyRepository) DeleteExpired(ctx context.Context, now time.Time) error {
	return r.db.WithContext(ctx).
		Where("expires_at < ?", now).
		Delete(&entity.IdempotencyKey{}).Error
}

func (r *idempotencyRepository) Complete(ctx context.Context, key string, userID uuid.UUID, code int, body string) error {
	res := r.db.WithContext(ctx).
		Model(&entity.IdempotencyKey{}).
		Where("key = ? AND user_id = ?", key, userID).
		Updates(map[string]any{"response_code": code, "response_body": body})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domainRepo.ErrNotFound
	}
	return nil
}

func (r *idempotencyRepository) Release(ctx context.Context, key string, userID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("key = ? AND user_id = ? AND response_code = 0", key, userID).
		Delete(&entity.IdempotencyKey{}).Error
}

package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stylehub/stylehub-api/internal/domain/entity"
)

// IdempotencyRepository defines the interface for idempotency key operations
type IdempotencyRepository interface {
	// GetByKey returns the stored key for the user, or nil when none exists.
	GetByKey(ctx context.Context, key string, userID uuid.UUID) (*entity.IdempotencyKey, error)
	// Create inserts the key, returning ErrDuplicate when the user already
	// holds it. A key with ResponseCode 0 is a reservation for a request
	// still in flight.
	Create(ctx context.Context, ikey *entity.IdempotencyKey) error
	// Complete stores the response for a reserved key.
	Complete(ctx context.Context, key string, userID uuid.UUID, code int, body string) error
	// Release drops a reservation that never produced a stored response.
	Release(ctx context.Context, key string, userID uuid.UUID) error
	// DeleteExpired removes keys that expired before now.
	DeleteExpired(ctx context.Context, now time.Time) error
}

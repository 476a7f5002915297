package memory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stylehub/stylehub-api/internal/domain/entity"
	domainRepo "github.com/stylehub/stylehub-api/internal/domain/repository"
)

type idempotencyRepository struct {
	s *Store
}

func NewIdempotencyRepository(s *Store) domainRepo.IdempotencyRepository {
	return &idempotencyRepository{s: s}
}

func (r *idempotencyRepository) GetByKey(ctx context.Context, key string, userID uuid.UUID) (*entity.IdempotencyKey, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	ikey, ok := r.s.idempotency[idempotencyKey(userID, key)]
	if !ok {
		return nil, nil
	}
	return &ikey, nil
}

func (r *idempotencyRepository) Create(ctx context.Context, ikey *entity.IdempotencyKey) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	k := idempotencyKey(ikey.UserID, ikey.Key)
	if _, exists := r.s.idempotency[k]; exists {
		return domainRepo.ErrDuplicate
	}
	r.s.fill(&ikey.ID, &ikey.CreatedAt, nil)
	r.s.idempotency[k] = *ikey
	return nil
}

func (r *idempotencyRepository) DeleteExpired(ctx context.Context, now time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for k, ikey := range r.s.idempotency {
		if ikey.IsExpired(now) {
			delete(r.s.idempotency, k)
		}
	}
	return nil
}

func (r *idempotencyRepository) Complete(ctx context.Context, key string, userID uuid.UUID, code int, body string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	k := idempotencyKey(userID, key)
	ikey, ok := r.s.idempotency[k]
	if !ok {
		return domainRepo.ErrNotFound
	}
	ikey.ResponseCode = code
	ikey.ResponseBody = body
	r.s.idempotency[k] = ikey
	return nil
}

func (r *idempotencyRepository) Release(ctx context.Context, key string, userID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	k := idempotencyKey(userID, key)
	if ikey, ok := r.s.idempotency[k]; ok && ikey.Pending() {
		delete(r.s.idempotency, k)
	}
	return nil
}

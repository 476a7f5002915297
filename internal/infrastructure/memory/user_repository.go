package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/stylehub/stylehub-api/internal/domain/entity"
	domainRepo "github.com/stylehub/stylehub-api/internal/domain/repository"
	"github.com/stylehub/stylehub-api/pkg/pagination"
)

type userRepository struct {
	s *Store
}

func NewUserRepository(s *Store) domainRepo.UserRepository {
	return &userRepository{s: s}
}

func (r *userRepository) Create(ctx context.Context, user *entity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	user.Email = strings.ToLower(user.Email)
	for _, u := range r.s.users {
		if u.Email == user.Email {
			return domainRepo.ErrDuplicate
		}
	}
	r.s.fill(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	r.s.users[user.ID] = *user
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	u, ok := r.s.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	email = strings.ToLower(email)
	for _, u := range r.s.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, nil
}

func (r *userRepository) Delete(ctx context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	delete(r.s.users, id)
	return nil
}

func (r *userRepository) List(ctx context.Context, params *domainRepo.UserFilterParams) ([]entity.User, int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	search := strings.ToLower(strings.TrimSpace(params.Search))
	var matched []entity.User
	for _, u := range r.s.users {
		if params.Role != nil && u.Role != *params.Role {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(u.Name), search) &&
			!strings.Contains(u.Email, search) {
			continue
		}
		matched = append(matched, u)
	}
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].Email < matched[j].Email
	})

	if params.Pagination == nil {
		params.Pagination = pagination.DefaultPagination()
	}
	params.Pagination.Validate()
	page, total := pagination.Slice(matched, params.Pagination)
	return page, total, nil
}

package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/stylehub/stylehub-api/internal/domain/entity"
	"github.com/stylehub/stylehub-api/internal/domain/enum"
	"github.com/stylehub/stylehub-api/internal/domain/repository"
	"github.com/stylehub/stylehub-api/pkg/apperror"
	"github.com/stylehub/stylehub-api/pkg/pagination"
)

// CustomerService gives admins access to customer accounts
type CustomerService struct {
	userRepo repository.UserRepository
}

// NewCustomerService creates a new customer service
func NewCustomerService(userRepo repository.UserRepository) *CustomerService {
	return &CustomerService{userRepo: userRepo}
}

// ListCustomers lists users with the customer role, optionally matching
// search against name or email.
func (s *CustomerService) ListCustomers(ctx context.Context, params *pagination.PaginationParams, search string) (*pagination.PaginatedResult[entity.User], error) {
	if params == nil {
		params = pagination.DefaultPagination()
	}
	params.Validate()

	role := enum.UserRoleCustomer
	users, total, err := s.userRepo.List(ctx, &repository.UserFilterParams{
		Pagination: params,
		Role:       &role,
		Search:     search,
	})
	if err != nil {
		return nil, err
	}

	pag := pagination.NewPagination(params.Page, params.PerPage, total)
	return pagination.NewPaginatedResult(users, pag), nil
}

// GetCustomer retrieves a customer by ID. Admin accounts are not customers.
func (s *CustomerService) GetCustomer(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil || user.IsAdmin() {
		return nil, apperror.NewNotFoundError("Customer")
	}
	return user, nil
}

// DeleteCustomer deletes a customer
func (s *CustomerService) DeleteCustomer(ctx context.Context, id uuid.UUID) error {
	if _, err := s.GetCustomer(ctx, id); err != nil {
		return err
	}
	return s.userRepo.Delete(ctx, id)
}

package service

import (
	"context"
	"errors"
	"net/mail"
	"strings"

	"github.com/google/uuid"
	"github.com/stylehub/stylehub-api/internal/domain/entity"
	"github.com/stylehub/stylehub-api/internal/domain/enum"
	"github.com/stylehub/stylehub-api/internal/domain/repository"
	"github.com/stylehub/stylehub-api/pkg/apperror"
	"github.com/stylehub/stylehub-api/pkg/utils"
)

const minPasswordLength = 8

// AuthService handles authentication-related operations
type AuthService struct {
	userRepo   repository.UserRepository
	jwtManager *utils.JWTManager
}

// NewAuthService creates a new auth service
func NewAuthService(userRepo repository.UserRepository, jwtManager *utils.JWTManager) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		jwtManager: jwtManager,
	}
}

// LoginInput represents the login input
type LoginInput struct {
	Email    string
	Password string
}

// LoginOutput represents the login output
type LoginOutput struct {
	User        *entity.User
	AccessToken string
	ExpiresIn   int64
}

// Login authenticates a user and returns a signed access token
func (s *AuthService) Login(ctx context.Context, input *LoginInput) (*LoginOutput, error) {
	user, err := s.userRepo.GetByEmail(ctx, strings.TrimSpace(input.Email))
	if err != nil {
		return nil, err
	}
	if user == nil || !utils.CheckPassword(user.Password, input.Password) {
		return nil, apperror.ErrInvalidCredentials
	}

	token, err := s.jwtManager.GenerateAccessToken(user.ID, user.Email, user.Role.String())
	if err != nil {
		return nil, err
	}

	return &LoginOutput{
		User:        user,
		AccessToken: token,
		ExpiresIn:   int64(s.jwtManager.Expiry().Seconds()),
	}, nil
}

// RegisterInput represents the registration input
type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

// Register creates a new customer account
func (s *AuthService) Register(ctx context.Context, input *RegisterInput) (*entity.User, error) {
	name := strings.TrimSpace(input.Name)
	email := strings.ToLower(strings.TrimSpace(input.Email))

	var fieldErrors []apperror.FieldError
	if name == "" {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: "name", Message: "name is required"})
	}
	if _, err := mail.ParseAddress(email); err != nil {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: "email", Message: "email is invalid"})
	}
	if len(input.Password) < minPasswordLength {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: "password", Message: "password must be at least 8 characters"})
	}
	if len(fieldErrors) > 0 {
		return nil, apperror.NewValidationError(fieldErrors)
	}

	existingUser, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existingUser != nil {
		return nil, apperror.NewConflictError("Email already registered")
	}

	hashedPassword, err := utils.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	user := &entity.User{
		Name:     name,
		Email:    email,
		Password: hashedPassword,
		Role:     enum.UserRoleCustomer,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperror.NewConflictError("Email already registered")
		}
		return nil, err
	}
	return user, nil
}

// GetCurrentUser returns the authenticated user
func (s *AuthService) GetCurrentUser(ctx context.Context, userID uuid.UUID) (*entity.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperror.NewNotFoundError("User")
	}
	return user, nil
}

package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/PrateekJaiswal16/taskflow-api/internal/domain"
	"github.com/PrateekJaiswal16/taskflow-api/internal/platform/logger"
	"github.com/PrateekJaiswal16/taskflow-api/internal/service/auth"
	"github.com/PrateekJaiswal16/taskflow-api/internal/store"
)

// UserRepository defines the repository interface for user roster management.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	List(ctx context.Context) ([]*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// CreateUserInput carries the fields for a new roster member.
type CreateUserInput struct {
	Name     string
	Email    string
	Password string
	Role     domain.Role
}

// UpdateUserInput carries an admin's partial update of a roster member.
// Nil fields keep their prior value.
type UpdateUserInput struct {
	Name  *string
	Email *string
	Role  *domain.Role
}

// UpdateProfileInput carries a user's update of their own profile. Changing
// the password requires the current one.
type UpdateProfileInput struct {
	Name            *string
	Email           *string
	NewPassword     *string
	CurrentPassword string
}

// UserService manages the user roster: admin CRUD plus self-service profile
// operations.
type UserService interface {
	CreateUser(ctx context.Context, actor domain.Actor, input CreateUserInput) (*domain.User, error)
	ListUsers(ctx context.Context, actor domain.Actor) ([]*domain.User, error)
	GetUser(ctx context.Context, actor domain.Actor, id uuid.UUID) (*domain.User, error)
	UpdateUser(ctx context.Context, actor domain.Actor, id uuid.UUID, input UpdateUserInput) (*domain.User, error)
	DeleteUser(ctx context.Context, actor domain.Actor, id uuid.UUID) error

	GetProfile(ctx context.Context, actor domain.Actor) (*domain.User, error)
	UpdateProfile(ctx context.Context, actor domain.Actor, input UpdateProfileInput) (*domain.User, error)
	VerifyPassword(ctx context.Context, actor domain.Actor, password string) error
}

// userServiceImpl implements the UserService interface.
type userServiceImpl struct {
	repo      UserRepository
	passwords auth.PasswordManager
	logger    *slog.Logger
}

// NewUserService creates a new UserService.
// It returns an error if any of the required dependencies are nil.
func NewUserService(
	repo UserRepository,
	passwords auth.PasswordManager,
	logger *slog.Logger,
) (UserService, error) {
	if repo == nil {
		return nil, errors.New("user repository cannot be nil")
	}
	if passwords == nil {
		return nil, errors.New("password manager cannot be nil")
	}
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	return &userServiceImpl{
		repo:      repo,
		passwords: passwords,
		logger:    logger.With(slog.String("component", "user_service")),
	}, nil
}

// CreateUser implements UserService.CreateUser. Admin only.
func (s *userServiceImpl) CreateUser(
	ctx context.Context,
	actor domain.Actor,
	input CreateUserInput,
) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if !actor.IsAdmin() {
		return nil, fmt.Errorf("%w: create user", ErrForbidden)
	}

	user, err := domain.NewUser(input.Name, input.Email, input.Password, input.Role)
	if err != nil {
		return nil, err
	}

	hashed, err := s.passwords.Hash(user.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	user.HashedPassword = hashed
	user.Password = ""

	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, store.ErrEmailExists) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	log.Info("user created by admin",
		slog.String("user_id", user.ID.String()),
		slog.String("created_by", actor.ID.String()),
		slog.String("role", string(user.Role)))
	return user, nil
}

// ListUsers implements UserService.ListUsers. Admin only.
func (s *userServiceImpl) ListUsers(ctx context.Context, actor domain.Actor) ([]*domain.User, error) {
	if !actor.IsAdmin() {
		return nil, fmt.Errorf("%w: list users", ErrForbidden)
	}
	return s.repo.List(ctx)
}

// GetUser implements UserService.GetUser. Admin only.
func (s *userServiceImpl) GetUser(
	ctx context.Context,
	actor domain.Actor,
	id uuid.UUID,
) (*domain.User, error) {
	if !actor.IsAdmin() {
		return nil, fmt.Errorf("%w: get user", ErrForbidden)
	}
	return s.fetch(ctx, id)
}

// UpdateUser implements UserService.UpdateUser. Admin only; applies the
// fields present in the input.
func (s *userServiceImpl) UpdateUser(
	ctx context.Context,
	actor domain.Actor,
	id uuid.UUID,
	input UpdateUserInput,
) (*domain.User, error) {
	if !actor.IsAdmin() {
		return nil, fmt.Errorf("%w: update user", ErrForbidden)
	}

	user, err := s.fetch(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		user.Name = strings.TrimSpace(*input.Name)
	}
	if input.Email != nil {
		user.Email = strings.ToLower(strings.TrimSpace(*input.Email))
	}
	if input.Role != nil {
		user.Role = *input.Role
	}

	if err := s.update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// DeleteUser implements UserService.DeleteUser. Admin only.
func (s *userServiceImpl) DeleteUser(ctx context.Context, actor domain.Actor, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if !actor.IsAdmin() {
		return fmt.Errorf("%w: delete user", ErrForbidden)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		switch {
		case errors.Is(err, store.ErrUserNotFound):
			return ErrUserNotFound
		case errors.Is(err, store.ErrUserHasTasks):
			return ErrUserHasTasks
		default:
			return err
		}
	}

	log.Info("user deleted",
		slog.String("user_id", id.String()),
		slog.String("deleted_by", actor.ID.String()))
	return nil
}

// GetProfile implements UserService.GetProfile. Any authenticated actor may
// read their own record.
func (s *userServiceImpl) GetProfile(ctx context.Context, actor domain.Actor) (*domain.User, error) {
	return s.fetch(ctx, actor.ID)
}

// UpdateProfile implements UserService.UpdateProfile. The actor edits their
// own record; a password change requires the current password to match.
func (s *userServiceImpl) UpdateProfile(
	ctx context.Context,
	actor domain.Actor,
	input UpdateProfileInput,
) (*domain.User, error) {
	user, err := s.fetch(ctx, actor.ID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		user.Name = strings.TrimSpace(*input.Name)
	}
	if input.Email != nil {
		user.Email = strings.ToLower(strings.TrimSpace(*input.Email))
	}

	if input.NewPassword != nil {
		if input.CurrentPassword == "" {
			return nil, fmt.Errorf("%w: current password required", ErrInvalidCredentials)
		}
		if err := s.passwords.Compare(user.HashedPassword, input.CurrentPassword); err != nil {
			return nil, ErrInvalidCredentials
		}
		// Validate the plaintext against the domain rules before hashing.
		user.Password = *input.NewPassword
		if err := user.Validate(); err != nil {
			return nil, err
		}
		hashed, err := s.passwords.Hash(user.Password)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		user.HashedPassword = hashed
		user.Password = ""
	}

	if err := s.update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// VerifyPassword implements UserService.VerifyPassword.
func (s *userServiceImpl) VerifyPassword(ctx context.Context, actor domain.Actor, password string) error {
	user, err := s.fetch(ctx, actor.ID)
	if err != nil {
		return err
	}

	if err := s.passwords.Compare(user.HashedPassword, password); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}

func (s *userServiceImpl) fetch(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *userServiceImpl) update(ctx context.Context, user *domain.User) error {
	if err := s.repo.Update(ctx, user); err != nil {
		switch {
		case errors.Is(err, store.ErrEmailExists):
			return ErrEmailTaken
		case errors.Is(err, store.ErrUserNotFound):
			return ErrUserNotFound
		default:
			return err
		}
	}
	return nil
}

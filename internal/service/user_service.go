package service

import (
	"context"
	"fmt"
	"time"

	"github.com/collab-blog-api/internal/auth"
	"github.com/collab-blog-api/internal/models"
	"github.com/collab-blog-api/internal/repository"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

// UserService defines the interface for user management and authentication
type UserService interface {
	Register(ctx context.Context, username, email, password, role string) (*models.User, error)
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	Refresh(ctx context.Context, refreshToken string) (*LoginResult, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	List(ctx context.Context) ([]*models.User, error)
	UpdateRole(ctx context.Context, id, role string) (*models.User, error)
}

// LoginResult carries the authenticated user and their tokens
type LoginResult struct {
	User         *models.User `json:"user"`
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
}

type userService struct {
	users    repository.UserRepository
	verifier *auth.Verifier
	log      zerolog.Logger
}

func newUserService(users repository.UserRepository, verifier *auth.Verifier, log zerolog.Logger) UserService {
	return &userService{
		users:    users,
		verifier: verifier,
		log:      log.With().Str("service", "user").Logger(),
	}
}

// Register creates a new user with a hashed password
func (s *userService) Register(ctx context.Context, username, email, password, role string) (*models.User, error) {
	if username == "" || email == "" || password == "" {
		return nil, fmt.Errorf("%w: username, email and password are required", ErrValidation)
	}
	if len(password) < 6 {
		return nil, fmt.Errorf("%w: password must be at least 6 characters", ErrValidation)
	}
	if role == "" {
		role = models.RoleReader
	}
	if !models.ValidRoles[role] {
		return nil, fmt.Errorf("%w: invalid role %q", ErrValidation, role)
	}

	if taken, err := s.users.EmailExists(ctx, email); err != nil {
		return nil, err
	} else if taken {
		return nil, fmt.Errorf("%w: email already in use", ErrValidation)
	}
	if taken, err := s.users.UsernameExists(ctx, username); err != nil {
		return nil, err
	} else if taken {
		return nil, fmt.Errorf("%w: username already in use", ErrValidation)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		ID:           uuid.New().String(),
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
		CreatedAt:    time.Now(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.log.Info().Str("user_id", user.ID).Str("role", user.Role).Msg("User registered")
	return user, nil
}

// Login verifies credentials and issues access and refresh tokens
func (s *userService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return s.issueTokens(user)
}

// Refresh exchanges a valid refresh token for a new token pair
func (s *userService) Refresh(ctx context.Context, refreshToken string) (*LoginResult, error) {
	userID, err := s.verifier.VerifyRefresh(refreshToken)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}
	return s.issueTokens(user)
}

func (s *userService) issueTokens(user *models.User) (*LoginResult, error) {
	access, err := s.verifier.Issue(user)
	if err != nil {
		return nil, fmt.Errorf("failed to sign access token: %w", err)
	}
	refresh, err := s.verifier.IssueRefresh(user)
	if err != nil {
		return nil, fmt.Errorf("failed to sign refresh token: %w", err)
	}
	return &LoginResult{User: user, AccessToken: access, RefreshToken: refresh}, nil
}

// GetByID retrieves a user by ID
func (s *userService) GetByID(ctx context.Context, id string) (*models.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrNotFound
	}
	return user, nil
}

// List retrieves all users
func (s *userService) List(ctx context.Context) ([]*models.User, error) {
	return s.users.List(ctx)
}

// UpdateRole changes a user's role
func (s *userService) UpdateRole(ctx context.Context, id, role string) (*models.User, error) {
	if !models.ValidRoles[role] {
		return nil, fmt.Errorf("%w: invalid role %q", ErrValidation, role)
	}
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrNotFound
	}
	if err := s.users.UpdateRole(ctx, id, role); err != nil {
		return nil, err
	}
	user.Role = role
	return user, nil
}

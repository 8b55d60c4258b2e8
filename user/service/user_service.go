package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"companion-chat/backend/pkg/jwt"
	"companion-chat/backend/pkg/logger"
	"companion-chat/backend/user/models"
	"companion-chat/backend/user/repository"
)

var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// UserService handles signup, login and account lookup.
type UserService struct {
	repo repository.UserRepository
	jwt  *jwt.Service
	log  *logger.Logger
}

func NewUserService(repo repository.UserRepository, jwtService *jwt.Service, log *logger.Logger) *UserService {
	return &UserService{
		repo: repo,
		jwt:  jwtService,
		log:  log.WithComponent("user-service"),
	}
}

// Signup creates an account and issues a token for it.
func (s *UserService) Signup(ctx context.Context, req *models.SignupRequest) (*models.AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	if _, err := s.repo.GetByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, fmt.Errorf("checking existing account: %w", err)
	}

	user := &models.User{
		Email:    email,
		Password: req.Password,
		Name:     strings.TrimSpace(req.Name),
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("creating account: %w", err)
	}

	token, err := s.jwt.GenerateToken(user.ID, user.Email)
	if err != nil {
		return nil, fmt.Errorf("issuing token: %w", err)
	}

	s.log.Info("account created", "user_id", user.ID)
	return &models.AuthResponse{Token: token, User: user}, nil
}

// Login authenticates an account and issues a token.
// Lookup and password failures return the same error so callers
// cannot probe which emails are registered.
func (s *UserService) Login(ctx context.Context, req *models.LoginRequest) (*models.AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("looking up account: %w", err)
	}
	if !user.CheckPassword(req.Password) {
		return nil, ErrInvalidCredentials
	}

	token, err := s.jwt.GenerateToken(user.ID, user.Email)
	if err != nil {
		return nil, fmt.Errorf("issuing token: %w", err)
	}

	return &models.AuthResponse{Token: token, User: user}, nil
}

// GetUser fetches an account by id
func (s *UserService) GetUser(ctx context.Context, id uint) (*models.User, error) {
	return s.repo.GetByID(ctx, id)
}

package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/caltrack/caltrack-go/internal/crypto"
	"github.com/caltrack/caltrack-go/internal/form"
	"github.com/caltrack/caltrack-go/internal/model"
	"github.com/caltrack/caltrack-go/internal/repository"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailTaken         = errors.New("email already taken")
)

// UserStore is the persistence the account services need.
type UserStore interface {
	Create(ctx context.Context, user *model.User) error
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByID(ctx context.Context, id string) (*model.User, error)
	List(ctx context.Context) ([]model.User, error)
	Update(ctx context.Context, user *model.User) error
}

// AuthService handles registration, credential checks and session tokens.
type AuthService struct {
	repo      UserStore
	jwtSecret string
	jwtExpiry time.Duration
	now       func() time.Time
}

// NewAuthService creates a new AuthService.
func NewAuthService(repo UserStore, secret string, expiry time.Duration) *AuthService {
	return &AuthService{
		repo:      repo,
		jwtSecret: secret,
		jwtExpiry: expiry,
		now:       time.Now,
	}
}

// Register creates a new account with the default role, status and limit and
// returns a session token for it. A duplicate email is reported by the store's
// unique index, not by a prior lookup.
func (s *AuthService) Register(ctx context.Context, req model.CreateUserRequest) (model.AuthResponse, error) {
	if err := form.ValidateCreateUser(req); err != nil {
		return model.AuthResponse{}, err
	}

	hash, err := crypto.HashPassword(req.Password)
	if err != nil {
		return model.AuthResponse{}, err
	}

	user := &model.User{
		Name:              req.Name,
		Email:             req.Email,
		PasswordHash:      hash,
		Role:              model.RoleUser,
		IsActive:          true,
		IsPremium:         false,
		DailyCalorieLimit: model.DefaultDailyCalorieLimit,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return model.AuthResponse{}, ErrEmailTaken
		}
		return model.AuthResponse{}, err
	}

	slog.Info("user registered", "user_id", user.ID)
	return s.issue(*user)
}

// Authenticate checks an email and password pair and returns a session token.
// An unknown email yields ErrUserNotFound, a wrong password ErrInvalidCredentials.
func (s *AuthService) Authenticate(ctx context.Context, req model.LoginRequest) (model.AuthResponse, error) {
	user, err := s.repo.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return model.AuthResponse{}, ErrUserNotFound
		}
		return model.AuthResponse{}, err
	}

	match, err := crypto.VerifyPassword(req.Password, user.PasswordHash)
	if err != nil {
		return model.AuthResponse{}, err
	}
	if !match {
		return model.AuthResponse{}, ErrInvalidCredentials
	}

	return s.issue(*user)
}

// Refresh issues a new token from the stored account, so the session picks up
// profile, limit and privilege changes.
func (s *AuthService) Refresh(ctx context.Context, userID string) (model.AuthResponse, error) {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return model.AuthResponse{}, ErrUserNotFound
		}
		return model.AuthResponse{}, err
	}
	return s.issue(*user)
}

func (s *AuthService) issue(user model.User) (model.AuthResponse, error) {
	token, err := crypto.MintToken(user, s.jwtSecret, s.now(), s.jwtExpiry)
	if err != nil {
		return model.AuthResponse{}, err
	}
	return model.AuthResponse{Token: token, User: user}, nil
}

// FindByEmail is the public lookup used before login and registration. It returns
// an empty list when nobody uses the address.
func (s *AuthService) FindByEmail(ctx context.Context, email string) ([]model.User, error) {
	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return []model.User{}, nil
		}
		return nil, err
	}
	return []model.User{*user}, nil
}

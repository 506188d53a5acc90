package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/caltrack/caltrack-go/internal/crypto"
	"github.com/caltrack/caltrack-go/internal/form"
	"github.com/caltrack/caltrack-go/internal/model"
	"github.com/caltrack/caltrack-go/internal/repository"
)

var (
	ErrForbidden        = errors.New("forbidden")
	ErrSelfStatusChange = errors.New("you cannot change your own account status")
)

// Actor is the authenticated caller of a service operation.
type Actor struct {
	ID   string
	Role string
}

func (a Actor) IsAdmin() bool {
	return a.Role == model.RoleAdmin
}

func (a Actor) canAccess(ownerID string) bool {
	return a.IsAdmin() || a.ID == ownerID
}

// UserService handles account reads and updates.
type UserService struct {
	repo UserStore
}

func NewUserService(repo UserStore) *UserService {
	return &UserService{repo: repo}
}

// List returns every account. Admin only.
func (s *UserService) List(ctx context.Context, actor Actor) ([]model.User, error) {
	if !actor.IsAdmin() {
		return nil, ErrForbidden
	}
	return s.repo.List(ctx)
}

// Get returns one account to its owner or an admin.
func (s *UserService) Get(ctx context.Context, actor Actor, id string) (model.User, error) {
	if !actor.canAccess(id) {
		return model.User{}, ErrForbidden
	}
	user, err := s.lookup(ctx, id)
	if err != nil {
		return model.User{}, err
	}
	return *user, nil
}

// Account returns the stored account of an authenticated caller. ok is false
// when the account no longer exists.
func (s *UserService) Account(ctx context.Context, id string) (model.User, bool, error) {
	user, err := s.lookup(ctx, id)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return model.User{}, false, nil
		}
		return model.User{}, false, err
	}
	return *user, true, nil
}

// Update applies a partial update. Role, status and premium flags are admin-only,
// and an admin may not change the status of their own account.
func (s *UserService) Update(ctx context.Context, actor Actor, id string, req model.UpdateUserRequest) (model.User, error) {
	if !actor.canAccess(id) {
		return model.User{}, ErrForbidden
	}
	if err := form.ValidateUserUpdate(req); err != nil {
		return model.User{}, err
	}

	user, err := s.lookup(ctx, id)
	if err != nil {
		return model.User{}, err
	}

	if !actor.IsAdmin() && changesPrivilegedFields(user, req) {
		return model.User{}, ErrForbidden
	}
	if actor.ID == id && req.IsActive != nil && *req.IsActive != user.IsActive {
		return model.User{}, ErrSelfStatusChange
	}

	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Email != nil {
		user.Email = *req.Email
	}
	if req.Password != nil {
		hash, err := crypto.HashPassword(*req.Password)
		if err != nil {
			return model.User{}, err
		}
		user.PasswordHash = hash
	}
	if req.Role != nil {
		user.Role = *req.Role
	}
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}
	if req.IsPremium != nil {
		user.IsPremium = *req.IsPremium
	}
	if req.DailyCalorieLimit != nil {
		user.DailyCalorieLimit = *req.DailyCalorieLimit
	}

	if err := s.repo.Update(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return model.User{}, ErrEmailTaken
		}
		return model.User{}, err
	}

	if actor.ID != id {
		slog.Info("user updated by admin", "user_id", id, "admin_id", actor.ID)
	}
	return *user, nil
}

func (s *UserService) lookup(ctx context.Context, id string) (*model.User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func changesPrivilegedFields(u *model.User, req model.UpdateUserRequest) bool {
	return (req.Role != nil && *req.Role != u.Role) ||
		(req.IsActive != nil && *req.IsActive != u.IsActive) ||
		(req.IsPremium != nil && *req.IsPremium != u.IsPremium)
}

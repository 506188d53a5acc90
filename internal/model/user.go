package model

import "time"

// Roles known to the system. Anything else found in a token or a record is corruption.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// DefaultDailyCalorieLimit is assigned to newly registered accounts.
const DefaultDailyCalorieLimit = 2000

// ValidRole reports whether role is one of the known roles.
func ValidRole(role string) bool {
	return role == RoleUser || role == RoleAdmin
}

// User represents an account. PasswordHash is never serialized.
type User struct {
	ID                string    `json:"id"`
	Name              string    `json:"name"`
	Email             string    `json:"email"`
	PasswordHash      string    `json:"-"`
	Role              string    `json:"role"`
	IsActive          bool      `json:"isActive"`
	IsPremium         bool      `json:"isPremium"`
	DailyCalorieLimit int       `json:"dailyCalorieLimit"`
	CreatedAt         time.Time `json:"createdAt,omitzero"`
	UpdatedAt         time.Time `json:"updatedAt,omitzero"`
}

// IsAdmin reports whether the user holds the admin role.
func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// CreateUserRequest represents a user registration request.
type CreateUserRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest represents a credential check.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UpdateUserRequest is a partial update. Nil fields are left unchanged.
// Role, IsActive and IsPremium may only be changed by an admin.
type UpdateUserRequest struct {
	Name              *string `json:"name,omitempty"`
	Email             *string `json:"email,omitempty"`
	Password          *string `json:"password,omitempty"`
	Role              *string `json:"role,omitempty"`
	IsActive          *bool   `json:"isActive,omitempty"`
	IsPremium         *bool   `json:"isPremium,omitempty"`
	DailyCalorieLimit *int    `json:"dailyCalorieLimit,omitempty"`
}

// AuthResponse is returned by login, registration and session refresh. Token is
// minted by the store.
type AuthResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// Package admin is the client-side user directory available to admins.
package admin

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/caltrack/caltrack-go/internal/model"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

var (
	ErrSelfStatusChange = errors.New("you cannot change the status of your own account")
	ErrUnknownField     = errors.New("unknown sort field")
	ErrUserNotLoaded    = errors.New("user not in directory")
)

// Field is a sortable user column.
type Field string

const (
	FieldName              Field = "name"
	FieldEmail             Field = "email"
	FieldRole              Field = "role"
	FieldIsActive          Field = "isActive"
	FieldDailyCalorieLimit Field = "dailyCalorieLimit"
)

var fields = []Field{FieldName, FieldEmail, FieldRole, FieldIsActive, FieldDailyCalorieLimit}

func ParseField(s string) (Field, error) {
	f := Field(s)
	if !slices.Contains(fields, f) {
		return "", fmt.Errorf("%w: %q", ErrUnknownField, s)
	}
	return f, nil
}

// Sort is a column and direction.
type Sort struct {
	Field Field
	Desc  bool
}

// Toggle returns the sort after clicking field: the same field flips direction,
// another field starts ascending.
func (s Sort) Toggle(f Field) Sort {
	if s.Field == f {
		return Sort{Field: f, Desc: !s.Desc}
	}
	return Sort{Field: f}
}

// Search keeps users whose name, email or role contains term, ignoring case.
func Search(users []model.User, term string) []model.User {
	term = strings.ToLower(strings.TrimSpace(term))
	out := make([]model.User, 0, len(users))
	for _, u := range users {
		if term == "" ||
			strings.Contains(strings.ToLower(u.Name), term) ||
			strings.Contains(strings.ToLower(u.Email), term) ||
			strings.Contains(strings.ToLower(u.Role), term) {
			out = append(out, u)
		}
	}
	return out
}

// SortUsers orders users in place. Inactive sorts before active when ascending.
func SortUsers(users []model.User, s Sort) {
	col := collate.New(language.Polish, collate.IgnoreCase)
	var c func(a, b model.User) int
	switch s.Field {
	case FieldEmail:
		c = func(a, b model.User) int { return strings.Compare(a.Email, b.Email) }
	case FieldRole:
		c = func(a, b model.User) int { return strings.Compare(a.Role, b.Role) }
	case FieldIsActive:
		c = func(a, b model.User) int { return cmp.Compare(boolRank(a.IsActive), boolRank(b.IsActive)) }
	case FieldDailyCalorieLimit:
		c = func(a, b model.User) int { return cmp.Compare(a.DailyCalorieLimit, b.DailyCalorieLimit) }
	default:
		c = func(a, b model.User) int { return col.CompareString(a.Name, b.Name) }
	}
	if s.Desc {
		asc := c
		c = func(a, b model.User) int { return asc(b, a) }
	}
	slices.SortStableFunc(users, c)
}

func boolRank(b bool) int {
	if b {
		return 1
	}
	return 0
}

// Counts summarizes the directory.
type Counts struct {
	Total     int `json:"total"`
	Active    int `json:"active"`
	Suspended int `json:"suspended"`
	Admins    int `json:"admins"`
}

func Count(users []model.User) Counts {
	c := Counts{Total: len(users)}
	for _, u := range users {
		if u.IsActive {
			c.Active++
		} else {
			c.Suspended++
		}
		if u.IsAdmin() {
			c.Admins++
		}
	}
	return c
}

// UserClient is the part of the API the directory uses.
type UserClient interface {
	ListUsers(ctx context.Context) ([]model.User, error)
	UpdateUser(ctx context.Context, id string, req model.UpdateUserRequest) (model.User, error)
}

// Directory holds the loaded user list for the acting admin.
type Directory struct {
	client  UserClient
	actorID string
	users   []model.User
}

func NewDirectory(client UserClient, actorID string) *Directory {
	return &Directory{client: client, actorID: actorID}
}

// Load fetches all users.
func (d *Directory) Load(ctx context.Context) error {
	users, err := d.client.ListUsers(ctx)
	if err != nil {
		return fmt.Errorf("load users: %w", err)
	}
	d.users = users
	return nil
}

// List returns the users matching term in the given order, with counts over the
// whole directory.
func (d *Directory) List(term string, s Sort) ([]model.User, Counts) {
	out := Search(d.users, term)
	SortUsers(out, s)
	return out, Count(d.users)
}

// IsCurrentUser reports whether id is the acting admin.
func (d *Directory) IsCurrentUser(id string) bool {
	return id == d.actorID
}

// ToggleStatus suspends an active user or reactivates a suspended one. The acting
// admin's own account is refused.
func (d *Directory) ToggleStatus(ctx context.Context, id string) (model.User, error) {
	if d.IsCurrentUser(id) {
		return model.User{}, ErrSelfStatusChange
	}

	i := slices.IndexFunc(d.users, func(u model.User) bool { return u.ID == id })
	if i < 0 {
		return model.User{}, fmt.Errorf("%w: %s", ErrUserNotLoaded, id)
	}

	active := !d.users[i].IsActive
	updated, err := d.client.UpdateUser(ctx, id, model.UpdateUserRequest{IsActive: &active})
	if err != nil {
		return model.User{}, fmt.Errorf("update user %s: %w", id, err)
	}
	d.users[i] = updated
	return updated, nil
}

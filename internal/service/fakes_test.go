package service

import (
	"context"
	"sort"
	"sync"

	"github.com/caltrack/caltrack-go/internal/model"
	"github.com/caltrack/caltrack-go/internal/repository"
	"github.com/google/uuid"
)

type memUsers struct {
	mu    sync.Mutex
	users map[string]model.User
}

func newMemUsers(seed ...model.User) *memUsers {
	m := &memUsers{users: map[string]model.User{}}
	for _, u := range seed {
		m.users[u.ID] = u
	}
	return m
}

func (m *memUsers) Create(_ context.Context, u *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if existing.Email == u.Email {
			return repository.ErrDuplicateEmail
		}
	}
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	m.users[u.ID] = *u
	return nil
}

func (m *memUsers) GetByEmail(_ context.Context, email string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (m *memUsers) GetByID(_ context.Context, id string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	return &u, nil
}

func (m *memUsers) List(_ context.Context) ([]model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.User, 0, len(m.users))
	for _, u := range m.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *memUsers) Update(_ context.Context, u *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, existing := range m.users {
		if id != u.ID && existing.Email == u.Email {
			return repository.ErrDuplicateEmail
		}
	}
	m.users[u.ID] = *u
	return nil
}

type memMeals struct {
	meals map[string]model.Meal
}

func newMemMeals(seed ...model.Meal) *memMeals {
	m := &memMeals{meals: map[string]model.Meal{}}
	for _, meal := range seed {
		m.meals[meal.ID] = meal
	}
	return m
}

func (m *memMeals) Create(_ context.Context, meal *model.Meal) error {
	if meal.ID == "" {
		meal.ID = uuid.NewString()
	}
	m.meals[meal.ID] = *meal
	return nil
}

func (m *memMeals) GetByID(_ context.Context, id string) (*model.Meal, error) {
	meal, ok := m.meals[id]
	if !ok {
		return nil, repository.ErrMealNotFound
	}
	return &meal, nil
}

func (m *memMeals) List(_ context.Context, userID string) ([]model.Meal, error) {
	out := []model.Meal{}
	for _, meal := range m.meals {
		if userID == "" || meal.UserID == userID {
			out = append(out, meal)
		}
	}
	return out, nil
}

func (m *memMeals) Update(_ context.Context, meal *model.Meal) error {
	m.meals[meal.ID] = *meal
	return nil
}

func (m *memMeals) Delete(_ context.Context, id string) error {
	if _, ok := m.meals[id]; !ok {
		return repository.ErrMealNotFound
	}
	delete(m.meals, id)
	return nil
}

type memProducts struct {
	products []model.Product
}

func (m *memProducts) Create(_ context.Context, p *model.Product) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	m.products = append(m.products, *p)
	return nil
}

func (m *memProducts) ListVisible(_ context.Context, userID string) ([]model.Product, error) {
	out := []model.Product{}
	for _, p := range m.products {
		if p.UserID == "" || p.UserID == userID {
			out = append(out, p)
		}
	}
	return out, nil
}

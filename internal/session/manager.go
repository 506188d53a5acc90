// Package session owns the identity of the logged-in user on the client.
//
// The identity is read from the session token the store issues at login and
// keeps in the local state store. The client cannot sign tokens; it only reads
// their claims. Every change is published to subscribers.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/caltrack/caltrack-go/internal/api"
	"github.com/caltrack/caltrack-go/internal/crypto"
	"github.com/caltrack/caltrack-go/internal/form"
	"github.com/caltrack/caltrack-go/internal/model"
	"github.com/caltrack/caltrack-go/internal/state"
)

// Backend is the part of the REST store the session needs.
type Backend interface {
	FindUserByEmail(ctx context.Context, email string) ([]model.User, error)
	Login(ctx context.Context, email, password string) (model.AuthResponse, error)
	CreateUser(ctx context.Context, req model.CreateUserRequest) (model.AuthResponse, error)
	RefreshSession(ctx context.Context) (model.AuthResponse, error)
	UpdateUser(ctx context.Context, id string, req model.UpdateUserRequest) (model.User, error)
}

// Notifier shows operation outcomes to the user.
type Notifier interface {
	Success(msg string)
	Error(msg string)
}

type nopNotifier struct{}

func (nopNotifier) Success(string) {}
func (nopNotifier) Error(string)   {}

// Result is the outcome of a successful login or registration.
type Result struct {
	User  model.User
	Token string
}

// Manager is the client session. It is safe for concurrent use.
type Manager struct {
	backend  Backend
	store    state.Store
	ttl      time.Duration
	now      func() time.Time
	logger   *slog.Logger
	notifier Notifier
	onLogout func(ctx context.Context) error

	mu      sync.RWMutex
	current *model.User
	subs    map[int]chan *model.User
	nextSub int
}

type Option func(*Manager)

func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) { m.logger = l }
}

func WithNotifier(n Notifier) Option {
	return func(m *Manager) { m.notifier = n }
}

// WithOnLogout sets the hook that takes the user back to the login surface.
func WithOnLogout(fn func(ctx context.Context) error) Option {
	return func(m *Manager) { m.onLogout = fn }
}

// NewManager creates a session with no identity. Call Init to restore a persisted one.
func NewManager(backend Backend, store state.Store, opts ...Option) *Manager {
	m := &Manager{
		backend:  backend,
		store:    store,
		ttl:      crypto.TokenTTL,
		now:      time.Now,
		logger:   slog.Default(),
		notifier: nopNotifier{},
		subs:     make(map[int]chan *model.User),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Init restores the identity from the persisted token. A legacy user record is
// migrated to an unsigned token once; the store refuses it, so the first
// protected call ends that session. Expired or corrupt tokens are cleared.
func (m *Manager) Init(ctx context.Context) error {
	tok, ok, err := m.store.Get(ctx, state.TokenKey)
	if err != nil {
		return fmt.Errorf("load session: %w", err)
	}
	if !ok {
		return m.migrateLegacy(ctx)
	}

	claims, err := crypto.InspectToken(tok)
	if err != nil {
		m.logger.Warn("discarding corrupt session token", "error", err)
		return m.clear(ctx)
	}
	if !claims.ActiveAt(m.now()) {
		m.logger.Info("session expired", "user_id", claims.Subject)
		return m.clear(ctx)
	}

	u := claims.User()
	m.publish(&u)
	return nil
}

func (m *Manager) migrateLegacy(ctx context.Context) error {
	raw, ok, err := m.store.Get(ctx, state.LegacyUserKey)
	if err != nil {
		return fmt.Errorf("load legacy session: %w", err)
	}
	if !ok {
		m.publish(nil)
		return nil
	}

	var u model.User
	if err := json.Unmarshal([]byte(raw), &u); err != nil || u.ID == "" || !model.ValidRole(u.Role) {
		m.logger.Warn("discarding corrupt legacy session")
		return m.clear(ctx)
	}

	tok, err := crypto.UnsignedToken(u, m.now(), m.ttl)
	if err != nil {
		return fmt.Errorf("migrate legacy session: %w", err)
	}
	if _, err := m.persist(ctx, tok, u.ID); err != nil {
		return err
	}
	if err := m.store.Delete(ctx, state.LegacyUserKey); err != nil {
		return fmt.Errorf("remove legacy session: %w", err)
	}
	m.logger.Info("migrated legacy session", "user_id", u.ID)
	return nil
}

// Login checks the credentials with the store and starts a session.
func (m *Manager) Login(ctx context.Context, email, password string) (Result, error) {
	if err := form.ValidateLogin(form.LoginForm{Email: email, Password: password}); err != nil {
		return Result{}, m.fail(err)
	}

	resp, err := m.backend.Login(ctx, email, password)
	if err != nil {
		switch {
		case api.IsStatus(err, http.StatusNotFound):
			err = ErrNotFound
		case api.IsStatus(err, http.StatusUnauthorized):
			err = ErrInvalidCredentials
		}
		return Result{}, m.fail(err)
	}

	res, err := m.start(ctx, resp)
	if err != nil {
		return Result{}, m.fail(err)
	}
	m.notifier.Success(fmt.Sprintf("Logged in as %s", res.User.Name))
	return res, nil
}

// Register validates the form, creates the account and starts a session.
func (m *Manager) Register(ctx context.Context, f form.RegisterForm) (Result, error) {
	if err := form.ValidateRegister(f); err != nil {
		return Result{}, m.fail(err)
	}

	existing, err := m.backend.FindUserByEmail(ctx, f.Email)
	if err != nil {
		return Result{}, m.fail(err)
	}
	if len(existing) > 0 {
		return Result{}, m.fail(ErrDuplicateEmail)
	}

	// The lookup is advisory; the store's unique index decides.
	resp, err := m.backend.CreateUser(ctx, f.Request())
	if err != nil {
		if api.IsStatus(err, http.StatusConflict) {
			err = ErrDuplicateEmail
		}
		return Result{}, m.fail(err)
	}

	res, err := m.start(ctx, resp)
	if err != nil {
		return Result{}, m.fail(err)
	}
	m.notifier.Success("Account created")
	return res, nil
}

// Logout clears the persisted session and publishes a nil identity. It never fails.
func (m *Manager) Logout(ctx context.Context) {
	if err := m.clear(ctx); err != nil {
		m.logger.Error("failed to clear session", "error", err)
	}
	if m.onLogout != nil {
		if err := m.onLogout(ctx); err != nil {
			m.logger.Error("logout navigation failed", "error", err)
		}
	}
}

// CurrentUser returns a copy of the current identity, or nil.
func (m *Manager) CurrentUser() *model.User {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.current == nil {
		return nil
	}
	u := *m.current
	return &u
}

// IsTokenActive reports whether a decodable, unexpired token is persisted.
func (m *Manager) IsTokenActive(ctx context.Context) bool {
	_, ok := m.activeToken(ctx)
	return ok
}

// BearerToken is the token source of the API client. A persisted but inactive
// token ends the session.
func (m *Manager) BearerToken(ctx context.Context) (string, bool) {
	tok, ok := m.activeToken(ctx)
	if ok {
		return tok, true
	}
	if tok != "" {
		m.Logout(ctx)
	}
	return "", false
}

func (m *Manager) activeToken(ctx context.Context) (string, bool) {
	tok, ok, err := m.store.Get(ctx, state.TokenKey)
	if err != nil {
		m.logger.Error("failed to read session token", "error", err)
		return "", false
	}
	if !ok {
		return "", false
	}
	claims, err := crypto.InspectToken(tok)
	if err != nil || !claims.ActiveAt(m.now()) {
		return tok, false
	}
	return tok, true
}

// Refresh asks the store for a new token so the session reflects changes made
// elsewhere, such as an admin granting premium.
func (m *Manager) Refresh(ctx context.Context) (model.User, error) {
	cur := m.CurrentUser()
	if cur == nil {
		return model.User{}, ErrNoSession
	}
	return m.reissue(ctx, cur.ID)
}

// UpdateUserProfile saves the name and email and replaces the token with one the
// store issues for the updated account.
func (m *Manager) UpdateUserProfile(ctx context.Context, f form.ProfileForm) (model.User, error) {
	if err := form.ValidateProfile(f); err != nil {
		return model.User{}, m.fail(err)
	}
	u, err := m.update(ctx, model.UpdateUserRequest{Name: &f.Name, Email: &f.Email})
	if err != nil {
		return model.User{}, m.fail(err)
	}
	m.notifier.Success("Profile updated")
	return u, nil
}

// UpdateDailyCalorieLimit saves a new limit and replaces the token.
func (m *Manager) UpdateDailyCalorieLimit(ctx context.Context, limit int) (model.User, error) {
	if err := form.ValidateCalorieLimit(limit); err != nil {
		return model.User{}, m.fail(err)
	}
	u, err := m.update(ctx, model.UpdateUserRequest{DailyCalorieLimit: &limit})
	if err != nil {
		return model.User{}, m.fail(err)
	}
	m.notifier.Success(fmt.Sprintf("Daily limit set to %d kcal", u.DailyCalorieLimit))
	return u, nil
}

func (m *Manager) update(ctx context.Context, req model.UpdateUserRequest) (model.User, error) {
	cur := m.CurrentUser()
	if cur == nil {
		return model.User{}, ErrNoSession
	}

	if _, err := m.backend.UpdateUser(ctx, cur.ID, req); err != nil {
		if api.IsStatus(err, http.StatusConflict) {
			err = ErrDuplicateEmail
		}
		return model.User{}, err
	}
	return m.reissue(ctx, cur.ID)
}

func (m *Manager) reissue(ctx context.Context, userID string) (model.User, error) {
	resp, err := m.backend.RefreshSession(ctx)
	if err != nil {
		return model.User{}, err
	}
	return m.persist(ctx, resp.Token, userID)
}

// Subscribe returns a channel that receives the current identity immediately and
// every later change. A slow reader only sees the latest value. Call the returned
// function to unsubscribe.
func (m *Manager) Subscribe() (<-chan *model.User, func()) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.nextSub
	m.nextSub++
	ch := make(chan *model.User, 1)
	ch <- copyUser(m.current)
	m.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			m.mu.Lock()
			defer m.mu.Unlock()
			delete(m.subs, id)
			close(ch)
		})
	}
}

func (m *Manager) start(ctx context.Context, resp model.AuthResponse) (Result, error) {
	u, err := m.persist(ctx, resp.Token, resp.User.ID)
	if err != nil {
		return Result{}, err
	}
	m.logger.Info("session started", "user_id", u.ID, "role", u.Role)
	return Result{User: u, Token: resp.Token}, nil
}

// persist stores tok and publishes the identity it carries. The token must
// belong to userID.
func (m *Manager) persist(ctx context.Context, tok, userID string) (model.User, error) {
	claims, err := crypto.InspectToken(tok)
	if err != nil {
		return model.User{}, err
	}
	if claims.Subject != userID {
		return model.User{}, fmt.Errorf("%w: issued for another account", ErrInvalidToken)
	}
	if err := m.store.Set(ctx, state.TokenKey, tok); err != nil {
		return model.User{}, fmt.Errorf("save session token: %w", err)
	}
	u := claims.User()
	m.publish(&u)
	return u, nil
}

func (m *Manager) clear(ctx context.Context) error {
	errToken := m.store.Delete(ctx, state.TokenKey)
	errLegacy := m.store.Delete(ctx, state.LegacyUserKey)
	m.publish(nil)
	return errors.Join(errToken, errLegacy)
}

func (m *Manager) publish(u *model.User) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.current = copyUser(u)
	for _, ch := range m.subs {
		select {
		case <-ch:
		default:
		}
		ch <- copyUser(u)
	}
}

func (m *Manager) fail(err error) error {
	m.notifier.Error(Message(err))
	return err
}

func copyUser(u *model.User) *model.User {
	if u == nil {
		return nil
	}
	c := *u
	return &c
}

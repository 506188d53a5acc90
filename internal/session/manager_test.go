package session

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/caltrack/caltrack-go/internal/api"
	"github.com/caltrack/caltrack-go/internal/crypto"
	"github.com/caltrack/caltrack-go/internal/form"
	"github.com/caltrack/caltrack-go/internal/model"
	"github.com/caltrack/caltrack-go/internal/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// storeSecret is the key of the fake store; the manager never sees it.
const storeSecret = "store-side-secret"

// fakeBackend is an in-memory REST store keyed by email. It issues tokens the
// way the real store does and remembers who the last token was issued to.
type fakeBackend struct {
	users     map[string]model.User
	passwords map[string]string
	calls     []string
	err       error
	now       func() time.Time
	bearer    string
	badToken  string
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{users: map[string]model.User{}, passwords: map[string]string{}, now: time.Now}
}

func (b *fakeBackend) add(u model.User, password string) {
	b.users[u.Email] = u
	b.passwords[u.Email] = password
}

func (b *fakeBackend) issue(u model.User) (model.AuthResponse, error) {
	if b.badToken != "" {
		return model.AuthResponse{Token: b.badToken, User: u}, nil
	}
	tok, err := crypto.MintToken(u, storeSecret, b.now(), time.Hour)
	if err != nil {
		return model.AuthResponse{}, err
	}
	b.bearer = u.ID
	return model.AuthResponse{Token: tok, User: u}, nil
}

func (b *fakeBackend) FindUserByEmail(_ context.Context, email string) ([]model.User, error) {
	b.calls = append(b.calls, "find")
	if b.err != nil {
		return nil, b.err
	}
	if u, ok := b.users[email]; ok {
		return []model.User{u}, nil
	}
	return []model.User{}, nil
}

func (b *fakeBackend) Login(_ context.Context, email, password string) (model.AuthResponse, error) {
	b.calls = append(b.calls, "login")
	if b.err != nil {
		return model.AuthResponse{}, b.err
	}
	u, ok := b.users[email]
	if !ok {
		return model.AuthResponse{}, &api.StatusError{StatusCode: http.StatusNotFound, Message: "resource not found"}
	}
	if b.passwords[email] != password {
		return model.AuthResponse{}, &api.StatusError{StatusCode: http.StatusUnauthorized, Message: "unauthorized"}
	}
	return b.issue(u)
}

func (b *fakeBackend) CreateUser(_ context.Context, req model.CreateUserRequest) (model.AuthResponse, error) {
	b.calls = append(b.calls, "create")
	if _, ok := b.users[req.Email]; ok {
		return model.AuthResponse{}, &api.StatusError{StatusCode: http.StatusConflict, Message: "conflict with existing data"}
	}
	u := model.User{
		ID:                "u-" + req.Email,
		Name:              req.Name,
		Email:             req.Email,
		Role:              model.RoleUser,
		IsActive:          true,
		DailyCalorieLimit: model.DefaultDailyCalorieLimit,
	}
	b.add(u, req.Password)
	return b.issue(u)
}

func (b *fakeBackend) byID(id string) (model.User, bool) {
	for _, u := range b.users {
		if u.ID == id {
			return u, true
		}
	}
	return model.User{}, false
}

func (b *fakeBackend) RefreshSession(context.Context) (model.AuthResponse, error) {
	b.calls = append(b.calls, "refresh")
	u, ok := b.byID(b.bearer)
	if !ok {
		return model.AuthResponse{}, &api.StatusError{StatusCode: http.StatusUnauthorized, Message: "unauthorized"}
	}
	return b.issue(u)
}

func (b *fakeBackend) UpdateUser(_ context.Context, id string, req model.UpdateUserRequest) (model.User, error) {
	b.calls = append(b.calls, "update")
	u, ok := b.byID(id)
	if !ok {
		return model.User{}, &api.StatusError{StatusCode: http.StatusNotFound, Message: "resource not found"}
	}
	delete(b.users, u.Email)
	if req.Name != nil {
		u.Name = *req.Name
	}
	if req.Email != nil {
		u.Email = *req.Email
	}
	if req.DailyCalorieLimit != nil {
		u.DailyCalorieLimit = *req.DailyCalorieLimit
	}
	b.users[u.Email] = u
	return u, nil
}

type recordingNotifier struct {
	successes []string
	errors    []string
}

func (n *recordingNotifier) Success(msg string) { n.successes = append(n.successes, msg) }
func (n *recordingNotifier) Error(msg string)   { n.errors = append(n.errors, msg) }

type fixture struct {
	backend  *fakeBackend
	store    *state.MemoryStore
	notifier *recordingNotifier
	now      time.Time
	mgr      *Manager
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		backend:  newFakeBackend(),
		store:    state.NewMemoryStore(),
		notifier: &recordingNotifier{},
		now:      time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
	}
	f.backend.now = func() time.Time { return f.now }
	f.mgr = NewManager(f.backend, f.store,
		WithClock(func() time.Time { return f.now }),
		WithNotifier(f.notifier),
	)
	return f
}

func alice() model.User {
	return model.User{
		ID:                "u-1",
		Name:              "Alice Nowak",
		Email:             "a@b.com",
		Role:              model.RoleUser,
		IsActive:          true,
		IsPremium:         true,
		DailyCalorieLimit: 1800,
	}
}

func validRegisterForm() form.RegisterForm {
	return form.RegisterForm{
		Name:            "Bob",
		Email:           "bob@example.com",
		Password:        "Secret1!",
		ConfirmPassword: "Secret1!",
		AcceptTerms:     true,
	}
}

func TestLoginSuccess(t *testing.T) {
	f := newFixture(t)
	f.backend.add(alice(), "right")
	ctx := context.Background()

	res, err := f.mgr.Login(ctx, "a@b.com", "right")
	require.NoError(t, err)
	assert.Equal(t, alice(), res.User)

	claims, err := crypto.DecodeToken(res.Token, storeSecret)
	require.NoError(t, err)
	assert.Equal(t, alice(), claims.User())
	assert.Equal(t, f.now.Add(time.Hour).Unix(), claims.ExpiresAt().Unix())

	stored, ok, err := f.store.Get(ctx, state.TokenKey)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, res.Token, stored)

	require.NotNil(t, f.mgr.CurrentUser())
	assert.Equal(t, "u-1", f.mgr.CurrentUser().ID)
	assert.True(t, f.mgr.IsTokenActive(ctx))
	assert.Len(t, f.notifier.successes, 1)
}

func TestLoginWrongPasswordLeavesIdentityNil(t *testing.T) {
	f := newFixture(t)
	f.backend.add(alice(), "right")
	ctx := context.Background()

	ch, unsubscribe := f.mgr.Subscribe()
	defer unsubscribe()
	assert.Nil(t, <-ch)

	_, err := f.mgr.Login(ctx, "a@b.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.Nil(t, f.mgr.CurrentUser())
	assert.False(t, f.mgr.IsTokenActive(ctx))
	assert.Equal(t, []string{ErrInvalidCredentials.Error()}, f.notifier.errors)

	select {
	case u := <-ch:
		t.Fatalf("unexpected identity change: %v", u)
	default:
	}
}

func TestLoginUnknownEmail(t *testing.T) {
	f := newFixture(t)

	_, err := f.mgr.Login(context.Background(), "nobody@b.com", "whatever")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Nil(t, f.mgr.CurrentUser())
}

func TestLoginNetworkFailure(t *testing.T) {
	f := newFixture(t)
	f.backend.err = &api.StatusError{StatusCode: http.StatusInternalServerError, Message: "server error"}

	_, err := f.mgr.Login(context.Background(), "a@b.com", "right")
	assert.ErrorIs(t, err, ErrNetworkFailure)
	assert.Nil(t, f.mgr.CurrentUser())
	assert.Equal(t, []string{"server error"}, f.notifier.errors)
}

func TestLoginRejectsTokenForAnotherAccount(t *testing.T) {
	f := newFixture(t)
	f.backend.add(alice(), "right")
	other := alice()
	other.ID = "u-2"
	tok, err := crypto.MintToken(other, storeSecret, f.now, time.Hour)
	require.NoError(t, err)
	f.backend.badToken = tok

	_, err = f.mgr.Login(context.Background(), "a@b.com", "right")
	assert.ErrorIs(t, err, ErrInvalidToken)
	assert.Nil(t, f.mgr.CurrentUser())
	assert.False(t, f.mgr.IsTokenActive(context.Background()))
}

func TestLoginRejectsUnreadableToken(t *testing.T) {
	f := newFixture(t)
	f.backend.add(alice(), "right")
	f.backend.badToken = "not-a-token"

	_, err := f.mgr.Login(context.Background(), "a@b.com", "right")
	assert.ErrorIs(t, err, ErrInvalidToken)
	assert.Nil(t, f.mgr.CurrentUser())
	_, ok, _ := f.store.Get(context.Background(), state.TokenKey)
	assert.False(t, ok)
}

func TestLoginValidatesBeforeNetwork(t *testing.T) {
	f := newFixture(t)

	_, err := f.mgr.Login(context.Background(), "not-an-email", "")
	assert.ErrorIs(t, err, ErrValidationFailed)
	assert.Empty(t, f.backend.calls)
}

func TestRegisterPasswordMismatchMakesNoCalls(t *testing.T) {
	f := newFixture(t)
	rf := validRegisterForm()
	rf.ConfirmPassword = "Different1!"

	_, err := f.mgr.Register(context.Background(), rf)
	assert.ErrorIs(t, err, ErrValidationFailed)

	var fields form.Errors
	require.True(t, errors.As(err, &fields))
	assert.Contains(t, fields, "confirmPassword")
	assert.Empty(t, f.backend.calls)
}

func TestRegisterWeakPassword(t *testing.T) {
	f := newFixture(t)
	rf := validRegisterForm()
	rf.Password = "password"
	rf.ConfirmPassword = "password"

	_, err := f.mgr.Register(context.Background(), rf)
	assert.ErrorIs(t, err, ErrValidationFailed)
	assert.Empty(t, f.backend.calls)
}

func TestRegisterSuccess(t *testing.T) {
	f := newFixture(t)

	res, err := f.mgr.Register(context.Background(), validRegisterForm())
	require.NoError(t, err)
	assert.Equal(t, []string{"find", "create"}, f.backend.calls)
	assert.Equal(t, model.RoleUser, res.User.Role)
	assert.True(t, res.User.IsActive)
	assert.False(t, res.User.IsPremium)
	assert.Equal(t, model.DefaultDailyCalorieLimit, res.User.DailyCalorieLimit)
	assert.Equal(t, "bob@example.com", f.mgr.CurrentUser().Email)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	f := newFixture(t)
	f.backend.add(model.User{ID: "u-9", Email: "bob@example.com", Role: model.RoleUser}, "x")

	_, err := f.mgr.Register(context.Background(), validRegisterForm())
	assert.ErrorIs(t, err, ErrDuplicateEmail)
	assert.Equal(t, []string{"find"}, f.backend.calls)
}

// racingBackend hides the existing account from the lookup, as a concurrent
// registration would.
type racingBackend struct{ *fakeBackend }

func (racingBackend) FindUserByEmail(context.Context, string) ([]model.User, error) {
	return []model.User{}, nil
}

func TestRegisterConflictFromStore(t *testing.T) {
	f := newFixture(t)
	f.backend.add(model.User{ID: "u-9", Email: "bob@example.com", Role: model.RoleUser}, "x")
	mgr := NewManager(racingBackend{f.backend}, f.store)

	_, err := mgr.Register(context.Background(), validRegisterForm())
	assert.ErrorIs(t, err, ErrDuplicateEmail)
	assert.Nil(t, mgr.CurrentUser())
}

func TestLogout(t *testing.T) {
	f := newFixture(t)
	f.backend.add(alice(), "right")
	ctx := context.Background()

	navigated := false
	mgr := NewManager(f.backend, f.store,
		WithOnLogout(func(context.Context) error {
			navigated = true
			return errors.New("no route")
		}))

	_, err := mgr.Login(ctx, "a@b.com", "right")
	require.NoError(t, err)
	require.NoError(t, f.store.Set(ctx, state.LegacyUserKey, `{}`))

	mgr.Logout(ctx)
	assert.True(t, navigated)
	assert.Nil(t, mgr.CurrentUser())
	assert.False(t, mgr.IsTokenActive(ctx))

	_, ok, _ := f.store.Get(ctx, state.TokenKey)
	assert.False(t, ok)
	_, ok, _ = f.store.Get(ctx, state.LegacyUserKey)
	assert.False(t, ok)
}

func TestInitRestoresSession(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tok, err := crypto.MintToken(alice(), storeSecret, f.now.Add(-30*time.Minute), time.Hour)
	require.NoError(t, err)
	require.NoError(t, f.store.Set(ctx, state.TokenKey, tok))

	require.NoError(t, f.mgr.Init(ctx))
	require.NotNil(t, f.mgr.CurrentUser())
	assert.Equal(t, alice(), *f.mgr.CurrentUser())
}

func TestInitExpiredTokenMeansLoggedOut(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tok, err := crypto.MintToken(alice(), storeSecret, f.now.Add(-2*time.Hour), time.Hour)
	require.NoError(t, err)
	require.NoError(t, f.store.Set(ctx, state.TokenKey, tok))

	require.NoError(t, f.mgr.Init(ctx))
	assert.Nil(t, f.mgr.CurrentUser())
	_, ok, _ := f.store.Get(ctx, state.TokenKey)
	assert.False(t, ok)
}

func TestInitCorruptToken(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.store.Set(ctx, state.TokenKey, "garbage"))

	require.NoError(t, f.mgr.Init(ctx))
	assert.Nil(t, f.mgr.CurrentUser())
}

func TestInitMigratesLegacyRecordOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	raw, err := json.Marshal(alice())
	require.NoError(t, err)
	require.NoError(t, f.store.Set(ctx, state.LegacyUserKey, string(raw)))

	require.NoError(t, f.mgr.Init(ctx))
	require.NotNil(t, f.mgr.CurrentUser())
	assert.Equal(t, alice(), *f.mgr.CurrentUser())

	_, ok, _ := f.store.Get(ctx, state.LegacyUserKey)
	assert.False(t, ok)
	first, ok, _ := f.store.Get(ctx, state.TokenKey)
	require.True(t, ok)

	require.NoError(t, f.mgr.Init(ctx))
	second, _, _ := f.store.Get(ctx, state.TokenKey)
	assert.Equal(t, first, second)
	assert.Equal(t, alice(), *f.mgr.CurrentUser())
	// The client cannot sign, so the store will refuse the migrated token.
	_, err = crypto.DecodeToken(first, storeSecret)
	assert.ErrorIs(t, err, crypto.ErrInvalidToken)
}

func TestInitRejectsLegacyRecordWithUnknownRole(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.store.Set(ctx, state.LegacyUserKey, `{"id":"u-1","role":"root"}`))

	require.NoError(t, f.mgr.Init(ctx))
	assert.Nil(t, f.mgr.CurrentUser())
	_, ok, _ := f.store.Get(ctx, state.TokenKey)
	assert.False(t, ok)
}

func TestIsTokenActiveBoundary(t *testing.T) {
	f := newFixture(t)
	f.backend.add(alice(), "right")
	ctx := context.Background()

	_, err := f.mgr.Login(ctx, "a@b.com", "right")
	require.NoError(t, err)

	f.now = f.now.Add(time.Hour - time.Second)
	assert.True(t, f.mgr.IsTokenActive(ctx))

	f.now = f.now.Add(2 * time.Second)
	assert.False(t, f.mgr.IsTokenActive(ctx))
}

func TestBearerTokenLogsOutWhenExpired(t *testing.T) {
	f := newFixture(t)
	f.backend.add(alice(), "right")
	ctx := context.Background()

	res, err := f.mgr.Login(ctx, "a@b.com", "right")
	require.NoError(t, err)

	tok, ok := f.mgr.BearerToken(ctx)
	assert.True(t, ok)
	assert.Equal(t, res.Token, tok)

	f.now = f.now.Add(2 * time.Hour)
	_, ok = f.mgr.BearerToken(ctx)
	assert.False(t, ok)
	assert.Nil(t, f.mgr.CurrentUser())
}

func TestUpdateDailyCalorieLimitRemintsToken(t *testing.T) {
	f := newFixture(t)
	f.backend.add(alice(), "right")
	ctx := context.Background()

	res, err := f.mgr.Login(ctx, "a@b.com", "right")
	require.NoError(t, err)

	f.now = f.now.Add(10 * time.Minute)
	u, err := f.mgr.UpdateDailyCalorieLimit(ctx, 2500)
	require.NoError(t, err)
	assert.Equal(t, 2500, u.DailyCalorieLimit)
	assert.Equal(t, 2500, f.mgr.CurrentUser().DailyCalorieLimit)

	assert.Equal(t, []string{"login", "update", "refresh"}, f.backend.calls)
	tok, _, _ := f.store.Get(ctx, state.TokenKey)
	assert.NotEqual(t, res.Token, tok)
	claims, err := crypto.DecodeToken(tok, storeSecret)
	require.NoError(t, err)
	assert.Equal(t, 2500, claims.DailyCalorieLimit)
	assert.Equal(t, f.now.Add(time.Hour).Unix(), claims.ExpiresAt().Unix())
}

func TestUpdateDailyCalorieLimitRejectsNegative(t *testing.T) {
	f := newFixture(t)
	f.backend.add(alice(), "right")
	ctx := context.Background()
	_, err := f.mgr.Login(ctx, "a@b.com", "right")
	require.NoError(t, err)
	f.backend.calls = nil

	_, err = f.mgr.UpdateDailyCalorieLimit(ctx, -1)
	assert.ErrorIs(t, err, ErrValidationFailed)
	assert.Empty(t, f.backend.calls)
}

func TestUpdateUserProfile(t *testing.T) {
	f := newFixture(t)
	f.backend.add(alice(), "right")
	ctx := context.Background()
	_, err := f.mgr.Login(ctx, "a@b.com", "right")
	require.NoError(t, err)

	u, err := f.mgr.UpdateUserProfile(ctx, form.ProfileForm{Name: "Alicja Nowak", Email: "alicja@b.com"})
	require.NoError(t, err)
	assert.Equal(t, "Alicja Nowak", u.Name)

	tok, _, _ := f.store.Get(ctx, state.TokenKey)
	claims, err := crypto.DecodeToken(tok, storeSecret)
	require.NoError(t, err)
	assert.Equal(t, "alicja@b.com", claims.Email)
}

func TestUpdateWithoutSession(t *testing.T) {
	f := newFixture(t)

	_, err := f.mgr.UpdateDailyCalorieLimit(context.Background(), 1500)
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestRefresh(t *testing.T) {
	f := newFixture(t)
	f.backend.add(alice(), "right")
	ctx := context.Background()
	_, err := f.mgr.Login(ctx, "a@b.com", "right")
	require.NoError(t, err)

	u := f.backend.users["a@b.com"]
	u.IsPremium = false
	f.backend.users["a@b.com"] = u

	got, err := f.mgr.Refresh(ctx)
	require.NoError(t, err)
	assert.False(t, got.IsPremium)
	assert.False(t, f.mgr.CurrentUser().IsPremium)
}

func TestSubscribeSeesLatestIdentity(t *testing.T) {
	f := newFixture(t)
	f.backend.add(alice(), "right")
	ctx := context.Background()

	ch, unsubscribe := f.mgr.Subscribe()
	_, err := f.mgr.Login(ctx, "a@b.com", "right")
	require.NoError(t, err)
	f.mgr.Logout(ctx)

	// Only the last published value is buffered.
	assert.Nil(t, <-ch)

	_, err = f.mgr.Login(ctx, "a@b.com", "right")
	require.NoError(t, err)
	u := <-ch
	require.NotNil(t, u)
	assert.Equal(t, "u-1", u.ID)

	unsubscribe()
	unsubscribe()
	_, open := <-ch
	assert.False(t, open)
}

func TestCurrentUserReturnsCopy(t *testing.T) {
	f := newFixture(t)
	f.backend.add(alice(), "right")
	_, err := f.mgr.Login(context.Background(), "a@b.com", "right")
	require.NoError(t, err)

	u := f.mgr.CurrentUser()
	u.Name = "changed"
	assert.Equal(t, "Alice Nowak", f.mgr.CurrentUser().Name)
}

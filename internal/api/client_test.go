package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/caltrack/caltrack-go/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c := NewClient(srv.URL+"/", srv.Client())
	c.SetTokenSource(func(context.Context) (string, bool) { return "tok", true })
	return c
}

func TestPublicEndpointsNeverSendToken(t *testing.T) {
	var seen []string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, r.Header.Get("Authorization"))
		switch r.URL.Path {
		case "/users":
			assert.Equal(t, "a+b@example.com", r.URL.Query().Get("email"))
			w.Write([]byte(`[]`))
		case "/auth/login":
			var req model.LoginRequest
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "pw", req.Password)
			w.Write([]byte(`{"token":"signed","user":{"id":"u-1","email":"a+b@example.com","role":"user"}}`))
		}
	})

	users, err := c.FindUserByEmail(context.Background(), "a+b@example.com")
	require.NoError(t, err)
	assert.Empty(t, users)

	resp, err := c.Login(context.Background(), "a+b@example.com", "pw")
	require.NoError(t, err)
	assert.Equal(t, "u-1", resp.User.ID)
	assert.Equal(t, "signed", resp.Token)

	assert.Equal(t, []string{"", ""}, seen)
}

func TestProtectedEndpointsSendToken(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		assert.Equal(t, "/meals", r.URL.Path)
		w.Write([]byte(`[{"id":"m-1","userId":"u-1","name":"Lunch","date":"2024-01-01","items":[],"totalCalories":600}]`))
	})

	meals, err := c.ListMeals(context.Background())
	require.NoError(t, err)
	require.Len(t, meals, 1)
	assert.Equal(t, 600, meals[0].TotalCalories)
}

func TestRefreshSession(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/auth/refresh", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		w.Write([]byte(`{"token":"fresh","user":{"id":"u-1","role":"user","isPremium":true}}`))
	})

	resp, err := c.RefreshSession(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "fresh", resp.Token)
	assert.True(t, resp.User.IsPremium)
}

func TestOnUnauthorizedRunsOnlyForRefusedTokens(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	refused := 0
	c.OnUnauthorized(func(context.Context) { refused++ })

	_, err := c.Login(context.Background(), "a@b.com", "wrong")
	assert.True(t, IsStatus(err, http.StatusUnauthorized))
	assert.Equal(t, 0, refused)

	_, err = c.ListMeals(context.Background())
	assert.True(t, IsStatus(err, http.StatusUnauthorized))
	assert.Equal(t, 1, refused)

	c.SetTokenSource(func(context.Context) (string, bool) { return "", false })
	_, err = c.ListMeals(context.Background())
	assert.True(t, IsStatus(err, http.StatusUnauthorized))
	assert.Equal(t, 1, refused)
}

func TestNoTokenWhenSourceIsEmpty(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		w.Write([]byte(`[]`))
	})
	c.SetTokenSource(func(context.Context) (string, bool) { return "", false })

	_, err := c.ListProducts(context.Background())
	require.NoError(t, err)
}

func TestDeleteMealNoContent(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/meals/m-1", r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	})

	require.NoError(t, c.DeleteMeal(context.Background(), "m-1"))
}

func TestStatusErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{"bad request with message", http.StatusBadRequest, `{"error":"grams out of range"}`, "grams out of range"},
		{"bad request without body", http.StatusBadRequest, ``, "invalid data"},
		{"unauthorized", http.StatusUnauthorized, `{"error":"x"}`, "unauthorized"},
		{"forbidden", http.StatusForbidden, ``, "you do not have permission to perform this action"},
		{"not found", http.StatusNotFound, ``, "resource not found"},
		{"conflict", http.StatusConflict, ``, "conflict with existing data"},
		{"rate limited", http.StatusTooManyRequests, ``, "too many requests"},
		{"server error", http.StatusBadGateway, ``, "server error"},
		{"teapot", http.StatusTeapot, ``, "unknown error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})

			_, err := c.GetMeal(context.Background(), "m-1")
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrNetworkFailure)
			assert.True(t, IsStatus(err, tt.status))

			var se *StatusError
			require.True(t, errors.As(err, &se))
			assert.Equal(t, tt.want, se.Message)
		})
	}
}

func TestTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := NewClient(url, nil)
	_, err := c.ListMeals(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNetworkFailure)
	assert.False(t, IsStatus(err, http.StatusNotFound))
}

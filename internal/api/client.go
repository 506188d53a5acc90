// Package api is the HTTP client of the caltrack REST store.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/caltrack/caltrack-go/internal/model"
)

const maxResponseBytes = 4 << 20

// TokenSource returns the bearer token to attach, or false when there is none.
type TokenSource func(ctx context.Context) (string, bool)

// Client talks to the REST store.
type Client struct {
	baseURL      string
	http         *http.Client
	token        TokenSource
	unauthorized func(ctx context.Context)
}

// NewClient creates a client for baseURL. A nil httpClient gets a 15s timeout client.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: httpClient}
}

// SetTokenSource sets where protected requests get their bearer token from.
func (c *Client) SetTokenSource(ts TokenSource) {
	c.token = ts
}

// OnUnauthorized sets the hook run when the store refuses an attached token.
func (c *Client) OnUnauthorized(fn func(ctx context.Context)) {
	c.unauthorized = fn
}

// FindUserByEmail is the public lookup. It never sends a token.
func (c *Client) FindUserByEmail(ctx context.Context, email string) ([]model.User, error) {
	var users []model.User
	path := "/users?email=" + url.QueryEscape(email)
	if err := c.do(ctx, http.MethodGet, path, nil, &users, false); err != nil {
		return nil, err
	}
	return users, nil
}

// Login checks credentials against the store and returns the account with a
// session token. It never sends a token.
func (c *Client) Login(ctx context.Context, email, password string) (model.AuthResponse, error) {
	var resp model.AuthResponse
	err := c.do(ctx, http.MethodPost, "/auth/login", model.LoginRequest{Email: email, Password: password}, &resp, false)
	return resp, err
}

// CreateUser registers an account and returns it with a session token.
func (c *Client) CreateUser(ctx context.Context, req model.CreateUserRequest) (model.AuthResponse, error) {
	var resp model.AuthResponse
	err := c.do(ctx, http.MethodPost, "/users", req, &resp, false)
	return resp, err
}

// RefreshSession asks the store for a new token built from the stored account.
func (c *Client) RefreshSession(ctx context.Context) (model.AuthResponse, error) {
	var resp model.AuthResponse
	err := c.do(ctx, http.MethodPost, "/auth/refresh", nil, &resp, true)
	return resp, err
}

func (c *Client) UpdateUser(ctx context.Context, id string, req model.UpdateUserRequest) (model.User, error) {
	var u model.User
	err := c.do(ctx, http.MethodPut, "/users/"+url.PathEscape(id), req, &u, true)
	return u, err
}

// ListUsers returns every account. Admin only.
func (c *Client) ListUsers(ctx context.Context) ([]model.User, error) {
	var users []model.User
	err := c.do(ctx, http.MethodGet, "/users", nil, &users, true)
	return users, err
}

func (c *Client) ListMeals(ctx context.Context) ([]model.Meal, error) {
	var meals []model.Meal
	err := c.do(ctx, http.MethodGet, "/meals", nil, &meals, true)
	return meals, err
}

func (c *Client) GetMeal(ctx context.Context, id string) (model.Meal, error) {
	var m model.Meal
	err := c.do(ctx, http.MethodGet, "/meals/"+url.PathEscape(id), nil, &m, true)
	return m, err
}

func (c *Client) CreateMeal(ctx context.Context, req model.MealRequest) (model.Meal, error) {
	var m model.Meal
	err := c.do(ctx, http.MethodPost, "/meals", req, &m, true)
	return m, err
}

func (c *Client) UpdateMeal(ctx context.Context, id string, req model.MealRequest) (model.Meal, error) {
	var m model.Meal
	err := c.do(ctx, http.MethodPut, "/meals/"+url.PathEscape(id), req, &m, true)
	return m, err
}

func (c *Client) DeleteMeal(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/meals/"+url.PathEscape(id), nil, nil, true)
}

func (c *Client) ListProducts(ctx context.Context) ([]model.Product, error) {
	var products []model.Product
	err := c.do(ctx, http.MethodGet, "/products", nil, &products, true)
	return products, err
}

func (c *Client) CreateProduct(ctx context.Context, req model.ProductRequest) (model.Product, error) {
	var p model.Product
	err := c.do(ctx, http.MethodPost, "/products", req, &p, true)
	return p, err
}

func (c *Client) do(ctx context.Context, method, path string, in, out any, authenticated bool) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	sentToken := false
	if authenticated && c.token != nil {
		if tok, ok := c.token(ctx); ok {
			req.Header.Set("Authorization", "Bearer "+tok)
			sentToken = true
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %w", ErrNetworkFailure, method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("%w: read response: %v", ErrNetworkFailure, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if resp.StatusCode == http.StatusUnauthorized && sentToken && c.unauthorized != nil {
			c.unauthorized(ctx)
		}
		return newStatusError(resp.StatusCode, raw)
	}

	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%w: decode response: %v", ErrNetworkFailure, err)
	}
	return nil
}

package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/caltrack/caltrack-go/internal/crypto"
	"github.com/caltrack/caltrack-go/internal/model"
)

type contextKey string

const (
	claimsKey  contextKey = "claims"
	accountKey contextKey = "account"
)

// JWTAuth returns middleware that validates a Bearer session token from the Authorization header.
// Tokens whose lifetime exceeds maxTTL are rejected; zero disables the check.
func JWTAuth(secret string, maxTTL time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				writeJSONError(w, http.StatusUnauthorized, "missing authorization header")
				return
			}

			token, found := strings.CutPrefix(authHeader, "Bearer ")
			if !found || token == "" {
				writeJSONError(w, http.StatusUnauthorized, "invalid authorization format")
				return
			}

			claims, err := crypto.ValidateToken(token, secret, time.Now())
			if err != nil {
				writeJSONError(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}
			if maxTTL > 0 && !withinTTL(claims, maxTTL) {
				writeJSONError(w, http.StatusUnauthorized, "token lifetime too long")
				return
			}

			ctx := context.WithValue(r.Context(), claimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func withinTTL(c *crypto.Claims, maxTTL time.Duration) bool {
	if c.IssuedAt == nil {
		return false
	}
	return c.ExpiresAt().Sub(c.IssuedAt.Time) <= maxTTL
}

// ClaimsFromContext returns the session claims stored by JWTAuth.
func ClaimsFromContext(ctx context.Context) (*crypto.Claims, bool) {
	claims, ok := ctx.Value(claimsKey).(*crypto.Claims)
	return claims, ok
}

// SkipWhen bypasses mw for requests matching skip.
func SkipWhen(skip func(*http.Request) bool, mw func(http.Handler) http.Handler) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		wrapped := mw(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if skip(r) {
				next.ServeHTTP(w, r)
				return
			}
			wrapped.ServeHTTP(w, r)
		})
	}
}

// AccountLookup reads the stored account of an authenticated caller. ok is false
// when the account no longer exists.
type AccountLookup interface {
	Account(ctx context.Context, userID string) (model.User, bool, error)
}

var errNoClaims = errors.New("no session claims in context")

// LoadAccount reads the caller's account from the store after JWTAuth. Role and
// status checks use the stored account, never the token's snapshot.
func LoadAccount(lookup AccountLookup) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFromContext(r.Context())
			if !ok {
				slog.Error("LoadAccount used without JWTAuth", "error", errNoClaims)
				writeJSONError(w, http.StatusUnauthorized, "unauthorized")
				return
			}

			account, found, err := lookup.Account(r.Context(), claims.Subject)
			if err != nil {
				slog.Error("account lookup failed", "user_id", claims.Subject, "error", err)
				writeJSONError(w, http.StatusInternalServerError, "internal server error")
				return
			}
			if !found {
				writeJSONError(w, http.StatusUnauthorized, "account no longer exists")
				return
			}

			ctx := context.WithValue(r.Context(), accountKey, account)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// AccountFromContext returns the account stored by LoadAccount.
func AccountFromContext(ctx context.Context) (model.User, bool) {
	account, ok := ctx.Value(accountKey).(model.User)
	return account, ok
}

// RequireAdmin rejects callers whose stored account is not an admin.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		account, ok := AccountFromContext(r.Context())
		if !ok {
			writeJSONError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		if !account.IsAdmin() {
			writeJSONError(w, http.StatusForbidden, "admin role required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireActive rejects suspended accounts, so a suspension takes effect before
// the token expires.
func RequireActive(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		account, ok := AccountFromContext(r.Context())
		if !ok {
			writeJSONError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		if !account.IsActive {
			writeJSONError(w, http.StatusForbidden, "account is suspended")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

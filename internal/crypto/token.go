package crypto

import (
	"errors"
	"time"

	"github.com/caltrack/caltrack-go/internal/model"
	"github.com/golang-jwt/jwt/v5"
)

const (
	tokenIssuer   = "caltrack"
	tokenAudience = "caltrack-api"

	// TokenTTL is the lifetime of a session token.
	TokenTTL = time.Hour
)

var (
	ErrInvalidToken = errors.New("invalid session token")
	ErrExpiredToken = errors.New("session token expired")
)

// Claims is the session token payload: a snapshot of the account's public fields.
type Claims struct {
	jwt.RegisteredClaims
	Name              string `json:"name"`
	Email             string `json:"email"`
	Role              string `json:"role"`
	IsActive          bool   `json:"isActive"`
	IsPremium         bool   `json:"isPremium"`
	DailyCalorieLimit int    `json:"dailyCalorieLimit"`
}

// User returns the account snapshot embedded in the token.
func (c *Claims) User() model.User {
	return model.User{
		ID:                c.Subject,
		Name:              c.Name,
		Email:             c.Email,
		Role:              c.Role,
		IsActive:          c.IsActive,
		IsPremium:         c.IsPremium,
		DailyCalorieLimit: c.DailyCalorieLimit,
	}
}

// ExpiresAt returns the expiry instant, or the zero time when the claim is missing.
func (c *Claims) ExpiresAt() time.Time {
	if c.RegisteredClaims.ExpiresAt == nil {
		return time.Time{}
	}
	return c.RegisteredClaims.ExpiresAt.Time
}

// ActiveAt reports whether the token is still valid at now.
func (c *Claims) ActiveAt(now time.Time) bool {
	exp := c.ExpiresAt()
	return !exp.IsZero() && now.Before(exp)
}

// MintToken creates a signed session token for u, issued at issuedAt and expiring ttl later.
// Only the store holds the signing key.
func MintToken(u model.User, secret string, issuedAt time.Time, ttl time.Duration) (string, error) {
	if !model.ValidRole(u.Role) {
		return "", ErrInvalidToken
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, newClaims(u, issuedAt, ttl))
	return token.SignedString([]byte(secret))
}

// UnsignedToken builds a token carrying u's snapshot with no signature. The store
// refuses it; the client uses it to keep showing a session migrated from a
// legacy record until the next protected call.
func UnsignedToken(u model.User, issuedAt time.Time, ttl time.Duration) (string, error) {
	if !model.ValidRole(u.Role) {
		return "", ErrInvalidToken
	}
	token := jwt.NewWithClaims(jwt.SigningMethodNone, newClaims(u, issuedAt, ttl))
	return token.SignedString(jwt.UnsafeAllowNoneSignatureType)
}

func newClaims(u model.User, issuedAt time.Time, ttl time.Duration) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID,
			Issuer:    tokenIssuer,
			Audience:  jwt.ClaimStrings{tokenAudience},
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(ttl)),
		},
		Name:              u.Name,
		Email:             u.Email,
		Role:              u.Role,
		IsActive:          u.IsActive,
		IsPremium:         u.IsPremium,
		DailyCalorieLimit: u.DailyCalorieLimit,
	}
}

// DecodeToken verifies the signature, issuer and audience of a session token and
// returns its claims. Expiry is not checked here; see ActiveAt and ValidateToken.
// A token carrying an unknown role is rejected as corrupt.
func DecodeToken(tokenString, secret string) (*Claims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)

	claims := &Claims{}
	token, err := parser.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	if err := checkClaims(claims); err != nil {
		return nil, err
	}
	return claims, nil
}

// InspectToken reads the claims of a session token without checking the
// signature. The client uses it to show who is logged in; it is never an
// authorization decision.
func InspectToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tokenString, claims); err != nil {
		return nil, ErrInvalidToken
	}
	if err := checkClaims(claims); err != nil {
		return nil, err
	}
	return claims, nil
}

func checkClaims(claims *Claims) error {
	if claims.Issuer != tokenIssuer || !hasAudience(claims.Audience, tokenAudience) {
		return ErrInvalidToken
	}
	if claims.Subject == "" || claims.RegisteredClaims.ExpiresAt == nil {
		return ErrInvalidToken
	}
	if !model.ValidRole(claims.Role) {
		return ErrInvalidToken
	}
	return nil
}

// ValidateToken decodes a token and additionally requires it to be active at now.
func ValidateToken(tokenString, secret string, now time.Time) (*Claims, error) {
	claims, err := DecodeToken(tokenString, secret)
	if err != nil {
		return nil, err
	}
	if !claims.ActiveAt(now) {
		return nil, ErrExpiredToken
	}
	return claims, nil
}

func hasAudience(aud jwt.ClaimStrings, want string) bool {
	for _, a := range aud {
		if a == want {
			return true
		}
	}
	return false
}

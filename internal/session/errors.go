package session

import (
	"errors"

	"github.com/caltrack/caltrack-go/internal/api"
	"github.com/caltrack/caltrack-go/internal/crypto"
	"github.com/caltrack/caltrack-go/internal/form"
)

var (
	ErrNotFound           = errors.New("no account with this email")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrDuplicateEmail     = errors.New("an account with this email already exists")
	ErrNoSession          = errors.New("not logged in")

	// Shared with the packages that produce them so errors.Is works across layers.
	ErrInvalidToken     = crypto.ErrInvalidToken
	ErrExpired          = crypto.ErrExpiredToken
	ErrValidationFailed = form.ErrValidationFailed
	ErrNetworkFailure   = api.ErrNetworkFailure
)

// Message returns the text shown to a user for err.
func Message(err error) string {
	var se *api.StatusError
	if errors.As(err, &se) {
		return se.Message
	}
	return err.Error()
}

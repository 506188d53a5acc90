package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrNetworkFailure is the root of every transport and HTTP status failure.
var ErrNetworkFailure = errors.New("network failure")

// StatusError is a non-2xx response. Message is suitable for showing to a user.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s (status %d)", e.Message, e.StatusCode)
}

func (e *StatusError) Unwrap() error {
	return ErrNetworkFailure
}

// IsStatus reports whether err is a StatusError with the given code.
func IsStatus(err error, code int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode == code
}

// StatusMessage returns the user-facing message for an HTTP status. For 400 the
// server's own message is preferred when present.
func StatusMessage(code int, serverMsg string) string {
	switch {
	case code == http.StatusBadRequest:
		if serverMsg != "" {
			return serverMsg
		}
		return "invalid data"
	case code == http.StatusUnauthorized:
		return "unauthorized"
	case code == http.StatusForbidden:
		return "you do not have permission to perform this action"
	case code == http.StatusNotFound:
		return "resource not found"
	case code == http.StatusConflict:
		return "conflict with existing data"
	case code == http.StatusTooManyRequests:
		return "too many requests"
	case code >= 500:
		return "server error"
	default:
		return "unknown error"
	}
}

type errorBody struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields"`
}

func newStatusError(code int, body []byte) *StatusError {
	var eb errorBody
	_ = json.Unmarshal(body, &eb)
	return &StatusError{StatusCode: code, Message: StatusMessage(code, strings.TrimSpace(eb.Error))}
}

// Package form holds the input rules shared by the client and the REST store.
// Each form is checked by a list of predicates; the first failing rule of a
// field decides its message.
package form

import (
	"errors"
	"net/mail"
	"sort"
	"strings"
	"unicode/utf8"
)

var ErrValidationFailed = errors.New("validation failed")

// Errors maps a field name to the message of its first failing rule.
type Errors map[string]string

func (e Errors) Error() string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f+": "+e[f])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Is makes every Errors value match ErrValidationFailed.
func (e Errors) Is(target error) bool {
	return target == ErrValidationFailed
}

// Rule is one predicate over a form value.
type Rule[T any] struct {
	Field   string
	Message string
	Valid   func(T) bool
}

// Validate runs rules in order and returns nil or an Errors value.
func Validate[T any](v T, rules []Rule[T]) error {
	errs := Errors{}
	for _, r := range rules {
		if _, failed := errs[r.Field]; failed {
			continue
		}
		if !r.Valid(v) {
			errs[r.Field] = r.Message
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

func required(s string) bool {
	return strings.TrimSpace(s) != ""
}

func lengthBetween(s string, lo, hi int) bool {
	n := utf8.RuneCountInString(strings.TrimSpace(s))
	return n >= lo && n <= hi
}

func validEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	if err != nil || addr.Address != s {
		return false
	}
	at := strings.LastIndexByte(s, '@')
	return at > 0 && at < len(s)-1
}

package crypto

import (
	"errors"
	"strings"
	"unicode/utf8"
)

const (
	uppercaseChars = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	lowercaseChars = "abcdefghijklmnopqrstuvwxyz"
	numberChars    = "0123456789"
	specialChars   = "@$!%*?&"

	MinPasswordLength = 8
	MaxPasswordLength = 128
)

var (
	ErrPasswordTooShort    = errors.New("password must be at least 8 characters")
	ErrPasswordTooLong     = errors.New("password must be at most 128 characters")
	ErrPasswordNoUppercase = errors.New("password must contain an uppercase letter")
	ErrPasswordNoLowercase = errors.New("password must contain a lowercase letter")
	ErrPasswordNoNumber    = errors.New("password must contain a digit")
	ErrPasswordNoSpecial   = errors.New("password must contain one of " + specialChars)
	ErrPasswordInvalidChar = errors.New("password may only contain letters, digits and " + specialChars)
)

// CheckPasswordStrength enforces the account password policy: 8 to 128 characters
// drawn from letters, digits and the special set, with at least one of each class.
func CheckPasswordStrength(password string) error {
	n := utf8.RuneCountInString(password)
	if n < MinPasswordLength {
		return ErrPasswordTooShort
	}
	if n > MaxPasswordLength {
		return ErrPasswordTooLong
	}

	allowed := uppercaseChars + lowercaseChars + numberChars + specialChars
	for _, ch := range password {
		if !strings.ContainsRune(allowed, ch) {
			return ErrPasswordInvalidChar
		}
	}

	switch {
	case !strings.ContainsAny(password, uppercaseChars):
		return ErrPasswordNoUppercase
	case !strings.ContainsAny(password, lowercaseChars):
		return ErrPasswordNoLowercase
	case !strings.ContainsAny(password, numberChars):
		return ErrPasswordNoNumber
	case !strings.ContainsAny(password, specialChars):
		return ErrPasswordNoSpecial
	}

	return nil
}

// internal/app/system/authutil/password.go
package authutil

import (
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

const (
	minPasswordLength = 6
	maxPasswordLength = 128
	bcryptCost        = 12
)

var (
	ErrPasswordTooShort = errors.New("password must be at least 6 characters")
	ErrPasswordTooLong  = errors.New("password must be at most 128 characters")
	ErrPasswordCommon   = errors.New("password is too common, choose a different one")
)

// blockedPasswords rejects the passwords that show up at the top of every
// breach list. Matching is case-insensitive.
var blockedPasswords = func() map[string]struct{} {
	list := []string{
		"123456", "1234567", "12345678", "123456789", "123123", "654321",
		"111111", "000000", "password", "password1", "qwerty", "qwerty123",
		"abc123", "abcdef", "iloveyou", "letmein", "welcome", "admin",
		"login", "monkey", "dragon", "master", "princess", "sunshine",
		"football", "baseball", "soccer", "hockey", "batman", "superman",
	}
	m := make(map[string]struct{}, len(list))
	for _, p := range list {
		m[p] = struct{}{}
	}
	return m
}()

// ValidatePassword reports whether a candidate password meets the length
// rules and is not on the blocklist.
func ValidatePassword(password string) error {
	if len(password) < minPasswordLength {
		return ErrPasswordTooShort
	}
	if len(password) > maxPasswordLength {
		return ErrPasswordTooLong
	}
	if _, blocked := blockedPasswords[strings.ToLower(password)]; blocked {
		return ErrPasswordCommon
	}
	return nil
}

// HashPassword hashes a password with bcrypt. Callers should run
// ValidatePassword first; hashing does not re-check the rules.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword reports whether the plain-text password matches the hash.
func CheckPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

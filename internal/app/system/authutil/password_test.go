package authutil

import (
	"errors"
	"strings"
	"testing"
)

func TestValidatePassword(t *testing.T) {
	cases := []struct {
		name     string
		password string
		want     error
	}{
		{"too short", "abc12", ErrPasswordTooShort},
		{"minimum length", "abc123x", nil},
		{"too long", strings.Repeat("a", 129), ErrPasswordTooLong},
		{"common", "password", ErrPasswordCommon},
		{"common mixed case", "PaSsWoRd", ErrPasswordCommon},
		{"common numeric", "123456", ErrPasswordCommon},
		{"acceptable", "correct-horse-battery", nil},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ValidatePassword(tc.password); !errors.Is(got, tc.want) {
				t.Errorf("ValidatePassword(%q) = %v, want %v", tc.password, got, tc.want)
			}
		})
	}
}

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("correct-horse-battery")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if hash == "correct-horse-battery" {
		t.Fatal("hash equals the plain-text password")
	}
	if !CheckPassword("correct-horse-battery", hash) {
		t.Error("correct password should verify")
	}
	if CheckPassword("wrong-password", hash) {
		t.Error("wrong password should not verify")
	}
}

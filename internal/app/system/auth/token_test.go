package auth

import (
	"errors"
	"testing"
	"time"
)

func TestNewTokenManager(t *testing.T) {
	if _, err := NewTokenManager("", time.Hour); err == nil {
		t.Error("empty key should be rejected")
	}

	tm, err := NewTokenManager("unit-test-signing-key", 0)
	if err != nil {
		t.Fatalf("NewTokenManager: %v", err)
	}
	if tm.ttl != 24*time.Hour {
		t.Errorf("ttl = %v, want the 24h default", tm.ttl)
	}
}

func TestIssueAndParse(t *testing.T) {
	tm, err := NewTokenManager("unit-test-signing-key", time.Hour)
	if err != nil {
		t.Fatalf("NewTokenManager: %v", err)
	}

	signed, exp, err := tm.Issue("user-1", "a@b.com", "user")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if time.Until(exp) <= 0 {
		t.Errorf("expiry %v is not in the future", exp)
	}

	sub, err := tm.Parse(signed)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if sub != "user-1" {
		t.Errorf("subject = %q, want %q", sub, "user-1")
	}
}

func TestParse_Rejections(t *testing.T) {
	tm, _ := NewTokenManager("unit-test-signing-key", time.Hour)

	t.Run("garbage", func(t *testing.T) {
		if _, err := tm.Parse("not-a-token"); !errors.Is(err, ErrTokenInvalid) {
			t.Errorf("err = %v, want ErrTokenInvalid", err)
		}
	})

	t.Run("wrong key", func(t *testing.T) {
		other, _ := NewTokenManager("a-different-signing-key", time.Hour)
		signed, _, err := other.Issue("user-1", "a@b.com", "user")
		if err != nil {
			t.Fatalf("Issue: %v", err)
		}
		if _, err := tm.Parse(signed); !errors.Is(err, ErrTokenInvalid) {
			t.Errorf("err = %v, want ErrTokenInvalid", err)
		}
	})

	t.Run("expired", func(t *testing.T) {
		expired := &TokenManager{key: []byte("unit-test-signing-key"), ttl: -time.Hour}
		signed, _, err := expired.Issue("user-1", "a@b.com", "user")
		if err != nil {
			t.Fatalf("Issue: %v", err)
		}
		if _, err := tm.Parse(signed); !errors.Is(err, ErrTokenExpired) {
			t.Errorf("err = %v, want ErrTokenExpired", err)
		}
	})
}

package auth

import (
	"errors"
	"testing"
	"time"
)

func TestIssueParseRoundTrip(t *testing.T) {
	j := NewJWTer("0123456789abcdef", "hotel-backoffice", time.Hour)
	tok, issued, err := j.Issue("alice")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	c, err := j.Parse(tok)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if c.Pseudo() != "alice" || c.ID == "" || c.ID != issued.ID {
		t.Fatalf("claims mismatch: %+v", c)
	}
	if d := c.ExpiresAt.Sub(c.IssuedAt.Time); d != time.Hour {
		t.Fatalf("ttl: %v", d)
	}
}

func TestParseRejectsExpired(t *testing.T) {
	j := NewJWTer("0123456789abcdef", "hotel-backoffice", time.Minute)
	base := time.Now()
	j.now = func() time.Time { return base }
	tok, _, err := j.Issue("alice")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	j.now = func() time.Time { return base.Add(time.Minute + 2*j.Leeway) }
	if _, err := j.Parse(tok); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestParseRejectsOtherSecretAndIssuer(t *testing.T) {
	a := NewJWTer("0123456789abcdef", "hotel-backoffice", time.Hour)
	tok, _, _ := a.Issue("alice")

	b := NewJWTer("fedcba9876543210", "hotel-backoffice", time.Hour)
	if _, err := b.Parse(tok); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("wrong secret accepted: %v", err)
	}
	c := NewJWTer("0123456789abcdef", "someone-else", time.Hour)
	if _, err := c.Parse(tok); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("wrong issuer accepted: %v", err)
	}
	if _, err := a.Parse("not-a-token"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("garbage accepted: %v", err)
	}
}

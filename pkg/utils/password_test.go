package utils

import (
	"strings"
	"testing"
)

func TestHashPasswordVerifiesButDiffers(t *testing.T) {
	h, err := HashPassword("pw")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if h == "pw" {
		t.Fatalf("hash equals plaintext")
	}
	if !CheckPassword("pw", h) {
		t.Fatalf("hash does not verify")
	}
	if CheckPassword("PW", h) {
		t.Fatalf("wrong password verified")
	}
}

func TestHashPasswordSalted(t *testing.T) {
	a, _ := HashPassword("same")
	b, _ := HashPassword("same")
	if a == b {
		t.Fatalf("two hashes of the same secret are identical")
	}
}

func TestHashPasswordTooLong(t *testing.T) {
	if _, err := HashPassword(strings.Repeat("x", 73)); err != ErrPasswordTooLong {
		t.Fatalf("expected ErrPasswordTooLong, got %v", err)
	}
}

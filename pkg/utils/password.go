package utils

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// ErrPasswordTooLong is returned for secrets bcrypt would silently truncate.
var ErrPasswordTooLong = errors.New("password longer than 72 bytes")

func HashPassword(pw string) (string, error) {
	if len(pw) > 72 {
		return "", ErrPasswordTooLong
	}
	b, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func CheckPassword(pw, hashed string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(pw)) == nil
}

// dummyHash is compared against when a login names an unknown user so both
// failure paths cost one bcrypt comparison.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("unused-placeholder"), bcrypt.DefaultCost)

func BurnCompare(pw string) {
	_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(pw))
}

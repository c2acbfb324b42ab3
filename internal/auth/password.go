// Package auth holds password hashing for account credentials.
package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// MinPasswordLength is enforced before hashing; bcrypt itself accepts
// anything up to 72 bytes.
const MinPasswordLength = 8

// Cost 12 keeps a hash around 250ms on current hardware, slow enough
// for stolen-dump resistance without stalling signup.
const hashCost = 12

var (
	ErrPasswordTooShort = errors.New("auth: password shorter than minimum")
	ErrPasswordTooLong  = errors.New("auth: password exceeds 72 bytes")
	ErrPasswordMismatch = errors.New("auth: password mismatch")
)

// HashPassword returns a bcrypt hash of password, rejecting inputs
// outside bcrypt's usable range.
func HashPassword(password string) (string, error) {
	if len(password) < MinPasswordLength {
		return "", ErrPasswordTooShort
	}
	if len(password) > 72 {
		return "", ErrPasswordTooLong
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), hashCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// VerifyPassword compares password against a stored hash. A wrong
// password returns ErrPasswordMismatch; anything else means the hash
// itself is unusable.
func VerifyPassword(password, hash string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrPasswordMismatch
		}
		return fmt.Errorf("verify password: %w", err)
	}
	return nil
}

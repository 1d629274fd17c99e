package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// bcryptCost matches the work factor used when the accounts were first
// created; changing it only affects newly hashed credentials.
const bcryptCost = 10

// PasswordHasher hashes and compares credentials with bcrypt.
type PasswordHasher struct{}

// NewPasswordHasher creates a PasswordHasher.
func NewPasswordHasher() *PasswordHasher {
	return &PasswordHasher{}
}

// Hash returns the bcrypt hash of the password.
func (PasswordHasher) Hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", fmt.Errorf("bcrypt: %w", err)
	}
	return string(hash), nil
}

// Compare returns a non-nil error when the password does not match the hash.
func (PasswordHasher) Compare(hash, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}

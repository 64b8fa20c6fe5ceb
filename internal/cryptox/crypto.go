// Package cryptox wraps password hashing for account credentials.
package cryptox

import (
	"crypto/subtle"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/taskforge/internal/common"
	"golang.org/x/crypto/bcrypt"
)

// bcryptCost is a seam for tests; production uses bcrypt.DefaultCost (10).
var bcryptCost = bcrypt.DefaultCost

// HashPassword returns the bcrypt hash of password. Passwords longer than
// bcrypt's 72-byte input limit are rejected with common.ErrValidation.
func HashPassword(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", fmt.Errorf("%w: password too long", common.ErrValidation)
		}
		return "", err
	}
	return string(b), nil
}

// CheckPassword reports whether password matches the bcrypt hash.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// EqualStrings compares two secrets in constant time.
func EqualStrings(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

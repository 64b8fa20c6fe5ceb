package auth

import (
	"errors"
	"time"

	"github.com/dmitrijs2005/taskforge/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Purpose separates session tokens from password-reset tokens so one can
// never be redeemed as the other.
type Purpose string

const (
	PurposeSession Purpose = "session"
	PurposeReset   Purpose = "reset"
)

// Claims are the standard registered claims plus the account id and the
// token purpose.
type Claims struct {
	jwt.RegisteredClaims
	UserID  string  `json:"id"`
	Purpose Purpose `json:"purpose"`
}

// Signer mints and verifies HS256 tokens with a shared secret.
type Signer struct {
	secret []byte
	now    func() time.Time
}

// NewSigner returns a Signer using the wall clock.
func NewSigner(secretKey string) *Signer {
	return &Signer{secret: []byte(secretKey), now: time.Now}
}

// WithClock returns a copy of s that reads time from now. Expiry checks use
// the same clock.
func (s *Signer) WithClock(now func() time.Time) *Signer {
	return &Signer{secret: s.secret, now: now}
}

// Sign returns a token for userID valid for ttl.
func (s *Signer) Sign(userID string, purpose Purpose, ttl time.Duration) (string, error) {
	issued := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(issued),
			ExpiresAt: jwt.NewNumericDate(issued.Add(ttl)),
		},
		UserID:  userID,
		Purpose: purpose,
	})

	return token.SignedString(s.secret)
}

// Verify checks signature, expiry and purpose and returns the embedded
// account id. Every failure maps to common.ErrInvalidOrExpiredToken; the
// underlying jwt error stays in the chain.
func (s *Signer) Verify(tokenString string, purpose Purpose) (string, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return "", errors.Join(common.ErrInvalidOrExpiredToken, err)
	}

	if !token.Valid || claims.UserID == "" || claims.Purpose != purpose {
		return "", common.ErrInvalidOrExpiredToken
	}

	return claims.UserID, nil
}

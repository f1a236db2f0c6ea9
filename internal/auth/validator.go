// Package auth converts bearer tokens into authenticated principals.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrInvalidToken covers malformed tokens, bad signatures and unexpected
	// signing methods.
	ErrInvalidToken = errors.New("auth: invalid token")
	// ErrTokenExpired indicates the exp claim is at or before now.
	ErrTokenExpired = errors.New("auth: token expired")
	// ErrMissingSubject indicates a valid token carrying neither a sub nor a
	// user_id claim. Callers treat it the same as an invalid token.
	ErrMissingSubject = errors.New("auth: token missing subject claim")
)

// Principal is the authenticated identity derived from a bearer token.
// It is constructed fresh per request and never persisted.
type Principal struct {
	SubjectID string
	ExpiresAt time.Time
}

// Claims carries the token payload. The user_id claim is a legacy alias for
// sub kept for tokens minted by earlier issuers.
type Claims struct {
	UserID string `json:"user_id,omitempty"`
	jwt.RegisteredClaims
}

// Validator validates HMAC-signed bearer tokens against a static secret.
// The secret and algorithm are injected at construction; validation itself
// never touches ambient state, so a Validator is safe for concurrent use.
type Validator struct {
	secret []byte
	method jwt.SigningMethod
}

// NewValidator constructs a Validator for the given shared secret and
// algorithm identifier. Only HMAC algorithms are accepted.
func NewValidator(secret, algorithm string) (*Validator, error) {
	if secret == "" {
		return nil, errors.New("auth: secret must not be empty")
	}
	method := jwt.GetSigningMethod(algorithm)
	if method == nil {
		return nil, fmt.Errorf("auth: unknown signing algorithm %q", algorithm)
	}
	if _, ok := method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("auth: unsupported signing algorithm %q", algorithm)
	}
	return &Validator{secret: []byte(secret), method: method}, nil
}

// Validate parses and verifies a raw token (Bearer prefix already stripped)
// and returns the principal it asserts. The reference time is captured once
// so the expiry decision cannot shift mid-call.
func (v *Validator) Validate(tokenStr string) (*Principal, error) {
	return v.ValidateAt(tokenStr, time.Now().UTC())
}

// ValidateAt is Validate with an explicit reference time.
func (v *Validator) ValidateAt(tokenStr string, now time.Time) (*Principal, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenStr, claims, v.keyFunc,
		jwt.WithValidMethods([]string{v.method.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}

	// exp exactly equal to now counts as expired.
	if claims.ExpiresAt == nil || !claims.ExpiresAt.Time.After(now) {
		return nil, ErrTokenExpired
	}

	subject := claims.Subject
	if subject == "" {
		subject = claims.UserID
	}
	if subject == "" {
		return nil, ErrMissingSubject
	}

	return &Principal{SubjectID: subject, ExpiresAt: claims.ExpiresAt.Time}, nil
}

func (v *Validator) keyFunc(token *jwt.Token) (any, error) {
	if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("auth: unexpected signing method %v", token.Header["alg"])
	}
	return v.secret, nil
}

// Package auth verifies and issues the bearer tokens that identify API callers
// and carries the resolved caller through the request context.
// Token issuance belongs to the identity provider; Issuer exists for the seed
// command and for tests.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"

	"github.com/pkordes/rental-api/internal/domain"
)

// ErrInvalidToken is returned for any token that fails signature, expiry, or
// claim checks.
var ErrInvalidToken = errors.New("invalid token")

// Claims are the JWT claims understood by the API. Subject holds the user ID.
type Claims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// Verifier validates HS256-signed bearer tokens.
type Verifier struct {
	secret []byte
	parser *jwt.Parser
}

// NewVerifier returns a Verifier for tokens signed with secret.
func NewVerifier(secret []byte) *Verifier {
	return &Verifier{
		secret: secret,
		parser: jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})),
	}
}

// Verify parses token and returns the user it identifies.
func (v *Verifier) Verify(token string) (domain.User, error) {
	var claims Claims
	_, err := v.parser.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return v.secret, nil
	})
	if err != nil {
		return domain.User{}, fmt.Errorf("auth.Verifier.Verify: %w: %v", ErrInvalidToken, err)
	}

	id, err := uuid.Parse(claims.Subject)
	if err != nil || id == uuid.Nil {
		return domain.User{}, fmt.Errorf("auth.Verifier.Verify: %w: subject is not a user id", ErrInvalidToken)
	}
	if claims.Username == "" {
		return domain.User{}, fmt.Errorf("auth.Verifier.Verify: %w: username claim missing", ErrInvalidToken)
	}
	return domain.User{ID: id, Username: claims.Username}, nil
}

// Issuer signs HS256 tokens for a user.
type Issuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewIssuer returns an Issuer whose tokens expire after ttl.
func NewIssuer(secret []byte, ttl time.Duration) *Issuer {
	return &Issuer{secret: secret, ttl: ttl, now: time.Now}
}

// Issue returns a signed token identifying u.
func (i *Issuer) Issue(u domain.User) (string, error) {
	now := i.now()
	claims := Claims{
		Username: u.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("auth.Issuer.Issue: %w", err)
	}
	return signed, nil
}

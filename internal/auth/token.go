package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultTTL is the absolute lifetime of an issued token.
const DefaultTTL = 24 * time.Hour

// Claims binds a token to a user's email (subject) and role.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Email returns the subject claim.
func (c *Claims) Email() string { return c.Subject }

// Signer signs and verifies session tokens.
type Signer interface {
	Sign(email, role string) (string, error)
	Parse(token string) (*Claims, error)
}

// JWTSigner signs HS256 tokens with a process-wide key. Rotating the key
// invalidates every outstanding token.
type JWTSigner struct {
	key []byte
	ttl time.Duration
	now func() time.Time
}

func NewJWTSigner(secret string, ttl time.Duration) *JWTSigner {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &JWTSigner{key: []byte(secret), ttl: ttl, now: time.Now}
}

// TTL returns the configured token lifetime.
func (s *JWTSigner) TTL() time.Duration { return s.ttl }

func (s *JWTSigner) Sign(email, role string) (string, error) {
	const op = "auth.JWTSigner.Sign"
	if email == "" {
		return "", fmt.Errorf("%s: empty subject", op)
	}
	now := s.now()
	claims := Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.key)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return signed, nil
}

func (s *JWTSigner) Parse(token string) (*Claims, error) {
	const op = "auth.JWTSigner.Parse"
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(*jwt.Token) (any, error) {
		return s.key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, fmt.Errorf("%s: invalid token", op)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%s: %w", op, errMissingSubject)
	}
	return claims, nil
}

var errMissingSubject = errors.New("missing subject")

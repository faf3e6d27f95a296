// Package auth provides the bearer-token capability shared by all protected
// route groups. Token issuance belongs to the identity service; Issue exists
// for seed tooling and tests.
package auth

import (
	"time"

	"github.com/go-faster/errors"
	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned for malformed, badly signed, or expired tokens.
var ErrInvalidToken = errors.New("invalid token")

// DefaultTTL is how long issued tokens stay valid.
const DefaultTTL = 7 * 24 * time.Hour

// Identity is the token payload: who the caller is and their coarse
// authorization attributes.
type Identity struct {
	UserID   int64  `json:"id"`
	Email    string `json:"email"`
	Name     string `json:"name,omitempty"`
	Role     string `json:"role,omitempty"`
	UserType string `json:"user_type,omitempty"`
}

// Claims is the JWT claim set carrying an Identity.
type Claims struct {
	Identity
	jwt.RegisteredClaims
}

// Tokens issues and verifies HS256 bearer tokens.
type Tokens struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokens creates a Tokens helper with the given signing secret.
// The secret must be externally supplied; there is no default.
func NewTokens(secret []byte) *Tokens {
	return &Tokens{secret: secret, ttl: DefaultTTL, now: time.Now}
}

// Issue mints a signed token for the given identity.
func (t *Tokens) Issue(id Identity) (string, error) {
	now := t.now()
	claims := Claims{
		Identity: id,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", errors.Wrap(err, "sign token")
	}
	return signed, nil
}

// Verify parses and validates a token, returning the embedded identity.
// Any parse, signature, or expiry failure maps to ErrInvalidToken.
func (t *Tokens) Verify(token string) (*Identity, error) {
	var claims Claims
	parsed, err := jwt.ParseWithClaims(token, &claims,
		func(*jwt.Token) (any, error) { return t.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(func() time.Time { return t.now() }),
	)
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	return &claims.Identity, nil
}

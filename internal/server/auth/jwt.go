// Package auth issues and verifies the signed session tokens: HS256 JWTs
// carrying the user id (sub), issue and expiry times and a unique token id.
package auth

import (
	"errors"
	"time"

	"github.com/dmitrijs2005/tradejournal/internal/common"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims is the decoded payload of a valid token.
type Claims struct {
	UserID    string
	TokenID   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Codec signs and verifies tokens with a shared secret.
type Codec struct {
	secret []byte
	now    func() time.Time
}

func NewCodec(secret []byte) *Codec {
	return &Codec{secret: secret, now: time.Now}
}

// WithClock replaces the time source for issuing and verifying tokens.
func (c *Codec) WithClock(now func() time.Time) *Codec {
	c.now = now
	return c
}

// Encode issues a token for userID valid for ttl.
func (c *Codec) Encode(userID string, ttl time.Duration) (string, error) {
	now := c.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		ID:        uuid.NewString(),
	})

	tokenString, err := token.SignedString(c.secret)
	if err != nil {
		return "", err
	}
	return tokenString, nil
}

// Decode verifies token and returns its claims. It fails with
// common.ErrTokenExpired for an expired but otherwise valid token and with
// common.ErrInvalidToken for anything else.
func (c *Codec) Decode(token string) (*Claims, error) {
	claims := &jwt.RegisteredClaims{}

	parsed, err := jwt.ParseWithClaims(token, claims,
		func(t *jwt.Token) (interface{}, error) {
			return c.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrTokenExpired
		}
		return nil, common.ErrInvalidToken
	}

	if !parsed.Valid || claims.Subject == "" {
		return nil, common.ErrInvalidToken
	}

	out := &Claims{
		UserID:    claims.Subject,
		TokenID:   claims.ID,
		ExpiresAt: claims.ExpiresAt.Time,
	}
	if claims.IssuedAt != nil {
		out.IssuedAt = claims.IssuedAt.Time
	}
	return out, nil
}

package sessions

import (
	"context"
	"time"

	"github.com/dmitrijs2005/tradejournal/internal/server/auth"
	"github.com/dmitrijs2005/tradejournal/internal/server/cache"
)

// Stateless keeps no per-session state: the token itself carries the user
// id and expiry. Destroyed tokens are remembered by id until they would
// have expired anyway.
type Stateless struct {
	codec   *auth.Codec
	ttl     time.Duration
	revoked *cache.Cache[string, time.Time]
}

var _ Manager = (*Stateless)(nil)

func NewStateless(codec *auth.Codec, ttl time.Duration, revoked *cache.Cache[string, time.Time]) *Stateless {
	return &Stateless{codec: codec, ttl: ttl, revoked: revoked}
}

func (s *Stateless) Create(ctx context.Context, userID string) (string, error) {
	return s.codec.Encode(userID, s.ttl)
}

func (s *Stateless) Resolve(ctx context.Context, token string) (string, bool) {
	if token == "" {
		return "", false
	}
	claims, err := s.codec.Decode(token)
	if err != nil {
		return "", false
	}
	if _, revoked := s.revoked.Get(claims.TokenID); revoked {
		return "", false
	}
	return claims.UserID, true
}

func (s *Stateless) Destroy(ctx context.Context, token string) {
	claims, err := s.codec.Decode(token)
	if err != nil || claims.TokenID == "" {
		return
	}
	s.revoked.SetUntil(claims.TokenID, claims.ExpiresAt, claims.ExpiresAt)
	s.revoked.Purge()
}

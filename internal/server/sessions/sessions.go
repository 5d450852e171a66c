// Package sessions binds an opaque credential to a user id. The variant is
// chosen once at start-up: signed stateless tokens when a secret is
// configured, an in-process table otherwise.
package sessions

import (
	"context"
	"time"

	"github.com/dmitrijs2005/tradejournal/internal/common"
	"github.com/dmitrijs2005/tradejournal/internal/logging"
	"github.com/dmitrijs2005/tradejournal/internal/server/auth"
	"github.com/dmitrijs2005/tradejournal/internal/server/cache"
)

// Manager issues, resolves and destroys session credentials.
type Manager interface {
	// Create issues a new credential for userID.
	Create(ctx context.Context, userID string) (string, error)

	// Resolve returns the user bound to token. Malformed, expired, revoked
	// and unknown credentials all report false.
	Resolve(ctx context.Context, token string) (string, bool)

	// Destroy invalidates token. Unknown tokens are ignored.
	Destroy(ctx context.Context, token string)
}

// New returns the stateless manager when secret is set and the in-memory
// manager otherwise.
func New(secret string, ttl time.Duration, logger logging.Logger) Manager {
	if ttl <= 0 {
		ttl = common.DefaultSessionTTL
	}
	if secret == "" {
		logger.Warn(context.Background(), "no session secret configured, sessions are kept in memory and lost on restart")
		return NewMemory(cache.New[string, string](), ttl)
	}
	return NewStateless(auth.NewCodec([]byte(secret)), ttl, cache.New[string, time.Time]())
}

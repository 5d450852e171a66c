package sessions

import (
	"context"
	"time"

	"github.com/dmitrijs2005/tradejournal/internal/common"
	"github.com/dmitrijs2005/tradejournal/internal/server/cache"
)

const tokenBytes = 32

// Memory maps random opaque tokens to user ids in process memory.
// Sessions do not survive a restart and are not shared between instances.
type Memory struct {
	sessions *cache.Cache[string, string]
	ttl      time.Duration
	now      func() time.Time
}

var _ Manager = (*Memory)(nil)

func NewMemory(sessions *cache.Cache[string, string], ttl time.Duration) *Memory {
	return &Memory{sessions: sessions, ttl: ttl, now: time.Now}
}

// WithClock replaces the time source used to stamp session expiry.
func (m *Memory) WithClock(now func() time.Time) *Memory {
	m.now = now
	return m
}

func (m *Memory) Create(ctx context.Context, userID string) (string, error) {
	token, err := common.MakeRandHexString(tokenBytes)
	if err != nil {
		return "", err
	}
	m.sessions.Purge()
	m.sessions.SetUntil(token, userID, m.now().Add(m.ttl))
	return token, nil
}

func (m *Memory) Resolve(ctx context.Context, token string) (string, bool) {
	if token == "" {
		return "", false
	}
	return m.sessions.Get(token)
}

func (m *Memory) Destroy(ctx context.Context, token string) {
	m.sessions.Delete(token)
}

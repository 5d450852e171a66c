package services

import (
	"context"
	"testing"

	"github.com/dmitrijs2005/tradejournal/internal/common"
	"github.com/dmitrijs2005/tradejournal/internal/server/cache"
	"github.com/dmitrijs2005/tradejournal/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestUserService(t *testing.T) (*UserService, *cache.Cache[string, *models.User]) {
	t.Helper()
	c := cache.New[string, *models.User]()
	return NewUserService(newManager(t), c, bcrypt.MinCost), c
}

func TestRegister_Success(t *testing.T) {
	s, c := newTestUserService(t)

	u, err := s.Register(context.Background(), "  Trader@Example.com ", "password1", " Tom ")
	require.NoError(t, err)
	assert.NotEmpty(t, u.ID)
	assert.Equal(t, "trader@example.com", u.Email)
	assert.Equal(t, "Tom", u.Nickname)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("password1")))

	cached, ok := c.Get(u.ID)
	require.True(t, ok)
	assert.Equal(t, u.Email, cached.Email)
}

func TestRegister_Validation(t *testing.T) {
	s, _ := newTestUserService(t)
	ctx := context.Background()

	_, err := s.Register(ctx, "", "password1", "n")
	requireCode(t, err, common.CodeMissingFields)

	_, err = s.Register(ctx, "a@x.com", "short", "n")
	requireCode(t, err, common.CodePasswordTooShort)
}

func TestRegister_DuplicateCheckedBeforePasswordLength(t *testing.T) {
	s, _ := newTestUserService(t)
	ctx := context.Background()

	_, err := s.Register(ctx, "a@x.com", "password1", "a")
	require.NoError(t, err)

	_, err = s.Register(ctx, "A@X.COM", "short", "b")
	assert.ErrorIs(t, err, common.ErrorAlreadyExists)
}

func TestAuthenticate(t *testing.T) {
	s, _ := newTestUserService(t)
	ctx := context.Background()

	reg, err := s.Register(ctx, "a@x.com", "password1", "a")
	require.NoError(t, err)

	u, err := s.Authenticate(ctx, "A@x.com", "password1")
	require.NoError(t, err)
	assert.Equal(t, reg.ID, u.ID)

	_, err = s.Authenticate(ctx, "a@x.com", "wrong-password")
	assert.ErrorIs(t, err, common.ErrorUnauthorized)

	_, err = s.Authenticate(ctx, "nobody@x.com", "password1")
	assert.ErrorIs(t, err, common.ErrorUnauthorized)

	_, err = s.Authenticate(ctx, "", "")
	requireCode(t, err, common.CodeMissingFields)
}

func TestResetPassword(t *testing.T) {
	s, _ := newTestUserService(t)
	ctx := context.Background()

	_, err := s.Register(ctx, "a@x.com", "password1", "a")
	require.NoError(t, err)

	requireCode(t, s.ResetPassword(ctx, "a@x.com", ""), common.CodeMissingFields)
	requireCode(t, s.ResetPassword(ctx, "a@x.com", "short"), common.CodePasswordTooShort)
	assert.ErrorIs(t, s.ResetPassword(ctx, "nobody@x.com", "password2"), common.ErrorNotFound)

	require.NoError(t, s.ResetPassword(ctx, "a@x.com", "password2"))

	_, err = s.Authenticate(ctx, "a@x.com", "password1")
	assert.ErrorIs(t, err, common.ErrorUnauthorized)
	_, err = s.Authenticate(ctx, "a@x.com", "password2")
	assert.NoError(t, err)
}

func TestWarmCacheAndGetByID(t *testing.T) {
	m := newManager(t)
	ctx := context.Background()

	u, err := m.Users().Create(ctx, &models.User{Email: "a@x.com", PasswordHash: "h", Nickname: "a"})
	require.NoError(t, err)

	c := cache.New[string, *models.User]()
	s := NewUserService(m, c, bcrypt.MinCost)

	n, err := s.WarmCache(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, 1, c.Len())

	got, err := s.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", got.Email)

	_, err = s.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

package auth

import (
	"encoding/base64"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/tradejournal/internal/common"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2025, 3, 10, 9, 30, 0, 0, time.UTC)

func newTestCodec(now *time.Time) *Codec {
	return NewCodec([]byte("super-secret")).WithClock(func() time.Time { return *now })
}

// signRaw signs an arbitrary JSON payload the way the codec would.
func signRaw(t *testing.T, secret []byte, header, payload string) string {
	t.Helper()
	enc := base64.RawURLEncoding
	signingString := enc.EncodeToString([]byte(header)) + "." + enc.EncodeToString([]byte(payload))
	sig, err := jwt.SigningMethodHS256.Sign(signingString, secret)
	require.NoError(t, err)
	return signingString + "." + enc.EncodeToString(sig)
}

func TestEncodeDecode_RoundTrip(t *testing.T) {
	t.Parallel()
	now := fixedNow
	c := newTestCodec(&now)

	tok, err := c.Encode("user-123", 7*24*time.Hour)
	require.NoError(t, err)
	assert.Len(t, strings.Split(tok, "."), 3)

	claims, err := c.Decode(tok)
	require.NoError(t, err)
	assert.Equal(t, "user-123", claims.UserID)
	assert.NotEmpty(t, claims.TokenID)
	assert.True(t, claims.IssuedAt.Equal(fixedNow))
	assert.True(t, claims.ExpiresAt.Equal(fixedNow.Add(7*24*time.Hour)))
}

func TestEncode_UniqueTokenIDs(t *testing.T) {
	t.Parallel()
	now := fixedNow
	c := newTestCodec(&now)

	a, err := c.Encode("u1", time.Hour)
	require.NoError(t, err)
	b, err := c.Encode("u1", time.Hour)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestDecode_Expired(t *testing.T) {
	t.Parallel()
	now := fixedNow
	c := newTestCodec(&now)

	tok, err := c.Encode("u1", time.Hour)
	require.NoError(t, err)

	now = fixedNow.Add(time.Hour + time.Second)
	_, err = c.Decode(tok)
	require.ErrorIs(t, err, common.ErrTokenExpired)
}

func TestDecode_MACBitFlip(t *testing.T) {
	t.Parallel()
	now := fixedNow
	c := newTestCodec(&now)

	tok, err := c.Encode("u1", time.Hour)
	require.NoError(t, err)

	parts := strings.Split(tok, ".")
	sig, err := base64.RawURLEncoding.DecodeString(parts[2])
	require.NoError(t, err)

	for _, bit := range []int{0, 7, 100, len(sig)*8 - 1} {
		flipped := append([]byte(nil), sig...)
		flipped[bit/8] ^= 1 << (bit % 8)
		forged := parts[0] + "." + parts[1] + "." + base64.RawURLEncoding.EncodeToString(flipped)

		_, err := c.Decode(forged)
		require.ErrorIs(t, err, common.ErrInvalidToken, "bit %d", bit)
	}
}

func TestDecode_WrongSecret(t *testing.T) {
	t.Parallel()
	now := fixedNow

	tok, err := NewCodec([]byte("right")).WithClock(func() time.Time { return now }).Encode("u1", time.Hour)
	require.NoError(t, err)

	_, err = NewCodec([]byte("wrong")).WithClock(func() time.Time { return now }).Decode(tok)
	require.ErrorIs(t, err, common.ErrInvalidToken)
}

func TestDecode_Rejects(t *testing.T) {
	t.Parallel()
	secret := []byte("super-secret")
	exp := fixedNow.Add(time.Hour).Unix()
	header := `{"alg":"HS256","typ":"JWT"}`

	tests := []struct {
		name  string
		token string
	}{
		{name: "empty", token: ""},
		{name: "two segments", token: "a.b"},
		{name: "four segments", token: "a.b.c.d"},
		{name: "not base64", token: "***.***.***"},
		{name: "sub not a string", token: signRaw(t, secret, header, `{"sub":42,"exp":`+jsonInt(exp)+`}`)},
		{name: "sub empty", token: signRaw(t, secret, header, `{"sub":"","exp":`+jsonInt(exp)+`}`)},
		{name: "sub missing", token: signRaw(t, secret, header, `{"exp":`+jsonInt(exp)+`}`)},
		{name: "exp missing", token: signRaw(t, secret, header, `{"sub":"u1"}`)},
		{name: "exp not a number", token: signRaw(t, secret, header, `{"sub":"u1","exp":"tomorrow"}`)},
		{name: "alg none", token: "eyJhbGciOiJub25lIiwidHlwIjoiSldUIn0.eyJzdWIiOiJ1MSJ9."},
		{name: "alg HS512", token: signRawHS512(t, secret, exp)},
	}

	now := fixedNow
	c := newTestCodec(&now)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.Decode(tt.token)
			require.ErrorIs(t, err, common.ErrInvalidToken)
		})
	}
}

func jsonInt(v int64) string {
	b, _ := json.Marshal(v)
	return string(b)
}

func signRawHS512(t *testing.T, secret []byte, exp int64) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.MapClaims{"sub": "u1", "exp": exp})
	s, err := tok.SignedString(secret)
	require.NoError(t, err)
	return s
}

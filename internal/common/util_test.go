package common

import (
	"encoding/hex"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMakeRandHexString_LengthAndHex(t *testing.T) {
	const n = 16
	s, err := MakeRandHexString(n)
	require.NoError(t, err)
	assert.Len(t, s, n*2)
	_, err = hex.DecodeString(s)
	assert.NoError(t, err, "string is not valid hex")
}

func TestMakeRandHexString_ZeroSize(t *testing.T) {
	s, err := MakeRandHexString(0)
	require.NoError(t, err)
	assert.Empty(t, s)
}

func TestMakeRandHexString_EntropyHint(t *testing.T) {
	a, err := MakeRandHexString(32)
	require.NoError(t, err)
	b, err := MakeRandHexString(32)
	require.NoError(t, err)
	if a == b {
		t.Logf("warning: two MakeRandHexString(32) results are identical; extremely unlikely")
	}
}

func TestNormalizeEmail(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"a@x.com", "a@x.com"},
		{"  A@X.Com ", "a@x.com"},
		{"\tTrader@Example.ORG\n", "trader@example.org"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeEmail(tt.in))
	}
}

func TestValidationError(t *testing.T) {
	err := NewValidationError(CodeInvalidProfit, "")
	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, CodeInvalidProfit, ve.Code)
	assert.Equal(t, "validation error: INVALID_PROFIT", err.Error())

	err = NewValidationError(CodeMissingFields, "asset is required")
	assert.Equal(t, "validation error: MISSING_FIELDS: asset is required", err.Error())
}

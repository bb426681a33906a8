package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avdeenkov/shopsync/internal/common"
)

func TestStripBearer(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"with prefix", "Bearer abc.def.ghi", "abc.def.ghi"},
		{"lowercase prefix", "bearer abc.def.ghi", "abc.def.ghi"},
		{"without prefix", "abc.def.ghi", "abc.def.ghi"},
		{"empty", "", ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, StripBearer(tc.in))
		})
	}
}

func TestValidateToken_AcceptsWellFormed(t *testing.T) {
	token := mintToken(t, "u1")
	require.NoError(t, ValidateToken(token))
}

func TestValidateToken_RejectsMalformed(t *testing.T) {
	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"two segments", "abc.def"},
		{"four segments", "a.b.c.d"},
		{"not base64 payload", "abc.!!!.ghi"},
		{"plain string", "notatoken"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateToken(tc.token)
			require.ErrorIs(t, err, common.ErrInvalidToken)
		})
	}
}

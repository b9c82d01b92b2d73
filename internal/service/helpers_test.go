package service

import (
	"testing"

	"github.com/alexanderramin/spic/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"2500000", "2500000"},
		{"2 500 000", "2500000"},
		{"  1250.50 ", "1250.5"},
		{"0", "0"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseAmount(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestParseAmount_Rejects(t *testing.T) {
	for _, in := range []string{"", "abc", "12,5", "-100"} {
		_, err := ParseAmount(in)
		assert.ErrorIs(t, err, domain.ErrInvalidInput, in)
	}
}

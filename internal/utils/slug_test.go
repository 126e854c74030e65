package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Blue T-Shirt", "blue-t-shirt"},
		{"  Wool & Cotton Socks  ", "wool-cotton-socks"},
		{"Café crème", "café-crème"},
		{"UPPER", "upper"},
		{"already-slugged", "already-slugged"},
		{"trailing!!!", "trailing"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Slugify(tt.in), "input %q", tt.in)
	}
}

func TestNewOrderNumber(t *testing.T) {
	n := NewOrderNumber("ab12cd34")
	assert.True(t, strings.HasPrefix(n, "ORD-"), n)
	assert.True(t, strings.HasSuffix(n, "-AB12CD34"), n)
}

func TestNewRefreshToken(t *testing.T) {
	a, err := NewRefreshToken()
	require.NoError(t, err)
	b, err := NewRefreshToken()
	require.NoError(t, err)

	assert.Len(t, a, 64)
	assert.NotEqual(t, a, b)
}

package crypto

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testKey() []byte { return bytes.Repeat([]byte{7}, 32) }

func TestSealer_RoundTrip(t *testing.T) {
	s, err := NewSealer(testKey())
	require.NoError(t, err)

	for _, in := range []string{"", "+91 98765 43210", "hostel H4, room 212 / ig: @seller"} {
		sealed, err := s.Seal(in)
		require.NoError(t, err)
		assert.NotEqual(t, in, sealed)

		out, err := s.Open(sealed)
		require.NoError(t, err)
		assert.Equal(t, in, out)
	}
}

func TestSealer_FreshIV(t *testing.T) {
	s, err := NewSealer(testKey())
	require.NoError(t, err)

	a, _ := s.Seal("same")
	b, _ := s.Seal("same")
	assert.NotEqual(t, a, b)
}

func TestSealer_Errors(t *testing.T) {
	_, err := NewSealer([]byte("short"))
	assert.ErrorIs(t, err, ErrInvalidKey)

	s, err := NewSealer(testKey())
	require.NoError(t, err)

	_, err = s.Open("not base64!")
	assert.Error(t, err)

	other, err := NewSealer(bytes.Repeat([]byte{9}, 32))
	require.NoError(t, err)
	sealed, err := other.Seal("secret contact")
	require.NoError(t, err)
	out, err := s.Open(sealed)
	if err == nil {
		assert.NotEqual(t, "secret contact", out)
	}
}

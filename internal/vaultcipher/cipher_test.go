package vaultcipher

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Chitralekhayaduvanshi/Cyborg-care/internal/carerrors"
)

func newTestCipher(t *testing.T) (*Cipher, string) {
	t.Helper()

	hexKey, err := GenerateKey()
	require.NoError(t, err)

	c, err := NewFromHex(hexKey)
	require.NoError(t, err)

	return c, hexKey
}

func TestCipher_roundTrip(t *testing.T) {
	c, _ := newTestCipher(t)

	vector := []float32{0.1, -0.5, 3.25, 0, -1}

	payload, err := c.Encrypt(vector)
	require.NoError(t, err)

	got, err := c.Decrypt(payload)
	require.NoError(t, err)
	assert.Equal(t, vector, got)
}

func TestCipher_roundTripEmptyVector(t *testing.T) {
	c, _ := newTestCipher(t)

	payload, err := c.Encrypt([]float32{})
	require.NoError(t, err)

	got, err := c.Decrypt(payload)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestCipher_freshNoncePerEncryption(t *testing.T) {
	c, _ := newTestCipher(t)

	vector := []float32{1, 2, 3}

	first, err := c.Encrypt(vector)
	require.NoError(t, err)

	second, err := c.Encrypt(vector)
	require.NoError(t, err)

	assert.NotEqual(t, first, second, "same plaintext must never produce the same payload twice")
}

func TestCipher_wrongKeyFailsWithEncryptionError(t *testing.T) {
	c1, _ := newTestCipher(t)
	c2, _ := newTestCipher(t)

	payload, err := c1.Encrypt([]float32{0.25, 0.75})
	require.NoError(t, err)

	_, err = c2.Decrypt(payload)
	require.Error(t, err)
	assert.ErrorIs(t, err, carerrors.ErrEncryption)
}

func TestCipher_tamperedPayloadFails(t *testing.T) {
	c, _ := newTestCipher(t)

	payload, err := c.Encrypt([]float32{0.25, 0.75})
	require.NoError(t, err)

	payload[len(payload)-1] ^= 0xff

	_, err = c.Decrypt(payload)
	assert.ErrorIs(t, err, carerrors.ErrEncryption)
}

func TestNewFromHex_rejectsBadKeys(t *testing.T) {
	_, err := NewFromHex("not-hex")
	assert.ErrorIs(t, err, carerrors.ErrEncryption)

	_, err = NewFromHex("abcd") // too short
	assert.ErrorIs(t, err, carerrors.ErrEncryption)
}

// Package vaultcipher encrypts embedding vectors for at-rest storage.
//
// Encryption protects against storage-layer exfiltration and backup leakage,
// not against compromise of the live query path; the plaintext vector column
// that backs similarity search stays inside the retrieval boundary.
package vaultcipher

import (
	"crypto/rand"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"math"

	"golang.org/x/crypto/chacha20poly1305"

	"github.com/Chitralekhayaduvanshi/Cyborg-care/internal/carerrors"
)

// KeySize is the required key length in bytes.
const KeySize = chacha20poly1305.KeySize

// Cipher seals and opens vector payloads with an authenticated cipher.
// Every Encrypt call draws a fresh random nonce and prepends it to the
// ciphertext, so nonce reuse is impossible by construction, not convention.
type Cipher struct {
	aead interface {
		Seal(dst, nonce, plaintext, additionalData []byte) []byte
		Open(dst, nonce, ciphertext, additionalData []byte) ([]byte, error)
	}
}

// New creates a Cipher from a raw 32-byte key.
func New(key []byte) (*Cipher, error) {
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, carerrors.NewEncryptionError("init", fmt.Sprintf("invalid key: %v", err))
	}

	return &Cipher{aead: aead}, nil
}

// NewFromHex creates a Cipher from a hex-encoded 32-byte key, the form the
// key takes in configuration (see cmd/createkey).
func NewFromHex(hexKey string) (*Cipher, error) {
	key, err := hex.DecodeString(hexKey)
	if err != nil {
		return nil, carerrors.NewEncryptionError("init", "encryption key is not valid hex")
	}

	if len(key) != KeySize {
		return nil, carerrors.NewEncryptionError("init",
			fmt.Sprintf("encryption key must be %d bytes, got %d", KeySize, len(key)))
	}

	return New(key)
}

// Encrypt seals the vector and returns nonce||ciphertext.
func (c *Cipher) Encrypt(vector []float32) ([]byte, error) {
	plaintext := encodeVector(vector)

	nonce := make([]byte, chacha20poly1305.NonceSizeX)
	if _, err := rand.Read(nonce); err != nil {
		return nil, carerrors.NewEncryptionError("encrypt", fmt.Sprintf("nonce generation: %v", err))
	}

	sealed := c.aead.Seal(nil, nonce, plaintext, nil)

	out := make([]byte, 0, len(nonce)+len(sealed))
	out = append(out, nonce...)
	out = append(out, sealed...)

	return out, nil
}

// Decrypt opens nonce||ciphertext and returns the vector. A wrong key or
// tampered payload fails with an EncryptionError; it never silently returns
// corrupted data.
func (c *Cipher) Decrypt(payload []byte) ([]float32, error) {
	if len(payload) < chacha20poly1305.NonceSizeX {
		return nil, carerrors.NewEncryptionError("decrypt", "payload shorter than nonce")
	}

	nonce := payload[:chacha20poly1305.NonceSizeX]
	sealed := payload[chacha20poly1305.NonceSizeX:]

	plaintext, err := c.aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return nil, carerrors.NewEncryptionError("decrypt", "authentication failed")
	}

	vector, err := decodeVector(plaintext)
	if err != nil {
		return nil, carerrors.NewEncryptionError("decrypt", err.Error())
	}

	return vector, nil
}

// GenerateKey returns a fresh random key, hex-encoded for configuration.
func GenerateKey() (string, error) {
	key := make([]byte, KeySize)
	if _, err := rand.Read(key); err != nil {
		return "", fmt.Errorf("generate key: %w", err)
	}

	return hex.EncodeToString(key), nil
}

func encodeVector(vector []float32) []byte {
	buf := make([]byte, 4+4*len(vector))
	binary.LittleEndian.PutUint32(buf, uint32(len(vector)))

	for i, v := range vector {
		binary.LittleEndian.PutUint32(buf[4+4*i:], math.Float32bits(v))
	}

	return buf
}

func decodeVector(buf []byte) ([]float32, error) {
	if len(buf) < 4 {
		return nil, fmt.Errorf("vector payload too short: %d bytes", len(buf))
	}

	n := int(binary.LittleEndian.Uint32(buf))
	if len(buf) != 4+4*n {
		return nil, fmt.Errorf("vector payload length %d does not match %d dimensions", len(buf), n)
	}

	vector := make([]float32, n)
	for i := range vector {
		vector[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[4+4*i:]))
	}

	return vector, nil
}

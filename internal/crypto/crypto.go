package crypto

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
)

const (
	keyLength   = 32 // AES-256
	ivLength    = aes.BlockSize
	ivHexLength = ivLength * 2
)

// ErrInvalidKey is returned for keys that are not 32 bytes long.
var ErrInvalidKey = fmt.Errorf("invalid key length: must be %d bytes for AES-256", keyLength)

// Sealer encrypts short text fields with AES-256-CBC.
// Output is base64(hex(iv) + hex(ciphertext)).
type Sealer struct {
	block cipher.Block
}

// NewSealer creates a Sealer for a 32-byte key.
func NewSealer(key []byte) (*Sealer, error) {
	if len(key) != keyLength {
		return nil, ErrInvalidKey
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create AES cipher: %w", err)
	}
	return &Sealer{block: block}, nil
}

// Seal encrypts plainText under a fresh random IV.
func (s *Sealer) Seal(plainText string) (string, error) {
	iv := make([]byte, ivLength)
	if _, err := rand.Read(iv); err != nil {
		return "", fmt.Errorf("failed to generate IV: %w", err)
	}

	padded := pad([]byte(plainText))
	out := make([]byte, len(padded))
	cipher.NewCBCEncrypter(s.block, iv).CryptBlocks(out, padded)

	combined := hex.EncodeToString(iv) + hex.EncodeToString(out)
	return base64.StdEncoding.EncodeToString([]byte(combined)), nil
}

// Open reverses Seal.
func (s *Sealer) Open(sealed string) (string, error) {
	decoded, err := base64.StdEncoding.DecodeString(sealed)
	if err != nil {
		return "", fmt.Errorf("failed to decode base64: %w", err)
	}
	if len(decoded) < ivHexLength {
		return "", errors.New("invalid ciphertext: too short to contain IV")
	}

	iv, err := hex.DecodeString(string(decoded[:ivHexLength]))
	if err != nil {
		return "", fmt.Errorf("failed to decode IV from hex: %w", err)
	}
	body, err := hex.DecodeString(string(decoded[ivHexLength:]))
	if err != nil {
		return "", fmt.Errorf("failed to decode ciphertext from hex: %w", err)
	}
	if len(body) == 0 || len(body)%aes.BlockSize != 0 {
		return "", errors.New("ciphertext is not a multiple of the block size")
	}

	plain := make([]byte, len(body))
	cipher.NewCBCDecrypter(s.block, iv).CryptBlocks(plain, body)

	unpadded, err := unpad(plain)
	if err != nil {
		return "", err
	}
	return string(unpadded), nil
}

// pad applies PKCS#7 padding to a multiple of the AES block size.
func pad(data []byte) []byte {
	n := aes.BlockSize - len(data)%aes.BlockSize
	return append(data, bytes.Repeat([]byte{byte(n)}, n)...)
}

func unpad(data []byte) ([]byte, error) {
	n := int(data[len(data)-1])
	if n == 0 || n > aes.BlockSize || n > len(data) {
		return nil, errors.New("invalid pkcs7 padding")
	}
	for _, b := range data[len(data)-n:] {
		if int(b) != n {
			return nil, errors.New("invalid pkcs7 padding")
		}
	}
	return data[:len(data)-n], nil
}

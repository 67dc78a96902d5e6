package sealer

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"
)

const separator = "\x1f"

var ErrInvalidToken = errors.New("invalid sealed token")

// Sealer packs string fields into an opaque, tamper-proof URL-safe token
// with AES-GCM.
type Sealer struct {
	aead cipher.AEAD
}

// New derives the AES-256 key from secret, so any non-empty string works.
func New(secret string) (*Sealer, error) {
	if secret == "" {
		return nil, fmt.Errorf("sealer secret cannot be empty")
	}
	key := sha256.Sum256([]byte(secret))

	block, err := aes.NewCipher(key[:])
	if err != nil {
		return nil, err
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	return &Sealer{aead: aead}, nil
}

func (s *Sealer) Seal(fields ...string) (string, error) {
	for _, f := range fields {
		if strings.Contains(f, separator) {
			return "", fmt.Errorf("field contains reserved separator")
		}
	}

	nonce := make([]byte, s.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}

	ct := s.aead.Seal(nonce, nonce, []byte(strings.Join(fields, separator)), nil)
	return base64.RawURLEncoding.EncodeToString(ct), nil
}

// Open returns the fields of token, which must hold exactly n of them.
func (s *Sealer) Open(token string, n int) ([]string, error) {
	data, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return nil, ErrInvalidToken
	}

	nonceSize := s.aead.NonceSize()
	if len(data) < nonceSize {
		return nil, ErrInvalidToken
	}

	pt, err := s.aead.Open(nil, data[:nonceSize], data[nonceSize:], nil)
	if err != nil {
		return nil, ErrInvalidToken
	}

	fields := strings.Split(string(pt), separator)
	if len(fields) != n {
		return nil, ErrInvalidToken
	}
	return fields, nil
}

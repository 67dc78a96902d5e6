package storage

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"printhub/pkg/sealer"
)

const FilesRoute = "/api/v1/files/"

// SealedURLSigner encodes bucket, path and expiry into a sealed token served
// under FilesRoute.
type SealedURLSigner struct {
	sealer  *sealer.Sealer
	baseURL string
	now     func() time.Time
}

func NewSealedURLSigner(s *sealer.Sealer, baseURL string) *SealedURLSigner {
	return &SealedURLSigner{
		sealer:  s,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		now:     time.Now,
	}
}

func (s *SealedURLSigner) SignedURL(bucket, path string, ttl time.Duration) (string, error) {
	if bucket == "" || path == "" {
		return "", fmt.Errorf("bucket and path are required")
	}
	expires := s.now().Add(ttl).Unix()

	token, err := s.sealer.Seal(bucket, path, strconv.FormatInt(expires, 10))
	if err != nil {
		return "", fmt.Errorf("seal url: %w", err)
	}
	return s.baseURL + FilesRoute + token, nil
}

func (s *SealedURLSigner) Resolve(token string) (string, string, error) {
	fields, err := s.sealer.Open(token, 3)
	if err != nil {
		if errors.Is(err, sealer.ErrInvalidToken) {
			return "", "", ErrInvalidURL
		}
		return "", "", err
	}

	expires, err := strconv.ParseInt(fields[2], 10, 64)
	if err != nil {
		return "", "", ErrInvalidURL
	}
	if s.now().Unix() >= expires {
		return "", "", ErrURLExpired
	}
	return fields[0], fields[1], nil
}

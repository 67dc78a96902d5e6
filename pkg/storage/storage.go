package storage

import (
	"context"
	"errors"
	"io"
	"time"
)

var (
	ErrObjectNotFound = errors.New("storage object not found")
	ErrInvalidURL     = errors.New("invalid signed url")
	ErrURLExpired     = errors.New("signed url expired")
)

type Object struct {
	Bucket      string    `json:"bucket"`
	Path        string    `json:"path"`
	ContentType string    `json:"content_type,omitempty"`
	Size        int64     `json:"size"`
	UploadedAt  time.Time `json:"uploaded_at"`
}

// Store keeps binary objects addressed by bucket and path.
type Store interface {
	Upload(ctx context.Context, bucket, path string, r io.Reader, contentType string) (*Object, error)
	Open(ctx context.Context, bucket, path string) (io.ReadCloser, *Object, error)
	Delete(ctx context.Context, bucket, path string) error
}

// URLSigner issues and resolves time-limited object URLs.
type URLSigner interface {
	SignedURL(bucket, path string, ttl time.Duration) (string, error)
	Resolve(token string) (bucket, path string, err error)
}

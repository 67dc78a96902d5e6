package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const metaContentType = "content_type"

// GridFSStore maps every storage bucket onto a GridFS bucket of the same name.
type GridFSStore struct {
	db      *mongo.Database
	mu      sync.Mutex
	buckets map[string]*gridfs.Bucket
}

func NewGridFSStore(db *mongo.Database) *GridFSStore {
	return &GridFSStore{
		db:      db,
		buckets: make(map[string]*gridfs.Bucket),
	}
}

func (s *GridFSStore) bucket(name string) (*gridfs.Bucket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if b, ok := s.buckets[name]; ok {
		return b, nil
	}
	b, err := gridfs.NewBucket(s.db, options.GridFSBucket().SetName(name))
	if err != nil {
		return nil, fmt.Errorf("open gridfs bucket %s: %w", name, err)
	}
	s.buckets[name] = b
	return b, nil
}

// Upload replaces any existing object at path.
func (s *GridFSStore) Upload(ctx context.Context, bucketName, path string, r io.Reader, contentType string) (*Object, error) {
	b, err := s.bucket(bucketName)
	if err != nil {
		return nil, err
	}

	if err := s.deleteAll(ctx, b, path); err != nil {
		return nil, err
	}

	counter := &countingReader{r: r}
	opts := options.GridFSUpload().SetMetadata(bson.M{metaContentType: contentType})
	if _, err := b.UploadFromStream(path, counter, opts); err != nil {
		return nil, fmt.Errorf("upload %s/%s: %w", bucketName, path, err)
	}

	return &Object{
		Bucket:      bucketName,
		Path:        path,
		ContentType: contentType,
		Size:        counter.n,
		UploadedAt:  time.Now().UTC(),
	}, nil
}

func (s *GridFSStore) Open(ctx context.Context, bucketName, path string) (io.ReadCloser, *Object, error) {
	b, err := s.bucket(bucketName)
	if err != nil {
		return nil, nil, err
	}

	if deadline, ok := ctx.Deadline(); ok {
		if err := b.SetReadDeadline(deadline); err != nil {
			return nil, nil, err
		}
	}

	stream, err := b.OpenDownloadStreamByName(path)
	if err != nil {
		if errors.Is(err, gridfs.ErrFileNotFound) {
			return nil, nil, ErrObjectNotFound
		}
		return nil, nil, fmt.Errorf("open %s/%s: %w", bucketName, path, err)
	}

	file := stream.GetFile()
	obj := &Object{
		Bucket:     bucketName,
		Path:       path,
		Size:       file.Length,
		UploadedAt: file.UploadDate,
	}
	if file.Metadata != nil {
		if v, err := file.Metadata.LookupErr(metaContentType); err == nil {
			obj.ContentType, _ = v.StringValueOK()
		}
	}
	return stream, obj, nil
}

func (s *GridFSStore) Delete(ctx context.Context, bucketName, path string) error {
	b, err := s.bucket(bucketName)
	if err != nil {
		return err
	}

	found, err := s.ids(ctx, b, path)
	if err != nil {
		return err
	}
	if len(found) == 0 {
		return ErrObjectNotFound
	}
	for _, id := range found {
		if err := b.DeleteContext(ctx, id); err != nil && !errors.Is(err, gridfs.ErrFileNotFound) {
			return fmt.Errorf("delete %s/%s: %w", bucketName, path, err)
		}
	}
	return nil
}

func (s *GridFSStore) deleteAll(ctx context.Context, b *gridfs.Bucket, path string) error {
	found, err := s.ids(ctx, b, path)
	if err != nil {
		return err
	}
	for _, id := range found {
		if err := b.DeleteContext(ctx, id); err != nil && !errors.Is(err, gridfs.ErrFileNotFound) {
			return err
		}
	}
	return nil
}

func (s *GridFSStore) ids(ctx context.Context, b *gridfs.Bucket, path string) ([]any, error) {
	cursor, err := b.FindContext(ctx, bson.M{"filename": path})
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", path, err)
	}
	defer cursor.Close(ctx)

	var files []struct {
		ID any `bson:"_id"`
	}
	if err := cursor.All(ctx, &files); err != nil {
		return nil, err
	}

	ids := make([]any, 0, len(files))
	for _, f := range files {
		ids = append(ids, f.ID)
	}
	return ids, nil
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}

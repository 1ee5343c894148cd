package memory

import (
	"context"
	"errors"
	"io"
	"sync"

	"wardrobe/internal/storage"
)

// ErrObjectNotFound is returned by Get for unknown keys.
var ErrObjectNotFound = errors.New("object not found")

// Object is a stored blob with its content type.
type Object struct {
	Data        []byte
	ContentType string
}

// Store is an in-memory ObjectStore for local development and tests
type Store struct {
	mu           sync.RWMutex
	objects      map[string]Object
	bucket       string
	publicDomain string
}

// New creates an empty store whose URLs look like those of bucket.
func New(bucket, publicDomain string) *Store {
	return &Store{
		objects:      make(map[string]Object),
		bucket:       bucket,
		publicDomain: publicDomain,
	}
}

// Put stores the object, overwriting an existing key.
func (s *Store) Put(ctx context.Context, key string, body io.Reader, contentType string) (string, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.objects[key] = Object{Data: data, ContentType: contentType}
	return storage.PublicURL(s.bucket, s.publicDomain, key), nil
}

// Get returns the object stored under key.
func (s *Store) Get(key string) (Object, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	obj, ok := s.objects[key]
	if !ok {
		return Object{}, ErrObjectNotFound
	}
	return obj, nil
}

// Len returns the number of stored objects.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.objects)
}

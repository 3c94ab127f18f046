package storage

import (
	"context"
	"errors"
	"strings"
	"sync"
)

// StubDocumentStore keeps uploads in memory and returns fake URLs.
// Used in development when no bucket is configured.
type StubDocumentStore struct {
	// BaseURL prefixes every returned URL
	BaseURL string

	mu      sync.RWMutex
	objects map[string]StoredObject
}

// StoredObject is an upload kept by StubDocumentStore
type StoredObject struct {
	Content     []byte
	ContentType string
}

// NewStubDocumentStore creates a stub store
func NewStubDocumentStore() *StubDocumentStore {
	return &StubDocumentStore{
		BaseURL: "https://storage.example.com",
		objects: make(map[string]StoredObject),
	}
}

// Upload records content and returns BaseURL/key
func (s *StubDocumentStore) Upload(_ context.Context, key string, content []byte, contentType string) (string, error) {
	if key == "" {
		return "", errors.New("storage key is required")
	}
	data := make([]byte, len(content))
	copy(data, content)

	s.mu.Lock()
	s.objects[key] = StoredObject{Content: data, ContentType: contentType}
	s.mu.Unlock()

	return strings.TrimRight(s.BaseURL, "/") + "/" + escapeKey(key), nil
}

// Object returns a previously uploaded object
func (s *StubDocumentStore) Object(key string) (StoredObject, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	obj, ok := s.objects[key]
	return obj, ok
}

// Len returns the number of stored objects
func (s *StubDocumentStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.objects)
}

package storage

import (
	"context"
	"errors"
	"sync"
	"time"
)

// StubDocumentStore keeps documents in memory. Use it for development
// and tests where a real object store is not available.
type StubDocumentStore struct {
	// BaseURL prefixes generated download URLs.
	// Defaults to "https://storage.example.com" if not set.
	BaseURL string

	mu      sync.Mutex
	objects map[string][]byte
}

// NewStubDocumentStore creates an empty in-memory document store
func NewStubDocumentStore() *StubDocumentStore {
	return &StubDocumentStore{
		BaseURL: "https://storage.example.com",
		objects: make(map[string][]byte),
	}
}

// Put stores a copy of the document in memory
func (s *StubDocumentStore) Put(ctx context.Context, key string, data []byte, contentType string) error {
	if key == "" {
		return errors.New("storage key is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = append([]byte(nil), data...)
	return nil
}

// PresignGet returns a stable fake download URL for a stored document
func (s *StubDocumentStore) PresignGet(ctx context.Context, key string) (string, time.Time, error) {
	if key == "" {
		return "", time.Time{}, errors.New("storage key is required")
	}

	s.mu.Lock()
	_, ok := s.objects[key]
	s.mu.Unlock()
	if !ok {
		return "", time.Time{}, errors.New("document not found: " + key)
	}

	expiresAt := time.Now().Add(DefaultPresignTTL)
	return s.BaseURL + "/" + key, expiresAt, nil
}

// Delete removes a stored document, succeeding even when absent
func (s *StubDocumentStore) Delete(ctx context.Context, key string) error {
	if key == "" {
		return errors.New("storage key is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, key)
	return nil
}

// Object returns the stored bytes for a key, for test assertions
func (s *StubDocumentStore) Object(key string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.objects[key]
	return data, ok
}

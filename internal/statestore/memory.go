package statestore

import (
	"context"
	"encoding/json"
	"sync"

	"pos-service/internal/models"
)

// MemoryStore holds the document blob in memory. It serializes through
// JSON the same way the Redis store does, so load/save round-trips and
// the absent-on-unparsable behavior match. Used by tests and by runs
// without a Redis backend.
type MemoryStore struct {
	mu  sync.Mutex
	raw []byte
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Load returns the stored document, or (nil, nil) when nothing has
// been saved yet or the blob does not parse.
func (s *MemoryStore) Load(ctx context.Context) (*models.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.raw == nil {
		return nil, nil
	}

	var doc models.Document
	if err := json.Unmarshal(s.raw, &doc); err != nil {
		return nil, nil
	}
	return &doc, nil
}

// Save overwrites the stored blob.
func (s *MemoryStore) Save(ctx context.Context, doc *models.Document) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.raw = raw
	s.mu.Unlock()
	return nil
}

// Raw returns the current serialized blob, for byte-level assertions.
func (s *MemoryStore) Raw() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]byte, len(s.raw))
	copy(out, s.raw)
	return out
}

// SetRaw replaces the stored blob, bypassing serialization. Lets tests
// plant corrupt payloads.
func (s *MemoryStore) SetRaw(raw []byte) {
	s.mu.Lock()
	s.raw = raw
	s.mu.Unlock()
}

package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"quiz-attempt-service/internal/docstore"
)

// DocumentStore is an in-memory implementation of docstore.Store.
type DocumentStore struct {
	now  func() time.Time
	mu   sync.RWMutex
	docs map[string]docstore.Document
}

func NewDocumentStore() *DocumentStore {
	return NewDocumentStoreWithClock(time.Now)
}

// NewDocumentStoreWithClock allows deterministic server timestamps in tests.
func NewDocumentStoreWithClock(now func() time.Time) *DocumentStore {
	return &DocumentStore{
		now:  now,
		docs: make(map[string]docstore.Document),
	}
}

func (s *DocumentStore) Get(_ context.Context, path string) (docstore.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.docs[path]
	if !ok {
		return nil, docstore.ErrNotFound
	}
	return copyDocument(doc), nil
}

func (s *DocumentStore) Set(_ context.Context, path string, data docstore.Document, opts ...docstore.SetOption) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, exists := s.docs[path]
	next, err := docstore.Apply(current, exists, data, docstore.BuildOptions(opts), s.now().UTC())
	if err != nil {
		return err
	}
	s.docs[path] = next
	return nil
}

func (s *DocumentStore) NewKey(_ string) string {
	return uuid.NewString()
}

// copyDocument returns a copy so callers cannot mutate stored state through maps.
// Nested values are shared; writers always replace them wholesale.
func copyDocument(doc docstore.Document) docstore.Document {
	out := make(docstore.Document, len(doc))
	for k, v := range doc {
		out[k] = v
	}
	return out
}

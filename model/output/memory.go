package output

import (
	"context"
	"fmt"
	"sync"
)

// Memory keeps the documents in process. Useful for servers and tests.
type Memory struct {
	mu   sync.Mutex
	docs []Document
}

func NewMemory() *Memory { return &Memory{} }

func (m *Memory) Store(_ context.Context, docs []Document, overwrite bool) error {
	if err := checkNames(docs); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if !overwrite && len(m.docs) > 0 {
		return fmt.Errorf("%w: memory output already holds %d documents", ErrOutputExists, len(m.docs))
	}
	m.docs = append([]Document(nil), docs...)
	return nil
}

// Documents returns a copy of the stored documents.
func (m *Memory) Documents() []Document {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Document(nil), m.docs...)
}

package usecases

import (
	"sync"

	"github.com/samirrijal/oinez/internal/core/knowledge"
)

// SharedKnowledge owns the process-wide knowledge base. The base itself
// does no locking; this wrapper is the single-writer discipline that
// serializes access for concurrent HTTP handlers and event subscribers.
type SharedKnowledge struct {
	mu   sync.RWMutex
	base *knowledge.Base
}

// NewSharedKnowledge wraps an empty knowledge base.
func NewSharedKnowledge() *SharedKnowledge {
	return &SharedKnowledge{base: knowledge.New()}
}

// Read runs fn with shared (read) access to the base. fn must not retain
// the base or mutate it.
func (s *SharedKnowledge) Read(fn func(b *knowledge.Base)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn(s.base)
}

// Write runs fn with exclusive access to the base.
func (s *SharedKnowledge) Write(fn func(b *knowledge.Base)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.base)
}

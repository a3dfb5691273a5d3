// Package idgen provides collision-resistant identifier generation for jobs.
package idgen

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// Generator produces the identifiers attached to a job at creation.
// Implementations must guarantee uniqueness with overwhelming probability;
// the registry does not deduplicate beyond what the generator provides.
type Generator interface {
	// NewJobID returns a fresh job identifier.
	NewJobID() string
	// NewStatusID returns a fresh status correlation token.
	NewStatusID() string
	// NewCorrelationToken returns a fresh synthetic blockchain-correlation token.
	NewCorrelationToken() string
}

// UUIDGenerator generates random 128-bit UUIDv4 identifiers.
type UUIDGenerator struct{}

// NewJobID returns a random UUID string.
func (UUIDGenerator) NewJobID() string {
	return uuid.NewString()
}

// NewStatusID returns a random UUID string.
func (UUIDGenerator) NewStatusID() string {
	return uuid.NewString()
}

// NewCorrelationToken returns a random UUID string.
func (UUIDGenerator) NewCorrelationToken() string {
	return uuid.NewString()
}

// SequentialGenerator is a deterministic generator for tests. It is safe for
// concurrent use.
type SequentialGenerator struct {
	mu   sync.Mutex
	next int
}

// NewJobID returns "job-N" with a monotonically increasing N.
func (g *SequentialGenerator) NewJobID() string {
	return g.nextID("job")
}

// NewStatusID returns "status-N" with a monotonically increasing N.
func (g *SequentialGenerator) NewStatusID() string {
	return g.nextID("status")
}

// NewCorrelationToken returns "chain-N" with a monotonically increasing N.
func (g *SequentialGenerator) NewCorrelationToken() string {
	return g.nextID("chain")
}

func (g *SequentialGenerator) nextID(prefix string) string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.next++
	return fmt.Sprintf("%s-%d", prefix, g.next)
}

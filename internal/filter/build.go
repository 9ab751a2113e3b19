package filter

import (
	"sync"

	"github.com/google/uuid"
)

// IDGenerator produces tree-unique node ids.
type IDGenerator interface {
	NewID() string
}

// UUIDGenerator generates time-sortable UUIDv7 node ids.
//
// UUIDv7 embeds a timestamp in the most significant bits, so node ids sort
// by creation time, which keeps tree dumps readable.
//
// Thread-safety: UUIDGenerator is stateless and safe for concurrent use.
type UUIDGenerator struct{}

// NewID creates a new UUIDv7 and returns it as a hyphenated string.
// Panics if UUID generation fails (should never happen in practice).
func (UUIDGenerator) NewID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// FixedGenerator returns predetermined ids for testing.
//
// This enables deterministic tree construction and golden output comparison.
//
// Thread-safety: safe for concurrent use via internal mutex.
type FixedGenerator struct {
	mu  sync.Mutex
	ids []string
	idx int
}

// NewFixedGenerator creates a generator that returns ids in order.
func NewFixedGenerator(ids ...string) *FixedGenerator {
	return &FixedGenerator{ids: ids}
}

// NewID returns the next predetermined id.
//
// Panics if all ids have been consumed. This is a fail-fast approach to
// catch test misconfiguration (the test built more nodes than expected).
func (g *FixedGenerator) NewID() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.idx >= len(g.ids) {
		panic("FixedGenerator: all ids exhausted")
	}
	id := g.ids[g.idx]
	g.idx++
	return id
}

// Builder constructs tree nodes with generated ids. The visual builder UI
// produces trees in wire form; Builder covers the CLI and tests, which
// assemble trees in code.
type Builder struct {
	IDs IDGenerator
}

// NewBuilder returns a Builder backed by UUIDv7 ids.
func NewBuilder() *Builder {
	return &Builder{IDs: UUIDGenerator{}}
}

// Leaf wraps a flat config in a filter node.
func (b *Builder) Leaf(cfg Config) *Leaf {
	return &Leaf{NodeID: b.IDs.NewID(), Config: cfg}
}

// Branch combines children with the given combinator.
func (b *Builder) Branch(op Combinator, children ...Node) *Branch {
	return &Branch{NodeID: b.IDs.NewID(), Op: op, Children: children}
}

// Group combines children with an implicit AND.
func (b *Builder) Group(children ...Node) *Group {
	return &Group{NodeID: b.IDs.NewID(), Children: children}
}

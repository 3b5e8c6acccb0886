package graph

import (
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
)

// IDGenerator produces creation-time identifiers of the form
// prefix + unix milliseconds. Participants use their connection id as the
// prefix, which keeps ids from different participants apart without a
// coordinator.
//
// Two calls within the same millisecond would collide, so the numeric part is
// bumped to stay strictly increasing for one generator.
type IDGenerator struct {
	mu     sync.Mutex
	prefix string
	last   int64
	now    func() time.Time
}

// NewIDGenerator returns a generator with the given prefix. An empty prefix is
// replaced with a short random one, unique for the process.
func NewIDGenerator(prefix string) *IDGenerator {
	if prefix == "" {
		prefix = uuid.NewString()[:8]
	}
	return &IDGenerator{prefix: prefix, now: time.Now}
}

// Prefix returns the generator's prefix.
func (g *IDGenerator) Prefix() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.prefix
}

// SetPrefix changes the prefix, e.g. once a participant learns its connection id.
func (g *IDGenerator) SetPrefix(prefix string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.prefix = prefix
}

// Next returns a new identifier.
func (g *IDGenerator) Next() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	ts := g.now().UnixMilli()
	if ts <= g.last {
		ts = g.last + 1
	}
	g.last = ts
	return g.prefix + strconv.FormatInt(ts, 10)
}

package postgres

import (
	"crypto/rand"
	"sync"

	"github.com/oklog/ulid/v2"

	"github.com/iho/doubleentry/internal/domain"
)

// ULIDGenerator generates ULIDs whose timestamps come from a clock, so IDs
// sort in creation order. Entropy is monotonic within a millisecond.
type ULIDGenerator struct {
	clock   domain.Clock
	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
}

// NewULIDGenerator creates a new ULIDGenerator.
func NewULIDGenerator(clock domain.Clock) *ULIDGenerator {
	if clock == nil {
		clock = domain.SystemClock{}
	}

	return &ULIDGenerator{
		clock:   clock,
		entropy: ulid.Monotonic(rand.Reader, 0),
	}
}

// Generate generates a new ULID.
func (g *ULIDGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	return ulid.MustNew(ulid.Timestamp(g.clock.Now()), g.entropy).String()
}

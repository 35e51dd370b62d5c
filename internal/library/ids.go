package library

import (
	"fmt"
	"math/rand/v2"
	"sync/atomic"
)

// IDGenerator hands out identifiers for new entities.
type IDGenerator interface {
	NextID() int
	// Observe records an id assigned elsewhere, such as seed data, so the
	// generator can avoid it.
	Observe(id int)
}

// Sequence is a monotonic counter. Ids are unique for the life of the
// generator, including across ids reported through Observe.
type Sequence struct {
	last atomic.Int64
}

func NewSequence() *Sequence { return &Sequence{} }

func (s *Sequence) NextID() int { return int(s.last.Add(1)) }

func (s *Sequence) Observe(id int) {
	for {
		cur := s.last.Load()
		if int64(id) <= cur || s.last.CompareAndSwap(cur, int64(id)) {
			return
		}
	}
}

const (
	randomMin  = 10
	randomSpan = 100
)

// Random draws ids uniformly from [10, 109]. Draws can collide with ids
// already in use; the store rejects those and the service draws again.
type Random struct {
	intN func(n int) int
}

func NewRandom() *Random { return &Random{intN: rand.IntN} }

func (r *Random) NextID() int { return randomMin + r.intN(randomSpan) }

func (r *Random) Observe(int) {}

// NewIDGenerator returns the generator for a policy name: "sequence" or
// "random".
func NewIDGenerator(policy string) (IDGenerator, error) {
	switch policy {
	case "", "sequence":
		return NewSequence(), nil
	case "random":
		return NewRandom(), nil
	default:
		return nil, fmt.Errorf("unknown id policy %q (want sequence or random)", policy)
	}
}

package weather

import (
	"math/rand/v2"
	"sync"
	"sync/atomic"
)

// Provider answers whether the weather currently blocks landings and take-offs.
// Implementations must not cache on behalf of the caller; each call reflects
// the provider's current state.
type Provider interface {
	Stormy() bool
}

// Fixed is a provider whose answer is set from outside, e.g. by a test or an
// operator. It is safe to flip from another goroutine.
type Fixed struct {
	stormy atomic.Bool
}

func NewFixed(stormy bool) *Fixed {
	f := &Fixed{}
	f.stormy.Store(stormy)
	return f
}

func (f *Fixed) Stormy() bool {
	return f.stormy.Load()
}

func (f *Fixed) SetStormy(stormy bool) {
	f.stormy.Store(stormy)
}

// Random reports a storm with a fixed probability on every query
type Random struct {
	mu     sync.Mutex
	rng    *rand.Rand
	chance float64
}

// NewRandom returns a provider that is stormy with probability chance (0..1).
// The same seed always yields the same sequence of answers.
func NewRandom(chance float64, seed uint64) *Random {
	return &Random{
		rng:    rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		chance: chance,
	}
}

func (r *Random) Stormy() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rng.Float64() < r.chance
}

// Scripted replays a fixed sequence of answers, starting over when exhausted.
// An empty script is always clear.
type Scripted struct {
	mu     sync.Mutex
	script []bool
	next   int
	calls  int
}

func NewScripted(script ...bool) *Scripted {
	return &Scripted{script: append([]bool(nil), script...)}
}

func (s *Scripted) Stormy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.calls++
	if len(s.script) == 0 {
		return false
	}
	answer := s.script[s.next]
	s.next = (s.next + 1) % len(s.script)
	return answer
}

// Calls returns how many times the provider has been queried
func (s *Scripted) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

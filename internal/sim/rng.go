// Package sim advances the world grid and atmosphere one synchronous
// sweep at a time. All stochastic decisions draw from position-addressable
// substreams of the run's seeds, so sequential and parallel execution
// produce identical results.
package sim

import "math/rand/v2"

// Salts keep independent decision classes on independent substreams.
const (
	saltCell  uint64 = iota + 1 // intake noise, keyed on the cell
	saltSpawn                   // reproduction target pick, keyed on the parent
	saltTie                     // contention tie-break, keyed on the target
	saltMutate                  // child mutation, keyed on the child position
	saltEvent                   // tick-level events (catastrophes)
)

// Streams derives deterministic random substreams from the
// biological-dynamics seed. The world-generation seed never enters here,
// which is what makes "same world, different history" runs possible.
type Streams struct {
	bio uint64
}

// NewStreams returns a substream factory for the given biological seed.
func NewStreams(bioSeed int64) *Streams {
	return &Streams{bio: splitmix64(uint64(bioSeed))}
}

// Tick returns the stream for tick-level decisions.
func (s *Streams) Tick(tick uint64) *rand.Rand {
	h := splitmix64(s.bio ^ splitmix64(tick))
	return rand.New(rand.NewPCG(h, splitmix64(h^saltEvent)))
}

// Cell returns the stream for a per-position decision class. The stream
// depends only on (seed, tick, x, y, salt) — never on the order cells are
// visited in.
func (s *Streams) Cell(tick uint64, x, y int, salt uint64) *rand.Rand {
	h := s.bio
	h = splitmix64(h ^ splitmix64(tick))
	h = splitmix64(h ^ splitmix64(uint64(uint32(x))|uint64(uint32(y))<<32))
	h = splitmix64(h ^ salt)
	return rand.New(rand.NewPCG(h, splitmix64(h)))
}

// splitmix64 is the standard 64-bit finalizer used to spread seed bits.
func splitmix64(x uint64) uint64 {
	x += 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	return x ^ (x >> 31)
}

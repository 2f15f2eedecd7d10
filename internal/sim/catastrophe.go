package sim

import (
	"math/rand/v2"

	"github.com/talgya/evopix/internal/world"
)

// Region is a circular area of the grid affected by a catastrophe.
type Region struct {
	X, Y   int
	Radius int
}

// Catastrophe decides which regions, if any, are wiped at the end of a
// tick's write phase. Implementations must draw randomness only from the
// provided stream to stay reproducible.
type Catastrophe func(tick uint64, rng *rand.Rand) []Region

// IntervalBlast returns a trigger that empties one random circular region
// every interval ticks. It is the built-in catastrophe; anything fancier
// plugs in through WithCatastrophe.
func IntervalBlast(interval, radius, w, h int) Catastrophe {
	if interval <= 0 || radius <= 0 {
		return nil
	}
	return func(tick uint64, rng *rand.Rand) []Region {
		if tick%uint64(interval) != 0 {
			return nil
		}
		return []Region{{X: rng.IntN(w), Y: rng.IntN(h), Radius: radius}}
	}
}

// applyCatastrophe clears every cell inside the triggered regions from
// the write buffer. Wiped positions keep no trait or energy state.
func (e *Engine) applyCatastrophe(next []world.Cell) {
	regions := e.catastrophe(e.tick, e.streams.Tick(e.tick))
	for _, r := range regions {
		r2 := r.Radius * r.Radius
		for dy := -r.Radius; dy <= r.Radius; dy++ {
			for dx := -r.Radius; dx <= r.Radius; dx++ {
				if dx*dx+dy*dy > r2 {
					continue
				}
				x, y := e.grid.Wrap(r.X+dx, r.Y+dy)
				next[e.grid.Index(x, y)] = world.Cell{}
			}
		}
	}
}

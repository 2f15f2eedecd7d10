package sim

import (
	"math"
	"sync"

	"github.com/talgya/evopix/internal/trait"
	"github.com/talgya/evopix/internal/world"
)

// neighborOffsets fixes the Moore-neighborhood enumeration order used for
// reproduction targets and contention resolution. Changing this order
// changes run histories, so it is part of the reproducibility contract.
var neighborOffsets = [8][2]int{
	{0, -1}, {1, -1}, {1, 0}, {1, 1},
	{0, 1}, {-1, 1}, {-1, 0}, {-1, -1},
}

// Engine owns exclusive mutation rights over the grid and atmosphere and
// advances both one synchronous sweep per Tick call.
type Engine struct {
	grid    *world.Grid
	atmos   *world.Atmosphere
	params  Params
	streams *Streams

	workers     int
	catastrophe Catastrophe

	tick uint64

	// Per-sweep scratch, indexed like the grid. energy/died hold the
	// per-cell update computed from the read snapshot; claim holds the
	// reproduction target index, -1 when the cell makes no claim.
	energy  []float64
	died    []bool
	claim   []int32
	fluxO2  []float64
	fluxCO2 []float64
}

// Option configures an Engine.
type Option func(*Engine)

// WithWorkers shards the compute phase across n goroutines. Results are
// identical for any worker count.
func WithWorkers(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.workers = n
		}
	}
}

// WithCatastrophe installs a catastrophic-event trigger.
func WithCatastrophe(c Catastrophe) Option {
	return func(e *Engine) { e.catastrophe = c }
}

// New wires an engine over the given state. bioSeed drives every
// stochastic decision the engine makes.
func New(g *world.Grid, a *world.Atmosphere, params Params, bioSeed int64, opts ...Option) *Engine {
	if params.TicksPerYear <= 0 {
		// The seasonal phase in Tick reduces modulo this period.
		params.TicksPerYear = 1
	}
	total := g.W * g.H
	e := &Engine{
		grid:    g,
		atmos:   a,
		params:  params,
		streams: NewStreams(bioSeed),
		workers: 1,
		energy:  make([]float64, total),
		died:    make([]bool, total),
		claim:   make([]int32, total),
		fluxO2:  make([]float64, total),
		fluxCO2: make([]float64, total),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// TickCount returns the number of completed sweeps.
func (e *Engine) TickCount() uint64 { return e.tick }

// Tick advances the simulation by one sweep:
//
//  1. compute phase — every cell's update is derived from the committed
//     snapshot and the start-of-tick atmosphere, never from another
//     cell's in-progress update;
//  2. write phase — deaths become empty positions, survivors carry
//     forward, contested spawns are resolved deterministically;
//  3. reduction — the summed gas flux is applied to the atmosphere once.
//
// Numeric edge conditions clamp; Tick never fails.
func (e *Engine) Tick() {
	e.tick++

	// Atmosphere feedback uses the state as of the start of the tick.
	o2 := e.atmos.O2Frac()
	co2 := e.atmos.CO2Frac()
	season := math.Sin(2 * math.Pi * float64((e.tick-1)%uint64(e.params.TicksPerYear)) / float64(e.params.TicksPerYear))

	e.computePhase(o2, co2, season)
	e.writePhase()
	e.reduceFlux()
	e.grid.Swap()
}

// computePhase fills the per-cell scratch from the read snapshot. Rows are
// sharded across workers with a barrier before the write phase; every
// random draw is position-addressed, so the shard layout is irrelevant.
func (e *Engine) computePhase(o2, co2, season float64) {
	workers := e.workers
	if workers > e.grid.H {
		workers = e.grid.H
	}
	if workers <= 1 {
		e.computeRows(0, e.grid.H, o2, co2, season)
		return
	}

	var wg sync.WaitGroup
	rowsPer := (e.grid.H + workers - 1) / workers
	for w := 0; w < workers; w++ {
		y0 := w * rowsPer
		y1 := y0 + rowsPer
		if y1 > e.grid.H {
			y1 = e.grid.H
		}
		if y0 >= y1 {
			break
		}
		wg.Add(1)
		go func(y0, y1 int) {
			defer wg.Done()
			e.computeRows(y0, y1, o2, co2, season)
		}(y0, y1)
	}
	wg.Wait()
}

func (e *Engine) computeRows(y0, y1 int, o2, co2, season float64) {
	snapshot := e.grid.Cells()
	organic := e.grid.Organic()
	p := e.params

	for y := y0; y < y1; y++ {
		for x := 0; x < e.grid.W; x++ {
			idx := e.grid.Index(x, y)
			e.claim[idx] = -1
			e.fluxO2[idx] = 0
			e.fluxCO2[idx] = 0
			e.died[idx] = false
			e.energy[idx] = 0

			c := &snapshot[idx]
			if !c.Alive {
				continue
			}

			rng := e.streams.Cell(e.tick, x, y, saltCell)
			cl := e.grid.Climate(x, y)

			// Seasonal swing grows with latitude; equatorial positions
			// barely notice it.
			seasonF := 1 + p.SeasonAmp*season*(0.2+0.8*cl.Latitude)
			noise := 1 + (rng.Float64()*2-1)*p.IntakeNoise

			// Base intake: climate soup plus deposited organics, damped
			// when atmospheric oxygen is scarce.
			aerobic := 0.5 + 0.5*o2
			gain := p.BaseIntake * (cl.Soup + p.OrganicBoost*organic[idx]) * seasonF * noise * aerobic

			// Trait-driven pathways read the snapshot only.
			if v := c.Traits.Intensity(trait.Photosynthesis); v > 0 {
				pGain := v * trait.Catalog[trait.Photosynthesis].Effect * cl.Light * seasonF * co2
				gain += pGain
				e.fluxO2[idx] += p.PhotoGasYield * pGain
				e.fluxCO2[idx] -= p.PhotoGasYield * pGain
			}
			if v := c.Traits.Intensity(trait.Chemosynthesis); v > 0 {
				gain += v * trait.Catalog[trait.Chemosynthesis].Effect * cl.Heat
			}
			if v := c.Traits.Intensity(trait.Predation); v > 0 {
				gain += v * trait.Catalog[trait.Predation].Effect * p.BaseIntake * e.preyFraction(x, y)
			}
			if v := c.Traits.Intensity(trait.Cooperation); v > 0 {
				gain += v * trait.Catalog[trait.Cooperation].Effect * p.BaseIntake * e.coopFraction(x, y)
			}
			if v := c.Traits.Intensity(trait.Thermoregulation); v > 0 {
				// Buys back part of the seasonal swing.
				gain += v * trait.Catalog[trait.Thermoregulation].Effect * p.BaseIntake * math.Abs(season) * cl.Latitude
			}
			if v := c.Traits.Intensity(trait.NitrogenFixation); v > 0 {
				gain += v * trait.Catalog[trait.NitrogenFixation].Effect * p.BaseIntake * cl.Soup
			}

			// Metabolic cost scales with trait load and age.
			n := c.Traits.Count()
			cost := p.BasalCost + c.Traits.UpkeepCost()
			if n > 1 {
				cost *= 1 + p.TraitLoadFactor*float64(n-1)
			}
			cost *= 1 + p.AgeCostFactor*float64(c.Age)/float64(p.SenescenceAge)

			// Respiration: burning energy consumes O2 and releases CO2.
			e.fluxO2[idx] -= p.RespGasYield * cost
			e.fluxCO2[idx] += p.RespGasYield * cost

			next := c.Energy + gain - cost
			if next > p.MaxEnergy {
				next = p.MaxEnergy
			}

			if next <= 0 || c.Age+1 >= p.SenescenceAge {
				e.died[idx] = true
				continue
			}
			e.energy[idx] = next

			if next > p.ReproThreshold {
				e.claim[idx] = e.pickSpawnTarget(x, y, e.tick)
			}
		}
	}
}

// preyFraction is the fraction of snapshot neighbors that are alive and
// not themselves predators.
func (e *Engine) preyFraction(x, y int) float64 {
	snapshot := e.grid.Cells()
	n := 0
	for _, off := range neighborOffsets {
		nx, ny := e.grid.Wrap(x+off[0], y+off[1])
		c := &snapshot[e.grid.Index(nx, ny)]
		if c.Alive && !c.Traits.Has(trait.Predation) {
			n++
		}
	}
	return float64(n) / float64(len(neighborOffsets))
}

// coopFraction is the fraction of snapshot neighbors that are alive and
// carry Cooperation themselves.
func (e *Engine) coopFraction(x, y int) float64 {
	snapshot := e.grid.Cells()
	n := 0
	for _, off := range neighborOffsets {
		nx, ny := e.grid.Wrap(x+off[0], y+off[1])
		c := &snapshot[e.grid.Index(nx, ny)]
		if c.Alive && c.Traits.Has(trait.Cooperation) {
			n++
		}
	}
	return float64(n) / float64(len(neighborOffsets))
}

// pickSpawnTarget chooses one empty neighbor (in the snapshot) from the
// parent's position substream, or -1 when the neighborhood is full.
func (e *Engine) pickSpawnTarget(x, y int, tick uint64) int32 {
	snapshot := e.grid.Cells()
	var empty [8]int32
	n := 0
	for _, off := range neighborOffsets {
		nx, ny := e.grid.Wrap(x+off[0], y+off[1])
		idx := e.grid.Index(nx, ny)
		if !snapshot[idx].Alive {
			empty[n] = int32(idx)
			n++
		}
	}
	if n == 0 {
		return -1
	}
	rng := e.streams.Cell(tick, x, y, saltSpawn)
	return empty[rng.IntN(n)]
}

// writePhase commits the sweep: deaths become empty positions (and feed
// the organic layer), survivors carry forward, and contested spawn
// targets are resolved by fixed neighbor order plus the target's
// substream. The commit is sequential and deterministic.
func (e *Engine) writePhase() {
	snapshot := e.grid.Cells()
	next := e.grid.Next()
	organic := e.grid.Organic()
	p := e.params

	for idx := range snapshot {
		c := &snapshot[idx]
		switch {
		case !c.Alive:
			next[idx] = world.Cell{}
		case e.died[idx]:
			next[idx] = world.Cell{}
			organic[idx] += p.OrganicDeposit * (1 + 0.2*float64(c.Traits.Count()))
		default:
			nc := *c
			nc.Energy = e.energy[idx]
			nc.Age = c.Age + 1
			next[idx] = nc
		}
	}

	e.resolveSpawns(snapshot, next)

	// Slow organic decay.
	decay := 1 - p.OrganicDecay
	for i := range organic {
		organic[i] *= decay
	}

	if e.catastrophe != nil {
		e.applyCatastrophe(next)
	}
}

// resolveSpawns walks targets in row-major order. A target's claimants are
// gathered in the fixed neighbor enumeration order, and the winner is
// drawn from the target's own substream — never from execution order.
func (e *Engine) resolveSpawns(snapshot, next []world.Cell) {
	p := e.params
	for ty := 0; ty < e.grid.H; ty++ {
		for tx := 0; tx < e.grid.W; tx++ {
			tIdx := e.grid.Index(tx, ty)
			if snapshot[tIdx].Alive {
				continue
			}

			var claimants [8]int32
			n := 0
			for _, off := range neighborOffsets {
				nx, ny := e.grid.Wrap(tx+off[0], ty+off[1])
				nIdx := e.grid.Index(nx, ny)
				if e.claim[nIdx] == int32(tIdx) && next[nIdx].Alive && next[nIdx].Energy > p.ReproCost {
					claimants[n] = int32(nIdx)
					n++
				}
			}
			if n == 0 {
				continue
			}

			winner := claimants[0]
			if n > 1 {
				winner = claimants[e.streams.Cell(e.tick, tx, ty, saltTie).IntN(n)]
			}

			parent := &next[winner]
			parent.Energy -= p.ReproCost

			mrng := e.streams.Cell(e.tick, tx, ty, saltMutate)
			next[tIdx] = world.Cell{
				Alive:   true,
				Energy:  p.ReproCost,
				Lineage: parent.Lineage,
				Traits:  trait.Mutate(snapshot[winner].Traits, p.Mutation, mrng),
			}
		}
	}
}

// reduceFlux sums per-cell gas deltas into a single atmosphere update.
// Running it after the barrier keeps the shared pools contention-free.
func (e *Engine) reduceFlux() {
	var f world.Flux
	for i := range e.fluxO2 {
		f.O2 += e.fluxO2[i]
		f.CO2 += e.fluxCO2[i]
	}
	e.atmos.ApplyFlux(f)
}

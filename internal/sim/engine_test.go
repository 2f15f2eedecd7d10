package sim

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/evopix/internal/trait"
	"github.com/talgya/evopix/internal/world"
)

// flatClimate builds a uniform, latitude-free climate so scenario tests
// control every energy term.
func flatClimate(w, h int) *world.ClimateMap {
	m := &world.ClimateMap{W: w, H: h, Cells: make([]world.Climate, w*h)}
	for i := range m.Cells {
		m.Cells[i] = world.Climate{Biome: world.BiomeBeach, Light: 1.0, Soup: 0.5, Heat: 0.1}
	}
	return m
}

func emptyGrid(t *testing.T, w, h int) *world.Grid {
	t.Helper()
	g, err := world.NewGrid(world.GridConfig{Width: w, Height: h}, flatClimate(w, h))
	require.NoError(t, err)
	return g
}

func basicTraits() trait.Set {
	var s trait.Set
	s.Add(trait.Membrane, trait.MinIntensity)
	return s
}

// calmParams zeroes intake and ambient costs so that scenario arithmetic
// is dominated by the explicit thresholds. Trait upkeep (~2e-4 per tick)
// is the only residual drain.
func calmParams() Params {
	p := DefaultParams()
	p.BaseIntake = 0
	p.IntakeNoise = 0
	p.SeasonAmp = 0
	p.BasalCost = 0
	p.TraitLoadFactor = 0
	p.AgeCostFactor = 0
	p.SenescenceAge = 1 << 20
	p.ReproThreshold = 10
	p.ReproCost = 5
	p.MaxEnergy = 100
	p.OrganicDecay = 0
	p.OrganicBoost = 0
	p.Mutation = trait.Rates{}
	return p
}

// realisticSim builds a generated world with founders and default tuning.
func realisticSim(t *testing.T, bioSeed int64, workers int) (*world.Grid, *world.Atmosphere, *Engine) {
	t.Helper()
	gen := world.DefaultGenConfig()
	gen.Width, gen.Height, gen.Seed = 48, 48, 5

	g, err := world.NewGrid(world.GridConfig{
		Width:            48,
		Height:           48,
		Seed:             5,
		InitialOrganisms: 60,
		FounderEnergy:    1.2,
	}, world.GenerateClimate(gen))
	require.NoError(t, err)

	a := world.NewAtmosphere(1.0, 1.0)
	return g, a, New(g, a, DefaultParams(), bioSeed, WithWorkers(workers))
}

func TestTickDeterministicAcrossEngines(t *testing.T) {
	g1, a1, e1 := realisticSim(t, 9, 1)
	g2, a2, e2 := realisticSim(t, 9, 1)

	for i := 0; i < 36; i++ {
		e1.Tick()
		e2.Tick()
		require.Equal(t, g1.Cells(), g2.Cells(), "tick %d", i+1)
	}
	assert.Equal(t, g1.Organic(), g2.Organic())
	assert.Equal(t, *a1, *a2)
}

func TestParallelMatchesSequential(t *testing.T) {
	g1, a1, e1 := realisticSim(t, 9, 1)
	g2, a2, e2 := realisticSim(t, 9, 8)

	for i := 0; i < 24; i++ {
		e1.Tick()
		e2.Tick()
	}
	assert.Equal(t, g1.Cells(), g2.Cells(), "worker count must not change results")
	assert.Equal(t, g1.Organic(), g2.Organic())
	assert.Equal(t, *a1, *a2)
}

func TestDifferentBioSeedsDiverge(t *testing.T) {
	g1, _, e1 := realisticSim(t, 1, 1)
	g2, _, e2 := realisticSim(t, 2, 1)

	// Same world seed: both start from identical founders.
	require.Equal(t, g1.Cells(), g2.Cells())

	for i := 0; i < 24; i++ {
		e1.Tick()
		e2.Tick()
	}
	assert.NotEqual(t, g1.Cells(), g2.Cells(), "histories under different bio seeds should diverge")
}

func TestCellStateBoundsHold(t *testing.T) {
	g, _, e := realisticSim(t, 3, 4)
	p := DefaultParams()

	for i := 0; i < 48; i++ {
		e.Tick()
		for idx, c := range g.Cells() {
			if !c.Alive {
				assert.Equal(t, world.Cell{}, c, "empty position %d must be zero-valued", idx)
				continue
			}
			assert.Greater(t, c.Energy, 0.0, "position %d", idx)
			assert.LessOrEqual(t, c.Energy, p.MaxEnergy, "position %d", idx)
			assert.Less(t, c.Age, p.SenescenceAge, "position %d", idx)
		}
	}
}

func TestDeathFreesPositionAndDepositsOrganic(t *testing.T) {
	g := emptyGrid(t, 5, 5)
	idx := g.Index(2, 2)
	g.Cells()[idx] = world.Cell{Alive: true, Energy: 0.0001, Lineage: 1, Traits: basicTraits()}

	a := world.NewAtmosphere(1.0, 1.0)
	e := New(g, a, calmParams(), 1)
	e.Tick()

	assert.False(t, g.Cells()[idx].Alive, "starved cell must leave an empty position")
	assert.Equal(t, world.Cell{}, g.Cells()[idx])
	assert.InDelta(t, 0.36, g.Organic()[idx], 1e-9, "death deposits organics scaled by trait count")
	assert.Equal(t, 0, g.Population())
}

func TestSenescenceKills(t *testing.T) {
	g := emptyGrid(t, 5, 5)
	idx := g.Index(1, 1)
	g.Cells()[idx] = world.Cell{Alive: true, Energy: 8, Age: 0, Lineage: 1, Traits: basicTraits()}

	p := calmParams()
	p.SenescenceAge = 3
	e := New(g, world.NewAtmosphere(1, 1), p, 1)

	e.Tick()
	require.True(t, g.Cells()[idx].Alive)
	assert.Equal(t, 1, g.Cells()[idx].Age)
	e.Tick()
	require.True(t, g.Cells()[idx].Alive)
	e.Tick()
	assert.False(t, g.Cells()[idx].Alive, "cell reaching the age bound dies regardless of energy")
}

func TestReproductionSpendsCostAndEndowsChild(t *testing.T) {
	// Parent at 12 energy against threshold 10 and cost 5: it spawns once,
	// ends near 7, and the child starts at exactly the cost.
	g := emptyGrid(t, 5, 5)
	pIdx := g.Index(2, 2)
	g.Cells()[pIdx] = world.Cell{Alive: true, Energy: 12, Lineage: 7, Traits: basicTraits()}

	e := New(g, world.NewAtmosphere(1, 1), calmParams(), 1)
	e.Tick()

	require.Equal(t, 2, g.Population(), "exactly one child per parent per tick")

	parent := g.Cells()[pIdx]
	require.True(t, parent.Alive)
	assert.InDelta(t, 7.0, parent.Energy, 0.01)

	var child world.Cell
	childIdx := -1
	for idx, c := range g.Cells() {
		if c.Alive && idx != pIdx {
			child = c
			childIdx = idx
		}
	}
	require.GreaterOrEqual(t, childIdx, 0)
	assert.Equal(t, 5.0, child.Energy, "child energy is exactly the reproduction cost")
	assert.Equal(t, uint32(7), child.Lineage)
	assert.Equal(t, 0, child.Age)
	assert.Equal(t, parent.Traits.Signature(), child.Traits.Signature())

	// The child landed in the parent's Moore neighborhood.
	x, y := childIdx%5, childIdx/5
	dx, dy := x-2, y-2
	assert.LessOrEqual(t, dx*dx+dy*dy, 2)
}

func TestReproductionBelowThresholdDoesNothing(t *testing.T) {
	g := emptyGrid(t, 5, 5)
	pIdx := g.Index(2, 2)
	g.Cells()[pIdx] = world.Cell{Alive: true, Energy: 9.5, Lineage: 7, Traits: basicTraits()}

	e := New(g, world.NewAtmosphere(1, 1), calmParams(), 1)
	e.Tick()

	assert.Equal(t, 1, g.Population())
	assert.InDelta(t, 9.5, g.Cells()[pIdx].Energy, 0.01)
}

// contentionGrid fills a 5x5 lattice with low-energy blockers, puts two
// eligible parents either side of the single empty position, and returns
// the three indices of interest.
func contentionGrid(t *testing.T) (g *world.Grid, aIdx, bIdx, tIdx int) {
	g = emptyGrid(t, 5, 5)
	cells := g.Cells()
	lineage := uint32(100)
	for i := range cells {
		cells[i] = world.Cell{Alive: true, Energy: 5, Lineage: lineage, Traits: basicTraits()}
		lineage++
	}
	aIdx, bIdx, tIdx = g.Index(1, 2), g.Index(3, 2), g.Index(2, 2)
	cells[aIdx].Energy = 12
	cells[bIdx].Energy = 12
	cells[tIdx] = world.Cell{}
	return g, aIdx, bIdx, tIdx
}

func TestContentionExactlyOneWinner(t *testing.T) {
	g, aIdx, bIdx, tIdx := contentionGrid(t)
	e := New(g, world.NewAtmosphere(1, 1), calmParams(), 1)
	e.Tick()

	cells := g.Cells()
	require.True(t, cells[tIdx].Alive, "the contested position must be filled")
	assert.Equal(t, 5.0, cells[tIdx].Energy)

	aSpent := cells[aIdx].Energy < 10
	bSpent := cells[bIdx].Energy < 10
	require.NotEqual(t, aSpent, bSpent, "exactly one claimant pays the cost")

	winner := cells[aIdx]
	loser := cells[bIdx]
	if bSpent {
		winner, loser = loser, winner
	}
	assert.InDelta(t, 7.0, winner.Energy, 0.01)
	assert.InDelta(t, 12.0, loser.Energy, 0.01)
	assert.Equal(t, winner.Lineage, cells[tIdx].Lineage)
}

func TestContentionWinnerReproducible(t *testing.T) {
	winnerOf := func() uint32 {
		g, _, _, tIdx := contentionGrid(t)
		e := New(g, world.NewAtmosphere(1, 1), calmParams(), 21)
		e.Tick()
		return g.Cells()[tIdx].Lineage
	}
	first := winnerOf()
	for i := 0; i < 5; i++ {
		require.Equal(t, first, winnerOf(), "same seeds must pick the same winner")
	}
}

func TestSpawnTargetsOnlyPreTickEmptyPositions(t *testing.T) {
	// Fill the lattice completely, with one cell about to starve next to
	// an eligible parent. The freed position may only be colonized on the
	// tick after the death.
	g := emptyGrid(t, 5, 5)
	cells := g.Cells()
	for i := range cells {
		cells[i] = world.Cell{Alive: true, Energy: 5, Lineage: uint32(100 + i), Traits: basicTraits()}
	}
	pIdx := g.Index(2, 2)
	dIdx := g.Index(2, 1)
	cells[pIdx] = world.Cell{Alive: true, Energy: 20, Lineage: 7, Traits: basicTraits()}
	cells[dIdx].Energy = 0.0001

	e := New(g, world.NewAtmosphere(1, 1), calmParams(), 1)

	e.Tick()
	require.False(t, g.Cells()[dIdx].Alive, "the starving cell dies on the first tick")
	assert.Equal(t, 24, g.Population(), "a full neighborhood blocks reproduction in the death tick")

	e.Tick()
	child := g.Cells()[dIdx]
	require.True(t, child.Alive, "the freed position is colonized the following tick")
	assert.Equal(t, 5.0, child.Energy)
	assert.Equal(t, uint32(7), child.Lineage)
	assert.Equal(t, 25, g.Population())
	assert.InDelta(t, 15.0, g.Cells()[pIdx].Energy, 0.01)
}

func TestZeroValueParamsTickSafely(t *testing.T) {
	g := emptyGrid(t, 4, 4)
	g.Cells()[g.Index(1, 1)] = world.Cell{Alive: true, Energy: 1, Lineage: 1, Traits: basicTraits()}

	e := New(g, world.NewAtmosphere(1, 1), Params{}, 1)
	e.Tick()
	e.Tick()

	assert.Equal(t, 0, g.Population(), "a zero senescence bound kills immediately")
}

func TestGasCouplingMovesPools(t *testing.T) {
	g := emptyGrid(t, 8, 8)
	var ts trait.Set
	ts.Add(trait.Membrane, trait.MinIntensity)
	ts.Add(trait.Photosynthesis, 1.0)
	idx := g.Index(4, 4)
	g.Cells()[idx] = world.Cell{Alive: true, Energy: 2, Lineage: 1, Traits: ts}

	a := world.NewAtmosphere(1.0, 1.0)
	p := DefaultParams()
	p.IntakeNoise = 0
	e := New(g, a, p, 1)
	e.Tick()

	assert.Greater(t, a.O2, 0.02, "photosynthesis releases oxygen")
	assert.Less(t, a.CO2, 0.04, "photosynthesis draws down CO2")
}

func TestCatastropheClearsRegion(t *testing.T) {
	g := emptyGrid(t, 9, 9)
	cells := g.Cells()
	for i := range cells {
		cells[i] = world.Cell{Alive: true, Energy: 5, Lineage: uint32(i + 1), Traits: basicTraits()}
	}

	blast := func(tick uint64, rng *rand.Rand) []Region {
		return []Region{{X: 4, Y: 4, Radius: 1}}
	}
	e := New(g, world.NewAtmosphere(1, 1), calmParams(), 1, WithCatastrophe(blast))
	e.Tick()

	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			if dx*dx+dy*dy > 1 {
				continue
			}
			idx := g.Index(4+dx, 4+dy)
			assert.False(t, g.Cells()[idx].Alive, "position (%d,%d) inside the blast", 4+dx, 4+dy)
		}
	}
	assert.True(t, g.Cells()[g.Index(2, 2)].Alive, "positions outside the blast survive")
}

func TestIntervalBlast(t *testing.T) {
	assert.Nil(t, IntervalBlast(0, 3, 10, 10))
	assert.Nil(t, IntervalBlast(5, 0, 10, 10))

	blast := IntervalBlast(5, 2, 10, 10)
	require.NotNil(t, blast)

	rng := rand.New(rand.NewPCG(1, 0))
	assert.Empty(t, blast(4, rng))
	regions := blast(5, rng)
	require.Len(t, regions, 1)
	assert.Equal(t, 2, regions[0].Radius)
	assert.Less(t, regions[0].X, 10)
	assert.Less(t, regions[0].Y, 10)
}

package element

import (
	"math"

	"gonum.org/v1/gonum/integrate/quad"

	"github.com/SimWindows/simwin-sub002/internal/consts"
	"github.com/SimWindows/simwin-sub002/pkg/node"
)

const richardsonPoints = 32

// barrier describes one band seen by a carrier whose energy increases with
// sign*E, so holes use the negated valence band.
type barrier struct {
	sign float64
	band func(n *node.Node) float64
	mass func(n *node.Node) float64
}

var (
	conduction = barrier{
		sign: 1,
		band: func(n *node.Node) float64 { return n.ConductionBand() },
		mass: func(n *node.Node) float64 { return n.Electron.Mass },
	}
	valence = barrier{
		sign: -1,
		band: func(n *node.Node) float64 { return n.ValenceBand() },
		mass: func(n *node.Node) float64 { return n.Hole.Mass },
	}
)

func (b barrier) level(n *node.Node) float64 { return b.sign * b.band(n) }

// sides returns the barrier node index, the walk direction into the barrier
// and the index of the opposite node.
func (e *Element) sides(b barrier) (int, int, int) {
	l, r := e.nodes()
	if b.level(r) >= b.level(l) {
		return e.Right, 1, e.Left
	}
	return e.Left, -1, e.Right
}

// transmission is the WKB probability exp(-2 int kappa dx) at energy E (eV).
func (e *Element) transmission(b barrier, energy float64) float64 {
	start, dir, _ := e.sides(b)
	level := b.sign * energy
	first := e.mesh.At(start)
	if b.level(first) <= level {
		return 1
	}

	kappa := func(n *node.Node) float64 {
		return math.Sqrt(math.Max(b.level(n)-level, 0) * b.mass(n) / consts.HBAR2_2M0)
	}

	var action float64
	prev := first
	kPrev := kappa(prev)
	for i := start + dir; i >= 0 && i < e.mesh.Len(); i += dir {
		cur := e.mesh.At(i)
		h := math.Abs(cur.Grid.Position - prev.Grid.Position)
		above := b.level(cur) - level
		if above <= 0 {
			// turning point between prev and cur
			frac := (b.level(prev) - level) / (b.level(prev) - b.level(cur))
			action += kPrev * frac * h / 2
			return math.Exp(-2 * action)
		}
		kCur := kappa(cur)
		action += (kPrev + kCur) * h / 2
		prev, kPrev = cur, kCur
		if action > 350 {
			return 0
		}
	}
	return math.Exp(-2 * action)
}

// richardson returns the thermal velocity sqrt(kT/(2 pi m)) of the barrier side
// and the tunnelling enhancement 1 + (1/Vt) int T(E) exp((Etop-E)/Vt) dE.
func (e *Element) richardson(b barrier) (float64, float64) {
	start, _, other := e.sides(b)
	top := e.mesh.At(start)
	low := e.mesh.At(other)
	temp := (top.Grid.Temperature + low.Grid.Temperature) / 2
	vt := e.thermalVoltage()

	m := b.mass(top) * consts.ELECTRON
	velocity := math.Sqrt(consts.BOLTZMANN*temp/(2*math.Pi*m)) * 100

	hi, lo := b.level(top), b.level(low)
	if hi <= lo {
		return velocity, 1
	}
	f := func(level float64) float64 {
		return e.transmission(b, b.sign*level) * math.Exp((hi-level)/vt)
	}
	integral := quad.Fixed(f, lo, hi, richardsonPoints, quad.Legendre{}, 0)
	return velocity, 1 + integral/vt
}

func (e *Element) CompConductionTransmission(energy float64) float64 {
	return e.transmission(conduction, energy)
}

func (e *Element) CompValenceTransmission(energy float64) float64 {
	return e.transmission(valence, energy)
}

func (e *Element) CompConductionRichardson() {
	e.ElectronVelocity, e.ElectronTunneling = e.richardson(conduction)
}

func (e *Element) CompValenceRichardson() {
	e.HoleVelocity, e.HoleTunneling = e.richardson(valence)
}

package quantum

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/SimWindows/simwin-sub002/internal/consts"
	"github.com/SimWindows/simwin-sub002/pkg/matrix"
	"github.com/SimWindows/simwin-sub002/pkg/node"
)

// carrier selects the band a bound particle lives in. Energies are handled as
// sign*E so that both carriers are confined from below.
type carrier struct {
	sign float64
	band func(n *node.Node) float64
	mass func(n *node.Node) float64
}

var (
	electrons = carrier{
		sign: 1,
		band: func(n *node.Node) float64 { return n.ConductionBand() },
		mass: func(n *node.Node) float64 { return n.Electron.Mass },
	}
	holes = carrier{
		sign: -1,
		band: func(n *node.Node) float64 { return n.ValenceBand() },
		mass: func(n *node.Node) float64 { return n.Hole.Mass },
	}
)

// subband holds the confined states of one carrier type.
type subband struct {
	top    float64     // eV, absolute
	levels []float64   // eV, absolute, bound levels only
	waves  [][]float64 // per level, per domain node, normalised int phi^2 dx = 1
	dos    float64     // cm^-2

	eigen  mat.EigenSym
	values []float64
}

// QuantumWell confines carriers in the nodes of span. The Schrödinger problem
// is solved on span extended by the barrier penetration length on both sides.
type QuantumWell struct {
	mesh      *node.Mesh
	span      node.Range
	lo, hi    int // well nodes
	dlo, dhi  int // domain nodes
	MaxLevels int

	electron subband
	hole     subband
	overlap  float64
}

func New(mesh *node.Mesh, span node.Range, penetration float64, maxLevels int) *QuantumWell {
	lo, hi := span.Bounds(mesh.Len())
	if maxLevels <= 0 {
		panic(fmt.Sprintf("quantum: maxLevels must be positive, got %d", maxLevels))
	}
	qw := &QuantumWell{mesh: mesh, span: span, lo: lo, hi: hi, MaxLevels: maxLevels}

	qw.dlo, qw.dhi = lo, hi
	left, right := mesh.At(lo).Grid.Position, mesh.At(hi).Grid.Position
	for qw.dlo > 0 && left-mesh.At(qw.dlo-1).Grid.Position <= penetration {
		qw.dlo--
	}
	for qw.dhi < mesh.Len()-1 && mesh.At(qw.dhi+1).Grid.Position-right <= penetration {
		qw.dhi++
	}
	mesh.Each(span, func(n *node.Node) { n.Grid.Region = node.RegionQuantumWell })
	return qw
}

func (qw *QuantumWell) Range() node.Range { return qw.span }

// Contains reports whether node i is one of the well nodes.
func (qw *QuantumWell) Contains(i int) bool { return i >= qw.lo && i <= qw.hi }

func (qw *QuantumWell) ElectronTop() float64                 { return qw.electron.top }
func (qw *QuantumWell) HoleTop() float64                     { return qw.hole.top }
func (qw *QuantumWell) ElectronLevels() []float64            { return qw.electron.levels }
func (qw *QuantumWell) HoleLevels() []float64                { return qw.hole.levels }
func (qw *QuantumWell) ElectronDensityOfStates() float64     { return qw.electron.dos }
func (qw *QuantumWell) HoleDensityOfStates() float64         { return qw.hole.dos }
func (qw *QuantumWell) Overlap() float64                     { return qw.overlap }
func (qw *QuantumWell) ElectronWavefunction(l int) []float64 { return qw.electron.waves[l] }
func (qw *QuantumWell) HoleWavefunction(l int) []float64     { return qw.hole.waves[l] }

// DomainPositions returns the node positions the wavefunctions are sampled at.
func (qw *QuantumWell) DomainPositions() []float64 {
	return qw.mesh.Profile(node.Span(qw.dlo, qw.dhi), node.FlagPosition)
}

// CompQWTop sets the confinement threshold of each band from the band edges
// just outside the well.
func (qw *QuantumWell) CompQWTop() {
	qw.electron.top = qw.top(electrons)
	qw.hole.top = qw.top(holes)
}

func (qw *QuantumWell) top(c carrier) float64 {
	outer := func(i, step int) *node.Node {
		if i+step >= 0 && i+step < qw.mesh.Len() {
			return qw.mesh.At(i + step)
		}
		return qw.mesh.At(i)
	}
	l, r := outer(qw.lo, -1), outer(qw.hi, 1)
	return c.sign * math.Min(c.sign*c.band(l), c.sign*c.band(r))
}

// box returns the spacing to the previous and next point of the domain, using
// the mesh neighbours where they exist and mirroring the spacing otherwise.
func (qw *QuantumWell) box(i int) (float64, float64) {
	var hm, hp float64
	if i > 0 {
		hm = qw.mesh.Spacing(i - 1)
	}
	if i < qw.mesh.Len()-1 {
		hp = qw.mesh.Spacing(i)
	}
	if hm == 0 {
		hm = hp
	}
	if hp == 0 {
		hp = hm
	}
	return hm, hp
}

// hamiltonian assembles D^-1/2 A D^-1/2 of the BenDaniel-Duke operator with
// hard walls just outside the domain.
func (qw *QuantumWell) hamiltonian(c carrier) *mat.SymDense {
	d := qw.weights()
	size := len(d)
	h := mat.NewSymDense(size, nil)

	coupling := func(a, b *node.Node) float64 {
		return consts.HBAR2_2M0 * (1/c.mass(a) + 1/c.mass(b)) / 2
	}

	for k := 0; k < size; k++ {
		i := qw.dlo + k
		n := qw.mesh.At(i)
		hm, hp := qw.box(i)
		prev, next := n, n
		if i > 0 {
			prev = qw.mesh.At(i - 1)
		}
		if i < qw.mesh.Len()-1 {
			next = qw.mesh.At(i + 1)
		}
		cm, cp := coupling(prev, n), coupling(n, next)

		h.SetSym(k, k, (cm/hm+cp/hp)/d[k]+c.sign*c.band(n))
		if k+1 < size {
			h.SetSym(k, k+1, -cp/hp/math.Sqrt(d[k]*d[k+1]))
		}
	}
	return h
}

// weights returns the control volume of every domain node.
func (qw *QuantumWell) weights() []float64 {
	d := make([]float64, qw.dhi-qw.dlo+1)
	for k := range d {
		hm, hp := qw.box(qw.dlo + k)
		d[k] = (hm + hp) / 2
	}
	return d
}

func (qw *QuantumWell) solve(c carrier, s *subband) error {
	h := qw.hamiltonian(c)
	if ok := s.eigen.Factorize(h, true); !ok {
		return fmt.Errorf("%w: quantum well %s eigen decomposition failed", matrix.ErrSingular, qw.span)
	}
	s.values = s.eigen.Values(nil)
	s.levels = s.levels[:0]
	limit := c.sign * s.top
	for _, v := range s.values {
		if v >= limit || len(s.levels) == qw.MaxLevels {
			break
		}
		s.levels = append(s.levels, c.sign*v)
	}
	return nil
}

// CompEigenvalues solves for the bound levels of both carriers.
func (qw *QuantumWell) CompEigenvalues() error {
	var err error

	err = qw.solve(electrons, &qw.electron)
	if err != nil {
		return err
	}
	return qw.solve(holes, &qw.hole)
}

func (qw *QuantumWell) wavefunctions(s *subband) {
	d := qw.weights()
	var vectors mat.Dense
	s.eigen.VectorsTo(&vectors)

	s.waves = s.waves[:0]
	for l := range s.levels {
		phi := make([]float64, len(d))
		var norm float64
		for k := range d {
			phi[k] = vectors.At(k, l) / math.Sqrt(d[k])
			norm += phi[k] * phi[k] * d[k]
		}
		norm = math.Sqrt(norm)
		// fix the sign so the envelope is positive at its largest amplitude
		var peak float64
		for k := range phi {
			if math.Abs(phi[k]) > math.Abs(peak) {
				peak = phi[k]
			}
		}
		if peak < 0 {
			norm = -norm
		}
		for k := range phi {
			phi[k] /= norm
		}
		s.waves = append(s.waves, phi)
	}
}

// CompWavefunctions converts the eigenvectors of the last CompEigenvalues
// into envelopes normalised to int phi^2 dx = 1 (1/cm).
func (qw *QuantumWell) CompWavefunctions() {
	qw.wavefunctions(&qw.electron)
	qw.wavefunctions(&qw.hole)
}

// CompOverlap evaluates |int phi_e1 phi_h1 dx|^2 of the ground states.
func (qw *QuantumWell) CompOverlap() {
	qw.overlap = qw.OverlapOf(0, 0)
}

// OverlapOf returns the squared overlap of electron level e and hole level h,
// zero when either level is not bound.
func (qw *QuantumWell) OverlapOf(e, h int) float64 {
	if e >= len(qw.electron.waves) || h >= len(qw.hole.waves) {
		return 0
	}
	pe, ph := qw.electron.waves[e], qw.hole.waves[h]
	var sum float64
	for k, d := range qw.weights() {
		sum += pe[k] * ph[k] * d
	}
	return sum * sum
}

// compDOS sets m* kT/(pi hbar^2) averaged over the well nodes.
func (qw *QuantumWell) compDOS() {
	var me, mh, vt float64
	qw.mesh.Each(qw.span, func(n *node.Node) {
		me += n.Electron.Mass
		mh += n.Hole.Mass
		vt += n.Grid.ThermalVoltage
	})
	count := float64(qw.hi - qw.lo + 1)
	me, mh, vt = me/count, mh/count, vt/count
	qw.electron.dos = me * vt / (math.Pi * 2 * consts.HBAR2_2M0)
	qw.hole.dos = mh * vt / (math.Pi * 2 * consts.HBAR2_2M0)
}

// wellNorms returns 1/int phi^2 dx over the well nodes for every level, so that
// the weight of each bound state attached to the well integrates to one.
func (qw *QuantumWell) wellNorms(s *subband) []float64 {
	d := qw.weights()
	scale := make([]float64, len(s.waves))
	for l, phi := range s.waves {
		var sum float64
		for i := qw.lo; i <= qw.hi; i++ {
			k := i - qw.dlo
			sum += phi[k] * phi[k] * d[k]
		}
		if sum > 0 {
			scale[l] = 1 / sum
		}
	}
	return scale
}

// Update recomputes the confined states and attaches them to the well nodes.
func (qw *QuantumWell) Update() error {
	var err error

	qw.CompQWTop()
	err = qw.CompEigenvalues()
	if err != nil {
		return err
	}
	qw.CompWavefunctions()
	qw.CompOverlap()
	qw.compDOS()

	escale, hscale := qw.wellNorms(&qw.electron), qw.wellNorms(&qw.hole)
	for i := qw.lo; i <= qw.hi; i++ {
		n := qw.mesh.At(i)
		k := i - qw.dlo
		ec, ev := n.ConductionBand(), n.ValenceBand()

		eb := &node.BoundState{DOS2D: qw.electron.dos, Top: qw.electron.top - ec}
		for l, level := range qw.electron.levels {
			w := qw.electron.waves[l][k]
			eb.Levels = append(eb.Levels, node.BoundLevel{Offset: level - ec, Weight: w * w * escale[l]})
		}
		hb := &node.BoundState{DOS2D: qw.hole.dos, Top: ev - qw.hole.top}
		for l, level := range qw.hole.levels {
			w := qw.hole.waves[l][k]
			hb.Levels = append(hb.Levels, node.BoundLevel{Offset: ev - level, Weight: w * w * hscale[l]})
		}
		n.Electron.Bound = eb
		n.Hole.Bound = hb
		if qw.overlap > 0 {
			n.Grid.Confinement = qw.overlap
		}
	}
	return nil
}

// Detach removes the bound states from the well nodes.
func (qw *QuantumWell) Detach() {
	qw.mesh.Each(qw.span, func(n *node.Node) {
		n.Electron.Bound = nil
		n.Hole.Bound = nil
		n.Grid.Confinement = 1
	})
}

package optics

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/SimWindows/simwin-sub002/internal/consts"
	"github.com/SimWindows/simwin-sub002/pkg/node"
)

// Monitor receives the progress of the optical loops.
type Monitor interface {
	ModeConvergence(iteration int, err float64)
	OpticConvergence(iteration int, err float64)
}

// Cavity is a Fabry-Perot resonator along the mesh between two mirrors.
type Cavity struct {
	mesh    *node.Mesh
	span    node.Range
	lo, hi  int
	Mirrors [2]Mirror
	Mode    Mode
	Monitor Monitor

	Length         float64 // cm
	Beta           float64 // spontaneous emission factor
	Compression    float64 // gain compression (cm^3)
	BackgroundLoss float64 // cm^-1
	TargetEnergy   float64 // initial photon energy (eV), zero picks the active band gap

	weights []float64
}

func NewCavity(mesh *node.Mesh, span node.Range, left, right Mirror) (*Cavity, error) {
	if left.Side != node.Left || right.Side != node.Right {
		return nil, fmt.Errorf("optics: mirrors must be given left then right, got %s and %s", left.Side, right.Side)
	}
	lo, hi := span.Bounds(mesh.Len())
	if hi <= lo {
		return nil, fmt.Errorf("optics: cavity %s needs at least two nodes", span)
	}
	c := &Cavity{
		mesh:    mesh,
		span:    span,
		lo:      lo,
		hi:      hi,
		Mirrors: [2]Mirror{left, right},
		Length:  mesh.At(hi).Grid.Position - mesh.At(lo).Grid.Position,
		Beta:    1e-4,
	}
	c.weights = make([]float64, hi-lo+1)
	for k := range c.weights {
		i := lo + k
		if i > lo {
			c.weights[k] += mesh.Spacing(i-1) / 2
		}
		if i < hi {
			c.weights[k] += mesh.Spacing(i) / 2
		}
	}
	c.Mode.Intensity = make([]float64, len(c.weights))
	for k := range c.Mode.Intensity {
		c.Mode.Intensity[k] = 1
	}
	return c, nil
}

func (c *Cavity) Range() node.Range { return c.span }

// average returns the intensity weighted cavity average of v.
func (c *Cavity) average(v []float64) float64 {
	w := make([]float64, len(v))
	floats.MulTo(w, v, c.Mode.Intensity)
	return floats.Dot(w, c.weights) / c.Length
}

func (c *Cavity) initialEnergy() float64 {
	if c.TargetEnergy > 0 {
		return c.TargetEnergy
	}
	energy, active := math.Inf(1), math.Inf(1)
	c.mesh.Each(c.span, func(n *node.Node) {
		energy = math.Min(energy, n.Grid.BandGap)
		if n.Grid.Active {
			active = math.Min(active, n.Grid.BandGap)
		}
	})
	if !math.IsInf(active, 1) {
		return active
	}
	return energy
}

func (c *Cavity) updateIndex(energy float64) {
	c.mesh.Each(c.span, func(n *node.Node) {
		n.Grid.PhotonEnergy = energy
		n.Grid.RefractiveIndex = n.Grid.Material.RefractiveIndexAt(energy, n.Grid.Temperature)
	})
}

// opticalPath returns the cumulative optical path at every cavity node.
func (c *Cavity) opticalPath() []float64 {
	path := make([]float64, c.hi-c.lo+1)
	for i := c.lo + 1; i <= c.hi; i++ {
		a, b := c.mesh.At(i-1), c.mesh.At(i)
		path[i-c.lo] = path[i-1-c.lo] + (a.Grid.RefractiveIndex+b.Grid.RefractiveIndex)/2*c.mesh.Spacing(i-1)
	}
	return path
}

func (c *Cavity) compGroupVelocity() {
	index := make([]float64, len(c.weights))
	for k := range index {
		n := c.mesh.At(c.lo + k)
		index[k] = n.Grid.RefractiveIndex + c.Mode.PhotonEnergy*n.Grid.Material.IndexDispersion
	}
	c.Mode.GroupVelocity = consts.LIGHT / c.average(index)
}

// FieldIterate finds the resonant photon energy m hc/(2 int n dx) and the
// standing wave intensity, which is normalised to a cavity average of one.
func (c *Cavity) FieldIterate(maxIter int, tol float64) (Status, error) {
	mode := &c.Mode
	if mode.PhotonEnergy <= 0 {
		mode.PhotonEnergy = c.initialEnergy()
	}

	intensity := make([]float64, len(c.weights))
	for iter := 1; iter <= maxIter; iter++ {
		c.updateIndex(mode.PhotonEnergy)
		path := c.opticalPath()
		total := path[len(path)-1]
		if !(total > 0) {
			return IterationLimit, fmt.Errorf("optics: non-positive optical path %g", total)
		}
		if mode.Order <= 0 {
			mode.Order = max(1, int(math.Round(2*total*mode.PhotonEnergy/consts.PLANCK_LIGHT)))
		}
		energy := float64(mode.Order) * consts.PLANCK_LIGHT / (2 * total)

		for k, p := range path {
			s := math.Cos(math.Pi * float64(mode.Order) * p / total)
			intensity[k] = s * s
		}
		mean := floats.Dot(intensity, c.weights) / c.Length
		floats.Scale(1/mean, intensity)

		change := math.Abs(energy-mode.PhotonEnergy) / energy
		change = math.Max(change, floats.Distance(intensity, mode.Intensity, math.Inf(1)))
		mode.PhotonEnergy = energy
		copy(mode.Intensity, intensity)
		c.compGroupVelocity()

		if c.Monitor != nil {
			c.Monitor.ModeConvergence(iter, change)
		}
		if change < tol {
			return Converged, nil
		}
	}
	return IterationLimit, nil
}

// CompModalGain overlaps material gain and free-carrier loss with the mode.
func (c *Cavity) CompModalGain() {
	gain := make([]float64, len(c.weights))
	loss := make([]float64, len(c.weights))
	for k := range gain {
		n := c.mesh.At(c.lo + k)
		gain[k] = n.Grid.Gain
		loss[k] = n.Electron.FreeCarrier*n.Electron.TotalConc + n.Hole.FreeCarrier*n.Hole.TotalConc
	}
	c.Mode.ModalGain = c.average(gain)
	c.Mode.InternalLoss = c.BackgroundLoss + c.average(loss)
}

// CompSpontaneous integrates band-to-band recombination over the cavity.
func (c *Cavity) CompSpontaneous() {
	rate := make([]float64, len(c.weights))
	for k := range rate {
		rate[k] = c.mesh.At(c.lo + k).Grid.B2BRecomb
	}
	c.Mode.Spontaneous = math.Max(floats.Dot(rate, c.weights), 0)
}

// MirrorLoss returns the summed loss of both mirrors.
func (c *Cavity) MirrorLoss() float64 {
	return c.Mirrors[node.Left].Loss(c.Length) + c.Mirrors[node.Right].Loss(c.Length)
}

// TotalLoss returns internal plus mirror loss.
func (c *Cavity) TotalLoss() float64 {
	return c.Mode.InternalLoss + c.MirrorLoss()
}

// PhotonIterate solves v(g/(1+eS/L) - a)S + beta Rsp = 0 for the photon number
// by Newton steps safeguarded with a bisection bracket.
func (c *Cavity) PhotonIterate(maxIter int, tol float64) (Status, error) {
	c.CompModalGain()
	c.CompSpontaneous()

	mode := &c.Mode
	g, alpha := mode.ModalGain, c.TotalLoss()
	v := mode.GroupVelocity
	if !(v > 0) {
		return IterationLimit, fmt.Errorf("optics: group velocity %g, run FieldIterate first", v)
	}
	comp := c.Compression / c.Length
	rsp := c.Beta * mode.Spontaneous

	// without loss, compressed absorption saturates at v g/comp
	saturated := alpha <= 0 && comp > 0 && rsp+v*g/comp >= 0
	if (alpha <= 0 || comp <= 0) && g >= alpha || saturated {
		if math.IsNaN(mode.PhotonNumber) || math.IsInf(mode.PhotonNumber, 0) || mode.PhotonNumber < 0 {
			mode.PhotonNumber = 0
		}
		return Degenerate, nil
	}
	if rsp <= 0 && g <= alpha {
		mode.PhotonNumber = 0
		return Converged, nil
	}

	f := func(s float64) float64 { return v*(g/(1+comp*s)-alpha)*s + rsp }
	df := func(s float64) float64 {
		d := 1 + comp*s
		return v * (g/(d*d) - alpha)
	}

	lo, hi := 0.0, math.Max(mode.PhotonNumber, 1)
	for f(hi) > 0 {
		lo = hi
		hi *= 2
	}
	s := mode.PhotonNumber
	if !(s > lo && s < hi) {
		s = (lo + hi) / 2
	}

	for iter := 1; iter <= maxIter; iter++ {
		fs := f(s)
		if fs > 0 {
			lo = s
		} else {
			hi = s
		}
		// s - f/df, arranged to avoid cancellation when the root is tiny
		d := 1 + comp*s
		next := (v*g*comp*s*s/(d*d) + rsp) / -df(s)
		if !(next >= lo && next <= hi) {
			next = (lo + hi) / 2
		}
		change := math.Abs(next-s) / next
		s = next
		mode.PhotonNumber = s

		if c.Monitor != nil {
			c.Monitor.OpticConvergence(iter, change)
		}
		if change < tol {
			return Converged, nil
		}
	}
	return IterationLimit, nil
}

// UpdateNodes pushes the mode into the nodes for stimulated recombination and heat.
func (c *Cavity) UpdateNodes() {
	mode := &c.Mode
	c.mesh.Each(node.All(), func(n *node.Node) {
		g := &n.Grid
		if n.Index < c.lo || n.Index > c.hi {
			g.ModeIntensity = 0
			g.PhotonDensity = 0
			return
		}
		k := n.Index - c.lo
		g.ModeIntensity = mode.Intensity[k]
		g.PhotonDensity = mode.PhotonNumber * mode.Intensity[k] / c.Length
		g.PhotonEnergy = mode.PhotonEnergy
		g.GroupVelocity = mode.GroupVelocity
	})
}

// LoadIntensity takes the intensity profile back from the nodes after a state restore.
func (c *Cavity) LoadIntensity() {
	for k := range c.Mode.Intensity {
		c.Mode.Intensity[k] = c.mesh.At(c.lo + k).Grid.ModeIntensity
	}
}

// EmittedPower returns the power per unit area through the mirror on side.
func (c *Cavity) EmittedPower(side node.Side) float64 {
	if side != node.Left && side != node.Right {
		panic(fmt.Sprintf("optics: invalid side %d", int(side)))
	}
	m := &c.Mode
	return c.Mirrors[side].EmittedPower(m.PhotonEnergy, m.GroupVelocity, c.Length, m.PhotonNumber)
}

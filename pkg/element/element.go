package element

import (
	"fmt"
	"math"

	"github.com/SimWindows/simwin-sub002/internal/consts"
	"github.com/SimWindows/simwin-sub002/pkg/node"
	"github.com/SimWindows/simwin-sub002/pkg/physics"
)

// Stencil holds the partial derivatives of an edge flux with respect to the
// unknowns (potential, electron Planck, hole Planck) of both endpoints.
type Stencil struct {
	Left  [node.NumVars]float64
	Right [node.NumVars]float64
}

// Element couples node Left to node Left+1. It reads node state and produces
// currents and stencils; it never writes into the nodes.
type Element struct {
	mesh  *node.Mesh
	Left  int
	Right int

	Length float64 // cm

	ElecThermEmis bool
	HoleThermEmis bool

	ElectronCoeff float64 // q mu Vt / h (A/cm^2 per cm^-3)
	HoleCoeff     float64
	ElectronDelta float64
	HoleDelta     float64

	ElectronVelocity  float64 // Richardson velocity (cm/s)
	HoleVelocity      float64
	ElectronTunneling float64 // thermionic enhancement from WKB tunnelling
	HoleTunneling     float64

	ThermalCoeff float64 // kappa/h (W/(cm^2 K))

	ElectronCurrent float64 // A/cm^2
	HoleCurrent     float64
	HeatFlux        float64 // W/cm^2, positive towards Right

	ElectronStencil Stencil
	HoleStencil     Stencil
	ThermalStencil  [2]float64 // dHeatFlux/dT of Left and Right
}

func New(mesh *node.Mesh, left int) Element {
	if left < 0 || left+1 >= mesh.Len() {
		panic(fmt.Sprintf("element: left index %d out of range for %d nodes", left, mesh.Len()))
	}
	return Element{
		mesh:              mesh,
		Left:              left,
		Right:             left + 1,
		Length:            mesh.Spacing(left),
		ElectronTunneling: 1,
		HoleTunneling:     1,
	}
}

// Build returns the elements between every pair of adjacent nodes.
func Build(mesh *node.Mesh) []Element {
	if mesh.Len() < 2 {
		return nil
	}
	elements := make([]Element, mesh.Len()-1)
	for i := range elements {
		elements[i] = New(mesh, i)
	}
	return elements
}

func (e *Element) nodes() (*node.Node, *node.Node) {
	return e.mesh.At(e.Left), e.mesh.At(e.Right)
}

// CompThermEmisFlags marks the element for thermionic emission where the
// material band offsets exceed threshold (eV).
func (e *Element) CompThermEmisFlags(threshold float64) {
	l, r := e.nodes()
	dEc := math.Abs(r.Grid.Affinity - l.Grid.Affinity)
	dEv := math.Abs((r.Grid.Affinity + r.Grid.BandGap) - (l.Grid.Affinity + l.Grid.BandGap))
	e.ElecThermEmis = dEc > threshold
	e.HoleThermEmis = dEv > threshold
}

func (e *Element) thermalVoltage() float64 {
	l, r := e.nodes()
	return (l.Grid.ThermalVoltage + r.Grid.ThermalVoltage) / 2
}

// sgFlux evaluates K[c2 B(d) - c1 B(-d)] and its derivative weights.
// a2 and a1 multiply dlnc/dvar of each endpoint, g multiplies d(delta)/d(planck).
func sgFlux(k, c1, c2, delta float64) (flux, a1, a2, g float64) {
	b, bm := physics.Bernoulli(delta), physics.Bernoulli(-delta)
	g = c2*physics.DerivBernoulli(delta) + c1*physics.DerivBernoulli(-delta)
	flux = k * (c2*b - c1*bm)
	a2 = k * (b*c2 + g)
	a1 = k * (-bm*c1 - g)
	return flux, a1, a2, k * g
}

func dlog(conc, deriv float64) float64 {
	if conc <= 0 {
		return 0
	}
	return deriv / conc
}

// CompCondDriftDiffParam evaluates the Scharfetter-Gummel electron current.
// The band term is recovered from the concentrations so that the flux vanishes
// at equilibrium for any statistics.
func (e *Element) CompCondDriftDiffParam() {
	l, r := e.nodes()
	vt := e.thermalVoltage()
	mu := (l.Electron.Mobility + r.Electron.Mobility) / 2
	e.ElectronCoeff = consts.CHARGE * mu * vt / e.Length
	e.ElectronDelta = r.Electron.LogConc - l.Electron.LogConc - (r.Electron.Planck-l.Electron.Planck)/vt

	j, a1, a2, kg := sgFlux(e.ElectronCoeff, l.Electron.TotalConc, r.Electron.TotalConc, e.ElectronDelta)
	e.ElectronCurrent = j

	dl := dlog(l.Electron.TotalConc, l.Electron.DerivConc)
	dr := dlog(r.Electron.TotalConc, r.Electron.DerivConc)
	dlp := dlog(l.Electron.TotalConc, l.Electron.DerivConcPlanck)
	drp := dlog(r.Electron.TotalConc, r.Electron.DerivConcPlanck)

	s := &e.ElectronStencil
	*s = Stencil{}
	s.Left[node.VarPotential] = a1 * dl
	s.Right[node.VarPotential] = a2 * dr
	s.Left[node.VarElectron] = a1*dlp + kg/vt
	s.Right[node.VarElectron] = a2*drp - kg/vt
}

// CompValDriftDiffParam evaluates the Scharfetter-Gummel hole current.
func (e *Element) CompValDriftDiffParam() {
	l, r := e.nodes()
	vt := e.thermalVoltage()
	mu := (l.Hole.Mobility + r.Hole.Mobility) / 2
	e.HoleCoeff = consts.CHARGE * mu * vt / e.Length
	e.HoleDelta = r.Hole.LogConc - l.Hole.LogConc + (r.Hole.Planck-l.Hole.Planck)/vt

	j, a1, a2, kg := sgFlux(e.HoleCoeff, l.Hole.TotalConc, r.Hole.TotalConc, e.HoleDelta)
	e.HoleCurrent = -j

	dl := dlog(l.Hole.TotalConc, l.Hole.DerivConc)
	dr := dlog(r.Hole.TotalConc, r.Hole.DerivConc)
	dlp := dlog(l.Hole.TotalConc, l.Hole.DerivConcPlanck)
	drp := dlog(r.Hole.TotalConc, r.Hole.DerivConcPlanck)

	s := &e.HoleStencil
	*s = Stencil{}
	s.Left[node.VarPotential] = -a1 * dl
	s.Right[node.VarPotential] = -a2 * dr
	s.Left[node.VarHole] = -(a1*dlp - kg/vt)
	s.Right[node.VarHole] = -(a2*drp + kg/vt)
}

// CompCondThermEmisParam evaluates the thermionic emission electron current
// over the band discontinuity, enhanced by tunnelling through the barrier.
func (e *Element) CompCondThermEmisParam() {
	l, r := e.nodes()
	vt := e.thermalVoltage()
	e.CompConductionRichardson()
	a := consts.CHARGE * e.ElectronVelocity * e.ElectronTunneling
	delta := (r.Electron.Planck - l.Electron.Planck) / vt

	s := &e.ElectronStencil
	*s = Stencil{}
	if r.ConductionBand() >= l.ConductionBand() {
		// barrier on the right
		n := r.Electron.TotalConc
		x := math.Exp(-delta)
		e.ElectronCurrent = a * n * (1 - x)
		s.Right[node.VarPotential] = a * (1 - x) * r.Electron.DerivConc
		s.Right[node.VarElectron] = a * ((1-x)*r.Electron.DerivConcPlanck + n*x/vt)
		s.Left[node.VarElectron] = -a * n * x / vt
		return
	}
	n := l.Electron.TotalConc
	x := math.Exp(delta)
	e.ElectronCurrent = a * n * (x - 1)
	s.Left[node.VarPotential] = a * (x - 1) * l.Electron.DerivConc
	s.Left[node.VarElectron] = a * ((x-1)*l.Electron.DerivConcPlanck - n*x/vt)
	s.Right[node.VarElectron] = a * n * x / vt
}

// CompValThermEmisParam is the hole counterpart; the hole barrier is the side
// with the lower valence band.
func (e *Element) CompValThermEmisParam() {
	l, r := e.nodes()
	vt := e.thermalVoltage()
	e.CompValenceRichardson()
	a := consts.CHARGE * e.HoleVelocity * e.HoleTunneling
	delta := (r.Hole.Planck - l.Hole.Planck) / vt

	s := &e.HoleStencil
	*s = Stencil{}
	if r.ValenceBand() <= l.ValenceBand() {
		p := r.Hole.TotalConc
		x := math.Exp(delta)
		e.HoleCurrent = a * p * (x - 1)
		s.Right[node.VarPotential] = a * (x - 1) * r.Hole.DerivConc
		s.Right[node.VarHole] = a * ((x-1)*r.Hole.DerivConcPlanck + p*x/vt)
		s.Left[node.VarHole] = -a * p * x / vt
		return
	}
	p := l.Hole.TotalConc
	x := math.Exp(-delta)
	e.HoleCurrent = a * p * (1 - x)
	s.Left[node.VarPotential] = a * (1 - x) * l.Hole.DerivConc
	s.Left[node.VarHole] = a * ((1-x)*l.Hole.DerivConcPlanck - p*x/vt)
	s.Right[node.VarHole] = a * p * x / vt
}

// CompElectrical refreshes both carrier currents with the model selected by the flags.
func (e *Element) CompElectrical() {
	if e.ElecThermEmis {
		e.CompCondThermEmisParam()
	} else {
		e.CompCondDriftDiffParam()
	}
	if e.HoleThermEmis {
		e.CompValThermEmisParam()
	} else {
		e.CompValDriftDiffParam()
	}
}

// CompThermalParam evaluates the conductance of the element and its temperature derivatives.
func (e *Element) CompThermalParam() {
	l, r := e.nodes()
	kappa := (l.Grid.ThermalConductivity + r.Grid.ThermalConductivity) / 2
	e.ThermalCoeff = kappa / e.Length
}

// CompHeatFlux evaluates -kappa dT/dx and its stencil.
func (e *Element) CompHeatFlux() {
	l, r := e.nodes()
	dT := r.Grid.Temperature - l.Grid.Temperature
	e.HeatFlux = -e.ThermalCoeff * dT
	e.ThermalStencil[0] = e.ThermalCoeff - dT*l.Grid.DerivThermalConductivity/(2*e.Length)
	e.ThermalStencil[1] = -e.ThermalCoeff - dT*r.Grid.DerivThermalConductivity/(2*e.Length)
}

// JouleHeat returns J.grad(Ef) over the element in W/cm^3.
func (e *Element) JouleHeat() float64 {
	l, r := e.nodes()
	dn := (r.Electron.Planck - l.Electron.Planck) / e.Length
	dp := (r.Hole.Planck - l.Hole.Planck) / e.Length
	return e.ElectronCurrent*dn + e.HoleCurrent*dp
}

func (e *Element) TotalCurrent() float64 {
	return e.ElectronCurrent + e.HoleCurrent
}

// Update recomputes currents and heat flux.
func (e *Element) Update() {
	e.CompElectrical()
	e.CompThermalParam()
	e.CompHeatFlux()
}

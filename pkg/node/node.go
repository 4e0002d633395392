package node

import (
	"fmt"
	"math"

	"github.com/SimWindows/simwin-sub002/internal/consts"
	"github.com/SimWindows/simwin-sub002/pkg/material"
	"github.com/SimWindows/simwin-sub002/pkg/physics"
)

// Node is the full physical state of one mesh point.
type Node struct {
	Index    int
	Electron Electron
	Hole     Hole
	Grid     Grid

	// d(TotalCharge) and d(TotalRecomb) with respect to (potential, electron Planck, hole Planck)
	ChargeDeriv [3]float64
	RecombDeriv [3]float64
	// dGain/dn, dGain/dp
	GainDeriv [2]float64
}

const (
	VarPotential = iota
	VarElectron
	VarHole
	NumVars
)

func New(index int, position float64, mat *material.Material, region Region) Node {
	if mat == nil {
		panic(fmt.Sprintf("node %d: nil material", index))
	}
	n := Node{Index: index}
	n.Grid.Position = position
	n.Grid.Material = mat
	n.Grid.Region = region
	n.Grid.Temperature = consts.REFTEMP
	n.Grid.Confinement = 1
	n.Electron.DopingDegeneracy = 2
	n.Hole.DopingDegeneracy = 4
	return n
}

// SetDoping sets donor and acceptor concentrations. With incomplete ionization the
// material's dopant levels apply, otherwise dopants are fully ionized.
func (n *Node) SetDoping(donor, acceptor float64, incomplete bool) {
	m := n.Grid.Material
	n.Electron.Doping = donor
	n.Hole.Doping = acceptor
	n.Electron.DopingLevel = 0
	n.Hole.DopingLevel = 0
	if incomplete {
		n.Electron.DopingLevel = m.DonorLevel
		n.Electron.DopingDegeneracy = m.DonorDegeneracy
		n.Hole.DopingLevel = m.AcceptorLevel
		n.Hole.DopingDegeneracy = m.AcceptorDegeneracy
	}
}

func (n *Node) SetStatistics(stats physics.Statistics) {
	n.Electron.Statistics = stats
	n.Hole.Statistics = stats
}

// CompIndependentParam refreshes everything that depends only on material and temperature.
func (n *Node) CompIndependentParam() {
	g := &n.Grid
	m := g.Material
	t := g.Temperature

	g.ThermalVoltage = physics.ThermalVoltage(t)
	g.BandGap = m.BandGapAt(t)
	g.Affinity = m.AffinityAt(t)
	g.Permittivity = m.PermittivityAt(t)
	g.Radiative = m.RadiativeAt(t)
	g.ThermalConductivity, g.DerivThermalConductivity = m.ThermalConductivityAt(t)

	energy := g.PhotonEnergy
	if energy <= 0 {
		energy = g.BandGap
	}
	g.RefractiveIndex = m.RefractiveIndexAt(energy, t)

	doping := n.Electron.Doping + n.Hole.Doping
	e, h := &n.Electron.Carrier, &n.Hole.Carrier
	e.thermal, h.thermal = g.ThermalVoltage, g.ThermalVoltage

	e.Mass = m.ElectronMassAt(t)
	e.DOS = m.ElectronDOS(t)
	e.Mobility = m.ElectronMobilityAt(doping, t)
	e.Lifetime = m.ElectronLifetimeAt(t)
	e.Auger = m.ElectronAuger
	e.FreeCarrier = m.ElectronFreeCarrier

	h.Mass = m.HoleMassAt(t)
	h.DOS = m.HoleDOS(t)
	h.Mobility = m.HoleMobilityAt(doping, t)
	h.Lifetime = m.HoleLifetimeAt(t)
	h.Auger = m.HoleAuger
	h.FreeCarrier = m.HoleFreeCarrier

	g.IntrinsicConc = math.Sqrt(e.DOS*h.DOS) * math.Exp(-g.BandGap/(2*g.ThermalVoltage))
	trap := m.TrapLevel / g.ThermalVoltage
	g.TrapElectron = g.IntrinsicConc * math.Exp(trap)
	g.TrapHole = g.IntrinsicConc * math.Exp(-trap)
}

// CompConc recomputes band edges and free/bound concentrations from the potentials.
func (n *Node) CompConc() {
	g := &n.Grid
	n.Electron.compConc(n.Electron.compBand(g.Potential, g.Affinity))
	n.Hole.compConc(n.Hole.compBand(g.Potential, g.Affinity, g.BandGap))
}

func (n *Node) CompIonizedDoping() {
	n.Electron.compIonizedDoping()
	n.Hole.compIonizedDoping()
}

// CompCharge enforces total = p - n + Nd+ - Na-.
func (n *Node) CompCharge() {
	n.Grid.TotalCharge = n.Hole.TotalConc - n.Electron.TotalConc + n.Electron.IonizedDoping - n.Hole.IonizedDoping
}

// CompDerivConc computes doping derivatives before carrier derivatives; the charge
// derivative is assembled from both.
func (n *Node) CompDerivConc() {
	n.Electron.compDerivIonizedDoping(1)
	n.Hole.compDerivIonizedDoping(-1)
	n.Electron.compDerivConc(1)
	n.Hole.compDerivConc(-1)

	e, h := &n.Electron, &n.Hole
	n.ChargeDeriv[VarPotential] = h.DerivConc - e.DerivConc + e.DerivIonizedDoping - h.DerivIonizedDoping
	n.ChargeDeriv[VarElectron] = -e.DerivConcPlanck + e.DerivIonizedDopingPlanck
	n.ChargeDeriv[VarHole] = h.DerivConcPlanck - h.DerivIonizedDopingPlanck
}

// CompField applies Gauss's law from start, whose field is fixed, given the
// charge per unit area accumulated between start and this node (cm^-2).
func (n *Node) CompField(start *Node, accumulatedCharge float64) {
	if start == n {
		return
	}
	flux := start.Grid.Permittivity*start.Grid.Field + consts.CHARGE*accumulatedCharge
	n.Grid.Field = flux / n.Grid.Permittivity
}

// CompNeutralPotential sets the potential that makes this node charge neutral at
// its current quasi-Fermi levels and returns it.
func (n *Node) CompNeutralPotential() float64 {
	g := &n.Grid
	ef := (n.Electron.Planck + n.Hole.Planck) / 2
	lo := -g.Affinity - ef - g.BandGap - 2
	hi := -g.Affinity - ef + 2

	for range 200 {
		mid := (lo + hi) / 2
		g.Potential = mid
		n.CompConc()
		n.CompIonizedDoping()
		n.CompCharge()
		if g.TotalCharge > 0 {
			lo = mid
		} else {
			hi = mid
		}
		if hi-lo < 1e-14 {
			break
		}
	}

	g.Potential = (lo + hi) / 2
	n.CompConc()
	n.CompIonizedDoping()
	n.CompCharge()
	return g.Potential
}

// CompDependentParam runs the full local pipeline after the unknowns changed.
func (n *Node) CompDependentParam() {
	n.CompConc()
	n.CompIonizedDoping()
	n.CompCharge()
	n.CompDerivConc()
	n.CompGain()
	n.CompDerivGain()
	n.CompTotalRecombination()
	n.CompDerivRecomb()
}

// ConductionBand returns Ec in eV.
func (n *Node) ConductionBand() float64 { return n.Electron.BandEdge }

// ValenceBand returns Ev in eV.
func (n *Node) ValenceBand() float64 { return n.Hole.BandEdge }

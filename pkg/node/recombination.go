package node

import (
	"math"

	"github.com/SimWindows/simwin-sub002/internal/consts"
)

// equilibriumProduct returns n*p*exp(-(Efn-Efp)/Vt) evaluated in log space.
func (n *Node) equilibriumProduct() float64 {
	df := (n.Electron.Planck - n.Hole.Planck) / n.Grid.ThermalVoltage
	return math.Exp(n.Electron.LogConc + n.Hole.LogConc - df)
}

// excessProduct returns n*p*(1 - exp(-(Efn-Efp)/Vt)), zero at equilibrium for any statistics.
func (n *Node) excessProduct() float64 {
	return n.Electron.TotalConc*n.Hole.TotalConc - n.equilibriumProduct()
}

func (n *Node) CompSRHRecombination() {
	g := &n.Grid
	e, h := &n.Electron, &n.Hole
	if e.Lifetime <= 0 || h.Lifetime <= 0 {
		g.SRHRecomb = 0
		return
	}
	denom := h.Lifetime*(e.TotalConc+g.TrapElectron) + e.Lifetime*(h.TotalConc+g.TrapHole)
	g.SRHRecomb = n.excessProduct() / denom
}

func (n *Node) CompB2BRecombination() {
	g := &n.Grid
	g.B2BRecomb = g.Radiative * g.Confinement * n.excessProduct()
}

func (n *Node) CompAugerRecombination() {
	e, h := &n.Electron, &n.Hole
	n.Grid.AugerRecomb = (e.Auger*e.TotalConc + h.Auger*h.TotalConc) * n.excessProduct()
}

func (n *Node) CompStimRecombination() {
	g := &n.Grid
	g.StimRecomb = g.GroupVelocity * g.Gain * g.PhotonDensity
}

// CompTotalRecombination sums all mechanisms net of optical generation.
func (n *Node) CompTotalRecombination() {
	n.CompSRHRecombination()
	n.CompB2BRecombination()
	n.CompAugerRecombination()
	n.CompStimRecombination()
	g := &n.Grid
	g.TotalRecomb = g.SRHRecomb + g.B2BRecomb + g.AugerRecomb + g.StimRecomb - g.OpticalGeneration
}

func logDeriv(c *Carrier, d, sign float64) float64 {
	if c.TotalConc > 0 {
		return d / c.TotalConc
	}
	return sign / c.thermal
}

// CompDerivRecomb differentiates TotalRecomb with respect to the three unknowns.
// CompDerivConc and CompDerivGain must have run.
func (n *Node) CompDerivRecomb() {
	g := &n.Grid
	e, h := &n.Electron, &n.Hole
	vt := g.ThermalVoltage

	dn := [NumVars]float64{e.DerivConc, e.DerivConcPlanck, 0}
	dp := [NumVars]float64{h.DerivConc, 0, h.DerivConcPlanck}
	ddf := [NumVars]float64{0, 1 / vt, -1 / vt}
	dlogn := [NumVars]float64{logDeriv(&e.Carrier, e.DerivConc, 1), logDeriv(&e.Carrier, e.DerivConcPlanck, 1), 0}
	dlogp := [NumVars]float64{logDeriv(&h.Carrier, h.DerivConc, -1), 0, logDeriv(&h.Carrier, h.DerivConcPlanck, -1)}

	excess := n.excessProduct()
	eq := n.equilibriumProduct()
	srhOn := e.Lifetime > 0 && h.Lifetime > 0
	denom := h.Lifetime*(e.TotalConc+g.TrapElectron) + e.Lifetime*(h.TotalConc+g.TrapHole)
	auger := e.Auger*e.TotalConc + h.Auger*h.TotalConc

	for v := range NumVars {
		dexcess := h.TotalConc*dn[v] + e.TotalConc*dp[v] - eq*(dlogn[v]+dlogp[v]-ddf[v])

		var d float64
		if srhOn {
			ddenom := h.Lifetime*dn[v] + e.Lifetime*dp[v]
			d += (dexcess - g.SRHRecomb*ddenom) / denom
		}
		d += g.Radiative * g.Confinement * dexcess
		d += (e.Auger*dn[v]+h.Auger*dp[v])*excess + auger*dexcess
		d += g.GroupVelocity * g.PhotonDensity * (n.GainDeriv[0]*dn[v] + n.GainDeriv[1]*dp[v])
		n.RecombDeriv[v] = d
	}
}

// CompGain evaluates the logarithmic material gain scaled by the bound-state overlap.
func (n *Node) CompGain() {
	g := &n.Grid
	m := g.Material
	g0 := m.GainAt(g.Temperature)
	if !g.Active || g0 == 0 {
		g.Gain = 0
		return
	}
	ns := m.GainCompressionConc
	root := math.Sqrt(n.Electron.TotalConc * n.Hole.TotalConc)
	g.Gain = g0 * g.Confinement * math.Log((root+ns)/(m.TransparencyConc+ns))
}

func (n *Node) CompDerivGain() {
	g := &n.Grid
	m := g.Material
	g0 := m.GainAt(g.Temperature)
	n.GainDeriv = [2]float64{}
	if !g.Active || g0 == 0 {
		return
	}
	ne, nh := n.Electron.TotalConc, n.Hole.TotalConc
	root := math.Sqrt(ne * nh)
	common := g0 * g.Confinement / (root + m.GainCompressionConc)
	if ne > 0 {
		n.GainDeriv[0] = common * root / (2 * ne)
	}
	if nh > 0 {
		n.GainDeriv[1] = common * root / (2 * nh)
	}
}

// CompStimHeat is the free-carrier absorption of mode photons.
func (n *Node) CompStimHeat() {
	g := &n.Grid
	alpha := n.Electron.FreeCarrier*n.Electron.TotalConc + n.Hole.FreeCarrier*n.Hole.TotalConc
	g.StimHeat = consts.CHARGE * g.PhotonEnergy * g.GroupVelocity * alpha * g.PhotonDensity
}

// CompHeat sums Joule, recombination, optical and stimulated heat. JouleHeat is
// supplied by the adjacent elements.
func (n *Node) CompHeat() {
	g := &n.Grid
	split := n.Electron.Planck - n.Hole.Planck
	g.RecombHeat = consts.CHARGE * (g.SRHRecomb + g.AugerRecomb) * split

	g.OpticalHeat = 0
	if g.IncidentEnergy > g.BandGap {
		g.OpticalHeat = consts.CHARGE * g.OpticalGeneration * (g.IncidentEnergy - g.BandGap)
	}
	n.CompStimHeat()
	g.TotalHeat = g.JouleHeat + g.RecombHeat + g.OpticalHeat + g.StimHeat
}

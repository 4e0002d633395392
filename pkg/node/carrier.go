package node

import (
	"math"

	"github.com/SimWindows/simwin-sub002/pkg/physics"
)

// BoundLevel is one confined level as seen from a single node.
type BoundLevel struct {
	Offset float64 // level energy measured from the local band edge into the band (eV)
	Weight float64 // |phi|^2 at this node (1/cm)
}

// BoundState is attached to nodes inside a quantum well.
type BoundState struct {
	DOS2D  float64 // m* kT/(pi hbar^2) (cm^-2)
	Top    float64 // top of the well measured from the local band edge (eV)
	Levels []BoundLevel
}

type Carrier struct {
	Planck      float64 // quasi-Fermi level (eV)
	BandEdge    float64 // eV
	Mass        float64 // m*/m0
	DOS         float64 // cm^-3
	Mobility    float64 // cm^2/Vs
	Lifetime    float64 // s
	Auger       float64 // cm^6/s
	FreeCarrier float64 // free carrier absorption cross section (cm^2)
	Statistics  physics.Statistics

	Eta             float64
	FreeConc        float64
	BoundConc       float64
	TotalConc       float64
	LogConc         float64
	DerivConc       float64 // d(TotalConc)/d(potential)
	DerivConcPlanck float64 // d(TotalConc)/d(Planck)

	Doping                   float64 // cm^-3
	DopingLevel              float64 // ionization energy (eV), 0 for complete ionization
	DopingDegeneracy         float64
	IonizedDoping            float64
	DerivIonizedDoping       float64
	DerivIonizedDopingPlanck float64

	Bound *BoundState

	thermal float64
}

func (c *Carrier) compConc(eta float64) {
	c.Eta = eta
	c.BoundConc = 0
	if c.Bound == nil {
		c.FreeConc = c.DOS * physics.Fermi(eta, c.Statistics)
		c.TotalConc = c.FreeConc
		c.LogConc = math.Log(c.DOS) + physics.LogFermi(eta, c.Statistics)
		return
	}

	c.FreeConc = c.freeAboveTop(eta)
	for _, l := range c.Bound.Levels {
		c.BoundConc += c.Bound.DOS2D * physics.FermiIntegral(physics.OrderZero, eta-l.Offset/c.thermal) * l.Weight
	}
	c.TotalConc = c.FreeConc + c.BoundConc
	if c.TotalConc > 0 {
		c.LogConc = math.Log(c.TotalConc)
	} else {
		c.LogConc = math.Log(c.DOS) + physics.LogFermi(eta, c.Statistics)
	}
}

func (c *Carrier) freeAboveTop(eta float64) float64 {
	top := math.Max(c.Bound.Top, 0) / c.thermal
	switch c.Statistics {
	case physics.Boltzmann:
		return c.DOS * math.Exp(eta) * physics.IncompGammaComp(1.5, top)
	default:
		return c.DOS * physics.Fermi(eta-top, c.Statistics)
	}
}

func (c *Carrier) derivFreeAboveTop(eta float64) float64 {
	top := math.Max(c.Bound.Top, 0) / c.thermal
	switch c.Statistics {
	case physics.Boltzmann:
		return c.DOS * math.Exp(eta) * physics.IncompGammaComp(1.5, top)
	default:
		return c.DOS * physics.DerivFermi(eta-top, c.Statistics)
	}
}

// compDerivConc fills the concentration derivatives; sign is d(eta)/d(potential)*vt.
func (c *Carrier) compDerivConc(sign float64) {
	var deta float64
	if c.Bound == nil {
		deta = c.DOS * physics.DerivFermi(c.Eta, c.Statistics)
	} else {
		deta = c.derivFreeAboveTop(c.Eta)
		for _, l := range c.Bound.Levels {
			deta += c.Bound.DOS2D * physics.FermiIntegral(physics.OrderMinusOne, c.Eta-l.Offset/c.thermal) * l.Weight
		}
	}
	c.DerivConc = sign * deta / c.thermal
	c.DerivConcPlanck = c.DerivConc
}

func (c *Carrier) compIonizedDoping() {
	if c.Doping == 0 || c.DopingLevel == 0 {
		c.IonizedDoping = c.Doping
		return
	}
	z := c.ionizationArg()
	c.IonizedDoping = c.Doping * logistic(-z)
}

func (c *Carrier) compDerivIonizedDoping(sign float64) {
	if c.Doping == 0 || c.DopingLevel == 0 {
		c.DerivIonizedDoping = 0
		c.DerivIonizedDopingPlanck = 0
		return
	}
	z := c.ionizationArg()
	d := -c.Doping * logistic(z) * logistic(-z)
	c.DerivIonizedDoping = sign * d / c.thermal
	c.DerivIonizedDopingPlanck = c.DerivIonizedDoping
}

func (c *Carrier) ionizationArg() float64 {
	return c.Eta + c.DopingLevel/c.thermal + math.Log(c.DopingDegeneracy)
}

func logistic(x float64) float64 {
	if x < 0 {
		e := math.Exp(x)
		return e / (1 + e)
	}
	return 1 / (1 + math.Exp(-x))
}

type Electron struct {
	Carrier
}

// compBand sets Ec = -(psi + chi) and returns eta = (Efn - Ec)/Vt.
func (e *Electron) compBand(potential, affinity float64) float64 {
	e.BandEdge = -(potential + affinity)
	return (e.Planck - e.BandEdge) / e.thermal
}

type Hole struct {
	Carrier
}

// compBand sets Ev = Ec - Eg and returns eta = (Ev - Efp)/Vt.
func (h *Hole) compBand(potential, affinity, bandGap float64) float64 {
	h.BandEdge = -(potential + affinity + bandGap)
	return (h.BandEdge - h.Planck) / h.thermal
}

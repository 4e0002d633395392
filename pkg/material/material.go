package material

import (
	"fmt"
	"math"

	"github.com/SimWindows/simwin-sub002/internal/consts"
	"github.com/SimWindows/simwin-sub002/pkg/formula"
)

// Param names a material parameter that can be overridden by an expression
// of the composition "x" and the temperature "t".
type Param int

const (
	ParamBandGap Param = iota
	ParamAffinity
	ParamPermittivity
	ParamElectronMass
	ParamHoleMass
	ParamElectronMobility
	ParamHoleMobility
	ParamElectronLifetime
	ParamHoleLifetime
	ParamRadiative
	ParamThermalConductivity
	ParamRefractiveIndex
	ParamGain
	numParams
)

var paramNames = [numParams]string{
	"band_gap", "affinity", "permittivity", "electron_mass", "hole_mass",
	"electron_mobility", "hole_mobility", "electron_lifetime", "hole_lifetime",
	"radiative", "thermal_conductivity", "refractive_index", "gain",
}

func (p Param) String() string {
	if p < 0 || p >= numParams {
		return fmt.Sprintf("Param(%d)", int(p))
	}
	return paramNames[p]
}

func ParseParam(name string) (Param, error) {
	for i, n := range paramNames {
		if n == name {
			return Param(i), nil
		}
	}
	return 0, fmt.Errorf("material: unknown parameter %q", name)
}

// FreeVars are the variables an override expression may reference.
var FreeVars = []string{"x", "t"}

type Material struct {
	Name        string
	Composition float64

	BandGap      float64 // eV at 300 K
	VarshniAlpha float64 // eV/K
	VarshniBeta  float64 // K
	Affinity     float64 // eV at 300 K
	Permittivity float64 // relative

	ElectronMass float64 // density of states mass / m0
	HoleMass     float64

	ElectronMobility    float64 // cm^2/Vs, undoped
	HoleMobility        float64
	ElectronMobilityMin float64
	HoleMobilityMin     float64
	MobilityRefDoping   float64 // cm^-3
	MobilityAlpha       float64
	MobilityTempExp     float64

	ElectronLifetime float64 // s
	HoleLifetime     float64
	TrapLevel        float64 // eV above midgap
	Radiative        float64 // cm^3/s
	ElectronAuger    float64 // cm^6/s
	HoleAuger        float64

	DonorLevel         float64 // eV below Ec
	AcceptorLevel      float64 // eV above Ev
	DonorDegeneracy    float64
	AcceptorDegeneracy float64

	ThermalConductivity float64 // W/(cm K) at 300 K
	ThermalCondExp      float64

	RefractiveIndex     float64
	IndexDispersion     float64 // 1/eV
	ThermoOptic         float64 // 1/K
	Absorption          float64 // cm^-1 eV^-1/2
	ElectronFreeCarrier float64 // cm^2
	HoleFreeCarrier     float64
	GainCoeff           float64 // cm^-1
	TransparencyConc    float64 // cm^-3
	GainCompressionConc float64 // cm^-3, keeps the log gain finite at zero density

	overrides map[Param]formula.Evaluable
}

// Override replaces a parameter by an expression of composition and temperature.
func (m *Material) Override(p Param, e formula.Evaluable) {
	if p < 0 || p >= numParams {
		panic(fmt.Sprintf("material: invalid parameter %d", int(p)))
	}
	if m.overrides == nil {
		m.overrides = make(map[Param]formula.Evaluable)
	}
	m.overrides[p] = e
}

func (m *Material) eval(p Param, temp float64, value float64) float64 {
	e, ok := m.overrides[p]
	if !ok {
		return value
	}
	return e.Evaluate(map[string]float64{"x": m.Composition, "t": temp})
}

func (m *Material) varshni(temp float64) float64 {
	return m.VarshniAlpha * temp * temp / (temp + m.VarshniBeta)
}

// BandGapAt returns the band gap in eV.
func (m *Material) BandGapAt(temp float64) float64 {
	eg := m.BandGap + m.varshni(consts.REFTEMP) - m.varshni(temp)
	return m.eval(ParamBandGap, temp, eg)
}

// AffinityAt returns the electron affinity; the gap shrinks symmetrically about midgap.
func (m *Material) AffinityAt(temp float64) float64 {
	chi := m.Affinity + (m.varshni(temp)-m.varshni(consts.REFTEMP))/2
	return m.eval(ParamAffinity, temp, chi)
}

// PermittivityAt returns the absolute permittivity in F/cm.
func (m *Material) PermittivityAt(temp float64) float64 {
	return m.eval(ParamPermittivity, temp, m.Permittivity) * consts.PERMITTIVITY
}

func (m *Material) ElectronMassAt(temp float64) float64 {
	return m.eval(ParamElectronMass, temp, m.ElectronMass)
}

func (m *Material) HoleMassAt(temp float64) float64 {
	return m.eval(ParamHoleMass, temp, m.HoleMass)
}

// EffectiveDOS returns 2(2 pi m kT/h^2)^(3/2) in cm^-3.
func EffectiveDOS(mass, temp float64) float64 {
	kt := consts.BOLTZMANN * temp
	a := 2 * math.Pi * mass * consts.ELECTRON * kt / (consts.PLANCK * consts.PLANCK)
	return 2 * math.Pow(a, 1.5) * 1e-6
}

func (m *Material) ElectronDOS(temp float64) float64 {
	return EffectiveDOS(m.ElectronMassAt(temp), temp)
}

func (m *Material) HoleDOS(temp float64) float64 {
	return EffectiveDOS(m.HoleMassAt(temp), temp)
}

func caugheyThomas(hi, lo, doping, ref, alpha float64) float64 {
	if doping <= 0 || ref <= 0 {
		return hi
	}
	return lo + (hi-lo)/(1+math.Pow(doping/ref, alpha))
}

func (m *Material) tempScale(temp float64) float64 {
	return math.Pow(temp/consts.REFTEMP, -m.MobilityTempExp)
}

// ElectronMobilityAt returns the low-field mobility for the total ionized doping.
func (m *Material) ElectronMobilityAt(doping, temp float64) float64 {
	mu := caugheyThomas(m.ElectronMobility, m.ElectronMobilityMin, doping, m.MobilityRefDoping, m.MobilityAlpha)
	return m.eval(ParamElectronMobility, temp, mu*m.tempScale(temp))
}

func (m *Material) HoleMobilityAt(doping, temp float64) float64 {
	mu := caugheyThomas(m.HoleMobility, m.HoleMobilityMin, doping, m.MobilityRefDoping, m.MobilityAlpha)
	return m.eval(ParamHoleMobility, temp, mu*m.tempScale(temp))
}

func (m *Material) ElectronLifetimeAt(temp float64) float64 {
	return m.eval(ParamElectronLifetime, temp, m.ElectronLifetime)
}

func (m *Material) HoleLifetimeAt(temp float64) float64 {
	return m.eval(ParamHoleLifetime, temp, m.HoleLifetime)
}

func (m *Material) RadiativeAt(temp float64) float64 {
	return m.eval(ParamRadiative, temp, m.Radiative)
}

// ThermalConductivityAt returns kappa(T) and dkappa/dT.
func (m *Material) ThermalConductivityAt(temp float64) (float64, float64) {
	kappa := m.ThermalConductivity * math.Pow(temp/consts.REFTEMP, -m.ThermalCondExp)
	if _, ok := m.overrides[ParamThermalConductivity]; ok {
		return m.eval(ParamThermalConductivity, temp, kappa), 0
	}
	return kappa, -m.ThermalCondExp * kappa / temp
}

// RefractiveIndexAt returns the index at the given photon energy (eV).
func (m *Material) RefractiveIndexAt(energy, temp float64) float64 {
	n := m.RefractiveIndex + m.IndexDispersion*(energy-m.BandGap) + m.ThermoOptic*(temp-consts.REFTEMP)
	return m.eval(ParamRefractiveIndex, temp, n)
}

// AbsorptionAt returns the interband absorption coefficient in cm^-1.
func (m *Material) AbsorptionAt(energy, temp float64) float64 {
	excess := energy - m.BandGapAt(temp)
	if excess <= 0 {
		return 0
	}
	return m.Absorption * math.Sqrt(excess)
}

func (m *Material) GainAt(temp float64) float64 {
	return m.eval(ParamGain, temp, m.GainCoeff)
}

// Clone returns an independent copy, overrides included.
func (m *Material) Clone() *Material {
	c := *m
	if m.overrides != nil {
		c.overrides = make(map[Param]formula.Evaluable, len(m.overrides))
		for k, v := range m.overrides {
			c.overrides[k] = v
		}
	}
	return &c
}

// SameAs reports whether both materials describe the same alloy.
func (m *Material) SameAs(o *Material) bool {
	return m.Name == o.Name && m.Composition == o.Composition
}

package material

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
)

var ErrUnknownMaterial = errors.New("material: unknown material")

// Constructor builds a material for an alloy composition in [0, 1].
type Constructor func(x float64) *Material

type Library struct {
	materials map[string]Constructor
}

func NewLibrary() *Library {
	return &Library{materials: make(map[string]Constructor)}
}

// DefaultLibrary returns the built-in III-V and silicon parameter sets.
func DefaultLibrary() *Library {
	lib := NewLibrary()
	lib.Register("GaAs", func(float64) *Material { return gaas() })
	lib.Register("AlGaAs", algaas)
	lib.Register("InGaAs", ingaas)
	lib.Register("Si", func(float64) *Material { return silicon() })
	return lib
}

func (l *Library) Register(name string, c Constructor) {
	l.materials[strings.ToLower(name)] = c
}

func (l *Library) Lookup(name string, x float64) (*Material, error) {
	c, ok := l.materials[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownMaterial, name)
	}
	if x < 0 || x > 1 || math.IsNaN(x) {
		return nil, fmt.Errorf("material %s: composition %g out of range [0, 1]", name, x)
	}
	m := c(x)
	m.Composition = x
	return m, nil
}

func (l *Library) Names() []string {
	names := make([]string, 0, len(l.materials))
	for name := range l.materials {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func gaas() *Material {
	return &Material{
		Name:                "GaAs",
		BandGap:             1.424,
		VarshniAlpha:        5.405e-4,
		VarshniBeta:         204,
		Affinity:            4.07,
		Permittivity:        12.9,
		ElectronMass:        0.067,
		HoleMass:            0.48,
		ElectronMobility:    8500,
		HoleMobility:        400,
		ElectronMobilityMin: 500,
		HoleMobilityMin:     20,
		MobilityRefDoping:   6e16,
		MobilityAlpha:       0.394,
		MobilityTempExp:     1.0,
		ElectronLifetime:    1e-9,
		HoleLifetime:        1e-9,
		Radiative:           1e-10,
		ElectronAuger:       1e-30,
		HoleAuger:           1e-30,
		DonorLevel:          0.006,
		AcceptorLevel:       0.026,
		DonorDegeneracy:     2,
		AcceptorDegeneracy:  4,
		ThermalConductivity: 0.44,
		ThermalCondExp:      1.25,
		RefractiveIndex:     3.6,
		IndexDispersion:     0.2,
		ThermoOptic:         4e-4,
		Absorption:          2e4,
		ElectronFreeCarrier: 3e-18,
		HoleFreeCarrier:     7e-18,
		GainCoeff:           1500,
		TransparencyConc:    1.8e18,
		GainCompressionConc: 1e15,
	}
}

func algaas(x float64) *Material {
	m := gaas()
	m.Name = "AlGaAs"
	if x < 0.45 {
		m.BandGap = 1.424 + 1.247*x
		m.Affinity = 4.07 - 1.1*x
	} else {
		m.BandGap = 1.9 + 0.125*x + 0.143*x*x
		m.Affinity = 3.64 - 0.14*x
	}
	m.Permittivity = 12.9 - 2.84*x
	m.ElectronMass = 0.067 + 0.083*x
	m.HoleMass = 0.48 + 0.31*x
	m.ElectronMobility = math.Max(8500-22000*x+10000*x*x, 200)
	m.HoleMobility = 400 - 970*x + 740*x*x
	m.ElectronMobilityMin = math.Min(m.ElectronMobilityMin, m.ElectronMobility)
	m.HoleMobilityMin = math.Min(m.HoleMobilityMin, m.HoleMobility)
	m.ThermalConductivity = 1 / (2.27 + 28.83*x - 30*x*x)
	m.RefractiveIndex = 3.6 - 0.71*x
	m.GainCoeff = 0
	return m
}

func ingaas(x float64) *Material {
	m := gaas()
	m.Name = "InGaAs"
	m.BandGap = 1.424 - 1.53*x + 0.45*x*x
	m.Affinity = 4.07 + 0.6*(1.53*x-0.45*x*x)
	m.Permittivity = 12.9 + 2.3*x
	m.ElectronMass = 0.067 - 0.044*x
	m.HoleMass = 0.48 - 0.07*x
	m.ElectronMobility = 8500 + 3000*x
	m.ThermalConductivity = 1 / (2.27 + 60*x)
	m.RefractiveIndex = 3.6 + 0.2*x
	m.TransparencyConc = 1.8e18 * (1 - 0.5*x)
	return m
}

func silicon() *Material {
	return &Material{
		Name:                "Si",
		BandGap:             1.12,
		VarshniAlpha:        4.73e-4,
		VarshniBeta:         636,
		Affinity:            4.05,
		Permittivity:        11.7,
		ElectronMass:        1.08,
		HoleMass:            0.81,
		ElectronMobility:    1417,
		HoleMobility:        470,
		ElectronMobilityMin: 52,
		HoleMobilityMin:     44,
		MobilityRefDoping:   9.68e16,
		MobilityAlpha:       0.68,
		MobilityTempExp:     2.2,
		ElectronLifetime:    1e-6,
		HoleLifetime:        1e-6,
		Radiative:           1.1e-14,
		ElectronAuger:       2.8e-31,
		HoleAuger:           9.9e-32,
		DonorLevel:          0.045,
		AcceptorLevel:       0.045,
		DonorDegeneracy:     2,
		AcceptorDegeneracy:  4,
		ThermalConductivity: 1.48,
		ThermalCondExp:      1.3,
		RefractiveIndex:     3.5,
		IndexDispersion:     0.1,
		ThermoOptic:         1.8e-4,
		Absorption:          1e3,
		ElectronFreeCarrier: 1e-18,
		HoleFreeCarrier:     2.7e-18,
		TransparencyConc:    1e19,
		GainCompressionConc: 1e15,
	}
}

// Package structure describes a layered 1-D device and builds its mesh.
package structure

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/SimWindows/simwin-sub002/pkg/node"
	"github.com/SimWindows/simwin-sub002/pkg/physics"
)

var ErrInvalidStructure = errors.New("structure: invalid structure")

// Region is one layer of the device. Lengths are in micrometres and grid
// spacings in nanometres.
type Region struct {
	Material             string            `yaml:"material"`
	Composition          float64           `yaml:"composition"`
	Length               float64           `yaml:"length"`
	Spacing              float64           `yaml:"spacing"`
	Donor                float64           `yaml:"donor"`
	Acceptor             float64           `yaml:"acceptor"`
	IncompleteIonization bool              `yaml:"incomplete_ionization"`
	QuantumWell          bool              `yaml:"quantum_well"`
	Active               bool              `yaml:"active"`
	Overrides            map[string]string `yaml:"overrides"`
}

type Surface struct {
	Side        string  `yaml:"side"`
	HeatSink    bool    `yaml:"heat_sink"`
	Temperature float64 `yaml:"temperature"` // K
	Conductance float64 `yaml:"conductance"` // W/(cm^2 K)
}

type Cavity struct {
	LeftReflectivity  float64 `yaml:"left_reflectivity"`
	RightReflectivity float64 `yaml:"right_reflectivity"`
	Beta              float64 `yaml:"beta"`
	Compression       float64 `yaml:"compression"`     // cm^3
	BackgroundLoss    float64 `yaml:"background_loss"` // cm^-1
	PhotonEnergy      float64 `yaml:"photon_energy"`   // eV, zero picks the active band gap
}

type Incident struct {
	Side         string  `yaml:"side"`
	Power        float64 `yaml:"power"`         // W/cm^2
	PhotonEnergy float64 `yaml:"photon_energy"` // eV
}

type QuantumWells struct {
	Penetration float64 `yaml:"penetration"` // nm
	MaxLevels   int     `yaml:"max_levels"`
}

type Structure struct {
	Name         string       `yaml:"name"`
	Statistics   string       `yaml:"statistics"`
	Temperature  float64      `yaml:"temperature"`
	BiasContact  string       `yaml:"bias_contact"`
	Regions      []Region     `yaml:"regions"`
	Surfaces     []Surface    `yaml:"surfaces"`
	Cavity       *Cavity      `yaml:"cavity"`
	Incident     *Incident    `yaml:"incident"`
	QuantumWells QuantumWells `yaml:"quantum_wells"`
}

// Load decodes a YAML structure, fills in defaults and validates it.
func Load(r io.Reader) (*Structure, error) {
	var err error

	s := &Structure{}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	err = dec.Decode(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidStructure, err)
	}
	s.SetDefaults()
	err = s.Validate()
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Structure) SetDefaults() {
	if s.Statistics == "" {
		s.Statistics = "boltzmann"
	}
	if s.Temperature == 0 {
		s.Temperature = 300
	}
	if s.BiasContact == "" {
		s.BiasContact = node.Left.String()
	}
	for i := range s.Regions {
		if s.Regions[i].Spacing == 0 {
			s.Regions[i].Spacing = 5
		}
	}
	for i := range s.Surfaces {
		if s.Surfaces[i].Temperature == 0 {
			s.Surfaces[i].Temperature = s.Temperature
		}
	}
	if s.Cavity != nil && s.Cavity.Beta == 0 {
		s.Cavity.Beta = 1e-4
	}
	if s.QuantumWells.MaxLevels == 0 {
		s.QuantumWells.MaxLevels = 4
	}
	if s.QuantumWells.Penetration == 0 {
		s.QuantumWells.Penetration = 5
	}
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidStructure, fmt.Sprintf(format, args...))
}

func (s *Structure) Validate() error {
	var err error

	if len(s.Regions) == 0 {
		return invalid("no regions")
	}
	_, err = s.StatisticsKind()
	if err != nil {
		return invalid("%v", err)
	}
	_, err = node.ParseSide(s.BiasContact)
	if err != nil {
		return invalid("bias contact: %v", err)
	}
	if !(s.Temperature > 0) {
		return invalid("temperature %g must be positive", s.Temperature)
	}

	for i, r := range s.Regions {
		if strings.TrimSpace(r.Material) == "" {
			return invalid("region %d has no material", i)
		}
		if !(r.Length > 0) || !(r.Spacing > 0) {
			return invalid("region %d: length %g and spacing %g must be positive", i, r.Length, r.Spacing)
		}
		if r.Composition < 0 || r.Composition > 1 {
			return invalid("region %d: composition %g out of [0, 1]", i, r.Composition)
		}
		if r.Donor < 0 || r.Acceptor < 0 {
			return invalid("region %d: negative doping", i)
		}
		if r.QuantumWell && (i == 0 || i == len(s.Regions)-1) {
			return invalid("region %d: a quantum well cannot touch a contact", i)
		}
	}

	seen := map[node.Side]bool{}
	for _, sf := range s.Surfaces {
		side, err := node.ParseSide(sf.Side)
		if err != nil {
			return invalid("surface: %v", err)
		}
		if seen[side] {
			return invalid("duplicate %s surface", side)
		}
		seen[side] = true
		if !(sf.Temperature > 0) || sf.Conductance < 0 {
			return invalid("%s surface: temperature %g, conductance %g", side, sf.Temperature, sf.Conductance)
		}
	}

	if c := s.Cavity; c != nil {
		for _, r := range []float64{c.LeftReflectivity, c.RightReflectivity} {
			if !(r > 0) || r > 1 {
				return invalid("cavity reflectivity %g out of (0, 1]", r)
			}
		}
		if c.Beta < 0 || c.Compression < 0 || c.BackgroundLoss < 0 || c.PhotonEnergy < 0 {
			return invalid("negative cavity parameter")
		}
	}
	if l := s.Incident; l != nil {
		_, err = node.ParseSide(l.Side)
		if err != nil {
			return invalid("incident light: %v", err)
		}
		if l.Power < 0 || (l.Power > 0 && !(l.PhotonEnergy > 0)) {
			return invalid("incident light: power %g, photon energy %g", l.Power, l.PhotonEnergy)
		}
	}
	if s.QuantumWells.MaxLevels < 0 || s.QuantumWells.Penetration < 0 {
		return invalid("negative quantum well parameter")
	}
	return nil
}

// HasThermalSink reports whether some surface can carry heat away.
func (s *Structure) HasThermalSink() bool {
	for _, sf := range s.Surfaces {
		if sf.HeatSink || sf.Conductance > 0 {
			return true
		}
	}
	return false
}

func (s *Structure) StatisticsKind() (physics.Statistics, error) {
	switch strings.ToLower(s.Statistics) {
	case "boltzmann":
		return physics.Boltzmann, nil
	case "fermi-dirac", "fermi_dirac", "fermi":
		return physics.FermiDirac, nil
	}
	return 0, fmt.Errorf("unknown statistics %q", s.Statistics)
}

// Intervals returns the number of grid intervals of region i.
func (r Region) Intervals() int {
	return max(1, int(math.Ceil(r.Length*1e3/r.Spacing-1e-9)))
}

// Length returns the total device length in cm.
func (s *Structure) Length() float64 {
	var l float64
	for _, r := range s.Regions {
		l += r.Length * 1e-4
	}
	return l
}

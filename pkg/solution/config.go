package solution

import (
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/SimWindows/simwin-sub002/pkg/node"
)

// FundamentalParam holds one value per electrical unknown.
type FundamentalParam struct {
	Potential      float64 `yaml:"potential"`
	ElectronPlanck float64 `yaml:"electron_planck"`
	HolePlanck     float64 `yaml:"hole_planck"`
}

func (p FundamentalParam) Get(v int) float64 {
	switch v {
	case node.VarPotential:
		return p.Potential
	case node.VarElectron:
		return p.ElectronPlanck
	case node.VarHole:
		return p.HolePlanck
	}
	panic(fmt.Sprintf("solution: invalid variable %d", v))
}

func (p *FundamentalParam) Set(v int, x float64) {
	switch v {
	case node.VarPotential:
		p.Potential = x
	case node.VarElectron:
		p.ElectronPlanck = x
	case node.VarHole:
		p.HolePlanck = x
	default:
		panic(fmt.Sprintf("solution: invalid variable %d", v))
	}
}

type Config struct {
	// Newton updates, in units of the thermal voltage
	ElectricalTolerance FundamentalParam `yaml:"electrical_tolerance"`
	ThermalTolerance    float64          `yaml:"thermal_tolerance"` // relative temperature update
	OpticalTolerance    float64          `yaml:"optical_tolerance"` // relative photon number change between outer passes
	ModeTolerance       float64          `yaml:"mode_tolerance"`
	PhotonTolerance     float64          `yaml:"photon_tolerance"`

	MaxInnerElect int `yaml:"max_inner_elect"`
	MaxInnerTherm int `yaml:"max_inner_therm"`
	MaxOuterTherm int `yaml:"max_outer_therm"`
	MaxOuterOptic int `yaml:"max_outer_optic"`
	MaxMode       int `yaml:"max_mode"`
	MaxPhoton     int `yaml:"max_photon"`

	Clamp        float64 `yaml:"clamp"`         // largest electrical update (thermal voltages)
	ThermalClamp float64 `yaml:"thermal_clamp"` // largest temperature update (K)

	MaxBiasStep float64 `yaml:"max_bias_step"` // V
	MinBiasStep float64 `yaml:"min_bias_step"` // V

	ThermEmisThreshold float64 `yaml:"therm_emis_threshold"` // eV

	SolveThermal bool `yaml:"solve_thermal"`
	SolveOptical bool `yaml:"solve_optical"`
}

func DefaultConfig() Config {
	return Config{
		ElectricalTolerance: FundamentalParam{Potential: 1e-6, ElectronPlanck: 1e-5, HolePlanck: 1e-5},
		ThermalTolerance:    1e-6,
		OpticalTolerance:    1e-4,
		ModeTolerance:       1e-8,
		PhotonTolerance:     1e-8,
		MaxInnerElect:       100,
		MaxInnerTherm:       50,
		MaxOuterTherm:       20,
		MaxOuterOptic:       50,
		MaxMode:             20,
		MaxPhoton:           100,
		Clamp:               5,
		ThermalClamp:        50,
		MaxBiasStep:         0.25,
		MinBiasStep:         1e-3,
		ThermEmisThreshold:  0.01,
	}
}

func (c Config) Validate() error {
	for v := range node.NumVars {
		if !(c.ElectricalTolerance.Get(v) > 0) {
			return fmt.Errorf("solution: electrical tolerance %d must be positive", v)
		}
	}
	if !(c.ThermalTolerance > 0) || !(c.OpticalTolerance > 0) || !(c.ModeTolerance > 0) || !(c.PhotonTolerance > 0) {
		return fmt.Errorf("solution: tolerances must be positive")
	}
	if c.MaxInnerElect <= 0 || c.MaxInnerTherm <= 0 || c.MaxOuterTherm <= 0 ||
		c.MaxOuterOptic <= 0 || c.MaxMode <= 0 || c.MaxPhoton <= 0 {
		return fmt.Errorf("solution: iteration caps must be positive")
	}
	if !(c.Clamp > 0) || !(c.ThermalClamp > 0) {
		return fmt.Errorf("solution: clamps must be positive")
	}
	if !(c.MinBiasStep > 0) || c.MaxBiasStep < c.MinBiasStep {
		return fmt.Errorf("solution: invalid bias steps (max=%g, min=%g)", c.MaxBiasStep, c.MinBiasStep)
	}
	if c.ThermEmisThreshold < 0 {
		return fmt.Errorf("solution: negative thermionic emission threshold %g", c.ThermEmisThreshold)
	}
	return nil
}

// LoadConfig decodes solver settings over DefaultConfig. Fields missing from r
// keep their defaults; an empty document yields DefaultConfig.
func LoadConfig(r io.Reader) (Config, error) {
	cfg := DefaultConfig()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	err := dec.Decode(&cfg)
	if err != nil && !errors.Is(err, io.EOF) {
		return cfg, fmt.Errorf("solution: decoding config: %w", err)
	}
	return cfg, cfg.Validate()
}

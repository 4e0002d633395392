package node

import "fmt"

// Flag selects one reportable quantity of a node. The set is closed: asking for
// a value outside it is a programming error.
type Flag int

const (
	FlagPosition Flag = iota
	FlagTemperature
	FlagPotential
	FlagElectronPlanck
	FlagHolePlanck
	FlagConductionBand
	FlagValenceBand
	FlagBandGap
	FlagElectronConc
	FlagHoleConc
	FlagElectronBoundConc
	FlagHoleBoundConc
	FlagIonizedDonor
	FlagIonizedAcceptor
	FlagTotalCharge
	FlagField
	FlagElectronMobility
	FlagHoleMobility
	FlagSRHRecomb
	FlagB2BRecomb
	FlagAugerRecomb
	FlagStimRecomb
	FlagTotalRecomb
	FlagOpticalGeneration
	FlagGain
	FlagModeIntensity
	FlagPhotonDensity
	FlagRefractiveIndex
	FlagJouleHeat
	FlagRecombHeat
	FlagTotalHeat
	FlagThermalConductivity
	numFlags
)

var flagNames = [numFlags]string{
	"position", "temperature", "potential", "electron_planck", "hole_planck",
	"conduction_band", "valence_band", "band_gap", "electron_conc", "hole_conc",
	"electron_bound_conc", "hole_bound_conc", "ionized_donor", "ionized_acceptor",
	"total_charge", "field", "electron_mobility", "hole_mobility", "srh_recomb",
	"b2b_recomb", "auger_recomb", "stim_recomb", "total_recomb", "optical_generation",
	"gain", "mode_intensity", "photon_density", "refractive_index", "joule_heat",
	"recomb_heat", "total_heat", "thermal_conductivity",
}

func (f Flag) String() string {
	if f < 0 || f >= numFlags {
		return fmt.Sprintf("Flag(%d)", int(f))
	}
	return flagNames[f]
}

func ParseFlag(name string) (Flag, error) {
	for i, n := range flagNames {
		if n == name {
			return Flag(i), nil
		}
	}
	return 0, fmt.Errorf("node: unknown flag %q", name)
}

// Flags returns every defined flag in declaration order.
func Flags() []Flag {
	flags := make([]Flag, numFlags)
	for i := range flags {
		flags[i] = Flag(i)
	}
	return flags
}

func (n *Node) Value(f Flag) float64 {
	g := &n.Grid
	switch f {
	case FlagPosition:
		return g.Position
	case FlagTemperature:
		return g.Temperature
	case FlagPotential:
		return g.Potential
	case FlagElectronPlanck:
		return n.Electron.Planck
	case FlagHolePlanck:
		return n.Hole.Planck
	case FlagConductionBand:
		return n.Electron.BandEdge
	case FlagValenceBand:
		return n.Hole.BandEdge
	case FlagBandGap:
		return g.BandGap
	case FlagElectronConc:
		return n.Electron.TotalConc
	case FlagHoleConc:
		return n.Hole.TotalConc
	case FlagElectronBoundConc:
		return n.Electron.BoundConc
	case FlagHoleBoundConc:
		return n.Hole.BoundConc
	case FlagIonizedDonor:
		return n.Electron.IonizedDoping
	case FlagIonizedAcceptor:
		return n.Hole.IonizedDoping
	case FlagTotalCharge:
		return g.TotalCharge
	case FlagField:
		return g.Field
	case FlagElectronMobility:
		return n.Electron.Mobility
	case FlagHoleMobility:
		return n.Hole.Mobility
	case FlagSRHRecomb:
		return g.SRHRecomb
	case FlagB2BRecomb:
		return g.B2BRecomb
	case FlagAugerRecomb:
		return g.AugerRecomb
	case FlagStimRecomb:
		return g.StimRecomb
	case FlagTotalRecomb:
		return g.TotalRecomb
	case FlagOpticalGeneration:
		return g.OpticalGeneration
	case FlagGain:
		return g.Gain
	case FlagModeIntensity:
		return g.ModeIntensity
	case FlagPhotonDensity:
		return g.PhotonDensity
	case FlagRefractiveIndex:
		return g.RefractiveIndex
	case FlagJouleHeat:
		return g.JouleHeat
	case FlagRecombHeat:
		return g.RecombHeat
	case FlagTotalHeat:
		return g.TotalHeat
	case FlagThermalConductivity:
		return g.ThermalConductivity
	}
	panic(fmt.Sprintf("node %d: invalid flag %d", n.Index, int(f)))
}

// SetValue writes one of the independent quantities. Derived quantities are
// read-only.
func (n *Node) SetValue(f Flag, v float64) {
	g := &n.Grid
	switch f {
	case FlagTemperature:
		g.Temperature = v
	case FlagPotential:
		g.Potential = v
	case FlagElectronPlanck:
		n.Electron.Planck = v
	case FlagHolePlanck:
		n.Hole.Planck = v
	case FlagModeIntensity:
		g.ModeIntensity = v
	case FlagPhotonDensity:
		g.PhotonDensity = v
	case FlagOpticalGeneration:
		g.OpticalGeneration = v
	default:
		panic(fmt.Sprintf("node %d: flag %s is not settable", n.Index, f))
	}
}

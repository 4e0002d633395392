package solution

import (
	"fmt"
	"math"

	"github.com/SimWindows/simwin-sub002/pkg/boundary"
	"github.com/SimWindows/simwin-sub002/pkg/element"
	"github.com/SimWindows/simwin-sub002/pkg/matrix"
	"github.com/SimWindows/simwin-sub002/pkg/node"
	"github.com/SimWindows/simwin-sub002/pkg/optics"
	"github.com/SimWindows/simwin-sub002/pkg/quantum"
	"github.com/SimWindows/simwin-sub002/pkg/report"
)

// Problem is the device a Solution works on. The Solution borrows every part
// of it for the duration of a solve.
type Problem struct {
	Mesh     *node.Mesh
	Elements []element.Element
	Wells    []*quantum.QuantumWell
	Contacts [2]*boundary.Contact
	Surfaces [2]*boundary.Surface
	Cavity   *optics.Cavity
	Incident *optics.IncidentLight
}

// Solution drives the nested Newton loops. Contact nodes are fixed, every
// interior node carries (potential, electron Planck, hole Planck). Heat sink
// nodes are excluded from the thermal system.
type Solution struct {
	Problem
	config   Config
	observer report.Observer
	flags    UpdateFlags

	elo, ehi int
	jacobian *matrix.JacobianMatrix

	thermalRows []int // 1-based row per node, 0 when fixed
	thermal     *matrix.ThermalMatrix

	ElectricalError FundamentalParam
	ThermalError    float64
}

func New(p Problem, cfg Config, obs report.Observer) (*Solution, error) {
	var err error

	err = cfg.Validate()
	if err != nil {
		return nil, err
	}
	if p.Mesh == nil || p.Mesh.Len() < 3 {
		return nil, fmt.Errorf("solution: at least three nodes are required")
	}
	if len(p.Elements) != p.Mesh.Len()-1 {
		return nil, fmt.Errorf("solution: %d elements for %d nodes", len(p.Elements), p.Mesh.Len())
	}
	if p.Contacts[node.Left] == nil || p.Contacts[node.Right] == nil {
		return nil, fmt.Errorf("solution: both contacts are required")
	}
	if cfg.SolveOptical && p.Cavity == nil {
		return nil, fmt.Errorf("solution: optical solve requested without a cavity")
	}
	if obs == nil {
		obs = report.Nop{}
	}

	s := &Solution{
		Problem:  p,
		config:   cfg,
		observer: obs,
		elo:      1,
		ehi:      p.Mesh.Len() - 2,
	}
	s.flags.Reset()

	s.jacobian, err = matrix.NewJacobian(node.NumVars*(s.ehi-s.elo+1), 2*node.NumVars-1)
	if err != nil {
		return nil, fmt.Errorf("creating electrical jacobian: %v", err)
	}

	if cfg.SolveThermal {
		err = s.setupThermal()
		if err != nil {
			s.Close()
			return nil, err
		}
	}
	if p.Cavity != nil {
		p.Cavity.Monitor = obs
	}
	return s, nil
}

func (s *Solution) setupThermal() error {
	var err error

	sink, lossy := false, false
	for _, sf := range s.Surfaces {
		if sf == nil {
			continue
		}
		sink = sink || sf.HeatSink
		lossy = lossy || sf.Conductance > 0
	}
	if !sink && !lossy {
		return fmt.Errorf("solution: thermal solve needs a heat sink or a surface conductance")
	}

	s.thermalRows = make([]int, s.Mesh.Len())
	rows := 0
	for i := range s.thermalRows {
		if s.fixedTemperature(i) {
			continue
		}
		rows++
		s.thermalRows[i] = rows
	}
	s.thermal, err = matrix.NewThermal(rows)
	if err != nil {
		return fmt.Errorf("creating thermal matrix: %v", err)
	}
	return nil
}

func (s *Solution) fixedTemperature(i int) bool {
	for _, sf := range s.Surfaces {
		if sf != nil && sf.HeatSink && sf.Node == i {
			return true
		}
	}
	return false
}

func (s *Solution) Config() Config { return s.config }

func (s *Solution) Flags() UpdateFlags { return s.flags }

// Invalidate marks derived quantities stale after an outside change, for
// example a new temperature or a restored state.
func (s *Solution) Invalidate(mask UpdateFlags) { s.flags.Set(mask) }

// Refresh recomputes every derived quantity from the independent node state,
// for example after a snapshot was restored.
func (s *Solution) Refresh() error {
	var err error

	s.flags.Reset()
	s.ApplyElectricalBoundary()
	err = s.ElectricalUpdateSubNodes()
	if err != nil {
		return err
	}
	s.CompElectricalDepParam()
	if s.Cavity != nil {
		s.Cavity.LoadIntensity()
	}
	return nil
}

// Close releases the sparse matrix.
func (s *Solution) Close() {
	if s.jacobian != nil {
		s.jacobian.Destroy()
		s.jacobian = nil
	}
}

// refreshTemperature recomputes everything that depends on the lattice
// temperature once it changed.
func (s *Solution) refreshTemperature() {
	if !s.flags.Has(UpdateTemperature | UpdateThermEmis | UpdateIncident) {
		return
	}
	if s.flags.Has(UpdateTemperature) {
		s.Mesh.Each(node.All(), func(n *node.Node) { n.CompIndependentParam() })
		for _, c := range s.Contacts {
			c.CompEquilibrium(s.Mesh)
			c.Apply(s.Mesh)
		}
		s.flags.Set(UpdateThermEmis | UpdateIncident | UpdateQuantumWells)
	}
	if s.flags.Has(UpdateThermEmis) {
		for k := range s.Elements {
			s.Elements[k].CompThermEmisFlags(s.config.ThermEmisThreshold)
		}
	}
	if s.flags.Has(UpdateIncident) && s.Incident != nil {
		s.Incident.Propagate(s.Mesh)
	}
	s.flags.Clear(UpdateTemperature | UpdateThermEmis | UpdateIncident)
}

// Solve runs outer thermal, outer optical, electrical, inner thermal and the
// cavity loops in that nesting.
func (s *Solution) Solve() error {
	var err error

	s.flags.Reset()

	outer := 1
	if s.config.SolveThermal {
		outer = s.config.MaxOuterTherm
	}
	var change float64
	for iter := 1; iter <= outer; iter++ {
		before := s.Mesh.Profile(node.All(), node.FlagTemperature)
		err = s.opticalLoop()
		if err != nil {
			return err
		}
		if !s.config.SolveThermal {
			return nil
		}
		change = relativeChange(before, s.Mesh.Profile(node.All(), node.FlagTemperature))
		if change < s.config.ThermalTolerance {
			return nil
		}
	}
	return s.notConverged(LoopOuterThermal, outer, change)
}

func (s *Solution) opticalLoop() error {
	var err error

	outer := 1
	if s.config.SolveOptical {
		outer = s.config.MaxOuterOptic
	}
	var change float64
	for iter := 1; iter <= outer; iter++ {
		err = s.ElectricalIterate()
		if err != nil {
			return err
		}
		if s.config.SolveThermal {
			err = s.ThermalIterate()
			if err != nil {
				return err
			}
		}
		if !s.config.SolveOptical {
			return nil
		}

		before := s.Cavity.Mode.PhotonNumber
		err = s.ModeIterate()
		if err != nil {
			return err
		}
		err = s.OpticalIterate()
		if err != nil {
			return err
		}
		after := s.Cavity.Mode.PhotonNumber
		change = math.Abs(after-before) / math.Max(after, 1)
		if change < s.config.OpticalTolerance {
			return nil
		}
	}
	return s.notConverged(LoopOptical, outer, change)
}

func (s *Solution) notConverged(loop Loop, iterations int, residual float64) error {
	err := &NonConvergenceError{Loop: loop, Iterations: iterations, Residual: residual}
	s.observer.ErrorMessage(err)
	return err
}

func relativeChange(before, after []float64) float64 {
	var change float64
	for i := range before {
		change = math.Max(change, math.Abs(after[i]-before[i])/math.Abs(after[i]))
	}
	return change
}

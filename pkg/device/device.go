// Package device assembles a simulated device from a structure and drives its
// solution through bias ramps.
package device

import (
	"errors"
	"fmt"

	"github.com/SimWindows/simwin-sub002/pkg/boundary"
	"github.com/SimWindows/simwin-sub002/pkg/element"
	"github.com/SimWindows/simwin-sub002/pkg/node"
	"github.com/SimWindows/simwin-sub002/pkg/optics"
	"github.com/SimWindows/simwin-sub002/pkg/quantum"
	"github.com/SimWindows/simwin-sub002/pkg/solution"
	"github.com/SimWindows/simwin-sub002/pkg/structure"
)

var ErrStateMismatch = boundary.ErrStateMismatch

type State int

const (
	StateNew State = iota
	StateEquilibrium
	StateSolved
	StateNotConverged
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateNew:
		return "new"
	case StateEquilibrium:
		return "equilibrium"
	case StateSolved:
		return "solved"
	case StateNotConverged:
		return "not converged"
	case StateFailed:
		return "failed"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Device owns the mesh and everything attached to it.
type Device struct {
	opts      options
	structure *structure.Structure

	mesh        *node.Mesh
	elements    []element.Element
	wells       []*quantum.QuantumWell
	contacts    [2]*boundary.Contact
	surfaces    [2]*boundary.Surface
	cavity      *optics.Cavity
	incident    *optics.IncidentLight
	biasContact node.Side

	solution *solution.Solution
	state    State
}

func New(s *structure.Structure, opts ...Option) (*Device, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	d := &Device{opts: o}
	err := d.Rebuild(s)
	if err != nil {
		return nil, err
	}
	return d, nil
}

// Rebuild replaces the device by a new structure. On error the device is left
// exactly as it was.
func (d *Device) Rebuild(s *structure.Structure) error {
	next, err := build(s, d.opts)
	if err != nil {
		d.opts.observer.ErrorMessage(err)
		return err
	}
	if d.solution != nil {
		d.solution.Close()
	}
	*d = *next
	return nil
}

func build(s *structure.Structure, o options) (*Device, error) {
	var err error

	if s == nil {
		return nil, fmt.Errorf("%w: nil structure", structure.ErrInvalidStructure)
	}
	err = s.Validate()
	if err != nil {
		return nil, err
	}
	if o.config.SolveThermal && !s.HasThermalSink() {
		return nil, fmt.Errorf("%w: thermal solve needs a heat sink or a surface conductance", structure.ErrInvalidStructure)
	}
	if o.config.SolveOptical && s.Cavity == nil {
		return nil, fmt.Errorf("%w: optical solve needs a cavity", structure.ErrInvalidStructure)
	}

	layout, err := s.Build(o.library, o.compiler)
	if err != nil {
		return nil, err
	}
	mesh := layout.Mesh

	d := &Device{
		opts:      o,
		structure: s,
		mesh:      mesh,
		elements:  element.Build(mesh),
	}
	d.biasContact, _ = node.ParseSide(s.BiasContact)
	d.contacts = [2]*boundary.Contact{boundary.NewContact(mesh, node.Left), boundary.NewContact(mesh, node.Right)}

	err = d.buildSurfaces(s)
	if err != nil {
		return nil, err
	}
	err = d.buildOptics(s)
	if err != nil {
		return nil, err
	}
	penetration := s.QuantumWells.Penetration * 1e-7
	for _, span := range layout.Wells {
		d.wells = append(d.wells, quantum.New(mesh, span, penetration, s.QuantumWells.MaxLevels))
	}

	d.solution, err = solution.New(d.problem(), o.config, o.observer)
	if err != nil {
		return nil, err
	}
	return d, nil
}

func (d *Device) buildSurfaces(s *structure.Structure) error {
	var err error

	for _, side := range []node.Side{node.Left, node.Right} {
		d.surfaces[side], err = boundary.NewConductance(d.mesh, side, s.Temperature, 0)
		if err != nil {
			return err
		}
	}
	for _, sf := range s.Surfaces {
		side, _ := node.ParseSide(sf.Side)
		if sf.HeatSink {
			d.surfaces[side], err = boundary.NewHeatSink(d.mesh, side, sf.Temperature)
		} else {
			d.surfaces[side], err = boundary.NewConductance(d.mesh, side, sf.Temperature, sf.Conductance)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (d *Device) buildOptics(s *structure.Structure) error {
	var err error

	if l := s.Incident; l != nil {
		side, _ := node.ParseSide(l.Side)
		light, err := optics.NewIncidentLight(side, l.Power, l.PhotonEnergy)
		if err != nil {
			return err
		}
		d.incident = &light
	}

	c := s.Cavity
	if c == nil {
		return nil
	}
	left, err := optics.NewMirror(node.Left, c.LeftReflectivity)
	if err != nil {
		return err
	}
	right, err := optics.NewMirror(node.Right, c.RightReflectivity)
	if err != nil {
		return err
	}
	d.cavity, err = optics.NewCavity(d.mesh, node.All(), left, right)
	if err != nil {
		return err
	}
	d.cavity.Beta = c.Beta
	d.cavity.Compression = c.Compression
	d.cavity.BackgroundLoss = c.BackgroundLoss
	d.cavity.TargetEnergy = c.PhotonEnergy
	return nil
}

func (d *Device) problem() solution.Problem {
	return solution.Problem{
		Mesh:     d.mesh,
		Elements: d.elements,
		Wells:    d.wells,
		Contacts: d.contacts,
		Surfaces: d.surfaces,
		Cavity:   d.cavity,
		Incident: d.incident,
	}
}

// Close releases the solver resources.
func (d *Device) Close() {
	if d.solution != nil {
		d.solution.Close()
		d.solution = nil
	}
}

func (d *Device) State() State                    { return d.state }
func (d *Device) Mesh() *node.Mesh                { return d.mesh }
func (d *Device) Structure() *structure.Structure { return d.structure }
func (d *Device) Config() solution.Config         { return d.opts.config }
func (d *Device) Cavity() *optics.Cavity          { return d.cavity }
func (d *Device) Wells() []*quantum.QuantumWell   { return d.wells }

func (d *Device) Contact(side node.Side) *boundary.Contact {
	return d.contacts[side]
}

func (d *Device) Surface(side node.Side) *boundary.Surface {
	return d.surfaces[side]
}

// SetConfig replaces the solver settings; the present solution is kept.
func (d *Device) SetConfig(cfg solution.Config) error {
	var err error

	if cfg.SolveOptical && d.cavity == nil {
		return fmt.Errorf("%w: optical solve needs a cavity", structure.ErrInvalidStructure)
	}
	next, err := solution.New(d.problem(), cfg, d.opts.observer)
	if err != nil {
		return err
	}
	d.solution.Close()
	d.solution = next
	d.opts.config = cfg
	return nil
}

// Bias returns the voltage applied to the bias contact.
func (d *Device) Bias() float64 {
	return d.contacts[d.biasContact].Bias
}

// Solve solves the device at the present bias.
func (d *Device) Solve() error {
	err := d.solution.Solve()
	d.settle(err)
	return err
}

func (d *Device) settle(err error) {
	switch {
	case err == nil && d.Bias() == 0:
		d.state = StateEquilibrium
	case err == nil:
		d.state = StateSolved
	case errors.Is(err, solution.ErrNotConverged):
		d.state = StateNotConverged
	default:
		d.state = StateFailed
	}
}

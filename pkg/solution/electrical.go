package solution

import (
	"fmt"
	"math"

	"github.com/SimWindows/simwin-sub002/internal/consts"
	"github.com/SimWindows/simwin-sub002/pkg/matrix"
	"github.com/SimWindows/simwin-sub002/pkg/node"
)

func (s *Solution) row(i, v int) int {
	return node.NumVars*(i-s.elo) + v + 1
}

// stamp adds value at (r, unknown v of node i) unless node i is a contact.
func (s *Solution) stamp(m matrix.DeviceMatrix, r, i, v int, value float64) {
	if i < s.elo || i > s.ehi {
		return
	}
	m.AddElement(r, s.row(i, v), value)
}

// ApplyElectricalBoundary fixes the contact nodes at their bias.
func (s *Solution) ApplyElectricalBoundary() {
	s.refreshTemperature()
	for _, c := range s.Contacts {
		c.Apply(s.Mesh)
	}
	s.flags.Set(UpdatePotential)
}

// CompElectricalDepParam refreshes node physics and element currents from the
// present unknowns.
func (s *Solution) CompElectricalDepParam() {
	s.refreshTemperature()
	s.Mesh.Each(node.All(), func(n *node.Node) { n.CompDependentParam() })
	for k := range s.Elements {
		s.Elements[k].CompElectrical()
	}
}

// CompElectricalJacobian assembles J dx = -F for Poisson's equation and both
// continuity equations at every interior node.
func (s *Solution) CompElectricalJacobian() {
	j := s.jacobian
	j.Clear()
	for i := s.elo; i <= s.ehi; i++ {
		s.stampPoisson(j, i)
		s.stampContinuity(j, i)
	}
}

func (s *Solution) stampPoisson(m matrix.DeviceMatrix, i int) {
	prev, n, next := s.Mesh.At(i-1), s.Mesh.At(i), s.Mesh.At(i+1)
	left, right := &s.Elements[i-1], &s.Elements[i]
	dx := s.Mesh.BoxLength(i)

	cl := (prev.Grid.Permittivity + n.Grid.Permittivity) / 2 / left.Length
	cr := (n.Grid.Permittivity + next.Grid.Permittivity) / 2 / right.Length
	f := cr*(next.Grid.Potential-n.Grid.Potential) - cl*(n.Grid.Potential-prev.Grid.Potential) +
		consts.CHARGE*n.Grid.TotalCharge*dx

	r := s.row(i, node.VarPotential)
	s.stamp(m, r, i-1, node.VarPotential, cl)
	s.stamp(m, r, i+1, node.VarPotential, cr)
	s.stamp(m, r, i, node.VarPotential, -cl-cr)
	for v := range node.NumVars {
		s.stamp(m, r, i, v, consts.CHARGE*n.ChargeDeriv[v]*dx)
	}
	m.AddRHS(r, -f)
}

// stampContinuity adds Jn(i+1/2) - Jn(i-1/2) - qR dx = 0 and
// Jp(i+1/2) - Jp(i-1/2) + qR dx = 0.
func (s *Solution) stampContinuity(m matrix.DeviceMatrix, i int) {
	n := s.Mesh.At(i)
	left, right := &s.Elements[i-1], &s.Elements[i]
	qdx := consts.CHARGE * s.Mesh.BoxLength(i)
	recomb := n.Grid.TotalRecomb

	r := s.row(i, node.VarElectron)
	for v := range node.NumVars {
		s.stamp(m, r, i-1, v, -left.ElectronStencil.Left[v])
		s.stamp(m, r, i, v, right.ElectronStencil.Left[v]-left.ElectronStencil.Right[v]-qdx*n.RecombDeriv[v])
		s.stamp(m, r, i+1, v, right.ElectronStencil.Right[v])
	}
	m.AddRHS(r, -(right.ElectronCurrent - left.ElectronCurrent - qdx*recomb))

	r = s.row(i, node.VarHole)
	for v := range node.NumVars {
		s.stamp(m, r, i-1, v, -left.HoleStencil.Left[v])
		s.stamp(m, r, i, v, right.HoleStencil.Left[v]-left.HoleStencil.Right[v]+qdx*n.RecombDeriv[v])
		s.stamp(m, r, i+1, v, right.HoleStencil.Right[v])
	}
	m.AddRHS(r, -(right.HoleCurrent - left.HoleCurrent + qdx*recomb))
}

func (s *Solution) FactorJacobian() error {
	var err error

	err = s.jacobian.Equilibrate()
	if err != nil {
		return err
	}
	return s.jacobian.Factor()
}

func (s *Solution) SolveElectricalJacobian() error {
	return s.jacobian.Solve()
}

// ElectricalUpdateDevice applies the Newton update, scaled down uniformly so
// that no unknown moves by more than Clamp thermal voltages. The undamped
// update is kept as the iteration error.
func (s *Solution) ElectricalUpdateDevice() {
	x := s.jacobian.Solution()

	var worst float64
	s.ElectricalError = FundamentalParam{}
	for i := s.elo; i <= s.ehi; i++ {
		vt := s.Mesh.At(i).Grid.ThermalVoltage
		for v := range node.NumVars {
			d := math.Abs(x[s.row(i, v)]) / vt
			s.ElectricalError.Set(v, math.Max(s.ElectricalError.Get(v), d))
			worst = math.Max(worst, d)
		}
	}

	scale := 1.0
	if worst > s.config.Clamp {
		scale = s.config.Clamp / worst
	}
	for i := s.elo; i <= s.ehi; i++ {
		n := s.Mesh.At(i)
		n.Grid.Potential += scale * x[s.row(i, node.VarPotential)]
		n.Electron.Planck += scale * x[s.row(i, node.VarElectron)]
		n.Hole.Planck += scale * x[s.row(i, node.VarHole)]
	}
	s.flags.Set(UpdatePotential | UpdateQuantumWells)
}

// ElectricalUpdateSubNodes refreshes band edges and the quantum well bound
// states after the potentials moved.
func (s *Solution) ElectricalUpdateSubNodes() error {
	var err error

	s.refreshTemperature()
	if !s.flags.Has(UpdatePotential | UpdateQuantumWells) {
		return nil
	}
	s.Mesh.Each(node.All(), func(n *node.Node) { n.CompConc() })
	if s.flags.Has(UpdateQuantumWells) {
		for _, qw := range s.Wells {
			err = qw.Update()
			if err != nil {
				return fmt.Errorf("updating quantum well %s: %w", qw.Range(), err)
			}
		}
	}
	s.flags.Clear(UpdatePotential | UpdateQuantumWells)
	return nil
}

// CompElectricalError returns the largest update relative to its tolerance;
// the iteration has converged when it is at most one.
func (s *Solution) CompElectricalError() float64 {
	var ratio float64
	for v := range node.NumVars {
		ratio = math.Max(ratio, s.ElectricalError.Get(v)/s.config.ElectricalTolerance.Get(v))
	}
	return ratio
}

func (s *Solution) maxElectricalError() float64 {
	var worst float64
	for v := range node.NumVars {
		worst = math.Max(worst, s.ElectricalError.Get(v))
	}
	return worst
}

// ElectricalIterate runs Newton on the electrical unknowns at fixed
// temperature and photon density.
func (s *Solution) ElectricalIterate() error {
	var err error

	s.ApplyElectricalBoundary()
	err = s.ElectricalUpdateSubNodes()
	if err != nil {
		return err
	}

	maxIter := s.config.MaxInnerElect
	for iter := 1; iter <= maxIter; iter++ {
		s.CompElectricalDepParam()
		s.CompElectricalJacobian()

		err = s.FactorJacobian()
		if err != nil {
			s.observer.ErrorMessage(err)
			return fmt.Errorf("electrical iteration %d: %w", iter, err)
		}
		err = s.SolveElectricalJacobian()
		if err != nil {
			s.observer.ErrorMessage(err)
			return fmt.Errorf("electrical iteration %d: %w", iter, err)
		}

		s.ElectricalUpdateDevice()
		err = s.ElectricalUpdateSubNodes()
		if err != nil {
			return err
		}

		ratio := s.CompElectricalError()
		s.observer.ElectConvergence(iter, s.maxElectricalError())
		if ratio <= 1 {
			s.CompElectricalDepParam()
			s.compTerminals()
			return nil
		}
	}
	return s.notConverged(LoopElectrical, maxIter, s.maxElectricalError())
}

// compTerminals stores the contact currents and integrates the field.
func (s *Solution) compTerminals() {
	first, last := &s.Elements[0], &s.Elements[len(s.Elements)-1]
	s.Contacts[node.Left].SetCurrent(first.ElectronCurrent, first.HoleCurrent)
	s.Contacts[node.Right].SetCurrent(last.ElectronCurrent, last.HoleCurrent)

	start := -(s.Mesh.At(1).Grid.Potential - s.Mesh.At(0).Grid.Potential) / first.Length
	s.Mesh.CompField(node.All(), start)
}

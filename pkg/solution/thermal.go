package solution

import (
	"fmt"
	"math"

	"github.com/SimWindows/simwin-sub002/pkg/matrix"
	"github.com/SimWindows/simwin-sub002/pkg/node"
)

// CompThermalDepParam refreshes the heat sources and the element heat fluxes.
// Joule heat of an element is shared equally by its two nodes.
func (s *Solution) CompThermalDepParam() {
	s.CompElectricalDepParam()

	s.Mesh.Each(node.All(), func(n *node.Node) { n.Grid.JouleHeat = 0 })
	for k := range s.Elements {
		e := &s.Elements[k]
		q := e.JouleHeat() * e.Length / 2
		s.Mesh.At(e.Left).Grid.JouleHeat += q
		s.Mesh.At(e.Right).Grid.JouleHeat += q
	}
	s.Mesh.Each(node.All(), func(n *node.Node) {
		n.Grid.JouleHeat /= s.Mesh.BoxLength(n.Index)
		n.CompHeat()
	})
	for k := range s.Elements {
		s.Elements[k].CompThermalParam()
		s.Elements[k].CompHeatFlux()
	}
}

// balance returns the heat produced in the control volume of node i minus the
// heat conducted out of it, without the surface term.
func (s *Solution) balance(i int) float64 {
	f := s.Mesh.At(i).Grid.TotalHeat * s.Mesh.BoxLength(i)
	if i > 0 {
		f += s.Elements[i-1].HeatFlux
	}
	if i < len(s.Elements) {
		f -= s.Elements[i].HeatFlux
	}
	return f
}

func (s *Solution) surfaceAt(i int) (float64, float64) {
	var f, df float64
	for _, sf := range s.Surfaces {
		if sf != nil && sf.Node == i {
			r, dr := sf.Residual(s.Mesh.At(i).Grid.Temperature)
			f += r
			df += dr
		}
	}
	return f, df
}

// CompThermalJacobian assembles the heat balance of every node that is not
// held by a heat sink. The temperature dependence of the heat sources is
// neglected.
func (s *Solution) CompThermalJacobian() {
	t := s.thermal
	t.Clear()
	for i, r := range s.thermalRows {
		if r == 0 {
			continue
		}
		f := s.balance(i)
		var diag float64
		if i > 0 {
			e := &s.Elements[i-1]
			s.stampThermal(t, r, i-1, e.ThermalStencil[0])
			diag += e.ThermalStencil[1]
		}
		if i < len(s.Elements) {
			e := &s.Elements[i]
			s.stampThermal(t, r, i+1, -e.ThermalStencil[1])
			diag -= e.ThermalStencil[0]
		}
		sf, dsf := s.surfaceAt(i)
		t.AddElement(r, r, diag+dsf)
		t.AddRHS(r, -(f + sf))
	}
}

func (s *Solution) stampThermal(m matrix.DeviceMatrix, r, i int, value float64) {
	if c := s.thermalRows[i]; c != 0 {
		m.AddElement(r, c, value)
	}
}

// ApplyThermalBoundary pins the heat sink temperatures.
func (s *Solution) ApplyThermalBoundary() {
	for _, sf := range s.Surfaces {
		if sf != nil {
			sf.Apply(s.Mesh)
		}
	}
	s.flags.Set(UpdateTemperature)
}

func (s *Solution) SolveThermalJacobian() error {
	return s.thermal.Solve()
}

// ThermalUpdateDevice applies the temperature update, clamped to ThermalClamp
// kelvin and bounded below by 1 K.
func (s *Solution) ThermalUpdateDevice() {
	x := s.thermal.Solution()

	var worst, update float64
	for i, r := range s.thermalRows {
		if r == 0 {
			continue
		}
		worst = math.Max(worst, math.Abs(x[r])/s.Mesh.At(i).Grid.Temperature)
		update = math.Max(update, math.Abs(x[r]))
	}
	s.ThermalError = worst

	scale := 1.0
	if update > s.config.ThermalClamp {
		scale = s.config.ThermalClamp / update
	}
	for i, r := range s.thermalRows {
		if r == 0 {
			continue
		}
		g := &s.Mesh.At(i).Grid
		g.Temperature = math.Max(g.Temperature+scale*x[r], 1)
	}
	s.flags.Set(UpdateTemperature | UpdateOptical)
}

func (s *Solution) CompThermalError() float64 {
	return s.ThermalError / s.config.ThermalTolerance
}

// ThermalIterate solves the lattice heat equation at fixed electrical state.
func (s *Solution) ThermalIterate() error {
	var err error

	if s.thermal == nil {
		return fmt.Errorf("solution: thermal solve is not enabled")
	}
	s.ApplyThermalBoundary()

	maxIter := s.config.MaxInnerTherm
	for iter := 1; iter <= maxIter; iter++ {
		s.CompThermalDepParam()
		s.CompThermalJacobian()

		err = s.SolveThermalJacobian()
		if err != nil {
			s.observer.ErrorMessage(err)
			return fmt.Errorf("thermal iteration %d: %w", iter, err)
		}
		s.ThermalUpdateDevice()

		s.observer.ThermConvergence(iter, s.ThermalError)
		if s.CompThermalError() <= 1 {
			s.CompThermalDepParam()
			s.compSurfaceFlux()
			return nil
		}
	}
	return s.notConverged(LoopThermal, maxIter, s.ThermalError)
}

// compSurfaceFlux stores the heat leaving through each surface.
func (s *Solution) compSurfaceFlux() {
	for _, sf := range s.Surfaces {
		if sf == nil {
			continue
		}
		if sf.HeatSink {
			sf.SetHeatFlux(s.balance(sf.Node))
			continue
		}
		r, _ := sf.Residual(s.Mesh.At(sf.Node).Grid.Temperature)
		sf.SetHeatFlux(-r)
	}
}

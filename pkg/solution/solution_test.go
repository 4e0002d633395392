package solution

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/diff/fd"

	"github.com/SimWindows/simwin-sub002/pkg/boundary"
	"github.com/SimWindows/simwin-sub002/pkg/element"
	"github.com/SimWindows/simwin-sub002/pkg/material"
	"github.com/SimWindows/simwin-sub002/pkg/node"
)

const spacing = 5e-7

type layer struct {
	nodes    int
	donor    float64
	acceptor float64
}

func siliconMesh(t *testing.T, layers ...layer) *node.Mesh {
	t.Helper()
	m, err := material.DefaultLibrary().Lookup("Si", 0)
	require.NoError(t, err)

	var nodes []node.Node
	for _, l := range layers {
		for range l.nodes {
			i := len(nodes)
			n := node.New(i, float64(i)*spacing, m, node.RegionBulk)
			n.SetDoping(l.donor, l.acceptor, false)
			n.CompIndependentParam()
			n.CompNeutralPotential()
			nodes = append(nodes, n)
		}
	}
	return node.NewMesh(nodes)
}

func testProblem(t *testing.T, mesh *node.Mesh) Problem {
	t.Helper()
	sink, err := boundary.NewHeatSink(mesh, node.Right, 300)
	require.NoError(t, err)
	adiabatic, err := boundary.NewConductance(mesh, node.Left, 300, 0)
	require.NoError(t, err)
	return Problem{
		Mesh:     mesh,
		Elements: element.Build(mesh),
		Contacts: [2]*boundary.Contact{boundary.NewContact(mesh, node.Left), boundary.NewContact(mesh, node.Right)},
		Surfaces: [2]*boundary.Surface{adiabatic, sink},
	}
}

func pnMesh(t *testing.T) *node.Mesh {
	return siliconMesh(t, layer{nodes: 40, acceptor: 1e17}, layer{nodes: 41, donor: 1e17})
}

type recorder struct {
	elect, therm int
	errs         []error
	messages     []string
}

func (r *recorder) ElectConvergence(int, float64) { r.elect++ }
func (r *recorder) ThermConvergence(int, float64) { r.therm++ }
func (r *recorder) OpticConvergence(int, float64) {}
func (r *recorder) ModeConvergence(int, float64)  {}
func (r *recorder) ErrorMessage(err error)        { r.errs = append(r.errs, err) }
func (r *recorder) Message(msg string)            { r.messages = append(r.messages, msg) }

func TestUpdateFlags(t *testing.T) {
	var f UpdateFlags
	assert.False(t, f.Has(UpdateTemperature))
	f.Set(UpdateTemperature | UpdateOptical)
	assert.True(t, f.Has(UpdateTemperature))
	assert.True(t, f.Has(UpdateOptical))
	assert.False(t, f.Has(UpdateIncident))
	f.Clear(UpdateTemperature)
	assert.False(t, f.Has(UpdateTemperature))
	f.Reset()
	for _, mask := range []UpdateFlags{UpdateTemperature, UpdatePotential, UpdateQuantumWells, UpdateOptical, UpdateIncident, UpdateThermEmis} {
		assert.True(t, f.Has(mask))
	}
}

func TestConfigValidate(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())

	tests := []struct {
		name   string
		modify func(c *Config)
	}{
		{"tolerance", func(c *Config) { c.ElectricalTolerance.HolePlanck = 0 }},
		{"thermal tolerance", func(c *Config) { c.ThermalTolerance = -1 }},
		{"iterations", func(c *Config) { c.MaxInnerElect = 0 }},
		{"clamp", func(c *Config) { c.Clamp = 0 }},
		{"bias steps", func(c *Config) { c.MaxBiasStep = c.MinBiasStep / 2 }},
		{"threshold", func(c *Config) { c.ThermEmisThreshold = -0.1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoadConfig(t *testing.T) {
	cfg, err := LoadConfig(strings.NewReader("max_inner_elect: 40\nsolve_thermal: true\nclamp: 2.5\n"))
	require.NoError(t, err)
	want := DefaultConfig()
	want.MaxInnerElect = 40
	want.SolveThermal = true
	want.Clamp = 2.5
	assert.Equal(t, want, cfg)

	cfg, err = LoadConfig(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)

	_, err = LoadConfig(strings.NewReader("max_inner_elec: 40\n"))
	assert.Error(t, err)
	_, err = LoadConfig(strings.NewReader("min_bias_step: 1\n"))
	assert.Error(t, err)
}

func TestFundamentalParam(t *testing.T) {
	var p FundamentalParam
	p.Set(node.VarPotential, 1)
	p.Set(node.VarElectron, 2)
	p.Set(node.VarHole, 3)
	assert.Equal(t, FundamentalParam{Potential: 1, ElectronPlanck: 2, HolePlanck: 3}, p)
	assert.Equal(t, 2.0, p.Get(node.VarElectron))
	assert.Panics(t, func() { p.Get(node.NumVars) })
	assert.Panics(t, func() { p.Set(-1, 0) })
}

func TestNonConvergenceError(t *testing.T) {
	var err error = &NonConvergenceError{Loop: LoopPhoton, Iterations: 7, Residual: 0.5}
	assert.True(t, errors.Is(err, ErrNotConverged))
	assert.Contains(t, err.Error(), "photon loop")

	var nc *NonConvergenceError
	require.True(t, errors.As(err, &nc))
	assert.True(t, nc.Optical())
	assert.False(t, (&NonConvergenceError{Loop: LoopThermal}).Optical())
	assert.Equal(t, "Loop(42)", Loop(42).String())
}

func TestNewValidation(t *testing.T) {
	short := siliconMesh(t, layer{nodes: 2, donor: 1e17})
	_, err := New(testProblem(t, short), DefaultConfig(), nil)
	assert.Error(t, err)

	mesh := siliconMesh(t, layer{nodes: 5, donor: 1e17})
	cfg := DefaultConfig()
	cfg.SolveOptical = true
	_, err = New(testProblem(t, mesh), cfg, nil)
	assert.Error(t, err)

	p := testProblem(t, mesh)
	insulated, err := boundary.NewConductance(mesh, node.Right, 300, 0)
	require.NoError(t, err)
	p.Surfaces[node.Right] = insulated
	cfg = DefaultConfig()
	cfg.SolveThermal = true
	_, err = New(p, cfg, nil)
	assert.Error(t, err)
}

func TestThreeNodeEquilibrium(t *testing.T) {
	mesh := siliconMesh(t, layer{nodes: 3, donor: 1e17})
	neutral := mesh.At(1).Grid.Potential
	obs := &recorder{}
	s, err := New(testProblem(t, mesh), DefaultConfig(), obs)
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Solve())
	assert.GreaterOrEqual(t, obs.elect, 1)
	assert.Empty(t, obs.errs)
	assert.InDelta(t, neutral, mesh.At(1).Grid.Potential, 1e-9)
	assert.InDelta(t, 0, mesh.At(1).Electron.Planck, 1e-12)
	assert.InDelta(t, 0, s.Contacts[node.Left].TotalCurrent(), 1e-9)
	assert.InDelta(t, 0, mesh.At(2).Grid.Field, 1e-3)
}

func TestJacobianMatchesResidual(t *testing.T) {
	mesh := siliconMesh(t, layer{nodes: 3, acceptor: 1e17}, layer{nodes: 3, donor: 5e16})
	s, err := New(testProblem(t, mesh), DefaultConfig(), nil)
	require.NoError(t, err)
	defer s.Close()

	s.ApplyElectricalBoundary()
	for i := 1; i <= 4; i++ {
		n := mesh.At(i)
		n.Electron.Planck = -0.05 * float64(i)
		n.Hole.Planck = -0.04*float64(i) - 0.02
		n.Grid.Potential += 0.01 * float64(i)
	}

	residual := func(r int) float64 {
		s.CompElectricalDepParam()
		s.CompElectricalJacobian()
		return -s.jacobian.RHS()[r]
	}
	residual(1)
	size := s.jacobian.Size
	jac := make([][]float64, size+1)
	for r := 1; r <= size; r++ {
		jac[r] = make([]float64, size+1)
		for c := 1; c <= size; c++ {
			if math.Abs(float64(r-c)) <= float64(s.jacobian.Bandwidth()) {
				jac[r][c] = s.jacobian.At(r, c)
			}
		}
	}

	ptr := func(i, v int) *float64 {
		n := mesh.At(i)
		switch v {
		case node.VarPotential:
			return &n.Grid.Potential
		case node.VarElectron:
			return &n.Electron.Planck
		}
		return &n.Hole.Planck
	}

	for r := 1; r <= size; r++ {
		var scale float64
		for c := 1; c <= size; c++ {
			scale = math.Max(scale, math.Abs(jac[r][c]))
		}
		require.Greater(t, scale, 0.0)
		for i := 1; i <= 4; i++ {
			for v := range node.NumVars {
				c := s.row(i, v)
				if math.Abs(float64(r-c)) > float64(s.jacobian.Bandwidth()) {
					continue
				}
				x := ptr(i, v)
				x0 := *x
				got := fd.Derivative(func(h float64) float64 {
					*x = h
					return residual(r)
				}, x0, &fd.Settings{Formula: fd.Central, Step: 1e-6})
				*x = x0
				assert.InDelta(t, got, jac[r][c], 1e-4*scale, "row %d node %d var %d", r, i, v)
			}
		}
	}
}

func TestPNJunctionEquilibrium(t *testing.T) {
	mesh := pnMesh(t)
	s, err := New(testProblem(t, mesh), DefaultConfig(), nil)
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Solve())

	first, last := mesh.At(0), mesh.At(mesh.Len()-1)
	vt := first.Grid.ThermalVoltage
	ni := first.Grid.IntrinsicConc
	builtIn := vt * math.Log(1e17*1e17/(ni*ni))
	assert.InDelta(t, builtIn, last.Grid.Potential-first.Grid.Potential, 1e-3)

	// neutral regions far from the junction stay at the contact potentials
	assert.InDelta(t, first.Grid.Potential, mesh.At(4).Grid.Potential, 1e-3)
	assert.InDelta(t, last.Grid.Potential, mesh.At(mesh.Len()-5).Grid.Potential, 1e-3)

	junction := mesh.At(40)
	assert.Less(t, junction.Grid.Field, -1e4)
	assert.InDelta(t, 0, s.Contacts[node.Left].TotalCurrent(), 1e-6)

	for i := 1; i < mesh.Len()-1; i++ {
		assert.InDelta(t, 0, mesh.At(i).Electron.Planck, 1e-9)
		assert.InDelta(t, 0, mesh.At(i).Hole.Planck, 1e-9)
	}
}

func rampBias(t *testing.T, s *Solution, biases []float64) []float64 {
	t.Helper()
	currents := make([]float64, 0, len(biases))
	for _, v := range biases {
		s.Contacts[node.Left].Bias = v
		require.NoError(t, s.Solve(), "bias %g", v)
		currents = append(currents, s.Contacts[node.Left].TotalCurrent())
	}
	return currents
}

func TestForwardBiasCurrent(t *testing.T) {
	mesh := pnMesh(t)
	s, err := New(testProblem(t, mesh), DefaultConfig(), nil)
	require.NoError(t, err)
	defer s.Close()

	biases := []float64{0, 0.1, 0.2, 0.3, 0.4, 0.5, 0.6}
	currents := rampBias(t, s, biases)
	for k := 2; k < len(currents); k++ {
		assert.Greater(t, currents[k], 0.0)
		assert.Greater(t, currents[k], currents[k-1], "bias %g", biases[k])
	}
	// current is conserved through the device
	assert.InEpsilon(t, currents[len(currents)-1], s.Contacts[node.Right].TotalCurrent(), 1e-3)

	left := mesh.At(0)
	assert.InDelta(t, -0.6, left.Electron.Planck, 1e-12)
	assert.InDelta(t, s.Contacts[node.Left].Neutral+0.6, left.Grid.Potential, 1e-12)
}

func TestElectricalNonConvergence(t *testing.T) {
	mesh := pnMesh(t)
	cfg := DefaultConfig()
	cfg.MaxInnerElect = 1
	obs := &recorder{}
	s, err := New(testProblem(t, mesh), cfg, obs)
	require.NoError(t, err)
	defer s.Close()

	err = s.Solve()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotConverged)
	var nc *NonConvergenceError
	require.ErrorAs(t, err, &nc)
	assert.Equal(t, LoopElectrical, nc.Loop)
	assert.Equal(t, 1, nc.Iterations)
	assert.Len(t, obs.errs, 1)
	assert.Equal(t, 1, obs.elect)
}

func TestThermalEquilibrium(t *testing.T) {
	mesh := pnMesh(t)
	cfg := DefaultConfig()
	cfg.SolveThermal = true
	obs := &recorder{}
	s, err := New(testProblem(t, mesh), cfg, obs)
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Solve())
	assert.GreaterOrEqual(t, obs.therm, 1)
	for i := range mesh.Len() {
		assert.InDelta(t, 300, mesh.At(i).Grid.Temperature, 1e-9)
	}
}

func TestThermalForwardBias(t *testing.T) {
	mesh := pnMesh(t)
	cfg := DefaultConfig()
	cfg.SolveThermal = true
	s, err := New(testProblem(t, mesh), cfg, nil)
	require.NoError(t, err)
	defer s.Close()

	rampBias(t, s, []float64{0, 0.2, 0.4, 0.6})
	for i := range mesh.Len() {
		assert.GreaterOrEqual(t, mesh.At(i).Grid.Temperature, 300-1e-9)
	}
	assert.Equal(t, 300.0, mesh.At(mesh.Len()-1).Grid.Temperature)
	assert.GreaterOrEqual(t, s.Surfaces[node.Right].HeatFlux, 0.0)
	assert.Equal(t, 0.0, s.Surfaces[node.Left].HeatFlux)
}

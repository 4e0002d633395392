package device

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SimWindows/simwin-sub002/pkg/node"
	"github.com/SimWindows/simwin-sub002/pkg/solution"
	"github.com/SimWindows/simwin-sub002/pkg/structure"
)

const siliconDiode = `
name: silicon diode
regions:
  - material: Si
    length: 0.2
    spacing: 5
    acceptor: 1e17
  - material: Si
    length: 0.2
    spacing: 5
    donor: 1e17
surfaces:
  - side: right
    heat_sink: true
`

const laser = `
name: gaas laser
regions:
  - material: GaAs
    length: 0.2
    spacing: 5
    acceptor: 1e17
  - material: GaAs
    length: 0.1
    spacing: 5
    active: true
  - material: GaAs
    length: 0.2
    spacing: 5
    donor: 1e17
cavity:
  left_reflectivity: 0.3
  right_reflectivity: 0.3
  background_loss: 10
`

func load(t *testing.T, text string) *structure.Structure {
	t.Helper()
	s, err := structure.Load(strings.NewReader(text))
	require.NoError(t, err)
	return s
}

type recorder struct {
	errs     []error
	messages []string
}

func (r *recorder) ElectConvergence(int, float64) {}
func (r *recorder) ThermConvergence(int, float64) {}
func (r *recorder) OpticConvergence(int, float64) {}
func (r *recorder) ModeConvergence(int, float64)  {}
func (r *recorder) ErrorMessage(err error)        { r.errs = append(r.errs, err) }
func (r *recorder) Message(msg string)            { r.messages = append(r.messages, msg) }

func TestStateString(t *testing.T) {
	assert.Equal(t, "new", StateNew.String())
	assert.Equal(t, "not converged", StateNotConverged.String())
	assert.Equal(t, "State(9)", State(9).String())
}

func TestNew(t *testing.T) {
	d, err := New(load(t, siliconDiode))
	require.NoError(t, err)
	defer d.Close()

	assert.Equal(t, StateNew, d.State())
	assert.Equal(t, 81, d.Mesh().Len())
	assert.True(t, d.Surface(node.Right).HeatSink)
	assert.False(t, d.Surface(node.Left).HeatSink)
	assert.Nil(t, d.Cavity())
	assert.Equal(t, 0.0, d.EmittedPower(node.Left))

	cfg := solution.DefaultConfig()
	cfg.SolveOptical = true
	_, err = New(load(t, siliconDiode), WithConfig(cfg))
	assert.ErrorIs(t, err, structure.ErrInvalidStructure)
}

func TestRebuildFailureLeavesDevice(t *testing.T) {
	obs := &recorder{}
	d, err := New(load(t, siliconDiode), WithObserver(obs))
	require.NoError(t, err)
	defer d.Close()
	require.NoError(t, d.SolveBias(0.2))
	mesh := d.Mesh()
	before := d.Value(node.FlagPotential, node.All())

	bad := load(t, siliconDiode)
	bad.Regions[0].Material = "Unobtainium"
	err = d.Rebuild(bad)
	require.Error(t, err)
	assert.Len(t, obs.errs, 1)

	assert.Same(t, mesh, d.Mesh())
	assert.Equal(t, StateSolved, d.State())
	assert.Equal(t, 0.2, d.Bias())
	assert.Equal(t, before, d.Value(node.FlagPotential, node.All()))

	require.NoError(t, d.Rebuild(load(t, laser)))
	assert.Equal(t, StateNew, d.State())
	assert.NotNil(t, d.Cavity())
	assert.Equal(t, 101, d.Mesh().Len())
}

func TestSolveBias(t *testing.T) {
	obs := &recorder{}
	d, err := New(load(t, siliconDiode), WithObserver(obs))
	require.NoError(t, err)
	defer d.Close()

	require.NoError(t, d.Solve())
	assert.Equal(t, StateEquilibrium, d.State())
	assert.InDelta(t, 0, d.CurrentDensity(), 1e-6)

	var last float64
	for _, v := range []float64{0.2, 0.4, 0.6} {
		require.NoError(t, d.SolveBias(v))
		assert.Equal(t, StateSolved, d.State())
		assert.Equal(t, v, d.Bias())
		assert.Greater(t, d.CurrentDensity(), last)
		last = d.CurrentDensity()
	}
	assert.NotEmpty(t, obs.messages)

	require.NoError(t, d.SolveBias(0))
	assert.Equal(t, StateEquilibrium, d.State())
	assert.InDelta(t, 0, d.CurrentDensity(), 1e-6)
	assert.Error(t, d.SolveBias(1/zero()))
}

func zero() float64 { return 0 }

func TestSolveBiasNonConvergence(t *testing.T) {
	d, err := New(load(t, siliconDiode))
	require.NoError(t, err)
	defer d.Close()
	require.NoError(t, d.Solve())
	before := d.Value(node.FlagPotential, node.All())

	cfg := d.Config()
	cfg.MaxInnerElect = 1
	cfg.MinBiasStep = 0.1
	require.NoError(t, d.SetConfig(cfg))

	err = d.SolveBias(50)
	require.Error(t, err)
	assert.ErrorIs(t, err, solution.ErrNotConverged)
	var nc *solution.NonConvergenceError
	require.True(t, errors.As(err, &nc))
	assert.Equal(t, solution.LoopElectrical, nc.Loop)

	assert.Equal(t, StateNotConverged, d.State())
	assert.Equal(t, 0.0, d.Bias())
	assert.InDeltaSlice(t, before, d.Value(node.FlagPotential, node.All()), 1e-12)
}

func TestThermalSolve(t *testing.T) {
	cfg := solution.DefaultConfig()
	cfg.SolveThermal = true
	d, err := New(load(t, siliconDiode), WithConfig(cfg))
	require.NoError(t, err)
	defer d.Close()

	require.NoError(t, d.SolveBias(0.6))
	for _, temp := range d.Value(node.FlagTemperature, node.All()) {
		assert.GreaterOrEqual(t, temp, 300-1e-9)
	}
	assert.GreaterOrEqual(t, d.Temperature(), 300.0)
	assert.GreaterOrEqual(t, d.Surface(node.Right).HeatFlux, 0.0)
}

func TestStateRoundTrip(t *testing.T) {
	d, err := New(load(t, siliconDiode))
	require.NoError(t, err)
	defer d.Close()
	require.NoError(t, d.SolveBias(0.3))

	var buf bytes.Buffer
	require.NoError(t, d.WriteState(&buf))
	written := append([]byte(nil), buf.Bytes()...)

	other, err := New(load(t, siliconDiode))
	require.NoError(t, err)
	defer other.Close()
	require.NoError(t, other.ReadState(&buf))

	assert.Equal(t, StateSolved, other.State())
	assert.Equal(t, 0.3, other.Bias())
	for _, f := range []node.Flag{node.FlagPotential, node.FlagElectronPlanck, node.FlagHolePlanck, node.FlagTemperature} {
		assert.Equal(t, d.Value(f, node.All()), other.Value(f, node.All()), f.String())
	}
	again, err := other.MarshalBinary()
	require.NoError(t, err)
	assert.Equal(t, written, again)

	// a truncated state changes nothing
	fresh, err := New(load(t, siliconDiode))
	require.NoError(t, err)
	defer fresh.Close()
	potential := fresh.Value(node.FlagPotential, node.All())
	assert.Error(t, fresh.ReadState(bytes.NewReader(written[:len(written)/2])))
	assert.Equal(t, potential, fresh.Value(node.FlagPotential, node.All()))
	assert.Equal(t, StateNew, fresh.State())

	small := load(t, siliconDiode)
	small.Regions[1].Length = 0.1
	mismatch, err := New(small)
	require.NoError(t, err)
	defer mismatch.Close()
	assert.ErrorIs(t, mismatch.ReadState(bytes.NewReader(written)), ErrStateMismatch)
}

func TestOpticalEquilibrium(t *testing.T) {
	cfg := solution.DefaultConfig()
	cfg.SolveOptical = true
	d, err := New(load(t, laser), WithConfig(cfg))
	require.NoError(t, err)
	defer d.Close()

	require.NoError(t, d.Solve())
	mode := d.Cavity().Mode
	assert.Greater(t, mode.PhotonEnergy, 1.3)
	assert.Greater(t, mode.GroupVelocity, 0.0)
	assert.InDelta(t, 0, mode.PhotonNumber, 1e-6)
	assert.InDelta(t, 0, d.EmittedPower(node.Left), 1e-12)
	assert.Contains(t, d.Summary(), "gaas laser")
}

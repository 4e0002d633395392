package analysis

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SimWindows/simwin-sub002/pkg/device"
	"github.com/SimWindows/simwin-sub002/pkg/node"
	"github.com/SimWindows/simwin-sub002/pkg/structure"
)

const diode = `
name: diode
regions:
  - material: Si
    length: 0.2
    acceptor: 1e17
  - material: Si
    length: 0.2
    donor: 1e17
`

func newDevice(t *testing.T) *device.Device {
	t.Helper()
	s, err := structure.Load(strings.NewReader(diode))
	require.NoError(t, err)
	d, err := device.New(s)
	require.NoError(t, err)
	t.Cleanup(d.Close)
	return d
}

func TestStoreBiasResult(t *testing.T) {
	a := NewBaseAnalysis()
	a.StoreBiasResult(0.1, map[string]float64{KeyCurrent: 1})
	a.StoreBiasResult(0.1, map[string]float64{KeyCurrent: 2})
	a.StoreBiasResult(0.1000000001, map[string]float64{KeyCurrent: 3})
	a.StoreBiasResult(0.2, map[string]float64{KeyCurrent: 4})

	res := a.GetResults()
	assert.Equal(t, []float64{0.1, 0.2}, res[KeyBias])
	assert.Equal(t, []float64{1, 4}, res[KeyCurrent])
}

func TestNewDCSweep(t *testing.T) {
	tests := []struct {
		name              string
		start, stop, step float64
		want              []float64
	}{
		{"forward", 0, 0.4, 0.2, []float64{0, 0.2, 0.4}},
		{"reverse", 0, -0.4, 0.2, []float64{0, -0.2, -0.4}},
		{"off grid", 0, 0.5, 0.2, []float64{0, 0.2, 0.4}},
		{"single", 0.3, 0.3, 0.1, []float64{0.3}},
		{"zero step", 0, 1, 0, nil},
		{"negative step", 0, 1, -0.1, nil},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			dc := NewDCSweep(tc.start, tc.stop, tc.step)
			assert.InDeltaSlice(t, tc.want, dc.Points(), 1e-12)
			assert.Len(t, dc.Points(), len(tc.want))
		})
	}
}

func TestSetup(t *testing.T) {
	assert.Error(t, NewOP(0).Setup(nil))
	assert.Error(t, NewOP(0).Execute())
	assert.Error(t, NewDCSweep(0, 1, 0.5).Execute())

	d := newDevice(t)
	assert.Error(t, NewDCSweep(0, 1, 0).Setup(d))
	assert.NoError(t, NewDCSweep(0, 1, 0.5).Setup(d))
}

func TestEquilibrium(t *testing.T) {
	d := newDevice(t)
	var a Analysis = NewEquilibrium()
	require.NoError(t, a.Setup(d))
	require.NoError(t, a.Execute())
	assert.Equal(t, device.StateEquilibrium, d.State())

	res := a.GetResults()
	assert.Equal(t, []float64{0}, res[KeyBias])
	assert.InDelta(t, 0, res[KeyCurrent][0], 1e-6)
	assert.InDelta(t, 300, res[KeyTemperature][0], 1e-9)
	assert.Equal(t, []float64{0}, res[KeyPowerLeft])
	for _, f := range DefaultProfile {
		assert.Len(t, res[f.String()], d.Mesh().Len(), f.String())
	}
	assert.Equal(t, d.Value(node.FlagConductionBand, node.All()), res["conduction_band"])
}

func TestOperatingPointProfile(t *testing.T) {
	d := newDevice(t)
	op := NewOP(0.3, node.FlagPotential)
	require.NoError(t, op.Setup(d))
	require.NoError(t, op.Execute())
	assert.Equal(t, 0.3, d.Bias())

	res := op.GetResults()
	assert.Len(t, res, 6)
	assert.Len(t, res["potential"], d.Mesh().Len())
	assert.Greater(t, res[KeyCurrent][0], 0.0)
}

func TestDCSweep(t *testing.T) {
	d := newDevice(t)
	dc := NewDCSweep(0, 0.6, 0.2)
	require.NoError(t, dc.Setup(d))
	require.NoError(t, dc.Execute())

	res := dc.GetResults()
	require.Len(t, res[KeyBias], 4)
	require.Len(t, res[KeyCurrent], 4)
	for i := 1; i < 4; i++ {
		assert.Greater(t, res[KeyCurrent][i], res[KeyCurrent][i-1])
	}
	assert.InDelta(t, 0.6, d.Bias(), 1e-12)
}

package analysis

import (
	"github.com/SimWindows/simwin-sub002/pkg/device"
	"github.com/SimWindows/simwin-sub002/pkg/node"
	"github.com/SimWindows/simwin-sub002/pkg/util"
)

// Result keys of the terminal quantities stored per bias point.
const (
	KeyBias        = "BIAS"
	KeyCurrent     = "J"
	KeyTemperature = "TMAX"
	KeyPowerLeft   = "P_LEFT"
	KeyPowerRight  = "P_RIGHT"
)

type Analysis interface {
	Setup(d *device.Device) error
	Execute() error
	GetResults() map[string][]float64
}

// DefaultProfile is the set of node quantities stored by an operating point.
var DefaultProfile = []node.Flag{
	node.FlagPosition,
	node.FlagConductionBand,
	node.FlagValenceBand,
	node.FlagElectronPlanck,
	node.FlagHolePlanck,
	node.FlagElectronConc,
	node.FlagHoleConc,
	node.FlagField,
	node.FlagTotalRecomb,
	node.FlagTemperature,
}

type BaseAnalysis struct {
	Device  *device.Device
	results map[string][]float64 // key: quantity name, value: one entry per bias or per node
}

func NewBaseAnalysis() *BaseAnalysis {
	return &BaseAnalysis{results: make(map[string][]float64)}
}

// StoreBiasResult appends one bias point. A bias equal to the last one, after
// rounding to the printed precision, is ignored.
func (a *BaseAnalysis) StoreBiasResult(bias float64, values map[string]float64) {
	if biases := a.results[KeyBias]; len(biases) > 0 {
		last := biases[len(biases)-1]
		if bias == last || util.FormatValueFactor(bias, "V") == util.FormatValueFactor(last, "V") {
			return
		}
	}

	a.results[KeyBias] = append(a.results[KeyBias], bias)
	for name, value := range values {
		a.results[name] = append(a.results[name], value)
	}
}

// StoreProfile replaces the stored node profiles with the present solution.
func (a *BaseAnalysis) StoreProfile(flags []node.Flag) {
	for _, f := range flags {
		a.results[f.String()] = a.Device.Value(f, node.All())
	}
}

func (a *BaseAnalysis) GetResults() map[string][]float64 {
	return a.results
}

func terminals(d *device.Device) map[string]float64 {
	return map[string]float64{
		KeyCurrent:     d.CurrentDensity(),
		KeyTemperature: d.Temperature(),
		KeyPowerLeft:   d.EmittedPower(node.Left),
		KeyPowerRight:  d.EmittedPower(node.Right),
	}
}

package analysis

import (
	"fmt"
	"math"

	"github.com/SimWindows/simwin-sub002/pkg/device"
)

// DCSweep ramps the bias contact through evenly spaced points and stores the
// terminal values at each one.
type DCSweep struct {
	BaseAnalysis
	start     float64
	stop      float64
	increment float64
	sweepVals []float64
}

// NewDCSweep sweeps from start towards stop in steps of increment. The stop
// value is included when it lies on the grid.
func NewDCSweep(start, stop, increment float64) *DCSweep {
	dc := &DCSweep{
		BaseAnalysis: *NewBaseAnalysis(),
		start:        start,
		stop:         stop,
		increment:    increment,
	}
	if !(increment > 0) || math.IsInf(increment, 0) {
		return dc
	}

	dir := 1.0
	if stop < start {
		dir = -1
	}
	steps := int(math.Floor(math.Abs(stop-start)/increment + 1e-9))
	for i := 0; i <= steps; i++ {
		dc.sweepVals = append(dc.sweepVals, start+dir*float64(i)*increment)
	}
	return dc
}

func (dc *DCSweep) Points() []float64 { return dc.sweepVals }

func (dc *DCSweep) Setup(d *device.Device) error {
	if d == nil {
		return fmt.Errorf("device not set")
	}
	if len(dc.sweepVals) == 0 {
		return fmt.Errorf("invalid sweep %g to %g by %g", dc.start, dc.stop, dc.increment)
	}
	dc.Device = d
	return nil
}

// Execute stops at the first bias that cannot be solved. The points reached
// so far are kept in the results.
func (dc *DCSweep) Execute() error {
	if dc.Device == nil {
		return fmt.Errorf("device not set")
	}

	for _, val := range dc.sweepVals {
		err := dc.Device.SolveBias(val)
		if err != nil {
			return fmt.Errorf("sweep at %g V: %w", val, err)
		}
		dc.StoreBiasResult(val, terminals(dc.Device))
	}

	return nil
}

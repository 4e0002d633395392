package analysis

import (
	"fmt"

	"github.com/SimWindows/simwin-sub002/pkg/device"
	"github.com/SimWindows/simwin-sub002/pkg/node"
)

// OperatingPoint solves the device at one bias and stores its terminal values
// together with the node profiles.
type OperatingPoint struct {
	BaseAnalysis
	bias  float64
	flags []node.Flag
}

// NewOP returns an operating point at bias; without flags DefaultProfile is stored.
func NewOP(bias float64, flags ...node.Flag) *OperatingPoint {
	if len(flags) == 0 {
		flags = DefaultProfile
	}
	return &OperatingPoint{
		BaseAnalysis: *NewBaseAnalysis(),
		bias:         bias,
		flags:        flags,
	}
}

// NewEquilibrium is the operating point at zero bias.
func NewEquilibrium(flags ...node.Flag) *OperatingPoint {
	return NewOP(0, flags...)
}

func (op *OperatingPoint) Setup(d *device.Device) error {
	if d == nil {
		return fmt.Errorf("device not set")
	}
	op.Device = d
	return nil
}

func (op *OperatingPoint) Execute() error {
	if op.Device == nil {
		return fmt.Errorf("device not set")
	}

	err := op.Device.SolveBias(op.bias)
	if err != nil {
		return fmt.Errorf("operating point at %g V: %w", op.bias, err)
	}

	op.StoreBiasResult(op.bias, terminals(op.Device))
	op.StoreProfile(op.flags)

	return nil
}

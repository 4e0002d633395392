package device

import (
	"fmt"

	"github.com/SimWindows/simwin-sub002/pkg/node"
)

// CurrentDensity returns the terminal current in A/cm^2, positive along +x.
func (d *Device) CurrentDensity() float64 {
	return d.contacts[node.Left].TotalCurrent()
}

// EmittedPower returns the optical power through the mirror on side in W/cm^2,
// zero without a cavity.
func (d *Device) EmittedPower(side node.Side) float64 {
	if d.cavity == nil {
		return 0
	}
	return d.cavity.EmittedPower(side)
}

// Temperature returns the largest lattice temperature.
func (d *Device) Temperature() float64 {
	var t float64
	d.mesh.Each(node.All(), func(n *node.Node) {
		t = max(t, n.Grid.Temperature)
	})
	return t
}

// Value returns the profile of one node quantity over r.
func (d *Device) Value(f node.Flag, r node.Range) []float64 {
	return d.mesh.Profile(r, f)
}

func (d *Device) Summary() string {
	s := fmt.Sprintf("%s: %s at %g V, J=%.4e A/cm^2, Tmax=%.2f K",
		d.structure.Name, d.state, d.Bias(), d.CurrentDensity(), d.Temperature())
	if d.cavity != nil {
		s += fmt.Sprintf(", P=%.4e W/cm^2", d.EmittedPower(node.Left)+d.EmittedPower(node.Right))
	}
	return s
}

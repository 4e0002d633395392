package optics

import (
	"fmt"
	"math"

	"github.com/SimWindows/simwin-sub002/internal/consts"
	"github.com/SimWindows/simwin-sub002/pkg/node"
)

// IncidentLight is a monochromatic beam entering the device from one side.
type IncidentLight struct {
	Side         node.Side
	Power        float64 // W/cm^2
	PhotonEnergy float64 // eV
}

func NewIncidentLight(side node.Side, power, energy float64) (IncidentLight, error) {
	if power < 0 {
		return IncidentLight{}, fmt.Errorf("optics: negative incident power %g", power)
	}
	if power > 0 && !(energy > 0) {
		return IncidentLight{}, fmt.Errorf("optics: incident photon energy %g must be positive", energy)
	}
	return IncidentLight{Side: side, Power: power, PhotonEnergy: energy}, nil
}

// Propagate attenuates the beam through the mesh (Beer-Lambert) and stores the
// local photon flux and the resulting generation rate in every node.
func (l IncidentLight) Propagate(mesh *node.Mesh) {
	count := mesh.Len()
	if count == 0 {
		return
	}
	if l.Power == 0 {
		mesh.Each(node.All(), func(n *node.Node) {
			n.Grid.IncidentFlux = 0
			n.Grid.IncidentEnergy = 0
			n.Grid.OpticalGeneration = 0
		})
		return
	}

	start, step := 0, 1
	if l.Side == node.Right {
		start, step = count-1, -1
	}

	flux := l.Power / (consts.CHARGE * l.PhotonEnergy)
	var prev *node.Node
	var prevAlpha float64
	for i := start; i >= 0 && i < count; i += step {
		n := mesh.At(i)
		alpha := n.Grid.Material.AbsorptionAt(l.PhotonEnergy, n.Grid.Temperature)
		if prev != nil {
			h := math.Abs(n.Grid.Position - prev.Grid.Position)
			flux *= math.Exp(-(alpha + prevAlpha) / 2 * h)
		}
		n.Grid.IncidentFlux = flux
		n.Grid.IncidentEnergy = l.PhotonEnergy
		n.Grid.OpticalGeneration = alpha * flux
		prev, prevAlpha = n, alpha
	}
}

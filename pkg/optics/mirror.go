package optics

import (
	"fmt"
	"math"

	"github.com/SimWindows/simwin-sub002/internal/consts"
	"github.com/SimWindows/simwin-sub002/pkg/node"
)

type Mirror struct {
	Side         node.Side
	Reflectivity float64
}

func NewMirror(side node.Side, reflectivity float64) (Mirror, error) {
	if !(reflectivity > 0 && reflectivity <= 1) {
		return Mirror{}, fmt.Errorf("optics: %s mirror reflectivity %g outside (0, 1]", side, reflectivity)
	}
	return Mirror{Side: side, Reflectivity: reflectivity}, nil
}

// Loss returns the distributed mirror loss ln(1/R)/(2L) in cm^-1.
func (m Mirror) Loss(length float64) float64 {
	return math.Log(1/m.Reflectivity) / (2 * length)
}

// EmittedPower returns the power per unit area (W/cm^2) leaving through the
// mirror for a photon sheet density (cm^-2).
func (m Mirror) EmittedPower(photonEnergy, groupVelocity, length, photons float64) float64 {
	return consts.CHARGE * photonEnergy * groupVelocity * m.Loss(length) * photons
}

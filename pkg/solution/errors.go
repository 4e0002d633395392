package solution

import (
	"errors"
	"fmt"
)

// ErrNotConverged is wrapped by every iteration cap that is hit.
var ErrNotConverged = errors.New("solution: not converged")

// Loop names one of the nested iteration loops.
type Loop int

const (
	LoopElectrical Loop = iota
	LoopThermal
	LoopOuterThermal
	LoopOptical
	LoopMode
	LoopPhoton
)

func (l Loop) String() string {
	switch l {
	case LoopElectrical:
		return "electrical"
	case LoopThermal:
		return "thermal"
	case LoopOuterThermal:
		return "outer thermal"
	case LoopOptical:
		return "optical"
	case LoopMode:
		return "mode"
	case LoopPhoton:
		return "photon"
	}
	return fmt.Sprintf("Loop(%d)", int(l))
}

type NonConvergenceError struct {
	Loop       Loop
	Iterations int
	Residual   float64
}

func (e *NonConvergenceError) Error() string {
	return fmt.Sprintf("%s loop failed to converge in %d iterations (error %g)", e.Loop, e.Iterations, e.Residual)
}

func (e *NonConvergenceError) Unwrap() error { return ErrNotConverged }

// Optical reports whether the failing loop belongs to the cavity.
func (e *NonConvergenceError) Optical() bool {
	return e.Loop == LoopOptical || e.Loop == LoopMode || e.Loop == LoopPhoton
}

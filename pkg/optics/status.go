package optics

import "fmt"

// Status is the outcome of an optical iteration.
type Status int

const (
	Converged Status = iota
	IterationLimit
	// Degenerate means the photon balance has no finite root (no loss, or
	// gain that stays above loss at any photon number).
	Degenerate
)

func (s Status) String() string {
	switch s {
	case Converged:
		return "converged"
	case IterationLimit:
		return "iteration limit"
	case Degenerate:
		return "degenerate"
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

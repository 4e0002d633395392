package device

import (
	"errors"
	"fmt"
	"math"

	"github.com/SimWindows/simwin-sub002/pkg/boundary"
	"github.com/SimWindows/simwin-sub002/pkg/node"
	"github.com/SimWindows/simwin-sub002/pkg/optics"
	"github.com/SimWindows/simwin-sub002/pkg/solution"
)

// snapshot is the independent state needed to retry a bias step.
type snapshot struct {
	nodes    []node.Record
	contacts [2]boundary.Contact
	surfaces [2]boundary.Surface
	mode     optics.Mode
}

func (d *Device) snapshot() snapshot {
	s := snapshot{nodes: d.mesh.Snapshot()}
	for i := range d.contacts {
		s.contacts[i] = *d.contacts[i]
		s.surfaces[i] = *d.surfaces[i]
	}
	if d.cavity != nil {
		s.mode = d.cavity.Mode
		s.mode.Intensity = append([]float64(nil), d.cavity.Mode.Intensity...)
	}
	return s
}

func (d *Device) restore(s snapshot) error {
	d.mesh.Restore(s.nodes)
	for i := range d.contacts {
		*d.contacts[i] = s.contacts[i]
		*d.surfaces[i] = s.surfaces[i]
	}
	if d.cavity != nil {
		intensity := d.cavity.Mode.Intensity
		d.cavity.Mode = s.mode
		d.cavity.Mode.Intensity = intensity
	}
	return d.solution.Refresh()
}

// SolveBias ramps the bias contact to target. A step that fails to converge
// electrically or thermally is undone and retried at half the size, down to
// MinBiasStep. Optical non-convergence keeps the partial solution and stops
// the ramp.
func (d *Device) SolveBias(target float64) error {
	var err error

	if math.IsNaN(target) || math.IsInf(target, 0) {
		return fmt.Errorf("device: invalid bias %g", target)
	}
	if d.state == StateNew || d.state == StateFailed {
		err = d.Solve()
		if err != nil {
			return fmt.Errorf("solving at %g V: %w", d.Bias(), err)
		}
	}

	cfg := d.opts.config
	contact := d.contacts[d.biasContact]
	step := cfg.MaxBiasStep
	for contact.Bias != target {
		last := d.snapshot()
		from := contact.Bias
		next := target
		if math.Abs(target-from) > step {
			next = from + math.Copysign(step, target-from)
		}

		contact.Bias = next
		err = d.solution.Solve()
		if err == nil {
			d.opts.observer.Message(fmt.Sprintf("solved at %g V", next))
			step = math.Min(2*step, cfg.MaxBiasStep)
			continue
		}

		var nc *solution.NonConvergenceError
		if errors.As(err, &nc) && nc.Optical() {
			d.state = StateNotConverged
			return fmt.Errorf("bias %g V: %w", next, err)
		}

		rerr := d.restore(last)
		if rerr != nil {
			d.state = StateFailed
			return fmt.Errorf("restoring %g V after %v: %w", from, err, rerr)
		}
		if !errors.Is(err, solution.ErrNotConverged) {
			d.state = StateFailed
			return fmt.Errorf("bias %g V: %w", next, err)
		}

		step /= 2
		if step < cfg.MinBiasStep {
			d.state = StateNotConverged
			return fmt.Errorf("bias step below %g V at %g V: %w", cfg.MinBiasStep, from, err)
		}
		d.opts.observer.Message(fmt.Sprintf("retrying from %g V with step %g V", from, step))
	}
	d.settle(nil)
	return nil
}

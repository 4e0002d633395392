package solution

import (
	"fmt"

	"github.com/SimWindows/simwin-sub002/pkg/optics"
)

// ModeIterate finds the resonant photon energy and the standing wave profile.
// The field only depends on the refractive index, so it is recomputed once per
// pass and after temperature changes.
func (s *Solution) ModeIterate() error {
	if !s.flags.Has(UpdateOptical) {
		return nil
	}
	status, err := s.Cavity.FieldIterate(s.config.MaxMode, s.config.ModeTolerance)
	if err != nil {
		s.observer.ErrorMessage(err)
		return fmt.Errorf("mode iteration: %w", err)
	}
	if status == optics.IterationLimit {
		return s.notConverged(LoopMode, s.config.MaxMode, 0)
	}
	s.flags.Clear(UpdateOptical)
	return nil
}

// OpticalIterate solves the photon balance and pushes the photon density into
// the nodes. The partial result is kept when the iteration cap is hit.
func (s *Solution) OpticalIterate() error {
	status, err := s.Cavity.PhotonIterate(s.config.MaxPhoton, s.config.PhotonTolerance)
	if err != nil {
		s.observer.ErrorMessage(err)
		return fmt.Errorf("photon iteration: %w", err)
	}
	s.Cavity.UpdateNodes()

	switch status {
	case optics.Degenerate:
		s.observer.Message(fmt.Sprintf("photon balance degenerate (gain %g, loss %g), keeping %g photons",
			s.Cavity.Mode.ModalGain, s.Cavity.TotalLoss(), s.Cavity.Mode.PhotonNumber))
	case optics.IterationLimit:
		return s.notConverged(LoopPhoton, s.config.MaxPhoton, 0)
	}
	return nil
}

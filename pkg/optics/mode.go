package optics

import (
	"encoding/binary"
	"fmt"
	"io"
)

// Mode is the single lasing mode of a cavity.
type Mode struct {
	Order         int
	PhotonEnergy  float64 // eV
	GroupVelocity float64 // cm/s
	PhotonNumber  float64 // photons per unit area (cm^-2)
	ModalGain     float64 // cm^-1
	InternalLoss  float64 // cm^-1
	Spontaneous   float64 // cm^-2 s^-1
	Intensity     []float64
}

type modeRecord struct {
	Order         int32
	PhotonEnergy  float64
	GroupVelocity float64
	PhotonNumber  float64
}

func (m *Mode) WriteState(w io.Writer) error {
	rec := modeRecord{
		Order:         int32(m.Order),
		PhotonEnergy:  m.PhotonEnergy,
		GroupVelocity: m.GroupVelocity,
		PhotonNumber:  m.PhotonNumber,
	}
	if err := binary.Write(w, binary.LittleEndian, &rec); err != nil {
		return fmt.Errorf("writing mode state: %w", err)
	}
	return nil
}

func (m *Mode) ReadState(r io.Reader) error {
	var rec modeRecord
	if err := binary.Read(r, binary.LittleEndian, &rec); err != nil {
		return fmt.Errorf("reading mode state: %w", err)
	}
	m.Order = int(rec.Order)
	m.PhotonEnergy = rec.PhotonEnergy
	m.GroupVelocity = rec.GroupVelocity
	m.PhotonNumber = rec.PhotonNumber
	return nil
}

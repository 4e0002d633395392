package node

import "github.com/SimWindows/simwin-sub002/pkg/material"

type Region int

const (
	RegionBulk Region = iota
	RegionQuantumWell
)

func (r Region) String() string {
	switch r {
	case RegionBulk:
		return "bulk"
	case RegionQuantumWell:
		return "quantum-well"
	}
	return "unknown"
}

type Grid struct {
	Position float64 // cm
	Region   Region
	Active   bool // contributes gain to the lasing mode
	Material *material.Material

	Temperature    float64 // K
	Potential      float64 // V
	ThermalVoltage float64 // V

	BandGap         float64 // eV
	Affinity        float64 // eV
	Permittivity    float64 // F/cm
	IntrinsicConc   float64 // cm^-3
	TrapElectron    float64 // SRH n1 (cm^-3)
	TrapHole        float64 // SRH p1 (cm^-3)
	Radiative       float64 // cm^3/s
	RefractiveIndex float64
	Confinement     float64 // bound-state overlap scaling radiative rate and gain

	ThermalConductivity      float64 // W/(cm K)
	DerivThermalConductivity float64

	TotalCharge float64 // cm^-3
	Field       float64 // V/cm

	ModeIntensity     float64 // |E|^2 normalised to unit average over the cavity
	PhotonDensity     float64 // cm^-3
	PhotonEnergy      float64 // eV
	GroupVelocity     float64 // cm/s
	IncidentFlux      float64 // photons/(cm^2 s)
	IncidentEnergy    float64 // eV
	OpticalGeneration float64 // cm^-3 s^-1

	B2BRecomb   float64 // cm^-3 s^-1
	SRHRecomb   float64
	AugerRecomb float64
	StimRecomb  float64
	TotalRecomb float64 // net of optical generation

	Gain float64 // cm^-1

	JouleHeat   float64 // W/cm^3
	RecombHeat  float64
	OpticalHeat float64
	StimHeat    float64
	TotalHeat   float64
}

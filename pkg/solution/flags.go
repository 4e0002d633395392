package solution

// UpdateFlags marks which derived quantities are stale. The set is owned by a
// Solution and reset at the start of every solve pass.
type UpdateFlags uint8

const (
	UpdateTemperature UpdateFlags = 1 << iota
	UpdatePotential
	UpdateQuantumWells
	UpdateOptical // mode field
	UpdateIncident
	UpdateThermEmis

	updateAll = UpdateTemperature | UpdatePotential | UpdateQuantumWells | UpdateOptical | UpdateIncident | UpdateThermEmis
)

func (f *UpdateFlags) Set(mask UpdateFlags)     { *f |= mask }
func (f *UpdateFlags) Clear(mask UpdateFlags)   { *f &^= mask }
func (f UpdateFlags) Has(mask UpdateFlags) bool { return f&mask != 0 }

// Reset marks everything stale.
func (f *UpdateFlags) Reset() { *f = updateAll }

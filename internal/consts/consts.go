package consts

const (
	CHARGE       = 1.602176634e-19  // Elementary charge (C)
	BOLTZMANN    = 1.380649e-23     // Boltzmann constant (J/K)
	BOLTZMANN_EV = 8.617333262e-5   // Boltzmann constant (eV/K)
	KELVIN       = 273.15           // Kelvin temperature (K)
	PERMITTIVITY = 8.8541878128e-14 // Vacuum permittivity (F/cm)
	PLANCK       = 6.62607015e-34   // Planck constant (J s)
	HBAR         = 1.054571817e-34  // Reduced Planck constant (J s)
	ELECTRON     = 9.1093837015e-31 // Electron rest mass (kg)
	LIGHT        = 2.99792458e10    // Speed of light (cm/s)
	REFTEMP      = 300.0            // Reference temperature of material data (K)

	// hbar^2/(2 m0) in eV cm^2
	HBAR2_2M0 = HBAR * HBAR / (2 * ELECTRON) / CHARGE * 1e4
	// h*c in eV cm
	PLANCK_LIGHT = PLANCK * LIGHT / CHARGE
)

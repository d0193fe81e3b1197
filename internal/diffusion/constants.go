package diffusion

// Physical constants (SI, CODATA 2018 exact values where defined).
const (
	// Boltzmann is the Boltzmann constant in J/K.
	Boltzmann = 1.380649e-23

	// Avogadro is the Avogadro constant in 1/mol.
	Avogadro = 6.02214076e23

	// WaterViscosity20C is the dynamic viscosity of water at 20 C in Pa*s.
	WaterViscosity20C = 1.0016e-3

	// RoomTempK is a conventional room temperature in kelvin.
	RoomTempK = 293.15
)

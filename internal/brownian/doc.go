// Package brownian simulates 3-D Brownian motion of particle populations
// in a box with confocal emission sampling.
//
// The package defines the core types of a trajectory simulation:
//
//   - [Box]: the simulation volume
//   - [Population]: particles with diffusion coefficients and start positions
//   - [Boundary]: periodic or mirror folding at the box faces
//   - [Simulator]: chunked trajectory and emission runs
//   - [Ensemble]: independent replicas with derived seeds
//
// # Example
//
//	pop, _ := brownian.NewPopulation(20, 1.2e-11, box, rng)
//	sim := brownian.New(pop, box, psf.NewGaussian(), brownian.Periodic{})
//	result, _ := sim.Run(ctx, cfg)
//
// # Thread Safety
//
// Simulator instances are NOT thread-safe. For parallel replicas use the
// [Ensemble] type, which gives every run its own simulator and seed.
package brownian

// Package diffusion evaluates the closed-form relations of translational
// Brownian motion.
//
// All quantities are SI unless a [Unit] says otherwise:
//
//   - [StokesEinstein]: diffusion coefficient of a sphere in a viscous fluid
//   - [CoefficientFromSpot]: diffusion coefficient from an observation
//     volume and a residence time
//   - [Sigma]: standard deviation of displacement after a given time
//   - [Time]: time needed to diffuse across a given distance
//   - [Rescale] / [ToSI]: linear unit conversions for coefficients
//
// Every operation validates its inputs and reports failures by wrapping
// [ErrInvalidArgument], so callers can match with errors.Is.
//
// # Dimensions
//
// Sigma, Time and CoefficientFromSpot take the number of spatial
// dimensions N explicitly. The mean squared displacement of an
// N-dimensional Wiener process is 2*N*D*t; the familiar 1-D, 2-D and 3-D
// prefactors 2, 4 and 6 all come from the same N.
package diffusion

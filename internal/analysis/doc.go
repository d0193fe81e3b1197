// Package analysis recovers diffusion properties from simulated data.
//
// The package includes tools for characterizing trajectories and
// intensity traces:
//
//   - [Autocorrelation]: normalized intensity fluctuation ACF
//   - [CorrelationTime]: half-decay time of an ACF
//   - [MSDCurve]: time- and particle-averaged mean squared displacement
//   - [FitD]: diffusion coefficient from an MSD curve
//   - [FirstPassage]: exit time from a sphere around the start point
//   - [ProjectionASCII]: ASCII scatter of an x-y trajectory projection
//
// # Recovering D
//
// The MSD of free diffusion grows linearly, msd(t) = 2*N*D*t, so a fit
// through the origin gives back the input coefficient:
//
//	msd := analysis.MSDCurve(result.Positions, 100)
//	d := analysis.FitD(msd, cfg.TStep, 3)
package analysis

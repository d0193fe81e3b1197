package analysis

// Autocorrelation computes the normalized autocorrelation of the
// fluctuations of an intensity trace. The result has the same length
// as the input, starts at 1 for any non-flat signal and uses the
// unbiased estimator (each lag divided by its overlap count).
//
// The correlation is evaluated through the power spectrum, so the cost
// is O(n log n) rather than O(n^2).
func Autocorrelation(intensity []float64) []float64 {
	n := len(intensity)
	if n == 0 {
		return nil
	}

	mean := 0.0
	for _, v := range intensity {
		mean += v
	}
	mean /= float64(n)

	// Pad to at least twice the signal length so the circular
	// correlation does not wrap into the lags we keep.
	padded := make([]float64, nextPow2(2*n))
	for i, v := range intensity {
		padded[i] = v - mean
	}

	spec := FFT(padded)
	for i, c := range spec {
		re, im := real(c), imag(c)
		spec[i] = complex(re*re+im*im, 0)
	}
	corr := IFFT(spec)

	acf := make([]float64, n)
	for k := range acf {
		acf[k] = real(corr[k]) / float64(n-k)
	}

	// A flat trace has no fluctuations to normalize by.
	if acf[0] == 0 {
		return acf
	}
	norm := acf[0]
	for k := range acf {
		acf[k] /= norm
	}
	return acf
}

// CorrelationTime returns the lag time at which acf first decays to
// half its zero-lag value, linearly interpolated between samples. The
// second return is false when the curve never reaches half.
func CorrelationTime(acf []float64, dt float64) (float64, bool) {
	if len(acf) == 0 || acf[0] <= 0 || dt <= 0 {
		return 0, false
	}

	half := acf[0] / 2
	for k := 1; k < len(acf); k++ {
		if acf[k] > half {
			continue
		}
		prev := acf[k-1]
		frac := 0.5
		if prev != acf[k] {
			frac = (prev - half) / (prev - acf[k])
		}
		return (float64(k-1) + frac) * dt, true
	}
	return 0, false
}

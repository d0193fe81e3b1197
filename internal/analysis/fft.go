package analysis

import (
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

// FFT computes the discrete Fourier transform of a real signal.
func FFT(data []float64) []complex128 {
	return fft.FFTReal(data)
}

// IFFT inverts FFT, returning the time-domain signal scaled by 1/n.
func IFFT(spec []complex128) []complex128 {
	if len(spec) == 0 {
		return nil
	}
	return fft.IFFT(spec)
}

// PowerSpectrum returns the amplitude of the first half of the
// spectrum, zero-padding the signal to a power of two.
func PowerSpectrum(data []float64) []float64 {
	padded := make([]float64, nextPow2(len(data)))
	copy(padded, data)

	spec := fft.FFTReal(padded)
	ps := make([]float64, len(spec)/2)
	for i := range ps {
		ps[i] = cmplx.Abs(spec[i])
	}
	return ps
}

func nextPow2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

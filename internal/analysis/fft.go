package analysis

import (
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

// FFT returns the discrete Fourier transform of a real series of any length.
func FFT(data []float64) []complex128 {
	if len(data) == 0 {
		return nil
	}
	return fft.FFTReal(data)
}

// PowerSpectrum returns the magnitudes of the first len(data)/2 bins.
func PowerSpectrum(data []float64) []float64 {
	spectrum := FFT(data)
	ps := make([]float64, len(spectrum)/2)

	for i := range ps {
		ps[i] = cmplx.Abs(spectrum[i])
	}

	return ps
}

// Detrend returns data with its mean removed.
func Detrend(data []float64) []float64 {
	if len(data) == 0 {
		return nil
	}
	mean := 0.0
	for _, v := range data {
		mean += v
	}
	mean /= float64(len(data))

	out := make([]float64, len(data))
	for i, v := range data {
		out[i] = v - mean
	}
	return out
}

func peak(data []float64) float64 {
	m := 0.0
	for _, v := range data {
		m = max(m, math.Abs(v))
	}
	return m
}

// DominantPeriod estimates the period, in units of dt, of the strongest
// oscillation in series. The mean is removed before the transform, and the
// resolution is one bin of len(series). A series whose strongest
// non-DC bin is at rounding level returns ErrNoOscillation.
func DominantPeriod(series []float64, dt float64) (float64, error) {
	if len(series) < 4 {
		return 0, ErrShortSeries
	}

	ps := PowerSpectrum(Detrend(series))

	best := 1
	for k := 2; k < len(ps); k++ {
		if ps[k] > ps[best] {
			best = k
		}
	}
	if ps[best] <= 1e-12*peak(series)*float64(len(series)) {
		return 0, ErrNoOscillation
	}

	return float64(len(series)) * dt / float64(best), nil
}

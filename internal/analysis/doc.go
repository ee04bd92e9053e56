// Package analysis provides spectral tools for recorded simulation series.
//
//   - [FFT]: discrete Fourier transform of a real series of any length
//   - [PowerSpectrum]: magnitudes of the positive-frequency bins
//   - [DominantPeriod]: period of the strongest non-DC component
//
// # Orbital Periods
//
// Recording one coordinate of an orbiting body every tick and passing the
// series to [DominantPeriod] estimates the orbital period in simulated time:
//
//	period, err := analysis.DominantPeriod(xs, dt)
package analysis

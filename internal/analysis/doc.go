// Package analysis inspects recorded metric series of a run.
//
//   - [PowerSpectrum] and [DominantFrequency]: how the net swings, from the
//     sag or motion series
//   - [SettleTick]: when the net came to rest
//
// A stiffness of 1 makes an unpinned pair flip between two lengths every
// tick; that shows up as a peak at the Nyquist frequency of the series.
package analysis

// Package predict reduces an RM time series to a time-independent,
// per-frequency ionospheric correction.
//
// Integrate computes Θ(ν) = (1/T) ∫ exp(2i λ(ν)² RM(t)) dt with the
// trapezoidal rule; MeanRM gives the time-averaged rotation measure.
// Depolarization (|Θ|) and PolAngleRotation (arg Θ / 2) summarise what the
// ionosphere did to the signal over the observation.
//
// Write/Read handle the prediction file exchanged with frion-correct:
// '#' comments followed by "freq_hz theta_re theta_im" rows.
package predict

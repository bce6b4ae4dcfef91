// Package correct applies a prediction to Stokes Q/U data.
//
// Apply divides the complex polarization Q+iU by the per-channel modulation
// Θ in place. ApplyToFiles is the do-everything path used by frion-correct:
// prediction file + two input cubes in, two corrected cubes out, with
// dimension and frequency-grid consistency checks in between.
package correct

// Package cube reads and writes FITS image cubes for the correction step.
//
// A Cube holds the flattened pixel data in FITS (Fortran) order plus the
// header cards. FreqAxis locates the frequency axis by CTYPE substring
// match, FreqCenters evaluates its linear WCS, and ChannelIndex maps flat
// data indices to channels with stride arithmetic so per-channel operations
// never need to reorder the array.
//
// Read converts BITPIX -32/-64 data to float32; Write always emits -32 and
// carries the non-structural cards over, appending HISTORY entries.
package cube

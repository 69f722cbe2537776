// Package itm is a pure Go implementation of the Irregular Terrain Model
// (Longley-Rice) for point-to-point and area predictions.
//
// The entry points mirror the C library's exported functions: scalar link
// parameters are passed by value, outputs through pointers, and the return
// value is a status code. A status of Success or SuccessWithWarnings means
// the outputs are usable; any value of 1000 or above names the first input
// that failed validation and leaves the outputs untouched.
//
// Terrain profiles use the ITM convention:
//
//	pfl[0]      number of intervals (points - 1)
//	pfl[1]      spacing between points, meters
//	pfl[2:]     elevations, meters, transmitter first
//
// Time, location, situation, confidence and reliability are percentages in
// the open interval (0, 100).
package itm

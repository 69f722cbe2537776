// Package dispatch routes each of the eight ITM operations to exactly one
// engine routine.
//
// Geometry is enforced by type: PointToPoint carries a terrain profile and
// no site criteria, Area carries site criteria, distance and irregularity
// and no profile. Every call hands the engine zeroed output slots, passes
// status and warnings through untouched, and copies the diagnostics out
// before returning. Nothing is retained between calls.
//
//	d := dispatch.New(dispatch.Native{})
//	r, err := d.AreaTLS(ctx, area, dispatch.TLS{Time: 50, Location: 50, Situation: 50})
//
// err is reserved for failures outside the engine's status codes, such as
// a trapped WebAssembly engine. A non-zero r.Status is not an error.
package dispatch

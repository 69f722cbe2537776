package dispatch

// Link holds the parameters shared by every geometry.
type Link struct {
	TxHeight     float64 // meters
	RxHeight     float64 // meters
	Climate      int32
	N0           float64 // surface refractivity, N-units
	FrequencyMHz float64
	Polarization int32
	Epsilon      float64 // relative permittivity
	Sigma        float64 // conductivity, S/m
	MDVar        int32
}

// PointToPoint is a link along a known terrain profile. Profile uses the
// engine's convention: pfl[0] is the number of intervals, pfl[1] the spacing
// in meters, then the elevations.
type PointToPoint struct {
	Link
	Profile []float64
}

// Area is a link described statistically instead of by a profile.
type Area struct {
	Link
	TxSiteCriteria int32
	RxSiteCriteria int32
	DistanceKm     float64
	DeltaH         float64 // terrain irregularity, meters
}

// TLS selects time/location/situation variability, each a percentage.
type TLS struct {
	Time      float64
	Location  float64
	Situation float64
}

// CR selects confidence/reliability variability, each a percentage.
type CR struct {
	Confidence  float64
	Reliability float64
}

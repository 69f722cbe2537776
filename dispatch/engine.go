package dispatch

import (
	"context"

	"github.com/wippyai/itm-bind/itm"
)

// Engine is the collaborator that computes propagation loss. Each routine
// writes attenuation and warnings through the output pointers and returns
// the engine status. A non-nil error means the engine could not run at all
// (a trapped guest, exhausted guest memory) and is never a status code.
type Engine interface {
	P2PTLS(ctx context.Context, g PointToPoint, v TLS, aDB *float64, warnings *int64) (int, error)
	P2PTLSEx(ctx context.Context, g PointToPoint, v TLS, aDB *float64, warnings *int64, iv *itm.IntermediateValues) (int, error)
	P2PCR(ctx context.Context, g PointToPoint, v CR, aDB *float64, warnings *int64) (int, error)
	P2PCREx(ctx context.Context, g PointToPoint, v CR, aDB *float64, warnings *int64, iv *itm.IntermediateValues) (int, error)
	AreaTLS(ctx context.Context, g Area, v TLS, aDB *float64, warnings *int64) (int, error)
	AreaTLSEx(ctx context.Context, g Area, v TLS, aDB *float64, warnings *int64, iv *itm.IntermediateValues) (int, error)
	AreaCR(ctx context.Context, g Area, v CR, aDB *float64, warnings *int64) (int, error)
	AreaCREx(ctx context.Context, g Area, v CR, aDB *float64, warnings *int64, iv *itm.IntermediateValues) (int, error)
}

// Native runs the pure-Go engine in process. It never returns an error.
type Native struct{}

var _ Engine = Native{}

func (Native) P2PTLS(_ context.Context, g PointToPoint, v TLS, aDB *float64, warnings *int64) (int, error) {
	l := g.Link
	return itm.P2PTLS(l.TxHeight, l.RxHeight, g.Profile, int(l.Climate), l.N0, l.FrequencyMHz,
		int(l.Polarization), l.Epsilon, l.Sigma, int(l.MDVar), v.Time, v.Location, v.Situation,
		aDB, warnings), nil
}

func (Native) P2PTLSEx(_ context.Context, g PointToPoint, v TLS, aDB *float64, warnings *int64, iv *itm.IntermediateValues) (int, error) {
	l := g.Link
	return itm.P2PTLSEx(l.TxHeight, l.RxHeight, g.Profile, int(l.Climate), l.N0, l.FrequencyMHz,
		int(l.Polarization), l.Epsilon, l.Sigma, int(l.MDVar), v.Time, v.Location, v.Situation,
		aDB, warnings, iv), nil
}

func (Native) P2PCR(_ context.Context, g PointToPoint, v CR, aDB *float64, warnings *int64) (int, error) {
	l := g.Link
	return itm.P2PCR(l.TxHeight, l.RxHeight, g.Profile, int(l.Climate), l.N0, l.FrequencyMHz,
		int(l.Polarization), l.Epsilon, l.Sigma, int(l.MDVar), v.Confidence, v.Reliability,
		aDB, warnings), nil
}

func (Native) P2PCREx(_ context.Context, g PointToPoint, v CR, aDB *float64, warnings *int64, iv *itm.IntermediateValues) (int, error) {
	l := g.Link
	return itm.P2PCREx(l.TxHeight, l.RxHeight, g.Profile, int(l.Climate), l.N0, l.FrequencyMHz,
		int(l.Polarization), l.Epsilon, l.Sigma, int(l.MDVar), v.Confidence, v.Reliability,
		aDB, warnings, iv), nil
}

func (Native) AreaTLS(_ context.Context, g Area, v TLS, aDB *float64, warnings *int64) (int, error) {
	l := g.Link
	return itm.AreaTLS(l.TxHeight, l.RxHeight, int(g.TxSiteCriteria), int(g.RxSiteCriteria),
		g.DistanceKm, g.DeltaH, int(l.Climate), l.N0, l.FrequencyMHz, int(l.Polarization),
		l.Epsilon, l.Sigma, int(l.MDVar), v.Time, v.Location, v.Situation, aDB, warnings), nil
}

func (Native) AreaTLSEx(_ context.Context, g Area, v TLS, aDB *float64, warnings *int64, iv *itm.IntermediateValues) (int, error) {
	l := g.Link
	return itm.AreaTLSEx(l.TxHeight, l.RxHeight, int(g.TxSiteCriteria), int(g.RxSiteCriteria),
		g.DistanceKm, g.DeltaH, int(l.Climate), l.N0, l.FrequencyMHz, int(l.Polarization),
		l.Epsilon, l.Sigma, int(l.MDVar), v.Time, v.Location, v.Situation, aDB, warnings, iv), nil
}

func (Native) AreaCR(_ context.Context, g Area, v CR, aDB *float64, warnings *int64) (int, error) {
	l := g.Link
	return itm.AreaCR(l.TxHeight, l.RxHeight, int(g.TxSiteCriteria), int(g.RxSiteCriteria),
		g.DistanceKm, g.DeltaH, int(l.Climate), l.N0, l.FrequencyMHz, int(l.Polarization),
		l.Epsilon, l.Sigma, int(l.MDVar), v.Confidence, v.Reliability, aDB, warnings), nil
}

func (Native) AreaCREx(_ context.Context, g Area, v CR, aDB *float64, warnings *int64, iv *itm.IntermediateValues) (int, error) {
	l := g.Link
	return itm.AreaCREx(l.TxHeight, l.RxHeight, int(g.TxSiteCriteria), int(g.RxSiteCriteria),
		g.DistanceKm, g.DeltaH, int(l.Climate), l.N0, l.FrequencyMHz, int(l.Polarization),
		l.Epsilon, l.Sigma, int(l.MDVar), v.Confidence, v.Reliability, aDB, warnings, iv), nil
}

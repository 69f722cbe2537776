package binding

import (
	"github.com/wippyai/itm-bind/dispatch"
	"github.com/wippyai/itm-bind/transcoder"
)

// args decodes positional host values for one function. The first
// conversion error sticks; later reads return zero values.
type args struct {
	err  error
	fn   *Function
	vals []any
	next int
}

func (a *args) take() (any, string) {
	p := a.fn.Params[a.next]
	v := a.vals[a.next]
	a.next++
	return v, p.Name
}

func (a *args) f64() float64 {
	v, name := a.take()
	if a.err != nil {
		return 0
	}
	f, err := transcoder.Float64(v, a.fn.Name, name)
	if err != nil {
		a.err = err
	}
	return f
}

func (a *args) s32() int32 {
	v, name := a.take()
	if a.err != nil {
		return 0
	}
	i, err := transcoder.Int32(v, a.fn.Name, name)
	if err != nil {
		a.err = err
	}
	return i
}

func (a *args) profile() []float64 {
	v, name := a.take()
	if a.err != nil {
		return nil
	}
	pfl, err := transcoder.Profile(v, a.fn.Name, name)
	if err != nil {
		a.err = err
	}
	return pfl
}

func (a *args) pointToPoint() dispatch.PointToPoint {
	var g dispatch.PointToPoint
	g.TxHeight = a.f64()
	g.RxHeight = a.f64()
	g.Profile = a.profile()
	g.Link = a.link(g.Link)
	return g
}

func (a *args) area() dispatch.Area {
	var g dispatch.Area
	g.TxHeight = a.f64()
	g.RxHeight = a.f64()
	g.TxSiteCriteria = a.s32()
	g.RxSiteCriteria = a.s32()
	g.DistanceKm = a.f64()
	g.DeltaH = a.f64()
	g.Link = a.link(g.Link)
	return g
}

// link reads the parameters following the geometry-specific ones.
func (a *args) link(l dispatch.Link) dispatch.Link {
	l.Climate = a.s32()
	l.N0 = a.f64()
	l.FrequencyMHz = a.f64()
	l.Polarization = a.s32()
	l.Epsilon = a.f64()
	l.Sigma = a.f64()
	l.MDVar = a.s32()
	return l
}

func (a *args) tls() dispatch.TLS {
	return dispatch.TLS{
		Time:      a.f64(),
		Location:  a.f64(),
		Situation: a.f64(),
	}
}

func (a *args) cr() dispatch.CR {
	return dispatch.CR{
		Confidence:  a.f64(),
		Reliability: a.f64(),
	}
}

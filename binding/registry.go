package binding

import (
	"context"
	"reflect"
	"sync"

	"go.bytecodealliance.org/wit"

	"github.com/wippyai/itm-bind/dispatch"
	"github.com/wippyai/itm-bind/errors"
	"github.com/wippyai/itm-bind/result"
	"github.com/wippyai/itm-bind/transcoder"
)

// Record names.
const (
	ResultName   = "ITMResult"
	ResultExName = "ITMResultEx"
)

// Geometry of an entry point.
type Geometry string

const (
	PointToPoint Geometry = "point-to-point"
	Area         Geometry = "area"
)

// Variability parameter set of an entry point.
type Variability string

const (
	TimeLocationSituation Variability = "tls"
	ConfidenceReliability Variability = "cr"
)

type Param struct {
	Type wit.Type
	Name string
}

// Function is one registered entry point.
type Function struct {
	Result      *Record
	invoke      func(ctx context.Context, d *dispatch.Dispatcher, a *args) (any, error)
	Name        string
	Geometry    Geometry
	Variability Variability
	Params      []Param
	Extended    bool
}

// Registry holds the record declarations and the eight entry points.
type Registry struct {
	funcs    map[string]*Function
	Result   *Record
	ResultEx *Record
	ordered  []*Function
}

var (
	defaultRegistry *Registry
	defaultOnce     sync.Once
)

// Default returns the process-wide registry, built on first use.
func Default() *Registry {
	defaultOnce.Do(func() {
		defaultRegistry = newRegistry()
	})
	return defaultRegistry
}

var profileType = &wit.TypeDef{Kind: &wit.List{Type: wit.F64{}}}

func newRegistry() *Registry {
	calc := transcoder.NewLayoutCalculator()

	compactFields := []fieldDecl{
		{wit.S32{}, "status"},
		{wit.S32{}, "warnings"},
		{wit.F64{}, "A_db"},
	}
	extendedFields := append(append([]fieldDecl{}, compactFields...),
		fieldDecl{wit.F64{}, "theta_hzn_0"},
		fieldDecl{wit.F64{}, "theta_hzn_1"},
		fieldDecl{wit.F64{}, "d_hzn__meter_0"},
		fieldDecl{wit.F64{}, "d_hzn__meter_1"},
		fieldDecl{wit.F64{}, "h_e__meter_0"},
		fieldDecl{wit.F64{}, "h_e__meter_1"},
		fieldDecl{wit.F64{}, "N_s"},
		fieldDecl{wit.F64{}, "delta_h__meter"},
		fieldDecl{wit.F64{}, "A_ref__db"},
		fieldDecl{wit.F64{}, "A_fs__db"},
		fieldDecl{wit.F64{}, "d__km"},
		fieldDecl{wit.S32{}, "mode"},
	)

	r := &Registry{
		funcs:    make(map[string]*Function, 8),
		Result:   newRecord(calc, ResultName, reflect.TypeFor[result.Compact](), compactFields),
		ResultEx: newRecord(calc, ResultExName, reflect.TypeFor[result.FlatExtended](), extendedFields),
	}

	r.add(dispatch.OpP2PTLS, PointToPoint, TimeLocationSituation, false,
		func(ctx context.Context, d *dispatch.Dispatcher, a *args) (any, error) {
			g, v := a.pointToPoint(), a.tls()
			if a.err != nil {
				return nil, a.err
			}
			return d.P2PTLS(ctx, g, v)
		})
	r.add(dispatch.OpP2PCR, PointToPoint, ConfidenceReliability, false,
		func(ctx context.Context, d *dispatch.Dispatcher, a *args) (any, error) {
			g, v := a.pointToPoint(), a.cr()
			if a.err != nil {
				return nil, a.err
			}
			return d.P2PCR(ctx, g, v)
		})
	r.add(dispatch.OpP2PTLSEx, PointToPoint, TimeLocationSituation, true,
		func(ctx context.Context, d *dispatch.Dispatcher, a *args) (any, error) {
			g, v := a.pointToPoint(), a.tls()
			if a.err != nil {
				return nil, a.err
			}
			return flat(d.P2PTLSEx(ctx, g, v))
		})
	r.add(dispatch.OpP2PCREx, PointToPoint, ConfidenceReliability, true,
		func(ctx context.Context, d *dispatch.Dispatcher, a *args) (any, error) {
			g, v := a.pointToPoint(), a.cr()
			if a.err != nil {
				return nil, a.err
			}
			return flat(d.P2PCREx(ctx, g, v))
		})
	r.add(dispatch.OpAreaTLS, Area, TimeLocationSituation, false,
		func(ctx context.Context, d *dispatch.Dispatcher, a *args) (any, error) {
			g, v := a.area(), a.tls()
			if a.err != nil {
				return nil, a.err
			}
			return d.AreaTLS(ctx, g, v)
		})
	r.add(dispatch.OpAreaCR, Area, ConfidenceReliability, false,
		func(ctx context.Context, d *dispatch.Dispatcher, a *args) (any, error) {
			g, v := a.area(), a.cr()
			if a.err != nil {
				return nil, a.err
			}
			return d.AreaCR(ctx, g, v)
		})
	r.add(dispatch.OpAreaTLSEx, Area, TimeLocationSituation, true,
		func(ctx context.Context, d *dispatch.Dispatcher, a *args) (any, error) {
			g, v := a.area(), a.tls()
			if a.err != nil {
				return nil, a.err
			}
			return flat(d.AreaTLSEx(ctx, g, v))
		})
	r.add(dispatch.OpAreaCREx, Area, ConfidenceReliability, true,
		func(ctx context.Context, d *dispatch.Dispatcher, a *args) (any, error) {
			g, v := a.area(), a.cr()
			if a.err != nil {
				return nil, a.err
			}
			return flat(d.AreaCREx(ctx, g, v))
		})

	return r
}

func flat(e result.Extended, err error) (any, error) {
	if err != nil {
		return nil, err
	}
	return e.Flat(), nil
}

func (r *Registry) add(name string, g Geometry, v Variability, extended bool,
	invoke func(context.Context, *dispatch.Dispatcher, *args) (any, error)) {
	fn := &Function{
		Name:        name,
		Geometry:    g,
		Variability: v,
		Extended:    extended,
		Params:      paramsFor(g, v),
		Result:      r.Result,
		invoke:      invoke,
	}
	if extended {
		fn.Result = r.ResultEx
	}
	r.funcs[name] = fn
	r.ordered = append(r.ordered, fn)
}

func paramsFor(g Geometry, v Variability) []Param {
	params := []Param{
		{wit.F64{}, "h_tx__meter"},
		{wit.F64{}, "h_rx__meter"},
	}
	switch g {
	case PointToPoint:
		params = append(params, Param{profileType, "pfl"})
	case Area:
		params = append(params,
			Param{wit.S32{}, "tx_site_criteria"},
			Param{wit.S32{}, "rx_site_criteria"},
			Param{wit.F64{}, "d__km"},
			Param{wit.F64{}, "delta_h__meter"},
		)
	}
	params = append(params,
		Param{wit.S32{}, "climate"},
		Param{wit.F64{}, "N_0"},
		Param{wit.F64{}, "f__mhz"},
		Param{wit.S32{}, "pol"},
		Param{wit.F64{}, "epsilon"},
		Param{wit.F64{}, "sigma"},
		Param{wit.S32{}, "mdvar"},
	)
	switch v {
	case TimeLocationSituation:
		params = append(params,
			Param{wit.F64{}, "time"},
			Param{wit.F64{}, "location"},
			Param{wit.F64{}, "situation"},
		)
	case ConfidenceReliability:
		params = append(params,
			Param{wit.F64{}, "confidence"},
			Param{wit.F64{}, "reliability"},
		)
	}
	return params
}

// Lookup returns the entry point registered under name.
func (r *Registry) Lookup(name string) (*Function, error) {
	fn, ok := r.funcs[name]
	if !ok {
		return nil, errors.NotFound(errors.PhaseBind, "function", name)
	}
	return fn, nil
}

// Functions returns the entry points in registration order.
func (r *Registry) Functions() []*Function {
	return append([]*Function(nil), r.ordered...)
}

// Record returns the record declared under name.
func (r *Registry) Record(name string) (*Record, error) {
	switch name {
	case ResultName:
		return r.Result, nil
	case ResultExName:
		return r.ResultEx, nil
	}
	return nil, errors.NotFound(errors.PhaseBind, "record", name)
}

// ParamIndex returns the position of the named parameter, or -1.
func (f *Function) ParamIndex(name string) int {
	for i, p := range f.Params {
		if p.Name == name {
			return i
		}
	}
	return -1
}

// Signature renders the function in WIT syntax.
func (f *Function) Signature() string {
	s := f.Name + ": func("
	for i, p := range f.Params {
		if i > 0 {
			s += ", "
		}
		s += p.Name + ": " + witTypeName(p.Type)
	}
	return s + ") -> " + f.Result.Name()
}

func witTypeName(t wit.Type) string {
	switch t := t.(type) {
	case wit.F64:
		return "f64"
	case wit.S32:
		return "s32"
	case *wit.TypeDef:
		if t.Name != nil {
			return *t.Name
		}
		if l, ok := t.Kind.(*wit.List); ok {
			return "list<" + witTypeName(l.Type) + ">"
		}
	}
	return "unknown"
}

package binding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/wippyai/itm-bind/dispatch"
	"github.com/wippyai/itm-bind/errors"
)

// Host exposes the registry to dynamic callers: positional host values in,
// host records out.
type Host struct {
	registry   *Registry
	dispatcher *dispatch.Dispatcher
	observer   dispatch.Observer
}

type HostOption func(*Host)

// WithRegistry replaces the default registry.
func WithRegistry(r *Registry) HostOption {
	return func(h *Host) { h.registry = r }
}

// WithBoundaryObserver reports calls rejected before reaching the
// dispatcher, such as unconvertible arguments.
func WithBoundaryObserver(o dispatch.Observer) HostOption {
	return func(h *Host) { h.observer = o }
}

func NewHost(d *dispatch.Dispatcher, opts ...HostOption) *Host {
	h := &Host{dispatcher: d}
	for _, opt := range opts {
		opt(h)
	}
	if h.registry == nil {
		h.registry = Default()
	}
	return h
}

func (h *Host) Registry() *Registry {
	return h.registry
}

// Invoke converts args, runs the named function and returns its Go result:
// result.Compact for compact functions, result.FlatExtended for extended
// ones.
func (h *Host) Invoke(ctx context.Context, name string, vals ...any) (any, *Function, error) {
	fn, err := h.registry.Lookup(name)
	if err != nil {
		h.reject(name, err)
		return nil, nil, err
	}
	if len(vals) != len(fn.Params) {
		err := errors.Arity(name, len(fn.Params), len(vals))
		h.reject(name, err)
		return nil, fn, err
	}

	a := &args{fn: fn, vals: vals}
	out, err := fn.invoke(ctx, h.dispatcher, a)
	if err != nil {
		if a.err != nil {
			h.reject(name, err)
		}
		return nil, fn, err
	}
	return out, fn, nil
}

// Call runs the named function and returns its result record as a map
// keyed by the record's field names.
func (h *Host) Call(ctx context.Context, name string, vals ...any) (map[string]any, error) {
	out, fn, err := h.Invoke(ctx, name, vals...)
	if err != nil {
		return nil, err
	}
	return fn.Result.Map(out)
}

// CallJSON decodes raw as a JSON array of positional arguments, or an
// object keyed by parameter name, and returns the result record as JSON.
// Numbers are decoded as json.Number so integers survive intact.
func (h *Host) CallJSON(ctx context.Context, name string, raw []byte) ([]byte, error) {
	fn, err := h.registry.Lookup(name)
	if err != nil {
		h.reject(name, err)
		return nil, err
	}
	vals, err := decodeJSONArgs(fn, raw)
	if err != nil {
		h.reject(name, err)
		return nil, err
	}
	rec, err := h.Call(ctx, name, vals...)
	if err != nil {
		return nil, err
	}
	return fn.Result.EncodeJSON(rec)
}

func decodeJSONArgs(fn *Function, raw []byte) ([]any, error) {
	raw = bytes.TrimSpace(raw)
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	decode := func(v any) error {
		if err := dec.Decode(v); err != nil {
			return errors.Wrap(errors.PhaseConvert, errors.KindInvalidData, err,
				fmt.Sprintf("decode JSON arguments for %s", fn.Name))
		}
		if _, err := dec.Token(); err != io.EOF {
			return errors.New(errors.PhaseConvert, errors.KindInvalidData).
				Path(fn.Name).
				Detail("trailing data after JSON arguments at offset %d", dec.InputOffset()).
				Build()
		}
		return nil
	}

	if len(raw) > 0 && raw[0] == '{' {
		var named map[string]any
		if err := decode(&named); err != nil {
			return nil, err
		}
		vals := make([]any, len(fn.Params))
		for i, p := range fn.Params {
			v, ok := named[p.Name]
			if !ok {
				return nil, errors.New(errors.PhaseConvert, errors.KindInvalidInput).
					Path(fn.Name, p.Name).
					Detail("missing argument").
					Build()
			}
			vals[i] = v
		}
		if len(named) != len(fn.Params) {
			for k := range named {
				if fn.ParamIndex(k) < 0 {
					return nil, errors.New(errors.PhaseConvert, errors.KindInvalidInput).
						Path(fn.Name, k).
						Detail("unknown argument").
						Build()
				}
			}
		}
		return vals, nil
	}

	var vals []any
	if err := decode(&vals); err != nil {
		return nil, err
	}
	return vals, nil
}

func (h *Host) reject(name string, err error) {
	if h.observer != nil {
		h.observer.ObserveCall(name, 0, err, 0)
	}
}

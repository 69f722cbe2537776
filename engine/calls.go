package engine

import (
	"context"
	"encoding/binary"
	"math"

	"github.com/tetratelabs/wazero/api"

	"github.com/wippyai/itm-bind/dispatch"
	"github.com/wippyai/itm-bind/errors"
	"github.com/wippyai/itm-bind/itm"
	"github.com/wippyai/itm-bind/transcoder"
)

// Output block allocated per call. warnings is a C long, 32 bits on wasm32.
const (
	aDBOffset      = 0
	warningsOffset = 8
	ivOffset       = 16

	// IntermediateValuesSize is the wasm32 C layout of IntermediateValues:
	// eleven doubles, an int mode, tail padding to 8.
	IntermediateValuesSize = 96

	outputSize = ivOffset + IntermediateValuesSize
)

// frame accumulates raw core parameters in C argument order.
type frame struct {
	params []uint64
}

func (f *frame) f64(v float64) { f.params = append(f.params, api.EncodeF64(v)) }
func (f *frame) i32(v int32)   { f.params = append(f.params, api.EncodeI32(v)) }
func (f *frame) ptr(v uint32)  { f.params = append(f.params, api.EncodeU32(v)) }

func (f *frame) link(l dispatch.Link) {
	f.i32(l.Climate)
	f.f64(l.N0)
	f.f64(l.FrequencyMHz)
	f.i32(l.Polarization)
	f.f64(l.Epsilon)
	f.f64(l.Sigma)
	f.i32(l.MDVar)
}

func (f *frame) tls(v dispatch.TLS) {
	f.f64(v.Time)
	f.f64(v.Location)
	f.f64(v.Situation)
}

func (f *frame) cr(v dispatch.CR) {
	f.f64(v.Confidence)
	f.f64(v.Reliability)
}

func (e *Engine) P2PTLS(ctx context.Context, g dispatch.PointToPoint, v dispatch.TLS, aDB *float64, warnings *int64) (int, error) {
	return e.pointToPoint(ctx, "ITM_P2P_TLS", g, func(f *frame) { f.tls(v) }, aDB, warnings, nil)
}

func (e *Engine) P2PTLSEx(ctx context.Context, g dispatch.PointToPoint, v dispatch.TLS, aDB *float64, warnings *int64, iv *itm.IntermediateValues) (int, error) {
	return e.pointToPoint(ctx, "ITM_P2P_TLS", g, func(f *frame) { f.tls(v) }, aDB, warnings, iv)
}

func (e *Engine) P2PCR(ctx context.Context, g dispatch.PointToPoint, v dispatch.CR, aDB *float64, warnings *int64) (int, error) {
	return e.pointToPoint(ctx, "ITM_P2P_CR", g, func(f *frame) { f.cr(v) }, aDB, warnings, nil)
}

func (e *Engine) P2PCREx(ctx context.Context, g dispatch.PointToPoint, v dispatch.CR, aDB *float64, warnings *int64, iv *itm.IntermediateValues) (int, error) {
	return e.pointToPoint(ctx, "ITM_P2P_CR", g, func(f *frame) { f.cr(v) }, aDB, warnings, iv)
}

func (e *Engine) AreaTLS(ctx context.Context, g dispatch.Area, v dispatch.TLS, aDB *float64, warnings *int64) (int, error) {
	return e.area(ctx, "ITM_AREA_TLS", g, func(f *frame) { f.tls(v) }, aDB, warnings, nil)
}

func (e *Engine) AreaTLSEx(ctx context.Context, g dispatch.Area, v dispatch.TLS, aDB *float64, warnings *int64, iv *itm.IntermediateValues) (int, error) {
	return e.area(ctx, "ITM_AREA_TLS", g, func(f *frame) { f.tls(v) }, aDB, warnings, iv)
}

func (e *Engine) AreaCR(ctx context.Context, g dispatch.Area, v dispatch.CR, aDB *float64, warnings *int64) (int, error) {
	return e.area(ctx, "ITM_AREA_CR", g, func(f *frame) { f.cr(v) }, aDB, warnings, nil)
}

func (e *Engine) AreaCREx(ctx context.Context, g dispatch.Area, v dispatch.CR, aDB *float64, warnings *int64, iv *itm.IntermediateValues) (int, error) {
	return e.area(ctx, "ITM_AREA_CR", g, func(f *frame) { f.cr(v) }, aDB, warnings, iv)
}

func (e *Engine) pointToPoint(ctx context.Context, name string, g dispatch.PointToPoint, variability func(*frame),
	aDB *float64, warnings *int64, iv *itm.IntermediateValues) (int, error) {
	return e.invoke(ctx, name, aDB, warnings, iv, func(f *frame, allocs *transcoder.AllocationList) error {
		// never pass a null pointer, even for an empty profile
		size, err := transcoder.ProfileSize(max(len(g.Profile), 1))
		if err != nil {
			return err
		}
		ptr, err := e.alloc.Alloc(size, 8)
		if err != nil {
			return err
		}
		allocs.Add(ptr, size, 8)
		if err := transcoder.WriteProfile(e.mem, ptr, g.Profile); err != nil {
			return err
		}

		f.f64(g.TxHeight)
		f.f64(g.RxHeight)
		f.ptr(ptr)
		f.link(g.Link)
		variability(f)
		return nil
	})
}

func (e *Engine) area(ctx context.Context, name string, g dispatch.Area, variability func(*frame),
	aDB *float64, warnings *int64, iv *itm.IntermediateValues) (int, error) {
	return e.invoke(ctx, name, aDB, warnings, iv, func(f *frame, _ *transcoder.AllocationList) error {
		f.f64(g.TxHeight)
		f.f64(g.RxHeight)
		f.i32(g.TxSiteCriteria)
		f.i32(g.RxSiteCriteria)
		f.f64(g.DistanceKm)
		f.f64(g.DeltaH)
		f.link(g.Link)
		variability(f)
		return nil
	})
}

// invoke runs one library call. Every guest allocation made for the call
// is freed before returning, on success and failure alike.
func (e *Engine) invoke(ctx context.Context, name string, aDB *float64, warnings *int64, iv *itm.IntermediateValues,
	build func(*frame, *transcoder.AllocationList) error) (int, error) {
	if iv != nil {
		name += "_Ex"
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.alloc.setContext(ctx)
	allocs := transcoder.NewAllocationList()
	defer allocs.FreeAndRelease(e.alloc)

	out, err := e.alloc.Alloc(outputSize, 8)
	if err != nil {
		return 0, err
	}
	allocs.Add(out, outputSize, 8)
	if err := e.mem.Write(out, make([]byte, outputSize)); err != nil {
		return 0, errors.OutOfBounds(errors.PhaseEngine, []string{name}, out, outputSize)
	}

	f := &frame{params: make([]uint64, 0, 20)}
	if err := build(f, allocs); err != nil {
		return 0, err
	}
	f.ptr(out + aDBOffset)
	f.ptr(out + warningsOffset)
	if iv != nil {
		f.ptr(out + ivOffset)
	}

	fn, ok := e.funcs[name]
	if !ok {
		return 0, errors.NotFound(errors.PhaseEngine, "function", name)
	}
	results, err := fn.Call(ctx, f.params...)
	if err != nil {
		return 0, errors.Trap(name, err)
	}

	data, err := e.mem.Read(out, outputSize)
	if err != nil {
		return 0, errors.OutOfBounds(errors.PhaseEngine, []string{name}, out, outputSize)
	}
	*aDB = math.Float64frombits(binary.LittleEndian.Uint64(data[aDBOffset:]))
	*warnings = int64(int32(binary.LittleEndian.Uint32(data[warningsOffset:])))
	if iv != nil {
		*iv = decodeIntermediateValues(data[ivOffset:])
	}
	return int(api.DecodeI32(results[0])), nil
}

// decodeIntermediateValues copies the C struct out of guest memory.
func decodeIntermediateValues(b []byte) itm.IntermediateValues {
	f := func(i int) float64 {
		return math.Float64frombits(binary.LittleEndian.Uint64(b[i*8:]))
	}
	return itm.IntermediateValues{
		ThetaHzn:    [2]float64{f(0), f(1)},
		DHznMeter:   [2]float64{f(2), f(3)},
		HEMeter:     [2]float64{f(4), f(5)},
		NS:          f(6),
		DeltaHMeter: f(7),
		ARefDB:      f(8),
		AFsDB:       f(9),
		DKm:         f(10),
		Mode:        int(int32(binary.LittleEndian.Uint32(b[88:]))),
	}
}

package transcoder

import (
	"encoding/binary"
	"math"
	"reflect"

	"github.com/wippyai/itm-bind/errors"
)

// MaxProfileLength bounds the number of samples accepted in one terrain
// profile. Longer profiles fail with an allocation error before any buffer
// is built.
const MaxProfileLength = 1 << 27

const f64Size = 8

// Profile converts an ordered host sequence into a contiguous []float64 of
// the same length and order. Length and content are not validated; that
// is the engine's job. path prefixes error locations, e.g. ("ITM_P2P_TLS",
// "pfl") reports a bad sample as ITM_P2P_TLS.pfl[3].
func Profile(value any, path ...string) ([]float64, error) {
	switch v := value.(type) {
	case []float64:
		if err := checkLength(len(v)); err != nil {
			return nil, err
		}
		out := make([]float64, len(v))
		copy(out, v)
		return out, nil
	case []any:
		if err := checkLength(len(v)); err != nil {
			return nil, err
		}
		out := make([]float64, len(v))
		for i, elem := range v {
			f, err := Float64(elem, indexPath(path, i)...)
			if err != nil {
				return nil, err
			}
			out[i] = f
		}
		return out, nil
	case nil:
		return nil, errors.TypeMismatch(errors.PhaseConvert, path, "nil", "list<f64>")
	}

	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, errors.New(errors.PhaseConvert, errors.KindTypeMismatch).
			Path(path...).
			GoType(TypeName(value)).
			WitType("list<f64>").
			Detail("expected an ordered sequence").
			Build()
	}

	n := rv.Len()
	if err := checkLength(n); err != nil {
		return nil, err
	}
	out := make([]float64, n)
	for i := range n {
		f, err := Float64(rv.Index(i).Interface(), indexPath(path, i)...)
		if err != nil {
			return nil, err
		}
		out[i] = f
	}
	return out, nil
}

func checkLength(n int) error {
	if n > MaxProfileLength {
		return errors.New(errors.PhaseAlloc, errors.KindAllocation).
			WitType("list<f64>").
			Value(n).
			Detail("profile of %d samples exceeds limit of %d", n, MaxProfileLength).
			Build()
	}
	return nil
}

// ReadProfile reads n little-endian f64 samples at ptr from linear memory.
func ReadProfile(mem Memory, ptr, n uint32, path ...string) ([]float64, error) {
	if n > MaxProfileLength {
		return nil, checkLength(int(n))
	}
	size := n * f64Size
	data, err := mem.Read(ptr, size)
	if err != nil {
		return nil, errors.New(errors.PhaseConvert, errors.KindOutOfBounds).
			Path(path...).
			WitType("list<f64>").
			Value(ptr).
			Cause(err).
			Detail("profile [%d, %d) outside linear memory", ptr, uint64(ptr)+uint64(size)).
			Build()
	}

	out := make([]float64, n)
	for i := range out {
		out[i] = math.Float64frombits(binary.LittleEndian.Uint64(data[i*f64Size:]))
	}
	return out, nil
}

// WriteProfile writes samples as little-endian f64 at ptr.
func WriteProfile(mem Memory, ptr uint32, samples []float64) error {
	if err := checkLength(len(samples)); err != nil {
		return err
	}
	data := make([]byte, len(samples)*f64Size)
	for i, f := range samples {
		binary.LittleEndian.PutUint64(data[i*f64Size:], math.Float64bits(f))
	}
	if err := mem.Write(ptr, data); err != nil {
		return errors.OutOfBounds(errors.PhaseAlloc, []string{"pfl"}, ptr, uint32(len(data)))
	}
	return nil
}

// ProfileSize returns the linear memory footprint of n samples.
func ProfileSize(n int) (uint32, error) {
	if err := checkLength(n); err != nil {
		return 0, err
	}
	return uint32(n) * f64Size, nil
}

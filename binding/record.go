package binding

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"reflect"

	"go.bytecodealliance.org/wit"

	"github.com/wippyai/itm-bind/errors"
	"github.com/wippyai/itm-bind/transcoder"
)

// Record is a WIT record type bound to a Go struct through `itm` tags.
type Record struct {
	Type   *wit.TypeDef
	Layout transcoder.LayoutInfo
	goType reflect.Type
	fields []recordField
}

type recordField struct {
	typ   wit.Type
	name  string
	index int
}

type fieldDecl struct {
	typ  wit.Type
	name string
}

// newRecord declares a record and resolves every field against goType's
// `itm` tags. A field with no matching tag is a programming error and
// panics.
func newRecord(calc *transcoder.LayoutCalculator, name string, goType reflect.Type, decls []fieldDecl) *Record {
	tags := make(map[string]int, goType.NumField())
	for i := range goType.NumField() {
		if tag := goType.Field(i).Tag.Get("itm"); tag != "" {
			tags[tag] = i
		}
	}

	witFields := make([]wit.Field, 0, len(decls))
	fields := make([]recordField, 0, len(decls))
	for _, d := range decls {
		idx, ok := tags[d.name]
		if !ok {
			panic(fmt.Sprintf("binding: record %s declares field %q but %s has no such itm tag", name, d.name, goType))
		}
		witFields = append(witFields, wit.Field{Name: d.name, Type: d.typ})
		fields = append(fields, recordField{typ: d.typ, name: d.name, index: idx})
	}

	typ := &wit.TypeDef{
		Name: &name,
		Kind: &wit.Record{Fields: witFields},
	}
	return &Record{
		Type:   typ,
		Layout: calc.Calculate(typ),
		goType: goType,
		fields: fields,
	}
}

func (r *Record) Name() string {
	return *r.Type.Name
}

// Fields returns the declared field names in order.
func (r *Record) Fields() []string {
	names := make([]string, len(r.fields))
	for i, f := range r.fields {
		names[i] = f.name
	}
	return names
}

func (r *Record) value(v any) (reflect.Value, error) {
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer {
		rv = rv.Elem()
	}
	if !rv.IsValid() || rv.Type() != r.goType {
		return reflect.Value{}, errors.TypeMismatch(errors.PhaseBind, []string{r.Name()}, transcoder.TypeName(v), r.goType.String())
	}
	return rv, nil
}

// Map converts v, a value of the bound Go type, into a host record keyed by
// the declared field names. s32 fields become int32, f64 fields float64.
func (r *Record) Map(v any) (map[string]any, error) {
	rv, err := r.value(v)
	if err != nil {
		return nil, err
	}
	out := make(map[string]any, len(r.fields))
	for _, f := range r.fields {
		fv := rv.Field(f.index)
		switch f.typ.(type) {
		case wit.S32:
			out[f.name] = int32(fv.Int())
		case wit.F64:
			out[f.name] = fv.Float()
		}
	}
	return out, nil
}

// EncodeJSON encodes a host record as a JSON object in declared field
// order. Non-finite f64 values have no JSON form and encode as null.
func (r *Record) EncodeJSON(rec map[string]any) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range r.fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		name, _ := json.Marshal(f.name)
		buf.Write(name)
		buf.WriteByte(':')

		v := rec[f.name]
		if x, ok := v.(float64); ok && (math.IsNaN(x) || math.IsInf(x, 0)) {
			buf.WriteString("null")
			continue
		}
		data, err := json.Marshal(v)
		if err != nil {
			return nil, errors.New(errors.PhaseBind, errors.KindInvalidData).
				Path(r.Name(), f.name).
				GoType(transcoder.TypeName(v)).
				Cause(err).
				Build()
		}
		buf.Write(data)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// span rejects a record at ptr that would run past the 32-bit address
// space, before any field offset can wrap.
func (r *Record) span(ptr uint32) error {
	if uint64(ptr)+uint64(r.Layout.Size) > math.MaxUint32+1 {
		return errors.OutOfBounds(errors.PhaseBind, []string{r.Name()}, ptr, r.Layout.Size)
	}
	return nil
}

// Store writes v into linear memory at ptr using the record's layout.
func (r *Record) Store(mem transcoder.Memory, ptr uint32, v any) error {
	if err := r.span(ptr); err != nil {
		return err
	}
	rv, err := r.value(v)
	if err != nil {
		return err
	}
	for _, f := range r.fields {
		off := ptr + r.Layout.FieldOffs[f.name]
		fv := rv.Field(f.index)
		switch f.typ.(type) {
		case wit.S32:
			err = mem.WriteU32(off, uint32(int32(fv.Int())))
		case wit.F64:
			err = mem.WriteU64(off, math.Float64bits(fv.Float()))
		}
		if err != nil {
			return errors.New(errors.PhaseBind, errors.KindOutOfBounds).
				Path(r.Name(), f.name).
				Value(off).
				Cause(err).
				Build()
		}
	}
	return nil
}

// Load reads a record stored at ptr back into a host map.
func (r *Record) Load(mem transcoder.Memory, ptr uint32) (map[string]any, error) {
	if err := r.span(ptr); err != nil {
		return nil, err
	}
	out := make(map[string]any, len(r.fields))
	for _, f := range r.fields {
		off := ptr + r.Layout.FieldOffs[f.name]
		switch f.typ.(type) {
		case wit.S32:
			v, err := mem.ReadU32(off)
			if err != nil {
				return nil, errors.OutOfBounds(errors.PhaseBind, []string{r.Name(), f.name}, off, 4)
			}
			out[f.name] = int32(v)
		case wit.F64:
			v, err := mem.ReadU64(off)
			if err != nil {
				return nil, errors.OutOfBounds(errors.PhaseBind, []string{r.Name(), f.name}, off, 8)
			}
			out[f.name] = math.Float64frombits(v)
		}
	}
	return out, nil
}

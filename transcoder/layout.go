package transcoder

import (
	"github.com/tetratelabs/wazero/api"
	"go.bytecodealliance.org/wit"
)

// LayoutInfo is the Canonical ABI size, alignment and field offsets of a
// type in linear memory.
type LayoutInfo struct {
	FieldOffs map[string]uint32
	Size      uint32
	Align     uint32
}

// LayoutCalculator computes Canonical ABI layouts, caching named types.
type LayoutCalculator struct {
	cache map[*wit.TypeDef]LayoutInfo
}

func NewLayoutCalculator() *LayoutCalculator {
	return &LayoutCalculator{
		cache: make(map[*wit.TypeDef]LayoutInfo),
	}
}

func (c *LayoutCalculator) Calculate(t wit.Type) LayoutInfo {
	switch typ := t.(type) {
	case wit.U8, wit.S8, wit.Bool:
		return LayoutInfo{Size: 1, Align: 1}
	case wit.U16, wit.S16:
		return LayoutInfo{Size: 2, Align: 2}
	case wit.U32, wit.S32, wit.F32, wit.Char:
		return LayoutInfo{Size: 4, Align: 4}
	case wit.U64, wit.S64, wit.F64:
		return LayoutInfo{Size: 8, Align: 8}
	case wit.String:
		return LayoutInfo{Size: 8, Align: 4} // [ptr: u32, len: u32]
	case *wit.TypeDef:
		return c.calculateTypeDef(typ)
	default:
		return LayoutInfo{Size: 0, Align: 1}
	}
}

func (c *LayoutCalculator) calculateTypeDef(t *wit.TypeDef) LayoutInfo {
	if cached, ok := c.cache[t]; ok {
		return cached
	}

	var info LayoutInfo
	switch kind := t.Kind.(type) {
	case *wit.Record:
		info = c.calculateRecord(kind)
	case *wit.List:
		info = LayoutInfo{Size: 8, Align: 4}
	case wit.Type:
		info = c.Calculate(kind)
	default:
		info = LayoutInfo{Size: 0, Align: 1}
	}

	c.cache[t] = info
	return info
}

func (c *LayoutCalculator) calculateRecord(r *wit.Record) LayoutInfo {
	if len(r.Fields) == 0 {
		return LayoutInfo{Size: 0, Align: 1}
	}

	fieldOffs := make(map[string]uint32, len(r.Fields))
	maxAlign := uint32(1)
	offset := uint32(0)

	for _, field := range r.Fields {
		fieldLayout := c.Calculate(field.Type)

		offset = AlignTo(offset, fieldLayout.Align)
		fieldOffs[field.Name] = offset

		if fieldLayout.Align > maxAlign {
			maxAlign = fieldLayout.Align
		}

		offset += fieldLayout.Size
	}

	return LayoutInfo{
		Size:      AlignTo(offset, maxAlign),
		Align:     maxAlign,
		FieldOffs: fieldOffs,
	}
}

func AlignTo(offset, align uint32) uint32 {
	if align == 0 {
		return offset
	}
	return (offset + align - 1) &^ (align - 1)
}

// FlatTypes returns the core wasm value types a parameter of type t
// flattens to. Lists and strings become (ptr, len).
func FlatTypes(t wit.Type) []api.ValueType {
	switch t := t.(type) {
	case wit.Bool, wit.U8, wit.S8, wit.U16, wit.S16, wit.U32, wit.S32, wit.Char:
		return []api.ValueType{api.ValueTypeI32}
	case wit.U64, wit.S64:
		return []api.ValueType{api.ValueTypeI64}
	case wit.F32:
		return []api.ValueType{api.ValueTypeF32}
	case wit.F64:
		return []api.ValueType{api.ValueTypeF64}
	case wit.String:
		return []api.ValueType{api.ValueTypeI32, api.ValueTypeI32}
	case *wit.TypeDef:
		switch kind := t.Kind.(type) {
		case *wit.Record:
			var flat []api.ValueType
			for _, f := range kind.Fields {
				flat = append(flat, FlatTypes(f.Type)...)
			}
			return flat
		case *wit.List:
			return []api.ValueType{api.ValueTypeI32, api.ValueTypeI32}
		case wit.Type:
			return FlatTypes(kind)
		}
	}
	return []api.ValueType{api.ValueTypeI32}
}

package runtime

import (
	"encoding/binary"
	"math"

	"github.com/tetratelabs/wazero/api"
)

// guestBuilder emits a minimal core wasm module: imported functions from
// "itm", one exported memory, and exported no-argument functions that push
// constants and call a single import.
type guestBuilder struct {
	types   [][]api.ValueType
	imports []guestImport
	funcs   []guestFunc
}

type guestImport struct {
	name    string
	typeIdx int
}

type guestFunc struct {
	export string
	callee int
	args   []uint64
	sig    []api.ValueType
}

func (b *guestBuilder) typeIndex(params []api.ValueType) int {
	for i, t := range b.types {
		if string(t) == string(params) {
			return i
		}
	}
	b.types = append(b.types, params)
	return len(b.types) - 1
}

// importFunc declares an import and returns its function index.
func (b *guestBuilder) importFunc(name string, params []api.ValueType) int {
	b.imports = append(b.imports, guestImport{name: name, typeIdx: b.typeIndex(params)})
	return len(b.imports) - 1
}

// caller exports a function that calls callee with args encoded as raw
// stack values matching sig.
func (b *guestBuilder) caller(export string, callee int, sig []api.ValueType, args []uint64) {
	b.funcs = append(b.funcs, guestFunc{export: export, callee: callee, args: args, sig: sig})
}

func (b *guestBuilder) build() []byte {
	out := []byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00}
	voidType := b.typeIndex(nil)

	var types []byte
	types = appendU32(types, uint32(len(b.types)))
	for _, params := range b.types {
		types = append(types, 0x60)
		types = appendU32(types, uint32(len(params)))
		types = append(types, params...)
		types = append(types, 0x00)
	}
	out = section(out, 1, types)

	var imports []byte
	imports = appendU32(imports, uint32(len(b.imports)))
	for _, imp := range b.imports {
		imports = appendName(imports, HostModuleName)
		imports = appendName(imports, imp.name)
		imports = append(imports, 0x00)
		imports = appendU32(imports, uint32(imp.typeIdx))
	}
	out = section(out, 2, imports)

	var funcs []byte
	funcs = appendU32(funcs, uint32(len(b.funcs)))
	for range b.funcs {
		funcs = appendU32(funcs, uint32(voidType))
	}
	out = section(out, 3, funcs)

	// one page
	out = section(out, 5, []byte{0x01, 0x00, 0x01})

	var exports []byte
	exports = appendU32(exports, uint32(len(b.funcs)+1))
	exports = appendName(exports, "memory")
	exports = append(exports, 0x02, 0x00)
	for i, f := range b.funcs {
		exports = appendName(exports, f.export)
		exports = append(exports, 0x00)
		exports = appendU32(exports, uint32(len(b.imports)+i))
	}
	out = section(out, 7, exports)

	var code []byte
	code = appendU32(code, uint32(len(b.funcs)))
	for _, f := range b.funcs {
		body := []byte{0x00} // no locals
		for i, vt := range f.sig {
			switch vt {
			case api.ValueTypeI32:
				body = append(body, 0x41)
				body = appendS32(body, api.DecodeI32(f.args[i]))
			case api.ValueTypeF64:
				body = append(body, 0x44)
				body = binary.LittleEndian.AppendUint64(body, f.args[i])
			}
		}
		body = append(body, 0x10)
		body = appendU32(body, uint32(f.callee))
		body = append(body, 0x0b)

		code = appendU32(code, uint32(len(body)))
		code = append(code, body...)
	}
	return section(out, 10, code)
}

func section(out []byte, id byte, payload []byte) []byte {
	out = append(out, id)
	out = appendU32(out, uint32(len(payload)))
	return append(out, payload...)
}

func appendName(b []byte, s string) []byte {
	b = appendU32(b, uint32(len(s)))
	return append(b, s...)
}

func appendU32(b []byte, v uint32) []byte {
	for {
		c := byte(v & 0x7f)
		v >>= 7
		if v != 0 {
			b = append(b, c|0x80)
			continue
		}
		return append(b, c)
	}
}

func appendS32(b []byte, v int32) []byte {
	for {
		c := byte(v & 0x7f)
		v >>= 7
		if (v == 0 && c&0x40 == 0) || (v == -1 && c&0x40 != 0) {
			return append(b, c)
		}
		b = append(b, c|0x80)
	}
}

// rawArgs converts host values to raw stack values for sig.
func rawArgs(sig []api.ValueType, vals ...float64) []uint64 {
	out := make([]uint64, len(sig))
	for i, vt := range sig {
		switch vt {
		case api.ValueTypeI32:
			out[i] = api.EncodeI32(int32(vals[i]))
		case api.ValueTypeF64:
			out[i] = math.Float64bits(vals[i])
		}
	}
	return out
}

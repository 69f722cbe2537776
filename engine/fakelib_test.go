package engine

import (
	"encoding/binary"
	"math"
)

// A tiny stand-in for libitm written directly in wasm. malloc is a bump
// allocator that fails for requests over 60000 bytes and counts live
// blocks; free decrements the count. Each ITM function stores a known
// attenuation, warnings = 3 and (for _Ex) mode = 2 and d__km, returns
// status 1, and traps when h_tx is negative.

const (
	i32 = 0x7f
	f64 = 0x7c
)

type fakeFunc struct {
	name    string
	params  []byte
	results []byte
	body    []byte
}

type fakeLib struct {
	funcs     []fakeFunc
	typeIndex map[string]int
	types     [][2][]byte
}

func (l *fakeLib) typeOf(params, results []byte) int {
	key := string(params) + "|" + string(results)
	if idx, ok := l.typeIndex[key]; ok {
		return idx
	}
	if l.typeIndex == nil {
		l.typeIndex = make(map[string]int)
	}
	l.types = append(l.types, [2][]byte{params, results})
	l.typeIndex[key] = len(l.types) - 1
	return len(l.types) - 1
}

func newFakeLib() *fakeLib {
	l := &fakeLib{}
	l.addAllocator()
	l.addITM()
	return l
}

func (l *fakeLib) addAllocator() {
	var malloc []byte
	// if size > 60000 { 0 } else { live++; old := heap; heap = (heap+size+7)&^7; old }
	malloc = append(malloc, 0x20, 0x00, 0x41)
	malloc = sleb(malloc, 60000)
	malloc = append(malloc, 0x4b, 0x04, i32)
	malloc = append(malloc, 0x41, 0x00)
	malloc = append(malloc, 0x05)
	malloc = append(malloc, 0x23, 0x01, 0x41, 0x01, 0x6a, 0x24, 0x01)
	malloc = append(malloc, 0x23, 0x00)
	malloc = append(malloc, 0x23, 0x00, 0x20, 0x00, 0x6a, 0x41, 0x07, 0x6a, 0x41)
	malloc = sleb(malloc, -8)
	malloc = append(malloc, 0x71, 0x24, 0x00)
	malloc = append(malloc, 0x0b)
	l.funcs = append(l.funcs, fakeFunc{"malloc", []byte{i32}, []byte{i32}, malloc})

	free := []byte{0x23, 0x01, 0x41, 0x01, 0x6b, 0x24, 0x01}
	l.funcs = append(l.funcs, fakeFunc{"free", []byte{i32}, nil, free})

	l.funcs = append(l.funcs, fakeFunc{"live", nil, []byte{i32}, []byte{0x23, 0x01}})
}

func repeat(b byte, n int) []byte {
	out := make([]byte, n)
	for i := range out {
		out[i] = b
	}
	return out
}

func (l *fakeLib) addITM() {
	link := []byte{i32, f64, f64, i32, f64, f64, i32}
	p2p := append([]byte{f64, f64, i32}, link...)
	area := append([]byte{f64, f64, i32, i32, f64, f64}, link...)
	tls := repeat(f64, 3)
	cr := repeat(f64, 2)

	type variant struct {
		name   string
		prefix []byte
		vary   []byte
		p2p    bool
	}
	variants := []variant{
		{"ITM_P2P_TLS", p2p, tls, true},
		{"ITM_P2P_CR", p2p, cr, true},
		{"ITM_AREA_TLS", area, tls, false},
		{"ITM_AREA_CR", area, cr, false},
	}

	for _, v := range variants {
		for _, ex := range []bool{false, true} {
			params := append(append(append([]byte{}, v.prefix...), v.vary...), i32, i32)
			if ex {
				params = append(params, i32)
			}
			aDB := byte(len(v.prefix) + len(v.vary))
			warn := aDB + 1
			iv := aDB + 2

			var body []byte
			// trap on negative h_tx
			body = append(body, 0x20, 0x00, 0x44)
			body = binary.LittleEndian.AppendUint64(body, math.Float64bits(0))
			body = append(body, 0x63, 0x04, 0x40, 0x00, 0x0b)

			// *aDB = pfl[1] for p2p, d__km for area
			body = append(body, 0x20, aDB)
			if v.p2p {
				body = append(body, 0x20, 0x02, 0x2b, 0x03, 0x08)
			} else {
				body = append(body, 0x20, 0x04)
			}
			body = append(body, 0x39, 0x03, 0x00)

			// *warnings = 3
			body = append(body, 0x20, warn, 0x41, 0x03, 0x36, 0x02, 0x00)

			if ex {
				// iv->mode = 2; iv->d__km = 12.5
				body = append(body, 0x20, iv, 0x41, 0x02, 0x36, 0x02, 88)
				body = append(body, 0x20, iv, 0x44)
				body = binary.LittleEndian.AppendUint64(body, math.Float64bits(12.5))
				body = append(body, 0x39, 0x03, 80)
			}
			body = append(body, 0x41, 0x01)

			name := v.name
			if ex {
				name += "_Ex"
			}
			l.funcs = append(l.funcs, fakeFunc{name, params, []byte{i32}, body})
		}
	}
}

func (l *fakeLib) build() []byte {
	out := []byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00}

	typeIdx := make([]int, len(l.funcs))
	for i, f := range l.funcs {
		typeIdx[i] = l.typeOf(f.params, f.results)
	}

	var types []byte
	types = uleb(types, uint32(len(l.types)))
	for _, t := range l.types {
		types = append(types, 0x60)
		types = uleb(types, uint32(len(t[0])))
		types = append(types, t[0]...)
		types = uleb(types, uint32(len(t[1])))
		types = append(types, t[1]...)
	}
	out = section(out, 1, types)

	var funcs []byte
	funcs = uleb(funcs, uint32(len(l.funcs)))
	for _, idx := range typeIdx {
		funcs = uleb(funcs, uint32(idx))
	}
	out = section(out, 3, funcs)

	out = section(out, 5, []byte{0x01, 0x00, 0x01})

	// heap pointer and live block count
	globals := []byte{0x02}
	globals = append(globals, i32, 0x01, 0x41)
	globals = sleb(globals, 1024)
	globals = append(globals, 0x0b)
	globals = append(globals, i32, 0x01, 0x41, 0x00, 0x0b)
	out = section(out, 6, globals)

	var exports []byte
	exports = uleb(exports, uint32(len(l.funcs)+1))
	exports = name(exports, "memory")
	exports = append(exports, 0x02, 0x00)
	for i, f := range l.funcs {
		exports = name(exports, f.name)
		exports = append(exports, 0x00)
		exports = uleb(exports, uint32(i))
	}
	out = section(out, 7, exports)

	var code []byte
	code = uleb(code, uint32(len(l.funcs)))
	for _, f := range l.funcs {
		body := append([]byte{0x00}, f.body...)
		body = append(body, 0x0b)
		code = uleb(code, uint32(len(body)))
		code = append(code, body...)
	}
	return section(out, 10, code)
}

func section(out []byte, id byte, payload []byte) []byte {
	out = append(out, id)
	out = uleb(out, uint32(len(payload)))
	return append(out, payload...)
}

func name(b []byte, s string) []byte {
	b = uleb(b, uint32(len(s)))
	return append(b, s...)
}

func uleb(b []byte, v uint32) []byte {
	for {
		c := byte(v & 0x7f)
		v >>= 7
		if v == 0 {
			return append(b, c)
		}
		b = append(b, c|0x80)
	}
}

func sleb(b []byte, v int32) []byte {
	for {
		c := byte(v & 0x7f)
		v >>= 7
		if (v == 0 && c&0x40 == 0) || (v == -1 && c&0x40 != 0) {
			return append(b, c)
		}
		b = append(b, c|0x80)
	}
}

package runtime

import (
	"context"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"go.bytecodealliance.org/wit"
	"go.uber.org/zap"

	"github.com/wippyai/itm-bind/binding"
	"github.com/wippyai/itm-bind/errors"
	"github.com/wippyai/itm-bind/transcoder"
)

// CoreSignature returns the core wasm parameter types of fn as imported by
// a guest: flattened parameters followed by the result pointer. The
// function returns nothing; the record is written at the result pointer.
func CoreSignature(fn *binding.Function) []api.ValueType {
	var params []api.ValueType
	for _, p := range fn.Params {
		params = append(params, transcoder.FlatTypes(p.Type)...)
	}
	return append(params, api.ValueTypeI32)
}

func instantiateHostModule(ctx context.Context, rt wazero.Runtime, host *binding.Host) error {
	builder := rt.NewHostModuleBuilder(HostModuleName)
	for _, fn := range host.Registry().Functions() {
		builder.NewFunctionBuilder().
			WithName(fn.Name).
			WithGoModuleFunction(hostFunc(host, fn), CoreSignature(fn), nil).
			Export(fn.Name)
	}
	if _, err := builder.Instantiate(ctx); err != nil {
		return errors.Registration(errors.PhaseHost, HostModuleName, err)
	}
	return nil
}

// hostFunc lifts the flat stack into host values, calls through the host,
// and lowers the record at the result pointer. Boundary errors panic, which
// wazero turns into a trap of the guest call carrying the error.
func hostFunc(host *binding.Host, fn *binding.Function) api.GoModuleFunc {
	return func(ctx context.Context, mod api.Module, stack []uint64) {
		mem := transcoder.WrapMemory(mod.Memory())
		if mem == nil {
			panic(errors.NotInitialized(errors.PhaseHost, "guest memory"))
		}

		vals := make([]any, len(fn.Params))
		i := 0
		for j, p := range fn.Params {
			switch t := p.Type.(type) {
			case wit.F64:
				vals[j] = api.DecodeF64(stack[i])
				i++
			case wit.S32:
				vals[j] = api.DecodeI32(stack[i])
				i++
			case *wit.TypeDef:
				ptr, n := api.DecodeU32(stack[i]), api.DecodeU32(stack[i+1])
				pfl, err := transcoder.ReadProfile(mem, ptr, n, fn.Name, p.Name)
				if err != nil {
					panic(err)
				}
				vals[j] = pfl
				i += 2
			default:
				panic(errors.TypeMismatch(errors.PhaseHost, []string{fn.Name, p.Name}, "", witName(t)))
			}
		}
		retptr := api.DecodeU32(stack[i])

		out, _, err := host.Invoke(ctx, fn.Name, vals...)
		if err != nil {
			Logger().Debug("guest call rejected", zap.String("function", fn.Name), zap.Error(err))
			panic(err)
		}
		if err := fn.Result.Store(mem, retptr, out); err != nil {
			panic(err)
		}
	}
}

func witName(t wit.Type) string {
	if td, ok := t.(*wit.TypeDef); ok && td.Name != nil {
		return *td.Name
	}
	return "unknown"
}

package runtime

import (
	"context"

	"github.com/tetratelabs/wazero/api"

	"github.com/wippyai/itm-bind/errors"
	"github.com/wippyai/itm-bind/transcoder"
)

type Instance struct {
	module api.Module
}

// Call invokes an exported function with raw core values. A trap,
// including a boundary error raised by an "itm" import, is returned as an
// engine trap wrapping the cause.
func (i *Instance) Call(ctx context.Context, name string, params ...uint64) ([]uint64, error) {
	if i.module == nil {
		return nil, errors.NotInitialized(errors.PhaseHost, "instance")
	}
	fn := i.module.ExportedFunction(name)
	if fn == nil {
		return nil, errors.NotFound(errors.PhaseHost, "export", name)
	}
	results, err := fn.Call(ctx, params...)
	if err != nil {
		return nil, errors.Trap(name, err)
	}
	return results, nil
}

// Memory returns the instance's linear memory, or nil if it exports none.
func (i *Instance) Memory() transcoder.Memory {
	if i.module == nil {
		return nil
	}
	return transcoder.WrapMemory(i.module.Memory())
}

func (i *Instance) Close(ctx context.Context) error {
	if i.module == nil {
		return nil
	}
	err := i.module.Close(ctx)
	i.module = nil
	return err
}

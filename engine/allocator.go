package engine

import (
	"context"

	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"

	"github.com/wippyai/itm-bind/errors"
)

// guestAllocator implements transcoder.Allocator over the library's
// malloc and free. Callers hold the engine lock.
type guestAllocator struct {
	malloc   api.Function
	free     api.Function
	ctx      context.Context
	stackBuf [1]uint64
}

func (a *guestAllocator) setContext(ctx context.Context) {
	a.ctx = ctx
}

func (a *guestAllocator) callContext() context.Context {
	if a.ctx == nil {
		return context.Background()
	}
	return a.ctx
}

// Alloc returns a pointer from malloc. align is not passed on: wasm32 libc
// malloc returns 8-byte aligned blocks, enough for f64.
func (a *guestAllocator) Alloc(size, align uint32) (uint32, error) {
	a.stackBuf[0] = api.EncodeU32(size)
	if err := a.malloc.CallWithStack(a.callContext(), a.stackBuf[:]); err != nil {
		return 0, errors.New(errors.PhaseEngine, errors.KindAllocation).
			Detail("malloc(%d) trapped", size).
			Cause(err).
			Build()
	}
	ptr := api.DecodeU32(a.stackBuf[0])
	if ptr == 0 {
		return 0, errors.AllocationFailed(errors.PhaseEngine, size, align)
	}
	return ptr, nil
}

func (a *guestAllocator) Free(ptr, size, align uint32) {
	if ptr == 0 {
		return
	}
	a.stackBuf[0] = api.EncodeU32(ptr)
	if err := a.free.CallWithStack(a.callContext(), a.stackBuf[:]); err != nil {
		Logger().Warn("free trapped",
			zap.Uint32("ptr", ptr),
			zap.Uint32("size", size),
			zap.Error(err))
	}
}

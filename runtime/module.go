package runtime

import (
	"context"
	"sort"

	"github.com/tetratelabs/wazero"

	"github.com/wippyai/itm-bind/errors"
)

type Module struct {
	runtime  *Runtime
	compiled wazero.CompiledModule
}

// Imports returns the ITM functions the module imports, sorted by name.
func (m *Module) Imports() []string {
	var names []string
	for _, def := range m.compiled.ImportedFunctions() {
		if mod, name, ok := def.Import(); ok && mod == HostModuleName {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// Exports returns the names of the module's exported functions, sorted.
func (m *Module) Exports() []string {
	defs := m.compiled.ExportedFunctions()
	names := make([]string, 0, len(defs))
	for name := range defs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Instantiate creates an anonymous instance, so one module may be
// instantiated many times in the same runtime.
func (m *Module) Instantiate(ctx context.Context) (*Instance, error) {
	cfg := wazero.NewModuleConfig().WithName("")
	mod, err := m.runtime.runtime.InstantiateModule(ctx, m.compiled, cfg)
	if err != nil {
		return nil, errors.Instantiation(errors.PhaseLoad, err)
	}
	return &Instance{module: mod}, nil
}

func (m *Module) Close(ctx context.Context) error {
	return m.compiled.Close(ctx)
}

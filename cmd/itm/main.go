// Command itm calls the Irregular Terrain Model through its bindings.
// It provides commands for inspecting the bound functions, calling them
// with JSON arguments, running wasm guests against the itm host module and
// an interactive TUI.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/alecthomas/kong"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/wippyai/itm-bind/binding"
	"github.com/wippyai/itm-bind/internal/config"
)

// CLI defines the command-line interface for itm.
var CLI struct {
	Engine   string `help:"Engine backend: native or wasm (overrides ITM_ENGINE)"`
	WasmPath string `name:"wasm-path" help:"Path to the wasm32 ITM library (overrides ITM_WASM_PATH)" type:"path"`
	Metrics  bool   `help:"Print Prometheus metrics to stderr on exit"`

	List   ListCmd   `cmd:"" help:"List bound functions and their WIT signatures"`
	Layout LayoutCmd `cmd:"" help:"Show result record layouts"`
	Call   CallCmd   `cmd:"" help:"Call a bound function with JSON arguments"`
	Run    RunCmd    `cmd:"" help:"Run a wasm guest that imports the itm host module"`
	TUI    TUICmd    `cmd:"" name:"tui" help:"Interactive function caller"`
}

// ListCmd prints every bound function.
type ListCmd struct{}

func (c *ListCmd) Run(a *app) error {
	for _, fn := range a.host.Registry().Functions() {
		fmt.Println(fn.Signature())
	}
	return nil
}

// LayoutCmd prints field offsets of the result records.
type LayoutCmd struct {
	Record string `arg:"" optional:"" help:"Record name (ITMResult or ITMResultEx); all when omitted"`
}

func (c *LayoutCmd) Run(a *app) error {
	names := []string{binding.ResultName, binding.ResultExName}
	if c.Record != "" {
		names = []string{c.Record}
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	for _, name := range names {
		rec, err := a.host.Registry().Record(name)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "record %s\tsize %d\talign %d\n", rec.Name(), rec.Layout.Size, rec.Layout.Align)
		for _, field := range rec.Fields() {
			fmt.Fprintf(w, "  %s\t@%d\t\n", field, rec.Layout.FieldOffs[field])
		}
	}
	return w.Flush()
}

// CallCmd calls one function. Arguments are a JSON array in parameter
// order or a JSON object keyed by parameter name; "-" reads them from stdin.
type CallCmd struct {
	Name string `arg:"" help:"Function name, e.g. ITM_P2P_TLS"`
	Args string `arg:"" optional:"" default:"[]" help:"JSON arguments"`
}

func (c *CallCmd) Run(ctx context.Context, a *app) error {
	raw := []byte(c.Args)
	if c.Args == "-" {
		var err error
		if raw, err = io.ReadAll(os.Stdin); err != nil {
			return fmt.Errorf("read stdin: %w", err)
		}
	}
	out, err := a.host.CallJSON(ctx, c.Name, raw)
	if err != nil {
		return err
	}
	return writeJSON(os.Stdout, out)
}

// RunCmd instantiates a guest module and calls one of its exports with
// raw integer arguments.
type RunCmd struct {
	Path string  `arg:"" help:"Guest wasm module" type:"existingfile"`
	Func string  `short:"f" default:"run" help:"Export to call"`
	Args []int64 `arg:"" optional:"" help:"Raw i32/i64 arguments"`
}

func (c *RunCmd) Run(ctx context.Context, a *app) error {
	wasm, err := os.ReadFile(c.Path)
	if err != nil {
		return fmt.Errorf("read file: %w", err)
	}

	rt, err := a.runtime(ctx)
	if err != nil {
		return fmt.Errorf("create runtime: %w", err)
	}
	defer rt.Close(ctx)

	mod, err := rt.LoadWASM(ctx, wasm)
	if err != nil {
		return fmt.Errorf("load module: %w", err)
	}
	if imports := mod.Imports(); len(imports) > 0 {
		fmt.Fprintf(os.Stderr, "itm imports: %s\n", strings.Join(imports, ", "))
	}

	inst, err := mod.Instantiate(ctx)
	if err != nil {
		return fmt.Errorf("instantiate: %w", err)
	}
	defer inst.Close(ctx)

	params := make([]uint64, len(c.Args))
	for i, v := range c.Args {
		params[i] = uint64(v)
	}
	results, err := inst.Call(ctx, c.Func, params...)
	if err != nil {
		return fmt.Errorf("call %s: %w", c.Func, err)
	}
	for _, r := range results {
		fmt.Println(int64(r))
	}
	return nil
}

// TUICmd starts the interactive caller.
type TUICmd struct{}

func (c *TUICmd) Run(ctx context.Context, a *app) error {
	return runInteractive(ctx, a)
}

// writeJSON indents output when stdout is a terminal.
func writeJSON(w io.Writer, data []byte) error {
	if term.IsTerminal(int(os.Stdout.Fd())) {
		var buf bytes.Buffer
		if err := json.Indent(&buf, data, "", "  "); err == nil {
			data = buf.Bytes()
		}
	}
	if _, err := w.Write(data); err != nil {
		return err
	}
	_, err := fmt.Fprintln(w)
	return err
}

func main() {
	ctx := context.Background()
	kctx := kong.Parse(&CLI,
		kong.Name("itm"),
		kong.Description("Irregular Terrain Model bindings"),
		kong.UsageOnError(),
		kong.BindTo(ctx, (*context.Context)(nil)),
	)

	cfg, err := config.Load(config.WithEngine(CLI.Engine), config.WithWasmPath(CLI.WasmPath))
	kctx.FatalIfErrorf(err)

	a, err := newApp(ctx, cfg)
	kctx.FatalIfErrorf(err)

	err = kctx.Run(a)
	if CLI.Metrics {
		if merr := a.dumpMetrics(os.Stderr); merr != nil {
			a.log.Warn("dump metrics", zap.Error(merr))
		}
	}
	a.close(ctx)
	kctx.FatalIfErrorf(err)
}

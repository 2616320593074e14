package main

import (
	"context"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	odebridge "github.com/odelang/odebridge"
	"github.com/odelang/odebridge/bridge"
	"github.com/odelang/odebridge/enginewasm"
	"github.com/odelang/odebridge/interp"
	"github.com/odelang/odebridge/ir"
)

// config is the TOML configuration file shape.
type config struct {
	// Engine selects the engine host: "interp" (default) or "wasm".
	Engine string `toml:"engine"`

	// WasmPath is the engine binary for engine = "wasm".
	WasmPath string `toml:"wasm_path"`

	// MemoryPages caps the wasm guest memory, in 64KB pages.
	MemoryPages uint32 `toml:"memory_pages"`

	// Backend is the compilation target selector passed to the engine.
	Backend string `toml:"backend"`

	// Protocol forces an invocation generation: "auto", "shared",
	// "discrete".
	Protocol string `toml:"protocol"`
}

func loadConfig() (*config, error) {
	cfg := &config{Engine: "interp", Backend: string(odebridge.BackendBytecode), Protocol: "auto"}
	if cfgPath == "" {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(cfgPath, cfg); err != nil {
		return nil, fmt.Errorf("read config %s: %w", cfgPath, err)
	}
	return cfg, nil
}

func (c *config) protocol() (bridge.Protocol, error) {
	switch c.Protocol {
	case "", "auto":
		return bridge.ProtocolAuto, nil
	case "shared":
		return bridge.ProtocolShared, nil
	case "discrete":
		return bridge.ProtocolDiscrete, nil
	}
	return 0, fmt.Errorf("unknown protocol %q", c.Protocol)
}

// closer pairs an engine with its shutdown.
type closer func() error

// newEngine builds the configured engine host.
func (c *config) newEngine(ctx context.Context) (odebridge.Engine, closer, error) {
	switch c.Engine {
	case "", "interp":
		eng := interp.New()
		return eng, eng.Close, nil
	case "wasm":
		if c.WasmPath == "" {
			return nil, nil, fmt.Errorf("engine = \"wasm\" needs wasm_path")
		}
		raw, err := os.ReadFile(c.WasmPath)
		if err != nil {
			return nil, nil, err
		}
		eng, err := enginewasm.Load(ctx, raw, &enginewasm.Config{MemoryLimitPages: c.MemoryPages})
		if err != nil {
			return nil, nil, err
		}
		type ctxCloser interface{ Close(context.Context) error }
		return eng, func() error { return eng.(ctxCloser).Close(context.Background()) }, nil
	}
	return nil, nil, fmt.Errorf("unknown engine %q", c.Engine)
}

// compileFile reads a model document and compiles it per the config.
func compileFile(ctx context.Context, cfg *config, path string) (*bridge.Model, odebridge.Engine, closer, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, nil, err
	}
	doc, err := ir.DecodeDocument(raw)
	if err != nil {
		return nil, nil, nil, err
	}

	proto, err := cfg.protocol()
	if err != nil {
		return nil, nil, nil, err
	}

	eng, cl, err := cfg.newEngine(ctx)
	if err != nil {
		return nil, nil, nil, err
	}

	m, err := bridge.Compile(ctx, eng, doc, bridge.Options{
		Backend:  odebridge.Backend(cfg.Backend),
		Protocol: proto,
	})
	if err != nil {
		_ = cl()
		return nil, nil, nil, err
	}
	return m, eng, cl, nil
}

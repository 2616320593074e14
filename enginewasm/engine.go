package enginewasm

import (
	"context"
	"fmt"
	"sync"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"
	"go.uber.org/zap"

	odebridge "github.com/odelang/odebridge"
	"github.com/odelang/odebridge/bridge"
	"github.com/odelang/odebridge/errors"
)

// Config holds configuration for loading an engine module.
type Config struct {
	// MemoryLimitPages caps the guest's linear memory in 64KB pages.
	// 0 means the wazero default.
	MemoryLimitPages uint32

	// DisableWASI skips mounting the wasi_snapshot_preview1 host module.
	// Engines built for wasm32-unknown-unknown import nothing and can
	// run without it.
	DisableWASI bool
}

const (
	expCompile     = "compile"
	expCheckStatus = "check_status"
	expDefineRegs  = "define_regs"
	expCountStates = "count_states"
	expCountParams = "count_params"
	expFillU0      = "fill_u0"
	expFillP       = "fill_p"
	expRun         = "run"
	expFinalize    = "finalize"
)

// engineModule is the loaded guest plus its cached export functions.
// Guest calls are serialized: the module has one linear memory and the
// scratch allocations assume exclusive access.
type engineModule struct {
	rt    wazero.Runtime
	mod   api.Module
	mem   api.Memory
	alloc *allocator
	fns   map[string]api.Function
	mu    sync.Mutex
}

// Load instantiates an engine wasm binary and binds it as an Engine.
//
// The generation is detected from the arity of the run export: three
// core params is the legacy shared-buffer build, eight is the
// discrete-buffer build. The full export surface is then validated
// against the matching interface description before any call is made.
func Load(ctx context.Context, wasmBytes []byte, cfg *Config) (odebridge.Engine, error) {
	runtimeCfg := wazero.NewRuntimeConfig()
	if cfg != nil && cfg.MemoryLimitPages > 0 {
		runtimeCfg = runtimeCfg.WithMemoryLimitPages(cfg.MemoryLimitPages)
	}
	rt := wazero.NewRuntimeWithConfig(ctx, runtimeCfg)

	if cfg == nil || !cfg.DisableWASI {
		if _, err := wasi_snapshot_preview1.Instantiate(ctx, rt); err != nil {
			_ = rt.Close(ctx)
			return nil, errors.Load("instantiate WASI host module", err)
		}
	}

	mod, err := rt.Instantiate(ctx, wasmBytes)
	if err != nil {
		_ = rt.Close(ctx)
		return nil, errors.Load("instantiate engine module", err)
	}

	em := &engineModule{rt: rt, mod: mod, mem: mod.Memory(), fns: make(map[string]api.Function)}
	if em.mem == nil {
		_ = rt.Close(ctx)
		return nil, errors.Load("engine module exports no memory", nil)
	}

	em.alloc, err = newAllocator(mod)
	if err != nil {
		_ = rt.Close(ctx)
		return nil, err
	}

	runDef := mod.ExportedFunctionDefinitions()[expRun]
	if runDef == nil {
		_ = rt.Close(ctx)
		return nil, errors.NotFound(errors.PhaseLoad, "export", expRun)
	}

	var witText string
	var eng odebridge.Engine
	switch len(runDef.ParamTypes()) {
	case 3:
		witText = witShared
		eng = &SharedEngine{engineModule: em}
	case 8:
		witText = witDiscrete
		eng = &DiscreteEngine{engineModule: em}
	default:
		_ = rt.Close(ctx)
		return nil, errors.InvalidInput(errors.PhaseLoad,
			fmt.Sprintf("run export has %d params; expected 3 (shared) or 8 (discrete)", len(runDef.ParamTypes())))
	}

	if err := em.bindExports(witText); err != nil {
		_ = rt.Close(ctx)
		return nil, err
	}

	bridge.Logger().Debug("engine module loaded",
		zap.Int("run_arity", len(runDef.ParamTypes())),
		zap.Uint32("memory_pages", em.mem.Size()/65536),
	)
	return eng, nil
}

// bindExports checks every function the interface description names
// against the module's actual exports, then caches them.
func (em *engineModule) bindExports(witText string) error {
	sigs, err := parseWitFunctions(witText)
	if err != nil {
		return err
	}

	defs := em.mod.ExportedFunctionDefinitions()
	for name, sig := range sigs {
		def := defs[name]
		if def == nil {
			return errors.NotFound(errors.PhaseLoad, "export", name)
		}
		if len(def.ParamTypes()) != len(sig.params) || len(def.ResultTypes()) != len(sig.results) {
			return errors.InvalidInput(errors.PhaseLoad,
				fmt.Sprintf("export %s: arity %d->%d does not match interface %d->%d",
					name, len(def.ParamTypes()), len(def.ResultTypes()), len(sig.params), len(sig.results)))
		}
		for i, p := range sig.params {
			if def.ParamTypes()[i] != coreType(p) {
				return errors.InvalidInput(errors.PhaseLoad,
					fmt.Sprintf("export %s: param %d type mismatch", name, i))
			}
		}
		for i, r := range sig.results {
			if def.ResultTypes()[i] != coreType(r) {
				return errors.InvalidInput(errors.PhaseLoad,
					fmt.Sprintf("export %s: result %d type mismatch", name, i))
			}
		}
		em.fns[name] = em.mod.ExportedFunction(name)
	}
	return nil
}

// Close tears the whole guest down. Handles still live inside it die
// with the module.
func (em *engineModule) Close(ctx context.Context) error {
	return em.rt.Close(ctx)
}

// Compile writes the document and backend selector into guest memory as
// C strings and calls the guest compiler. The guest always answers with
// a handle; diagnostics come back through Status.
func (em *engineModule) Compile(ctx context.Context, document []byte, backend odebridge.Backend) (odebridge.Handle, error) {
	em.mu.Lock()
	defer em.mu.Unlock()

	if backend == "" {
		backend = odebridge.BackendBytecode
	}

	docPtr, err := writeCString(ctx, em.mem, em.alloc, string(document))
	if err != nil {
		return 0, err
	}
	defer em.alloc.free(ctx, docPtr, uint32(len(document))+1)

	bePtr, err := writeCString(ctx, em.mem, em.alloc, string(backend))
	if err != nil {
		return 0, err
	}
	defer em.alloc.free(ctx, bePtr, uint32(len(backend))+1)

	results, err := em.fns[expCompile].Call(ctx, uint64(docPtr), uint64(bePtr))
	if err != nil {
		return 0, errors.Wrap(errors.PhaseCompile, errors.KindEngineRejected, err, "guest compile trapped")
	}
	return odebridge.Handle(uint32(results[0])), nil
}

// Status reads the guest's NUL-terminated status string for a handle.
func (em *engineModule) Status(ctx context.Context, h odebridge.Handle) (string, error) {
	em.mu.Lock()
	defer em.mu.Unlock()

	results, err := em.fns[expCheckStatus].Call(ctx, uint64(h))
	if err != nil {
		return "", errors.Wrap(errors.PhaseCompile, errors.KindEngineRejected, err, "guest status trapped")
	}
	return readCString(em.mem, uint32(results[0]))
}

// Finalize releases the guest-side model behind a handle.
func (em *engineModule) Finalize(ctx context.Context, h odebridge.Handle) error {
	em.mu.Lock()
	defer em.mu.Unlock()

	if _, err := em.fns[expFinalize].Call(ctx, uint64(h)); err != nil {
		return errors.Wrap(errors.PhaseRuntime, errors.KindFinalized, err, "guest finalize trapped")
	}
	return nil
}

// callI32 invokes a (handle) -> i32 export.
func (em *engineModule) callI32(ctx context.Context, name string, h odebridge.Handle) (int32, error) {
	results, err := em.fns[name].Call(ctx, uint64(h))
	if err != nil {
		return 0, errors.Wrap(errors.PhaseRuntime, errors.KindInvalidData, err, "guest "+name+" trapped")
	}
	return int32(uint32(results[0])), nil
}

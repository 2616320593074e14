package enginewasm

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"

	"github.com/tetratelabs/wazero/api"

	"github.com/odelang/odebridge/errors"
)

const (
	cabiRealloc = "cabi_realloc"
	cabiFree    = "cabi_free"

	// Legacy names from pre-standardization guests.
	legacyRealloc = "canonical_abi_realloc"
	legacyAlloc   = "allocate"
	simpleAlloc   = "alloc"
	legacyFree    = "deallocate"
	simpleFree    = "free"
)

// allocator drives guest-side allocation through whichever export the
// module carries: cabi_realloc first, then the legacy fallbacks. Simple
// allocators take (size) only; realloc-shaped ones take
// (old, oldsize, align, size).
type allocator struct {
	allocFn  api.Function
	freeFn   api.Function
	isSimple bool
}

func newAllocator(mod api.Module) (*allocator, error) {
	defs := mod.ExportedFunctionDefinitions()

	def := defs[cabiRealloc]
	if def == nil {
		def = defs[legacyRealloc]
	}
	if def == nil {
		def = defs[legacyAlloc]
	}
	if def == nil {
		def = defs[simpleAlloc]
	}
	if def == nil {
		return nil, errors.NotFound(errors.PhaseLoad, "export", cabiRealloc)
	}

	a := &allocator{
		allocFn:  mod.ExportedFunction(def.Name()),
		isSimple: len(def.ParamTypes()) < 4,
	}

	if fn := mod.ExportedFunction(cabiFree); fn != nil {
		a.freeFn = fn
	} else if fn := mod.ExportedFunction(legacyFree); fn != nil {
		a.freeFn = fn
	} else if fn := mod.ExportedFunction(simpleFree); fn != nil {
		a.freeFn = fn
	}

	return a, nil
}

func (a *allocator) alloc(ctx context.Context, size uint32) (uint32, error) {
	var (
		results []uint64
		err     error
	)
	if a.isSimple {
		results, err = a.allocFn.Call(ctx, uint64(size))
	} else {
		results, err = a.allocFn.Call(ctx, 0, 0, 8, uint64(size))
	}
	if err != nil {
		return 0, errors.Wrap(errors.PhaseRuntime, errors.KindInvalidData, err, "guest allocation")
	}
	if len(results) == 0 || results[0] == 0 {
		return 0, errors.InvalidInput(errors.PhaseRuntime, "guest allocation returned null")
	}
	return uint32(results[0]), nil
}

// free releases a guest allocation. Best effort: a guest without a free
// export leaks into its own linear memory, which dies with the module.
func (a *allocator) free(ctx context.Context, ptr, size uint32) {
	if a.freeFn == nil || ptr == 0 {
		return
	}
	if a.isSimple {
		_, _ = a.freeFn.Call(ctx, uint64(ptr))
	} else {
		_, _ = a.freeFn.Call(ctx, uint64(ptr), uint64(size), 8)
	}
}

// writeCString copies s into guest memory with a NUL terminator and
// returns the pointer. Caller frees size len(s)+1.
func writeCString(ctx context.Context, mem api.Memory, a *allocator, s string) (uint32, error) {
	ptr, err := a.alloc(ctx, uint32(len(s))+1)
	if err != nil {
		return 0, err
	}
	if !mem.Write(ptr, append([]byte(s), 0)) {
		return 0, oob(ptr, len(s)+1)
	}
	return ptr, nil
}

// readCString reads a NUL-terminated string out of guest memory in
// fixed windows, so unterminated garbage cannot run away.
func readCString(mem api.Memory, ptr uint32) (string, error) {
	const window = 256
	var out []byte
	for off := ptr; ; {
		n := uint32(window)
		if off >= mem.Size() {
			return "", oob(off, 1)
		}
		if off+n > mem.Size() {
			n = mem.Size() - off
		}
		chunk, ok := mem.Read(off, n)
		if !ok {
			return "", oob(off, int(n))
		}
		for i, b := range chunk {
			if b == 0 {
				return string(append(out, chunk[:i]...)), nil
			}
		}
		out = append(out, chunk...)
		off += n
		if len(out) > 1<<20 {
			return "", errors.InvalidInput(errors.PhaseRuntime, "unterminated string in guest memory")
		}
	}
}

// writeF64s copies a host vector into guest memory little-endian.
func writeF64s(mem api.Memory, ptr uint32, vals []float64) error {
	buf := make([]byte, 8*len(vals))
	for i, v := range vals {
		binary.LittleEndian.PutUint64(buf[8*i:], math.Float64bits(v))
	}
	if !mem.Write(ptr, buf) {
		return oob(ptr, len(buf))
	}
	return nil
}

// readF64s copies a guest vector out into dst.
func readF64s(mem api.Memory, ptr uint32, dst []float64) error {
	buf, ok := mem.Read(ptr, uint32(8*len(dst)))
	if !ok {
		return oob(ptr, 8*len(dst))
	}
	for i := range dst {
		dst[i] = math.Float64frombits(binary.LittleEndian.Uint64(buf[8*i:]))
	}
	return nil
}

func oob(ptr uint32, size int) error {
	return errors.InvalidInput(errors.PhaseRuntime,
		fmt.Sprintf("guest memory access out of bounds: ptr=%d size=%d", ptr, size))
}

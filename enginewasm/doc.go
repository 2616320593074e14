// Package enginewasm hosts a WebAssembly-compiled model engine with
// wazero and adapts its C-ABI export surface to the Engine interfaces.
//
// The engine's protocol generation is detected from the arity of the
// run export: legacy builds evaluate over one shared flat buffer and
// publish their register layout through define_regs; later builds take
// discrete state, parameter and derivative vectors. Either way the
// export surface is validated against a WIT interface description
// before the first call.
//
// Strings cross the boundary NUL-terminated, vectors as little-endian
// f64 windows. Guest allocations go through cabi_realloc when present,
// with fallbacks for pre-standardization allocator names.
package enginewasm

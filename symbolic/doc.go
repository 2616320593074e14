// Package symbolic holds the source-side expression layer and the
// recursive encoder that lowers it into the wire IR.
//
// Expressions arrive as closed Ex trees (Sym, Num, Tok, Call). The
// encoder is structural and side-effect free: identifiers are normalized,
// operator tokens are canonicalized, argument order is preserved, and a
// shape outside the known variants aborts the encode with an
// unrecognized-node error.
//
// A whole model is encoded through the ModelSource interface, which both
// a bare System and a metadata-carrying Model satisfy. The resulting
// ir.Document deduplicates parameters by normalized name (first-seen
// value wins) and keeps the state order exactly as given.
package symbolic

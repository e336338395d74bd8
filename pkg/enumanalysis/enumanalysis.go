// Package enumanalysis is the public entry point for the enum
// type-flow/upcast analysis: the single function a surrounding optimizer
// calls to find out which candidate enum classes remain safe to rewrite
// into plain integers.
package enumanalysis

import (
	"github.com/309746069/enumanalysis/internal/driver"
	"github.com/309746069/enumanalysis/internal/ir"
)

// RejectUnsafeEnums runs the full pass (spec §6) over prog and returns the
// subset of candidates that survived every rule: none of their values is
// ever observed through a supertype, a field, a cast, or an unsafe
// invocation. The returned slice is a new, independent value; candidates
// is not mutated.
//
// An error is returned only when the pass aborts on a violated IR
// invariant (spec §7) or when prog fails to build a method's CFG — a
// malformed program, not a finding about the candidates themselves. Per spec, the caller's safe degenerate response
// to an error is to treat it as if no candidates survived.
func RejectUnsafeEnums(prog ir.Program, candidates []ir.TypeId) ([]ir.TypeId, error) {
	return driver.Run(prog, candidates)
}

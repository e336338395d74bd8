// Package invariant panics on violated IR contracts. Per spec §7, these are
// not recoverable runtime errors — they indicate the external IR facade
// handed the analysis a malformed program — so the core aborts rather than
// degrading silently. This mirrors golang.org/x/tools/go/ssa, which panics
// rather than returning an error when it is handed inconsistent input.
package invariant

import "fmt"

// Violation is the panic value raised by Check; the driver recovers it at
// the per-method worker boundary and wraps it into the pass-aborting error
// it returns.
type Violation struct {
	Msg string
}

func (v Violation) Error() string { return v.Msg }

// Check panics with a Violation if cond is false.
func Check(cond bool, format string, args ...any) {
	if !cond {
		panic(Violation{Msg: fmt.Sprintf(format, args...)})
	}
}

package lattice

import "github.com/309746069/enumanalysis/internal/ir"

// Environment is the partial function Register → EnumTypes, with pointwise
// join. A missing register reads as bottom; a whole environment is bottom
// when the block it describes is unreachable. Environment is a mutable
// value used by the fixpoint engine's worklist and by the detector's
// instruction replay; callers that need an independent snapshot should
// Clone it first.
type Environment struct {
	bottom bool
	regs   map[ir.Register]EnumTypes
}

// NewEnvironment returns a reachable, empty environment (every register
// reads as bottom until Set).
func NewEnvironment() *Environment {
	return &Environment{regs: make(map[ir.Register]EnumTypes)}
}

// BottomEnvironment returns the bottom environment, used to seed
// not-yet-reached blocks in the fixpoint engine.
func BottomEnvironment() *Environment {
	return &Environment{bottom: true}
}

// IsBottom reports whether the environment as a whole is bottom
// (unreachable).
func (e *Environment) IsBottom() bool { return e.bottom }

// Get returns the set currently assigned to r, or bottom if r is unset (or
// the whole environment is bottom).
func (e *Environment) Get(r ir.Register) EnumTypes {
	if e.bottom {
		return Bottom()
	}
	if v, ok := e.regs[r]; ok {
		return v
	}
	return Bottom()
}

// Set assigns r := v. Setting a register on a bottom environment is a
// no-op: a bottom environment represents unreachable code, and no write
// can make it reachable.
func (e *Environment) Set(r ir.Register, v EnumTypes) {
	if e.bottom {
		return
	}
	if v.IsBottom() {
		delete(e.regs, r)
		return
	}
	e.regs[r] = v
}

// Clear removes any binding for r, equivalent to Set(r, Bottom()).
func (e *Environment) Clear(r ir.Register) { e.Set(r, Bottom()) }

// Clone returns an independent copy of e.
func (e *Environment) Clone() *Environment {
	if e.bottom {
		return BottomEnvironment()
	}
	regs := make(map[ir.Register]EnumTypes, len(e.regs))
	for k, v := range e.regs {
		regs[k] = v
	}
	return &Environment{regs: regs}
}

// Join merges other into e in place (pointwise join over every register
// named by either environment) and reports whether e changed. Joining
// bottom into anything is a no-op; joining anything into a bottom e makes
// e reachable, adopting other's bindings.
func (e *Environment) Join(other *Environment) (changed bool) {
	if other == nil || other.bottom {
		return false
	}
	if e.bottom {
		e.bottom = false
		e.regs = make(map[ir.Register]EnumTypes, len(other.regs))
		for k, v := range other.regs {
			e.regs[k] = v
		}
		return true // bottom -> reachable is always a change, even with no registers.
	}
	for k, v := range other.regs {
		cur, ok := e.regs[k]
		if !ok {
			e.regs[k] = v
			changed = true
			continue
		}
		joined := Join(cur, v)
		if !Equal(joined, cur) {
			e.regs[k] = joined
			changed = true
		}
	}
	return changed
}

// Registers returns the registers currently bound in a reachable
// environment (empty for bottom).
func (e *Environment) Registers() []ir.Register {
	if e.bottom {
		return nil
	}
	out := make([]ir.Register, 0, len(e.regs))
	for r := range e.regs {
		out = append(out, r)
	}
	return out
}

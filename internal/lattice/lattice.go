// Package lattice implements the enum type-flow analysis' abstract domain:
// EnumTypes (C1), a finite-powerset-over-named-types join-semilattice with
// an absorbing top, and Environment (C2), the pointwise product of that
// lattice over a method's virtual registers.
package lattice

import "github.com/309746069/enumanalysis/internal/ir"

// kind tags an EnumTypes value's position in the lattice.
type kind uint8

const (
	kindBottom kind = iota
	kindTop
	kindFinite
)

// EnumTypes is one element of the join-semilattice: bottom (no
// information, unreachable), top (any type, conservative) or a finite set
// of [ir.TypeId]. The zero value is bottom.
type EnumTypes struct {
	k    kind
	elts map[ir.TypeId]struct{}
}

// Bottom returns the bottom element (unreachable / no information).
func Bottom() EnumTypes { return EnumTypes{k: kindBottom} }

// Top returns the top element (any type). The transfer function described
// in C3 never materializes top; it is retained here purely so the algebra
// is complete for future extension, per spec's design notes.
func Top() EnumTypes { return EnumTypes{k: kindTop} }

// Of constructs the singleton {t}.
func Of(t ir.TypeId) EnumTypes {
	return EnumTypes{k: kindFinite, elts: map[ir.TypeId]struct{}{t: {}}}
}

// OfAll constructs the finite set containing exactly ts.
func OfAll(ts ...ir.TypeId) EnumTypes {
	if len(ts) == 0 {
		return Bottom()
	}
	e := EnumTypes{k: kindFinite, elts: make(map[ir.TypeId]struct{}, len(ts))}
	for _, t := range ts {
		e.elts[t] = struct{}{}
	}
	return e
}

// IsValue reports whether e is any non-bottom element.
func (e EnumTypes) IsValue() bool { return e.k != kindBottom }

// IsBottom reports whether e is the bottom element.
func (e EnumTypes) IsBottom() bool { return e.k == kindBottom }

// IsTop reports whether e is the top element.
func (e EnumTypes) IsTop() bool { return e.k == kindTop }

// Add returns a new set with t inserted; top absorbs, i.e. adding to top
// yields top.
func (e EnumTypes) Add(t ir.TypeId) EnumTypes {
	switch e.k {
	case kindTop:
		return e
	case kindBottom:
		return Of(t)
	default:
		out := make(map[ir.TypeId]struct{}, len(e.elts)+1)
		for k := range e.elts {
			out[k] = struct{}{}
		}
		out[t] = struct{}{}
		return EnumTypes{k: kindFinite, elts: out}
	}
}

// Join computes the least upper bound of a and b: set union, with top
// absorbing and bottom acting as identity.
func Join(a, b EnumTypes) EnumTypes {
	if a.k == kindTop || b.k == kindTop {
		return Top()
	}
	if a.k == kindBottom {
		return b
	}
	if b.k == kindBottom {
		return a
	}
	out := make(map[ir.TypeId]struct{}, len(a.elts)+len(b.elts))
	for k := range a.elts {
		out[k] = struct{}{}
	}
	for k := range b.elts {
		out[k] = struct{}{}
	}
	return EnumTypes{k: kindFinite, elts: out}
}

// LessEqual reports a ⊑ b: b is top, or a is bottom, or a's set is a subset
// of b's set.
func LessEqual(a, b EnumTypes) bool {
	if b.k == kindTop || a.k == kindBottom {
		return true
	}
	if a.k == kindTop {
		return b.k == kindTop
	}
	if b.k == kindBottom {
		return len(a.elts) == 0
	}
	for k := range a.elts {
		if _, ok := b.elts[k]; !ok {
			return false
		}
	}
	return true
}

// Equal reports whether a and b denote the same lattice element.
func Equal(a, b EnumTypes) bool {
	return LessEqual(a, b) && LessEqual(b, a)
}

// Elements yields the enumerated types; empty for bottom. Top is never
// materialized by the transfer function (see spec's design notes), so
// callers that might legitimately observe Top should check IsTop first.
func (e EnumTypes) Elements() []ir.TypeId {
	if e.k != kindFinite {
		return nil
	}
	out := make([]ir.TypeId, 0, len(e.elts))
	for k := range e.elts {
		out = append(out, k)
	}
	return out
}

// Contains reports whether t is one of e's elements (false for bottom and
// top, by construction top is never materialized so this is conservative
// rather than unsound for the cases this package actually produces).
func (e EnumTypes) Contains(t ir.TypeId) bool {
	if e.k != kindFinite {
		return false
	}
	_, ok := e.elts[t]
	return ok
}

// Len returns the number of elements in a finite set (0 for bottom/top).
func (e EnumTypes) Len() int {
	if e.k != kindFinite {
		return 0
	}
	return len(e.elts)
}

// DiscardPrimitives returns e with every primitive TypeId removed, per
// isPrimitive. The transfer rules for *get-object and aget-object do not
// call it; they filter primitives inline with prog.IsPrimitive.
func (e EnumTypes) DiscardPrimitives(isPrimitive func(ir.TypeId) bool) EnumTypes {
	if e.k != kindFinite {
		return e
	}
	out := make(map[ir.TypeId]struct{}, len(e.elts))
	for t := range e.elts {
		if !isPrimitive(t) {
			out[t] = struct{}{}
		}
	}
	if len(out) == 0 {
		return Bottom()
	}
	return EnumTypes{k: kindFinite, elts: out}
}

// Package sets provides the two shared, concurrently-accessed TypeId sets
// described in spec §5: a read-only candidate set and an insert-only
// rejected set. The rejected set uses xsync.Map, a lock-free concurrent
// map, since it is written from the parallel per-unit analysis; the
// candidate set is a plain map, since it is
// built once (single-threaded) before the parallel section begins and is
// never mutated until the final, single-threaded subtract.
package sets

import (
	"github.com/puzpuzpuz/xsync/v4"

	"github.com/309746069/enumanalysis/internal/ir"
)

// Candidates is the (immutable during analysis) set of enum types still
// eligible for the boxed-integer rewrite.
type Candidates struct {
	m map[ir.TypeId]struct{}
}

// NewCandidates builds a candidate set from ts.
func NewCandidates(ts ...ir.TypeId) *Candidates {
	m := make(map[ir.TypeId]struct{}, len(ts))
	for _, t := range ts {
		m[t] = struct{}{}
	}
	return &Candidates{m: m}
}

// Contains is the analysis' "count_unsafe": a deliberately unsynchronized
// read. It is safe only because Candidates is never mutated for the
// duration of the parallel per-method section; callers must not call
// Contains concurrently with Subtract.
func (c *Candidates) Contains(t ir.TypeId) bool {
	_, ok := c.m[t]
	return ok
}

// Len reports the number of live candidates.
func (c *Candidates) Len() int { return len(c.m) }

// All returns every candidate TypeId, in no particular order.
func (c *Candidates) All() []ir.TypeId {
	out := make([]ir.TypeId, 0, len(c.m))
	for t := range c.m {
		out = append(out, t)
	}
	return out
}

// Subtract removes every type in rejected from c. It must only be called
// after every worker touching c and rejected has joined (spec §5's "join
// barrier"); it is not itself safe for concurrent use.
func (c *Candidates) Subtract(rejected *Rejected) {
	rejected.m.Range(func(t ir.TypeId, _ struct{}) bool {
		delete(c.m, t)
		return true
	})
}

// Rejected is the shared, insert-only, concurrently-written set of
// TypeIds proven unsafe for the boxed-integer rewrite. Insertion is
// monotone: once a type is rejected it is never un-rejected before the
// final subtract.
type Rejected struct {
	m *xsync.Map[ir.TypeId, struct{}]
}

// NewRejected returns an empty rejected set.
func NewRejected() *Rejected {
	return &Rejected{m: xsync.NewMap[ir.TypeId, struct{}]()}
}

// Insert adds t to the rejected set. Safe for concurrent use by many
// workers analyzing different methods.
func (r *Rejected) Insert(t ir.TypeId) {
	r.m.Store(t, struct{}{})
}

// Contains reports whether t has been rejected. Safe for concurrent use
// alongside Insert (xsync.Map's load/store contract), used by the driver's
// generated-method skip list to analyze the generated methods of a
// candidate that is already rejected.
func (r *Rejected) Contains(t ir.TypeId) bool {
	_, ok := r.m.Load(t)
	return ok
}

// Len reports the number of rejected types. Intended for single-threaded
// use after the join barrier (diagnostics/logging).
func (r *Rejected) Len() int { return r.m.Size() }

// Package driver implements the parallel orchestration (C6) that ties the
// lattice, transfer, fixpoint and detector packages together into the full
// pass described by spec §4.6: build each method's initial environment,
// skip the compiler-generated methods a rewrite will handle separately,
// pre-filter fields and methods that pin a candidate in place, then analyze
// the remaining methods in parallel and prune the candidate set against
// whatever the workers rejected.
package driver

import (
	"fmt"
	goruntime "runtime"

	"golang.org/x/sync/errgroup"

	"github.com/309746069/enumanalysis/internal/detector"
	"github.com/309746069/enumanalysis/internal/fixpoint"
	"github.com/309746069/enumanalysis/internal/invariant"
	"github.com/309746069/enumanalysis/internal/ir"
	"github.com/309746069/enumanalysis/internal/lattice"
	"github.com/309746069/enumanalysis/internal/sets"
)

// Run executes the full pass over prog, starting from the given candidate
// enum types, and returns the surviving (still-safe-to-rewrite) subset. It
// never mutates prog.
func Run(prog ir.Program, candidateTypes []ir.TypeId) ([]ir.TypeId, error) {
	candidates := sets.NewCandidates(candidateTypes...)
	rejected := sets.NewRejected()

	fieldPreFilter(prog, candidates, rejected)

	methods := collectMethods(prog, candidates, rejected)

	if err := analyzeMethods(prog, candidates, rejected, methods); err != nil {
		return nil, err
	}

	candidates.Subtract(rejected)
	return candidates.All(), nil
}

// fieldPreFilter implements §4.6 step 3: a field whose declaring class is
// not itself a candidate, but whose type (or array element type) is, pins
// that candidate in place unless the field is safely renameable. It is run
// in parallel over classes, since each class's fields are independent of
// every other class's.
func fieldPreFilter(prog ir.Program, candidates *sets.Candidates, rejected *sets.Rejected) {
	var wg errgroup.Group
	wg.SetLimit(goruntime.NumCPU())

	for _, c := range prog.Classes() {
		wg.Go(func() error {
			for _, f := range prog.Fields(c) {
				declClass := prog.FieldDeclaringClass(f)
				if declType, ok := prog.ClassType(declClass); ok && candidates.Contains(declType) {
					continue // A candidate's own fields don't pin it via this rule.
				}
				ft := prog.FieldType(f)
				candidate := ft
				if prog.IsArray(ft) {
					comp, ok := prog.ComponentType(ft)
					if !ok {
						continue
					}
					candidate = comp
				}
				if !candidates.Contains(candidate) {
					continue
				}
				if !prog.CanRenameField(f) {
					rejected.Insert(candidate)
				}
			}
			return nil
		})
	}
	_ = wg.Wait() // Field workers never return an error.
}

// unit is one method queued for analysis, paired with the initial
// environment its load-params describe.
type unit struct {
	method ir.MethodId
	env0   *lattice.Environment
}

// collectMethods implements §4.6 steps 1, 2, 4 and 5: it walks every method
// of every class, builds its initial environment, applies the
// generated-method skip list and the method pre-filter, and short-circuits
// methods whose gathered types contain no live candidate. The returned
// units are exactly the methods step 6 must analyze.
func collectMethods(prog ir.Program, candidates *sets.Candidates, rejected *sets.Rejected) []unit {
	var units []unit
	for _, c := range prog.Classes() {
		for _, m := range prog.Methods(c) {
			if skipGenerated(prog, m, candidates, rejected) {
				continue
			}

			gathered := prog.GatherTypes(m)
			if !methodPreFilter(prog, m, gathered, candidates, rejected) {
				continue
			}

			if !anyLiveCandidate(gathered, candidates) {
				continue // §4.6 step 5: short-circuit.
			}

			units = append(units, unit{method: m, env0: initialEnvironment(prog, m)})
		}
	}
	return units
}

// skipGenerated implements §4.6 step 2: <clinit>, <init>, values() and
// valueOf(String) of a candidate enum class are skipped unless that class
// has already been rejected.
func skipGenerated(prog ir.Program, m ir.MethodId, candidates *sets.Candidates, rejected *sets.Rejected) bool {
	proto := prog.MethodProto(m)
	classType, hasClassType := prog.ClassType(proto.DeclaringClass)
	isCandidate := hasClassType && candidates.Contains(classType)
	if !isCandidate {
		return false
	}
	if rejected.Contains(classType) {
		return false // Already rejected: analyze it like any other method.
	}
	if prog.IsClinit(m) || prog.IsInit(m) {
		return true
	}
	return isEnumValues(prog, m) || isEnumValueOf(prog, m)
}

// methodPreFilter implements §4.6 step 4: for each live candidate named by
// gathered, reject it if m is not renameable. It always returns true: m is
// analyzed whether or not it is renameable.
func methodPreFilter(prog ir.Program, m ir.MethodId, gathered []ir.TypeId, candidates *sets.Candidates, rejected *sets.Rejected) bool {
	if prog.CanRenameMethod(m) {
		return true
	}
	for _, t := range gathered {
		if candidates.Contains(t) {
			rejected.Insert(t)
		}
	}
	return true // Non-renameable methods are still analyzed; only their named candidates are pinned.
}

func anyLiveCandidate(gathered []ir.TypeId, candidates *sets.Candidates) bool {
	for _, t := range gathered {
		if candidates.Contains(t) {
			return true
		}
	}
	return false
}

// initialEnvironment implements §4.6 step 1: walk the method's load-param
// instructions in order, binding r0 to the declaring class when non-static
// and each formal parameter register to its declared type.
func initialEnvironment(prog ir.Program, m ir.MethodId) *lattice.Environment {
	proto := prog.MethodProto(m)
	params := prog.ParamInstructions(m)

	want := len(proto.ArgTypes)
	if !prog.IsStatic(m) {
		want++
	}
	invariant.Check(len(params) == want,
		"method %s: %d load-params, want args.size()=%d + (isStatic?0:1)", prog.MethodName(m), len(params), want)

	env := lattice.NewEnvironment()
	i := 0
	if !prog.IsStatic(m) {
		if classType, ok := prog.ClassType(proto.DeclaringClass); ok {
			env.Set(params[0].Dest, lattice.Of(classType))
		}
		i = 1
	}
	for _, argType := range proto.ArgTypes {
		env.Set(params[i].Dest, lattice.Of(argType))
		i++
	}
	return env
}

// analyzeMethods implements §4.6 step 6: build each unit's CFG, run the
// fixpoint, then replay the detector against it, all in parallel across
// methods. A panicked invariant.Violation in one worker aborts the whole
// pass (spec §7): IR contract violations are not locally recoverable.
func analyzeMethods(prog ir.Program, candidates *sets.Candidates, rejected *sets.Rejected, units []unit) error {
	var wg errgroup.Group
	wg.SetLimit(goruntime.NumCPU())

	for _, u := range units {
		wg.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					if v, ok := r.(invariant.Violation); ok {
						err = fmt.Errorf("analyzing %s: %w", prog.MethodName(u.method), v)
						return
					}
					panic(r)
				}
			}()

			cfg, cerr := prog.Code(u.method)
			if cerr != nil {
				if cerr == ir.ErrNoCode {
					return nil
				}
				return fmt.Errorf("building CFG for %s: %w", prog.MethodName(u.method), cerr)
			}

			engine := fixpoint.Run(prog, cfg, u.env0)
			detector.New(prog, candidates, rejected).Run(u.method, cfg, engine)
			return nil
		})
	}
	return wg.Wait()
}

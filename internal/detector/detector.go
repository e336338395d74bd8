// Package detector implements the upcast detector (C5): a post-fixpoint
// instruction walk that consumes the fixpoint's result and, for every
// instruction that could force a candidate enum value to be observed as a
// supertype, removes the offending types from the shared rejected set.
package detector

import (
	"log/slog"

	"github.com/309746069/enumanalysis/internal/fixpoint"
	"github.com/309746069/enumanalysis/internal/invariant"
	"github.com/309746069/enumanalysis/internal/ir"
	"github.com/309746069/enumanalysis/internal/lattice"
	"github.com/309746069/enumanalysis/internal/sets"
)

// Detector walks one method's CFG after its fixpoint has converged and
// inserts offending types into the shared rejected set. It never mutates
// the candidate set.
type Detector struct {
	prog       ir.Program
	candidates *sets.Candidates
	rejected   *sets.Rejected
}

// New builds a Detector bound to prog and the shared candidate/rejected
// sets.
func New(prog ir.Program, candidates *sets.Candidates, rejected *sets.Rejected) *Detector {
	return &Detector{prog: prog, candidates: candidates, rejected: rejected}
}

// Run walks cfg, using engine's fixpoint result to seed each reachable
// block's live environment, replaying transfer as it goes (per spec §4.5:
// "walk instructions, replaying the transfer function to maintain a live
// env").
func (d *Detector) Run(method ir.MethodId, cfg *ir.CFG, engine *fixpoint.Engine) {
	for _, id := range cfg.BlockIDs() {
		entry := engine.EntryStateAt(id)
		if entry.IsBottom() {
			continue // Bottom environment blocks are skipped (§8 boundary behavior).
		}
		env := entry.Clone()
		block := cfg.Block(id)
		for _, insn := range block.Instructions {
			d.visit(method, insn, env)
			engine.AnalyzeInstruction(insn, env)
		}
	}
}

// visit applies the per-opcode detector rule for insn against the live
// environment env (the state *before* insn executes).
func (d *Detector) visit(method ir.MethodId, insn ir.Instruction, env *lattice.Environment) {
	switch insn.Op {
	case ir.OpCheckCast:
		d.rejectIfInconsistent(env.Get(insn.Srcs[0]), insn.Type, ReasonCastCheckCast)

	case ir.OpConstClass:
		d.reject(lattice.Of(insn.Type), ReasonUsedAsClassObject)

	case ir.OpInvokeInterface, ir.OpInvokeSuper:
		d.generalInvocation(insn, env)

	case ir.OpInvokeDirect:
		declClass := d.prog.MethodProto(insn.MethodOp).DeclaringClass
		if declType, ok := d.prog.ClassType(declClass); ok {
			invariant.Check(!d.candidates.Contains(declType), "invoke-direct receiver is a candidate enum")
		}
		d.generalInvocation(insn, env)

	case ir.OpInvokeStatic:
		if d.isEnumFactory(insn.MethodOp) {
			return
		}
		d.generalInvocation(insn, env)

	case ir.OpInvokeVirtual:
		if d.safeVirtualCall(insn, env) {
			return
		}
		d.generalInvocation(insn, env)

	case ir.OpReturnObject:
		proto := d.prog.MethodProto(method)
		invariant.Check(!env.Get(insn.Srcs[0]).IsBottom(), "return-object source register is unreachable")
		d.rejectIfInconsistent(env.Get(insn.Srcs[0]), proto.ReturnType, ReasonCastWhenReturn)

	case ir.OpAPutObject:
		d.apuObject(insn, env)

	case ir.OpIPutObject, ir.OpSPutObject:
		ft := d.prog.FieldType(insn.Field)
		d.rejectIfInconsistent(env.Get(insn.Srcs[0]), ft, ReasonCastISPutObject)

	case ir.OpIGetObject:
		declClass := d.prog.FieldDeclaringClass(insn.Field)
		if declType, ok := d.prog.ClassType(declClass); ok {
			invariant.Check(!d.candidates.Contains(declType), "instance field access on a candidate enum")
		}
	}
}

// isEnumFactory reports whether m is values()/valueOf(String) on a
// candidate enum class.
func (d *Detector) isEnumFactory(m ir.MethodId) bool {
	proto := d.prog.MethodProto(m)
	classType, ok := d.prog.ClassType(proto.DeclaringClass)
	if !ok || !d.candidates.Contains(classType) {
		return false
	}
	if !d.prog.IsEnumClass(proto.DeclaringClass) {
		return false
	}
	if proto.Name == "values" && len(proto.ArgTypes) == 0 {
		return true
	}
	if proto.Name == "valueOf" && len(proto.ArgTypes) == 1 && proto.ArgTypes[0] == d.prog.StringTypeID() {
		return true
	}
	return false
}

// apuObject implements the aput-object rule of §4.5.
func (d *Detector) apuObject(insn ir.Instruction, env *lattice.Environment) {
	arrayReg, valReg := insn.Srcs[0], insn.Srcs[1]
	arrSet := env.Get(arrayReg)

	var acceptable lattice.EnumTypes
	for _, t := range arrSet.Elements() {
		comp, ok := d.prog.ComponentType(t)
		if !ok || d.prog.IsPrimitive(comp) {
			continue
		}
		acceptable = acceptable.Add(comp)
	}

	switch acceptable.Len() {
	case 0:
		return // No acceptable element types: no-op (§8 boundary behavior).
	case 1:
		sole := acceptable.Elements()[0]
		d.rejectIfInconsistent(env.Get(valReg), sole, ReasonCastAPutObject)
	default:
		for _, t := range env.Get(valReg).Elements() {
			d.reject(lattice.Of(t), ReasonCastAPutObject)
		}
		for _, t := range acceptable.Elements() {
			d.reject(lattice.Of(t), ReasonCastAPutObject)
		}
	}
}

// safeVirtualCall implements the "Safe virtual calls" rules of §4.5.
// It returns true when the call was recognized and handled (whether or not
// it actually triggered a rejection); false means the caller should fall
// through to general invocation.
func (d *Detector) safeVirtualCall(insn ir.Instruction, env *lattice.Environment) bool {
	proto := d.prog.MethodProto(insn.MethodOp)
	declClass := proto.DeclaringClass
	declType, declOk := d.prog.ClassType(declClass)
	onEnumHierarchy := declType == d.prog.EnumTypeID() || (declOk && d.candidates.Contains(declType))
	if !onEnumHierarchy {
		return d.safeStringBuilderAppend(insn, env, declType)
	}

	thisTypes := nonPrimitive(d.prog, env.Get(insn.Srcs[0]))

	switch proto.Name {
	case "equals", "compareTo":
		if len(proto.ArgTypes) != 1 {
			return false
		}
		thatTypes := nonPrimitive(d.prog, env.Get(insn.Srcs[1]))
		mismatch := len(thisTypes) > 1 || len(thatTypes) > 1
		if !mismatch && len(thisTypes) == 1 && len(thatTypes) == 1 && thisTypes[0] != thatTypes[0] {
			mismatch = true
		}
		if mismatch {
			d.rejectAll(thisTypes, ReasonCastThisPointer)
			d.rejectAll(thatTypes, ReasonCastParameter)
		}
		return true

	case "toString", "name", "ordinal":
		if len(thisTypes) > 1 {
			d.rejectAll(thisTypes, ReasonMultiEnumTypes)
		}
		return true
	}

	return false
}

// safeStringBuilderAppend handles StringBuilder.append(Object) for callees
// off the Enum hierarchy: it matches only when the callee's declaring class
// is java.lang.StringBuilder.
func (d *Detector) safeStringBuilderAppend(insn ir.Instruction, env *lattice.Environment, declType ir.TypeId) bool {
	proto := d.prog.MethodProto(insn.MethodOp)
	if d.prog.TypeName(declType) != "java.lang.StringBuilder" || proto.Name != "append" {
		return false
	}
	// Exact signature match: append(Object), not any other append overload.
	if len(proto.ArgTypes) != 1 || proto.ArgTypes[0] != d.prog.ObjectTypeID() || len(insn.Srcs) < 2 {
		return false
	}
	thatTypes := nonPrimitive(d.prog, env.Get(insn.Srcs[1]))
	if len(thatTypes) > 1 {
		d.rejectAll(thatTypes, ReasonMultiEnumTypes)
	}
	return true
}

// generalInvocation implements the "General invocation" rule of §4.5.
func (d *Detector) generalInvocation(insn ir.Instruction, env *lattice.Environment) {
	proto := d.prog.MethodProto(insn.MethodOp)
	hasReceiver := len(insn.Srcs) == len(proto.ArgTypes)+1
	invariant.Check(hasReceiver || len(insn.Srcs) == len(proto.ArgTypes),
		"invocation src count %d matches neither args.size() %d nor args.size()+1", len(insn.Srcs), len(proto.ArgTypes))

	if insn.Op != ir.OpInvokeStatic {
		if declType, ok := d.prog.ClassType(proto.DeclaringClass); ok && d.candidates.Contains(declType) {
			d.reject(lattice.Of(declType), ReasonUnsafeInvocationOnCandidateEnum)
		}
	}

	argStart := 0
	if hasReceiver {
		if declType, ok := d.prog.ClassType(proto.DeclaringClass); ok {
			d.rejectIfInconsistent(env.Get(insn.Srcs[0]), declType, ReasonCastThisPointer)
		}
		argStart = 1
	}
	for i, argType := range proto.ArgTypes {
		d.rejectIfInconsistent(env.Get(insn.Srcs[argStart+i]), argType, ReasonCastParameter)
	}
}

// rejectIfInconsistent is the central operation of §4.5: given a value V, a
// required type R, and a reason, it either flags V's elements that
// disagree with R (when R is itself a candidate) or flags every candidate
// element of V outright (when R is not a candidate).
func (d *Detector) rejectIfInconsistent(v lattice.EnumTypes, required ir.TypeId, reason Reason) {
	if d.candidates.Contains(required) {
		for _, t := range v.Elements() {
			if d.prog.IsPrimitive(t) || t == required {
				continue
			}
			d.rejectOne(t, reason)
			d.rejectOne(required, reason)
		}
		return
	}
	for _, t := range v.Elements() {
		d.rejectOne(t, reason)
	}
}

// reject inserts every candidate element of v into the rejected set.
func (d *Detector) reject(v lattice.EnumTypes, reason Reason) {
	for _, t := range v.Elements() {
		d.rejectOne(t, reason)
	}
}

// rejectAll inserts every candidate type in ts into the rejected set.
func (d *Detector) rejectAll(ts []ir.TypeId, reason Reason) {
	for _, t := range ts {
		d.rejectOne(t, reason)
	}
}

// rejectOne inserts t into the rejected set if it is a live candidate,
// logging the reason for later debugging (the reason itself is never
// surfaced through the public API, per spec §4.5).
func (d *Detector) rejectOne(t ir.TypeId, reason Reason) {
	if !d.candidates.Contains(t) {
		return
	}
	d.rejected.Insert(t)
	slog.Debug("rejected enum candidate", "type", d.prog.TypeName(t), "reason", reason.String())
}

// nonPrimitive filters v's elements down to non-primitive types.
func nonPrimitive(prog ir.Program, v lattice.EnumTypes) []ir.TypeId {
	var out []ir.TypeId
	for _, t := range v.Elements() {
		if !prog.IsPrimitive(t) {
			out = append(out, t)
		}
	}
	return out
}

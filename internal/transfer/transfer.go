// Package transfer implements the enum type-flow analysis' per-opcode
// abstract semantics (C3): given an instruction and an environment, produce
// the successor environment. The fixpoint engine (internal/fixpoint) and
// the upcast detector (internal/detector) both drive instructions through
// [Apply] — the engine to reach the least fixed point, the detector to
// replay the same states while applying its own rejection rules.
package transfer

import (
	"github.com/309746069/enumanalysis/internal/ir"
	"github.com/309746069/enumanalysis/internal/lattice"
)

// Apply executes instruction insn against env, mutating env in place to
// reflect the instruction's effect on its declared destination register.
// Invocations write the pseudo RESULT register instead, and
// move-result-object/move-result-pseudo-object copy RESULT into their dest.
//
// This is a direct translation of the C3 transfer table in spec §4.3; see
// that table for the rationale behind each rule.
func Apply(prog ir.Program, insn ir.Instruction, env *lattice.Environment) {
	switch insn.Op {
	case ir.OpLoadParam:
		// Parameters are seeded by the driver before the fixpoint starts;
		// load-param itself has no effect here.
		return

	case ir.OpMoveObject:
		env.Set(insn.Dest, env.Get(insn.Srcs[0]))
		return

	case ir.OpInvokeStatic, ir.OpInvokeSuper, ir.OpInvokeDirect, ir.OpInvokeInterface, ir.OpInvokeVirtual:
		proto := prog.MethodProto(insn.MethodOp)
		env.Set(ir.ResultRegister, lattice.Of(proto.ReturnType))
		return

	case ir.OpConstClass:
		// Binds a java.lang.Class object, not insn.Type: see spec §4.3's
		// rationale (modelling it as the target type would hide the real
		// Class-object upcast).
		env.Set(insn.Dest, lattice.Of(prog.ClassTypeID()))
		return

	case ir.OpCheckCast:
		// Modelled by the cast's declared target type; the verifier
		// accepts the declared type downstream. The detector separately
		// checks consistency against the source register (§4.5).
		env.Set(insn.Dest, lattice.Of(insn.Type))
		return

	case ir.OpMoveResultObject, ir.OpMoveResultPseudoObject:
		env.Set(insn.Dest, env.Get(ir.ResultRegister))
		return

	case ir.OpSGetObject, ir.OpIGetObject:
		ft := prog.FieldType(insn.Field)
		if prog.IsPrimitive(ft) {
			return
		}
		env.Set(insn.Dest, lattice.Of(ft))
		return

	case ir.OpAGetObject:
		src := env.Get(insn.Srcs[0])
		var acc lattice.EnumTypes
		for _, t := range src.Elements() {
			comp, ok := prog.ComponentType(t)
			if !ok || prog.IsPrimitive(comp) {
				continue
			}
			acc = lattice.Join(acc, lattice.Of(comp))
		}
		env.Set(insn.Dest, acc)
		return
	}

	if !insn.HasDest {
		return
	}

	if insn.HasType {
		// "Anything else with has_type()": bind the declared type operand.
		env.Set(insn.Dest, lattice.Of(insn.Type))
		return
	}

	// Anything else with a dest is unknown to this domain: bottom (ignore).
	env.Clear(insn.Dest)
	if insn.DestWide {
		env.Clear(insn.Dest + 1)
	}
}

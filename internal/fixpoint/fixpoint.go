// Package fixpoint implements the enum type-flow analysis' forward
// monotone data-flow iteration (C4): given a method's CFG and an initial
// environment for the entry block, compute the least fixed point of the
// per-block transfer functions. The lattice is finite (bounded by the
// types named in the method) and every transfer/join is monotone, so a
// least fixed point exists and chaotic iteration order does not affect the
// result (spec §4.4).
package fixpoint

import (
	"github.com/309746069/enumanalysis/internal/ir"
	"github.com/309746069/enumanalysis/internal/lattice"
	"github.com/309746069/enumanalysis/internal/transfer"
)

// Engine holds the fixpoint result for one method's CFG: the entry
// environment of every block, reached by iterating block transfer
// functions to a fixed point. It also exposes AnalyzeInstruction so a
// later pass (the upcast detector) can replay the exact same per-
// instruction states without re-running the fixpoint.
type Engine struct {
	prog    ir.Program
	cfg     *ir.CFG
	entries map[ir.BlockId]*lattice.Environment
}

// Run builds the CFG's fixpoint starting from env0 at the entry block; all
// other blocks start at bottom. It uses a double-buffered worklist: blocks
// are pushed onto the worklist when their incoming state changes, and
// processed until the worklist drains.
func Run(prog ir.Program, cfg *ir.CFG, env0 *lattice.Environment) *Engine {
	e := &Engine{prog: prog, cfg: cfg, entries: make(map[ir.BlockId]*lattice.Environment)}

	for _, id := range cfg.BlockIDs() {
		if id == cfg.Entry {
			e.entries[id] = env0
		} else {
			e.entries[id] = lattice.BottomEnvironment()
		}
	}

	worklist := []ir.BlockId{cfg.Entry}
	shadow := make([]ir.BlockId, 0, len(cfg.Blocks))
	onList := map[ir.BlockId]bool{cfg.Entry: true}

	for len(worklist) > 0 {
		shadow, worklist = worklist, shadow[:0]
		for _, id := range shadow {
			onList[id] = false
			exit := e.exitState(id)
			block := cfg.Block(id)
			if block == nil {
				continue
			}
			for _, succ := range block.Successors {
				succEnv, ok := e.entries[succ]
				if !ok {
					succEnv = lattice.BottomEnvironment()
					e.entries[succ] = succEnv
				}
				if succEnv.Join(exit) {
					if !onList[succ] {
						onList[succ] = true
						worklist = append(worklist, succ)
					}
				}
			}
		}
	}

	return e
}

// exitState computes the exit environment of block id by sequentially
// applying the instruction transfer function starting from the block's
// (already-fixed) entry state.
func (e *Engine) exitState(id ir.BlockId) *lattice.Environment {
	env := e.entries[id].Clone()
	block := e.cfg.Block(id)
	if block == nil || env.IsBottom() {
		return env
	}
	for _, insn := range block.Instructions {
		transfer.Apply(e.prog, insn, env)
	}
	return env
}

// EntryStateAt returns the fixpoint's entry environment for block id.
func (e *Engine) EntryStateAt(id ir.BlockId) *lattice.Environment {
	if env, ok := e.entries[id]; ok {
		return env
	}
	return lattice.BottomEnvironment()
}

// AnalyzeInstruction applies the transfer function for a single
// instruction against env, mutating it in place. It is exposed so clients
// (the detector) replay the same per-instruction semantics the fixpoint
// itself used, without duplicating the opcode table.
func (e *Engine) AnalyzeInstruction(insn ir.Instruction, env *lattice.Environment) {
	transfer.Apply(e.prog, insn, env)
}

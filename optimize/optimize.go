// Package optimize implements the fixed-point interleaving of constant
// propagation, constant folding, common-subexpression elimination and
// dead-code elimination over a function's blocks.
package optimize

import (
	"context"

	"minic/ir"

	"github.com/eaburns/pretty"
	"tlog.app/go/tlog"
)

// Function runs every transform to fixpoint against fn, mutating it in
// place. The outer loop terminates when a full round of (propagation,
// then per-block folding, then per-block CSE, then per-block DCE)
// reports no change — propagation runs once per round at function
// granularity because it is a whole-function dataflow, while folding,
// CSE and DCE run per block because they are local.
func Function(ctx context.Context, fn *ir.Function) {
	if fn.Declared {
		return
	}
	tr, _ := tlog.SpawnFromContextAndWrap(ctx, "optimize func", "name", fn.Name)
	defer tr.Finish()

	rounds := 0
	for {
		changed := constPropFunc(fn)
		for _, b := range fn.Blocks {
			changed = foldBlock(b) || changed
			changed = cseBlock(b) || changed
			changed = dceBlock(b) || changed
		}
		rounds++
		if tr.If("dump_ir") {
			tr.Printw("round done", "func", fn.Name, "round", rounds, "changed", changed, "ir", pretty.String(fn))
		}
		if !changed {
			break
		}
	}
	tr.Printw("fixpoint reached", "func", fn.Name, "rounds", rounds)
}

// Module runs Function over every defined function in m.
func Module(ctx context.Context, m *ir.Module) {
	tr, ctx := tlog.SpawnFromContextAndWrap(ctx, "optimize module", "name", m.Name)
	defer tr.Finish()
	for _, fn := range m.Funcs {
		Function(ctx, fn)
	}
}

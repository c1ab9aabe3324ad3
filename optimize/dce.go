package optimize

import "minic/ir"

// dceBlock deletes instructions with no uses and no side effect.
// Victims are collected in forward order first and erased afterward, so
// that erasing one does not perturb the scan over the rest — the same
// collect-then-erase discipline the whole optimizer follows whenever a
// pass both replaces uses and deletes.
func dceBlock(b *ir.BasicBlock) bool {
	var dead []*ir.Instr
	for _, in := range b.Instrs {
		if !in.HasUses() && in.IsPure() {
			dead = append(dead, in)
		}
	}
	for _, in := range dead {
		in.EraseFromParent()
	}
	return len(dead) > 0
}

package optimize

import "minic/ir"

// foldBlock implements constant folding: any arithmetic or icmp
// instruction whose operands are all integer literals is replaced by
// the computed constant. Deletion of the now-dead instruction is left
// to a later dead-code-elimination round.
func foldBlock(b *ir.BasicBlock) bool {
	changed := false
	for _, in := range b.Instrs {
		c, ok := foldInstr(in)
		if !ok {
			continue
		}
		in.ReplaceAllUsesWith(ir.ConstOperand(c))
		changed = true
	}
	return changed
}

func foldInstr(in *ir.Instr) (int32, bool) {
	if in.Op != ir.Add && in.Op != ir.Sub && in.Op != ir.Mul && in.Op != ir.ICmp {
		return 0, false
	}
	a, b := in.Operands[0], in.Operands[1]
	if !a.IsConst() || !b.IsConst() {
		return 0, false
	}
	x, y := a.Const, b.Const
	switch in.Op {
	case ir.Add:
		return x + y, true // two's-complement wraparound is Go's default int32 behavior
	case ir.Sub:
		return x - y, true
	case ir.Mul:
		return x * y, true
	case ir.ICmp:
		return boolToInt32(evalPredicate(in.Pred, x, y)), true
	default:
		return 0, false
	}
}

func evalPredicate(p ir.Predicate, x, y int32) bool {
	switch p {
	case ir.Eq:
		return x == y
	case ir.Ne:
		return x != y
	case ir.Slt:
		return x < y
	case ir.Sle:
		return x <= y
	case ir.Sgt:
		return x > y
	case ir.Sge:
		return x >= y
	default:
		panic("optimize: unknown icmp predicate")
	}
}

func boolToInt32(v bool) int32 {
	if v {
		return 1
	}
	return 0
}

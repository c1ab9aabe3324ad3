package optimize

import "minic/ir"

// cseBlock implements common-subexpression elimination within a single
// block. A per-opcode bucket of previously seen instructions is scanned
// for the first surviving, operand-equal instruction; on a match every
// use of the later instruction is redirected to the earlier one. The
// later instruction stays in the block with no uses, for DCE to erase.
func cseBlock(b *ir.BasicBlock) bool {
	changed := false
	buckets := map[ir.Opcode][]*ir.Instr{}

	for idx, in := range b.Instrs {
		if in.Op == ir.AllocateSlot {
			continue
		}
		bucket := buckets[in.Op]
		matched := false
		for _, p := range bucket {
			if !p.HasUses() {
				// prior round removed p's only user; it isn't a
				// reuse candidate even though it hasn't been erased yet.
				continue
			}
			if !equivalent(p, in, b, idx) {
				continue
			}
			in.ReplaceAllUsesWith(ir.InstrOperand(p))
			changed = true
			matched = true
			break
		}
		if !matched {
			buckets[in.Op] = append(bucket, in)
		}
	}
	return changed
}

func equivalent(p, in *ir.Instr, b *ir.BasicBlock, inIndex int) bool {
	if p.Op != in.Op {
		return false
	}
	if p.Op == ir.ICmp && p.Pred != in.Pred {
		return false
	}
	if !operandsEqual(p.Operands, in.Operands) {
		return false
	}
	if p.Op == ir.Load {
		return !storeIntervenes(b, p, in, inIndex, p.Operands[0])
	}
	return true
}

func operandsEqual(a, b []ir.Operand) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) || a[i].Type() != b[i].Type() {
			return false
		}
	}
	return true
}

// storeIntervenes reports whether any store between p (exclusive) and
// in (exclusive), in block order, writes to ptr.
func storeIntervenes(b *ir.BasicBlock, p, in *ir.Instr, inIndex int, ptr ir.Operand) bool {
	pIndex := -1
	for idx, instr := range b.Instrs {
		if instr == p {
			pIndex = idx
			break
		}
	}
	if pIndex < 0 {
		return true
	}
	for i := pIndex + 1; i < inIndex; i++ {
		s := b.Instrs[i]
		if s.Op == ir.Store && s.Operands[1].Equal(ptr) {
			return true
		}
	}
	return false
}

// Package regalloc implements the per-block linear-scan register
// allocator: three general-purpose registers, furthest-use-blind
// smallest-use-count spill selection, and two-address reuse for
// arithmetic whose first operand dies at the defining instruction.
// Allocation never crosses a block boundary, because every value that
// must survive past its defining block already lives in a stack slot.
package regalloc

import (
	"context"

	"minic/ir"

	"tlog.app/go/tlog"
)

// Tag is one of the five allocator outcomes. TagNone never appears in
// a finished Allocation; it exists only as the zero value.
type Tag int

const (
	TagNone Tag = iota
	EAX
	EBX
	ECX
	EDX
	Spill
)

func (t Tag) String() string {
	switch t {
	case EAX:
		return "EAX"
	case EBX:
		return "EBX"
	case ECX:
		return "ECX"
	case EDX:
		return "EDX"
	case Spill:
		return "SPILL"
	default:
		return "NONE"
	}
}

var regOrder = [3]Tag{EBX, ECX, EDX}

func regIndex(t Tag) int {
	for i, r := range regOrder {
		if r == t {
			return i
		}
	}
	panic("regalloc: not an allocatable register tag")
}

// Allocation is the allocator's output: a partial function from
// instruction to register tag, plus the used-callee-saved flag the
// emitter needs for prologue/epilogue shape, one of each per function.
type Allocation struct {
	Tags            map[*ir.Instr]Tag
	UsedCalleeSaved map[*ir.Function]bool
}

func newAllocation() *Allocation {
	return &Allocation{Tags: map[*ir.Instr]Tag{}, UsedCalleeSaved: map[*ir.Function]bool{}}
}

// Module allocates registers for every defined function in m.
func Module(ctx context.Context, m *ir.Module) *Allocation {
	tr, _ := tlog.SpawnFromContextAndWrap(ctx, "regalloc module", "name", m.Name)
	defer tr.Finish()

	out := newAllocation()
	for _, fn := range m.Funcs {
		if fn.Declared {
			continue
		}
		usedEBX := false
		for _, b := range fn.Blocks {
			blockUsedEBX := allocateBlock(b, out.Tags)
			usedEBX = usedEBX || blockUsedEBX
		}
		out.UsedCalleeSaved[fn] = usedEBX
		if tr.If("dump_alloc") {
			tr.Printw("function allocated", "func", fn.Name, "used_ebx", usedEBX)
		}
	}
	return out
}

// regPool is the set of free registers, preferring the lowest-indexed
// one in EBX, ECX, EDX order, per the allocator's deterministic
// tie-break rule.
type regPool struct {
	free [3]bool
}

func newRegPool() *regPool { return &regPool{free: [3]bool{true, true, true}} }

func (p *regPool) hasFree() bool {
	for _, f := range p.free {
		if f {
			return true
		}
	}
	return false
}

func (p *regPool) take() Tag {
	for i, f := range p.free {
		if f {
			p.free[i] = false
			return regOrder[i]
		}
	}
	panic("regalloc: take called with no free registers")
}

func (p *regPool) release(t Tag) { p.free[regIndex(t)] = true }

// liveUses maps each block-local value to the sorted instruction
// indices at which it is defined or used, per the spec's definition;
// allocate-slot values are excluded since they never occupy a register.
func computeLiveUses(b *ir.BasicBlock) map[*ir.Instr][]int {
	uses := map[*ir.Instr][]int{}
	for idx, in := range b.Instrs {
		if in.Op == ir.AllocateSlot {
			continue
		}
		if in.DefinesValue() {
			uses[in] = append(uses[in], idx)
		}
		for _, op := range in.Operands {
			if op.Kind != ir.OperandInstr {
				continue
			}
			if op.Instr.Op == ir.AllocateSlot {
				continue
			}
			if op.Instr.Block != b {
				continue
			}
			uses[op.Instr] = append(uses[op.Instr], idx)
		}
	}
	return uses
}

func lastUseAt(liveUses map[*ir.Instr][]int, v *ir.Instr) int {
	u := liveUses[v]
	if len(u) == 0 {
		return -1
	}
	return u[len(u)-1]
}

// allocateBlock runs the linear scan over a single block, writing
// results into the shared tags map (keyed across the whole function),
// and reports whether EBX was assigned to anything in this block.
func allocateBlock(b *ir.BasicBlock, tags map[*ir.Instr]Tag) bool {
	liveUses := computeLiveUses(b)
	pool := newRegPool()
	var active []*ir.Instr
	usedEBX := false

	removeActive := func(v *ir.Instr) {
		for i, a := range active {
			if a == v {
				active = append(active[:i], active[i+1:]...)
				return
			}
		}
	}

	freeOperand := func(op ir.Operand, i int) {
		if op.Kind != ir.OperandInstr {
			return
		}
		v := op.Instr
		if v.Op == ir.AllocateSlot {
			return
		}
		tag, ok := tags[v]
		if !ok || tag == Spill {
			return
		}
		if lastUseAt(liveUses, v) == i {
			pool.release(tag)
			removeActive(v)
		}
	}

	for i, in := range b.Instrs {
		if in.Op == ir.AllocateSlot {
			continue
		}

		if !in.DefinesValue() {
			for _, op := range in.Operands {
				freeOperand(op, i)
			}
			continue
		}

		if in.Op.IsArithmetic() {
			o0 := in.Operands[0]
			if o0.Kind == ir.OperandInstr {
				if tag, ok := tags[o0.Instr]; ok && tag != Spill && lastUseAt(liveUses, o0.Instr) == i {
					tags[in] = tag
					if tag == EBX {
						usedEBX = true
					}
					removeActive(o0.Instr)
					active = append(active, in)
					if len(in.Operands) > 1 {
						freeOperand(in.Operands[1], i)
					}
					continue
				}
			}
		}

		if pool.hasFree() {
			tag := pool.take()
			tags[in] = tag
			if tag == EBX {
				usedEBX = true
			}
			active = append(active, in)
			for _, op := range in.Operands {
				freeOperand(op, i)
			}
			continue
		}

		victim := pickVictim(active, liveUses, in)
		if victim == nil {
			// every candidate register already freed this instruction,
			// which cannot happen if pool.hasFree() was false, but guard
			// against it rather than deref a nil victim.
			tags[in] = Spill
			for _, op := range in.Operands {
				freeOperand(op, i)
			}
			continue
		}
		if len(liveUses[victim]) > len(liveUses[in]) {
			tags[in] = Spill
		} else {
			victimTag := tags[victim]
			tags[in] = victimTag
			if victimTag == EBX {
				usedEBX = true
			}
			tags[victim] = Spill
			removeActive(victim)
			active = append(active, in)
		}
		for _, op := range in.Operands {
			freeOperand(op, i)
		}
	}
	return usedEBX
}

// pickVictim returns the active value with the fewest live-uses,
// breaking ties in favor of whichever was allocated first — active is
// kept in allocation order, so a simple left-to-right scan with a
// strict "<" replacement gives exactly that tie-break.
func pickVictim(active []*ir.Instr, liveUses map[*ir.Instr][]int, self *ir.Instr) *ir.Instr {
	var best *ir.Instr
	bestCount := -1
	for _, v := range active {
		if v == self {
			continue
		}
		c := len(liveUses[v])
		if best == nil || c < bestCount {
			best = v
			bestCount = c
		}
	}
	return best
}

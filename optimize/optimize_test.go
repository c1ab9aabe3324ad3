package optimize

import (
	"context"
	"testing"

	"minic/ir"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildConstFold builds:
//
//	entry:
//	    %1 = add i32 2, 3
//	    %2 = mul i32 %1, 4
//	    ret i32 %2
//
// which constant folding should collapse entirely to `ret i32 20`.
func buildConstFold() *ir.Function {
	fn := ir.NewFunction("f", ir.TypeInt32)
	b := ir.NewBuilder(fn, fn.NewBlock("entry"))
	sum := b.Add(ir.ConstOperand(2), ir.ConstOperand(3))
	prod := b.Mul(ir.InstrOperand(sum), ir.ConstOperand(4))
	b.Return(ir.InstrOperand(prod))
	return fn
}

func TestConstantFoldingAndDCE(t *testing.T) {
	fn := buildConstFold()
	Function(context.Background(), fn)

	entry := fn.Entry()
	require.Len(t, entry.Instrs, 1, "folding plus DCE should leave only the return")
	ret := entry.Instrs[0]
	assert.Equal(t, ir.Return, ret.Op)
	assert.True(t, ret.Operands[0].Equal(ir.ConstOperand(20)))
}

// buildCSE builds a block that loads the same slot twice with no
// intervening store, so the second load is redundant.
func buildCSE() (*ir.Function, *ir.Instr, *ir.Instr) {
	fn := ir.NewFunction("f", ir.TypeInt32)
	b := ir.NewBuilder(fn, fn.NewBlock("entry"))
	slot := b.AllocateSlot()
	b.Store(ir.ConstOperand(7), ir.InstrOperand(slot))
	load1 := b.Load(ir.InstrOperand(slot))
	load2 := b.Load(ir.InstrOperand(slot))
	sum := b.Add(ir.InstrOperand(load1), ir.InstrOperand(load2))
	ret := b.Return(ir.InstrOperand(sum))
	return fn, sum, ret
}

func TestCommonSubexpressionElimination(t *testing.T) {
	fn, _, _ := buildCSE()
	// constant propagation would also resolve both loads to 7; run cseBlock
	// in isolation to exercise CSE specifically. CSE only redirects uses;
	// erasing the now-unused load is left to DCE, so count loads still used.
	entry := fn.Entry()
	changed := cseBlock(entry)
	assert.True(t, changed)

	var loads int
	for _, in := range entry.Instrs {
		if in.Op == ir.Load && in.HasUses() {
			loads++
		}
	}
	assert.Equal(t, 1, loads, "the second load should have been replaced by the first")
}

func TestConstantPropagationAcrossBlocks(t *testing.T) {
	// entry: allocate-slot, store 9, jmp body
	// body: %v = load slot; ret %v
	fn := ir.NewFunction("f", ir.TypeInt32)
	entry := fn.NewBlock("entry")
	body := fn.NewBlock("body")
	be := ir.NewBuilder(fn, entry)
	slot := be.AllocateSlot()
	be.Store(ir.ConstOperand(9), ir.InstrOperand(slot))
	be.Jmp(body)

	bb := ir.NewBuilder(fn, body)
	v := bb.Load(ir.InstrOperand(slot))
	bb.Return(ir.InstrOperand(v))

	Function(context.Background(), fn)

	require.Len(t, body.Instrs, 1, "the load should be folded away, leaving only the return")
	assert.True(t, body.Instrs[0].Operands[0].Equal(ir.ConstOperand(9)))
}

func TestConstantPropagationBlockedByConditionalStore(t *testing.T) {
	// entry: allocate-slot; br cond, fblk, tblk
	// fblk: store 1, slot; jmp join
	// tblk: store 2, slot; jmp join
	// join: %v = load slot; ret %v   -- must NOT be folded: two different reaching constants
	fn := ir.NewFunction("f", ir.TypeInt32)
	fn.Param = &ir.Param{Name: "cond", Type: ir.TypeInt32}
	fn.Param.Func = fn

	entry := fn.NewBlock("entry")
	fblk := fn.NewBlock("fblk")
	tblk := fn.NewBlock("tblk")
	join := fn.NewBlock("join")

	be := ir.NewBuilder(fn, entry)
	slot := be.AllocateSlot()
	cmp := be.ICmp(ir.Ne, ir.ParamOperand(fn.Param), ir.ConstOperand(0))
	be.CondBranch(ir.InstrOperand(cmp), fblk, tblk)

	bf := ir.NewBuilder(fn, fblk)
	bf.Store(ir.ConstOperand(1), ir.InstrOperand(slot))
	bf.Jmp(join)

	bt := ir.NewBuilder(fn, tblk)
	bt.Store(ir.ConstOperand(2), ir.InstrOperand(slot))
	bt.Jmp(join)

	bj := ir.NewBuilder(fn, join)
	v := bj.Load(ir.InstrOperand(slot))
	bj.Return(ir.InstrOperand(v))

	changed := constPropFunc(fn)

	assert.False(t, changed)
	require.Len(t, join.Instrs, 2)
	assert.Equal(t, ir.Load, join.Instrs[0].Op)
}

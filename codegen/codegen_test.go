package codegen

import (
	"context"
	"strings"
	"testing"

	"minic/ir"
	"minic/regalloc"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildFrameAssignsParamSlotPlusEight(t *testing.T) {
	fn := ir.NewFunction("f", ir.TypeInt32)
	fn.Param = &ir.Param{Name: "x", Type: ir.TypeInt32}
	fn.Param.Func = fn
	b := ir.NewBuilder(fn, fn.NewBlock("entry"))
	slot := b.AllocateSlot()
	b.Store(ir.ParamOperand(fn.Param), ir.InstrOperand(slot))
	b.Return(ir.ConstOperand(0))

	fr := buildFrame(fn, map[*ir.Instr]regalloc.Tag{}, false)

	assert.Equal(t, 8, fr.offsets[slot])
	assert.Equal(t, 0, fr.size, "a param slot contributes nothing to local frame size")
}

func TestBuildFrameReservesEbxSlot(t *testing.T) {
	fn := ir.NewFunction("f", ir.TypeInt32)
	b := ir.NewBuilder(fn, fn.NewBlock("entry"))
	slot := b.AllocateSlot()
	b.Store(ir.ConstOperand(1), ir.InstrOperand(slot))
	b.Return(ir.ConstOperand(0))

	fr := buildFrame(fn, map[*ir.Instr]regalloc.Tag{}, true)

	assert.Equal(t, -8, fr.offsets[slot], "when %ebx is pushed, -4(%%ebp) is reserved for it")
	assert.Equal(t, 8, fr.size)
}

func TestEmitSimpleReturn(t *testing.T) {
	m := ir.NewModule("m")
	fn := ir.NewFunction("f", ir.TypeInt32)
	b := ir.NewBuilder(fn, fn.NewBlock("entry"))
	b.Return(ir.ConstOperand(42))
	m.AddFunc(fn)

	alloc := regalloc.Module(context.Background(), m)
	asm := Emit(context.Background(), m, alloc)

	require.Contains(t, asm, "\t.globl f\n")
	assert.Contains(t, asm, "movl $42, %eax")
	assert.Contains(t, asm, "leave")
	assert.Contains(t, asm, "ret")
	assert.False(t, strings.Contains(asm, "pushl %ebx"), "a function with no register pressure must not save %%ebx")
}

func TestEmitBranchUsesIcmpPredicate(t *testing.T) {
	m := ir.NewModule("m")
	fn := ir.NewFunction("f", ir.TypeInt32)
	entry := fn.NewBlock("entry")
	tblk := fn.NewBlock("tblk")
	fblk := fn.NewBlock("fblk")
	be := ir.NewBuilder(fn, entry)
	cmp := be.ICmp(ir.Slt, ir.ConstOperand(1), ir.ConstOperand(2))
	be.CondBranch(ir.InstrOperand(cmp), fblk, tblk)
	ir.NewBuilder(fn, tblk).Return(ir.ConstOperand(1))
	ir.NewBuilder(fn, fblk).Return(ir.ConstOperand(0))
	m.AddFunc(fn)

	alloc := regalloc.Module(context.Background(), m)
	asm := Emit(context.Background(), m, alloc)

	assert.Contains(t, asm, "cmpl")
	assert.Contains(t, asm, "jl ")
}

package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetOperandUpdatesUseLists(t *testing.T) {
	fn := NewFunction("f", TypeInt32)
	bb := fn.NewBlock("entry")
	a := fn.NewInstr(bb, AllocateSlot, TypePtr)
	b := fn.NewInstr(bb, AllocateSlot, TypePtr)
	load := fn.NewInstr(bb, Load, TypeInt32, InstrOperand(a))

	require.Len(t, a.Users(), 1)
	assert.Same(t, load, a.Users()[0].User)
	assert.Empty(t, b.Users())

	load.SetOperand(0, InstrOperand(b))

	assert.Empty(t, a.Users())
	require.Len(t, b.Users(), 1)
	assert.Same(t, load, b.Users()[0].User)
}

func TestReplaceAllUsesWithRewritesEveryUse(t *testing.T) {
	fn := NewFunction("f", TypeInt32)
	bb := fn.NewBlock("entry")
	slot := fn.NewInstr(bb, AllocateSlot, TypePtr)
	five := fn.NewInstr(bb, Add, TypeInt32, ConstOperand(2), ConstOperand(3))
	store1 := fn.NewInstr(bb, Store, TypeVoid, InstrOperand(five), InstrOperand(slot))
	ret := fn.NewInstr(bb, Return, TypeVoid, InstrOperand(five))

	five.ReplaceAllUsesWith(ConstOperand(5))

	assert.False(t, five.HasUses())
	assert.True(t, store1.Operands[0].Equal(ConstOperand(5)))
	assert.True(t, ret.Operands[0].Equal(ConstOperand(5)))
}

func TestEraseFromParentRemovesFromBlock(t *testing.T) {
	fn := NewFunction("f", TypeVoid)
	bb := fn.NewBlock("entry")
	a := fn.NewInstr(bb, AllocateSlot, TypePtr)
	fn.NewInstr(bb, Return, TypeVoid)

	a.EraseFromParent()

	assert.Len(t, bb.Instrs, 1)
	assert.Nil(t, a.Block)
}

func TestEraseFromParentPanicsWhileUsed(t *testing.T) {
	fn := NewFunction("f", TypeVoid)
	bb := fn.NewBlock("entry")
	slot := fn.NewInstr(bb, AllocateSlot, TypePtr)
	fn.NewInstr(bb, Load, TypeInt32, InstrOperand(slot))

	assert.Panics(t, func() { slot.EraseFromParent() })
}

func TestDefinesValue(t *testing.T) {
	fn := NewFunction("f", TypeInt32)
	bb := fn.NewBlock("entry")
	slot := fn.NewInstr(bb, AllocateSlot, TypePtr)
	store := fn.NewInstr(bb, Store, TypeVoid, ConstOperand(1), InstrOperand(slot))
	load := fn.NewInstr(bb, Load, TypeInt32, InstrOperand(slot))
	ret := fn.NewInstr(bb, Return, TypeVoid, InstrOperand(load))

	assert.True(t, slot.DefinesValue())
	assert.False(t, store.DefinesValue())
	assert.True(t, load.DefinesValue())
	assert.False(t, ret.DefinesValue())
}

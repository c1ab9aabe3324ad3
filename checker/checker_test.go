package checker

import (
	"testing"

	"minic/ir"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckAcceptsWellFormedFunction(t *testing.T) {
	fn := ir.NewFunction("f", ir.TypeInt32)
	b := ir.NewBuilder(fn, fn.NewBlock("entry"))
	slot := b.AllocateSlot()
	b.Store(ir.ConstOperand(1), ir.InstrOperand(slot))
	v := b.Load(ir.InstrOperand(slot))
	b.Return(ir.InstrOperand(v))

	m := ir.NewModule("m")
	m.AddFunc(fn)

	assert.Nil(t, Check(m))
}

func TestCheckRejectsAllocateSlotOutsideEntry(t *testing.T) {
	fn := ir.NewFunction("f", ir.TypeVoid)
	entry := fn.NewBlock("entry")
	other := fn.NewBlock("other")
	be := ir.NewBuilder(fn, entry)
	be.Jmp(other)
	bo := ir.NewBuilder(fn, other)
	bo.AllocateSlot()
	fn.NewInstr(other, ir.Return, ir.TypeVoid)

	m := ir.NewModule("m")
	m.AddFunc(fn)

	err := Check(m)
	require.NotNil(t, err)
	assert.Contains(t, err.Error(), "allocate-slot outside the entry block")
}

func TestCheckRejectsUnreachableBlock(t *testing.T) {
	fn := ir.NewFunction("f", ir.TypeVoid)
	entry := fn.NewBlock("entry")
	fn.NewBlock("dead")
	fn.NewInstr(entry, ir.Return, ir.TypeVoid)
	fn.NewInstr(fn.Blocks[1], ir.Return, ir.TypeVoid)

	m := ir.NewModule("m")
	m.AddFunc(fn)

	err := Check(m)
	require.NotNil(t, err)
	assert.Contains(t, err.Error(), "not reachable")
}

func TestCheckRejectsMisplacedTerminator(t *testing.T) {
	fn := ir.NewFunction("f", ir.TypeVoid)
	entry := fn.NewBlock("entry")
	fn.NewInstr(entry, ir.Return, ir.TypeVoid)
	fn.NewInstr(entry, ir.AllocateSlot, ir.TypePtr)

	m := ir.NewModule("m")
	m.AddFunc(fn)

	err := Check(m)
	require.NotNil(t, err)
}

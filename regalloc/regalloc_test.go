package regalloc

import (
	"testing"

	"minic/ir"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestTwoAddressReuse builds `%2 = add %1, c; %3 = add %2, c` — %1's only
// use is the first add, so the add should reuse %1's register rather
// than taking a fresh one.
func TestTwoAddressReuse(t *testing.T) {
	fn := ir.NewFunction("f", ir.TypeInt32)
	b := ir.NewBuilder(fn, fn.NewBlock("entry"))
	slot := b.AllocateSlot()
	v1 := b.Load(ir.InstrOperand(slot))
	v2 := b.Add(ir.InstrOperand(v1), ir.ConstOperand(1))
	v3 := b.Add(ir.InstrOperand(v2), ir.ConstOperand(1))
	b.Return(ir.InstrOperand(v3))

	tags := map[*ir.Instr]Tag{}
	allocateBlock(fn.Entry(), tags)

	require.Contains(t, tags, v1)
	require.Contains(t, tags, v2)
	assert.Equal(t, tags[v1], tags[v2], "v2 should reuse v1's register via two-address coalescing")
}

// TestSpillsUnderPressure forces more than three simultaneously live
// values in one block, which must produce at least one SPILL tag.
func TestSpillsUnderPressure(t *testing.T) {
	fn := ir.NewFunction("f", ir.TypeInt32)
	b := ir.NewBuilder(fn, fn.NewBlock("entry"))
	slot := b.AllocateSlot()

	var vals []*ir.Instr
	for i := 0; i < 4; i++ {
		v := b.Load(ir.InstrOperand(slot))
		vals = append(vals, v)
	}
	sum := vals[0]
	for _, v := range vals[1:] {
		sum = b.Add(ir.InstrOperand(sum), ir.InstrOperand(v))
	}
	b.Return(ir.InstrOperand(sum))

	tags := map[*ir.Instr]Tag{}
	allocateBlock(fn.Entry(), tags)

	spilled := 0
	for _, tag := range tags {
		if tag == Spill {
			spilled++
		}
	}
	assert.Greater(t, spilled, 0, "four simultaneously live values over three registers must spill something")
}

func TestComputeLiveUsesExcludesAllocateSlot(t *testing.T) {
	fn := ir.NewFunction("f", ir.TypeVoid)
	b := ir.NewBuilder(fn, fn.NewBlock("entry"))
	slot := b.AllocateSlot()
	b.Store(ir.ConstOperand(1), ir.InstrOperand(slot))
	fn.NewInstr(fn.Entry(), ir.Return, ir.TypeVoid)

	uses := computeLiveUses(fn.Entry())
	_, ok := uses[slot]
	assert.False(t, ok, "allocate-slot never occupies a register and must be excluded from live-use tracking")
}

func TestComputeLiveUsesIndicesMatchDefAndUse(t *testing.T) {
	fn := ir.NewFunction("f", ir.TypeInt32)
	b := ir.NewBuilder(fn, fn.NewBlock("entry"))
	slot := b.AllocateSlot()
	v1 := b.Load(ir.InstrOperand(slot))                  // index 1 (allocate-slot is 0)
	v2 := b.Add(ir.InstrOperand(v1), ir.ConstOperand(1)) // index 2, uses v1
	b.Return(ir.InstrOperand(v2))                        // index 3, uses v2

	uses := computeLiveUses(fn.Entry())

	if diff := cmp.Diff([]int{1, 2}, uses[v1]); diff != "" {
		t.Errorf("v1 live-use indices mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{2, 3}, uses[v2]); diff != "" {
		t.Errorf("v2 live-use indices mismatch (-want +got):\n%s", diff)
	}
}

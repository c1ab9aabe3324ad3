package codegen

import "minic/ir"
import "minic/regalloc"

// frame is the per-function offset map plus the derived frame size, the
// emitter-local side table built from the allocator's output.
type frame struct {
	offsets map[*ir.Instr]int
	size    int
}

// buildFrame walks the function's blocks once, assigning the
// parameter-holding slot offset +8 and bumping a local counter by 4 for
// every other allocate-slot or SPILL instruction, then derives the
// frame size from that counter.
//
// When the function pushes %ebx, it lands at -4(%ebp) (pushed after
// %ebp is set up but before the frame is carved out), so the counter
// starts at 4 rather than 0 to reserve that word and keep every slot
// and spill offset distinct from it.
func buildFrame(fn *ir.Function, tags map[*ir.Instr]regalloc.Tag, usedCalleeSaved bool) *frame {
	offsets := map[*ir.Instr]int{}
	counter := 0
	if usedCalleeSaved {
		counter = 4
	}
	for _, b := range fn.Blocks {
		for _, in := range b.Instrs {
			switch {
			case in.Op == ir.AllocateSlot:
				if isParamSlot(in) {
					offsets[in] = 8
					continue
				}
				counter += 4
				offsets[in] = -counter
			case tags[in] == regalloc.Spill:
				counter += 4
				offsets[in] = -counter
			}
		}
	}
	return &frame{offsets: offsets, size: counter}
}

// isParamSlot detects the slot backing the function's formal parameter
// by noticing that some store instruction stores the parameter value
// into it, the same fragile-but-robust heuristic the emitter's ancestry
// uses rather than an explicit is-parameter-slot flag on the slot.
func isParamSlot(slot *ir.Instr) bool {
	for _, u := range slot.Users() {
		if u.User.Op != ir.Store || u.Index != 1 {
			continue
		}
		if u.User.Operands[0].Kind == ir.OperandParam {
			return true
		}
	}
	return false
}

package codegen

import (
	"fmt"

	"minic/ir"
	"minic/regalloc"
)

// operandLoc classifies where an operand's value currently lives for
// lowering purposes: an immediate, a register (identified by tag, so
// callers can compare it against a working register), or a memory
// location addressed off %ebp.
type operandLoc struct {
	kind regalloc.Tag // EAX/EBX/ECX/EDX if register; TagNone for imm/mem
	text string
	imm  bool
	mem  bool
}

func (l operandLoc) isRegister() bool { return !l.imm && !l.mem }

// locate resolves an operand to its current storage, consulting the
// allocation map for instruction operands and always treating the
// function parameter as memory at its +8 slot.
func locate(op ir.Operand, alloc *regalloc.Allocation, fr *frame) operandLoc {
	switch op.Kind {
	case ir.OperandConst:
		return operandLoc{imm: true, text: fmt.Sprintf("$%d", op.Const)}
	case ir.OperandParam:
		return operandLoc{mem: true, text: offsetStr(8)}
	case ir.OperandInstr:
		tag := alloc.Tags[op.Instr]
		if tag == regalloc.Spill {
			return operandLoc{mem: true, text: offsetStr(fr.offsets[op.Instr])}
		}
		return operandLoc{kind: tag, text: regName(tag)}
	default:
		panic("codegen: operand has no materializable location")
	}
}

func ptrOffset(op ir.Operand, fr *frame) int {
	if op.Kind != ir.OperandInstr {
		panic("codegen: pointer operand is not an allocate-slot reference")
	}
	return fr.offsets[op.Instr]
}

func offsetStr(n int) string {
	return fmt.Sprintf("%d(%%ebp)", n)
}

// destLoc resolves where in's own result lives, for instructions that
// define a value.
func destLoc(in *ir.Instr, alloc *regalloc.Allocation, fr *frame) operandLoc {
	tag := alloc.Tags[in]
	if tag == regalloc.Spill {
		return operandLoc{mem: true, text: offsetStr(fr.offsets[in])}
	}
	return operandLoc{kind: tag, text: regName(tag)}
}

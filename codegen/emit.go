// Package codegen lowers a register-allocated module into
// AT&T-syntax x86 assembly text, one function at a time, following the
// stack-frame and per-opcode conventions a real cdecl-calling-convention
// backend uses.
package codegen

import (
	"context"
	"fmt"
	"os"
	"strings"

	"minic/ir"
	"minic/regalloc"

	"tlog.app/go/tlog"
)

// Emit lowers every defined function in m into assembly text, given the
// register allocation already computed for it by the regalloc package.
func Emit(ctx context.Context, m *ir.Module, alloc *regalloc.Allocation) string {
	tr, ctx := tlog.SpawnFromContextAndWrap(ctx, "codegen module", "name", m.Name)
	defer tr.Finish()

	var sb strings.Builder
	fmt.Fprintf(&sb, "\t.file %q\n", m.Name)
	sb.WriteString("\t.text\n")

	lfb := 0
	for _, fn := range m.Funcs {
		if fn.Declared {
			continue
		}
		lfb++
		emitFunc(ctx, &sb, fn, alloc, lfb)
	}
	return sb.String()
}

func emitFunc(ctx context.Context, sb *strings.Builder, fn *ir.Function, alloc *regalloc.Allocation, lfb int) {
	tr, _ := tlog.SpawnFromContextAndWrap(ctx, "codegen func", "name", fn.Name)
	defer tr.Finish()

	usedEBX := alloc.UsedCalleeSaved[fn]
	fr := buildFrame(fn, alloc.Tags, usedEBX)
	labels := assignLabels(fn)

	fmt.Fprintf(sb, "\t.globl %s\n", fn.Name)
	fmt.Fprintf(sb, "\t.type %s, @function\n", fn.Name)
	fmt.Fprintf(sb, "%s:\n", fn.Name)
	fmt.Fprintf(sb, ".LFB%d:\n", lfb)

	sb.WriteString("\tpushl %ebp\n")
	sb.WriteString("\tmovl %esp, %ebp\n")
	if usedEBX {
		sb.WriteString("\tpushl %ebx\n")
	}
	if fr.size > 0 {
		fmt.Fprintf(sb, "\tsubl $%d, %%esp\n", fr.size)
	}

	for _, b := range fn.Blocks {
		if b != fn.Entry() {
			fmt.Fprintf(sb, "%s:\n", labels[b])
		}
		for _, in := range b.Instrs {
			emitInstr(sb, in, alloc, fr, labels)
		}
	}

	if usedEBX {
		sb.WriteString("\tmovl -4(%ebp), %ebx\n")
	}
	sb.WriteString("\tleave\n")
	sb.WriteString("\tret\n")

	if tr.If("dump_asm") {
		tr.Printw("function emitted", "func", fn.Name, "frame_size", fr.size, "used_ebx", usedEBX)
	}
}

// assignLabels gives every block an ordinal ".L<n>" label in block
// order; the entry block's label is never printed since control falls
// through to it directly from the prologue.
func assignLabels(fn *ir.Function) map[*ir.BasicBlock]string {
	labels := map[*ir.BasicBlock]string{}
	for i, b := range fn.Blocks {
		labels[b] = fmt.Sprintf(".L%d", i)
	}
	return labels
}

func emitInstr(sb *strings.Builder, in *ir.Instr, alloc *regalloc.Allocation, fr *frame, labels map[*ir.BasicBlock]string) {
	switch in.Op {
	case ir.AllocateSlot:
		// reserved stack space only; nothing to emit.
	case ir.Return:
		emitReturn(sb, in, alloc, fr)
	case ir.Load:
		emitLoad(sb, in, alloc, fr)
	case ir.Store:
		emitStore(sb, in, alloc, fr)
	case ir.Call:
		emitCall(sb, in, alloc, fr)
	case ir.Branch:
		emitBranch(sb, in, labels)
	case ir.Add, ir.Sub, ir.Mul, ir.ICmp:
		emitBinOp(sb, in, alloc, fr)
	default:
		// Unsupported construct at emission time, not an invariant
		// violation: report and keep emitting the rest of the function,
		// the way codegen.cpp's generateAssemblyCode default case prints
		// "Unhandled instruction" and moves on to the next one.
		reportUnsupported(in)
	}
}

// reportUnsupported is the best-effort escape hatch for an opcode or
// predicate the emitter does not know how to lower. Production use
// should treat this as fatal; here it is a development aid, so emission
// continues with the instruction silently dropped from the output.
func reportUnsupported(in *ir.Instr) {
	fmt.Fprintf(os.Stderr, "codegen: unhandled instruction, skipping: %s\n", in)
}

func emitReturn(sb *strings.Builder, in *ir.Instr, alloc *regalloc.Allocation, fr *frame) {
	if len(in.Operands) == 0 {
		return
	}
	loc := locate(in.Operands[0], alloc, fr)
	movTo(sb, loc, "%eax")
}

func emitLoad(sb *strings.Builder, in *ir.Instr, alloc *regalloc.Allocation, fr *frame) {
	off := offsetStr(ptrOffset(in.Operands[0], fr))
	dst := destLoc(in, alloc, fr)
	if dst.isRegister() {
		fmt.Fprintf(sb, "\tmovl %s, %s\n", off, dst.text)
		return
	}
	fmt.Fprintf(sb, "\tmovl %s, %%eax\n", off)
	fmt.Fprintf(sb, "\tmovl %%eax, %s\n", dst.text)
}

func emitStore(sb *strings.Builder, in *ir.Instr, alloc *regalloc.Allocation, fr *frame) {
	if in.Operands[0].Kind == ir.OperandParam {
		return
	}
	off := offsetStr(ptrOffset(in.Operands[1], fr))
	src := locate(in.Operands[0], alloc, fr)
	switch {
	case src.imm:
		fmt.Fprintf(sb, "\tmovl %s, %s\n", src.text, off)
	case src.isRegister():
		fmt.Fprintf(sb, "\tmovl %s, %s\n", src.text, off)
	default:
		fmt.Fprintf(sb, "\tmovl %s, %%eax\n", src.text)
		fmt.Fprintf(sb, "\tmovl %%eax, %s\n", off)
	}
}

func emitCall(sb *strings.Builder, in *ir.Instr, alloc *regalloc.Allocation, fr *frame) {
	sb.WriteString("\tpushl %ebx\n")
	sb.WriteString("\tpushl %ecx\n")
	sb.WriteString("\tpushl %edx\n")

	hasArg := len(in.Operands) > 0
	if hasArg {
		arg := locate(in.Operands[0], alloc, fr)
		fmt.Fprintf(sb, "\tpushl %s\n", arg.text)
	}
	fmt.Fprintf(sb, "\tcall %s@PLT\n", in.Callee)
	if hasArg {
		sb.WriteString("\taddl $4, %esp\n")
	}

	sb.WriteString("\tpopl %edx\n")
	sb.WriteString("\tpopl %ecx\n")
	sb.WriteString("\tpopl %ebx\n")

	if in.DefinesValue() {
		dst := destLoc(in, alloc, fr)
		if dst.isRegister() {
			if dst.text != "%eax" {
				fmt.Fprintf(sb, "\tmovl %%eax, %s\n", dst.text)
			}
		} else {
			fmt.Fprintf(sb, "\tmovl %%eax, %s\n", dst.text)
		}
	}
}

func emitBranch(sb *strings.Builder, in *ir.Instr, labels map[*ir.BasicBlock]string) {
	if len(in.Operands) == 1 {
		fmt.Fprintf(sb, "\tjmp %s\n", labels[in.Operands[0].Block])
		return
	}
	cond := in.Operands[0]
	falseLabel := labels[in.Operands[1].Block]
	trueLabel := labels[in.Operands[2].Block]
	mnemonic, ok := cond.Instr.Pred.JumpMnemonic()
	if !ok {
		reportUnsupported(in)
		return
	}
	fmt.Fprintf(sb, "\t%s %s\n", mnemonic, trueLabel)
	fmt.Fprintf(sb, "\tjmp %s\n", falseLabel)
}

var binMnemonic = map[ir.Opcode]string{
	ir.Add:  "addl",
	ir.Sub:  "subl",
	ir.Mul:  "imull",
	ir.ICmp: "cmpl",
}

func emitBinOp(sb *strings.Builder, in *ir.Instr, alloc *regalloc.Allocation, fr *frame) {
	dst := destLoc(in, alloc, fr)
	work := dst
	if !dst.isRegister() {
		work = operandLoc{kind: regalloc.EAX, text: "%eax"}
	}

	src0 := locate(in.Operands[0], alloc, fr)
	movTo(sb, src0, work.text)

	src1 := locate(in.Operands[1], alloc, fr)
	fmt.Fprintf(sb, "\t%s %s, %s\n", binMnemonic[in.Op], src1.text, work.text)

	if !dst.isRegister() {
		fmt.Fprintf(sb, "\tmovl %s, %s\n", work.text, dst.text)
	}
}

// movTo materializes src into dstText, skipping the move when src is
// already the same register.
func movTo(sb *strings.Builder, src operandLoc, dstText string) {
	if src.isRegister() && src.text == dstText {
		return
	}
	fmt.Fprintf(sb, "\tmovl %s, %s\n", src.text, dstText)
}

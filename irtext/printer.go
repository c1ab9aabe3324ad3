package irtext

import (
	"fmt"
	"strings"

	"minic/ir"
)

// Print renders m back into the textual grammar Parse accepts. It is
// used for the optimizer binary's "_opt" output; the round-trip test
// checks that Parse(Print(m)) rebuilds the same block and instruction
// counts and prints back to identical text.
func Print(m *ir.Module) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "module %q\n\n", m.Name)
	for _, fn := range m.Funcs {
		if fn.Declared {
			printDeclare(&sb, fn)
		} else {
			printFunc(&sb, fn)
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func printDeclare(sb *strings.Builder, fn *ir.Function) {
	fmt.Fprintf(sb, "declare %s @%s(", fn.RetType, fn.Name)
	if fn.Param != nil {
		fmt.Fprint(sb, fn.Param.Type)
	}
	fmt.Fprint(sb, ")\n")
}

func printFunc(sb *strings.Builder, fn *ir.Function) {
	fmt.Fprintf(sb, "func %s(%s", fn.Name, fn.RetType)
	if fn.Param != nil {
		fmt.Fprintf(sb, ", %s %%%s", fn.Param.Type, fn.Param.Name)
	}
	sb.WriteString(") {\n")
	for _, b := range fn.Blocks {
		fmt.Fprintf(sb, "%s:\n", b.Label)
		for _, in := range b.Instrs {
			sb.WriteString("    ")
			printInstr(sb, in)
			sb.WriteString("\n")
		}
	}
	sb.WriteString("}\n")
}

func printInstr(sb *strings.Builder, in *ir.Instr) {
	if in.DefinesValue() {
		fmt.Fprintf(sb, "%s = ", in.Ref())
	}
	switch in.Op {
	case ir.AllocateSlot:
		sb.WriteString("allocate-slot i32")
	case ir.Load:
		fmt.Fprintf(sb, "load i32, ptr %s", in.Operands[0])
	case ir.Store:
		fmt.Fprintf(sb, "store i32 %s, ptr %s", in.Operands[0], in.Operands[1])
	case ir.Add, ir.Sub, ir.Mul:
		fmt.Fprintf(sb, "%s i32 %s, %s", in.Op, in.Operands[0], in.Operands[1])
	case ir.ICmp:
		fmt.Fprintf(sb, "icmp %s i32 %s, %s", in.Pred, in.Operands[0], in.Operands[1])
	case ir.Branch:
		if len(in.Operands) == 1 {
			fmt.Fprintf(sb, "br label %s", in.Operands[0])
		} else {
			fmt.Fprintf(sb, "br i1 %s, label %s, label %s", in.Operands[0], in.Operands[1], in.Operands[2])
		}
	case ir.Return:
		if len(in.Operands) == 0 {
			sb.WriteString("ret void")
		} else {
			fmt.Fprintf(sb, "ret i32 %s", in.Operands[0])
		}
	case ir.Call:
		fmt.Fprintf(sb, "call %s @%s(", in.Type, in.Callee)
		if len(in.Operands) > 0 {
			fmt.Fprintf(sb, "i32 %s", in.Operands[0])
		}
		sb.WriteString(")")
	default:
		sb.WriteString(in.Op.String())
	}
}

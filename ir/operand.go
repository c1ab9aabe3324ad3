package ir

import "strconv"

// OperandKind distinguishes the four things an operand reference can
// point at: another instruction's result, an integer literal, the
// function's formal parameter, or a basic block used as a branch target.
type OperandKind int

const (
	OperandInstr OperandKind = iota
	OperandConst
	OperandParam
	OperandBlock
)

// Operand is a value reference. Only one of Instr/Const/Param/Block is
// meaningful, selected by Kind; this mirrors the class-tagged operand
// shape used throughout the corpus rather than a Go interface, since the
// four cases never grow and callers frequently need to switch on Kind.
type Operand struct {
	Kind  OperandKind
	Instr *Instr
	Const int32
	Param *Param
	Block *BasicBlock
}

func InstrOperand(i *Instr) Operand      { return Operand{Kind: OperandInstr, Instr: i} }
func ConstOperand(c int32) Operand       { return Operand{Kind: OperandConst, Const: c} }
func ParamOperand(p *Param) Operand      { return Operand{Kind: OperandParam, Param: p} }
func BlockOperand(b *BasicBlock) Operand { return Operand{Kind: OperandBlock, Block: b} }

func (o Operand) IsConst() bool { return o.Kind == OperandConst }

// Type reports the static type an operand contributes to the
// instruction referencing it.
func (o Operand) Type() *Type {
	switch o.Kind {
	case OperandInstr:
		return o.Instr.Type
	case OperandConst:
		return TypeInt32
	case OperandParam:
		return o.Param.Type
	case OperandBlock:
		return TypeLabel
	default:
		return nil
	}
}

// Equal is identity equality: same class, same referent, same type.
// Constant folding, CSE and constant propagation all key off this.
func (o Operand) Equal(other Operand) bool {
	if o.Kind != other.Kind {
		return false
	}
	switch o.Kind {
	case OperandInstr:
		return o.Instr == other.Instr
	case OperandConst:
		return o.Const == other.Const
	case OperandParam:
		return o.Param == other.Param
	case OperandBlock:
		return o.Block == other.Block
	default:
		return false
	}
}

func (o Operand) String() string {
	switch o.Kind {
	case OperandInstr:
		return o.Instr.Ref()
	case OperandConst:
		return strconv.FormatInt(int64(o.Const), 10)
	case OperandParam:
		return "%" + o.Param.Name
	case OperandBlock:
		if o.Block == nil {
			return "%<nil-block>"
		}
		return "%" + o.Block.Label
	default:
		return "?"
	}
}

package ir

// Builder is a thin convenience layer over Function.NewInstr for
// constructing well-formed instructions without repeating their operand
// shape at every call site, in the spirit of the small per-opcode
// constructor helpers used elsewhere in this codebase's ancestry.
type Builder struct {
	Fn *Function
	Bb *BasicBlock
}

func NewBuilder(fn *Function, bb *BasicBlock) *Builder { return &Builder{Fn: fn, Bb: bb} }

func (b *Builder) AllocateSlot() *Instr {
	return b.Fn.NewInstr(b.Bb, AllocateSlot, TypePtr)
}

func (b *Builder) Load(ptr Operand) *Instr {
	return b.Fn.NewInstr(b.Bb, Load, TypeInt32, ptr)
}

func (b *Builder) Store(val, ptr Operand) *Instr {
	return b.Fn.NewInstr(b.Bb, Store, TypeVoid, val, ptr)
}

func (b *Builder) Add(x, y Operand) *Instr { return b.binop(Add, x, y) }
func (b *Builder) Sub(x, y Operand) *Instr { return b.binop(Sub, x, y) }
func (b *Builder) Mul(x, y Operand) *Instr { return b.binop(Mul, x, y) }

func (b *Builder) binop(op Opcode, x, y Operand) *Instr {
	return b.Fn.NewInstr(b.Bb, op, TypeInt32, x, y)
}

func (b *Builder) ICmp(pred Predicate, x, y Operand) *Instr {
	in := b.Fn.NewInstr(b.Bb, ICmp, TypeInt32, x, y)
	in.Pred = pred
	return in
}

func (b *Builder) Jmp(target *BasicBlock) *Instr {
	return b.Fn.NewInstr(b.Bb, Branch, TypeVoid, BlockOperand(target))
}

func (b *Builder) CondBranch(cond Operand, falseBlk, trueBlk *BasicBlock) *Instr {
	return b.Fn.NewInstr(b.Bb, Branch, TypeVoid, cond, BlockOperand(falseBlk), BlockOperand(trueBlk))
}

func (b *Builder) Return(v Operand) *Instr {
	return b.Fn.NewInstr(b.Bb, Return, TypeVoid, v)
}

func (b *Builder) Call(callee string, retType *Type, args ...Operand) *Instr {
	in := b.Fn.NewInstr(b.Bb, Call, retType, args...)
	in.Callee = callee
	return in
}

package ir

// Param is a function's single formal parameter. MiniC functions take
// at most one integer argument.
type Param struct {
	Name string
	Type *Type
	Func *Function
}

func (p *Param) String() string { return "%" + p.Name }

// Function is either a definition (Blocks non-empty, Entry() valid) or
// an external declaration (print/read), in which case Blocks is empty
// and Declared is true.
type Function struct {
	Name     string
	Param    *Param
	RetType  *Type
	Blocks   []*BasicBlock
	Declared bool

	nextInstrID int
	nextBlockID int
}

func NewFunction(name string, retType *Type) *Function {
	return &Function{Name: name, RetType: retType}
}

func (f *Function) Entry() *BasicBlock {
	if len(f.Blocks) == 0 {
		return nil
	}
	return f.Blocks[0]
}

// NewBlock appends and returns a fresh block owned by f.
func (f *Function) NewBlock(label string) *BasicBlock {
	b := &BasicBlock{Label: label, Func: f, Index: len(f.Blocks)}
	f.Blocks = append(f.Blocks, b)
	return b
}

// NewInstr allocates a new instruction, assigns it a fresh identity
// number and appends it to b. Operands are wired via AddOperand so the
// uses index stays correct from construction onward.
func (f *Function) NewInstr(b *BasicBlock, op Opcode, typ *Type, operands ...Operand) *Instr {
	f.nextInstrID++
	in := &Instr{id: f.nextInstrID, Op: op, Type: typ, Block: b}
	for _, o := range operands {
		in.AddOperand(o)
	}
	b.Instrs = append(b.Instrs, in)
	return in
}

// InsertInstr inserts an already-constructed instruction (built via
// NewInstr against some block, or freshly allocated with a fresh id)
// into b at position idx, taking ownership of it.
func (f *Function) InsertInstr(b *BasicBlock, idx int, in *Instr) {
	in.Block = b
	b.Instrs = append(b.Instrs, nil)
	copy(b.Instrs[idx+1:], b.Instrs[idx:])
	b.Instrs[idx] = in
}

// Renumber reassigns block indices to match current order. Instructions
// need no analogous renumbering since they keep stable ids for their
// lifetime.
func (f *Function) Renumber() {
	for i, b := range f.Blocks {
		b.Index = i
	}
}

func (f *Function) String() string {
	out := "func " + f.Name
	if f.Declared {
		return "declare " + f.RetType.String() + " @" + f.Name + "(...)\n"
	}
	out += "(" + f.RetType.String()
	if f.Param != nil {
		out += ", " + f.Param.Type.String() + " " + f.Param.Name
	}
	out += ") {\n"
	for _, b := range f.Blocks {
		out += b.String()
	}
	return out + "}\n"
}

// AllInstrs yields every instruction in the function in block order.
func (f *Function) AllInstrs() []*Instr {
	var out []*Instr
	for _, b := range f.Blocks {
		out = append(out, b.Instrs...)
	}
	return out
}

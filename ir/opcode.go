package ir

// Opcode is drawn from the fixed ten-member set the core understands.
// Kept as a small enum plus lookup tables rather than scattered
// switch-statement predicates, so the tables double as documentation.
type Opcode int

const (
	AllocateSlot Opcode = iota
	Load
	Store
	Add
	Sub
	Mul
	ICmp
	Branch
	Return
	Call
)

var opcodeNames = map[Opcode]string{
	AllocateSlot: "allocate-slot",
	Load:         "load",
	Store:        "store",
	Add:          "add",
	Sub:          "sub",
	Mul:          "mul",
	ICmp:         "icmp",
	Branch:       "branch",
	Return:       "return",
	Call:         "call",
}

func (op Opcode) String() string {
	if s, ok := opcodeNames[op]; ok {
		return s
	}
	return "invalid-opcode"
}

// sideEffecting mirrors the "Side-effectful opcodes are: store, call, and
// any terminator" rule used by dead-code elimination.
var sideEffecting = map[Opcode]bool{
	Store:  true,
	Call:   true,
	Branch: true,
	Return: true,
}

func (op Opcode) HasSideEffect() bool { return sideEffecting[op] }

// arithmetic are the opcodes eligible for constant folding and for
// two-address register reuse.
var arithmetic = map[Opcode]bool{
	Add: true,
	Sub: true,
	Mul: true,
}

func (op Opcode) IsArithmetic() bool { return arithmetic[op] }

func (op Opcode) IsTerminator() bool { return op == Branch || op == Return }

// Predicate is the integer-compare predicate carried by icmp instructions.
type Predicate int

const (
	Eq Predicate = iota
	Ne
	Slt
	Sle
	Sgt
	Sge
)

var predicateNames = map[Predicate]string{
	Eq:  "eq",
	Ne:  "ne",
	Slt: "slt",
	Sle: "sle",
	Sgt: "sgt",
	Sge: "sge",
}

func (p Predicate) String() string {
	if s, ok := predicateNames[p]; ok {
		return s
	}
	return "invalid-predicate"
}

// jumpMnemonic is the predicate-to-conditional-jump table the emitter
// uses for `branch` lowering.
var jumpMnemonic = map[Predicate]string{
	Eq:  "je",
	Ne:  "jne",
	Slt: "jl",
	Sle: "jle",
	Sgt: "jg",
	Sge: "jge",
}

func (p Predicate) JumpMnemonic() (string, bool) {
	m, ok := jumpMnemonic[p]
	return m, ok
}

func ParsePredicate(s string) (Predicate, bool) {
	for p, n := range predicateNames {
		if n == s {
			return p, true
		}
	}
	return 0, false
}

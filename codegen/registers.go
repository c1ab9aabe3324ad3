package codegen

import "minic/regalloc"

var regNames = map[regalloc.Tag]string{
	regalloc.EAX: "%eax",
	regalloc.EBX: "%ebx",
	regalloc.ECX: "%ecx",
	regalloc.EDX: "%edx",
}

func regName(t regalloc.Tag) string {
	n, ok := regNames[t]
	if !ok {
		panic("codegen: no register name for tag " + t.String())
	}
	return n
}

// predicateSetMnemonic is unused by branch lowering (which jumps
// directly on the icmp predicate) but documents the AT&T "set"
// mnemonics the six signed predicates correspond to, for any future
// direct-to-register comparison lowering.
var predicateSetMnemonic = map[string]string{
	"eq":  "sete",
	"ne":  "setne",
	"slt": "setl",
	"sle": "setle",
	"sgt": "setg",
	"sge": "setge",
}

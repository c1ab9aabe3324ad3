package irtext

type tokenKind int

const (
	tEOF     tokenKind = iota
	tIdent             // bare word: module, func, declare, load, add, label, i32, ptr, void, i1, entry, slt, ...
	tPercent           // %name or %123
	tAt                // @name
	tInt               // integer literal
	tString            // "quoted"
	tLParen
	tRParen
	tLBrace
	tRBrace
	tComma
	tColon
	tEquals
	tNewline
)

type token struct {
	kind tokenKind
	text string
	ival int32
	line int
	col  int
}

func (t token) String() string {
	switch t.kind {
	case tEOF:
		return "<eof>"
	case tPercent:
		return "%" + t.text
	case tAt:
		return "@" + t.text
	case tInt:
		return t.text
	case tString:
		return `"` + t.text + `"`
	default:
		return t.text
	}
}

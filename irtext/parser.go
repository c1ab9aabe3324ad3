// Package irtext implements the hand-written lexer, parser and printer
// for the fixed textual IR grammar the two CLI binaries read and write.
// There is no LLVM-C binding anywhere in this corpus, so the logical
// schema the driver contract calls for is given its own small grammar
// instead, parsed with a recursive-descent parser that builds *ir.Module
// directly — no separate AST, since the grammar is this fixed.
package irtext

import (
	"minic/errs"
	"minic/ir"
)

type parser struct {
	file string
	toks []token
	pos  int
}

// Parse reads the full textual IR grammar from src and builds a
// *ir.Module. file is used only for diagnostic locations.
func Parse(file, src string) (*ir.Module, *errs.Error) {
	toks, err := lexAll(file, src)
	if err != nil {
		return nil, err
	}
	p := &parser{file: file, toks: toks}
	return p.parseModule()
}

func (p *parser) cur() token { return p.toks[p.pos] }

func (p *parser) advance() token {
	t := p.toks[p.pos]
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return t
}

func (p *parser) loc() errs.Location {
	t := p.cur()
	return errs.Location{File: p.file, Line: t.line, Column: t.col}
}

func (p *parser) skipNewlines() {
	for p.cur().kind == tNewline {
		p.advance()
	}
}

func (p *parser) expectKind(k tokenKind, what string) (token, *errs.Error) {
	if p.cur().kind != k {
		return token{}, errs.New(errs.CodeParse, p.loc(), "expected %s, found %q", what, p.cur())
	}
	return p.advance(), nil
}

func (p *parser) expectIdent(text string) *errs.Error {
	t := p.cur()
	if t.kind != tIdent || t.text != text {
		return errs.New(errs.CodeParse, p.loc(), "expected %q, found %q", text, t)
	}
	p.advance()
	return nil
}

func (p *parser) parseModule() (*ir.Module, *errs.Error) {
	p.skipNewlines()
	if err := p.expectIdent("module"); err != nil {
		return nil, err
	}
	nameTok, err := p.expectKind(tString, "module name string")
	if err != nil {
		return nil, err
	}
	m := ir.NewModule(nameTok.text)
	p.skipNewlines()

	for p.cur().kind != tEOF {
		switch {
		case p.cur().kind == tIdent && p.cur().text == "func":
			if err := p.parseFunc(m); err != nil {
				return nil, err
			}
		case p.cur().kind == tIdent && p.cur().text == "declare":
			if err := p.parseDeclare(m); err != nil {
				return nil, err
			}
		default:
			return nil, errs.New(errs.CodeParse, p.loc(), "expected 'func' or 'declare', found %q", p.cur())
		}
		p.skipNewlines()
	}
	return m, nil
}

func (p *parser) parseType() (*ir.Type, *errs.Error) {
	t, err := p.expectKind(tIdent, "a type")
	if err != nil {
		return nil, err
	}
	switch t.text {
	case "i32":
		return ir.TypeInt32, nil
	case "i1":
		return ir.TypeInt32, nil
	case "void":
		return ir.TypeVoid, nil
	case "ptr":
		return ir.TypePtr, nil
	case "label":
		return ir.TypeLabel, nil
	default:
		return nil, errs.New(errs.CodeParse, p.loc(), "unknown type %q", t.text)
	}
}

func (p *parser) parseDeclare(m *ir.Module) *errs.Error {
	p.advance() // "declare"
	retType, err := p.parseType()
	if err != nil {
		return err
	}
	nameTok, err := p.expectKind(tAt, "@name")
	if err != nil {
		return err
	}
	if _, err := p.expectKind(tLParen, "("); err != nil {
		return err
	}
	var param *ir.Param
	if p.cur().kind != tRParen {
		ptype, err := p.parseType()
		if err != nil {
			return err
		}
		param = &ir.Param{Name: "arg", Type: ptype}
	}
	if _, err := p.expectKind(tRParen, ")"); err != nil {
		return err
	}
	fn := ir.NewFunction(nameTok.text, retType)
	fn.Declared = true
	fn.Param = param
	if param != nil {
		param.Func = fn
	}
	m.AddFunc(fn)
	return nil
}

func (p *parser) parseFunc(m *ir.Module) *errs.Error {
	p.advance() // "func"
	nameTok, err := p.expectKind(tIdent, "function name")
	if err != nil {
		return err
	}
	if _, err := p.expectKind(tLParen, "("); err != nil {
		return err
	}
	retType, err := p.parseType()
	if err != nil {
		return err
	}
	var param *ir.Param
	if p.cur().kind == tComma {
		p.advance()
		ptype, err := p.parseType()
		if err != nil {
			return err
		}
		pname, err := p.expectKind(tPercent, "parameter name")
		if err != nil {
			return err
		}
		param = &ir.Param{Name: pname.text, Type: ptype}
	}
	if _, err := p.expectKind(tRParen, ")"); err != nil {
		return err
	}
	if _, err := p.expectKind(tLBrace, "{"); err != nil {
		return err
	}

	fn := ir.NewFunction(nameTok.text, retType)
	fn.Param = param
	if param != nil {
		param.Func = fn
	}
	m.AddFunc(fn)

	blocks, err := p.prescanLabels(fn)
	if err != nil {
		return err
	}

	values := map[string]*ir.Instr{}
	var cur *ir.BasicBlock
	p.skipNewlines()
	for p.cur().kind != tRBrace {
		if p.cur().kind == tIdent && p.peekColon() {
			labelTok := p.advance()
			p.advance() // ':'
			cur = blocks[labelTok.text]
			p.skipNewlines()
			continue
		}
		if cur == nil {
			return errs.New(errs.CodeParse, p.loc(), "instruction outside any block")
		}
		if err := p.parseInstr(fn, cur, blocks, values, param); err != nil {
			return err
		}
		p.skipNewlines()
	}
	p.advance() // '}'
	return nil
}

func (p *parser) peekColon() bool {
	if p.pos+1 >= len(p.toks) {
		return false
	}
	return p.toks[p.pos+1].kind == tColon
}

// prescanLabels walks tokens from the function body's opening brace
// (already consumed) up to its matching closing brace, collecting every
// "label:" line so that forward branch references resolve, then
// creates the corresponding blocks in source order.
func (p *parser) prescanLabels(fn *ir.Function) (map[string]*ir.BasicBlock, *errs.Error) {
	blocks := map[string]*ir.BasicBlock{}
	depth := 0
	atLineStart := true
	for i := p.pos; ; i++ {
		if i >= len(p.toks) {
			return nil, errs.New(errs.CodeParse, p.loc(), "unterminated function body")
		}
		t := p.toks[i]
		if t.kind == tEOF {
			return nil, errs.New(errs.CodeParse, p.loc(), "unterminated function body")
		}
		if t.kind == tLBrace {
			depth++
		}
		if t.kind == tRBrace {
			if depth == 0 {
				break
			}
			depth--
		}
		if atLineStart && t.kind == tIdent && i+1 < len(p.toks) && p.toks[i+1].kind == tColon {
			if _, exists := blocks[t.text]; !exists {
				blocks[t.text] = fn.NewBlock(t.text)
			}
		}
		atLineStart = t.kind == tNewline
	}
	return blocks, nil
}

func (p *parser) parseOperand(values map[string]*ir.Instr, param *ir.Param) (ir.Operand, *errs.Error) {
	t := p.cur()
	switch t.kind {
	case tInt:
		p.advance()
		return ir.ConstOperand(t.ival), nil
	case tPercent:
		p.advance()
		if in, ok := values[t.text]; ok {
			return ir.InstrOperand(in), nil
		}
		if param != nil && param.Name == t.text {
			return ir.ParamOperand(param), nil
		}
		return ir.Operand{}, errs.New(errs.CodeParse, p.loc(), "undefined value %%%s", t.text)
	default:
		return ir.Operand{}, errs.New(errs.CodeParse, p.loc(), "expected an operand, found %q", t)
	}
}

func (p *parser) parseLabelRef(blocks map[string]*ir.BasicBlock) (*ir.BasicBlock, *errs.Error) {
	if err := p.expectIdent("label"); err != nil {
		return nil, err
	}
	nameTok, err := p.expectKind(tPercent, "block label")
	if err != nil {
		return nil, err
	}
	b, ok := blocks[nameTok.text]
	if !ok {
		return nil, errs.New(errs.CodeParse, p.loc(), "undefined block %%%s", nameTok.text)
	}
	return b, nil
}

var binOpcodes = map[string]ir.Opcode{
	"add": ir.Add,
	"sub": ir.Sub,
	"mul": ir.Mul,
}

func (p *parser) parseInstr(fn *ir.Function, bb *ir.BasicBlock, blocks map[string]*ir.BasicBlock, values map[string]*ir.Instr, param *ir.Param) *errs.Error {
	var destName string
	hasDest := false
	if p.cur().kind == tPercent {
		destName = p.advance().text
		hasDest = true
		if _, err := p.expectKind(tEquals, "="); err != nil {
			return err
		}
	}

	opTok, err := p.expectKind(tIdent, "an opcode")
	if err != nil {
		return err
	}

	var in *ir.Instr
	switch opTok.text {
	case "allocate-slot":
		if _, err := p.parseType(); err != nil {
			return err
		}
		in = fn.NewInstr(bb, ir.AllocateSlot, ir.TypePtr)

	case "load":
		if _, err := p.parseType(); err != nil {
			return err
		}
		if _, err := p.expectKind(tComma, ","); err != nil {
			return err
		}
		if err := p.expectIdent("ptr"); err != nil {
			return err
		}
		ptr, err := p.parseOperand(values, param)
		if err != nil {
			return err
		}
		in = fn.NewInstr(bb, ir.Load, ir.TypeInt32, ptr)

	case "store":
		if _, err := p.parseType(); err != nil {
			return err
		}
		val, err := p.parseOperand(values, param)
		if err != nil {
			return err
		}
		if _, err := p.expectKind(tComma, ","); err != nil {
			return err
		}
		if err := p.expectIdent("ptr"); err != nil {
			return err
		}
		ptr, err := p.parseOperand(values, param)
		if err != nil {
			return err
		}
		in = fn.NewInstr(bb, ir.Store, ir.TypeVoid, val, ptr)

	case "add", "sub", "mul":
		if _, err := p.parseType(); err != nil {
			return err
		}
		a, err := p.parseOperand(values, param)
		if err != nil {
			return err
		}
		if _, err := p.expectKind(tComma, ","); err != nil {
			return err
		}
		b, err := p.parseOperand(values, param)
		if err != nil {
			return err
		}
		in = fn.NewInstr(bb, binOpcodes[opTok.text], ir.TypeInt32, a, b)

	case "icmp":
		predTok, err := p.expectKind(tIdent, "an icmp predicate")
		if err != nil {
			return err
		}
		pred, ok := ir.ParsePredicate(predTok.text)
		if !ok {
			return errs.New(errs.CodeParse, p.loc(), "unknown icmp predicate %q", predTok.text)
		}
		if _, err := p.parseType(); err != nil {
			return err
		}
		a, err := p.parseOperand(values, param)
		if err != nil {
			return err
		}
		if _, err := p.expectKind(tComma, ","); err != nil {
			return err
		}
		b, err := p.parseOperand(values, param)
		if err != nil {
			return err
		}
		in = fn.NewInstr(bb, ir.ICmp, ir.TypeInt32, a, b)
		in.Pred = pred

	case "br":
		if p.cur().kind == tIdent && p.cur().text == "label" {
			target, err := p.parseLabelRef(blocks)
			if err != nil {
				return err
			}
			in = fn.NewInstr(bb, ir.Branch, ir.TypeVoid, ir.BlockOperand(target))
		} else {
			if _, err := p.parseType(); err != nil {
				return err
			}
			cond, err := p.parseOperand(values, param)
			if err != nil {
				return err
			}
			if _, err := p.expectKind(tComma, ","); err != nil {
				return err
			}
			falseBlk, err := p.parseLabelRef(blocks)
			if err != nil {
				return err
			}
			if _, err := p.expectKind(tComma, ","); err != nil {
				return err
			}
			trueBlk, err := p.parseLabelRef(blocks)
			if err != nil {
				return err
			}
			in = fn.NewInstr(bb, ir.Branch, ir.TypeVoid, cond, ir.BlockOperand(falseBlk), ir.BlockOperand(trueBlk))
		}

	case "ret":
		if p.cur().kind == tIdent && p.cur().text == "void" {
			p.advance()
			in = fn.NewInstr(bb, ir.Return, ir.TypeVoid)
		} else {
			if _, err := p.parseType(); err != nil {
				return err
			}
			v, err := p.parseOperand(values, param)
			if err != nil {
				return err
			}
			in = fn.NewInstr(bb, ir.Return, ir.TypeVoid, v)
		}

	case "call":
		retType, err := p.parseType()
		if err != nil {
			return err
		}
		calleeTok, err := p.expectKind(tAt, "@callee")
		if err != nil {
			return err
		}
		if _, err := p.expectKind(tLParen, "("); err != nil {
			return err
		}
		var args []ir.Operand
		if p.cur().kind != tRParen {
			if _, err := p.parseType(); err != nil {
				return err
			}
			arg, err := p.parseOperand(values, param)
			if err != nil {
				return err
			}
			args = append(args, arg)
		}
		if _, err := p.expectKind(tRParen, ")"); err != nil {
			return err
		}
		in = fn.NewInstr(bb, ir.Call, retType, args...)
		in.Callee = calleeTok.text

	default:
		return errs.New(errs.CodeParse, p.loc(), "unknown opcode %q", opTok.text)
	}

	if hasDest {
		if !in.DefinesValue() {
			return errs.New(errs.CodeParse, p.loc(), "instruction %q does not produce a value but was assigned to %%%s", opTok.text, destName)
		}
		values[destName] = in
	}
	return nil
}

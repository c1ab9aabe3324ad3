// Package checker validates the structural invariants the optimizer,
// allocator and emitter all depend on: every block reachable and
// singly-terminated, and allocate-slot confined to the entry block.
// Operand references are not checked here. It is run once after parsing
// and once more after optimization, mirroring the two-checkpoint
// pattern of validating both before and after a mutating stage.
package checker

import (
	"minic/errs"
	"minic/ir"
)

// Check walks every defined function in m and returns the first
// violation found, or nil if the module is well-formed.
func Check(m *ir.Module) *errs.Error {
	for _, fn := range m.Funcs {
		if fn.Declared {
			continue
		}
		if err := checkFunc(fn); err != nil {
			return err
		}
	}
	return nil
}

func checkFunc(fn *ir.Function) *errs.Error {
	if len(fn.Blocks) == 0 {
		return errs.New(errs.CodeCheck, errs.Location{Func: fn.Name}, "function has no blocks")
	}
	if err := checkTerminators(fn); err != nil {
		return err
	}
	if err := checkAllocateSlotPlacement(fn); err != nil {
		return err
	}
	if err := checkReachability(fn); err != nil {
		return err
	}
	return nil
}

func checkTerminators(fn *ir.Function) *errs.Error {
	for _, b := range fn.Blocks {
		if len(b.Instrs) == 0 {
			return errs.New(errs.CodeCheck, errs.Location{Func: fn.Name, Block: b.Label}, "block %q does not end with a terminator", b.Label)
		}
		for i, in := range b.Instrs {
			isLast := i == len(b.Instrs)-1
			if in.IsTerminator() && !isLast {
				return errs.New(errs.CodeCheck, loc(fn, b, in), "terminator is not the last instruction in its block")
			}
			if !in.IsTerminator() && isLast {
				return errs.New(errs.CodeCheck, loc(fn, b, in), "block %q does not end with a terminator", b.Label)
			}
		}
	}
	return nil
}

func checkAllocateSlotPlacement(fn *ir.Function) *errs.Error {
	entry := fn.Entry()
	for _, b := range fn.Blocks {
		if b == entry {
			continue
		}
		for _, in := range b.Instrs {
			if in.Op == ir.AllocateSlot {
				return errs.New(errs.CodeCheck, loc(fn, b, in), "allocate-slot outside the entry block")
			}
		}
	}
	return nil
}

func checkReachability(fn *ir.Function) *errs.Error {
	reached := map[*ir.BasicBlock]bool{}
	var walk func(b *ir.BasicBlock)
	walk = func(b *ir.BasicBlock) {
		if reached[b] {
			return
		}
		reached[b] = true
		for _, s := range b.Successors() {
			walk(s)
		}
	}
	walk(fn.Entry())
	for _, b := range fn.Blocks {
		if !reached[b] {
			return errs.New(errs.CodeCheck, errs.Location{Func: fn.Name, Block: b.Label}, "block is not reachable from the entry block")
		}
	}
	return nil
}

func loc(fn *ir.Function, b *ir.BasicBlock, in *ir.Instr) errs.Location {
	return errs.Location{Func: fn.Name, Block: b.Label, Instr: in.String()}
}

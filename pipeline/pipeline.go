// Package pipeline wires parsing, structural checking, optimization,
// allocation and emission into the two driver operations the CLI
// binaries expose. Optimize runs parse, check, optimize, check again,
// then prints the result. Codegen is a separate stage: it runs parse,
// check, then allocation and emission straight off the checked module,
// with no optimization pass of its own — a module must already have
// been run through minic-opt if optimized assembly is wanted.
package pipeline

import (
	"context"

	"minic/checker"
	"minic/codegen"
	"minic/errs"
	"minic/ir"
	"minic/irtext"
	"minic/optimize"
	"minic/regalloc"

	"tlog.app/go/errors"
	"tlog.app/go/tlog"
)

// Optimize parses src, checks it, runs the fixpoint optimizer, checks
// the result, and returns the optimized module printed back to text.
func Optimize(ctx context.Context, file, src string) (string, error) {
	tr, ctx := tlog.SpawnFromContextAndWrap(ctx, "pipeline optimize", "file", file)
	defer tr.Finish()

	m, err := parseAndCheck(ctx, file, src)
	if err != nil {
		return "", err
	}

	optimize.Module(ctx, m)

	if err := checker.Check(m); err != nil {
		return "", errors.Wrap(err, "module failed invariant check after optimization")
	}

	return irtext.Print(m), nil
}

// Codegen parses src, checks it, allocates registers and emits
// AT&T-syntax x86 assembly text directly from the checked module.
// Unlike Optimize, it never runs the optimizer — minic-codegen and
// minic-opt are separate stages of the pipeline, exactly as
// register_allocation.cpp's main and codegen.cpp's main each run
// straight off the parsed module without an intervening optimization
// pass.
func Codegen(ctx context.Context, file, src string) (string, error) {
	tr, ctx := tlog.SpawnFromContextAndWrap(ctx, "pipeline codegen", "file", file)
	defer tr.Finish()

	m, err := parseAndCheck(ctx, file, src)
	if err != nil {
		return "", err
	}

	alloc := regalloc.Module(ctx, m)
	asm := codegen.Emit(ctx, m, alloc)

	if tr.If("dump_asm") {
		tr.Printw("assembly emitted", "file", file, "bytes", len(asm))
	}

	return asm, nil
}

func parseAndCheck(ctx context.Context, file, src string) (*ir.Module, *errs.Error) {
	tr, _ := tlog.SpawnFromContextAndWrap(ctx, "pipeline parse", "file", file)
	defer tr.Finish()

	m, err := irtext.Parse(file, src)
	if err != nil {
		return nil, err
	}
	if err := checker.Check(m); err != nil {
		return nil, err
	}
	return m, nil
}

// Command minic-codegen runs allocation and emission over a single
// textual IR file and writes AT&T-syntax x86 assembly next to it. It
// never runs the optimizer; feed it the output of minic-opt if
// optimized assembly is wanted.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"minic/errs"
	"minic/pipeline"

	"nikand.dev/go/cli"
	"tlog.app/go/tlog"
)

func main() {
	fs := flag.NewFlagSet("minic-codegen", flag.ExitOnError)
	verbosity := fs.String("v", "", "tlog verbosity filter, e.g. \"dump_alloc\"")
	dumpIR := fs.Bool("dump-ir", false, "print the IR after every optimization round")
	dumpAlloc := fs.Bool("dump-alloc", false, "print register allocation decisions")
	fs.Parse(os.Args[1:])

	tlog.SetVerbosity(verbosityFilter(*verbosity, *dumpIR, *dumpAlloc))

	app := &cli.Command{
		Name:        "minic-codegen",
		Description: "lowers a MiniC textual IR module to x86 assembly",
		Action:      run,
		Args:        cli.Args{},
	}

	cli.RunAndExit(app, append([]string{os.Args[0]}, fs.Args()...), os.Environ())
}

// verbosityFilter builds the tlog filter string from the flags, folding
// the -dump-ir/-dump-alloc convenience flags into whatever topics -v
// already named.
func verbosityFilter(v string, dumpIR, dumpAlloc bool) string {
	var topics []string
	if v != "" {
		topics = append(topics, v)
	}
	if dumpIR {
		topics = append(topics, "dump_ir")
	}
	if dumpAlloc {
		topics = append(topics, "dump_alloc")
	}
	return strings.Join(topics, ",")
}

func run(c *cli.Command) error {
	if len(c.Args) != 1 {
		fmt.Fprintln(os.Stderr, "minic-codegen: expected exactly one input file")
		os.Exit(1)
	}
	file := c.Args[0]

	src, err := os.ReadFile(file)
	if err != nil {
		fmt.Fprintf(os.Stderr, "minic-codegen: %v\n", errs.FromFileError(err))
		os.Exit(1)
	}

	ctx := tlog.ContextWithSpan(context.Background(), tlog.Root())

	out, err := pipeline.Codegen(ctx, file, string(src))
	if err != nil {
		fmt.Fprintf(os.Stderr, "minic-codegen: %v\n", err)
		os.Exit(2)
	}

	outFile := strings.TrimSuffix(file, ".ll") + ".s"
	if err := os.WriteFile(outFile, []byte(out), 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "minic-codegen: %v\n", err)
		os.Exit(2)
	}

	return nil
}

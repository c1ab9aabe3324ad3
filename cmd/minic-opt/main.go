// Command minic-opt runs the fixed-point optimizer over a single
// textual IR file and writes the optimized module next to it.
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
	fs := flag.NewFlagSet("minic-opt", flag.ExitOnError)
	verbosity := fs.String("v", "", "tlog verbosity filter, e.g. \"dump_ir\"")
	dumpIR := fs.Bool("dump-ir", false, "print the IR after every optimization round")
	dumpAlloc := fs.Bool("dump-alloc", false, "print register allocation decisions")
	fs.Parse(os.Args[1:])

	tlog.SetVerbosity(verbosityFilter(*verbosity, *dumpIR, *dumpAlloc))

	app := &cli.Command{
		Name:        "minic-opt",
		Description: "optimizes a MiniC textual IR module",
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
		fmt.Fprintln(os.Stderr, "minic-opt: expected exactly one input file")
		os.Exit(1)
	}
	file := c.Args[0]

	src, err := os.ReadFile(file)
	if err != nil {
		fmt.Fprintf(os.Stderr, "minic-opt: %v\n", errs.FromFileError(err))
		os.Exit(1)
	}

	ctx := tlog.ContextWithSpan(context.Background(), tlog.Root())

	out, err := pipeline.Optimize(ctx, file, string(src))
	if err != nil {
		fmt.Fprintf(os.Stderr, "minic-opt: %v\n", err)
		os.Exit(2)
	}

	outFile := strings.TrimSuffix(file, ".ll") + "_opt.ll"
	if err := os.WriteFile(outFile, []byte(out), 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "minic-opt: %v\n", err)
		os.Exit(2)
	}

	return nil
}

// tacdump prints the three-address-code control flow graph of EVM bytecode.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/ethereum/go-ethereum/log"
	"github.com/evmtac/evmtac/core/opcodeCompiler/compiler"
	"github.com/evmtac/evmtac/core/opcodeCompiler/tac"
	"github.com/evmtac/evmtac/internal/debug"
	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	// Automatically set GOMAXPROCS to match Linux container CPU quota.
	_ "go.uber.org/automaxprocs"
)

var app = &cli.App{
	Name:  "tacdump",
	Usage: "EVM bytecode to three-address code",
	Flags: append(append([]cli.Flag{}, inputFlags...), debug.Flags...),
	Before: func(ctx *cli.Context) error {
		return debug.Setup(ctx)
	},
	After: func(ctx *cli.Context) error {
		debug.Exit()
		return nil
	},
	Action: dump,
	Commands: []*cli.Command{
		dumpCommand,
		statsCommand,
		dotCommand,
		batchCommand,
		dumpConfigCommand,
	},
}

var (
	dumpCommand = &cli.Command{
		Action:    dump,
		Name:      "dump",
		Usage:     "Print the TAC CFG",
		ArgsUsage: "[<hex>]",
		Flags:     append(append([]cli.Flag{}, inputFlags...), configFlags...),
	}
	statsCommand = &cli.Command{
		Action:    stats,
		Name:      "stats",
		Usage:     "Print statistics about the TAC CFG",
		ArgsUsage: "[<hex>]",
		Flags:     append(append([]cli.Flag{blocksFlag}, inputFlags...), configFlags...),
	}
	dotCommand = &cli.Command{
		Action:    dot,
		Name:      "dot",
		Usage:     "Render the TAC CFG as Graphviz DOT or SVG",
		ArgsUsage: "[<hex>]",
		Flags:     append(append([]cli.Flag{outFlag, formatFlag, titleFlag}, inputFlags...), configFlags...),
	}
	dumpConfigCommand = &cli.Command{
		Action:      dumpConfig,
		Name:        "dumpconfig",
		Usage:       "Export configuration values in a TOML format",
		ArgsUsage:   "<dumpfile (optional)>",
		Flags:       configFlags,
		Description: "Export configuration values in TOML format (to stdout by default).",
	}
)

func main() {
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// analyze reads the bytecode and configuration from ctx and builds its CFG.
func analyze(ctx *cli.Context) (*compiler.Result, error) {
	code, err := codeFromContext(ctx)
	if err != nil {
		return nil, err
	}
	cfg, err := makeConfig(ctx)
	if err != nil {
		return nil, err
	}
	log.Debug("Analyzing bytecode", "size", len(code), "fold", cfg.Compiler.FoldConstants)
	return compiler.NewAnalyzer(cfg.Compiler).Build(code)
}

func dump(ctx *cli.Context) error {
	res, err := analyze(ctx)
	if err != nil {
		return err
	}
	printCFG(ctx.App.Writer, res.CFG)
	return nil
}

var (
	blockHeader    = color.New(color.FgCyan, color.Bold)
	unresolvedMark = color.New(color.FgRed)
)

// printCFG writes every block with its edges followed by its operations.
// Colours are only emitted when stdout is a terminal.
func printCFG(w io.Writer, cfg *tac.CFG) {
	for i, b := range cfg.Blocks() {
		if i > 0 {
			fmt.Fprintln(w)
		}
		blockHeader.Fprintf(w, "block %d", b.ID())
		if entry, ok := b.Entry(); ok {
			blockHeader.Fprintf(w, " @%#x", entry)
		}
		fmt.Fprintf(w, " pops=%d additions=%d preds=%v succs=%v", b.StackPops(), b.StackAdditions(), b.Predecessors(), b.Successors())
		if b.HasUnresolvedJump() {
			unresolvedMark.Fprint(w, " unresolved")
		}
		fmt.Fprintln(w)
		for _, op := range b.Ops() {
			fmt.Fprintf(w, "  %s\n", op)
		}
	}
}

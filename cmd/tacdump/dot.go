package main

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/evmtac/evmtac/core/opcodeCompiler/tac"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
)

var (
	outFlag = &cli.StringFlag{
		Name:      "out",
		Usage:     "Output file path (.dot or .svg). If empty, write to stdout",
		TakesFile: true,
	}
	formatFlag = &cli.StringFlag{
		Name:  "format",
		Usage: "Output format: dot or svg (inferred from --out when omitted)",
	}
	titleFlag = &cli.StringFlag{
		Name:  "title",
		Usage: "Graph title",
	}
)

func dot(ctx *cli.Context) error {
	res, err := analyze(ctx)
	if err != nil {
		return err
	}
	out := ctx.String(outFlag.Name)
	graph := buildDOT(res.CFG, ctx.String(titleFlag.Name))

	format := ctx.String(formatFlag.Name)
	if format == "" {
		format = "dot"
		if strings.ToLower(filepath.Ext(out)) == ".svg" {
			format = "svg"
		}
	}
	switch format {
	case "dot":
	case "svg":
		if graph, err = renderSVG(graph); err != nil {
			return err
		}
	default:
		return errors.Errorf("unknown format %q (use dot or svg)", format)
	}
	if out == "" {
		_, err = ctx.App.Writer.Write(graph)
		return err
	}
	return os.WriteFile(out, graph, 0o644)
}

func renderSVG(graph []byte) ([]byte, error) {
	if _, err := exec.LookPath("dot"); err != nil {
		return nil, errors.New("dot not found in PATH; install graphviz or choose --format=dot")
	}
	var svgOut bytes.Buffer
	cmd := exec.Command("dot", "-Tsvg")
	cmd.Stdin = bytes.NewReader(graph)
	cmd.Stdout = &svgOut
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return nil, errors.Wrap(err, "dot render")
	}
	return svgOut.Bytes(), nil
}

func buildDOT(cfg *tac.CFG, title string) []byte {
	var buf bytes.Buffer
	w := bufio.NewWriter(&buf)
	fmt.Fprintln(w, "digraph TAC {")
	fmt.Fprintln(w, "  node [shape=box, fontname=\"monospace\"];")
	if title != "" {
		fmt.Fprintf(w, "  labelloc=\"t\";\n  label=\"%s\";\n", escapeDOT(title))
	}
	// Nodes
	for _, b := range cfg.Blocks() {
		head := fmt.Sprintf("BB%d", b.ID())
		if entry, ok := b.Entry(); ok {
			head += fmt.Sprintf(" @%#x", entry)
		}
		head += fmt.Sprintf(" pops=%d push=%d", b.StackPops(), b.StackAdditions())
		label := head + "\\l"
		for _, op := range b.Ops() {
			label += escapeDOT(op.String()) + "\\l"
		}
		style := ""
		if b.HasUnresolvedJump() {
			style = ", color=red, style=dashed"
		}
		fmt.Fprintf(w, "  n%d [label=\"%s\"%s];\n", b.ID(), label, style)
	}
	// Edges
	for _, b := range cfg.Blocks() {
		for _, succ := range b.Successors() {
			fmt.Fprintf(w, "  n%d -> n%d;\n", b.ID(), succ)
		}
	}
	fmt.Fprintln(w, "}")
	w.Flush()
	return buf.Bytes()
}

func escapeDOT(s string) string {
	s = strings.ReplaceAll(s, "\"", "\\\"")
	s = strings.ReplaceAll(s, "\n", "\\n")
	return s
}

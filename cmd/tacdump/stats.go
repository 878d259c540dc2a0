package main

import (
	"fmt"
	"strconv"

	"github.com/evmtac/evmtac/core/opcodeCompiler/compiler"
	"github.com/evmtac/evmtac/core/opcodeCompiler/tac"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli/v2"
)

var blocksFlag = &cli.BoolFlag{
	Name:  "blocks",
	Usage: "Also print one row per block",
}

func stats(ctx *cli.Context) error {
	res, err := analyze(ctx)
	if err != nil {
		return err
	}
	table := tablewriter.NewWriter(ctx.App.Writer)
	table.SetHeader([]string{"Field", "Value"})
	table.AppendBulk(summaryRows(res))
	table.Render()

	if ctx.Bool(blocksFlag.Name) {
		table = tablewriter.NewWriter(ctx.App.Writer)
		table.SetHeader([]string{"Block", "Entry", "Ops", "Pops", "Additions", "Preds", "Succs", "Unresolved"})
		table.AppendBulk(blockRows(res.CFG))
		table.Render()
	}
	return nil
}

func summaryRows(res *compiler.Result) [][]string {
	var ops, arithmetic, folded int
	for _, b := range res.CFG.Blocks() {
		for _, op := range b.Ops() {
			ops++
			if tac.IsArithmetic(op) {
				arithmetic++
			}
			if a, ok := op.(*tac.AssignOperation); ok {
				if _, ok := a.Constant(); ok {
					folded++
				}
			}
		}
	}
	code := res.Graph.Code()
	return [][]string{
		{"Code hash", res.Hash.Hex()},
		{"Code size", strconv.Itoa(len(code))},
		{"Instructions", strconv.Itoa(len(compiler.Disassemble(code)))},
		{"Jump destinations", strconv.Itoa(len(res.Graph.JumpDests()))},
		{"Blocks", strconv.Itoa(res.CFG.Len())},
		{"Edges", strconv.Itoa(res.CFG.EdgeCount())},
		{"Unresolved jumps", strconv.Itoa(len(res.CFG.UnresolvedJumps()))},
		{"TAC operations", strconv.Itoa(ops)},
		{"Arithmetic operations", strconv.Itoa(arithmetic)},
		{"Constant assignments", strconv.Itoa(folded)},
	}
}

func blockRows(cfg *tac.CFG) [][]string {
	rows := make([][]string, 0, cfg.Len())
	for _, b := range cfg.Blocks() {
		entry := "-"
		if pc, ok := b.Entry(); ok {
			entry = fmt.Sprintf("%#x", pc)
		}
		rows = append(rows, []string{
			strconv.Itoa(int(b.ID())),
			entry,
			strconv.Itoa(len(b.Ops())),
			strconv.Itoa(b.StackPops()),
			strconv.Itoa(b.StackAdditions()),
			fmt.Sprint(b.Predecessors()),
			fmt.Sprint(b.Successors()),
			strconv.FormatBool(b.HasUnresolvedJump()),
		})
	}
	return rows
}

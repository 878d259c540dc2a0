package main

import (
	"encoding/hex"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
)

var (
	hexFlag = &cli.StringFlag{
		Name:  "hex",
		Usage: "Contract bytecode as hex (with or without 0x prefix)",
	}
	fileFlag = &cli.StringFlag{
		Name:      "file",
		Usage:     "Path to a file containing contract bytecode hex",
		TakesFile: true,
	}
)

var inputFlags = []cli.Flag{hexFlag, fileFlag}

var errNoInput = errors.New("one of --hex, --file or a bytecode argument is required")

// codeFromContext reads the bytecode given by --hex, --file or the first
// positional argument, in that order.
func codeFromContext(ctx *cli.Context) ([]byte, error) {
	switch {
	case ctx.IsSet(hexFlag.Name):
		return decodeHexString(ctx.String(hexFlag.Name))
	case ctx.IsSet(fileFlag.Name):
		return loadBytecode(ctx.String(fileFlag.Name))
	case ctx.NArg() > 0:
		return decodeHexString(ctx.Args().First())
	}
	return nil, errNoInput
}

func loadBytecode(file string) ([]byte, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, err
	}
	code, err := decodeHexString(string(data))
	if err != nil {
		return nil, errors.Wrap(err, file)
	}
	return code, nil
}

func decodeHexString(s string) ([]byte, error) {
	s = strings.Join(strings.Fields(s), "")
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	if len(s)%2 == 1 {
		return nil, errors.Errorf("hex string has odd length: %d", len(s))
	}
	data, err := hex.DecodeString(s)
	if err != nil {
		return nil, errors.Wrap(err, "decode hex")
	}
	return data, nil
}

package main

import (
	"bufio"
	"fmt"
	"os"
	"reflect"
	"unicode"

	"github.com/evmtac/evmtac/core/opcodeCompiler/compiler"
	"github.com/naoina/toml"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
)

var (
	configFileFlag = &cli.StringFlag{
		Name:      "config",
		Usage:     "TOML configuration file",
		TakesFile: true,
	}
	foldFlag = &cli.BoolFlag{
		Name:  "fold",
		Usage: "Evaluate arithmetic on constant operands",
		Value: compiler.DefaultConfig.FoldConstants,
	}
	maxCodeSizeFlag = &cli.IntFlag{
		Name:  "maxcodesize",
		Usage: "Reject bytecode larger than this many bytes (0 = unlimited)",
		Value: compiler.DefaultConfig.MaxCodeSize,
	}
)

var configFlags = []cli.Flag{configFileFlag, foldFlag, maxCodeSizeFlag}

// These settings ensure that TOML keys use the same names as Go struct fields.
var tomlSettings = toml.Config{
	NormFieldName: func(rt reflect.Type, key string) string {
		return key
	},
	FieldToKey: func(rt reflect.Type, field string) string {
		return field
	},
	MissingField: func(rt reflect.Type, field string) error {
		var link string
		if unicode.IsUpper(rune(rt.Name()[0])) && rt.PkgPath() != "main" {
			link = fmt.Sprintf(", see https://godoc.org/%s#%s for available fields", rt.PkgPath(), rt.Name())
		}
		return fmt.Errorf("field '%s' is not defined in %s%s", field, rt.String(), link)
	},
}

type tacdumpConfig struct {
	Compiler compiler.Config
}

func defaultConfig() tacdumpConfig {
	return tacdumpConfig{Compiler: compiler.DefaultConfig}
}

func loadConfig(file string, cfg *tacdumpConfig) error {
	f, err := os.Open(file)
	if err != nil {
		return err
	}
	defer f.Close()

	err = tomlSettings.NewDecoder(bufio.NewReader(f)).Decode(cfg)
	// Add file name to errors that have a line number.
	if _, ok := err.(*toml.LineError); ok {
		err = errors.New(file + ", " + err.Error())
	}
	return err
}

// makeConfig layers defaults, the config file and command line flags.
func makeConfig(ctx *cli.Context) (tacdumpConfig, error) {
	cfg := defaultConfig()
	if file := ctx.String(configFileFlag.Name); file != "" {
		if err := loadConfig(file, &cfg); err != nil {
			return cfg, errors.Wrap(err, "load config")
		}
	}
	if ctx.IsSet(foldFlag.Name) {
		cfg.Compiler.FoldConstants = ctx.Bool(foldFlag.Name)
	}
	if ctx.IsSet(maxCodeSizeFlag.Name) {
		cfg.Compiler.MaxCodeSize = ctx.Int(maxCodeSizeFlag.Name)
	}
	return cfg, nil
}

// dumpConfig is the dumpconfig command.
func dumpConfig(ctx *cli.Context) error {
	cfg, err := makeConfig(ctx)
	if err != nil {
		return err
	}
	out, err := tomlSettings.Marshal(&cfg)
	if err != nil {
		return err
	}

	if ctx.NArg() == 0 {
		_, err = ctx.App.Writer.Write(out)
		return err
	}
	dump, err := os.OpenFile(ctx.Args().Get(0), os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}
	defer dump.Close()
	_, err = dump.Write(out)
	return err
}

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/evmtac/evmtac/core/opcodeCompiler/compiler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// PUSH1 1, PUSH1 9, JUMPI, CALLVALUE, JUMP, STOP, STOP, JUMPDEST, PUSH1 2, PUSH1 3, MUL, STOP
const branchyHex = "0x6001600957345600005b6002600302 00"

func run(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	app.Writer = &out
	defer func() { app.Writer = os.Stdout }()
	require.NoError(t, app.Run(append([]string{"tacdump"}, args...)))
	return out.String()
}

func TestDecodeHexString(t *testing.T) {
	code, err := decodeHexString(" 0x60 01\n6002\r\n")
	require.NoError(t, err)
	assert.Equal(t, []byte{0x60, 0x01, 0x60, 0x02}, code)

	_, err = decodeHexString("0x600")
	assert.Error(t, err)
	_, err = decodeHexString("zz")
	assert.Error(t, err)
}

func TestLoadBytecode(t *testing.T) {
	path := filepath.Join(t.TempDir(), "code.hex")
	require.NoError(t, os.WriteFile(path, []byte(branchyHex+"\n"), 0o644))
	code, err := loadBytecode(path)
	require.NoError(t, err)
	assert.Len(t, code, 16)
}

func TestDumpCommand(t *testing.T) {
	out := run(t, "dump", "--hex", branchyHex)
	assert.Contains(t, out, "0x5: V0 = CALLVALUE")
	assert.Contains(t, out, "0xe: V1 = 0x6")
	assert.Contains(t, out, "unresolved")

	out = run(t, "dump", "--fold=false", strings.ReplaceAll(branchyHex, " ", ""))
	assert.Contains(t, out, "0xe: V1 = MUL 0x3 0x2")
}

func TestDumpRequiresInput(t *testing.T) {
	app.Writer = &bytes.Buffer{}
	defer func() { app.Writer = os.Stdout }()
	err := app.Run([]string{"tacdump", "dump"})
	assert.ErrorIs(t, err, errNoInput)
}

func TestStatsCommand(t *testing.T) {
	out := run(t, "stats", "--blocks", "--hex", branchyHex)
	assert.Contains(t, out, "UNRESOLVED")
	assert.Regexp(t, `Blocks\s+\|\s+5`, out)
	assert.Regexp(t, `Edges\s+\|\s+2`, out)
	assert.Regexp(t, `Unresolved jumps\s+\|\s+1`, out)
}

func TestDotCommand(t *testing.T) {
	out := run(t, "dot", "--title", `a "quoted" title`, "--hex", branchyHex)
	assert.True(t, strings.HasPrefix(out, "digraph TAC {"))
	assert.Contains(t, out, `label="a \"quoted\" title"`)
	assert.Contains(t, out, "n0 -> n4;")
	assert.Contains(t, out, "n0 -> n1;")
	assert.Contains(t, out, "color=red, style=dashed")
}

func TestConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[Compiler]\nFoldConstants = false\nCacheSize = 7\n"), 0o644))

	cfg := defaultConfig()
	require.NoError(t, loadConfig(path, &cfg))
	assert.False(t, cfg.Compiler.FoldConstants)
	assert.Equal(t, 7, cfg.Compiler.CacheSize)
	assert.Equal(t, compiler.DefaultConfig.MaxCodeSize, cfg.Compiler.MaxCodeSize)

	bad := filepath.Join(dir, "bad.toml")
	require.NoError(t, os.WriteFile(bad, []byte("[Compiler]\nFold = true\n"), 0o644))
	err := loadConfig(bad, &cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Fold")

	out := run(t, "dumpconfig", "--config", path, "--maxcodesize", "100")
	assert.Contains(t, out, "FoldConstants = false")
	assert.Contains(t, out, "MaxCodeSize = 100")
}

func TestBatchCommand(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.hex"), []byte(branchyHex), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.hex"), []byte("0x6001600201"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "c.hex"), []byte("0x600"), 0o644))

	out := run(t, "batch", dir)
	assert.Regexp(t, `a\.hex\s+\|\s+16\s+\|\s+5\s+\|\s+2\s+\|\s+1`, out)
	assert.Regexp(t, `b\.hex\s+\|\s+5\s+\|\s+1\s+\|\s+0\s+\|\s+0`, out)
	assert.Contains(t, out, "odd length")
}

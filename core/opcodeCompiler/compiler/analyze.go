package compiler

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/log"
	"github.com/evmtac/evmtac/core/opcodeCompiler/tac"
	"github.com/pkg/errors"
)

// ErrCodeTooLarge is returned for bytecode above Config.MaxCodeSize.
var ErrCodeTooLarge = errors.New("code size exceeds limit")

// Result bundles a TAC CFG with the stack graph it was built from.
type Result struct {
	Hash  common.Hash
	Graph *Graph
	CFG   *tac.CFG
}

// Analyzer builds TAC CFGs from bytecode and caches them by code hash. It
// is safe for concurrent use.
type Analyzer struct {
	config Config
	cache  *CFGCache
}

// NewAnalyzer creates an analyzer with its own cache of config.CacheSize
// entries.
func NewAnalyzer(config Config) *Analyzer {
	a := &Analyzer{config: config}
	if config.CacheSize > 0 {
		a.cache = NewCFGCache(config.CacheSize)
	}
	return a
}

// Config returns the analyzer's configuration.
func (a *Analyzer) Config() Config { return a.config }

// Analyze returns the TAC CFG of code, serving it from the cache when
// possible.
func (a *Analyzer) Analyze(code []byte) (*tac.CFG, error) {
	if err := a.checkSize(code); err != nil {
		return nil, err
	}
	hash := crypto.Keccak256Hash(code)
	if a.cache != nil {
		if cfg := a.cache.Get(hash, a.config.FoldConstants); cfg != nil {
			cacheHitCounter.Inc(1)
			return cfg, nil
		}
		cacheMissCounter.Inc(1)
	}
	res, err := a.build(hash, code)
	if err != nil {
		return nil, err
	}
	if a.cache != nil {
		a.cache.Add(hash, a.config.FoldConstants, res.CFG)
	}
	return res.CFG, nil
}

// Build always rebuilds and returns the intermediate stack graph as well.
// The result is not cached.
func (a *Analyzer) Build(code []byte) (*Result, error) {
	if err := a.checkSize(code); err != nil {
		return nil, err
	}
	return a.build(crypto.Keccak256Hash(code), code)
}

func (a *Analyzer) checkSize(code []byte) error {
	if a.config.MaxCodeSize > 0 && len(code) > a.config.MaxCodeSize {
		return errors.Wrapf(ErrCodeTooLarge, "%d > %d", len(code), a.config.MaxCodeSize)
	}
	return nil
}

func (a *Analyzer) build(hash common.Hash, code []byte) (*Result, error) {
	start := time.Now()
	graph, err := BuildGraph(code)
	if err != nil {
		return nil, errors.Wrapf(err, "build graph of %x", hash)
	}
	d := NewDestackifier(a.config.FoldConstants)
	cfg, err := tac.BuildCFG[*BasicBlock](graph, d.Convert)
	if err != nil {
		return nil, errors.Wrapf(err, "build TAC of %x", hash)
	}
	unresolvedCounter.Inc(int64(len(graph.UnresolvedJumps())))
	foldedCounter.Inc(int64(d.Folded()))

	log.Debug("Built TAC CFG", "hash", hash, "size", len(code), "blocks", cfg.Len(), "edges", cfg.EdgeCount(),
		"unresolved", len(graph.UnresolvedJumps()), "folded", d.Folded(), "elapsed", common.PrettyDuration(time.Since(start)))
	return &Result{Hash: hash, Graph: graph, CFG: cfg}, nil
}

var defaultAnalyzer = NewAnalyzer(DefaultConfig)

// Analyze builds the TAC CFG of code with config. Calls with DefaultConfig
// share a process-wide cache; other configurations are built uncached, use an
// Analyzer to cache them.
func Analyze(code []byte, config Config) (*tac.CFG, error) {
	if config == DefaultConfig {
		return defaultAnalyzer.Analyze(code)
	}
	uncached := config
	uncached.CacheSize = 0
	return NewAnalyzer(uncached).Analyze(code)
}

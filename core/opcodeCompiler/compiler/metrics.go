package compiler

import "github.com/ethereum/go-ethereum/metrics"

var (
	cacheHitCounter   = metrics.NewRegisteredCounter("compiler/tac/cache/hit", nil)
	cacheMissCounter  = metrics.NewRegisteredCounter("compiler/tac/cache/miss", nil)
	unresolvedCounter = metrics.NewRegisteredCounter("compiler/tac/unresolved", nil)
	foldedCounter     = metrics.NewRegisteredCounter("compiler/tac/folded", nil)
)

package compiler

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/lru"
	"github.com/evmtac/evmtac/core/opcodeCompiler/tac"
)

// cacheKey identifies a CFG by code hash and the options it was built with.
type cacheKey struct {
	hash common.Hash
	fold bool
}

// CFGCache is an LRU cache of finished TAC CFGs.
type CFGCache struct {
	cfgCache *lru.Cache[cacheKey, *tac.CFG]
}

// NewCFGCache creates a cache holding at most size CFGs.
func NewCFGCache(size int) *CFGCache {
	return &CFGCache{
		cfgCache: lru.NewCache[cacheKey, *tac.CFG](size),
	}
}

// Get retrieves a cached CFG
func (c *CFGCache) Get(hash common.Hash, fold bool) *tac.CFG {
	cfg, _ := c.cfgCache.Get(cacheKey{hash, fold})
	return cfg
}

// Add adds a CFG to the cache
func (c *CFGCache) Add(hash common.Hash, fold bool, cfg *tac.CFG) {
	if cfg == nil {
		return
	}
	c.cfgCache.Add(cacheKey{hash, fold}, cfg)
}

// Remove drops both variants of a CFG.
func (c *CFGCache) Remove(hash common.Hash) {
	c.cfgCache.Remove(cacheKey{hash, false})
	c.cfgCache.Remove(cacheKey{hash, true})
}

// Len returns the number of cached CFGs
func (c *CFGCache) Len() int {
	return c.cfgCache.Len()
}

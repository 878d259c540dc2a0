package compiler

// Config tunes TAC construction.
type Config struct {
	// FoldConstants evaluates arithmetic on constant operands while
	// converting blocks.
	FoldConstants bool
	// CacheSize is the number of CFGs an Analyzer keeps. Zero disables
	// caching.
	CacheSize int
	// MaxCodeSize rejects larger bytecode. Zero means no limit.
	MaxCodeSize int
}

// DefaultConfig accepts anything up to the init code size limit.
var DefaultConfig = Config{
	FoldConstants: true,
	CacheSize:     1024,
	MaxCodeSize:   49152,
}

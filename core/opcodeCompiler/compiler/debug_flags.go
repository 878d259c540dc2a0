package compiler

import (
	"os"

	ethlog "github.com/ethereum/go-ethereum/log"
)

// Package-wide debug switch for verbose logging while building graphs.
// Default is off to keep logs clean unless explicitly enabled by tests or callers.
var (
	// DebugLogsEnabled toggles all compiler debug logs.
	DebugLogsEnabled = false
)

func init() {
	if os.Getenv("TAC_DEBUG") == "1" || os.Getenv("TAC_DEBUG") == "true" {
		DebugLogsEnabled = true
	}
}

// EnableDebugLogs toggles all compiler debug logs.
func EnableDebugLogs(on bool) { DebugLogsEnabled = on }

func shouldLog() bool { return DebugLogsEnabled }

// debugWarn emits a warning only if debug logging is enabled.
func debugWarn(msg string, ctx ...interface{}) {
	if shouldLog() {
		ethlog.Warn(msg, ctx...)
	}
}

// debugInfo emits info only if debug logging is enabled.
func debugInfo(msg string, ctx ...interface{}) {
	if shouldLog() {
		ethlog.Info(msg, ctx...)
	}
}

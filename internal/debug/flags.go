// Copyright 2016 The go-ethereum Authors
// This file is part of the go-ethereum library.
//
// The go-ethereum library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The go-ethereum library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the go-ethereum library. If not, see <http://www.gnu.org/licenses/>.

package debug

import (
	"io"
	"os"

	"github.com/ethereum/go-ethereum/log"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"golang.org/x/exp/slog"
	"gopkg.in/natefinch/lumberjack.v2"
)

const loggingCategory = "LOGGING AND DEBUGGING"

var (
	verbosityFlag = &cli.IntFlag{
		Name:     "verbosity",
		Usage:    "Logging verbosity: 0=silent, 1=error, 2=warn, 3=info, 4=debug, 5=detail",
		Value:    3,
		Category: loggingCategory,
	}
	logjsonFlag = &cli.BoolFlag{
		Name:     "log.json",
		Usage:    "Format logs with JSON",
		Category: loggingCategory,
	}
	logFileFlag = &cli.StringFlag{
		Name:     "log.file",
		Usage:    "Write logs to a file",
		Category: loggingCategory,
	}
	logRotateFlag = &cli.BoolFlag{
		Name:     "log.rotate",
		Usage:    "Enables size based log rotation of --log.file",
		Category: loggingCategory,
	}
	logMaxSizeMBsFlag = &cli.IntFlag{
		Name:     "log.maxsize",
		Usage:    "Maximum size in MBs of a single log file",
		Value:    100,
		Category: loggingCategory,
	}
	logMaxBackupsFlag = &cli.IntFlag{
		Name:     "log.maxbackups",
		Usage:    "Maximum number of log files to retain",
		Value:    10,
		Category: loggingCategory,
	}
	logMaxAgeFlag = &cli.IntFlag{
		Name:     "log.maxage",
		Usage:    "Maximum number of days to retain a log file",
		Value:    30,
		Category: loggingCategory,
	}
	logCompressFlag = &cli.BoolFlag{
		Name:     "log.compress",
		Usage:    "Compress the log files",
		Category: loggingCategory,
	}
	logRotateHoursFlag = &cli.UintFlag{
		Name:     "log.rotatehours",
		Usage:    "Rotate --log.file every N hours, 0 disables time based rotation",
		Category: loggingCategory,
	}
)

// Flags holds all command-line flags required for debugging.
var Flags = []cli.Flag{
	verbosityFlag,
	logjsonFlag,
	logFileFlag,
	logRotateFlag,
	logMaxSizeMBsFlag,
	logMaxBackupsFlag,
	logMaxAgeFlag,
	logCompressFlag,
	logRotateHoursFlag,
}

// asyncBufferLines is the number of log lines the hourly writer may queue.
const asyncBufferLines = 10000

// LogConfig selects the root logger's format, level and sink.
type LogConfig struct {
	Verbosity   int
	JSON        bool
	File        string
	Rotate      bool
	MaxSizeMB   int
	MaxBackups  int
	MaxAgeDays  int
	Compress    bool
	RotateHours uint
}

var (
	glogger   *log.GlogHandler
	logCloser func()
)

var (
	errRotate = errors.New("--log.rotate and --log.rotatehours are mutually exclusive")
	errNoFile = errors.New("log rotation requires --log.file")
)

func init() {
	glogger = log.NewGlogHandler(log.NewTerminalHandler(os.Stderr, false))
}

// ConfigFromContext reads the logging flags.
func ConfigFromContext(ctx *cli.Context) LogConfig {
	return LogConfig{
		Verbosity:   ctx.Int(verbosityFlag.Name),
		JSON:        ctx.Bool(logjsonFlag.Name),
		File:        ctx.String(logFileFlag.Name),
		Rotate:      ctx.Bool(logRotateFlag.Name),
		MaxSizeMB:   ctx.Int(logMaxSizeMBsFlag.Name),
		MaxBackups:  ctx.Int(logMaxBackupsFlag.Name),
		MaxAgeDays:  ctx.Int(logMaxAgeFlag.Name),
		Compress:    ctx.Bool(logCompressFlag.Name),
		RotateHours: ctx.Uint(logRotateHoursFlag.Name),
	}
}

// Setup initializes logging based on the CLI flags.
// It should be called as early as possible in the program.
func Setup(ctx *cli.Context) error {
	return SetupLogging(ConfigFromContext(ctx))
}

// SetupLogging installs a new root logger. A previously opened log file is
// closed first.
func SetupLogging(cfg LogConfig) error {
	if cfg.Rotate && cfg.RotateHours > 0 {
		return errRotate
	}
	if (cfg.Rotate || cfg.RotateHours > 0) && cfg.File == "" {
		return errNoFile
	}
	Exit()

	var (
		output   io.Writer = os.Stderr
		useColor bool
		closer   func()
	)
	switch {
	case cfg.File != "" && cfg.Rotate:
		lj := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
			Compress:   cfg.Compress,
		}
		output, closer = lj, func() { lj.Close() }
	case cfg.File != "":
		w, err := NewAsyncFileWriter(cfg.File, asyncBufferLines, cfg.RotateHours)
		if err != nil {
			return err
		}
		if err := w.Start(); err != nil {
			return errors.Wrap(err, "open log file")
		}
		output, closer = w, w.Stop
	default:
		useColor = (isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())) && os.Getenv("TERM") != "dumb"
		if useColor {
			output = colorable.NewColorableStderr()
		}
	}

	var handler slog.Handler
	if cfg.JSON {
		handler = log.JSONHandler(output)
	} else {
		handler = log.NewTerminalHandler(output, useColor)
	}
	glogger = log.NewGlogHandler(handler)
	glogger.Verbosity(log.FromLegacyLevel(cfg.Verbosity))
	log.SetDefault(log.NewLogger(glogger))

	logCloser = closer
	return nil
}

// Exit flushes and closes the log file opened by SetupLogging, if any.
func Exit() {
	if logCloser != nil {
		logCloser()
		logCloser = nil
	}
}

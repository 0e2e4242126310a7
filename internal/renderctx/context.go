// Package renderctx holds the per-render configuration and logging surface
// that the interpreter and CLI thread through explicitly, replacing the
// original tool's process-wide verbose-flag global with instance state.
package renderctx

import (
	"log"
	"os"
)

// Level is a logging verbosity threshold.
type Level int

const (
	LevelQuiet Level = iota
	LevelVerbose
)

// Logger is the minimal interface carried on Context; the default
// implementation wraps the standard library's log.Logger, following the
// hand-rolled-interface convention the retrieved corpus uses in place of a
// structured-logging dependency.
type Logger interface {
	Printf(format string, args ...any)
	Verbosef(format string, args ...any)
}

type stdLogger struct {
	level Level
	l     *log.Logger
}

// NewLogger returns a Logger writing to stderr at the given level.
func NewLogger(level Level) Logger {
	return &stdLogger{level: level, l: log.New(os.Stderr, "", log.LstdFlags)}
}

func (s *stdLogger) Printf(format string, args ...any) {
	s.l.Printf(format, args...)
}

func (s *stdLogger) Verbosef(format string, args ...any) {
	if s.level >= LevelVerbose {
		s.l.Printf(format, args...)
	}
}

// RenderOptions is the single explicit configuration surface for one page
// render, populated from CLI flags in cmd/pdfrender.
type RenderOptions struct {
	InputPath  string
	OutputPath string
	Page       int
	DPI        float64
	Verbose    bool
	Workers    int
}

// Context bundles a RenderOptions with the logger derived from it. It is
// passed explicitly to the interpreter constructor (the device constructor
// takes no Context); nothing in this package is package-level mutable state.
type Context struct {
	Options RenderOptions
	Log     Logger
}

// NewContext builds a Context from RenderOptions, selecting the logging
// level from Options.Verbose.
func NewContext(opts RenderOptions) *Context {
	level := LevelQuiet
	if opts.Verbose {
		level = LevelVerbose
	}
	return &Context{Options: opts, Log: NewLogger(level)}
}

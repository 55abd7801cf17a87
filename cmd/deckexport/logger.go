package main

import (
	"github.com/fatih/color"
)

// cliLogger implements deckexport.Logger with colored terminal output.
type cliLogger struct {
	quiet bool
}

func (l *cliLogger) Infof(format string, args ...any) {
	if l.quiet {
		return
	}
	color.New(color.FgCyan).Printf(format+"\n", args...)
}

func (l *cliLogger) Warnf(format string, args ...any) {
	color.New(color.FgYellow).Fprintf(color.Error, "⚠ "+format+"\n", args...)
}

func (l *cliLogger) Errorf(format string, args ...any) {
	color.New(color.FgRed).Fprintf(color.Error, "✗ "+format+"\n", args...)
}

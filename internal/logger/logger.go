// Package logger builds the hclog logger shared by the command and its backends.
package logger

import (
	"io"
	"os"

	"github.com/hashicorp/go-hclog"
)

// Name is the root logger name.
const Name = "cwal"

// Options configures the root logger.
type Options struct {
	// Verbose enables debug output.
	Verbose bool
	// Quiet limits output to errors. It wins over Verbose.
	Quiet bool
	// Output defaults to os.Stderr.
	Output io.Writer
}

// New returns the root logger.
func New(opts Options) hclog.Logger {
	level := hclog.Info
	switch {
	case opts.Quiet:
		level = hclog.Error
	case opts.Verbose:
		level = hclog.Debug
	}

	output := opts.Output
	if output == nil {
		output = os.Stderr
	}

	return hclog.New(&hclog.LoggerOptions{
		Name:   Name,
		Level:  level,
		Output: output,
		Color:  hclog.AutoColor,
	})
}

// OrNull returns l, or a logger that discards everything when l is nil.
func OrNull(l hclog.Logger) hclog.Logger {
	if l == nil {
		return hclog.NewNullLogger()
	}
	return l
}

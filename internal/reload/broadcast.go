package reload

import (
	"io"
	"os"
	"path/filepath"
	"runtime"

	"github.com/hashicorp/go-hclog"
	"golang.org/x/term"

	"github.com/jmylchreest/cwal/internal/logger"
)

// Broadcaster delivers escape sequences to open terminals.
type Broadcaster interface {
	Broadcast(seq []byte) (int, error)
}

// TerminalBroadcaster writes sequences to every pseudo-terminal device and to
// stdout when stdout is a terminal.
type TerminalBroadcaster struct {
	// Patterns are globbed for terminal devices.
	Patterns []string

	// Stdout also receives the sequences when IsTerminal reports true.
	Stdout     io.Writer
	IsTerminal func() bool

	Getenv func(string) string
	logger hclog.Logger
}

// DevicePatterns returns the terminal device globs for goos.
func DevicePatterns(goos string) []string {
	switch goos {
	case "darwin":
		return []string{"/dev/ttys00[0-9]*"}
	case "windows":
		return nil
	default:
		return []string{"/dev/pts/[0-9]*"}
	}
}

// NewTerminalBroadcaster returns a broadcaster for the running system.
func NewTerminalBroadcaster(l hclog.Logger) *TerminalBroadcaster {
	return &TerminalBroadcaster{
		Patterns:   DevicePatterns(runtime.GOOS),
		Stdout:     os.Stdout,
		IsTerminal: func() bool { return term.IsTerminal(int(os.Stdout.Fd())) }, // #nosec G115 -- fd fits in int
		Getenv:     os.Getenv,
		logger:     logger.OrNull(l),
	}
}

// Broadcast writes seq to each device and returns how many accepted it.
// Devices that cannot be opened are skipped.
func (b *TerminalBroadcaster) Broadcast(seq []byte) (int, error) {
	getenv := b.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}
	log := logger.OrNull(b.logger)

	count := 0
	for _, pattern := range b.Patterns {
		devices, err := filepath.Glob(pattern)
		if err != nil {
			return count, err
		}
		for _, dev := range devices {
			// Writing to the first pty under Plasma corrupts the session.
			if dev == "/dev/pts/0" && getenv("DESKTOP_SESSION") == "plasma" {
				continue
			}
			if err := writeDevice(dev, seq); err != nil {
				log.Debug("skipping terminal", "device", dev, "error", err)
				continue
			}
			count++
		}
	}

	if b.Stdout != nil && b.IsTerminal != nil && b.IsTerminal() {
		if _, err := b.Stdout.Write(seq); err != nil {
			return count, err
		}
	}

	return count, nil
}

func writeDevice(path string, seq []byte) error {
	f, err := os.OpenFile(path, os.O_WRONLY|openNoCTTY, 0) // #nosec G304 -- globbed terminal device
	if err != nil {
		return err
	}
	_, err = f.Write(seq)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	return err
}

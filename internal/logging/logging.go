// Package logging builds the application *log.Logger on top of a rotating log file.
package logging

import (
	"io"
	"log"
	"os"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	defaultMaxSizeMB  = 5
	defaultMaxBackups = 3
	defaultMaxAgeDays = 14
)

// Options controls where and how log lines are written.
type Options struct {
	// Path of the log file. Empty selects DefaultPath.
	Path string
	// MaxSizeMB is the size at which the file is rotated.
	MaxSizeMB int
	// MaxBackups is the number of rotated files kept.
	MaxBackups int
	// Verbose adds microsecond timestamps and the source location to every line.
	Verbose bool
	// Mirror, when set, receives a copy of every line (headless mode uses stderr).
	Mirror io.Writer
}

// DefaultPath returns ~/.tabata/tabata.log, falling back to the working directory.
func DefaultPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = "."
	}
	return filepath.Join(homeDir, ".tabata", "tabata.log")
}

// New returns a logger writing to a lumberjack-rotated file. The returned closer
// flushes and closes the file and must be called on shutdown.
func New(opts Options) (*log.Logger, io.Closer) {
	path := opts.Path
	if path == "" {
		path = DefaultPath()
	}
	maxSize := opts.MaxSizeMB
	if maxSize <= 0 {
		maxSize = defaultMaxSizeMB
	}
	maxBackups := opts.MaxBackups
	if maxBackups <= 0 {
		maxBackups = defaultMaxBackups
	}

	file := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    maxSize,
		MaxBackups: maxBackups,
		MaxAge:     defaultMaxAgeDays,
	}

	var out io.Writer = file
	if opts.Mirror != nil {
		out = io.MultiWriter(file, opts.Mirror)
	}

	flags := log.LstdFlags
	if opts.Verbose {
		flags = log.LstdFlags | log.Lmicroseconds | log.Lshortfile
	}
	return log.New(out, "", flags), file
}

package logging

import "strings"

// LineWriter is an io.Writer that forwards every line written to it to a channel, for
// example to show the log inside the terminal UI. It never blocks: lines that do not
// fit in the channel are dropped.
type LineWriter struct {
	ch chan<- string
}

// NewLineWriter returns a LineWriter sending to ch.
func NewLineWriter(ch chan<- string) *LineWriter {
	if ch == nil {
		panic("LineWriter: channel cannot be nil")
	}
	return &LineWriter{ch: ch}
}

// Write splits p into lines. *log.Logger issues one Write per entry, so a partial line
// at the end of p is forwarded as a line of its own.
func (w *LineWriter) Write(p []byte) (int, error) {
	text := strings.TrimRight(string(p), "\n")
	if text == "" {
		return len(p), nil
	}
	for _, line := range strings.Split(text, "\n") {
		select {
		case w.ch <- line + "\n":
		default:
		}
	}
	return len(p), nil
}

// Package logging builds the application logger: a rotating log file plus,
// in the terminal UI, a feed of lines for the on-screen log pane.
package logging

import (
	"io"
	"log"
	"strings"

	"github.com/lowaak/mapty/internal/config"
	"gopkg.in/natefinch/lumberjack.v2"
)

// NewFileWriter returns a size-rotated log file writer. Close it on exit.
func NewFileWriter(cfg config.LogConfig) *lumberjack.Logger {
	return &lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		LocalTime:  true,
	}
}

// New returns a logger that writes every line to all writers.
func New(writers ...io.Writer) *log.Logger {
	return log.New(io.MultiWriter(writers...), "", log.Ldate|log.Ltime)
}

// UIWriter turns log output into a channel of lines for the log pane.
// Writes never block: when the reader falls behind, lines are dropped from
// the pane (they are still in the log file).
type UIWriter struct {
	lines chan string
}

func NewUIWriter(buffer int) *UIWriter {
	if buffer < 1 {
		buffer = 1
	}
	return &UIWriter{lines: make(chan string, buffer)}
}

func (w *UIWriter) Write(p []byte) (int, error) {
	for _, line := range strings.Split(strings.TrimRight(string(p), "\n"), "\n") {
		select {
		case w.lines <- line + "\n":
		default:
		}
	}
	return len(p), nil
}

// Lines is the receive side consumed by the session model.
func (w *UIWriter) Lines() <-chan string {
	return w.lines
}

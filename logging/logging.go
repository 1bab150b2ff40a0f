// Package logging sets up the default slog logger of the daemon. Output can
// be held back in memory while the terminal viewer starts and flushed into
// the viewer's log pane afterwards; a log file receives everything.
package logging

import (
	"bytes"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

// bufferingTeeWriter buffers or forwards to target and always tees to file.
type bufferingTeeWriter struct {
	mu          sync.Mutex
	buffer      *bytes.Buffer
	target      io.Writer
	file        *os.File
	isBuffering bool
}

func (w *bufferingTeeWriter) Write(p []byte) (n int, err error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	var firstErr error

	if w.isBuffering {
		w.buffer.Write(p)
	} else if w.target != nil {
		if _, err := w.target.Write(p); err != nil {
			firstErr = err
		}
	}

	if w.file != nil {
		if _, err := w.file.Write(p); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	return len(p), firstErr
}

// Options configure Init.
type Options struct {
	// Level is DEBUG, INFO, WARN or ERROR. Anything else means INFO.
	Level string
	// Format is text or json.
	Format string
	// File, if set, receives a copy of every record.
	File string
	// Buffer holds output back until SetOutput is called.
	Buffer bool
	// Target is the live destination, os.Stderr if nil.
	Target io.Writer
}

var writer *bufferingTeeWriter

// ParseLevel maps a level name to a slog.Level, case-insensitive.
func ParseLevel(s string) slog.Level {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Init installs a new default slog logger.
func Init(opts Options) error {
	target := opts.Target
	if target == nil {
		target = os.Stderr
	}
	w := &bufferingTeeWriter{
		buffer:      &bytes.Buffer{},
		isBuffering: opts.Buffer,
	}
	if !opts.Buffer {
		w.target = target
	}

	if opts.File != "" {
		file, err := os.OpenFile(opts.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o666)
		if err != nil {
			return err
		}
		w.file = file
	}

	hopts := &slog.HandlerOptions{Level: ParseLevel(opts.Level)}
	var handler slog.Handler
	if strings.ToLower(opts.Format) == "json" {
		handler = slog.NewJSONHandler(w, hopts)
	} else {
		handler = slog.NewTextHandler(w, hopts)
	}

	writer = w
	slog.SetDefault(slog.New(handler))
	return nil
}

// SetOutput flushes the buffer to newTarget and logs to it from now on.
func SetOutput(newTarget io.Writer) error {
	writer.mu.Lock()
	defer writer.mu.Unlock()

	if writer.buffer.Len() > 0 {
		if _, err := newTarget.Write(writer.buffer.Bytes()); err != nil {
			return err
		}
		writer.buffer.Reset()
	}

	writer.target = newTarget
	writer.isBuffering = false
	return nil
}

// BufferOutput stops live logging and starts buffering.
func BufferOutput() {
	writer.mu.Lock()
	defer writer.mu.Unlock()

	writer.target = nil
	writer.isBuffering = true
}

// Close flushes what is still buffered, to the log file if there is one and
// to stderr otherwise, and closes the file.
func Close() error {
	writer.mu.Lock()
	defer writer.mu.Unlock()

	var firstErr error

	if writer.file != nil {
		if writer.buffer.Len() > 0 {
			if _, err := writer.file.Write(writer.buffer.Bytes()); err != nil {
				firstErr = err
			}
		}
		if err := writer.file.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		writer.file = nil
	} else if writer.target == nil && writer.buffer.Len() > 0 {
		if _, err := os.Stderr.Write(writer.buffer.Bytes()); err != nil {
			firstErr = err
		}
	}

	writer.buffer.Reset()
	return firstErr
}

package telemetry

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"
)

// DefaultMaxBytes is the rotation ceiling: once the log would exceed this
// size, it is archived with a timestamp suffix and restarted.
const DefaultMaxBytes = 10 << 20 // 10 MB

// Writer appends line-delimited JSON records to a log file. Appends are
// mutex-guarded, so one Writer may serve multiple concurrent runs. The log
// is the only durable state the engine owns.
type Writer struct {
	mu       sync.Mutex
	path     string
	maxBytes int64
	f        *os.File
	size     int64
}

// WriterOption configures a Writer.
type WriterOption func(*Writer)

// WithMaxBytes overrides the rotation ceiling. Values < 1 are ignored.
func WithMaxBytes(n int64) WriterOption {
	return func(w *Writer) {
		if n > 0 {
			w.maxBytes = n
		}
	}
}

// NewWriter opens (or creates) the log at path in append mode.
func NewWriter(path string, opts ...WriterOption) (*Writer, error) {
	w := &Writer{path: path, maxBytes: DefaultMaxBytes}
	for _, opt := range opts {
		opt(w)
	}
	if err := w.open(); err != nil {
		return nil, err
	}
	return w, nil
}

func (w *Writer) open() error {
	f, err := os.OpenFile(w.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("telemetry: open log: %w", err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return fmt.Errorf("telemetry: stat log: %w", err)
	}
	w.f = f
	w.size = info.Size()
	return nil
}

// Append marshals record as one JSON line and writes it, rotating first if
// the line would push the log past the ceiling. Safe for concurrent use.
func (w *Writer) Append(record any) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("telemetry: marshal record: %w", err)
	}
	data = append(data, '\n')

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.f == nil {
		return fmt.Errorf("telemetry: writer is closed")
	}
	if w.size+int64(len(data)) > w.maxBytes {
		if err := w.rotateLocked(); err != nil {
			return err
		}
	}

	n, err := w.f.Write(data)
	w.size += int64(n)
	if err != nil {
		return fmt.Errorf("telemetry: append record: %w", err)
	}
	return nil
}

// rotateLocked archives the current log with a timestamp suffix and starts a
// fresh one. Caller holds the mutex.
func (w *Writer) rotateLocked() error {
	if err := w.f.Close(); err != nil {
		return fmt.Errorf("telemetry: close for rotation: %w", err)
	}
	w.f = nil

	archive := fmt.Sprintf("%s.%s", w.path, time.Now().UTC().Format("20060102T150405.000000000Z"))
	if err := os.Rename(w.path, archive); err != nil {
		return fmt.Errorf("telemetry: archive log: %w", err)
	}
	return w.open()
}

// Close closes the underlying file. Further appends fail.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.f == nil {
		return nil
	}
	err := w.f.Close()
	w.f = nil
	return err
}

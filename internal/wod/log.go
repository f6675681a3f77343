// Package wod implements the durable whole orbit data store: an
// append-only working file of raw telemetry frames that is rotated into
// a queue directory for downstream ingestion once it grows too large.
package wod

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/alanbjohnston/pacsat-telem/internal/telem"
)

// WithLogger sets the logger for the WOD log.
func WithLogger(logger *slog.Logger) func(*Log) {
	return func(l *Log) {
		l.logger = logger.With(slog.String("file", l.path))
	}
}

// Log appends telemetry frames to a working file and rotates it into the
// queue directory on demand. Rotation is never initiated here; the owner
// of the sampling loop checks ShouldRotate after each successful append,
// so rotation only ever happens between appends and a reader of the
// working file never observes a partial record.
type Log struct {
	path      string
	queueDir  string
	maxSizeKB int64

	rotations int
	nowFn     func() time.Time
	logger    *slog.Logger
}

// NewLog creates a WOD log writing to path and rotating into queueDir.
func NewLog(path, queueDir string, maxSizeKB int64, options ...func(*Log)) *Log {
	l := Log{
		path:      path,
		queueDir:  queueDir,
		maxSizeKB: maxSizeKB,
		nowFn:     time.Now,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)), // nil logger
	}

	for _, option := range options {
		option(&l)
	}

	return &l
}

// Path returns the working file path.
func (l *Log) Path() string { return l.path }

// Append writes one frame to the working file, creating it if absent, and
// returns the resulting total file size. On any failure the file is
// truncated back to its previous size so no partial record survives, and
// the caller is expected to route the error into the failure governor.
func (l *Log) Append(frame telem.Frame) (int64, error) {
	data, err := frame.MarshalBinary()
	if err != nil {
		return 0, fmt.Errorf("encoding frame: %w", err)
	}

	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return 0, fmt.Errorf("opening WOD file: %w", err)
	}

	stat, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return 0, fmt.Errorf("stat WOD file: %w", err)
	}
	prevSize := stat.Size()

	n, err := f.Write(data)
	if err != nil || n < len(data) {
		_ = f.Truncate(prevSize)
		_ = f.Close()
		if err == nil {
			err = io.ErrShortWrite
		}
		return prevSize, fmt.Errorf("appending WOD record: %w", err)
	}

	if err := f.Close(); err != nil {
		return prevSize, fmt.Errorf("closing WOD file: %w", err)
	}

	return prevSize + int64(n), nil
}

// ShouldRotate reports whether a working file of the given size is over
// the rotation threshold. The comparison deliberately truncates to whole
// kilobytes, matching the file sizes downstream consumers expect.
func (l *Log) ShouldRotate(size int64) bool {
	return size/1024 > l.maxSizeKB
}

// Rotate moves the working file into the queue directory under a unique
// name and returns the completed artifact path. The working file ceases
// to exist; the next Append recreates it empty.
func (l *Log) Rotate() (string, error) {
	if err := os.MkdirAll(l.queueDir, 0o755); err != nil {
		return "", fmt.Errorf("creating queue directory: %w", err)
	}

	name := fmt.Sprintf("wod_%s_%04d.tlm", l.nowFn().UTC().Format("20060102_150405"), l.rotations)
	dest := filepath.Join(l.queueDir, name)

	if err := os.Rename(l.path, dest); err != nil {
		return "", fmt.Errorf("rotating WOD file: %w", err)
	}

	l.rotations++
	l.logger.Debug("rotated WOD file", slog.String("artifact", dest))
	return dest, nil
}

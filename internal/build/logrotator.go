package build

import (
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/jrick/logrotate/rotator"
)

const (
	// DefaultMaxLogFiles is the default maximum number of rotated log
	// files to keep on disk.
	DefaultMaxLogFiles = 3

	// DefaultMaxLogFileSize is the default maximum log file size in MB
	// before rotation occurs.
	DefaultMaxLogFileSize = 5

	// DefaultLogFilename is the default log file name used when no
	// custom name is provided.
	DefaultLogFilename = "agenthooks.log"
)

// LogRotatorConfig holds the configuration for the log file rotator.
type LogRotatorConfig struct {
	// LogDir is the directory where log files are written.
	LogDir string

	// MaxLogFiles is the maximum number of rotated log files to keep.
	MaxLogFiles int

	// MaxLogFileSize is the maximum size of a log file in megabytes
	// before it is rotated.
	MaxLogFileSize int

	// Filename overrides DefaultLogFilename when set.
	Filename string
}

// DefaultLogRotatorConfig returns a LogRotatorConfig for the given log
// directory.
func DefaultLogRotatorConfig(logDir string) *LogRotatorConfig {
	return &LogRotatorConfig{
		LogDir:         logDir,
		MaxLogFiles:    DefaultMaxLogFiles,
		MaxLogFileSize: DefaultMaxLogFileSize,
		Filename:       DefaultLogFilename,
	}
}

// RotatingLogWriter feeds a jrick/logrotate rotator through a pipe. Rotated
// files are gzip compressed.
type RotatingLogWriter struct {
	pipe    *io.PipeWriter
	rotator *rotator.Rotator

	// done is closed once the rotator goroutine has drained the pipe.
	done chan struct{}
}

// NewRotatingLogWriter creates a new rotating log writer. InitLogRotator
// must be called before writing.
func NewRotatingLogWriter() *RotatingLogWriter {
	return &RotatingLogWriter{}
}

// InitLogRotator creates the log directory and starts the rotator goroutine.
func (r *RotatingLogWriter) InitLogRotator(cfg *LogRotatorConfig) error {
	filename := cfg.Filename
	if filename == "" {
		filename = DefaultLogFilename
	}

	logFile := filepath.Join(cfg.LogDir, filename)
	if err := os.MkdirAll(filepath.Dir(logFile), 0o700); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}

	// The rotator takes its threshold in kilobytes.
	var err error
	r.rotator, err = rotator.New(
		logFile, int64(cfg.MaxLogFileSize*1024), false,
		cfg.MaxLogFiles,
	)
	if err != nil {
		return fmt.Errorf("failed to create file rotator: %w", err)
	}
	r.rotator.SetCompressor(gzip.NewWriter(nil), ".gz")

	pr, pw := io.Pipe()
	r.pipe = pw
	r.done = make(chan struct{})

	go func() {
		defer close(r.done)

		// The rotator is the log destination, so its own failures can
		// only go to stderr. EOF is the normal result of Close.
		err := r.rotator.Run(pr)
		if err != nil && !errors.Is(err, io.EOF) {
			_, _ = fmt.Fprintf(
				os.Stderr, "failed to run file rotator: %v\n", err,
			)
		}
	}()

	return nil
}

// Write writes the byte slice to the log rotator pipe. Writes before
// InitLogRotator are discarded.
func (r *RotatingLogWriter) Write(b []byte) (int, error) {
	if r.pipe != nil {
		return r.pipe.Write(b)
	}

	return len(b), nil
}

// Close closes the pipe and waits for the rotator to flush. A hook process
// exits right after Close, so returning early would lose the tail of the
// log.
func (r *RotatingLogWriter) Close() error {
	if r.pipe == nil {
		return nil
	}

	err := r.pipe.Close()
	<-r.done

	if closeErr := r.rotator.Close(); closeErr != nil && err == nil {
		err = closeErr
	}

	return err
}

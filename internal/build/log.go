package build

import (
	"errors"
	"fmt"
	"io"

	"github.com/btcsuite/btclog"
	btclogv2 "github.com/btcsuite/btclog/v2"
)

// ErrUnknownLogLevel is returned when the configured debug level can't be
// parsed.
var ErrUnknownLogLevel = errors.New("unknown log level")

// LogConfig describes where log records go.
type LogConfig struct {
	// LogDir enables the rotating log file when non-empty.
	LogDir string

	// Level is a btclog level name such as "debug" or "info".
	Level string

	// Console receives a second copy of each record when non-nil.
	Console io.Writer
}

// NewRootLogger builds the root logger from cfg. When neither a log
// directory nor a console is configured the logger is btclog.Disabled, since
// hook stderr belongs to the advisory messages. The returned close func must
// be called before the process exits.
func NewRootLogger(cfg LogConfig) (btclogv2.Logger, func() error, error) {
	noop := func() error { return nil }

	level := btclog.LevelInfo
	if cfg.Level != "" {
		var ok bool
		level, ok = btclog.LevelFromString(cfg.Level)
		if !ok {
			return nil, nil, fmt.Errorf("%w: %q", ErrUnknownLogLevel,
				cfg.Level)
		}
	}

	var (
		handlers []btclogv2.Handler
		closer   = noop
	)
	if cfg.LogDir != "" {
		writer := NewRotatingLogWriter()
		err := writer.InitLogRotator(DefaultLogRotatorConfig(cfg.LogDir))
		if err != nil {
			return nil, nil, err
		}

		handlers = append(handlers, btclogv2.NewDefaultHandler(writer))
		closer = writer.Close
	}
	if cfg.Console != nil {
		handlers = append(handlers, btclogv2.NewDefaultHandler(cfg.Console))
	}

	if len(handlers) == 0 {
		return btclogv2.Disabled, noop, nil
	}

	set := NewHandlerSet(handlers...)
	set.SetLevel(level)

	return btclogv2.NewSLogger(set), closer, nil
}

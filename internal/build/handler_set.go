package build

import (
	"context"
	"errors"
	"log/slog"

	"github.com/btcsuite/btclog"
	btclogv2 "github.com/btcsuite/btclog/v2"
)

// HandlerSet fans each log record out to several btclog handlers, such as
// the rotating log file and the console. A record is written to every
// handler that accepts its level.
type HandlerSet struct {
	level btclog.Level
	set   []btclogv2.Handler
}

// NewHandlerSet returns a HandlerSet over handlers at the Info level.
func NewHandlerSet(handlers ...btclogv2.Handler) *HandlerSet {
	h := &HandlerSet{set: handlers}
	h.SetLevel(btclog.LevelInfo)

	return h
}

// derive builds a new set by applying f to every member handler.
func (h *HandlerSet) derive(
	f func(btclogv2.Handler) btclogv2.Handler) *HandlerSet {

	derived := &HandlerSet{
		level: h.level,
		set:   make([]btclogv2.Handler, len(h.set)),
	}
	for i, handler := range h.set {
		derived.set[i] = f(handler)
	}

	return derived
}

// Enabled reports whether any member handles records at level.
//
// NOTE: this is part of the slog.Handler interface.
func (h *HandlerSet) Enabled(ctx context.Context, level slog.Level) bool {
	return anyEnabled(ctx, level, slogHandlers(h.set))
}

// Handle dispatches record to every member that accepts its level.
//
// NOTE: this is part of the slog.Handler interface.
func (h *HandlerSet) Handle(ctx context.Context, record slog.Record) error {
	return handleAll(ctx, record, slogHandlers(h.set))
}

// WithAttrs returns a handler that adds attrs to every record.
//
// NOTE: this is part of the slog.Handler interface.
func (h *HandlerSet) WithAttrs(attrs []slog.Attr) slog.Handler {
	return slogFanout(slogHandlers(h.set)).WithAttrs(attrs)
}

// WithGroup returns a handler that nests later attributes under name.
//
// NOTE: this is part of the slog.Handler interface.
func (h *HandlerSet) WithGroup(name string) slog.Handler {
	return slogFanout(slogHandlers(h.set)).WithGroup(name)
}

// SubSystem returns a set tagged with the given subsystem.
//
// NOTE: this is part of the btclog.Handler interface.
func (h *HandlerSet) SubSystem(tag string) btclogv2.Handler {
	return h.derive(func(handler btclogv2.Handler) btclogv2.Handler {
		return handler.SubSystem(tag)
	})
}

// WithPrefix returns a set that prefixes each message with prefix.
//
// NOTE: this is part of the btclog.Handler interface.
func (h *HandlerSet) WithPrefix(prefix string) btclogv2.Handler {
	return h.derive(func(handler btclogv2.Handler) btclogv2.Handler {
		return handler.WithPrefix(prefix)
	})
}

// SetLevel changes the level of every member.
//
// NOTE: this is part of the btclog.Handler interface.
func (h *HandlerSet) SetLevel(level btclog.Level) {
	for _, handler := range h.set {
		handler.SetLevel(level)
	}
	h.level = level
}

// Level returns the current logging level.
//
// NOTE: this is part of the btclog.Handler interface.
func (h *HandlerSet) Level() btclog.Level {
	return h.level
}

var _ btclogv2.Handler = (*HandlerSet)(nil)

// slogFanout is the plain slog.Handler produced by WithAttrs and WithGroup.
type slogFanout []slog.Handler

func (s slogFanout) Enabled(ctx context.Context, level slog.Level) bool {
	return anyEnabled(ctx, level, s)
}

func (s slogFanout) Handle(ctx context.Context, record slog.Record) error {
	return handleAll(ctx, record, s)
}

func (s slogFanout) WithAttrs(attrs []slog.Attr) slog.Handler {
	derived := make(slogFanout, len(s))
	for i, handler := range s {
		derived[i] = handler.WithAttrs(attrs)
	}

	return derived
}

func (s slogFanout) WithGroup(name string) slog.Handler {
	derived := make(slogFanout, len(s))
	for i, handler := range s {
		derived[i] = handler.WithGroup(name)
	}

	return derived
}

var _ slog.Handler = (slogFanout)(nil)

func slogHandlers(set []btclogv2.Handler) []slog.Handler {
	handlers := make([]slog.Handler, len(set))
	for i, handler := range set {
		handlers[i] = handler
	}

	return handlers
}

func anyEnabled(ctx context.Context, level slog.Level,
	handlers []slog.Handler) bool {

	for _, handler := range handlers {
		if handler.Enabled(ctx, level) {
			return true
		}
	}

	return false
}

// handleAll writes record to each handler that accepts it. Every handler
// is tried even if an earlier one fails.
func handleAll(ctx context.Context, record slog.Record,
	handlers []slog.Handler) error {

	var errs []error
	for _, handler := range handlers {
		if !handler.Enabled(ctx, record.Level) {
			continue
		}
		if err := handler.Handle(ctx, record.Clone()); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

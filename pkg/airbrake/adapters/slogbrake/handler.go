// handler.go implements a log/slog handler that turns log records into
// Airbrake notices.

package slogbrake

import (
	"context"
	"errors"
	"log/slog"
	"runtime"

	"github.com/samber/lo"

	"github.com/driftsignal/airbrake-go/pkg/airbrake"
)

// Options configures the handler.
type Options struct {
	// Level is the minimum record level that produces a notice.
	// Defaults to slog.LevelError.
	Level slog.Leveler
}

// Handler reports log records at or above a minimum level as notices.
// It is meant to run alongside a regular output handler, not replace
// one; pair the two with a fan-out handler or attach this one to a
// dedicated logger for reportable failures.
//
//	handler := slogbrake.NewHandler(notifier, nil)
//	logger := slog.New(handler)
//	logger.Error("charge declined", "order", orderID)
//
// The record message becomes the notice message, the record level maps
// onto the notice severity, and attributes travel in the notice params
// with group names joined by dots.
type Handler struct {
	notifier *airbrake.Notifier
	level    slog.Leveler

	// Attrs accumulated by WithAttrs, already flattened under their
	// group prefix.
	params map[string]any
	prefix string
}

// NewHandler builds a Handler delivering through n. A nil opts reports
// records at slog.LevelError and above.
func NewHandler(n *airbrake.Notifier, opts *Options) *Handler {
	h := &Handler{
		notifier: n,
		level:    slog.LevelError,
		params:   map[string]any{},
	}
	if opts != nil && opts.Level != nil {
		h.level = opts.Level
	}
	return h
}

// Enabled reports whether a record at level would produce a notice.
func (h *Handler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

// Handle converts the record into a notice and delivers it. Suppressed
// outcomes (a disabled notifier, a filter veto) are not errors from the
// logger's point of view; genuine delivery failures are returned.
func (h *Handler) Handle(ctx context.Context, rec slog.Record) error {
	severity := severityForLevel(rec.Level)

	params := lo.Assign(h.params)
	rec.Attrs(func(a slog.Attr) bool {
		appendAttrParam(params, h.prefix, a)
		return true
	})

	d := airbrake.ErrorDescriptor{
		Type:    string(severity),
		Message: rec.Message,
	}
	if rec.PC != 0 {
		frame, _ := runtime.CallersFrames([]uintptr{rec.PC}).Next()
		d.File = frame.File
		d.Line = frame.Line
	}

	notice := h.notifier.NotifyDescriptor(ctx, d,
		airbrake.WithSeverity(severity),
		airbrake.WithParams(params),
	)
	if notice.Err == nil ||
		errors.Is(notice.Err, airbrake.ErrDisabled) ||
		errors.Is(notice.Err, airbrake.ErrNoticeFiltered) {
		return nil
	}
	return notice.Err
}

// WithAttrs returns a handler that adds attrs to every notice.
func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	clone := *h
	clone.params = lo.Assign(h.params)
	for _, a := range attrs {
		appendAttrParam(clone.params, h.prefix, a)
	}
	return &clone
}

// WithGroup returns a handler that prefixes subsequent attribute keys
// with name.
func (h *Handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	clone.prefix = h.prefix + name + "."
	return &clone
}

// appendAttrParam flattens one attribute into params under prefix.
// Groups recurse with a dotted prefix; error values are reported as
// their message rather than an opaque object.
func appendAttrParam(params map[string]any, prefix string, a slog.Attr) {
	value := a.Value.Resolve()
	if value.Kind() == slog.KindGroup {
		groupPrefix := prefix
		if a.Key != "" {
			groupPrefix = prefix + a.Key + "."
		}
		for _, member := range value.Group() {
			appendAttrParam(params, groupPrefix, member)
		}
		return
	}
	if a.Key == "" {
		return
	}
	switch value.Kind() {
	case slog.KindDuration:
		params[prefix+a.Key] = value.Duration().String()
	case slog.KindAny:
		if err, ok := value.Any().(error); ok {
			params[prefix+a.Key] = err.Error()
			return
		}
		params[prefix+a.Key] = value.Any()
	default:
		params[prefix+a.Key] = value.Any()
	}
}

// severityForLevel maps a slog level range onto the canonical severity
// set. Levels beyond slog's named constants land in the nearest bucket,
// so custom levels like slog.LevelError+4 report as critical.
func severityForLevel(level slog.Level) airbrake.Severity {
	switch {
	case level >= slog.LevelError+4:
		return airbrake.SeverityCritical
	case level >= slog.LevelError:
		return airbrake.SeverityError
	case level >= slog.LevelWarn:
		return airbrake.SeverityWarning
	case level >= slog.LevelInfo:
		return airbrake.SeverityInfo
	default:
		return airbrake.SeverityDebug
	}
}

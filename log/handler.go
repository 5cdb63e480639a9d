package log

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
)

// formatterHandler adapts a LogFormatter to the slog.Handler interface, so
// the Text/JSON/Color formatters above can back a Logger the same way a
// stdlib slog handler does. This is the only bridge between the two: New
// and NewWithHandler still build ordinary slog handlers directly for
// callers that have no use for the formatter abstraction.
type formatterHandler struct {
	mu        *sync.Mutex
	w         io.Writer
	formatter LogFormatter
	level     slog.Level
	attrs     []slog.Attr
}

// NewFormatterHandler builds a slog.Handler that renders every record
// through formatter at the given minimum level, writing one line per
// record to w.
func NewFormatterHandler(formatter LogFormatter, level slog.Level, w io.Writer) slog.Handler {
	return &formatterHandler{
		mu:        &sync.Mutex{},
		w:         w,
		formatter: formatter,
		level:     level,
	}
}

func (h *formatterHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

func (h *formatterHandler) Handle(_ context.Context, r slog.Record) error {
	fields := make(map[string]interface{}, len(h.attrs)+r.NumAttrs())
	for _, a := range h.attrs {
		fields[a.Key] = a.Value.Any()
	}
	r.Attrs(func(a slog.Attr) bool {
		fields[a.Key] = a.Value.Any()
		return true
	})

	entry := LogEntry{
		Timestamp: r.Time,
		Level:     slogLevelToLogLevel(r.Level),
		Message:   r.Message,
		Fields:    fields,
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := fmt.Fprintln(h.w, h.formatter.Format(entry))
	return err
}

func (h *formatterHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	merged = append(merged, h.attrs...)
	merged = append(merged, attrs...)
	return &formatterHandler{mu: h.mu, w: h.w, formatter: h.formatter, level: h.level, attrs: merged}
}

// WithGroup is a no-op: LogEntry has no concept of nested groups, so a
// grouped attr is recorded under its own key same as any other.
func (h *formatterHandler) WithGroup(_ string) slog.Handler {
	return h
}

// ToSlogLevel converts a LogLevel (as produced by LevelFromString) to the
// nearest slog.Level, for callers that parse verbosity via LevelFromString
// but still need a slog.Level to gate a Logger built with NewWithFormatter.
// FATAL has no slog equivalent and maps to slog.LevelError.
func ToSlogLevel(l LogLevel) slog.Level {
	switch l {
	case DEBUG:
		return slog.LevelDebug
	case WARN:
		return slog.LevelWarn
	case ERROR, FATAL:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func slogLevelToLogLevel(l slog.Level) LogLevel {
	switch {
	case l < slog.LevelInfo:
		return DEBUG
	case l < slog.LevelWarn:
		return INFO
	case l < slog.LevelError:
		return WARN
	default:
		return ERROR
	}
}

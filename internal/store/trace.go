package store

import (
	"context"
	"log/slog"
	"time"
)

// Severity mirrors the Debug/Info/Notice/Warning scale spec.md §4.G
// assigns to every structured event.
type Severity int

const (
	SeverityDebug Severity = iota
	SeverityInfo
	SeverityNotice
	SeverityWarning
)

func (s Severity) slogLevel() slog.Level {
	switch s {
	case SeverityDebug:
		return slog.LevelDebug
	case SeverityNotice:
		return slog.LevelInfo
	case SeverityWarning:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}

func (s Severity) String() string {
	switch s {
	case SeverityDebug:
		return "debug"
	case SeverityInfo:
		return "info"
	case SeverityNotice:
		return "notice"
	case SeverityWarning:
		return "warning"
	default:
		return "info"
	}
}

// Event is a single structured trace event. Name identifies the event
// taxonomy entry (e.g. "DatabaseRunningMigration"); Fields carries its
// payload (e.g. {"from": 1, "to": 2}).
type Event struct {
	Name     string
	Severity Severity
	Fields   map[string]any
}

// Tracer accepts structured events. The engine never blocks on tracing;
// a nil Tracer (or one backed by a full channel, in a custom
// implementation) must not stall a caller.
type Tracer interface {
	Trace(Event)
}

// NopTracer discards every event.
type NopTracer struct{}

func (NopTracer) Trace(Event) {}

// SlogTracer renders events through a *slog.Logger at the event's own
// severity, following the teacher's "accept an interface, default to
// slog.Default()" idiom (suggestions/maintenance.Config.Logger).
type SlogTracer struct {
	Logger *slog.Logger
}

func NewSlogTracer(logger *slog.Logger) *SlogTracer {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlogTracer{Logger: logger}
}

func (t *SlogTracer) Trace(ev Event) {
	if t == nil || t.Logger == nil {
		return
	}
	attrs := make([]slog.Attr, 0, len(ev.Fields))
	for k, v := range ev.Fields {
		attrs = append(attrs, slog.Any(k, v))
	}
	t.Logger.LogAttrs(context.Background(), ev.Severity.slogLevel(), ev.Name, attrs...)
}

// Database-level event constructors.

func evDatabaseConnection(path string) Event {
	return Event{Name: "DatabaseConnection", Severity: SeverityInfo, Fields: map[string]any{"path": path}}
}

func evDatabaseCurrentVersion(version int) Event {
	return Event{Name: "DatabaseCurrentVersion", Severity: SeverityDebug, Fields: map[string]any{"version": version}}
}

func evDatabaseNoMigrationNeeded() Event {
	return Event{Name: "DatabaseNoMigrationNeeded", Severity: SeverityDebug}
}

func evDatabaseRunningMigration(from, to int) Event {
	return Event{
		Name:     "DatabaseRunningMigration",
		Severity: SeverityNotice,
		Fields:   map[string]any{"from": from, "to": to},
	}
}

func evDatabaseCreateIndex(name string) Event {
	return Event{Name: "DatabaseCreateIndex", Severity: SeverityInfo, Fields: map[string]any{"name": name}}
}

func evDatabaseIndexAlreadyExists(name string) Event {
	return Event{Name: "DatabaseIndexAlreadyExists", Severity: SeverityDebug, Fields: map[string]any{"name": name}}
}

func evDatabaseDeferIndexes(warning string) Event {
	return Event{Name: "DatabaseDeferIndexes", Severity: SeverityWarning, Fields: map[string]any{"warning": warning}}
}

func evDatabaseRunningInMemory() Event {
	return Event{Name: "DatabaseRunningInMemory", Severity: SeverityNotice}
}

// Connection-level event constructors.

func evConnectionCreateShortLived(mode string) Event {
	return Event{Name: "ConnectionCreateShortLived", Severity: SeverityDebug, Fields: map[string]any{"mode": mode}}
}

func evConnectionDestroyShortLived(mode string) Event {
	return Event{Name: "ConnectionDestroyShortLived", Severity: SeverityDebug, Fields: map[string]any{"mode": mode}}
}

func evConnectionLocked(retryIn time.Duration) Event {
	return Event{Name: "ConnectionLocked", Severity: SeverityWarning, Fields: map[string]any{"retry_in": retryIn}}
}

func evConnectionBusy(retryIn time.Duration) Event {
	return Event{Name: "ConnectionBusy", Severity: SeverityWarning, Fields: map[string]any{"retry_in": retryIn}}
}

func evConnectionBeginQuery(name, queryID string) Event {
	return Event{Name: "ConnectionBeginQuery", Severity: SeverityDebug, Fields: map[string]any{"name": name, "query_id": queryID}}
}

func evConnectionExitQuery(name, queryID string) Event {
	return Event{Name: "ConnectionExitQuery", Severity: SeverityDebug, Fields: map[string]any{"name": name, "query_id": queryID}}
}

func evConnectionCreateTemporaryIndex(name string) Event {
	return Event{Name: "ConnectionCreateTemporaryIndex", Severity: SeverityInfo, Fields: map[string]any{"name": name}}
}

func evConnectionRemoveTemporaryIndex(name string) Event {
	return Event{Name: "ConnectionRemoveTemporaryIndex", Severity: SeverityInfo, Fields: map[string]any{"name": name}}
}

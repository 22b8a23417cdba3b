// Package events publishes the lifecycle of long-running resource operations.
// Every mutating storage operation emits a begin/end pair so callers can
// render progress or audit what a command touched.
package events

import (
	"context"
	"log/slog"
	"time"

	"github.com/bsdkit/jailconf/internal/logging"
)

type State uint8

const (
	StatePending State = iota
	StateRunning
	StateSucceeded
	StateFailed
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateRunning:
		return "running"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

// Type identifies the operation an event describes.
type Type string

const (
	TypeDatasetDestroy  Type = "dataset_destroy"
	TypeDatasetMount    Type = "dataset_mount"
	TypeDatasetRename   Type = "dataset_rename"
	TypeSnapshotCreate  Type = "snapshot_create"
	TypeSnapshotDestroy Type = "snapshot_destroy"
	TypeSnapshotClone   Type = "snapshot_clone"
	TypeSnapshotRename  Type = "snapshot_rename"
	TypeReleaseClone    Type = "release_clone"
)

// Event tracks one operation on one subject from begin to completion. The
// zero state is pending; Begin and the completion methods return the event so
// emitting reads as one statement.
type Event struct {
	Type    Type
	Subject string
	State   State
	Err     error

	startedAt time.Time
	duration  time.Duration
}

func New(t Type, subject string) *Event {
	return &Event{Type: t, Subject: subject}
}

func (e *Event) Begin() *Event {
	e.State = StateRunning
	e.startedAt = time.Now()
	return e
}

func (e *Event) End() *Event {
	e.State = StateSucceeded
	e.duration = time.Since(e.startedAt)
	return e
}

func (e *Event) Fail(err error) *Event {
	e.State = StateFailed
	e.Err = err
	e.duration = time.Since(e.startedAt)
	return e
}

func (e *Event) Duration() time.Duration { return e.duration }

// Sink receives every state transition of every event.
type Sink interface {
	Publish(ctx context.Context, e *Event)
}

// Discard drops all events.
var Discard Sink = discard{}

type discard struct{}

func (discard) Publish(context.Context, *Event) {}

// LogSink writes events to the context logger.
type LogSink struct{}

var _ Sink = LogSink{}

func (LogSink) Publish(ctx context.Context, e *Event) {
	l := logging.FromContext(ctx).With(
		slog.String("event", string(e.Type)),
		slog.String("subject", e.Subject))

	switch e.State {
	case StateRunning:
		l.Debug("operation started")
	case StateSucceeded:
		l.Info("operation succeeded",
			slog.Duration("duration", e.Duration()))
	case StateFailed:
		logging.WithError(l, e.Err).Error("operation failed",
			slog.Duration("duration", e.Duration()))
	}
}

// Package logging carries a *slog.Logger through context.Context and tags it
// with the subsystem that emits the message. Library packages never construct
// their own loggers; they fetch one from the context and fall back to a null
// logger when the caller did not attach any.
package logging

import (
	"context"
	"log/slog"
)

const (
	SubsysField = "subsystem"

	// The field set by WithError.
	FieldError = "err"
)

const (
	SubsysConfig   Subsystem = "config"
	SubsysResource Subsystem = "resource"
	SubsysFstab    Subsystem = "fstab"
	SubsysStorage  Subsystem = "storage"
	SubsysZFSCmd   Subsystem = "zfs.cmd"
)

type Subsystem string

type ctxKey struct{}

var ctxKeyLogger ctxKey = struct{}{}

func WithLogger(ctx context.Context, l *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKeyLogger, l)
}

func GetLogger(ctx context.Context, subsys Subsystem) *slog.Logger {
	return FromContext(ctx).With(slog.String(SubsysField, string(subsys)))
}

func FromContext(ctx context.Context) *slog.Logger {
	l, ok := ctx.Value(ctxKeyLogger).(*slog.Logger)
	if ok && l != nil {
		return l
	}
	return NewNullLogger()
}

func WithError(l *slog.Logger, err error) *slog.Logger {
	if err == nil {
		return l
	}
	return l.With(slog.String(FieldError, err.Error()))
}

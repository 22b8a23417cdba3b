package logging

import (
	"context"
	"log/slog"
)

func NewNullLogger() *slog.Logger { return slog.New(nullHandler{}) }

type nullHandler struct{}

var _ slog.Handler = (*nullHandler)(nil)

func (nullHandler) Enabled(context.Context, slog.Level) bool   { return false }
func (nullHandler) Handle(context.Context, slog.Record) error  { return nil }
func (n nullHandler) WithAttrs(attrs []slog.Attr) slog.Handler { return n }
func (n nullHandler) WithGroup(name string) slog.Handler       { return n }

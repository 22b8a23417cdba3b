package zfscmd

import (
	"context"
	"log/slog"

	"github.com/bsdkit/jailconf/internal/logging"
)

type contextKey int

const (
	contextKeyJailName contextKey = 1 + iota
)

// WithJailName tags all commands run through this context with the jail they
// operate on.
func WithJailName(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, contextKeyJailName, name)
}

func GetJailNameOrDefault(ctx context.Context, def string) string {
	ret, ok := ctx.Value(contextKeyJailName).(string)
	if !ok {
		return def
	}
	return ret
}

func getLogger(ctx context.Context) *slog.Logger {
	l := logging.GetLogger(ctx, logging.SubsysZFSCmd)
	if jail := GetJailNameOrDefault(ctx, ""); jail != "" {
		l = l.With(slog.String("jail", jail))
	}
	return l
}

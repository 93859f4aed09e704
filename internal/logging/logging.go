package logging

import (
	"context"
	"log/slog"
	"os"
	"strings"

	"github.com/weiloon/settlebook/internal/domain"
)

type ctxKey struct{}

var levelNames = map[string]slog.Level{
	"debug":   slog.LevelDebug,
	"info":    slog.LevelInfo,
	"warn":    slog.LevelWarn,
	"warning": slog.LevelWarn,
	"error":   slog.LevelError,
}

// Init builds the process logger and installs it as the slog default.
// Development gets human-readable text output; everything else gets JSON.
func Init(service, level, appEnv string) *slog.Logger {
	lvl, ok := levelNames[strings.ToLower(level)]
	if !ok {
		lvl = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: lvl}

	var handler slog.Handler
	if appEnv == "development" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	logger := slog.New(handler).With("service", service)
	slog.SetDefault(logger)
	return logger
}

// Account is the attr group every per-account log line carries.
func Account(key domain.AccountKey) slog.Attr {
	return slog.Group("account", slog.Int64("chat_id", key.ChatID), slog.Int64("user_id", key.UserID))
}

func FromContext(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok {
		return l
	}
	return slog.Default()
}

func WithLogger(ctx context.Context, l *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

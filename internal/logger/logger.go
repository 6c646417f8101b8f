package logger

import (
	"log/slog"
	"os"

	"github.com/getsentry/sentry-go"
	slogmulti "github.com/samber/slog-multi"
	slogsentry "github.com/samber/slog-sentry/v2"
)

// Log is the process-wide logger, also installed as slog's default.
var Log *slog.Logger

// Init sets up logging for the environment: text at debug level in
// development, JSON at info level otherwise, with errors fanned out to
// Sentry when a DSN is provided.
func Init(isDev bool, sentryDSN string) {
	var stdout slog.Handler
	if isDev {
		stdout = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})
	} else {
		stdout = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	}

	handlers := []slog.Handler{stdout}
	if sentryDSN != "" {
		err := sentry.Init(sentry.ClientOptions{
			Dsn:              sentryDSN,
			TracesSampleRate: 1.0,
		})
		if err == nil {
			handlers = append(handlers, slogsentry.Option{Level: slog.LevelError}.NewSentryHandler())
		}
	}

	if len(handlers) == 1 {
		Log = slog.New(handlers[0])
	} else {
		Log = slog.New(slogmulti.Fanout(handlers...))
	}
	slog.SetDefault(Log)
}

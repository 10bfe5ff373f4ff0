package telemetry

import (
	"log/slog"
	"os"
)

// InitSlog installs the process-wide slog handler. Debug mode is also
// switched on by STAYSYNC_DEBUG=1 so a scheduled run can be made
// verbose without changing the invocation.
func InitSlog(debug bool) {
	level := slog.LevelInfo
	if debug || os.Getenv("STAYSYNC_DEBUG") == "1" {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	slog.SetDefault(slog.New(handler))
}

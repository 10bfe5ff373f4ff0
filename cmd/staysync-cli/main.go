package main

import (
	"context"
	"log/slog"
	"staysync/cmd/staysync-cli/commands"
	"staysync/lib/telemetry"

	"github.com/joho/godotenv"
)

func main() {
	ctx := context.Background()

	// a .env next to the binary is a convenience for scheduled runs;
	// its absence is fine
	_ = godotenv.Load()

	telemetry.InitSlog(false)
	tel, err := telemetry.SetupFromEnv(ctx, "staysync-cli")
	if err != nil {
		slog.Warn("telemetry setup failed, continuing without export", "err", err)
	}
	defer tel.Shutdown(ctx)

	commands.ExecuteContext(ctx)
}

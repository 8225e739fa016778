package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/portfoliobuilder/intake/cmd/intakectl/cmds"
	"github.com/portfoliobuilder/intake/internal/logger"
)

func runApp(ctx context.Context) int {
	err := cmds.Execute(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error: "+err.Error())
		return 1
	}

	return 0
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)

	logger.InitSlog(slog.LevelWarn)

	code := runApp(ctx)
	cancel()
	os.Exit(code)
}

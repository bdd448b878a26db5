package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/arnavsh/promptgate/internal/config"
	"github.com/arnavsh/promptgate/internal/version"
)

func setupLogger() *slog.Logger {
	// Use sensible defaults: info level, text format
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	return slog.New(handler)
}

func printStartupBanner(cfg *config.Config) {
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "promptgate %s - Portfolio Assistant Router\n", version.Version)
	fmt.Fprintln(os.Stderr, "════════════════════════════════════════════════")
	fmt.Fprintf(os.Stderr, "Assist API: http://localhost%s/api/assist\n", cfg.ServerPort)
	fmt.Fprintf(os.Stderr, "Health:     http://localhost%s/api/health\n", cfg.ServerPort)
	fmt.Fprintf(os.Stderr, "Data:       %s\n", config.DataDir())
	fmt.Fprintln(os.Stderr, "════════════════════════════════════════════════")
	fmt.Fprintf(os.Stderr, "\n")
}

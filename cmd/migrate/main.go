package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	flag "github.com/spf13/pflag"

	"github.com/daap14/teamhub/internal/database"
)

func main() {
	var (
		command     string
		target      int64
		timeout     time.Duration
		databaseURL string
		logLevel    string
	)
	flag.StringVarP(&command, "command", "c", "up", "migration command: up, down or status")
	flag.Int64Var(&target, "target", 0, "version to roll back to with down; 0 rolls back one migration")
	flag.DurationVar(&timeout, "timeout", 2*time.Minute, "overall time limit")
	flag.StringVar(&databaseURL, "database-url", os.Getenv("DATABASE_URL"), "postgres connection URL (defaults to $DATABASE_URL)")
	flag.StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn or error")
	flag.Parse()

	var level slog.Level
	if err := level.UnmarshalText([]byte(logLevel)); err != nil {
		level = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})))

	if err := run(command, target, timeout, databaseURL); err != nil {
		slog.Error("migration failed", "command", command, "error", err)
		os.Exit(1)
	}
}

func run(command string, target int64, timeout time.Duration, databaseURL string) error {
	migrator, err := database.NewMigrator(databaseURL, slog.Default())
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	switch command {
	case "up":
		return migrator.Up(ctx)
	case "down":
		return migrator.Down(ctx, target)
	case "status":
		return migrator.Status(ctx)
	default:
		return fmt.Errorf("unknown command %q", command)
	}
}

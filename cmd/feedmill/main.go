package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/nkemp/feedmill/config"
)

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: feedmill <command> [flags]

Commands:
  sources   list, add, delete, enable or disable content sources
  sync      run one ingestion sweep over all enabled sources
  purge     delete articles past the retention horizon
  serve     run periodic sweeps until interrupted
`)
	os.Exit(2)
}

// getEnv returns the value of an environment variable or a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvDuration parses a duration from an environment variable or returns
// the default.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func main() {
	if len(os.Args) < 2 {
		usage()
	}

	log := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(log)

	cfg, err := config.Load()
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	var cmdErr error
	switch os.Args[1] {
	case "sources":
		cmdErr = runSources(cfg, os.Args[2:])
	case "sync":
		cmdErr = runSync(cfg, log, os.Args[2:])
	case "purge":
		cmdErr = runPurge(cfg, log, os.Args[2:])
	case "serve":
		cmdErr = runServe(cfg, log, os.Args[2:])
	default:
		usage()
	}
	if cmdErr != nil {
		log.Error("command failed", "command", os.Args[1], "error", cmdErr)
		os.Exit(1)
	}
}

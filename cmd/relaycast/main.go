// If you are AI: This is the main entrypoint for the relaycast server.
// It handles configuration loading, server startup, and graceful shutdown.

package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"relaycast/internal/config"
	"relaycast/internal/logger"
	"relaycast/internal/server"
)

// main loads configuration, starts the server and waits for a termination signal.
func main() {
	configPath := flag.String("config", "", "Path to YAML configuration file (optional)")
	envPath := flag.String("env", ".env", "Path to .env file with RELAYCAST_* overrides")
	flag.Parse()

	if err := config.LoadEnv(*envPath); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "failed to load env file: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Log.Level, cfg.Log.Format)
	ctx := context.Background()

	srv := server.New(cfg, log)
	if err := srv.Start(ctx); err != nil {
		log.Error("start failed", "error", err)
		os.Exit(1)
	}

	if err := server.NewShutdownHandler(ctx, srv, log).Wait(); err != nil {
		log.Error("shutdown error", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}

package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/danielpatrickdp/adaptive-guess/internal/app"
	"github.com/danielpatrickdp/adaptive-guess/internal/config"
	"github.com/danielpatrickdp/adaptive-guess/internal/tui"
)

// #region main
func main() {
	os.Exit(run())
}

func run() int {
	if err := config.LoadDotenv(); err != nil {
		fmt.Fprintf(os.Stderr, "warning: %v\n", err)
	}

	configPath := flag.String("config", envOr("ADAPTIVE_GUESS_CONFIG", "adaptive_guess.yaml"), "path to YAML config")
	logPath := flag.String("log", "", "write logs to this file (the TUI owns the terminal)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		return 2
	}

	logger := zerolog.Nop()
	if *logPath != "" {
		f, err := os.OpenFile(*logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "open log: %v\n", err)
			return 1
		}
		defer f.Close()
		logger = cfg.Logger(f)
	}

	a, err := app.Open(cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open: %v\n", err)
		return 1
	}
	defer a.Close()

	if n, _ := a.Store.Count(); n == 0 {
		fmt.Fprintf(os.Stderr, "catalog %s is empty; run seed first\n", cfg.DBPath)
		return 1
	}

	if err := tui.Run(a.Engine); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	return 0
}

// #endregion main

// #region helpers
func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// #endregion helpers

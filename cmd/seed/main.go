package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/danielpatrickdp/adaptive-guess/internal/app"
	"github.com/danielpatrickdp/adaptive-guess/internal/catalog"
	"github.com/danielpatrickdp/adaptive-guess/internal/config"
	"github.com/danielpatrickdp/adaptive-guess/internal/effectiveness"
)

// #region main
func main() {
	if err := config.LoadDotenv(); err != nil {
		fmt.Fprintf(os.Stderr, "warning: %v\n", err)
	}

	configPath := flag.String("config", envOr("ADAPTIVE_GUESS_CONFIG", "adaptive_guess.yaml"), "path to YAML config")
	dbPath := flag.String("db", "", "catalog database (overrides config)")
	seedPath := flag.String("seed", "", "YAML seed file (overrides config)")
	resetPop := flag.Bool("reset-popularity", false, "zero every popularity score after loading")
	resetEff := flag.Bool("reset-effectiveness", false, "forget recorded question effectiveness")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(2)
	}
	if *dbPath != "" {
		cfg.DBPath = *dbPath
	}
	if *seedPath != "" {
		cfg.SeedPath = *seedPath
	}
	if cfg.SeedPath == "" {
		fmt.Fprintln(os.Stderr, "usage: seed [--db path] --seed data/catalog.yaml [--reset-popularity] [--reset-effectiveness]")
		os.Exit(2)
	}

	if err := run(cfg, *resetPop, *resetEff); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// #endregion main

// #region run
func run(cfg config.Config, resetPop, resetEff bool) error {
	store, err := catalog.NewStore(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer store.Close()

	before, err := store.Count()
	if err != nil {
		return err
	}
	n, err := app.SeedFile(store, cfg.SeedPath)
	if err != nil {
		return err
	}
	after, err := store.Count()
	if err != nil {
		return err
	}
	fmt.Printf("Loaded %d items from %s (%d new, %d total)\n", n, cfg.SeedPath, after-before, after)

	if resetPop {
		if err := store.ResetPopularity(); err != nil {
			return err
		}
		fmt.Println("Popularity reset.")
	}
	if resetEff {
		eff, err := effectiveness.NewStore(store.DB())
		if err != nil {
			return err
		}
		if err := eff.Clear(); err != nil {
			return err
		}
		fmt.Println("Question effectiveness cleared.")
	}
	return nil
}

// #endregion run

// #region helpers
func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// #endregion helpers

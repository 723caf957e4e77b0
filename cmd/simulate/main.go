package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/danielpatrickdp/adaptive-guess/internal/catalog"
	"github.com/danielpatrickdp/adaptive-guess/internal/config"
	"github.com/danielpatrickdp/adaptive-guess/internal/replay"
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
	fixturePath := flag.String("fixture", "", "path to fixture YAML (fixture mode)")
	seedPath := flag.String("seed", "", "catalog seed to simulate every item of (catalog mode)")
	passes := flag.Int("passes", 1, "simulate the catalog this many times (catalog mode)")
	verbose := flag.Bool("v", false, "print every step")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		return 2
	}
	if *seedPath == "" && *fixturePath == "" {
		*seedPath = cfg.SeedPath
	}
	if (*seedPath == "") == (*fixturePath == "") {
		fmt.Fprintln(os.Stderr, "usage: simulate --fixture path/to/fixture.yaml")
		fmt.Fprintln(os.Stderr, "       simulate --seed data/catalog.yaml [--passes N]")
		return 2
	}

	dir, err := os.MkdirTemp("", "adaptive-guess-sim-")
	if err != nil {
		fmt.Fprintf(os.Stderr, "temp dir: %v\n", err)
		return 2
	}
	defer os.RemoveAll(dir)

	if *fixturePath != "" {
		return runFixtureMode(dir, *fixturePath, cfg, *verbose)
	}
	return runCatalogMode(dir, *seedPath, *passes, cfg, *verbose)
}

// #endregion main

// #region fixture-mode

func runFixtureMode(dir, path string, cfg config.Config, verbose bool) int {
	fx, err := replay.LoadFixture(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return 2
	}
	items, err := fx.CatalogItems()
	if err != nil {
		fmt.Fprintf(os.Stderr, "fixture items: %v\n", err)
		return 2
	}
	logger := cfg.Logger(os.Stderr)
	sb, err := replay.NewSandbox(dir, items, fx.Config, cfg.Learning, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "sandbox: %v\n", err)
		return 2
	}
	defer sb.Close()

	results, err := replay.RunFixture(sb.Engine, fx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "run fixture: %v\n", err)
		return 2
	}

	fmt.Printf("Fixture: %s\n", fx.Description)
	fmt.Printf("%-16s  %-10s  %-10s  %9s  %s\n", "Target", "Expect", "Got", "Questions", "Status")
	fmt.Printf("%-16s+-%-10s+-%-10s+-%9s+-%s\n", "----------------", "----------", "----------", "---------", "------")

	failed := 0
	for _, r := range results {
		status := "PASS"
		if !r.Pass {
			status = "FAIL " + r.Reason
			failed++
		}
		expect := string(r.Case.Expect)
		if expect == "" {
			expect = "guessed"
		}
		fmt.Printf("%-16s  %-10s  %-10s  %9d  %s\n", r.Case.Target, expect, r.Got, r.Questions, status)
		if verbose {
			printSteps(r.Transcript)
		}
	}

	fmt.Printf("\n%d/%d cases passed\n", len(results)-failed, len(results))
	if failed > 0 {
		return 1
	}
	return 0
}

// #endregion fixture-mode

// #region catalog-mode

func runCatalogMode(dir, seedPath string, passes int, cfg config.Config, verbose bool) int {
	items, err := catalog.LoadSeed(seedPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return 2
	}
	sb, err := replay.NewSandbox(dir, items, cfg.Game, cfg.Learning, cfg.Logger(os.Stderr))
	if err != nil {
		fmt.Fprintf(os.Stderr, "sandbox: %v\n", err)
		return 2
	}
	defer sb.Close()

	if passes < 1 {
		passes = 1
	}
	var all []replay.Transcript
	for pass := 1; pass <= passes; pass++ {
		transcripts, err := replay.SimulateAll(sb.Engine, items)
		if err != nil {
			fmt.Fprintf(os.Stderr, "simulate: %v\n", err)
			return 2
		}
		all = append(all, transcripts...)
		s := replay.Summarize(transcripts)
		fmt.Printf("pass %d: %d/%d guessed, avg %.2f questions, max %d, %d wrong guesses\n",
			pass, s.Guessed, s.Rounds, s.AvgQuestions, s.MaxQuestions, s.WrongGuesses)
	}

	fmt.Printf("\n%-16s  %9s  %6s  %s\n", "Target", "Questions", "Wrong", "Result")
	fmt.Printf("%-16s+-%9s+-%6s+-%s\n", "----------------", "---------", "------", "--------")
	last := all[len(all)-len(items):]
	for _, t := range last {
		fmt.Printf("%-16s  %9d  %6d  %s\n", t.Target.Name, t.Questions, len(t.Guesses), t.Outcome.Result)
		if verbose {
			printSteps(t)
		}
	}

	s := replay.Summarize(all)
	fmt.Printf("\n=== Simulation Summary ===\n")
	fmt.Printf("Rounds:        %d\n", s.Rounds)
	fmt.Printf("Guessed:       %d\n", s.Guessed)
	fmt.Printf("Revealed:      %d\n", s.Revealed)
	fmt.Printf("Unknown:       %d\n", s.Unknown)
	fmt.Printf("Wrong guesses: %d\n", s.WrongGuesses)
	fmt.Printf("Avg questions: %.2f (max %d)\n", s.AvgQuestions, s.MaxQuestions)
	if s.Guessed != s.Rounds {
		return 1
	}
	return 0
}

// #endregion catalog-mode

// #region helpers

func printSteps(t replay.Transcript) {
	for i, st := range t.Steps {
		ans := "no"
		if st.Answer {
			ans = "yes"
		}
		fmt.Printf("    %2d. [%-8s] %-44s %-3s (%d left)\n", i+1, st.Kind, st.Text, ans, st.Remaining)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// #endregion helpers

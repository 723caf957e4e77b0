package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"sort"
	"strconv"

	"github.com/danielpatrickdp/adaptive-guess/internal/catalog"
	"github.com/danielpatrickdp/adaptive-guess/internal/config"
	"github.com/danielpatrickdp/adaptive-guess/internal/effectiveness"
	"github.com/danielpatrickdp/adaptive-guess/internal/entropy"
	"github.com/danielpatrickdp/adaptive-guess/internal/logging"
	"github.com/danielpatrickdp/adaptive-guess/internal/question"
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
	dbPath := flag.String("db", "", "catalog database (overrides config)")
	top := flag.Int("top", 10, "show N most popular items and effective questions")
	last := flag.Int("rounds", 10, "show N most recent rounds")
	jsonOut := flag.Bool("json", false, "output as JSON instead of tables")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		return 2
	}
	if *dbPath != "" {
		cfg.DBPath = *dbPath
	}

	store, err := catalog.NewStore(cfg.DBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open db: %v\n", err)
		return 1
	}
	defer store.Close()

	rep, err := buildReport(store, *top, *last)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	if *jsonOut {
		err = printJSON(rep)
	} else {
		printReport(rep)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	return 0
}

// #endregion main

// #region report

type report struct {
	Popularity    catalog.PopularityStats `json:"popularity"`
	Effectiveness effectiveness.Stats     `json:"effectiveness"`
	Openings      []opening               `json:"openings"`
	Rounds        []roundRow              `json:"rounds"`
}

// opening is the information gain of a question asked first.
type opening struct {
	Question string  `json:"question"`
	Gain     float64 `json:"gain"`
}

type roundRow struct {
	RoundID   string `json:"round_id"`
	Outcome   string `json:"outcome"`
	Guess     int    `json:"guess_id,omitempty"`
	Actual    int    `json:"actual_id,omitempty"`
	Questions int    `json:"questions"`
	Wrong     int    `json:"wrong_guesses"`
	CreatedAt string `json:"created_at"`
}

func buildReport(store *catalog.Store, top, last int) (report, error) {
	var rep report
	var err error
	if rep.Popularity, err = store.PopularityStats(top); err != nil {
		return rep, err
	}

	effStore, err := effectiveness.NewStore(store.DB())
	if err != nil {
		return rep, err
	}
	tracker, err := effectiveness.NewTracker(effStore)
	if err != nil {
		return rep, err
	}
	rep.Effectiveness = tracker.Stats(top)

	if rep.Openings, err = openings(store, top); err != nil {
		return rep, err
	}

	if err := logging.EnsureSchema(store.DB()); err != nil {
		return rep, err
	}
	entries, err := logging.ListRounds(store.DB(), last)
	if err != nil {
		return rep, err
	}
	for _, e := range entries {
		rep.Rounds = append(rep.Rounds, roundRow{
			RoundID:   e.RoundID,
			Outcome:   e.Outcome,
			Guess:     e.GuessID,
			Actual:    e.ActualID,
			Questions: e.QuestionsAsked,
			Wrong:     e.WrongGuesses,
			CreatedAt: e.CreatedAt.Format("2006-01-02T15:04:05Z"),
		})
	}
	return rep, nil
}

// openings ranks flag and single-valued category questions by catalog-wide
// gain using grouped counts.
func openings(store *catalog.Store, top int) ([]opening, error) {
	n, err := store.Count()
	if err != nil {
		return nil, err
	}
	var out []opening
	for _, attr := range catalog.FlagAttributes {
		counts, err := store.GroupedCounts(attr, nil)
		if err != nil {
			return nil, err
		}
		out = append(out, opening{Question: question.Attribute(attr).Key(), Gain: entropy.DistributionGain(counts)})
	}
	categories := map[string]question.Category{
		catalog.AttrColor:      question.CategoryColor,
		catalog.AttrRegion:     question.CategoryRegion,
		catalog.AttrGeneration: question.CategoryGeneration,
	}
	for attr, cat := range categories {
		counts, err := store.GroupedCounts(attr, nil)
		if err != nil {
			return nil, err
		}
		for value, k := range counts {
			out = append(out, opening{Question: question.Categorical(cat, value).Key(), Gain: entropy.SplitGain(n, k)})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Gain != out[j].Gain {
			return out[i].Gain > out[j].Gain
		}
		return out[i].Question < out[j].Question
	})
	if top >= 0 && len(out) > top {
		out = out[:top]
	}
	return out, nil
}

// #endregion report

// #region output

func printReport(rep report) {
	p := rep.Popularity
	fmt.Printf("%d items | popularity min %.4f  avg %.4f  max %.4f\n\n", p.Total, p.Min, p.Avg, p.Max)

	fmt.Printf("%-6s  %-16s  %10s\n", "ID", "Name", "Popularity")
	fmt.Printf("%-6s+-%-16s+-%10s\n", "------", "----------------", "----------")
	for _, it := range p.Top {
		fmt.Printf("%-6d  %-16s  %10.4f\n", it.ID, it.Name, it.Popularity)
	}

	fmt.Printf("\n%d questions tracked\n", rep.Effectiveness.Tracked)
	fmt.Printf("%-28s  %8s  %6s\n", "Question", "Avg Red.", "Asked")
	fmt.Printf("%-28s+-%8s+-%6s\n", "----------------------------", "--------", "------")
	for _, r := range rep.Effectiveness.Top {
		fmt.Printf("%-28s  %8.2f  %6d\n", r.Key, r.AvgReduction, r.Count)
	}

	fmt.Printf("\n%-28s  %8s\n", "Opening question", "Gain")
	fmt.Printf("%-28s+-%8s\n", "----------------------------", "--------")
	for _, o := range rep.Openings {
		fmt.Printf("%-28s  %8.4f\n", o.Question, o.Gain)
	}

	fmt.Printf("\n%-12s  %-10s  %6s  %6s  %9s  %5s  %s\n", "Round", "Outcome", "Guess", "Actual", "Questions", "Wrong", "Time")
	fmt.Printf("%-12s+-%-10s+-%6s+-%6s+-%9s+-%5s+-%s\n", "------------", "----------", "------", "------", "---------", "-----", "--------------------")
	for _, r := range rep.Rounds {
		fmt.Printf("%-12s  %-10s  %6s  %6s  %9d  %5d  %s\n",
			shortID(r.RoundID), r.Outcome, idOrDash(r.Guess), idOrDash(r.Actual), r.Questions, r.Wrong, r.CreatedAt)
	}
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// #endregion output

// #region helpers

func shortID(id string) string {
	if len(id) > 12 {
		return id[:12]
	}
	return id
}

func idOrDash(id int) string {
	if id == 0 {
		return "-"
	}
	return strconv.Itoa(id)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// #endregion helpers

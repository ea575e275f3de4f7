package main

import (
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/oppscout/oppscout/internal/adapter"
	"github.com/oppscout/oppscout/internal/aggregate"
	"github.com/oppscout/oppscout/internal/config"
	"github.com/oppscout/oppscout/internal/contact"
	"github.com/oppscout/oppscout/internal/model"
	"github.com/oppscout/oppscout/internal/notifier"
	"github.com/oppscout/oppscout/internal/pipeline"
	"github.com/oppscout/oppscout/internal/ratelimit"
	"github.com/oppscout/oppscout/internal/retry"
	"github.com/oppscout/oppscout/internal/score"
	"github.com/oppscout/oppscout/internal/serpapi"
	"github.com/oppscout/oppscout/internal/store"
)

var (
	cfgPath string
	debug   bool
)

var rootCmd = &cobra.Command{
	Use:   "oppscout",
	Short: "Opportunity scout — discover, score, and track job postings",
	Long:  "OppScout fans search queries out across providers, scores new postings against your profile, and keeps a deduplicated record of everything seen.",
	// Default to `run` so that `oppscout` with no args does one discovery pass.
	RunE: runRun,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "path to config file (default: OPPSCOUT_CONFIG env var or ./config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
}

// loadConfig resolves the config path and parses it.
// Priority: explicit path arg > OPPSCOUT_CONFIG env var > "./config.yaml"
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		if env := os.Getenv("OPPSCOUT_CONFIG"); env != "" {
			path = env
		} else {
			path = "config.yaml"
		}
	}
	return config.Load(path)
}

func setupLogger(dbg bool) *slog.Logger {
	logLevel := slog.LevelInfo
	if dbg {
		logLevel = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
}

func setupNotifier(cfg *config.Config, httpClient *http.Client, logger *slog.Logger) model.Notifier {
	switch cfg.Notification.Type {
	case "slack":
		logger.Info("using slack notifier")
		return notifier.NewSlackNotifier(cfg.Notification.WebhookURL, httpClient, logger)
	default:
		return notifier.NewLogNotifier(logger)
	}
}

// buildAdapters assembles the source adapters: the Google Jobs engine plus
// one site-restricted adapter per configured board domain. Every adapter is
// wrapped with retries and paced through the shared provider limiter. The
// limit key is the provider, not the adapter: all of these are SerpAPI calls
// on one API key, so they share one bucket.
func buildAdapters(cfg *config.Config, client *serpapi.Client, limiter *ratelimit.ProviderLimiter, logger *slog.Logger) []model.SourceAdapter {
	raw := []model.SourceAdapter{adapter.NewGoogleJobsAdapter(client)}
	for _, site := range cfg.Search.Sites {
		raw = append(raw, adapter.NewSiteSearchAdapter(client, site))
	}

	var adapters []model.SourceAdapter
	for _, a := range raw {
		var wrapped model.SourceAdapter = ratelimit.NewAdapter(a, limiter, serpapi.Provider)
		wrapped = retry.New(wrapped, 2, 5*time.Second, logger)
		adapters = append(adapters, wrapped)
		logger.Info("registered source", "name", a.Name())
	}
	return adapters
}

// buildRunner wires one complete pipeline pass over the given store.
func buildRunner(cfg *config.Config, opStore model.OpportunityStore, logger *slog.Logger) *pipeline.Runner {
	httpClient := &http.Client{Timeout: 30 * time.Second}

	searchClient := serpapi.NewClient(cfg.Search.BaseURL, cfg.Search.APIKey, httpClient)
	limiter := ratelimit.NewProviderLimiter(cfg.Limits.MinDelay)
	logger.Info("rate limiter configured", "min_delay", cfg.Limits.MinDelay.String())
	adapters := buildAdapters(cfg, searchClient, limiter, logger)

	plan := aggregate.BuildPlan(
		adapters,
		cfg.Search.Queries,
		cfg.Search.PreferredLocations,
		cfg.Search.SecondaryLocations,
		cfg.Search.SecondaryQueryLimit,
	)
	agg := aggregate.New(plan, cfg.Limits.Concurrency, cfg.Limits.CallTimeout, logger)
	logger.Info("query plan built", "calls", len(plan), "sources", len(adapters))

	rules := score.NewRules(
		cfg.Scoring.LocationWeights,
		cfg.Scoring.LocationGroups,
		cfg.Scoring.TargetCompanies,
		cfg.Scoring.CompanyBonus,
	)
	judge := score.NewOpenAIJudge(cfg.AI.BaseURL, cfg.AI.APIKey, cfg.AI.Model, &http.Client{Timeout: cfg.AI.Timeout})
	scorer := score.New(rules, judge, cfg.Profile, logger)

	contacts := contact.NewFinder(searchClient, limiter, logger)
	gate := pipeline.NewGate(opStore, store.NewFallbackLog(cfg.Store.FallbackPath), logger)
	n := setupNotifier(cfg, httpClient, logger)

	return pipeline.NewRunner(
		agg,
		scorer,
		contacts,
		gate,
		n,
		cfg.Profile.RoleKeywords,
		cfg.Limits.MaxScored,
		logger,
	)
}

package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration for the oppscout pipeline.
type Config struct {
	Profile      ProfileConfig
	Scoring      ScoringConfig
	Search       SearchConfig
	AI           AIConfig
	Limits       LimitsConfig
	Store        StoreConfig
	Notification NotificationConfig
	Schedule     string // cron spec for the start daemon
}

// ProfileConfig describes the fixed candidate the pipeline scores against.
// Pure data; it is embedded into the judge prompt and drives contact lookup.
type ProfileConfig struct {
	TitleKeywords   []string `yaml:"title_keywords"`
	Industries      []string `yaml:"industries"`
	ExperienceLevel string   `yaml:"experience_level"`
	Background      string   `yaml:"background"`
	Avoid           []string `yaml:"avoid"`
	RoleKeywords    []string `yaml:"role_keywords"` // contact-finder keywords
}

// ScoringConfig holds the deterministic rule tables.
type ScoringConfig struct {
	LocationWeights map[string]int      `yaml:"location_weights"`
	LocationGroups  map[string][]string `yaml:"location_groups"` // canonical location -> synonyms
	TargetCompanies map[string][]string `yaml:"target_companies"` // category -> companies
	CompanyBonus    int                 `yaml:"company_bonus"`
}

// SearchConfig controls the query plan and the search provider credentials.
type SearchConfig struct {
	APIKey             string   `yaml:"api_key"` // expanded from env var by Load
	BaseURL            string   `yaml:"base_url"`
	Queries            []string `yaml:"queries"`
	PreferredLocations []string `yaml:"preferred_locations"`
	SecondaryLocations []string `yaml:"secondary_locations"`
	// SecondaryQueryLimit caps how many query variants run against each
	// secondary location (preferred locations get all of them).
	SecondaryQueryLimit int      `yaml:"secondary_query_limit"`
	Sites               []string `yaml:"sites"` // domains for site-restricted search
}

// AIConfig controls the judge endpoint.
type AIConfig struct {
	BaseURL string        // defaults to https://api.openai.com/v1
	Model   string        // e.g. "gpt-4o-mini"
	APIKey  string        // expanded from env var by Load
	Timeout time.Duration // per-request timeout
}

// LimitsConfig bounds the expensive parts of a run.
type LimitsConfig struct {
	MaxScored   int           // postings scored per run
	Concurrency int           // adapter fan-out workers
	CallTimeout time.Duration // per external call
	MinDelay    time.Duration // minimum gap between calls to the same provider
}

// StoreConfig locates the durable store and its degraded fallback.
type StoreConfig struct {
	Path         string `yaml:"path"`
	FallbackPath string `yaml:"fallback_path"`
}

// NotificationConfig controls which notifier is used and its settings.
type NotificationConfig struct {
	Type       string `yaml:"type"`        // "log" or "slack"
	WebhookURL string `yaml:"webhook_url"` // required if type is "slack"
}

const (
	defaultOpenAIBaseURL  = "https://api.openai.com/v1"
	defaultSerpAPIBaseURL = "https://serpapi.com"
)

// rawConfig is used for YAML unmarshaling (snake_case fields, durations as strings).
type rawConfig struct {
	Profile      ProfileConfig      `yaml:"profile"`
	Scoring      ScoringConfig      `yaml:"scoring"`
	Search       SearchConfig       `yaml:"search"`
	AI           rawAIConfig        `yaml:"ai"`
	Limits       rawLimitsConfig    `yaml:"limits"`
	Store        StoreConfig        `yaml:"store"`
	Notification NotificationConfig `yaml:"notification"`
	Schedule     string             `yaml:"schedule"`
}

type rawAIConfig struct {
	BaseURL string `yaml:"base_url"`
	Model   string `yaml:"model"`
	APIKey  string `yaml:"api_key"`
	Timeout string `yaml:"timeout"`
}

type rawLimitsConfig struct {
	MaxScored   int    `yaml:"max_scored"`
	Concurrency int    `yaml:"concurrency"`
	CallTimeout string `yaml:"call_timeout"`
	MinDelay    string `yaml:"min_delay"`
}

// Load reads and parses the YAML config file at path, validates it, and
// returns Config. Missing credentials are fatal here; a run never starts
// half-configured.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	// Expand environment variables so secrets stay out of the file.
	expanded := os.ExpandEnv(string(data))

	var raw rawConfig
	if err := yaml.Unmarshal([]byte(expanded), &raw); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	aiTimeout := 30 * time.Second
	if raw.AI.Timeout != "" {
		aiTimeout, err = time.ParseDuration(raw.AI.Timeout)
		if err != nil {
			return nil, fmt.Errorf("parse ai.timeout %q: %w", raw.AI.Timeout, err)
		}
	}

	callTimeout := 20 * time.Second
	if raw.Limits.CallTimeout != "" {
		callTimeout, err = time.ParseDuration(raw.Limits.CallTimeout)
		if err != nil {
			return nil, fmt.Errorf("parse limits.call_timeout %q: %w", raw.Limits.CallTimeout, err)
		}
	}

	minDelay := 1 * time.Second
	if raw.Limits.MinDelay != "" {
		minDelay, err = time.ParseDuration(raw.Limits.MinDelay)
		if err != nil {
			return nil, fmt.Errorf("parse limits.min_delay %q: %w", raw.Limits.MinDelay, err)
		}
	}

	cfg := &Config{
		Profile: raw.Profile,
		Scoring: raw.Scoring,
		Search:  raw.Search,
		AI: AIConfig{
			BaseURL: raw.AI.BaseURL,
			Model:   raw.AI.Model,
			APIKey:  raw.AI.APIKey,
			Timeout: aiTimeout,
		},
		Limits: LimitsConfig{
			MaxScored:   raw.Limits.MaxScored,
			Concurrency: raw.Limits.Concurrency,
			CallTimeout: callTimeout,
			MinDelay:    minDelay,
		},
		Store:        raw.Store,
		Notification: raw.Notification,
		Schedule:     raw.Schedule,
	}

	applyDefaults(cfg)

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Search.BaseURL == "" {
		cfg.Search.BaseURL = defaultSerpAPIBaseURL
	}
	if cfg.AI.BaseURL == "" {
		cfg.AI.BaseURL = defaultOpenAIBaseURL
	}
	if cfg.AI.Model == "" {
		cfg.AI.Model = "gpt-4o-mini"
	}
	if cfg.Scoring.CompanyBonus == 0 {
		cfg.Scoring.CompanyBonus = 10
	}
	if cfg.Search.SecondaryQueryLimit == 0 {
		cfg.Search.SecondaryQueryLimit = 2
	}
	if cfg.Limits.MaxScored == 0 {
		cfg.Limits.MaxScored = 15
	}
	if cfg.Limits.Concurrency == 0 {
		cfg.Limits.Concurrency = 4
	}
	if cfg.Store.Path == "" {
		cfg.Store.Path = "oppscout.db"
	}
	if cfg.Store.FallbackPath == "" {
		cfg.Store.FallbackPath = "opportunities_backup.jsonl"
	}
	if cfg.Schedule == "" {
		cfg.Schedule = "@daily"
	}
	if len(cfg.Profile.RoleKeywords) == 0 {
		cfg.Profile.RoleKeywords = cfg.Profile.TitleKeywords
	}
}

func validate(cfg *Config) error {
	if cfg.Search.APIKey == "" {
		return fmt.Errorf("search.api_key is required (set SERPAPI_KEY)")
	}
	if cfg.AI.APIKey == "" {
		return fmt.Errorf("ai.api_key is required (set OPENAI_API_KEY)")
	}
	if len(cfg.Search.Queries) == 0 {
		return fmt.Errorf("search.queries must list at least one query")
	}
	if len(cfg.Search.PreferredLocations) == 0 {
		return fmt.Errorf("search.preferred_locations must list at least one location")
	}
	if cfg.Notification.Type == "slack" && cfg.Notification.WebhookURL == "" {
		return fmt.Errorf("notification.webhook_url is required when notification.type is \"slack\"")
	}
	return nil
}

package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config combines the YAML pipeline configuration (sources, filters,
// schedule) with environment-driven infrastructure settings (NATS, Redis,
// ClickHouse, timeouts). Secrets always come from the environment.
type Config struct {
	Project       ProjectConfig      `yaml:"project"`
	GeorgiaFocus  GeorgiaFocusConfig `yaml:"georgia_focus"`
	Greenhouse    []GreenhouseBoard  `yaml:"greenhouse_boards"`
	Lever         []LeverBoard       `yaml:"lever_boards"`
	Ashby         []AshbyBoard       `yaml:"ashby_boards"`
	ScrapeSources []ScrapeSource     `yaml:"scrape_sources"`
	Monitors      []GitHubMonitor    `yaml:"github_monitors"`
	Filters       FiltersConfig      `yaml:"filters"`
	AI            AIConfig           `yaml:"ai"`
	Schedule      ScheduleConfig     `yaml:"schedule"`
	Industries    map[string]string  `yaml:"company_industries"`

	Infra InfraConfig `yaml:"-"`
}

type ProjectConfig struct {
	Name       string `yaml:"name"`
	Season     string `yaml:"season"`
	GitHubRepo string `yaml:"github_repo"`
	DataDir    string `yaml:"data_dir"`
}

type GeorgiaFocusConfig struct {
	PriorityLocations []string `yaml:"priority_locations"`
	HighlightGeorgia  bool     `yaml:"highlight_georgia"`
}

type GreenhouseBoard struct {
	Token       string `yaml:"token"`
	Company     string `yaml:"company"`
	IsFaangPlus bool   `yaml:"is_faang_plus"`
}

type LeverBoard struct {
	CompanySlug string `yaml:"company_slug"`
	Company     string `yaml:"company"`
	IsFaangPlus bool   `yaml:"is_faang_plus"`
}

type AshbyBoard struct {
	CompanySlug string `yaml:"company_slug"`
	Company     string `yaml:"company"`
	IsFaangPlus bool   `yaml:"is_faang_plus"`
}

type ScrapeSource struct {
	Company     string `yaml:"company"`
	URL         string `yaml:"url"`
	IsFaangPlus bool   `yaml:"is_faang_plus"`
}

type GitHubMonitor struct {
	Repo   string `yaml:"repo"`
	Branch string `yaml:"branch"`
	File   string `yaml:"file"`
}

type FiltersConfig struct {
	KeywordsInclude  []string `yaml:"keywords_include"`
	KeywordsExclude  []string `yaml:"keywords_exclude"`
	ExcludeCompanies []string `yaml:"exclude_companies"`
}

type AIConfig struct {
	Model            string `yaml:"model"`
	MaxTokens        int    `yaml:"max_tokens"`
	MaxCallsPerRun   int    `yaml:"max_calls_per_run"`
	EnrichmentPrompt string `yaml:"enrichment_prompt"`
}

type ScheduleConfig struct {
	UpdateIntervalHours    int `yaml:"update_interval_hours"`
	LinkCheckIntervalHours int `yaml:"link_check_interval_hours"`
	ArchiveAfterDays       int `yaml:"archive_after_days"`
}

// InfraConfig carries environment-driven settings for the optional
// infrastructure collaborators.
type InfraConfig struct {
	NATSURL         string
	NATSConnTimeout time.Duration
	NATSEnabled     bool

	ClickHouseDSN      string
	ClickHouseUsername string
	ClickHousePassword string
	ClickHouseDatabase string
	ClickHouseEnabled  bool

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisEnabled  bool
	CacheTTL      time.Duration

	HTTPTimeout   time.Duration
	OTLPCollector string
	GeminiAPIKey  string
	GitHubToken   string
}

// Load reads config.yaml, loads .env if present, and applies environment
// overrides. The YAML file is required; missing infra settings only
// disable the corresponding optional collaborator.
func Load(path string) (*Config, error) {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	applyDefaults(cfg)
	cfg.Infra = loadInfra()
	return cfg, nil
}

// LoadDefault loads config.yaml from the working directory or the path in
// INTERNBOARD_CONFIG.
func LoadDefault() (*Config, error) {
	return Load(getEnvString("INTERNBOARD_CONFIG", "config.yaml"))
}

func applyDefaults(cfg *Config) {
	if cfg.Project.Season == "" {
		cfg.Project.Season = "summer_2026"
	}
	if cfg.Project.DataDir == "" {
		cfg.Project.DataDir = "data"
	}
	if cfg.AI.Model == "" {
		cfg.AI.Model = "gemini-2.0-flash"
	}
	if cfg.AI.MaxTokens == 0 {
		cfg.AI.MaxTokens = 1024
	}
	if cfg.AI.MaxCallsPerRun == 0 {
		cfg.AI.MaxCallsPerRun = 200
	}
	if cfg.Schedule.UpdateIntervalHours == 0 {
		cfg.Schedule.UpdateIntervalHours = 6
	}
	if cfg.Schedule.LinkCheckIntervalHours == 0 {
		cfg.Schedule.LinkCheckIntervalHours = 24
	}
	if cfg.Schedule.ArchiveAfterDays == 0 {
		cfg.Schedule.ArchiveAfterDays = 7
	}
}

func loadInfra() InfraConfig {
	return InfraConfig{
		NATSURL:         getEnvString("NATS_URL", "nats://localhost:4222"),
		NATSConnTimeout: getEnvDuration("NATS_CONN_TIMEOUT", 10*time.Second),
		NATSEnabled:     getEnvBool("NATS_ENABLED", false),

		ClickHouseDSN:      getEnvString("CLICKHOUSE_DSN", "localhost:9000"),
		ClickHouseUsername: getEnvString("CLICKHOUSE_USERNAME", "default"),
		ClickHousePassword: getEnvString("CLICKHOUSE_PASSWORD", ""),
		ClickHouseDatabase: getEnvString("CLICKHOUSE_DATABASE", "internboard"),
		ClickHouseEnabled:  getEnvBool("CLICKHOUSE_ENABLED", false),

		RedisAddr:     getEnvString("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnvString("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),
		RedisEnabled:  getEnvBool("REDIS_ENABLED", false),
		CacheTTL:      getEnvDuration("CACHE_TTL", 30*24*time.Hour),

		HTTPTimeout:   getEnvDuration("HTTP_TIMEOUT", 15*time.Second),
		OTLPCollector: getEnvString("OTLP_COLLECTOR_URL", ""),
		GeminiAPIKey:  getEnvString("GEMINI_API_KEY", ""),
		GitHubToken:   getEnvString("GITHUB_TOKEN", ""),
	}
}

func getEnvString(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the propdex API configuration.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Database  DatabaseConfig  `yaml:"database"`
	Model     ModelConfig     `yaml:"model"`
	Scoring   ScoringConfig   `yaml:"scoring"`
	Recommend RecommendConfig `yaml:"recommend"`
	Insight   InsightConfig   `yaml:"insight"`
	Auth      AuthConfig      `yaml:"auth"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	Driver           string   `yaml:"driver"` // valkey, redis (default: valkey)
	Addrs            []string `yaml:"addrs"`
	Password         string   `yaml:"password"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// ModelConfig holds valuation model settings.
type ModelConfig struct {
	Version           string  `yaml:"version"` // active artifact version
	Mode              string  `yaml:"mode"`    // forest, heuristic (default: forest)
	Trees             int     `yaml:"trees"`
	MaxDepth          int     `yaml:"max_depth"`
	MinLeaf           int     `yaml:"min_leaf"`
	Seed              int64   `yaml:"seed"`
	Calibration       float64 `yaml:"calibration"`
	SyntheticSamples  int     `yaml:"synthetic_samples"`   // training population size when the catalog is thin
	MinCatalogSamples int     `yaml:"min_catalog_samples"` // catalog rows needed before training on real data
	ValuationTTLSec   int     `yaml:"valuation_ttl_sec"`   // persisted valuation lifetime
}

// ScoringConfig holds beneficiary scoring settings.
type ScoringConfig struct {
	Weights map[string]float64 `yaml:"weights"` // overrides per component, merged over defaults
}

// RecommendConfig holds recommendation ranking settings.
type RecommendConfig struct {
	KNNOversample        int     `yaml:"knn_oversample"`
	MinContentSimilarity float64 `yaml:"min_content_similarity"`
	ContentWeight        float64 `yaml:"content_weight"`
	CollabWeight         float64 `yaml:"collab_weight"`
}

// InsightConfig holds market-insight narrative generation settings.
type InsightConfig struct {
	Enabled    bool         `yaml:"enabled"`
	APIKey     string       `yaml:"api_key"`
	BaseURL    string       `yaml:"base_url"`
	Model      string       `yaml:"model"`
	MaxTokens  int          `yaml:"max_tokens"`
	TimeoutSec int          `yaml:"timeout_sec"`
	Budget     BudgetConfig `yaml:"budget"`
}

// BudgetConfig holds insight call budget settings.
type BudgetConfig struct {
	DailyCallLimit       int64   `yaml:"daily_call_limit"`        // 0 = unlimited
	MonthlyCallLimit     int64   `yaml:"monthly_call_limit"`      // 0 = unlimited
	CostPerMillionTokens float64 `yaml:"cost_per_million_tokens"` // dashboard estimate only
	Action               string  `yaml:"action"`                  // "reject" | "warn" (default)
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 30
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Database.Driver == "" {
		c.Database.Driver = "valkey"
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
	if c.Model.Version == "" {
		c.Model.Version = "2.0.0"
	}
	if c.Model.Mode == "" {
		c.Model.Mode = "forest"
	}
	if c.Model.Trees <= 0 {
		c.Model.Trees = 100
	}
	if c.Model.MaxDepth <= 0 {
		c.Model.MaxDepth = 10
	}
	if c.Model.MinLeaf <= 0 {
		c.Model.MinLeaf = 2
	}
	if c.Model.Seed == 0 {
		c.Model.Seed = 42
	}
	if c.Model.Calibration <= 0 {
		c.Model.Calibration = 1.0
	}
	if c.Model.SyntheticSamples <= 0 {
		c.Model.SyntheticSamples = 1000
	}
	if c.Model.MinCatalogSamples <= 0 {
		c.Model.MinCatalogSamples = 50
	}
	if c.Model.ValuationTTLSec <= 0 {
		c.Model.ValuationTTLSec = 86400
	}
	if c.Recommend.KNNOversample <= 0 {
		c.Recommend.KNNOversample = 3
	}
	if c.Recommend.MinContentSimilarity <= 0 {
		c.Recommend.MinContentSimilarity = 0.5
	}
	if c.Recommend.ContentWeight <= 0 {
		c.Recommend.ContentWeight = 0.7
	}
	if c.Recommend.CollabWeight <= 0 {
		c.Recommend.CollabWeight = 0.3
	}
	if c.Insight.Model == "" {
		c.Insight.Model = "gpt-4o-mini"
	}
	if c.Insight.MaxTokens <= 0 {
		c.Insight.MaxTokens = 400
	}
	if c.Insight.TimeoutSec <= 0 {
		c.Insight.TimeoutSec = 30
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if len(c.Database.Addrs) == 0 {
		return fmt.Errorf("database.addrs is required")
	}
	switch c.Model.Mode {
	case "forest", "heuristic":
		// ok
	default:
		return fmt.Errorf("model.mode must be \"forest\" or \"heuristic\", got %q", c.Model.Mode)
	}
	for name, w := range c.Scoring.Weights {
		if w <= 0 {
			return fmt.Errorf("scoring.weights.%s must be positive, got %v", name, w)
		}
	}
	if c.Insight.Enabled && c.Insight.APIKey == "" {
		return fmt.Errorf("insight.api_key is required when insight.enabled is true")
	}
	switch c.Insight.Budget.Action {
	case "", "warn", "reject":
		// ok
	default:
		return fmt.Errorf(
			"insight.budget.action must be \"warn\" or \"reject\", got %q",
			c.Insight.Budget.Action,
		)
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}

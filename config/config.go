// Package config loads the process-level configuration: the per-run budget
// ceiling, degradation policy, tier model mapping, pricing table, and
// transport settings. Configuration is resolved once at startup and treated
// as immutable afterwards, so concurrent runs share it without locking.
//
// Resolution order, later wins: built-in defaults, optional YAML file,
// environment variables (a .env file is loaded first via godotenv when
// present).
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/leofalp/opsgraph/core/cost"
)

// Config is the resolved process configuration.
type Config struct {
	// MaxBudgetPerRun is the hard cost ceiling per run in USD.
	MaxBudgetPerRun float64 `yaml:"max_budget_per_run"`

	// BudgetWarningFraction is the used-budget fraction at which the budget
	// governor starts degrading the quality tier.
	BudgetWarningFraction float64 `yaml:"budget_warning_fraction"`

	// GracefulDegrade enables the tier downgrade at the warning threshold.
	// When disabled the governor only ever passes or blocks.
	GracefulDegrade bool `yaml:"graceful_degrade"`

	// MockLLM selects the deterministic mock model provider instead of a
	// real one. Defaults to true so the copilot runs without API keys.
	MockLLM bool `yaml:"mock_llm"`

	// ListenAddr is the HTTP server bind address.
	ListenAddr string `yaml:"listen_addr"`

	// TierModels maps each quality tier (0..2) to a model identifier.
	TierModels map[int]string `yaml:"tier_models"`

	// ModelRates maps model identifiers to their USD-per-1K-token pricing.
	ModelRates map[string]cost.ModelCost `yaml:"model_rates"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		MaxBudgetPerRun:       0.50,
		BudgetWarningFraction: 0.80,
		GracefulDegrade:       true,
		MockLLM:               true,
		ListenAddr:            ":8080",
		TierModels: map[int]string{
			0: "gpt-4o-mini",
			1: "gpt-4o",
			2: "gpt-4o",
		},
		ModelRates: map[string]cost.ModelCost{
			"gpt-4o-mini": {InputCostPer1K: 0.00015, OutputCostPer1K: 0.0006},
			"gpt-4o":      {InputCostPer1K: 0.0025, OutputCostPer1K: 0.01},
		},
	}
}

// Load resolves the configuration. A non-empty path names a YAML file that
// overlays the defaults; environment variables overlay both. A missing .env
// file is not an error.
func Load(path string) (Config, error) {
	// Best-effort: absence of a .env file is the normal case in production.
	_ = godotenv.Load()

	config := Default()

	if path != "" {
		fileBytes, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("failed to read config file %q: %w", path, err)
		}
		if err := yaml.Unmarshal(fileBytes, &config); err != nil {
			return Config{}, fmt.Errorf("failed to parse config file %q: %w", path, err)
		}
	}

	applyEnv(&config)

	if err := config.Validate(); err != nil {
		return Config{}, err
	}

	return config, nil
}

// Validate checks the configuration invariants the engine depends on.
func (config Config) Validate() error {
	if config.MaxBudgetPerRun <= 0 {
		return fmt.Errorf("max_budget_per_run must be positive, got %v", config.MaxBudgetPerRun)
	}

	if config.BudgetWarningFraction <= 0 || config.BudgetWarningFraction > 1 {
		return fmt.Errorf("budget_warning_fraction must be in (0, 1], got %v", config.BudgetWarningFraction)
	}

	for tier := 0; tier <= 2; tier++ {
		if config.TierModels[tier] == "" {
			return fmt.Errorf("tier_models must map tier %d to a model", tier)
		}
	}

	return nil
}

// PricingTable builds the read-only pricing table shared by all runs.
func (config Config) PricingTable() *cost.Table {
	return cost.NewTable(config.TierModels, config.ModelRates)
}

// applyEnv overlays environment variables onto the configuration.
// Only variables that are set and parse cleanly take effect.
func applyEnv(config *Config) {
	if value, ok := lookupFloat("MAX_BUDGET_PER_RUN"); ok {
		config.MaxBudgetPerRun = value
	}

	if value, ok := lookupFloat("BUDGET_WARNING_PCT"); ok {
		config.BudgetWarningFraction = value
	}

	if value, ok := lookupBool("GRACEFUL_DEGRADE"); ok {
		config.GracefulDegrade = value
	}

	if value, ok := lookupBool("MOCK_LLM"); ok {
		config.MockLLM = value
	}

	if value := os.Getenv("LISTEN_ADDR"); value != "" {
		config.ListenAddr = value
	}

	for tier := 0; tier <= 2; tier++ {
		if value := os.Getenv(fmt.Sprintf("TIER%d_MODEL", tier)); value != "" {
			config.TierModels[tier] = value
		}
	}
}

func lookupFloat(name string) (float64, bool) {
	raw := os.Getenv(name)
	if raw == "" {
		return 0, false
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return value, true
}

func lookupBool(name string) (bool, bool) {
	raw := strings.ToLower(os.Getenv(name))
	if raw == "" {
		return false, false
	}
	return raw == "true" || raw == "1" || raw == "yes", true
}

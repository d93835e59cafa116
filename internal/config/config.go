// Package config loads and validates the sweep configuration file.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/naka-gawa/issue-sweeper/internal/domain"
)

// Defaults for optional configuration fields.
const (
	DefaultCloseAfterStaleDays = 7
	DefaultStaleLabel          = "stale"
	DefaultCloseMessage        = "This issue was closed because it has been stale with no activity."
	DefaultOperationsBudget    = 30
	DefaultWorkers             = 4
)

// Config is the fully validated run configuration: the staleness policy
// plus run-level knobs. Immutable after Load.
type Config struct {
	Policy  domain.Policy
	Budget  int
	Workers int
}

// Load reads the YAML configuration at path, applies defaults, and
// validates eagerly so malformed policies are rejected before any issue
// is evaluated or any network call is made.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	v.SetDefault("closeAfterStaleDays", DefaultCloseAfterStaleDays)
	v.SetDefault("staleLabel", DefaultStaleLabel)
	v.SetDefault("staleMessage", "")
	v.SetDefault("closeMessage", DefaultCloseMessage)
	v.SetDefault("removeLabelOnUpdate", true)
	v.SetDefault("operationsPerRunBudget", DefaultOperationsBudget)
	v.SetDefault("workers", DefaultWorkers)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	staleAfterDays := v.GetInt("staleAfterDays")
	if staleAfterDays <= 0 {
		return nil, fmt.Errorf("staleAfterDays must be a positive integer, got %d", staleAfterDays)
	}
	closeAfterStaleDays := v.GetInt("closeAfterStaleDays")
	if closeAfterStaleDays < 0 {
		return nil, fmt.Errorf("closeAfterStaleDays must not be negative, got %d", closeAfterStaleDays)
	}

	cfg := &Config{
		Policy: domain.Policy{
			StaleAfter:          time.Duration(staleAfterDays) * 24 * time.Hour,
			CloseAfterStale:     time.Duration(closeAfterStaleDays) * 24 * time.Hour,
			StaleLabel:          v.GetString("staleLabel"),
			StaleMessage:        v.GetString("staleMessage"),
			CloseMessage:        v.GetString("closeMessage"),
			ExemptLabels:        v.GetStringSlice("exemptLabels"),
			OnlyLabels:          v.GetStringSlice("onlyLabels"),
			RemoveLabelOnUpdate: v.GetBool("removeLabelOnUpdate"),
		},
		Budget:  v.GetInt("operationsPerRunBudget"),
		Workers: v.GetInt("workers"),
	}

	if err := cfg.Policy.Validate(); err != nil {
		return nil, err
	}
	if cfg.Budget <= 0 {
		return nil, fmt.Errorf("operationsPerRunBudget must be a positive integer, got %d", cfg.Budget)
	}
	if cfg.Workers <= 0 {
		return nil, fmt.Errorf("workers must be a positive integer, got %d", cfg.Workers)
	}
	return cfg, nil
}

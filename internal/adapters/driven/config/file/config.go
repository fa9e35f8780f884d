// Package file loads githarvest configuration from a TOML file.
//
// Every setting has a default; a config file only has to name what it
// changes. Pattern lists replace the defaults wholesale when present,
// so a file can both extend and shrink the built-in rules.
package file

import (
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"

	"githarvest/internal/classify"
	"githarvest/internal/core/domain"
	"githarvest/internal/github"
	"githarvest/internal/scrape"
)

// Config is the full githarvest configuration.
type Config struct {
	API      APIConfig         `toml:"api"`
	Retry    RetryConfig       `toml:"retry"`
	Harvest  HarvestConfig     `toml:"harvest"`
	Patterns classify.Patterns `toml:"patterns"`
}

// APIConfig covers the GitHub endpoint and HTTP behaviour.
type APIConfig struct {
	BaseURL        string `toml:"base_url"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Timeout returns the per-request HTTP timeout.
func (c APIConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// RetryConfig covers backoff and credential rotation.
type RetryConfig struct {
	BaseDelayMS       int     `toml:"base_delay_ms"`
	MaxAttempts       int     `toml:"max_attempts"`
	PoolRetries       int     `toml:"pool_retries"`
	ThrottlePerSecond float64 `toml:"throttle_per_second"`
}

// Policy converts the retry settings into an executor policy.
func (c RetryConfig) Policy() github.RetryPolicy {
	return github.RetryPolicy{
		BaseDelay:   time.Duration(c.BaseDelayMS) * time.Millisecond,
		MaxAttempts: c.MaxAttempts,
		PoolRetries: c.PoolRetries,
		Throttle:    c.ThrottlePerSecond,
	}
}

// HarvestConfig covers run shape and output.
type HarvestConfig struct {
	Workers       int    `toml:"workers"`
	PerPage       int    `toml:"per_page"`
	DependencyCap int    `toml:"dependency_cap"`
	DataDir       string `toml:"data_dir"`
}

// Default returns the configuration used when no file overrides it.
func Default() Config {
	return Config{
		API: APIConfig{
			BaseURL:        github.DefaultBaseURL,
			TimeoutSeconds: 30,
		},
		Retry: RetryConfig{
			BaseDelayMS:       int(github.DefaultBaseDelay / time.Millisecond),
			MaxAttempts:       github.DefaultMaxAttempts,
			PoolRetries:       github.DefaultPoolRetries,
			ThrottlePerSecond: github.ProactiveRate,
		},
		Harvest: HarvestConfig{
			Workers:       scrape.DefaultWorkers,
			PerPage:       github.DefaultPerPage,
			DependencyCap: scrape.DefaultDependencyCap,
		},
		Patterns: classify.DefaultPatterns(),
	}
}

// Load reads the configuration file at path over the defaults. An
// empty path yields the defaults unchanged; a named path must exist.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := toml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w: %v", path, domain.ErrInvalidInput, err)
	}
	return cfg, nil
}

package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// FileName is the workspace configuration file.
const FileName = "ledgerlink.yaml"

// Config represents the top-level ledgerlink.yaml configuration.
type Config struct {
	Matching MatchingConfig `yaml:"matching"`
	Git      GitConfig      `yaml:"git"`
}

// MatchingConfig tunes the transfer matching engine for one workspace.
type MatchingConfig struct {
	WindowDays       int        `yaml:"window_days"`
	AmountTolerance  float64    `yaml:"amount_tolerance"`
	FeeMaxAmount     float64    `yaml:"fee_max_amount"`
	TransferKeywords []string   `yaml:"transfer_keywords,omitempty"`
	FeeKeywords      []string   `yaml:"fee_keywords,omitempty"`
	SameSignPairs    [][]string `yaml:"same_sign_pairs,omitempty"` // each entry is [account_a, account_b]
}

// GitConfig controls git integration.
type GitConfig struct {
	AutoCommit  bool   `yaml:"auto_commit"`
	AuthorName  string `yaml:"author_name"`
	AuthorEmail string `yaml:"author_email"`
}

// Load reads a ledgerlink.yaml file from disk.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with sensible defaults for a new workspace.
func Default() *Config {
	return &Config{
		Matching: MatchingConfig{
			WindowDays:       3,
			AmountTolerance:  1e-6,
			FeeMaxAmount:     10.00,
			TransferKeywords: []string{"E-TRANSFER", "ETRANSFER", "ETRNSFR", "INTERAC", "TRANSFER", "TFR", "SEND MONEY"},
			FeeKeywords:      []string{"FEE", "SERVICE CHARGE"},
		},
		Git: GitConfig{
			AutoCommit:  true,
			AuthorName:  "Ledgerlink",
			AuthorEmail: "ledgerlink@localhost",
		},
	}
}

func (c *Config) validate() error {
	if c.Matching.WindowDays < 0 {
		return fmt.Errorf("matching.window_days must not be negative")
	}
	if c.Matching.AmountTolerance < 0 {
		return fmt.Errorf("matching.amount_tolerance must not be negative")
	}
	for i, pair := range c.Matching.SameSignPairs {
		if len(pair) != 2 || pair[0] == "" || pair[1] == "" || pair[0] == pair[1] {
			return fmt.Errorf("matching.same_sign_pairs[%d]: want two distinct account ids, got %v", i, pair)
		}
	}
	return nil
}

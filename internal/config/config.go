package config

import (
	"fmt"
	"path/filepath"
)

// Config represents the main mnemo configuration
type Config struct {
	// Data directory for tier files, archive and the vector index
	DataDir string `json:"data_dir" mapstructure:"data_dir"`

	// Oracle configuration (embedding + text compaction)
	Oracle OracleConfig `json:"oracle" mapstructure:"oracle"`

	// Retrieval configuration
	Retrieval RetrievalConfig `json:"retrieval" mapstructure:"retrieval"`

	// Memory tier configuration
	Tiers TiersConfig `json:"tiers" mapstructure:"tiers"`

	// Rollup configuration
	Rollup RollupConfig `json:"rollup" mapstructure:"rollup"`

	// Logging
	Logging LoggingConfig `json:"logging" mapstructure:"logging"`
}

// OracleConfig holds embedding and text-compaction oracle settings
type OracleConfig struct {
	// Provider for text compaction: openai or anthropic
	Provider        string  `json:"provider" mapstructure:"provider"`
	OpenAIAPIKey    string  `json:"openai_api_key" mapstructure:"openai_api_key"`
	AnthropicAPIKey string  `json:"anthropic_api_key" mapstructure:"anthropic_api_key"`
	CompactionModel string  `json:"compaction_model" mapstructure:"compaction_model"`
	EmbeddingModel  string  `json:"embedding_model" mapstructure:"embedding_model"`
	Temperature     float64 `json:"temperature" mapstructure:"temperature"`
	TimeoutSeconds  int     `json:"timeout_seconds" mapstructure:"timeout_seconds"`
}

// RetrievalConfig holds hybrid search settings
type RetrievalConfig struct {
	VectorWeight  float64 `json:"vector_weight" mapstructure:"vector_weight"`
	LexicalWeight float64 `json:"lexical_weight" mapstructure:"lexical_weight"`
	DefaultLimit  int     `json:"default_limit" mapstructure:"default_limit"`
}

// TiersConfig holds memory tier ceilings and retry policy
type TiersConfig struct {
	ProfileCeiling   int `json:"profile_ceiling" mapstructure:"profile_ceiling"`
	DigestCeiling    int `json:"digest_ceiling" mapstructure:"digest_ceiling"`
	DigestTargetLow  int `json:"digest_target_low" mapstructure:"digest_target_low"`
	DigestTargetHigh int `json:"digest_target_high" mapstructure:"digest_target_high"`
	HorizonDays      int `json:"horizon_days" mapstructure:"horizon_days"`
	MaxOracleCalls   int `json:"max_oracle_calls" mapstructure:"max_oracle_calls"`
}

// RollupConfig holds period rollup settings
type RollupConfig struct {
	Enabled  bool   `json:"enabled" mapstructure:"enabled"`
	CronExpr string `json:"cron_expr" mapstructure:"cron_expr"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level   string `json:"level" mapstructure:"level"`
	File    string `json:"file" mapstructure:"file"`
	Console bool   `json:"console" mapstructure:"console"`
	Pretty  bool   `json:"pretty" mapstructure:"pretty"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Oracle: OracleConfig{
			Provider:        "openai",
			CompactionModel: "gpt-4o-mini",
			EmbeddingModel:  "text-embedding-3-small",
			Temperature:     0.3,
			TimeoutSeconds:  60,
		},
		Retrieval: RetrievalConfig{
			VectorWeight:  0.7,
			LexicalWeight: 0.3,
			DefaultLimit:  5,
		},
		Tiers: TiersConfig{
			ProfileCeiling:   500,
			DigestCeiling:    8000,
			DigestTargetLow:  6000,
			DigestTargetHigh: 7000,
			HorizonDays:      14,
			MaxOracleCalls:   2,
		},
		Rollup: RollupConfig{
			Enabled:  true,
			CronExpr: "30 3 * * *",
		},
		Logging: LoggingConfig{
			Level:   "info",
			Console: true,
			Pretty:  true,
		},
	}
}

// Validate checks the configuration for invalid values
func (c *Config) Validate() error {
	switch c.Oracle.Provider {
	case "openai", "anthropic":
	default:
		return fmt.Errorf("unknown oracle provider: %s", c.Oracle.Provider)
	}

	if c.Retrieval.VectorWeight < 0 || c.Retrieval.VectorWeight > 1 {
		return fmt.Errorf("vector weight must be in [0,1], got %f", c.Retrieval.VectorWeight)
	}
	if c.Retrieval.LexicalWeight < 0 || c.Retrieval.LexicalWeight > 1 {
		return fmt.Errorf("lexical weight must be in [0,1], got %f", c.Retrieval.LexicalWeight)
	}
	if c.Retrieval.DefaultLimit <= 0 {
		return fmt.Errorf("default limit must be positive, got %d", c.Retrieval.DefaultLimit)
	}

	if c.Tiers.ProfileCeiling <= 0 {
		return fmt.Errorf("profile ceiling must be positive, got %d", c.Tiers.ProfileCeiling)
	}
	if c.Tiers.DigestCeiling <= 0 {
		return fmt.Errorf("digest ceiling must be positive, got %d", c.Tiers.DigestCeiling)
	}
	if c.Tiers.DigestTargetHigh > c.Tiers.DigestCeiling {
		return fmt.Errorf("digest target band exceeds ceiling")
	}
	if c.Tiers.HorizonDays <= 0 {
		return fmt.Errorf("horizon days must be positive, got %d", c.Tiers.HorizonDays)
	}
	if c.Tiers.MaxOracleCalls < 1 {
		return fmt.Errorf("max oracle calls must be at least 1, got %d", c.Tiers.MaxOracleCalls)
	}

	return nil
}

// VectorDBPath returns the path of the sqlite vector index
func (c *Config) VectorDBPath() string {
	return filepath.Join(c.DataDir, "memory.db")
}

// ArchiveDir returns the root directory of the summary archive
func (c *Config) ArchiveDir() string {
	return filepath.Join(c.DataDir, "summaries")
}

// TiersDir returns the directory holding profile and digest records
func (c *Config) TiersDir() string {
	return filepath.Join(c.DataDir, "tiers")
}

// Package config holds the application configuration, loaded from the
// config file, environment variables and CLI flags (in increasing priority).
package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/quocvuong92/lake-cli/internal/constants"
)

// Environment variable names
const (
	// Databricks settings
	EnvDatabricksHost  = "DATABRICKS_HOST"
	EnvDatabricksToken = "DATABRICKS_TOKEN"

	// Redshift settings
	EnvRedshiftWorkgroup = "REDSHIFT_WORKGROUP"
	EnvRedshiftDatabase  = "REDSHIFT_DATABASE"
	EnvRedshiftSecretARN = "REDSHIFT_SECRET_ARN"

	// Provider selection
	EnvLLMProvider  = "LAKE_LLM_PROVIDER"
	EnvDataProvider = "LAKE_DATA_PROVIDER"
	EnvModel        = "LAKE_MODEL"

	// Agent tuning
	EnvMaxAgentRounds = "LAKE_MAX_AGENT_ROUNDS"
)

// Errors
var (
	ErrInvalidLLMProvider  = errors.New("invalid LLM provider. Use 'anthropic', 'openai', or 'bedrock'")
	ErrInvalidDataProvider = errors.New("invalid data provider. Use 'databricks' or 'aws_redshift'")
)

// Config holds the application configuration
type Config struct {
	// LLM provider selection
	LLMProvider string // "anthropic", "openai", or "bedrock"
	Model       string

	// Data platform selection
	DataProvider string // "databricks" or "aws_redshift"

	// Databricks settings
	WorkspaceURL string
	Token        string

	// Redshift settings
	RedshiftWorkgroup string
	RedshiftDatabase  string
	RedshiftSecretARN string

	// Persisted selections (restored into the session at startup)
	ActiveCatalog   string
	ActiveSchema    string
	ActiveWarehouse string
	ActiveDatabase  string

	// Agent tuning
	MaxAgentRounds int
	LLMTimeout     time.Duration
	HandlerTimeout time.Duration

	// Flags
	Render      bool
	Interactive bool
}

// NewConfig creates a new Config with defaults
func NewConfig() *Config {
	return &Config{
		MaxAgentRounds: constants.DefaultMaxAgentRounds,
		LLMTimeout:     constants.DefaultLLMTimeout,
		HandlerTimeout: constants.DefaultHandlerTimeout,
	}
}

// Validate loads missing values from the config file and environment and
// checks the result. Flag values already set take precedence.
func (c *Config) Validate() error {
	// Config file has the lowest priority; load errors are ignored so a
	// corrupt file never blocks startup.
	if fileConfig, err := LoadConfigFile(); err == nil {
		c.ApplyFileConfig(fileConfig)
	}

	if c.LLMProvider == "" {
		c.LLMProvider = os.Getenv(EnvLLMProvider)
	}
	if c.LLMProvider == "" {
		c.LLMProvider = constants.DefaultLLMProvider
	}
	if c.LLMProvider != "anthropic" && c.LLMProvider != "openai" && c.LLMProvider != "bedrock" {
		return ErrInvalidLLMProvider
	}

	if c.DataProvider == "" {
		c.DataProvider = os.Getenv(EnvDataProvider)
	}
	if c.DataProvider == "" {
		c.DataProvider = constants.DefaultDataProvider
	}
	if c.DataProvider != constants.ProviderDatabricks && c.DataProvider != constants.ProviderRedshift {
		return ErrInvalidDataProvider
	}

	if c.Model == "" {
		c.Model = os.Getenv(EnvModel)
	}
	if c.Model == "" {
		if models := constants.DefaultModels[c.LLMProvider]; len(models) > 0 {
			c.Model = models[0]
		} else {
			c.Model = constants.DefaultModel
		}
	}

	if c.WorkspaceURL == "" {
		c.WorkspaceURL = strings.TrimSuffix(os.Getenv(EnvDatabricksHost), "/")
	}
	if c.Token == "" {
		c.Token = strings.TrimSpace(os.Getenv(EnvDatabricksToken))
	}

	if c.RedshiftWorkgroup == "" {
		c.RedshiftWorkgroup = os.Getenv(EnvRedshiftWorkgroup)
	}
	if c.RedshiftDatabase == "" {
		c.RedshiftDatabase = os.Getenv(EnvRedshiftDatabase)
	}
	if c.RedshiftSecretARN == "" {
		c.RedshiftSecretARN = os.Getenv(EnvRedshiftSecretARN)
	}

	if v := os.Getenv(EnvMaxAgentRounds); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.MaxAgentRounds = n
		}
	}
	if c.MaxAgentRounds <= 0 {
		c.MaxAgentRounds = constants.DefaultMaxAgentRounds
	}
	if c.LLMTimeout <= 0 {
		c.LLMTimeout = constants.DefaultLLMTimeout
	}
	if c.HandlerTimeout <= 0 {
		c.HandlerTimeout = constants.DefaultHandlerTimeout
	}

	return nil
}

// AvailableModels returns the models selectable for the active LLM provider.
func (c *Config) AvailableModels() []string {
	return constants.DefaultModels[c.LLMProvider]
}

// ValidateModel checks if the given model is in the available models.
func (c *Config) ValidateModel(model string) bool {
	models := c.AvailableModels()
	if len(models) == 0 {
		return true // No validation if models not configured
	}
	for _, m := range models {
		if m == model {
			return true
		}
	}
	return false
}

// AvailableModelsString returns a formatted string of available models.
func (c *Config) AvailableModelsString() string {
	models := c.AvailableModels()
	if len(models) == 0 {
		return "(not configured)"
	}
	return strings.Join(models, ", ")
}

package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ConfigFileName is the name of the config file
const ConfigFileName = "config.yaml"

// configPathOverride lets tests point the loader at a temp directory.
var configPathOverride string

// FileConfig represents the configuration file structure
type FileConfig struct {
	// LLM settings
	LLMProvider string `yaml:"llm_provider,omitempty"` // "anthropic", "openai", "bedrock"
	Model       string `yaml:"model,omitempty"`

	// Data platform settings
	DataProvider string            `yaml:"data_provider,omitempty"` // "databricks", "aws_redshift"
	Databricks   *DatabricksConfig `yaml:"databricks,omitempty"`
	Redshift     *RedshiftConfig   `yaml:"redshift,omitempty"`

	// Selections persisted across sessions
	Selections *SelectionsConfig `yaml:"selections,omitempty"`

	// Agent tuning
	Agent *AgentConfig `yaml:"agent,omitempty"`
}

// DatabricksConfig holds Databricks-specific configuration
type DatabricksConfig struct {
	WorkspaceURL string `yaml:"workspace_url,omitempty"`
	Token        string `yaml:"token,omitempty"`
}

// RedshiftConfig holds AWS Redshift-specific configuration
type RedshiftConfig struct {
	Workgroup string `yaml:"workgroup,omitempty"`
	Database  string `yaml:"database,omitempty"`
	SecretARN string `yaml:"secret_arn,omitempty"`
}

// SelectionsConfig holds the active selections persisted across sessions
type SelectionsConfig struct {
	Catalog   string `yaml:"catalog,omitempty"`
	Schema    string `yaml:"schema,omitempty"`
	Warehouse string `yaml:"warehouse,omitempty"`
	Database  string `yaml:"database,omitempty"`
}

// AgentConfig holds agent loop tuning
type AgentConfig struct {
	MaxRounds             int `yaml:"max_rounds,omitempty"`
	LLMTimeoutSeconds     int `yaml:"llm_timeout_seconds,omitempty"`
	HandlerTimeoutSeconds int `yaml:"handler_timeout_seconds,omitempty"`
}

// SetConfigPath overrides the config file location. It returns a restore
// function; intended for tests.
func SetConfigPath(path string) func() {
	prev := configPathOverride
	configPathOverride = path
	return func() { configPathOverride = prev }
}

// GetConfigPaths returns the paths to check for config files (in order of priority)
func GetConfigPaths() []string {
	if configPathOverride != "" {
		return []string{configPathOverride}
	}

	var paths []string

	// 1. Current directory
	paths = append(paths, filepath.Join(".", ".lake-cli", ConfigFileName))

	// 2. User config directory
	if configDir, err := os.UserConfigDir(); err == nil {
		paths = append(paths, filepath.Join(configDir, "lake-cli", ConfigFileName))
	}

	// 3. Home directory
	if homeDir, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(homeDir, ".config", "lake-cli", ConfigFileName))
	}

	return paths
}

// LoadConfigFile attempts to load configuration from a file
func LoadConfigFile() (*FileConfig, error) {
	for _, path := range GetConfigPaths() {
		if _, err := os.Stat(path); err == nil {
			return loadConfigFromPath(path)
		}
	}

	// No config file found, return empty config
	return &FileConfig{}, nil
}

// loadConfigFromPath loads config from a specific path
func loadConfigFromPath(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg FileConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	return &cfg, nil
}

// ApplyFileConfig applies file configuration to the main Config.
// File config has lower priority than environment variables and CLI flags.
func (c *Config) ApplyFileConfig(fc *FileConfig) {
	if fc == nil {
		return
	}

	if c.LLMProvider == "" && fc.LLMProvider != "" {
		c.LLMProvider = fc.LLMProvider
	}
	if c.Model == "" && fc.Model != "" {
		c.Model = fc.Model
	}
	if c.DataProvider == "" && fc.DataProvider != "" {
		c.DataProvider = fc.DataProvider
	}

	if fc.Databricks != nil {
		if c.WorkspaceURL == "" && fc.Databricks.WorkspaceURL != "" {
			c.WorkspaceURL = fc.Databricks.WorkspaceURL
		}
		if c.Token == "" && fc.Databricks.Token != "" {
			c.Token = fc.Databricks.Token
		}
	}

	if fc.Redshift != nil {
		if c.RedshiftWorkgroup == "" && fc.Redshift.Workgroup != "" {
			c.RedshiftWorkgroup = fc.Redshift.Workgroup
		}
		if c.RedshiftDatabase == "" && fc.Redshift.Database != "" {
			c.RedshiftDatabase = fc.Redshift.Database
		}
		if c.RedshiftSecretARN == "" && fc.Redshift.SecretARN != "" {
			c.RedshiftSecretARN = fc.Redshift.SecretARN
		}
	}

	if fc.Selections != nil {
		if c.ActiveCatalog == "" {
			c.ActiveCatalog = fc.Selections.Catalog
		}
		if c.ActiveSchema == "" {
			c.ActiveSchema = fc.Selections.Schema
		}
		if c.ActiveWarehouse == "" {
			c.ActiveWarehouse = fc.Selections.Warehouse
		}
		if c.ActiveDatabase == "" {
			c.ActiveDatabase = fc.Selections.Database
		}
	}

	if fc.Agent != nil {
		if c.MaxAgentRounds == 0 && fc.Agent.MaxRounds > 0 {
			c.MaxAgentRounds = fc.Agent.MaxRounds
		}
	}
}

// SaveSelections persists the active selections back to the config file so
// the next session starts where this one left off. The rest of the file is
// preserved.
func SaveSelections(sel SelectionsConfig) error {
	path := configWritePath()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	fc := &FileConfig{}
	if existing, err := LoadConfigFile(); err == nil {
		fc = existing
	}
	fc.Selections = &sel

	data, err := yaml.Marshal(fc)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// configWritePath returns where new config data should be written: an
// existing config file if any, otherwise the user config directory.
func configWritePath() string {
	paths := GetConfigPaths()
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	if configPathOverride != "" {
		return configPathOverride
	}
	if configDir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(configDir, "lake-cli", ConfigFileName)
	}
	return paths[0]
}

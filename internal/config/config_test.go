package config

import (
	"path/filepath"
	"testing"

	"github.com/quocvuong92/lake-cli/internal/constants"
)

// isolate points the config loader at an empty temp directory and clears
// the environment variables Validate reads, so host state never leaks in.
func isolate(t *testing.T) {
	t.Helper()
	restore := SetConfigPath(filepath.Join(t.TempDir(), ConfigFileName))
	t.Cleanup(restore)

	for _, env := range []string{
		EnvDatabricksHost, EnvDatabricksToken,
		EnvRedshiftWorkgroup, EnvRedshiftDatabase, EnvRedshiftSecretARN,
		EnvLLMProvider, EnvDataProvider, EnvModel, EnvMaxAgentRounds,
	} {
		t.Setenv(env, "")
	}
}

func TestValidateDefaults(t *testing.T) {
	isolate(t)

	cfg := NewConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}

	if cfg.LLMProvider != constants.DefaultLLMProvider {
		t.Errorf("LLMProvider = %q, want default %q", cfg.LLMProvider, constants.DefaultLLMProvider)
	}
	if cfg.DataProvider != constants.DefaultDataProvider {
		t.Errorf("DataProvider = %q, want default %q", cfg.DataProvider, constants.DefaultDataProvider)
	}
	if cfg.Model == "" {
		t.Error("Model should default for the provider")
	}
	if cfg.MaxAgentRounds != constants.DefaultMaxAgentRounds {
		t.Errorf("MaxAgentRounds = %d, want %d", cfg.MaxAgentRounds, constants.DefaultMaxAgentRounds)
	}
}

func TestValidateEnvironment(t *testing.T) {
	isolate(t)
	t.Setenv(EnvLLMProvider, "openai")
	t.Setenv(EnvDataProvider, constants.ProviderRedshift)
	t.Setenv(EnvDatabricksHost, "https://example.cloud.databricks.com/")
	t.Setenv(EnvDatabricksToken, " dapi123 ")
	t.Setenv(EnvRedshiftWorkgroup, "analytics")
	t.Setenv(EnvMaxAgentRounds, "5")

	cfg := NewConfig()
	cfg.MaxAgentRounds = 0
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}

	if cfg.LLMProvider != "openai" {
		t.Errorf("LLMProvider = %q, want openai", cfg.LLMProvider)
	}
	if cfg.DataProvider != constants.ProviderRedshift {
		t.Errorf("DataProvider = %q, want %q", cfg.DataProvider, constants.ProviderRedshift)
	}
	if cfg.WorkspaceURL != "https://example.cloud.databricks.com" {
		t.Errorf("WorkspaceURL = %q, trailing slash should be trimmed", cfg.WorkspaceURL)
	}
	if cfg.Token != "dapi123" {
		t.Errorf("Token = %q, whitespace should be trimmed", cfg.Token)
	}
	if cfg.RedshiftWorkgroup != "analytics" {
		t.Errorf("RedshiftWorkgroup = %q, want analytics", cfg.RedshiftWorkgroup)
	}
	if cfg.MaxAgentRounds != 5 {
		t.Errorf("MaxAgentRounds = %d, want 5", cfg.MaxAgentRounds)
	}
}

func TestValidateFlagBeatsEnvironment(t *testing.T) {
	isolate(t)
	t.Setenv(EnvLLMProvider, "openai")
	t.Setenv(EnvModel, "gpt-5")

	cfg := NewConfig()
	cfg.LLMProvider = "anthropic"
	cfg.Model = constants.DefaultModel
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}

	if cfg.LLMProvider != "anthropic" {
		t.Errorf("LLMProvider = %q, flag value must win", cfg.LLMProvider)
	}
	if cfg.Model != constants.DefaultModel {
		t.Errorf("Model = %q, flag value must win", cfg.Model)
	}
}

func TestValidateRejectsBadProviders(t *testing.T) {
	isolate(t)

	cfg := NewConfig()
	cfg.LLMProvider = "cohere"
	if err := cfg.Validate(); err != ErrInvalidLLMProvider {
		t.Errorf("Validate() error = %v, want ErrInvalidLLMProvider", err)
	}

	cfg = NewConfig()
	cfg.DataProvider = "bigquery"
	if err := cfg.Validate(); err != ErrInvalidDataProvider {
		t.Errorf("Validate() error = %v, want ErrInvalidDataProvider", err)
	}
}

func TestValidateModel(t *testing.T) {
	cfg := NewConfig()
	cfg.LLMProvider = "anthropic"

	if !cfg.ValidateModel(constants.DefaultModel) {
		t.Errorf("ValidateModel(%q) = false, want true", constants.DefaultModel)
	}
	if cfg.ValidateModel("made-up-model") {
		t.Error("ValidateModel should reject a model outside the list")
	}

	cfg.LLMProvider = "unconfigured"
	if !cfg.ValidateModel("anything") {
		t.Error("ValidateModel should accept anything when no list is configured")
	}
}

// Package constants provides shared constants used across the application
// to avoid circular dependencies between packages.
package constants

import "time"

// Timeout constants used across the application
const (
	// DefaultLLMTimeout is the timeout for a single LLM provider call
	DefaultLLMTimeout = 120 * time.Second
	// DefaultHandlerTimeout is the timeout for a single command handler invocation
	DefaultHandlerTimeout = 120 * time.Second
	// DefaultOAuthTimeout is the timeout for OAuth HTTP requests
	DefaultOAuthTimeout = 30 * time.Second
	// DefaultSQLPollInterval is how often a submitted SQL statement is polled
	DefaultSQLPollInterval = 2 * time.Second
)

// Application defaults
const (
	DefaultModel        = "claude-sonnet-4-5"
	DefaultLLMProvider  = "anthropic"
	DefaultDataProvider = "databricks"

	// DefaultMaxAgentRounds bounds tool-call rounds per user utterance so a
	// model that keeps calling tools cannot loop forever.
	DefaultMaxAgentRounds = 10

	// DefaultPageSize is the number of rows shown per page in full table views
	DefaultPageSize = 20
)

// Data provider identifiers
const (
	ProviderDatabricks = "databricks"
	ProviderRedshift   = "aws_redshift"
)

// DefaultModels are the models selectable with /select-model, per LLM provider.
var DefaultModels = map[string][]string{
	"anthropic": {
		"claude-sonnet-4-5",
		"claude-opus-4-5",
		"claude-haiku-4-5",
	},
	"openai": {
		"gpt-5-mini",
		"gpt-4.1",
		"gpt-5.1",
	},
	"bedrock": {
		"anthropic.claude-sonnet-4-5-v1:0",
		"anthropic.claude-haiku-4-5-v1:0",
	},
}

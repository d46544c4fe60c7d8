// Package llm provides a uniform client contract over the LLM backends the
// shell can talk to (Anthropic, OpenAI, Anthropic models on AWS Bedrock).
// All provider failures surface as a single *ProviderError so the agent
// loop does not need to distinguish transport from auth problems.
package llm

import (
	"context"
	"fmt"

	"github.com/quocvuong92/lake-cli/internal/config"
)

// ToolCall is a structured request from the model naming a command and its
// arguments. ID is the provider-supplied correlation token; it must be echoed
// back on the matching tool result message.
type ToolCall struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
}

// Message is one entry in the conversation history.
//
// Roles follow the OpenAI convention: "system", "user", "assistant" and
// "tool". Assistant messages may carry ToolCalls; tool messages carry the
// ToolCallID they answer.
type Message struct {
	Role       string     `json:"role"`
	Content    string     `json:"content,omitempty"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
}

// Tool describes a callable command to the model.
type Tool struct {
	Name        string
	Description string
	// InputSchema is a JSON-schema object: {"type":"object","properties":...,"required":...}
	InputSchema map[string]any
}

// Client is the provider boundary. Chat sends the full history plus the
// available tools and returns the assistant's next message, which contains
// either plain text, one or more tool calls, or both.
type Client interface {
	Chat(ctx context.Context, messages []Message, tools []Tool) (*Message, error)
}

// ProviderError wraps any failure from an LLM backend.
type ProviderError struct {
	Provider string
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s provider error: %v", e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// NewClient creates a client for the configured LLM provider.
func NewClient(cfg *config.Config) (Client, error) {
	switch cfg.LLMProvider {
	case "anthropic":
		return NewAnthropicClient(cfg.Model)
	case "openai":
		return NewOpenAIClient(cfg.Model)
	case "bedrock":
		return NewBedrockClient(context.Background(), cfg.Model)
	default:
		return nil, fmt.Errorf("unknown LLM provider %q (want anthropic, openai, or bedrock)", cfg.LLMProvider)
	}
}

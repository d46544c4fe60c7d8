package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// AnthropicClient talks to the Anthropic Messages API.
type AnthropicClient struct {
	client *anthropic.Client
	model  string
}

// NewAnthropicClient creates a new AnthropicClient.
// It requires the ANTHROPIC_API_KEY environment variable to be set.
func NewAnthropicClient(model string) (*AnthropicClient, error) {
	apiKey := os.Getenv("ANTHROPIC_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("ANTHROPIC_API_KEY environment variable not set")
	}

	client := anthropic.NewClient(
		option.WithAPIKey(apiKey),
	)

	return &AnthropicClient{client: &client, model: model}, nil
}

// Chat sends the conversation to the Anthropic API.
func (a *AnthropicClient) Chat(ctx context.Context, messages []Message, tools []Tool) (*Message, error) {
	anthropicMessages, systemPrompt := convertMessagesToAnthropic(messages)

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(a.model),
		MaxTokens: 4096,
		Messages:  anthropicMessages,
	}

	if systemPrompt != "" {
		params.System = []anthropic.TextBlockParam{
			{Text: systemPrompt},
		}
	}

	anthropicTools := convertToolsToAnthropic(tools)
	params.Tools = make([]anthropic.ToolUnionParam, len(anthropicTools))
	for i, toolParam := range anthropicTools {
		params.Tools[i] = anthropic.ToolUnionParam{OfTool: &toolParam}
	}

	resp, err := a.client.Messages.New(ctx, params)
	if err != nil {
		return nil, &ProviderError{Provider: "anthropic", Err: err}
	}

	return processAnthropicResponse(resp)
}

// convertMessagesToAnthropic converts our internal message format to Anthropic's.
// The last system message, if any, becomes the system prompt.
func convertMessagesToAnthropic(messages []Message) ([]anthropic.MessageParam, string) {
	var anthropicMessages []anthropic.MessageParam
	var systemPrompt string

	for _, msg := range messages {
		switch msg.Role {
		case "user":
			anthropicMessages = append(anthropicMessages, anthropic.NewUserMessage(
				anthropic.NewTextBlock(msg.Content),
			))
		case "assistant":
			var contentItems []anthropic.ContentBlockParamUnion
			if msg.Content != "" {
				contentItems = append(contentItems, anthropic.ContentBlockParamUnion{
					OfText: &anthropic.TextBlockParam{Text: msg.Content},
				})
			}
			for _, tc := range msg.ToolCalls {
				argsBytes, err := json.Marshal(tc.Arguments)
				if err != nil {
					continue
				}
				contentItems = append(contentItems, anthropic.ContentBlockParamUnion{
					OfToolUse: &anthropic.ToolUseBlockParam{
						Type:  "tool_use",
						ID:    tc.ID,
						Name:  tc.Name,
						Input: argsBytes,
					},
				})
			}
			if len(contentItems) == 0 {
				continue
			}
			anthropicMessages = append(anthropicMessages, anthropic.MessageParam{
				Role:    anthropic.MessageParamRoleAssistant,
				Content: contentItems,
			})
		case "tool":
			// Tool results go back as user-role tool_result blocks.
			anthropicMessages = append(anthropicMessages, anthropic.MessageParam{
				Role: anthropic.MessageParamRoleUser,
				Content: []anthropic.ContentBlockParamUnion{{
					OfToolResult: &anthropic.ToolResultBlockParam{
						ToolUseID: msg.ToolCallID,
						Content: []anthropic.ToolResultBlockParamContentUnion{{
							OfText: &anthropic.TextBlockParam{Text: msg.Content},
						}},
					},
				}},
			})
		case "system":
			systemPrompt = msg.Content
		}
	}

	return anthropicMessages, systemPrompt
}

// convertToolsToAnthropic converts our Tool descriptors to Anthropic's tool format.
func convertToolsToAnthropic(tools []Tool) []anthropic.ToolParam {
	var anthropicTools []anthropic.ToolParam
	for _, t := range tools {
		properties, _ := t.InputSchema["properties"]
		if properties == nil {
			properties = map[string]any{}
		}
		var required []string
		if req, ok := t.InputSchema["required"].([]string); ok {
			required = req
		}
		anthropicTools = append(anthropicTools, anthropic.ToolParam{
			Name:        t.Name,
			Description: anthropic.String(t.Description),
			InputSchema: anthropic.ToolInputSchemaParam{
				Properties: properties,
				Required:   required,
			},
		})
	}
	return anthropicTools
}

// processAnthropicResponse converts an Anthropic API response into our internal Message format.
func processAnthropicResponse(resp *anthropic.Message) (*Message, error) {
	if len(resp.Content) == 0 {
		return &Message{Role: "assistant"}, nil
	}

	var content string
	var toolCalls []ToolCall

	for _, block := range resp.Content {
		switch b := block.AsAny().(type) {
		case anthropic.TextBlock:
			content += b.Text
		case anthropic.ToolUseBlock:
			var args map[string]any
			if err := json.Unmarshal(b.Input, &args); err != nil {
				return nil, &ProviderError{Provider: "anthropic", Err: fmt.Errorf("bad tool call input for %s: %w", b.Name, err)}
			}
			toolCalls = append(toolCalls, ToolCall{
				ID:        b.ID,
				Name:      b.Name,
				Arguments: args,
			})
		}
	}

	return &Message{
		Role:      "assistant",
		Content:   content,
		ToolCalls: toolCalls,
	}, nil
}

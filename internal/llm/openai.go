package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
)

// OpenAIClient talks to the OpenAI Chat Completions API.
type OpenAIClient struct {
	client *openai.Client
	model  string
}

// NewOpenAIClient creates a new OpenAIClient. It requires the OPENAI_API_KEY
// environment variable to be set and honors OPENAI_BASE_URL for custom endpoints.
func NewOpenAIClient(model string) (*OpenAIClient, error) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY environment variable not set")
	}

	options := []option.RequestOption{
		option.WithAPIKey(apiKey),
	}
	if baseURL := os.Getenv("OPENAI_BASE_URL"); baseURL != "" {
		options = append(options, option.WithBaseURL(baseURL))
	}

	c := openai.NewClient(options...)
	return &OpenAIClient{client: &c, model: model}, nil
}

// Chat sends the conversation to OpenAI and converts the response into our
// internal Message format.
func (o *OpenAIClient) Chat(ctx context.Context, messages []Message, tools []Tool) (*Message, error) {
	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(o.model),
		Messages: convertMessagesToOpenAI(messages),
		Tools:    convertToolsToOpenAI(tools),
	}

	resp, err := o.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, &ProviderError{Provider: "openai", Err: err}
	}

	return processOpenAIResponse(resp)
}

// processOpenAIResponse converts an OpenAI API response into our internal Message format.
func processOpenAIResponse(resp *openai.ChatCompletion) (*Message, error) {
	if len(resp.Choices) == 0 {
		return &Message{Role: "assistant"}, nil
	}

	choice := resp.Choices[0].Message

	if len(choice.ToolCalls) > 0 {
		var toolCalls []ToolCall
		for _, tc := range choice.ToolCalls {
			var args map[string]any
			// Arguments arrive as a JSON string; we expect a flat argument map.
			if err := json.Unmarshal([]byte(tc.Function.Arguments), &args); err != nil {
				return nil, &ProviderError{Provider: "openai", Err: fmt.Errorf("bad tool call arguments for %s: %w", tc.Function.Name, err)}
			}
			toolCalls = append(toolCalls, ToolCall{
				ID:        tc.ID,
				Name:      tc.Function.Name,
				Arguments: args,
			})
		}
		return &Message{
			Role:      "assistant",
			Content:   choice.Content,
			ToolCalls: toolCalls,
		}, nil
	}

	return &Message{Role: "assistant", Content: choice.Content}, nil
}

// convertMessagesToOpenAI converts our internal message format to OpenAI's.
func convertMessagesToOpenAI(messages []Message) []openai.ChatCompletionMessageParamUnion {
	var chatMessages []openai.ChatCompletionMessageParamUnion
	for _, msg := range messages {
		switch msg.Role {
		case "system":
			chatMessages = append(chatMessages, openai.SystemMessage(msg.Content))
		case "assistant":
			assistantMessage := openai.ChatCompletionMessage{
				Role:    "assistant",
				Content: msg.Content,
			}
			if len(msg.ToolCalls) > 0 {
				var toolCalls []openai.ChatCompletionMessageToolCallUnion
				for _, tc := range msg.ToolCalls {
					argsBytes, err := json.Marshal(tc.Arguments)
					if err != nil {
						continue
					}
					toolCalls = append(toolCalls, openai.ChatCompletionMessageToolCallUnion{
						ID:   tc.ID,
						Type: "function",
						Function: openai.ChatCompletionMessageFunctionToolCallFunction{
							Name:      tc.Name,
							Arguments: string(argsBytes),
						},
					})
				}
				assistantMessage.ToolCalls = toolCalls
			}
			chatMessages = append(chatMessages, assistantMessage.ToParam())
		case "tool":
			chatMessages = append(chatMessages, openai.ToolMessage(msg.Content, msg.ToolCallID))
		case "user":
			fallthrough
		default:
			chatMessages = append(chatMessages, openai.UserMessage(msg.Content))
		}
	}
	return chatMessages
}

// convertToolsToOpenAI converts our Tool descriptors to the OpenAI tool format.
func convertToolsToOpenAI(tools []Tool) []openai.ChatCompletionToolUnionParam {
	if len(tools) == 0 {
		return nil
	}
	var openAITools []openai.ChatCompletionToolUnionParam
	for _, t := range tools {
		params := openai.FunctionParameters{
			"type":       "object",
			"properties": map[string]any{},
		}
		for k, v := range t.InputSchema {
			params[k] = v
		}

		openAITools = append(openAITools, openai.ChatCompletionFunctionTool(openai.FunctionDefinitionParam{
			Name:        t.Name,
			Description: openai.String(t.Description),
			Parameters:  params,
		}))
	}
	return openAITools
}

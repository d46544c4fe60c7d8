package llm

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
)

// BedrockClient runs Anthropic models through AWS Bedrock.
type BedrockClient struct {
	client  *bedrockruntime.Client
	modelID string
}

// NewBedrockClient creates a new BedrockClient.
// It requires AWS credentials to be configured in the environment.
func NewBedrockClient(ctx context.Context, modelID string) (*BedrockClient, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &BedrockClient{
		client:  bedrockruntime.NewFromConfig(cfg),
		modelID: modelID,
	}, nil
}

// Chat sends the conversation to the Anthropic model via AWS Bedrock.
func (b *BedrockClient) Chat(ctx context.Context, messages []Message, tools []Tool) (*Message, error) {
	body, err := buildBedrockRequest(messages, tools)
	if err != nil {
		return nil, &ProviderError{Provider: "bedrock", Err: err}
	}

	resp, err := b.client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(b.modelID),
		ContentType: aws.String("application/json"),
		Body:        body,
	})
	if err != nil {
		return nil, &ProviderError{Provider: "bedrock", Err: err}
	}

	return processBedrockResponse(resp.Body)
}

// buildBedrockRequest creates the request body for Anthropic models on Bedrock.
func buildBedrockRequest(messages []Message, tools []Tool) ([]byte, error) {
	var bedrockMessages []map[string]any
	var systemPrompt string

	for _, msg := range messages {
		switch msg.Role {
		case "system":
			systemPrompt = msg.Content
		case "user":
			bedrockMessages = append(bedrockMessages, map[string]any{
				"role": "user",
				"content": []map[string]any{
					{"type": "text", "text": msg.Content},
				},
			})
		case "assistant":
			var content []map[string]any
			if msg.Content != "" {
				content = append(content, map[string]any{"type": "text", "text": msg.Content})
			}
			for _, tc := range msg.ToolCalls {
				content = append(content, map[string]any{
					"type":  "tool_use",
					"id":    tc.ID,
					"name":  tc.Name,
					"input": tc.Arguments,
				})
			}
			if len(content) == 0 {
				continue
			}
			bedrockMessages = append(bedrockMessages, map[string]any{
				"role":    "assistant",
				"content": content,
			})
		case "tool":
			bedrockMessages = append(bedrockMessages, map[string]any{
				"role": "user",
				"content": []map[string]any{
					{
						"type":        "tool_result",
						"tool_use_id": msg.ToolCallID,
						"content":     msg.Content,
					},
				},
			})
		}
	}

	request := map[string]any{
		"anthropic_version": "bedrock-2023-05-31",
		"max_tokens":        4096,
		"messages":          bedrockMessages,
	}
	if systemPrompt != "" {
		request["system"] = systemPrompt
	}

	if len(tools) > 0 {
		var bedrockTools []map[string]any
		for _, t := range tools {
			schema := t.InputSchema
			if schema == nil {
				schema = map[string]any{"type": "object", "properties": map[string]any{}}
			}
			bedrockTools = append(bedrockTools, map[string]any{
				"name":         t.Name,
				"description":  t.Description,
				"input_schema": schema,
			})
		}
		request["tools"] = bedrockTools
	}

	return json.Marshal(request)
}

// processBedrockResponse converts a Bedrock API response into our internal Message format.
func processBedrockResponse(body []byte) (*Message, error) {
	var response struct {
		Content []struct {
			Type  string          `json:"type"`
			Text  string          `json:"text"`
			ID    string          `json:"id"`
			Name  string          `json:"name"`
			Input json.RawMessage `json:"input"`
		} `json:"content"`
		Error any `json:"error"`
	}
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, &ProviderError{Provider: "bedrock", Err: fmt.Errorf("bad response body: %w", err)}
	}
	if response.Error != nil {
		return nil, &ProviderError{Provider: "bedrock", Err: fmt.Errorf("API error: %v", response.Error)}
	}

	var content string
	var toolCalls []ToolCall

	for i, block := range response.Content {
		switch block.Type {
		case "text":
			content += block.Text
		case "tool_use":
			var args map[string]any
			if len(block.Input) > 0 {
				if err := json.Unmarshal(block.Input, &args); err != nil {
					return nil, &ProviderError{Provider: "bedrock", Err: fmt.Errorf("bad tool call input for %s: %w", block.Name, err)}
				}
			}
			id := block.ID
			if id == "" {
				id = fmt.Sprintf("call_%d_%s", i, block.Name)
			}
			toolCalls = append(toolCalls, ToolCall{
				ID:        id,
				Name:      block.Name,
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

package openai

import (
	"context"
	"fmt"
	"time"

	"outbound-caller/internal/agent"
	"outbound-caller/internal/observability"

	"github.com/openai/openai-go"
	openaiOption "github.com/openai/openai-go/option"
)

// ChatClient is the OpenAI chat completions backend for agent conversations.
type ChatClient struct {
	client openai.Client
	model  string
	logger *observability.Logger
}

// NewChatClient creates a chat client for model.
func NewChatClient(apiKey, model string, logger *observability.Logger, opts ...openaiOption.RequestOption) (*ChatClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}
	options := append([]openaiOption.RequestOption{openaiOption.WithAPIKey(apiKey)}, opts...)
	return &ChatClient{
		client: openai.NewClient(options...),
		model:  model,
		logger: logger,
	}, nil
}

// Complete implements agent.LLM.
func (c *ChatClient) Complete(ctx context.Context, req agent.CompletionRequest) (agent.Completion, error) {
	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(c.model),
		Messages: toMessageParams(req),
	}
	if len(req.Tools) > 0 {
		params.Tools = toToolParams(req.Tools)
	}

	start := time.Now()
	completion, err := c.client.Chat.Completions.New(ctx, params)
	observability.LLMLatency.WithLabelValues("openai", c.model).Observe(time.Since(start).Seconds())
	if err != nil {
		c.logger.Error(ctx, "OpenAI chat completion failed", err)
		return agent.Completion{}, fmt.Errorf("openai chat completion failed: %w", err)
	}
	if len(completion.Choices) == 0 {
		return agent.Completion{}, fmt.Errorf("openai chat completion returned no choices")
	}

	msg := completion.Choices[0].Message
	out := agent.Completion{
		Text:        msg.Content,
		TotalTokens: completion.Usage.TotalTokens,
	}
	for _, tc := range msg.ToolCalls {
		out.ToolCalls = append(out.ToolCalls, agent.ToolCall{
			ID:        tc.ID,
			Name:      tc.Function.Name,
			Arguments: tc.Function.Arguments,
		})
	}
	return out, nil
}

func toMessageParams(req agent.CompletionRequest) []openai.ChatCompletionMessageParamUnion {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(req.Messages)+1)
	if req.Instructions != "" {
		messages = append(messages, openai.SystemMessage(req.Instructions))
	}

	for _, m := range req.Messages {
		switch m.Role {
		case agent.RoleUser:
			messages = append(messages, openai.UserMessage(m.Content))
		case agent.RoleTool:
			messages = append(messages, openai.ToolMessage(m.Content, m.ToolCallID))
		case agent.RoleAssistant:
			if len(m.ToolCalls) == 0 {
				messages = append(messages, openai.AssistantMessage(m.Content))
				continue
			}
			assistant := openai.ChatCompletionAssistantMessageParam{}
			if m.Content != "" {
				assistant.Content = openai.ChatCompletionAssistantMessageParamContentUnion{
					OfString: openai.String(m.Content),
				}
			}
			for _, tc := range m.ToolCalls {
				assistant.ToolCalls = append(assistant.ToolCalls, openai.ChatCompletionMessageToolCallParam{
					ID: tc.ID,
					Function: openai.ChatCompletionMessageToolCallFunctionParam{
						Name:      tc.Name,
						Arguments: tc.Arguments,
					},
				})
			}
			messages = append(messages, openai.ChatCompletionMessageParamUnion{OfAssistant: &assistant})
		}
	}
	return messages
}

func toToolParams(tools []agent.Tool) []openai.ChatCompletionToolParam {
	params := make([]openai.ChatCompletionToolParam, 0, len(tools))
	for _, t := range tools {
		properties := make(map[string]any, len(t.Params))
		required := make([]string, 0, len(t.Params))
		for _, p := range t.Params {
			properties[p.Name] = map[string]any{
				"type":        "string",
				"description": p.Description,
			}
			required = append(required, p.Name)
		}

		params = append(params, openai.ChatCompletionToolParam{
			Function: openai.FunctionDefinitionParam{
				Name:        t.Name,
				Description: openai.String(t.Description),
				Parameters: openai.FunctionParameters{
					"type":       "object",
					"properties": properties,
					"required":   required,
				},
			},
		})
	}
	return params
}

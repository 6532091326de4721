package googleai

import (
	"context"
	"fmt"
	"time"

	"outbound-caller/internal/agent"
	"outbound-caller/internal/observability"

	"github.com/google/generative-ai-go/genai"
	"github.com/google/uuid"
	"google.golang.org/api/option"
)

const (
	roleUser  = "user"
	roleModel = "model" // Gemini SDK expects "model"
)

// GeminiClient is the Gemini backend for agent conversations.
type GeminiClient struct {
	client *genai.Client
	model  string
	logger *observability.Logger
}

// NewGeminiClient creates a Gemini client for model.
func NewGeminiClient(ctx context.Context, apiKey, model string, logger *observability.Logger, opts ...option.ClientOption) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("Google AI API key is required")
	}
	c, err := genai.NewClient(ctx, append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Google AI client: %w", err)
	}
	return &GeminiClient{
		client: c,
		model:  model,
		logger: logger,
	}, nil
}

// Close releases the underlying connection.
func (g *GeminiClient) Close() error {
	return g.client.Close()
}

// Complete implements agent.LLM.
func (g *GeminiClient) Complete(ctx context.Context, req agent.CompletionRequest) (agent.Completion, error) {
	contents := toContents(req.Messages)
	if len(contents) == 0 || contents[len(contents)-1].Role != roleUser {
		return agent.Completion{}, fmt.Errorf("gemini completion needs a trailing user turn")
	}

	model := g.client.GenerativeModel(g.model)
	if req.Instructions != "" {
		model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(req.Instructions)}}
	}
	if len(req.Tools) > 0 {
		model.Tools = []*genai.Tool{{FunctionDeclarations: toFunctionDeclarations(req.Tools)}}
	}

	chat := model.StartChat()
	chat.History = contents[:len(contents)-1]
	prompt := contents[len(contents)-1].Parts

	start := time.Now()
	resp, err := chat.SendMessage(ctx, prompt...)
	observability.LLMLatency.WithLabelValues("gemini", g.model).Observe(time.Since(start).Seconds())
	if err != nil {
		g.logger.Error(ctx, "Gemini chat failed", err)
		return agent.Completion{}, fmt.Errorf("gemini chat failed: %w", err)
	}
	return fromResponse(resp)
}

func fromResponse(resp *genai.GenerateContentResponse) (agent.Completion, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return agent.Completion{}, fmt.Errorf("gemini chat returned no candidates")
	}

	var out agent.Completion
	if resp.UsageMetadata != nil {
		out.TotalTokens = int64(resp.UsageMetadata.TotalTokenCount)
	}
	for _, part := range resp.Candidates[0].Content.Parts {
		switch p := part.(type) {
		case genai.Text:
			out.Text += string(p)
		case genai.FunctionCall:
			args, err := encodeArgs(p.Args)
			if err != nil {
				return agent.Completion{}, err
			}
			// Gemini does not id its calls; results are matched back by name.
			out.ToolCalls = append(out.ToolCalls, agent.ToolCall{
				ID:        "call_" + uuid.NewString(),
				Name:      p.Name,
				Arguments: args,
			})
		}
	}
	return out, nil
}

// toContents maps history onto Gemini turns, merging adjacent messages that
// land on the same role.
func toContents(messages []agent.Message) []*genai.Content {
	var contents []*genai.Content
	add := func(role string, parts ...genai.Part) {
		if len(parts) == 0 {
			return
		}
		if n := len(contents); n > 0 && contents[n-1].Role == role {
			contents[n-1].Parts = append(contents[n-1].Parts, parts...)
			return
		}
		contents = append(contents, &genai.Content{Role: role, Parts: parts})
	}

	for _, m := range messages {
		switch m.Role {
		case agent.RoleUser:
			add(roleUser, genai.Text(m.Content))
		case agent.RoleTool:
			add(roleUser, genai.FunctionResponse{
				Name:     m.ToolName,
				Response: map[string]any{"output": m.Content},
			})
		case agent.RoleAssistant:
			var parts []genai.Part
			if m.Content != "" {
				parts = append(parts, genai.Text(m.Content))
			}
			for _, tc := range m.ToolCalls {
				parts = append(parts, genai.FunctionCall{Name: tc.Name, Args: decodeArgs(tc.Arguments)})
			}
			add(roleModel, parts...)
		}
	}
	return contents
}

func toFunctionDeclarations(tools []agent.Tool) []*genai.FunctionDeclaration {
	decls := make([]*genai.FunctionDeclaration, 0, len(tools))
	for _, t := range tools {
		decl := &genai.FunctionDeclaration{
			Name:        t.Name,
			Description: t.Description,
		}
		if len(t.Params) > 0 {
			schema := &genai.Schema{
				Type:       genai.TypeObject,
				Properties: make(map[string]*genai.Schema, len(t.Params)),
			}
			for _, p := range t.Params {
				schema.Properties[p.Name] = &genai.Schema{Type: genai.TypeString, Description: p.Description}
				schema.Required = append(schema.Required, p.Name)
			}
			decl.Parameters = schema
		}
		decls = append(decls, decl)
	}
	return decls
}

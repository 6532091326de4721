package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"outbound-caller/internal/observability"
)

// ErrToolRoundsExceeded is returned when the model keeps calling tools without answering.
var ErrToolRoundsExceeded = errors.New("tool rounds exceeded")

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// Message is one entry of the conversation history.
type Message struct {
	Role       Role
	Content    string
	ToolCalls  []ToolCall // assistant only
	ToolCallID string     // tool only
	ToolName   string     // tool only
}

// CompletionRequest is what a provider needs to produce the next assistant message.
type CompletionRequest struct {
	Instructions string
	Messages     []Message
	Tools        []Tool
}

// Completion is a provider's answer: text, tool calls, or both.
type Completion struct {
	Text        string
	ToolCalls   []ToolCall
	TotalTokens int64
}

// LLM is a chat model with function calling.
type LLM interface {
	Complete(ctx context.Context, req CompletionRequest) (Completion, error)
}

const defaultMaxToolRounds = 5

// Conversation drives the model for one call: it owns the history and runs tools
// the model asks for before handing the spoken reply back.
type Conversation struct {
	llm           LLM
	persona       Persona
	registry      *Registry
	logger        *observability.Logger
	maxToolRounds int

	mu       sync.Mutex
	history  []Message
	deferred []Message
	inTools  bool
	ctl      Controller
}

// NewConversation creates a conversation for persona backed by llm.
func NewConversation(llm LLM, persona Persona, logger *observability.Logger) *Conversation {
	return &Conversation{
		llm:           llm,
		persona:       persona,
		registry:      persona.Registry(logger),
		logger:        logger,
		maxToolRounds: defaultMaxToolRounds,
	}
}

// Persona returns the persona the conversation was created with.
func (c *Conversation) Persona() Persona {
	return c.persona
}

// Bind sets the controller tools act on. Must be called before the first turn.
func (c *Conversation) Bind(ctl Controller) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ctl = ctl
}

// History returns a copy of the conversation so far.
func (c *Conversation) History() []Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Message, len(c.history))
	copy(out, c.history)
	return out
}

// Respond records what the user said and returns the agent's reply.
func (c *Conversation) Respond(ctx context.Context, userText string) (string, error) {
	userText = strings.TrimSpace(userText)
	if userText == "" {
		return "", nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.history = append(c.history, Message{Role: RoleUser, Content: userText})
	return c.run(ctx)
}

// GenerateReply produces a reply steered by extra instructions, without a user turn.
// It may be called from inside a tool; the reply is then recorded after the tool results.
func (c *Conversation) GenerateReply(ctx context.Context, instructions string) (string, error) {
	c.mu.Lock()
	snapshot := make([]Message, 0, len(c.history)+1)
	snapshot = append(snapshot, c.history...)
	if c.inTools && len(snapshot) > 0 {
		// drop the assistant message whose tool calls are still running
		snapshot = snapshot[:len(snapshot)-1]
	}
	c.mu.Unlock()

	steer := c.persona.Instructions
	if instructions != "" {
		steer = steer + "\n\n" + instructions
	}
	snapshot = append(snapshot, Message{Role: RoleUser, Content: "[The agent speaks next.]"})

	completion, err := c.llm.Complete(ctx, CompletionRequest{
		Instructions: steer,
		Messages:     snapshot,
	})
	if err != nil {
		return "", fmt.Errorf("failed to generate reply: %w", err)
	}
	c.countTokens(completion)

	reply := Message{Role: RoleAssistant, Content: completion.Text}
	c.mu.Lock()
	if c.inTools {
		c.deferred = append(c.deferred, reply)
	} else {
		c.history = append(c.history, reply)
	}
	c.mu.Unlock()
	return completion.Text, nil
}

// run loops the model until it answers with text. Caller holds c.mu.
func (c *Conversation) run(ctx context.Context) (string, error) {
	for round := 0; round <= c.maxToolRounds; round++ {
		completion, err := c.llm.Complete(ctx, CompletionRequest{
			Instructions: c.persona.Instructions,
			Messages:     c.history,
			Tools:        c.registry.Tools(),
		})
		if err != nil {
			return "", fmt.Errorf("failed to complete turn: %w", err)
		}
		c.countTokens(completion)

		c.history = append(c.history, Message{
			Role:      RoleAssistant,
			Content:   completion.Text,
			ToolCalls: completion.ToolCalls,
		})
		if len(completion.ToolCalls) == 0 {
			return completion.Text, nil
		}

		// Tools may re-enter the conversation through the controller (e.g. Say),
		// so they run without the lock held.
		ctl := c.ctl
		c.inTools = true
		c.mu.Unlock()
		results := make([]ToolResult, 0, len(completion.ToolCalls))
		for _, call := range completion.ToolCalls {
			results = append(results, c.registry.Execute(ctx, ctl, call))
		}
		c.mu.Lock()
		c.inTools = false

		for _, r := range results {
			c.history = append(c.history, Message{
				Role:       RoleTool,
				Content:    r.Output,
				ToolCallID: r.CallID,
				ToolName:   r.Name,
			})
		}
		// A tool already spoke for the agent, so the turn is over.
		spoke := len(c.deferred) > 0
		c.history = append(c.history, c.deferred...)
		c.deferred = nil
		if spoke {
			return "", nil
		}

		if ctx.Err() != nil {
			return "", ctx.Err()
		}
	}
	return "", ErrToolRoundsExceeded
}

func (c *Conversation) countTokens(completion Completion) {
	if completion.TotalTokens > 0 {
		observability.LLMTokensTotal.WithLabelValues(c.persona.Key).Add(float64(completion.TotalTokens))
	}
}

package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"outbound-caller/internal/observability"
)

var (
	ErrUnknownTool      = errors.New("unknown tool")
	ErrMissingArgument  = errors.New("missing required argument")
	ErrInvalidArguments = errors.New("invalid tool arguments")
)

// Controller is the call-level surface tools act on.
type Controller interface {
	// Hangup ends the call for every participant. Failures are logged, not returned.
	Hangup(ctx context.Context)

	// Say makes the agent speak a reply steered by instructions.
	Say(ctx context.Context, instructions string) error
}

// Param is a string argument annotated with a description for the model.
type Param struct {
	Name        string
	Description string
}

// Args holds the decoded arguments of a single tool call.
type Args map[string]string

// Handler runs a tool. The returned string is handed back to the model.
type Handler func(ctx context.Context, ctl Controller, args Args) (string, error)

// Tool is a function the model may invoke mid-conversation.
type Tool struct {
	Name        string
	Description string
	Params      []Param
	Handler     Handler
}

// ToolCall is a model's request to invoke a tool.
type ToolCall struct {
	ID        string
	Name      string
	Arguments string // JSON object
}

// ToolResult is the output of a tool execution.
type ToolResult struct {
	CallID  string
	Name    string
	Output  string
	IsError bool
}

// ParseArgs decodes a JSON argument object and checks every declared param is present.
func (t Tool) ParseArgs(raw string) (Args, error) {
	args := Args{}
	if strings.TrimSpace(raw) != "" {
		var decoded map[string]any
		if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
			return nil, fmt.Errorf("%s: %w: %v", t.Name, ErrInvalidArguments, err)
		}
		for k, v := range decoded {
			switch val := v.(type) {
			case string:
				args[k] = val
			case nil:
			default:
				args[k] = fmt.Sprint(val)
			}
		}
	}

	for _, p := range t.Params {
		if strings.TrimSpace(args[p.Name]) == "" {
			return nil, fmt.Errorf("%s: %w: %s", t.Name, ErrMissingArgument, p.Name)
		}
	}
	return args, nil
}

// Registry routes tool calls to their handlers.
type Registry struct {
	mu     sync.RWMutex
	tools  []Tool
	byName map[string]Tool
	logger *observability.Logger
}

// NewRegistry creates a registry holding tools in the given order.
func NewRegistry(logger *observability.Logger, tools ...Tool) *Registry {
	r := &Registry{
		byName: make(map[string]Tool, len(tools)),
		logger: logger,
	}
	for _, t := range tools {
		r.Register(t)
	}
	return r
}

// Register adds or replaces a tool.
func (r *Registry) Register(t Tool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byName[t.Name]; !exists {
		r.tools = append(r.tools, t)
	} else {
		for i := range r.tools {
			if r.tools[i].Name == t.Name {
				r.tools[i] = t
			}
		}
	}
	r.byName[t.Name] = t
}

// Tools returns the registered tools in registration order.
func (r *Registry) Tools() []Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Tool, len(r.tools))
	copy(out, r.tools)
	return out
}

// Lookup returns the tool registered under name.
func (r *Registry) Lookup(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.byName[name]
	return t, ok
}

// Execute runs a tool call. Errors become an IsError result so the model can recover.
func (r *Registry) Execute(ctx context.Context, ctl Controller, call ToolCall) ToolResult {
	ctx = observability.WithFields(ctx,
		observability.Field{Key: "tool", Value: call.Name},
		observability.Field{Key: "tool_call_id", Value: call.ID},
	)
	result := ToolResult{CallID: call.ID, Name: call.Name}

	tool, ok := r.Lookup(call.Name)
	if !ok {
		err := fmt.Errorf("%w: %s", ErrUnknownTool, call.Name)
		r.logger.Error(ctx, "Model requested an unknown tool", err)
		observability.ToolInvocationsTotal.WithLabelValues(call.Name, "unknown").Inc()
		result.Output = err.Error()
		result.IsError = true
		return result
	}

	args, err := tool.ParseArgs(call.Arguments)
	if err != nil {
		r.logger.Error(ctx, "Failed to parse tool arguments", err)
		observability.ToolInvocationsTotal.WithLabelValues(call.Name, "invalid").Inc()
		result.Output = err.Error()
		result.IsError = true
		return result
	}

	start := time.Now()
	out, err := tool.Handler(ctx, ctl, args)
	if err != nil {
		r.logger.Error(ctx, "Tool execution failed", err)
		observability.ToolInvocationsTotal.WithLabelValues(call.Name, "error").Inc()
		result.Output = err.Error()
		result.IsError = true
		return result
	}

	r.logger.Debug(ctx, fmt.Sprintf("Tool %s completed in %s", call.Name, time.Since(start)))
	observability.ToolInvocationsTotal.WithLabelValues(call.Name, "ok").Inc()
	result.Output = out
	return result
}

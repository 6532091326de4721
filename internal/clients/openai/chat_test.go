package openai

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"outbound-caller/internal/agent"
	"outbound-caller/internal/observability"

	openaiOption "github.com/openai/openai-go/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const toolCallCompletion = `{
  "id": "chatcmpl-1",
  "object": "chat.completion",
  "created": 1700000000,
  "model": "gpt-4o-mini",
  "choices": [{
    "index": 0,
    "finish_reason": "tool_calls",
    "message": {
      "role": "assistant",
      "content": null,
      "tool_calls": [{
        "id": "call_1",
        "type": "function",
        "function": {"name": "confirm_appointment", "arguments": "{\"date\":\"Friday\",\"time\":\"2pm\"}"}
      }]
    }
  }],
  "usage": {"prompt_tokens": 10, "completion_tokens": 5, "total_tokens": 15}
}`

func TestChatClient_Complete(t *testing.T) {
	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		raw, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(raw, &body))
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, toolCallCompletion)
	}))
	defer srv.Close()

	client, err := NewChatClient("test-key", "gpt-4o-mini", observability.NewLoggerFromZap(zap.NewNop()),
		openaiOption.WithBaseURL(srv.URL+"/"), openaiOption.WithMaxRetries(0))
	require.NoError(t, err)

	out, err := client.Complete(context.Background(), agent.CompletionRequest{
		Instructions: "be brief",
		Messages:     []agent.Message{{Role: agent.RoleUser, Content: "Friday at 2 works"}},
		Tools: []agent.Tool{{
			Name:        "confirm_appointment",
			Description: "Confirms",
			Params:      []agent.Param{{Name: "date"}, {Name: "time"}},
		}},
	})
	require.NoError(t, err)

	assert.Equal(t, int64(15), out.TotalTokens)
	require.Len(t, out.ToolCalls, 1)
	assert.Equal(t, agent.ToolCall{ID: "call_1", Name: "confirm_appointment", Arguments: `{"date":"Friday","time":"2pm"}`}, out.ToolCalls[0])

	assert.Equal(t, "gpt-4o-mini", body["model"])
	messages, ok := body["messages"].([]any)
	require.True(t, ok)
	require.Len(t, messages, 2)
	assert.Equal(t, "system", messages[0].(map[string]any)["role"])
	tools, ok := body["tools"].([]any)
	require.True(t, ok)
	require.Len(t, tools, 1)
}

func TestChatClient_RequiresAPIKey(t *testing.T) {
	_, err := NewChatClient("", "gpt-4o-mini", observability.NewLoggerFromZap(zap.NewNop()))
	assert.Error(t, err)
}

func TestToMessageParams_ToolRoundTrip(t *testing.T) {
	params := toMessageParams(agent.CompletionRequest{
		Messages: []agent.Message{
			{Role: agent.RoleUser, Content: "bye"},
			{Role: agent.RoleAssistant, ToolCalls: []agent.ToolCall{{ID: "call_9", Name: "end_call", Arguments: "{}"}}},
			{Role: agent.RoleTool, Content: "Call ended successfully", ToolCallID: "call_9", ToolName: "end_call"},
		},
	})
	require.Len(t, params, 3)

	b, err := json.Marshal(params)
	require.NoError(t, err)
	var decoded []map[string]any
	require.NoError(t, json.Unmarshal(b, &decoded))

	assert.Equal(t, "user", decoded[0]["role"])
	assert.Equal(t, "assistant", decoded[1]["role"])
	calls := decoded[1]["tool_calls"].([]any)
	require.Len(t, calls, 1)
	assert.Equal(t, "call_9", calls[0].(map[string]any)["id"])
	assert.Equal(t, "tool", decoded[2]["role"])
	assert.Equal(t, "call_9", decoded[2]["tool_call_id"])
}

func TestToToolParams_AllParamsRequired(t *testing.T) {
	params := toToolParams([]agent.Tool{{
		Name:   "schedule_next_steps",
		Params: []agent.Param{{Name: "contact_method"}, {Name: "availability"}},
	}})
	require.Len(t, params, 1)
	assert.Equal(t, "schedule_next_steps", params[0].Function.Name)
	assert.Equal(t, []string{"contact_method", "availability"}, params[0].Function.Parameters["required"])
}

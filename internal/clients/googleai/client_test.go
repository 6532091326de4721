package googleai

import (
	"testing"

	"outbound-caller/internal/agent"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToContents(t *testing.T) {
	t.Parallel()

	messages := []agent.Message{
		{Role: agent.RoleUser, Content: "hello"},
		{Role: agent.RoleAssistant, Content: "one sec", ToolCalls: []agent.ToolCall{
			{ID: "call_1", Name: "look_up_availability", Arguments: `{"date":"tomorrow"}`},
			{ID: "call_2", Name: "provide_platform_overview", Arguments: `{}`},
		}},
		{Role: agent.RoleTool, Content: `{"available_times":["1pm"]}`, ToolCallID: "call_1", ToolName: "look_up_availability"},
		{Role: agent.RoleTool, Content: "overview", ToolCallID: "call_2", ToolName: "provide_platform_overview"},
		{Role: agent.RoleUser, Content: "1pm works"},
	}

	contents := toContents(messages)
	require.Len(t, contents, 3)

	assert.Equal(t, roleUser, contents[0].Role)
	assert.Equal(t, []genai.Part{genai.Text("hello")}, contents[0].Parts)

	assert.Equal(t, roleModel, contents[1].Role)
	require.Len(t, contents[1].Parts, 3)
	assert.Equal(t, genai.Text("one sec"), contents[1].Parts[0])
	call, ok := contents[1].Parts[1].(genai.FunctionCall)
	require.True(t, ok)
	assert.Equal(t, "look_up_availability", call.Name)
	assert.Equal(t, map[string]any{"date": "tomorrow"}, call.Args)

	// tool results and the next user turn share one user content
	assert.Equal(t, roleUser, contents[2].Role)
	require.Len(t, contents[2].Parts, 3)
	resp, ok := contents[2].Parts[0].(genai.FunctionResponse)
	require.True(t, ok)
	assert.Equal(t, "look_up_availability", resp.Name)
	assert.Equal(t, `{"available_times":["1pm"]}`, resp.Response["output"])
	assert.Equal(t, genai.Text("1pm works"), contents[2].Parts[2])
}

func TestToFunctionDeclarations(t *testing.T) {
	t.Parallel()

	decls := toFunctionDeclarations([]agent.Tool{
		{Name: "end_call", Description: "Ends the call"},
		{Name: "confirm_appointment", Description: "Confirms", Params: []agent.Param{
			{Name: "date", Description: "The date"},
			{Name: "time", Description: "The time"},
		}},
	})
	require.Len(t, decls, 2)

	assert.Equal(t, "end_call", decls[0].Name)
	assert.Nil(t, decls[0].Parameters)

	schema := decls[1].Parameters
	require.NotNil(t, schema)
	assert.Equal(t, genai.TypeObject, schema.Type)
	assert.Equal(t, []string{"date", "time"}, schema.Required)
	assert.Equal(t, genai.TypeString, schema.Properties["time"].Type)
	assert.Equal(t, "The time", schema.Properties["time"].Description)
}

func TestFromResponse(t *testing.T) {
	t.Parallel()

	t.Run("text and function call", func(t *testing.T) {
		t.Parallel()
		resp := &genai.GenerateContentResponse{
			Candidates: []*genai.Candidate{{
				Content: &genai.Content{Role: roleModel, Parts: []genai.Part{
					genai.Text("Let me check. "),
					genai.FunctionCall{Name: "look_up_availability", Args: map[string]any{"date": "Friday"}},
				}},
			}},
			UsageMetadata: &genai.UsageMetadata{TotalTokenCount: 42},
		}

		out, err := fromResponse(resp)
		require.NoError(t, err)
		assert.Equal(t, "Let me check. ", out.Text)
		assert.Equal(t, int64(42), out.TotalTokens)
		require.Len(t, out.ToolCalls, 1)
		assert.Equal(t, "look_up_availability", out.ToolCalls[0].Name)
		assert.JSONEq(t, `{"date":"Friday"}`, out.ToolCalls[0].Arguments)
		assert.NotEmpty(t, out.ToolCalls[0].ID)
	})

	t.Run("no candidates", func(t *testing.T) {
		t.Parallel()
		_, err := fromResponse(&genai.GenerateContentResponse{})
		assert.Error(t, err)
	})

	t.Run("call without args", func(t *testing.T) {
		t.Parallel()
		resp := &genai.GenerateContentResponse{
			Candidates: []*genai.Candidate{{
				Content: &genai.Content{Parts: []genai.Part{genai.FunctionCall{Name: "end_call"}}},
			}},
		}
		out, err := fromResponse(resp)
		require.NoError(t, err)
		require.Len(t, out.ToolCalls, 1)
		assert.Equal(t, "{}", out.ToolCalls[0].Arguments)
	})
}

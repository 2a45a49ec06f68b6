package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tiro-ai/voice-tutor/pkg/core/types"
)

func TestCompleteTextResponse(t *testing.T) {
	var gotReq map[string]any
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/chat/completions", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"Bonjour!"}}]}`))
	}))
	defer srv.Close()

	provider := NewOpenAIProvider("sk-test", WithBaseURL(srv.URL))
	resp, err := provider.Complete(context.Background(), &Request{
		Model: "gpt-4o-mini",
		Messages: []Message{
			{Role: types.RoleSystem, Text: "be brief"},
			{Role: types.RoleUser, Text: "greet me in French"},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "Bonjour!", resp.Text)
	assert.Empty(t, resp.ToolCalls)
	assert.Equal(t, "Bearer sk-test", gotAuth)
	assert.Equal(t, "gpt-4o-mini", gotReq["model"])

	messages, ok := gotReq["messages"].([]any)
	require.True(t, ok)
	require.Len(t, messages, 2)
	first := messages[0].(map[string]any)
	assert.Equal(t, "system", first["role"])
	assert.Equal(t, "be brief", first["content"])
}

func TestCompleteToolCallResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[{"message":{
			"content":"",
			"tool_calls":[{"id":"call_1","type":"function","function":{"name":"get_next_due_item","arguments":"{}"}}]
		}}]}`))
	}))
	defer srv.Close()

	provider := NewOpenAIProvider("sk-test", WithBaseURL(srv.URL))
	resp, err := provider.Complete(context.Background(), &Request{
		Model:    "m",
		Messages: []Message{{Role: types.RoleUser, Text: "quiz me"}},
		Tools: []types.Tool{{
			Name:        "get_next_due_item",
			InputSchema: &types.JSONSchema{Type: "object"},
		}},
	})
	require.NoError(t, err)

	require.Len(t, resp.ToolCalls, 1)
	assert.Equal(t, "call_1", resp.ToolCalls[0].ID)
	assert.Equal(t, "get_next_due_item", resp.ToolCalls[0].Name)
	assert.JSONEq(t, `{}`, string(resp.ToolCalls[0].Input))
}

func TestCompleteSendsToolDefinitionsAndResults(t *testing.T) {
	var gotReq struct {
		Messages []map[string]any `json:"messages"`
		Tools    []struct {
			Type     string `json:"type"`
			Function struct {
				Name string `json:"name"`
			} `json:"function"`
		} `json:"tools"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"ok"}}]}`))
	}))
	defer srv.Close()

	provider := NewOpenAIProvider("sk-test", WithBaseURL(srv.URL))
	_, err := provider.Complete(context.Background(), &Request{
		Model: "m",
		Messages: []Message{
			{Role: types.RoleUser, Text: "go"},
			{Role: types.RoleAssistant, ToolCalls: []ToolCall{{ID: "c1", Name: "lookup", Input: json.RawMessage(`{}`)}}},
			{Role: types.RoleUser, Text: "result text", ToolCallID: "c1"},
		},
		Tools: []types.Tool{{Name: "lookup"}},
	})
	require.NoError(t, err)

	require.Len(t, gotReq.Tools, 1)
	assert.Equal(t, "function", gotReq.Tools[0].Type)
	assert.Equal(t, "lookup", gotReq.Tools[0].Function.Name)

	require.Len(t, gotReq.Messages, 3)
	// Tool results go on the wire with the tool role.
	assert.Equal(t, "tool", gotReq.Messages[2]["role"])
	assert.Equal(t, "c1", gotReq.Messages[2]["tool_call_id"])
}

func TestCompleteErrorParsing(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{
			name: "structured error",
			body: `{"error":{"message":"invalid api key","type":"auth_error"}}`,
			want: "invalid api key",
		},
		{
			name: "opaque error",
			body: "upstream exploded",
			want: "upstream exploded",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			provider := NewOpenAIProvider("bad-key", WithBaseURL(srv.URL))
			_, err := provider.Complete(context.Background(), &Request{Model: "m"})
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
			assert.Contains(t, err.Error(), "401")
		})
	}
}

func TestCompleteNoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	provider := NewOpenAIProvider("sk-test", WithBaseURL(srv.URL))
	_, err := provider.Complete(context.Background(), &Request{Model: "m"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no choices")
}

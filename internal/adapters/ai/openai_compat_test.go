package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockpulse/pkg/errors"
)

func TestConvertToOpenAI(t *testing.T) {
	req := ChatRequest{
		Model: "gpt-4o-mini",
		Messages: []Message{
			{Role: RoleSystem, Content: "You analyze stocks."},
			{Role: RoleUser, Content: "Analyze AAPL"},
			{Role: RoleAssistant, ToolCalls: []ToolCall{{
				ID:       "call_1",
				Type:     "function",
				Function: FunctionCall{Name: "fetch_quote", Arguments: `{"symbol":"AAPL"}`},
			}}},
			{Role: RoleTool, Content: `{"price":230.1}`, ToolCallID: "call_1", Name: "fetch_quote"},
		},
		Tools: []ToolDefinition{{
			Type: "function",
			Function: FunctionDefinition{
				Name:        "fetch_quote",
				Description: "Fetch a quote.",
				Parameters:  map[string]interface{}{"type": "object"},
			},
		}},
		Temperature: 0.2,
	}

	wire := convertToOpenAI(req)

	assert.Equal(t, "gpt-4o-mini", wire.Model)
	assert.Equal(t, 4096, wire.MaxTokens, "zero max tokens gets the default")
	require.Len(t, wire.Messages, 4)
	assert.Equal(t, "system", wire.Messages[0].Role)
	assert.Equal(t, "call_1", wire.Messages[3].ToolCallID)
	require.Len(t, wire.Messages[2].ToolCalls, 1)
	assert.Equal(t, "fetch_quote", wire.Messages[2].ToolCalls[0].Function.Name)
	require.Len(t, wire.Tools, 1)
	assert.Equal(t, "function", wire.Tools[0].Type)
}

func TestConvertFromOpenAI_FinishReasons(t *testing.T) {
	for wireReason, want := range map[string]FinishReason{
		"stop":       FinishReasonStop,
		"length":     FinishReasonLength,
		"tool_calls": FinishReasonToolCalls,
	} {
		resp := convertFromOpenAI(&openAIResponse{
			Choices: []openAIChoice{{FinishReason: wireReason}},
		})
		require.Len(t, resp.Choices, 1)
		assert.Equal(t, want, resp.Choices[0].FinishReason, "wire reason %q", wireReason)
	}
}

func TestDoChatRequest(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var wire openAIRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&wire))
		assert.Equal(t, "gpt-4o-mini", wire.Model)

		_, _ = w.Write([]byte(`{
			"id": "chatcmpl-123",
			"model": "gpt-4o-mini",
			"choices": [{
				"index": 0,
				"message": {"role": "assistant", "content": "AAPL looks solid."},
				"finish_reason": "stop"
			}],
			"usage": {"prompt_tokens": 12, "completion_tokens": 6, "total_tokens": 18}
		}`))
	}))
	defer server.Close()

	resp, err := doChatRequest(context.Background(), server.URL, "test-key", 5*time.Second, ProviderNameOpenAI, ChatRequest{
		Model:    "gpt-4o-mini",
		Messages: []Message{{Role: RoleUser, Content: "Analyze AAPL"}},
	})
	require.NoError(t, err)

	assert.Equal(t, "chatcmpl-123", resp.ID)
	require.Len(t, resp.Choices, 1)
	assert.Equal(t, "AAPL looks solid.", resp.Choices[0].Message.Content)
	assert.Equal(t, 18, resp.Usage.TotalTokens)
}

func TestDoChatRequest_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error": {"message": "Invalid API key", "type": "invalid_request_error", "code": "invalid_api_key"}}`))
	}))
	defer server.Close()

	_, err := doChatRequest(context.Background(), server.URL, "bad-key", 5*time.Second, ProviderNameOpenAI, ChatRequest{
		Model:    "gpt-4o-mini",
		Messages: []Message{{Role: RoleUser, Content: "hello"}},
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrExternal))
	assert.Contains(t, err.Error(), "Invalid API key")
}

func TestNormalizeProviderName(t *testing.T) {
	assert.Equal(t, "openai", NormalizeProviderName("  OpenAI "))
	assert.Equal(t, "deepseek", NormalizeProviderName("DEEPSEEK"))
}

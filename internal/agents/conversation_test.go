package agents

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockpulse/internal/adapters/ai"
)

func TestConversation_Basic(t *testing.T) {
	conv := NewConversation(Task{Ticker: "AAPL"})

	assert.Equal(t, "AAPL", conv.Ticker())
	assert.Nil(t, conv.Last())
	assert.Empty(t, conv.Messages())

	conv.AddUserMessage("Analyze AAPL")
	require.Len(t, conv.Messages(), 1)
	assert.Equal(t, "user", conv.Last().Role)
	assert.Equal(t, "Analyze AAPL", conv.Last().Content)
}

func TestConversation_HasSpoken(t *testing.T) {
	conv := NewConversation(Task{Ticker: "MSFT"})

	assert.False(t, conv.HasSpoken("stock_analyst"))

	conv.AddUserMessage("go")
	assert.False(t, conv.HasSpoken("stock_analyst"), "user messages do not count")

	conv.AddAgentMessage("stock_analyst", "done", nil)
	assert.True(t, conv.HasSpoken("stock_analyst"))
	assert.False(t, conv.HasSpoken("news_analyst"))
}

func TestConversation_AddToolResult(t *testing.T) {
	conv := NewConversation(Task{Ticker: "MSFT"})

	err := conv.AddToolResult("stock_analyst", "call_1", "fetch_quote", map[string]interface{}{
		"price": 420.69,
	})
	require.NoError(t, err)

	last := conv.Last()
	assert.Equal(t, "tool", last.Role)
	assert.Equal(t, "call_1", last.ToolCallID)
	assert.Equal(t, "fetch_quote", last.ToolName)
	assert.JSONEq(t, `{"price":420.69}`, last.Content)
}

func TestConversation_ChatMessages(t *testing.T) {
	conv := NewConversation(Task{Ticker: "AAPL"})
	conv.AddUserMessage("Analyze AAPL")
	conv.AddAgentMessage("stock_analyst", "checking", []ai.ToolCall{{
		ID:   "call_1",
		Type: "function",
		Function: ai.FunctionCall{
			Name:      "fetch_quote",
			Arguments: `{"symbol":"AAPL"}`,
		},
	}})
	require.NoError(t, conv.AddToolResult("stock_analyst", "call_1", "fetch_quote", map[string]interface{}{"price": 230.1}))
	conv.AddHandoff("stock_analyst")

	msgs := conv.ChatMessages("system prompt")
	require.Len(t, msgs, 5)

	assert.Equal(t, ai.RoleSystem, msgs[0].Role)
	assert.Equal(t, "system prompt", msgs[0].Content)

	assert.Equal(t, ai.RoleUser, msgs[1].Role)

	assert.Equal(t, ai.RoleAssistant, msgs[2].Role)
	require.Len(t, msgs[2].ToolCalls, 1)
	assert.Equal(t, "fetch_quote", msgs[2].ToolCalls[0].Function.Name)

	assert.Equal(t, ai.RoleTool, msgs[3].Role)
	assert.Equal(t, "call_1", msgs[3].ToolCallID)
	assert.Equal(t, "fetch_quote", msgs[3].Name)

	// Handoff markers arrive as user messages
	assert.Equal(t, ai.RoleUser, msgs[4].Role)
	assert.Contains(t, msgs[4].Content, "stock_analyst")
}

func TestConversation_ChatMessagesWithoutSystemPrompt(t *testing.T) {
	conv := NewConversation(Task{Ticker: "AAPL"})
	conv.AddUserMessage("hello")

	msgs := conv.ChatMessages("")
	require.Len(t, msgs, 1)
	assert.Equal(t, ai.RoleUser, msgs[0].Role)
}

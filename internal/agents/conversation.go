package agents

import (
	"encoding/json"
	"fmt"
	"time"

	"stockpulse/internal/adapters/ai"
	"stockpulse/pkg/errors"
)

// Message roles within a conversation.
const (
	roleUser  = "user"
	roleAgent = "agent"
	roleTool  = "tool"
)

// Message is a single entry in the conversation history
type Message struct {
	Role       string        `json:"role"` // "user", "agent", "tool"
	Author     string        `json:"author,omitempty"`
	Content    string        `json:"content"`
	ToolCalls  []ai.ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string        `json:"tool_call_id,omitempty"` // For tool response messages
	ToolName   string        `json:"tool_name,omitempty"`
	Timestamp  time.Time     `json:"timestamp"`
}

// Conversation is the append-only message log for one pipeline run.
// It is shared by reference between the supervisor and the currently
// active agent; turns never run concurrently, so no locking is needed.
type Conversation struct {
	ticker   string
	messages []Message
}

// NewConversation creates an empty conversation for a task.
func NewConversation(task Task) *Conversation {
	return &Conversation{
		ticker:   task.Ticker,
		messages: make([]Message, 0, 16),
	}
}

// Ticker returns the symbol this conversation analyzes.
func (c *Conversation) Ticker() string {
	return c.ticker
}

// AddUserMessage appends a user message.
func (c *Conversation) AddUserMessage(content string) {
	c.messages = append(c.messages, Message{
		Role:      roleUser,
		Content:   content,
		Timestamp: time.Now(),
	})
}

// AddAgentMessage appends a message produced by an agent, optionally
// carrying tool call requests.
func (c *Conversation) AddAgentMessage(author, content string, toolCalls []ai.ToolCall) {
	c.messages = append(c.messages, Message{
		Role:      roleAgent,
		Author:    author,
		Content:   content,
		ToolCalls: toolCalls,
		Timestamp: time.Now(),
	})
}

// AddToolResult appends a tool observation. The payload is stored as
// JSON so error payloads and results share one representation.
func (c *Conversation) AddToolResult(author, toolCallID, toolName string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return errors.Wrap(err, "marshal tool result")
	}

	c.messages = append(c.messages, Message{
		Role:       roleTool,
		Author:     author,
		Content:    string(data),
		ToolCallID: toolCallID,
		ToolName:   toolName,
		Timestamp:  time.Now(),
	})
	return nil
}

// AddHandoff appends the supervisor's marker that an agent has
// returned control.
func (c *Conversation) AddHandoff(from string) {
	c.messages = append(c.messages, Message{
		Role:      roleUser,
		Content:   fmt.Sprintf("[handoff] %s has finished its turn and returned control to the supervisor.", from),
		Timestamp: time.Now(),
	})
}

// Messages returns the full history.
func (c *Conversation) Messages() []Message {
	return c.messages
}

// Last returns the most recent message, or nil when empty.
func (c *Conversation) Last() *Message {
	if len(c.messages) == 0 {
		return nil
	}
	return &c.messages[len(c.messages)-1]
}

// HasSpoken reports whether the named agent has produced any message.
func (c *Conversation) HasSpoken(author string) bool {
	for _, msg := range c.messages {
		if msg.Role == roleAgent && msg.Author == author {
			return true
		}
	}
	return false
}

// ChatMessages converts the history to chat provider messages, with
// the given system prompt first.
func (c *Conversation) ChatMessages(systemPrompt string) []ai.Message {
	out := make([]ai.Message, 0, len(c.messages)+1)
	if systemPrompt != "" {
		out = append(out, ai.Message{Role: ai.RoleSystem, Content: systemPrompt})
	}

	for _, msg := range c.messages {
		switch msg.Role {
		case roleUser:
			out = append(out, ai.Message{Role: ai.RoleUser, Content: msg.Content})
		case roleAgent:
			out = append(out, ai.Message{
				Role:      ai.RoleAssistant,
				Content:   msg.Content,
				ToolCalls: msg.ToolCalls,
			})
		case roleTool:
			out = append(out, ai.Message{
				Role:       ai.RoleTool,
				Content:    msg.Content,
				ToolCallID: msg.ToolCallID,
				Name:       msg.ToolName,
			})
		}
	}

	return out
}

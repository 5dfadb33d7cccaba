package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"stockpulse/pkg/errors"
)

// OpenAI-compatible request/response types. DeepSeek speaks the same
// wire format, so both providers share this layer.
type openAIRequest struct {
	Model       string          `json:"model"`
	Messages    []openAIMessage `json:"messages"`
	Temperature float64         `json:"temperature,omitempty"`
	MaxTokens   int             `json:"max_tokens,omitempty"`
	TopP        float64         `json:"top_p,omitempty"`
	Tools       []openAITool    `json:"tools,omitempty"`
}

type openAIMessage struct {
	Role       string           `json:"role"`
	Content    string           `json:"content,omitempty"`
	Name       string           `json:"name,omitempty"`
	ToolCalls  []openAIToolCall `json:"tool_calls,omitempty"`
	ToolCallID string           `json:"tool_call_id,omitempty"`
}

type openAIToolCall struct {
	ID       string             `json:"id"`
	Type     string             `json:"type"`
	Function openAIFunctionCall `json:"function"`
}

type openAIFunctionCall struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

type openAITool struct {
	Type     string            `json:"type"`
	Function openAIFunctionDef `json:"function"`
}

type openAIFunctionDef struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	Parameters  map[string]interface{} `json:"parameters"`
}

type openAIResponse struct {
	ID      string         `json:"id"`
	Object  string         `json:"object"`
	Created int64          `json:"created"`
	Model   string         `json:"model"`
	Choices []openAIChoice `json:"choices"`
	Usage   openAIUsage    `json:"usage"`
}

type openAIChoice struct {
	Index        int           `json:"index"`
	Message      openAIMessage `json:"message"`
	FinishReason string        `json:"finish_reason"`
}

type openAIUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// convertToOpenAI converts our request format to the OpenAI wire format.
func convertToOpenAI(req ChatRequest) openAIRequest {
	openAIReq := openAIRequest{
		Model:       req.Model,
		Messages:    []openAIMessage{}, // Initialize as empty slice (never nil)
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
		TopP:        req.TopP,
	}

	if openAIReq.MaxTokens == 0 {
		openAIReq.MaxTokens = 4096 // Default
	}

	for _, msg := range req.Messages {
		openAIMsg := openAIMessage{
			Role:    string(msg.Role),
			Content: msg.Content,
			Name:    msg.Name,
		}

		for _, tc := range msg.ToolCalls {
			openAIMsg.ToolCalls = append(openAIMsg.ToolCalls, openAIToolCall{
				ID:   tc.ID,
				Type: tc.Type,
				Function: openAIFunctionCall{
					Name:      tc.Function.Name,
					Arguments: tc.Function.Arguments,
				},
			})
		}

		if msg.ToolCallID != "" {
			openAIMsg.ToolCallID = msg.ToolCallID
		}

		openAIReq.Messages = append(openAIReq.Messages, openAIMsg)
	}

	for _, tool := range req.Tools {
		openAIReq.Tools = append(openAIReq.Tools, openAITool{
			Type: tool.Type,
			Function: openAIFunctionDef{
				Name:        tool.Function.Name,
				Description: tool.Function.Description,
				Parameters:  tool.Function.Parameters,
			},
		})
	}

	return openAIReq
}

// convertFromOpenAI converts an OpenAI wire response to our format.
func convertFromOpenAI(resp *openAIResponse) *ChatResponse {
	chatResp := &ChatResponse{
		ID:    resp.ID,
		Model: resp.Model,
		Usage: Usage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		},
	}

	for _, choice := range resp.Choices {
		msg := Message{
			Role:    MessageRole(choice.Message.Role),
			Content: choice.Message.Content,
			Name:    choice.Message.Name,
		}

		for _, tc := range choice.Message.ToolCalls {
			msg.ToolCalls = append(msg.ToolCalls, ToolCall{
				ID:   tc.ID,
				Type: tc.Type,
				Function: FunctionCall{
					Name:      tc.Function.Name,
					Arguments: tc.Function.Arguments,
				},
			})
		}

		finishReason := FinishReasonStop
		switch choice.FinishReason {
		case "length":
			finishReason = FinishReasonLength
		case "tool_calls", "function_call":
			finishReason = FinishReasonToolCalls
		}

		chatResp.Choices = append(chatResp.Choices, Choice{
			Index:        choice.Index,
			Message:      msg,
			FinishReason: finishReason,
		})
	}

	return chatResp
}

// doChatRequest executes one OpenAI-compatible chat completion HTTP call.
func doChatRequest(ctx context.Context, apiURL, apiKey string, timeout time.Duration, provider ProviderName, req ChatRequest) (*ChatResponse, error) {
	body, err := json.Marshal(convertToOpenAI(req))
	if err != nil {
		return nil, errors.Wrapf(err, "marshal %s request", provider)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", apiURL, bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, "create HTTP request")
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+apiKey)

	client := &http.Client{Timeout: timeout}
	resp, err := client.Do(httpReq)
	if err != nil {
		return nil, errors.Wrapf(err, "send %s request", provider)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrapf(err, "read %s response", provider)
	}

	if resp.StatusCode != http.StatusOK {
		var errResp struct {
			Error struct {
				Message string `json:"message"`
				Type    string `json:"type"`
				Code    string `json:"code"`
			} `json:"error"`
		}
		if err := json.Unmarshal(respBody, &errResp); err == nil && errResp.Error.Message != "" {
			return nil, errors.Wrapf(errors.ErrExternal, "%s API error (%d): %s - %s",
				provider, resp.StatusCode, errResp.Error.Type, errResp.Error.Message)
		}
		return nil, errors.Wrapf(errors.ErrExternal, "%s API error (%d): %s",
			provider, resp.StatusCode, string(respBody))
	}

	var openAIResp openAIResponse
	if err := json.Unmarshal(respBody, &openAIResp); err != nil {
		return nil, errors.Wrapf(err, "unmarshal %s response", provider)
	}

	return convertFromOpenAI(&openAIResp), nil
}

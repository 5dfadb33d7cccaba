package api

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"
)

// chatReply pairs a trigger keyword with its canned answer. The chat
// endpoint is a simple keyword matcher, deliberately separate from the
// agent pipeline.
type chatReply struct {
	keyword  string
	response string
}

// chatReplies is checked in order; the first keyword contained in the
// lowercased message wins.
var chatReplies = []chatReply{
	{"hello", "Hello! I'm your AI investment assistant. How can I help you with your investments today?"},
	{"hi", "Hi there! I'm here to help with your investment questions. What would you like to know?"},
	{"what stocks should i buy", "I can't provide specific investment advice, but I can help you research stocks. What type of companies are you interested in?"},
	{"how to start investing", "To start investing, consider these steps: 1) Set clear financial goals 2) Build an emergency fund 3) Pay off high-interest debt 4) Start with index funds or ETFs 5) Diversify your portfolio. Would you like more details on any of these steps?"},
	{"market trend", "I currently don't have real-time market data, but I can help you analyze specific stocks or sectors. What would you like to know more about?"},
	{"portfolio", "To help you with your portfolio, I'd need to know what investments you currently hold and what your financial goals are. Would you like to discuss a specific aspect of portfolio management?"},
	{"risk", "Investment risk varies by asset class. Generally, stocks are riskier than bonds, but offer higher potential returns. Your risk tolerance depends on your investment timeline and financial goals. What's your investment horizon?"},
	{"retirement", "For retirement planning, consider: 1) Contributing to tax-advantaged accounts like 401(k) or IRA 2) Asset allocation based on your age and risk tolerance 3) Regular contributions 4) Rebalancing periodically. Would you like more details on any of these areas?"},
	{"crypto", "Cryptocurrencies are highly volatile and speculative investments. They can offer high returns but come with significant risk. It's generally recommended to allocate only a small portion of your portfolio to crypto if you choose to invest. Would you like to discuss risk management strategies?"},
	{"dividend", "Dividend investing focuses on stocks that pay regular dividends. These are often well-established companies with stable cash flows. Key metrics to consider include dividend yield, payout ratio, and dividend growth history. Would you like help analyzing specific dividend stocks?"},
}

const chatDefaultReply = "I'm here to help with your investment questions. Could you provide more details about what you'd like to know? I can help with stock analysis, portfolio strategies, market trends, and general investment advice."

// HandleChat answers chat messages with keyword-matched responses.
func (h *Handlers) HandleChat(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	message := strings.ToLower(req.Message)
	response := chatDefaultReply
	for _, reply := range chatReplies {
		if strings.Contains(message, reply.keyword) {
			response = reply.response
			break
		}
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"response":  response,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

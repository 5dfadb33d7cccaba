package ai

import (
	"strings"

	"stockpulse/internal/adapters/config"
	"stockpulse/pkg/errors"
)

// NewChatProvider builds the chat provider selected by configuration.
func NewChatProvider(cfg config.AIConfig) (ChatProvider, error) {
	switch ProviderName(NormalizeProviderName(cfg.DefaultProvider)) {
	case ProviderNameOpenAI:
		if cfg.OpenAIKey == "" {
			return nil, errors.Wrap(errors.ErrInvalidInput, "openai API key not configured")
		}
		limiter := NewTokenBucketLimiter(ProviderNameOpenAI, cfg.ReqPerMinute, 0)
		return NewOpenAIProvider(cfg.OpenAIKey, cfg.RequestTimeout, limiter), nil

	case ProviderNameDeepSeek:
		if cfg.DeepSeekKey == "" {
			return nil, errors.Wrap(errors.ErrInvalidInput, "deepseek API key not configured")
		}
		limiter := NewTokenBucketLimiter(ProviderNameDeepSeek, cfg.ReqPerMinute, 0)
		return NewDeepSeekProvider(cfg.DeepSeekKey, cfg.RequestTimeout, limiter), nil

	default:
		return nil, errors.Wrapf(errors.ErrInvalidInput, "unsupported AI provider: %s", cfg.DefaultProvider)
	}
}

// NormalizeProviderName makes provider lookup more forgiving.
func NormalizeProviderName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

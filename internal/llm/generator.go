package llm

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/calmguard/ecomcare/internal/config"
)

// ErrEmptyCompletion 表示模型返回了空内容。
var ErrEmptyCompletion = errors.New("llm returned empty completion")

// Generator 以一条系统提示与一条用户提示调用大模型，返回纯文本结果。
type Generator interface {
	Generate(ctx context.Context, system, user string, temperature float32) (string, error)
}

// New 根据配置选择提供方。mock 或凭证缺失时返回 nil，调用方应改用启发式规则。
func New(ctx context.Context, cfg config.LLMConfig) (Generator, error) {
	if cfg.Provider == config.ProviderMock {
		return nil, nil
	}
	if !cfg.Enabled() {
		log.Printf("[llm] provider=%s is missing credentials, falling back to heuristics", cfg.Provider)
		return nil, nil
	}

	switch cfg.Provider {
	case config.ProviderOpenAI:
		return NewOpenAIGenerator(cfg.OpenAIAPIKey, "", cfg.OpenAIModel, cfg.Timeout), nil
	case config.ProviderAliyun:
		return NewOpenAIGenerator(cfg.DashScopeAPIKey, config.DashScopeBaseURL, cfg.AliModel, cfg.Timeout), nil
	case config.ProviderArk:
		chatModel, err := cfg.NewArkChatModel(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to create ark chat model: %w", err)
		}
		return NewChainGenerator(ctx, chatModel, cfg.Timeout)
	default:
		return nil, fmt.Errorf("unsupported llm provider %q", cfg.Provider)
	}
}

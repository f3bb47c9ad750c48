package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
)

// ChainGenerator 基于 eino 编排链调用任意 ChatModel，当前用于火山方舟。
type ChainGenerator struct {
	chain   compose.Runnable[map[string]any, *schema.Message]
	timeout time.Duration
}

// NewChainGenerator 编译 "system + user" 两段式的提示词链。
func NewChainGenerator(ctx context.Context, chatModel model.ChatModel, timeout time.Duration) (*ChainGenerator, error) {
	if chatModel == nil {
		return nil, fmt.Errorf("chat model is nil")
	}

	// 提示词内容作为变量值传入，其中的 JSON 花括号不会被模板解析。
	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage("{system}"),
		schema.UserMessage("{query}"),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile generation chain: %w", err)
	}

	return &ChainGenerator{chain: runnable, timeout: timeout}, nil
}

// Generate 实现 Generator。
func (g *ChainGenerator) Generate(ctx context.Context, system, user string, temperature float32) (string, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	msg, err := g.chain.Invoke(ctx, map[string]any{
		"system": system,
		"query":  user,
	}, compose.WithChatModelOption(model.WithTemperature(temperature)))
	if err != nil {
		return "", fmt.Errorf("failed to run generation chain: %w", err)
	}
	if msg == nil || strings.TrimSpace(msg.Content) == "" {
		return "", ErrEmptyCompletion
	}
	return strings.TrimSpace(msg.Content), nil
}

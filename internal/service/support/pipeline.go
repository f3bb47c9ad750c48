package support

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/calmguard/ecomcare/internal/analysis/heuristic"
	"github.com/calmguard/ecomcare/internal/llm"
	"github.com/calmguard/ecomcare/internal/model/analysis"
	"github.com/calmguard/ecomcare/internal/prompts"
)

// 各阶段的采样温度。
const (
	analysisTemperature = 0.1
	replyTemperature    = 0.7
)

// ErrEmptyMessage 表示请求中的消息为空。
var ErrEmptyMessage = errors.New("message cannot be empty")

// Pipeline 依次执行意图识别、情绪风险评估、策略路由与回复生成。
// 每一阶段优先调用大模型，失败时回退到关键词规则，因此 Process 总能给出完整结果。
type Pipeline struct {
	generator llm.Generator
	prompts   prompts.Set

	// 只缓存模型给出的意图与情绪结果，两者只依赖消息文本。
	intents  *lru.Cache[string, analysis.IntentAnalysis]
	emotions *lru.Cache[string, analysis.EmotionRiskAnalysis]
}

// Option 调整 Pipeline 的可选行为。
type Option func(*Pipeline)

// WithCache 为意图与情绪阶段启用容量为 size 的 LRU 缓存。size <= 0 时不缓存。
func WithCache(size int) Option {
	return func(p *Pipeline) {
		if size <= 0 {
			return
		}
		intents, err := lru.New[string, analysis.IntentAnalysis](size)
		if err != nil {
			log.Printf("[pipeline] intent cache disabled: %v", err)
			return
		}
		emotions, err := lru.New[string, analysis.EmotionRiskAnalysis](size)
		if err != nil {
			log.Printf("[pipeline] emotion cache disabled: %v", err)
			return
		}
		p.intents = intents
		p.emotions = emotions
	}
}

// NewPipeline 创建分析流程。generator 为 nil 时全部阶段使用启发式规则。
func NewPipeline(generator llm.Generator, set prompts.Set, opts ...Option) *Pipeline {
	p := &Pipeline{generator: generator, prompts: set}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Prompts 返回当前生效的提示词。
func (p *Pipeline) Prompts() prompts.Set {
	return p.prompts
}

// Process 处理一次用户消息。
func (p *Pipeline) Process(ctx context.Context, req analysis.ChatRequest) (analysis.BotResponse, error) {
	message := strings.TrimSpace(req.Message)
	if message == "" {
		return analysis.BotResponse{}, ErrEmptyMessage
	}

	intent := p.detectIntent(ctx, message)
	emotion := p.assessEmotion(ctx, message)
	strategy := p.routeStrategy(ctx, intent, emotion)
	reply := p.generateReply(ctx, req, message, intent, emotion, strategy)

	log.Printf("[pipeline] intent=%s emotion=%d strategy=%s", intent.Intent, emotion.EmotionLevel, strategy.Strategy)
	return analysis.NewBotResponse(reply, analysis.Payload{
		Intent:      intent,
		EmotionRisk: emotion,
		Strategy:    strategy,
	}), nil
}

func (p *Pipeline) detectIntent(ctx context.Context, message string) analysis.IntentAnalysis {
	if p.intents != nil {
		if cached, ok := p.intents.Get(message); ok {
			return cached
		}
	}

	var out analysis.IntentAnalysis
	if err := p.classify(ctx, p.prompts.IntentDetection, userPrompt(message), &out); err != nil || out.Intent == "" {
		logFallback("intent", err)
		return heuristic.Intent(message)
	}
	if p.intents != nil {
		p.intents.Add(message, out)
	}
	return out
}

func (p *Pipeline) assessEmotion(ctx context.Context, message string) analysis.EmotionRiskAnalysis {
	if p.emotions != nil {
		if cached, ok := p.emotions.Get(message); ok {
			cached.RiskTags = append([]string{}, cached.RiskTags...)
			return cached
		}
	}

	var out emotionPayload
	if err := p.classify(ctx, p.prompts.EmotionRisk, userPrompt(message), &out); err != nil || out.EmotionLevel == nil {
		logFallback("emotion", err)
		return heuristic.EmotionRisk(message)
	}

	tags := out.RiskTags
	if tags == nil {
		tags = []string{}
	}
	result := analysis.EmotionRiskAnalysis{
		EmotionLevel: *out.EmotionLevel,
		RiskTags:     tags,
		RiskScore:    out.RiskScore,
	}
	if p.emotions != nil {
		p.emotions.Add(message, analysis.EmotionRiskAnalysis{
			EmotionLevel: result.EmotionLevel,
			RiskTags:     append([]string{}, tags...),
			RiskScore:    result.RiskScore,
		})
	}
	return result
}

func (p *Pipeline) routeStrategy(ctx context.Context, intent analysis.IntentAnalysis, emotion analysis.EmotionRiskAnalysis) analysis.StrategyDecision {
	summary := fmt.Sprintf("Intent: %s, Emotion Level: %d, Risk Tags: %v\n请仅输出 JSON。", intent.Intent, emotion.EmotionLevel, emotion.RiskTags)

	var out analysis.StrategyDecision
	if err := p.classify(ctx, p.prompts.StrategyRouting, summary, &out); err != nil || out.Strategy == "" {
		logFallback("strategy", err)
		return heuristic.Strategy(intent, emotion)
	}
	return out
}

func (p *Pipeline) generateReply(ctx context.Context, req analysis.ChatRequest, message string, intent analysis.IntentAnalysis, emotion analysis.EmotionRiskAnalysis, strategy analysis.StrategyDecision) string {
	if p.generator == nil {
		return heuristic.Reply(strategy)
	}

	userPrompt := p.prompts.RenderResponse(map[string]string{
		"strategy":      strategy.Strategy,
		"intent":        intent.Intent,
		"emotion_level": fmt.Sprintf("%d", emotion.EmotionLevel),
		"history":       formatHistory(req.History),
		"message":       message,
	})

	reply, err := p.generator.Generate(ctx, p.prompts.SystemRole, userPrompt, replyTemperature)
	if err != nil || strings.TrimSpace(reply) == "" {
		logFallback("response", err)
		return heuristic.Reply(strategy)
	}
	return strings.TrimSpace(reply)
}

// classify 调用模型并把输出解析为 JSON。
func (p *Pipeline) classify(ctx context.Context, system, user string, v any) error {
	if p.generator == nil {
		return errNoGenerator
	}
	text, err := p.generator.Generate(ctx, system, user, analysisTemperature)
	if err != nil {
		return err
	}
	return llm.DecodeJSON(text, v)
}

var errNoGenerator = errors.New("no generator configured")

func logFallback(stage string, err error) {
	if err == nil || errors.Is(err, errNoGenerator) {
		return
	}
	log.Printf("[pipeline] %s stage failed, use fallback: %v", stage, err)
}

func userPrompt(message string) string {
	return "用户输入: " + message + "\n请仅输出 JSON。"
}

func formatHistory(history []analysis.HistoryEntry) string {
	if len(history) == 0 {
		return "无历史对话"
	}

	var builder strings.Builder
	for i, entry := range history {
		content := strings.TrimSpace(entry.Content)
		if content == "" {
			continue
		}
		role := "用户"
		if strings.EqualFold(entry.Role, "assistant") {
			role = "客服"
		}
		builder.WriteString(role)
		builder.WriteString(": ")
		builder.WriteString(content)
		if i < len(history)-1 {
			builder.WriteString("\n")
		}
	}
	if builder.Len() == 0 {
		return "无历史对话"
	}
	return builder.String()
}

// emotionPayload 区分"缺少 emotion_level"与"等级为 0"。
type emotionPayload struct {
	EmotionLevel *int     `json:"emotion_level"`
	RiskTags     []string `json:"risk_tags"`
	RiskScore    float64  `json:"risk_score"`
}

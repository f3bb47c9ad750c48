package support

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/calmguard/ecomcare/internal/analysis/heuristic"
	"github.com/calmguard/ecomcare/internal/model/analysis"
	"github.com/calmguard/ecomcare/internal/prompts"
)

type call struct {
	system      string
	user        string
	temperature float32
}

// scriptedGenerator 按系统提示词返回预设输出。
type scriptedGenerator struct {
	mu      sync.Mutex
	replies map[string]string
	errs    map[string]error
	calls   []call
}

func (g *scriptedGenerator) Generate(ctx context.Context, system, user string, temperature float32) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls = append(g.calls, call{system: system, user: user, temperature: temperature})
	if err := g.errs[system]; err != nil {
		return "", err
	}
	return g.replies[system], nil
}

func testPrompts() prompts.Set {
	return prompts.Set{
		SystemRole:         "ROLE",
		IntentDetection:    "INTENT",
		EmotionRisk:        "EMOTION",
		StrategyRouting:    "STRATEGY",
		ResponseGeneration: "策略={{strategy}} 意图={{intent}} 情绪={{emotion_level}}\n历史:\n{{history}}\n消息={{message}}",
	}
}

func TestProcessWithoutGeneratorUsesHeuristics(t *testing.T) {
	p := NewPipeline(nil, testPrompts())

	resp, err := p.Process(context.Background(), analysis.ChatRequest{Message: "我要退货！垃圾质量，我要投诉"})
	require.NoError(t, err)
	require.NoError(t, resp.Validate())

	require.Equal(t, heuristic.IntentAfterSales, resp.IntentAnalysis.Intent)
	require.Equal(t, 2, resp.EmotionAnalysis.EmotionLevel)
	require.Equal(t, []string{heuristic.RiskPlatformComplaint}, resp.EmotionAnalysis.RiskTags)
	require.Equal(t, float64(50), resp.EmotionAnalysis.RiskScore)
	require.Equal(t, heuristic.StrategyAfterSales, resp.StrategyDecision.Strategy)
	require.Equal(t, heuristic.Reply(*resp.StrategyDecision), resp.Content)
	require.NotNil(t, resp.SuggestedActions)
	require.Empty(t, resp.SuggestedActions)
}

func TestProcessRejectsEmptyMessage(t *testing.T) {
	p := NewPipeline(nil, testPrompts())
	_, err := p.Process(context.Background(), analysis.ChatRequest{Message: "   "})
	require.ErrorIs(t, err, ErrEmptyMessage)
}

func TestProcessUsesModelOutputs(t *testing.T) {
	gen := &scriptedGenerator{replies: map[string]string{
		"INTENT":   "```json\n{\"intent\":\"投诉/不满\",\"confidence\":0.95,\"reasoning\":\"明确要求投诉\"}\n```",
		"EMOTION":  `结果：{"emotion_level":3,"risk_tags":["平台投诉","舆情风险"],"risk_score":92}`,
		"STRATEGY": `{"strategy":"升级人工","prompt_template_name":"handoff","reasoning":"高风险"}`,
		"ROLE":     "  亲，已为您转接人工客服。  ",
	}}
	p := NewPipeline(gen, testPrompts())

	resp, err := p.Process(context.Background(), analysis.ChatRequest{
		Message: "再不处理我就投诉",
		History: []analysis.HistoryEntry{
			{Role: "assistant", Content: "您好"},
			{Role: "user", Content: "订单还没到"},
		},
	})
	require.NoError(t, err)

	require.Equal(t, "亲，已为您转接人工客服。", resp.Content)
	require.Equal(t, analysis.IntentAnalysis{Intent: "投诉/不满", Confidence: 0.95, Reasoning: "明确要求投诉"}, *resp.IntentAnalysis)
	require.Equal(t, 3, resp.EmotionAnalysis.EmotionLevel)
	require.Equal(t, []string{"平台投诉", "舆情风险"}, resp.EmotionAnalysis.RiskTags)
	require.Equal(t, "升级人工", resp.StrategyDecision.Strategy)

	require.Len(t, gen.calls, 4)
	require.InDelta(t, 0.1, gen.calls[0].temperature, 1e-6)
	require.Equal(t, "用户输入: 再不处理我就投诉\n请仅输出 JSON。", gen.calls[0].user)
	require.Contains(t, gen.calls[2].user, "Intent: 投诉/不满, Emotion Level: 3")

	final := gen.calls[3]
	require.Equal(t, "ROLE", final.system)
	require.InDelta(t, 0.7, final.temperature, 1e-6)
	require.True(t, strings.HasPrefix(final.user, "策略=升级人工 意图=投诉/不满 情绪=3"))
	require.Contains(t, final.user, "客服: 您好\n用户: 订单还没到")
	require.Contains(t, final.user, "消息=再不处理我就投诉")
}

func TestProcessFallsBackPerStage(t *testing.T) {
	gen := &scriptedGenerator{
		replies: map[string]string{
			"INTENT":   "我觉得是物流问题",
			"EMOTION":  `{"risk_tags":[]}`,
			"STRATEGY": `{"strategy":"热情导购","prompt_template_name":"guide","reasoning":"ok"}`,
		},
		errs: map[string]error{"ROLE": errors.New("timeout")},
	}
	p := NewPipeline(gen, testPrompts())

	resp, err := p.Process(context.Background(), analysis.ChatRequest{Message: "快递到哪了"})
	require.NoError(t, err)

	require.Equal(t, heuristic.IntentLogistics, resp.IntentAnalysis.Intent)
	require.Equal(t, 0, resp.EmotionAnalysis.EmotionLevel)
	require.Equal(t, "热情导购", resp.StrategyDecision.Strategy)
	require.Equal(t, heuristic.Reply(*resp.StrategyDecision), resp.Content)
}

func TestProcessKeepsExplicitZeroEmotion(t *testing.T) {
	gen := &scriptedGenerator{replies: map[string]string{
		"EMOTION": `{"emotion_level":0,"risk_score":0}`,
	}}
	p := NewPipeline(gen, testPrompts())

	resp, err := p.Process(context.Background(), analysis.ChatRequest{Message: "垃圾!"})
	require.NoError(t, err)
	require.Equal(t, 0, resp.EmotionAnalysis.EmotionLevel)
	require.NotNil(t, resp.EmotionAnalysis.RiskTags)
}

func TestFormatHistory(t *testing.T) {
	require.Equal(t, "无历史对话", formatHistory(nil))
	require.Equal(t, "无历史对话", formatHistory([]analysis.HistoryEntry{{Role: "user", Content: "  "}}))
	require.Equal(t, "用户: 在吗", formatHistory([]analysis.HistoryEntry{{Role: "user", Content: "在吗"}}))
}

func TestCacheSkipsRepeatedClassification(t *testing.T) {
	gen := &scriptedGenerator{replies: map[string]string{
		"INTENT":   `{"intent":"商品咨询","confidence":0.8,"reasoning":"询价"}`,
		"EMOTION":  `{"emotion_level":1,"risk_tags":["催单"],"risk_score":20}`,
		"STRATEGY": `{"strategy":"热情导购","prompt_template_name":"guide","reasoning":"ok"}`,
		"ROLE":     "亲，有的哦",
	}}
	p := NewPipeline(gen, testPrompts(), WithCache(8))

	first, err := p.Process(context.Background(), analysis.ChatRequest{Message: "这个有货吗"})
	require.NoError(t, err)
	require.Len(t, gen.calls, 4)

	// 修改返回结果不应污染缓存。
	first.EmotionAnalysis.RiskTags[0] = "changed"

	second, err := p.Process(context.Background(), analysis.ChatRequest{Message: "  这个有货吗 "})
	require.NoError(t, err)
	require.Len(t, gen.calls, 6)
	require.Equal(t, "STRATEGY", gen.calls[4].system)
	require.Equal(t, "ROLE", gen.calls[5].system)
	require.Equal(t, "商品咨询", second.IntentAnalysis.Intent)
	require.Equal(t, []string{"催单"}, second.EmotionAnalysis.RiskTags)
}

func TestCacheIgnoresHeuristicResults(t *testing.T) {
	gen := &scriptedGenerator{errs: map[string]error{
		"INTENT":  errors.New("down"),
		"EMOTION": errors.New("down"),
	}}
	p := NewPipeline(gen, testPrompts(), WithCache(8))

	_, err := p.Process(context.Background(), analysis.ChatRequest{Message: "退款"})
	require.NoError(t, err)
	_, err = p.Process(context.Background(), analysis.ChatRequest{Message: "退款"})
	require.NoError(t, err)
	require.Len(t, gen.calls, 8)
	require.Zero(t, p.intents.Len())
	require.Zero(t, p.emotions.Len())
}

package heuristic

import (
	"strings"

	"github.com/calmguard/ecomcare/internal/model/analysis"
)

// 意图与策略标签。
const (
	IntentAfterSales = "售后/退换货"
	IntentLogistics  = "订单/物流查询"
	IntentComplaint  = "投诉/不满"
	IntentProduct    = "商品咨询"

	StrategyAfterSales = "标准售后"
	StrategyGuide      = "热情导购"

	RiskPlatformComplaint = "平台投诉"
)

type intentRule struct {
	intent    string
	reasoning string
	keywords  []string
}

// 按顺序匹配，先命中者优先。
var intentRules = []intentRule{
	{intent: IntentAfterSales, reasoning: "检测到退换货关键词", keywords: []string{"退货", "退款"}},
	{intent: IntentLogistics, reasoning: "检测到物流关键词", keywords: []string{"发货", "快递"}},
	{intent: IntentComplaint, reasoning: "检测到投诉关键词", keywords: []string{"投诉"}},
}

var angerMarkers = []string{"!", "愤怒", "垃圾"}

var complaintMarkers = []string{"投诉", "举报"}

var cannedReplies = map[string]string{
	StrategyAfterSales: "亲，非常抱歉让您不满意了。我们支持7天无理由退换货，您可以直接在订单页面申请哦，运费我们有赠送运费险的。",
}

const defaultReply = "亲，您好！我是您的专属客服，请问有什么可以帮您？如果是关于商品的问题，可以直接问我哦~"

// Intent 根据关键词推断用户意图。
func Intent(message string) analysis.IntentAnalysis {
	for _, rule := range intentRules {
		if containsAny(message, rule.keywords) {
			return analysis.IntentAnalysis{Intent: rule.intent, Confidence: 0.9, Reasoning: rule.reasoning}
		}
	}
	return analysis.IntentAnalysis{Intent: IntentProduct, Confidence: 0.6, Reasoning: "默认意图"}
}

// EmotionRisk 根据标点与关键词估计情绪等级和风险标签。
func EmotionRisk(message string) analysis.EmotionRiskAnalysis {
	level := 0
	if containsAny(message, angerMarkers) {
		level = 2
	}
	tags := []string{}
	if containsAny(message, complaintMarkers) {
		tags = append(tags, RiskPlatformComplaint)
	}
	return analysis.EmotionRiskAnalysis{
		EmotionLevel: level,
		RiskTags:     tags,
		RiskScore:    float64(level * 25),
	}
}

// Strategy 根据意图选择回复策略。
func Strategy(intent analysis.IntentAnalysis, _ analysis.EmotionRiskAnalysis) analysis.StrategyDecision {
	if intent.Intent == IntentAfterSales {
		return analysis.StrategyDecision{Strategy: StrategyAfterSales, PromptTemplateName: "after_sales", Reasoning: "售后流程"}
	}
	return analysis.StrategyDecision{Strategy: StrategyGuide, PromptTemplateName: "guide", Reasoning: "默认导购"}
}

// Reply 返回与策略对应的预设回复。
func Reply(strategy analysis.StrategyDecision) string {
	if reply, ok := cannedReplies[strategy.Strategy]; ok {
		return reply
	}
	return defaultReply
}

func containsAny(text string, words []string) bool {
	for _, word := range words {
		if word != "" && strings.Contains(text, word) {
			return true
		}
	}
	return false
}

package analysis

import "errors"

// ErrIncompleteResponse 表示响应缺少分析字段。
var ErrIncompleteResponse = errors.New("response is missing analysis sections")

// HistoryEntry 是随请求发送的一条历史消息。
type HistoryEntry struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest 是 POST /api/chat 的请求体。
type ChatRequest struct {
	Message string         `json:"message"`
	History []HistoryEntry `json:"history"`
}

// BotResponse 是 POST /api/chat 的成功响应体。
type BotResponse struct {
	Content          string               `json:"content"`
	IntentAnalysis   *IntentAnalysis      `json:"intent_analysis"`
	EmotionAnalysis  *EmotionRiskAnalysis `json:"emotion_analysis"`
	StrategyDecision *StrategyDecision    `json:"strategy_decision"`
	SuggestedActions []string             `json:"suggested_actions"`
}

// Validate 检查三个分析字段是否齐全。
func (r *BotResponse) Validate() error {
	if r == nil || r.IntentAnalysis == nil || r.EmotionAnalysis == nil || r.StrategyDecision == nil {
		return ErrIncompleteResponse
	}
	return nil
}

// Payload 将响应转换为可附着的分析数据。调用前应先 Validate。
func (r *BotResponse) Payload() Payload {
	return Payload{
		Intent:      *r.IntentAnalysis,
		EmotionRisk: *r.EmotionAnalysis,
		Strategy:    *r.StrategyDecision,
	}.Clone()
}

// NewBotResponse 根据各阶段结果组装响应。
func NewBotResponse(content string, payload Payload) BotResponse {
	p := payload.Clone()
	if p.EmotionRisk.RiskTags == nil {
		p.EmotionRisk.RiskTags = []string{}
	}
	return BotResponse{
		Content:          content,
		IntentAnalysis:   &p.Intent,
		EmotionAnalysis:  &p.EmotionRisk,
		StrategyDecision: &p.Strategy,
		SuggestedActions: []string{},
	}
}

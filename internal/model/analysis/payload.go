package analysis

// IntentAnalysis 描述意图识别结果。Confidence 由后端给出，不做截断。
type IntentAnalysis struct {
	Intent     string  `json:"intent"`
	Confidence float64 `json:"confidence"`
	Reasoning  string  `json:"reasoning"`
}

// EmotionRiskAnalysis 描述情绪等级 (0=平静 1=不满 2=愤怒 3=敌对) 与风险评估。
type EmotionRiskAnalysis struct {
	EmotionLevel int      `json:"emotion_level"`
	RiskTags     []string `json:"risk_tags"`
	RiskScore    float64  `json:"risk_score"`
}

// DisplayTags 返回去重后的风险标签，保持首次出现的顺序。
func (e EmotionRiskAnalysis) DisplayTags() []string {
	if len(e.RiskTags) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(e.RiskTags))
	out := make([]string, 0, len(e.RiskTags))
	for _, tag := range e.RiskTags {
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}

// StrategyDecision 描述策略路由结果。
type StrategyDecision struct {
	Strategy           string `json:"strategy"`
	PromptTemplateName string `json:"prompt_template_name"`
	Reasoning          string `json:"reasoning"`
}

// Payload 是附着在一条助手回复上的诊断数据，附着后不再修改。
type Payload struct {
	Intent      IntentAnalysis
	EmotionRisk EmotionRiskAnalysis
	Strategy    StrategyDecision
}

// Clone 返回一份不与原值共享切片的拷贝。
func (p Payload) Clone() Payload {
	if p.EmotionRisk.RiskTags != nil {
		p.EmotionRisk.RiskTags = append([]string(nil), p.EmotionRisk.RiskTags...)
	}
	return p
}

package escalation

import "github.com/calmguard/ecomcare/internal/model/analysis"

// StrategyHumanHandoff 是表示需要转人工处理的策略名。
const StrategyHumanHandoff = "升级人工"

// RequiresEscalation 判断策略是否要求人工介入。
func RequiresEscalation(strategy analysis.StrategyDecision) bool {
	return strategy.Strategy == StrategyHumanHandoff
}

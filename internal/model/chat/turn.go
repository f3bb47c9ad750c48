package chat

import (
	"time"

	"github.com/calmguard/ecomcare/internal/model/analysis"
)

// Role 标识一条消息的作者。
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn 是会话日志中的一条消息。Analysis 只出现在成功完成的助手回复上。
type Turn struct {
	ID        string            `json:"id"`
	Role      Role              `json:"role"`
	Content   string            `json:"content"`
	Analysis  *analysis.Payload `json:"analysis,omitempty"`
	CreatedAt time.Time         `json:"createdAt"`
}

// Selectable 表示该条消息能否在分析面板中查看。
func (t Turn) Selectable() bool {
	return t.Role == RoleAssistant && t.Analysis != nil
}

// HistoryEntry 将消息转换为请求上下文中的历史条目。
func (t Turn) HistoryEntry() analysis.HistoryEntry {
	return analysis.HistoryEntry{Role: string(t.Role), Content: t.Content}
}

package conversation

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/calmguard/ecomcare/internal/model/analysis"
	"github.com/calmguard/ecomcare/internal/model/chat"
)

// DefaultGreeting 是每个会话开场的助手问候语。
const DefaultGreeting = "您好，欢迎光临[EcomCare商城]，我是您的专属客服。请问有什么想买的或者需要帮助的吗？"

// ErrEmptyInput 表示用户输入去除空白后为空。
var ErrEmptyInput = errors.New("input is empty")

// Store 持有有序、只追加的会话日志以及分析面板当前查看的分析数据。
type Store struct {
	mu        sync.RWMutex
	turns     []chat.Turn
	inspected int
	now       func() time.Time
}

// NewStore 创建以一条问候语开场的会话。greeting 为空时使用 DefaultGreeting。
func NewStore(greeting string) *Store {
	if strings.TrimSpace(greeting) == "" {
		greeting = DefaultGreeting
	}
	s := &Store{
		turns:     make([]chat.Turn, 0, 16),
		inspected: -1,
		now:       func() time.Time { return time.Now().UTC() },
	}
	s.turns = append(s.turns, s.newTurn(chat.RoleAssistant, greeting, nil))
	return s
}

// AppendUserTurn 追加一条用户消息，不影响当前查看的分析数据。
func (s *Store) AppendUserTurn(content string) (chat.Turn, error) {
	if strings.TrimSpace(content) == "" {
		return chat.Turn{}, ErrEmptyInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	turn := s.newTurn(chat.RoleUser, content, nil)
	s.turns = append(s.turns, turn)
	return turn, nil
}

// AppendAssistantTurn 追加一条助手回复。payload 非空时同时将其设为当前查看的分析数据。
func (s *Store) AppendAssistantTurn(content string, payload *analysis.Payload) chat.Turn {
	s.mu.Lock()
	defer s.mu.Unlock()

	var attached *analysis.Payload
	if payload != nil {
		p := payload.Clone()
		attached = &p
	}

	turn := s.newTurn(chat.RoleAssistant, content, attached)
	s.turns = append(s.turns, turn)
	if attached != nil {
		s.inspected = len(s.turns) - 1
	}
	return copyTurn(turn)
}

// SelectInspected 将指定消息的分析数据设为当前查看项。消息不存在或没有分析数据时返回 false 且不做修改。
func (s *Store) SelectInspected(turnID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.turns {
		if s.turns[i].ID != turnID {
			continue
		}
		if s.turns[i].Analysis == nil {
			return false
		}
		s.inspected = i
		return true
	}
	return false
}

// SnapshotHistory 返回调用时刻日志中所有消息的 {role, content}。
func (s *Store) SnapshotHistory() []analysis.HistoryEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history := make([]analysis.HistoryEntry, len(s.turns))
	for i, turn := range s.turns {
		history[i] = turn.HistoryEntry()
	}
	return history
}

// Turns 返回日志的拷贝。
func (s *Store) Turns() []chat.Turn {
	s.mu.RLock()
	defer s.mu.RUnlock()

	copied := make([]chat.Turn, len(s.turns))
	for i, turn := range s.turns {
		copied[i] = copyTurn(turn)
	}
	return copied
}

// Len 返回日志中的消息数量。
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.turns)
}

// Inspected 返回当前查看的分析数据及其所属消息的 ID。
func (s *Store) Inspected() (analysis.Payload, string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.inspected < 0 {
		return analysis.Payload{}, "", false
	}
	turn := s.turns[s.inspected]
	return turn.Analysis.Clone(), turn.ID, true
}

func (s *Store) newTurn(role chat.Role, content string, payload *analysis.Payload) chat.Turn {
	return chat.Turn{
		ID:        uuid.NewString(),
		Role:      role,
		Content:   content,
		Analysis:  payload,
		CreatedAt: s.now(),
	}
}

func copyTurn(turn chat.Turn) chat.Turn {
	if turn.Analysis != nil {
		p := turn.Analysis.Clone()
		turn.Analysis = &p
	}
	return turn
}

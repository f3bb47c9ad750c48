package conversation_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/calmguard/ecomcare/internal/model/analysis"
	"github.com/calmguard/ecomcare/internal/model/chat"
	"github.com/calmguard/ecomcare/internal/service/conversation"
)

func samplePayload(strategy string) *analysis.Payload {
	return &analysis.Payload{
		Intent:      analysis.IntentAnalysis{Intent: "售后/退换货", Confidence: 0.9, Reasoning: "检测到退换货关键词"},
		EmotionRisk: analysis.EmotionRiskAnalysis{EmotionLevel: 1, RiskTags: []string{"平台投诉"}, RiskScore: 25},
		Strategy:    analysis.StrategyDecision{Strategy: strategy, PromptTemplateName: "after_sales", Reasoning: "售后流程"},
	}
}

func TestNewStoreSeedsGreeting(t *testing.T) {
	store := conversation.NewStore("")

	turns := store.Turns()
	require.Len(t, turns, 1)
	require.Equal(t, chat.RoleAssistant, turns[0].Role)
	require.Equal(t, conversation.DefaultGreeting, turns[0].Content)
	require.Nil(t, turns[0].Analysis)

	_, _, ok := store.Inspected()
	require.False(t, ok)
}

func TestAppendUserTurnRejectsBlankInput(t *testing.T) {
	store := conversation.NewStore("hi")

	for _, input := range []string{"", "   ", "\n\t "} {
		_, err := store.AppendUserTurn(input)
		require.ErrorIs(t, err, conversation.ErrEmptyInput)
	}
	require.Equal(t, 1, store.Len())
}

func TestAppendUserTurnKeepsInspected(t *testing.T) {
	store := conversation.NewStore("hi")
	assistant := store.AppendAssistantTurn("reply", samplePayload("标准售后"))

	_, err := store.AppendUserTurn("还有问题")
	require.NoError(t, err)

	_, id, ok := store.Inspected()
	require.True(t, ok)
	require.Equal(t, assistant.ID, id)
}

func TestAppendAssistantTurnWithPayloadSetsInspected(t *testing.T) {
	store := conversation.NewStore("hi")
	payload := samplePayload("标准售后")

	turn := store.AppendAssistantTurn("reply", payload)
	require.NotNil(t, turn.Analysis)
	require.Equal(t, *payload, *turn.Analysis)

	got, id, ok := store.Inspected()
	require.True(t, ok)
	require.Equal(t, turn.ID, id)
	require.Equal(t, *payload, got)
}

func TestAppendAssistantTurnWithoutPayloadLeavesInspected(t *testing.T) {
	store := conversation.NewStore("hi")
	first := store.AppendAssistantTurn("reply", samplePayload("标准售后"))

	store.AppendAssistantTurn("抱歉", nil)

	_, id, ok := store.Inspected()
	require.True(t, ok)
	require.Equal(t, first.ID, id)
}

func TestAttachedPayloadIsIsolatedFromCaller(t *testing.T) {
	store := conversation.NewStore("hi")
	payload := samplePayload("标准售后")
	store.AppendAssistantTurn("reply", payload)

	payload.EmotionRisk.RiskTags[0] = "mutated"
	payload.Strategy.Strategy = "mutated"

	got, _, ok := store.Inspected()
	require.True(t, ok)
	require.Equal(t, []string{"平台投诉"}, got.EmotionRisk.RiskTags)
	require.Equal(t, "标准售后", got.Strategy.Strategy)

	turns := store.Turns()
	turns[1].Analysis.EmotionRisk.RiskTags[0] = "mutated again"
	again, _, _ := store.Inspected()
	require.Equal(t, []string{"平台投诉"}, again.EmotionRisk.RiskTags)
}

func TestSelectInspected(t *testing.T) {
	store := conversation.NewStore("hi")
	first := store.AppendAssistantTurn("first", samplePayload("标准售后"))
	second := store.AppendAssistantTurn("second", samplePayload("升级人工"))
	fallback := store.AppendAssistantTurn("抱歉", nil)
	greeting := store.Turns()[0]

	require.True(t, store.SelectInspected(first.ID))
	got, id, _ := store.Inspected()
	require.Equal(t, first.ID, id)
	require.Equal(t, "标准售后", got.Strategy.Strategy)

	require.False(t, store.SelectInspected(fallback.ID))
	require.False(t, store.SelectInspected(greeting.ID))
	require.False(t, store.SelectInspected("missing"))
	_, id, _ = store.Inspected()
	require.Equal(t, first.ID, id)

	require.True(t, store.SelectInspected(second.ID))
	got, _, _ = store.Inspected()
	require.Equal(t, "升级人工", got.Strategy.Strategy)
}

func TestSnapshotHistoryReflectsCallTime(t *testing.T) {
	store := conversation.NewStore("hi")
	before := store.SnapshotHistory()

	_, err := store.AppendUserTurn("在吗")
	require.NoError(t, err)

	require.Equal(t, []analysis.HistoryEntry{{Role: "assistant", Content: "hi"}}, before)
	require.Equal(t, []analysis.HistoryEntry{
		{Role: "assistant", Content: "hi"},
		{Role: "user", Content: "在吗"},
	}, store.SnapshotHistory())
}

func TestTurnsAreOrderedAndUnique(t *testing.T) {
	store := conversation.NewStore("hi")
	_, _ = store.AppendUserTurn("a")
	store.AppendAssistantTurn("b", nil)
	_, _ = store.AppendUserTurn("c")

	turns := store.Turns()
	require.Len(t, turns, 4)
	seen := map[string]bool{}
	for i, turn := range turns {
		require.False(t, seen[turn.ID], "duplicate id at %d", i)
		seen[turn.ID] = true
		if i > 0 {
			require.False(t, turn.CreatedAt.Before(turns[i-1].CreatedAt))
		}
	}
	require.Equal(t, []string{"hi", "a", "b", "c"}, []string{turns[0].Content, turns[1].Content, turns[2].Content, turns[3].Content})
}

package heuristic

import (
	"testing"

	"github.com/calmguard/ecomcare/internal/model/analysis"
)

func TestIntentRefundWinsOverLogistics(t *testing.T) {
	got := Intent("快递还没到，我要退款")
	if got.Intent != IntentAfterSales {
		t.Fatalf("expected after-sales intent, got %s", got.Intent)
	}
	if got.Confidence != 0.9 {
		t.Fatalf("unexpected confidence: %v", got.Confidence)
	}
}

func TestIntentDefaultsToProductQuestion(t *testing.T) {
	got := Intent("这件衣服有红色吗")
	if got.Intent != IntentProduct || got.Confidence != 0.6 {
		t.Fatalf("unexpected default intent: %+v", got)
	}
}

func TestIntentComplaint(t *testing.T) {
	if got := Intent("我要投诉你们"); got.Intent != IntentComplaint {
		t.Fatalf("expected complaint intent, got %s", got.Intent)
	}
}

func TestEmotionRiskAngryComplaint(t *testing.T) {
	got := EmotionRisk("垃圾商家，我要举报!")
	if got.EmotionLevel != 2 {
		t.Fatalf("expected level 2, got %d", got.EmotionLevel)
	}
	if got.RiskScore != 50 {
		t.Fatalf("expected score 50, got %v", got.RiskScore)
	}
	if len(got.RiskTags) != 1 || got.RiskTags[0] != RiskPlatformComplaint {
		t.Fatalf("unexpected tags: %v", got.RiskTags)
	}
}

func TestEmotionRiskCalm(t *testing.T) {
	got := EmotionRisk("请问什么时候发货")
	if got.EmotionLevel != 0 || got.RiskScore != 0 {
		t.Fatalf("expected calm result, got %+v", got)
	}
	if got.RiskTags == nil || len(got.RiskTags) != 0 {
		t.Fatalf("expected empty non-nil tags, got %#v", got.RiskTags)
	}
}

func TestStrategyAndReply(t *testing.T) {
	afterSales := Strategy(analysis.IntentAnalysis{Intent: IntentAfterSales}, analysis.EmotionRiskAnalysis{})
	if afterSales.Strategy != StrategyAfterSales || afterSales.PromptTemplateName != "after_sales" {
		t.Fatalf("unexpected strategy: %+v", afterSales)
	}
	if Reply(afterSales) == defaultReply {
		t.Fatal("expected after-sales canned reply")
	}

	guide := Strategy(analysis.IntentAnalysis{Intent: IntentLogistics}, analysis.EmotionRiskAnalysis{})
	if guide.Strategy != StrategyGuide {
		t.Fatalf("expected guide strategy, got %s", guide.Strategy)
	}
	if Reply(guide) != defaultReply {
		t.Fatal("expected default reply for guide strategy")
	}
}

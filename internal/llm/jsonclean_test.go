package llm

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExtractJSON(t *testing.T) {
	cases := []struct {
		name    string
		content string
		want    string
	}{
		{name: "plain object", content: `{"intent":"商品咨询"}`, want: `{"intent":"商品咨询"}`},
		{name: "fenced block", content: "好的：\n```json\n{\"intent\": \"售后/退换货\"}\n```\n以上", want: `{"intent": "售后/退换货"}`},
		{name: "surrounding prose", content: `分析结果 {"emotion_level": 2} 完毕`, want: `{"emotion_level": 2}`},
		{name: "no object", content: "无法判断", want: ""},
		{name: "empty", content: "   ", want: ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, ExtractJSON(tc.content))
		})
	}
}

func TestDecodeJSON(t *testing.T) {
	var out struct {
		Strategy string `json:"strategy"`
	}
	require.NoError(t, DecodeJSON("```json\n{\"strategy\":\"升级人工\"}\n```", &out))
	require.Equal(t, "升级人工", out.Strategy)

	require.ErrorIs(t, DecodeJSON("没有 JSON", &out), ErrNoJSON)
	require.Error(t, DecodeJSON("{broken}", &out))
}

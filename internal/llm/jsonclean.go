package llm

import (
	"encoding/json"
	"errors"
	"regexp"
	"strings"
)

// ErrNoJSON 表示模型输出中找不到 JSON 对象。
var ErrNoJSON = errors.New("no json object in model output")

var fencedJSON = regexp.MustCompile("```json\\s*([\\s\\S]*?)\\s*```")

// ExtractJSON 从模型输出中取出 JSON 对象：优先 ```json 代码块，否则截取首个 { 到最后一个 }。
func ExtractJSON(content string) string {
	content = strings.TrimSpace(content)
	if match := fencedJSON.FindStringSubmatch(content); match != nil {
		content = strings.TrimSpace(match[1])
	}
	if json.Valid([]byte(content)) {
		return content
	}

	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start == -1 || end <= start {
		return ""
	}
	return content[start : end+1]
}

// DecodeJSON 清理模型输出并解码到 v。
func DecodeJSON(content string, v any) error {
	raw := ExtractJSON(content)
	if raw == "" {
		return ErrNoJSON
	}
	return json.Unmarshal([]byte(raw), v)
}

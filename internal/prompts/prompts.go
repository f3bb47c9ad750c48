package prompts

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed default_prompts.yaml
var defaultPromptsYAML []byte

// Set 汇总客服分析流程使用的五段提示词。
type Set struct {
	SystemRole         string `yaml:"system_role" json:"system_role"`
	IntentDetection    string `yaml:"intent_detection" json:"intent_detection"`
	EmotionRisk        string `yaml:"emotion_risk" json:"emotion_risk"`
	StrategyRouting    string `yaml:"strategy_routing" json:"strategy_routing"`
	ResponseGeneration string `yaml:"response_generation" json:"response_generation"`
}

// Default 返回内置提示词。
func Default() Set {
	var set Set
	if err := yaml.Unmarshal(defaultPromptsYAML, &set); err != nil {
		panic(fmt.Sprintf("prompts: embedded defaults are invalid: %v", err))
	}
	return set.trimmed()
}

// Load 读取 YAML 文件并用内置提示词补齐缺失项。path 为空时直接返回内置提示词。
func Load(path string) (Set, error) {
	defaults := Default()
	path = strings.TrimSpace(path)
	if path == "" {
		return defaults, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return Set{}, fmt.Errorf("read prompts file: %w", err)
	}

	var override Set
	if err := yaml.Unmarshal(raw, &override); err != nil {
		return Set{}, fmt.Errorf("parse prompts file %s: %w", path, err)
	}
	return override.trimmed().withDefaults(defaults), nil
}

// RenderResponse 将 {{placeholder}} 替换为给定值。
func (s Set) RenderResponse(values map[string]string) string {
	out := s.ResponseGeneration
	for key, value := range values {
		out = strings.ReplaceAll(out, "{{"+key+"}}", value)
	}
	return out
}

func (s Set) trimmed() Set {
	return Set{
		SystemRole:         strings.TrimSpace(s.SystemRole),
		IntentDetection:    strings.TrimSpace(s.IntentDetection),
		EmotionRisk:        strings.TrimSpace(s.EmotionRisk),
		StrategyRouting:    strings.TrimSpace(s.StrategyRouting),
		ResponseGeneration: strings.TrimSpace(s.ResponseGeneration),
	}
}

func (s Set) withDefaults(d Set) Set {
	if s.SystemRole == "" {
		s.SystemRole = d.SystemRole
	}
	if s.IntentDetection == "" {
		s.IntentDetection = d.IntentDetection
	}
	if s.EmotionRisk == "" {
		s.EmotionRisk = d.EmotionRisk
	}
	if s.StrategyRouting == "" {
		s.StrategyRouting = d.StrategyRouting
	}
	if s.ResponseGeneration == "" {
		s.ResponseGeneration = d.ResponseGeneration
	}
	return s
}

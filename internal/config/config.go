package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino/components/model"
)

// LLM 提供方。
const (
	ProviderMock   = "mock"
	ProviderOpenAI = "openai"
	ProviderAliyun = "aliyun"
	ProviderArk    = "ark"
)

// DashScopeBaseURL 是阿里云百炼的 OpenAI 兼容地址。
const DashScopeBaseURL = "https://dashscope.aliyuncs.com/compatible-mode/v1"

// Config 聚合后端服务的配置项。
type Config struct {
	Server  ServerConfig
	LLM     LLMConfig
	Prompts PromptConfig
}

// Load 从环境变量加载后端配置。
func Load() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	llm, err := loadLLMConfig()
	if err != nil {
		return nil, err
	}

	return &Config{
		Server:  server,
		LLM:     llm,
		Prompts: PromptConfig{Path: strings.TrimSpace(os.Getenv("PROMPTS_FILE"))},
	}, nil
}

// ServerConfig 描述 HTTP 服务配置。
type ServerConfig struct {
	Addr          string
	AllowedOrigin string
}

// loadServerConfig 解析服务器监听地址。
func loadServerConfig() (ServerConfig, error) {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "8000"
	}

	origin := getEnvOrDefault("ALLOWED_ORIGIN", "*")

	if strings.Contains(port, ":") {
		// 允许用户直接传入 ":8000" 或 "127.0.0.1:8000"。
		return ServerConfig{Addr: port, AllowedOrigin: origin}, nil
	}

	if strings.Contains(port, " ") {
		return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
	}

	return ServerConfig{Addr: ":" + port, AllowedOrigin: origin}, nil
}

// PromptConfig 指向可选的提示词覆盖文件。
type PromptConfig struct {
	Path string
}

// LLMConfig 描述大模型提供方及其凭证。
type LLMConfig struct {
	Provider        string
	OpenAIAPIKey    string
	OpenAIModel     string
	DashScopeAPIKey string
	AliModel        string
	ArkAPIKey       string
	ArkAccessKey    string
	ArkSecretKey    string
	ArkModel        string
	ArkBaseURL      string
	ArkRegion       string
	MaxTokens       *int
	Timeout         time.Duration

	// CacheSize 为意图与情绪结果的缓存容量，0 表示关闭。
	CacheSize int
}

// Enabled 表示所选提供方是否具备调用所需的凭证。
func (c LLMConfig) Enabled() bool {
	switch c.Provider {
	case ProviderOpenAI:
		return c.OpenAIAPIKey != ""
	case ProviderAliyun:
		return c.DashScopeAPIKey != ""
	case ProviderArk:
		return c.ArkModel != "" && (c.ArkAPIKey != "" || (c.ArkAccessKey != "" && c.ArkSecretKey != ""))
	default:
		return false
	}
}

// NewArkChatModel 使用配置创建一个 Ark 模型实例。
func (c LLMConfig) NewArkChatModel(ctx context.Context) (model.ChatModel, error) {
	if c.Provider != ProviderArk || !c.Enabled() {
		return nil, fmt.Errorf("Ark 凭证或模型配置缺失，至少提供 ARK_API_KEY + Model 或 AK/SK 组合")
	}

	var maxTokens *int
	if c.MaxTokens != nil {
		val := *c.MaxTokens
		maxTokens = &val
	}

	cfg := &ark.ChatModelConfig{
		BaseURL:   c.ArkBaseURL,
		Region:    c.ArkRegion,
		APIKey:    c.ArkAPIKey,
		AccessKey: c.ArkAccessKey,
		SecretKey: c.ArkSecretKey,
		Model:     c.ArkModel,
		MaxTokens: maxTokens,
	}
	return ark.NewChatModel(ctx, cfg)
}

func loadLLMConfig() (LLMConfig, error) {
	provider := strings.ToLower(getEnvOrDefault("LLM_PROVIDER", ProviderMock))
	switch provider {
	case ProviderMock, ProviderOpenAI, ProviderAliyun, ProviderArk:
	case "local":
		// 本地模型不再内置，退回启发式规则。
		provider = ProviderMock
	default:
		return LLMConfig{}, fmt.Errorf("invalid LLM_PROVIDER value: %q", provider)
	}

	maxTokens, err := parseOptionalIntEnv("LLM_MAX_TOKENS")
	if err != nil {
		return LLMConfig{}, err
	}

	cacheSize := 256
	if size, err := parseOptionalIntEnv("LLM_CACHE_SIZE"); err != nil {
		return LLMConfig{}, err
	} else if size != nil {
		cacheSize = *size
	}

	timeout := 15 * time.Second
	if seconds, err := parseOptionalFloatEnv("LLM_TIMEOUT_SECONDS"); err != nil {
		return LLMConfig{}, err
	} else if seconds != nil && *seconds > 0 {
		timeout = time.Duration(*seconds * float64(time.Second))
	}

	return LLMConfig{
		Provider:        provider,
		OpenAIAPIKey:    strings.TrimSpace(os.Getenv("OPENAI_API_KEY")),
		OpenAIModel:     getEnvOrDefault("OPENAI_MODEL", "gpt-3.5-turbo"),
		DashScopeAPIKey: strings.TrimSpace(os.Getenv("DASHSCOPE_API_KEY")),
		AliModel:        getEnvOrDefault("ALI_MODEL_ID", "qwen-turbo"),
		ArkAPIKey:       strings.TrimSpace(os.Getenv("ARK_API_KEY")),
		ArkAccessKey:    strings.TrimSpace(os.Getenv("ARK_ACCESS_KEY")),
		ArkSecretKey:    strings.TrimSpace(os.Getenv("ARK_SECRET_KEY")),
		ArkModel:        strings.TrimSpace(os.Getenv("Model")),
		ArkBaseURL:      getEnvOrDefault("ARK_BASE_URL", "https://ark.cn-beijing.volces.com/api/v3"),
		ArkRegion:       getEnvOrDefault("ARK_REGION", "cn-beijing"),
		MaxTokens:       maxTokens,
		Timeout:         timeout,
		CacheSize:       cacheSize,
	}, nil
}

// ClientConfig 描述终端客户端访问分析服务的方式。
type ClientConfig struct {
	BaseURL string
	Timeout time.Duration
}

// LoadClient 从环境变量加载客户端配置。
func LoadClient() (ClientConfig, error) {
	timeout := 30 * time.Second
	seconds, err := parseOptionalIntEnv("CHAT_API_TIMEOUT")
	if err != nil {
		return ClientConfig{}, err
	}
	if seconds != nil && *seconds > 0 {
		timeout = time.Duration(*seconds) * time.Second
	}

	return ClientConfig{
		BaseURL: getEnvOrDefault("CHAT_API_URL", "http://127.0.0.1:8000"),
		Timeout: timeout,
	}, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

// ParseBoolEnv 读取布尔环境变量，未设置时返回默认值。
func ParseBoolEnv(key string, defaultValue bool) (bool, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue, nil
	}

	val, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid %s value %q: %w", key, raw, err)
	}
	return val, nil
}

func parseOptionalFloatEnv(key string) (*float64, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}

func parseOptionalIntEnv(key string) (*int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.Atoi(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}

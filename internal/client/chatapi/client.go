package chatapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/calmguard/ecomcare/internal/model/analysis"
)

const (
	defaultBaseURL = "http://127.0.0.1:8000"
	chatPath       = "/api/chat"
	maxErrorBody   = 512
)

// Client 调用客服分析服务的 POST /api/chat 接口。
type Client struct {
	baseURL    string
	httpClient *http.Client
}

type Option func(*Client)

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

// NewClient 创建客户端。baseURL 为空时指向本地默认地址。
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimSpace(baseURL),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Chat 发送一条消息及其历史，返回完整的助手响应。
// 任何传输错误、非 2xx 状态或响应结构不符都会以 *ExchangeFailure 返回。
func (c *Client) Chat(ctx context.Context, req analysis.ChatRequest) (*analysis.BotResponse, error) {
	if req.History == nil {
		req.History = []analysis.HistoryEntry{}
	}
	body, err := json.Marshal(req)
	if err != nil {
		return nil, newFailure(FailureTransport, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, chatURL(c.baseURL), bytes.NewReader(body))
	if err != nil {
		return nil, newFailure(FailureTransport, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, newFailure(FailureTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &ExchangeFailure{
			Kind:       FailureStatus,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(snippet)),
		}
	}

	var out analysis.BotResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, newFailure(FailureDecode, err)
	}
	if err := out.Validate(); err != nil {
		return nil, newFailure(FailureDecode, err)
	}
	return &out, nil
}

func chatURL(base string) string {
	base = strings.TrimRight(strings.TrimSpace(base), "/")
	if base == "" {
		base = defaultBaseURL
	}
	base = strings.TrimSuffix(base, chatPath)
	return base + chatPath
}

// IsExchangeFailure 判断 err 是否为交互失败。
func IsExchangeFailure(err error) bool {
	var failure *ExchangeFailure
	return errors.As(err, &failure)
}

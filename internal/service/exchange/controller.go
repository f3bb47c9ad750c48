package exchange

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/calmguard/ecomcare/internal/model/analysis"
	"github.com/calmguard/ecomcare/internal/model/chat"
	"github.com/calmguard/ecomcare/internal/service/conversation"
)

// FallbackApology 是交互失败时展示给用户的固定回复。
const FallbackApology = "抱歉，系统暂时繁忙，请稍后再试。"

// ErrEmptyInput 与 conversation.ErrEmptyInput 相同，便于调用方只依赖本包。
var ErrEmptyInput = conversation.ErrEmptyInput

// Transport 负责与远端分析服务完成一次请求/响应。
type Transport interface {
	Chat(ctx context.Context, req analysis.ChatRequest) (*analysis.BotResponse, error)
}

// Controller 驱动每次用户输入对应的一次交互，并保证会话日志在任何结果下都保持一致。
type Controller struct {
	store     *conversation.Store
	transport Transport
	inflight  atomic.Int32
}

// NewController 创建交互控制器。
func NewController(store *conversation.Store, transport Transport) *Controller {
	return &Controller{store: store, transport: transport}
}

// Store 返回控制器所维护的会话。
func (c *Controller) Store() *conversation.Store {
	return c.store
}

// InFlight 表示是否有交互正在等待远端响应。该标志仅供界面参考，不阻止并发提交。
func (c *Controller) InFlight() bool {
	return c.inflight.Load() > 0
}

// Outcome 记录一次交互产生的两条消息。Failure 仅用于展示状态，交互失败时已被转换为兜底回复。
type Outcome struct {
	UserTurn      chat.Turn
	AssistantTurn chat.Turn
	Failure       error
}

// Failed 表示交互是否走了兜底路径。
func (o Outcome) Failed() bool {
	return o.Failure != nil
}

// Exchange 是已追加用户消息、尚未取得响应的一次交互。
type Exchange struct {
	c        *Controller
	request  analysis.ChatRequest
	userTurn chat.Turn

	once    sync.Once
	outcome Outcome
}

// UserTurn 返回本次交互追加的用户消息。
func (e *Exchange) UserTurn() chat.Turn {
	return e.userTurn
}

// Submit 同步完成一次完整交互。只有空输入会返回错误。
func (c *Controller) Submit(ctx context.Context, rawInput string) (Outcome, error) {
	ex, err := c.Begin(rawInput)
	if err != nil {
		return Outcome{}, err
	}
	return ex.Run(ctx), nil
}

// Begin 校验输入、记录历史快照、追加用户消息并进入等待状态。
// 历史快照先于用户消息追加，因此不会包含本次提交的消息。
func (c *Controller) Begin(rawInput string) (*Exchange, error) {
	if strings.TrimSpace(rawInput) == "" {
		return nil, ErrEmptyInput
	}

	history := c.store.SnapshotHistory()
	userTurn, err := c.store.AppendUserTurn(rawInput)
	if err != nil {
		return nil, err
	}

	c.inflight.Add(1)
	return &Exchange{
		c:        c,
		request:  analysis.ChatRequest{Message: rawInput, History: history},
		userTurn: userTurn,
	}, nil
}

// Run 等待远端响应并追加助手消息。重复调用返回首次结果。
func (e *Exchange) Run(ctx context.Context) Outcome {
	e.once.Do(func() {
		defer e.c.inflight.Add(-1)
		e.outcome = e.run(ctx)
	})
	return e.outcome
}

func (e *Exchange) run(ctx context.Context) Outcome {
	outcome := Outcome{UserTurn: e.userTurn}

	resp, err := e.c.call(ctx, e.request)
	if err != nil {
		log.Printf("[exchange] request failed, using fallback reply: %v", err)
		outcome.Failure = err
		outcome.AssistantTurn = e.c.store.AppendAssistantTurn(FallbackApology, nil)
		return outcome
	}

	payload := resp.Payload()
	outcome.AssistantTurn = e.c.store.AppendAssistantTurn(resp.Content, &payload)
	log.Printf("[exchange] completed turn=%s intent=%s strategy=%s", outcome.AssistantTurn.ID, payload.Intent.Intent, payload.Strategy.Strategy)
	return outcome
}

func (c *Controller) call(ctx context.Context, req analysis.ChatRequest) (resp *analysis.BotResponse, err error) {
	defer func() {
		if r := recover(); r != nil {
			resp = nil
			err = fmt.Errorf("transport panic: %v", r)
		}
	}()

	if c.transport == nil {
		return nil, fmt.Errorf("transport not configured")
	}
	resp, err = c.transport.Chat(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := resp.Validate(); err != nil {
		return nil, err
	}
	return resp, nil
}

package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/calmguard/ecomcare/internal/service/exchange"
)

const maxLogLines = 50

// Model 是审计终端的 bubbletea 模型：左侧对话时间线，右侧分析面板。
type Model struct {
	ctx        context.Context
	controller *exchange.Controller
	endpoint   string

	statusLine string
	logs       []string

	width  int
	height int

	input    textarea.Model
	timeline viewport.Model
	sidebar  viewport.Model
	spinner  spinner.Model

	theme uiTheme
}

type exchangeDoneMsg struct {
	outcome exchange.Outcome
}

// New 创建模型。ctx 用于取消进行中的请求，endpoint 仅用于显示。
func New(ctx context.Context, controller *exchange.Controller, endpoint string) Model {
	if ctx == nil {
		ctx = context.Background()
	}

	input := textarea.New()
	input.Placeholder = "请输入您的投诉或咨询内容..."
	input.ShowLineNumbers = false
	input.CharLimit = 2000
	input.SetHeight(3)
	input.KeyMap.InsertNewline.SetKeys("alt+enter", "ctrl+j")
	input.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Points
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#1677ff"))

	timeline := viewport.New(0, 0)
	timeline.MouseWheelEnabled = true
	timeline.MouseWheelDelta = 4
	sidebar := viewport.New(0, 0)
	sidebar.MouseWheelEnabled = true
	sidebar.MouseWheelDelta = 4

	return Model{
		ctx:        ctx,
		controller: controller,
		endpoint:   endpoint,
		statusLine: "ready",
		logs:       []string{},
		input:      input,
		timeline:   timeline,
		sidebar:    sidebar,
		spinner:    sp,
		theme:      newTheme(),
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(textarea.Blink, m.spinner.Tick)
}

// exchangeCmd 在后台等待远端响应，完成后把结果送回 Update。
func (m Model) exchangeCmd(ex *exchange.Exchange) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		return exchangeDoneMsg{outcome: ex.Run(ctx)}
	}
}

func (m *Model) appendLog(line string) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return
	}
	m.logs = append(m.logs, fmt.Sprintf("%s %s", time.Now().Format("15:04:05"), compactSingleLine(trimmed, 220)))
	if len(m.logs) > maxLogLines {
		m.logs = m.logs[len(m.logs)-maxLogLines:]
	}
}

func (m *Model) logError(err error) {
	if err == nil {
		return
	}
	m.appendLog("error: " + err.Error())
	m.statusLine = "error: " + compactSingleLine(err.Error(), 160)
}

package tui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/calmguard/ecomcare/internal/analysis/escalation"
	"github.com/calmguard/ecomcare/internal/service/exchange"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	switch msg := msg.(type) {
	case exchangeDoneMsg:
		out := msg.outcome
		if out.Failed() {
			m.logError(out.Failure)
			m.statusLine = "request failed · fallback reply shown"
		} else {
			m.statusLine = "reply received"
			if a := out.AssistantTurn.Analysis; a != nil {
				m.appendLog(fmt.Sprintf("intent=%s emotion=%d strategy=%s", a.Intent.Intent, a.EmotionRisk.EmotionLevel, a.Strategy.Strategy))
				if escalation.RequiresEscalation(a.Strategy) {
					m.appendLog("escalation flagged on turn " + out.AssistantTurn.ID)
				}
			}
		}
		m.renderPanes()
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		m.renderPanes()
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)
	case tea.MouseMsg:
		var cmd tea.Cmd
		m.timeline, cmd = m.timeline.Update(msg)
		cmds = append(cmds, cmd)
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "enter":
			if cmd := m.submit(); cmd != nil {
				cmds = append(cmds, cmd)
			}
			return m, tea.Batch(cmds...)
		case "ctrl+up", "ctrl+p":
			m.moveSelection(-1)
			return m, tea.Batch(cmds...)
		case "ctrl+down", "ctrl+n":
			m.moveSelection(1)
			return m, tea.Batch(cmds...)
		case "pgup":
			m.timeline.LineUp(8)
			return m, tea.Batch(cmds...)
		case "pgdown":
			m.timeline.LineDown(8)
			return m, tea.Batch(cmds...)
		case "shift+up":
			m.sidebar.LineUp(4)
			return m, tea.Batch(cmds...)
		case "shift+down":
			m.sidebar.LineDown(4)
			return m, tea.Batch(cmds...)
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

// submit 同步追加用户消息并返回等待响应的命令。等待期间的回车被忽略。
func (m *Model) submit() tea.Cmd {
	if m.controller.InFlight() {
		m.statusLine = "waiting for reply..."
		return nil
	}

	ex, err := m.controller.Begin(m.input.Value())
	if errors.Is(err, exchange.ErrEmptyInput) {
		return nil
	}
	if err != nil {
		m.logError(err)
		return nil
	}

	m.input.Reset()
	m.statusLine = "sending..."
	m.appendLog("sent turn " + ex.UserTurn().ID)
	m.timeline.GotoBottom()
	m.renderPanes()
	return m.exchangeCmd(ex)
}

// moveSelection 在带分析数据的助手消息之间移动审计面板的焦点。
func (m *Model) moveSelection(delta int) {
	store := m.controller.Store()
	turns := store.Turns()

	var selectable []string
	for _, turn := range turns {
		if turn.Selectable() {
			selectable = append(selectable, turn.ID)
		}
	}
	if len(selectable) == 0 {
		return
	}

	_, current, ok := store.Inspected()
	idx := len(selectable)
	if ok {
		for i, id := range selectable {
			if id == current {
				idx = i
				break
			}
		}
	}

	next := idx + delta
	if next < 0 {
		next = 0
	}
	if next >= len(selectable) {
		next = len(selectable) - 1
	}
	if ok && selectable[next] == current {
		return
	}
	if store.SelectInspected(selectable[next]) {
		m.statusLine = fmt.Sprintf("inspecting reply %d/%d", next+1, len(selectable))
		m.renderPanes()
	}
}

func (m *Model) resize() {
	contentWidth := maxInt(40, m.width-4)
	m.input.SetWidth(maxInt(20, contentWidth-4))
}

func compactSingleLine(text string, limit int) string {
	compact := strings.Join(strings.Fields(text), " ")
	return truncate(compact, limit)
}

func truncate(text string, limit int) string {
	runes := []rune(text)
	if limit <= 0 {
		return ""
	}
	if len(runes) <= limit {
		return text
	}
	if limit <= 3 {
		return string(runes[:limit])
	}
	return string(runes[:limit-3]) + "..."
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

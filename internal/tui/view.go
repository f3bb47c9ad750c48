package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/calmguard/ecomcare/internal/analysis/escalation"
	"github.com/calmguard/ecomcare/internal/model/analysis"
	"github.com/calmguard/ecomcare/internal/model/chat"
)

const riskDangerThreshold = 50

func (m Model) View() string {
	header := m.renderHeader()
	content := m.renderContent()
	input := m.renderInput()
	footer := m.renderFooter()
	return m.theme.root.Render(lipgloss.JoinVertical(lipgloss.Left, header, content, input, footer))
}

func (m Model) renderHeader() string {
	title := m.theme.header.Render("EcomCare 智能客服系统")
	tag := m.theme.headerTag.Render("电商客服 & 售后处理")
	endpoint := ""
	if m.endpoint != "" {
		endpoint = " " + m.theme.muted.Render(m.endpoint)
	}
	return title + " " + tag + endpoint
}

func (m Model) renderContent() string {
	left := m.theme.panel.
		Width(m.timeline.Width + 2).
		Render(m.theme.panelTitle.Render("对话") + "\n" + m.timeline.View())
	right := m.theme.panel.
		Width(m.sidebar.Width + 2).
		Render(m.theme.panelTitle.Render("系统分析面板") + "\n" + m.sidebar.View())
	return lipgloss.JoinHorizontal(lipgloss.Top, left, " ", right)
}

func (m Model) renderInput() string {
	contentWidth := maxInt(40, m.width-4)
	inputView := m.input.View()
	if m.controller.InFlight() {
		inputView = m.spinner.View() + " 客服正在输入...\n" + inputView
	}
	return m.theme.inputPanel.Width(contentWidth).Render(inputView)
}

func (m Model) renderFooter() string {
	contentWidth := maxInt(40, m.width-4)
	statusStyle := m.theme.status
	lower := strings.ToLower(m.statusLine)
	if strings.Contains(lower, "failed") || strings.Contains(lower, "error") {
		statusStyle = m.theme.errorStatus
	}
	line := statusStyle.Render(compactSingleLine(m.statusLine, 180))
	hints := m.theme.muted.Render("Keys: Enter send · Alt+Enter/Ctrl+J newline · Ctrl+↑/↓ or Ctrl+P/N inspect reply · PgUp/PgDn scroll · Ctrl+C quit")
	return m.theme.footer.Width(contentWidth).Render(line + "\n" + hints)
}

func (m *Model) renderPanes() {
	prevTimelineYOffset := m.timeline.YOffset
	prevTimelineAtBottom := m.timeline.AtBottom()

	contentHeight := maxInt(8, m.height-12)
	contentWidth := maxInt(40, m.width-4)
	leftWidth := int(float64(contentWidth) * 0.62)
	rightWidth := contentWidth - leftWidth - 1
	if rightWidth < 32 {
		rightWidth = 32
		leftWidth = contentWidth - rightWidth - 1
	}

	m.timeline.Width = maxInt(20, leftWidth-4)
	m.timeline.Height = maxInt(5, contentHeight-3)
	m.sidebar.Width = maxInt(20, rightWidth-4)
	m.sidebar.Height = maxInt(5, contentHeight-3)

	m.timeline.SetContent(m.renderTimeline())
	if prevTimelineAtBottom {
		m.timeline.GotoBottom()
	} else {
		m.timeline.SetYOffset(prevTimelineYOffset)
	}
	m.sidebar.SetContent(m.renderSidebar())
	m.sidebar.GotoTop()
}

func (m *Model) renderTimeline() string {
	store := m.controller.Store()
	_, inspectedID, _ := store.Inspected()
	width := maxInt(24, m.timeline.Width-2)

	var b strings.Builder
	for _, turn := range store.Turns() {
		b.WriteString(m.turnHeader(turn, turn.ID == inspectedID))
		b.WriteString("\n")
		b.WriteString(wrapText(turn.Content, width))
		b.WriteString("\n\n")
	}
	if m.controller.InFlight() {
		b.WriteString(m.theme.muted.Render("… 正在分析"))
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m *Model) turnHeader(turn chat.Turn, inspected bool) string {
	label := "客服"
	if turn.Role == chat.RoleUser {
		label = "用户"
	}
	style, ok := m.theme.chatRole[string(turn.Role)]
	if !ok {
		style = m.theme.muted
	}
	header := style.Render(fmt.Sprintf("%s [%s]", turn.CreatedAt.Format("15:04:05"), label))
	if turn.Selectable() {
		marker := m.theme.muted.Render(" ◆ 分析")
		if inspected {
			marker = m.theme.selected.Render(" ◆ 正在查看")
		}
		header += marker
	}
	return header
}

func (m *Model) renderSidebar() string {
	payload, _, ok := m.controller.Store().Inspected()
	if !ok {
		return m.theme.muted.Render("暂无分析数据。发送消息后，最新回复的分析会显示在这里。")
	}
	return m.renderAnalysis(payload)
}

func (m *Model) renderAnalysis(p analysis.Payload) string {
	width := maxInt(20, m.sidebar.Width-2)
	t := m.theme

	var b strings.Builder
	b.WriteString(t.sectionHead.Render("1. 意图识别"))
	b.WriteString("\n")
	b.WriteString(t.intentTag.Render(p.Intent.Intent))
	b.WriteString("\n")
	b.WriteString(t.label.Render("置信度: ") + t.value.Render(formatNumber(p.Intent.Confidence)))
	b.WriteString("\n")
	if reasoning := strings.TrimSpace(p.Intent.Reasoning); reasoning != "" {
		b.WriteString(t.muted.Render(wrapText(reasoning, width)))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(t.sectionHead.Render("2. 情绪与风险评估"))
	b.WriteString("\n")
	level := p.EmotionRisk.EmotionLevel
	b.WriteString(t.label.Render("情绪等级: ") + t.emotionStyle(level).Render(fmt.Sprintf("%d / 3", level)))
	b.WriteString("\n")
	scoreStyle := t.success
	if p.EmotionRisk.RiskScore > riskDangerThreshold {
		scoreStyle = t.danger
	}
	b.WriteString(t.label.Render("风险评分: ") + scoreStyle.Render(formatNumber(p.EmotionRisk.RiskScore)))
	b.WriteString("\n")
	b.WriteString(t.label.Render("风险标签: "))
	if tags := p.EmotionRisk.DisplayTags(); len(tags) > 0 {
		rendered := make([]string, 0, len(tags))
		for _, tag := range tags {
			rendered = append(rendered, t.riskTag.Render(tag))
		}
		b.WriteString("\n")
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, rendered...))
	} else {
		b.WriteString(t.muted.Render("无"))
	}
	b.WriteString("\n")

	b.WriteString("\n")
	b.WriteString(t.sectionHead.Render("3. 策略路由"))
	b.WriteString("\n")
	b.WriteString(t.strategyTag.Render(p.Strategy.Strategy))
	b.WriteString("\n")
	b.WriteString(t.label.Render("Prompt 模板: ") + t.code.Render(p.Strategy.PromptTemplateName))
	b.WriteString("\n")
	if reasoning := strings.TrimSpace(p.Strategy.Reasoning); reasoning != "" {
		b.WriteString(t.muted.Render(wrapText(reasoning, width)))
		b.WriteString("\n")
	}

	if escalation.RequiresEscalation(p.Strategy) {
		b.WriteString("\n")
		b.WriteString(t.warning.Width(width).Render("⚠ 触发人工升级\n当前对话已被标记，建议人工立即介入处理。"))
	}
	return strings.TrimRight(b.String(), "\n")
}

func formatNumber(v float64) string {
	return fmt.Sprintf("%g", v)
}

// wrapText 按显示宽度折行，中文没有空格分词时同样生效。
func wrapText(text string, width int) string {
	if width <= 0 {
		return text
	}
	return lipgloss.NewStyle().Width(width).Render(text)
}

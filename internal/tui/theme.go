package tui

import "github.com/charmbracelet/lipgloss"

type uiTheme struct {
	root        lipgloss.Style
	header      lipgloss.Style
	headerTag   lipgloss.Style
	panel       lipgloss.Style
	panelTitle  lipgloss.Style
	sectionHead lipgloss.Style
	label       lipgloss.Style
	value       lipgloss.Style
	muted       lipgloss.Style
	footer      lipgloss.Style
	status      lipgloss.Style
	errorStatus lipgloss.Style
	inputPanel  lipgloss.Style
	selected    lipgloss.Style
	intentTag   lipgloss.Style
	strategyTag lipgloss.Style
	riskTag     lipgloss.Style
	code        lipgloss.Style
	danger      lipgloss.Style
	success     lipgloss.Style
	warning     lipgloss.Style
	emotion     []lipgloss.Style
	chatRole    map[string]lipgloss.Style
}

func newTheme() uiTheme {
	navy := lipgloss.Color("#001529")
	blue := lipgloss.Color("#1677ff")
	purple := lipgloss.Color("#722ed1")
	green := lipgloss.Color("#52c41a")
	orange := lipgloss.Color("#fa8c16")
	volcano := lipgloss.Color("#fa541c")
	red := lipgloss.Color("#f5222d")
	gold := lipgloss.Color("#faad14")
	text := lipgloss.Color("#f0f0f0")
	muted := lipgloss.Color("#8c8c8c")
	border := lipgloss.Color("#434343")

	return uiTheme{
		root: lipgloss.NewStyle().
			Foreground(text).
			Padding(0, 1),
		header: lipgloss.NewStyle().
			Background(navy).
			Foreground(text).
			Bold(true).
			Padding(0, 1),
		headerTag: lipgloss.NewStyle().
			Background(blue).
			Foreground(text).
			Padding(0, 1),
		panel: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(border).
			Padding(0, 1),
		panelTitle: lipgloss.NewStyle().
			Foreground(blue).
			Bold(true),
		sectionHead: lipgloss.NewStyle().
			Foreground(text).
			Bold(true).
			Underline(true),
		label: lipgloss.NewStyle().Foreground(text).Bold(true),
		value: lipgloss.NewStyle().Foreground(text),
		muted: lipgloss.NewStyle().Foreground(muted),
		footer: lipgloss.NewStyle().
			Foreground(muted).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(border).
			Padding(0, 1),
		status:      lipgloss.NewStyle().Foreground(blue).Bold(true),
		errorStatus: lipgloss.NewStyle().Foreground(red).Bold(true),
		inputPanel: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(blue).
			Padding(0, 1),
		selected: lipgloss.NewStyle().
			Foreground(gold).
			Bold(true),
		intentTag: lipgloss.NewStyle().
			Background(blue).
			Foreground(text).
			Bold(true).
			Padding(0, 1),
		strategyTag: lipgloss.NewStyle().
			Background(purple).
			Foreground(text).
			Bold(true).
			Padding(0, 1),
		riskTag: lipgloss.NewStyle().
			Foreground(red).
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(red).
			Padding(0, 1),
		code:    lipgloss.NewStyle().Foreground(orange),
		danger:  lipgloss.NewStyle().Foreground(red).Bold(true),
		success: lipgloss.NewStyle().Foreground(green).Bold(true),
		warning: lipgloss.NewStyle().
			Foreground(gold).
			BorderStyle(lipgloss.ThickBorder()).
			BorderForeground(gold).
			Padding(0, 1),
		emotion: []lipgloss.Style{
			lipgloss.NewStyle().Foreground(green).Bold(true),
			lipgloss.NewStyle().Foreground(orange).Bold(true),
			lipgloss.NewStyle().Foreground(volcano).Bold(true),
			lipgloss.NewStyle().Foreground(red).Bold(true),
		},
		chatRole: map[string]lipgloss.Style{
			"user":      lipgloss.NewStyle().Foreground(green).Bold(true),
			"assistant": lipgloss.NewStyle().Foreground(blue).Bold(true),
		},
	}
}

// emotionStyle 0 级为绿色，3 级及以上为红色。
func (t uiTheme) emotionStyle(level int) lipgloss.Style {
	if level < 0 {
		level = 0
	}
	if level >= len(t.emotion) {
		level = len(t.emotion) - 1
	}
	return t.emotion[level]
}

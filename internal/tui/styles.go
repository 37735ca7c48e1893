package tui

import "github.com/charmbracelet/lipgloss"

// Booth palette.
const (
	colorFelt   = lipgloss.Color("#04B575")
	colorChalk  = lipgloss.Color("#FAFAFA")
	colorMuted  = lipgloss.Color("#626262")
	colorBrass  = lipgloss.Color("#FFD700")
	colorRed    = lipgloss.Color("#FF6B6B")
	colorSage   = lipgloss.Color("#96CEB4")
	colorCream  = lipgloss.Color("#FFEAA7")
	colorBanner = lipgloss.Color("#7D56F4")
)

func bold(c lipgloss.Color) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(c).Bold(true)
}

var (
	HeaderStyle   = bold(colorChalk).Background(colorBanner).Padding(0, 1)
	HandInfoStyle = bold(colorSage)
	ActionsStyle  = bold(colorBrass)

	// Aces carry the top value, so they stand out from the other ranks.
	AceCardStyle    = bold(colorRed)
	CardStyle       = bold(colorChalk)
	HiddenCardStyle = lipgloss.NewStyle().Foreground(colorMuted)

	SuccessStyle = bold(colorSage)
	ErrorStyle   = bold(colorRed)
	WarningStyle = bold(colorCream)
	InfoStyle    = lipgloss.NewStyle().Foreground(colorMuted)

	promptStyle = bold(colorFelt)
	inputStyle  = lipgloss.NewStyle().Foreground(colorChalk)
)

// paneStyle borders a pane, highlighting it when it holds focus.
func paneStyle(focused bool) lipgloss.Style {
	border := colorMuted
	if focused {
		border = colorFelt
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border)
}

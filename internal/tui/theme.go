package tui

import "github.com/charmbracelet/lipgloss"

// Catppuccin Mocha palette.
const (
	colorPeach    lipgloss.Color = "#fab387"
	colorYellow   lipgloss.Color = "#f9e2af"
	colorGreen    lipgloss.Color = "#a6e3a1"
	colorRed      lipgloss.Color = "#f38ba8"
	colorTeal     lipgloss.Color = "#94e2d5"
	colorLavender lipgloss.Color = "#b4befe"
	colorText     lipgloss.Color = "#cdd6f4"
	colorOverlay0 lipgloss.Color = "#6c7086"
	colorSurface1 lipgloss.Color = "#45475a"
	colorSurface0 lipgloss.Color = "#313244"
)

const (
	colorFocus    = colorLavender
	colorError    = colorRed
	colorInfo     = colorTeal
	colorMuted    = colorOverlay0
	colorStrong   = colorGreen
	colorModerate = colorYellow
)

var (
	titleStyle     = lipgloss.NewStyle().Bold(true).Foreground(colorPeach)
	headerStyle    = lipgloss.NewStyle().Bold(true).Foreground(colorText).Underline(true)
	labelStyle     = lipgloss.NewStyle().Foreground(colorMuted)
	valueStyle     = lipgloss.NewStyle().Foreground(colorText)
	selectedRow    = lipgloss.NewStyle().Background(colorSurface0)
	focusCell      = lipgloss.NewStyle().Background(colorSurface1).Foreground(colorFocus).Bold(true)
	strongLeader   = lipgloss.NewStyle().Foreground(colorStrong).Bold(true)
	moderateLeader = lipgloss.NewStyle().Foreground(colorModerate)
	statusStyle    = lipgloss.NewStyle().Foreground(colorInfo)
	errorStyle     = lipgloss.NewStyle().Foreground(colorError)
	modalStyle     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorFocus).Padding(0, 1)
)

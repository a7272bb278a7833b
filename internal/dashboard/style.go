package dashboard

import "github.com/charmbracelet/lipgloss"

var (
	styleBanner  = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)  // Green
	styleHeading = lipgloss.NewStyle().Foreground(lipgloss.Color("226")).Bold(true) // Yellow
	styleBorder  = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))             // Blue
	styleLabel   = lipgloss.NewStyle().Foreground(lipgloss.Color("51"))             // Cyan
	styleValue   = lipgloss.NewStyle().Foreground(lipgloss.Color("226")).Bold(true)
	styleAccent  = lipgloss.NewStyle().Foreground(lipgloss.Color("226"))
	styleAlarm   = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true) // Red
	styleGood    = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	styleBad     = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	styleDim     = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Faint(true)
)

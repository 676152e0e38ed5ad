package main

import "github.com/charmbracelet/lipgloss"

var (
	colorFgPrimary = lipgloss.Color("#ABB2BF")
	colorFgMuted   = lipgloss.Color("#636B78")
	colorRed       = lipgloss.Color("#E06C75")
	colorGreen     = lipgloss.Color("#98C379")
	colorYellow    = lipgloss.Color("#E5C07B")
	colorMagenta   = lipgloss.Color("#C678DD")
	colorBorder    = lipgloss.Color("#3F4451")
)

var (
	headerStyle = lipgloss.NewStyle().
			Foreground(colorMagenta).
			Bold(true)

	frontStyle = lipgloss.NewStyle().
			Foreground(colorFgPrimary).
			Bold(true).
			Padding(1, 4).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder)

	promptStyle = lipgloss.NewStyle().
			Foreground(colorFgMuted).
			Italic(true)

	correctStyle = lipgloss.NewStyle().
			Foreground(colorGreen).
			Bold(true)

	incorrectStyle = lipgloss.NewStyle().
			Foreground(colorRed).
			Bold(true)

	messageStyle = lipgloss.NewStyle().
			Foreground(colorYellow)

	notesStyle = lipgloss.NewStyle().
			Foreground(colorFgMuted).
			PaddingLeft(2)

	helpStyle = lipgloss.NewStyle().
			Foreground(colorFgMuted)
)

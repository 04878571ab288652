package main

import (
	"github.com/charmbracelet/lipgloss"
)

var (
	colorPass = lipgloss.AdaptiveColor{Light: "#86b300", Dark: "#c2d94c"}
	colorWarn = lipgloss.AdaptiveColor{Light: "#f2ae49", Dark: "#ffb454"}
	colorFail = lipgloss.AdaptiveColor{Light: "#f07171", Dark: "#f07178"}
	colorMute = lipgloss.AdaptiveColor{Light: "#828c99", Dark: "#6c7680"}
	colorHead = lipgloss.AdaptiveColor{Light: "#399ee6", Dark: "#59c2ff"}

	passStyle    = lipgloss.NewStyle().Foreground(colorPass)
	warnStyle    = lipgloss.NewStyle().Foreground(colorWarn)
	failStyle    = lipgloss.NewStyle().Foreground(colorFail)
	mutedStyle   = lipgloss.NewStyle().Foreground(colorMute)
	headingStyle = lipgloss.NewStyle().Bold(true).Foreground(colorHead)
)

const (
	iconPass = "✓"
	iconWarn = "⚠"
	iconFail = "✗"
)

func renderHeading(s string) string {
	return headingStyle.Render(s)
}

func renderMuted(s string) string {
	return mutedStyle.Render(s)
}

// renderIcon picks the status icon for a doctor check
func renderIcon(r checkResult) string {
	switch {
	case r.error:
		return failStyle.Render(iconFail)
	case r.warning:
		return warnStyle.Render(iconWarn)
	}
	return passStyle.Render(iconPass)
}

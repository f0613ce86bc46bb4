package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// BgStyle renders text segments onto one fixed background so joins and
// padding never show the terminal color through.
type BgStyle struct {
	color lipgloss.Color
	base  lipgloss.Style
}

// NewBgStyle returns a BgStyle for color.
func NewBgStyle(color string) BgStyle {
	c := lipgloss.Color(color)
	return BgStyle{color: c, base: lipgloss.NewStyle().Background(c)}
}

// Render draws s with style on the background.
func (b BgStyle) Render(s string, style lipgloss.Style) string {
	return style.Background(b.color).Render(s)
}

// Space is one background-filled space.
func (b BgStyle) Space() string {
	return b.base.Render(" ")
}

// Spaces is n background-filled spaces.
func (b BgStyle) Spaces(n int) string {
	if n <= 0 {
		return ""
	}
	return b.base.Render(strings.Repeat(" ", n))
}

// Sep renders a separator on the background.
func (b BgStyle) Sep(s string) string {
	return b.base.Render(s)
}

// Join concatenates parts with sep.
func (b BgStyle) Join(parts []string, sep string) string {
	return strings.Join(parts, sep)
}

// FillLine pads line with background to width.
func (b BgStyle) FillLine(line string, width int) string {
	pad := width - lipgloss.Width(line)
	if pad <= 0 {
		return line
	}
	return line + b.Spaces(pad)
}

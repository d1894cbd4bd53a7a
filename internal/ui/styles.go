package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/vietdv277/keyrot/pkg/types"
)

// Box drawing characters
const (
	TopLeft     = "╭"
	TopRight    = "╮"
	BottomLeft  = "╰"
	BottomRight = "╯"
	Horizontal  = "─"
	Vertical    = "│"
	LeftT       = "├"
	RightT      = "┤"
	TopT        = "┬"
	BottomT     = "┴"
	Cross       = "┼"
)

// Color palette
const (
	ColorBorder  = "240"
	ColorHeader  = "252"
	ColorKey     = "214"
	ColorName    = "81"
	ColorSuccess = "82"
	ColorWarn    = "214"
	ColorError   = "196"
	ColorMuted   = "240"
	ColorHint    = "245"
)

// Keys older than this are highlighted
const staleKeyAge = 90 * 24 * time.Hour

// Shared styles
var (
	BorderStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorBorder))
	HeaderStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(ColorHeader))
	KeyStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorKey))
	NameStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorName))
	SuccessStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorSuccess))
	WarnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorWarn))
	ErrorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorError))
	MutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorMuted))
	HintStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorHint))
)

// padRight pads a string to the specified display width using runewidth
func padRight(s string, width int) string {
	sw := runewidth.StringWidth(s)
	if sw >= width {
		return runewidth.Truncate(s, width, "...")
	}
	return s + strings.Repeat(" ", width-sw)
}

// FormatAge renders the age of a profile's key in whole days
func FormatAge(p types.Profile, now time.Time) string {
	if p.CreateDate == nil {
		return "-"
	}
	days := int(p.Age(now).Hours() / 24)
	if days < 1 {
		return "<1d"
	}
	return fmt.Sprintf("%dd", days)
}

// ageStyle highlights stale keys
func ageStyle(p types.Profile, now time.Time) lipgloss.Style {
	if p.Age(now) > staleKeyAge {
		return WarnStyle
	}
	return MutedStyle
}

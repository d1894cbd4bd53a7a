package ui

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-runewidth"

	"github.com/vietdv277/keyrot/pkg/types"
)

const (
	profileListHeight = 10
	minWidth          = 70
	maxWidth          = 120
)

// ErrCancelled is returned when the user leaves the selector without confirming
var ErrCancelled = errors.New("selection cancelled")

// ProfileModel represents the bubbletea model for choosing profiles to rotate
type ProfileModel struct {
	profiles     []types.Profile
	filtered     []types.Profile
	chosen       map[string]bool
	cursor       int
	offset       int
	search       string
	limit        int
	confirmed    bool
	quitting     bool
	cancelled    bool
	termWidth    int
	contentWidth int
	now          time.Time
}

// NewProfileModel creates a new profile selector model. limit is only shown
// as a hint; choosing more is rejected by the caller.
func NewProfileModel(profiles []types.Profile, limit int, now time.Time) ProfileModel {
	m := ProfileModel{
		profiles:  profiles,
		filtered:  profiles,
		chosen:    make(map[string]bool),
		limit:     limit,
		termWidth: 80,
		now:       now,
	}
	m.calculateWidths()
	return m
}

func (m *ProfileModel) calculateWidths() {
	m.contentWidth = m.termWidth - 2
	if m.contentWidth < minWidth {
		m.contentWidth = minWidth
	}
	if m.contentWidth > maxWidth {
		m.contentWidth = maxWidth
	}
}

// Init implements tea.Model
func (m ProfileModel) Init() tea.Cmd {
	return tea.WindowSize()
}

// Update implements tea.Model
func (m ProfileModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.termWidth = msg.Width
		m.calculateWidths()
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.quitting = true
			m.cancelled = true
			return m, tea.Quit

		case tea.KeyEnter:
			m.confirmed = true
			m.quitting = true
			return m, tea.Quit

		case tea.KeySpace:
			if len(m.filtered) > 0 {
				name := m.filtered[m.cursor].Name
				m.chosen[name] = !m.chosen[name]
			}

		case tea.KeyUp:
			if m.cursor > 0 {
				m.cursor--
				if m.cursor < m.offset {
					m.offset = m.cursor
				}
			}

		case tea.KeyDown:
			if m.cursor < len(m.filtered)-1 {
				m.cursor++
				if m.cursor >= m.offset+profileListHeight {
					m.offset = m.cursor - profileListHeight + 1
				}
			}

		case tea.KeyBackspace:
			if len(m.search) > 0 {
				_, size := utf8.DecodeLastRuneInString(m.search)
				m.search = m.search[:len(m.search)-size]
				m.filterProfiles()
			}

		case tea.KeyRunes:
			m.search += string(msg.Runes)
			m.filterProfiles()
		}
	}

	return m, nil
}

func (m *ProfileModel) filterProfiles() {
	if m.search == "" {
		m.filtered = m.profiles
	} else {
		query := strings.ToLower(m.search)
		m.filtered = nil
		for _, p := range m.profiles {
			if strings.Contains(strings.ToLower(p.Name), query) ||
				strings.Contains(strings.ToLower(p.AccessKeyID), query) {
				m.filtered = append(m.filtered, p)
			}
		}
	}
	if m.cursor >= len(m.filtered) {
		if len(m.filtered) > 0 {
			m.cursor = len(m.filtered) - 1
		} else {
			m.cursor = 0
		}
	}
	m.offset = 0
}

// Selected returns the chosen profiles in their original order
func (m ProfileModel) Selected() []types.Profile {
	var out []types.Profile
	for _, p := range m.profiles {
		if m.chosen[p.Name] {
			out = append(out, p)
		}
	}
	return out
}

// Cancelled reports whether the user left without confirming
func (m ProfileModel) Cancelled() bool {
	return m.cancelled
}

// View implements tea.Model
func (m ProfileModel) View() string {
	if m.quitting {
		return ""
	}

	var sb strings.Builder
	w := m.contentWidth

	// Top border
	sb.WriteString(BorderStyle.Render(TopLeft))
	sb.WriteString(BorderStyle.Render(strings.Repeat(Horizontal, w)))
	sb.WriteString(BorderStyle.Render(TopRight))
	sb.WriteString("\n")

	// Title
	sb.WriteString(BorderStyle.Render(Vertical))
	sb.WriteString(HeaderStyle.Render(padRight(fmt.Sprintf(" Select profiles to rotate (max %d)", m.limit), w)))
	sb.WriteString(BorderStyle.Render(Vertical))
	sb.WriteString("\n")

	// Separator
	sb.WriteString(BorderStyle.Render(LeftT))
	sb.WriteString(BorderStyle.Render(strings.Repeat(Horizontal, w)))
	sb.WriteString(BorderStyle.Render(RightT))
	sb.WriteString("\n")

	// Search input
	sb.WriteString(BorderStyle.Render(Vertical))
	sb.WriteString(NameStyle.Render(padRight(" > "+m.search, w)))
	sb.WriteString(BorderStyle.Render(Vertical))
	sb.WriteString("\n")

	// Empty line
	sb.WriteString(BorderStyle.Render(Vertical))
	sb.WriteString(strings.Repeat(" ", w))
	sb.WriteString(BorderStyle.Render(Vertical))
	sb.WriteString("\n")

	// Profile list
	visibleEnd := m.offset + profileListHeight
	if visibleEnd > len(m.filtered) {
		visibleEnd = len(m.filtered)
	}

	for i := m.offset; i < visibleEnd; i++ {
		sb.WriteString(m.renderProfileRow(i))
	}

	// Fill remaining lines
	for i := len(m.filtered); i < m.offset+profileListHeight; i++ {
		sb.WriteString(BorderStyle.Render(Vertical))
		sb.WriteString(strings.Repeat(" ", w))
		sb.WriteString(BorderStyle.Render(Vertical))
		sb.WriteString("\n")
	}

	// Bottom border
	sb.WriteString(BorderStyle.Render(BottomLeft))
	sb.WriteString(BorderStyle.Render(strings.Repeat(Horizontal, w)))
	sb.WriteString(BorderStyle.Render(BottomRight))
	sb.WriteString("\n")

	sb.WriteString(m.renderStatusBar())

	return sb.String()
}

func (m ProfileModel) renderProfileRow(idx int) string {
	var sb strings.Builder
	profile := m.filtered[idx]
	w := m.contentWidth

	sb.WriteString(BorderStyle.Render(Vertical))

	var line strings.Builder
	plainWidth := 0

	// Cursor and checkbox
	cursor := "  "
	if idx == m.cursor {
		cursor = "> "
	}
	box := "[ ] "
	if m.chosen[profile.Name] {
		box = "[x] "
	}
	line.WriteString(" " + cursor + box)
	plainWidth += 7

	nameWidth := 24
	nameText := padRight(profile.Name, nameWidth)
	if m.chosen[profile.Name] {
		line.WriteString(SuccessStyle.Render(nameText))
	} else {
		line.WriteString(NameStyle.Render(nameText))
	}
	line.WriteString("  ")
	plainWidth += nameWidth + 2

	keyWidth := 22
	line.WriteString(KeyStyle.Render(padRight(profile.AccessKeyID, keyWidth)))
	line.WriteString("  ")
	plainWidth += keyWidth + 2

	ageWidth := 8
	line.WriteString(ageStyle(profile, m.now).Render(padRight(FormatAge(profile, m.now), ageWidth)))
	plainWidth += ageWidth

	if plainWidth < w {
		line.WriteString(strings.Repeat(" ", w-plainWidth))
	}

	sb.WriteString(line.String())
	sb.WriteString(BorderStyle.Render(Vertical))
	sb.WriteString("\n")

	return sb.String()
}

func (m ProfileModel) renderStatusBar() string {
	var sb strings.Builder
	w := m.contentWidth + 2

	countInfo := fmt.Sprintf("  %d selected, %d/%d profiles", len(m.Selected()), len(m.filtered), len(m.profiles))
	hintsPlain := "[Space:toggle] [Enter:rotate] [Esc:cancel]"

	countWidth := runewidth.StringWidth(countInfo)
	hintsWidth := runewidth.StringWidth(hintsPlain)
	padding := w - countWidth - hintsWidth

	sb.WriteString(countInfo)
	if padding > 0 {
		sb.WriteString(strings.Repeat(" ", padding))
	}
	sb.WriteString(HintStyle.Render(hintsPlain))
	sb.WriteString("\n")

	return sb.String()
}

// SelectProfiles displays an interactive multi-select for rotation candidates
func SelectProfiles(profiles []types.Profile, limit int) ([]types.Profile, error) {
	if len(profiles) == 0 {
		return nil, fmt.Errorf("no profiles available")
	}

	m := NewProfileModel(profiles, limit, time.Now())
	p := tea.NewProgram(m)

	finalModel, err := p.Run()
	if err != nil {
		return nil, fmt.Errorf("error running selector: %w", err)
	}

	return selectionFrom(finalModel)
}

// selectionFrom extracts the outcome of a finished selector program
func selectionFrom(finalModel tea.Model) ([]types.Profile, error) {
	result, ok := finalModel.(ProfileModel)
	if !ok {
		return nil, fmt.Errorf("internal error: invalid model type")
	}
	if result.Cancelled() {
		return nil, ErrCancelled
	}

	return result.Selected(), nil
}

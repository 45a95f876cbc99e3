package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sqing33/stickyboard/pkg/note"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// NoteListModel is the bubbletea model for picking which notes stay
// pinned before an arrange pass. Space toggles a note's lock, enter
// confirms, q or esc aborts.
type NoteListModel struct {
	Notes   []note.Note
	Locked  map[string]bool // working copy of each note's lock flag
	Cursor  int
	Height  int
	Offset  int
	Confirm bool
}

// NewNoteListModel creates a note list model seeded with the current
// lock flags.
func NewNoteListModel(notes []note.Note) NoteListModel {
	locked := make(map[string]bool, len(notes))
	for _, n := range notes {
		locked[n.ID] = n.Locked
	}
	return NoteListModel{
		Notes:  notes,
		Locked: locked,
		Height: 15,
	}
}

func (m NoteListModel) Init() tea.Cmd {
	return nil
}

func (m NoteListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Notes)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case " ":
			if len(m.Notes) > 0 {
				id := m.Notes[m.Cursor].ID
				m.Locked[id] = !m.Locked[id]
			}
		case "enter":
			m.Confirm = true
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m NoteListModel) View() string {
	var b strings.Builder
	b.WriteString(StyleTitle.Render("Pin notes before arranging") + "\n")
	b.WriteString(listDimStyle.Render("space: toggle pin · enter: arrange · q: abort") + "\n\n")

	end := m.Offset + m.Height
	if end > len(m.Notes) {
		end = len(m.Notes)
	}
	for i := m.Offset; i < end; i++ {
		n := m.Notes[i]

		marker := "  "
		if m.Locked[n.ID] {
			marker = styleLocked.Render(iconLocked) + " "
		}
		line := fmt.Sprintf("%s%-44s %2d,%2d %2d×%-2d",
			marker, firstLine(n.Content), n.Rect.X, n.Rect.Y, n.Rect.W, n.Rect.H)

		if i == m.Cursor {
			b.WriteString(listSelectedStyle.Render("> "+line) + "\n")
		} else {
			b.WriteString(listNormalStyle.Render("  "+line) + "\n")
		}
	}
	if len(m.Notes) > end {
		b.WriteString(listDimStyle.Render(fmt.Sprintf("  … %d more", len(m.Notes)-end)) + "\n")
	}
	return b.String()
}

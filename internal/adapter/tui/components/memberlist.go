package components

import (
	"strings"

	"gift-advisor/internal/adapter/tui/theme"
)

// MemberListModel is a vertical, scrollable list of team members with a
// cursor. Active marks the member whose result is on screen.
type MemberListModel struct {
	Members []string
	Cursor  int
	Active  string
	offset  int
	width   int
	height  int
}

// NewMemberList creates an empty list.
func NewMemberList() MemberListModel {
	return MemberListModel{}
}

// SetMembers replaces the roster and resets the cursor.
func (m *MemberListModel) SetMembers(members []string) {
	m.Members = members
	m.Cursor = 0
	m.offset = 0
}

// SetSize sets the inner size available for rows.
func (m *MemberListModel) SetSize(w, h int) {
	m.width = w
	m.height = h
	m.scrollToCursor()
}

// Up moves the cursor up one row.
func (m *MemberListModel) Up() {
	if m.Cursor > 0 {
		m.Cursor--
	}
	m.scrollToCursor()
}

// Down moves the cursor down one row.
func (m *MemberListModel) Down() {
	if m.Cursor < len(m.Members)-1 {
		m.Cursor++
	}
	m.scrollToCursor()
}

// Selected returns the member under the cursor, or "" for an empty list.
func (m MemberListModel) Selected() string {
	if m.Cursor < 0 || m.Cursor >= len(m.Members) {
		return ""
	}
	return m.Members[m.Cursor]
}

// SelectRow moves the cursor to the visible row at y (0 is the first
// visible row) and reports the member there.
func (m *MemberListModel) SelectRow(y int) (string, bool) {
	i := m.offset + y
	if y < 0 || i >= len(m.Members) || (m.height > 0 && y >= m.height) {
		return "", false
	}
	m.Cursor = i
	return m.Members[i], true
}

// View renders the visible rows.
func (m MemberListModel) View() string {
	if len(m.Members) == 0 {
		return theme.TextMuted.Render("No team members")
	}

	end := len(m.Members)
	if m.height > 0 {
		end = min(end, m.offset+m.height)
	}

	rows := make([]string, 0, end-m.offset)
	for i := m.offset; i < end; i++ {
		name := m.Members[i]
		prefix := "  "
		if i == m.Cursor {
			prefix = theme.SymbolCursor + " "
		}
		row := prefix + name
		if name == m.Active {
			row += " " + theme.SymbolGift
		}

		style := theme.MemberNormal
		switch {
		case i == m.Cursor:
			style = theme.MemberSelected
		case name == m.Active:
			style = theme.MemberActive
		}
		if m.width > 0 {
			style = style.Width(m.width)
		}
		rows = append(rows, style.Render(row))
	}
	return strings.Join(rows, "\n")
}

func (m *MemberListModel) scrollToCursor() {
	if m.height <= 0 {
		return
	}
	if m.Cursor < m.offset {
		m.offset = m.Cursor
	}
	if m.Cursor >= m.offset+m.height {
		m.offset = m.Cursor - m.height + 1
	}
}

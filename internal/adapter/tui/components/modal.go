package components

import (
	"fmt"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"gift-advisor/internal/adapter/tui/theme"
)

// ModalClosedMsg is emitted when the user dismisses the modal.
type ModalClosedMsg struct{}

// dismissal is the modal's claim on the dismiss keys and on clicks outside
// its box. It exists only between Open and Close.
type dismissal struct {
	keys map[string]bool
}

func newDismissal() *dismissal {
	return &dismissal{keys: map[string]bool{"esc": true, "q": true}}
}

// ModalModel is a centered overlay with a scrollable body.
type ModalModel struct {
	Viewport viewport.Model
	Title    string
	width    int
	height   int
	dismiss  *dismissal
}

// NewModal creates a closed modal.
func NewModal() ModalModel {
	return ModalModel{}
}

// Visible reports whether the modal is open.
func (m ModalModel) Visible() bool { return m.dismiss != nil }

// Open shows the modal with the given content and binds the dismiss keys
// and outside clicks.
func (m *ModalModel) Open(title, content string) {
	m.Title = title
	w, h := m.boxSize()
	m.Viewport = viewport.New(w-4, h-4)
	m.Viewport.MouseWheelEnabled = true
	m.Viewport.SetContent(content)
	m.dismiss = newDismissal()
}

// Close hides the modal and releases its dismissal binding. Safe to call
// when already closed.
func (m *ModalModel) Close() {
	m.dismiss = nil
}

// SetSize updates the screen dimensions the modal centers itself in.
func (m *ModalModel) SetSize(w, h int) {
	m.width = w
	m.height = h
	if m.Visible() {
		bw, bh := m.boxSize()
		m.Viewport.Width = bw - 4
		m.Viewport.Height = bh - 4
	}
}

// ContentWidth is the width available to the modal body.
func (m ModalModel) ContentWidth() int {
	w, _ := m.boxSize()
	return w - 4
}

// Update handles dismissal and scrolling. It is a no-op while closed.
func (m ModalModel) Update(msg tea.Msg) (ModalModel, tea.Cmd) {
	if m.dismiss == nil {
		return m, nil
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.dismiss.keys[msg.String()] {
			m.Close()
			return m, closedCmd
		}
		switch msg.String() {
		case "j", "down":
			m.Viewport.LineDown(1)
			return m, nil
		case "k", "up":
			m.Viewport.LineUp(1)
			return m, nil
		case "g":
			m.Viewport.GotoTop()
			return m, nil
		case "G":
			m.Viewport.GotoBottom()
			return m, nil
		}
	case tea.MouseMsg:
		if msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft && !m.contains(msg.X, msg.Y) {
			m.Close()
			return m, closedCmd
		}
	}

	var cmd tea.Cmd
	m.Viewport, cmd = m.Viewport.Update(msg)
	return m, cmd
}

// View renders the modal centered on an otherwise blank screen.
func (m ModalModel) View() string {
	if !m.Visible() {
		return ""
	}
	w, h := m.boxSize()
	x, y := m.origin()

	titleBar := theme.Bold.Render(m.Title)
	pct := m.Viewport.ScrollPercent() * 100
	footer := theme.Dim.Render("Esc/q or click outside: close  j/k: scroll") +
		"  " + theme.TextMuted.Render(fmt.Sprintf("%.0f%%", pct))

	inner := lipgloss.JoinVertical(lipgloss.Left, titleBar, m.Viewport.View(), footer)
	box := theme.ModalBorder.
		Width(w - 2).
		Height(h - 2).
		Render(inner)

	return lipgloss.NewStyle().MarginLeft(x).MarginTop(y).Render(box)
}

// boxSize returns the outer size of the modal box, border included.
func (m ModalModel) boxSize() (int, int) {
	if m.width == 0 || m.height == 0 {
		return 72, 20
	}
	return theme.Clamp(m.width-4, 24, 76), theme.Clamp(m.height-2, 8, 30)
}

func (m ModalModel) origin() (int, int) {
	w, h := m.boxSize()
	return max(0, (m.width-w)/2), max(0, (m.height-h)/2)
}

func (m ModalModel) contains(x, y int) bool {
	w, h := m.boxSize()
	ox, oy := m.origin()
	return x >= ox && x < ox+w && y >= oy && y < oy+h
}

func closedCmd() tea.Msg { return ModalClosedMsg{} }

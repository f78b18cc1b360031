package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"gift-advisor/internal/adapter/tui/theme"
	"gift-advisor/internal/domain"
)

// loadingText is shown until the first fragment arrives.
const loadingText = "Fetching presents..."

// ContentModel renders the controller's UIState: streamed markdown text,
// a gift list, a spinner or the fixed error message. Auto-scroll follows
// the stream while the user is at the bottom.
type ContentModel struct {
	Viewport viewport.Model
	Spinner  spinner.Model
	state    domain.UIState
	ready    bool
	atBottom bool

	mdRenderer *glamour.TermRenderer
	mdWidth    int
}

// NewContent creates a content pane. The viewport is sized lazily.
func NewContent() ContentModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(theme.ColorInfo)
	return ContentModel{Spinner: s, atBottom: true}
}

// SetSize sets the viewport dimensions and re-renders.
func (m *ContentModel) SetSize(w, h int) {
	if !m.ready {
		m.Viewport = viewport.New(w, h)
		m.Viewport.MouseWheelEnabled = true
		m.Viewport.MouseWheelDelta = 3
		m.ready = true
	} else {
		m.Viewport.Width = w
		m.Viewport.Height = h
	}
	m.refresh()
}

// SetState replaces the displayed state.
func (m *ContentModel) SetState(s domain.UIState) {
	restart := s.Submission != m.state.Submission || s.Target != m.state.Target
	m.state = s
	if restart {
		m.atBottom = true
	}
	m.refresh()
	if m.atBottom {
		m.Viewport.GotoBottom()
	}
}

// State returns the state last set.
func (m ContentModel) State() domain.UIState { return m.state }

// Update handles spinner ticks and viewport scrolling.
func (m ContentModel) Update(msg tea.Msg) (ContentModel, tea.Cmd) {
	if tick, ok := msg.(spinner.TickMsg); ok {
		var cmd tea.Cmd
		m.Spinner, cmd = m.Spinner.Update(tick)
		if m.state.Loading() && m.state.Text == "" {
			m.refresh()
		}
		return m, cmd
	}
	if !m.ready {
		return m, nil
	}
	var cmd tea.Cmd
	m.Viewport, cmd = m.Viewport.Update(msg)
	m.atBottom = m.Viewport.AtBottom()
	return m, cmd
}

// View renders the viewport.
func (m ContentModel) View() string {
	if !m.ready {
		return "  Initializing..."
	}
	return m.Viewport.View()
}

func (m *ContentModel) refresh() {
	if !m.ready {
		return
	}
	m.Viewport.SetContent(m.render())
}

func (m *ContentModel) render() string {
	s := m.state
	switch s.Mode {
	case domain.ModeIdle:
		return theme.TextMuted.Render("Pick a team member and press Enter.")
	case domain.ModeError:
		return theme.TextError.Render(theme.SymbolError + " " + s.Err)
	}

	if s.Target == domain.TargetGiftIdeas {
		if s.Loading() {
			return m.Spinner.View() + " " + loadingText
		}
		return RenderGiftIdeas(s.Items, m.Viewport.Width)
	}

	if s.Text == "" {
		if s.Loading() {
			return m.Spinner.View() + " " + loadingText
		}
		return theme.TextMuted.Render("No suggestions.")
	}
	out := m.renderMarkdown(s.Text, m.Viewport.Width)
	if s.Loading() {
		out += "\n" + m.Spinner.View()
	}
	return out
}

func (m *ContentModel) renderMarkdown(content string, width int) string {
	width = theme.Clamp(width-2, 20, theme.MaxContentWidth)
	if m.mdRenderer == nil || m.mdWidth != width {
		r, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			return content
		}
		m.mdRenderer = r
		m.mdWidth = width
	}
	rendered, err := m.mdRenderer.Render(content)
	if err != nil {
		return content
	}
	return strings.TrimRight(rendered, "\n")
}

// RenderGiftIdeas formats a gift list for the content pane and the modal.
func RenderGiftIdeas(items []domain.GiftIdea, width int) string {
	if len(items) == 0 {
		return theme.TextMuted.Render("No gift ideas.")
	}
	wrap := lipgloss.NewStyle()
	if width > 4 {
		wrap = wrap.Width(theme.Clamp(width-2, 20, theme.MaxContentWidth))
	}

	blocks := make([]string, 0, len(items))
	for _, it := range items {
		lines := []string{
			theme.GiftName.Render(theme.SymbolGift + " " + it.Name),
			wrap.Render(theme.GiftDescription.Render(it.Description)),
		}
		if it.Link != "" {
			lines = append(lines, theme.GiftLink.Render(it.Link))
		}
		blocks = append(blocks, strings.Join(lines, "\n"))
	}
	return strings.Join(blocks, "\n\n")
}

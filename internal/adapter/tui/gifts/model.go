package gifts

import (
	"context"
	"log/slog"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"gift-advisor/internal/adapter/tui/components"
	"gift-advisor/internal/adapter/tui/theme"
	"gift-advisor/internal/adapter/tui/uxerror"
	"gift-advisor/internal/domain"
)

// headerHeight is the number of lines above the panels.
const headerHeight = 2

// MemberSource loads the team roster.
type MemberSource interface {
	TeamMembers(ctx context.Context) ([]string, error)
}

// Submitter starts a request for a member. The lifecycle controller
// satisfies it; state changes come back as StateMsg.
type Submitter interface {
	Submit(sub domain.Submission, target domain.Target) bool
}

// ModelDeps are dependencies injected into the model.
type ModelDeps struct {
	Ctx        context.Context
	Members    MemberSource
	Controller Submitter
	Server     string
	Target     domain.Target
	Logger     *slog.Logger
}

// Model is the root Bubble Tea model for the gift advisor.
type Model struct {
	deps ModelDeps

	members   components.MemberListModel
	content   components.ContentModel
	statusBar components.StatusBarModel
	modal     components.ModalModel

	target        domain.Target
	state         domain.UIState
	membersErr    string
	membersLoaded bool
	pendingModal  bool // a gift-ideas submission wants its modal on success

	width    int
	height   int
	split    bool
	listW    int
	listH    int
	quitting bool
}

// NewModel creates the root model.
func NewModel(deps ModelDeps) Model {
	if deps.Ctx == nil {
		deps.Ctx = context.Background()
	}
	if deps.Logger == nil {
		deps.Logger = slog.New(slog.DiscardHandler)
	}

	sb := components.NewStatusBar()
	sb.Server = deps.Server
	sb.Mode = deps.Target.String()
	sb.Hints = defaultHints()

	return Model{
		deps:      deps,
		members:   components.NewMemberList(),
		content:   components.NewContent(),
		statusBar: sb,
		modal:     components.NewModal(),
		target:    deps.Target,
	}
}

// Init starts the spinner and loads the roster.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.content.Spinner.Tick,
		loadMembersCmd(m.deps.Ctx, m.deps.Members),
	)
}

// Update handles all incoming messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()
		return m, nil

	case MembersLoadedMsg:
		if msg.Err != nil {
			m.deps.Logger.Warn("team members unavailable", "error", msg.Err)
			m.membersErr = uxerror.Humanize(msg.Err).Render()
			m.statusBar.Hints = retryMembersHints()
			return m, nil
		}
		m.membersErr = ""
		m.membersLoaded = true
		m.members.SetMembers(msg.Members)
		m.statusBar.Hints = defaultHints()
		m.layout()
		return m, nil

	case StateMsg:
		return m.applyState(msg.State), nil

	case components.ModalClosedMsg:
		m.statusBar.Hints = defaultHints()
		return m, nil

	case QuitMsg:
		m.quitting = true
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.content, cmd = m.content.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		return m.handleMouse(msg)
	}
	return m, nil
}

// applyState renders a controller snapshot and opens the gift modal when a
// gift-ideas request the user made has succeeded.
func (m Model) applyState(s domain.UIState) Model {
	m.state = s
	m.content.SetState(s)
	m.members.Active = string(s.Submission)

	switch s.Mode {
	case domain.ModeLoading:
		m.statusBar.Extra = "Fetching for " + string(s.Submission) + "..."
	case domain.ModeSuccess:
		m.statusBar.Extra = theme.SymbolSuccess + " " + string(s.Submission)
		if m.pendingModal && s.Target == domain.TargetGiftIdeas {
			m.pendingModal = false
			m.openGiftModal()
		}
	case domain.ModeError:
		m.statusBar.Extra = theme.SymbolError + " failed"
		m.pendingModal = false
	default:
		m.statusBar.Extra = ""
	}
	return m
}

func (m *Model) openGiftModal() {
	m.modal.SetSize(m.width, m.height)
	m.modal.Open(
		"Gift ideas they might like — "+string(m.state.Submission),
		components.RenderGiftIdeas(m.state.Items, m.modal.ContentWidth()),
	)
	m.statusBar.Hints = modalHints()
}

// submit asks the controller for member with the current target.
func (m Model) submit(member string) Model {
	if member == "" || m.deps.Controller == nil {
		return m
	}
	if m.deps.Controller.Submit(domain.Submission(member), m.target) {
		m.pendingModal = m.target == domain.TargetGiftIdeas
		m.deps.Logger.Debug("submitted", "member", member, "target", m.target.String())
	}
	return m
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		m.quitting = true
		return m, tea.Quit
	}

	// The modal owns the keyboard while it is open.
	if m.modal.Visible() {
		var cmd tea.Cmd
		m.modal, cmd = m.modal.Update(msg)
		return m, cmd
	}

	switch msg.String() {
	case "q":
		m.quitting = true
		return m, tea.Quit
	case "up", "k":
		m.members.Up()
	case "down", "j":
		m.members.Down()
	case "enter", " ":
		return m.submit(m.members.Selected()), nil
	case "tab", "m":
		m.target = toggle(m.target)
		m.statusBar.Mode = m.target.String()
	case "r":
		if !m.membersLoaded {
			m.membersErr = ""
			return m, loadMembersCmd(m.deps.Ctx, m.deps.Members)
		}
		if !m.state.Submission.IsEmpty() {
			return m.submit(string(m.state.Submission)), nil
		}
	case "o":
		if m.state.Mode == domain.ModeSuccess && m.state.Target == domain.TargetGiftIdeas {
			m.openGiftModal()
		}
	case "pgup", "pgdown", "home", "end":
		var cmd tea.Cmd
		m.content, cmd = m.content.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if m.modal.Visible() {
		var cmd tea.Cmd
		m.modal, cmd = m.modal.Update(msg)
		return m, cmd
	}

	if msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft && m.inList(msg.X, msg.Y) {
		if name, ok := m.members.SelectRow(msg.Y - headerHeight - 1); ok {
			return m.submit(name), nil
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.content, cmd = m.content.Update(msg)
	return m, cmd
}

// inList reports whether screen cell (x, y) falls on a member row.
func (m Model) inList(x, y int) bool {
	top := headerHeight + 1
	if y < top || y >= top+m.listH {
		return false
	}
	if m.split {
		return x >= 1 && x < m.listW-1
	}
	return x >= 1 && x < m.width-1
}

// View renders the entire UI.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.width == 0 {
		return "  Initializing..."
	}
	if m.modal.Visible() {
		return m.modal.View()
	}

	header := lipgloss.JoinVertical(lipgloss.Left,
		theme.HeaderTitle.Render(theme.SymbolGift+" Gift Advisor"),
		theme.HeaderTagline.Render("Gift suggestions based on team conversations"),
	)

	listBody := m.members.View()
	switch {
	case m.membersErr != "":
		listBody = theme.TextError.Render(m.membersErr)
	case !m.membersLoaded:
		listBody = theme.TextMuted.Render("Loading team members...")
	}

	var body string
	if m.split {
		list := theme.FocusBorder.Width(m.listW - 2).Height(m.listH).Render(listBody)
		content := theme.UnfocusedBorder.Width(m.width - m.listW - 2).Height(m.listH).Render(m.content.View())
		body = lipgloss.JoinHorizontal(lipgloss.Top, list, content)
	} else {
		list := theme.FocusBorder.Width(m.width - 2).Height(m.listH).Render(listBody)
		content := theme.UnfocusedBorder.Width(m.width - 2).Height(m.contentHeight()).Render(m.content.View())
		body = lipgloss.JoinVertical(lipgloss.Left, list, content)
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, body, m.statusBar.View())
}

// layout recalculates sizes for all sub-models.
func (m *Model) layout() {
	bodyH := max(m.height-headerHeight-1, 6)
	m.split = m.width >= theme.MinSplitWidth
	m.statusBar.SetWidth(m.width)
	m.modal.SetSize(m.width, m.height)

	if m.split {
		m.listW = theme.Clamp(m.width*2/5, 24, 40)
		m.listH = bodyH - 2
		m.members.SetSize(m.listW-4, m.listH)
		m.content.SetSize(m.width-m.listW-4, m.listH)
		return
	}

	m.listW = m.width
	m.listH = theme.Clamp(len(m.members.Members), 1, max(1, bodyH/3))
	m.members.SetSize(m.width-4, m.listH)
	m.content.SetSize(m.width-4, m.contentHeight())
}

func (m Model) contentHeight() int {
	return max(m.height-headerHeight-1-(m.listH+2)-2, 3)
}

func toggle(t domain.Target) domain.Target {
	if t == domain.TargetTrending {
		return domain.TargetGiftIdeas
	}
	return domain.TargetTrending
}

func defaultHints() []components.KeyHint {
	return []components.KeyHint{
		{Key: "↑/↓", Desc: "Select"},
		{Key: "Enter", Desc: "Ask"},
		{Key: "Tab", Desc: "Mode"},
		{Key: "r", Desc: "Retry"},
		{Key: "q", Desc: "Quit"},
	}
}

func modalHints() []components.KeyHint {
	return []components.KeyHint{
		{Key: "Esc", Desc: "Close"},
		{Key: "j/k", Desc: "Scroll"},
	}
}

func retryMembersHints() []components.KeyHint {
	return []components.KeyHint{
		{Key: "r", Desc: "Reload members"},
		{Key: "q", Desc: "Quit"},
	}
}

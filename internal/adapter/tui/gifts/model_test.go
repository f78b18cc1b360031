package gifts

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gift-advisor/internal/domain"
)

type staticMembers struct {
	members []string
	err     error
}

func (s staticMembers) TeamMembers(context.Context) ([]string, error) { return s.members, s.err }

type submission struct {
	sub    domain.Submission
	target domain.Target
}

type recordingSubmitter struct {
	calls []submission
}

func (r *recordingSubmitter) Submit(sub domain.Submission, target domain.Target) bool {
	if sub.IsEmpty() {
		return false
	}
	r.calls = append(r.calls, submission{sub, target})
	return true
}

func newTestModel(t *testing.T, target domain.Target) (Model, *recordingSubmitter) {
	t.Helper()
	ctrl := &recordingSubmitter{}
	m := NewModel(ModelDeps{
		Members:    staticMembers{members: []string{"Abel", "David", "Grettel"}},
		Controller: ctrl,
		Server:     "http://localhost:8000",
		Target:     target,
	})
	m = step(t, m, tea.WindowSizeMsg{Width: 100, Height: 30})
	m = step(t, m, MembersLoadedMsg{Members: []string{"Abel", "David", "Grettel"}})
	return m, ctrl
}

func step(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	out, ok := next.(Model)
	require.True(t, ok)
	return out
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestInitLoadsMembers(t *testing.T) {
	m := NewModel(ModelDeps{Members: staticMembers{members: []string{"Abel"}}})
	cmd := m.Init()
	require.NotNil(t, cmd)

	msg := loadMembersCmd(context.Background(), staticMembers{members: []string{"Abel"}})()
	assert.Equal(t, MembersLoadedMsg{Members: []string{"Abel"}}, msg)
}

func TestEnterSubmitsSelectedMember(t *testing.T) {
	m, ctrl := newTestModel(t, domain.TargetTrending)

	m = step(t, m, key("down"))
	m = step(t, m, key("enter"))

	require.Len(t, ctrl.calls, 1)
	assert.Equal(t, submission{"David", domain.TargetTrending}, ctrl.calls[0])
}

func TestTabTogglesTarget(t *testing.T) {
	m, ctrl := newTestModel(t, domain.TargetTrending)

	m = step(t, m, key("tab"))
	m = step(t, m, key("enter"))
	require.Len(t, ctrl.calls, 1)
	assert.Equal(t, domain.TargetGiftIdeas, ctrl.calls[0].target)
	assert.Contains(t, ansi.Strip(m.View()), "list")

	m = step(t, m, key("tab"))
	m = step(t, m, key("enter"))
	assert.Equal(t, domain.TargetTrending, ctrl.calls[1].target)
}

func TestStateMsgRendersStream(t *testing.T) {
	m, _ := newTestModel(t, domain.TargetTrending)

	m = step(t, m, StateMsg{State: domain.UIState{Mode: domain.ModeLoading, Submission: "Abel"}})
	assert.Contains(t, ansi.Strip(m.View()), "Fetching presents...")

	m = step(t, m, StateMsg{State: domain.UIState{Mode: domain.ModeSuccess, Submission: "Abel", Text: "Hello!"}})
	view := ansi.Strip(m.View())
	assert.Contains(t, view, "Hello!")
	assert.False(t, m.modal.Visible())
}

func TestStateMsgErrorShowsFixedMessage(t *testing.T) {
	m, _ := newTestModel(t, domain.TargetTrending)

	m = step(t, m, StateMsg{State: domain.UIState{Mode: domain.ModeError, Submission: "Abel", Err: domain.FetchErrorMessage}})
	assert.Contains(t, ansi.Strip(m.View()), domain.FetchErrorMessage)
}

func TestGiftIdeasOpenModalOnce(t *testing.T) {
	m, _ := newTestModel(t, domain.TargetGiftIdeas)
	items := []domain.GiftIdea{{Name: "Book", Description: "A novel"}}

	m = step(t, m, key("enter"))
	m = step(t, m, StateMsg{State: domain.UIState{Mode: domain.ModeSuccess, Submission: "Abel", Target: domain.TargetGiftIdeas, Items: items}})
	require.True(t, m.modal.Visible())
	view := ansi.Strip(m.View())
	assert.Contains(t, view, "Gift ideas they might like — Abel")
	assert.Contains(t, view, "Book")

	// Esc closes; a repeated snapshot does not reopen it.
	m = step(t, m, key("esc"))
	assert.False(t, m.modal.Visible())
	m = step(t, m, StateMsg{State: domain.UIState{Mode: domain.ModeSuccess, Submission: "Abel", Target: domain.TargetGiftIdeas, Items: items}})
	assert.False(t, m.modal.Visible())

	// "o" reopens it on demand.
	m = step(t, m, key("o"))
	assert.True(t, m.modal.Visible())
}

func TestModalSwallowsKeys(t *testing.T) {
	m, ctrl := newTestModel(t, domain.TargetGiftIdeas)
	m = step(t, m, key("enter"))
	m = step(t, m, StateMsg{State: domain.UIState{Mode: domain.ModeSuccess, Submission: "Abel", Target: domain.TargetGiftIdeas, Items: []domain.GiftIdea{{Name: "x", Description: "y"}}}})
	require.True(t, m.modal.Visible())

	m = step(t, m, key("down"))
	m = step(t, m, key("enter"))
	assert.Len(t, ctrl.calls, 1, "keys go to the modal while it is open")

	// q closes the modal rather than quitting.
	next, cmd := m.Update(key("q"))
	m = next.(Model)
	assert.False(t, m.modal.Visible())
	assert.False(t, m.quitting)
	require.NotNil(t, cmd)
}

func TestRetryResubmitsLast(t *testing.T) {
	m, ctrl := newTestModel(t, domain.TargetTrending)

	m = step(t, m, key("r"))
	assert.Empty(t, ctrl.calls, "nothing to retry yet")

	m = step(t, m, StateMsg{State: domain.UIState{Mode: domain.ModeError, Submission: "Grettel", Err: domain.FetchErrorMessage}})
	m = step(t, m, key("r"))
	require.Len(t, ctrl.calls, 1)
	assert.Equal(t, domain.Submission("Grettel"), ctrl.calls[0].sub)
}

func TestClickOnMemberSubmits(t *testing.T) {
	m, ctrl := newTestModel(t, domain.TargetTrending)

	// Rows start one line below the list's top border.
	m = step(t, m, tea.MouseMsg{X: 3, Y: headerHeight + 1 + 2, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	require.Len(t, ctrl.calls, 1)
	assert.Equal(t, domain.Submission("Grettel"), ctrl.calls[0].sub)

	m = step(t, m, tea.MouseMsg{X: 90, Y: headerHeight + 1, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	assert.Len(t, ctrl.calls, 1, "clicks on the content pane do not submit")
}

func TestMembersLoadErrorAndReload(t *testing.T) {
	ctrl := &recordingSubmitter{}
	m := NewModel(ModelDeps{Members: staticMembers{members: []string{"Abel"}}, Controller: ctrl})
	m = step(t, m, tea.WindowSizeMsg{Width: 100, Height: 30})
	m = step(t, m, MembersLoadedMsg{Err: domain.NewDomainError("Client.TeamMembers", domain.ErrTransport, "dial tcp: connection refused")})

	assert.Contains(t, ansi.Strip(m.View()), "Server Unreachable")

	next, cmd := m.Update(key("r"))
	m = next.(Model)
	require.NotNil(t, cmd)
	m = step(t, m, cmd())
	assert.Contains(t, ansi.Strip(m.View()), "Abel")

	m = step(t, m, key("enter"))
	assert.Len(t, ctrl.calls, 1)
}

func TestQuitKeys(t *testing.T) {
	m, _ := newTestModel(t, domain.TargetTrending)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())

	_, cmd = m.Update(QuitMsg{})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestNarrowLayoutStacksPanels(t *testing.T) {
	m, ctrl := newTestModel(t, domain.TargetTrending)
	m = step(t, m, tea.WindowSizeMsg{Width: 50, Height: 30})
	assert.False(t, m.split)

	view := ansi.Strip(m.View())
	assert.Contains(t, view, "Abel")
	assert.Contains(t, view, "Pick a team member")

	m = step(t, m, tea.MouseMsg{X: 5, Y: headerHeight + 1, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	require.Len(t, ctrl.calls, 1)
	assert.Equal(t, domain.Submission("Abel"), ctrl.calls[0].sub)
}

func TestSubmitIgnoredWithoutMembers(t *testing.T) {
	ctrl := &recordingSubmitter{}
	m := NewModel(ModelDeps{Members: staticMembers{err: errors.New("x")}, Controller: ctrl})
	m = step(t, m, key("enter"))
	assert.Empty(t, ctrl.calls)
}

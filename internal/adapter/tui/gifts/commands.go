package gifts

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
)

// loadMembersCmd fetches the roster once at startup.
func loadMembersCmd(ctx context.Context, source MemberSource) tea.Cmd {
	return func() tea.Msg {
		members, err := source.TeamMembers(ctx)
		return MembersLoadedMsg{Members: members, Err: err}
	}
}

// Package gifts implements the Bubble Tea gift advisor view: a team roster,
// a content pane fed by the request lifecycle controller, and a modal for
// structured gift ideas.
package gifts

import "gift-advisor/internal/domain"

// StateMsg carries the controller's latest state into the update loop.
type StateMsg struct {
	State domain.UIState
}

// MembersLoadedMsg reports the result of loading the roster.
type MembersLoadedMsg struct {
	Members []string
	Err     error
}

// QuitMsg signals the program to exit.
type QuitMsg struct{}

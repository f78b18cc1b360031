package domain

import "strings"

// GiftIdea is one structured gift suggestion.
type GiftIdea struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Link        string `json:"link,omitempty"`
}

// Submission identifies what the user asked for: the name of a team member.
// The zero value is the empty submission, which the controller ignores.
type Submission string

// IsEmpty reports whether s carries no selection.
func (s Submission) IsEmpty() bool {
	return strings.TrimSpace(string(s)) == ""
}

// Target selects which endpoint serves a submission.
type Target int

const (
	// TargetTrending streams free text as it is generated.
	TargetTrending Target = iota
	// TargetGiftIdeas returns a single structured list.
	TargetGiftIdeas
)

// String returns the label used in logs and config ("stream" / "list").
func (t Target) String() string {
	switch t {
	case TargetTrending:
		return "stream"
	case TargetGiftIdeas:
		return "list"
	default:
		return "unknown"
	}
}

// ParseTarget maps a view-mode label back to a Target.
func ParseTarget(s string) (Target, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "stream", "trending", "":
		return TargetTrending, true
	case "list", "gift-ideas", "ideas":
		return TargetGiftIdeas, true
	default:
		return TargetTrending, false
	}
}

// TeamMembersResponse is the body of GET /api/teamMembers.
type TeamMembersResponse struct {
	TeamMembers []string `json:"teamMembers"`
}

// GiftIdeasResponse is the body of GET /api/gift-ideas/{member}.
type GiftIdeasResponse struct {
	GiftIdeas []GiftIdea `json:"giftIdeas"`
}

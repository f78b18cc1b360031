package domain

// Mode is the coarse phase of the view.
type Mode int

const (
	ModeIdle Mode = iota
	ModeLoading
	ModeSuccess
	ModeError
)

// String returns a human-readable label for the mode.
func (m Mode) String() string {
	switch m {
	case ModeIdle:
		return "idle"
	case ModeLoading:
		return "loading"
	case ModeSuccess:
		return "success"
	case ModeError:
		return "error"
	default:
		return "unknown"
	}
}

// FetchErrorMessage is the fixed text shown when a request fails.
const FetchErrorMessage = "Error fetching presents. Please try again."

// UIState is what the view renders. Text accumulates streamed fragments,
// Items holds a structured result, Err is set only in ModeError.
type UIState struct {
	Mode       Mode
	Submission Submission
	Target     Target
	Text       string
	Items      []GiftIdea
	Err        string
}

// Loading reports whether a request is in flight.
func (s UIState) Loading() bool { return s.Mode == ModeLoading }

// Clone returns a copy whose Items slice is not shared with s.
func (s UIState) Clone() UIState {
	if s.Items != nil {
		items := make([]GiftIdea, len(s.Items))
		copy(items, s.Items)
		s.Items = items
	}
	return s
}

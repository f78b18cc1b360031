package domain

// OutcomeKind tags the variant carried by an Outcome.
type OutcomeKind int

const (
	OutcomePending OutcomeKind = iota
	OutcomePartialText
	OutcomeCompleteText
	OutcomeCompleteItems
	OutcomeFailed
	OutcomeAborted
)

// String returns a short label for logs.
func (k OutcomeKind) String() string {
	switch k {
	case OutcomePending:
		return "pending"
	case OutcomePartialText:
		return "partial_text"
	case OutcomeCompleteText:
		return "complete_text"
	case OutcomeCompleteItems:
		return "complete_items"
	case OutcomeFailed:
		return "failed"
	case OutcomeAborted:
		return "aborted"
	default:
		return "unknown"
	}
}

// Outcome is one event produced by a request. Only the fields matching Kind
// are meaningful: Text for PartialText (a fragment) and CompleteText (the
// whole text), Items for CompleteItems, Err for Failed.
type Outcome struct {
	Kind  OutcomeKind
	Text  string
	Items []GiftIdea
	Err   error
}

// Terminal reports whether the outcome ends its request.
func (o Outcome) Terminal() bool {
	switch o.Kind {
	case OutcomeCompleteText, OutcomeCompleteItems, OutcomeFailed, OutcomeAborted:
		return true
	default:
		return false
	}
}

// PartialText wraps one decoded fragment of streamed text.
func PartialText(fragment string) Outcome {
	return Outcome{Kind: OutcomePartialText, Text: fragment}
}

// CompleteText ends a streamed request with its full text.
func CompleteText(text string) Outcome {
	return Outcome{Kind: OutcomeCompleteText, Text: text}
}

// CompleteItems ends a structured request.
func CompleteItems(items []GiftIdea) Outcome {
	return Outcome{Kind: OutcomeCompleteItems, Items: items}
}

// Failed ends a request with a transport or decode error.
func Failed(err error) Outcome {
	return Outcome{Kind: OutcomeFailed, Err: err}
}

// Aborted ends a request whose context was cancelled.
func Aborted() Outcome {
	return Outcome{Kind: OutcomeAborted, Err: ErrCancelled}
}

// Package uxerror translates raw errors into user-friendly messages with
// recovery hints for the TUI.
package uxerror

import (
	"errors"
	"fmt"
	"strings"

	"gift-advisor/internal/adapter/tui/theme"
	"gift-advisor/internal/domain"
)

// FriendlyError is a user-facing error with suggestions for recovery.
type FriendlyError struct {
	Title   string   // short heading, e.g. "Server Unreachable"
	Message string   // one-liner explanation
	Hints   []string // actionable recovery suggestions
	Raw     string   // original error text (for debug)
}

// Render formats the FriendlyError for display in the TUI.
func (fe FriendlyError) Render() string {
	var sb strings.Builder
	sb.WriteString(fe.Title)
	if fe.Message != "" {
		sb.WriteString("\n  ")
		sb.WriteString(fe.Message)
	}
	if len(fe.Hints) > 0 {
		sb.WriteString("\n  Suggestions:")
		for _, h := range fe.Hints {
			sb.WriteString(fmt.Sprintf("\n    %s %s", theme.SymbolBullet, h))
		}
	}
	return sb.String()
}

type errorPattern struct {
	match   func(err error) bool
	produce func(err error) FriendlyError
}

var patterns = []errorPattern{
	// Domain sentinel errors (checked first so errors.Is works through wrapping).
	{
		match: func(err error) bool { return errors.Is(err, domain.ErrInvalidTeamMember) },
		produce: func(err error) FriendlyError {
			return FriendlyError{
				Title:   "Unknown Team Member",
				Message: "The server does not know this person.",
				Hints:   []string{"Pick someone from the list", "Check team_members in the server config"},
				Raw:     err.Error(),
			}
		},
	},
	{
		match:   isAny(domain.ErrRateLimit),
		produce: constantError("Rate Limited", "Too many requests were sent to the gift server.", []string{"Wait a moment before retrying", "Raise server.rate_limit_per_min if you run the server"}),
	},
	{
		match:   isAny(domain.ErrCircuitOpen),
		produce: constantError("Suggestions Paused", "The suggestion provider failed repeatedly and is resting.", []string{"Try again in about 30 seconds", "Check the server logs for the provider error"}),
	},
	{
		match:   isAny(domain.ErrTimeout),
		produce: constantError("Request Timed Out", "The server took too long to answer.", []string{"Try again", "Increase client.timeout in config"}),
	},
	{
		match:   isAny(domain.ErrConfigLoad, domain.ErrDecryption),
		produce: constantError("Configuration Problem", "The configuration could not be loaded.", []string{"Check config.yaml for typos", "Set GIFTADVISOR_CONFIG_KEY if secrets are encrypted"}),
	},

	// Network / connectivity patterns (string matching for lower-level errors).
	{
		match:   containsAny("connection refused", "dial tcp", "no such host"),
		produce: constantError("Server Unreachable", "Could not reach the gift server.", []string{"Start it with 'giftadvisor serve'", "Check --server or client.base_url", "Run 'giftadvisor doctor'"}),
	},
	{
		match:   containsAny("deadline exceeded", "timeout", "context deadline"),
		produce: constantError("Request Timed Out", "The request took too long to complete.", []string{"Check your network connection", "Increase client.timeout in config"}),
	},
	{
		match:   isAny(domain.ErrTransport),
		produce: constantError("Server Error", "The gift server answered with an error.", []string{"Try again", "Run 'giftadvisor doctor'"}),
	},
}

// Humanize converts a raw error into a FriendlyError with recovery hints.
func Humanize(err error) FriendlyError {
	if err == nil {
		return FriendlyError{Title: "Unknown Error", Raw: "nil"}
	}

	for _, p := range patterns {
		if p.match(err) {
			return p.produce(err)
		}
	}

	return FriendlyError{
		Title:   "Unexpected Error",
		Message: err.Error(),
		Hints:   []string{"Try again", "Run with --log-level debug for more details"},
		Raw:     err.Error(),
	}
}

// isAny returns a match func reporting whether err wraps any of targets.
func isAny(targets ...error) func(error) bool {
	return func(err error) bool {
		for _, t := range targets {
			if errors.Is(err, t) {
				return true
			}
		}
		return false
	}
}

// containsAny returns a match func that checks if the error string contains
// any of the given substrings (case-insensitive).
func containsAny(substrs ...string) func(error) bool {
	return func(err error) bool {
		lower := strings.ToLower(err.Error())
		for _, s := range substrs {
			if strings.Contains(lower, s) {
				return true
			}
		}
		return false
	}
}

// constantError returns a produce func that always returns the same FriendlyError.
func constantError(title, message string, hints []string) func(error) FriendlyError {
	return func(err error) FriendlyError {
		return FriendlyError{
			Title:   title,
			Message: message,
			Hints:   hints,
			Raw:     err.Error(),
		}
	}
}

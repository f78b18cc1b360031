package domain

import (
	"context"
	"errors"
	"fmt"
)

// Category sentinels. Wrap them with NewDomainError to attach the failing
// operation and a human-readable detail.
var (
	ErrNotFound      = fmt.Errorf("not found")
	ErrInvalidInput  = fmt.Errorf("invalid input")
	ErrProviderError = fmt.Errorf("provider error")
	ErrRateLimit     = fmt.Errorf("rate limit exceeded")
	ErrTimeout       = fmt.Errorf("operation timed out")
)

// Request lifecycle errors.
var (
	// ErrTransport covers unreachable servers and non-2xx responses.
	ErrTransport = fmt.Errorf("transport error")
	// ErrDecode reports a malformed byte sequence at the end of a text stream.
	// It is never fatal: the decoder still returns a best-effort fragment.
	ErrDecode = fmt.Errorf("malformed text stream")
	// ErrCancelled is the internal signal that a request was superseded or
	// disposed. It must never surface as a user-visible error.
	ErrCancelled = fmt.Errorf("request cancelled")
)

// Server-side errors.
var (
	ErrInvalidTeamMember = fmt.Errorf("invalid team member")
	ErrConfigLoad        = fmt.Errorf("failed to load configuration")
	ErrDecryption        = fmt.Errorf("decryption failed")
	ErrEncryption        = fmt.Errorf("encryption operation failed")
	ErrSchemaViolation   = fmt.Errorf("response does not match schema")
	ErrCircuitOpen       = fmt.Errorf("circuit open")
)

// DomainError wraps a sentinel error with context.
type DomainError struct {
	Op     string // operation name (e.g., "Client.GiftIdeas")
	Err    error  // underlying sentinel or wrapped error
	Detail string // human-readable detail
}

func (e *DomainError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s: %s", e.Op, e.Detail, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Err)
}

func (e *DomainError) Unwrap() error { return e.Err }

// NewDomainError creates a new DomainError.
func NewDomainError(op string, err error, detail string) *DomainError {
	return &DomainError{Op: op, Err: err, Detail: detail}
}

// WrapOp adds operation context to an error using fmt.Errorf wrapping.
// Returns nil if err is nil, enabling idiomatic use: return domain.WrapOp("op", err)
func WrapOp(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", op, err)
}

// IsCancelled reports whether err is the internal cancellation signal,
// either ErrCancelled itself or a context cancellation.
func IsCancelled(err error) bool {
	return errors.Is(err, ErrCancelled) || errors.Is(err, context.Canceled)
}

// ErrorCode is a machine-parseable error category used in API error envelopes.
type ErrorCode string

const (
	CodeUnknown           ErrorCode = "UNKNOWN"
	CodeNotFound          ErrorCode = "NOT_FOUND"
	CodeInvalidInput      ErrorCode = "INVALID_INPUT"
	CodeInvalidTeamMember ErrorCode = "INVALID_TEAM_MEMBER"
	CodeProviderError     ErrorCode = "PROVIDER_ERROR"
	CodeRateLimit         ErrorCode = "RATE_LIMIT"
	CodeTimeout           ErrorCode = "TIMEOUT"
	CodeTransport         ErrorCode = "TRANSPORT"
	CodeDecode            ErrorCode = "DECODE"
	CodeCancelled         ErrorCode = "CANCELLED"
	CodeConfigLoad        ErrorCode = "CONFIG_LOAD"
	CodeDecryption        ErrorCode = "DECRYPTION"
	CodeEncryption        ErrorCode = "ENCRYPTION"
	CodeSchemaViolation   ErrorCode = "SCHEMA_VIOLATION"
	CodeCircuitOpen       ErrorCode = "CIRCUIT_OPEN"
)

// errorCodeMap maps sentinel errors to their machine-parseable codes.
var errorCodeMap = map[error]ErrorCode{
	ErrNotFound:          CodeNotFound,
	ErrInvalidInput:      CodeInvalidInput,
	ErrInvalidTeamMember: CodeInvalidTeamMember,
	ErrProviderError:     CodeProviderError,
	ErrRateLimit:         CodeRateLimit,
	ErrTimeout:           CodeTimeout,
	ErrTransport:         CodeTransport,
	ErrDecode:            CodeDecode,
	ErrCancelled:         CodeCancelled,
	ErrConfigLoad:        CodeConfigLoad,
	ErrDecryption:        CodeDecryption,
	ErrEncryption:        CodeEncryption,
	ErrSchemaViolation:   CodeSchemaViolation,
	ErrCircuitOpen:       CodeCircuitOpen,
}

// codePriority lists sentinels in match order for wrapped chains. A chain may
// wrap more than one sentinel (an open circuit is also a provider error), so
// the more specific ones come first.
var codePriority = []error{
	ErrInvalidTeamMember,
	ErrCircuitOpen,
	ErrSchemaViolation,
	ErrRateLimit,
	ErrTimeout,
	ErrCancelled,
	ErrDecode,
	ErrNotFound,
	ErrInvalidInput,
	ErrTransport,
	ErrDecryption,
	ErrEncryption,
	ErrConfigLoad,
	ErrProviderError,
}

// ErrorCodeOf returns the machine-parseable error code for the given error.
// Returns CodeUnknown if no matching sentinel is found.
func ErrorCodeOf(err error) ErrorCode {
	if err == nil {
		return CodeUnknown
	}

	// Fast path: direct sentinel lookup.
	if code, ok := errorCodeMap[err]; ok {
		return code
	}

	for _, sentinel := range codePriority {
		if errors.Is(err, sentinel) {
			return errorCodeMap[sentinel]
		}
	}
	if errors.Is(err, context.Canceled) {
		return CodeCancelled
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return CodeTimeout
	}
	return CodeUnknown
}

// Code returns the ErrorCode for this DomainError's underlying sentinel.
func (e *DomainError) Code() ErrorCode {
	return ErrorCodeOf(e.Err)
}

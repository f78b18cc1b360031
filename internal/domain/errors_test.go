package domain

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDomainErrorFormat(t *testing.T) {
	err := NewDomainError("Client.GiftIdeas", ErrTransport, "status 502")
	want := "Client.GiftIdeas: status 502: transport error"
	if err.Error() != want {
		t.Errorf("got %q, want %q", err.Error(), want)
	}
}

func TestDomainErrorFormatNoDetail(t *testing.T) {
	err := NewDomainError("Decoder.Flush", ErrDecode, "")
	want := "Decoder.Flush: malformed text stream"
	if err.Error() != want {
		t.Errorf("got %q, want %q", err.Error(), want)
	}
}

func TestDomainErrorUnwrap(t *testing.T) {
	err := NewDomainError("Server.GiftIdeas", ErrInvalidTeamMember, "Zed")
	if !errors.Is(err, ErrInvalidTeamMember) {
		t.Error("errors.Is should match ErrInvalidTeamMember")
	}
	var de *DomainError
	if !errors.As(err, &de) {
		t.Fatal("errors.As should match *DomainError")
	}
	if de.Op != "Server.GiftIdeas" {
		t.Errorf("Op = %q, want %q", de.Op, "Server.GiftIdeas")
	}
}

func TestWrapOpNil(t *testing.T) {
	assert.NoError(t, WrapOp("op", nil))
	assert.ErrorIs(t, WrapOp("op", ErrTransport), ErrTransport)
}

func TestIsCancelled(t *testing.T) {
	assert.True(t, IsCancelled(ErrCancelled))
	assert.True(t, IsCancelled(fmt.Errorf("read body: %w", context.Canceled)))
	assert.False(t, IsCancelled(ErrTransport))
	assert.False(t, IsCancelled(nil))
}

func TestErrorCodeOf(t *testing.T) {
	assert.Equal(t, CodeUnknown, ErrorCodeOf(nil))
	assert.Equal(t, CodeTransport, ErrorCodeOf(ErrTransport))
	assert.Equal(t, CodeInvalidTeamMember, ErrorCodeOf(NewDomainError("op", ErrInvalidTeamMember, "x")))
	assert.Equal(t, CodeCancelled, ErrorCodeOf(fmt.Errorf("wrapped: %w", context.Canceled)))
	assert.Equal(t, CodeTimeout, ErrorCodeOf(context.DeadlineExceeded))
	assert.Equal(t, CodeUnknown, ErrorCodeOf(errors.New("something else")))
}

func TestErrorCodeOfPrefersSpecificSentinel(t *testing.T) {
	err := fmt.Errorf("%w: %w", ErrProviderError, ErrCircuitOpen)
	assert.Equal(t, CodeCircuitOpen, ErrorCodeOf(err))
}

func TestDomainErrorCode(t *testing.T) {
	err := NewDomainError("Advisor.GiftIdeas", ErrSchemaViolation, "missing name")
	assert.Equal(t, CodeSchemaViolation, err.Code())
}

func TestErrorCodeOfTransportChain(t *testing.T) {
	notFound := NewDomainError("Client.GiftIdeas", fmt.Errorf("%w: %w", ErrTransport, ErrNotFound), "status 404")
	assert.Equal(t, CodeNotFound, ErrorCodeOf(notFound))

	serverErr := NewDomainError("Client.GiftIdeas", fmt.Errorf("%w: %w", ErrTransport, ErrProviderError), "status 500")
	assert.Equal(t, CodeTransport, ErrorCodeOf(serverErr))
}

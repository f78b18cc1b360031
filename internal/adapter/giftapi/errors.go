package giftapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"gift-advisor/internal/domain"
)

// mapHTTPError turns a non-2xx response into a domain error. Every such
// error matches domain.ErrTransport; the status (or the server's error code)
// adds a more specific sentinel where one applies.
func mapHTTPError(op string, statusCode int, body []byte) error {
	var apiErr domain.APIError
	detail := fmt.Sprintf("status %d", statusCode)
	if json.Unmarshal(body, &apiErr) == nil && apiErr.Message != "" {
		detail += ": " + apiErr.Error()
	} else if s := strings.TrimSpace(string(body)); s != "" {
		detail += ": " + truncate(s, 200)
	}

	var specific error
	switch {
	case apiErr.Code == domain.CodeInvalidTeamMember:
		specific = domain.ErrInvalidTeamMember
	case statusCode == http.StatusTooManyRequests:
		specific = domain.ErrRateLimit
	case statusCode == http.StatusNotFound:
		specific = domain.ErrNotFound
	case statusCode == http.StatusGatewayTimeout:
		specific = domain.ErrTimeout
	case statusCode == http.StatusBadRequest:
		specific = domain.ErrInvalidInput
	case statusCode >= 500:
		specific = domain.ErrProviderError
	}

	err := domain.ErrTransport
	if specific != nil {
		err = fmt.Errorf("%w: %w", domain.ErrTransport, specific)
	}
	return domain.NewDomainError(op, err, detail)
}

// transportError classifies a failed round trip. Cancellation by the caller
// is returned as is so it can be told apart from a network failure.
func transportError(ctx context.Context, op string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("%s: %w", op, ctxErr)
	}
	return domain.NewDomainError(op, domain.ErrTransport, err.Error())
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

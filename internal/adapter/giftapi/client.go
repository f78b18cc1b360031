// Package giftapi is the HTTP client for the gift API: the team roster, the
// streamed trending text and the structured gift ideas.
package giftapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"go.opentelemetry.io/otel/trace"

	"gift-advisor/internal/domain"
	"gift-advisor/internal/infra/config"
	"gift-advisor/internal/infra/middleware"
	"gift-advisor/internal/infra/tracer"
)

// maxResponseBody caps JSON bodies read from the API.
const maxResponseBody = 1 << 20 // 1 MB

// userAgent identifies the client in server logs.
const userAgent = "gift-advisor-client/1"

// Client implements domain.GiftSource over HTTP.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *slog.Logger
}

// New creates a client from configuration.
func New(cfg config.ClientConfig, logger *slog.Logger) (*Client, error) {
	return NewWithHTTPClient(cfg.BaseURL, NewHTTPClient(cfg.Timeout), logger)
}

// NewWithHTTPClient creates a client using hc for every request.
func NewWithHTTPClient(baseURL string, hc *http.Client, logger *slog.Logger) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, domain.NewDomainError("giftapi.New", domain.ErrInvalidInput,
			fmt.Sprintf("base URL %q must be an absolute http(s) URL", baseURL))
	}
	return &Client{baseURL: u.String(), http: hc, logger: logger}, nil
}

// BaseURL returns the server root this client talks to.
func (c *Client) BaseURL() string { return c.baseURL }

// TeamMembers implements domain.GiftSource.
func (c *Client) TeamMembers(ctx context.Context) ([]string, error) {
	var resp domain.TeamMembersResponse
	if err := c.getJSON(ctx, "Client.TeamMembers", "/api/teamMembers", &resp); err != nil {
		return nil, err
	}
	return resp.TeamMembers, nil
}

// GiftIdeas implements domain.GiftSource.
func (c *Client) GiftIdeas(ctx context.Context, member string) ([]domain.GiftIdea, error) {
	var resp domain.GiftIdeasResponse
	if err := c.getJSON(ctx, "Client.GiftIdeas", "/api/gift-ideas/"+url.PathEscape(member), &resp); err != nil {
		return nil, err
	}
	return resp.GiftIdeas, nil
}

// Health fetches the server liveness report.
func (c *Client) Health(ctx context.Context) (domain.HealthResponse, error) {
	var resp domain.HealthResponse
	err := c.getJSON(ctx, "Client.Health", "/api/health", &resp)
	return resp, err
}

// Trending implements domain.GiftSource. The returned body yields the raw
// bytes of the text/event-stream response as they arrive; cancelling ctx
// aborts the transfer. The caller must Close it.
func (c *Client) Trending(ctx context.Context, member string) (io.ReadCloser, error) {
	const op = "Client.Trending"
	ctx, span := tracer.StartSpan(ctx, "giftapi.trending",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(tracer.StringAttr("gift.member", member)),
	)

	resp, err := c.do(ctx, op, "/api/trending/"+url.PathEscape(member), "text/event-stream")
	if err != nil {
		tracer.RecordError(span, err)
		span.End()
		return nil, err
	}
	return &tracedBody{ReadCloser: resp.Body, span: span}, nil
}

func (c *Client) getJSON(ctx context.Context, op, path string, out any) error {
	ctx, span := tracer.StartSpan(ctx, "giftapi.get",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(tracer.StringAttr("http.route", path)),
	)
	defer span.End()

	resp, err := c.do(ctx, op, path, "application/json")
	if err != nil {
		tracer.RecordError(span, err)
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		err = transportError(ctx, op, fmt.Errorf("read response: %w", err))
		tracer.RecordError(span, err)
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		err = domain.NewDomainError(op, domain.ErrTransport, "decode response: "+err.Error())
		tracer.RecordError(span, err)
		return err
	}
	tracer.SetOK(span)
	return nil
}

// do issues a GET and returns the response only for 2xx statuses.
func (c *Client) do(ctx context.Context, op, path, accept string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, domain.NewDomainError(op, domain.ErrInvalidInput, err.Error())
	}
	req.Header.Set("Accept", accept)
	req.Header.Set("User-Agent", userAgent)
	if id := domain.RequestIDFromContext(ctx); id != "" {
		req.Header.Set(middleware.RequestIDHeader, id)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, transportError(ctx, op, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		err := mapHTTPError(op, resp.StatusCode, body)
		c.logger.Debug("gift api error response",
			"op", op,
			"status", resp.StatusCode,
			"request_id", resp.Header.Get(middleware.RequestIDHeader),
			"error", err,
		)
		return nil, err
	}
	return resp, nil
}

// tracedBody ends the trending span when the stream is closed.
type tracedBody struct {
	io.ReadCloser
	span trace.Span
	n    int
	once sync.Once
}

func (b *tracedBody) Read(p []byte) (int, error) {
	n, err := b.ReadCloser.Read(p)
	b.n += n
	return n, err
}

func (b *tracedBody) Close() error {
	err := b.ReadCloser.Close()
	b.once.Do(func() {
		b.span.SetAttributes(tracer.IntAttr("http.response.bytes", b.n))
		tracer.SetOK(b.span)
		b.span.End()
	})
	return err
}

var _ domain.GiftSource = (*Client)(nil)

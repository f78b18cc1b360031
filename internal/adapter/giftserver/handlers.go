package giftserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel/trace"

	"gift-advisor/internal/domain"
	"gift-advisor/internal/infra/middleware"
	"gift-advisor/internal/infra/tracer"
)

// streamWriteTimeout bounds each write; streams push it forward per fragment.
const streamWriteTimeout = 60 * time.Second

func (s *Server) handleTeamMembers(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, domain.TeamMembersResponse{TeamMembers: s.members})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, domain.HealthResponse{
		Status:  "ok",
		Advisor: s.advisor.Name(),
		Members: len(s.members),
	})
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	middleware.WriteAPIError(w, http.StatusNotFound, domain.APIError{
		Code:    domain.CodeNotFound,
		Message: "Not found: " + r.URL.Path,
	})
}

func (s *Server) handleGiftIdeas(w http.ResponseWriter, r *http.Request) {
	member, ok := s.member(w, r)
	if !ok {
		return
	}

	ctx, span := tracer.StartSpan(r.Context(), "giftserver.gift_ideas",
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(tracer.StringAttr("gift.member", member)),
	)
	defer span.End()

	ideas, err := s.advisor.GiftIdeas(ctx, member)
	if err != nil {
		tracer.RecordError(span, err)
		s.writeAdvisorError(w, r, member, err)
		return
	}
	if ideas == nil {
		ideas = []domain.GiftIdea{}
	}
	span.SetAttributes(tracer.IntAttr("gift.ideas", len(ideas)))
	tracer.SetOK(span)
	writeJSON(w, http.StatusOK, domain.GiftIdeasResponse{GiftIdeas: ideas})
}

// handleTrending writes each generated fragment as soon as it is produced.
// Headers go out with the first fragment, so an advisor that fails before
// producing anything still gets a proper error envelope. A failure after
// that aborts the connection: the client must not mistake a truncated
// stream for a complete one.
func (s *Server) handleTrending(w http.ResponseWriter, r *http.Request) {
	member, ok := s.member(w, r)
	if !ok {
		return
	}

	ctx, span := tracer.StartSpan(r.Context(), "giftserver.trending",
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(tracer.StringAttr("gift.member", member)),
	)
	defer span.End()

	rc := http.NewResponseController(w)
	started := false
	fragments := 0

	err := s.advisor.StreamTrending(ctx, member, func(fragment string) error {
		if !started {
			h := w.Header()
			h.Set("Content-Type", "text/event-stream; charset=utf-8")
			h.Set("Cache-Control", "no-cache")
			h.Set("X-Accel-Buffering", "no")
			w.WriteHeader(http.StatusOK)
			started = true
		}
		_ = rc.SetWriteDeadline(time.Now().Add(streamWriteTimeout))
		if _, err := w.Write([]byte(fragment)); err != nil {
			return err
		}
		fragments++
		if err := rc.Flush(); err != nil && !errors.Is(err, http.ErrNotSupported) {
			return err
		}
		return nil
	})
	span.SetAttributes(tracer.IntAttr("gift.fragments", fragments))

	switch {
	case err == nil:
		if !started {
			// Nothing generated: still a valid, empty stream.
			w.Header().Set("Content-Type", "text/event-stream; charset=utf-8")
			w.WriteHeader(http.StatusOK)
		}
		tracer.SetOK(span)
	case ctx.Err() != nil:
		s.logger.Debug("trending stream abandoned by client",
			"member", member,
			"fragments", fragments,
			"request_id", domain.RequestIDFromContext(ctx),
		)
	case !started:
		tracer.RecordError(span, err)
		s.writeAdvisorError(w, r, member, err)
	default:
		tracer.RecordError(span, err)
		s.logger.Warn("trending stream failed mid-way",
			"member", member,
			"fragments", fragments,
			"error", err,
			"request_id", domain.RequestIDFromContext(ctx),
		)
		panic(http.ErrAbortHandler)
	}
}

// member extracts and validates the {member} path value, answering 400 for
// anyone not on the roster.
func (s *Server) member(w http.ResponseWriter, r *http.Request) (string, bool) {
	member := r.PathValue("member")
	if _, ok := s.memberSet[member]; ok {
		return member, true
	}
	middleware.WriteAPIError(w, http.StatusBadRequest, domain.APIError{
		Code:    domain.CodeInvalidTeamMember,
		Message: "Invalid team member",
		Hint:    "Must be one of: " + strings.Join(s.members, ", "),
	})
	return "", false
}

func (s *Server) writeAdvisorError(w http.ResponseWriter, r *http.Request, member string, err error) {
	code := domain.ErrorCodeOf(err)
	status := statusFor(code)
	level := s.logger.Warn
	if status >= http.StatusInternalServerError {
		level = s.logger.Error
	}
	level("advisor failed",
		"member", member,
		"code", code,
		"error", err,
		"request_id", domain.RequestIDFromContext(r.Context()),
	)
	middleware.WriteAPIError(w, status, domain.APIError{
		Code:    code,
		Message: messageFor(code),
	})
}

// statusFor maps an error code to the HTTP status the client understands.
func statusFor(code domain.ErrorCode) int {
	switch code {
	case domain.CodeInvalidTeamMember, domain.CodeInvalidInput:
		return http.StatusBadRequest
	case domain.CodeNotFound:
		return http.StatusNotFound
	case domain.CodeRateLimit:
		return http.StatusTooManyRequests
	case domain.CodeTimeout:
		return http.StatusGatewayTimeout
	case domain.CodeCircuitOpen:
		return http.StatusServiceUnavailable
	case domain.CodeProviderError, domain.CodeSchemaViolation:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func messageFor(code domain.ErrorCode) string {
	switch code {
	case domain.CodeRateLimit:
		return "The suggestion provider is rate limiting requests"
	case domain.CodeTimeout:
		return "The suggestion provider timed out"
	case domain.CodeCircuitOpen:
		return "The suggestion provider is temporarily unavailable"
	case domain.CodeSchemaViolation:
		return "The suggestion provider returned malformed gift ideas"
	case domain.CodeProviderError:
		return "The suggestion provider failed"
	default:
		return "Internal server error"
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

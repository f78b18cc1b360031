// Package giftserver serves the gift API: the team roster, the streamed
// trending text and the structured gift ideas produced by an Advisor.
package giftserver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"gift-advisor/internal/domain"
	"gift-advisor/internal/infra/config"
	"gift-advisor/internal/infra/middleware"
)

// Server is the HTTP front of the gift API.
type Server struct {
	cfg       config.ServerConfig
	advisor   domain.Advisor
	members   []string
	memberSet map[string]struct{}
	logger    *slog.Logger

	httpSrv   *http.Server
	boundAddr string
	cancel    context.CancelFunc
}

// New creates a server answering for members with suggestions from adv.
func New(cfg config.ServerConfig, members []string, adv domain.Advisor, logger *slog.Logger) *Server {
	set := make(map[string]struct{}, len(members))
	for _, m := range members {
		set[m] = struct{}{}
	}
	return &Server{
		cfg:       cfg,
		advisor:   adv,
		members:   append([]string(nil), members...),
		memberSet: set,
		logger:    logger,
	}
}

// Handler returns the routed handler wrapped in the middleware chain. ctx
// bounds the rate limiter's background sweeper.
func (s *Server) Handler(ctx context.Context) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/teamMembers", s.handleTeamMembers)
	mux.HandleFunc("GET /api/trending/{member}", s.handleTrending)
	mux.HandleFunc("GET /api/gift-ideas/{member}", s.handleGiftIdeas)
	mux.HandleFunc("GET /api/health", s.handleHealth)
	mux.HandleFunc("/", s.handleNotFound)

	return middleware.Chain(mux,
		middleware.Recover(s.logger),
		middleware.RequestID,
		middleware.AccessLog(s.logger),
		middleware.SecurityHeaders,
		middleware.CORS(s.cfg.AllowedOrigins),
		middleware.RateLimit(ctx, middleware.RateLimitConfig{
			RequestsPerMin: s.cfg.RateLimitPerMin,
			BurstSize:      s.cfg.RateLimitBurst,
			TrustedProxies: s.cfg.TrustedProxies,
		}),
	)
}

// Start binds the listener and serves in the background.
func (s *Server) Start(ctx context.Context) error {
	hctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.httpSrv = &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(hctx),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		// Streams extend their own write deadline per fragment.
		WriteTimeout: streamWriteTimeout,
		IdleTimeout:  120 * time.Second,
		BaseContext: func(_ net.Listener) context.Context {
			return hctx
		},
	}

	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		cancel()
		return fmt.Errorf("listen %s: %w", s.cfg.Addr, err)
	}
	s.boundAddr = ln.Addr().String()

	go func() {
		s.logger.Info("gift api listening",
			"addr", s.boundAddr,
			"advisor", s.advisor.Name(),
			"members", len(s.members),
		)
		if err := s.httpSrv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("http server error", "error", err)
		}
	}()
	return nil
}

// Addr returns the bound address after Start.
func (s *Server) Addr() string { return s.boundAddr }

// Shutdown stops accepting requests and waits for in-flight ones until ctx
// expires. Open streams are cancelled through their request contexts.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.cancel != nil {
		s.cancel()
	}
	if s.httpSrv == nil {
		return nil
	}
	return s.httpSrv.Shutdown(ctx)
}

package config

import (
	"fmt"
	"net"
	"net/url"
	"strings"

	"gift-advisor/internal/domain"
)

// ValidationError accumulates config validation errors.
type ValidationError struct {
	Errors []string
}

func (v *ValidationError) Error() string {
	return "config validation failed:\n  - " + strings.Join(v.Errors, "\n  - ")
}

// Unwrap lets callers match validation failures with domain.ErrConfigLoad.
func (v *ValidationError) Unwrap() error { return domain.ErrConfigLoad }

// HasErrors reports whether any validation errors have been recorded.
func (v *ValidationError) HasErrors() bool {
	return len(v.Errors) > 0
}

// Add records a formatted validation error.
func (v *ValidationError) Add(format string, args ...interface{}) {
	v.Errors = append(v.Errors, fmt.Sprintf(format, args...))
}

// Validate checks cfg for structural correctness. It returns a *ValidationError
// when one or more problems are found, allowing callers to inspect all issues.
func Validate(cfg *Config) error {
	ve := &ValidationError{}
	validateEnv(cfg, ve)
	validateServer(cfg, ve)
	validateClient(cfg, ve)
	validateAdvisor(cfg, ve)
	validateTeam(cfg, ve)
	validateLogger(cfg, ve)
	validateTracer(cfg, ve)
	if ve.HasErrors() {
		return ve
	}
	return nil
}

func validateEnv(cfg *Config, ve *ValidationError) {
	switch cfg.Env {
	case "development", "production":
	default:
		ve.Add("env %q is invalid (want: development, production)", cfg.Env)
	}
}

func validateServer(cfg *Config, ve *ValidationError) {
	if cfg.Server.Addr == "" {
		ve.Add("server.addr must not be empty")
	} else if _, _, err := net.SplitHostPort(cfg.Server.Addr); err != nil {
		ve.Add("server.addr %q is not a valid host:port", cfg.Server.Addr)
	}
	if cfg.Server.RateLimitPerMin < 0 {
		ve.Add("server.rate_limit_per_min must be >= 0")
	}
	if cfg.Server.RateLimitPerMin > 0 && cfg.Server.RateLimitBurst <= 0 {
		ve.Add("server.rate_limit_burst must be > 0 when rate limiting is enabled")
	}
	for i, cidr := range cfg.Server.TrustedProxies {
		if _, _, err := net.ParseCIDR(cidr); err != nil {
			ve.Add("server.trusted_proxies[%d] %q is not a valid CIDR", i, cidr)
		}
	}
	if cfg.Server.ShutdownTimeout < 0 {
		ve.Add("server.shutdown_timeout must be >= 0")
	}
}

func validateClient(cfg *Config, ve *ValidationError) {
	if err := validateHTTPURL(cfg.Client.BaseURL); err != nil {
		ve.Add("client.base_url: %v", err)
	}
	if cfg.Client.Timeout < 0 {
		ve.Add("client.timeout must be >= 0")
	}
	if _, ok := domain.ParseTarget(cfg.Client.Mode); !ok {
		ve.Add("client.mode %q is invalid (want: stream, list)", cfg.Client.Mode)
	}
}

var validAdvisorProviders = map[string]bool{
	"mock":   true,
	"openai": true,
}

func validateAdvisor(cfg *Config, ve *ValidationError) {
	a := cfg.Advisor
	if !validAdvisorProviders[a.Provider] {
		ve.Add("advisor.provider %q is invalid (want: mock, openai)", a.Provider)
		return
	}
	if a.Provider == "openai" {
		if err := validateHTTPURL(a.BaseURL); err != nil {
			ve.Add("advisor.base_url: %v", err)
		}
		if a.Model == "" {
			ve.Add("advisor.model is required when provider is openai")
		}
		// Outside production the server falls back to the mock advisor.
		if a.APIKey == "" && cfg.IsProduction() {
			ve.Add("advisor.api_key is empty (set via GIFTADVISOR_ADVISOR_API_KEY or OPENAI_API_KEY)")
		}
	}
	if a.MockDelay < 0 {
		ve.Add("advisor.mock_delay must be >= 0")
	}
	if a.CircuitBreaker.Enabled {
		if a.CircuitBreaker.MaxFailures == 0 {
			ve.Add("advisor.circuit_breaker.max_failures must be > 0 when enabled")
		}
		if a.CircuitBreaker.Timeout <= 0 {
			ve.Add("advisor.circuit_breaker.timeout must be > 0 when enabled")
		}
	}
}

func validateTeam(cfg *Config, ve *ValidationError) {
	if len(cfg.TeamMembers) == 0 {
		ve.Add("team_members must not be empty")
		return
	}
	seen := make(map[string]bool, len(cfg.TeamMembers))
	for i, m := range cfg.TeamMembers {
		if strings.TrimSpace(m) == "" {
			ve.Add("team_members[%d] must not be empty", i)
			continue
		}
		if seen[m] {
			ve.Add("team_members[%d]: duplicate member %q", i, m)
		}
		seen[m] = true
	}
}

var (
	validLogLevels  = map[string]bool{"debug": true, "info": true, "warn": true, "warning": true, "error": true}
	validLogFormats = map[string]bool{"text": true, "json": true}
)

func validateLogger(cfg *Config, ve *ValidationError) {
	if !validLogLevels[strings.ToLower(cfg.Logger.Level)] {
		ve.Add("logger.level %q is invalid (want: debug, info, warn, error)", cfg.Logger.Level)
	}
	if !validLogFormats[cfg.Logger.Format] {
		ve.Add("logger.format %q is invalid (want: text, json)", cfg.Logger.Format)
	}
	if cfg.Logger.Output == "" {
		ve.Add("logger.output must not be empty")
	}
}

func validateTracer(cfg *Config, ve *ValidationError) {
	if !cfg.Tracer.Enabled {
		return
	}
	switch cfg.Tracer.Exporter {
	case "stdout", "noop", "":
	default:
		ve.Add("tracer.exporter %q is invalid (want: stdout, noop)", cfg.Tracer.Exporter)
	}
}

func validateHTTPURL(raw string) error {
	if raw == "" {
		return fmt.Errorf("must not be empty")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%q is not a valid URL", raw)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%q must use http or https", raw)
	}
	if u.Host == "" {
		return fmt.Errorf("%q has no host", raw)
	}
	return nil
}

// Package advisor generates trending text and gift ideas for the gift API
// server, either from canned data or from an OpenAI-compatible model.
package advisor

import (
	"fmt"
	"log/slog"

	"gift-advisor/internal/domain"
	"gift-advisor/internal/infra/config"
)

// New builds the advisor selected by cfg.Advisor.Provider, wrapped in a
// circuit breaker when enabled. In development an openai advisor without an
// API key falls back to the mock.
func New(cfg *config.Config, logger *slog.Logger) (domain.Advisor, error) {
	ac := cfg.Advisor

	var adv domain.Advisor
	switch ac.Provider {
	case "mock", "":
		adv = NewMockAdvisor(ac.MockDelay)
	case "openai":
		if ac.APIKey == "" && !cfg.IsProduction() {
			logger.Warn("advisor api key missing, using mock advisor", "provider", ac.Provider)
			adv = NewMockAdvisor(ac.MockDelay)
			break
		}
		adv = NewOpenAIAdvisor(ac, logger)
	default:
		return nil, domain.NewDomainError("advisor.New", domain.ErrInvalidInput,
			fmt.Sprintf("unknown provider %q", ac.Provider))
	}

	if ac.CircuitBreaker.Enabled {
		adv = NewCircuitBreakerAdvisor(adv, ac.CircuitBreaker, logger)
	}
	logger.Info("advisor ready", "advisor", adv.Name(), "circuit_breaker", ac.CircuitBreaker.Enabled)
	return adv, nil
}

package advisor

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gift-advisor/internal/domain"
	"gift-advisor/internal/infra/config"
)

func TestNewSelectsProvider(t *testing.T) {
	logger := slog.New(slog.DiscardHandler)

	tests := []struct {
		name     string
		env      string
		provider string
		apiKey   string
		breaker  bool
		want     any
	}{
		{"mock", "development", "mock", "", false, &MockAdvisor{}},
		{"empty provider", "development", "", "", false, &MockAdvisor{}},
		{"openai with key", "production", "openai", "sk-test", false, &OpenAIAdvisor{}},
		{"openai without key in development", "development", "openai", "", false, &MockAdvisor{}},
		{"breaker wraps", "development", "mock", "", true, &CircuitBreakerAdvisor{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Defaults()
			cfg.Env = tt.env
			cfg.Advisor.Provider = tt.provider
			cfg.Advisor.APIKey = tt.apiKey
			cfg.Advisor.CircuitBreaker.Enabled = tt.breaker

			adv, err := New(cfg, logger)
			require.NoError(t, err)
			assert.IsType(t, tt.want, adv)
		})
	}
}

func TestNewOpenAIWithoutKeyInProduction(t *testing.T) {
	cfg := config.Defaults()
	cfg.Env = "production"
	cfg.Advisor.Provider = "openai"
	cfg.Advisor.APIKey = ""
	cfg.Advisor.CircuitBreaker.Enabled = false

	adv, err := New(cfg, slog.New(slog.DiscardHandler))
	require.NoError(t, err)
	assert.Equal(t, "openai", adv.Name())
}

func TestNewUnknownProvider(t *testing.T) {
	cfg := config.Defaults()
	cfg.Advisor.Provider = "carrier-pigeon"

	_, err := New(cfg, slog.New(slog.DiscardHandler))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

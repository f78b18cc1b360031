package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"gift-advisor/internal/adapter/giftapi"
	"gift-advisor/internal/domain"
	"gift-advisor/internal/infra/config"
	"gift-advisor/internal/infra/logger"
)

// CheckStatus represents the result of a health check.
type CheckStatus string

const (
	StatusPass CheckStatus = "PASS"
	StatusWarn CheckStatus = "WARN"
	StatusFail CheckStatus = "FAIL"
)

// CheckResult holds the outcome of a single health check.
type CheckResult struct {
	Name    string
	Status  CheckStatus
	Message string
	Fix     string // optional fix suggestion
}

// Check is a named health check function.
type Check struct {
	Name string
	Fn   func(cfg *config.Config) CheckResult
}

// doctorTimeout bounds each request made against the gift API.
const doctorTimeout = 5 * time.Second

// runDoctor executes all health checks and writes the report to w.
func runDoctor(w io.Writer, flags cliFlags) error {
	cfgPath := configPath(flags)

	// Server checks still run against defaults when the config is broken.
	cfg, cfgErr := loadConfig(flags)

	checks := []Check{
		{Name: "Config file", Fn: checkConfigFile(cfgPath, cfgErr)},
		{Name: "Advisor", Fn: checkAdvisor},
		{Name: "Team roster", Fn: checkTeamRoster},
		{Name: "Server health", Fn: checkServerHealth},
		{Name: "Team members endpoint", Fn: checkTeamMembersEndpoint},
	}
	if cfg == nil {
		cfg = config.Defaults()
		if flags.Server != "" {
			cfg.Client.BaseURL = strings.TrimRight(flags.Server, "/")
		}
	}

	fmt.Fprintln(w, "giftadvisor doctor")
	fmt.Fprintln(w, strings.Repeat("=", 50))
	fmt.Fprintln(w)

	var pass, warn, fail int
	for _, check := range checks {
		result := check.Fn(cfg)
		result.Name = check.Name

		fmt.Fprintf(w, "  %s %s: %s\n", statusIcon(result.Status), result.Name, result.Message)
		if result.Fix != "" {
			fmt.Fprintf(w, "      Fix: %s\n", result.Fix)
		}

		switch result.Status {
		case StatusPass:
			pass++
		case StatusWarn:
			warn++
		case StatusFail:
			fail++
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, strings.Repeat("-", 50))
	fmt.Fprintf(w, "Results: %d passed, %d warnings, %d failed\n", pass, warn, fail)

	if fail > 0 {
		fmt.Fprintln(w, "\nFix the FAIL issues above before opening the client.")
		return fmt.Errorf("%d check(s) failed", fail)
	}
	if warn > 0 {
		fmt.Fprintln(w, "\ngiftadvisor should work, but consider addressing the warnings.")
	} else {
		fmt.Fprintln(w, "\nAll checks passed! giftadvisor is ready to run.")
	}
	return nil
}

func statusIcon(s CheckStatus) string {
	switch s {
	case StatusPass:
		return "[PASS]"
	case StatusWarn:
		return "[WARN]"
	case StatusFail:
		return "[FAIL]"
	default:
		return "[????]"
	}
}

// checkConfigFile returns a check that reports whether the config file exists
// and loaded. A missing file is only a warning: defaults apply.
func checkConfigFile(cfgPath string, cfgErr error) func(*config.Config) CheckResult {
	return func(_ *config.Config) CheckResult {
		if cfgErr != nil {
			return CheckResult{
				Status:  StatusFail,
				Message: fmt.Sprintf("config error: %v", cfgErr),
				Fix:     fmt.Sprintf("Check %s syntax and the GIFTADVISOR_* variables", cfgPath),
			}
		}

		if _, err := os.Stat(cfgPath); errors.Is(err, os.ErrNotExist) {
			return CheckResult{
				Status:  StatusWarn,
				Message: fmt.Sprintf("no config file at %s; using defaults", cfgPath),
				Fix:     "Create config.yaml or pass --config to customise the server and roster",
			}
		}

		return CheckResult{
			Status:  StatusPass,
			Message: fmt.Sprintf("config loaded from %s", cfgPath),
		}
	}
}

// checkAdvisor reports which suggestion generator the server would use.
func checkAdvisor(cfg *config.Config) CheckResult {
	switch strings.ToLower(cfg.Advisor.Provider) {
	case "", "mock":
		return CheckResult{
			Status:  StatusPass,
			Message: "mock advisor (canned suggestions)",
		}
	case "openai":
		if cfg.Advisor.APIKey == "" {
			status := StatusWarn
			msg := "openai selected without an API key; the server falls back to the mock advisor"
			if cfg.IsProduction() {
				status = StatusFail
				msg = "openai selected without an API key"
			}
			return CheckResult{
				Status:  status,
				Message: msg,
				Fix:     "Set GIFTADVISOR_ADVISOR_API_KEY or advisor.api_key",
			}
		}
		return CheckResult{
			Status:  StatusPass,
			Message: fmt.Sprintf("openai model %s at %s", cfg.Advisor.Model, cfg.Advisor.BaseURL),
		}
	default:
		return CheckResult{
			Status:  StatusFail,
			Message: fmt.Sprintf("unknown advisor provider %q", cfg.Advisor.Provider),
			Fix:     "Use advisor.provider: mock or openai",
		}
	}
}

// checkTeamRoster verifies the configured roster is usable.
func checkTeamRoster(cfg *config.Config) CheckResult {
	if len(cfg.TeamMembers) == 0 {
		return CheckResult{
			Status:  StatusFail,
			Message: "no team members configured",
			Fix:     "Add names under team_members in config.yaml",
		}
	}
	return CheckResult{
		Status:  StatusPass,
		Message: fmt.Sprintf("%d team members configured", len(cfg.TeamMembers)),
	}
}

// checkServerHealth calls /api/health on the configured server.
func checkServerHealth(cfg *config.Config) CheckResult {
	client, err := doctorClient(cfg)
	if err != nil {
		return CheckResult{Status: StatusFail, Message: err.Error()}
	}

	ctx, cancel := context.WithTimeout(context.Background(), doctorTimeout)
	defer cancel()

	health, err := client.Health(ctx)
	if err != nil {
		return CheckResult{
			Status:  StatusFail,
			Message: fmt.Sprintf("%s unreachable: %v", client.BaseURL(), err),
			Fix:     "Start the API with 'giftadvisor serve' or pass --server",
		}
	}
	if health.Status != "ok" {
		return CheckResult{
			Status:  StatusWarn,
			Message: fmt.Sprintf("server reports status %q", health.Status),
		}
	}
	return CheckResult{
		Status:  StatusPass,
		Message: fmt.Sprintf("%s is up (advisor: %s)", client.BaseURL(), health.Advisor),
	}
}

// checkTeamMembersEndpoint fetches the roster the client will show.
func checkTeamMembersEndpoint(cfg *config.Config) CheckResult {
	client, err := doctorClient(cfg)
	if err != nil {
		return CheckResult{Status: StatusFail, Message: err.Error()}
	}

	ctx, cancel := context.WithTimeout(context.Background(), doctorTimeout)
	defer cancel()

	members, err := client.TeamMembers(ctx)
	if err != nil {
		return CheckResult{
			Status:  StatusFail,
			Message: fmt.Sprintf("team members request failed (%s): %v", domain.ErrorCodeOf(err), err),
		}
	}
	if len(members) == 0 {
		return CheckResult{
			Status:  StatusWarn,
			Message: "server returned an empty roster",
			Fix:     "Configure team_members on the server",
		}
	}
	return CheckResult{
		Status:  StatusPass,
		Message: fmt.Sprintf("%d members: %s", len(members), strings.Join(members, ", ")),
	}
}

func doctorClient(cfg *config.Config) (*giftapi.Client, error) {
	return giftapi.NewWithHTTPClient(cfg.Client.BaseURL, giftapi.NewHTTPClient(doctorTimeout), logger.Discard())
}

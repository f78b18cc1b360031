package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gift-advisor/internal/domain"
	"gift-advisor/internal/infra/config"
)

func writeTestFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
}

func TestCheckConfigFile_Missing(t *testing.T) {
	fn := checkConfigFile("/nonexistent/path/config.yaml", nil)
	result := fn(nil)
	if result.Status != StatusWarn {
		t.Errorf("expected WARN for missing config, got %s", result.Status)
	}
	if result.Fix == "" {
		t.Error("expected fix suggestion for missing config")
	}
}

func TestCheckConfigFile_LoadError(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	writeTestFile(t, cfgPath, "env: staging")

	fn := checkConfigFile(cfgPath, &config.ValidationError{Errors: []string{`env "staging" is invalid`}})
	result := fn(nil)
	if result.Status != StatusFail {
		t.Errorf("expected FAIL for invalid config, got %s", result.Status)
	}
	if !strings.Contains(result.Message, "staging") {
		t.Errorf("message should carry the load error, got %q", result.Message)
	}
}

func TestCheckConfigFile_Valid(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	writeTestFile(t, cfgPath, "env: development\n")

	fn := checkConfigFile(cfgPath, nil)
	result := fn(nil)
	if result.Status != StatusPass {
		t.Errorf("expected PASS for valid config, got %s: %s", result.Status, result.Message)
	}
}

func TestCheckAdvisor(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
		want   CheckStatus
	}{
		{"mock", func(*config.Config) {}, StatusPass},
		{"openai with key", func(c *config.Config) {
			c.Advisor.Provider = "openai"
			c.Advisor.APIKey = "sk-test"
		}, StatusPass},
		{"openai without key", func(c *config.Config) { c.Advisor.Provider = "openai" }, StatusWarn},
		{"openai without key in production", func(c *config.Config) {
			c.Env = "production"
			c.Advisor.Provider = "openai"
		}, StatusFail},
		{"unknown", func(c *config.Config) { c.Advisor.Provider = "llama" }, StatusFail},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Defaults()
			tt.mutate(cfg)
			if got := checkAdvisor(cfg).Status; got != tt.want {
				t.Errorf("status = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestCheckTeamRoster(t *testing.T) {
	cfg := config.Defaults()
	if got := checkTeamRoster(cfg).Status; got != StatusPass {
		t.Errorf("default roster: status = %s, want PASS", got)
	}

	cfg.TeamMembers = nil
	if got := checkTeamRoster(cfg).Status; got != StatusFail {
		t.Errorf("empty roster: status = %s, want FAIL", got)
	}
}

func newDoctorServer(t *testing.T, members []string) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/health", func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(domain.HealthResponse{Status: "ok", Advisor: "mock", Members: len(members)})
	})
	mux.HandleFunc("GET /api/teamMembers", func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(domain.TeamMembersResponse{TeamMembers: members})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestCheckServerHealth(t *testing.T) {
	srv := newDoctorServer(t, []string{"Abel"})
	cfg := config.Defaults()
	cfg.Client.BaseURL = srv.URL

	result := checkServerHealth(cfg)
	if result.Status != StatusPass {
		t.Fatalf("expected PASS, got %s: %s", result.Status, result.Message)
	}
	if !strings.Contains(result.Message, "mock") {
		t.Errorf("message should name the advisor, got %q", result.Message)
	}
}

func TestCheckServerHealth_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	cfg := config.Defaults()
	cfg.Client.BaseURL = url

	result := checkServerHealth(cfg)
	if result.Status != StatusFail {
		t.Errorf("expected FAIL, got %s", result.Status)
	}
	if result.Fix == "" {
		t.Error("expected fix suggestion for unreachable server")
	}
}

func TestCheckTeamMembersEndpoint(t *testing.T) {
	srv := newDoctorServer(t, []string{"Abel", "Grettel"})
	cfg := config.Defaults()
	cfg.Client.BaseURL = srv.URL

	result := checkTeamMembersEndpoint(cfg)
	if result.Status != StatusPass {
		t.Fatalf("expected PASS, got %s: %s", result.Status, result.Message)
	}
	if !strings.Contains(result.Message, "Abel, Grettel") {
		t.Errorf("message = %q, want the roster", result.Message)
	}
}

func TestCheckTeamMembersEndpoint_Empty(t *testing.T) {
	srv := newDoctorServer(t, []string{})
	cfg := config.Defaults()
	cfg.Client.BaseURL = srv.URL

	if got := checkTeamMembersEndpoint(cfg).Status; got != StatusWarn {
		t.Errorf("status = %s, want WARN", got)
	}
}

func TestRunDoctor_AllPass(t *testing.T) {
	srv := newDoctorServer(t, []string{"Abel"})
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	writeTestFile(t, cfgPath, "env: development\n")

	var out bytes.Buffer
	err := runDoctor(&out, cliFlags{Config: cfgPath, Server: srv.URL})
	if err != nil {
		t.Fatalf("runDoctor: %v\n%s", err, out.String())
	}
	if !strings.Contains(out.String(), "5 passed, 0 warnings, 0 failed") {
		t.Errorf("unexpected summary:\n%s", out.String())
	}
}

func TestRunDoctor_ServerDown(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	var out bytes.Buffer
	err := runDoctor(&out, cliFlags{Config: filepath.Join(t.TempDir(), "missing.yaml"), Server: url})
	if err == nil {
		t.Fatal("expected error when the server is down")
	}
	if !strings.Contains(out.String(), "[FAIL] Server health") {
		t.Errorf("report should flag the server:\n%s", out.String())
	}
	if !strings.Contains(out.String(), "[WARN] Config file") {
		t.Errorf("report should warn about the missing config:\n%s", out.String())
	}
}

func TestStatusIcon(t *testing.T) {
	tests := map[CheckStatus]string{
		StatusPass: "[PASS]",
		StatusWarn: "[WARN]",
		StatusFail: "[FAIL]",
		"other":    "[????]",
	}
	for status, want := range tests {
		if got := statusIcon(status); got != want {
			t.Errorf("statusIcon(%s) = %s, want %s", status, got, want)
		}
	}
}

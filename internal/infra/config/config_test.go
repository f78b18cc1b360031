package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"gift-advisor/internal/domain"
)

// clearEnv blanks variables from the host environment that Load honours.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"ENV", "HOST", "PORT", "OPENAI_API_KEY", "GIFTADVISOR_CONFIG_KEY"} {
		t.Setenv(k, "")
	}
}

func TestDefaults(t *testing.T) {
	cfg := Defaults()
	if cfg.Server.Addr != ":8000" {
		t.Errorf("Server.Addr = %q, want %q", cfg.Server.Addr, ":8000")
	}
	if cfg.Advisor.Provider != "mock" {
		t.Errorf("Advisor.Provider = %q, want %q", cfg.Advisor.Provider, "mock")
	}
	if len(cfg.TeamMembers) != 10 {
		t.Errorf("TeamMembers = %d entries, want 10", len(cfg.TeamMembers))
	}
	if cfg.IsProduction() {
		t.Error("defaults must not be production")
	}

	// Defaults hand out their own roster slice.
	cfg.TeamMembers[0] = "changed"
	if DefaultTeamMembers[0] != "Abel" {
		t.Errorf("DefaultTeamMembers mutated through Defaults(): %q", DefaultTeamMembers[0])
	}
}

func TestLoadNonExistentReturnsDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Client.Mode != "stream" {
		t.Errorf("expected defaults, got Client.Mode=%q", cfg.Client.Mode)
	}
}

func TestLoadYAML(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
env: production
server:
  addr: "127.0.0.1:9090"
client:
  base_url: "http://gifts.internal:9090"
  timeout: 5s
  mode: list
team_members:
  - Alice
  - Bob
logger:
  level: debug
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !cfg.IsProduction() {
		t.Errorf("Env = %q, want production", cfg.Env)
	}
	if cfg.Server.Addr != "127.0.0.1:9090" {
		t.Errorf("Server.Addr = %q", cfg.Server.Addr)
	}
	if cfg.Client.Timeout != 5*time.Second {
		t.Errorf("Client.Timeout = %v, want 5s", cfg.Client.Timeout)
	}
	if cfg.Client.Mode != "list" {
		t.Errorf("Client.Mode = %q, want list", cfg.Client.Mode)
	}
	if len(cfg.TeamMembers) != 2 || cfg.TeamMembers[1] != "Bob" {
		t.Errorf("TeamMembers = %v", cfg.TeamMembers)
	}
	// Untouched sections keep their defaults.
	if cfg.Advisor.Provider != "mock" {
		t.Errorf("Advisor.Provider = %q, want mock", cfg.Advisor.Provider)
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("server: [unterminated"), 0600); err != nil {
		t.Fatal(err)
	}
	_, err := Load(path)
	if !errors.Is(err, domain.ErrConfigLoad) {
		t.Fatalf("err = %v, want ErrConfigLoad", err)
	}
}

func TestLoadRejectsWorldWritable(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("env: development\n"), 0600); err != nil {
		t.Fatal(err)
	}
	if err := os.Chmod(path, 0666); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected permission error")
	}
}

func TestLoadValidationFailure(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("client:\n  mode: grid\n"), 0600); err != nil {
		t.Fatal(err)
	}
	_, err := Load(path)
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("err = %v, want *ValidationError", err)
	}
	if !errors.Is(err, domain.ErrConfigLoad) {
		t.Error("validation errors should match ErrConfigLoad")
	}
}

func TestEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("GIFTADVISOR_ADVISOR_PROVIDER", "openai")
	t.Setenv("GIFTADVISOR_LOGGER_LEVEL", "debug")
	t.Setenv("GIFTADVISOR_CLIENT_TIMEOUT", "2s")
	t.Setenv("GIFTADVISOR_TEAM_MEMBERS", "Alice, Bob ,,Carol")
	t.Setenv("GIFTADVISOR_SERVER_RATE_LIMIT", "30")

	cfg := Defaults()
	ApplyEnvOverrides(cfg)

	if cfg.Advisor.Provider != "openai" {
		t.Errorf("Advisor.Provider = %q, want openai", cfg.Advisor.Provider)
	}
	if cfg.Logger.Level != "debug" {
		t.Errorf("Logger.Level = %q, want debug", cfg.Logger.Level)
	}
	if cfg.Client.Timeout != 2*time.Second {
		t.Errorf("Client.Timeout = %v, want 2s", cfg.Client.Timeout)
	}
	if got := cfg.TeamMembers; len(got) != 3 || got[1] != "Bob" || got[2] != "Carol" {
		t.Errorf("TeamMembers = %q", got)
	}
	if cfg.Server.RateLimitPerMin != 30 {
		t.Errorf("RateLimitPerMin = %d, want 30", cfg.Server.RateLimitPerMin)
	}
}

func TestEnvOverridesHostPort(t *testing.T) {
	clearEnv(t)
	t.Setenv("HOST", "0.0.0.0")
	t.Setenv("PORT", "9000")
	t.Setenv("ENV", "PRODUCTION")

	cfg := Defaults()
	ApplyEnvOverrides(cfg)

	if cfg.Server.Addr != "0.0.0.0:9000" {
		t.Errorf("Server.Addr = %q, want 0.0.0.0:9000", cfg.Server.Addr)
	}
	if !cfg.IsProduction() {
		t.Errorf("Env = %q, want production", cfg.Env)
	}
}

func TestEnvOverridesOpenAIKeyFallback(t *testing.T) {
	clearEnv(t)
	t.Setenv("OPENAI_API_KEY", "sk-from-env")

	cfg := Defaults()
	ApplyEnvOverrides(cfg)
	if cfg.Advisor.APIKey != "sk-from-env" {
		t.Errorf("APIKey = %q, want sk-from-env", cfg.Advisor.APIKey)
	}

	t.Setenv("GIFTADVISOR_ADVISOR_API_KEY", "sk-explicit")
	cfg = Defaults()
	ApplyEnvOverrides(cfg)
	if cfg.Advisor.APIKey != "sk-explicit" {
		t.Errorf("APIKey = %q, want sk-explicit", cfg.Advisor.APIKey)
	}
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	passphrase := "test-passphrase-123"
	plaintext := "sk-abcdef123456"

	encrypted, err := EncryptValue(plaintext, passphrase)
	if err != nil {
		t.Fatalf("EncryptValue: %v", err)
	}
	decrypted, err := DecryptValue(encrypted, passphrase)
	if err != nil {
		t.Fatalf("DecryptValue: %v", err)
	}
	if decrypted != plaintext {
		t.Errorf("got %q, want %q", decrypted, plaintext)
	}
}

func TestDecryptFailures(t *testing.T) {
	encrypted, err := EncryptValue("secret", "correct-pass")
	if err != nil {
		t.Fatal(err)
	}

	cases := map[string]struct {
		value, pass string
	}{
		"wrong passphrase": {encrypted, "wrong-pass"},
		"no separator":     {"deadbeef", "correct-pass"},
		"bad salt hex":     {"zz:00", "correct-pass"},
		"too short":        {"00112233445566778899aabbccddeeff:00", "correct-pass"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := DecryptValue(tc.value, tc.pass)
			if !errors.Is(err, domain.ErrDecryption) {
				t.Errorf("err = %v, want ErrDecryption", err)
			}
		})
	}
}

func TestLoadDecryptsAPIKey(t *testing.T) {
	clearEnv(t)
	passphrase := "test-config-key"
	encrypted, err := EncryptValue("sk-secret123456", passphrase)
	if err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "advisor:\n  provider: openai\n  api_key: \"enc:" + encrypted + "\"\n"
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("GIFTADVISOR_CONFIG_KEY", passphrase)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Advisor.APIKey != "sk-secret123456" {
		t.Errorf("APIKey = %q, want decrypted value", cfg.Advisor.APIKey)
	}
}

func TestDecryptSecretsNoEncPrefix(t *testing.T) {
	cfg := Defaults()
	cfg.Advisor.APIKey = "plain-key"
	if err := decryptSecrets(cfg, "whatever"); err != nil {
		t.Fatalf("decryptSecrets: %v", err)
	}
	if cfg.Advisor.APIKey != "plain-key" {
		t.Errorf("APIKey = %q, want unchanged", cfg.Advisor.APIKey)
	}
}

package config

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"golang.org/x/crypto/argon2"
	"gopkg.in/yaml.v3"

	"gift-advisor/internal/domain"
)

// Config is the top-level application configuration shared by the server,
// the terminal client and the doctor command.
type Config struct {
	Env         string        `yaml:"env"` // "development" or "production"
	Server      ServerConfig  `yaml:"server"`
	Client      ClientConfig  `yaml:"client"`
	Advisor     AdvisorConfig `yaml:"advisor"`
	TeamMembers []string      `yaml:"team_members"`
	Logger      LoggerConfig  `yaml:"logger"`
	Tracer      TracerConfig  `yaml:"tracer"`
}

// ServerConfig holds the gift API server settings.
type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	RateLimitPerMin int           `yaml:"rate_limit_per_min"` // 0 disables limiting
	RateLimitBurst  int           `yaml:"rate_limit_burst"`
	TrustedProxies  []string      `yaml:"trusted_proxies"` // CIDRs allowed to set X-Forwarded-For
	AllowedOrigins  []string      `yaml:"allowed_origins"` // CORS; "*" allows any
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// ClientConfig holds settings for the terminal client.
type ClientConfig struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"` // time to first response byte; streams may run longer
	Mode    string        `yaml:"mode"`    // "stream" or "list"
}

// AdvisorConfig selects and configures the suggestion generator.
type AdvisorConfig struct {
	Provider       string               `yaml:"provider"` // "mock" or "openai"
	BaseURL        string               `yaml:"base_url"`
	APIKey         string               `yaml:"api_key"`
	Model          string               `yaml:"model"`
	Timeout        time.Duration        `yaml:"timeout"`
	MockDelay      time.Duration        `yaml:"mock_delay"` // pause between mock stream chunks
	CircuitBreaker CircuitBreakerConfig `yaml:"circuit_breaker"`
}

// CircuitBreakerConfig holds circuit breaker settings for the advisor.
type CircuitBreakerConfig struct {
	Enabled     bool          `yaml:"enabled"`
	MaxFailures uint32        `yaml:"max_failures"`
	Timeout     time.Duration `yaml:"timeout"`
	Interval    time.Duration `yaml:"interval"`
}

// LoggerConfig holds logging settings.
type LoggerConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// TracerConfig holds tracing settings.
type TracerConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Exporter string `yaml:"exporter"`
	Endpoint string `yaml:"endpoint"`
}

// DefaultTeamMembers is the roster served when none is configured.
var DefaultTeamMembers = []string{
	"Abel",
	"Francisco Salas",
	"Grettel",
	"Laura Monestel",
	"Luisa Alfaro",
	"David",
	"Maria José Alfaro",
	"Maritza Ortiz",
	"Paola Mora Lopez",
	"Robert Monestel",
}

// IsProduction reports whether the configured environment is production.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

// Defaults returns a Config with sensible defaults.
func Defaults() *Config {
	return &Config{
		Env: "development",
		Server: ServerConfig{
			Addr:            ":8000",
			RateLimitPerMin: 120,
			RateLimitBurst:  20,
			AllowedOrigins:  []string{"*"},
			ShutdownTimeout: 10 * time.Second,
		},
		Client: ClientConfig{
			BaseURL: "http://localhost:8000",
			Timeout: 30 * time.Second,
			Mode:    "stream",
		},
		Advisor: AdvisorConfig{
			Provider:  "mock",
			BaseURL:   "https://api.openai.com/v1",
			Model:     "gpt-4.1-mini",
			Timeout:   60 * time.Second,
			MockDelay: 40 * time.Millisecond,
			CircuitBreaker: CircuitBreakerConfig{
				Enabled:     true,
				MaxFailures: 5,
				Timeout:     30 * time.Second,
				Interval:    60 * time.Second,
			},
		},
		TeamMembers: append([]string(nil), DefaultTeamMembers...),
		Logger: LoggerConfig{
			Level:  "info",
			Format: "text",
			Output: "stderr",
		},
		Tracer: TracerConfig{
			Enabled:  false,
			Exporter: "noop",
		},
	}
}

// Load reads a YAML config file, applies env var overrides, and decrypts
// secrets. A missing file is not an error: defaults plus env apply.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, domain.NewDomainError("config.Load", domain.ErrConfigLoad, err.Error())
		}
	} else {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return nil, fmt.Errorf("resolve config path: %w", err)
		}
		if err := validatePermissions(absPath); err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, domain.NewDomainError("config.Load", domain.ErrConfigLoad, "parse: "+err.Error())
		}
	}

	ApplyEnvOverrides(cfg)

	if passphrase := os.Getenv("GIFTADVISOR_CONFIG_KEY"); passphrase != "" {
		if err := decryptSecrets(cfg, passphrase); err != nil {
			return nil, fmt.Errorf("decrypt secrets: %w", err)
		}
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnvOverrides maps GIFTADVISOR_* env vars to config fields. ENV, HOST
// and PORT are honoured as well so the server starts the same way in a
// container as the service it replaces.
func ApplyEnvOverrides(cfg *Config) {
	if v := os.Getenv("ENV"); v != "" {
		cfg.Env = strings.ToLower(v)
	}
	if v := os.Getenv("GIFTADVISOR_ENV"); v != "" {
		cfg.Env = strings.ToLower(v)
	}

	host, port := os.Getenv("HOST"), os.Getenv("PORT")
	if host != "" || port != "" {
		h, p := splitAddr(cfg.Server.Addr)
		if host != "" {
			h = host
		}
		if port != "" {
			p = port
		}
		cfg.Server.Addr = h + ":" + p
	}
	if v := os.Getenv("GIFTADVISOR_SERVER_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("GIFTADVISOR_SERVER_RATE_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Server.RateLimitPerMin = n
		}
	}
	if v := os.Getenv("GIFTADVISOR_SERVER_TRUSTED_PROXIES"); v != "" {
		cfg.Server.TrustedProxies = splitAndTrim(v, ",")
	}
	if v := os.Getenv("GIFTADVISOR_SERVER_ALLOWED_ORIGINS"); v != "" {
		cfg.Server.AllowedOrigins = splitAndTrim(v, ",")
	}

	if v := os.Getenv("GIFTADVISOR_CLIENT_BASE_URL"); v != "" {
		cfg.Client.BaseURL = v
	}
	if v := os.Getenv("GIFTADVISOR_CLIENT_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Client.Timeout = d
		}
	}
	if v := os.Getenv("GIFTADVISOR_CLIENT_MODE"); v != "" {
		cfg.Client.Mode = v
	}

	if v := os.Getenv("GIFTADVISOR_ADVISOR_PROVIDER"); v != "" {
		cfg.Advisor.Provider = v
	}
	if v := os.Getenv("GIFTADVISOR_ADVISOR_BASE_URL"); v != "" {
		cfg.Advisor.BaseURL = v
	}
	if v := os.Getenv("GIFTADVISOR_ADVISOR_MODEL"); v != "" {
		cfg.Advisor.Model = v
	}
	if v := os.Getenv("GIFTADVISOR_ADVISOR_API_KEY"); v != "" {
		cfg.Advisor.APIKey = v
	} else if v := os.Getenv("OPENAI_API_KEY"); v != "" && cfg.Advisor.APIKey == "" {
		cfg.Advisor.APIKey = v
	}

	if v := os.Getenv("GIFTADVISOR_TEAM_MEMBERS"); v != "" {
		cfg.TeamMembers = splitAndTrim(v, ",")
	}

	if v := os.Getenv("GIFTADVISOR_LOGGER_LEVEL"); v != "" {
		cfg.Logger.Level = v
	}
	if v := os.Getenv("GIFTADVISOR_LOGGER_FORMAT"); v != "" {
		cfg.Logger.Format = v
	}
	if v := os.Getenv("GIFTADVISOR_LOGGER_OUTPUT"); v != "" {
		cfg.Logger.Output = v
	}
	if v := os.Getenv("GIFTADVISOR_TRACER_ENABLED"); v == "true" {
		cfg.Tracer.Enabled = true
	}
	if v := os.Getenv("GIFTADVISOR_TRACER_EXPORTER"); v != "" {
		cfg.Tracer.Exporter = v
	}
}

// splitAddr splits "host:port", tolerating a missing host.
func splitAddr(addr string) (string, string) {
	i := strings.LastIndex(addr, ":")
	if i < 0 {
		return addr, "8000"
	}
	return addr[:i], addr[i+1:]
}

// splitAndTrim splits s by sep, trims whitespace and drops empty elements.
func splitAndTrim(s, sep string) []string {
	parts := strings.Split(s, sep)
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// decryptSecrets finds "enc:..." values and decrypts them in place.
func decryptSecrets(cfg *Config, passphrase string) error {
	key := cfg.Advisor.APIKey
	if !strings.HasPrefix(key, "enc:") {
		return nil
	}
	decrypted, err := DecryptValue(strings.TrimPrefix(key, "enc:"), passphrase)
	if err != nil {
		return fmt.Errorf("advisor api_key: %w", err)
	}
	cfg.Advisor.APIKey = decrypted
	return nil
}

// EncryptValue encrypts a plaintext value with AES-256-GCM using a passphrase.
func EncryptValue(plaintext, passphrase string) (string, error) {
	salt := make([]byte, 16)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return "", domain.NewDomainError("config.EncryptValue", domain.ErrEncryption, "generate salt: "+err.Error())
	}

	gcm, err := newGCM(passphrase, salt)
	if err != nil {
		return "", domain.NewDomainError("config.EncryptValue", domain.ErrEncryption, err.Error())
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", domain.NewDomainError("config.EncryptValue", domain.ErrEncryption, "generate nonce: "+err.Error())
	}

	ciphertext := gcm.Seal(nonce, nonce, []byte(plaintext), nil)
	// Format: hex(salt) + ":" + hex(nonce+ciphertext)
	return hex.EncodeToString(salt) + ":" + hex.EncodeToString(ciphertext), nil
}

// DecryptValue decrypts a value produced by EncryptValue.
func DecryptValue(encrypted, passphrase string) (string, error) {
	const op = "config.DecryptValue"

	saltHex, dataHex, ok := strings.Cut(encrypted, ":")
	if !ok {
		return "", domain.NewDomainError(op, domain.ErrDecryption, "invalid encrypted format")
	}
	salt, err := hex.DecodeString(saltHex)
	if err != nil {
		return "", domain.NewDomainError(op, domain.ErrDecryption, "decode salt: "+err.Error())
	}
	data, err := hex.DecodeString(dataHex)
	if err != nil {
		return "", domain.NewDomainError(op, domain.ErrDecryption, "decode ciphertext: "+err.Error())
	}

	gcm, err := newGCM(passphrase, salt)
	if err != nil {
		return "", domain.NewDomainError(op, domain.ErrDecryption, err.Error())
	}

	nonceSize := gcm.NonceSize()
	if len(data) < nonceSize {
		return "", domain.NewDomainError(op, domain.ErrDecryption, "ciphertext too short")
	}
	nonce, ciphertext := data[:nonceSize], data[nonceSize:]
	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", domain.NewDomainError(op, domain.ErrDecryption, err.Error())
	}
	return string(plaintext), nil
}

func newGCM(passphrase string, salt []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(deriveKey(passphrase, salt))
	if err != nil {
		return nil, fmt.Errorf("create cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("create gcm: %w", err)
	}
	return gcm, nil
}

// deriveKey uses Argon2id to derive a 32-byte key from passphrase + salt.
func deriveKey(passphrase string, salt []byte) []byte {
	return argon2.IDKey([]byte(passphrase), salt, 1, 64*1024, 4, 32)
}

// validatePermissions rejects config files writable by group or others.
func validatePermissions(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat config: %w", err)
	}
	mode := info.Mode().Perm()
	if mode&0o022 != 0 {
		return domain.NewDomainError("config.Load", domain.ErrConfigLoad,
			fmt.Sprintf("%s has insecure permissions %o (want 0600 or 0644)", path, mode))
	}
	return nil
}

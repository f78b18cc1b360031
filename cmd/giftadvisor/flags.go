package main

import (
	"fmt"
	"os"
	"strings"

	"gift-advisor/internal/domain"
	"gift-advisor/internal/infra/config"
)

// cliFlags holds flags that override values from the config file.
type cliFlags struct {
	Config   string
	Server   string
	Mode     string
	LogLevel string
}

// parseFlags extracts --config, --server, --mode and --log-level from args.
// Both "--flag value" and "--flag=value" forms are accepted; anything else is
// ignored.
func parseFlags(args []string) cliFlags {
	var flags cliFlags
	targets := map[string]*string{
		"--config":    &flags.Config,
		"--server":    &flags.Server,
		"--mode":      &flags.Mode,
		"--log-level": &flags.LogLevel,
	}
	for i := 0; i < len(args); i++ {
		name, value, hasValue := strings.Cut(args[i], "=")
		dst, ok := targets[name]
		if !ok {
			continue
		}
		switch {
		case hasValue:
			*dst = value
		case i+1 < len(args):
			*dst = args[i+1]
			i++
		}
	}
	return flags
}

// configPath resolves the config file: --config, then GIFTADVISOR_CONFIG,
// then ./config.yaml.
func configPath(flags cliFlags) string {
	if flags.Config != "" {
		return flags.Config
	}
	if p := os.Getenv("GIFTADVISOR_CONFIG"); p != "" {
		return p
	}
	return "config.yaml"
}

// loadConfig reads the config file and applies CLI overrides on top.
func loadConfig(flags cliFlags) (*config.Config, error) {
	cfg, err := config.Load(configPath(flags))
	if err != nil {
		return nil, err
	}
	if err := applyFlags(cfg, flags); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyFlags(cfg *config.Config, flags cliFlags) error {
	if flags.Server != "" {
		cfg.Client.BaseURL = strings.TrimRight(flags.Server, "/")
	}
	if flags.Mode != "" {
		if _, ok := domain.ParseTarget(flags.Mode); !ok {
			return fmt.Errorf("--mode: unknown mode %q (use stream or list)", flags.Mode)
		}
		cfg.Client.Mode = flags.Mode
	}
	if flags.LogLevel != "" {
		cfg.Logger.Level = flags.LogLevel
	}
	return config.Validate(cfg)
}

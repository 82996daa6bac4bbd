// Package config loads the schedcore demo's YAML configuration, expanding
// ${VAR}/$VAR environment references and layering .env files the same way
// the rest of the pack's loaders do, via godotenv.
package config

import (
	"fmt"
	"os"
	"regexp"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// JobConfig is one statically-declared job entry in the config file.
type JobConfig struct {
	Name                    string `yaml:"name"`
	Cron                    string `yaml:"cron,omitempty"`
	DelayMs                 int64  `yaml:"delay_ms,omitempty"`
	Command                 string `yaml:"command"`
	Timezone                string `yaml:"timezone,omitempty"`
	NonexistentTimeStrategy string `yaml:"nonexistent_time_strategy,omitempty"`
	Overlap                 bool   `yaml:"overlap,omitempty"`
	RunOnce                 bool   `yaml:"run_once,omitempty"`
}

// Config is the top-level demo configuration.
type Config struct {
	LogLevel      string      `yaml:"log_level"`
	DefaultTZ     string      `yaml:"default_timezone"`
	SpeedupFactor float64     `yaml:"speedup_factor,omitempty"`
	Jobs          []JobConfig `yaml:"jobs"`
}

// Default returns the zero-value-safe default configuration.
func Default() *Config {
	return &Config{
		LogLevel:      "info",
		DefaultTZ:     "Etc/UTC",
		SpeedupFactor: 1,
	}
}

// envVarPattern matches ${VAR}, ${VAR:-default}, ${VAR:?error}, and bare
// $VAR references inside a config value.
var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(?::(-|\?)([^}]*))?\}|\$([A-Z_][A-Z0-9_]*)`)

// Load reads and parses a YAML config file, after loading .env/.env.local
// (godotenv.Load never overwrites already-set environment variables) and
// expanding environment references in the raw file text.
func Load(path string) (*Config, error) {
	loadEnvFiles()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	expanded, err := expandEnvVars(string(data))
	if err != nil {
		return nil, fmt.Errorf("expanding environment variables: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("parsing config YAML: %w", err)
	}
	return cfg, nil
}

func loadEnvFiles() {
	for _, f := range []string{".env", ".env.local"} {
		_ = godotenv.Load(f)
	}
}

// expandEnvVars replaces ${VAR}, ${VAR:-default}, ${VAR:?error}, and $VAR
// references with their environment values. A ${VAR:?message} reference
// whose variable is unset is reported as an error instead of silently
// leaving a placeholder in the config.
func expandEnvVars(input string) (string, error) {
	var firstErr error
	out := envVarPattern.ReplaceAllStringFunc(input, func(match string) string {
		groups := envVarPattern.FindStringSubmatch(match)
		name := groups[1]
		if name == "" {
			name = groups[4]
		}
		value, set := os.LookupEnv(name)

		switch groups[2] {
		case "-":
			if !set || value == "" {
				return groups[3]
			}
			return value
		case "?":
			if !set || value == "" {
				if firstErr == nil {
					firstErr = fmt.Errorf("required environment variable %q is not set: %s", name, groups[3])
				}
				return match
			}
			return value
		default:
			if set {
				return value
			}
			return match
		}
	})
	if firstErr != nil {
		return "", firstErr
	}
	return out, nil
}

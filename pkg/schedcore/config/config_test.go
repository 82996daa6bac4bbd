package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestExpandEnvVarsBraced(t *testing.T) {
	t.Setenv("SCHEDCORE_TEST_VAR", "hello")
	got, err := expandEnvVars("value: ${SCHEDCORE_TEST_VAR}")
	if err != nil {
		t.Fatalf("expandEnvVars returned an error: %v", err)
	}
	if got != "value: hello" {
		t.Errorf("expandEnvVars = %q, want %q", got, "value: hello")
	}
}

func TestExpandEnvVarsBareForm(t *testing.T) {
	t.Setenv("SCHEDCORE_BARE", "world")
	got, err := expandEnvVars("value: $SCHEDCORE_BARE")
	if err != nil {
		t.Fatalf("expandEnvVars returned an error: %v", err)
	}
	if got != "value: world" {
		t.Errorf("expandEnvVars = %q, want %q", got, "value: world")
	}
}

func TestExpandEnvVarsDefaultFallback(t *testing.T) {
	os.Unsetenv("SCHEDCORE_MISSING_VAR")
	got, err := expandEnvVars("value: ${SCHEDCORE_MISSING_VAR:-fallback}")
	if err != nil {
		t.Fatalf("expandEnvVars returned an error: %v", err)
	}
	if got != "value: fallback" {
		t.Errorf("expandEnvVars = %q, want %q", got, "value: fallback")
	}
}

func TestExpandEnvVarsDefaultFallbackNotUsedWhenSet(t *testing.T) {
	t.Setenv("SCHEDCORE_SET_VAR", "actual")
	got, err := expandEnvVars("value: ${SCHEDCORE_SET_VAR:-fallback}")
	if err != nil {
		t.Fatalf("expandEnvVars returned an error: %v", err)
	}
	if got != "value: actual" {
		t.Errorf("expandEnvVars = %q, want %q", got, "value: actual")
	}
}

func TestExpandEnvVarsRequiredMissingErrors(t *testing.T) {
	os.Unsetenv("SCHEDCORE_REQUIRED_VAR")
	_, err := expandEnvVars("value: ${SCHEDCORE_REQUIRED_VAR:?must be set}")
	if err == nil {
		t.Fatal("expected an error for a missing required variable")
	}
}

func TestExpandEnvVarsRequiredPresentPassesThrough(t *testing.T) {
	t.Setenv("SCHEDCORE_REQUIRED_VAR", "present")
	got, err := expandEnvVars("value: ${SCHEDCORE_REQUIRED_VAR:?must be set}")
	if err != nil {
		t.Fatalf("expandEnvVars returned an error: %v", err)
	}
	if got != "value: present" {
		t.Errorf("expandEnvVars = %q, want %q", got, "value: present")
	}
}

func TestExpandEnvVarsUnsetWithoutDefaultLeavesPlaceholder(t *testing.T) {
	os.Unsetenv("SCHEDCORE_UNSET_VAR")
	got, err := expandEnvVars("value: ${SCHEDCORE_UNSET_VAR}")
	if err != nil {
		t.Fatalf("expandEnvVars returned an error: %v", err)
	}
	if got != "value: ${SCHEDCORE_UNSET_VAR}" {
		t.Errorf("expandEnvVars = %q, want the placeholder left untouched", got)
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, "info")
	}
	if cfg.DefaultTZ != "Etc/UTC" {
		t.Errorf("DefaultTZ = %q, want %q", cfg.DefaultTZ, "Etc/UTC")
	}
	if cfg.SpeedupFactor != 1 {
		t.Errorf("SpeedupFactor = %v, want 1", cfg.SpeedupFactor)
	}
}

func TestLoadParsesYAMLAndExpandsEnv(t *testing.T) {
	t.Setenv("SCHEDCORE_TEST_CRON", "*/5 * * * *")
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	contents := "log_level: debug\n" +
		"default_timezone: America/Chicago\n" +
		"jobs:\n" +
		"  - name: heartbeat\n" +
		"    cron: \"${SCHEDCORE_TEST_CRON}\"\n" +
		"    command: ping\n"
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("writing temp config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned an error: %v", err)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, "debug")
	}
	if cfg.DefaultTZ != "America/Chicago" {
		t.Errorf("DefaultTZ = %q, want %q", cfg.DefaultTZ, "America/Chicago")
	}
	if len(cfg.Jobs) != 1 {
		t.Fatalf("got %d jobs, want 1", len(cfg.Jobs))
	}
	if cfg.Jobs[0].Cron != "*/5 * * * *" {
		t.Errorf("job cron = %q, want %q", cfg.Jobs[0].Cron, "*/5 * * * *")
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	if err == nil {
		t.Fatal("expected an error for a missing config file")
	}
}

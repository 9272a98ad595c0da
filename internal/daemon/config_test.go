package daemon

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/oliverames/warden/internal/watchdog"
)

func TestParseConfig_MissingFileYieldsDefaults(t *testing.T) {
	cfg, err := ParseConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("ParseConfig: %v", err)
	}
	if cfg.LogLevel != DefaultLogLevel {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, DefaultLogLevel)
	}
	if cfg.Watchdog.Interface != watchdog.DefaultInterface {
		t.Errorf("Watchdog.Interface = %q, want %q", cfg.Watchdog.Interface, watchdog.DefaultInterface)
	}
}

func TestParseConfig_FullFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
log_level: debug
watchdog:
  interface: awdl0
  restore_up_on_exit: true
  shutdown_timeout: 2s
api:
  socket_path: /tmp/warden-test.sock
latency:
  targets: ["1.1.1.1", "8.8.8.8"]
  interval: 10s
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := ParseConfig(path)
	if err != nil {
		t.Fatalf("ParseConfig: %v", err)
	}

	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want debug", cfg.LogLevel)
	}
	if cfg.Watchdog.Interface != "awdl0" {
		t.Errorf("Watchdog.Interface = %q, want awdl0", cfg.Watchdog.Interface)
	}
	if !cfg.Watchdog.RestoreUpOnExit {
		t.Error("Watchdog.RestoreUpOnExit = false, want true")
	}
	if cfg.Watchdog.ShutdownTimeout != 2*time.Second {
		t.Errorf("Watchdog.ShutdownTimeout = %v, want 2s", cfg.Watchdog.ShutdownTimeout)
	}
	if cfg.API.SocketPath != "/tmp/warden-test.sock" {
		t.Errorf("API.SocketPath = %q", cfg.API.SocketPath)
	}
	if len(cfg.Latency.Targets) != 2 || cfg.Latency.Interval != 10*time.Second {
		t.Errorf("Latency = %+v, want two targets at 10s", cfg.Latency)
	}
}

func TestParseConfig_InvalidLogLevel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("log_level: loud\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := ParseConfig(path); err == nil {
		t.Error("ParseConfig with invalid log level = nil error, want error")
	}
}

func TestParseConfig_MalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("log_level: [unclosed\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := ParseConfig(path); err == nil {
		t.Error("ParseConfig with malformed YAML = nil error, want error")
	}
}

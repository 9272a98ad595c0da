package packaging

import (
	"fmt"
	"path/filepath"
)

// GenerateUnitFile produces a complete systemd unit file for the wardend
// service. It calls cfg.ApplyDefaults() to fill in zero-valued fields
// before generating the output.
func GenerateUnitFile(cfg InstallConfig) string {
	cfg.ApplyDefaults()

	configPath := filepath.Join(cfg.ConfigDir, "config.yaml")

	return fmt.Sprintf(`[Unit]
Description=wardend interface watchdog
After=network-pre.target
StartLimitBurst=5
StartLimitIntervalSec=60

[Service]
Type=simple
ExecStart=%s run --config %s
Restart=always
RestartSec=5s
AmbientCapabilities=CAP_NET_ADMIN CAP_NET_RAW
CapabilityBoundingSet=CAP_NET_ADMIN CAP_NET_RAW
ProtectSystem=full
ProtectHome=true
ReadWritePaths=%s

[Install]
WantedBy=multi-user.target
`, cfg.BinaryPath, configPath, cfg.RunDir)
}

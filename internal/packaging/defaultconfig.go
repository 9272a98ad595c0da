package packaging

import "fmt"

// GenerateDefaultConfig produces a minimal default config.yaml for wardend.
// If ifname is empty, a placeholder comment is written instead.
func GenerateDefaultConfig(ifname string) string {
	ifLine := "# interface: p2p0"
	if ifname != "" {
		ifLine = fmt.Sprintf("interface: %s", ifname)
	}

	return fmt.Sprintf(`# wardend configuration
# See documentation for all available options.

log_level: info
watchdog:
  %s
api:
  socket_path: /var/run/warden/api.sock
latency:
  targets: []
`, ifLine)
}

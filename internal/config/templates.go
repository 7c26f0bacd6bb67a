package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const configTemplate = `# bondcheck configuration

[provider]
# MOEX ISS base URL.
base_url = "https://iss.moex.com"
# Per-request timeout in seconds.
timeout_seconds = 10
# Client-side request rate limit (requests per second).
rate_limit = 10

[highlight]
# Overnight deals use a fixed 3-day threshold and ignore extra_days.
overnight = false
# Deal length in days beyond settlement; threshold = today + 1 + extra_days.
extra_days = 2

[refdata]
# Optional issuer-name reference CSV with EMITTER_ID and Issuer columns.
enabled = false
emitter_url = ""

[logging]
# debug, info, warn, error
level = "info"
`

// createTemplateConfig writes a commented config template so a first run
// leaves the user an editable file.
func createTemplateConfig(configDir string) error {
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	path := filepath.Join(configDir, "config.toml")
	if _, err := os.Stat(path); err == nil {
		return nil
	}

	return os.WriteFile(path, []byte(configTemplate), 0644)
}

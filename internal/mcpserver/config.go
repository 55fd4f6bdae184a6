package mcpserver

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
)

// serverConfig holds all configurable MCP server defaults.
// Loaded once at startup from environment variables via loadConfig().
type serverConfig struct {
	// MaxScanFiles bounds the fallback directory scan the discriminator
	// resolver runs when a mapping value isn't resolvable by exact or
	// origin-relative path.
	MaxScanFiles int
	// ExcludeDirs adds directory names to prune during the fallback scan,
	// in addition to the engine's fixed exclusions.
	ExcludeDirs []string
}

// cfg is the active server configuration, initialized at package load time.
var cfg = loadConfig()

// loadConfig reads configuration from HOIST_* environment variables.
// Invalid values log a warning and fall back to the hardcoded default.
func loadConfig() *serverConfig {
	return &serverConfig{
		MaxScanFiles: envInt("HOIST_MAX_SCAN_FILES", 20000),
		ExcludeDirs:  envList("HOIST_EXCLUDE_DIRS"),
	}
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		slog.Warn("invalid int env var, using default", "key", key, "value", v, "default", fallback) //nolint:gosec // G706: values are structured log fields, not format strings
		return fallback
	}
	return n
}

// envList parses a comma-separated env var into a trimmed, non-empty slice.
func envList(key string) []string {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

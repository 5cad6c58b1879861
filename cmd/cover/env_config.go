package main

import (
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/alnah/go-cover/internal/config"
	"github.com/alnah/go-cover/internal/fileutil"
)

// envConfig holds configuration from environment variables.
// Provides CI/CD-friendly overrides without requiring YAML files.
type envConfig struct {
	ConfigPath string        // COVER_CONFIG: config file name or path
	Timeout    time.Duration // COVER_TIMEOUT: markup render timeout
	Font       string        // COVER_FONT: font file path or family name
	BaseDir    string        // COVER_BASE_DIR: run directory root
	Workers    int           // COVER_WORKERS: parallel browsers
}

// knownEnvVars lists valid COVER_* environment variables.
// Used to detect typos and warn users about unknown variables.
var knownEnvVars = map[string]bool{
	"COVER_CONFIG":    true,
	"COVER_TIMEOUT":   true,
	"COVER_FONT":      true,
	"COVER_BASE_DIR":  true,
	"COVER_WORKERS":   true,
	"COVER_CONTAINER": true,
}

// loadEnvConfig reads configuration from environment variables.
// Malformed values are logged and ignored.
func loadEnvConfig(getenv func(string) string, logger *zap.Logger) *envConfig {
	cfg := &envConfig{
		ConfigPath: getenv("COVER_CONFIG"),
		Font:       getenv("COVER_FONT"),
		BaseDir:    getenv("COVER_BASE_DIR"),
	}

	if timeout := getenv("COVER_TIMEOUT"); timeout != "" {
		d, err := time.ParseDuration(timeout)
		if err == nil && d > 0 {
			cfg.Timeout = d
		} else {
			logger.Warn("ignoring invalid COVER_TIMEOUT", zap.String("value", timeout))
		}
	}

	if workers := getenv("COVER_WORKERS"); workers != "" {
		w, err := strconv.Atoi(workers)
		if err == nil && w > 0 {
			cfg.Workers = w
		} else {
			logger.Warn("ignoring invalid COVER_WORKERS", zap.String("value", workers))
		}
	}

	return cfg
}

// warnUnknownEnvVars logs warnings for unrecognized COVER_* variables.
func warnUnknownEnvVars(environ []string, logger *zap.Logger) {
	for _, env := range environ {
		if !strings.HasPrefix(env, "COVER_") {
			continue
		}
		name := strings.SplitN(env, "=", 2)[0]
		if !knownEnvVars[name] {
			logger.Warn("unknown environment variable (typo?)", zap.String("name", name))
		}
	}
}

// applyEnvConfig applies environment values over the config file.
// CLI flags are merged afterwards and win over both.
func applyEnvConfig(env *envConfig, cfg *config.Config) {
	if env.Timeout > 0 {
		cfg.Markup.Timeout = env.Timeout.String()
	}
	if env.BaseDir != "" {
		cfg.Output.BaseDir = env.BaseDir
	}
	if env.Font != "" {
		if fileutil.IsFilePath(env.Font) {
			cfg.Font.Path = env.Font
			cfg.Font.BoldPath = ""
		} else {
			cfg.Font.Families = []string{env.Font}
		}
	}
}

// environ is swapped in tests.
var environ = os.Environ

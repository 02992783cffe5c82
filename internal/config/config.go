// Package config resolves the daemon's settings from environment variables
// with fixed defaults. Every setting is validated at startup; the daemon
// never enters the monitoring loop with an inconsistent configuration.
package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidConfig wraps every startup validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// Defaults.
const (
	DefaultStorePath    = "./monitor.db"
	DefaultLogDir       = "./logs"
	DefaultMetricsPath  = "./web/metrics.json"
	DefaultDeployConfig = "openclaw.json"
	DefaultInterval     = 60 * time.Second
)

// DefaultMonitoredFiles is the fixed default set of files watched for drift.
func DefaultMonitoredFiles() []string {
	return []string{"openclaw.json", "SOUL.md", ".env"}
}

// DefaultLogSources is the fixed default set of log files scanned for
// injection patterns.
func DefaultLogSources() []string {
	return []string{"logs/openclaw.log", "logs/api.log"}
}

// Config holds the resolved daemon settings.
type Config struct {
	StorePath      string        // Where durable records persist
	LogDir         string        // Where the daemon's own log is written
	MetricsPath    string        // Dashboard snapshot output
	DeployConfig   string        // Deployment configuration document audited
	Interval       time.Duration // Time between monitoring cycles
	MonitoredFiles []string      // Files watched for drift
	LogSources     []string      // Log files scanned for injection patterns
}

// Load resolves configuration from an environment in os.Environ form.
func Load(environ []string) (Config, error) {
	env := parseEnviron(environ)

	cfg := Config{
		StorePath:      getOr(env, "SHIELDCLAW_DB", DefaultStorePath),
		LogDir:         getOr(env, "SHIELDCLAW_LOG_DIR", DefaultLogDir),
		MetricsPath:    getOr(env, "SHIELDCLAW_METRICS_PATH", DefaultMetricsPath),
		DeployConfig:   getOr(env, "SHIELDCLAW_DEPLOY_CONFIG", DefaultDeployConfig),
		Interval:       DefaultInterval,
		MonitoredFiles: DefaultMonitoredFiles(),
		LogSources:     DefaultLogSources(),
	}

	if raw, ok := env["MONITOR_INTERVAL"]; ok {
		seconds, err := strconv.Atoi(raw)
		if err != nil {
			return Config{}, fmt.Errorf("%w: MONITOR_INTERVAL %q is not an integer", ErrInvalidConfig, raw)
		}
		cfg.Interval = time.Duration(seconds) * time.Second
	}

	if raw, ok := env["SHIELDCLAW_MONITORED_FILES"]; ok {
		cfg.MonitoredFiles = splitList(raw)
	}
	if raw, ok := env["SHIELDCLAW_LOG_SOURCES"]; ok {
		cfg.LogSources = splitList(raw)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the settings the loop depends on.
func (c Config) Validate() error {
	if c.StorePath == "" {
		return fmt.Errorf("%w: store path is empty", ErrInvalidConfig)
	}
	if c.Interval < time.Second {
		return fmt.Errorf("%w: check interval %s is below one second", ErrInvalidConfig, c.Interval)
	}
	if len(c.MonitoredFiles) == 0 {
		return fmt.Errorf("%w: monitored file list is empty", ErrInvalidConfig)
	}
	return nil
}

func parseEnviron(environ []string) map[string]string {
	env := make(map[string]string, len(environ))
	for _, kv := range environ {
		idx := strings.Index(kv, "=")
		if idx == -1 {
			continue
		}
		env[kv[:idx]] = kv[idx+1:]
	}
	return env
}

func getOr(env map[string]string, key, fallback string) string {
	if v, ok := env[key]; ok && v != "" {
		return v
	}
	return fallback
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

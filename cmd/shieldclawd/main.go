// shieldclawd is the runtime security monitoring daemon. It watches a small
// set of critical files for drift, scans application logs for prompt
// injection phrasing, audits the deployment against a fixed checklist and
// publishes a metrics snapshot for the dashboard.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"shieldclaw/internal/alert"
	"shieldclaw/internal/config"
	"shieldclaw/internal/monitor"
	"shieldclaw/internal/store"
)

func main() {
	os.Exit(run(os.Environ()))
}

// run orchestrates daemon startup and shutdown. It returns an exit code and
// is separated from main() to enable testing.
func run(environ []string) int {
	// A .env file is optional; the environment wins either way.
	_ = godotenv.Load()

	cfg, err := config.Load(environ)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return 1
	}

	if err := os.MkdirAll(cfg.LogDir, 0755); err != nil {
		fmt.Fprintln(os.Stderr, "Error: cannot create log directory:", err)
		return 1
	}

	log, closeLog, err := newLogger(cfg.LogDir)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error: cannot open daemon log:", err)
		return 1
	}
	defer closeLog()

	s, err := store.Open(cfg.StorePath)
	if err != nil {
		log.Error().Err(err).Str("path", cfg.StorePath).Msg("cannot open event store")
		return 1
	}
	defer func() {
		if err := s.Close(); err != nil {
			log.Error().Err(err).Msg("error closing event store")
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dispatcher := alert.LogDispatcher{Log: log}
	m := monitor.New(cfg, s, log, dispatcher)

	if err := m.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Error().Err(err).Msg("monitor aborted")
		return 1
	}
	return 0
}

// newLogger writes structured logs to both the console and monitor.log under
// the log directory, mirroring the daemon's dual stream/file output.
func newLogger(logDir string) (zerolog.Logger, func(), error) {
	logFile, err := os.OpenFile(
		filepath.Join(logDir, "monitor.log"),
		os.O_CREATE|os.O_APPEND|os.O_WRONLY,
		0o600,
	)
	if err != nil {
		return zerolog.Logger{}, nil, err
	}

	console := zerolog.ConsoleWriter{Out: os.Stderr}
	multi := zerolog.MultiLevelWriter(console, logFile)

	log := zerolog.New(multi).With().
		Timestamp().
		Str("component", "monitor").
		Logger()

	return log, func() { logFile.Close() }, nil
}

// shieldclaw-drift is the on-demand drift tool: scan files against their
// baselines, approve drift to establish a new baseline, or render a console
// report over the default monitored set.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"shieldclaw/internal/cli"
	"shieldclaw/internal/config"
	"shieldclaw/internal/drift"
	"shieldclaw/internal/store"
)

// Exit codes: 0 clean, 1 usage or runtime error, 2 drift found.
const (
	exitOK    = 0
	exitError = 1
	exitDrift = 2
)

func main() {
	os.Exit(run(os.Args[1:], os.Environ()))
}

// run executes one subcommand and returns the exit code. Separated from
// main() to enable testing.
func run(args, environ []string) int {
	_ = godotenv.Load()

	cmd, err := cli.ParseArgs(args)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return exitError
	}

	cfg, err := config.Load(environ)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return exitError
	}
	if cmd.StorePath != "" {
		cfg.StorePath = cmd.StorePath
	}

	s, err := store.Open(cfg.StorePath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error: cannot open event store:", err)
		return exitError
	}
	defer s.Close()

	detector := drift.NewDetector(s)

	switch cmd.Subcommand {
	case cli.SubcommandScan:
		return runScan(detector, cmd.Paths)
	case cli.SubcommandApprove:
		return runApprove(detector, cmd.Paths[0])
	case cli.SubcommandReport:
		return runReport(detector, cfg.MonitoredFiles, cmd.JSONOutput)
	}

	fmt.Fprintln(os.Stderr, "Error:", cli.ErrNoSubcommand)
	return exitError
}

func runScan(detector *drift.Detector, paths []string) int {
	result, err := detector.ScanFiles(paths)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return exitError
	}

	out, err := drift.FormatJSON(result)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return exitError
	}
	fmt.Println(out)

	if result.FilesWithDrift > 0 {
		return exitDrift
	}
	return exitOK
}

func runApprove(detector *drift.Detector, path string) int {
	approval, err := detector.Approve(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return exitError
	}

	out, err := drift.FormatJSON(approval)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return exitError
	}
	fmt.Println(out)
	return exitOK
}

func runReport(detector *drift.Detector, files []string, jsonOutput bool) int {
	result, err := detector.ScanFiles(files)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return exitError
	}

	if jsonOutput {
		out, err := drift.FormatJSON(result)
		if err != nil {
			fmt.Fprintln(os.Stderr, "Error:", err)
			return exitError
		}
		fmt.Println(out)
	} else {
		fmt.Print(drift.FormatReport(result))
	}

	if result.FilesWithDrift > 0 {
		return exitDrift
	}
	return exitOK
}

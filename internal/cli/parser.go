package cli

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNoSubcommand is returned when no subcommand is provided.
var ErrNoSubcommand = errors.New("missing subcommand: usage: shieldclaw-drift <scan|approve|report> [flags] [path...]")

// ErrNoPath is returned when a subcommand that needs file paths gets none.
var ErrNoPath = errors.New("no file path provided")

// Subcommand represents the CLI subcommand.
type Subcommand string

const (
	SubcommandScan    Subcommand = "scan"
	SubcommandApprove Subcommand = "approve"
	SubcommandReport  Subcommand = "report"
)

// Command represents the parsed CLI input.
type Command struct {
	Subcommand Subcommand
	Paths      []string // Files to scan or approve

	JSONOutput bool   // --json (report subcommand renders JSON instead of console)
	StorePath  string // --db <path>, overrides SHIELDCLAW_DB
}

// ParseArgs parses CLI arguments into a Command. It expects args to be
// os.Args[1:] (excluding the program name).
func ParseArgs(args []string) (Command, error) {
	if len(args) == 0 {
		return Command{}, ErrNoSubcommand
	}

	sub := Subcommand(args[0])
	switch sub {
	case SubcommandScan, SubcommandApprove, SubcommandReport:
	default:
		return Command{}, fmt.Errorf("unknown subcommand %q: %w", args[0], ErrNoSubcommand)
	}

	cmd := Command{Subcommand: sub}

	i := 1
	for i < len(args) {
		arg := args[i]

		if strings.HasPrefix(arg, "--") {
			switch strings.TrimPrefix(arg, "--") {
			case "json":
				cmd.JSONOutput = true
			case "db":
				if i+1 >= len(args) {
					return Command{}, errors.New("--db requires a value")
				}
				i++
				cmd.StorePath = args[i]
			default:
				return Command{}, fmt.Errorf("unknown flag %q", arg)
			}
			i++
			continue
		}

		cmd.Paths = append(cmd.Paths, arg)
		i++
	}

	switch cmd.Subcommand {
	case SubcommandScan:
		if len(cmd.Paths) == 0 {
			return Command{}, fmt.Errorf("scan: %w", ErrNoPath)
		}
	case SubcommandApprove:
		if len(cmd.Paths) != 1 {
			return Command{}, fmt.Errorf("approve takes exactly one path: %w", ErrNoPath)
		}
	case SubcommandReport:
		if len(cmd.Paths) != 0 {
			return Command{}, errors.New("report takes no paths; it scans the default monitored set")
		}
	}

	return cmd, nil
}

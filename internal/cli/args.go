// Package cli parses command-line arguments for the bootstrap binary.
package cli

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/tis24dev/backupmon/internal/types"
	"github.com/tis24dev/backupmon/internal/version"
)

const (
	defaultConfigDir = "/etc/backupmon"
	defaultScriptDir = "/usr/local/bin"
)

// Args holds the parsed command-line arguments.
type Args struct {
	ConfigDir   string
	ScriptDir   string
	LogLevel    types.LogLevel
	LogFile     string
	DryRun      bool
	NoColor     bool
	ShowVersion bool
	ShowHelp    bool
}

// Parse parses command-line arguments and returns an Args struct.
func Parse() *Args {
	args := &Args{}

	flag.StringVar(&args.ConfigDir, "config-dir", defaultConfigDir,
		"Directory receiving backup.yaml and influxdb-config.yaml")
	flag.StringVar(&args.ConfigDir, "c", defaultConfigDir,
		"Directory receiving the configuration documents (shorthand)")

	flag.StringVar(&args.ScriptDir, "script-dir", defaultScriptDir,
		"Directory receiving the backup engine scripts")

	var logLevelStr string
	flag.StringVar(&logLevelStr, "log-level", "",
		"Log level (debug|info|warning|error|critical)")
	flag.StringVar(&logLevelStr, "l", "",
		"Log level (shorthand)")

	flag.StringVar(&args.LogFile, "log-file", "",
		"Write a plain-text copy of the log to this file")

	flag.BoolVar(&args.DryRun, "dry-run", false,
		"Report planned actions without touching the system")
	flag.BoolVar(&args.DryRun, "n", false,
		"Report planned actions (shorthand)")

	flag.BoolVar(&args.NoColor, "no-color", false,
		"Disable colored output")

	flag.BoolVar(&args.ShowVersion, "version", false,
		"Show version information")
	flag.BoolVar(&args.ShowVersion, "v", false,
		"Show version information (shorthand)")

	flag.BoolVar(&args.ShowHelp, "help", false,
		"Show help message")
	flag.BoolVar(&args.ShowHelp, "h", false,
		"Show help message (shorthand)")

	flag.Usage = func() {
		printHelp(os.Stderr, os.Args[0])
	}

	flag.Parse()

	if logLevelStr != "" {
		args.LogLevel = parseLogLevel(logLevelStr)
	} else {
		args.LogLevel = types.LogLevelInfo
	}

	return args
}

// parseLogLevel converts string to LogLevel.
func parseLogLevel(s string) types.LogLevel {
	switch s {
	case "debug", "5":
		return types.LogLevelDebug
	case "info", "4":
		return types.LogLevelInfo
	case "warning", "3":
		return types.LogLevelWarning
	case "error", "2":
		return types.LogLevelError
	case "critical", "1":
		return types.LogLevelCritical
	case "none", "0":
		return types.LogLevelNone
	default:
		return types.LogLevelInfo
	}
}

// ShowHelp displays the help message and exits.
func ShowHelp() {
	printHelp(os.Stderr, os.Args[0])
	os.Exit(0)
}

// ShowVersion displays version information and exits.
func ShowVersion() {
	printVersion(os.Stdout)
	os.Exit(0)
}

func printHelp(w io.Writer, argv0 string) {
	fmt.Fprintf(w, "Usage: %s [options]\n\n", argv0)
	fmt.Fprintln(w, "backupmon - backup monitoring stack bootstrap")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Options:")
	flag.PrintDefaults()
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Examples:")
	fmt.Fprintf(w, "  %s\n", argv0)
	fmt.Fprintf(w, "  %s --dry-run --log-level debug\n", argv0)
	fmt.Fprintf(w, "  %s -c /etc/backupmon --no-color\n", argv0)
}

func printVersion(w io.Writer) {
	fmt.Fprintln(w, "backupmon")
	fmt.Fprintf(w, "Version: %s\n", version.String())
}

package cli

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/specialistvlad/flowsync/internal/app"
)

// DefaultPort is used when neither -addr nor the PORT variable is set.
const DefaultPort = "3000"

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// defaultAddr listens on every interface, on $PORT when it is set.
func defaultAddr() string {
	if port := os.Getenv("PORT"); port != "" {
		return ":" + port
	}
	return ":" + DefaultPort
}

// validateLogFlags normalizes and checks the shared logging flags.
func validateLogFlags(format, level string) (string, string, error) {
	format = strings.ToLower(format)
	if format != "text" && format != "json" {
		return "", "", &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}

	level = strings.ToLower(level)
	switch level {
	case "debug", "info", "warn", "error":
		// valid
	default:
		return "", "", &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}
	return format, level, nil
}

// splitList turns a comma-separated flag value into its trimmed, non-empty
// elements.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Parse processes the relay's command-line arguments. It returns a populated
// Config, a boolean indicating if the program should exit cleanly, or an
// ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := flag.NewFlagSet("flowsync", flag.ContinueOnError)
	flagSet.SetOutput(output)

	// Custom usage/help text function
	flagSet.Usage = func() {
		fmt.Fprint(output, `
flowsync - A relay that keeps collaborative diagrams in sync.

Usage:
  flowsync [options] [SEED_PATH]

Arguments:
  SEED_PATH
    Path to a single .hcl file or a directory containing .hcl files with the
    diagram the relay starts with. The built-in Hello/World diagram is used
    when omitted.

Options:
`)
		flagSet.PrintDefaults()
	}

	addrFlag := flagSet.String("addr", defaultAddr(), "Address to listen on. Defaults to $PORT when set.")
	seedFlag := flagSet.String("seed", "", "Path to the seed file or directory.")
	sFlag := flagSet.String("s", "", "Path to the seed file or directory (shorthand).")
	staticDirFlag := flagSet.String("static-dir", "", "Directory with the web client, served at '/'. Empty disables it.")
	corsFlag := flagSet.String("cors-origin", app.DefaultCORSOrigin, "Comma-separated list of allowed CORS origins. Empty disables CORS.")
	shutdownFlag := flagSet.Duration("shutdown-timeout", 5*time.Second, "How long to wait for connections to close on shutdown.")
	logFormatFlag := flagSet.String("log-format", "json", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")

	path := ""
	if *seedFlag != "" {
		path = *seedFlag
	} else if *sFlag != "" {
		path = *sFlag
	} else if flagSet.NArg() > 0 {
		path = flagSet.Arg(0)
	}
	slog.Debug("Seed path determined.", "path", path)

	logFormat, logLevel, err := validateLogFlags(*logFormatFlag, *logLevelFlag)
	if err != nil {
		return nil, false, err
	}
	slog.Debug("CLI parameter validation complete.")

	config, err := app.NewConfig(app.Config{
		Addr:            *addrFlag,
		SeedPath:        path,
		StaticDir:       *staticDirFlag,
		LogFormat:       logFormat,
		LogLevel:        logLevel,
		CORSOrigins:     splitList(*corsFlag),
		ShutdownTimeout: *shutdownFlag,
	})
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.", "config", config)
	return config, false, nil
}

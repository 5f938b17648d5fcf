package cli

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/specialistvlad/pullgridgo/internal/app"
	"github.com/specialistvlad/pullgridgo/internal/config"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// overrideList collects repeated --set flags.
type overrideList []config.Override

func (l *overrideList) String() string {
	parts := make([]string, len(*l))
	for i, o := range *l {
		parts[i] = o.String()
	}
	return strings.Join(parts, ",")
}

func (l *overrideList) Set(s string) error {
	o, err := config.ParseOverride(s, "flag")
	if err != nil {
		return err
	}
	*l = append(*l, o)
	return nil
}

// Parse processes command-line arguments. It returns a populated Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := flag.NewFlagSet("pullgrid", flag.ContinueOnError)
	flagSet.SetOutput(output)

	flagSet.Usage = func() {
		fmt.Fprint(output, `
PullGrid - A lazy, pull-driven dataflow runtime for module graphs.

Usage:
  pullgrid [options] [GRAPH_PATH]

Arguments:
  GRAPH_PATH
    Path to a single .hcl file or a directory containing .hcl files.

Options:
`)
		flagSet.PrintDefaults()
	}

	var overrides overrideList
	graphFlag := flagSet.String("graph", "", "Path to the graph file or directory.")
	gFlag := flagSet.String("g", "", "Path to the graph file or directory (shorthand).")
	modulesPathFlag := flagSet.String("modules-path", "", "Additional directory of .hcl files merged into the graph.")
	stateFlag := flagSet.String("state", "", "Presentation state file, loaded on start and saved on exit.")
	framesFlag := flagSet.Int("frames", 1, "Number of frames to run. 0 runs until interrupted.")
	intervalFlag := flagSet.Duration("interval", 0, "Pause between frames, e.g. 100ms.")
	workersFlag := flagSet.Int("workers", 4, "Number of driver modules run concurrently per frame.")
	flagSet.Var(&overrides, "set", "Assign a parameter, as module/param=value. Repeatable.")
	remoteFlag := flagSet.String("remote-url", "", "socket.io server to accept parameter changes from.")
	healthPortFlag := flagSet.Int("healthcheck-port", 0, "Port for the HTTP health check and metrics server. 0 is disabled.")
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
	if *graphFlag != "" {
		path = *graphFlag
	} else if *gFlag != "" {
		path = *gFlag
	} else if flagSet.NArg() > 0 {
		path = flagSet.Arg(0)
	}
	slog.Debug("Graph path determined.", "path", path)

	if path == "" {
		slog.Debug("No graph path provided, printing usage and exiting.")
		flagSet.Usage()
		return nil, true, nil
	}

	logFormat := strings.ToLower(*logFormatFlag)
	if !app.ValidLogFormat(logFormat) {
		return nil, false, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}
	logLevel := strings.ToLower(*logLevelFlag)
	if !app.ValidLogLevel(logLevel) {
		return nil, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}
	slog.Debug("CLI parameter validation complete.")

	cfg, err := app.NewConfig(app.Config{
		GraphPath:       path,
		ModulesPath:     *modulesPathFlag,
		StatePath:       *stateFlag,
		Frames:          *framesFlag,
		Interval:        *intervalFlag,
		WorkerCount:     *workersFlag,
		Overrides:       overrides,
		RemoteURL:       *remoteFlag,
		HealthcheckPort: *healthPortFlag,
		LogFormat:       logFormat,
		LogLevel:        logLevel,
	})
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.", "config", cfg)
	return cfg, false, nil
}

// Package main parses and validates the flags and input passed to the program,
// and then runs the remote console against the target server.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"golang.org/x/term"

	"github.com/M-itch/qtercon/internal/app"
)

var (
	// Input
	password = flag.String("password", "", "rcon password; prompted for when omitted")
	command  = flag.String("command", "", "send a single command, print the response, and exit")
	// Behavior
	intervalFlag = newTrackedDurationFlag(defaultInterval)
	noLogFlag    = trackedBoolFlag{}
	configPath   = flag.String("config", defaultPreferencesFile, "path to the preferences file")
	bufferSize   = flag.Int("buffer", 0,
		"override the response delivery buffer size; 0 uses the default")
	// Output
	colorArg    = flag.String("color", "auto", "color server responses: auto, always, or never")
	showVersion = flag.Bool("version", false, "print the program version")
	version     = "unknown"
	// Verbosity
	quiet          = flag.Bool("q", false, "quiet all output but server responses")
	verbosityLevel = verbosityCounter{}
)

func init() {
	flag.Var(&intervalFlag, "interval",
		"interval between server status polls; accepts values like 500ms, 2s; 0 disables polling")
	flag.Var(&noLogFlag, "no-log", "disable the session log file")
	flag.Var(&verbosityLevel, "v", "increase output verbosity; repeat for more detail")

	// Define custom usage message
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage:  qtercon [options] <host[:port]>")
		fmt.Fprintln(os.Stderr)
		fmt.Fprintln(os.Stderr, "Without -command an interactive console is opened. Lines are sent")
		fmt.Fprintln(os.Stderr, "to the server as rcon commands; /players and /quit are handled locally.")
		fmt.Fprintln(os.Stderr)
		fmt.Fprintln(os.Stderr, "Options:")
		fmt.Fprintln(os.Stderr, "  -password  "+flag.Lookup("password").Usage)
		fmt.Fprintln(os.Stderr, "  -command   "+flag.Lookup("command").Usage)
		fmt.Fprintln(os.Stderr, "  -interval  "+flag.Lookup("interval").Usage)
		fmt.Fprintln(os.Stderr, "  -no-log    "+flag.Lookup("no-log").Usage)
		fmt.Fprintln(os.Stderr, "  -config    "+flag.Lookup("config").Usage)
		fmt.Fprintln(os.Stderr, "  -buffer    "+flag.Lookup("buffer").Usage)
		fmt.Fprintln(os.Stderr, "  -color     "+flag.Lookup("color").Usage)
		fmt.Fprintln(os.Stderr, "  -q         "+flag.Lookup("q").Usage)
		fmt.Fprintln(os.Stderr, "  -v         "+flag.Lookup("v").Usage)
		fmt.Fprintln(os.Stderr, "  -version   "+flag.Lookup("version").Usage)
	}
}

func main() {
	preprocessVerbosityArgs()

	cfg, err := parseConfig()
	if errors.Is(err, errVersionRequested) {
		return
	}
	if err != nil {
		fmt.Printf("Error parsing input: %v\n\n", err)
		flag.Usage()
		os.Exit(1)
	}

	if cfg.Server.Password == "" {
		cfg.Server.Password, err = promptPassword()
		if err != nil {
			fmt.Printf("Error reading password: %v\n", err)
			os.Exit(1)
		}
	}

	client := app.Client{
		Server:     cfg.Server,
		Command:    cfg.Command,
		Interval:   cfg.Interval,
		Logging:    cfg.Logging,
		ColorMode:  cfg.ColorMode,
		BufferSize: cfg.BufferSize,
		Quiet:      cfg.Quiet,
		Verbosity:  cfg.Verbosity,
		Log:        newLogger(cfg.Verbosity),
	}

	if err := client.Validate(); err != nil {
		fmt.Printf("Error in input settings: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := client.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

// promptPassword reads the rcon password from the terminal without echo. A
// non-terminal stdin leaves the password empty, which the server may accept
// for status-only commands.
func promptPassword() (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", nil
	}

	fmt.Fprint(os.Stderr, "Password: ")
	raw, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

// newLogger builds the stderr logger, with the level raised by the -v count.
func newLogger(verbosity int) zerolog.Logger {
	level := zerolog.WarnLevel
	switch {
	case verbosity >= 2:
		level = zerolog.DebugLevel
	case verbosity == 1:
		level = zerolog.InfoLevel
	}

	writer := zerolog.ConsoleWriter{Out: os.Stderr}
	return zerolog.New(writer).Level(level).With().Timestamp().Logger()
}

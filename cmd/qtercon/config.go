package main

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/M-itch/qtercon"
)

const (
	// defaultPort is the default port of Quake 3 engine servers.
	defaultPort = 27960

	// defaultPreferencesFile is the preferences file looked up when -config is not given.
	defaultPreferencesFile = "preferences.ini"

	// defaultInterval is the getstatus poll interval used when no preference overrides it.
	defaultInterval = 2 * time.Second
)

// errVersionRequested is returned when -version flag is used.
var errVersionRequested = errors.New("version requested")

// Config holds all configuration parsed from command-line flags and the
// preferences file.
type Config struct {
	Server     qtercon.Server
	Command    string
	Interval   time.Duration
	Logging    bool
	ColorMode  string
	BufferSize int
	Quiet      bool
	Verbosity  int
}

// parseConfig parses command-line flags, merges in the preferences file, and
// returns a validated Config. Flags take precedence over preferences.
func parseConfig() (*Config, error) {
	flag.Parse()

	if *showVersion {
		fmt.Printf("Version: %s\n", version)
		return nil, errVersionRequested
	}

	if *quiet && verbosityLevel.Value() > 0 {
		return nil, errors.New("-q cannot be combined with -v")
	}

	args := flag.Args()
	if len(args) != 1 {
		return nil, errors.New("invalid number of arguments")
	}

	switch strings.ToLower(*colorArg) {
	case "auto", "always", "never":
		// valid
	default:
		return nil, errors.New("-color must be auto, always, or never")
	}

	prefs, err := loadPreferences(*configPath, *configPath != defaultPreferencesFile)
	if err != nil {
		return nil, fmt.Errorf("error loading preferences: %w", err)
	}

	interval := prefs.Interval
	if intervalFlag.WasSet() {
		interval = intervalFlag.Value()
	}

	logging := prefs.Logging
	if noLogFlag.WasSet() {
		logging = !noLogFlag.Value()
	}

	server, err := parseTarget(args[0], *password)
	if err != nil {
		return nil, fmt.Errorf("error parsing target: %w", err)
	}

	cfg := &Config{
		Server:     server,
		Command:    *command,
		Interval:   interval,
		Logging:    logging,
		ColorMode:  strings.ToLower(*colorArg),
		BufferSize: *bufferSize,
		Quiet:      *quiet,
		Verbosity:  verbosityLevel.Value(),
	}

	return cfg, nil
}

// parseTarget parses a host[:port] argument into a Server. A missing port
// falls back to the default Quake 3 port.
func parseTarget(arg, pass string) (qtercon.Server, error) {
	host := arg
	port := defaultPort

	if h, p, err := net.SplitHostPort(arg); err == nil {
		host = h
		port, err = strconv.Atoi(p)
		if err != nil {
			return qtercon.Server{}, fmt.Errorf("invalid port: %w", err)
		}
		if port < 1 || port > 65535 {
			return qtercon.Server{}, fmt.Errorf("port must be between 1 and 65535, got %d", port)
		}
	}
	host = strings.Trim(host, "[]")
	if host == "" {
		return qtercon.Server{}, errors.New("host must not be empty")
	}

	return qtercon.Server{Host: host, Port: uint16(port), Password: pass}, nil
}

// preferences holds the values read from the INI preferences file.
type preferences struct {
	Interval time.Duration
	Logging  bool
}

// loadPreferences reads the preferences file at path. A missing file yields
// the defaults unless required is true, which happens when the path was given
// explicitly on the command line.
func loadPreferences(path string, required bool) (preferences, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("ini")
	v.SetDefault("console.getstatus_interval", int(defaultInterval/time.Millisecond))
	v.SetDefault("console.logging_enabled", true)

	if err := v.ReadInConfig(); err != nil {
		if !required && errors.Is(err, fs.ErrNotExist) {
			return preferences{Interval: defaultInterval, Logging: true}, nil
		}
		return preferences{}, err
	}

	interval := time.Duration(v.GetInt("console.getstatus_interval")) * time.Millisecond
	if interval < 0 {
		return preferences{}, fmt.Errorf("getstatus_interval must not be negative, got %s", interval)
	}

	return preferences{
		Interval: interval,
		Logging:  v.GetBool("console.logging_enabled"),
	}, nil
}

// onlyRune returns true if the string consists solely of the provided rune.
func onlyRune(s string, r rune) bool {
	if s == "" {
		return false
	}
	for _, ch := range s {
		if ch != r {
			return false
		}
	}
	return true
}

// preprocessVerbosityArgs rewrites os.Args so that shorthand -v/-vv translates to
// canonical -v=N forms before flag parsing. This lets the default flag package
// treat -v as a repeatable count.
func preprocessVerbosityArgs() {
	if len(os.Args) <= 1 {
		return
	}

	filtered := make([]string, 0, len(os.Args)-1)
	for _, arg := range os.Args[1:] {
		switch {
		case arg == "-v" || arg == "--verbose":
			filtered = append(filtered, "-v=1")
		case strings.HasPrefix(arg, "-v="):
			filtered = append(filtered, arg)
		case strings.HasPrefix(arg, "-vv") && onlyRune(arg[1:], 'v'):
			filtered = append(filtered, fmt.Sprintf("-v=%d", len(arg)-1))
		default:
			filtered = append(filtered, arg)
		}
	}

	os.Args = append([]string{os.Args[0]}, filtered...)
}

// Package app drives the qtercon protocol clients as an interactive terminal
// console: it forwards typed commands over rcon, polls server status on a
// timer, renders colorized output, and keeps a session log file.
package app

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/fatih/color"
	"github.com/rs/zerolog"

	"github.com/M-itch/qtercon"
)

// Client runs a remote console session against a single server. The exported
// fields are the session configuration; set them before calling Run.
type Client struct {
	Server qtercon.Server

	// Command, when non-empty, switches to one-shot mode: send it, print the
	// response burst, exit.
	Command string

	// Interval between getstatus polls; zero disables polling.
	Interval time.Duration

	// Logging enables the session log file, written under LogDir.
	Logging bool
	LogDir  string

	ColorMode string // auto, always, or never

	// BufferSize overrides the response delivery buffer; zero keeps the
	// protocol client default.
	BufferSize int

	Quiet     bool
	Verbosity int

	Log zerolog.Logger

	clock   clock.Clock
	out     io.Writer
	in      io.Reader
	logFile io.WriteCloser

	responseWindow time.Duration
	quietWindow    time.Duration

	lastCommand time.Time
	lastSummary string
}

// Validate checks the configured field combination before a session starts.
func (c *Client) Validate() error {
	if c.Server.Host == "" {
		return errors.New("server host is required")
	}
	if c.Server.Port == 0 {
		return errors.New("server port is required")
	}
	if c.Interval < 0 {
		return errors.New("status poll interval must not be negative")
	}
	if c.BufferSize < 0 {
		return errors.New("buffer size must not be negative")
	}
	switch c.ColorMode {
	case colorModeAuto, colorModeAlways, colorModeNever, "":
	default:
		return fmt.Errorf("invalid color mode %q", c.ColorMode)
	}
	if c.Quiet && c.Verbosity > 0 {
		return errors.New("quiet and verbose output are mutually exclusive")
	}
	return nil
}

// init fills in the collaborators a zero Client leaves unset.
func (c *Client) init() {
	if c.clock == nil {
		c.clock = clock.New()
	}
	if c.out == nil {
		c.out = os.Stdout
	}
	if c.in == nil {
		c.in = os.Stdin
	}
	if c.responseWindow == 0 {
		c.responseWindow = defaultResponseWindow
	}
	if c.quietWindow == 0 {
		c.quietWindow = defaultQuietWindow
	}
	color.NoColor = !c.colorEnabled()
}

// Run starts the session and blocks until the context is canceled, the input
// stream ends, or (in one-shot mode) the response burst is over.
func (c *Client) Run(ctx context.Context) error {
	c.init()
	if err := c.Validate(); err != nil {
		return err
	}

	if c.Logging {
		if err := c.openLog(); err != nil {
			return err
		}
		defer func() { _ = c.logFile.Close() }()
	}

	rcon, err := qtercon.NewRcon(c.Server, c.clientOptions()...)
	if err != nil {
		return err
	}
	defer rcon.Close()

	if c.Command != "" {
		return c.runOnce(ctx, rcon)
	}
	return c.runConsole(ctx, rcon)
}

// clientOptions translates the session configuration into protocol client
// options.
func (c *Client) clientOptions() []qtercon.Option {
	opts := []qtercon.Option{qtercon.WithLogger(c.Log)}
	if c.BufferSize > 0 {
		opts = append(opts, qtercon.WithBufferSize(c.BufferSize))
	}
	return opts
}

// runOnce sends a single command and prints every response datagram until the
// server goes quiet.
func (c *Client) runOnce(ctx context.Context, rcon *qtercon.Rcon) error {
	command := strings.TrimSpace(c.Command)
	c.logf("%s > %s\n\n", c.clock.Now().Format(time.DateTime), command)
	if err := rcon.Send([]byte(command)); err != nil {
		return err
	}

	timer := c.clock.Timer(c.responseWindow)
	defer timer.Stop()

	received := false
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-rcon.Receive():
			if !ok {
				return nil
			}
			received = true
			c.printResponse(msg)
			timer.Reset(c.quietWindow)
		case <-timer.C:
			if !received {
				return fmt.Errorf("no response from %s", c.Server.Addr())
			}
			return nil
		}
	}
}

// runConsole is the interactive loop: stdin lines become rcon commands, a
// timer re-issues getstatus, and both response channels are drained as
// datagrams arrive.
func (c *Client) runConsole(ctx context.Context, rcon *qtercon.Rcon) error {
	query, err := qtercon.NewQuery(c.Server, c.clientOptions()...)
	if err != nil {
		return err
	}
	defer query.Close()

	lines := make(chan string)
	go c.readLines(ctx, lines)

	var tick <-chan time.Time
	if c.Interval > 0 {
		ticker := c.clock.Ticker(c.Interval)
		defer ticker.Stop()
		tick = ticker.C
		if err := query.Send("getstatus"); err != nil {
			c.Log.Warn().Err(err).Msg("initial status poll failed")
		}
	}

	// One status command right after connecting, so the session opens with
	// the server state on screen.
	c.dispatch(rcon, "status")

	var state serverState
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-tick:
			if err := query.Send("getstatus"); err != nil {
				c.Log.Warn().Err(err).Msg("status poll failed")
			}
		case msg, ok := <-rcon.Receive():
			if !ok {
				return nil
			}
			c.printResponse(msg)
		case msg, ok := <-query.Receive():
			if !ok {
				return nil
			}
			state = stateFromStatus(qtercon.ParseStatus(msg.Data))
			c.printSummary(state)
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			switch strings.TrimSpace(line) {
			case "/quit":
				return nil
			case "/players":
				fmt.Fprint(c.out, formatPlayers(state.players))
			default:
				c.dispatch(rcon, line)
			}
		}
	}
}

// dispatch forwards one typed line to the server, enforcing a minimum gap
// between commands so a held-down enter key cannot flood the server.
func (c *Client) dispatch(rcon *qtercon.Rcon, line string) {
	command := strings.TrimSpace(line)
	if command == "" {
		return
	}

	now := c.clock.Now()
	if now.Sub(c.lastCommand) < minCommandGap {
		fmt.Fprintln(c.out, c.notice("command dropped: wait a moment between commands"))
		return
	}
	c.lastCommand = now

	c.logf("%s > %s\n\n", now.Format(time.DateTime), command)
	if err := rcon.Send([]byte(command)); err != nil {
		fmt.Fprintf(c.out, "send failed: %v\n", err)
	}
}

// printResponse renders one response datagram and appends the color-stripped
// text to the session log.
func (c *Client) printResponse(msg qtercon.Message) {
	c.logf("%s", qtercon.RemoveColors(msg.Data))
	fmt.Fprint(c.out, c.renderRuns(msg.Data))
}

// printSummary prints the status line when it changes.
func (c *Client) printSummary(state serverState) {
	summary := state.summary()
	if c.Quiet || summary == c.lastSummary {
		return
	}
	c.lastSummary = summary
	fmt.Fprintln(c.out, c.notice(summary))
	if c.Verbosity >= 1 {
		fmt.Fprint(c.out, formatPlayers(state.players))
	}
}

// readLines feeds stdin lines into the session loop and closes the channel on
// end of input.
func (c *Client) readLines(ctx context.Context, lines chan<- string) {
	defer close(lines)
	scanner := bufio.NewScanner(c.in)
	for scanner.Scan() {
		select {
		case lines <- scanner.Text():
		case <-ctx.Done():
			return
		}
	}
}

// openLog opens the append-only session log, named after the target address.
func (c *Client) openLog() error {
	name := fmt.Sprintf("log_%s_%d.log", c.Server.Host, c.Server.Port)
	path := filepath.Join(c.LogDir, name)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	c.logFile = f
	return nil
}

// logf appends to the session log when logging is enabled.
func (c *Client) logf(format string, args ...any) {
	if c.logFile == nil {
		return
	}
	if _, err := fmt.Fprintf(c.logFile, format, args...); err != nil {
		c.Log.Warn().Err(err).Msg("log write failed")
	}
}

package app

import (
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"github.com/M-itch/qtercon"
)

// palette maps the ten in-band color indexes to terminal colors, following
// the id Tech 3 console palette. ^8 and ^9 vary between engines; orange and
// grey are the common readings.
var palette = [10]*color.Color{
	color.New(color.FgBlack),
	color.New(color.FgRed),
	color.New(color.FgGreen),
	color.New(color.FgYellow),
	color.New(color.FgBlue),
	color.New(color.FgCyan),
	color.New(color.FgMagenta),
	color.New(color.FgWhite),
	color.New(color.FgHiYellow),
	color.New(color.FgHiBlack),
}

// noticeColor styles the console's own status lines, as opposed to server
// output.
var noticeColor = color.New(color.FgCyan, color.Bold)

// colorEnabled returns true if color output is enabled, based on both color
// mode and terminal detection.
func (c *Client) colorEnabled() bool {
	switch c.ColorMode {
	case colorModeAlways:
		return true
	case colorModeNever:
		return false
	case colorModeAuto, "":
	default:
		return false
	}

	if _, disabled := os.LookupEnv("NO_COLOR"); disabled {
		return false
	}

	fd := os.Stdout.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// renderRuns converts server text into terminal output, mapping each styled
// run onto the palette. With colors disabled this degrades to the
// color-stripped text.
func (c *Client) renderRuns(data []byte) string {
	var b strings.Builder
	b.Grow(len(data))
	for run := range qtercon.Runs(data) {
		if run.Color == qtercon.ColorNone {
			b.WriteString(run.Text)
			continue
		}
		b.WriteString(palette[run.Color].Sprint(run.Text))
	}
	return b.String()
}

// notice styles a console status line.
func (c *Client) notice(text string) string {
	return noticeColor.Sprint(text)
}

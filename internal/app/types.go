package app

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/M-itch/qtercon"
)

const (
	colorModeAuto   = "auto"
	colorModeAlways = "always"
	colorModeNever  = "never"

	// minCommandGap is the shortest allowed spacing between two rcon
	// commands, keeping a fast-typing operator from flooding the server.
	minCommandGap = time.Second

	// defaultResponseWindow bounds the wait for the first datagram in
	// one-shot mode; defaultQuietWindow is the silence that ends a burst.
	defaultResponseWindow = 2 * time.Second
	defaultQuietWindow    = 300 * time.Millisecond
)

// serverState is the console's snapshot of the latest getstatus response.
type serverState struct {
	variables map[string]string
	players   []qtercon.Player
}

// stateFromStatus converts a parsed status into a console snapshot.
func stateFromStatus(status qtercon.Status) serverState {
	return serverState{variables: status.Variables, players: status.Players}
}

// variable returns the named server variable, or fallback when the server
// did not send it. The parser never substitutes defaults; that is this
// layer's job.
func (s serverState) variable(key, fallback string) string {
	if v, ok := s.variables[key]; ok && v != "" {
		return v
	}
	return fallback
}

// summary renders the one-line server overview: game, player count, map, and
// the color-stripped hostname.
func (s serverState) summary() string {
	game := strings.TrimSpace(
		s.variable("gamename", "") + " " + s.variable("shortversion", ""))
	if game == "" {
		game = "unknown game"
	}

	hostname := qtercon.RemoveColors([]byte(s.variable("sv_hostname", "unnamed")))
	return fmt.Sprintf("%s [%d/%s] %s (%s) - %s",
		game,
		len(s.players),
		s.variable("sv_maxclients", "?"),
		s.variable("mapname", "?"),
		s.variable("g_gametype", "?"),
		hostname,
	)
}

// formatPlayers renders the player list as an aligned table.
func formatPlayers(players []qtercon.Player) string {
	if len(players) == 0 {
		return "no players connected\n"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%6s %5s  %s\n", "SCORE", "PING", "NAME")
	for _, p := range players {
		ping := strconv.Itoa(p.Ping)
		if p.Ping == qtercon.PingConnecting {
			ping = "CNCT"
		}
		fmt.Fprintf(&b, "%6d %5s  %s\n", p.Score, ping, qtercon.RemoveColors([]byte(p.Name)))
	}
	return b.String()
}

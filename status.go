package qtercon

import (
	"strconv"
	"strings"
)

// PingConnecting is the ping value a server reports for a player that is
// still connecting.
const PingConnecting = 999

// Player is one entry of a status response's player list. Name may contain
// embedded color escapes; they are left intact for Runs or RemoveColors to
// handle later.
type Player struct {
	Score int
	Ping  int
	Name  string
}

// Status is the parsed form of a getstatus response: the server's variables
// and its player list in server-supplied order. Both are fresh values per
// ParseStatus call.
type Status struct {
	Variables map[string]string
	Players   []Player
}

// ParseStatus parses a status response body. The first line is the response
// header and carries no data; the second line packs \key\value pairs; each
// following line describes one player. Parsing is best-effort: malformed
// player lines are skipped, and the result only ever contains what the server
// actually sent. ParseStatus is total over all inputs and never fails.
func ParseStatus(raw []byte) Status {
	status := Status{Variables: make(map[string]string)}

	lines := strings.Split(string(raw), "\n")
	if len(lines) < 2 {
		return status
	}

	parseVariables(lines[1], status.Variables)
	for _, line := range lines[2:] {
		if player, ok := parsePlayer(line); ok {
			status.Players = append(status.Players, player)
		}
	}

	return status
}

// parseVariables splits a \key\value line into the map. The wire format has
// no escaping for the separator, so tokens simply alternate; a trailing key
// without a value is dropped.
func parseVariables(line string, vars map[string]string) {
	parts := strings.Split(strings.TrimSuffix(line, "\r"), "\\")
	for i := 1; i+1 < len(parts); i += 2 {
		vars[parts[i]] = parts[i+1]
	}
}

// parsePlayer parses one `<score> <ping> "<name>"` line. The name keeps any
// embedded quotes and color escapes; only the enclosing quote pair is
// stripped. Lines with missing fields or non-numeric score/ping report false.
func parsePlayer(line string) (Player, bool) {
	line = strings.TrimSuffix(line, "\r")
	fields := strings.SplitN(line, " ", 3)
	if len(fields) != 3 {
		return Player{}, false
	}

	score, err := strconv.Atoi(fields[0])
	if err != nil {
		return Player{}, false
	}
	ping, err := strconv.Atoi(fields[1])
	if err != nil {
		return Player{}, false
	}

	name := fields[2]
	if strings.HasPrefix(name, `"`) {
		name = name[1:]
	}
	if strings.HasSuffix(name, `"`) {
		name = name[:len(name)-1]
	}

	return Player{Score: score, Ping: ping, Name: name}, true
}

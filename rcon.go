package qtercon

import (
	"bytes"
)

// rconPrintToken precedes command output in rcon response datagrams.
var rconPrintToken = []byte("print\n")

// Rcon sends authenticated remote console commands to a game server. It is a
// thin framer over the datagram transport: it keeps no command history, does
// not retry, and leaves any rate limiting to the caller.
type Rcon struct {
	*client
}

// NewRcon opens a remote console channel to the server. The returned client
// owns its socket until Close is called.
func NewRcon(server Server, opts ...Option) (*Rcon, error) {
	cfg := defaultOptions()
	for _, opt := range opts {
		opt(&cfg)
	}
	cfg.logger = cfg.logger.With().Str("channel", "rcon").Logger()

	c, err := dialServer(server, rconFilter, cfg)
	if err != nil {
		return nil, err
	}
	return &Rcon{client: c}, nil
}

// Send frames and transmits a single command:
//
//	\xff\xff\xff\xff rcon "<password>" <command>
//
// The password is embedded verbatim, as the legacy protocol demands; a
// password containing a double quote produces a malformed packet, and a
// command is sent byte-for-byte with no validation. Sanitizing input is the
// caller's responsibility.
func (r *Rcon) Send(command []byte) error {
	frame := make([]byte, 0, len(oobPrefix)+7+len(r.server.Password)+2+len(command))
	frame = append(frame, oobPrefix...)
	frame = append(frame, "rcon \""...)
	frame = append(frame, r.server.Password...)
	frame = append(frame, "\" "...)
	frame = append(frame, command...)
	return r.send(frame)
}

// Receive returns the channel on which response payloads are delivered, one
// Message per server datagram, in arrival order. The channel is closed by
// Close. A command may produce zero, one, or several messages.
func (r *Rcon) Receive() <-chan Message {
	return r.recv
}

// Close stops delivery and releases the socket. Safe to call more than once.
func (r *Rcon) Close() {
	r.client.close()
}

// rconFilter strips the out-of-band prefix and the print token from a
// response datagram. Datagrams without the prefix are not rcon responses and
// are dropped.
func rconFilter(data []byte) ([]byte, bool) {
	rest, ok := bytes.CutPrefix(data, []byte(oobPrefix))
	if !ok {
		return nil, false
	}
	if after, ok := bytes.CutPrefix(rest, rconPrintToken); ok {
		rest = after
	}
	return rest, true
}

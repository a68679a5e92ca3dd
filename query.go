package qtercon

import (
	"bytes"
)

// Query sends unauthenticated, fire-and-forget status requests to a game
// server. There is no correlation between a request and its response beyond
// transport-level source matching, so callers that need to tell responses
// apart must not issue overlapping distinct query commands.
type Query struct {
	*client
}

// NewQuery opens a status query channel to the server. The target's password
// is never used on this channel.
func NewQuery(server Server, opts ...Option) (*Query, error) {
	cfg := defaultOptions()
	for _, opt := range opts {
		opt(&cfg)
	}
	cfg.logger = cfg.logger.With().Str("channel", "query").Logger()

	c, err := dialServer(server, queryFilter, cfg)
	if err != nil {
		return nil, err
	}
	return &Query{client: c}, nil
}

// Send transmits a single query command, e.g. "getstatus". No acknowledgment
// exists; re-issuing on a timer is the caller's concern.
func (q *Query) Send(command string) error {
	frame := make([]byte, 0, len(oobPrefix)+len(command))
	frame = append(frame, oobPrefix...)
	frame = append(frame, command...)
	return q.send(frame)
}

// Receive returns the channel on which response payloads are delivered in
// arrival order. The channel is closed by Close. A getstatus response payload
// begins with its statusResponse header line, ready for ParseStatus.
func (q *Query) Receive() <-chan Message {
	return q.recv
}

// Close stops delivery and releases the socket. Safe to call more than once.
func (q *Query) Close() {
	q.client.close()
}

// queryFilter strips the out-of-band prefix from a response datagram and
// drops anything that does not carry it.
func queryFilter(data []byte) ([]byte, bool) {
	return bytes.CutPrefix(data, []byte(oobPrefix))
}

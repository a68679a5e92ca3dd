// Package qtercon implements the out-of-band datagram protocol spoken by
// Quake3-engine-family game servers: the authenticated remote console (rcon)
// command channel, the unauthenticated status query channel, and the parsers
// for the text both of them return.
//
// The protocol is connectionless and unreliable. A request may produce zero,
// one, or several response datagrams; the package surfaces each datagram as it
// arrives and leaves retry, timeout, and polling policy to the caller.
package qtercon

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

const (
	// oobPrefix is the four-byte out-of-band marker that starts every request
	// and every response datagram.
	oobPrefix = "\xff\xff\xff\xff"

	// maxDatagramSize is the largest datagram a Quake3-family server emits.
	maxDatagramSize = 16384

	// defaultBufferSize is the default capacity of a client's receive channel.
	defaultBufferSize = 8
)

// Server identifies the remote console target. It is an immutable value:
// create one per session and hand copies around freely.
type Server struct {
	Host     string
	Port     uint16
	Password string
}

// Addr returns the host:port form of the target address.
func (s Server) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(int(s.Port)))
}

// Message is a single response datagram after protocol framing has been
// stripped. Data is owned by the receiver; the package never aliases it.
type Message struct {
	Data     []byte
	Received time.Time
}

// responseFilter strips per-channel framing from a response datagram. It
// returns false when the datagram does not belong to the channel and must be
// dropped.
type responseFilter func(data []byte) ([]byte, bool)

// client holds the datagram plumbing shared by Rcon and Query: one UDP socket,
// one read pump, one delivery channel.
type client struct {
	log    zerolog.Logger
	server Server
	conn   *net.UDPConn
	recv   chan Message

	ctx       context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once
	wgPump    sync.WaitGroup
}

// dialServer opens the UDP socket and starts the read pump.
func dialServer(server Server, filter responseFilter, cfg options) (*client, error) {
	addr, err := net.ResolveUDPAddr("udp", server.Addr())
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", server.Addr(), err)
	}

	conn, err := net.DialUDP("udp", nil, addr)
	if err != nil {
		return nil, fmt.Errorf("failed to open datagram socket to %s: %w", server.Addr(), err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	c := &client{
		log:    cfg.logger,
		server: server,
		conn:   conn,
		recv:   make(chan Message, cfg.bufferSize),
		ctx:    ctx,
		cancel: cancel,
	}

	c.wgPump.Add(1)
	go c.readPump(filter)

	return c, nil
}

// readPump reads datagrams from the socket until the socket is closed,
// delivering filtered payloads to the receive channel. Deliveries are
// serialized by this single goroutine, in the order the transport surfaces
// them.
func (c *client) readPump(filter responseFilter) {
	defer c.wgPump.Done()

	buf := make([]byte, maxDatagramSize)
	for {
		n, err := c.conn.Read(buf)
		if err != nil {
			if !errors.Is(err, net.ErrClosed) {
				c.log.Debug().Err(err).Msg("read pump terminating")
			}
			return
		}

		data := append([]byte(nil), buf[:n]...)
		payload, ok := filter(data)
		if !ok {
			c.log.Debug().Int("size", n).Msg("dropping unrecognized datagram")
			continue
		}

		select {
		case c.recv <- Message{Data: payload, Received: time.Now()}:
		case <-c.ctx.Done():
			// Client torn down; discard the in-flight datagram.
			return
		}
	}
}

// send writes a single framed datagram to the server. Transport failures are
// returned to the caller; the client never retries.
func (c *client) send(payload []byte) error {
	select {
	case <-c.ctx.Done():
		return net.ErrClosed
	default:
	}

	if _, err := c.conn.Write(payload); err != nil {
		return fmt.Errorf("failed to send datagram to %s: %w", c.server.Addr(), err)
	}
	return nil
}

// close tears the client down: no further deliveries occur after it returns,
// and datagrams still in flight are silently discarded.
func (c *client) close() {
	c.closeOnce.Do(func() {
		c.cancel()

		if err := c.conn.Close(); err != nil {
			c.log.Debug().Err(err).Msg("failed to close socket")
		}

		// The pump only exits once the socket is closed, and it is the sole
		// writer to recv, so closing the channel here is race-free.
		c.wgPump.Wait()
		close(c.recv)
	})
}

// Option configures an Rcon or Query client.
type Option func(*options)

// options stores the configuration for a client.
type options struct {
	logger     zerolog.Logger
	bufferSize int
}

func defaultOptions() options {
	return options{
		logger:     zerolog.Nop(),
		bufferSize: defaultBufferSize,
	}
}

// WithBufferSize sets the capacity of the receive channel.
func WithBufferSize(n int) Option { return func(o *options) { o.bufferSize = n } }

// WithLogger sets the logger for the client.
func WithLogger(logger zerolog.Logger) Option { return func(o *options) { o.logger = logger } }

package qtercon

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testTimeout = 2 * time.Second

// fakeGameServer is a loopback UDP server that records every request it
// receives and answers each one with a fixed set of datagrams.
type fakeGameServer struct {
	conn      *net.UDPConn
	requests  chan []byte
	responses [][]byte
}

func newFakeGameServer(t *testing.T, responses ...[]byte) *fakeGameServer {
	t.Helper()

	conn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	require.NoError(t, err)

	s := &fakeGameServer{
		conn:      conn,
		requests:  make(chan []byte, 16),
		responses: responses,
	}
	go s.serve()
	t.Cleanup(func() { _ = conn.Close() })

	return s
}

func (s *fakeGameServer) serve() {
	buf := make([]byte, maxDatagramSize)
	for {
		n, addr, err := s.conn.ReadFromUDP(buf)
		if err != nil {
			return
		}
		s.requests <- append([]byte(nil), buf[:n]...)
		for _, resp := range s.responses {
			_, _ = s.conn.WriteToUDP(resp, addr)
		}
	}
}

// target returns a Server pointing at the fake server.
func (s *fakeGameServer) target(password string) Server {
	addr := s.conn.LocalAddr().(*net.UDPAddr)
	return Server{Host: "127.0.0.1", Port: uint16(addr.Port), Password: password}
}

// nextRequest waits for the next request datagram the server received.
func (s *fakeGameServer) nextRequest(t *testing.T) []byte {
	t.Helper()
	select {
	case req := <-s.requests:
		return req
	case <-time.After(testTimeout):
		t.Fatal("timed out waiting for a request datagram")
		return nil
	}
}

// nextMessage waits for the next delivery on a client's receive channel.
func nextMessage(t *testing.T, recv <-chan Message) Message {
	t.Helper()
	select {
	case msg, ok := <-recv:
		require.True(t, ok, "receive channel closed unexpectedly")
		return msg
	case <-time.After(testTimeout):
		t.Fatal("timed out waiting for a delivery")
		return Message{}
	}
}

func TestServerAddr(t *testing.T) {
	s := Server{Host: "q3.example.org", Port: 27960, Password: "secret"}
	assert.Equal(t, "q3.example.org:27960", s.Addr())

	s = Server{Host: "::1", Port: 27961}
	assert.Equal(t, "[::1]:27961", s.Addr())
}

func TestNewRconBadHost(t *testing.T) {
	_, err := NewRcon(Server{Host: "host.invalid\x00", Port: 27960})
	assert.Error(t, err)
}

func TestSendAfterClose(t *testing.T) {
	server := newFakeGameServer(t)

	rcon, err := NewRcon(server.target("secret"))
	require.NoError(t, err)
	rcon.Close()

	err = rcon.Send([]byte("status"))
	assert.ErrorIs(t, err, net.ErrClosed)
}

func TestCloseIsIdempotent(t *testing.T) {
	server := newFakeGameServer(t)

	query, err := NewQuery(server.target(""))
	require.NoError(t, err)

	query.Close()
	query.Close()

	_, ok := <-query.Receive()
	assert.False(t, ok, "receive channel must be closed after Close")
}

func TestCloseStopsDelivery(t *testing.T) {
	server := newFakeGameServer(t,
		[]byte(oobPrefix+"print\nlate reply\n"),
	)

	rcon, err := NewRcon(server.target("secret"))
	require.NoError(t, err)

	require.NoError(t, rcon.Send([]byte("status")))
	server.nextRequest(t)
	rcon.Close()

	// Whatever was in flight when Close ran is either delivered before the
	// channel closes or discarded; after the close nothing more arrives.
	deadline := time.After(testTimeout)
	for {
		select {
		case _, ok := <-rcon.Receive():
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("receive channel never closed")
		}
	}
}

func TestSendWithoutResponseDoesNotBlock(t *testing.T) {
	server := newFakeGameServer(t)

	rcon, err := NewRcon(server.target("secret"))
	require.NoError(t, err)
	defer rcon.Close()

	done := make(chan struct{})
	go func() {
		defer close(done)
		assert.NoError(t, rcon.Send([]byte("status")))
		assert.NoError(t, rcon.Send([]byte("serverinfo")))
	}()

	select {
	case <-done:
	case <-time.After(testTimeout):
		t.Fatal("back-to-back sends must not block on missing responses")
	}

	assert.Equal(t, []byte("\xff\xff\xff\xffrcon \"secret\" status"), server.nextRequest(t))
	assert.Equal(t, []byte("\xff\xff\xff\xffrcon \"secret\" serverinfo"), server.nextRequest(t))
}

func TestWithBufferSize(t *testing.T) {
	server := newFakeGameServer(t)

	rcon, err := NewRcon(server.target("secret"), WithBufferSize(1))
	require.NoError(t, err)
	defer rcon.Close()

	assert.Equal(t, 1, cap(rcon.recv))
}

package app

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/M-itch/qtercon"
)

const testTimeout = 2 * time.Second

// fakeGameServer is a loopback UDP server that records incoming requests and
// answers each with a fixed set of datagrams.
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
	buf := make([]byte, 16384)
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

func (s *fakeGameServer) target(password string) qtercon.Server {
	addr := s.conn.LocalAddr().(*net.UDPAddr)
	return qtercon.Server{Host: "127.0.0.1", Port: uint16(addr.Port), Password: password}
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

// expectNoRequest asserts that no request datagram arrives within the window.
func (s *fakeGameServer) expectNoRequest(t *testing.T, window time.Duration) {
	t.Helper()
	select {
	case req := <-s.requests:
		t.Fatalf("unexpected request datagram: %q", req)
	case <-time.After(window):
	}
}

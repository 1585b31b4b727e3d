package network

import (
	"context"
	"net"
	"syscall"
	"time"

	"golang.org/x/sys/unix"
)

// Socket is the narrow UDP abstraction the transport worker needs. A
// real *net.UDPConn is adapted to it by udpSocket; tests substitute an
// in-memory fake.
type Socket interface {
	ReadFrom(buf []byte) (n int, addr net.Addr, err error)
	WriteTo(buf []byte, addr net.Addr) (int, error)
	SetReadDeadline(t time.Time) error
	Close() error
}

// udpSocket adapts *net.UDPConn to Socket.
type udpSocket struct{ conn *net.UDPConn }

func (s udpSocket) ReadFrom(buf []byte) (int, net.Addr, error) { return s.conn.ReadFrom(buf) }
func (s udpSocket) WriteTo(buf []byte, addr net.Addr) (int, error) {
	return s.conn.WriteTo(buf, addr)
}
func (s udpSocket) SetReadDeadline(t time.Time) error { return s.conn.SetReadDeadline(t) }
func (s udpSocket) Close() error                      { return s.conn.Close() }

// ListenServer binds the well-known game port with SO_REUSEPORT set via
// golang.org/x/sys/unix, so a restarted server process does not collide
// with a prior instance's socket still draining.
func ListenServer(addr string) (Socket, error) {
	lc := net.ListenConfig{
		Control: func(network, address string, c syscall.RawConn) error {
			var setErr error
			err := c.Control(func(fd uintptr) {
				setErr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEPORT, 1)
			})
			if err != nil {
				return err
			}
			return setErr
		},
	}
	conn, err := lc.ListenPacket(context.Background(), "udp", addr)
	if err != nil {
		return nil, err
	}
	udpConn, ok := conn.(*net.UDPConn)
	if !ok {
		conn.Close()
		return nil, errNotUDP
	}
	return udpSocket{conn: udpConn}, nil
}

// DialClient opens a UDP socket toward the server; the OS assigns the
// local port, which the collaborator layer reports to any out-of-band
// signalling it performs (out of scope here).
func DialClient(serverAddr string) (Socket, net.Addr, error) {
	raddr, err := net.ResolveUDPAddr("udp", serverAddr)
	if err != nil {
		return nil, nil, err
	}
	conn, err := net.ListenUDP("udp", &net.UDPAddr{})
	if err != nil {
		return nil, nil, err
	}
	return udpSocket{conn: conn}, raddr, nil
}

var errNotUDP = &net.OpError{Op: "listen", Err: errNotUDPConn{}}

type errNotUDPConn struct{}

func (errNotUDPConn) Error() string { return "listener is not a UDP connection" }

package udp

import (
	"errors"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shaanrockz/sharenet/transport"
	"golang.org/x/xerrors"
)

const bufSize = 65000

// NewUDP returns a new udp transport implementation.
func NewUDP() transport.Transport {
	return &UDP{}
}

// UDP implements a transport layer using UDP
//
// - implements transport.Transport
type UDP struct {
}

func checkValidAddr(address string) bool {
	chunks := strings.Split(address, ":")
	if len(chunks) != 2 {
		return false
	}
	if net.ParseIP(chunks[0]) == nil {
		return false
	}
	port, err := strconv.Atoi(chunks[1])
	if err != nil {
		return false
	}
	return port <= 65535
}

// CreateSocket implements transport.Transport
func (n *UDP) CreateSocket(address string) (transport.ClosableSocket, error) {
	if !checkValidAddr(address) {
		return nil, xerrors.Errorf("invalid address %s", address)
	}

	udpAddr, err := net.ResolveUDPAddr("udp", address)
	if err != nil {
		return nil, err
	}

	conn, err := net.ListenUDP("udp", udpAddr)
	if err != nil {
		return nil, err
	}
	address = conn.LocalAddr().String()

	return &Socket{
		conn:   conn,
		myAddr: address,
	}, nil
}

// Socket implements a network socket using UDP.
//
// - implements transport.Socket
// - implements transport.ClosableSocket
type Socket struct {
	conn   *net.UDPConn
	myAddr string
}

// Close implements transport.Socket. It returns an error if already closed.
func (s *Socket) Close() error {
	if s.conn == nil {
		return xerrors.Errorf("socket already closed")
	}
	s.conn.Close()
	s.conn = nil
	return nil
}

// Send implements transport.Socket
func (s *Socket) Send(dest string, pkt transport.Packet, timeout time.Duration) error {
	if !checkValidAddr(dest) {
		return xerrors.Errorf("invalid address %s", dest)
	}
	destUDPAddr, err := net.ResolveUDPAddr("udp", dest)
	if err != nil {
		return err
	}

	if timeout != 0 {
		s.conn.SetWriteDeadline(time.Now().Add(timeout))
	} else {
		s.conn.SetWriteDeadline(time.Time{})
	}

	bytes, err := pkt.Marshal()
	if err != nil {
		return err
	}
	_, err = s.conn.WriteToUDP(bytes, destUDPAddr)
	if errors.Is(err, os.ErrDeadlineExceeded) {
		return transport.TimeoutError(timeout)
	}
	return err
}

// Recv implements transport.Socket. It blocks until a packet is received, or
// the timeout is reached. In the case the timeout is reached, return a
// TimeoutErr.
func (s *Socket) Recv(timeout time.Duration) (transport.Packet, error) {
	pkt := transport.Packet{}

	if timeout != 0 {
		s.conn.SetReadDeadline(time.Now().Add(timeout))
	} else {
		s.conn.SetReadDeadline(time.Time{})
	}

	buffer := make([]byte, bufSize)
	size, _, err := s.conn.ReadFromUDP(buffer)
	if errors.Is(err, os.ErrDeadlineExceeded) {
		return pkt, transport.TimeoutError(timeout)
	}
	if err != nil {
		return pkt, err
	}
	err = pkt.Unmarshal(buffer[:size])
	if err != nil {
		return pkt, err
	}
	return pkt, nil
}

// GetAddress implements transport.Socket. It returns the address assigned. Can
// be useful in the case one provided a :0 address, which makes the system use a
// random free port.
func (s *Socket) GetAddress() string {
	return s.myAddr
}

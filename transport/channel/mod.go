package channel

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/shaanrockz/sharenet/transport"
	"golang.org/x/xerrors"
)

const bufSize = 1024

// NewTransport returns an in-memory transport. Sockets created from the
// same instance can exchange packets; delivery is reliable and ordered.
func NewTransport() transport.Transport {
	return &Transport{
		incomings: make(map[string]chan transport.Packet),
	}
}

// Transport implements an in-memory transport layer
//
// - implements transport.Transport
type Transport struct {
	sync.RWMutex
	incomings map[string]chan transport.Packet
}

// CreateSocket implements transport.Transport
func (t *Transport) CreateSocket(address string) (transport.ClosableSocket, error) {
	t.Lock()
	defer t.Unlock()

	if address == "" {
		address = "127.0.0.1:0"
	}
	// a 0 port means the caller wants a random free one
	if address[len(address)-2:] == ":0" {
		for {
			address = fmt.Sprintf("%s%d", address[:len(address)-1], 1024+rand.Intn(64511))
			if _, ok := t.incomings[address]; !ok {
				break
			}
		}
	}
	if _, ok := t.incomings[address]; ok {
		return nil, xerrors.Errorf("address already in use: %s", address)
	}

	in := make(chan transport.Packet, bufSize)
	t.incomings[address] = in

	return &Socket{
		transport: t,
		myAddr:    address,
		in:        in,
	}, nil
}

func (t *Transport) deliver(dest string, pkt transport.Packet, timeout time.Duration) error {
	t.RLock()
	in, ok := t.incomings[dest]
	t.RUnlock()
	if !ok {
		return xerrors.Errorf("unknown destination address: %s", dest)
	}

	if timeout == 0 {
		in <- pkt.Copy()
		return nil
	}
	select {
	case in <- pkt.Copy():
		return nil
	case <-time.After(timeout):
		return transport.TimeoutError(timeout)
	}
}

// Socket implements an in-memory socket
//
// - implements transport.Socket
// - implements transport.ClosableSocket
type Socket struct {
	transport *Transport
	myAddr    string
	in        chan transport.Packet
}

// Close implements transport.Socket. It returns an error if already closed.
func (s *Socket) Close() error {
	s.transport.Lock()
	defer s.transport.Unlock()

	if _, ok := s.transport.incomings[s.myAddr]; !ok {
		return xerrors.Errorf("socket already closed")
	}
	delete(s.transport.incomings, s.myAddr)
	return nil
}

// Send implements transport.Socket
func (s *Socket) Send(dest string, pkt transport.Packet, timeout time.Duration) error {
	return s.transport.deliver(dest, pkt, timeout)
}

// Recv implements transport.Socket. It blocks until a packet is received, or
// the timeout is reached. In the case the timeout is reached, return a
// TimeoutErr.
func (s *Socket) Recv(timeout time.Duration) (transport.Packet, error) {
	if timeout == 0 {
		return <-s.in, nil
	}
	select {
	case pkt := <-s.in:
		return pkt, nil
	case <-time.After(timeout):
		return transport.Packet{}, transport.TimeoutError(timeout)
	}
}

// GetAddress implements transport.Socket. It returns the address assigned.
func (s *Socket) GetAddress() string {
	return s.myAddr
}

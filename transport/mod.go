package transport

import (
	"encoding/json"
	"fmt"
	"time"
)

// Transport creates sockets bound to an address.
type Transport interface {
	CreateSocket(address string) (ClosableSocket, error)
}

// Factory describes how to create a transport.
type Factory func() Transport

// Socket provides blocking point-to-point packet exchange with timeouts.
type Socket interface {
	// Send sends a packet to the destination. A zero timeout blocks
	// forever; otherwise a TimeoutError is returned on expiry.
	Send(dest string, pkt Packet, timeout time.Duration) error

	// Recv blocks until a packet arrives or the timeout expires.
	Recv(timeout time.Duration) (Packet, error)

	// GetAddress returns the address the socket is bound to.
	GetAddress() string
}

// ClosableSocket is a socket that can be torn down.
type ClosableSocket interface {
	Socket
	Close() error
}

// TimeoutError is returned by Send/Recv when the timeout expires.
type TimeoutError time.Duration

func (e TimeoutError) Error() string {
	return fmt.Sprintf("timeout reached after %s", time.Duration(e))
}

// Is implements support for errors.Is.
func (e TimeoutError) Is(err error) bool {
	_, ok := err.(TimeoutError)
	return ok
}

// Message is the payload of a packet: a registered message type name and
// its JSON encoding.
type Message struct {
	Type    string
	Payload json.RawMessage
}

// Copy returns a deep copy of the message.
func (m Message) Copy() Message {
	payload := make([]byte, len(m.Payload))
	copy(payload, m.Payload)
	return Message{Type: m.Type, Payload: payload}
}

// Header describes the origin and destination of a packet.
type Header struct {
	Source      string
	Destination string
	Timestamp   int64
}

// NewHeader returns a header stamped with the current time.
func NewHeader(source, destination string) Header {
	return Header{
		Source:      source,
		Destination: destination,
		Timestamp:   time.Now().UnixNano(),
	}
}

// Packet is what travels on a socket.
type Packet struct {
	Header *Header
	Msg    *Message
}

// Marshal encodes the packet for the wire.
func (p Packet) Marshal() ([]byte, error) {
	return json.Marshal(&p)
}

// Unmarshal decodes a packet from the wire.
func (p *Packet) Unmarshal(buf []byte) error {
	return json.Unmarshal(buf, p)
}

// Copy returns a deep copy of the packet.
func (p Packet) Copy() Packet {
	header := *p.Header
	msg := p.Msg.Copy()
	return Packet{Header: &header, Msg: &msg}
}

// Package testing provides utilities to set up a full computation network in
// tests: n party nodes plus a crypto provider over an arbitrary transport.
package testing

import (
	"time"

	"github.com/shaanrockz/sharenet/field"
	"github.com/shaanrockz/sharenet/peer"
	"github.com/shaanrockz/sharenet/registry"
	"github.com/shaanrockz/sharenet/transport"
	"github.com/stretchr/testify/require"
)

type template struct {
	field           field.Field
	maxValueBits    int
	secBits         int
	sendTimeout     time.Duration
	protocolTimeout time.Duration
}

func newTemplate() template {
	return template{
		field:           field.Default(),
		maxValueBits:    32,
		secBits:         40,
		sendTimeout:     time.Second,
		protocolTimeout: time.Second * 10,
	}
}

// Option is a configuration option for a test network.
type Option func(*template)

// WithField sets the arithmetic field.
func WithField(f field.Field) Option {
	return func(t *template) {
		t.field = f
	}
}

// WithMaxValueBits sets the application value range.
func WithMaxValueBits(bits int) Option {
	return func(t *template) {
		t.maxValueBits = bits
	}
}

// WithSecBits sets the statistical masking parameter.
func WithSecBits(bits int) Option {
	return func(t *template) {
		t.secBits = bits
	}
}

// WithSendTimeout sets the socket send timeout.
func WithSendTimeout(d time.Duration) Option {
	return func(t *template) {
		t.sendTimeout = d
	}
}

// WithProtocolTimeout sets the blocking protocol wait timeout.
func WithProtocolTimeout(d time.Duration) Option {
	return func(t *template) {
		t.protocolTimeout = d
	}
}

// TestNetwork is a running computation network: n parties and one provider,
// all started, each with its own registry and key material.
type TestNetwork struct {
	Nodes    []peer.Peer
	Provider peer.Provider
}

// NewTestNetwork creates and starts a full network over the transport. Every
// node binds a fresh socket on 127.0.0.1.
func NewTestNetwork(t require.TestingT, fac peer.Factory, provFac peer.ProviderFactory,
	transp transport.Transport, n int, opts ...Option) *TestNetwork {

	tmpl := newTemplate()
	for _, opt := range opts {
		opt(&tmpl)
	}

	sockets := make([]transport.ClosableSocket, n+1)
	participants := make([]string, n)
	for i := range sockets {
		socket, err := transp.CreateSocket("127.0.0.1:0")
		require.NoError(t, err)
		sockets[i] = socket
		if i < n {
			participants[i] = socket.GetAddress()
		}
	}
	providerAddr := sockets[n].GetAddress()

	conf := func(i int) peer.Configuration {
		return peer.Configuration{
			Socket:          sockets[i],
			MessageRegistry: registry.NewRegistry(),
			Field:           tmpl.field,
			MaxValueBits:    tmpl.maxValueBits,
			SecBits:         tmpl.secBits,
			Participants:    participants,
			ProviderAddr:    providerAddr,
			SendTimeout:     tmpl.sendTimeout,
			ProtocolTimeout: tmpl.protocolTimeout,
		}
	}

	net := TestNetwork{}
	net.Provider = provFac(conf(n))
	require.NoError(t, net.Provider.Start())

	net.Nodes = make([]peer.Peer, n)
	for i := 0; i < n; i++ {
		net.Nodes[i] = fac(conf(i))
		require.NoError(t, net.Nodes[i].Start())
	}

	return &net
}

// StopAll tears the whole network down.
func (n *TestNetwork) StopAll() {
	for _, node := range n.Nodes {
		node.Stop()
	}
	n.Provider.Stop()
}

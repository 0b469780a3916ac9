package peer

import (
	"time"

	"github.com/shaanrockz/sharenet/field"
	"github.com/shaanrockz/sharenet/registry"
	"github.com/shaanrockz/sharenet/transport"
)

// Peer is a party node: it holds shares, talks to the other parties and the
// crypto provider, and exposes the share-level operations.
type Peer interface {
	Service
	Messaging
	MPC
}

// Provider is the crypto provider node. It deliberately does NOT implement
// MPC: the provider supplies correlated randomness and must never hold or
// operate on operand shares, so the capability is kept out of its type.
type Provider interface {
	Service
	Messaging
}

// Service describes the lifecycle of a node.
type Service interface {
	// Start launches the listening daemon and announces the node identity.
	Start() error

	// Stop terminates the daemon. Pending protocol invocations fail.
	Stop() error

	// GetAddr returns the node's socket address.
	GetAddr() string
}

// Messaging provides point-to-point and party-set message primitives.
type Messaging interface {
	// Unicast sends a message directly to dest.
	Unicast(dest string, msg transport.Message) error

	// Broadcast sends a message to every participant, self excluded.
	Broadcast(msg transport.Message) error
}

// Configuration gathers everything a node needs. The field configuration is
// passed explicitly into every component built from it; there is no package
// level modulus.
type Configuration struct {
	// Socket is the node's transport endpoint.
	Socket transport.ClosableSocket

	// MessageRegistry dispatches incoming packets.
	MessageRegistry *registry.Registry

	// Field is the finite field all arithmetic happens in.
	Field field.Field

	// MaxValueBits bounds application integers to (-2^L, 2^L).
	MaxValueBits int

	// SecBits is the statistical masking parameter of the comparison
	// protocol.
	SecBits int

	// Participants is the full party set, own address included for party
	// nodes. Nodes sort it; the first entry is the designated party that
	// absorbs public constants.
	Participants []string

	// ProviderAddr is the crypto provider's address.
	ProviderAddr string

	// SendTimeout bounds a single socket send.
	SendTimeout time.Duration

	// ProtocolTimeout bounds every blocking protocol wait (triple arrival,
	// open rounds, reveal quorum). On expiry the invocation fails whole.
	ProtocolTimeout time.Duration
}

// Factory describes how to construct a party node.
type Factory func(Configuration) Peer

// ProviderFactory describes how to construct a provider node.
type ProviderFactory func(Configuration) Provider

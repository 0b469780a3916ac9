package impl

import (
	"time"

	"github.com/shaanrockz/sharenet/peer"
	"github.com/shaanrockz/sharenet/peer/impl/engine"
	"github.com/shaanrockz/sharenet/peer/impl/message"
	"github.com/shaanrockz/sharenet/peer/impl/provider"
)

const ReadTimeout = time.Millisecond * 100

// NewPeer creates a new party node.
func NewPeer(conf peer.Configuration) peer.Peer {
	n := node{conf: &conf}
	n.MessageModule = message.NewMessageModule(n.conf)
	n.EngineModule = engine.NewEngine(n.conf, n.MessageModule)
	return &n
}

// node implements a party of the computation
//
// - implements peer.Peer
type node struct {
	conf *peer.Configuration

	*message.MessageModule
	*engine.EngineModule

	daemon daemon
}

// Start implements peer.Service
func (n *node) Start() error {
	n.daemon.start(n.conf)

	// announce keys so shares can flow without manual setup
	targets := append([]string(nil), n.conf.Participants...)
	targets = append(targets, n.conf.ProviderAddr)
	return n.AnnounceIdentity(targets...)
}

// Stop implements peer.Service
func (n *node) Stop() error {
	n.daemon.stop()
	return n.conf.Socket.Close()
}

// GetAddr implements peer.Service
func (n *node) GetAddr() string {
	return n.conf.Socket.GetAddress()
}

// NewProvider creates a new crypto provider node.
func NewProvider(conf peer.Configuration) peer.Provider {
	p := providerNode{conf: &conf}
	p.MessageModule = message.NewMessageModule(p.conf)
	p.ProviderModule = provider.NewProvider(p.conf, p.MessageModule)
	return &p
}

// providerNode implements the trusted dealer
//
// - implements peer.Provider
type providerNode struct {
	conf *peer.Configuration

	*message.MessageModule
	*provider.ProviderModule

	daemon daemon
}

// Start implements peer.Service
func (p *providerNode) Start() error {
	p.daemon.start(p.conf)
	return p.AnnounceIdentity(p.conf.Participants...)
}

// Stop implements peer.Service
func (p *providerNode) Stop() error {
	p.daemon.stop()
	return p.conf.Socket.Close()
}

// GetAddr implements peer.Service
func (p *providerNode) GetAddr() string {
	return p.conf.Socket.GetAddress()
}

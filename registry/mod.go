package registry

import (
	"encoding/json"
	"sync"

	"github.com/shaanrockz/sharenet/transport"
	"github.com/shaanrockz/sharenet/types"
	"golang.org/x/xerrors"
)

// Handler processes a decoded message together with the packet that
// carried it.
type Handler func(types.Message, transport.Packet) error

// Registry dispatches incoming packets to the callback registered for
// their message type.
type Registry struct {
	sync.RWMutex
	callbacks map[string]entry
}

type entry struct {
	proto types.Message
	cb    Handler
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		callbacks: make(map[string]entry),
	}
}

// RegisterMessageCallback registers the callback for the message's type,
// replacing any previous registration.
func (r *Registry) RegisterMessageCallback(m types.Message, cb Handler) {
	r.Lock()
	defer r.Unlock()
	r.callbacks[m.Name()] = entry{proto: m, cb: cb}
}

// ProcessPacket decodes the packet payload into a fresh instance of its
// registered message type and invokes the callback.
func (r *Registry) ProcessPacket(pkt transport.Packet) error {
	if pkt.Msg == nil {
		return xerrors.Errorf("packet has no message")
	}

	r.RLock()
	e, ok := r.callbacks[pkt.Msg.Type]
	r.RUnlock()
	if !ok {
		return xerrors.Errorf("no callback registered for message type %s", pkt.Msg.Type)
	}

	msg := e.proto.NewEmpty()
	err := json.Unmarshal(pkt.Msg.Payload, msg)
	if err != nil {
		return xerrors.Errorf("failed to decode %s message: %v", pkt.Msg.Type, err)
	}

	return e.cb(msg, pkt)
}

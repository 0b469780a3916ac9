package message

import (
	"encoding/json"

	"github.com/rs/zerolog/log"
	"github.com/shaanrockz/sharenet/peer"
	"github.com/shaanrockz/sharenet/transport"
	"github.com/shaanrockz/sharenet/types"
	"golang.org/x/xerrors"
)

// MessageModule provides the messaging primitives shared by party and
// provider nodes: plain unicast, party-set broadcast, signed and encrypted
// point-to-point delivery.
type MessageModule struct {
	conf *peer.Configuration

	*EncryptionModule
}

// NewMessageModule builds the messaging layer and registers its handlers.
func NewMessageModule(conf *peer.Configuration) *MessageModule {
	m := MessageModule{
		conf: conf,
	}
	m.EncryptionModule = NewEncryptionModule(conf, &m)

	m.conf.MessageRegistry.RegisterMessageCallback(types.SignedMessage{}, m.ProcessSignedMsg)

	return &m
}

/** Feature Functions **/

// Unicast sends a message directly to dest. Sending to self loops the
// message back through the registry without touching the socket.
func (m *MessageModule) Unicast(dest string, msg transport.Message) error {
	header := transport.NewHeader(m.conf.Socket.GetAddress(), dest)
	pkt := transport.Packet{Header: &header, Msg: &msg}

	if dest == m.conf.Socket.GetAddress() {
		return m.conf.MessageRegistry.ProcessPacket(pkt)
	}
	return m.conf.Socket.Send(dest, pkt, m.conf.SendTimeout)
}

// Broadcast sends a message to every participant except self.
func (m *MessageModule) Broadcast(msg transport.Message) error {
	self := m.conf.Socket.GetAddress()
	for _, participant := range m.conf.Participants {
		if participant == self {
			continue
		}
		err := m.Unicast(participant, msg)
		if err != nil {
			return xerrors.Errorf("broadcast to %s failed: %v", participant, err)
		}
	}
	return nil
}

// CreateMsg creates a new transport message for the given payload.
func (m *MessageModule) CreateMsg(payload types.Message) (transport.Message, error) {
	data, err := json.Marshal(&payload)
	if err != nil {
		return transport.Message{}, err
	}
	return transport.Message{Type: payload.Name(), Payload: data}, nil
}

// SendSigned signs the message and unicasts the signed wrapper.
func (m *MessageModule) SendSigned(dest string, msg transport.Message) error {
	signedMsg, err := m.signMsg(msg)
	if err != nil {
		return err
	}
	signedMsgMarshal, err := m.CreateMsg(signedMsg)
	if err != nil {
		return err
	}
	return m.Unicast(dest, signedMsgMarshal)
}

// BroadcastSigned signs the message once and unicasts it to every
// participant except self.
func (m *MessageModule) BroadcastSigned(msg transport.Message) error {
	signedMsg, err := m.signMsg(msg)
	if err != nil {
		return err
	}
	signedMsgMarshal, err := m.CreateMsg(signedMsg)
	if err != nil {
		return err
	}
	return m.Broadcast(signedMsgMarshal)
}

// SendEncrypted encrypts the message for dest, signs the wrapper and sends
// it. Share-carrying messages go through here.
func (m *MessageModule) SendEncrypted(dest string, msg transport.Message) error {
	encryptedMsg, err := m.encryptMsg(msg, dest)
	if err != nil {
		return err
	}
	encryptedMsgMarshal, err := m.CreateMsg(encryptedMsg)
	if err != nil {
		return err
	}
	return m.SendSigned(dest, encryptedMsgMarshal)
}

/** Message Handler **/

// ProcessSignedMsg is a callback function to handle a received signed
// message. It verifies the signature against the origin's announced key and
// processes the inner message.
func (m *MessageModule) ProcessSignedMsg(msg types.Message, pkt transport.Packet) error {
	signedMsg, ok := msg.(*types.SignedMessage)
	if !ok {
		return xerrors.Errorf("wrong type: %T", msg)
	}

	err := m.verifyMsg(signedMsg)
	if err != nil {
		log.Warn().Msgf("%s: dropping message with bad signature from %s",
			m.conf.Socket.GetAddress(), signedMsg.Origin)
		return err
	}

	newPkt := transport.Packet{
		Header: pkt.Header,
		Msg:    signedMsg.Msg,
	}
	return m.conf.MessageRegistry.ProcessPacket(newPkt)
}

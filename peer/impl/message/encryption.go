package message

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/ecdsa"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/json"

	ecrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/shaanrockz/sharenet/peer"
	"github.com/shaanrockz/sharenet/transport"
	"github.com/shaanrockz/sharenet/types"
	"golang.org/x/xerrors"
)

const rsaKeyBits = 2048

// EncryptionModule owns the node's key material: an RSA key pair for
// receiving encrypted payloads and a secp256k1 key pair for signing outgoing
// messages. Peer keys are learnt through identity messages.
type EncryptionModule struct {
	*MessageModule
	conf *peer.Configuration

	identityStore *SafeIdentityStore
	privkey       *rsa.PrivateKey
	signkey       *ecdsa.PrivateKey
}

// NewEncryptionModule builds the encryption layer and registers its
// handlers.
func NewEncryptionModule(conf *peer.Configuration, messageModule *MessageModule) *EncryptionModule {
	m := EncryptionModule{
		MessageModule: messageModule,
		conf:          conf,
		identityStore: NewSafeIdentityStore(),
	}

	privkey, err := rsa.GenerateKey(rand.Reader, rsaKeyBits)
	if err != nil {
		panic(err)
	}
	m.privkey = privkey

	signkey, err := ecrypto.GenerateKey()
	if err != nil {
		panic(err)
	}
	m.signkey = signkey

	// the node knows its own identity
	m.identityStore.Add(conf.Socket.GetAddress(), m.selfIdentity())

	m.conf.MessageRegistry.RegisterMessageCallback(types.IdentityMessage{}, m.ProcessIdentityMsg)
	m.conf.MessageRegistry.RegisterMessageCallback(types.EncryptedMessage{}, m.ProcessEncryptedMsg)

	return &m
}

/** Feature Functions **/

// AnnounceIdentity sends the node's public keys to the given addresses.
func (m *EncryptionModule) AnnounceIdentity(to ...string) error {
	identityMsg := m.selfIdentityMsg()
	identityMsgMarshal, err := m.CreateMsg(identityMsg)
	if err != nil {
		return err
	}
	for _, dest := range to {
		if dest == "" || dest == m.conf.Socket.GetAddress() {
			continue
		}
		err := m.Unicast(dest, identityMsgMarshal)
		if err != nil {
			return xerrors.Errorf("identity announcement to %s failed: %v", dest, err)
		}
	}
	return nil
}

func (m *EncryptionModule) selfIdentity() Identity {
	rsaDer, err := x509.MarshalPKIXPublicKey(&m.privkey.PublicKey)
	if err != nil {
		panic(err)
	}
	return Identity{
		RSAPubkey:  rsaDer,
		SignPubkey: ecrypto.FromECDSAPub(&m.signkey.PublicKey),
	}
}

func (m *EncryptionModule) selfIdentityMsg() types.IdentityMessage {
	id := m.selfIdentity()
	return types.IdentityMessage{
		Origin:     m.conf.Socket.GetAddress(),
		RSAPubkey:  id.RSAPubkey,
		SignPubkey: id.SignPubkey,
	}
}

// signMsg wraps a message with an ECDSA signature over its payload.
func (m *EncryptionModule) signMsg(msg transport.Message) (types.SignedMessage, error) {
	data, err := json.Marshal(&msg)
	if err != nil {
		return types.SignedMessage{}, err
	}
	digest := ecrypto.Keccak256(data)
	sig, err := ecrypto.Sign(digest, m.signkey)
	if err != nil {
		return types.SignedMessage{}, xerrors.Errorf("failed to sign message: %v", err)
	}
	return types.SignedMessage{
		Origin:    m.conf.Socket.GetAddress(),
		Signature: sig,
		Msg:       &msg,
	}, nil
}

// verifyMsg checks a signed message against the origin's announced signing
// key, waiting for the identity if it has not arrived yet.
func (m *EncryptionModule) verifyMsg(signedMsg *types.SignedMessage) error {
	identity, err := m.identityStore.Await(signedMsg.Origin, m.conf.ProtocolTimeout)
	if err != nil {
		return xerrors.Errorf("no identity for %s: %v", signedMsg.Origin, err)
	}

	data, err := json.Marshal(signedMsg.Msg)
	if err != nil {
		return err
	}
	digest := ecrypto.Keccak256(data)

	if len(signedMsg.Signature) < 64 {
		return xerrors.Errorf("malformed signature from %s", signedMsg.Origin)
	}
	if !ecrypto.VerifySignature(identity.SignPubkey, digest, signedMsg.Signature[:64]) {
		return xerrors.Errorf("invalid signature from %s", signedMsg.Origin)
	}
	return nil
}

// encryptMsg encrypts a message for a single recipient: AES-GCM on the
// payload, the fresh AES key wrapped with the recipient's RSA key.
func (m *EncryptionModule) encryptMsg(msg transport.Message, to string) (types.EncryptedMessage, error) {
	identity, err := m.identityStore.Await(to, m.conf.ProtocolTimeout)
	if err != nil {
		return types.EncryptedMessage{}, xerrors.Errorf("no identity for %s: %v", to, err)
	}
	pub, err := x509.ParsePKIXPublicKey(identity.RSAPubkey)
	if err != nil {
		return types.EncryptedMessage{}, xerrors.Errorf("bad RSA key for %s: %v", to, err)
	}
	rsaPub, ok := pub.(*rsa.PublicKey)
	if !ok {
		return types.EncryptedMessage{}, xerrors.Errorf("key for %s is not RSA", to)
	}

	data, err := json.Marshal(&msg)
	if err != nil {
		return types.EncryptedMessage{}, err
	}

	aesKey := make([]byte, 32)
	_, err = rand.Read(aesKey)
	if err != nil {
		return types.EncryptedMessage{}, err
	}
	block, err := aes.NewCipher(aesKey)
	if err != nil {
		return types.EncryptedMessage{}, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return types.EncryptedMessage{}, err
	}
	nonce := make([]byte, gcm.NonceSize())
	_, err = rand.Read(nonce)
	if err != nil {
		return types.EncryptedMessage{}, err
	}
	ctxt := gcm.Seal(nil, nonce, data, nil)

	wrappedKey, err := rsa.EncryptOAEP(sha256.New(), rand.Reader, rsaPub, aesKey, nil)
	if err != nil {
		return types.EncryptedMessage{}, xerrors.Errorf("failed to wrap key for %s: %v", to, err)
	}

	return types.EncryptedMessage{
		Origin: m.conf.Socket.GetAddress(),
		Key:    wrappedKey,
		Nonce:  nonce,
		Ctxt:   ctxt,
	}, nil
}

// decryptMsg reverses encryptMsg with the node's own RSA key.
func (m *EncryptionModule) decryptMsg(encryptedMsg *types.EncryptedMessage) (*transport.Message, error) {
	aesKey, err := rsa.DecryptOAEP(sha256.New(), rand.Reader, m.privkey, encryptedMsg.Key, nil)
	if err != nil {
		return nil, xerrors.Errorf("failed to unwrap key: %v", err)
	}
	block, err := aes.NewCipher(aesKey)
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	data, err := gcm.Open(nil, encryptedMsg.Nonce, encryptedMsg.Ctxt, nil)
	if err != nil {
		return nil, xerrors.Errorf("failed to decrypt message: %v", err)
	}

	msg := transport.Message{}
	err = json.Unmarshal(data, &msg)
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

/** Message Handler **/

// ProcessIdentityMsg is a callback function to handle a received identity
// message. The first announcement from an unknown origin is answered with
// the node's own identity so manual setups converge without coordination.
func (m *EncryptionModule) ProcessIdentityMsg(msg types.Message, pkt transport.Packet) error {
	identityMsg, ok := msg.(*types.IdentityMessage)
	if !ok {
		return xerrors.Errorf("wrong type: %T", msg)
	}

	isNew := m.identityStore.Add(identityMsg.Origin, Identity{
		RSAPubkey:  identityMsg.RSAPubkey,
		SignPubkey: identityMsg.SignPubkey,
	})
	if isNew {
		return m.AnnounceIdentity(identityMsg.Origin)
	}
	return nil
}

// ProcessEncryptedMsg is a callback function to handle a received encrypted
// message. It decrypts the inner message and processes it locally.
func (m *EncryptionModule) ProcessEncryptedMsg(msg types.Message, pkt transport.Packet) error {
	encryptedMsg, ok := msg.(*types.EncryptedMessage)
	if !ok {
		return xerrors.Errorf("wrong type: %T", msg)
	}

	ptxt, err := m.decryptMsg(encryptedMsg)
	if err != nil {
		return err
	}

	newPkt := transport.Packet{
		Header: pkt.Header,
		Msg:    ptxt,
	}
	return m.conf.MessageRegistry.ProcessPacket(newPkt)
}

package types

import "github.com/shaanrockz/sharenet/transport"

// IdentityMessage announces a node's public keys: the RSA key used to
// encrypt payloads sent to it (PKIX, DER) and the secp256k1 key used to
// verify its signatures (uncompressed).
type IdentityMessage struct {
	Origin     string
	RSAPubkey  []byte
	SignPubkey []byte
}

// SignedMessage wraps another message with an ECDSA signature over its
// payload, binding it to the sender's announced signing key.
type SignedMessage struct {
	Origin    string
	Signature []byte
	Msg       *transport.Message
}

// EncryptedMessage wraps another message encrypted for a single recipient:
// an AES-GCM ciphertext whose key is wrapped with the recipient's RSA key.
type EncryptedMessage struct {
	Origin string
	Key    []byte
	Nonce  []byte
	Ctxt   []byte
}

package types

import "fmt"

// -----------------------------------------------------------------------------
// IdentityMessage

// NewEmpty implements types.Message.
func (m IdentityMessage) NewEmpty() Message {
	return &IdentityMessage{}
}

// Name implements types.Message.
func (IdentityMessage) Name() string {
	return "identity"
}

// String implements types.Message.
func (m IdentityMessage) String() string {
	return fmt.Sprintf("{identity of %s}", m.Origin)
}

// -----------------------------------------------------------------------------
// SignedMessage

// NewEmpty implements types.Message.
func (m SignedMessage) NewEmpty() Message {
	return &SignedMessage{}
}

// Name implements types.Message.
func (SignedMessage) Name() string {
	return "signed"
}

// String implements types.Message.
func (m SignedMessage) String() string {
	return fmt.Sprintf("{signed message from %s}", m.Origin)
}

// -----------------------------------------------------------------------------
// EncryptedMessage

// NewEmpty implements types.Message.
func (m EncryptedMessage) NewEmpty() Message {
	return &EncryptedMessage{}
}

// Name implements types.Message.
func (EncryptedMessage) Name() string {
	return "encrypted"
}

// String implements types.Message.
func (m EncryptedMessage) String() string {
	return fmt.Sprintf("{encrypted message from %s}", m.Origin)
}

package types

import "fmt"

// -----------------------------------------------------------------------------
// ShareMessage

// NewEmpty implements types.Message.
func (m ShareMessage) NewEmpty() Message {
	return &ShareMessage{}
}

// Name implements types.Message.
func (ShareMessage) Name() string {
	return "share"
}

// String implements types.Message.
func (m ShareMessage) String() string {
	return fmt.Sprintf("{share %s from %s for req %s}", m.Key, m.Origin, m.ReqID)
}

// -----------------------------------------------------------------------------
// OpenMessage

// NewEmpty implements types.Message.
func (m OpenMessage) NewEmpty() Message {
	return &OpenMessage{}
}

// Name implements types.Message.
func (OpenMessage) Name() string {
	return "open"
}

// String implements types.Message.
func (m OpenMessage) String() string {
	return fmt.Sprintf("{open %s from %s for req %s}", m.Key, m.Origin, m.ReqID)
}

// -----------------------------------------------------------------------------
// TripleRequestMessage

// NewEmpty implements types.Message.
func (m TripleRequestMessage) NewEmpty() Message {
	return &TripleRequestMessage{}
}

// Name implements types.Message.
func (TripleRequestMessage) Name() string {
	return "triplerequest"
}

// String implements types.Message.
func (m TripleRequestMessage) String() string {
	return fmt.Sprintf("{triple request %s (%s) from %s}", m.ReqID, m.Kind, m.Origin)
}

// -----------------------------------------------------------------------------
// TripleShareMessage

// NewEmpty implements types.Message.
func (m TripleShareMessage) NewEmpty() Message {
	return &TripleShareMessage{}
}

// Name implements types.Message.
func (TripleShareMessage) Name() string {
	return "tripleshare"
}

// String implements types.Message.
func (m TripleShareMessage) String() string {
	return fmt.Sprintf("{triple share for req %s}", m.ReqID)
}

// -----------------------------------------------------------------------------
// RandRequestMessage

// NewEmpty implements types.Message.
func (m RandRequestMessage) NewEmpty() Message {
	return &RandRequestMessage{}
}

// Name implements types.Message.
func (RandRequestMessage) Name() string {
	return "randrequest"
}

// String implements types.Message.
func (m RandRequestMessage) String() string {
	return fmt.Sprintf("{rand request %s from %s, %d x %d bits}", m.ReqID, m.Origin, m.Count, m.Bits)
}

// -----------------------------------------------------------------------------
// RandShareMessage

// NewEmpty implements types.Message.
func (m RandShareMessage) NewEmpty() Message {
	return &RandShareMessage{}
}

// Name implements types.Message.
func (RandShareMessage) Name() string {
	return "randshare"
}

// String implements types.Message.
func (m RandShareMessage) String() string {
	return fmt.Sprintf("{rand share for req %s}", m.ReqID)
}

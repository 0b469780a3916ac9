package types

// Message defines the type of message processed by the message registry.
// Every message carried on the wire implements it.
type Message interface {
	// NewEmpty returns a new empty instance of the message type, used by
	// the registry to unmarshal incoming payloads.
	NewEmpty() Message

	// Name returns the unique name of the message type.
	Name() string

	// String returns a human readable version of the message. It must not
	// include share or secret values.
	String() string
}

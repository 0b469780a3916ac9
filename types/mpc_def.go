package types

// ShareMessage carries one party's share of a freshly encrypted secret.
// Values are decimal-encoded field elements, one per element of the secret;
// Dims is the shape of the secret (empty for a scalar).
type ShareMessage struct {
	ReqID  string
	Origin string
	Key    string
	Dims   []int
	Values []string
}

// OpenMessage carries one party's contribution to the opening of a shared
// value: its local share of the value identified by Key. Once a party has
// collected contributions from the full party set it reconstructs the
// plaintext. Only masked or explicitly revealed values are ever opened.
type OpenMessage struct {
	ReqID  string
	Origin string
	Key    string
	Values []string
}

// TripleRequestMessage asks the crypto provider for a fresh multiplication
// triple shared across Participants. Kind is "mul" for an elementwise triple
// (LeftDims == RightDims) or "matmul" for a matrix triple where c = a x b
// under standard matrix product contraction.
type TripleRequestMessage struct {
	ReqID        string
	Origin       string
	Participants []string
	Kind         string
	LeftDims     []int
	RightDims    []int
}

// TripleShareMessage delivers one party's shares of a multiplication triple
// (a, b, c) with c = a*b in the field.
type TripleShareMessage struct {
	ReqID string
	A     []string
	B     []string
	C     []string
	ADims []int
	BDims []int
	CDims []int
}

// RandRequestMessage asks the crypto provider for bit-decomposed shared
// random values: r uniform below min(2^Bits, Q), shared bit by bit across
// Participants. When MaskBits is non-zero the provider additionally shares a
// high statistical mask uniform below 2^MaskBits. Count is the number of
// independent random values requested (one per secret element).
type RandRequestMessage struct {
	ReqID        string
	Origin       string
	Participants []string
	Count        int
	Bits         int
	MaskBits     int
}

// RandShareMessage delivers one party's shares of the requested random
// values. Bits[e] holds the shares of the bits of value e, least significant
// first; Masks[e] is the share of the high mask of value e (empty when no
// mask was requested).
type RandShareMessage struct {
	ReqID string
	Bits  [][]string
	Masks []string
}

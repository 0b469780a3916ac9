package peer

import (
	"math/big"

	"github.com/shaanrockz/sharenet/share"
)

// MPC describes the share-level operations of a party node. The model is
// SPMD: every participant calls the same operation with the same agreed
// result identifier, and each call computes that party's share of the result.
// Interactive operations block until the protocol completes or the configured
// timeout expires; on timeout the invocation fails whole and must be retried
// under a fresh identifier.
type MPC interface {
	// Share splits a secret and distributes one share per participant under
	// the given value identifier. Only the owner of the plaintext calls it.
	Share(key string, secret *share.Secret) error

	// Reveal opens a shared value to every participant and deletes the local
	// share. The result is in canonical field form; use Secret.Centered for
	// signed decoding.
	Reveal(key string) (*share.Secret, error)

	// Has reports whether the party holds a share under the identifier.
	Has(key string) bool

	// Add computes res = x + y elementwise, locally.
	Add(res, x, y string) error

	// Sub computes res = x - y elementwise, locally.
	Sub(res, x, y string) error

	// AddConst computes res = x + k elementwise with a public constant.
	AddConst(res, x string, k *big.Int) error

	// MulConst computes res = k * x elementwise with a public constant.
	MulConst(res, x string, k *big.Int) error

	// Sum computes res = xs[0] + xs[1] + ... elementwise, locally.
	Sum(res string, xs ...string) error

	// Mul computes res = x * y elementwise, consuming one multiplication
	// triple.
	Mul(res, x, y string) error

	// MatMul computes the matrix product of an [m,k] and a [k,n] value.
	MatMul(res, x, y string) error

	// GreaterThan computes the shared bit [x > y] elementwise.
	GreaterThan(res, x, y string) error

	// LessEqual computes the shared bit [x <= y] elementwise.
	LessEqual(res, x, y string) error

	// Equal computes the shared bit [x == y] elementwise.
	Equal(res, x, y string) error

	// Select computes res = y + b*(x-y) elementwise; b holds shared bits.
	Select(res, b, x, y string) error

	// Max computes the elementwise maximum of the operands without revealing
	// any comparison outcome.
	Max(res string, xs ...string) error

	// Argmax computes the shared index of the maximal operand, lowest index
	// winning ties.
	Argmax(res string, xs ...string) error
}

package field

import (
	"crypto/rand"
	"math/big"

	"golang.org/x/xerrors"
)

// ErrDomain signals a value or modulus that is inconsistent with the field,
// e.g. a modulus that is nil or too small, or an inversion of zero.
var ErrDomain = xerrors.New("field domain error")

// DefaultModulus returns the default field modulus, the Mersenne prime
// 2^89 - 1. It is large enough to embed application integers of up to
// MaxValueBits bits together with the statistical masking used by the
// comparison protocol.
func DefaultModulus() *big.Int {
	q := new(big.Int).Lsh(big.NewInt(1), 89)
	return q.Sub(q, big.NewInt(1))
}

// Field implements arithmetic over Z/QZ. All operations reduce their result
// into the canonical range [0, Q). A Field is an immutable value and is safe
// for concurrent use.
type Field struct {
	q *big.Int
}

// New returns a field with the given modulus. The modulus must be at least 2.
func New(q *big.Int) (Field, error) {
	if q == nil || q.Cmp(big.NewInt(2)) < 0 {
		return Field{}, xerrors.Errorf("invalid modulus: %w", ErrDomain)
	}
	return Field{q: new(big.Int).Set(q)}, nil
}

// MustNew is New for moduli known to be valid at compile time.
func MustNew(q *big.Int) Field {
	f, err := New(q)
	if err != nil {
		panic(err)
	}
	return f
}

// Default returns the field over the default modulus.
func Default() Field {
	return Field{q: DefaultModulus()}
}

// Q returns a copy of the modulus.
func (f Field) Q() *big.Int {
	return new(big.Int).Set(f.q)
}

// Bits returns the bit length of the modulus.
func (f Field) Bits() int {
	return f.q.BitLen()
}

// Reduce canonicalizes x into [0, Q). Negative inputs wrap around the
// modulus instead of truncating toward zero.
func (f Field) Reduce(x *big.Int) *big.Int {
	r := new(big.Int).Mod(x, f.q)
	// big.Int.Mod already returns a non-negative result for a positive
	// modulus, so the wrap-around is handled here.
	return r
}

// Add returns a + b mod Q.
func (f Field) Add(a, b *big.Int) *big.Int {
	sum := new(big.Int).Add(a, b)
	return sum.Mod(sum, f.q)
}

// Sub returns a - b mod Q.
func (f Field) Sub(a, b *big.Int) *big.Int {
	dif := new(big.Int).Sub(a, b)
	return dif.Mod(dif, f.q)
}

// Neg returns -a mod Q.
func (f Field) Neg(a *big.Int) *big.Int {
	neg := new(big.Int).Neg(a)
	return neg.Mod(neg, f.q)
}

// Mul returns a * b mod Q.
func (f Field) Mul(a, b *big.Int) *big.Int {
	prod := new(big.Int).Mul(a, b)
	return prod.Mod(prod, f.q)
}

// Inv returns a^-1 mod Q. It fails with ErrDomain if a reduces to zero or
// has no inverse under the modulus.
func (f Field) Inv(a *big.Int) (*big.Int, error) {
	r := f.Reduce(a)
	if r.Sign() == 0 {
		return nil, xerrors.Errorf("inverse of zero: %w", ErrDomain)
	}
	inv := new(big.Int).ModInverse(r, f.q)
	if inv == nil {
		return nil, xerrors.Errorf("no inverse for value under modulus: %w", ErrDomain)
	}
	return inv, nil
}

// Exp2 returns 2^k mod Q.
func (f Field) Exp2(k uint) *big.Int {
	e := new(big.Int).Lsh(big.NewInt(1), k)
	return e.Mod(e, f.q)
}

// Rand draws a uniformly random field element from crypto/rand.
func (f Field) Rand() (*big.Int, error) {
	n, err := rand.Int(rand.Reader, f.q)
	if err != nil {
		return nil, xerrors.Errorf("failed to sample field element: %v", err)
	}
	return n, nil
}

// RandBelow draws a uniformly random integer in [0, bound). The bound must
// be positive and at most Q.
func (f Field) RandBelow(bound *big.Int) (*big.Int, error) {
	if bound.Sign() <= 0 || bound.Cmp(f.q) > 0 {
		return nil, xerrors.Errorf("invalid sampling bound: %w", ErrDomain)
	}
	n, err := rand.Int(rand.Reader, bound)
	if err != nil {
		return nil, xerrors.Errorf("failed to sample bounded element: %v", err)
	}
	return n, nil
}

// Centered maps a canonical representative into the signed range
// (-Q/2, Q/2]. Protocol results that stand for negative integers come back
// from Reduce in the upper half of the field and are decoded here.
func (f Field) Centered(x *big.Int) *big.Int {
	r := f.Reduce(x)
	half := new(big.Int).Rsh(f.q, 1)
	if r.Cmp(half) > 0 {
		return r.Sub(r, f.q)
	}
	return r
}

package share

import (
	"math/big"

	"github.com/shaanrockz/sharenet/field"
	"golang.org/x/xerrors"
)

// ErrIncompleteSet signals a reconstruction attempted with fewer shares than
// the set was split into. Reconstruct enforces the declared share count;
// Combine deliberately does not (see its doc).
var ErrIncompleteSet = xerrors.New("incomplete share set")

// Secret is a clear value before encryption or after full decryption. It is
// a scalar, vector or row-major matrix of integers; Dims is empty for a
// scalar, has one entry for a vector and two for a matrix.
type Secret struct {
	Dims []int
	Vals []*big.Int
}

// NewScalar returns a scalar secret.
func NewScalar(v int64) *Secret {
	return &Secret{Vals: []*big.Int{big.NewInt(v)}}
}

// NewVector returns a vector secret.
func NewVector(vs []int64) *Secret {
	vals := make([]*big.Int, len(vs))
	for i, v := range vs {
		vals[i] = big.NewInt(v)
	}
	return &Secret{Dims: []int{len(vs)}, Vals: vals}
}

// NewMatrix returns a rows x cols matrix secret from row-major entries.
func NewMatrix(rows, cols int, vs []int64) (*Secret, error) {
	if rows*cols != len(vs) {
		return nil, xerrors.Errorf("matrix needs %d entries, got %d", rows*cols, len(vs))
	}
	vals := make([]*big.Int, len(vs))
	for i, v := range vs {
		vals[i] = big.NewInt(v)
	}
	return &Secret{Dims: []int{rows, cols}, Vals: vals}, nil
}

// Len returns the number of field elements in the secret.
func (s *Secret) Len() int {
	return len(s.Vals)
}

// Centered returns the secret with every element decoded into the signed
// range (-Q/2, Q/2].
func (s *Secret) Centered(f field.Field) *Secret {
	vals := make([]*big.Int, len(s.Vals))
	for i, v := range s.Vals {
		vals[i] = f.Centered(v)
	}
	return &Secret{Dims: append([]int(nil), s.Dims...), Vals: vals}
}

// SameShape reports whether two secrets have identical dimensions.
func SameShape(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Set holds all N additive shares of one secret. Shares[i] is the slice of
// field elements destined for party i; the scheme is applied independently
// per element, so every share has the shape of the secret.
type Set struct {
	F     field.Field
	N     int
	Dims  []int
	Parts [][]*big.Int
}

// Encrypt splits a secret into n additive shares. The first n-1 shares are
// independent uniform field elements; the last is the remainder that makes
// the sum reduce to the secret. Any proper subset of the result is therefore
// distributed independently of the secret.
func Encrypt(f field.Field, secret *Secret, n int) (*Set, error) {
	if n < 2 {
		return nil, xerrors.Errorf("need at least 2 shares, got %d", n)
	}
	parts := make([][]*big.Int, n)
	for i := range parts {
		parts[i] = make([]*big.Int, len(secret.Vals))
	}
	for e, v := range secret.Vals {
		rest := f.Reduce(v)
		for i := 0; i < n-1; i++ {
			r, err := f.Rand()
			if err != nil {
				return nil, err
			}
			parts[i][e] = r
			rest = f.Sub(rest, r)
		}
		parts[n-1][e] = rest
	}
	return &Set{
		F:     f,
		N:     n,
		Dims:  append([]int(nil), secret.Dims...),
		Parts: parts,
	}, nil
}

// Decrypt reconstructs the secret from the full set.
func (s *Set) Decrypt() *Secret {
	return Combine(s.F, s.Dims, s.Parts...)
}

// Reconstruct rebuilds a secret from exactly n shares. Supplying fewer or
// more shares than the set was split into fails with ErrIncompleteSet. This
// is the checked reconstruction policy; Combine is the unchecked one.
func Reconstruct(f field.Field, n int, dims []int, shares ...[]*big.Int) (*Secret, error) {
	if len(shares) != n {
		return nil, xerrors.Errorf("got %d of %d shares: %w", len(shares), n, ErrIncompleteSet)
	}
	return Combine(f, dims, shares...), nil
}

// Combine sums whatever shares it is given, mod Q. Summing a strict subset
// of a set yields a uniformly random-looking value rather than an error;
// that silent wrong answer is the documented failure mode of reconstructing
// below the threshold and is what the hiding tests exercise.
func Combine(f field.Field, dims []int, shares ...[]*big.Int) *Secret {
	if len(shares) == 0 {
		return &Secret{Dims: append([]int(nil), dims...)}
	}
	vals := make([]*big.Int, len(shares[0]))
	for e := range vals {
		sum := big.NewInt(0)
		for _, sh := range shares {
			sum = f.Add(sum, sh[e])
		}
		vals[e] = sum
	}
	return &Secret{Dims: append([]int(nil), dims...), Vals: vals}
}

package share

import (
	"math/big"
	"testing"

	"github.com/shaanrockz/sharenet/field"
	"github.com/stretchr/testify/require"
)

func Test_Share_Encrypt_Decrypt_Roundtrip(t *testing.T) {
	f := field.MustNew(big.NewInt(1234567891011))
	secret := NewScalar(25)

	set, err := Encrypt(f, secret, 3)
	require.NoError(t, err)
	require.Len(t, set.Parts, 3)

	recovered := set.Decrypt()
	require.Equal(t, big.NewInt(25), recovered.Vals[0])
}

func Test_Share_Encrypt_Negative_Value(t *testing.T) {
	f := field.Default()
	secret := NewScalar(-42)

	set, err := Encrypt(f, secret, 4)
	require.NoError(t, err)

	recovered := set.Decrypt().Centered(f)
	require.Equal(t, big.NewInt(-42), recovered.Vals[0])
}

func Test_Share_Encrypt_Vector(t *testing.T) {
	f := field.Default()
	secret := NewVector([]int64{1, -2, 300})

	set, err := Encrypt(f, secret, 3)
	require.NoError(t, err)
	require.Equal(t, []int{3}, set.Dims)

	recovered := set.Decrypt().Centered(f)
	require.Equal(t, big.NewInt(1), recovered.Vals[0])
	require.Equal(t, big.NewInt(-2), recovered.Vals[1])
	require.Equal(t, big.NewInt(300), recovered.Vals[2])
}

func Test_Share_Encrypt_TooFewParties(t *testing.T) {
	f := field.Default()

	_, err := Encrypt(f, NewScalar(1), 1)
	require.Error(t, err)
}

func Test_Share_Reconstruct_Enforces_Count(t *testing.T) {
	f := field.Default()
	secret := NewScalar(77)

	set, err := Encrypt(f, secret, 3)
	require.NoError(t, err)

	recovered, err := Reconstruct(f, 3, set.Dims, set.Parts...)
	require.NoError(t, err)
	require.Equal(t, big.NewInt(77), recovered.Vals[0])

	_, err = Reconstruct(f, 3, set.Dims, set.Parts[0], set.Parts[1])
	require.ErrorIs(t, err, ErrIncompleteSet)
}

// Summing a strict subset must NOT recover the secret: any n-1 shares are
// distributed independently of it. The subset sum is uniform, so equality
// with the secret has probability 1/Q and the assertion is safe.
func Test_Share_Subset_Hides_Secret(t *testing.T) {
	f := field.Default()
	secret := NewScalar(123456)

	set, err := Encrypt(f, secret, 5)
	require.NoError(t, err)

	partial := Combine(f, set.Dims, set.Parts[:4]...)
	require.NotEqual(t, big.NewInt(123456), partial.Vals[0])

	full := Combine(f, set.Dims, set.Parts...)
	require.Equal(t, big.NewInt(123456), full.Vals[0])
}

func Test_Share_Matrix_Shape(t *testing.T) {
	secret, err := NewMatrix(2, 3, []int64{1, 2, 3, 4, 5, 6})
	require.NoError(t, err)
	require.Equal(t, []int{2, 3}, secret.Dims)
	require.Equal(t, 6, secret.Len())

	_, err = NewMatrix(2, 2, []int64{1, 2, 3})
	require.Error(t, err)
}

func Test_Share_SameShape(t *testing.T) {
	require.True(t, SameShape(nil, nil))
	require.True(t, SameShape([]int{2, 3}, []int{2, 3}))
	require.False(t, SameShape([]int{2, 3}, []int{3, 2}))
	require.False(t, SameShape([]int{2}, nil))
}

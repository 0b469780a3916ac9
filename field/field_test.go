package field

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_Field_Reduce_Negative(t *testing.T) {
	f := MustNew(big.NewInt(97))

	require.Equal(t, big.NewInt(96), f.Reduce(big.NewInt(-1)))
	require.Equal(t, big.NewInt(0), f.Reduce(big.NewInt(-97)))
	require.Equal(t, big.NewInt(3), f.Reduce(big.NewInt(100)))
}

func Test_Field_Arithmetic(t *testing.T) {
	f := MustNew(big.NewInt(97))

	require.Equal(t, big.NewInt(2), f.Add(big.NewInt(96), big.NewInt(3)))
	require.Equal(t, big.NewInt(95), f.Sub(big.NewInt(1), big.NewInt(3)))
	require.Equal(t, big.NewInt(96), f.Neg(big.NewInt(1)))
	require.Equal(t, big.NewInt(6), f.Mul(big.NewInt(100), big.NewInt(2)))
}

func Test_Field_Inv(t *testing.T) {
	f := MustNew(big.NewInt(97))

	inv, err := f.Inv(big.NewInt(3))
	require.NoError(t, err)
	require.Equal(t, big.NewInt(1), f.Mul(big.NewInt(3), inv))

	_, err = f.Inv(big.NewInt(0))
	require.ErrorIs(t, err, ErrDomain)
	_, err = f.Inv(big.NewInt(97))
	require.ErrorIs(t, err, ErrDomain)
}

func Test_Field_Centered(t *testing.T) {
	f := MustNew(big.NewInt(97))

	require.Equal(t, big.NewInt(-1), f.Centered(big.NewInt(96)))
	require.Equal(t, big.NewInt(48), f.Centered(big.NewInt(48)))
	require.Equal(t, big.NewInt(-48), f.Centered(big.NewInt(49)))
	require.Equal(t, big.NewInt(0), f.Centered(big.NewInt(0)))
}

func Test_Field_Rand_InRange(t *testing.T) {
	f := Default()

	for i := 0; i < 100; i++ {
		v, err := f.Rand()
		require.NoError(t, err)
		require.True(t, v.Sign() >= 0)
		require.True(t, v.Cmp(f.Q()) < 0)
	}
}

func Test_Field_RandBelow(t *testing.T) {
	f := Default()
	bound := big.NewInt(16)

	for i := 0; i < 100; i++ {
		v, err := f.RandBelow(bound)
		require.NoError(t, err)
		require.True(t, v.Sign() >= 0)
		require.True(t, v.Cmp(bound) < 0)
	}

	_, err := f.RandBelow(big.NewInt(0))
	require.ErrorIs(t, err, ErrDomain)
	_, err = f.RandBelow(new(big.Int).Add(f.Q(), big.NewInt(1)))
	require.ErrorIs(t, err, ErrDomain)
}

func Test_Field_New_Invalid(t *testing.T) {
	_, err := New(nil)
	require.ErrorIs(t, err, ErrDomain)
	_, err = New(big.NewInt(1))
	require.ErrorIs(t, err, ErrDomain)
}

func Test_Field_DefaultModulus(t *testing.T) {
	q := DefaultModulus()
	require.Equal(t, 89, q.BitLen())
	require.True(t, q.ProbablyPrime(20))
}

package provider

import (
	"math/big"
	"testing"

	"github.com/shaanrockz/sharenet/field"
	"github.com/shaanrockz/sharenet/types"
	"github.com/stretchr/testify/require"
)

func testModule() *ProviderModule {
	return &ProviderModule{
		f:      field.Default(),
		served: NewSafeRequestLog(),
	}
}

func Test_Provider_Generate_Mul_Triple(t *testing.T) {
	m := testModule()

	req := &types.TripleRequestMessage{
		ReqID:     "r1",
		Kind:      "mul",
		LeftDims:  []int{3},
		RightDims: []int{3},
	}
	a, b, c, err := m.generateTriple(req)
	require.NoError(t, err)
	require.Len(t, a.Vals, 3)
	require.Len(t, b.Vals, 3)
	require.Len(t, c.Vals, 3)

	for e := 0; e < 3; e++ {
		require.Equal(t, m.f.Mul(a.Vals[e], b.Vals[e]), c.Vals[e])
	}
}

func Test_Provider_Generate_Mul_Triple_Shape_Mismatch(t *testing.T) {
	m := testModule()

	req := &types.TripleRequestMessage{
		ReqID:     "r1",
		Kind:      "mul",
		LeftDims:  []int{3},
		RightDims: []int{4},
	}
	_, _, _, err := m.generateTriple(req)
	require.Error(t, err)
}

func Test_Provider_Generate_Matmul_Triple(t *testing.T) {
	m := testModule()

	req := &types.TripleRequestMessage{
		ReqID:     "r1",
		Kind:      "matmul",
		LeftDims:  []int{2, 3},
		RightDims: []int{3, 4},
	}
	a, b, c, err := m.generateTriple(req)
	require.NoError(t, err)
	require.Equal(t, []int{2, 4}, c.Dims)

	// c must be the matrix product of a and b
	for i := 0; i < 2; i++ {
		for j := 0; j < 4; j++ {
			acc := big.NewInt(0)
			for k := 0; k < 3; k++ {
				acc = m.f.Add(acc, m.f.Mul(a.Vals[i*3+k], b.Vals[k*4+j]))
			}
			require.Equal(t, acc, c.Vals[i*4+j])
		}
	}
}

func Test_Provider_Generate_Unknown_Kind(t *testing.T) {
	m := testModule()

	req := &types.TripleRequestMessage{ReqID: "r1", Kind: "conv", LeftDims: []int{1}, RightDims: []int{1}}
	_, _, _, err := m.generateTriple(req)
	require.Error(t, err)
}

func Test_Provider_Generate_Rand_Bits(t *testing.T) {
	m := testModule()

	req := &types.RandRequestMessage{ReqID: "r1", Count: 4, Bits: 9, MaskBits: 20}
	bits, masks, err := m.generateRand(req)
	require.NoError(t, err)
	require.Equal(t, []int{4, 9}, bits.Dims)
	require.Len(t, bits.Vals, 36)
	require.Len(t, masks.Vals, 4)

	one := big.NewInt(1)
	maskBound := new(big.Int).Lsh(one, 20)
	for _, bit := range bits.Vals {
		require.True(t, bit.Sign() >= 0 && bit.Cmp(one) <= 0)
	}
	for _, mask := range masks.Vals {
		require.True(t, mask.Sign() >= 0 && mask.Cmp(maskBound) < 0)
	}
}

func Test_Provider_Generate_Rand_No_Mask(t *testing.T) {
	m := testModule()

	req := &types.RandRequestMessage{ReqID: "r1", Count: 2, Bits: 5}
	bits, masks, err := m.generateRand(req)
	require.NoError(t, err)
	require.NotNil(t, bits)
	require.Nil(t, masks)
}

func Test_Provider_Request_Log(t *testing.T) {
	log := NewSafeRequestLog()

	first, replay := log.Register("triple|r1", "127.0.0.1:1")
	require.True(t, first)
	require.False(t, replay)

	first, replay = log.Register("triple|r1", "127.0.0.1:2")
	require.False(t, first)
	require.False(t, replay)

	first, replay = log.Register("triple|r1", "127.0.0.1:1")
	require.False(t, first)
	require.True(t, replay)

	// distinct requests are independent
	first, replay = log.Register("triple|r2", "127.0.0.1:1")
	require.True(t, first)
	require.False(t, replay)
}

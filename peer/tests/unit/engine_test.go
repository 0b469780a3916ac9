package unit

import (
	"math/big"
	"testing"
	"time"

	"github.com/shaanrockz/sharenet/field"
	z "github.com/shaanrockz/sharenet/internal/testing"
	"github.com/shaanrockz/sharenet/peer"
	"github.com/shaanrockz/sharenet/share"
	"github.com/shaanrockz/sharenet/transport"
	"github.com/stretchr/testify/require"
)

// smallField keeps the interactive protocols cheap in tests: 41-bit modulus,
// 8-bit values, 20 bits of statistical masking.
func smallField() []z.Option {
	return []z.Option{
		z.WithField(field.MustNew(big.NewInt(1234567891011))),
		z.WithMaxValueBits(8),
		z.WithSecBits(20),
	}
}

func Test_Engine_Share_Reveal(t *testing.T) {
	getTest := func(transp transport.Transport) func(*testing.T) {
		return func(t *testing.T) {
			net := z.NewTestNetwork(t, peerFac, providerFac, transp, 3, smallField()...)
			defer net.StopAll()

			f := field.MustNew(big.NewInt(1234567891011))

			err := net.Nodes[0].Share("a", share.NewScalar(25))
			require.NoError(t, err)

			require.Equal(t, int64(25), revealAll(t, net.Nodes, "a", f))

			// the local shares are gone after the reveal
			for _, node := range net.Nodes {
				require.False(t, node.Has("a"))
			}
		}
	}
	t.Run("channel transport", getTest(channelFac()))
	t.Run("UDP transport", getTest(udpFac()))
}

func Test_Engine_Share_Value_Out_Of_Range(t *testing.T) {
	net := z.NewTestNetwork(t, peerFac, providerFac, channelFac(), 2, smallField()...)
	defer net.StopAll()

	// 8-bit values only
	err := net.Nodes[0].Share("big", share.NewScalar(1<<20))
	require.ErrorIs(t, err, field.ErrDomain)
}

func Test_Engine_Add_Sub(t *testing.T) {
	net := z.NewTestNetwork(t, peerFac, providerFac, channelFac(), 3, smallField()...)
	defer net.StopAll()

	f := field.MustNew(big.NewInt(1234567891011))

	require.NoError(t, net.Nodes[0].Share("x", share.NewScalar(25)))
	require.NoError(t, net.Nodes[1].Share("y", share.NewScalar(5)))

	runAll(t, net.Nodes, func(n peer.Peer) error { return n.Add("sum", "x", "y") })
	require.Equal(t, int64(30), revealAll(t, net.Nodes, "sum", f))

	runAll(t, net.Nodes, func(n peer.Peer) error { return n.Sub("dif", "y", "x") })
	require.Equal(t, int64(-20), revealAll(t, net.Nodes, "dif", f))
}

func Test_Engine_Const_Operations(t *testing.T) {
	net := z.NewTestNetwork(t, peerFac, providerFac, channelFac(), 3, smallField()...)
	defer net.StopAll()

	f := field.MustNew(big.NewInt(1234567891011))

	require.NoError(t, net.Nodes[0].Share("x", share.NewScalar(7)))

	runAll(t, net.Nodes, func(n peer.Peer) error { return n.AddConst("xp", "x", big.NewInt(13)) })
	require.Equal(t, int64(20), revealAll(t, net.Nodes, "xp", f))

	require.NoError(t, net.Nodes[0].Share("x2", share.NewScalar(7)))
	runAll(t, net.Nodes, func(n peer.Peer) error { return n.MulConst("xs", "x2", big.NewInt(-3)) })
	require.Equal(t, int64(-21), revealAll(t, net.Nodes, "xs", f))
}

func Test_Engine_Sum(t *testing.T) {
	net := z.NewTestNetwork(t, peerFac, providerFac, channelFac(), 3, smallField()...)
	defer net.StopAll()

	f := field.MustNew(big.NewInt(1234567891011))

	require.NoError(t, net.Nodes[0].Share("a", share.NewScalar(10)))
	require.NoError(t, net.Nodes[1].Share("b", share.NewScalar(-4)))
	require.NoError(t, net.Nodes[2].Share("c", share.NewScalar(6)))

	runAll(t, net.Nodes, func(n peer.Peer) error { return n.Sum("total", "a", "b", "c") })
	require.Equal(t, int64(12), revealAll(t, net.Nodes, "total", f))
}

func Test_Engine_Mul(t *testing.T) {
	net := z.NewTestNetwork(t, peerFac, providerFac, channelFac(), 3, smallField()...)
	defer net.StopAll()

	f := field.MustNew(big.NewInt(1234567891011))

	require.NoError(t, net.Nodes[0].Share("x", share.NewScalar(25)))
	require.NoError(t, net.Nodes[1].Share("y", share.NewScalar(5)))

	runAll(t, net.Nodes, func(n peer.Peer) error { return n.Mul("prod", "x", "y") })
	require.Equal(t, int64(125), revealAll(t, net.Nodes, "prod", f))
}

func Test_Engine_Mul_Negative(t *testing.T) {
	net := z.NewTestNetwork(t, peerFac, providerFac, channelFac(), 2, smallField()...)
	defer net.StopAll()

	f := field.MustNew(big.NewInt(1234567891011))

	require.NoError(t, net.Nodes[0].Share("x", share.NewScalar(-11)))
	require.NoError(t, net.Nodes[1].Share("y", share.NewScalar(9)))

	runAll(t, net.Nodes, func(n peer.Peer) error { return n.Mul("prod", "x", "y") })
	require.Equal(t, int64(-99), revealAll(t, net.Nodes, "prod", f))
}

func Test_Engine_MatMul(t *testing.T) {
	net := z.NewTestNetwork(t, peerFac, providerFac, channelFac(), 3, smallField()...)
	defer net.StopAll()

	f := field.MustNew(big.NewInt(1234567891011))

	// | 1 2 |   | 5 6 |   | 19 22 |
	// | 3 4 | x | 7 8 | = | 43 50 |
	left, err := share.NewMatrix(2, 2, []int64{1, 2, 3, 4})
	require.NoError(t, err)
	right, err := share.NewMatrix(2, 2, []int64{5, 6, 7, 8})
	require.NoError(t, err)

	require.NoError(t, net.Nodes[0].Share("l", left))
	require.NoError(t, net.Nodes[1].Share("r", right))

	runAll(t, net.Nodes, func(n peer.Peer) error { return n.MatMul("prod", "l", "r") })

	secrets := make([]*share.Secret, len(net.Nodes))
	runAllIdx(t, net.Nodes, func(i int, n peer.Peer) error {
		secret, err := n.Reveal("prod")
		if err != nil {
			return err
		}
		secrets[i] = secret.Centered(f)
		return nil
	})

	expected := []int64{19, 22, 43, 50}
	for _, secret := range secrets {
		require.Equal(t, []int{2, 2}, secret.Dims)
		for e, want := range expected {
			require.Equal(t, big.NewInt(want), secret.Vals[e])
		}
	}
}

func Test_Engine_GreaterThan(t *testing.T) {
	net := z.NewTestNetwork(t, peerFac, providerFac, channelFac(), 3, smallField()...)
	defer net.StopAll()

	f := field.MustNew(big.NewInt(1234567891011))

	cases := []struct {
		name string
		x, y int64
		want int64
	}{
		{"greater", 5, 3, 1},
		{"smaller", 3, 5, 0},
		{"equal", 4, 4, 0},
		{"negative", -2, -7, 1},
		{"mixed", -1, 1, 0},
	}
	for _, tc := range cases {
		require.NoError(t, net.Nodes[0].Share("x|"+tc.name, share.NewScalar(tc.x)))
		require.NoError(t, net.Nodes[1].Share("y|"+tc.name, share.NewScalar(tc.y)))

		runAll(t, net.Nodes, func(n peer.Peer) error {
			return n.GreaterThan("gt|"+tc.name, "x|"+tc.name, "y|"+tc.name)
		})
		require.Equal(t, tc.want, revealAll(t, net.Nodes, "gt|"+tc.name, f), tc.name)
	}
}

func Test_Engine_LessEqual(t *testing.T) {
	net := z.NewTestNetwork(t, peerFac, providerFac, channelFac(), 2, smallField()...)
	defer net.StopAll()

	f := field.MustNew(big.NewInt(1234567891011))

	require.NoError(t, net.Nodes[0].Share("x", share.NewScalar(4)))
	require.NoError(t, net.Nodes[1].Share("y", share.NewScalar(4)))

	runAll(t, net.Nodes, func(n peer.Peer) error { return n.LessEqual("le", "x", "y") })
	require.Equal(t, int64(1), revealAll(t, net.Nodes, "le", f))
}

func Test_Engine_Equal(t *testing.T) {
	net := z.NewTestNetwork(t, peerFac, providerFac, channelFac(), 3, smallField()...)
	defer net.StopAll()

	f := field.MustNew(big.NewInt(1234567891011))

	require.NoError(t, net.Nodes[0].Share("x", share.NewScalar(7)))
	require.NoError(t, net.Nodes[1].Share("y", share.NewScalar(7)))
	require.NoError(t, net.Nodes[2].Share("z", share.NewScalar(8)))

	runAll(t, net.Nodes, func(n peer.Peer) error { return n.Equal("eq", "x", "y") })
	require.Equal(t, int64(1), revealAll(t, net.Nodes, "eq", f))

	runAll(t, net.Nodes, func(n peer.Peer) error { return n.Equal("neq", "x", "z") })
	require.Equal(t, int64(0), revealAll(t, net.Nodes, "neq", f))
}

func Test_Engine_Select(t *testing.T) {
	net := z.NewTestNetwork(t, peerFac, providerFac, channelFac(), 2, smallField()...)
	defer net.StopAll()

	f := field.MustNew(big.NewInt(1234567891011))

	require.NoError(t, net.Nodes[0].Share("x", share.NewScalar(42)))
	require.NoError(t, net.Nodes[1].Share("y", share.NewScalar(-17)))

	runAll(t, net.Nodes, func(n peer.Peer) error { return n.GreaterThan("b", "x", "y") })
	runAll(t, net.Nodes, func(n peer.Peer) error { return n.Select("picked", "b", "x", "y") })
	require.Equal(t, int64(42), revealAll(t, net.Nodes, "picked", f))
}

func Test_Engine_Max_Argmax(t *testing.T) {
	net := z.NewTestNetwork(t, peerFac, providerFac, channelFac(), 3, smallField()...)
	defer net.StopAll()

	f := field.MustNew(big.NewInt(1234567891011))

	require.NoError(t, net.Nodes[0].Share("a", share.NewScalar(3)))
	require.NoError(t, net.Nodes[1].Share("b", share.NewScalar(-8)))
	require.NoError(t, net.Nodes[2].Share("c", share.NewScalar(12)))
	require.NoError(t, net.Nodes[0].Share("d", share.NewScalar(5)))

	runAll(t, net.Nodes, func(n peer.Peer) error { return n.Max("max", "a", "b", "c", "d") })
	require.Equal(t, int64(12), revealAll(t, net.Nodes, "max", f))

	require.NoError(t, net.Nodes[0].Share("a2", share.NewScalar(3)))
	require.NoError(t, net.Nodes[1].Share("b2", share.NewScalar(-8)))
	require.NoError(t, net.Nodes[2].Share("c2", share.NewScalar(12)))
	require.NoError(t, net.Nodes[0].Share("d2", share.NewScalar(5)))

	runAll(t, net.Nodes, func(n peer.Peer) error { return n.Argmax("argmax", "a2", "b2", "c2", "d2") })
	require.Equal(t, int64(2), revealAll(t, net.Nodes, "argmax", f))
}

func Test_Engine_Missing_Operand(t *testing.T) {
	opts := append(smallField(), z.WithProtocolTimeout(time.Second))
	net := z.NewTestNetwork(t, peerFac, providerFac, channelFac(), 2, opts...)
	defer net.StopAll()

	require.NoError(t, net.Nodes[0].Share("x", share.NewScalar(1)))

	// a value nobody ever shared never arrives
	err := net.Nodes[0].Add("res", "x", "ghost")
	require.Error(t, err)
}

func Test_Engine_Concurrent_Operations(t *testing.T) {
	net := z.NewTestNetwork(t, peerFac, providerFac, channelFac(), 3, smallField()...)
	defer net.StopAll()

	f := field.MustNew(big.NewInt(1234567891011))

	require.NoError(t, net.Nodes[0].Share("x1", share.NewScalar(6)))
	require.NoError(t, net.Nodes[1].Share("y1", share.NewScalar(7)))
	require.NoError(t, net.Nodes[0].Share("x2", share.NewScalar(-3)))
	require.NoError(t, net.Nodes[1].Share("y2", share.NewScalar(8)))

	// two independent multiplications in flight at once on every party
	runAll(t, net.Nodes, func(n peer.Peer) error {
		errs := make(chan error, 2)
		go func() { errs <- n.Mul("p1", "x1", "y1") }()
		go func() { errs <- n.Mul("p2", "x2", "y2") }()
		for i := 0; i < 2; i++ {
			if err := <-errs; err != nil {
				return err
			}
		}
		return nil
	})

	require.Equal(t, int64(42), revealAll(t, net.Nodes, "p1", f))
	require.Equal(t, int64(-24), revealAll(t, net.Nodes, "p2", f))
}

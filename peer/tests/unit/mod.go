package unit

import (
	"sync"
	"testing"

	"github.com/shaanrockz/sharenet/field"
	"github.com/shaanrockz/sharenet/peer"
	"github.com/shaanrockz/sharenet/peer/impl"
	"github.com/shaanrockz/sharenet/transport"
	"github.com/shaanrockz/sharenet/transport/channel"
	"github.com/shaanrockz/sharenet/transport/udp"
	"github.com/stretchr/testify/require"
)

var peerFac peer.Factory = impl.NewPeer

var providerFac peer.ProviderFactory = impl.NewProvider

var channelFac transport.Factory = channel.NewTransport

var udpFac transport.Factory = udp.NewUDP

// runAll invokes the same operation on every party concurrently and requires
// that all of them succeed. Interactive operations only make progress when
// the whole party set runs them.
func runAll(t *testing.T, nodes []peer.Peer, op func(peer.Peer) error) {
	var wg sync.WaitGroup
	errs := make([]error, len(nodes))
	for i, node := range nodes {
		wg.Add(1)
		go func(i int, node peer.Peer) {
			defer wg.Done()
			errs[i] = op(node)
		}(i, node)
	}
	wg.Wait()
	for _, err := range errs {
		require.NoError(t, err)
	}
}

// runAllIdx is runAll with the party index passed through.
func runAllIdx(t *testing.T, nodes []peer.Peer, op func(int, peer.Peer) error) {
	var wg sync.WaitGroup
	errs := make([]error, len(nodes))
	for i, node := range nodes {
		wg.Add(1)
		go func(i int, node peer.Peer) {
			defer wg.Done()
			errs[i] = op(i, node)
		}(i, node)
	}
	wg.Wait()
	for _, err := range errs {
		require.NoError(t, err)
	}
}

// revealAll opens a scalar on every party and requires that they all see the
// same plaintext, returned in signed decoding.
func revealAll(t *testing.T, nodes []peer.Peer, key string, f field.Field) int64 {
	var wg sync.WaitGroup
	vals := make([]int64, len(nodes))
	errs := make([]error, len(nodes))
	for i, node := range nodes {
		wg.Add(1)
		go func(i int, node peer.Peer) {
			defer wg.Done()
			secret, err := node.Reveal(key)
			if err != nil {
				errs[i] = err
				return
			}
			vals[i] = secret.Centered(f).Vals[0].Int64()
		}(i, node)
	}
	wg.Wait()
	for _, err := range errs {
		require.NoError(t, err)
	}
	for _, v := range vals[1:] {
		require.Equal(t, vals[0], v)
	}
	return vals[0]
}

package impl

import (
	"context"

	"github.com/rs/zerolog/log"
	"github.com/shaanrockz/sharenet/peer"
	"github.com/shaanrockz/sharenet/transport"
)

// daemon runs the listening loop of a node: packets addressed to the node go
// through the registry, everything else is dropped. There is no relaying;
// parties and provider talk point to point.
type daemon struct {
	stopSig context.CancelFunc
}

func (d *daemon) start(conf *peer.Configuration) {
	ctx, cancel := context.WithCancel(context.Background())
	d.stopSig = cancel

	go func(ctx context.Context) {
		for {
			select {
			case <-ctx.Done():
				// use context to determine when to stop the goroutine
				return
			default:
				pkt, err := conf.Socket.Recv(ReadTimeout)
				if err != nil {
					continue
				}
				if pkt.Header.Destination != conf.Socket.GetAddress() {
					continue
				}
				// handlers may block, e.g. a signed message waiting for the
				// origin's identity, so every packet gets its own goroutine
				go func(pkt transport.Packet) {
					err := conf.MessageRegistry.ProcessPacket(pkt)
					if err != nil {
						log.Warn().Msgf("%s: failed to process %s packet from %s: %v",
							conf.Socket.GetAddress(), pkt.Msg.Type, pkt.Header.Source, err)
					}
				}(pkt)
			}
		}
	}(ctx)
}

func (d *daemon) stop() {
	if d.stopSig != nil {
		d.stopSig()
	}
}

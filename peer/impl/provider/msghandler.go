package provider

import (
	"math/big"

	"github.com/rs/zerolog/log"
	"github.com/shaanrockz/sharenet/share"
	"github.com/shaanrockz/sharenet/transport"
	"github.com/shaanrockz/sharenet/types"
	"golang.org/x/xerrors"
)

/** Message Handler **/

// ProcessTripleRequestMsg is a callback function to handle a multiplication
// triple request. Every participant sends its own copy of the request; the
// first one triggers generation and delivery to the whole party set, the
// rest are dropped. A replay from an already-served origin panics: a reused
// triple breaks the protocol's secrecy and must never be answered.
func (m *ProviderModule) ProcessTripleRequestMsg(msg types.Message, pkt transport.Packet) error {
	req, ok := msg.(*types.TripleRequestMessage)
	if !ok {
		return xerrors.Errorf("wrong type: %T", msg)
	}

	first, replay := m.served.Register("triple|"+req.ReqID, req.Origin)
	if replay {
		panic(xerrors.Errorf("triple %s requested twice by %s: %w",
			req.ReqID, req.Origin, ErrTripleReuse))
	}
	if !first {
		return nil
	}

	log.Info().Msgf("%s: issuing %s triple %s for %d participants",
		m.conf.Socket.GetAddress(), req.Kind, req.ReqID, len(req.Participants))

	a, b, c, err := m.generateTriple(req)
	if err != nil {
		return err
	}

	return m.distribute(req.Participants, []*share.Secret{a, b, c},
		func(i int, parts [][]*big.Int) (types.Message, error) {
			return types.TripleShareMessage{
				ReqID: req.ReqID,
				A:     encodeVals(parts[0]),
				B:     encodeVals(parts[1]),
				C:     encodeVals(parts[2]),
				ADims: a.Dims,
				BDims: b.Dims,
				CDims: c.Dims,
			}, nil
		})
}

// ProcessRandRequestMsg is a callback function to handle a bit-shared
// randomness request, with the same dedupe and replay rules as triples.
func (m *ProviderModule) ProcessRandRequestMsg(msg types.Message, pkt transport.Packet) error {
	req, ok := msg.(*types.RandRequestMessage)
	if !ok {
		return xerrors.Errorf("wrong type: %T", msg)
	}

	first, replay := m.served.Register("rand|"+req.ReqID, req.Origin)
	if replay {
		panic(xerrors.Errorf("randomness %s requested twice by %s: %w",
			req.ReqID, req.Origin, ErrTripleReuse))
	}
	if !first {
		return nil
	}
	if req.Count <= 0 || req.Bits <= 0 {
		return xerrors.Errorf("empty randomness request %s", req.ReqID)
	}

	log.Info().Msgf("%s: issuing %d x %d-bit randomness %s for %d participants",
		m.conf.Socket.GetAddress(), req.Count, req.Bits, req.ReqID, len(req.Participants))

	bits, masks, err := m.generateRand(req)
	if err != nil {
		return err
	}

	secrets := []*share.Secret{bits}
	if masks != nil {
		secrets = append(secrets, masks)
	}
	return m.distribute(req.Participants, secrets,
		func(i int, parts [][]*big.Int) (types.Message, error) {
			rows := make([][]string, req.Count)
			for e := 0; e < req.Count; e++ {
				rows[e] = encodeVals(parts[0][e*req.Bits : (e+1)*req.Bits])
			}
			randMsg := types.RandShareMessage{
				ReqID: req.ReqID,
				Bits:  rows,
			}
			if masks != nil {
				randMsg.Masks = encodeVals(parts[1])
			}
			return randMsg, nil
		})
}

func encodeVals(vals []*big.Int) []string {
	out := make([]string, len(vals))
	for i, v := range vals {
		out[i] = v.Text(10)
	}
	return out
}

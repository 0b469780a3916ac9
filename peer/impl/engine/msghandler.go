package engine

import (
	"github.com/shaanrockz/sharenet/transport"
	"github.com/shaanrockz/sharenet/types"
	"golang.org/x/xerrors"
)

/** Message Handler **/

// ProcessShareMsg is a callback function to handle a received share message.
// The share is stored under its value identifier; operations waiting on it
// wake up.
func (m *EngineModule) ProcessShareMsg(msg types.Message, pkt transport.Packet) error {
	shareMsg, ok := msg.(*types.ShareMessage)
	if !ok {
		return xerrors.Errorf("wrong type: %T", msg)
	}
	if !m.isParticipant(shareMsg.Origin) {
		return xerrors.Errorf("share from non-participant %s", shareMsg.Origin)
	}

	vals, err := decodeVals(shareMsg.Values)
	if err != nil {
		return err
	}
	if len(vals) != numElems(shareMsg.Dims) {
		return xerrors.Errorf("share %s: %d values for shape %v",
			shareMsg.Key, len(vals), shareMsg.Dims)
	}
	m.store.Put(shareMsg.Key, sharedValue{dims: shareMsg.Dims, vals: vals})
	return nil
}

// ProcessOpenMsg is a callback function to handle a received open message,
// one participant's contribution to an open round.
func (m *EngineModule) ProcessOpenMsg(msg types.Message, pkt transport.Packet) error {
	openMsg, ok := msg.(*types.OpenMessage)
	if !ok {
		return xerrors.Errorf("wrong type: %T", msg)
	}
	if !m.isParticipant(openMsg.Origin) {
		return xerrors.Errorf("open contribution from non-participant %s", openMsg.Origin)
	}

	vals, err := decodeVals(openMsg.Values)
	if err != nil {
		return err
	}
	m.opens.Add(openMsg.Key, openMsg.Origin, vals)
	return nil
}

// ProcessTripleShareMsg is a callback function to handle triple shares from
// the provider. The three components land under derived keys of the request.
func (m *EngineModule) ProcessTripleShareMsg(msg types.Message, pkt transport.Packet) error {
	tripleMsg, ok := msg.(*types.TripleShareMessage)
	if !ok {
		return xerrors.Errorf("wrong type: %T", msg)
	}

	a, err := decodeVals(tripleMsg.A)
	if err != nil {
		return err
	}
	b, err := decodeVals(tripleMsg.B)
	if err != nil {
		return err
	}
	c, err := decodeVals(tripleMsg.C)
	if err != nil {
		return err
	}

	m.store.Put(tripleMsg.ReqID+"|a", sharedValue{dims: tripleMsg.ADims, vals: a})
	m.store.Put(tripleMsg.ReqID+"|b", sharedValue{dims: tripleMsg.BDims, vals: b})
	m.store.Put(tripleMsg.ReqID+"|c", sharedValue{dims: tripleMsg.CDims, vals: c})
	return nil
}

// ProcessRandShareMsg is a callback function to handle bit-shared randomness
// from the provider. Bit shares are stored as a [count, width] matrix, mask
// shares as a vector.
func (m *EngineModule) ProcessRandShareMsg(msg types.Message, pkt transport.Packet) error {
	randMsg, ok := msg.(*types.RandShareMessage)
	if !ok {
		return xerrors.Errorf("wrong type: %T", msg)
	}

	count := len(randMsg.Bits)
	width := 0
	if count > 0 {
		width = len(randMsg.Bits[0])
	}
	flat := make([]string, 0, count*width)
	for _, row := range randMsg.Bits {
		if len(row) != width {
			return xerrors.Errorf("ragged bit rows in %s", randMsg.ReqID)
		}
		flat = append(flat, row...)
	}
	bits, err := decodeVals(flat)
	if err != nil {
		return err
	}
	m.store.Put(randMsg.ReqID+"|bits", sharedValue{dims: []int{count, width}, vals: bits})

	if len(randMsg.Masks) > 0 {
		masks, err := decodeVals(randMsg.Masks)
		if err != nil {
			return err
		}
		m.store.Put(randMsg.ReqID+"|mask", sharedValue{dims: []int{count}, vals: masks})
	}
	return nil
}

func (m *EngineModule) isParticipant(addr string) bool {
	for _, participant := range m.participants {
		if participant == addr {
			return true
		}
	}
	return false
}

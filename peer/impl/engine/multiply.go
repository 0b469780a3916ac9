package engine

import (
	"math/big"

	"github.com/shaanrockz/sharenet/types"
	"golang.org/x/xerrors"
)

/** Feature Functions **/

// Mul implements peer.MPC. Elementwise product of two same-shaped values
// using one multiplication triple per invocation.
func (m *EngineModule) Mul(res, x, y string) error {
	unlock := m.locks.Lock(res, x, y)
	defer unlock()

	xv, yv, err := m.getPair(x, y)
	if err != nil {
		return err
	}
	vals, err := m.mulVals(res, xv.dims, xv.vals, yv.vals)
	if err != nil {
		return err
	}
	m.store.Put(res, sharedValue{dims: xv.dims, vals: vals})
	return nil
}

// MatMul implements peer.MPC. Matrix product of an [m,k] value with a [k,n]
// value, one matrix triple per invocation.
func (m *EngineModule) MatMul(res, x, y string) error {
	unlock := m.locks.Lock(res, x, y)
	defer unlock()

	xv, err := m.getValue(x)
	if err != nil {
		return err
	}
	yv, err := m.getValue(y)
	if err != nil {
		return err
	}
	if len(xv.dims) != 2 || len(yv.dims) != 2 || xv.dims[1] != yv.dims[0] {
		return xerrors.Errorf("incompatible matrix shapes %v x %v: %w",
			xv.dims, yv.dims, ErrPartyMismatch)
	}

	rows, inner, cols := xv.dims[0], xv.dims[1], yv.dims[1]
	a, b, c, err := m.requestTriple(res, "matmul", xv.dims, yv.dims)
	if err != nil {
		return err
	}

	ePub, err := m.openValue(res+"|e", m.subVals(xv.vals, a.vals))
	if err != nil {
		return err
	}
	fPub, err := m.openValue(res+"|f", m.subVals(yv.vals, b.vals))
	if err != nil {
		return err
	}

	// z = c + E*b + a*F, leader adds E*F
	vals := m.addVals(c.vals, m.matProduct(ePub, b.vals, rows, inner, cols))
	vals = m.addVals(vals, m.matProduct(a.vals, fPub, rows, inner, cols))
	if m.leader {
		vals = m.addVals(vals, m.matProduct(ePub, fPub, rows, inner, cols))
	}
	m.store.Put(res, sharedValue{dims: []int{rows, cols}, vals: vals})
	return nil
}

/** Private Helper Functions **/

// mulVals runs one elementwise Beaver round on raw share vectors. reqID must
// be unique per invocation; sub-protocols derive their own suffixed ids.
func (m *EngineModule) mulVals(reqID string, dims []int, xvals, yvals []*big.Int) ([]*big.Int, error) {
	a, b, c, err := m.requestTriple(reqID, "mul", dims, dims)
	if err != nil {
		return nil, err
	}

	ePub, err := m.openValue(reqID+"|e", m.subVals(xvals, a.vals))
	if err != nil {
		return nil, err
	}
	fPub, err := m.openValue(reqID+"|f", m.subVals(yvals, b.vals))
	if err != nil {
		return nil, err
	}

	// z = c + e*b + f*a, leader adds e*f
	out := make([]*big.Int, len(xvals))
	for e := range out {
		z := m.f.Add(c.vals[e], m.f.Mul(ePub[e], b.vals[e]))
		z = m.f.Add(z, m.f.Mul(fPub[e], a.vals[e]))
		if m.leader {
			z = m.f.Add(z, m.f.Mul(ePub[e], fPub[e]))
		}
		out[e] = z
	}
	return out, nil
}

// requestTriple asks the provider for the triple of the given invocation and
// blocks until all three components arrived. Components are deleted on
// pick-up: a triple serves exactly one invocation.
func (m *EngineModule) requestTriple(reqID, kind string, leftDims, rightDims []int) (sharedValue, sharedValue, sharedValue, error) {
	req := types.TripleRequestMessage{
		ReqID:        reqID,
		Origin:       m.conf.Socket.GetAddress(),
		Participants: m.participants,
		Kind:         kind,
		LeftDims:     leftDims,
		RightDims:    rightDims,
	}
	reqMarshal, err := m.CreateMsg(req)
	if err != nil {
		return sharedValue{}, sharedValue{}, sharedValue{}, err
	}
	err = m.SendSigned(m.conf.ProviderAddr, reqMarshal)
	if err != nil {
		return sharedValue{}, sharedValue{}, sharedValue{}, err
	}

	a, err := m.store.Await(reqID+"|a", m.conf.ProtocolTimeout)
	if err != nil {
		return sharedValue{}, sharedValue{}, sharedValue{}, err
	}
	b, err := m.store.Await(reqID+"|b", m.conf.ProtocolTimeout)
	if err != nil {
		return sharedValue{}, sharedValue{}, sharedValue{}, err
	}
	c, err := m.store.Await(reqID+"|c", m.conf.ProtocolTimeout)
	if err != nil {
		return sharedValue{}, sharedValue{}, sharedValue{}, err
	}

	m.store.Del(reqID + "|a")
	m.store.Del(reqID + "|b")
	m.store.Del(reqID + "|c")
	return a, b, c, nil
}

// matProduct multiplies a [rows,inner] slice with an [inner,cols] slice in
// the field, both in row-major order.
func (m *EngineModule) matProduct(a, b []*big.Int, rows, inner, cols int) []*big.Int {
	out := make([]*big.Int, rows*cols)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			acc := big.NewInt(0)
			for t := 0; t < inner; t++ {
				acc = m.f.Add(acc, m.f.Mul(a[i*inner+t], b[t*cols+j]))
			}
			out[i*cols+j] = acc
		}
	}
	return out
}

package engine

import (
	"math/big"

	"github.com/shaanrockz/sharenet/share"
	"golang.org/x/xerrors"
)

/** Feature Functions **/

// Add implements peer.MPC. Addition is local: parties add their shares
// elementwise.
func (m *EngineModule) Add(res, x, y string) error {
	unlock := m.locks.Lock(res, x, y)
	defer unlock()

	xv, yv, err := m.getPair(x, y)
	if err != nil {
		return err
	}
	m.store.Put(res, sharedValue{dims: xv.dims, vals: m.addVals(xv.vals, yv.vals)})
	return nil
}

// Sub implements peer.MPC.
func (m *EngineModule) Sub(res, x, y string) error {
	unlock := m.locks.Lock(res, x, y)
	defer unlock()

	xv, yv, err := m.getPair(x, y)
	if err != nil {
		return err
	}
	m.store.Put(res, sharedValue{dims: xv.dims, vals: m.subVals(xv.vals, yv.vals)})
	return nil
}

// AddConst implements peer.MPC. The public constant is added elementwise;
// only the leading party absorbs it so the share sum moves by exactly k.
func (m *EngineModule) AddConst(res, x string, k *big.Int) error {
	unlock := m.locks.Lock(res, x)
	defer unlock()

	xv, err := m.getValue(x)
	if err != nil {
		return err
	}
	out := make([]*big.Int, len(xv.vals))
	for e, v := range xv.vals {
		if m.leader {
			out[e] = m.f.Add(v, k)
		} else {
			out[e] = m.f.Reduce(v)
		}
	}
	m.store.Put(res, sharedValue{dims: xv.dims, vals: out})
	return nil
}

// MulConst implements peer.MPC. Every party scales its share.
func (m *EngineModule) MulConst(res, x string, k *big.Int) error {
	unlock := m.locks.Lock(res, x)
	defer unlock()

	xv, err := m.getValue(x)
	if err != nil {
		return err
	}
	m.store.Put(res, sharedValue{dims: xv.dims, vals: m.scaleVals(xv.vals, k)})
	return nil
}

// Sum implements peer.MPC. It folds any number of same-shaped operands into
// one elementwise sum, locally.
func (m *EngineModule) Sum(res string, xs ...string) error {
	if len(xs) == 0 {
		return xerrors.Errorf("sum needs at least one operand: %w", ErrPartyMismatch)
	}

	unlock := m.locks.Lock(append([]string{res}, xs...)...)
	defer unlock()

	acc, err := m.getValue(xs[0])
	if err != nil {
		return err
	}
	vals := append([]*big.Int(nil), acc.vals...)
	for _, x := range xs[1:] {
		xv, err := m.getValue(x)
		if err != nil {
			return err
		}
		if !share.SameShape(acc.dims, xv.dims) {
			return xerrors.Errorf("shape mismatch between %s and %s: %w", xs[0], x, ErrPartyMismatch)
		}
		vals = m.addVals(vals, xv.vals)
	}
	m.store.Put(res, sharedValue{dims: acc.dims, vals: vals})
	return nil
}

/** Private Helper Functions **/

func (m *EngineModule) addVals(a, b []*big.Int) []*big.Int {
	out := make([]*big.Int, len(a))
	for e := range a {
		out[e] = m.f.Add(a[e], b[e])
	}
	return out
}

func (m *EngineModule) subVals(a, b []*big.Int) []*big.Int {
	out := make([]*big.Int, len(a))
	for e := range a {
		out[e] = m.f.Sub(a[e], b[e])
	}
	return out
}

func (m *EngineModule) scaleVals(a []*big.Int, k *big.Int) []*big.Int {
	out := make([]*big.Int, len(a))
	for e := range a {
		out[e] = m.f.Mul(a[e], k)
	}
	return out
}

// constVals builds the share vector of a public constant: the leading party
// holds the value, everyone else zero.
func (m *EngineModule) constVals(k *big.Int, n int) []*big.Int {
	out := make([]*big.Int, n)
	for e := range out {
		if m.leader {
			out[e] = m.f.Reduce(k)
		} else {
			out[e] = big.NewInt(0)
		}
	}
	return out
}

// oneMinusVals maps a shared bit vector to its complement.
func (m *EngineModule) oneMinusVals(a []*big.Int) []*big.Int {
	one := big.NewInt(1)
	out := make([]*big.Int, len(a))
	for e := range a {
		if m.leader {
			out[e] = m.f.Sub(one, a[e])
		} else {
			out[e] = m.f.Neg(a[e])
		}
	}
	return out
}

package engine

import (
	"math/big"
	"strconv"

	"github.com/shaanrockz/sharenet/types"
	"golang.org/x/xerrors"
)

/** Feature Functions **/

// GreaterThan implements peer.MPC. It computes the shared bit [x > y]
// elementwise over signed values in (-2^MaxValueBits, 2^MaxValueBits),
// without opening either operand.
func (m *EngineModule) GreaterThan(res, x, y string) error {
	unlock := m.locks.Lock(res, x, y)
	defer unlock()

	xv, yv, err := m.getPair(x, y)
	if err != nil {
		return err
	}
	vals, err := m.gtVals(res, xv.dims, xv.vals, yv.vals)
	if err != nil {
		return err
	}
	m.store.Put(res, sharedValue{dims: xv.dims, vals: vals})
	return nil
}

// LessEqual implements peer.MPC. [x <= y] = 1 - [x > y], computed locally on
// top of one comparison round.
func (m *EngineModule) LessEqual(res, x, y string) error {
	unlock := m.locks.Lock(res, x, y)
	defer unlock()

	xv, yv, err := m.getPair(x, y)
	if err != nil {
		return err
	}
	vals, err := m.gtVals(res, xv.dims, xv.vals, yv.vals)
	if err != nil {
		return err
	}
	m.store.Put(res, sharedValue{dims: xv.dims, vals: m.oneMinusVals(vals)})
	return nil
}

// Equal implements peer.MPC. It computes the shared bit [x == y] elementwise
// with a dedicated masked-difference protocol rather than two comparisons.
func (m *EngineModule) Equal(res, x, y string) error {
	unlock := m.locks.Lock(res, x, y)
	defer unlock()

	xv, yv, err := m.getPair(x, y)
	if err != nil {
		return err
	}
	vals, err := m.eqVals(res, xv.dims, xv.vals, yv.vals)
	if err != nil {
		return err
	}
	m.store.Put(res, sharedValue{dims: xv.dims, vals: vals})
	return nil
}

// Select implements peer.MPC. res = y + b*(x-y) elementwise, so b must hold
// shared bits. Neither the bit nor the branches are opened.
func (m *EngineModule) Select(res, b, x, y string) error {
	unlock := m.locks.Lock(res, b, x, y)
	defer unlock()

	bv, err := m.getValue(b)
	if err != nil {
		return err
	}
	xv, yv, err := m.getPair(x, y)
	if err != nil {
		return err
	}
	if !sameShapeVals(bv.vals, xv.vals) {
		return xerrors.Errorf("selector shape mismatch: %w", ErrPartyMismatch)
	}
	vals, err := m.selectVals(res, xv.dims, bv.vals, xv.vals, yv.vals)
	if err != nil {
		return err
	}
	m.store.Put(res, sharedValue{dims: xv.dims, vals: vals})
	return nil
}

// Max implements peer.MPC. Pairwise compare-and-select over the operands;
// only the final maximum survives, the comparison outcomes stay shared.
func (m *EngineModule) Max(res string, xs ...string) error {
	if len(xs) == 0 {
		return xerrors.Errorf("max needs at least one operand: %w", ErrPartyMismatch)
	}

	unlock := m.locks.Lock(append([]string{res}, xs...)...)
	defer unlock()

	cur, err := m.getValue(xs[0])
	if err != nil {
		return err
	}
	vals := append([]*big.Int(nil), cur.vals...)
	for j, x := range xs[1:] {
		xv, err := m.getValue(x)
		if err != nil {
			return err
		}
		if !sameShapeVals(vals, xv.vals) {
			return xerrors.Errorf("shape mismatch between %s and %s: %w", xs[0], x, ErrPartyMismatch)
		}
		suffix := strconv.Itoa(j + 1)
		b, err := m.gtVals(res+"|gt"+suffix, cur.dims, xv.vals, vals)
		if err != nil {
			return err
		}
		vals, err = m.selectVals(res+"|max"+suffix, cur.dims, b, xv.vals, vals)
		if err != nil {
			return err
		}
	}
	m.store.Put(res, sharedValue{dims: cur.dims, vals: vals})
	return nil
}

// Argmax implements peer.MPC. Like Max, but the result holds the shared index
// of the winning operand; ties resolve to the lowest index.
func (m *EngineModule) Argmax(res string, xs ...string) error {
	if len(xs) == 0 {
		return xerrors.Errorf("argmax needs at least one operand: %w", ErrPartyMismatch)
	}

	unlock := m.locks.Lock(append([]string{res}, xs...)...)
	defer unlock()

	cur, err := m.getValue(xs[0])
	if err != nil {
		return err
	}
	vals := append([]*big.Int(nil), cur.vals...)
	idx := m.constVals(big.NewInt(0), len(vals))
	for j, x := range xs[1:] {
		xv, err := m.getValue(x)
		if err != nil {
			return err
		}
		if !sameShapeVals(vals, xv.vals) {
			return xerrors.Errorf("shape mismatch between %s and %s: %w", xs[0], x, ErrPartyMismatch)
		}
		suffix := strconv.Itoa(j + 1)
		b, err := m.gtVals(res+"|gt"+suffix, cur.dims, xv.vals, vals)
		if err != nil {
			return err
		}
		vals, err = m.selectVals(res+"|max"+suffix, cur.dims, b, xv.vals, vals)
		if err != nil {
			return err
		}
		idx, err = m.selectVals(res+"|idx"+suffix, cur.dims, b,
			m.constVals(big.NewInt(int64(j+1)), len(vals)), idx)
		if err != nil {
			return err
		}
	}
	m.store.Put(res, sharedValue{dims: cur.dims, vals: idx})
	return nil
}

/** Private Helper Functions **/

// gtVals computes shares of [x > y] elementwise.
//
// With L = MaxValueBits and M = L+1, the difference d = x-y lies in
// (-2^M, 2^M), so a = d - 1 + 2^M lies in [0, 2^(M+1)) and [x > y] equals
// bit M of a. The provider supplies a bit-shared r1 < 2^M plus a blinding
// mask r2 < 2^SecBits; the parties open c = a + r2*2^M + r1, which hides a
// statistically and, by the modulus size check in NewEngine, never wraps
// mod Q. Then cL = c mod 2^M is public, u = [cL < r1] comes out of a binary
// borrow circuit over the shared bits of r1, and
//
//	a mod 2^M = cL - r1 + 2^M*u
//	[x > y]   = (a - a mod 2^M) / 2^M  (mod Q)
func (m *EngineModule) gtVals(reqID string, dims []int, xvals, yvals []*big.Int) ([]*big.Int, error) {
	n := len(xvals)
	M := m.conf.MaxValueBits + 1
	one := big.NewInt(1)
	pow2M := new(big.Int).Lsh(one, uint(M))

	bits, masks, err := m.requestRand(reqID+"|rand", n, M, m.conf.SecBits)
	if err != nil {
		return nil, err
	}

	// a = d - 1 + 2^M
	offset := new(big.Int).Sub(pow2M, one)
	aShare := make([]*big.Int, n)
	for e, d := range m.subVals(xvals, yvals) {
		if m.leader {
			aShare[e] = m.f.Add(d, offset)
		} else {
			aShare[e] = d
		}
	}

	// r1 from its bits, full mask r = r2*2^M + r1
	r1Share := make([]*big.Int, n)
	cShare := make([]*big.Int, n)
	for e := 0; e < n; e++ {
		r1 := big.NewInt(0)
		for j := 0; j < M; j++ {
			weight := new(big.Int).Lsh(one, uint(j))
			r1 = m.f.Add(r1, m.f.Mul(weight, bits[e*M+j]))
		}
		r1Share[e] = r1
		cShare[e] = m.f.Add(aShare[e], m.f.Add(m.f.Mul(masks[e], pow2M), r1))
	}

	cPub, err := m.openValue(reqID+"|c", cShare)
	if err != nil {
		return nil, err
	}

	// u = [cL < r1], borrow circuit over the shared bits, LSB first:
	// borrow' = rj*(1-cj) + (1-(rj^cj))*borrow with cj public
	u := make([]*big.Int, n)
	for e := range u {
		u[e] = big.NewInt(0)
	}
	for j := 0; j < M; j++ {
		keep := make([]*big.Int, n)
		gen := make([]*big.Int, n)
		for e := 0; e < n; e++ {
			rbit := bits[e*M+j]
			if cPub[e].Bit(j) == 1 {
				keep[e] = rbit
				gen[e] = big.NewInt(0)
			} else {
				if m.leader {
					keep[e] = m.f.Sub(one, rbit)
				} else {
					keep[e] = m.f.Neg(rbit)
				}
				gen[e] = rbit
			}
		}
		carried, err := m.mulVals(reqID+"|blt"+strconv.Itoa(j), dims, keep, u)
		if err != nil {
			return nil, err
		}
		u = m.addVals(gen, carried)
	}

	inv2M, err := m.f.Inv(pow2M)
	if err != nil {
		return nil, err
	}
	out := make([]*big.Int, n)
	for e := 0; e < n; e++ {
		cL := new(big.Int).Mod(cPub[e], pow2M)
		alow := m.f.Add(m.f.Mul(pow2M, u[e]), m.f.Neg(r1Share[e]))
		if m.leader {
			alow = m.f.Add(alow, cL)
		}
		out[e] = m.f.Mul(m.f.Sub(aShare[e], alow), inv2M)
	}
	return out, nil
}

// eqVals computes shares of [x == y] elementwise.
//
// The provider supplies r uniform below Q together with all of its bits
// shared. The parties open c = (x-y) + r mod Q; the difference is zero
// exactly when c equals r, i.e. when every public bit of c matches the
// corresponding shared bit of r. The match bits multiply up sequentially.
func (m *EngineModule) eqVals(reqID string, dims []int, xvals, yvals []*big.Int) ([]*big.Int, error) {
	n := len(xvals)
	K := m.f.Bits()
	one := big.NewInt(1)

	bits, _, err := m.requestRand(reqID+"|rand", n, K, 0)
	if err != nil {
		return nil, err
	}

	d := m.subVals(xvals, yvals)
	cShare := make([]*big.Int, n)
	for e := 0; e < n; e++ {
		r := big.NewInt(0)
		for j := 0; j < K; j++ {
			weight := new(big.Int).Lsh(one, uint(j))
			r = m.f.Add(r, m.f.Mul(weight, bits[e*K+j]))
		}
		cShare[e] = m.f.Add(d[e], r)
	}

	cPub, err := m.openValue(reqID+"|c", cShare)
	if err != nil {
		return nil, err
	}

	matchBit := func(e, j int) *big.Int {
		rbit := bits[e*K+j]
		if cPub[e].Bit(j) == 1 {
			return rbit
		}
		if m.leader {
			return m.f.Sub(one, rbit)
		}
		return m.f.Neg(rbit)
	}

	acc := make([]*big.Int, n)
	for e := 0; e < n; e++ {
		acc[e] = matchBit(e, 0)
	}
	for j := 1; j < K; j++ {
		term := make([]*big.Int, n)
		for e := 0; e < n; e++ {
			term[e] = matchBit(e, j)
		}
		acc, err = m.mulVals(reqID+"|and"+strconv.Itoa(j), dims, acc, term)
		if err != nil {
			return nil, err
		}
	}
	return acc, nil
}

// selectVals computes res = y + b*(x-y) with one multiplication.
func (m *EngineModule) selectVals(reqID string, dims []int, bvals, xvals, yvals []*big.Int) ([]*big.Int, error) {
	picked, err := m.mulVals(reqID+"|sel", dims, bvals, m.subVals(xvals, yvals))
	if err != nil {
		return nil, err
	}
	return m.addVals(yvals, picked), nil
}

// requestRand asks the provider for bit-shared randomness: count values of
// the given bit width, each delivered as bits, plus count masks below
// 2^maskBits when maskBits > 0.
func (m *EngineModule) requestRand(reqID string, count, bits, maskBits int) ([]*big.Int, []*big.Int, error) {
	req := types.RandRequestMessage{
		ReqID:        reqID,
		Origin:       m.conf.Socket.GetAddress(),
		Participants: m.participants,
		Count:        count,
		Bits:         bits,
		MaskBits:     maskBits,
	}
	reqMarshal, err := m.CreateMsg(req)
	if err != nil {
		return nil, nil, err
	}
	err = m.SendSigned(m.conf.ProviderAddr, reqMarshal)
	if err != nil {
		return nil, nil, err
	}

	bitsV, err := m.store.Await(reqID+"|bits", m.conf.ProtocolTimeout)
	if err != nil {
		return nil, nil, err
	}
	m.store.Del(reqID + "|bits")

	var masks []*big.Int
	if maskBits > 0 {
		maskV, err := m.store.Await(reqID+"|mask", m.conf.ProtocolTimeout)
		if err != nil {
			return nil, nil, err
		}
		m.store.Del(reqID + "|mask")
		masks = maskV.vals
	}
	return bitsV.vals, masks, nil
}

func sameShapeVals(a, b []*big.Int) bool {
	return len(a) == len(b)
}

package provider

import (
	"math/big"

	"github.com/shaanrockz/sharenet/share"
	"github.com/shaanrockz/sharenet/types"
	"golang.org/x/xerrors"
)

/** Private Helper Functions **/

// generateTriple draws uniform a and b of the requested shapes and computes
// c, elementwise or as a matrix product depending on the kind.
func (m *ProviderModule) generateTriple(req *types.TripleRequestMessage) (a, b, c *share.Secret, err error) {
	switch req.Kind {
	case "mul":
		if !share.SameShape(req.LeftDims, req.RightDims) {
			return nil, nil, nil, xerrors.Errorf("triple %s: shapes %v and %v differ",
				req.ReqID, req.LeftDims, req.RightDims)
		}
		n := numElems(req.LeftDims)
		av, err := m.randVals(n)
		if err != nil {
			return nil, nil, nil, err
		}
		bv, err := m.randVals(n)
		if err != nil {
			return nil, nil, nil, err
		}
		cv := make([]*big.Int, n)
		for e := 0; e < n; e++ {
			cv[e] = m.f.Mul(av[e], bv[e])
		}
		return &share.Secret{Dims: req.LeftDims, Vals: av},
			&share.Secret{Dims: req.RightDims, Vals: bv},
			&share.Secret{Dims: req.LeftDims, Vals: cv}, nil

	case "matmul":
		if len(req.LeftDims) != 2 || len(req.RightDims) != 2 ||
			req.LeftDims[1] != req.RightDims[0] {
			return nil, nil, nil, xerrors.Errorf("triple %s: bad matrix shapes %v x %v",
				req.ReqID, req.LeftDims, req.RightDims)
		}
		rows, inner, cols := req.LeftDims[0], req.LeftDims[1], req.RightDims[1]
		av, err := m.randVals(rows * inner)
		if err != nil {
			return nil, nil, nil, err
		}
		bv, err := m.randVals(inner * cols)
		if err != nil {
			return nil, nil, nil, err
		}
		cv := make([]*big.Int, rows*cols)
		for i := 0; i < rows; i++ {
			for j := 0; j < cols; j++ {
				acc := big.NewInt(0)
				for t := 0; t < inner; t++ {
					acc = m.f.Add(acc, m.f.Mul(av[i*inner+t], bv[t*cols+j]))
				}
				cv[i*cols+j] = acc
			}
		}
		return &share.Secret{Dims: req.LeftDims, Vals: av},
			&share.Secret{Dims: req.RightDims, Vals: bv},
			&share.Secret{Dims: []int{rows, cols}, Vals: cv}, nil

	default:
		return nil, nil, nil, xerrors.Errorf("triple %s: unknown kind %q", req.ReqID, req.Kind)
	}
}

// generateRand draws the requested random values below min(2^Bits, Q) and
// exposes them only through their bit decomposition, LSB first, plus the
// optional blinding masks below 2^MaskBits.
func (m *ProviderModule) generateRand(req *types.RandRequestMessage) (bits, masks *share.Secret, err error) {
	bound := new(big.Int).Lsh(big.NewInt(1), uint(req.Bits))
	if bound.Cmp(m.f.Q()) > 0 {
		bound = m.f.Q()
	}

	bitVals := make([]*big.Int, req.Count*req.Bits)
	for e := 0; e < req.Count; e++ {
		r, err := m.f.RandBelow(bound)
		if err != nil {
			return nil, nil, err
		}
		for j := 0; j < req.Bits; j++ {
			bitVals[e*req.Bits+j] = big.NewInt(int64(r.Bit(j)))
		}
	}
	bits = &share.Secret{Dims: []int{req.Count, req.Bits}, Vals: bitVals}

	if req.MaskBits <= 0 {
		return bits, nil, nil
	}
	maskBound := new(big.Int).Lsh(big.NewInt(1), uint(req.MaskBits))
	maskVals := make([]*big.Int, req.Count)
	for e := 0; e < req.Count; e++ {
		maskVals[e], err = m.f.RandBelow(maskBound)
		if err != nil {
			return nil, nil, err
		}
	}
	masks = &share.Secret{Dims: []int{req.Count}, Vals: maskVals}
	return bits, masks, nil
}

// randVals draws n uniform field elements.
func (m *ProviderModule) randVals(n int) ([]*big.Int, error) {
	out := make([]*big.Int, n)
	for e := range out {
		v, err := m.f.Rand()
		if err != nil {
			return nil, err
		}
		out[e] = v
	}
	return out, nil
}

func numElems(dims []int) int {
	n := 1
	for _, d := range dims {
		n *= d
	}
	return n
}

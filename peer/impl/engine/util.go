package engine

import (
	"math/big"

	"golang.org/x/xerrors"
)

// encodeVals renders field elements as decimal strings for the wire.
func encodeVals(vals []*big.Int) []string {
	out := make([]string, len(vals))
	for i, v := range vals {
		out[i] = v.Text(10)
	}
	return out
}

// decodeVals parses wire values back into field elements.
func decodeVals(vals []string) ([]*big.Int, error) {
	out := make([]*big.Int, len(vals))
	for i, s := range vals {
		v, ok := new(big.Int).SetString(s, 10)
		if !ok {
			return nil, xerrors.Errorf("malformed field element %q", s)
		}
		out[i] = v
	}
	return out, nil
}

// numElems returns the element count of a shape.
func numElems(dims []int) int {
	n := 1
	for _, d := range dims {
		n *= d
	}
	return n
}

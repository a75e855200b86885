package funds

import "math/big"

// Split carves a pct share out of total using integer arithmetic. The
// remainder absorbs any rounding, so share + rest == total always holds and
// no unit is ever lost to division.
func Split(total *big.Int, pct uint) (share, rest *big.Int) {
	share = new(big.Int).Mul(total, new(big.Int).SetUint64(uint64(pct)))
	share.Div(share, big.NewInt(100))
	rest = new(big.Int).Sub(total, share)

	return share, rest
}

package amm

import "math/big"

// Router is the external automated market-maker used by the sale controller's
// treasury extension. It is consumed as an opaque service; no pricing logic
// lives in this module.
type Router interface {
	// SwapExactTokensForTokens swaps amountIn of path[0] for at least minOut
	// of path[len(path)-1], sending the proceeds to `to`. Fails once the
	// deadline (unix seconds) has passed.
	SwapExactTokensForTokens(caller string, amountIn, minOut *big.Int, path []string, to string, deadline int64) (*big.Int, error)

	// AddLiquidity provisions the tokenA/tokenB pool with up to
	// amountA/amountB, tolerating slippage down to minA/minB.
	AddLiquidity(caller, tokenA, tokenB string, amountA, amountB, minA, minB *big.Int, to string, deadline int64) (*big.Int, *big.Int, error)
}

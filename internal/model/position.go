package model

// PositionRequest asks for the amounts of one position. Either LiquidityD8 or
// at least one of Amount0 and Amount1 is set.
type PositionRequest struct {
	ID          string `json:"id"`
	PoolID      string `json:"pool_id"`
	TierID      int    `json:"tier_id"`
	TickLower   int32  `json:"tick_lower"`
	TickUpper   int32  `json:"tick_upper"`
	LiquidityD8 string `json:"liquidity_d8,omitempty"`
	Amount0     string `json:"amount0,omitempty"`
	Amount1     string `json:"amount1,omitempty"`
	// LimitOrderType is 0 for none, 1 for zero-for-one, 2 for one-for-zero.
	LimitOrderType uint8  `json:"limit_order_type,omitempty"`
	Settled        bool   `json:"settled,omitempty"`
	Slippage       string `json:"slippage,omitempty"`
}

// AmountPair is a token0/token1 pair of raw amounts.
type AmountPair struct {
	Amount0 string `json:"amount0"`
	Amount1 string `json:"amount1"`
}

// PositionQuote is the answer to a PositionRequest.
type PositionQuote struct {
	ID             string      `json:"id"`
	PoolID         string      `json:"pool_id"`
	TierID         int         `json:"tier_id"`
	TickLower      int32       `json:"tick_lower"`
	TickUpper      int32       `json:"tick_upper"`
	TierTick       int32       `json:"tier_tick"`
	LiquidityD8    string      `json:"liquidity_d8"`
	LimitOrder     string      `json:"limit_order"`
	Holding        AmountPair  `json:"holding"`
	Mint           AmountPair  `json:"mint"`
	Settle         *AmountPair `json:"settle,omitempty"`
	MintWithSlip   AmountPair  `json:"mint_with_slippage"`
	BurnWithSlip   AmountPair  `json:"burn_with_slippage"`
	NewTierCharges *AmountPair `json:"new_tier_charges,omitempty"`
	Slippage       string      `json:"slippage"`
}

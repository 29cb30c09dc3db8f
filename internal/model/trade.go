package model

// TradeRequest asks for the bounds and analytics of a simulated trade.
type TradeRequest struct {
	ID        string `json:"id"`
	ChainID   uint64 `json:"chain_id"`
	TradeType string `json:"trade_type"`
	// Input and Output are token addresses. NativeInput and NativeOutput mark
	// the chain's native currency wrapped by that token.
	Input        string        `json:"input"`
	Output       string        `json:"output"`
	NativeInput  bool          `json:"native_input,omitempty"`
	NativeOutput bool          `json:"native_output,omitempty"`
	Swaps        []SwapRequest `json:"swaps"`
	Slippage     string        `json:"slippage,omitempty"`

	// DecimalAmounts reads swap amount_in and amount_out in whole token units
	// ("1.5") instead of raw integers. Tier amounts are always raw.
	DecimalAmounts bool `json:"decimal_amounts,omitempty"`
}

// SwapRequest is one simulated leg of a trade. TierMasks holds one bitmask
// per pool, each in [1, 255].
type SwapRequest struct {
	PoolIDs   []string     `json:"pool_ids"`
	TierMasks []uint       `json:"tier_masks"`
	AmountIn  string       `json:"amount_in"`
	AmountOut string       `json:"amount_out"`
	Hops      []HopRequest `json:"hops"`
}

// HopRequest carries the simulated input of each tier, in execution order.
type HopRequest struct {
	TierAmountsIn []string `json:"tier_amounts_in"`
}

// TradeQuote is the answer to a TradeRequest. Percent fields are in percent
// units.
type TradeQuote struct {
	ID                string       `json:"id"`
	TradeType         string       `json:"trade_type"`
	AmountIn          string       `json:"amount_in"`
	AmountOut         string       `json:"amount_out"`
	MinimumAmountOut  string       `json:"minimum_amount_out"`
	MaximumAmountIn   string       `json:"maximum_amount_in"`
	ExecutionPrice    string       `json:"execution_price"`
	WorstPrice        string       `json:"worst_execution_price"`
	MarginalPrice     string       `json:"marginal_price"`
	PriceImpact       string       `json:"price_impact"`
	FeePercent        string       `json:"fee_percent"`
	FeeAmount         string       `json:"fee_amount"`
	TierDistributions [][][]string `json:"tier_distributions"`
	Slippage          string       `json:"slippage"`
}

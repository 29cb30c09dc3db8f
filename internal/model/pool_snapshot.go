package model

// PoolSnapshot is the state of one hub pool at a block. Big integers are
// decimal strings.
type PoolSnapshot struct {
	ChainID     uint64         `json:"chain_id"`
	PoolID      string         `json:"pool_id"`
	Token0      TokenMeta      `json:"token0"`
	Token1      TokenMeta      `json:"token1"`
	TickSpacing int32          `json:"tick_spacing"`
	ProtocolFee uint8          `json:"protocol_fee"`
	BlockNumber uint64         `json:"block_number"`
	Tiers       []TierSnapshot `json:"tiers"`
	FetchedAt   string         `json:"fetched_at,omitempty"`
}

// TierSnapshot includes the tier fields the quoting engine reads.
type TierSnapshot struct {
	Liquidity     string `json:"liquidity"`
	SqrtPrice     string `json:"sqrt_price"`
	SqrtGamma     uint32 `json:"sqrt_gamma"`
	NextTickBelow int32  `json:"next_tick_below"`
	NextTickAbove int32  `json:"next_tick_above"`
}

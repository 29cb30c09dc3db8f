// Package route validates swap paths across pools and aggregates them into
// trades.
package route

import (
	"fmt"

	"tierquote/internal/currency"
	"tierquote/internal/errs"
	"tierquote/internal/pool"
)

// Route is a path of pools from an input currency to an output currency. Each
// pool carries a tier mask selecting the tiers the swap may use.
type Route struct {
	pools     []*pool.Pool
	tierMasks []uint8
	input     currency.Currency
	output    currency.Currency
	tokenPath []*currency.Token
}

// New validates the path and builds a Route.
func New(pools []*pool.Pool, tierMasks []uint8, input, output currency.Currency) (*Route, error) {
	if len(pools) == 0 {
		return nil, fmt.Errorf("%w: no pools", errs.ErrInvalidPath)
	}
	if input == nil || output == nil {
		return nil, fmt.Errorf("%w: missing input or output currency", errs.ErrInvalidPath)
	}

	chainID := pools[0].ChainID()
	for i, p := range pools {
		if p.ChainID() != chainID {
			return nil, fmt.Errorf("%w: pool %d on chain %d, want %d", errs.ErrInvalidPath, i, p.ChainID(), chainID)
		}
	}
	if input.ChainID() != chainID || output.ChainID() != chainID {
		return nil, fmt.Errorf("%w: currencies not on chain %d", errs.ErrInvalidPath, chainID)
	}

	if len(tierMasks) != len(pools) {
		return nil, fmt.Errorf("%w: %d masks for %d pools", errs.ErrInvalidTierMask, len(tierMasks), len(pools))
	}
	for i, mask := range tierMasks {
		if mask == 0 || int(mask) >= 1<<pools[i].TierCount() {
			return nil, fmt.Errorf("%w: mask %#b for pool %d with %d tiers", errs.ErrInvalidTierMask, mask, i, pools[i].TierCount())
		}
	}

	wrappedInput := input.Wrapped()
	wrappedOutput := output.Wrapped()
	if !pools[0].InvolvesToken(wrappedInput) {
		return nil, fmt.Errorf("%w: input %v not in first pool", errs.ErrInvalidPath, input)
	}
	if !pools[len(pools)-1].InvolvesToken(wrappedOutput) {
		return nil, fmt.Errorf("%w: output %v not in last pool", errs.ErrInvalidPath, output)
	}

	tokenPath := make([]*currency.Token, 0, len(pools)+1)
	tokenPath = append(tokenPath, wrappedInput)
	for i, p := range pools {
		next, err := p.OtherToken(tokenPath[i])
		if err != nil {
			return nil, fmt.Errorf("%w: pool %d does not continue from %v", errs.ErrInvalidPath, i, tokenPath[i])
		}
		tokenPath = append(tokenPath, next)
	}
	if !tokenPath[len(tokenPath)-1].Equals(wrappedOutput) {
		return nil, fmt.Errorf("%w: path ends at %v, want %v", errs.ErrInvalidPath, tokenPath[len(tokenPath)-1], output)
	}

	return &Route{
		pools:     append([]*pool.Pool(nil), pools...),
		tierMasks: append([]uint8(nil), tierMasks...),
		input:     input,
		output:    output,
		tokenPath: tokenPath,
	}, nil
}

func (r *Route) Input() currency.Currency  { return r.input }
func (r *Route) Output() currency.Currency { return r.output }
func (r *Route) ChainID() uint64           { return r.pools[0].ChainID() }
func (r *Route) Len() int                  { return len(r.pools) }

func (r *Route) Pools() []*pool.Pool {
	return append([]*pool.Pool(nil), r.pools...)
}

func (r *Route) TierMasks() []uint8 {
	return append([]uint8(nil), r.tierMasks...)
}

// TokenPath returns the wrapped tokens visited, input first.
func (r *Route) TokenPath() []*currency.Token {
	return append([]*currency.Token(nil), r.tokenPath...)
}

// TierSelected reports whether tier id of hop i is enabled by its mask.
func (r *Route) TierSelected(hop, tierID int) bool {
	return r.tierMasks[hop]&(1<<tierID) != 0
}

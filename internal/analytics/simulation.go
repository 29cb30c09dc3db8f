// Package analytics derives distribution, price and fee figures for a trade
// from per-hop swap simulations.
package analytics

import (
	"fmt"
	"math/big"

	"tierquote/internal/currency"
	"tierquote/internal/errs"
	"tierquote/internal/route"
)

// HopSimulation holds the simulated input amount of each tier of one hop's
// pool, indexed by tier id. Trailing untouched tiers may be omitted.
type HopSimulation struct {
	TierAmountsIn []*big.Int `json:"tierAmountsIn"`
}

// SwapSimulation holds the hops of one swap in execution order. An
// exact-output swap executes from the output end of its route.
type SwapSimulation struct {
	Hops []HopSimulation `json:"hops"`
}

// Total returns the hop's total simulated input.
func (h HopSimulation) Total() *big.Int {
	total := new(big.Int)
	for _, amt := range h.TierAmountsIn {
		if amt != nil {
			total.Add(total, amt)
		}
	}
	return total
}

// InputAmountDistribution returns each tier's share of the hop input. A hop
// with no input is split evenly. Nil or negative tier amounts are rejected.
func InputAmountDistribution(hop HopSimulation) ([]currency.Percent, error) {
	if err := checkAmounts(hop); err != nil {
		return nil, err
	}
	shares := tierShares(hop)
	out := make([]currency.Percent, len(shares))
	for i, s := range shares {
		out[i] = currency.PercentFromRat(s)
	}
	return out, nil
}

func checkAmounts(hop HopSimulation) error {
	for tierID, amt := range hop.TierAmountsIn {
		if amt == nil || amt.Sign() < 0 {
			return fmt.Errorf("%w: tier %d amount %v", errs.ErrMismatchedSimulation, tierID, amt)
		}
	}
	return nil
}

func tierShares(hop HopSimulation) []*big.Rat {
	n := len(hop.TierAmountsIn)
	shares := make([]*big.Rat, n)
	if n == 0 {
		return shares
	}
	total := hop.Total()
	for i, amt := range hop.TierAmountsIn {
		if total.Sign() == 0 {
			shares[i] = big.NewRat(1, int64(n))
			continue
		}
		shares[i] = new(big.Rat).SetFrac(amt, total)
	}
	return shares
}

// weightsOf returns each amount's share of the sum, or an even split when the
// sum is zero.
func weightsOf(amounts []*big.Int) []*big.Rat {
	return tierShares(HopSimulation{TierAmountsIn: amounts})
}

// pathOrder checks sim against the swap's route and returns its hops ordered
// from route input to route output.
func pathOrder(swap route.Swap, sim SwapSimulation, tradeType route.TradeType) ([]HopSimulation, error) {
	hops := append([]HopSimulation(nil), sim.Hops...)
	if tradeType == route.ExactOutput {
		for i, j := 0, len(hops)-1; i < j; i, j = i+1, j-1 {
			hops[i], hops[j] = hops[j], hops[i]
		}
	}
	if err := checkHops(swap.Route, hops); err != nil {
		return nil, err
	}
	return hops, nil
}

// checkHops validates hops, in path order, against the pools of r.
func checkHops(r *route.Route, hops []HopSimulation) error {
	if len(hops) != r.Len() {
		return fmt.Errorf("%w: %d hops for a route of %d pools", errs.ErrMismatchedSimulation, len(hops), r.Len())
	}
	for i, p := range r.Pools() {
		n := len(hops[i].TierAmountsIn)
		if n == 0 || n > p.TierCount() {
			return fmt.Errorf("%w: hop %d has %d tier amounts for %d tiers", errs.ErrMismatchedSimulation, i, n, p.TierCount())
		}
		if err := checkAmounts(hops[i]); err != nil {
			return fmt.Errorf("hop %d: %w", i, err)
		}
	}
	return nil
}

// alignedSimulations pairs every swap of trade with its simulation.
func alignedSimulations(trade *route.Trade, sims []SwapSimulation) ([][]HopSimulation, error) {
	swaps := trade.Swaps()
	if len(sims) != len(swaps) {
		return nil, fmt.Errorf("%w: %d simulations for %d swaps", errs.ErrMismatchedSimulation, len(sims), len(swaps))
	}
	out := make([][]HopSimulation, len(swaps))
	for i, swap := range swaps {
		hops, err := pathOrder(swap, sims[i], trade.TradeType())
		if err != nil {
			return nil, fmt.Errorf("swap %d: %w", i, err)
		}
		out[i] = hops
	}
	return out, nil
}

// swapWeights returns each swap's share of the trade input.
func swapWeights(trade *route.Trade) []*big.Rat {
	swaps := trade.Swaps()
	amounts := make([]*big.Int, len(swaps))
	for i, s := range swaps {
		amounts[i] = s.InputAmount.Raw()
	}
	return weightsOf(amounts)
}

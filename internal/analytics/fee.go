package analytics

import (
	"fmt"
	"math/big"

	"tierquote/internal/currency"
	"tierquote/internal/route"
)

// Fee is the share of the trade input taken as swap fees.
type Fee struct {
	Percent currency.Percent
	Amount  currency.Amount
}

// RealizedFee blends tier fees by simulated input share. A route keeps the
// product of its hops' blended gammas and the trade keeps the input-weighted
// average over routes. The fee amount is rounded down.
func RealizedFee(trade *route.Trade, sims []SwapSimulation) (Fee, error) {
	aligned, err := alignedSimulations(trade, sims)
	if err != nil {
		return Fee{}, err
	}
	return realizedFee(trade, aligned)
}

func realizedFee(trade *route.Trade, aligned [][]HopSimulation) (Fee, error) {
	swaps := trade.Swaps()
	kept := new(big.Rat)
	for i, w := range swapWeights(trade) {
		routeKept := big.NewRat(1, 1)
		for h, p := range swaps[i].Route.Pools() {
			hopKept := new(big.Rat)
			for tierID, share := range tierShares(aligned[i][h]) {
				tier, err := p.Tier(tierID)
				if err != nil {
					return Fee{}, fmt.Errorf("swap %d hop %d: %w", i, h, err)
				}
				hopKept.Add(hopKept, share.Mul(share, tier.Gamma()))
			}
			routeKept.Mul(routeKept, hopKept)
		}
		kept.Add(kept, routeKept.Mul(routeKept, w))
	}

	fee := new(big.Rat).Sub(big.NewRat(1, 1), kept)
	return Fee{
		Percent: currency.PercentFromRat(fee),
		Amount:  trade.InputAmount().MulRatFloor(fee),
	}, nil
}

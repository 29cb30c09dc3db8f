package analytics

import (
	"fmt"
	"math/big"

	"tierquote/internal/currency"
	"tierquote/internal/route"
)

// RouteMarginalPrice chains the volume-weighted tier spot price of each hop.
// hops must be in path order, input first.
func RouteMarginalPrice(r *route.Route, hops []HopSimulation) (currency.Price, error) {
	if err := checkHops(r, hops); err != nil {
		return currency.Price{}, err
	}
	price, err := routePrice(r, hops)
	if err != nil {
		return currency.Price{}, err
	}
	return currency.NewPrice(r.Input(), r.Output(), price.Ratio()), nil
}

// routePrice multiplies the hop prices of r along its token path.
func routePrice(r *route.Route, hops []HopSimulation) (currency.Price, error) {
	path := r.TokenPath()
	var chained currency.Price
	for i, p := range r.Pools() {
		ratio := new(big.Rat)
		for tierID, share := range tierShares(hops[i]) {
			price, err := p.PriceOf(path[i], tierID)
			if err != nil {
				return currency.Price{}, fmt.Errorf("hop %d: %w", i, err)
			}
			ratio.Add(ratio, share.Mul(share, price.Ratio()))
		}
		hopPrice := currency.NewPrice(path[i], path[i+1], ratio)
		if i == 0 {
			chained = hopPrice
			continue
		}
		var err error
		if chained, err = chained.Multiply(hopPrice); err != nil {
			return currency.Price{}, fmt.Errorf("hop %d: %w", i, err)
		}
	}
	return chained, nil
}

// MarginalPrice is the input-weighted average of each swap's route marginal
// price.
func MarginalPrice(trade *route.Trade, sims []SwapSimulation) (currency.Price, error) {
	aligned, err := alignedSimulations(trade, sims)
	if err != nil {
		return currency.Price{}, err
	}
	return marginalPrice(trade, aligned)
}

func marginalPrice(trade *route.Trade, aligned [][]HopSimulation) (currency.Price, error) {
	swaps := trade.Swaps()
	ratio := new(big.Rat)
	for i, w := range swapWeights(trade) {
		price, err := routePrice(swaps[i].Route, aligned[i])
		if err != nil {
			return currency.Price{}, fmt.Errorf("swap %d: %w", i, err)
		}
		ratio.Add(ratio, w.Mul(w, price.Ratio()))
	}
	return currency.NewPrice(trade.InputAmount().Currency(), trade.OutputAmount().Currency(), ratio), nil
}

// PriceImpact is the shortfall of the actual output against the output the
// marginal price would give for the same input.
func PriceImpact(trade *route.Trade, sims []SwapSimulation) (currency.Percent, error) {
	mid, err := MarginalPrice(trade, sims)
	if err != nil {
		return currency.Percent{}, err
	}
	return priceImpact(trade, mid), nil
}

func priceImpact(trade *route.Trade, mid currency.Price) currency.Percent {
	quoted := new(big.Rat).Mul(mid.Ratio(), trade.InputAmount().Rat())
	if quoted.Sign() == 0 {
		return currency.NewPercent(0, 1)
	}
	shortfall := new(big.Rat).Sub(quoted, trade.OutputAmount().Rat())
	return currency.PercentFromRat(shortfall.Quo(shortfall, quoted))
}

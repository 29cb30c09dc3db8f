package analytics

import (
	"fmt"

	"tierquote/internal/currency"
	"tierquote/internal/route"
)

// Report bundles the analytics of one trade. Distributions is indexed by
// swap, then hop in path order, then tier id.
type Report struct {
	Distributions [][][]currency.Percent
	MarginalPrice currency.Price
	PriceImpact   currency.Percent
	Fee           Fee
}

// Analyze validates sims once and derives every figure of the report.
func Analyze(trade *route.Trade, sims []SwapSimulation) (Report, error) {
	aligned, err := alignedSimulations(trade, sims)
	if err != nil {
		return Report{}, err
	}

	mid, err := marginalPrice(trade, aligned)
	if err != nil {
		return Report{}, err
	}
	fee, err := realizedFee(trade, aligned)
	if err != nil {
		return Report{}, err
	}

	dists := make([][][]currency.Percent, len(aligned))
	for i, hops := range aligned {
		dists[i] = make([][]currency.Percent, len(hops))
		for h, hop := range hops {
			if dists[i][h], err = InputAmountDistribution(hop); err != nil {
				return Report{}, fmt.Errorf("swap %d hop %d: %w", i, h, err)
			}
		}
	}

	return Report{
		Distributions: dists,
		MarginalPrice: mid,
		PriceImpact:   priceImpact(trade, mid),
		Fee:           fee,
	}, nil
}

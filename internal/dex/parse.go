package dex

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// Pair is an unordered token pair.
type Pair struct {
	TokenA common.Address
	TokenB common.Address
}

// ParseAddress converts a hex string into common.Address.
func ParseAddress(input string) (common.Address, error) {
	input = strings.TrimSpace(input)
	if !common.IsHexAddress(input) {
		return common.Address{}, fmt.Errorf("invalid address: %s", input)
	}
	return common.HexToAddress(input), nil
}

// ParsePairs reads entries of the form "0xTokenA:0xTokenB". Blank entries are
// skipped.
func ParsePairs(inputs []string) ([]Pair, error) {
	pairs := make([]Pair, 0, len(inputs))
	for _, input := range inputs {
		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		parts := strings.Split(input, ":")
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid pair: %s", input)
		}
		a, err := ParseAddress(parts[0])
		if err != nil {
			return nil, fmt.Errorf("pair %s: %w", input, err)
		}
		b, err := ParseAddress(parts[1])
		if err != nil {
			return nil, fmt.Errorf("pair %s: %w", input, err)
		}
		if a == b {
			return nil, fmt.Errorf("invalid pair: %s uses one token twice", input)
		}
		pairs = append(pairs, Pair{TokenA: a, TokenB: b})
	}
	return pairs, nil
}

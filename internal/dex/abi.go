package dex

import (
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

const hubABIJSON = `[
  {
    "inputs": [{"internalType": "bytes32", "name": "poolId", "type": "bytes32"}],
    "name": "getAllTiers",
    "outputs": [
      {
        "components": [
          {"internalType": "uint128", "name": "liquidity", "type": "uint128"},
          {"internalType": "uint128", "name": "sqrtPrice", "type": "uint128"},
          {"internalType": "uint24", "name": "sqrtGamma", "type": "uint24"},
          {"internalType": "int24", "name": "tick", "type": "int24"},
          {"internalType": "int24", "name": "nextTickBelow", "type": "int24"},
          {"internalType": "int24", "name": "nextTickAbove", "type": "int24"},
          {"internalType": "uint80", "name": "feeGrowthGlobal0", "type": "uint80"},
          {"internalType": "uint80", "name": "feeGrowthGlobal1", "type": "uint80"}
        ],
        "internalType": "struct Tiers.Tier[]",
        "name": "tiers",
        "type": "tuple[]"
      }
    ],
    "stateMutability": "view",
    "type": "function"
  },
  {
    "inputs": [{"internalType": "bytes32", "name": "poolId", "type": "bytes32"}],
    "name": "getPoolParameters",
    "outputs": [
      {"internalType": "uint8", "name": "tickSpacing", "type": "uint8"},
      {"internalType": "uint8", "name": "protocolFee", "type": "uint8"}
    ],
    "stateMutability": "view",
    "type": "function"
  }
]`

// lazyABI parses its JSON on first use.
type lazyABI struct {
	json   string
	once   sync.Once
	parsed abi.ABI
	err    error
}

func (l *lazyABI) get() (abi.ABI, error) {
	l.once.Do(func() {
		l.parsed, l.err = abi.JSON(strings.NewReader(l.json))
	})
	return l.parsed, l.err
}

var hubABI = &lazyABI{json: hubABIJSON}

// HubABI returns the parsed ABI of the hub view methods read by snapshots.
func HubABI() (abi.ABI, error) {
	return hubABI.get()
}

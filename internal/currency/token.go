// Package currency holds the value types quoted by the engine: tokens, native
// currencies, amounts, prices and percentages. Arithmetic is exact over
// big.Int and big.Rat; decimal conversion happens only at the boundary.
package currency

import (
	"bytes"
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"tierquote/internal/errs"
)

// Currency is either an ERC20 token or a chain's native currency.
type Currency interface {
	ChainID() uint64
	Decimals() uint8
	Symbol() string
	Name() string
	IsNative() bool
	// Wrapped returns the token used in pools for this currency.
	Wrapped() *Token
	Equals(other Currency) bool
}

// Token is an ERC20 token identified by chain id and address.
type Token struct {
	chainID  uint64
	address  common.Address
	decimals uint8
	symbol   string
	name     string
}

func NewToken(chainID uint64, address common.Address, decimals uint8, symbol, name string) *Token {
	return &Token{
		chainID:  chainID,
		address:  address,
		decimals: decimals,
		symbol:   symbol,
		name:     name,
	}
}

func (t *Token) ChainID() uint64         { return t.chainID }
func (t *Token) Address() common.Address { return t.address }
func (t *Token) Decimals() uint8         { return t.decimals }
func (t *Token) Symbol() string          { return t.symbol }
func (t *Token) IsNative() bool          { return false }
func (t *Token) Wrapped() *Token         { return t }

func (t *Token) Name() string {
	if t.name == "" {
		return t.symbol
	}
	return t.name
}

// Equals reports whether other is the same token on the same chain.
func (t *Token) Equals(other Currency) bool {
	o, ok := other.(*Token)
	if !ok || o == nil {
		return false
	}
	return t.chainID == o.chainID && t.address == o.address
}

// SortsBefore reports whether t orders before other by address, as pools
// order token0 and token1.
func (t *Token) SortsBefore(other *Token) (bool, error) {
	if t.chainID != other.chainID {
		return false, fmt.Errorf("%w: chain %d vs %d", errs.ErrInvalidToken, t.chainID, other.chainID)
	}
	cmp := bytes.Compare(t.address.Bytes(), other.address.Bytes())
	if cmp == 0 {
		return false, fmt.Errorf("%w: identical addresses %s", errs.ErrInvalidToken, t.address.Hex())
	}
	return cmp < 0, nil
}

func (t *Token) String() string {
	if t.symbol != "" {
		return t.symbol
	}
	return t.address.Hex()
}

// Native is a chain's native currency, traded in pools through its wrapped
// token.
type Native struct {
	wrapped  *Token
	decimals uint8
	symbol   string
	name     string
}

func NewNative(wrapped *Token, symbol, name string) *Native {
	return &Native{
		wrapped:  wrapped,
		decimals: wrapped.Decimals(),
		symbol:   symbol,
		name:     name,
	}
}

func (n *Native) ChainID() uint64 { return n.wrapped.ChainID() }
func (n *Native) Decimals() uint8 { return n.decimals }
func (n *Native) Symbol() string  { return n.symbol }
func (n *Native) Name() string    { return n.name }
func (n *Native) IsNative() bool  { return true }
func (n *Native) Wrapped() *Token { return n.wrapped }
func (n *Native) String() string  { return n.symbol }

// Equals reports whether other is the native currency of the same chain
// wrapping the same token. It is never equal to a Token, not even its own
// wrapped token.
func (n *Native) Equals(other Currency) bool {
	o, ok := other.(*Native)
	if !ok || o == nil {
		return false
	}
	return n.ChainID() == o.ChainID() && n.wrapped.Equals(o.wrapped)
}

// SortTokens returns a and b ordered by address.
func SortTokens(a, b *Token) (*Token, *Token, error) {
	before, err := a.SortsBefore(b)
	if err != nil {
		return nil, nil, err
	}
	if before {
		return a, b, nil
	}
	return b, a, nil
}

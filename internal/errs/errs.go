// Package errs holds the error kinds shared by the quoting engine.
package errs

import "errors"

var (
	ErrInvalidTick            = errors.New("invalid tick")
	ErrInvalidSqrtPrice       = errors.New("invalid sqrt price")
	ErrInvalidTickRange       = errors.New("invalid tick range")
	ErrInvalidTier            = errors.New("invalid tier")
	ErrInvalidLiquidity       = errors.New("invalid liquidity")
	ErrInvalidToken           = errors.New("invalid token")
	ErrInvalidLimitOrderState = errors.New("invalid limit order state")
	ErrInvalidPath            = errors.New("invalid path")
	ErrInvalidTierMask        = errors.New("invalid tier mask")
	ErrDuplicatedPools        = errors.New("duplicated pools")
	ErrMismatchedCurrencies   = errors.New("mismatched currencies")
	ErrInvalidSlippage        = errors.New("invalid slippage")
	ErrMismatchedSimulation   = errors.New("mismatched simulation")
	ErrInvalidTradeType       = errors.New("invalid trade type")
)

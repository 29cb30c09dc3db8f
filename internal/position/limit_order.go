package position

import (
	"fmt"

	"tierquote/internal/errs"
)

// LimitOrder is the limit-order state of a position. A settled order always
// carries its direction.
type LimitOrder uint8

const (
	NotLimitOrder LimitOrder = iota
	PendingZeroForOne
	PendingOneForZero
	SettledZeroForOne
	SettledOneForZero
)

// On-chain limit order type values.
const (
	KindNone       uint8 = 0
	KindZeroForOne uint8 = 1
	KindOneForZero uint8 = 2
)

// LimitOrderFromFlags maps the on-chain (type, settled) pair to a LimitOrder.
func LimitOrderFromFlags(kind uint8, settled bool) (LimitOrder, error) {
	switch {
	case kind == KindNone && settled:
		return 0, fmt.Errorf("%w: settled without direction", errs.ErrInvalidLimitOrderState)
	case kind == KindNone:
		return NotLimitOrder, nil
	case kind == KindZeroForOne && settled:
		return SettledZeroForOne, nil
	case kind == KindZeroForOne:
		return PendingZeroForOne, nil
	case kind == KindOneForZero && settled:
		return SettledOneForZero, nil
	case kind == KindOneForZero:
		return PendingOneForZero, nil
	default:
		return 0, fmt.Errorf("%w: limit order type %d", errs.ErrInvalidLimitOrderState, kind)
	}
}

func (l LimitOrder) valid() bool {
	return l <= SettledOneForZero
}

// IsLimitOrder reports whether a direction is set.
func (l LimitOrder) IsLimitOrder() bool {
	return l != NotLimitOrder
}

func (l LimitOrder) IsSettled() bool {
	return l == SettledZeroForOne || l == SettledOneForZero
}

// ZeroForOne reports whether the order sells token0 for token1.
func (l LimitOrder) ZeroForOne() bool {
	return l == PendingZeroForOne || l == SettledZeroForOne
}

// Kind returns the on-chain limit order type value.
func (l LimitOrder) Kind() uint8 {
	switch l {
	case PendingZeroForOne, SettledZeroForOne:
		return KindZeroForOne
	case PendingOneForZero, SettledOneForZero:
		return KindOneForZero
	default:
		return KindNone
	}
}

func (l LimitOrder) String() string {
	switch l {
	case NotLimitOrder:
		return "none"
	case PendingZeroForOne:
		return "pending_zero_for_one"
	case PendingOneForZero:
		return "pending_one_for_zero"
	case SettledZeroForOne:
		return "settled_zero_for_one"
	case SettledOneForZero:
		return "settled_one_for_zero"
	default:
		return fmt.Sprintf("limit_order(%d)", uint8(l))
	}
}

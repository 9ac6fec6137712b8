package entities

import "errors"

var (
	// ErrInvalidOrderShape covers every structural rule the validator enforces.
	ErrInvalidOrderShape = errors.New("invalid order shape")

	// ErrIllegalTransition is returned when an order is asked to leave a terminal status.
	ErrIllegalTransition = errors.New("illegal order status transition")

	ErrOrderNotFound       = errors.New("order not found")
	ErrInsufficientBalance = errors.New("token amount exceeds tradable balance")
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
	ErrZeroPriceRejected   = errors.New("no gold price available for today")
	ErrHoldingsNotFound    = errors.New("holdings not found")
)

package pool

import "errors"

var (
	// ErrZeroLiquidity is returned while the pool holds no assets;
	// ratio-dependent reads and writes are undefined until the first deposit.
	ErrZeroLiquidity = errors.New("pool has zero liquidity")
	// ErrZeroAmount is returned when a requested amount is exactly zero.
	ErrZeroAmount = errors.New("amount cannot be zero")
	// ErrInsufficientAmount is returned when a requested amount exceeds the
	// caller's available balance of that asset or share.
	ErrInsufficientAmount = errors.New("insufficient amount")
	// ErrNonEquivalentValue is returned when a deposit does not match the
	// current pool ratio exactly.
	ErrNonEquivalentValue = errors.New("equivalent value of tokens not provided")
	// ErrThresholdNotReached is returned when a deposit is too small to round
	// to at least one share unit.
	ErrThresholdNotReached = errors.New("asset value less than threshold for contribution")
	// ErrInvalidShare is returned when a withdrawal share amount exceeds the
	// total issued shares.
	ErrInvalidShare = errors.New("share should be less than total shares")
	// ErrInsufficientLiquidity is reserved for swap-style operations; nothing
	// in the current operation set returns it.
	ErrInsufficientLiquidity = errors.New("insufficient pool balance")
	// ErrSlippageExceeded is reserved for swap-style operations; nothing in
	// the current operation set returns it.
	ErrSlippageExceeded = errors.New("slippage tolerance exceeded")
)

// Package calculator implements the pure constant-product arithmetic over
// pool snapshots: the liquidity invariant K, the pool activity gate, and the
// deposit/withdrawal estimates derived from current pool ratios. Every
// function is a read with no side effects; repeated calls against an
// unchanged view return identical results.
package calculator

import (
	"errors"
	"math/big"
	"sync"

	"github.com/liquidstate/liquidstate-engine-go/pool"
)

var (
	// ErrNilAmount is returned when a nil pointer is passed as an amount.
	ErrNilAmount = errors.New("nil pointer passed as amount")
	// ErrNegativeAmount is returned when a negative amount is supplied;
	// every quantity in the pool is unsigned.
	ErrNegativeAmount = errors.New("amount must be non-negative")
)

// Calculator holds reusable big.Int objects to avoid memory allocations for
// intermediate products. Instances are NOT safe for concurrent use by
// themselves; they are managed by the pool below.
type Calculator struct {
	numerator *big.Int
	product   *big.Int
}

var calculatorPool = sync.Pool{
	New: func() any {
		return &Calculator{
			numerator: new(big.Int),
			product:   new(big.Int),
		}
	},
}

// K returns the liquidity constant of the pool: totalToken1 * totalToken2.
// big.Int arithmetic makes the product exact at any balance magnitude.
func K(v pool.View) *big.Int {
	return new(big.Int).Mul(v.TotalToken1, v.TotalToken2)
}

// Active fails with ErrZeroLiquidity while K is zero, which is exactly the
// fully-empty pool state. It gates every ratio-dependent computation.
func Active(v pool.View) error {
	calc := calculatorPool.Get().(*Calculator)
	defer calculatorPool.Put(calc)

	if calc.product.Mul(v.TotalToken1, v.TotalToken2).Sign() == 0 {
		return pool.ErrZeroLiquidity
	}
	return nil
}

// EquivalentToken1 returns the amount of token1 required when providing
// liquidity together with amountToken2 of token2, at the current pool ratio:
// totalToken1 * amountToken2 / totalToken2, floor division.
func EquivalentToken1(v pool.View, amountToken2 *big.Int) (*big.Int, error) {
	if err := checkAmount(amountToken2); err != nil {
		return nil, err
	}
	if err := Active(v); err != nil {
		return nil, err
	}

	calc := calculatorPool.Get().(*Calculator)
	defer calculatorPool.Put(calc)

	calc.numerator.Mul(v.TotalToken1, amountToken2)
	return new(big.Int).Div(calc.numerator, v.TotalToken2), nil
}

// EquivalentToken2 returns the amount of token2 required when providing
// liquidity together with amountToken1 of token1, at the current pool ratio:
// totalToken2 * amountToken1 / totalToken1, floor division.
func EquivalentToken2(v pool.View, amountToken1 *big.Int) (*big.Int, error) {
	if err := checkAmount(amountToken1); err != nil {
		return nil, err
	}
	if err := Active(v); err != nil {
		return nil, err
	}

	calc := calculatorPool.Get().(*Calculator)
	defer calculatorPool.Put(calc)

	calc.numerator.Mul(v.TotalToken2, amountToken1)
	return new(big.Int).Div(calc.numerator, v.TotalToken1), nil
}

// WithdrawAmounts returns the token1 and token2 quantities released when
// burning the given share amount: share * total / totalShares for each side,
// floor division. It fails with ErrInvalidShare when share exceeds the total
// issued shares.
func WithdrawAmounts(v pool.View, share *big.Int) (*big.Int, *big.Int, error) {
	if err := checkAmount(share); err != nil {
		return nil, nil, err
	}
	if err := Active(v); err != nil {
		return nil, nil, err
	}
	if share.Cmp(v.TotalShares) > 0 {
		return nil, nil, pool.ErrInvalidShare
	}

	calc := calculatorPool.Get().(*Calculator)
	defer calculatorPool.Put(calc)

	calc.numerator.Mul(share, v.TotalToken1)
	amountToken1 := new(big.Int).Div(calc.numerator, v.TotalShares)

	calc.numerator.Mul(share, v.TotalToken2)
	amountToken2 := new(big.Int).Div(calc.numerator, v.TotalShares)

	return amountToken1, amountToken2, nil
}

func checkAmount(amount *big.Int) error {
	if amount == nil {
		return ErrNilAmount
	}
	if amount.Sign() < 0 {
		return ErrNegativeAmount
	}
	return nil
}

// Package pool holds the constant-product AMM pool aggregate: the snapshot
// types shared across the module, the error taxonomy, and the per-account
// asset ledger. The ratio math lives in pool/calculator and the orchestration
// of deposits and withdrawals in pool/manager.
package pool

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Precision is the fixed scaling constant for share amounts: shares carry six
// implied fractional digits using only integer arithmetic.
var Precision = big.NewInt(1_000_000)

// GenesisShares is the flat share amount minted for the first deposit into an
// empty pool. The first deposit fixes the pool's token1:token2 price ratio,
// but the share count awarded is this constant, not a function of the
// deposited quantities.
var GenesisShares = new(big.Int).Mul(big.NewInt(100), Precision)

// MaxFeeBps bounds the stored trading fee parameter. Values at or above it
// are clamped to zero at construction.
const MaxFeeBps = 1000

// Schema identifiers for the view payloads carried in state streams.
const (
	PoolViewSchema = "liquidstate/amm-pool/poolView@v1"
	HoldingsSchema = "liquidstate/amm-pool/holdingsView@v1"
)

// View is a point-in-time snapshot of the pool aggregate.
type View struct {
	TotalToken1 *big.Int `json:"totalToken1"`
	TotalToken2 *big.Int `json:"totalToken2"`
	TotalShares *big.Int `json:"totalShares"`
	FeeBps      uint64   `json:"feeBps"`
}

// DeepCopy creates a new View with its own memory for the big.Int fields.
// This is essential to prevent a snapshot from sharing memory with the live
// aggregate.
func (v View) DeepCopy() View {
	out := v
	if v.TotalToken1 != nil {
		out.TotalToken1 = new(big.Int).Set(v.TotalToken1)
	}
	if v.TotalToken2 != nil {
		out.TotalToken2 = new(big.Int).Set(v.TotalToken2)
	}
	if v.TotalShares != nil {
		out.TotalShares = new(big.Int).Set(v.TotalShares)
	}
	return out
}

// AccountHoldings is one provider's off-pool token balances and share
// holding.
type AccountHoldings struct {
	Account common.Address `json:"account"`
	Token1  *big.Int       `json:"token1"`
	Token2  *big.Int       `json:"token2"`
	Shares  *big.Int       `json:"shares"`
}

// DeepCopy creates a new AccountHoldings with its own memory for the big.Int
// fields.
func (h AccountHoldings) DeepCopy() AccountHoldings {
	out := h
	if h.Token1 != nil {
		out.Token1 = new(big.Int).Set(h.Token1)
	}
	if h.Token2 != nil {
		out.Token2 = new(big.Int).Set(h.Token2)
	}
	if h.Shares != nil {
		out.Shares = new(big.Int).Set(h.Shares)
	}
	return out
}

// Equal reports whether two holdings carry the same balances for the same
// account. A manual field check is significantly faster than
// reflect.DeepEqual on big.Int values.
func (h AccountHoldings) Equal(other AccountHoldings) bool {
	return h.Account == other.Account &&
		h.Token1.Cmp(other.Token1) == 0 &&
		h.Token2.Cmp(other.Token2) == 0 &&
		h.Shares.Cmp(other.Shares) == 0
}

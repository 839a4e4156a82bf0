package pool

import (
	"bytes"
	"math/big"
	"sort"

	"github.com/ethereum/go-ethereum/common"
)

// Asset identifies one of the balance kinds the ledger tracks per account.
type Asset uint8

const (
	AssetToken1 Asset = iota
	AssetToken2
	AssetShare
)

// Ledger stores per-account balances for each asset kind, keyed by the
// opaque caller identity. Accounts come into existence implicitly on first
// reference; an account that was never seen is indistinguishable from one
// holding a zero balance. The Ledger is not safe for concurrent use; the
// surrounding execution environment serializes all calls.
type Ledger struct {
	balances map[Asset]map[common.Address]*big.Int
}

// NewLedger creates an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{
		balances: map[Asset]map[common.Address]*big.Int{
			AssetToken1: {},
			AssetToken2: {},
			AssetShare:  {},
		},
	}
}

// BalanceOf returns the account's balance of the given asset, zero if the
// account has never been seen. The returned value is owned by the caller and
// never aliases ledger memory.
func (l *Ledger) BalanceOf(owner common.Address, asset Asset) *big.Int {
	if bal, ok := l.balances[asset][owner]; ok {
		return new(big.Int).Set(bal)
	}
	return new(big.Int)
}

// Credit adds amount to the account's balance of the given asset, creating
// the account if absent.
func (l *Ledger) Credit(owner common.Address, asset Asset, amount *big.Int) {
	m := l.balances[asset]
	if bal, ok := m[owner]; ok {
		bal.Add(bal, amount)
		return
	}
	m[owner] = new(big.Int).Set(amount)
}

// Debit subtracts amount from the account's balance of the given asset. It
// fails with ErrInsufficientAmount before any mutation when the balance is
// too small; balances never wrap below zero.
func (l *Ledger) Debit(owner common.Address, asset Asset, amount *big.Int) error {
	bal, ok := l.balances[asset][owner]
	if !ok || bal.Cmp(amount) < 0 {
		return ErrInsufficientAmount
	}
	bal.Sub(bal, amount)
	return nil
}

// Accounts returns every account the ledger has seen across all assets, in a
// deterministic order so snapshots built from it are stable.
func (l *Ledger) Accounts() []common.Address {
	seen := make(map[common.Address]struct{})
	for _, m := range l.balances {
		for owner := range m {
			seen[owner] = struct{}{}
		}
	}

	accounts := make([]common.Address, 0, len(seen))
	for owner := range seen {
		accounts = append(accounts, owner)
	}
	sort.Slice(accounts, func(i, j int) bool {
		return bytes.Compare(accounts[i][:], accounts[j][:]) < 0
	})
	return accounts
}

package indexer

import (
	"github.com/ethereum/go-ethereum/common"

	"github.com/liquidstate/liquidstate-engine-go/pool"
)

// Indexer builds indexed views over raw holdings snapshots.
type Indexer struct{}

// New creates a new Indexer.
func New() *Indexer {
	return &Indexer{}
}

// Index creates an indexed holdings view from a raw snapshot slice.
func (i *Indexer) Index(holdings []pool.AccountHoldings) IndexedHoldings {
	return NewIndexableHoldings(holdings)
}

// IndexableHoldings provides fast, indexed access to a holdings snapshot.
type IndexableHoldings struct {
	byAccount map[common.Address]pool.AccountHoldings
	all       []pool.AccountHoldings
}

// NewIndexableHoldings creates a new indexed holdings view.
func NewIndexableHoldings(holdings []pool.AccountHoldings) *IndexableHoldings {
	byAccount := make(map[common.Address]pool.AccountHoldings, len(holdings))
	for _, h := range holdings {
		byAccount[h.Account] = h
	}

	return &IndexableHoldings{
		byAccount: byAccount,
		all:       holdings,
	}
}

// GetByAccount retrieves one account's holdings.
func (ih *IndexableHoldings) GetByAccount(account common.Address) (pool.AccountHoldings, bool) {
	h, ok := ih.byAccount[account]
	return h, ok
}

// All returns a defensive copy of the slice of all holdings.
func (ih *IndexableHoldings) All() []pool.AccountHoldings {
	allCopy := make([]pool.AccountHoldings, len(ih.all))
	copy(allCopy, ih.all)
	return allCopy
}

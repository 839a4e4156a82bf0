package indexer

import (
	"github.com/ethereum/go-ethereum/common"

	"github.com/liquidstate/liquidstate-engine-go/pool"
)

// IndexedHoldings defines the methods for accessing an indexed holdings
// snapshot.
type IndexedHoldings interface {
	GetByAccount(account common.Address) (pool.AccountHoldings, bool)
	All() []pool.AccountHoldings
}

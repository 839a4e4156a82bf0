package indexer

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/liquidstate/liquidstate-engine-go/pool"
)

func TestIndexableHoldings(t *testing.T) {
	alice := common.HexToAddress("0x00000000000000000000000000000000000000a1")
	bob := common.HexToAddress("0x00000000000000000000000000000000000000b1")
	carol := common.HexToAddress("0x00000000000000000000000000000000000000c1")

	holdings := []pool.AccountHoldings{
		{Account: alice, Token1: big.NewInt(1000), Token2: big.NewInt(500), Shares: big.NewInt(100)},
		{Account: bob, Token1: big.NewInt(10), Token2: big.NewInt(5), Shares: big.NewInt(0)},
	}

	indexed := New().Index(holdings)

	t.Run("lookup by account", func(t *testing.T) {
		got, ok := indexed.GetByAccount(alice)
		require.True(t, ok)
		assert.Equal(t, int64(1000), got.Token1.Int64())
		assert.Equal(t, int64(100), got.Shares.Int64())
	})

	t.Run("missing account", func(t *testing.T) {
		_, ok := indexed.GetByAccount(carol)
		assert.False(t, ok)
	})

	t.Run("All returns every entry", func(t *testing.T) {
		assert.Len(t, indexed.All(), 2)
	})

	t.Run("All returns a defensive copy", func(t *testing.T) {
		all := indexed.All()
		all[0] = pool.AccountHoldings{Account: carol}

		again := indexed.All()
		require.Len(t, again, 2)
		assert.NotEqual(t, carol, again[0].Account)
	})
}

package server

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/liquidstate/liquidstate-engine-go/engine"
	"github.com/liquidstate/liquidstate-engine-go/pool/manager"
	"github.com/liquidstate/liquidstate-engine-go/streams/jsonrpc/stateops"
)

var (
	alice = common.HexToAddress("0x00000000000000000000000000000000000000a1")
	bob   = common.HexToAddress("0x00000000000000000000000000000000000000b1")
)

func amount(v int64) *hexutil.Big {
	return (*hexutil.Big)(big.NewInt(v))
}

// setupService wires a full in-process stack: manager, state ops, pool
// service and an rpc client talking to it.
func setupService(t *testing.T) *rpc.Client {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	ops, err := stateops.NewStateOps(logger, prometheus.NewRegistry())
	require.NoError(t, err)

	mgr, err := manager.New(&manager.Config{FeeBps: 0, Logger: logger})
	require.NoError(t, err)

	service, err := NewPoolService(&Config{
		PoolID:  1,
		Manager: mgr,
		Ops:     ops,
		Logger:  logger,
	})
	require.NoError(t, err)

	rpcServer := rpc.NewServer()
	require.NoError(t, service.Register(rpcServer))
	t.Cleanup(rpcServer.Stop)

	client := rpc.DialInProc(rpcServer)
	t.Cleanup(client.Close)
	return client
}

func TestPoolService_Lifecycle(t *testing.T) {
	client := setupService(t)
	ctx := context.Background()

	t.Run("faucet returns the updated holdings", func(t *testing.T) {
		var holdings HoldingsResult
		err := client.CallContext(ctx, &holdings, "amm_faucet", alice, amount(1000), amount(500))
		require.NoError(t, err)
		assert.Equal(t, alice, holdings.Account)
		assert.Equal(t, int64(1000), holdings.Token1.ToInt().Int64())
		assert.Equal(t, int64(500), holdings.Token2.ToInt().Int64())
		assert.Zero(t, holdings.Shares.ToInt().Sign())
	})

	t.Run("provide mints the genesis share amount", func(t *testing.T) {
		var share hexutil.Big
		err := client.CallContext(ctx, &share, "amm_provide", alice, amount(1000), amount(500))
		require.NoError(t, err)
		assert.Equal(t, int64(100_000_000), share.ToInt().Int64())
	})

	t.Run("poolDetails reflects the deposit", func(t *testing.T) {
		var details PoolDetailsResult
		err := client.CallContext(ctx, &details, "amm_poolDetails")
		require.NoError(t, err)
		assert.Equal(t, int64(1000), details.TotalToken1.ToInt().Int64())
		assert.Equal(t, int64(500), details.TotalToken2.ToInt().Int64())
		assert.Equal(t, int64(100_000_000), details.TotalShares.ToInt().Int64())
		assert.Equal(t, uint64(0), details.FeeBps)
	})

	t.Run("estimates follow the pool ratio", func(t *testing.T) {
		var token1 hexutil.Big
		err := client.CallContext(ctx, &token1, "amm_equivalentToken1Estimate", amount(50))
		require.NoError(t, err)
		assert.Equal(t, int64(100), token1.ToInt().Int64())

		var token2 hexutil.Big
		err = client.CallContext(ctx, &token2, "amm_equivalentToken2Estimate", amount(100))
		require.NoError(t, err)
		assert.Equal(t, int64(50), token2.ToInt().Int64())

		var estimate WithdrawResult
		err = client.CallContext(ctx, &estimate, "amm_withdrawEstimate", amount(50_000_000))
		require.NoError(t, err)
		assert.Equal(t, int64(500), estimate.AmountToken1.ToInt().Int64())
		assert.Equal(t, int64(250), estimate.AmountToken2.ToInt().Int64())
	})

	t.Run("withdraw releases proportional amounts", func(t *testing.T) {
		var result WithdrawResult
		err := client.CallContext(ctx, &result, "amm_withdraw", alice, amount(25_000_000))
		require.NoError(t, err)
		assert.Equal(t, int64(250), result.AmountToken1.ToInt().Int64())
		assert.Equal(t, int64(125), result.AmountToken2.ToInt().Int64())

		var holdings HoldingsResult
		err = client.CallContext(ctx, &holdings, "amm_holdings", alice)
		require.NoError(t, err)
		assert.Equal(t, int64(250), holdings.Token1.ToInt().Int64())
		assert.Equal(t, int64(75_000_000), holdings.Shares.ToInt().Int64())
	})
}

func TestPoolService_Errors(t *testing.T) {
	client := setupService(t)
	ctx := context.Background()

	t.Run("provide without funds", func(t *testing.T) {
		var share hexutil.Big
		err := client.CallContext(ctx, &share, "amm_provide", bob, amount(100), amount(100))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "insufficient")
	})

	t.Run("estimate against an empty pool", func(t *testing.T) {
		var token1 hexutil.Big
		err := client.CallContext(ctx, &token1, "amm_equivalentToken1Estimate", amount(50))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "zero liquidity")
	})

	t.Run("withdraw without shares", func(t *testing.T) {
		var result WithdrawResult
		err := client.CallContext(ctx, &result, "amm_withdraw", bob, amount(1))
		require.Error(t, err)
	})

	t.Run("failed calls advance nothing", func(t *testing.T) {
		var details PoolDetailsResult
		err := client.CallContext(ctx, &details, "amm_poolDetails")
		require.NoError(t, err)
		assert.Zero(t, details.TotalShares.ToInt().Sign())
	})
}

func TestPoolService_StateStream(t *testing.T) {
	client := setupService(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	events := make(chan SubscriptionEvent, 16)
	sub, err := client.Subscribe(ctx, RpcNamespace, events, "subscribeStateStream")
	require.NoError(t, err)
	defer sub.Unsubscribe()

	nextEvent := func() SubscriptionEvent {
		select {
		case ev := <-events:
			return ev
		case err := <-sub.Err():
			t.Fatalf("subscription failed: %v", err)
		case <-ctx.Done():
			t.Fatal("timed out waiting for stream event")
		}
		return SubscriptionEvent{}
	}

	// The stream opens with a full snapshot of the genesis state.
	full := nextEvent()
	require.Equal(t, "full", full.Type)

	var state engine.State
	require.NoError(t, json.Unmarshal(full.Payload, &state))
	assert.Equal(t, uint64(1), state.PoolID)
	assert.Equal(t, uint64(0), state.Op.Sequence)
	assert.Equal(t, "init", state.Op.Kind)
	assert.Len(t, state.Views, 2)

	// Each committed mutation produces one diff event.
	var holdings HoldingsResult
	require.NoError(t, client.CallContext(ctx, &holdings, "amm_faucet", alice, amount(100), amount(100)))

	diff := nextEvent()
	require.Equal(t, "diff", diff.Type)

	var decoded struct {
		FromSequence uint64           `json:"fromSequence"`
		ToOp         engine.OpSummary `json:"toOp"`
	}
	require.NoError(t, json.Unmarshal(diff.Payload, &decoded))
	assert.Equal(t, uint64(0), decoded.FromSequence)
	assert.Equal(t, uint64(1), decoded.ToOp.Sequence)
	assert.Equal(t, "faucet", decoded.ToOp.Kind)
	assert.Equal(t, alice, decoded.ToOp.Caller)

	var share hexutil.Big
	require.NoError(t, client.CallContext(ctx, &share, "amm_provide", alice, amount(100), amount(100)))

	diff2 := nextEvent()
	require.Equal(t, "diff", diff2.Type)
	require.NoError(t, json.Unmarshal(diff2.Payload, &decoded))
	assert.Equal(t, uint64(1), decoded.FromSequence)
	assert.Equal(t, "provide", decoded.ToOp.Kind)

	// Reads never produce stream events.
	var details PoolDetailsResult
	require.NoError(t, client.CallContext(ctx, &details, "amm_poolDetails"))
	select {
	case ev := <-events:
		t.Fatalf("unexpected event after a read: %s", ev.Type)
	case <-time.After(100 * time.Millisecond):
	}
}

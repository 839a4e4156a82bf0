// Package server exposes the pool operations over JSON-RPC and streams the
// resulting state transitions to subscribers. It is the execution
// environment the engine assumes: one mutex serializes every call, caller
// identity arrives as a request field, and all encoding concerns live here
// rather than in the core.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"

	"github.com/liquidstate/liquidstate-engine-go/engine"
	"github.com/liquidstate/liquidstate-engine-go/pool"
	"github.com/liquidstate/liquidstate-engine-go/pool/manager"
	"github.com/liquidstate/liquidstate-engine-go/streams/jsonrpc/stateops"
)

// RpcNamespace is the namespace under which the pool service is registered.
const RpcNamespace = "amm"

const defaultSubscriberBuffer = 100

// Config holds the construction parameters for a PoolService.
type Config struct {
	PoolID  uint64
	Manager *manager.Manager
	Ops     *stateops.StateOps
	Logger  Logger
	// SubscriberBuffer bounds each subscriber's event queue; slow consumers
	// drop events rather than stall the serialized operation path.
	SubscriberBuffer uint
}

func (c *Config) validate() error {
	if c.Manager == nil {
		return errors.New("config: Manager cannot be nil")
	}
	if c.Ops == nil {
		return errors.New("config: Ops cannot be nil")
	}
	if c.Logger == nil {
		return errors.New("config: Logger cannot be nil")
	}
	return nil
}

// PoolService serializes every pool operation behind one mutex and
// broadcasts a state event after each committed mutation.
type PoolService struct {
	mu sync.Mutex

	poolID  uint64
	manager *manager.Manager
	ops     *stateops.StateOps
	logger  Logger
	buffer  uint

	sequence    uint64
	lastState   *engine.State
	subscribers map[rpc.ID]chan *SubscriptionEvent
}

// NewPoolService builds the service and its genesis state snapshot.
func NewPoolService(cfg *Config) (*PoolService, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	buffer := cfg.SubscriberBuffer
	if buffer == 0 {
		buffer = defaultSubscriberBuffer
	}

	s := &PoolService{
		poolID:      cfg.PoolID,
		manager:     cfg.Manager,
		ops:         cfg.Ops,
		logger:      cfg.Logger,
		buffer:      buffer,
		subscribers: make(map[rpc.ID]chan *SubscriptionEvent),
	}
	s.lastState = s.buildState(engine.OpSummary{
		Sequence:   0,
		Kind:       "init",
		Timestamp:  uint64(time.Now().Unix()),
		ReceivedAt: time.Now().UnixNano(),
	})
	return s, nil
}

// Register attaches the service to an rpc server under the amm namespace.
func (s *PoolService) Register(srv *rpc.Server) error {
	return srv.RegisterName(RpcNamespace, s)
}

// --- RPC operations ---

// Faucet credits the caller's off-pool token balances and returns the
// resulting holdings.
func (s *PoolService) Faucet(caller common.Address, amountToken1, amountToken2 *hexutil.Big) (*HoldingsResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	received := time.Now()
	s.manager.Faucet(caller, toBig(amountToken1), toBig(amountToken2))
	s.advance("faucet", caller, received)
	return holdingsResult(s.manager.Holdings(caller)), nil
}

// Provide deposits liquidity and returns the minted share amount.
func (s *PoolService) Provide(caller common.Address, amountToken1, amountToken2 *hexutil.Big) (*hexutil.Big, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	received := time.Now()
	share, err := s.manager.Provide(caller, toBig(amountToken1), toBig(amountToken2))
	if err != nil {
		return nil, err
	}
	s.advance("provide", caller, received)
	return (*hexutil.Big)(share), nil
}

// Withdraw burns the given share amount and returns the released token
// amounts.
func (s *PoolService) Withdraw(caller common.Address, share *hexutil.Big) (*WithdrawResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	received := time.Now()
	amountToken1, amountToken2, err := s.manager.Withdraw(caller, toBig(share))
	if err != nil {
		return nil, err
	}
	s.advance("withdraw", caller, received)
	return &WithdrawResult{
		AmountToken1: (*hexutil.Big)(amountToken1),
		AmountToken2: (*hexutil.Big)(amountToken2),
	}, nil
}

// Holdings returns the caller's off-pool balances and share holding.
func (s *PoolService) Holdings(caller common.Address) (*HoldingsResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return holdingsResult(s.manager.Holdings(caller)), nil
}

// PoolDetails returns the pool totals and the fee parameter.
func (s *PoolService) PoolDetails() (*PoolDetailsResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v := s.manager.Details()
	return &PoolDetailsResult{
		TotalToken1: (*hexutil.Big)(v.TotalToken1),
		TotalToken2: (*hexutil.Big)(v.TotalToken2),
		TotalShares: (*hexutil.Big)(v.TotalShares),
		FeeBps:      v.FeeBps,
	}, nil
}

// EquivalentToken1Estimate returns the token1 amount required alongside the
// given token2 amount at the current pool ratio.
func (s *PoolService) EquivalentToken1Estimate(amountToken2 *hexutil.Big) (*hexutil.Big, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	amount, err := s.manager.EquivalentToken1(toBig(amountToken2))
	if err != nil {
		return nil, err
	}
	return (*hexutil.Big)(amount), nil
}

// EquivalentToken2Estimate returns the token2 amount required alongside the
// given token1 amount at the current pool ratio.
func (s *PoolService) EquivalentToken2Estimate(amountToken1 *hexutil.Big) (*hexutil.Big, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	amount, err := s.manager.EquivalentToken2(toBig(amountToken1))
	if err != nil {
		return nil, err
	}
	return (*hexutil.Big)(amount), nil
}

// WithdrawEstimate returns the token amounts that burning the given share
// amount would release, without mutating anything.
func (s *PoolService) WithdrawEstimate(share *hexutil.Big) (*WithdrawResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	amountToken1, amountToken2, err := s.manager.WithdrawEstimate(toBig(share))
	if err != nil {
		return nil, err
	}
	return &WithdrawResult{
		AmountToken1: (*hexutil.Big)(amountToken1),
		AmountToken2: (*hexutil.Big)(amountToken2),
	}, nil
}

// SubscribeStateStream streams the full current state followed by one diff
// event per committed operation.
func (s *PoolService) SubscribeStateStream(ctx context.Context) (*rpc.Subscription, error) {
	notifier, supported := rpc.NotifierFromContext(ctx)
	if !supported {
		return nil, rpc.ErrNotificationsUnsupported
	}

	rpcSub := notifier.CreateSubscription()
	events := make(chan *SubscriptionEvent, s.buffer)

	s.mu.Lock()
	full, err := s.fullEvent()
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	s.subscribers[rpcSub.ID] = events
	s.mu.Unlock()

	go func() {
		defer func() {
			s.mu.Lock()
			delete(s.subscribers, rpcSub.ID)
			s.mu.Unlock()
		}()

		if err := notifier.Notify(rpcSub.ID, full); err != nil {
			return
		}
		for {
			select {
			case ev := <-events:
				if err := notifier.Notify(rpcSub.ID, ev); err != nil {
					return
				}
			case <-rpcSub.Err():
				return
			}
		}
	}()
	return rpcSub, nil
}

// --- internals (callers hold s.mu) ---

// advance builds the post-operation state, diffs it against the previous one
// and broadcasts the delta.
func (s *PoolService) advance(kind string, caller common.Address, received time.Time) {
	s.sequence++
	op := engine.OpSummary{
		Sequence:   s.sequence,
		Kind:       kind,
		Caller:     caller,
		Timestamp:  uint64(time.Now().Unix()),
		ReceivedAt: received.UnixNano(),
	}
	newState := s.buildState(op)

	diff, err := s.ops.Diff(s.lastState, newState)
	s.lastState = newState
	if err != nil {
		// The aggregate stays authoritative; subscribers resync from a full
		// event instead of the broken diff.
		s.logger.Error("state diff failed, broadcasting full state", "op", kind, "error", err)
		if full, ferr := s.fullEvent(); ferr == nil {
			s.broadcast(full)
		}
		return
	}

	payload, err := json.Marshal(diff)
	if err != nil {
		s.logger.Error("failed to marshal state diff", "op", kind, "error", err)
		return
	}
	s.broadcast(&SubscriptionEvent{
		Type:    "diff",
		Payload: payload,
		SentAt:  time.Now().UnixNano(),
	})
}

func (s *PoolService) buildState(op engine.OpSummary) *engine.State {
	sequence := op.Sequence
	return &engine.State{
		PoolID:    s.poolID,
		Timestamp: op.Timestamp,
		Op:        op,
		Views: map[engine.ViewID]engine.ViewState{
			stateops.PoolViewID: {
				Meta:           engine.ViewMeta{Name: "amm-pool", Tags: []string{"pool"}},
				SyncedSequence: &sequence,
				Schema:         pool.PoolViewSchema,
				Data:           s.manager.Details(),
			},
			stateops.HoldingsViewID: {
				Meta:           engine.ViewMeta{Name: "amm-holdings", Tags: []string{"holdings"}},
				SyncedSequence: &sequence,
				Schema:         pool.HoldingsSchema,
				Data:           s.manager.AllHoldings(),
			},
		},
	}
}

func (s *PoolService) fullEvent() (*SubscriptionEvent, error) {
	payload, err := json.Marshal(s.lastState)
	if err != nil {
		return nil, err
	}
	return &SubscriptionEvent{
		Type:    "full",
		Payload: payload,
		SentAt:  time.Now().UnixNano(),
	}, nil
}

func (s *PoolService) broadcast(ev *SubscriptionEvent) {
	for id, events := range s.subscribers {
		select {
		case events <- ev:
		default:
			s.logger.Warn("subscriber buffer full, dropping event", "subscription", id)
		}
	}
}

func holdingsResult(h pool.AccountHoldings) *HoldingsResult {
	return &HoldingsResult{
		Account: h.Account,
		Token1:  (*hexutil.Big)(h.Token1),
		Token2:  (*hexutil.Big)(h.Token2),
		Shares:  (*hexutil.Big)(h.Shares),
	}
}

func toBig(b *hexutil.Big) *big.Int {
	if b == nil {
		return nil
	}
	return b.ToInt()
}

// Package manager orchestrates deposits and withdrawals against the pool
// aggregate. It owns the ledger and the pool totals, validates fully before
// mutating, and exposes the read-only accessors the execution environment
// serves to callers.
package manager

import (
	"errors"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/liquidstate/liquidstate-engine-go/pool"
	"github.com/liquidstate/liquidstate-engine-go/pool/calculator"
)

// Logger defines a standard interface for structured, leveled logging.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// EventKind names a committed state transition.
type EventKind string

const (
	EventFaucet   EventKind = "faucet"
	EventProvide  EventKind = "provide"
	EventWithdraw EventKind = "withdraw"
)

// Event describes a committed transition so the surrounding execution
// environment can observe it without the engine depending on a specific
// notification mechanism.
type Event struct {
	Kind         EventKind      `json:"kind"`
	Caller       common.Address `json:"caller"`
	AmountToken1 *big.Int       `json:"amountToken1"`
	AmountToken2 *big.Int       `json:"amountToken2"`
	Shares       *big.Int       `json:"shares"`
	Pool         pool.View      `json:"pool"`
}

// EventSink receives an event after each committed mutation. Sinks observe
// only; they cannot veto or alter the transition.
type EventSink func(Event)

// Config holds the construction parameters for a Manager.
type Config struct {
	// FeeBps is the trading fee parameter in basis points, valid interval
	// [0, 1000). Out-of-range values are clamped to zero.
	FeeBps uint64
	Logger Logger
	// Sink is optional; a nil sink disables event emission.
	Sink EventSink
}

func (c *Config) validate() error {
	if c.Logger == nil {
		return errors.New("config: Logger cannot be nil")
	}
	return nil
}

// Manager owns the pool aggregate and its ledger and enforces every business
// invariant. It takes no locks: the surrounding execution environment
// serializes all calls, and every mutating operation validates fully before
// writing so a failed call leaves all state untouched.
type Manager struct {
	view   pool.View
	ledger *pool.Ledger
	logger Logger
	sink   EventSink
}

// New constructs an empty pool. Fee values at or above 1000 basis points are
// clamped to zero.
func New(cfg *Config) (*Manager, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	feeBps := cfg.FeeBps
	if feeBps >= pool.MaxFeeBps {
		feeBps = 0
	}

	return &Manager{
		view: pool.View{
			TotalToken1: new(big.Int),
			TotalToken2: new(big.Int),
			TotalShares: new(big.Int),
			FeeBps:      feeBps,
		},
		ledger: pool.NewLedger(),
		logger: cfg.Logger,
		sink:   cfg.Sink,
	}, nil
}

// Faucet unconditionally credits the caller's off-pool token balances. It is
// a bootstrap helper with no validation and no effect on the pool itself.
// Nil or negative inputs credit nothing for that side.
func (m *Manager) Faucet(caller common.Address, amountToken1, amountToken2 *big.Int) {
	a1 := normalized(amountToken1)
	a2 := normalized(amountToken2)

	m.ledger.Credit(caller, pool.AssetToken1, a1)
	m.ledger.Credit(caller, pool.AssetToken2, a2)

	m.logger.Debug("faucet credited",
		"caller", caller.Hex(),
		"token1", a1.String(),
		"token2", a2.String(),
	)
	m.emit(Event{
		Kind:         EventFaucet,
		Caller:       caller,
		AmountToken1: a1,
		AmountToken2: a2,
		Shares:       new(big.Int),
		Pool:         m.view.DeepCopy(),
	})
}

// Provide deposits liquidity and returns the minted share amount.
//
// While the pool is empty, the deposit bootstraps it and mints the flat
// GenesisShares amount regardless of the quantities supplied. Otherwise the
// deposit must match the current pool ratio exactly under floor division, or
// it fails with ErrNonEquivalentValue. A deposit whose share amount rounds
// down to zero fails with ErrThresholdNotReached rather than silently
// minting nothing.
func (m *Manager) Provide(caller common.Address, amountToken1, amountToken2 *big.Int) (*big.Int, error) {
	if err := m.validAmount(caller, pool.AssetToken1, amountToken1); err != nil {
		return nil, err
	}
	if err := m.validAmount(caller, pool.AssetToken2, amountToken2); err != nil {
		return nil, err
	}

	share := new(big.Int)
	if m.view.TotalShares.Sign() == 0 {
		// Genesis liquidity is issued a constant share amount. The deposit
		// fixes the price ratio only.
		share.Set(pool.GenesisShares)
	} else {
		share.Mul(m.view.TotalShares, amountToken1)
		share.Div(share, m.view.TotalToken1)

		share2 := new(big.Int).Mul(m.view.TotalShares, amountToken2)
		share2.Div(share2, m.view.TotalToken2)

		if share.Cmp(share2) != 0 {
			return nil, pool.ErrNonEquivalentValue
		}
	}
	if share.Sign() == 0 {
		return nil, pool.ErrThresholdNotReached
	}

	// All checks passed; commit. The debits cannot fail here because the
	// amounts were validated against the same balances above.
	if err := m.ledger.Debit(caller, pool.AssetToken1, amountToken1); err != nil {
		return nil, err
	}
	if err := m.ledger.Debit(caller, pool.AssetToken2, amountToken2); err != nil {
		return nil, err
	}
	m.view.TotalToken1.Add(m.view.TotalToken1, amountToken1)
	m.view.TotalToken2.Add(m.view.TotalToken2, amountToken2)
	m.view.TotalShares.Add(m.view.TotalShares, share)
	m.ledger.Credit(caller, pool.AssetShare, share)

	m.logger.Debug("liquidity provided",
		"caller", caller.Hex(),
		"token1", amountToken1.String(),
		"token2", amountToken2.String(),
		"shares", share.String(),
	)
	m.emit(Event{
		Kind:         EventProvide,
		Caller:       caller,
		AmountToken1: new(big.Int).Set(amountToken1),
		AmountToken2: new(big.Int).Set(amountToken2),
		Shares:       new(big.Int).Set(share),
		Pool:         m.view.DeepCopy(),
	})
	return share, nil
}

// Withdraw burns the given share amount and releases the corresponding
// token1 and token2 quantities to the caller's off-pool balances.
//
// The caller's own share balance is checked first; pool activity and share
// validity are then re-checked by the withdraw estimate. This ordering is
// part of the engine's contract.
func (m *Manager) Withdraw(caller common.Address, share *big.Int) (*big.Int, *big.Int, error) {
	if err := m.validAmount(caller, pool.AssetShare, share); err != nil {
		return nil, nil, err
	}

	amountToken1, amountToken2, err := calculator.WithdrawAmounts(m.view, share)
	if err != nil {
		return nil, nil, err
	}

	if err := m.ledger.Debit(caller, pool.AssetShare, share); err != nil {
		return nil, nil, err
	}
	m.view.TotalShares.Sub(m.view.TotalShares, share)
	m.view.TotalToken1.Sub(m.view.TotalToken1, amountToken1)
	m.view.TotalToken2.Sub(m.view.TotalToken2, amountToken2)
	m.ledger.Credit(caller, pool.AssetToken1, amountToken1)
	m.ledger.Credit(caller, pool.AssetToken2, amountToken2)

	m.logger.Debug("liquidity withdrawn",
		"caller", caller.Hex(),
		"shares", share.String(),
		"token1", amountToken1.String(),
		"token2", amountToken2.String(),
	)
	m.emit(Event{
		Kind:         EventWithdraw,
		Caller:       caller,
		AmountToken1: new(big.Int).Set(amountToken1),
		AmountToken2: new(big.Int).Set(amountToken2),
		Shares:       new(big.Int).Set(share),
		Pool:         m.view.DeepCopy(),
	})
	return amountToken1, amountToken2, nil
}

// Holdings returns the caller's off-pool token balances and share holding.
func (m *Manager) Holdings(caller common.Address) pool.AccountHoldings {
	return pool.AccountHoldings{
		Account: caller,
		Token1:  m.ledger.BalanceOf(caller, pool.AssetToken1),
		Token2:  m.ledger.BalanceOf(caller, pool.AssetToken2),
		Shares:  m.ledger.BalanceOf(caller, pool.AssetShare),
	}
}

// AllHoldings returns the holdings of every account the ledger has seen, in
// a deterministic order.
func (m *Manager) AllHoldings() []pool.AccountHoldings {
	accounts := m.ledger.Accounts()
	holdings := make([]pool.AccountHoldings, 0, len(accounts))
	for _, account := range accounts {
		holdings = append(holdings, m.Holdings(account))
	}
	return holdings
}

// Details returns a snapshot of the pool totals and the fee parameter.
func (m *Manager) Details() pool.View {
	return m.view.DeepCopy()
}

// EquivalentToken1 estimates the token1 amount matching a token2 deposit at
// the current pool ratio.
func (m *Manager) EquivalentToken1(amountToken2 *big.Int) (*big.Int, error) {
	return calculator.EquivalentToken1(m.view, amountToken2)
}

// EquivalentToken2 estimates the token2 amount matching a token1 deposit at
// the current pool ratio.
func (m *Manager) EquivalentToken2(amountToken1 *big.Int) (*big.Int, error) {
	return calculator.EquivalentToken2(m.view, amountToken1)
}

// WithdrawEstimate estimates the token amounts released on burning the given
// share amount without mutating anything.
func (m *Manager) WithdrawEstimate(share *big.Int) (*big.Int, *big.Int, error) {
	return calculator.WithdrawAmounts(m.view, share)
}

// validAmount ensures qty is a positive quantity the caller can cover from
// the given asset balance. Nil and negative values cannot represent a valid
// unsigned quantity and are rejected as zero amounts.
func (m *Manager) validAmount(caller common.Address, asset pool.Asset, qty *big.Int) error {
	if qty == nil || qty.Sign() <= 0 {
		return pool.ErrZeroAmount
	}
	if qty.Cmp(m.ledger.BalanceOf(caller, asset)) > 0 {
		return pool.ErrInsufficientAmount
	}
	return nil
}

func (m *Manager) emit(ev Event) {
	if m.sink != nil {
		m.sink(ev)
	}
}

func normalized(amount *big.Int) *big.Int {
	if amount == nil || amount.Sign() < 0 {
		return new(big.Int)
	}
	return new(big.Int).Set(amount)
}

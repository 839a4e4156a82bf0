package server

import (
	"encoding/json"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// Logger defines a standard interface for structured, leveled logging.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// SubscriptionEvent is the wrapper object sent to stream subscribers.
type SubscriptionEvent struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
	SentAt  int64           `json:"sentAt"`
}

// HoldingsResult is the wire form of one account's balances.
type HoldingsResult struct {
	Account common.Address `json:"account"`
	Token1  *hexutil.Big   `json:"token1"`
	Token2  *hexutil.Big   `json:"token2"`
	Shares  *hexutil.Big   `json:"shares"`
}

// WithdrawResult is the wire form of the token amounts released for a share
// amount, for both estimates and committed withdrawals.
type WithdrawResult struct {
	AmountToken1 *hexutil.Big `json:"amountToken1"`
	AmountToken2 *hexutil.Big `json:"amountToken2"`
}

// PoolDetailsResult is the wire form of the pool totals and fee parameter.
type PoolDetailsResult struct {
	TotalToken1 *hexutil.Big `json:"totalToken1"`
	TotalToken2 *hexutil.Big `json:"totalToken2"`
	TotalShares *hexutil.Big `json:"totalShares"`
	FeeBps      uint64       `json:"feeBps"`
}

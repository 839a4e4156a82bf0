package engine

import (
	"github.com/ethereum/go-ethereum/common"
)

type ViewName string
type ViewID string

// ViewSchema defines the decode contract for a view's data
type ViewSchema string

type ViewMeta struct {
	Name ViewName `json:"name"`           // human label
	Tags []string `json:"tags,omitempty"` // "pool", "holdings", etc.
}

type ViewState struct {
	Meta ViewMeta `json:"meta"`

	// what is the operation sequence of this view's data?
	SyncedSequence *uint64 `json:"syncedSequence,omitempty"`

	// Schema is the decode contract for Data.
	// Example:
	// "liquidstate/amm-pool/poolView@v1"
	Schema ViewSchema `json:"schema"`

	// Data is the view payload, shaped by Schema.
	Data any `json:"data,omitempty"`

	// Error is populated if this view is out-of-sync or failed for this
	// operation.
	Error string `json:"error,omitempty"`
}

// OpSummary contains only the essential information about the serialized
// operation that produced a state.
type OpSummary struct {
	Sequence   uint64         `json:"sequence"`
	Kind       string         `json:"kind"`
	Caller     common.Address `json:"caller"`
	Timestamp  uint64         `json:"timestamp"`
	ReceivedAt int64          `json:"receivedAt"` // The Unix nanosecond timestamp when the engine started processing the operation.
}

// State is the main data structure broadcast to subscribers: the full view
// set of the pool aggregate after one serialized operation.
type State struct {
	PoolID    uint64               `json:"poolId"`
	Timestamp uint64               `json:"timestamp"`
	Op        OpSummary            `json:"op"`
	Views     map[ViewID]ViewState `json:"views"`
}

func (state *State) HasErrors() bool {
	// Check view-level errors
	for _, v := range state.Views {
		if v.Error != "" {
			return true
		}
	}
	return false
}

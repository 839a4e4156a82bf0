package client

import (
	"encoding/json"

	"github.com/liquidstate/liquidstate-engine-go/engine"
)

// clientState mirrors engine.State but strictly types the Data field as RawMessage.
// This prevents the Go JSON decoder from unmarshaling into map[string]interface{}.
type clientState struct {
	PoolID    uint64                            `json:"poolId"`
	Timestamp uint64                            `json:"timestamp"`
	Op        engine.OpSummary                  `json:"op"`
	Views     map[engine.ViewID]clientViewState `json:"views"`
}

type clientViewState struct {
	Meta           engine.ViewMeta   `json:"meta"`
	SyncedSequence *uint64           `json:"syncedSequence,omitempty"`
	Schema         engine.ViewSchema `json:"schema"`
	Error          string            `json:"error,omitempty"`

	// Data is kept as raw bytes. We decode this later using the specific Schema.
	Data json.RawMessage `json:"data,omitempty"`
}

type clientViewStateDiff struct {
	Meta           engine.ViewMeta   `json:"meta"`
	SyncedSequence *uint64           `json:"syncedSequence,omitempty"`
	Schema         engine.ViewSchema `json:"schema"`
	Error          string            `json:"error,omitempty"`

	// Data is kept as raw bytes. We decode this later using the specific Schema.
	Data json.RawMessage `json:"data,omitempty"`
}

// clientStateDiff mirrors differ.StateDiff but keeps the view diffs as raw bytes.
type clientStateDiff struct {
	FromSequence uint64                                `json:"fromSequence"`
	ToOp         engine.OpSummary                      `json:"toOp"`
	Timestamp    uint64                                `json:"timestamp"`
	Views        map[engine.ViewID]clientViewStateDiff `json:"views"`
}

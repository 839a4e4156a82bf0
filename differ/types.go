package differ

import "github.com/liquidstate/liquidstate-engine-go/engine"

// Logger defines a standard interface for structured, leveled logging.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type ViewDiff struct {
	Meta engine.ViewMeta `json:"meta"`

	// what is the operation sequence of this view's data?
	SyncedSequence *uint64 `json:"syncedSequence,omitempty"`

	// Schema is the decode contract for Data.
	// Examples:
	// "liquidstate/amm-pool/poolView@v1"
	// "liquidstate/amm-pool/holdingsView@v1"
	Schema engine.ViewSchema `json:"schema"`

	// Data is the view diff, shaped by Schema.
	Data any `json:"data,omitempty"`

	// Error is populated if this view is out-of-sync or failed for this
	// operation.
	Error string `json:"error,omitempty"`
}

// StateDiff represents a summary of changes FromSequence to ToOp.Sequence.
type StateDiff struct {
	Timestamp    uint64                     `json:"timestamp"`
	FromSequence uint64                     `json:"fromSequence"`
	ToOp         engine.OpSummary           `json:"toOp"`
	Views        map[engine.ViewID]ViewDiff `json:"views"`
}

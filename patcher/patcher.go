package patcher

import (
	"errors"
	"fmt"

	"github.com/liquidstate/liquidstate-engine-go/differ"
	"github.com/liquidstate/liquidstate-engine-go/engine"
)

// --- Type Definitions ---

// PatcherFunc applies a diff to a previous view payload to produce a new one.
//
// CONTRACT:
// 1. Immutability: Implementations MUST NOT mutate 'prevState'. They must create a copy.
// 2. nil Handling: 'prevState' may be nil if this is a newly added view.
type PatcherFunc func(prevState any, diffData any) (newState any, err error)

// --- Config and Main Struct ---

type StatePatcherConfig struct {
	// Map Schema -> Patcher Function
	// Example: "liquidstate/amm-pool/poolView@v1" -> pool view patcher
	Patchers map[engine.ViewSchema]PatcherFunc
}

func (c *StatePatcherConfig) validate() error {
	for _, patcher := range c.Patchers {
		if patcher == nil {
			return errors.New("patcher cannot be nil")
		}
	}
	return nil
}

// StatePatcher is the generic engine for applying state updates.
type StatePatcher struct {
	patchers map[engine.ViewSchema]PatcherFunc
}

// NewStatePatcher constructs a new patcher from a configuration.
func NewStatePatcher(cfg *StatePatcherConfig) (*StatePatcher, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	// Copy map to ensure immutability
	patchers := make(map[engine.ViewSchema]PatcherFunc, len(cfg.Patchers))
	for k, v := range cfg.Patchers {
		patchers[k] = v
	}

	return &StatePatcher{
		patchers: patchers,
	}, nil
}

// --- Implementation ---

// Patch creates a new State by applying the Diff to the Old State.
// It uses "Structural Sharing": parts of the state that didn't change are
// shared by reference. Parts that changed are replaced by the PatcherFunc.
func (p *StatePatcher) Patch(oldState *engine.State, diff *differ.StateDiff) (*engine.State, error) {
	// 1. Integrity Check
	if oldState.Op.Sequence != diff.FromSequence {
		return nil, fmt.Errorf("patcher: mismatch fromSequence (state=%d, diff=%d)", oldState.Op.Sequence, diff.FromSequence)
	}

	// 2. Initialize New Views Map
	// We start with a shallow copy of the old map. This preserves all
	// "Unchanged" data efficiently.
	newViews := make(map[engine.ViewID]engine.ViewState, len(oldState.Views))
	for k, v := range oldState.Views {
		newViews[k] = v
	}

	// 3. Apply Diffs
	// We iterate only over the views that have changes.
	for viewID, viewDiff := range diff.Views {

		// A. Find the Patcher logic for this specific data type
		patcherFunc, ok := p.patchers[viewDiff.Schema]
		if !ok {
			return nil, fmt.Errorf("patcher: no patcher registered for schema %q (view=%s)", viewDiff.Schema, viewID)
		}

		// B. Retrieve Old Data (if it exists)
		var oldData any
		if oldResult, exists := oldState.Views[viewID]; exists {
			// Safety check: Schema migration is complex; for now, assume schemas must match.
			if oldResult.Schema != viewDiff.Schema {
				return nil, fmt.Errorf("patcher: schema mismatch for view %s (old=%s, diff=%s)", viewID, oldResult.Schema, viewDiff.Schema)
			}
			oldData = oldResult.Data
		}

		// C. Execute the Patch
		// The PatcherFunc is responsible for deep-copying oldData + applying diffData
		newData, err := patcherFunc(oldData, viewDiff.Data)
		if err != nil {
			return nil, fmt.Errorf("patcher: failed to patch view %s: %w", viewID, err)
		}

		// D. Construct the New View Result
		// We use metadata from the Diff, as it represents the latest state truth.
		newResult := engine.ViewState{
			Meta:           viewDiff.Meta,
			SyncedSequence: viewDiff.SyncedSequence,
			Schema:         viewDiff.Schema,
			Data:           newData,
			Error:          viewDiff.Error,
		}

		// E. Update the map
		newViews[viewID] = newResult
	}

	// 4. Return Final State
	return &engine.State{
		PoolID:    oldState.PoolID, // Pool identity is stable across operations
		Timestamp: diff.Timestamp,  // The time the diff was calculated
		Op:        diff.ToOp,       // The new target operation
		Views:     newViews,
	}, nil
}

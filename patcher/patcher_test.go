package patcher

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/liquidstate/liquidstate-engine-go/differ"
	"github.com/liquidstate/liquidstate-engine-go/engine"
)

// --------------------------------------------------------------------------------
// --- Mocks ---
// --------------------------------------------------------------------------------

// mockIntPatcher is a simple generic patcher for testing.
// It treats the State as an Integer and the Diff as an addition.
// This proves the engine can carry values and update them without knowing what they are.
func mockIntPatcher(old any, diff any) (any, error) {
	val := 0
	if old != nil {
		val = old.(int)
	}
	delta, ok := diff.(int)
	if !ok {
		return nil, errors.New("diff is not int")
	}
	return val + delta, nil
}

// --------------------------------------------------------------------------------
// --- Helpers ---
// --------------------------------------------------------------------------------

func makeState(sequence uint64, views map[engine.ViewID]engine.ViewState) *engine.State {
	return &engine.State{
		PoolID:    1,
		Timestamp: uint64(time.Now().UnixNano()),
		Op: engine.OpSummary{
			Sequence: sequence,
			Kind:     "provide",
		},
		Views: views,
	}
}

// --------------------------------------------------------------------------------
// --- Main Test Suite ---
// --------------------------------------------------------------------------------

func TestStatePatcher_HappyPath(t *testing.T) {
	// 1. Setup Config
	// We register our generic integer patcher against a test schema.
	schema := engine.ViewSchema("mock/int@v1")
	cfg := &StatePatcherConfig{
		Patchers: map[engine.ViewSchema]PatcherFunc{
			schema: mockIntPatcher,
		},
	}
	patcher, err := NewStatePatcher(cfg)
	require.NoError(t, err)

	// 2. Setup Data
	// "pool" -> Value 10
	// "holdings" -> Value 50
	v1 := engine.ViewID("pool")
	v2 := engine.ViewID("holdings")

	oldState := makeState(100, map[engine.ViewID]engine.ViewState{
		v1: {Schema: schema, Data: 10},
		v2: {Schema: schema, Data: 50},
	})

	// 3. Create Diff
	// "pool"     -> Add 5  (Update)
	// "holdings" -> Missing (No Change)
	// "extra"    -> Add 100 (New View)
	v3 := engine.ViewID("extra")

	diff := &differ.StateDiff{
		FromSequence: 100,
		ToOp: engine.OpSummary{
			Sequence: 101,
			Kind:     "withdraw",
		},
		Views: map[engine.ViewID]differ.ViewDiff{
			v1: {Schema: schema, Data: 5},
			v3: {Schema: schema, Data: 100},
		},
	}

	// 4. Execute Patch
	newState, err := patcher.Patch(oldState, diff)
	require.NoError(t, err)

	// 5. Verify Results
	assert.Equal(t, uint64(101), newState.Op.Sequence)
	assert.Equal(t, "withdraw", newState.Op.Kind)
	assert.Equal(t, uint64(1), newState.PoolID)

	// Verify V1 (Update: 10 + 5 = 15)
	res1, ok := newState.Views[v1]
	require.True(t, ok)
	assert.Equal(t, 15, res1.Data.(int))

	// Verify V2 (Structural Sharing / Persistence: 50)
	res2, ok := newState.Views[v2]
	require.True(t, ok)
	assert.Equal(t, 50, res2.Data.(int))

	// Verify V3 (New Creation: 0 + 100 = 100)
	res3, ok := newState.Views[v3]
	require.True(t, ok)
	assert.Equal(t, 100, res3.Data.(int))
}

func TestStatePatcher_SequenceMismatch(t *testing.T) {
	patcher, _ := NewStatePatcher(&StatePatcherConfig{})

	oldState := makeState(100, nil)
	diff := &differ.StateDiff{FromSequence: 99} // Mismatch!

	_, err := patcher.Patch(oldState, diff)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mismatch fromSequence")
}

func TestStatePatcher_MissingPatcher(t *testing.T) {
	// Setup patcher with NO registered functions
	patcher, _ := NewStatePatcher(&StatePatcherConfig{
		Patchers: map[engine.ViewSchema]PatcherFunc{},
	})

	schema := engine.ViewSchema("unknown")
	oldState := makeState(100, nil)
	diff := &differ.StateDiff{
		FromSequence: 100,
		Views: map[engine.ViewID]differ.ViewDiff{
			"pool": {Schema: schema, Data: 1},
		},
	}

	_, err := patcher.Patch(oldState, diff)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no patcher registered")
}

func TestStatePatcher_SchemaMismatch(t *testing.T) {
	// Register schema B
	schemaA := engine.ViewSchema("A")
	schemaB := engine.ViewSchema("B")
	cfg := &StatePatcherConfig{
		Patchers: map[engine.ViewSchema]PatcherFunc{
			schemaB: mockIntPatcher,
		},
	}
	patcher, _ := NewStatePatcher(cfg)

	vID := engine.ViewID("pool")

	// Old state has Schema A
	oldState := makeState(100, map[engine.ViewID]engine.ViewState{
		vID: {Schema: schemaA, Data: 1},
	})

	// Diff attempts to update it using Schema B
	diff := &differ.StateDiff{
		FromSequence: 100,
		Views: map[engine.ViewID]differ.ViewDiff{
			vID: {Schema: schemaB, Data: 1},
		},
	}

	_, err := patcher.Patch(oldState, diff)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "schema mismatch")
}

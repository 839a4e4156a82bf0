// Package stateops wires the pool view schemas into the generic differ and
// patcher engines and decodes their JSON wire payloads.
package stateops

import (
	"encoding/json"
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/liquidstate/liquidstate-engine-go/differ"
	"github.com/liquidstate/liquidstate-engine-go/engine"
	"github.com/liquidstate/liquidstate-engine-go/patcher"
	"github.com/liquidstate/liquidstate-engine-go/pool"
)

// View identifiers used in every pool state.
const (
	PoolViewID     engine.ViewID = "pool"
	HoldingsViewID engine.ViewID = "holdings"
)

// Logger defines a standard interface for structured, leveled logging.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// StateOps encapsulates the core logic for processing pool state streams.
//
// It acts as a unified facade for two critical operations:
// 1. Differ: Calculating the delta between two states (used by the server).
// 2. Patcher: Applying a delta to a previous state to reconstruct the present (used by a client).
type StateOps struct {
	*differ.StateDiffer
	*patcher.StatePatcher
}

func NewStateOps(
	logger Logger,
	prometheusRegistry prometheus.Registerer,
) (*StateOps, error) {
	viewDiffers := map[engine.ViewSchema]differ.ViewDiffer{
		pool.PoolViewSchema: func(old, new any) (diff any, err error) {
			return pool.DiffView(old.(pool.View), new.(pool.View)), nil
		},
		pool.HoldingsSchema: func(old, new any) (diff any, err error) {
			return pool.DiffHoldings(old.([]pool.AccountHoldings), new.([]pool.AccountHoldings)), nil
		},
	}

	viewPatchers := map[engine.ViewSchema]patcher.PatcherFunc{
		pool.PoolViewSchema: func(prevState, diff any) (newState any, err error) {
			return pool.PatchView(prevState.(pool.View), diff.(pool.ViewDiff))
		},
		pool.HoldingsSchema: func(prevState, diff any) (newState any, err error) {
			return pool.PatchHoldings(prevState.([]pool.AccountHoldings), diff.(pool.HoldingsDiff))
		},
	}

	stateDiffer, err := differ.NewStateDiffer(&differ.StateDifferConfig{
		ViewDiffers: viewDiffers,
		Logger:      logger,
		Registry:    prometheusRegistry,
	})
	if err != nil {
		return nil, err
	}

	statePatcher, err := patcher.NewStatePatcher(&patcher.StatePatcherConfig{
		Patchers: viewPatchers,
	})
	if err != nil {
		return nil, err
	}

	return &StateOps{
		StateDiffer:  stateDiffer,
		StatePatcher: statePatcher,
	}, nil
}

func (ops *StateOps) DecodeStateJSON(
	schema engine.ViewSchema,
	data json.RawMessage,
) (any, error) {
	switch schema {
	case pool.PoolViewSchema:
		var typedData pool.View
		if err := json.Unmarshal(data, &typedData); err != nil {
			return nil, err
		}
		return typedData, nil
	case pool.HoldingsSchema:
		var typedData []pool.AccountHoldings
		if err := json.Unmarshal(data, &typedData); err != nil {
			return nil, err
		}
		return typedData, nil
	default:
		return nil, errors.New("unknown schema")
	}
}

func (ops *StateOps) DecodeStateDiffJSON(
	schema engine.ViewSchema,
	data json.RawMessage,
) (any, error) {
	switch schema {
	case pool.PoolViewSchema:
		var typedData pool.ViewDiff
		if err := json.Unmarshal(data, &typedData); err != nil {
			return nil, err
		}
		return typedData, nil
	case pool.HoldingsSchema:
		var typedData pool.HoldingsDiff
		if err := json.Unmarshal(data, &typedData); err != nil {
			return nil, err
		}
		return typedData, nil
	default:
		return nil, errors.New("unknown schema")
	}
}

package differ

import (
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/liquidstate/liquidstate-engine-go/engine"
)

// --- Config and Main Struct ---

// ViewDiffer computes the schema-specific delta between two view payloads.
type ViewDiffer func(old, new any) (diff any, err error)

// StateDifferConfig holds all the individual differ functions and
// dependencies.
type StateDifferConfig struct {
	// One differ per schema (data contract), not per view identity.
	ViewDiffers map[engine.ViewSchema]ViewDiffer
	Registry    prometheus.Registerer // Required for metrics.
	Logger      Logger                // Required for logging.
}

// validate checks if the configuration is valid, ensuring required
// dependencies are present.
func (c *StateDifferConfig) validate() error {
	if c.Registry == nil {
		return errors.New("config: Registry cannot be nil")
	}
	if c.Logger == nil {
		return errors.New("config: Logger cannot be nil")
	}
	return nil
}

// StateDiffer computes state deltas between consecutive pool states, with
// metrics and logging.
type StateDiffer struct {
	metrics     *Metrics
	logger      Logger
	viewDiffers map[engine.ViewSchema]ViewDiffer
}

// NewStateDiffer constructs a new differ from a configuration, returning an
// error if the config is invalid.
func NewStateDiffer(cfg *StateDifferConfig) (*StateDiffer, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	viewDiffers := make(map[engine.ViewSchema]ViewDiffer, len(cfg.ViewDiffers))
	for schema, viewDiffer := range cfg.ViewDiffers {
		viewDiffers[schema] = viewDiffer
	}

	return &StateDiffer{
		metrics:     NewMetrics(cfg.Registry),
		logger:      cfg.Logger,
		viewDiffers: viewDiffers,
	}, nil
}

// Diff is the main orchestrator method. It operates under the guarantee that
// it only receives valid, error-free states to compare.
func (d *StateDiffer) Diff(old, new *engine.State) (*StateDiff, error) {
	totalTimer := prometheus.NewTimer(d.metrics.diffDuration.WithLabelValues())
	defer totalTimer.ObserveDuration()

	// we still ensure old and new states have no errors
	if old.HasErrors() || new.HasErrors() {
		d.metrics.diffsTotal.WithLabelValues("error").Inc()
		return nil, errors.New("StateDiffer received state with error")
	}

	viewDiffs := make(map[engine.ViewID]ViewDiff)
	for viewID, newViewState := range new.Views {
		oldViewState, ok := old.Views[viewID]
		if !ok {
			d.metrics.diffsTotal.WithLabelValues("error").Inc()
			return nil, fmt.Errorf("viewID %s does not exist in old state", viewID)
		}

		differFunc, exists := d.viewDiffers[newViewState.Schema]
		if !exists {
			d.metrics.diffsTotal.WithLabelValues("error").Inc()
			return nil, fmt.Errorf("no differ registered for schema %q", newViewState.Schema)
		}
		diffData, err := differFunc(oldViewState.Data, newViewState.Data)
		if err != nil {
			d.metrics.diffsTotal.WithLabelValues("error").Inc()
			return nil, err
		}

		viewDiffs[viewID] = ViewDiff{
			Meta:           newViewState.Meta,
			SyncedSequence: newViewState.SyncedSequence,
			Schema:         newViewState.Schema,
			Data:           diffData,
		}
	}

	stateDiff := &StateDiff{
		Timestamp:    uint64(time.Now().UnixNano()),
		FromSequence: old.Op.Sequence,
		ToOp:         new.Op,
		Views:        viewDiffs,
	}

	d.metrics.diffsTotal.WithLabelValues("ok").Inc()
	return stateDiff, nil
}

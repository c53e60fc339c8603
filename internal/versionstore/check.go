package versionstore

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/vellum-engine/vellum/runtime/reflection"
)

// DriftStatus classifies the difference between the ledger and a registry.
type DriftStatus string

const (
	// DriftChanged is a type whose structural version differs from the ledger.
	DriftChanged DriftStatus = "changed"
	// DriftAdded is a type the ledger has never seen.
	DriftAdded DriftStatus = "added"
	// DriftRemoved is a ledger entry with no registered type.
	DriftRemoved DriftStatus = "removed"
)

// Drift is one difference found by Check.
type Drift struct {
	Name     string      `json:"name"`
	Kind     string      `json:"kind"`
	Status   DriftStatus `json:"status"`
	Recorded string      `json:"recorded,omitempty"`
	Current  string      `json:"current,omitempty"`
}

// Changed reports whether the drift breaks compatibility with data written
// under the recorded version.
func (d Drift) Changed() bool {
	return d.Status == DriftChanged
}

// Check compares every registered type and enum against the ledger and
// returns the differences ordered by name.
func Check(ctx context.Context, store Store, reg *reflection.Registry, logger *zap.Logger) ([]Drift, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	recorded, err := store.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read version ledger: %w", err)
	}
	byName := make(map[string]Record, len(recorded))
	for _, rec := range recorded {
		byName[rec.Name] = rec
	}

	var drifts []Drift
	for _, cur := range Snapshot(reg, time.Time{}) {
		rec, ok := byName[cur.Name]
		delete(byName, cur.Name)
		switch {
		case !ok:
			drifts = append(drifts, Drift{Name: cur.Name, Kind: cur.Kind, Status: DriftAdded, Current: cur.Version})
		case rec.Version != cur.Version:
			logger.Warn("structural version drift",
				zap.String("type", cur.Name),
				zap.String("recorded", rec.Version),
				zap.String("current", cur.Version))
			drifts = append(drifts, Drift{
				Name:     cur.Name,
				Kind:     cur.Kind,
				Status:   DriftChanged,
				Recorded: rec.Version,
				Current:  cur.Version,
			})
		}
	}
	for _, rec := range byName {
		drifts = append(drifts, Drift{Name: rec.Name, Kind: rec.Kind, Status: DriftRemoved, Recorded: rec.Version})
	}

	sort.Slice(drifts, func(i, j int) bool { return drifts[i].Name < drifts[j].Name })
	return drifts, nil
}

// Commit writes the current version of every registered type and enum to
// the ledger and returns the number of records written.
func Commit(ctx context.Context, store Store, reg *reflection.Registry, now time.Time) (int, error) {
	records := Snapshot(reg, now)
	if err := store.Save(ctx, records...); err != nil {
		return 0, fmt.Errorf("failed to write version ledger: %w", err)
	}
	return len(records), nil
}

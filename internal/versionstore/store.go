// Package versionstore persists the structural versions of reflected types so
// that separately built binaries can detect drift before they exchange data.
package versionstore

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/vellum-engine/vellum/runtime/reflection"
)

// Kinds of recorded entries.
const (
	KindType = "type"
	KindEnum = "enum"
)

// Record is the persisted structural version of one type or enum.
type Record struct {
	Name        string    `json:"name" msgpack:"name"`
	Kind        string    `json:"kind" msgpack:"kind"`
	Version     string    `json:"version" msgpack:"version"`
	UserVersion uint32    `json:"user_version" msgpack:"user_version"`
	RecordedAt  time.Time `json:"recorded_at" msgpack:"recorded_at"`
}

// Hash parses Version back into a hash.
func (r Record) Hash() (reflection.Hash64, error) {
	v, err := strconv.ParseUint(r.Version, 16, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid version %q for %s: %w", r.Version, r.Name, err)
	}
	return reflection.Hash64(v), nil
}

// Store defines the interface for all version ledger backends
type Store interface {
	// Load returns the record for a type or enum name
	Load(ctx context.Context, name string) (Record, error)

	// Save inserts or replaces records
	Save(ctx context.Context, records ...Record) error

	// All returns every record ordered by name
	All(ctx context.Context) ([]Record, error)

	// Close releases the backend
	Close() error
}

// ErrNotFound is returned when no record exists for a name
type ErrNotFound struct {
	Name string
}

func (e ErrNotFound) Error() string {
	return "no recorded version: " + e.Name
}

// IsNotFound checks if an error is a missing record
func IsNotFound(err error) bool {
	_, ok := err.(ErrNotFound)
	return ok
}

// Snapshot captures the current version of every registered type and enum.
// Builtin primitives are not recorded.
func Snapshot(reg *reflection.Registry, now time.Time) []Record {
	var out []Record
	for _, d := range reg.All() {
		out = append(out, Record{
			Name:        d.Name(),
			Kind:        KindType,
			Version:     d.Version().String(),
			UserVersion: d.UserVersion(),
			RecordedAt:  now,
		})
	}
	for _, e := range reg.Enums() {
		out = append(out, Record{
			Name:       e.Name(),
			Kind:       KindEnum,
			Version:    e.Version().String(),
			RecordedAt: now,
		})
	}
	return out
}

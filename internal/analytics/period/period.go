// Package period resolves period-partitioned datasets.
//
// A dataset is either a single value or a mapping from period key to value.
// Resolution never fails: an unknown key degrades to the fallback key, and a
// dataset with neither reports absence so callers render an empty section.
package period

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// AllTime is the conventional key of the unfiltered slice.
const AllTime = "all"

// Key describes a selectable period.
type Key struct {
	ID    string `json:"id" toml:"id"`
	Label string `json:"label" toml:"label"`
}

// Keys is the ordered list of known periods.
type Keys []Key

// DefaultKeys returns the periods offered when none are configured.
func DefaultKeys() Keys {
	return Keys{
		{ID: AllTime, Label: "All Time"},
		{ID: "90d", Label: "Last 90 Days"},
		{ID: "30d", Label: "Last 30 Days"},
		{ID: "7d", Label: "Last 7 Days"},
	}
}

// Has reports whether id is a known period.
func (k Keys) Has(id string) bool {
	for _, key := range k {
		if key.ID == id {
			return true
		}
	}
	return false
}

// Label returns the display label for id, or id itself if unknown.
func (k Keys) Label(id string) string {
	for _, key := range k {
		if key.ID == id {
			return key.Label
		}
	}
	return id
}

// Dataset is a value that may or may not be partitioned by period.
type Dataset[T any] struct {
	bare   T
	slices map[string]T
}

// Bare wraps an unpartitioned value.
func Bare[T any](v T) *Dataset[T] {
	return &Dataset[T]{bare: v}
}

// Partitioned wraps a period key to value mapping.
func Partitioned[T any](slices map[string]T) *Dataset[T] {
	if slices == nil {
		slices = map[string]T{}
	}
	return &Dataset[T]{slices: slices}
}

// IsPartitioned reports whether the dataset is keyed by period.
func (d *Dataset[T]) IsPartitioned() bool {
	return d != nil && d.slices != nil
}

// Periods returns the keys present in a partitioned dataset.
func (d *Dataset[T]) Periods() []string {
	if !d.IsPartitioned() {
		return nil
	}
	out := make([]string, 0, len(d.slices))
	for k := range d.slices {
		out = append(out, k)
	}
	return out
}

// Resolve returns the slice of ds for key.
//
// An unpartitioned dataset is returned unchanged whatever the key. For a
// partitioned one the key's slice is returned if present, otherwise the
// fallback slice. The boolean is false only when nothing usable exists.
func Resolve[T any](ds *Dataset[T], key, fallback string) (T, bool) {
	var zero T
	if ds == nil {
		return zero, false
	}
	if !ds.IsPartitioned() {
		return ds.bare, true
	}
	if v, ok := ds.slices[key]; ok {
		return v, true
	}
	if v, ok := ds.slices[fallback]; ok {
		return v, true
	}
	return zero, false
}

// Decode parses raw JSON into a dataset. A JSON object is treated as
// partitioned when it is non-empty and every member name is a known period.
func Decode[T any](raw []byte, keys Keys) (*Dataset[T], error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var members map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &members); err != nil {
			return nil, fmt.Errorf("decode object: %w", err)
		}
		if isPartition(members, keys) {
			slices := make(map[string]T, len(members))
			for k, v := range members {
				var slice T
				if err := json.Unmarshal(v, &slice); err != nil {
					return nil, fmt.Errorf("decode period %q: %w", k, err)
				}
				slices[k] = slice
			}
			return Partitioned(slices), nil
		}
	}

	var v T
	if err := json.Unmarshal(trimmed, &v); err != nil {
		return nil, fmt.Errorf("decode dataset: %w", err)
	}
	return Bare(v), nil
}

func isPartition(members map[string]json.RawMessage, keys Keys) bool {
	if len(members) == 0 {
		return false
	}
	for k := range members {
		if !keys.Has(k) {
			return false
		}
	}
	return true
}

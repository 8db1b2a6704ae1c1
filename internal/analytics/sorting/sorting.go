// Package sorting orders table rows by a selected column with stable,
// suppression-aware comparisons.
package sorting

import (
	"cmp"
	"slices"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Direction is the sort order.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// Flip returns the opposite direction.
func (d Direction) Flip() Direction {
	if d == Asc {
		return Desc
	}
	return Asc
}

// Kind determines how a column compares.
type Kind int

const (
	// Text compares case-folded, locale-aware strings.
	Text Kind = iota
	// Numeric compares values with nil treated as zero.
	Numeric
	// ReliableNumeric compares values but pins rows with too few samples
	// or a nil value below all others in either direction.
	ReliableNumeric
)

// DefaultDirection is ascending for text and descending for magnitudes.
func (k Kind) DefaultDirection() Direction {
	if k == Text {
		return Asc
	}
	return Desc
}

// State is the active sort column and direction.
type State struct {
	Key       string    `json:"key"`
	Direction Direction `json:"direction"`
}

// Field describes one sortable column of row type T.
type Field[T any] struct {
	Key   string
	Label string
	Kind  Kind
	// Text extracts the value of a Text column.
	Text func(T) string
	// Value extracts the value of a numeric column.
	Value func(T) *float64
	// Samples is the sample count gating a ReliableNumeric column.
	Samples func(T) int
}

// Schema is the set of sortable columns for a table.
type Schema[T any] struct {
	Fields    []Field[T]
	Default   State
	Threshold int
}

// Field looks up a column by key.
func (s Schema[T]) Field(key string) (Field[T], bool) {
	for _, f := range s.Fields {
		if f.Key == key {
			return f, true
		}
	}
	return Field[T]{}, false
}

// Normalize replaces an unknown key with the default state and an invalid
// direction with the column's default.
func (s Schema[T]) Normalize(st State) State {
	f, ok := s.Field(st.Key)
	if !ok {
		return s.Default
	}
	if st.Direction != Asc && st.Direction != Desc {
		st.Direction = f.Kind.DefaultDirection()
	}
	return st
}

// Select returns the state after the user picks key: the same key flips
// direction, a new key starts at that column's default direction. Unknown
// keys leave the state unchanged.
func (s Schema[T]) Select(cur State, key string) State {
	f, ok := s.Field(key)
	if !ok {
		return s.Normalize(cur)
	}
	cur = s.Normalize(cur)
	if cur.Key == key {
		return State{Key: key, Direction: cur.Direction.Flip()}
	}
	return State{Key: key, Direction: f.Kind.DefaultDirection()}
}

// Sort returns a stably sorted copy of rows.
func Sort[T any](rows []T, s Schema[T], st State) []T {
	out := slices.Clone(rows)
	st = s.Normalize(st)
	f, ok := s.Field(st.Key)
	if !ok {
		return out
	}

	sign := 1
	if st.Direction == Desc {
		sign = -1
	}

	switch f.Kind {
	case Text:
		// Collators keep internal buffers and cannot be shared across goroutines.
		col := collate.New(language.English, collate.IgnoreCase)
		slices.SortStableFunc(out, func(a, b T) int {
			return sign * col.CompareString(f.Text(a), f.Text(b))
		})
	case Numeric:
		slices.SortStableFunc(out, func(a, b T) int {
			return sign * cmp.Compare(orZero(f.Value(a)), orZero(f.Value(b)))
		})
	case ReliableNumeric:
		reliable := func(row T) bool {
			if f.Value(row) == nil {
				return false
			}
			return f.Samples == nil || f.Samples(row) >= s.Threshold
		}
		slices.SortStableFunc(out, func(a, b T) int {
			ra, rb := reliable(a), reliable(b)
			switch {
			case ra && !rb:
				return -1
			case !ra && rb:
				return 1
			case !ra && !rb:
				return 0
			}
			return sign * cmp.Compare(*f.Value(a), *f.Value(b))
		})
	}
	return out
}

func orZero(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

// Int adapts an int accessor to a numeric column accessor.
func Int[T any](get func(T) int) func(T) *float64 {
	return func(row T) *float64 {
		v := float64(get(row))
		return &v
	}
}

// Float adapts a float64 accessor to a numeric column accessor.
func Float[T any](get func(T) float64) func(T) *float64 {
	return func(row T) *float64 {
		v := get(row)
		return &v
	}
}

// Header describes a sortable column heading: whether it is active and the
// state a click on it produces.
type Header struct {
	Key    string    `json:"key"`
	Label  string    `json:"label"`
	Active Direction `json:"active,omitempty"`
	Next   State     `json:"next"`
}

// Headers returns the column headings for the current state.
func (s Schema[T]) Headers(cur State) []Header {
	cur = s.Normalize(cur)
	out := make([]Header, 0, len(s.Fields))
	for _, f := range s.Fields {
		h := Header{Key: f.Key, Label: f.Label, Next: s.Select(cur, f.Key)}
		if f.Key == cur.Key {
			h.Active = cur.Direction
		}
		out = append(out, h)
	}
	return out
}

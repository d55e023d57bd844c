package date

import (
	"iter"
	"slices"
)

// History is a chronological series of values, at most one per day. It is
// used for daily closing prices.
type History[T float32 | float64] struct {
	days   []Date
	values []T
}

// Len returns the number of points.
func (h *History[T]) Len() int { return len(h.days) }

// Append sets the value on day, overwriting any existing point.
func (h *History[T]) Append(day Date, v T) *History[T] {
	i, found := slices.BinarySearchFunc(h.days, day, compare)
	if found {
		h.values[i] = v
		return h
	}
	h.days = slices.Insert(h.days, i, day)
	h.values = slices.Insert(h.values, i, v)
	return h
}

// Latest returns the last point, or zero values if empty.
func (h *History[T]) Latest() (Date, T) {
	if len(h.days) == 0 {
		var zero T
		return Date{}, zero
	}
	last := len(h.days) - 1
	return h.days[last], h.values[last]
}

// ValueAsOf returns the value on day or, failing that, the most recent value
// before it.
func (h *History[T]) ValueAsOf(day Date) (T, bool) {
	i, found := slices.BinarySearchFunc(h.days, day, compare)
	if found {
		return h.values[i], true
	}
	if i == 0 {
		var zero T
		return zero, false
	}
	return h.values[i-1], true
}

// Points iterates over the series in chronological order.
func (h *History[T]) Points() iter.Seq2[Date, T] {
	return func(yield func(Date, T) bool) {
		for i, d := range h.days {
			if !yield(d, h.values[i]) {
				return
			}
		}
	}
}

// Values returns a copy of the values in chronological order, restricted to
// r.
func (h *History[T]) Values(r Range) []T {
	var out []T
	for d, v := range h.Points() {
		if r.Contains(d) {
			out = append(out, v)
		}
	}
	return out
}

func compare(a, b Date) int { return a.Time().Compare(b.Time()) }

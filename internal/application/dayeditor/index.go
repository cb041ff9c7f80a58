package dayeditor

import "slices"

// Index maps day numbers to the records tagged with that day.
// INVARIANT: the key set is exactly the distinct day numbers of the input;
// days is sorted ascending without duplicates.
type Index[R any] struct {
	groups map[int][]R
	days   []int
}

// GroupByDay partitions records by the day number returned from dayOf.
// Records keep their input order inside each group.
// PRE: dayOf is non-nil
// POST: every record appears in exactly one group; empty input yields an empty index
func GroupByDay[R any](records []R, dayOf func(R) int) Index[R] {
	ix := Index[R]{groups: make(map[int][]R)}
	for _, r := range records {
		d := dayOf(r)
		if _, seen := ix.groups[d]; !seen {
			ix.days = append(ix.days, d)
		}
		ix.groups[d] = append(ix.groups[d], r)
	}
	slices.Sort(ix.days)
	return ix
}

// Days returns the sorted distinct day numbers.
// POST: returned slice is a copy; never nil
func (ix Index[R]) Days() []int {
	out := make([]int, len(ix.days))
	copy(out, ix.days)
	return out
}

// Group returns the records for a day. Days that are not present report ok=false.
func (ix Index[R]) Group(day int) ([]R, bool) {
	g, ok := ix.groups[day]
	return g, ok
}

// Has reports whether day is a key of the index.
func (ix Index[R]) Has(day int) bool {
	_, ok := ix.groups[day]
	return ok
}

// Len returns the number of distinct days.
func (ix Index[R]) Len() int {
	return len(ix.days)
}

// Count returns the number of records across all days.
func (ix Index[R]) Count() int {
	n := 0
	for _, g := range ix.groups {
		n += len(g)
	}
	return n
}

// First returns the lowest day number, or ok=false when the index is empty.
func (ix Index[R]) First() (int, bool) {
	if len(ix.days) == 0 {
		return 0, false
	}
	return ix.days[0], true
}

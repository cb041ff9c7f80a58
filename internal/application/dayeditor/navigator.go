package dayeditor

import (
	"errors"
	"slices"
	"strings"
)

// Direction is a step over the sorted day list.
type Direction int

const (
	Previous Direction = -1
	Next     Direction = 1
)

// ErrInvalidDirection is returned when a direction string is not recognised.
var ErrInvalidDirection = errors.New("direction must be one of: prev, next")

// ParseDirection maps "prev"/"previous" and "next" to a Direction.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "prev", "previous":
		return Previous, nil
	case "next":
		return Next, nil
	}
	return 0, ErrInvalidDirection
}

// Navigator tracks the selected day over a sorted day list.
// INVARIANT: when days is non-empty, pos indexes a member of days; otherwise pos is -1.
type Navigator struct {
	days []int
	pos  int
}

// NewNavigator selects the first day of days.
// PRE: days is sorted ascending without duplicates
func NewNavigator(days []int) Navigator {
	n := Navigator{pos: -1}
	n.Reset(days)
	return n
}

// Selected returns the current day, or ok=false when there are no days.
func (n Navigator) Selected() (int, bool) {
	if n.pos < 0 || n.pos >= len(n.days) {
		return 0, false
	}
	return n.days[n.pos], true
}

// Days returns a copy of the navigable days.
func (n Navigator) Days() []int {
	return slices.Clone(n.days)
}

// Select moves to day.
// POST: selection unchanged and ErrUnknownDay returned when day is not a member
func (n *Navigator) Select(day int) error {
	i, found := slices.BinarySearch(n.days, day)
	if !found {
		return ErrUnknownDay
	}
	n.pos = i
	return nil
}

// CanStep reports whether a step in dir would move the selection.
func (n Navigator) CanStep(dir Direction) bool {
	if _, ok := n.Selected(); !ok {
		return false
	}
	next := n.pos + int(dir)
	return next >= 0 && next < len(n.days)
}

// Step moves one entry in dir. There is no wraparound.
// POST: returns false and leaves the selection unchanged at either boundary
func (n *Navigator) Step(dir Direction) bool {
	if !n.CanStep(dir) {
		return false
	}
	n.pos += int(dir)
	return true
}

// Reset replaces the day list. The current selection survives if it is still
// a member; otherwise the first day is selected, or nothing when days is empty.
func (n *Navigator) Reset(days []int) {
	prev, had := n.Selected()
	n.days = slices.Clone(days)
	if len(n.days) == 0 {
		n.pos = -1
		return
	}
	if had {
		if i, found := slices.BinarySearch(n.days, prev); found {
			n.pos = i
			return
		}
	}
	n.pos = 0
}

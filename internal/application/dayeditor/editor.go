// Package dayeditor implements the day-partitioned plan editor: grouping of
// day-tagged records, navigation over the resulting days and the per-screen
// edit buffer lifecycle (Viewing, Editing, Saving).
package dayeditor

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
)

// State is the edit-buffer state of one editor.
type State int

const (
	Viewing State = iota
	Editing
	Saving
)

// String returns the lowercase state name used in JSON and templates.
func (s State) String() string {
	switch s {
	case Editing:
		return "editing"
	case Saving:
		return "saving"
	default:
		return "viewing"
	}
}

// Editor errors
var (
	ErrUnknownDay     = errors.New("day is not part of this plan")
	ErrNoDays         = errors.New("plan has no days to edit")
	ErrNotEditing     = errors.New("editor is not in edit mode")
	ErrAlreadyEditing = errors.New("editor is already in edit mode")
	ErrSaveInFlight   = errors.New("a save is already in progress")
	ErrRowOutOfRange  = errors.New("row index out of range")
)

// Editor owns the grouped source records of one screen and, while editing,
// a deep copy of the selected day's records.
// INVARIANT: buffer != nil iff state is Editing or Saving
// INVARIANT: while the buffer exists it belongs to bufferDay, which is the selected day
type Editor[R any] struct {
	mu        sync.Mutex
	dayOf     func(R) int
	clone     func(R) R
	index     Index[R]
	nav       Navigator
	state     State
	buffer    []R
	bufferDay int
}

// New builds an editor over records, selecting the first day.
// PRE: dayOf and clone are non-nil; clone returns a copy sharing no mutable state with its input
func New[R any](records []R, dayOf func(R) int, clone func(R) R) *Editor[R] {
	ix := GroupByDay(records, dayOf)
	return &Editor[R]{
		dayOf: dayOf,
		clone: clone,
		index: ix,
		nav:   NewNavigator(ix.Days()),
	}
}

// Refresh replaces the source records, typically after a refetch.
// The selection is kept when the day still exists and reset to the first day otherwise.
// An open buffer is discarded if its day is no longer selected.
func (e *Editor[R]) Refresh(records []R) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.index = GroupByDay(records, e.dayOf)
	e.nav.Reset(e.index.Days())
	if e.buffer != nil {
		if day, ok := e.nav.Selected(); !ok || day != e.bufferDay {
			e.discard()
		}
	}
}

// State returns the current state.
func (e *Editor[R]) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Index returns the grouped source records.
func (e *Editor[R]) Index() Index[R] {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.index
}

// SelectedDay returns the selected day, or ok=false when there are no days.
func (e *Editor[R]) SelectedDay() (int, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.nav.Selected()
}

// SelectDay changes the selected day. Any open buffer is discarded first,
// including when day equals the current selection.
// POST: state is Viewing on success; nothing changes on ErrUnknownDay
func (e *Editor[R]) SelectDay(day int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.index.Has(day) {
		return ErrUnknownDay
	}
	e.discard()
	return e.nav.Select(day)
}

// Step moves the selection to the previous or next day.
// POST: returns false at either boundary, leaving selection and buffer untouched
func (e *Editor[R]) Step(dir Direction) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.nav.CanStep(dir) {
		return false
	}
	e.discard()
	return e.nav.Step(dir)
}

// BeginEdit clones the selected day's records into a fresh buffer.
// PRE: state is Viewing
// POST: state is Editing; mutating the buffer never touches the source index
func (e *Editor[R]) BeginEdit() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != Viewing {
		return ErrAlreadyEditing
	}
	day, ok := e.nav.Selected()
	if !ok {
		return ErrNoDays
	}
	group, _ := e.index.Group(day)
	buf := make([]R, len(group))
	for i, r := range group {
		buf[i] = e.clone(r)
	}
	e.buffer = buf
	e.bufferDay = day
	e.state = Editing
	return nil
}

// Cancel discards the buffer without any call to the store.
// PRE: state is Editing
func (e *Editor[R]) Cancel() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	switch e.state {
	case Saving:
		return ErrSaveInFlight
	case Viewing:
		return ErrNotEditing
	}
	e.discard()
	return nil
}

// Update replaces one buffered row with fn(row). Only the targeted row is
// replaced; sibling rows keep their identity.
// PRE: state is Editing or Saving; 0 <= row < len(buffer)
func (e *Editor[R]) Update(row int, fn func(R) R) error {
	return e.Apply(row, func(r R) (R, error) { return fn(r), nil })
}

// Apply is Update for mutations that can fail. On error the buffer is left unchanged.
func (e *Editor[R]) Apply(row int, fn func(R) (R, error)) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.buffer == nil {
		return ErrNotEditing
	}
	if row < 0 || row >= len(e.buffer) {
		return ErrRowOutOfRange
	}
	updated, err := fn(e.buffer[row])
	if err != nil {
		return err
	}
	next := slices.Clone(e.buffer)
	next[row] = updated
	e.buffer = next
	return nil
}

// Append adds a row to the end of the buffer.
// PRE: state is Editing or Saving
func (e *Editor[R]) Append(r R) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.buffer == nil {
		return ErrNotEditing
	}
	next := make([]R, len(e.buffer), len(e.buffer)+1)
	copy(next, e.buffer)
	e.buffer = append(next, r)
	return nil
}

// Remove drops one row from the buffer.
// PRE: state is Editing or Saving; 0 <= row < len(buffer)
func (e *Editor[R]) Remove(row int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.buffer == nil {
		return ErrNotEditing
	}
	if row < 0 || row >= len(e.buffer) {
		return ErrRowOutOfRange
	}
	next := make([]R, 0, len(e.buffer)-1)
	next = append(next, e.buffer[:row]...)
	next = append(next, e.buffer[row+1:]...)
	e.buffer = next
	return nil
}

// Buffer returns the buffered rows and whether a buffer exists.
// The returned slice is a shallow copy.
func (e *Editor[R]) Buffer() ([]R, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.buffer == nil {
		return nil, false
	}
	return slices.Clone(e.buffer), true
}

// View returns the rows to render for the selected day: the buffer while one
// exists, the source group otherwise.
func (e *Editor[R]) View() (day int, rows []R, ok bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.view()
}

func (e *Editor[R]) view() (int, []R, bool) {
	day, ok := e.nav.Selected()
	if !ok {
		return 0, nil, false
	}
	if e.buffer != nil {
		return day, slices.Clone(e.buffer), true
	}
	group, _ := e.index.Group(day)
	return day, slices.Clone(group), true
}

// BeginSave moves Editing to Saving and returns a deep copy of the buffer as
// the payload for the update call.
// POST: a second BeginSave before FinishSave returns ErrSaveInFlight
func (e *Editor[R]) BeginSave() (int, []R, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	switch e.state {
	case Saving:
		return 0, nil, ErrSaveInFlight
	case Viewing:
		return 0, nil, ErrNotEditing
	}
	payload := make([]R, len(e.buffer))
	for i, r := range e.buffer {
		payload[i] = e.clone(r)
	}
	e.state = Saving
	return e.bufferDay, payload, nil
}

// FinishSave settles a save started by BeginSave. On success the buffer is
// cleared regardless of the response; on failure the editor returns to
// Editing with the buffer intact so the user can retry.
// It is a no-op when the save was abandoned by a day change.
func (e *Editor[R]) FinishSave(err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != Saving {
		return
	}
	if err != nil {
		e.state = Editing
		return
	}
	e.discard()
}

// Save runs a full save: BeginSave, update, FinishSave and, on success,
// refetch followed by Refresh. The buffer is never promoted to source.
func (e *Editor[R]) Save(ctx context.Context, update func(ctx context.Context, day int, rows []R) error, refetch func(ctx context.Context) ([]R, error)) error {
	day, rows, err := e.BeginSave()
	if err != nil {
		return err
	}
	if err := update(ctx, day, rows); err != nil {
		e.FinishSave(err)
		return err
	}
	e.FinishSave(nil)

	records, err := refetch(ctx)
	if err != nil {
		return fmt.Errorf("refetch after save: %w", err)
	}
	e.Refresh(records)
	return nil
}

// Snapshot is a read-only picture of the editor for rendering.
type Snapshot[R any] struct {
	State       string `json:"state"`
	Days        []int  `json:"days"`
	SelectedDay int    `json:"selectedDay"`
	HasDays     bool   `json:"hasDays"`
	CanPrev     bool   `json:"canPrev"`
	CanNext     bool   `json:"canNext"`
	Rows        []R    `json:"rows"`
}

// Snapshot captures state, navigation and the rows to render in one lock.
func (e *Editor[R]) Snapshot() Snapshot[R] {
	e.mu.Lock()
	defer e.mu.Unlock()
	day, rows, ok := e.view()
	if rows == nil {
		rows = []R{}
	}
	return Snapshot[R]{
		State:       e.state.String(),
		Days:        e.index.Days(),
		SelectedDay: day,
		HasDays:     ok,
		CanPrev:     e.nav.CanStep(Previous),
		CanNext:     e.nav.CanStep(Next),
		Rows:        rows,
	}
}

// discard drops the buffer and returns to Viewing. Caller holds mu.
func (e *Editor[R]) discard() {
	e.buffer = nil
	e.bufferDay = 0
	e.state = Viewing
}

// Package scene holds the scene edit store: the placed objects, the
// selection and the undo/redo history. Every structural edit goes through
// a Store; renderers and panels only read from it.
package scene

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sync"

	"github.com/roomkit/sceneedit/pkg/core"
	"go.opentelemetry.io/otel/metric"
)

// Store is the single source of truth for one editing session.
// It is safe for concurrent use.
type Store struct {
	mu       sync.RWMutex
	objects  []core.PlacedObject
	selected string
	history  recorder
	mode     Mode
	limit    int

	log     *slog.Logger
	meter   metric.Meter
	metrics *metrics

	lmu       sync.Mutex
	listeners []listenerEntry
	nextLID   int
}

type listenerEntry struct {
	id int
	fn Listener
}

// Option configures a Store.
type Option func(*Store)

// WithHistory sets the history mode and the maximum number of undo steps.
// A limit of 0 keeps every step.
func WithHistory(mode Mode, limit int) Option {
	return func(s *Store) {
		s.mode = mode
		s.limit = limit
	}
}

// WithLogger sets the logger used for debug output.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		s.log = l
	}
}

// WithMeter overrides the global OTel meter.
func WithMeter(m metric.Meter) Option {
	return func(s *Store) {
		s.meter = m
	}
}

// New creates an empty store.
func New(opts ...Option) (*Store, error) {
	s := &Store{
		mode:  ModeCommand,
		limit: DefaultHistoryLimit,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.log == nil {
		s.log = slog.Default()
	}
	if s.meter == nil {
		s.meter = meter()
	}

	var err error
	s.history, err = newRecorder(s.mode, s.limit)
	if err != nil {
		return nil, err
	}

	s.metrics, err = newMetrics(s.meter, s)
	if err != nil {
		return nil, err
	}

	return s, nil
}

// Mode returns the history mode.
func (s *Store) Mode() Mode {
	return s.mode
}

// HistoryLimit returns the maximum number of undo steps, 0 if unbounded.
func (s *Store) HistoryLimit() int {
	return s.limit
}

// AddObject appends obj to the scene.
func (s *Store) AddObject(obj core.PlacedObject) error {
	if err := validate(obj); err != nil {
		return err
	}
	obj = obj.Clone()

	return s.mutate(func() (Change, error) {
		if indexOf(s.objects, obj.ID) >= 0 {
			return Change{}, fmt.Errorf("%w: %s", ErrDuplicateID, obj.ID)
		}
		return s.commit(addCommand{obj: obj}, ChangeAdded, obj)
	})
}

// UpdateObject merges patch into the object with the given id.
// A missing id is a no-op and returns ErrNotFound. A patch that leaves a
// non-finite position or rotation returns ErrInvalidObject.
func (s *Store) UpdateObject(id string, patch core.Patch) error {
	return s.mutate(func() (Change, error) {
		i := indexOf(s.objects, id)
		if i < 0 {
			return Change{}, fmt.Errorf("update %s: %w", id, ErrNotFound)
		}
		before := s.objects[i]
		after := patch.Apply(before)
		if err := validate(after); err != nil {
			return Change{}, fmt.Errorf("update %s: %w", id, err)
		}
		return s.commit(updateCommand{before: before, after: after}, ChangeUpdated, after)
	})
}

// RemoveObject deletes the object with the given id and clears the
// selection if it pointed at it. A missing id is a no-op and returns ErrNotFound.
func (s *Store) RemoveObject(id string) error {
	return s.mutate(func() (Change, error) {
		i := indexOf(s.objects, id)
		if i < 0 {
			return Change{}, fmt.Errorf("remove %s: %w", id, ErrNotFound)
		}
		obj := s.objects[i]
		ch, err := s.commit(removeCommand{obj: obj, index: i}, ChangeRemoved, obj)
		if err != nil {
			return Change{}, err
		}
		if s.selected == id {
			s.selected = ""
		}
		return ch, nil
	})
}

// Select sets the selected object. An empty id clears the selection.
// Selection is not recorded in history.
func (s *Store) Select(id string) error {
	return s.mutate(func() (Change, error) {
		if id != "" && indexOf(s.objects, id) < 0 {
			return Change{}, fmt.Errorf("select %s: %w", id, ErrNotFound)
		}
		s.selected = id
		return s.change(ChangeSelected, id, core.PlacedObject{}), nil
	})
}

// Undo reverts the most recent recorded edit and clears the selection.
// It reports false and does nothing if there is nothing to undo.
func (s *Store) Undo() bool {
	return s.step(ChangeUndone, s.history.undo, s.metrics.undos)
}

// Redo re-applies the most recently undone edit and clears the selection.
// It reports false and does nothing if there is nothing to redo.
func (s *Store) Redo() bool {
	return s.step(ChangeRedone, s.history.redo, s.metrics.redos)
}

func (s *Store) step(kind ChangeKind, move func([]core.PlacedObject) ([]core.PlacedObject, bool), counter metric.Int64Counter) bool {
	applied := false
	_ = s.mutate(func() (Change, error) {
		restored, ok := move(s.objects)
		if !ok {
			return Change{}, errNothingToDo
		}
		s.objects = restored
		s.selected = ""
		applied = true
		return s.change(kind, "", core.PlacedObject{}), nil
	})
	if applied {
		counter.Add(context.Background(), 1)
	}
	return applied
}

// Objects returns a copy of the placed objects in insertion order.
func (s *Store) Objects() []core.PlacedObject {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneAll(s.objects)
}

// Object looks up an object by id.
func (s *Store) Object(id string) (core.PlacedObject, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := indexOf(s.objects, id); i >= 0 {
		return s.objects[i].Clone(), true
	}
	return core.PlacedObject{}, false
}

// Len returns the number of placed objects.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.objects)
}

// SelectedID returns the selected object id, or "" if nothing is selected.
func (s *Store) SelectedID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selected
}

// Selected returns the selected object.
func (s *Store) Selected() (core.PlacedObject, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.selected == "" {
		return core.PlacedObject{}, false
	}
	if i := indexOf(s.objects, s.selected); i >= 0 {
		return s.objects[i].Clone(), true
	}
	return core.PlacedObject{}, false
}

// Snapshot returns a copy of the whole scene.
func (s *Store) Snapshot() core.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return core.Snapshot{
		Objects:    cloneAll(s.objects),
		SelectedID: s.selected,
	}
}

// CanUndo reports whether Undo would change anything.
func (s *Store) CanUndo() bool {
	u, _ := s.HistoryDepth()
	return u > 0
}

// CanRedo reports whether Redo would change anything.
func (s *Store) CanRedo() bool {
	_, r := s.HistoryDepth()
	return r > 0
}

// HistoryDepth returns the number of undo and redo steps available.
func (s *Store) HistoryDepth() (undo, redo int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.history.depth()
}

// Subscribe registers fn to be called after every change. Listeners run
// outside the store lock, in registration order, and may read the store.
// The returned function removes the listener.
func (s *Store) Subscribe(fn Listener) (cancel func()) {
	s.lmu.Lock()
	defer s.lmu.Unlock()

	s.nextLID++
	id := s.nextLID
	s.listeners = append(s.listeners, listenerEntry{id: id, fn: fn})

	return func() {
		s.lmu.Lock()
		defer s.lmu.Unlock()
		for i, l := range s.listeners {
			if l.id == id {
				s.listeners = append(s.listeners[:i:i], s.listeners[i+1:]...)
				return
			}
		}
	}
}

// mutate runs fn under the write lock and notifies listeners on success.
func (s *Store) mutate(fn func() (Change, error)) error {
	s.mu.Lock()
	ch, err := fn()
	s.mu.Unlock()
	if err != nil {
		return err
	}

	s.log.Debug("scene changed", "kind", ch.Kind, "id", ch.ID, "undo", ch.UndoDepth, "redo", ch.RedoDepth)
	s.emit(ch)
	return nil
}

// commit applies cmd to the object set and records it. Caller holds mu.
func (s *Store) commit(cmd command, kind ChangeKind, obj core.PlacedObject) (Change, error) {
	before := s.objects
	after := cmd.apply(before)
	if err := s.history.record(before, after, cmd); err != nil {
		return Change{}, fmt.Errorf("recording %s %s: %w", kind, obj.ID, err)
	}
	s.objects = after
	s.metrics.edit(kind)
	return s.change(kind, obj.ID, obj.Clone()), nil
}

// change builds a Change with the current history depth. Caller holds mu.
func (s *Store) change(kind ChangeKind, id string, obj core.PlacedObject) Change {
	u, r := s.history.depth()
	return Change{Kind: kind, ID: id, Object: obj, UndoDepth: u, RedoDepth: r}
}

func (s *Store) emit(ch Change) {
	s.lmu.Lock()
	listeners := make([]listenerEntry, len(s.listeners))
	copy(listeners, s.listeners)
	s.lmu.Unlock()

	for _, l := range listeners {
		l.fn(ch)
	}
}

// validate rejects objects whose geometry cannot be placed or recorded.
func validate(obj core.PlacedObject) error {
	switch {
	case obj.ID == "":
		return fmt.Errorf("%w: empty id", ErrInvalidObject)
	case !obj.Size.Valid():
		return fmt.Errorf("%w: %s: size %v", ErrInvalidObject, obj.ID, obj.Size)
	case !obj.Position.Valid():
		return fmt.Errorf("%w: %s: position %v", ErrInvalidObject, obj.ID, obj.Position)
	case math.IsNaN(obj.Rotation) || math.IsInf(obj.Rotation, 0):
		return fmt.Errorf("%w: %s: rotation %v", ErrInvalidObject, obj.ID, obj.Rotation)
	}
	return nil
}

func cloneAll(objs []core.PlacedObject) []core.PlacedObject {
	out := make([]core.PlacedObject, len(objs))
	for i, o := range objs {
		out[i] = o.Clone()
	}
	return out
}

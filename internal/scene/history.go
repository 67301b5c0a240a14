package scene

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/roomkit/sceneedit/internal/history"
	"github.com/roomkit/sceneedit/pkg/core"
)

// Mode selects how edits are recorded for undo.
type Mode string

const (
	// ModeCommand records each edit as a reversible command.
	ModeCommand Mode = "command"
	// ModeSnapshot records a serialized copy of the scene taken before each edit.
	ModeSnapshot Mode = "snapshot"
	// ModeLagged records a serialized copy taken after each edit, so undo
	// restores the state as of the previous edit rather than before the current one.
	ModeLagged Mode = "lagged"
)

// DefaultHistoryLimit is the number of undo steps kept when none is configured.
const DefaultHistoryLimit = 100

// ParseMode converts a configuration string into a Mode.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case ModeCommand, ModeSnapshot, ModeLagged:
		return m, nil
	case "":
		return ModeCommand, nil
	default:
		return "", fmt.Errorf("unknown history mode: %q", s)
	}
}

// recorder keeps the undo and redo history of the object set.
type recorder interface {
	// record is called for every edit with the object set before and after it.
	record(before, after []core.PlacedObject, cmd command) error
	undo(current []core.PlacedObject) ([]core.PlacedObject, bool)
	redo(current []core.PlacedObject) ([]core.PlacedObject, bool)
	depth() (undo, redo int)
}

func newRecorder(mode Mode, limit int) (recorder, error) {
	switch mode {
	case ModeCommand:
		return &commandRecorder{
			undos: history.NewStack[command](limit),
			redos: history.NewStack[command](limit),
		}, nil
	case ModeSnapshot, ModeLagged:
		return &snapshotRecorder{
			lagged: mode == ModeLagged,
			undos:  history.NewStack[[]byte](limit),
			redos:  history.NewStack[[]byte](limit),
		}, nil
	default:
		return nil, fmt.Errorf("unknown history mode: %q", mode)
	}
}

type commandRecorder struct {
	undos *history.Stack[command]
	redos *history.Stack[command]
}

func (r *commandRecorder) record(_, _ []core.PlacedObject, cmd command) error {
	r.undos.Push(cmd)
	r.redos.Clear()
	return nil
}

func (r *commandRecorder) undo(current []core.PlacedObject) ([]core.PlacedObject, bool) {
	cmd, ok := r.undos.Pop()
	if !ok {
		return current, false
	}
	r.redos.Push(cmd)
	return cmd.revert(current), true
}

func (r *commandRecorder) redo(current []core.PlacedObject) ([]core.PlacedObject, bool) {
	cmd, ok := r.redos.Pop()
	if !ok {
		return current, false
	}
	r.undos.Push(cmd)
	return cmd.apply(current), true
}

func (r *commandRecorder) depth() (int, int) {
	return r.undos.Len(), r.redos.Len()
}

// snapshotRecorder stores whole-scene JSON snapshots.
type snapshotRecorder struct {
	lagged bool
	undos  *history.Stack[[]byte]
	redos  *history.Stack[[]byte]
}

// record refuses the edit unless both states encode, so a committed state
// can always be restored and saved again.
func (r *snapshotRecorder) record(before, after []core.PlacedObject, _ command) error {
	prev, err := encodeObjects(before)
	if err != nil {
		return err
	}
	next, err := encodeObjects(after)
	if err != nil {
		return err
	}

	if r.lagged {
		r.undos.Push(next)
	} else {
		r.undos.Push(prev)
	}
	r.redos.Clear()
	return nil
}

func (r *snapshotRecorder) undo(current []core.PlacedObject) ([]core.PlacedObject, bool) {
	return r.swap(r.undos, r.redos, current)
}

func (r *snapshotRecorder) redo(current []core.PlacedObject) ([]core.PlacedObject, bool) {
	return r.swap(r.redos, r.undos, current)
}

// swap pops a snapshot from src, saves current onto dst and returns the popped state.
func (r *snapshotRecorder) swap(src, dst *history.Stack[[]byte], current []core.PlacedObject) ([]core.PlacedObject, bool) {
	data, ok := src.Peek()
	if !ok {
		return current, false
	}
	restored, err := decodeObjects(data)
	if err != nil {
		return current, false
	}
	saved, err := encodeObjects(current)
	if err != nil {
		return current, false
	}
	src.Pop()
	dst.Push(saved)
	return restored, true
}

func (r *snapshotRecorder) depth() (int, int) {
	return r.undos.Len(), r.redos.Len()
}

func encodeObjects(objs []core.PlacedObject) ([]byte, error) {
	if objs == nil {
		objs = []core.PlacedObject{}
	}
	data, err := json.Marshal(objs)
	if err != nil {
		return nil, fmt.Errorf("encoding snapshot: %w", err)
	}
	return data, nil
}

func decodeObjects(data []byte) ([]core.PlacedObject, error) {
	var objs []core.PlacedObject
	if err := json.Unmarshal(data, &objs); err != nil {
		return nil, fmt.Errorf("decoding snapshot: %w", err)
	}
	return objs, nil
}

package scene

import "github.com/roomkit/sceneedit/pkg/core"

// ChangeKind identifies what happened to the scene.
type ChangeKind string

const (
	ChangeAdded    ChangeKind = "added"
	ChangeUpdated  ChangeKind = "updated"
	ChangeRemoved  ChangeKind = "removed"
	ChangeSelected ChangeKind = "selected"
	ChangeUndone   ChangeKind = "undone"
	ChangeRedone   ChangeKind = "redone"
)

// Change is delivered to listeners after every state change.
// Object holds the object after the change, or the removed object for
// ChangeRemoved. It is zero for selection, undo and redo.
type Change struct {
	Kind      ChangeKind
	ID        string
	Object    core.PlacedObject
	UndoDepth int
	RedoDepth int
}

// Listener receives scene changes.
type Listener func(Change)

package scene

import "errors"

var (
	// ErrNotFound is returned when an operation names an object that is not in the scene.
	// The operation is a no-op.
	ErrNotFound = errors.New("object not found")

	// ErrDuplicateID is returned by AddObject when the id is already in the scene.
	ErrDuplicateID = errors.New("duplicate object id")

	// ErrInvalidObject is returned by AddObject for an object without an id or with a non-positive size.
	ErrInvalidObject = errors.New("invalid object")

	errNothingToDo = errors.New("nothing to do")
)

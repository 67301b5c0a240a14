package scene

import "github.com/roomkit/sceneedit/pkg/core"

// command is one reversible edit of the object set.
// apply and revert never modify the slice they are given.
type command interface {
	apply(objs []core.PlacedObject) []core.PlacedObject
	revert(objs []core.PlacedObject) []core.PlacedObject
}

type addCommand struct {
	obj core.PlacedObject
}

func (c addCommand) apply(objs []core.PlacedObject) []core.PlacedObject {
	out := make([]core.PlacedObject, len(objs), len(objs)+1)
	copy(out, objs)
	return append(out, c.obj.Clone())
}

func (c addCommand) revert(objs []core.PlacedObject) []core.PlacedObject {
	return without(objs, c.obj.ID)
}

type updateCommand struct {
	before core.PlacedObject
	after  core.PlacedObject
}

func (c updateCommand) apply(objs []core.PlacedObject) []core.PlacedObject {
	return replaced(objs, c.after)
}

func (c updateCommand) revert(objs []core.PlacedObject) []core.PlacedObject {
	return replaced(objs, c.before)
}

type removeCommand struct {
	obj   core.PlacedObject
	index int
}

func (c removeCommand) apply(objs []core.PlacedObject) []core.PlacedObject {
	return without(objs, c.obj.ID)
}

func (c removeCommand) revert(objs []core.PlacedObject) []core.PlacedObject {
	idx := min(max(c.index, 0), len(objs))
	out := make([]core.PlacedObject, 0, len(objs)+1)
	out = append(out, objs[:idx]...)
	out = append(out, c.obj.Clone())
	return append(out, objs[idx:]...)
}

func indexOf(objs []core.PlacedObject, id string) int {
	for i := range objs {
		if objs[i].ID == id {
			return i
		}
	}
	return -1
}

func without(objs []core.PlacedObject, id string) []core.PlacedObject {
	out := make([]core.PlacedObject, 0, len(objs))
	for _, o := range objs {
		if o.ID != id {
			out = append(out, o)
		}
	}
	return out
}

func replaced(objs []core.PlacedObject, obj core.PlacedObject) []core.PlacedObject {
	out := make([]core.PlacedObject, len(objs))
	copy(out, objs)
	if i := indexOf(out, obj.ID); i >= 0 {
		out[i] = obj.Clone()
	}
	return out
}

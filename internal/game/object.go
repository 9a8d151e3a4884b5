// Package game implements the falling-block game: the object simulator, the pop
// animation and the session lifecycle around them.
package game

import (
	"time"

	"github.com/go-gl/mathgl/mgl64"
)

// ObjectID identifies a game object for the lifetime of a session. The render layer
// keys its visual nodes by ObjectID.
type ObjectID uint64

// Kind is the kind of a falling object.
type Kind int

const (
	// Benign objects must be caught.
	Benign Kind = iota
	// Hazard objects must be avoided.
	Hazard
)

func (k Kind) String() string {
	switch k {
	case Benign:
		return "benign"
	case Hazard:
		return "hazard"
	default:
		return "unknown"
	}
}

// MarshalText encodes the kind by name for cue payloads.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Object is a falling block.
type Object struct {
	ID        ObjectID
	Kind      Kind
	Position  mgl64.Vec3
	SpawnedAt time.Time
}

// arena holds objects keyed by id and remembers spawn order.
type arena struct {
	byID  map[ObjectID]*Object
	order []ObjectID
}

func newArena() arena {
	return arena{byID: make(map[ObjectID]*Object)}
}

func (a *arena) add(obj Object) *Object {
	o := obj
	a.byID[o.ID] = &o
	a.order = append(a.order, o.ID)
	return &o
}

func (a *arena) remove(id ObjectID) {
	if _, ok := a.byID[id]; !ok {
		return
	}
	delete(a.byID, id)
	for i, v := range a.order {
		if v == id {
			a.order = append(a.order[:i], a.order[i+1:]...)
			break
		}
	}
}

func (a *arena) get(id ObjectID) (*Object, bool) {
	o, ok := a.byID[id]
	return o, ok
}

func (a *arena) len() int {
	return len(a.order)
}

// snapshot returns copies of the objects in spawn order.
func (a *arena) snapshot() []Object {
	out := make([]Object, 0, len(a.order))
	for _, id := range a.order {
		out = append(out, *a.byID[id])
	}
	return out
}

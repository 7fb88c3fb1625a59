package viewfield

import (
	"fmt"
	"io"
	"slices"
)

// Key identifies an entity whose viewfield is being rendered.
type Key struct {
	Type string
	ID   string
}

func (k Key) String() string {
	return k.Type + "/" + k.ID
}

// A Guard tracks the entities being rendered in one render pass and rejects
// rendering an entity that is already active.
//
// The zero Guard is empty and ready to use. A Guard is not safe for
// concurrent use; concurrent render passes each use their own.
type Guard struct {
	frames []Key
	active map[Key]bool
}

// Enter marks the entity active and reports true, or reports false without
// changing anything if it is already active.
func (g *Guard) Enter(typ, id string) bool {
	k := Key{Type: typ, ID: id}
	if g.active[k] {
		return false
	}
	if g.active == nil {
		g.active = make(map[Key]bool)
	}
	g.active[k] = true
	g.frames = append(g.frames, k)
	return true
}

// Exit clears the active mark of the entity. It is a no-op if the entity is
// not active.
func (g *Guard) Exit(typ, id string) {
	k := Key{Type: typ, ID: id}
	if !g.active[k] {
		return
	}
	delete(g.active, k)
	if i := slices.Index(g.frames, k); i >= 0 {
		g.frames = slices.Delete(g.frames, i, i+1)
	}
}

// Do calls fn with the entity active and clears the mark when fn returns or
// panics. If the entity is already active, fn is not called and Do reports
// false.
func (g *Guard) Do(typ, id string, fn func() error) (entered bool, err error) {
	if !g.Enter(typ, id) {
		return false, nil
	}
	defer g.Exit(typ, id)
	return true, fn()
}

// Active reports whether the entity is active.
func (g *Guard) Active(typ, id string) bool {
	return g.active[Key{Type: typ, ID: id}]
}

// Frames returns the active entities, outermost first.
func (g *Guard) Frames() []Key {
	return slices.Clone(g.frames)
}

// Reset clears every active mark.
func (g *Guard) Reset() {
	clear(g.active)
	g.frames = g.frames[:0]
}

// writeFrames writes the chain of active entities that ends in next,
// as in "node/1 -> node/2 -> node/1".
func writeFrames(w io.Writer, frames []Key, next Key) error {
	for _, k := range frames {
		if _, err := fmt.Fprintf(w, "%s -> ", k); err != nil {
			return err
		}
	}
	_, err := fmt.Fprint(w, next)
	return err
}

// Pass is the state of one top-level render. Nested renders started while
// rendering share the pass.
type Pass struct {
	Guard Guard
}

// NewPass returns a pass with an empty guard.
func NewPass() *Pass {
	return &Pass{}
}

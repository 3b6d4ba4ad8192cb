package editing

import "github.com/colonyops/gridedit/internal/core/editmodel"

type waitKind int

const (
	waitCell waitKind = iota
	waitEditor
)

type contKey struct {
	pos  editmodel.Position
	kind waitKind
}

// continuations queues work that must wait for a cell or editor to
// attach. Each queue is drained exactly once.
type continuations struct {
	pending map[contKey][]func()
}

func (c *continuations) add(pos editmodel.Position, kind waitKind, fn func()) {
	if c.pending == nil {
		c.pending = make(map[contKey][]func())
	}
	k := contKey{pos: pos, kind: kind}
	c.pending[k] = append(c.pending[k], fn)
}

func (c *continuations) drain(pos editmodel.Position, kind waitKind) {
	k := contKey{pos: pos, kind: kind}
	fns := c.pending[k]
	delete(c.pending, k)
	for _, fn := range fns {
		fn()
	}
}

func (c *continuations) drop(pos editmodel.Position) {
	delete(c.pending, contKey{pos: pos, kind: waitCell})
	delete(c.pending, contKey{pos: pos, kind: waitEditor})
}

func (c *continuations) prune(stale func(editmodel.Position) bool) {
	for k := range c.pending {
		if stale(k.pos) {
			delete(c.pending, k)
		}
	}
}

func (c *continuations) len() int {
	n := 0
	for _, fns := range c.pending {
		n += len(fns)
	}
	return n
}

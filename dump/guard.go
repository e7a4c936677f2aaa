package dump

import "github.com/chazu/vmdump/value"

// CycleGuard tracks the containers currently being dumped. Arrays use a
// visiting counter, objects a one-shot flag. Every successful Enter must be
// paired with the matching Exit.
type CycleGuard struct {
	arrays  map[*value.Array]int
	objects map[*value.Object]bool
}

// NewCycleGuard creates an empty guard.
func NewCycleGuard() *CycleGuard {
	return &CycleGuard{
		arrays:  make(map[*value.Array]int),
		objects: make(map[*value.Object]bool),
	}
}

// EnterArray marks a as visited. It reports false, leaving the guard
// unchanged, when a is already on the current path.
func (g *CycleGuard) EnterArray(a *value.Array) bool {
	g.arrays[a]++
	if g.arrays[a] > 1 {
		g.ExitArray(a)
		return false
	}
	return true
}

// ExitArray undoes one EnterArray.
func (g *CycleGuard) ExitArray(a *value.Array) {
	if n := g.arrays[a]; n > 1 {
		g.arrays[a] = n - 1
		return
	}
	delete(g.arrays, a)
}

// EnterObject marks o as visited. It reports false when o is already on the
// current path.
func (g *CycleGuard) EnterObject(o *value.Object) bool {
	if g.objects[o] {
		return false
	}
	g.objects[o] = true
	return true
}

// ExitObject clears the flag set by EnterObject.
func (g *CycleGuard) ExitObject(o *value.Object) {
	delete(g.objects, o)
}

// Empty reports whether nothing is being visited.
func (g *CycleGuard) Empty() bool {
	return len(g.arrays) == 0 && len(g.objects) == 0
}

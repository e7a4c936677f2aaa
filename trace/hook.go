// Package trace observes instruction execution.
//
// A HookPoint is the place an interpreter loop reports each executed
// instruction. Hooks are installed with Install and removed by closing the
// returned Installation; nested installations stack, and closing one
// restores whatever was installed before it.
package trace

import (
	"errors"
	"sync"

	"github.com/chazu/vmdump/bytecode"
)

// ErrClosed is returned when an Installation is closed twice.
var ErrClosed = errors.New("trace: installation already closed")

// Event describes one executed instruction.
type Event struct {
	Function *bytecode.Function // nil for top-level code
	Program  *bytecode.Program
	Index    int
}

// Instruction returns the executed instruction.
func (e Event) Instruction() bytecode.Instruction {
	return e.Program.Instructions[e.Index]
}

// Hook receives execution events.
type Hook func(Event)

// HookPoint dispatches events to the most recently installed hook.
type HookPoint struct {
	mu    sync.Mutex
	stack []*Installation
}

// Installation owns one installed hook.
type Installation struct {
	point *HookPoint
	hook  Hook
	once  sync.Once
}

// Install makes h the active hook until the returned Installation is closed.
func (p *HookPoint) Install(h Hook) *Installation {
	inst := &Installation{point: p, hook: h}
	p.mu.Lock()
	p.stack = append(p.stack, inst)
	p.mu.Unlock()
	return inst
}

// Active reports whether any hook is installed.
func (p *HookPoint) Active() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.stack) > 0
}

// Fire delivers ev to the active hook, if any. The hook runs without the
// lock held, so it may install or close hooks itself.
func (p *HookPoint) Fire(ev Event) {
	p.mu.Lock()
	var h Hook
	if n := len(p.stack); n > 0 {
		h = p.stack[n-1].hook
	}
	p.mu.Unlock()
	if h != nil {
		h(ev)
	}
}

// Close uninstalls the hook. When it is the active hook, the one installed
// before it becomes active again. Closing twice returns ErrClosed.
func (i *Installation) Close() error {
	err := ErrClosed
	i.once.Do(func() {
		err = nil
		p := i.point
		p.mu.Lock()
		defer p.mu.Unlock()
		for j := len(p.stack) - 1; j >= 0; j-- {
			if p.stack[j] == i {
				p.stack = append(p.stack[:j], p.stack[j+1:]...)
				break
			}
		}
	})
	return err
}

// Chain returns a hook that calls each non-nil hook in order.
func Chain(hooks ...Hook) Hook {
	var live []Hook
	for _, h := range hooks {
		if h != nil {
			live = append(live, h)
		}
	}
	return func(ev Event) {
		for _, h := range live {
			h(ev)
		}
	}
}

// Replay fires one event per recorded instruction index. Indices outside the
// program are skipped.
func (p *HookPoint) Replay(fn *bytecode.Function, prog *bytecode.Program, pcs []int) int {
	fired := 0
	for _, pc := range pcs {
		if prog == nil || pc < 0 || pc >= len(prog.Instructions) {
			continue
		}
		p.Fire(Event{Function: fn, Program: prog, Index: pc})
		fired++
	}
	return fired
}

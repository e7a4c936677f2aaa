package trace

import (
	"fmt"
	"io"
	"sync"

	"github.com/chazu/vmdump/bytecode"
	"github.com/chazu/vmdump/dump"
)

// Tracer writes a disassembled row for every executed instruction. A
// header line is written whenever execution moves to another program.
type Tracer struct {
	mu   sync.Mutex
	w    io.Writer
	d    *dump.Dumper
	last *bytecode.Program
	err  error
}

// NewTracer creates a text tracer writing to w with the given layout.
func NewTracer(w io.Writer, opts dump.Options) *Tracer {
	return &Tracer{w: w, d: dump.New(w, opts)}
}

// Hook is the tracer's Hook.
func (t *Tracer) Hook(ev Event) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.err != nil || ev.Program == nil {
		return
	}
	if ev.Program != t.last {
		name := "main"
		if ev.Function != nil {
			name = ev.Function.QualifiedName()
		}
		if _, err := fmt.Fprintf(t.w, "trace(\"%s\") addr(0x%x)\n", name, ev.Program.Addr); err != nil {
			t.err = err
			return
		}
		t.last = ev.Program
	}
	t.err = t.d.Instruction(ev.Program, ev.Index)
}

// Err returns the first write error. Nothing is written after it.
func (t *Tracer) Err() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.err
}

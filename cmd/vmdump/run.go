package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/chazu/vmdump/dump"
	"github.com/chazu/vmdump/manifest"
	"github.com/chazu/vmdump/snapshot"
	"github.com/chazu/vmdump/trace"
)

// selection is the set of dumps requested on the command line.
type selection struct {
	values   bool
	locals   bool
	args     bool
	symbols  bool
	statics  bool
	literals bool
	opcodes  bool
	function string
	class    string
	method   string
	magic    bool
}

func (s selection) empty() bool {
	return !s.values && !s.locals && !s.args && !s.symbols && !s.statics &&
		!s.literals && !s.opcodes && s.function == "" && s.class == "" && s.method == ""
}

// withDefault returns s, or values plus opcodes when nothing was selected.
func (s selection) withDefault() selection {
	if s.empty() {
		s.values = true
		s.opcodes = true
	}
	return s
}

// input is one snapshot source. An empty path means stdin.
type input struct {
	path string
	data []byte
}

func (in input) name() string {
	if in.path == "" {
		return "<stdin>"
	}
	return in.path
}

func (in input) load() (*snapshot.Snapshot, error) {
	if in.path == "" {
		return snapshot.Decode(in.data)
	}
	return snapshot.ReadFile(in.path)
}

// dumpSnapshot writes the selected dumps of snap to w.
func dumpSnapshot(w io.Writer, snap *snapshot.Snapshot, sel selection, opts dump.Options) error {
	d := dump.New(w, opts)

	if sel.values && len(snap.Values) > 0 {
		if err := d.Values(snap.Values...); err != nil {
			return err
		}
	}

	var frame dump.Frame
	if snap.Frame != nil {
		frame = snap.Frame
	}
	frameOps := []struct {
		on bool
		op func(dump.Frame) error
	}{
		{sel.locals, d.Locals},
		{sel.args, d.Arguments},
		{sel.symbols, d.SymbolTable},
		{sel.statics, d.Statics},
		{sel.literals, d.Literals},
		{sel.opcodes, d.Instructions},
	}
	for _, f := range frameOps {
		if !f.on {
			continue
		}
		if err := f.op(frame); err != nil {
			return err
		}
	}

	if sel.function != "" {
		if err := d.Function(snap, sel.function); err != nil {
			return fmt.Errorf("function %s: %w", sel.function, err)
		}
	}
	if sel.class != "" {
		if err := d.Class(snap, sel.class, sel.magic); err != nil {
			return fmt.Errorf("class %s: %w", sel.class, err)
		}
	}
	if sel.method != "" {
		class, method, ok := strings.Cut(sel.method, "::")
		if !ok {
			return fmt.Errorf("method %q: want Class::method", sel.method)
		}
		if err := d.Method(snap, class, method); err != nil {
			return fmt.Errorf("method %s: %w", sel.method, err)
		}
	}
	return nil
}

// tracing holds the trace sinks shared by every input.
type tracing struct {
	out   string // "stdout", "stderr", a file path, or ""
	file  io.Writer
	store *trace.Store
	opts  dump.Options
}

// openTracing prepares the sinks named by the trace section. Rows are laid
// out with opts, which carries any command-line overrides.
func openTracing(m *manifest.Manifest, opts dump.Options) (*tracing, func(), error) {
	t := &tracing{out: m.Trace.Output, opts: opts}
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	switch t.out {
	case "", "stdout":
	case "stderr":
		t.file = &lockedWriter{w: os.Stderr}
	default:
		f, err := os.OpenFile(m.Resolve(t.out), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			return nil, cleanup, fmt.Errorf("opening trace output: %w", err)
		}
		t.file = &lockedWriter{w: f}
		closers = append(closers, func() { f.Close() })
	}

	if path := m.StorePath(); path != "" {
		s, err := trace.OpenStore(path, opts.Precision)
		if err != nil {
			cleanup()
			return nil, func() {}, err
		}
		t.store = s
		closers = append(closers, func() { s.Close() })
	}
	return t, cleanup, nil
}

// replay runs the frame's recorded program counters through a hook point
// with the configured sinks installed. Text rows for stdout go to w.
func (t *tracing) replay(w io.Writer, snap *snapshot.Snapshot) error {
	f := snap.Frame
	if f == nil || f.Fn == nil || !f.Fn.IsUser() || len(f.Trace) == 0 {
		return nil
	}

	var tracer *trace.Tracer
	switch {
	case t.out == "stdout":
		tracer = trace.NewTracer(w, t.opts)
	case t.file != nil:
		var buf bytes.Buffer
		tracer = trace.NewTracer(&buf, t.opts)
		defer func() { t.file.Write(buf.Bytes()) }()
	}

	var hooks []trace.Hook
	if tracer != nil {
		hooks = append(hooks, tracer.Hook)
	}
	if t.store != nil {
		hooks = append(hooks, t.store.Hook)
	}
	if len(hooks) == 0 {
		return nil
	}

	var point trace.HookPoint
	inst := point.Install(trace.Chain(hooks...))
	n := point.Replay(f.Fn, f.Fn.Program, f.Trace)
	if err := inst.Close(); err != nil {
		return err
	}
	log.Debugf("replayed %d of %d recorded instructions", n, len(f.Trace))

	if tracer != nil {
		return tracer.Err()
	}
	return nil
}

// run dumps every input concurrently and writes each result to out in
// argument order. Output stops at the first failing input; inputs not yet
// started when it fails are skipped.
func run(ctx context.Context, out io.Writer, inputs []input, sel selection, opts dump.Options, tr *tracing, jobs int) error {
	bufs := make([]bytes.Buffer, len(inputs))
	errs := make([]error, len(inputs))

	g, gctx := errgroup.WithContext(ctx)
	if jobs > 0 {
		g.SetLimit(jobs)
	}
	for i := range inputs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				errs[i] = err
				return err
			}
			errs[i] = dumpInput(&bufs[i], inputs[i], sel, opts, tr)
			return errs[i]
		})
	}
	g.Wait()
	return report(out, inputs, bufs, errs)
}

// report writes the buffered outputs in argument order up to the failing
// input, whose error is returned. Inputs skipped because another failed
// first are left out rather than reported as the failure.
func report(out io.Writer, inputs []input, bufs []bytes.Buffer, errs []error) error {
	fail := -1
	for i, err := range errs {
		if err != nil && !errors.Is(err, context.Canceled) {
			fail = i
			break
		}
	}
	if fail < 0 {
		for i, err := range errs {
			if err != nil {
				fail = i
				break
			}
		}
	}

	for i := range inputs {
		if i != fail && errs[i] != nil {
			continue
		}
		if len(inputs) > 1 {
			fmt.Fprintf(out, "==> %s <==\n", inputs[i].name())
		}
		if _, err := out.Write(bufs[i].Bytes()); err != nil {
			return err
		}
		if i == fail {
			return fmt.Errorf("%s: %w", inputs[i].name(), errs[i])
		}
	}
	return nil
}

// lockedWriter serializes writes from concurrent replays.
type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}

func dumpInput(w io.Writer, in input, sel selection, opts dump.Options, tr *tracing) error {
	snap, err := in.load()
	if err != nil {
		return err
	}
	log.Infof("dumping snapshot %s from %s", snap.ID, in.name())
	if err := dumpSnapshot(w, snap, sel, opts); err != nil {
		return err
	}
	if tr != nil {
		return tr.replay(w, snap)
	}
	return nil
}

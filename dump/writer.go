package dump

import (
	"fmt"
	"io"
	"strings"
)

// errWriter remembers the first write error and drops everything after it.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) Write(p []byte) (int, error) {
	if ew.err != nil {
		return 0, ew.err
	}
	n, err := ew.w.Write(p)
	if err != nil {
		ew.err = err
	}
	return n, err
}

// printer carries the sink and layout for one operation.
type printer struct {
	w    *errWriter
	opts Options
}

func newPrinter(w io.Writer, opts Options) *printer {
	return &printer{w: &errWriter{w: w}, opts: opts}
}

func (p *printer) printf(format string, args ...any) {
	fmt.Fprintf(p.w, format, args...)
}

func (p *printer) puts(s string) {
	io.WriteString(p.w, s)
}

func (p *printer) write(b []byte) {
	p.w.Write(b)
}

func (p *printer) indent(level int) {
	if level > 0 {
		p.puts(strings.Repeat(" ", level))
	}
}

// field writes s left-justified in a column.
func (p *printer) field(s string) {
	p.puts(pad(s, p.opts.ColumnWidth))
}

func (p *printer) err() error {
	return p.w.err
}

// pad left-justifies s to width with spaces. Content at or beyond the width
// is returned whole.
func pad(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}

package value

// Escaped is the result of Escape. When Owned is false, Bytes aliases the
// input and must not be modified.
type Escaped struct {
	Bytes []byte
	Owned bool
}

func (e Escaped) String() string { return string(e.Bytes) }

func escapeOf(c byte) byte {
	switch c {
	case '\n':
		return 'n'
	case '\r':
		return 'r'
	case '\t':
		return 't'
	case 0:
		return '0'
	}
	return 0
}

// Escape replaces newline, carriage return, tab and NUL with their backslash
// forms. Input with nothing to escape is returned as a borrowed view.
func Escape(b []byte) Escaped {
	n := 0
	for _, c := range b {
		if escapeOf(c) != 0 {
			n++
		}
	}
	if n == 0 {
		return Escaped{Bytes: b}
	}

	out := make([]byte, 0, len(b)+n)
	for _, c := range b {
		if e := escapeOf(c); e != 0 {
			out = append(out, '\\', e)
			continue
		}
		out = append(out, c)
	}
	return Escaped{Bytes: out, Owned: true}
}

// Package manifest handles vmdump.toml configuration.
package manifest

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/chazu/vmdump/dump"
)

// FileName is the configuration file looked up by Load and FindAndLoad.
const FileName = "vmdump.toml"

// Manifest represents a vmdump.toml configuration.
type Manifest struct {
	Display Display `toml:"display"`
	Trace   Trace   `toml:"trace"`
	Log     Log     `toml:"log"`

	// Dir is the directory containing the vmdump.toml file (set at load time).
	Dir string `toml:"-"`
}

// Display configures dump layout.
type Display struct {
	ColumnWidth int `toml:"column-width"`
	Indent      int `toml:"indent"`
	IndentSize  int `toml:"indent-size"`
	Precision   int `toml:"precision"`
}

// Trace configures the execution trace hook.
type Trace struct {
	Enable bool   `toml:"enable"`
	Store  string `toml:"store"`  // SQLite database path, empty for none
	Output string `toml:"output"` // "stdout", "stderr", a file path, or empty for none
}

// Log configures logging.
type Log struct {
	Verbosity int    `toml:"verbosity"`
	File      string `toml:"file"`
}

// Default returns the configuration used when no vmdump.toml exists.
func Default() *Manifest {
	m := &Manifest{}
	m.applyDefaults(nil)
	return m
}

func (m *Manifest) applyDefaults(md *toml.MetaData) {
	if m.Display.ColumnWidth <= 0 {
		m.Display.ColumnWidth = dump.DefaultColumnWidth
	}
	if m.Display.IndentSize <= 0 {
		m.Display.IndentSize = dump.DefaultIndentSize
	}
	if m.Display.Indent < 0 {
		m.Display.Indent = 0
	}
	// precision = 0 is a valid setting, so only fill it when absent
	if md == nil || !md.IsDefined("display", "precision") {
		m.Display.Precision = dump.DefaultPrecision
	}
}

// Load parses a vmdump.toml file from the given directory.
func Load(dir string) (*Manifest, error) {
	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	var m Manifest
	md, err := toml.Decode(string(data), &m)
	if err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("unknown key %s in %s", undecoded[0], path)
	}

	m.Dir, err = filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve path %s: %w", dir, err)
	}

	m.applyDefaults(&md)
	return &m, nil
}

// FindAndLoad walks up from startDir to find a vmdump.toml file,
// then loads and returns the manifest. Returns nil if no manifest is found.
func FindAndLoad(startDir string) (*Manifest, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}

	for {
		path := filepath.Join(dir, FileName)
		if _, err := os.Stat(path); err == nil {
			return Load(dir)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return nil, nil
		}
		dir = parent
	}
}

// Options returns the dump layout described by the display section.
func (m *Manifest) Options() dump.Options {
	return dump.Options{
		ColumnWidth: m.Display.ColumnWidth,
		Indent:      m.Display.Indent,
		IndentSize:  m.Display.IndentSize,
		Precision:   m.precision(),
	}
}

// precision maps display.precision onto dump.Options. The host prints one
// significant digit for precision 0, which dump spells as 1.
func (m *Manifest) precision() int {
	if m.Display.Precision == 0 {
		return 1
	}
	return m.Display.Precision
}

// Resolve returns p relative to the manifest directory unless it is absolute
// or empty.
func (m *Manifest) Resolve(p string) string {
	if p == "" || filepath.IsAbs(p) || m.Dir == "" {
		return p
	}
	return filepath.Join(m.Dir, p)
}

// StorePath returns the resolved trace store path.
func (m *Manifest) StorePath() string {
	return m.Resolve(m.Trace.Store)
}

// LogPath returns the resolved log file path, or "" for stderr.
func (m *Manifest) LogPath() string {
	return m.Resolve(m.Log.File)
}

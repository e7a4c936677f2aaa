// vmdump CLI - dumps values and disassembles bytecode from VM snapshots
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"

	"github.com/chazu/vmdump/dump"
	"github.com/chazu/vmdump/manifest"
	"github.com/chazu/vmdump/snapshot"
)

var log = commonlog.GetLogger("vmdump")

func main() {
	configDir := flag.String("config", "", "Directory containing vmdump.toml (default: search upward from the working directory)")
	width := flag.Int("w", 0, "Disassembly column width (overrides display.column-width)")
	indent := flag.Int("indent", -1, "Base indent for value dumps (overrides display.indent)")
	jobs := flag.Int("j", 4, "Snapshots dumped in parallel")
	verbosity := flag.Int("v", 0, "Log verbosity added to log.verbosity")
	forceTrace := flag.Bool("trace", false, "Replay recorded instructions even if trace.enable is false")
	convert := flag.String("convert", "", "Write the (single) input snapshot to this path (.yaml/.yml for YAML, otherwise CBOR) and exit")

	var sel selection
	flag.BoolVar(&sel.values, "values", false, "Dump the snapshot's free-standing values")
	flag.BoolVar(&sel.locals, "locals", false, "Dump the frame's named variables")
	flag.BoolVar(&sel.args, "args", false, "Dump the frame's arguments")
	flag.BoolVar(&sel.symbols, "symbols", false, "Dump the frame's symbol table")
	flag.BoolVar(&sel.statics, "statics", false, "Dump the frame function's static variables")
	flag.BoolVar(&sel.literals, "literals", false, "Dump the frame function's literals")
	flag.BoolVar(&sel.opcodes, "opcodes", false, "Disassemble the frame's function")
	flag.StringVar(&sel.function, "function", "", "Disassemble the named function")
	flag.StringVar(&sel.class, "class", "", "Dump the named class")
	flag.BoolVar(&sel.magic, "magic", false, "Include __magic methods in class dumps")
	flag.StringVar(&sel.method, "method", "", "Disassemble one method (Class::method)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: vmdump [options] [snapshot...]\n\n")
		fmt.Fprintf(os.Stderr, "Dumps values and bytecode from CBOR or YAML VM snapshots.\n")
		fmt.Fprintf(os.Stderr, "Reads a snapshot from stdin when no files are given.\n")
		fmt.Fprintf(os.Stderr, "Without a selection, dumps -values and -opcodes.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  vmdump crash.cbor                   # Values and frame disassembly\n")
		fmt.Fprintf(os.Stderr, "  vmdump -locals -args crash.cbor     # Frame variables\n")
		fmt.Fprintf(os.Stderr, "  vmdump -class Point -magic s.yaml   # Class with magic methods\n")
		fmt.Fprintf(os.Stderr, "  vmdump -method Point::norm s.yaml   # One method\n")
		fmt.Fprintf(os.Stderr, "  vmdump -convert s.yaml crash.cbor   # CBOR to YAML\n")
		fmt.Fprintf(os.Stderr, "  cat crash.cbor | vmdump -trace      # Replay the recorded trace\n")
	}
	flag.Parse()

	m, err := loadManifest(*configDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	commonlog.Initialize(m.Log.Verbosity+*verbosity, m.LogPath())
	if m.Dir != "" {
		log.Debugf("using %s", m.Dir)
	}

	opts := m.Options()
	if *width > 0 {
		opts.ColumnWidth = *width
	}
	if *indent >= 0 {
		opts.Indent = *indent
	}

	inputs, err := collectInputs(flag.Args(), os.Stdin)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		flag.Usage()
		os.Exit(2)
	}

	if *convert != "" {
		if err := convertSnapshot(inputs, *convert); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	var tr *tracing
	cleanup := func() {}
	if m.Trace.Enable || *forceTrace {
		if *forceTrace && m.Trace.Output == "" && m.Trace.Store == "" {
			m.Trace.Output = "stdout"
		}
		tr, cleanup, err = openTracing(m, opts)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}

	err = run(context.Background(), os.Stdout, inputs, sel.withDefault(), opts, tr, *jobs)
	cleanup()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if errors.Is(err, dump.ErrNotFound) {
			os.Exit(3)
		}
		os.Exit(1)
	}
}

// loadManifest loads vmdump.toml from dir, or searches upward from the
// working directory. Without a file the defaults apply.
func loadManifest(dir string) (*manifest.Manifest, error) {
	if dir != "" {
		return manifest.Load(dir)
	}
	m, err := manifest.FindAndLoad(".")
	if err != nil {
		return nil, err
	}
	if m == nil {
		return manifest.Default(), nil
	}
	return m, nil
}

// collectInputs turns arguments into inputs. "-" or no arguments read stdin,
// which must not be a terminal.
func collectInputs(args []string, stdin *os.File) ([]input, error) {
	if len(args) == 0 {
		args = []string{"-"}
	}
	inputs := make([]input, 0, len(args))
	for _, a := range args {
		if a != "-" {
			inputs = append(inputs, input{path: a})
			continue
		}
		fd := stdin.Fd()
		if isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd) {
			return nil, errors.New("no snapshot given and stdin is a terminal")
		}
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("reading stdin: %w", err)
		}
		inputs = append(inputs, input{data: data})
	}
	return inputs, nil
}

func convertSnapshot(inputs []input, dest string) error {
	if len(inputs) != 1 {
		return fmt.Errorf("-convert takes exactly one snapshot, got %d", len(inputs))
	}
	snap, err := inputs[0].load()
	if err != nil {
		return err
	}
	if err := snapshot.WriteFile(dest, snap); err != nil {
		return fmt.Errorf("writing %s: %w", dest, err)
	}
	log.Noticef("wrote snapshot %s to %s", snap.ID, dest)
	return nil
}

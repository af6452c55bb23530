// Cinder CLI - compiles and runs Cinder scripts
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/tliron/commonlog"

	"github.com/cinderlang/cinder/bytecode"
	"github.com/cinderlang/cinder/compiler"
	"github.com/cinderlang/cinder/host"

	_ "github.com/tliron/commonlog/simple"
)

// Exit codes follow sysexits: 65 for bad input, 70 for runtime failure.
const (
	exitUsage    = 64
	exitDataErr  = 65
	exitSoftware = 70
)

var log = commonlog.GetLogger("cinder")

func main() {
	stepMode := flag.Bool("step", false, "Execute one instruction at a time, logging each boundary")
	disasm := flag.Bool("disasm", false, "Print disassembly instead of running")
	emit := flag.String("emit", "", "Compile to a program image file instead of running")
	image := flag.Bool("image", false, "Treat the input file as a compiled program image")
	manifestPath := flag.String("manifest", "", "Load a cinder.toml project manifest")
	verbose := flag.Bool("v", false, "Verbose logging")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: cinder [options] file.cin\n\n")
		fmt.Fprintf(os.Stderr, "Compiles and runs a Cinder script.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  cinder script.cin                  # Compile and run\n")
		fmt.Fprintf(os.Stderr, "  cinder -step script.cin            # Run one instruction at a time\n")
		fmt.Fprintf(os.Stderr, "  cinder -disasm script.cin          # Show bytecode listing\n")
		fmt.Fprintf(os.Stderr, "  cinder -emit out.cimg script.cin   # Ahead-of-time compile\n")
		fmt.Fprintf(os.Stderr, "  cinder -image out.cimg             # Run a compiled image\n")
		fmt.Fprintf(os.Stderr, "  cinder -manifest cinder.toml       # Run a project\n")
	}
	flag.Parse()

	if *verbose {
		commonlog.Configure(1, nil)
	}

	var manifest *Manifest
	var natives []host.NativeFunc
	if *manifestPath != "" {
		m, err := LoadManifest(*manifestPath)
		if err != nil {
			fatal(exitDataErr, "%v", err)
		}
		manifest = m
		natives = m.Natives()
		log.Infof("loaded manifest %s (%d bindings)", *manifestPath, len(natives))
	}

	path := flag.Arg(0)
	if path == "" && manifest != nil {
		path = manifest.Entry
	}
	if path == "" {
		flag.Usage()
		os.Exit(exitUsage)
	}

	stepwise := *stepMode || (manifest != nil && manifest.Trace)

	if *image {
		os.Exit(runImage(path, natives, stepwise))
	}

	source, err := os.ReadFile(path)
	if err != nil {
		fatal(exitDataErr, "%v", err)
	}

	// Disassembly and image emission work at the chunk level; running
	// goes through the host surface. Both flags may be combined.
	if *disasm || *emit != "" {
		chunk := compileChunk(path, string(source), natives)
		if err := emitArtifacts(chunk, filepath.Base(path), *disasm, *emit, os.Stdout); err != nil {
			fatal(exitSoftware, "%v", err)
		}
		return
	}

	result := host.Compile(string(source), natives)
	if !result.Success() {
		reportCompileErrors(path, result.TakeErrors())
		os.Exit(exitDataErr)
	}
	log.Infof("compiled %s", path)
	os.Exit(drive(result.TakeMachine(), stepwise))
}

// compileChunk compiles source straight to a chunk, predeclaring the
// same native names the host surface would.
func compileChunk(path, source string, natives []host.NativeFunc) *bytecode.Chunk {
	names := make([]string, 0, len(natives)+1)
	for _, n := range natives {
		names = append(names, n.Name)
	}
	names = append(names, "time")

	chunk, errs := compiler.Compile(source, names)
	if len(errs) > 0 {
		reportCompileErrors(path, errs)
		os.Exit(exitDataErr)
	}
	return chunk
}

// emitArtifacts writes the requested chunk-level artifacts: a
// disassembly listing to w, a program image to emitPath, or both.
func emitArtifacts(chunk *bytecode.Chunk, name string, showDisasm bool, emitPath string, w io.Writer) error {
	if showDisasm {
		fmt.Fprint(w, chunk.DisassembleWithName(name))
	}
	if emitPath != "" {
		img := bytecode.NewProgramImage(chunk)
		data, err := bytecode.MarshalImage(img)
		if err != nil {
			return err
		}
		if err := os.WriteFile(emitPath, data, 0o644); err != nil {
			return err
		}
		log.Infof("wrote image %s (build %s, %d bytes)", emitPath, img.BuildID, len(data))
	}
	return nil
}

// runImage loads a compiled program image and runs it.
func runImage(path string, natives []host.NativeFunc, stepwise bool) int {
	data, err := os.ReadFile(path)
	if err != nil {
		fatal(exitDataErr, "%v", err)
	}
	img, err := bytecode.UnmarshalImage(data)
	if err != nil {
		fatal(exitDataErr, "%v", err)
	}
	log.Infof("loaded image %s (build %s)", path, img.BuildID)
	return drive(host.Restore(img, natives), stepwise)
}

// drive executes a machine, either to completion or stepwise.
func drive(m *host.Machine, stepwise bool) int {
	var out host.Outcome
	if stepwise {
		steps := 0
		for {
			out = m.Step()
			steps++
			if out.Finished {
				break
			}
		}
		log.Infof("finished after %d steps", steps)
	} else {
		out = m.Run()
	}

	if out.Err != nil {
		fmt.Fprintf(os.Stderr, "cinder: runtime error: %s\n", out.Err.Error())
		return exitSoftware
	}
	return 0
}

func reportCompileErrors(path string, errs []compiler.CompileError) {
	for _, e := range errs {
		fmt.Fprintf(os.Stderr, "%s:%d: %s (at byte %d, len %d)\n",
			filepath.Base(path), e.Line, e.Message, e.Start, e.Len)
	}
}

func fatal(code int, format string, args ...any) {
	fmt.Fprintf(os.Stderr, "cinder: "+format+"\n", args...)
	os.Exit(code)
}

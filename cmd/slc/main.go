// Command slc compiles one SL source file to HLSL or GLSL.
//
// Usage:
//
//	slc [flags] FILENAME ENTRYNAME
//
// Grounded on spec.md §6.6's CLI surface, wiring
// internal/preprocessor → internal/lexer → internal/parser →
// internal/diagnostic → internal/hlsl / internal/glsl in one straight
// line, the way a reference compiler driver would.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spf13/pflag"

	"github.com/dfranx/hlslparser/internal/diagnostic"
	"github.com/dfranx/hlslparser/internal/emit"
	"github.com/dfranx/hlslparser/internal/glsl"
	"github.com/dfranx/hlslparser/internal/hlsl"
	"github.com/dfranx/hlslparser/internal/parser"
	"github.com/dfranx/hlslparser/internal/preprocessor"
)

// osFileSystem reads files relative to a base directory, implementing
// preprocessor.FileSystem over the real filesystem.
type osFileSystem struct {
	baseDir string
}

func (fs osFileSystem) ReadFile(name string) ([]byte, error) {
	return os.ReadFile(filepath.Join(fs.baseDir, name))
}

// runLogger tags every diagnostic with a per-invocation run ID, so
// errors from concurrent build-pipeline invocations of slc can be told
// apart in aggregated log output.
type runLogger struct {
	entry *diagnostic.LogrusLogger
	runID uuid.UUID
}

func (l runLogger) LogError(format string, args ...any) {
	l.entry.Entry.WithField("run", l.runID).Errorf(format, args...)
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	flags := pflag.NewFlagSet("slc", pflag.ContinueOnError)

	vs := flags.Bool("vs", false, "compile as a vertex shader")
	fs := flags.Bool("fs", false, "compile as a fragment/pixel shader")
	cs := flags.Bool("cs", false, "compile as a compute shader")
	toGLSL := flags.Bool("glsl", false, "emit GLSL")
	toHLSL := flags.Bool("hlsl", false, "emit HLSL (default)")
	toLegacyHLSL := flags.Bool("legacyhlsl", false, "emit legacy-profile HLSL (alias of -hlsl)")
	toMetal := flags.Bool("metal", false, "emit Metal (unsupported by this reference backend)")
	help := flags.BoolP("help", "h", false, "show usage")

	flags.Usage = func() {
		fmt.Fprintln(os.Stderr, "usage: slc [flags] FILENAME ENTRYNAME")
		flags.PrintDefaults()
	}

	// pflag reads a single dash as a run of one-letter shorthands, so the
	// single-dash long spellings (-fs, -hlsl, ...) are rewritten to their
	// double-dash form before parsing.
	normalized := make([]string, len(args))
	for i, a := range args {
		if len(a) > 2 && a[0] == '-' && a[1] != '-' {
			a = "-" + a
		}
		normalized[i] = a
	}
	if err := flags.Parse(normalized); err != nil {
		return 1
	}
	if *help {
		flags.Usage()
		return 0
	}

	positional := flags.Args()
	if len(positional) != 2 {
		flags.Usage()
		return 1
	}
	fileName, entryName := positional[0], positional[1]

	log := runLogger{entry: diagnostic.NewLogrusLogger(), runID: uuid.New()}

	target := emit.VertexShader
	switch {
	case *cs:
		target = emit.ComputeShader
	case *fs:
		target = emit.FragmentShader
	case *vs:
		target = emit.VertexShader
	}

	var emitter emit.Emitter
	switch {
	case *toMetal:
		log.LogError("metal output is not supported by this reference backend")
		return 1
	case *toGLSL:
		emitter = glsl.New()
	case *toHLSL, *toLegacyHLSL:
		emitter = hlsl.New()
	default:
		emitter = hlsl.New()
	}

	dir := filepath.Dir(fileName)
	base := filepath.Base(fileName)
	fsys := osFileSystem{baseDir: dir}

	source, err := preprocessor.New(fsys).Process(base)
	if err != nil {
		log.LogError("%v", err)
		return 1
	}

	mod, err := parser.Parse(source, fileName, parser.Options{}, log)
	if err != nil {
		log.LogError("%v", err)
		return 1
	}

	out, err := emitter.Emit(mod.Arena, mod, emit.Options{EntryPoint: entryName, Target: target})
	if err != nil {
		log.LogError("%v", err)
		return 1
	}

	fmt.Println(out)
	return 0
}

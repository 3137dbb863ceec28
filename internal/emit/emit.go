// Package emit defines the backend emitter contract shared by
// internal/hlsl and internal/glsl, plus a small output buffer the two
// backends embed for indentation-aware text printing.
//
// Grounded on HugoDaniel-miniray/internal/printer's Printer shape
// (buf strings.Builder, indent int, needsSpace bool, print/printSpace/
// printNewline helpers) generalized from a single WGSL-only printer
// into a buffer any target-language printer can embed.
package emit

import (
	"strings"

	"github.com/dfranx/hlslparser/internal/ast"
)

// Target is the shader stage an Emitter is asked to produce code for.
type Target uint8

const (
	VertexShader Target = iota
	FragmentShader
	ComputeShader
)

func (t Target) String() string {
	switch t {
	case VertexShader:
		return "vertex"
	case FragmentShader:
		return "fragment"
	case ComputeShader:
		return "compute"
	default:
		return "unknown"
	}
}

// Options configures one Emit call.
type Options struct {
	EntryPoint string
	Target     Target
}

// Emitter renders a parsed module's AST as target-language source.
type Emitter interface {
	Emit(root *ast.Arena, mod *ast.Module, opts Options) (string, error)
}

// Buffer is an indentation-aware text buffer, embedded by each
// backend's Printer. It carries no language-specific knowledge. Unlike
// the teacher's Printer, it has no minified mode, so it drops the
// needsSpace bookkeeping that mode needs.
type Buffer struct {
	buf    strings.Builder
	indent int
}

// String returns everything written so far.
func (b *Buffer) String() string { return b.buf.String() }

// Write appends s verbatim.
func (b *Buffer) Write(s string) {
	b.buf.WriteString(s)
}

// Space writes a single space.
func (b *Buffer) Space() {
	b.buf.WriteByte(' ')
}

// Newline writes a newline followed by the current indentation.
func (b *Buffer) Newline() {
	b.buf.WriteByte('\n')
	for i := 0; i < b.indent; i++ {
		b.buf.WriteString("    ")
	}
}

// Indent increases the indentation level by one.
func (b *Buffer) Indent() { b.indent++ }

// Dedent decreases the indentation level by one.
func (b *Buffer) Dedent() { b.indent-- }

// Package preprocessor splices `#include`d files into one logical
// source buffer ahead of tokenization, injecting `#line N "file"`
// markers at every file boundary so the lexer's own `#line` handling
// (package lexer) can keep diagnostics pointing at the original file
// and line. This is a serial, recursive splicer: it does not expand
// macros or evaluate conditional-compilation directives, matching
// spec.md's stated non-goals.
package preprocessor

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"github.com/dfranx/hlslparser/internal/intern"
)

// FileSystem is the read-only file access the preprocessor needs,
// mirroring the source compiler's FileReadCallback without requiring
// io/fs: a plain map-backed fixture, an os.DirFS wrapper, or a virtual
// include path can all implement it.
type FileSystem interface {
	ReadFile(name string) ([]byte, error)
}

// context tracks one open file's scan position, mirroring
// HLSLPreprocessor::FileReadContext.
type context struct {
	name    string
	content string
	pos     int
	line    int
}

// Preprocessor holds the state of one splicing run: the include-nest
// stack and the set of files already opened (for duplicate-include
// suppression, case-insensitive, across the whole run — not just the
// current include stack). Opened file names are interned so repeated
// re-includes of the same file (common with shared header-style .sl
// files) are a Symbol equality check rather than a repeated lowercase
// string comparison.
type Preprocessor struct {
	fs     FileSystem
	files  *intern.Pool
	opened map[intern.Symbol]bool
	stack  []*context
	out    strings.Builder
}

// New creates a Preprocessor reading files through fs.
func New(fs FileSystem) *Preprocessor {
	return &Preprocessor{fs: fs, files: intern.New(), opened: make(map[intern.Symbol]bool)}
}

// fileKey interns fileName's case-folded form, the unit duplicate
// detection compares on.
func (p *Preprocessor) fileKey(fileName string) intern.Symbol {
	return p.files.Intern(strings.ToLower(fileName))
}

// Process splices entryFile and everything it transitively #includes
// into one buffer. Re-including an already-opened file (case
// insensitive) is silently ignored rather than an error, matching
// HLSLPreprocessor::OpenFile's duplicate guard.
func (p *Preprocessor) Process(entryFile string) (string, error) {
	if err := p.open(entryFile); err != nil {
		return "", errors.Wrapf(err, "preprocess %s", entryFile)
	}

	for len(p.stack) > 0 {
		cur := p.stack[len(p.stack)-1]
		writeStart := cur.pos

		for cur.pos < len(cur.content) {
			if p.atIncludeDirective(cur) {
				p.out.WriteString(cur.content[writeStart:cur.pos])
				name, err := p.consumeIncludeDirective(cur)
				if err != nil {
					return "", errors.Wrapf(err, "%s:%d", cur.name, cur.line)
				}
				if !p.opened[p.fileKey(name)] {
					if err := p.open(name); err != nil {
						return "", errors.Wrapf(err, "preprocess %s", name)
					}
					cur = p.stack[len(p.stack)-1]
				}
				writeStart = cur.pos
				continue
			}
			if cur.content[cur.pos] == '\n' {
				p.out.WriteString(cur.content[writeStart : cur.pos+1])
				cur.line++
				cur.pos++
				writeStart = cur.pos
				continue
			}
			cur.pos++
		}
		p.out.WriteString(cur.content[writeStart:cur.pos])
		p.closeCurrent()
	}

	return p.out.String(), nil
}

// atIncludeDirective reports whether cur.pos sits at the start of an
// `#include` directive: the literal text "#include" followed by
// whitespace, exactly the check HLSLPreprocessor::Generate makes (it
// does not require the directive to start a line).
func (p *Preprocessor) atIncludeDirective(cur *context) bool {
	const kw = "#include"
	rest := cur.content[cur.pos:]
	if !strings.HasPrefix(rest, kw) {
		return false
	}
	if len(rest) <= len(kw) {
		return false
	}
	return isSpace(rest[len(kw)])
}

// consumeIncludeDirective parses `#include "name"` starting at
// cur.pos (already confirmed present by atIncludeDirective), advances
// cur.pos past the rest of that source line, and returns the quoted
// file name.
func (p *Preprocessor) consumeIncludeDirective(cur *context) (string, error) {
	cur.pos += len("#include")

	for cur.pos < len(cur.content) && isSpace(cur.content[cur.pos]) {
		if cur.content[cur.pos] == '\n' {
			return "", fmt.Errorf("expected '\"' after #include")
		}
		cur.pos++
	}
	if cur.pos >= len(cur.content) {
		return "", fmt.Errorf("unexpected end of file after #include")
	}
	if cur.content[cur.pos] != '"' {
		return "", fmt.Errorf("expected '\"' after #include")
	}
	cur.pos++

	start := cur.pos
	for cur.pos < len(cur.content) && cur.content[cur.pos] != '"' {
		if cur.content[cur.pos] == '\n' {
			return "", fmt.Errorf("expected '\"' before end of line near #include")
		}
		cur.pos++
	}
	if cur.pos >= len(cur.content) {
		return "", fmt.Errorf("unterminated #include file name")
	}
	name := cur.content[start:cur.pos]
	cur.pos++ // closing quote

	for cur.pos < len(cur.content) && cur.content[cur.pos] != '\n' {
		cur.pos++
	}
	if cur.pos < len(cur.content) {
		cur.pos++ // consume the newline itself
	}
	// The line carrying the #include directive is not counted toward
	// cur.line, matching the source preprocessor's line-tracking (it
	// only increments on the plain-text newline branch, never here).

	return name, nil
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\r' || b == '\n'
}

// open reads fileName, pushes a new context for it, and emits a line
// marker for its start — unless fileName has already been opened
// (case-insensitive) anywhere in this run, in which case it is a no-op
// (HLSLPreprocessor::OpenFile's duplicate-include guard).
func (p *Preprocessor) open(fileName string) error {
	key := p.fileKey(fileName)
	if p.opened[key] {
		return nil
	}

	data, err := p.fs.ReadFile(fileName)
	if err != nil {
		return err
	}

	ctx := &context{name: fileName, content: string(data), line: 1}
	p.stack = append(p.stack, ctx)
	p.opened[key] = true
	p.emitLineMarker(ctx.name, ctx.line)
	return nil
}

// closeCurrent pops the innermost context and, if a parent context
// remains, emits a line marker so the tokenizer resumes attributing
// lines to the parent file at its current line number.
func (p *Preprocessor) closeCurrent() {
	if len(p.stack) == 0 {
		return
	}
	p.stack = p.stack[:len(p.stack)-1]
	if len(p.stack) == 0 {
		return
	}
	parent := p.stack[len(p.stack)-1]
	p.emitLineMarker(parent.name, parent.line)
}

func (p *Preprocessor) emitLineMarker(file string, line int) {
	fmt.Fprintf(&p.out, "#line %d %q\n", line, file)
}

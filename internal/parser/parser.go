// Package parser implements SL's recursive-descent parser with
// embedded semantic analysis: overload resolution, implicit
// conversion ranking, and member/swizzle typing all happen inline as
// each expression production completes, rather than in a separate
// pass over a pre-built tree. This single-pass design follows the
// source compiler's Parse/ParseExpression structure directly, unlike
// the teacher's two-pass esbuild-style Parse-then-Visit split: SL's
// overload resolution needs every subexpression's type available the
// moment its enclosing call is parsed.
package parser

import (
	"github.com/pkg/errors"

	"github.com/dfranx/hlslparser/internal/ast"
	"github.com/dfranx/hlslparser/internal/diagnostic"
	"github.com/dfranx/hlslparser/internal/intrinsics"
	"github.com/dfranx/hlslparser/internal/lexer"
	"github.com/dfranx/hlslparser/internal/types"
)

// Options toggles the parser's two documented recovery modes, both
// supplemented from the source compiler's HLSLParser fields of the
// same purpose.
type Options struct {
	// AllowUndeclaredIdentifiers substitutes a false-literal
	// placeholder for an undeclared identifier instead of failing,
	// matching m_allowUndeclaredIdentifiers.
	AllowUndeclaredIdentifiers bool
	// DisableSemanticValidation skips type/overload checking and
	// trusts the syntax alone, matching m_disableSemanticValidation.
	DisableSemanticValidation bool
}

// variable is one entry in the scope stack.
type variable struct {
	name   string
	typ    types.Type
	global bool
	isSentinel bool
}

// functionEntry records one registered (possibly forward-declared)
// function signature for lookup and forward-declaration matching.
type functionEntry struct {
	handle ast.Handle
	name   string
	ret    types.Type
	params []types.Type
	hasBody bool
}

// Parser holds all mutable state for one compilation.
type Parser struct {
	file    string
	tokens  []lexer.Token
	pos     int
	opts    Options
	diags   *diagnostic.List
	arena   *ast.Arena

	vars       []variable
	numGlobals int

	structs map[string]ast.Handle
	buffers map[string]ast.Handle
	functions map[string][]*functionEntry

	failed bool
}

// Parse tokenizes and parses source, returning the module root or the
// first error encountered. Parsing stops at the first error: there is
// no multi-error recovery (spec.md §7).
func Parse(source, file string, opts Options, log diagnostic.Logger) (*ast.Module, error) {
	toks, err := lexer.Tokenize(source, file)
	if err != nil {
		return nil, errors.Wrap(err, "tokenize")
	}

	p := &Parser{
		file:      file,
		tokens:    toks,
		opts:      opts,
		diags:     diagnostic.NewList(log),
		arena:     ast.NewArena(),
		structs:   make(map[string]ast.Handle),
		buffers:   make(map[string]ast.Handle),
		functions: make(map[string][]*functionEntry),
	}

	head := ast.InvalidHandle
	for !p.check(lexer.TokEOF) && !p.failed {
		decl, ok := p.parseTopLevel()
		if !ok {
			break
		}
		if decl != ast.InvalidHandle {
			head = p.arena.LinkStmt(head, decl)
		}
	}

	p.numGlobals = len(p.vars)

	if p.failed || p.diags.HasError() {
		if d := p.diags.First(); d != nil {
			return nil, errors.New(d.Error())
		}
		return nil, errors.New("parse failed")
	}

	return &ast.Module{Arena: p.arena, FirstDeclaration: head}, nil
}

// --- token stream helpers ---

func (p *Parser) cur() lexer.Token {
	if p.pos >= len(p.tokens) {
		return lexer.Token{Kind: lexer.TokEOF}
	}
	return p.tokens[p.pos]
}

func (p *Parser) check(k lexer.TokenKind) bool {
	return p.cur().Kind == k
}

func (p *Parser) advance() lexer.Token {
	t := p.cur()
	if p.pos < len(p.tokens)-1 {
		p.pos++
	}
	return t
}

func (p *Parser) accept(k lexer.TokenKind) (lexer.Token, bool) {
	if p.check(k) {
		return p.advance(), true
	}
	return lexer.Token{}, false
}

func (p *Parser) expect(k lexer.TokenKind) (lexer.Token, bool) {
	if tok, ok := p.accept(k); ok {
		return tok, true
	}
	p.errorf("expected %s, got %s", tokenDesc(k), tokenDesc(p.cur().Kind))
	return lexer.Token{}, false
}

func tokenDesc(k lexer.TokenKind) string {
	return k.String()
}

func (p *Parser) origin() ast.Origin {
	return ast.Origin{File: p.file, Line: p.cur().Line}
}

func (p *Parser) errorf(format string, args ...any) {
	p.failed = true
	p.diags.Report(diagnostic.Error, diagnostic.Position{File: p.file, Line: p.cur().Line}, format, args...)
}

// --- scopes ---

func (p *Parser) beginScope() {
	p.vars = append(p.vars, variable{isSentinel: true})
}

func (p *Parser) endScope() {
	for len(p.vars) > 0 {
		v := p.vars[len(p.vars)-1]
		p.vars = p.vars[:len(p.vars)-1]
		if v.isSentinel {
			return
		}
	}
}

func (p *Parser) declareVariable(name string, t types.Type) {
	p.vars = append(p.vars, variable{name: name, typ: t, global: len(p.functions) == 0 && p.depth() == 0})
}

func (p *Parser) depth() int {
	d := 0
	for _, v := range p.vars {
		if v.isSentinel {
			d++
		}
	}
	return d
}

func (p *Parser) findVariable(name string) (types.Type, bool) {
	for i := len(p.vars) - 1; i >= 0; i-- {
		if !p.vars[i].isSentinel && p.vars[i].name == name {
			return p.vars[i].typ, true
		}
	}
	return types.Type{}, false
}

// --- keyword/base-type mapping ---

var keywordBaseType = map[lexer.TokenKind]types.BaseType{
	lexer.TokFloat: types.Float, lexer.TokFloat2: types.Float2, lexer.TokFloat3: types.Float3, lexer.TokFloat4: types.Float4,
	lexer.TokFloat2x2: types.Float2x2, lexer.TokFloat3x3: types.Float3x3, lexer.TokFloat4x4: types.Float4x4,
	lexer.TokFloat4x3: types.Float4x3, lexer.TokFloat4x2: types.Float4x2,
	lexer.TokHalf: types.Half, lexer.TokHalf2: types.Half2, lexer.TokHalf3: types.Half3, lexer.TokHalf4: types.Half4,
	lexer.TokHalf2x2: types.Half2x2, lexer.TokHalf3x3: types.Half3x3, lexer.TokHalf4x4: types.Half4x4,
	lexer.TokHalf4x3: types.Half4x3, lexer.TokHalf4x2: types.Half4x2,
	lexer.TokBool: types.Bool, lexer.TokBool2: types.Bool2, lexer.TokBool3: types.Bool3, lexer.TokBool4: types.Bool4,
	lexer.TokInt: types.Int, lexer.TokInt2: types.Int2, lexer.TokInt3: types.Int3, lexer.TokInt4: types.Int4,
	lexer.TokUint: types.Uint, lexer.TokUint2: types.Uint2, lexer.TokUint3: types.Uint3, lexer.TokUint4: types.Uint4,
}

var readTextureBaseType = map[lexer.TokenKind]types.BaseType{
	lexer.TokTexture1D: types.Texture1DType, lexer.TokTexture2D: types.Texture2DType, lexer.TokTexture3D: types.Texture3DType,
	lexer.TokTextureCube: types.TextureCubeType, lexer.TokTextureCubeArray: types.TextureCubeArrayType,
	lexer.TokTexture2DMS: types.Texture2DMSType, lexer.TokTexture1DArray: types.Texture1DArrayType,
	lexer.TokTexture2DArray: types.Texture2DArrayType, lexer.TokTexture2DMSArray: types.Texture2DMSArrayType,
}

var writeTextureBaseType = map[lexer.TokenKind]types.BaseType{
	lexer.TokRWTexture1D: types.RWTexture1DType, lexer.TokRWTexture2D: types.RWTexture2DType, lexer.TokRWTexture3D: types.RWTexture3DType,
}

func isTypeStartToken(k lexer.TokenKind) bool {
	if _, ok := keywordBaseType[k]; ok {
		return true
	}
	if _, ok := readTextureBaseType[k]; ok {
		return true
	}
	if _, ok := writeTextureBaseType[k]; ok {
		return true
	}
	return k == lexer.TokSamplerState || k == lexer.TokVoid || k == lexer.TokIdent
}

// parseModifiers consumes the leading storage-class/interpolation
// keyword run of a type production (spec.md §4.4.2).
func (p *Parser) parseModifiers() types.Flags {
	var flags types.Flags
	for {
		switch {
		case p.check(lexer.TokConst):
			flags |= types.FlagConst
		case p.check(lexer.TokStatic):
			flags |= types.FlagStatic
		case p.check(lexer.TokUniform), p.check(lexer.TokInline):
			// consumed but not flag-bearing in this model
		default:
			if p.curIdentIsOneOf("linear", "centroid", "nointerpolation", "noperspective", "sample") {
				switch p.cur().Value {
				case "linear":
					flags |= types.FlagLinear
				case "centroid":
					flags |= types.FlagCentroid
				case "nointerpolation":
					flags |= types.FlagNoInterpolation
				case "noperspective":
					flags |= types.FlagNoPerspective
				case "sample":
					flags |= types.FlagSample
				}
				p.advance()
				continue
			}
			return flags
		}
		p.advance()
	}
}

func (p *Parser) curIdentIsOneOf(names ...string) bool {
	if !p.check(lexer.TokIdent) {
		return false
	}
	for _, n := range names {
		if p.cur().Value == n {
			return true
		}
	}
	return false
}

// parseType implements the `type()` production.
func (p *Parser) parseType() (types.Type, bool) {
	flags := p.parseModifiers()
	var t types.Type
	t.Flags = flags
	t.SamplerType = types.Unknown
	t.ImageFormat = types.ImageFormatNone

	switch {
	case p.check(lexer.TokVoid):
		p.advance()
		t.Base = types.Void

	case p.check(lexer.TokSamplerState):
		p.advance()
		t.Base = types.SamplerStateType

	default:
		if base, ok := keywordBaseType[p.cur().Kind]; ok {
			p.advance()
			t.Base = base
		} else if base, ok := readTextureBaseType[p.cur().Kind]; ok {
			p.advance()
			t.Base = base
			if _, ok := p.accept(lexer.TokenKind('<')); ok {
				sample, ok := p.parseType()
				if !ok {
					return t, false
				}
				t.SamplerType = sample.Base
				if _, ok := p.accept(lexer.TokenKind(',')); ok {
					if lit, ok := p.expect(lexer.TokIntLiteral); ok {
						t.SampleCount = uint8(lit.IVal)
					}
				}
				if _, ok := p.expect(lexer.TokenKind('>')); !ok {
					return t, false
				}
			}
		} else if base, ok := writeTextureBaseType[p.cur().Kind]; ok {
			p.advance()
			t.Base = base
			if _, ok := p.expect(lexer.TokenKind('<')); !ok {
				return t, false
			}
			fmtTok, ok := p.expect(lexer.TokIdent)
			if !ok {
				return t, false
			}
			elem, ok := types.ImageFormatByName(fmtTok.Value)
			if !ok {
				p.errorf("unknown image format '%s'", fmtTok.Value)
				return t, false
			}
			samplerBase, ok := types.ElementBaseType(elem)
			if !ok {
				p.errorf("image format '%s' has no matching sampler element type", fmtTok.Value)
				return t, false
			}
			t.SamplerType = samplerBase
			t.ImageFormat = types.ImageFormat(lexer.ImageFormats[fmtTok.Value] - lexer.TokImageFormatFirst)
			if _, ok := p.expect(lexer.TokenKind('>')); !ok {
				return t, false
			}
		} else if p.check(lexer.TokIdent) {
			name := p.advance().Value
			if _, ok := p.structs[name]; ok {
				t.Base = types.UserDefined
				t.TypeName = name
			} else if _, ok := p.buffers[name]; ok {
				t.Base = types.Buffer
				t.TypeName = name
			} else {
				t.Base = types.UserDefined
				t.TypeName = name
			}
		} else {
			p.errorf("expected a type, got %s", tokenDesc(p.cur().Kind))
			return t, false
		}
	}

	if _, ok := p.accept(lexer.TokenKind('[')); ok {
		t.Array = true
		if !p.check(lexer.TokenKind(']')) {
			sizeExpr, ok := p.parseExpression()
			if !ok {
				return t, false
			}
			t.ArraySize = sizeExpr
		}
		if _, ok := p.expect(lexer.TokenKind(']')); !ok {
			return t, false
		}
	}

	return t, true
}

// --- top level ---

func (p *Parser) parseTopLevel() (ast.Handle, bool) {
	if _, ok := p.accept(lexer.TokenKind(';')); ok {
		return ast.InvalidHandle, true
	}

	if p.check(lexer.TokenKind('[')) {
		if _, ok := p.parseAttributeBlock(); !ok {
			return ast.InvalidHandle, false
		}
	}

	if p.check(lexer.TokStruct) {
		return p.parseStructDecl()
	}
	if p.check(lexer.TokCBuffer) || p.check(lexer.TokTBuffer) {
		return p.parseBufferDecl()
	}

	origin := p.origin()
	t, ok := p.parseType()
	if !ok {
		return ast.InvalidHandle, false
	}
	nameTok, ok := p.expect(lexer.TokIdent)
	if !ok {
		return ast.InvalidHandle, false
	}

	if p.check(lexer.TokenKind('(')) {
		return p.parseFunctionDecl(origin, t, nameTok.Value)
	}

	return p.parseGlobalVariableDecl(origin, t, nameTok.Value)
}

func (p *Parser) parseStructDecl() (ast.Handle, bool) {
	origin := p.origin()
	p.advance() // struct
	nameTok, ok := p.expect(lexer.TokIdent)
	if !ok {
		return ast.InvalidHandle, false
	}
	if _, exists := p.structs[nameTok.Value]; exists {
		p.errorf("struct '%s' is already defined", nameTok.Value)
		return ast.InvalidHandle, false
	}
	if _, ok := p.expect(lexer.TokenKind('{')); !ok {
		return ast.InvalidHandle, false
	}

	fieldHead := ast.InvalidHandle
	for !p.check(lexer.TokenKind('}')) && !p.failed {
		fieldOrigin := p.origin()
		ft, ok := p.parseType()
		if !ok {
			return ast.InvalidHandle, false
		}
		fieldName, ok := p.expect(lexer.TokIdent)
		if !ok {
			return ast.InvalidHandle, false
		}
		// optional semantic, e.g. `: POSITION`
		if _, ok := p.accept(lexer.TokenKind(':')); ok {
			p.expect(lexer.TokIdent)
		}
		if _, ok := p.expect(lexer.TokenKind(';')); !ok {
			return ast.InvalidHandle, false
		}
		field := p.arena.NewStmt(ast.StmtStructField, fieldOrigin, ast.StructField{Name: fieldName.Value, Type: ft})
		fieldHead = p.arena.LinkStmt(fieldHead, field)
	}
	if _, ok := p.expect(lexer.TokenKind('}')); !ok {
		return ast.InvalidHandle, false
	}
	p.expect(lexer.TokenKind(';'))

	h := p.arena.NewStmt(ast.StmtStruct, origin, ast.Struct{Name: nameTok.Value, FirstField: fieldHead})
	p.structs[nameTok.Value] = h
	return h, true
}

func (p *Parser) parseBufferDecl() (ast.Handle, bool) {
	origin := p.origin()
	isTBuffer := p.check(lexer.TokTBuffer)
	p.advance()
	nameTok, ok := p.expect(lexer.TokIdent)
	if !ok {
		return ast.InvalidHandle, false
	}
	if _, exists := p.buffers[nameTok.Value]; exists {
		p.errorf("buffer '%s' is already defined", nameTok.Value)
		return ast.InvalidHandle, false
	}
	// optional `: register(bN)`
	if _, ok := p.accept(lexer.TokenKind(':')); ok {
		if !p.parseRegisterAnnotation() {
			return ast.InvalidHandle, false
		}
	}
	if _, ok := p.expect(lexer.TokenKind('{')); !ok {
		return ast.InvalidHandle, false
	}
	fieldHead := ast.InvalidHandle
	for !p.check(lexer.TokenKind('}')) && !p.failed {
		fieldOrigin := p.origin()
		ft, ok := p.parseType()
		if !ok {
			return ast.InvalidHandle, false
		}
		fieldName, ok := p.expect(lexer.TokIdent)
		if !ok {
			return ast.InvalidHandle, false
		}
		if _, ok := p.expect(lexer.TokenKind(';')); !ok {
			return ast.InvalidHandle, false
		}
		field := p.arena.NewStmt(ast.StmtStructField, fieldOrigin, ast.StructField{Name: fieldName.Value, Type: ft})
		fieldHead = p.arena.LinkStmt(fieldHead, field)
		p.declareVariable(fieldName.Value, ft)
	}
	if _, ok := p.expect(lexer.TokenKind('}')); !ok {
		return ast.InvalidHandle, false
	}
	p.expect(lexer.TokenKind(';'))

	h := p.arena.NewStmt(ast.StmtBuffer, origin, ast.Buffer{Name: nameTok.Value, IsTextureBuffer: isTBuffer, FirstField: fieldHead})
	p.buffers[nameTok.Value] = h
	return h, true
}

// parseRegisterAnnotation consumes `register(name)` and discards its
// text; nothing of it is stored on the AST (SPEC_FULL.md §12).
func (p *Parser) parseRegisterAnnotation() bool {
	if !p.curIdentIsOneOf("register") {
		p.errorf("expected 'register'")
		return false
	}
	p.advance()
	if _, ok := p.expect(lexer.TokenKind('(')); !ok {
		return false
	}
	for !p.check(lexer.TokenKind(')')) && !p.check(lexer.TokEOF) {
		p.advance()
	}
	_, ok := p.expect(lexer.TokenKind(')'))
	return ok
}

func (p *Parser) parseAttributeBlock() (ast.Handle, bool) {
	origin := p.origin()
	if _, ok := p.expect(lexer.TokenKind('[')); !ok {
		return ast.InvalidHandle, false
	}
	head := ast.InvalidHandle
	for {
		nameTok, ok := p.expect(lexer.TokIdent)
		if !ok {
			return ast.InvalidHandle, false
		}
		var args []ast.Handle
		if _, ok := p.accept(lexer.TokenKind('(')); ok {
			for !p.check(lexer.TokenKind(')')) {
				e, ok := p.parseExpression()
				if !ok {
					return ast.InvalidHandle, false
				}
				args = append(args, e)
				if _, ok := p.accept(lexer.TokenKind(',')); !ok {
					break
				}
			}
			if _, ok := p.expect(lexer.TokenKind(')')); !ok {
				return ast.InvalidHandle, false
			}
		}
		if nameTok.Value == "numthreads" && len(args) != 3 {
			p.errorf("numThreads expects three integral expressions")
			return ast.InvalidHandle, false
		}
		attr := p.arena.NewStmt(ast.StmtAttribute, origin, ast.Attribute{Name: nameTok.Value, Args: args})
		head = p.arena.LinkStmt(head, attr)
		if _, ok := p.accept(lexer.TokenKind(',')); !ok {
			break
		}
	}
	_, ok := p.expect(lexer.TokenKind(']'))
	return head, ok
}

func (p *Parser) parseGlobalVariableDecl(origin ast.Origin, t types.Type, name string) (ast.Handle, bool) {
	head := ast.InvalidHandle
	for {
		declType := t
		if _, ok := p.accept(lexer.TokenKind('[')); ok {
			declType.Array = true
			if !p.check(lexer.TokenKind(']')) {
				sizeExpr, ok := p.parseExpression()
				if !ok {
					return ast.InvalidHandle, false
				}
				declType.ArraySize = sizeExpr
			}
			if _, ok := p.expect(lexer.TokenKind(']')); !ok {
				return ast.InvalidHandle, false
			}
		}
		// optional `: register(...)` or `: SEMANTIC`
		if _, ok := p.accept(lexer.TokenKind(':')); ok {
			if p.curIdentIsOneOf("register") {
				if !p.parseRegisterAnnotation() {
					return ast.InvalidHandle, false
				}
			} else {
				p.expect(lexer.TokIdent)
			}
		}
		init := ast.InvalidHandle
		if _, ok := p.accept(lexer.TokenKind('=')); ok {
			e, ok := p.parseExpression()
			if !ok {
				return ast.InvalidHandle, false
			}
			init = e
		}
		p.declareVariable(name, declType)
		decl := p.arena.NewStmt(ast.StmtDeclaration, origin, ast.Declaration{Name: name, Type: declType, Init: init, Global: true})
		head = p.arena.LinkStmt(head, decl)

		if _, ok := p.accept(lexer.TokenKind(',')); !ok {
			break
		}
		nameTok, ok := p.expect(lexer.TokIdent)
		if !ok {
			return ast.InvalidHandle, false
		}
		name = nameTok.Value
	}
	if _, ok := p.expect(lexer.TokenKind(';')); !ok {
		return ast.InvalidHandle, false
	}
	return head, true
}

func (p *Parser) parseFunctionDecl(origin ast.Origin, ret types.Type, name string) (ast.Handle, bool) {
	if _, ok := p.expect(lexer.TokenKind('(')); !ok {
		return ast.InvalidHandle, false
	}

	p.beginScope()
	argHead := ast.InvalidHandle
	var paramTypes []types.Type
	seenDefault := false
	for !p.check(lexer.TokenKind(')')) {
		modifier := ast.ArgIn
		switch {
		case p.check(lexer.TokIn):
			p.advance()
		case p.check(lexer.TokOut):
			p.advance()
			modifier = ast.ArgOut
		case p.check(lexer.TokInOut):
			p.advance()
			modifier = ast.ArgInOut
		case p.check(lexer.TokUniform):
			p.advance()
			modifier = ast.ArgUniform
		}
		argOrigin := p.origin()
		at, ok := p.parseType()
		if !ok {
			return ast.InvalidHandle, false
		}
		argNameTok, ok := p.expect(lexer.TokIdent)
		if !ok {
			return ast.InvalidHandle, false
		}
		semantic := ""
		if _, ok := p.accept(lexer.TokenKind(':')); ok {
			if s, ok := p.expect(lexer.TokIdent); ok {
				semantic = s.Value
			}
		}
		def := ast.InvalidHandle
		if _, ok := p.accept(lexer.TokenKind('=')); ok {
			e, ok := p.parseExpression()
			if !ok {
				return ast.InvalidHandle, false
			}
			def = e
			seenDefault = true
		} else if seenDefault {
			p.errorf("parameter '%s' must have a default value", argNameTok.Value)
			return ast.InvalidHandle, false
		}
		p.declareVariable(argNameTok.Value, at)
		argH := p.arena.NewStmt(ast.StmtArgument, argOrigin, ast.Argument{
			Name: argNameTok.Value, Type: at, Semantic: semantic, DefaultValue: def, Modifier: modifier,
		})
		argHead = p.arena.LinkStmt(argHead, argH)
		paramTypes = append(paramTypes, at)

		if _, ok := p.accept(lexer.TokenKind(',')); !ok {
			break
		}
	}
	if _, ok := p.expect(lexer.TokenKind(')')); !ok {
		p.endScope()
		return ast.InvalidHandle, false
	}

	// optional return semantic
	if _, ok := p.accept(lexer.TokenKind(':')); ok {
		p.expect(lexer.TokIdent)
	}

	var forward ast.Handle
	for _, fe := range p.functions[name] {
		if fe.ret.Equal(ret) && sameParams(fe.params, paramTypes) {
			if fe.hasBody {
				p.errorf("function '%s' is already defined", name)
				p.endScope()
				return ast.InvalidHandle, false
			}
			forward = fe.handle
		}
	}

	if _, ok := p.accept(lexer.TokenKind(';')); ok {
		p.endScope()
		fn := ast.Function{Name: name, ReturnType: ret, FirstArgument: argHead, Body: ast.InvalidHandle}
		h := p.arena.NewStmt(ast.StmtFunction, origin, fn)
		p.functions[name] = append(p.functions[name], &functionEntry{handle: h, name: name, ret: ret, params: paramTypes})
		return h, true
	}

	body, ok := p.parseBlock()
	p.endScope()
	if !ok {
		return ast.InvalidHandle, false
	}

	fn := ast.Function{Name: name, ReturnType: ret, FirstArgument: argHead, Body: body, Forward: forward}
	h := p.arena.NewStmt(ast.StmtFunction, origin, fn)
	p.functions[name] = append(p.functions[name], &functionEntry{handle: h, name: name, ret: ret, params: paramTypes, hasBody: true})
	return h, true
}

func sameParams(a, b []types.Type) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}

// --- statements ---

func (p *Parser) parseBlock() (ast.Handle, bool) {
	origin := p.origin()
	if _, ok := p.expect(lexer.TokenKind('{')); !ok {
		return ast.InvalidHandle, false
	}
	p.beginScope()
	head := ast.InvalidHandle
	for !p.check(lexer.TokenKind('}')) && !p.failed {
		s, ok := p.parseStatement()
		if !ok {
			p.endScope()
			return ast.InvalidHandle, false
		}
		if s != ast.InvalidHandle {
			head = p.arena.LinkStmt(head, s)
		}
	}
	p.endScope()
	if _, ok := p.expect(lexer.TokenKind('}')); !ok {
		return ast.InvalidHandle, false
	}
	return p.arena.NewStmt(ast.StmtBlock, origin, ast.Block{FirstStatement: head}), true
}

func (p *Parser) parseStatement() (ast.Handle, bool) {
	origin := p.origin()

	if _, ok := p.accept(lexer.TokenKind(';')); ok {
		return ast.InvalidHandle, true
	}

	if p.check(lexer.TokenKind('[')) {
		if _, ok := p.parseAttributeBlock(); !ok {
			return ast.InvalidHandle, false
		}
		return p.parseStatement()
	}

	if p.check(lexer.TokenKind('{')) {
		return p.parseBlock()
	}

	switch {
	case p.check(lexer.TokIf):
		return p.parseIf(origin)
	case p.check(lexer.TokFor):
		return p.parseFor(origin)
	case p.check(lexer.TokDiscard):
		p.advance()
		p.expect(lexer.TokenKind(';'))
		return p.arena.NewStmt(ast.StmtDiscard, origin, ast.Discard{}), true
	case p.check(lexer.TokBreak):
		p.advance()
		p.expect(lexer.TokenKind(';'))
		return p.arena.NewStmt(ast.StmtBreak, origin, ast.Break{}), true
	case p.check(lexer.TokContinue):
		p.advance()
		p.expect(lexer.TokenKind(';'))
		return p.arena.NewStmt(ast.StmtContinue, origin, ast.Continue{}), true
	case p.check(lexer.TokReturn):
		p.advance()
		expr := ast.InvalidHandle
		if !p.check(lexer.TokenKind(';')) {
			e, ok := p.parseExpression()
			if !ok {
				return ast.InvalidHandle, false
			}
			expr = e
		}
		p.expect(lexer.TokenKind(';'))
		return p.arena.NewStmt(ast.StmtReturn, origin, ast.Return{Expr: expr}), true
	}

	if isTypeStartToken(p.cur().Kind) && p.looksLikeDeclaration() {
		return p.parseLocalDeclaration(origin)
	}

	e, ok := p.parseExpression()
	if !ok {
		return ast.InvalidHandle, false
	}
	if _, ok := p.expect(lexer.TokenKind(';')); !ok {
		return ast.InvalidHandle, false
	}
	return p.arena.NewStmt(ast.StmtExpressionStatement, origin, ast.ExpressionStatement{Expr: e}), true
}

// looksLikeDeclaration disambiguates `Type name` from a bare
// expression statement starting with an identifier (e.g. a function
// call or assignment to an existing variable) by checking whether the
// identifier names a known type and is followed by another identifier.
func (p *Parser) looksLikeDeclaration() bool {
	if p.cur().Kind != lexer.TokIdent {
		return true // builtin type keyword always starts a declaration
	}
	name := p.cur().Value
	_, isStruct := p.structs[name]
	if !isStruct {
		return false
	}
	next := p.pos + 1
	if next >= len(p.tokens) {
		return false
	}
	return p.tokens[next].Kind == lexer.TokIdent
}

func (p *Parser) parseLocalDeclaration(origin ast.Origin) (ast.Handle, bool) {
	t, ok := p.parseType()
	if !ok {
		return ast.InvalidHandle, false
	}
	head := ast.InvalidHandle
	for {
		nameTok, ok := p.expect(lexer.TokIdent)
		if !ok {
			return ast.InvalidHandle, false
		}
		declType := t
		if _, ok := p.accept(lexer.TokenKind('[')); ok {
			declType.Array = true
			if !p.check(lexer.TokenKind(']')) {
				sizeExpr, ok := p.parseExpression()
				if !ok {
					return ast.InvalidHandle, false
				}
				declType.ArraySize = sizeExpr
			}
			if _, ok := p.expect(lexer.TokenKind(']')); !ok {
				return ast.InvalidHandle, false
			}
		}
		init := ast.InvalidHandle
		if _, ok := p.accept(lexer.TokenKind('=')); ok {
			e, ok := p.parseExpression()
			if !ok {
				return ast.InvalidHandle, false
			}
			init = e
			if !p.opts.DisableSemanticValidation {
				if rank := p.assignRank(p.exprType(e), declType); rank < 0 {
					p.errorf("cannot implicitly convert initializer to '%s'", types.Describe(declType.Base).Name)
					return ast.InvalidHandle, false
				}
			}
		}
		p.declareVariable(nameTok.Value, declType)
		decl := p.arena.NewStmt(ast.StmtDeclaration, origin, ast.Declaration{Name: nameTok.Value, Type: declType, Init: init})
		head = p.arena.LinkStmt(head, decl)

		if _, ok := p.accept(lexer.TokenKind(',')); !ok {
			break
		}
	}
	if _, ok := p.expect(lexer.TokenKind(';')); !ok {
		return ast.InvalidHandle, false
	}
	return head, true
}

func (p *Parser) assignRank(src, dst types.Type) int {
	if src.Base == types.UserDefined && dst.Base == types.UserDefined {
		return types.UserCastRank(src.TypeName, dst.TypeName)
	}
	return types.CastRank(src.Base, dst.Base)
}

func (p *Parser) parseIf(origin ast.Origin) (ast.Handle, bool) {
	p.advance()
	if _, ok := p.expect(lexer.TokenKind('(')); !ok {
		return ast.InvalidHandle, false
	}
	cond, ok := p.parseExpression()
	if !ok {
		return ast.InvalidHandle, false
	}
	if _, ok := p.expect(lexer.TokenKind(')')); !ok {
		return ast.InvalidHandle, false
	}
	then, ok := p.parseStatement()
	if !ok {
		return ast.InvalidHandle, false
	}
	elseH := ast.InvalidHandle
	if _, ok := p.accept(lexer.TokElse); ok {
		e, ok := p.parseStatement()
		if !ok {
			return ast.InvalidHandle, false
		}
		elseH = e
	}
	return p.arena.NewStmt(ast.StmtIf, origin, ast.If{Cond: cond, Then: then, Else: elseH}), true
}

func (p *Parser) parseFor(origin ast.Origin) (ast.Handle, bool) {
	p.advance()
	if _, ok := p.expect(lexer.TokenKind('(')); !ok {
		return ast.InvalidHandle, false
	}
	p.beginScope()

	initOrigin := p.origin()
	init := ast.InvalidHandle
	if !p.check(lexer.TokenKind(';')) {
		if isTypeStartToken(p.cur().Kind) && p.looksLikeDeclaration() {
			t, ok := p.parseType()
			if !ok {
				p.endScope()
				return ast.InvalidHandle, false
			}
			nameTok, ok := p.expect(lexer.TokIdent)
			if !ok {
				p.endScope()
				return ast.InvalidHandle, false
			}
			declInit := ast.InvalidHandle
			if _, ok := p.accept(lexer.TokenKind('=')); ok {
				e, ok := p.parseExpression()
				if !ok {
					p.endScope()
					return ast.InvalidHandle, false
				}
				declInit = e
			}
			p.declareVariable(nameTok.Value, t)
			init = p.arena.NewStmt(ast.StmtDeclaration, initOrigin, ast.Declaration{Name: nameTok.Value, Type: t, Init: declInit})
		} else {
			e, ok := p.parseExpression()
			if !ok {
				p.endScope()
				return ast.InvalidHandle, false
			}
			init = p.arena.NewStmt(ast.StmtExpressionStatement, initOrigin, ast.ExpressionStatement{Expr: e})
		}
	}
	if _, ok := p.expect(lexer.TokenKind(';')); !ok {
		p.endScope()
		return ast.InvalidHandle, false
	}

	cond := ast.InvalidHandle
	if !p.check(lexer.TokenKind(';')) {
		e, ok := p.parseExpression()
		if !ok {
			p.endScope()
			return ast.InvalidHandle, false
		}
		cond = e
	}
	if _, ok := p.expect(lexer.TokenKind(';')); !ok {
		p.endScope()
		return ast.InvalidHandle, false
	}

	update := ast.InvalidHandle
	if !p.check(lexer.TokenKind(')')) {
		e, ok := p.parseExpression()
		if !ok {
			p.endScope()
			return ast.InvalidHandle, false
		}
		update = e
	}
	if _, ok := p.expect(lexer.TokenKind(')')); !ok {
		p.endScope()
		return ast.InvalidHandle, false
	}

	body, ok := p.parseStatement()
	p.endScope()
	if !ok {
		return ast.InvalidHandle, false
	}
	return p.arena.NewStmt(ast.StmtFor, origin, ast.For{Init: init, Cond: cond, Update: update, Body: body}), true
}

// --- expressions ---

// precedence matches spec.md §4.4.1 (larger binds tighter).
var precedence = map[lexer.TokenKind]int{
	lexer.TokenKind('*'): 9, lexer.TokenKind('/'): 9,
	lexer.TokenKind('+'): 8, lexer.TokenKind('-'): 8,
	lexer.TokenKind('<'): 7, lexer.TokenKind('>'): 7, lexer.TokLessEqual: 7, lexer.TokGreaterEqual: 7,
	lexer.TokEqualEqual: 6, lexer.TokNotEqual: 6,
	lexer.TokenKind('&'): 5,
	lexer.TokenKind('^'): 4,
	lexer.TokenKind('|'): 3,
	lexer.TokAndAnd:      2,
	lexer.TokBarBar:      1,
}

var binOpFor = map[lexer.TokenKind]types.BinaryOp{
	lexer.TokenKind('*'): types.OpMul, lexer.TokenKind('/'): types.OpDiv,
	lexer.TokenKind('+'): types.OpAdd, lexer.TokenKind('-'): types.OpSub,
	lexer.TokenKind('<'): types.OpLess, lexer.TokenKind('>'): types.OpGreater,
	lexer.TokLessEqual: types.OpLessEqual, lexer.TokGreaterEqual: types.OpGreaterEqual,
	lexer.TokEqualEqual: types.OpEqual, lexer.TokNotEqual: types.OpNotEqual,
	lexer.TokenKind('&'): types.OpBitAnd, lexer.TokenKind('^'): types.OpBitXor, lexer.TokenKind('|'): types.OpBitOr,
	lexer.TokAndAnd: types.OpAnd, lexer.TokBarBar: types.OpOr,
}

var assignOps = map[lexer.TokenKind]types.BinaryOp{
	lexer.TokenKind('='): types.OpAssign,
	lexer.TokPlusEqual:   types.OpAdd,
	lexer.TokMinusEqual:  types.OpSub,
	lexer.TokTimesEqual:  types.OpMul,
	lexer.TokDivideEqual: types.OpDiv,
}

func (p *Parser) exprType(h ast.Handle) types.Type {
	return p.arena.Expr(h).Type
}

// parseExpression parses a full expression including the trailing
// assignment/conditional forms, per spec.md: "assignment forms are
// parsed at the outer expression level after a binary-expression
// completes".
func (p *Parser) parseExpression() (ast.Handle, bool) {
	lhs, ok := p.parseConditional()
	if !ok {
		return ast.InvalidHandle, false
	}
	if op, ok := assignOps[p.cur().Kind]; ok {
		origin := p.origin()
		isPlain := p.cur().Kind == lexer.TokenKind('=')
		p.advance()
		rhs, ok := p.parseExpression()
		if !ok {
			return ast.InvalidHandle, false
		}
		if !p.opts.DisableSemanticValidation && !isPlain {
			lt := p.exprType(lhs)
			rt := p.exprType(rhs)
			if _, ok := types.BinaryOpResultType(op, lt.Base, rt.Base); !ok {
				p.errorf("no binary operator found for compound assignment")
				return ast.InvalidHandle, false
			}
		}
		h := p.arena.NewExpr(ast.ExprBinary, origin, ast.Binary{Op: op, Left: lhs, Right: rhs, Assign: true})
		p.arena.SetExprType(h, p.exprType(lhs))
		return h, true
	}
	return lhs, true
}

func (p *Parser) parseConditional() (ast.Handle, bool) {
	cond, ok := p.parseBinaryExpression(1)
	if !ok {
		return ast.InvalidHandle, false
	}
	if _, ok := p.accept(lexer.TokenKind('?')); ok {
		origin := p.origin()
		then, ok := p.parseExpression()
		if !ok {
			return ast.InvalidHandle, false
		}
		if _, ok := p.expect(lexer.TokenKind(':')); !ok {
			return ast.InvalidHandle, false
		}
		elseE, ok := p.parseExpression()
		if !ok {
			return ast.InvalidHandle, false
		}
		h := p.arena.NewExpr(ast.ExprConditional, origin, ast.Conditional{Cond: cond, Then: then, Else: elseE})
		p.arena.SetExprType(h, p.exprType(then))
		return h, true
	}
	return cond, true
}

// parseBinaryExpression implements precedence climbing starting from
// minPriority, per spec.md's binary_expression(priority) production.
func (p *Parser) parseBinaryExpression(minPriority int) (ast.Handle, bool) {
	lhs, ok := p.parseUnary()
	if !ok {
		return ast.InvalidHandle, false
	}
	for {
		prio, isBin := precedence[p.cur().Kind]
		if !isBin || prio < minPriority {
			return lhs, true
		}
		opTok := p.advance()
		origin := ast.Origin{File: p.file, Line: opTok.Line}
		rhs, ok := p.parseBinaryExpression(prio + 1)
		if !ok {
			return ast.InvalidHandle, false
		}

		op := binOpFor[opTok.Kind]
		resultType := types.Type{Base: types.Unknown}
		if !p.opts.DisableSemanticValidation {
			lt, rt := p.exprType(lhs), p.exprType(rhs)
			rb, ok := types.BinaryOpResultType(op, lt.Base, rt.Base)
			if !ok {
				p.errorf("binary '%s' has no global operator matching the given operands", opTok.Kind.String())
				return ast.InvalidHandle, false
			}
			resultType = types.Type{Base: rb, Flags: constFlag(lt, rt)}
		}

		h := p.arena.NewExpr(ast.ExprBinary, origin, ast.Binary{Op: op, Left: lhs, Right: rhs})
		p.arena.SetExprType(h, resultType)
		lhs = h
	}
}

func constFlag(a, b types.Type) types.Flags {
	if a.IsConst() && b.IsConst() {
		return types.FlagConst
	}
	return 0
}

var unaryOps = map[lexer.TokenKind]ast.UnaryOp{
	lexer.TokenKind('+'): ast.UnaryPlus, lexer.TokenKind('-'): ast.UnaryMinus,
	lexer.TokenKind('!'): ast.UnaryNot, lexer.TokenKind('~'): ast.UnaryBitNot,
	lexer.TokPlusPlus: ast.UnaryPreIncrement, lexer.TokMinusMinus: ast.UnaryPreDecrement,
}

func (p *Parser) parseUnary() (ast.Handle, bool) {
	if op, ok := unaryOps[p.cur().Kind]; ok {
		origin := p.origin()
		p.advance()
		inner, ok := p.parseUnary()
		if !ok {
			return ast.InvalidHandle, false
		}
		h := p.arena.NewExpr(ast.ExprUnary, origin, ast.Unary{Op: op, Expr: inner})
		p.arena.SetExprType(h, p.exprType(inner))
		return h, true
	}

	// explicit cast: `(Type)expr`, disambiguated from a parenthesized
	// expression by whether the token after '(' starts a type.
	if p.check(lexer.TokenKind('(')) && p.looksLikeCast() {
		origin := p.origin()
		p.advance()
		t, ok := p.parseType()
		if !ok {
			return ast.InvalidHandle, false
		}
		if _, ok := p.expect(lexer.TokenKind(')')); !ok {
			return ast.InvalidHandle, false
		}
		inner, ok := p.parseUnary()
		if !ok {
			return ast.InvalidHandle, false
		}
		if !p.opts.DisableSemanticValidation {
			if rank := p.assignRank(p.exprType(inner), t); rank < 0 {
				p.errorf("cannot cast to '%s'", types.Describe(t.Base).Name)
				return ast.InvalidHandle, false
			}
		}
		h := p.arena.NewExpr(ast.ExprCast, origin, ast.Cast{Target: t, Expr: inner})
		p.arena.SetExprType(h, t)
		return h, true
	}

	return p.parsePostfix()
}

func (p *Parser) looksLikeCast() bool {
	save := p.pos
	defer func() { p.pos = save }()
	p.advance() // '('
	if !isTypeStartToken(p.cur().Kind) {
		return false
	}
	if p.cur().Kind == lexer.TokIdent {
		if _, ok := p.structs[p.cur().Value]; !ok {
			return false
		}
	}
	p.parseModifiers()
	if _, ok := keywordBaseType[p.cur().Kind]; !ok {
		if _, ok := p.structs[p.cur().Value]; !ok {
			return false
		}
	}
	p.advance()
	return p.cur().Kind == lexer.TokenKind(')')
}

func (p *Parser) parsePostfix() (ast.Handle, bool) {
	e, ok := p.parseTerminal()
	if !ok {
		return ast.InvalidHandle, false
	}
	for {
		switch {
		case p.check(lexer.TokenKind('.')):
			origin := p.origin()
			p.advance()
			nameTok, ok := p.expect(lexer.TokIdent)
			if !ok {
				return ast.InvalidHandle, false
			}
			if p.check(lexer.TokenKind('(')) {
				call, ok := p.parseMethodCall(origin, e, nameTok.Value)
				if !ok {
					return ast.InvalidHandle, false
				}
				e = call
				continue
			}
			member, ok := p.resolveMember(origin, e, nameTok.Value)
			if !ok {
				return ast.InvalidHandle, false
			}
			e = member

		case p.check(lexer.TokenKind('[')):
			origin := p.origin()
			p.advance()
			idx, ok := p.parseExpression()
			if !ok {
				return ast.InvalidHandle, false
			}
			if _, ok := p.expect(lexer.TokenKind(']')); !ok {
				return ast.InvalidHandle, false
			}
			resultType := p.arrayAccessType(p.exprType(e))
			h := p.arena.NewExpr(ast.ExprArrayAccess, origin, ast.ArrayAccess{Object: e, Index: idx})
			p.arena.SetExprType(h, resultType)
			e = h

		case p.check(lexer.TokPlusPlus), p.check(lexer.TokMinusMinus):
			origin := p.origin()
			op := ast.UnaryPostIncrement
			if p.check(lexer.TokMinusMinus) {
				op = ast.UnaryPostDecrement
			}
			p.advance()
			h := p.arena.NewExpr(ast.ExprUnary, origin, ast.Unary{Op: op, Expr: e})
			p.arena.SetExprType(h, p.exprType(e))
			e = h

		default:
			return e, true
		}
	}
}

// arrayAccessType implements spec.md §4.4.7.
func (p *Parser) arrayAccessType(t types.Type) types.Type {
	if t.Array {
		elem := t
		elem.Array = false
		elem.ArraySize = ast.InvalidHandle
		return elem
	}
	switch t.Base {
	case types.Float2, types.Float3, types.Float4:
		return types.Type{Base: types.Float}
	case types.Half2, types.Half3, types.Half4:
		return types.Type{Base: types.Half}
	case types.Bool2, types.Bool3, types.Bool4:
		return types.Type{Base: types.Bool}
	case types.Int2, types.Int3, types.Int4:
		return types.Type{Base: types.Int}
	case types.Uint2, types.Uint3, types.Uint4:
		return types.Type{Base: types.Uint}
	case types.Float2x2:
		return types.Type{Base: types.Float2}
	case types.Float3x3:
		return types.Type{Base: types.Float3}
	case types.Float4x4:
		return types.Type{Base: types.Float4}
	case types.Float4x3:
		return types.Type{Base: types.Float3}
	case types.Float4x2:
		return types.Type{Base: types.Float2}
	case types.Half2x2:
		return types.Type{Base: types.Half2}
	case types.Half3x3:
		return types.Type{Base: types.Half3}
	case types.Half4x4:
		return types.Type{Base: types.Half4}
	case types.Half4x3:
		return types.Type{Base: types.Half3}
	case types.Half4x2:
		return types.Type{Base: types.Half2}
	}
	return t
}

// swizzleIndex maps a swizzle letter to its 0-based component index.
func swizzleIndex(c byte) (int, bool) {
	switch c {
	case 'x', 'r':
		return 0, true
	case 'y', 'g':
		return 1, true
	case 'z', 'b':
		return 2, true
	case 'w', 'a':
		return 3, true
	}
	return 0, false
}

func vectorOfLen(family types.NumericFamily, n int) types.BaseType {
	table := map[types.NumericFamily][4]types.BaseType{
		types.NumericFloat: {types.Float, types.Float2, types.Float3, types.Float4},
		types.NumericHalf:  {types.Half, types.Half2, types.Half3, types.Half4},
		types.NumericBool:  {types.Bool, types.Bool2, types.Bool3, types.Bool4},
		types.NumericInt:   {types.Int, types.Int2, types.Int3, types.Int4},
		types.NumericUint:  {types.Uint, types.Uint2, types.Uint3, types.Uint4},
	}
	row, ok := table[family]
	if !ok || n < 1 || n > 4 {
		return types.Unknown
	}
	return row[n-1]
}

// resolveMember implements spec.md §4.4.6.
func (p *Parser) resolveMember(origin ast.Origin, obj ast.Handle, field string) (ast.Handle, bool) {
	objType := p.exprType(obj)

	if objType.Base == types.UserDefined {
		fieldType, ok := p.lookupStructField(objType.TypeName, field)
		if !ok {
			p.errorf("'%s' is not a member of '%s'", field, objType.TypeName)
			return ast.InvalidHandle, false
		}
		h := p.arena.NewExpr(ast.ExprMemberAccess, origin, ast.MemberAccess{Object: obj, Field: field})
		p.arena.SetExprType(h, fieldType)
		return h, true
	}

	if objType.Base == types.Buffer {
		fieldType, ok := p.lookupBufferField(objType.TypeName, field)
		if !ok {
			p.errorf("'%s' is not a member of '%s'", field, objType.TypeName)
			return ast.InvalidHandle, false
		}
		h := p.arena.NewExpr(ast.ExprMemberAccess, origin, ast.MemberAccess{Object: obj, Field: field})
		p.arena.SetExprType(h, fieldType)
		return h, true
	}

	desc := types.Describe(objType.Base)

	if desc.NumDimensions <= 1 && desc.Numeric != types.NumericNaN {
		if len(field) < 1 || len(field) > 4 {
			p.errorf("invalid swizzle '%s'", field)
			return ast.InvalidHandle, false
		}
		indices := make([]int, len(field))
		for i := 0; i < len(field); i++ {
			idx, ok := swizzleIndex(field[i])
			if !ok {
				p.errorf("invalid swizzle '%s'", field)
				return ast.InvalidHandle, false
			}
			indices[i] = idx
		}
		resultBase := vectorOfLen(desc.Numeric, len(field))
		h := p.arena.NewExpr(ast.ExprMemberAccess, origin, ast.MemberAccess{Object: obj, Field: field, Swizzle: indices})
		p.arena.SetExprType(h, types.Type{Base: resultBase})
		return h, true
	}

	if desc.NumDimensions == 2 {
		indices, ok := parseMatrixElementSequence(field, desc.Height, desc.NumComponents)
		if !ok {
			p.errorf("invalid matrix element access '%s'", field)
			return ast.InvalidHandle, false
		}
		resultBase := vectorOfLen(desc.Numeric, len(indices)/2)
		h := p.arena.NewExpr(ast.ExprMemberAccess, origin, ast.MemberAccess{Object: obj, Field: field, Swizzle: indices})
		p.arena.SetExprType(h, types.Type{Base: resultBase})
		return h, true
	}

	p.errorf("'%s' has no members", types.Describe(objType.Base).Name)
	return ast.InvalidHandle, false
}

// parseMatrixElementSequence parses a run of `_mRC` (0-based) or `_RC`
// (1-based) matrix element accessors, returning a flat (row, col, row,
// col, ...) index list.
func parseMatrixElementSequence(field string, height, width int) ([]int, bool) {
	var out []int
	i := 0
	for i < len(field) {
		if field[i] != '_' {
			return nil, false
		}
		i++
		zeroBased := false
		if i < len(field) && field[i] == 'm' {
			zeroBased = true
			i++
		}
		if i+1 >= len(field) {
			return nil, false
		}
		r := int(field[i] - '0')
		c := int(field[i+1] - '0')
		i += 2
		if !zeroBased {
			r--
			c--
		}
		if r < 0 || r >= height || c < 0 || c >= width {
			return nil, false
		}
		out = append(out, r, c)
	}
	if len(out) == 0 || len(out)/2 > 4 {
		return nil, false
	}
	return out, true
}

func (p *Parser) lookupStructField(structName, field string) (types.Type, bool) {
	h, ok := p.structs[structName]
	if !ok {
		return types.Type{}, false
	}
	st := p.arena.Stmt(h).Data.(ast.Struct)
	cur := st.FirstField
	for cur != ast.InvalidHandle {
		f := p.arena.Stmt(cur).Data.(ast.StructField)
		if f.Name == field {
			return f.Type, true
		}
		cur = p.arena.Stmt(cur).Next
	}
	return types.Type{}, false
}

func (p *Parser) lookupBufferField(bufferName, field string) (types.Type, bool) {
	h, ok := p.buffers[bufferName]
	if !ok {
		return types.Type{}, false
	}
	buf := p.arena.Stmt(h).Data.(ast.Buffer)
	cur := buf.FirstField
	for cur != ast.InvalidHandle {
		f := p.arena.Stmt(cur).Data.(ast.StructField)
		if f.Name == field {
			return f.Type, true
		}
		cur = p.arena.Stmt(cur).Next
	}
	return types.Type{}, false
}

func (p *Parser) parseMethodCall(origin ast.Origin, obj ast.Handle, name string) (ast.Handle, bool) {
	args, argTypes, ok := p.parseArgumentList()
	if !ok {
		return ast.InvalidHandle, false
	}
	objType := p.exprType(obj)

	resultType := types.Type{Base: types.Unknown}
	if !p.opts.DisableSemanticValidation {
		candidates := intrinsics.MethodsNamed(name)
		var best *intrinsics.Method
		bestRanks := []int(nil)
		for i := range candidates {
			m := &candidates[i]
			if m.SelfType != objType.Base {
				continue
			}
			mParams := make([]types.Type, len(m.Params))
			for j, b := range m.Params {
				mParams[j] = types.Type{Base: b}
			}
			ranks, ok := rankParams(argTypes, mParams)
			if !ok {
				continue
			}
			if best == nil || lessRankVector(sortedDesc(ranks), sortedDesc(bestRanks)) {
				best = m
				bestRanks = ranks
			}
		}
		if best == nil {
			p.errorf("'%s' no overloaded method matched all of the arguments", name)
			return ast.InvalidHandle, false
		}
		resultType = types.Type{Base: vectorOfLen(best.ReturnFamily, 4)}
	}

	var argHead ast.Handle
	for _, a := range args {
		argHead = p.arena.LinkExpr(argHead, a)
	}
	h := p.arena.NewExpr(ast.ExprMethodCall, origin, ast.MethodCall{Object: obj, Name: name, FirstArgument: argHead})
	p.arena.SetExprType(h, resultType)
	return h, true
}

func (p *Parser) parseArgumentList() ([]ast.Handle, []types.Type, bool) {
	if _, ok := p.expect(lexer.TokenKind('(')); !ok {
		return nil, nil, false
	}
	var args []ast.Handle
	var argTypes []types.Type
	for !p.check(lexer.TokenKind(')')) {
		e, ok := p.parseExpression()
		if !ok {
			return nil, nil, false
		}
		args = append(args, e)
		argTypes = append(argTypes, p.exprType(e))
		if _, ok := p.accept(lexer.TokenKind(',')); !ok {
			break
		}
	}
	if _, ok := p.expect(lexer.TokenKind(')')); !ok {
		return nil, nil, false
	}
	return args, argTypes, true
}

// rankParams computes the per-argument cast rank vector of args
// against params, or (nil, false) if any argument is non-viable,
// mirroring GetFunctionCallCastRanks.
func rankParams(args, params []types.Type) ([]int, bool) {
	if len(args) > len(params) {
		return nil, false
	}
	ranks := make([]int, len(args))
	for i, a := range args {
		r := types.CastRank(a.Base, params[i].Base)
		if a.Base == types.UserDefined && params[i].Base == types.UserDefined {
			r = types.UserCastRank(a.TypeName, params[i].TypeName)
		}
		if r < 0 {
			return nil, false
		}
		ranks[i] = r
	}
	return ranks, true
}

func sortedDesc(ranks []int) []int {
	out := append([]int(nil), ranks...)
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j-1] < out[j]; j-- {
			out[j-1], out[j] = out[j], out[j-1]
		}
	}
	return out
}

// lessRankVector compares two sorted-descending rank vectors
// lexicographically: the first position where one is strictly smaller
// wins (spec.md §4.4.4 step 4).
func lessRankVector(a, b []int) bool {
	if b == nil {
		return true
	}
	if a == nil {
		return false
	}
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return len(a) < len(b)
}

func (p *Parser) parseFunctionCall(origin ast.Origin, name string) (ast.Handle, bool) {
	args, argTypes, ok := p.parseArgumentList()
	if !ok {
		return ast.InvalidHandle, false
	}

	resultType := types.Type{Base: types.Unknown}
	isIntrinsic := false

	if !p.opts.DisableSemanticValidation {
		if entries, ok := p.functions[name]; ok {
			var bestRanks []int
			var bestRet types.Type
			found := false
			for _, fe := range entries {
				ranks, ok := rankParams(argTypes, fe.params)
				if !ok {
					continue
				}
				if !found || lessRankVector(sortedDesc(ranks), sortedDesc(bestRanks)) {
					bestRanks = ranks
					bestRet = fe.ret
					found = true
				}
			}
			if !found {
				p.errorf("'%s' no overloaded function matched all of the arguments", name)
				return ast.InvalidHandle, false
			}
			resultType = bestRet
		} else if overloads, ok := intrinsics.Lookup(name); ok {
			isIntrinsic = true
			var bestRanks []int
			var bestRet types.Type
			found := false
			for _, o := range overloads {
				params := make([]types.Type, len(o.Params))
				for i, b := range o.Params {
					params[i] = types.Type{Base: b}
				}
				ranks, ok := rankParams(argTypes, params)
				if !ok {
					continue
				}
				if !found || lessRankVector(sortedDesc(ranks), sortedDesc(bestRanks)) {
					bestRanks = ranks
					bestRet = types.Type{Base: o.Return}
					found = true
				}
			}
			if !found {
				p.errorf("'%s' no overloaded function matched all of the arguments", name)
				return ast.InvalidHandle, false
			}
			resultType = bestRet
		} else {
			p.errorf("undeclared identifier '%s'", name)
			return ast.InvalidHandle, false
		}
	}

	var argHead ast.Handle
	for _, a := range args {
		argHead = p.arena.LinkExpr(argHead, a)
	}
	h := p.arena.NewExpr(ast.ExprFunctionCall, origin, ast.FunctionCall{Name: name, FirstArgument: argHead, IsIntrinsic: isIntrinsic})
	p.arena.SetExprType(h, resultType)
	return h, true
}

func (p *Parser) parseTerminal() (ast.Handle, bool) {
	origin := p.origin()
	tok := p.cur()

	switch tok.Kind {
	case lexer.TokFloatLiteral:
		p.advance()
		h := p.arena.NewExpr(ast.ExprLiteral, origin, ast.Literal{Kind: ast.LiteralFloat, Float: tok.FVal})
		p.arena.SetExprType(h, types.Type{Base: types.Float, Flags: types.FlagConst})
		return h, true

	case lexer.TokHalfLiteral:
		p.advance()
		h := p.arena.NewExpr(ast.ExprLiteral, origin, ast.Literal{Kind: ast.LiteralHalf, Float: tok.FVal})
		p.arena.SetExprType(h, types.Type{Base: types.Half, Flags: types.FlagConst})
		return h, true

	case lexer.TokIntLiteral:
		p.advance()
		h := p.arena.NewExpr(ast.ExprLiteral, origin, ast.Literal{Kind: ast.LiteralInt, Int: tok.IVal})
		p.arena.SetExprType(h, types.Type{Base: types.Int, Flags: types.FlagConst})
		return h, true

	case lexer.TokTrue, lexer.TokFalse:
		p.advance()
		h := p.arena.NewExpr(ast.ExprLiteral, origin, ast.Literal{Kind: ast.LiteralBool, Bool: tok.Kind == lexer.TokTrue})
		p.arena.SetExprType(h, types.Type{Base: types.Bool, Flags: types.FlagConst})
		return h, true

	case lexer.TokenKind('('):
		p.advance()
		e, ok := p.parseExpression()
		if !ok {
			return ast.InvalidHandle, false
		}
		if _, ok := p.expect(lexer.TokenKind(')')); !ok {
			return ast.InvalidHandle, false
		}
		return e, true

	case lexer.TokIdent:
		name := tok.Value
		p.advance()
		if p.check(lexer.TokenKind('(')) {
			return p.parseFunctionCall(origin, name)
		}
		if t, ok := p.findVariable(name); ok {
			h := p.arena.NewExpr(ast.ExprIdentifier, origin, ast.Identifier{Name: name})
			p.arena.SetExprType(h, t)
			return h, true
		}
		if p.opts.AllowUndeclaredIdentifiers {
			h := p.arena.NewExpr(ast.ExprLiteral, origin, ast.Literal{Kind: ast.LiteralBool, Bool: false})
			p.arena.SetExprType(h, types.Type{Base: types.Bool, Flags: types.FlagConst})
			return h, true
		}
		p.errorf("undeclared identifier '%s'", name)
		return ast.InvalidHandle, false
	}

	if base, ok := keywordBaseType[tok.Kind]; ok {
		p.advance()
		return p.parseConstructorCall(origin, types.Type{Base: base})
	}

	p.errorf("unexpected token %s", tokenDesc(tok.Kind))
	return ast.InvalidHandle, false
}

// parseConstructorCall handles `Type(args...)`, including partial
// (component-flattening) constructors: the arity need not match the
// target's component count exactly, as long as the total scalar
// component count of the arguments is sufficient (SPEC_FULL.md §12).
func (p *Parser) parseConstructorCall(origin ast.Origin, target types.Type) (ast.Handle, bool) {
	args, argTypes, ok := p.parseArgumentList()
	if !ok {
		return ast.InvalidHandle, false
	}

	if !p.opts.DisableSemanticValidation {
		desc := types.Describe(target.Base)
		total := 0
		for _, at := range argTypes {
			ad := types.Describe(at.Base)
			if ad.NumComponents == 0 {
				total += 1
			} else {
				total += ad.NumComponents * max(ad.Height, 1)
			}
		}
		if total < desc.NumComponents*max(desc.Height, 1) {
			p.errorf("incomplete constructor for '%s'", types.Describe(target.Base).Name)
			return ast.InvalidHandle, false
		}
	}

	var argHead ast.Handle
	for _, a := range args {
		argHead = p.arena.LinkExpr(argHead, a)
	}
	h := p.arena.NewExpr(ast.ExprConstructor, origin, ast.Constructor{Target: target, FirstArgument: argHead})
	p.arena.SetExprType(h, target)
	return h, true
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

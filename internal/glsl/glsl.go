// Package glsl is a reference backend that renders a parsed module's
// AST as GLSL source: base types are remapped to GLSL's vec/mat/sampler
// spellings and the subset of HLSL-style intrinsics that don't exist
// under the same name in GLSL are rewritten to their closest GLSL
// equivalent. Exact textual formatting is not part of this backend's
// contract (spec.md §6.5); it exists to make cmd/slc runnable
// end-to-end against the fixture shaders.
//
// Grounded on HugoDaniel-miniray/internal/printer's Printer shape, the
// same way internal/hlsl is; the two backends share no code beyond
// internal/emit.Buffer because their type and intrinsic vocabularies
// diverge too much to factor further without a lossy shared IR.
package glsl

import (
	"fmt"

	"github.com/dfranx/hlslparser/internal/ast"
	"github.com/dfranx/hlslparser/internal/emit"
	"github.com/dfranx/hlslparser/internal/types"
)

// Emitter renders GLSL source from a parsed module.
type Emitter struct{}

// New creates a GLSL Emitter.
func New() *Emitter { return &Emitter{} }

type printer struct {
	emit.Buffer
	arena *ast.Arena
	opts  emit.Options
}

// Emit implements emit.Emitter.
func (e *Emitter) Emit(root *ast.Arena, mod *ast.Module, opts emit.Options) (string, error) {
	if mod == nil || root == nil {
		return "", fmt.Errorf("glsl: nil module")
	}
	p := &printer{arena: root, opts: opts}

	p.Write("#version 450")
	p.Newline()

	foundEntry := opts.EntryPoint == ""
	for cur := mod.FirstDeclaration; cur.Valid(); cur = root.Stmt(cur).Next {
		st := root.Stmt(cur)
		if st.StmtKind() == ast.StmtFunction && st.Data.(ast.Function).Name == opts.EntryPoint {
			foundEntry = true
		}
		p.printTopLevel(cur)
	}
	if !foundEntry {
		return "", fmt.Errorf("glsl: entry point %q not found", opts.EntryPoint)
	}
	return p.String(), nil
}

func (p *printer) printTopLevel(h ast.Handle) {
	st := p.arena.Stmt(h)
	switch st.StmtKind() {
	case ast.StmtStruct:
		p.printStruct(st.Data.(ast.Struct))
		p.Newline()
	case ast.StmtBuffer:
		p.printBuffer(st.Data.(ast.Buffer))
		p.Newline()
	case ast.StmtFunction:
		p.printFunction(st.Data.(ast.Function))
		p.Newline()
	case ast.StmtDeclaration:
		d := st.Data.(ast.Declaration)
		if d.Type.Base == types.SamplerStateType {
			// GLSL has no separate sampler-state object: sampler state
			// lives on the combined sampler uniform itself.
			return
		}
		p.Write("uniform ")
		p.printDeclaration(d)
		p.Write(";")
		p.Newline()
	}
}

func (p *printer) printStruct(s ast.Struct) {
	p.Write("struct ")
	p.Write(s.Name)
	p.Write(" {")
	p.Indent()
	for cur := s.FirstField; cur.Valid(); cur = p.arena.Stmt(cur).Next {
		f := p.arena.Stmt(cur).Data.(ast.StructField)
		p.Newline()
		p.Write(p.typeName(f.Type))
		p.Space()
		p.Write(f.Name)
		p.Write(";")
	}
	p.Dedent()
	p.Newline()
	p.Write("};")
}

// printBuffer flattens a cbuffer/tbuffer into a GLSL uniform block; GLSL
// has no separate texture-buffer keyword so tbuffer collapses to the
// same `uniform Name { ... }` form as cbuffer.
func (p *printer) printBuffer(b ast.Buffer) {
	p.Write("uniform ")
	p.Write(b.Name)
	p.Write(" {")
	p.Indent()
	for cur := b.FirstField; cur.Valid(); cur = p.arena.Stmt(cur).Next {
		f := p.arena.Stmt(cur).Data.(ast.StructField)
		p.Newline()
		p.Write(p.typeName(f.Type))
		p.Space()
		p.Write(f.Name)
		p.Write(";")
	}
	p.Dedent()
	p.Newline()
	p.Write("};")
}

func (p *printer) printFunction(fn ast.Function) {
	if fn.Name == p.opts.EntryPoint {
		p.Write(fmt.Sprintf("// entry point (%s)", p.opts.Target))
		p.Newline()
	}
	p.Write(p.typeName(fn.ReturnType))
	p.Space()
	p.Write(fn.Name)
	p.Write("(")
	first := true
	for cur := fn.FirstArgument; cur.Valid(); cur = p.arena.Stmt(cur).Next {
		arg := p.arena.Stmt(cur).Data.(ast.Argument)
		if arg.Type.Base == types.SamplerStateType {
			continue
		}
		if !first {
			p.Write(", ")
		}
		first = false
		p.printArgModifier(arg.Modifier)
		p.Write(p.typeName(arg.Type))
		p.Space()
		p.Write(arg.Name)
	}
	p.Write(")")
	if !fn.Body.Valid() {
		p.Write(";")
		return
	}
	p.Space()
	p.printBlock(fn.Body)
}

func (p *printer) printArgModifier(m ast.ArgModifier) {
	switch m {
	case ast.ArgOut:
		p.Write("out ")
	case ast.ArgInOut:
		p.Write("inout ")
	}
}

func (p *printer) printBlock(h ast.Handle) {
	blk := p.arena.Stmt(h).Data.(ast.Block)
	p.Write("{")
	p.Indent()
	for cur := blk.FirstStatement; cur.Valid(); cur = p.arena.Stmt(cur).Next {
		p.Newline()
		p.printStmt(cur)
	}
	p.Dedent()
	p.Newline()
	p.Write("}")
}

func (p *printer) printDeclaration(d ast.Declaration) {
	p.Write(p.typeName(d.Type))
	p.Space()
	p.Write(d.Name)
	if d.Init.Valid() {
		p.Write(" = ")
		p.printExpr(d.Init)
	}
}

func (p *printer) printStmt(h ast.Handle) {
	st := p.arena.Stmt(h)
	switch st.StmtKind() {
	case ast.StmtDeclaration:
		p.printDeclaration(st.Data.(ast.Declaration))
		p.Write(";")
	case ast.StmtExpressionStatement:
		p.printExpr(st.Data.(ast.ExpressionStatement).Expr)
		p.Write(";")
	case ast.StmtReturn:
		ret := st.Data.(ast.Return)
		p.Write("return")
		if ret.Expr.Valid() {
			p.Space()
			p.printExpr(ret.Expr)
		}
		p.Write(";")
	case ast.StmtDiscard:
		p.Write("discard;")
	case ast.StmtBreak:
		p.Write("break;")
	case ast.StmtContinue:
		p.Write("continue;")
	case ast.StmtIf:
		i := st.Data.(ast.If)
		p.Write("if (")
		p.printExpr(i.Cond)
		p.Write(") ")
		p.printBlockOrStmt(i.Then)
		if i.Else.Valid() {
			p.Write(" else ")
			p.printBlockOrStmt(i.Else)
		}
	case ast.StmtFor:
		f := st.Data.(ast.For)
		p.Write("for (")
		if f.Init.Valid() {
			p.printForInit(f.Init)
		}
		p.Write("; ")
		if f.Cond.Valid() {
			p.printExpr(f.Cond)
		}
		p.Write("; ")
		if f.Update.Valid() {
			p.printExpr(f.Update)
		}
		p.Write(") ")
		p.printBlockOrStmt(f.Body)
	case ast.StmtBlock:
		p.printBlock(h)
	}
}

func (p *printer) printForInit(h ast.Handle) {
	st := p.arena.Stmt(h)
	switch st.StmtKind() {
	case ast.StmtDeclaration:
		p.printDeclaration(st.Data.(ast.Declaration))
	case ast.StmtExpressionStatement:
		p.printExpr(st.Data.(ast.ExpressionStatement).Expr)
	}
}

func (p *printer) printBlockOrStmt(h ast.Handle) {
	if p.arena.Stmt(h).StmtKind() == ast.StmtBlock {
		p.printBlock(h)
		return
	}
	p.printStmt(h)
}

func (p *printer) printExpr(h ast.Handle) {
	e := p.arena.Expr(h)
	switch e.Kind() {
	case ast.ExprLiteral:
		p.printLiteral(e.Data.(ast.Literal))
	case ast.ExprIdentifier:
		p.Write(e.Data.(ast.Identifier).Name)
	case ast.ExprCast:
		c := e.Data.(ast.Cast)
		p.Write(p.typeName(c.Target))
		p.Write("(")
		p.printExpr(c.Expr)
		p.Write(")")
	case ast.ExprConstructor:
		c := e.Data.(ast.Constructor)
		p.Write(p.typeName(c.Target))
		p.printArgs(c.FirstArgument)
	case ast.ExprUnary:
		p.printUnary(e.Data.(ast.Unary))
	case ast.ExprBinary:
		p.printBinary(e.Data.(ast.Binary))
	case ast.ExprConditional:
		c := e.Data.(ast.Conditional)
		p.printExpr(c.Cond)
		p.Write(" ? ")
		p.printExpr(c.Then)
		p.Write(" : ")
		p.printExpr(c.Else)
	case ast.ExprMemberAccess:
		m := e.Data.(ast.MemberAccess)
		p.printExpr(m.Object)
		p.Write(".")
		p.Write(m.Field)
	case ast.ExprArrayAccess:
		a := e.Data.(ast.ArrayAccess)
		p.printExpr(a.Object)
		p.Write("[")
		p.printExpr(a.Index)
		p.Write("]")
	case ast.ExprFunctionCall:
		p.printFunctionCall(e.Data.(ast.FunctionCall))
	case ast.ExprMethodCall:
		p.printMethodCall(e.Data.(ast.MethodCall))
	}
}

func (p *printer) printArgs(first ast.Handle) {
	p.Write("(")
	for cur, i := first, 0; cur.Valid(); cur, i = p.arena.Expr(cur).Next, i+1 {
		if i > 0 {
			p.Write(", ")
		}
		p.printExpr(cur)
	}
	p.Write(")")
}

// argList collects an Expr.Next-linked argument chain into a slice, for
// the intrinsics below that need to reorder or duplicate arguments.
func (p *printer) argList(first ast.Handle) []ast.Handle {
	var out []ast.Handle
	for cur := first; cur.Valid(); cur = p.arena.Expr(cur).Next {
		out = append(out, cur)
	}
	return out
}

// intrinsicRename covers HLSL-style intrinsics that exist in GLSL under
// a different name but with the same arity and argument order.
var intrinsicRename = map[string]string{
	"frac":   "fract",
	"rsqrt":  "inversesqrt",
	"ddx":    "dFdx",
	"ddy":    "dFdy",
	"fmod":   "mod",
	"lerp":   "mix",
	"asuint": "floatBitsToUint",
	"asint":  "floatBitsToInt",
}

func (p *printer) printFunctionCall(f ast.FunctionCall) {
	args := p.argList(f.FirstArgument)
	switch f.Name {
	case "mul":
		// HLSL's mul(a, b) computes row-vector * matrix; the nearest
		// single-expression GLSL equivalent for the common vector*matrix
		// and matrix*matrix forms this parses is b's-transpose-free
		// operator form (a * b). Exact semantic equivalence depends on
		// whether a is a row or column vector, which this reference
		// backend does not track; see DESIGN.md.
		if len(args) == 2 {
			p.Write("(")
			p.printExpr(args[0])
			p.Write(" * ")
			p.printExpr(args[1])
			p.Write(")")
			return
		}
	case "saturate":
		if len(args) == 1 {
			p.Write("clamp(")
			p.printExpr(args[0])
			p.Write(", 0.0, 1.0)")
			return
		}
	case "rcp":
		if len(args) == 1 {
			p.Write("(1.0 / ")
			p.printExpr(args[0])
			p.Write(")")
			return
		}
	case "mad":
		if len(args) == 3 {
			p.Write("(")
			p.printExpr(args[0])
			p.Write(" * ")
			p.printExpr(args[1])
			p.Write(" + ")
			p.printExpr(args[2])
			p.Write(")")
			return
		}
	case "asfloat":
		if len(args) == 1 {
			// Ambiguous without the operand's exact type (int vs uint);
			// intBitsToFloat is the more common source width.
			p.Write("intBitsToFloat")
			p.printArgs(f.FirstArgument)
			return
		}
	}
	if renamed, ok := intrinsicRename[f.Name]; ok {
		p.Write(renamed)
	} else {
		p.Write(f.Name)
	}
	p.printArgs(f.FirstArgument)
}

// printMethodCall rewrites Texture2D-style `.Sample(sampler, uv)` calls
// into GLSL's combined-sampler `texture(tex, uv)` form, dropping the
// separate sampler-state argument GLSL has no equivalent slot for.
func (p *printer) printMethodCall(m ast.MethodCall) {
	args := p.argList(m.FirstArgument)
	switch m.Name {
	case "Sample":
		p.Write("texture(")
		p.printExpr(m.Object)
		for _, a := range args[1:] {
			p.Write(", ")
			p.printExpr(a)
		}
		p.Write(")")
		return
	}
	p.printExpr(m.Object)
	p.Write(".")
	p.Write(m.Name)
	p.printArgs(m.FirstArgument)
}

func (p *printer) printLiteral(l ast.Literal) {
	switch l.Kind {
	case ast.LiteralFloat, ast.LiteralHalf:
		p.Write(fmt.Sprintf("%g", l.Float))
	case ast.LiteralInt:
		p.Write(fmt.Sprintf("%d", l.Int))
	case ast.LiteralBool:
		if l.Bool {
			p.Write("true")
		} else {
			p.Write("false")
		}
	}
}

var unaryPrefix = map[ast.UnaryOp]string{
	ast.UnaryPlus:         "+",
	ast.UnaryMinus:        "-",
	ast.UnaryNot:          "!",
	ast.UnaryBitNot:       "~",
	ast.UnaryPreIncrement: "++",
	ast.UnaryPreDecrement: "--",
}

func (p *printer) printUnary(u ast.Unary) {
	switch u.Op {
	case ast.UnaryPostIncrement:
		p.printExpr(u.Expr)
		p.Write("++")
	case ast.UnaryPostDecrement:
		p.printExpr(u.Expr)
		p.Write("--")
	default:
		p.Write(unaryPrefix[u.Op])
		p.printExpr(u.Expr)
	}
}

var binaryOpText = map[types.BinaryOp]string{
	types.OpAdd: "+", types.OpSub: "-", types.OpMul: "*", types.OpDiv: "/", types.OpMod: "%",
	types.OpBitAnd: "&", types.OpBitOr: "|", types.OpBitXor: "^",
	types.OpLeftShift: "<<", types.OpRightShift: ">>",
	types.OpLess: "<", types.OpGreater: ">", types.OpLessEqual: "<=", types.OpGreaterEqual: ">=",
	types.OpEqual: "==", types.OpNotEqual: "!=", types.OpAnd: "&&", types.OpOr: "||",
}

var compoundAssignText = map[types.BinaryOp]string{
	types.OpAdd: "+=", types.OpSub: "-=", types.OpMul: "*=", types.OpDiv: "/=",
}

func (p *printer) printBinary(b ast.Binary) {
	p.printExpr(b.Left)
	p.Space()
	if b.Assign {
		if b.Op == types.OpAssign {
			p.Write("=")
		} else {
			p.Write(compoundAssignText[b.Op])
		}
	} else {
		p.Write(binaryOpText[b.Op])
	}
	p.Space()
	p.printExpr(b.Right)
}

// glslTypeNames remaps BaseType's HLSL-style spelling to GLSL's
// vec/mat/sampler vocabulary. half* types collapse onto the same name
// as their float counterparts: GLSL core has no distinct half-precision
// scalar/vector/matrix type the way HLSL does.
var glslTypeNames = map[types.BaseType]string{
	types.Float: "float", types.Float2: "vec2", types.Float3: "vec3", types.Float4: "vec4",
	types.Float2x2: "mat2", types.Float3x3: "mat3", types.Float4x4: "mat4",
	types.Float4x3: "mat4x3", types.Float4x2: "mat4x2",

	types.Half: "float", types.Half2: "vec2", types.Half3: "vec3", types.Half4: "vec4",
	types.Half2x2: "mat2", types.Half3x3: "mat3", types.Half4x4: "mat4",
	types.Half4x3: "mat4x3", types.Half4x2: "mat4x2",

	types.Bool: "bool", types.Bool2: "bvec2", types.Bool3: "bvec3", types.Bool4: "bvec4",
	types.Int: "int", types.Int2: "ivec2", types.Int3: "ivec3", types.Int4: "ivec4",
	types.Uint: "uint", types.Uint2: "uvec2", types.Uint3: "uvec3", types.Uint4: "uvec4",

	types.Void: "void",

	types.Texture1DType:        "sampler1D",
	types.Texture2DType:        "sampler2D",
	types.Texture3DType:        "sampler3D",
	types.TextureCubeType:      "samplerCube",
	types.TextureCubeArrayType: "samplerCubeArray",
	types.Texture2DMSType:      "sampler2DMS",
	types.Texture1DArrayType:   "sampler1DArray",
	types.Texture2DArrayType:   "sampler2DArray",
	types.Texture2DMSArrayType: "sampler2DMSArray",
	types.RWTexture1DType:      "image1D",
	types.RWTexture2DType:      "image2D",
	types.RWTexture3DType:      "image3D",
}

func (p *printer) typeName(t types.Type) string {
	var base string
	switch {
	case t.Base == types.UserDefined || t.Base == types.Buffer:
		base = t.TypeName
	default:
		if name, ok := glslTypeNames[t.Base]; ok {
			base = name
		} else {
			base = t.Base.String()
		}
	}
	if t.Array {
		base += "[]"
	}
	return base
}

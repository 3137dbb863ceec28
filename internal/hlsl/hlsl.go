// Package hlsl is a reference backend that renders a parsed module's
// AST back out as HLSL-family source. Since the source language this
// compiler parses is itself HLSL-like, this printer is close to a
// pretty-printer: it reconstructs syntax from the AST rather than
// copying source text, so it also serves as a check that the AST
// carries everything needed to regenerate the program.
//
// Grounded on HugoDaniel-miniray/internal/printer's Printer shape,
// generalized from a single pass over a flat Declarations slice to a
// walk over ast.Arena's Handle-linked sibling chains.
package hlsl

import (
	"fmt"

	"github.com/dfranx/hlslparser/internal/ast"
	"github.com/dfranx/hlslparser/internal/emit"
	"github.com/dfranx/hlslparser/internal/types"
)

// Emitter renders HLSL-family source from a parsed module.
type Emitter struct{}

// New creates an HLSL Emitter.
func New() *Emitter { return &Emitter{} }

type printer struct {
	emit.Buffer
	arena *ast.Arena
	opts  emit.Options
}

// Emit implements emit.Emitter.
func (e *Emitter) Emit(root *ast.Arena, mod *ast.Module, opts emit.Options) (string, error) {
	if mod == nil || root == nil {
		return "", fmt.Errorf("hlsl: nil module")
	}
	p := &printer{arena: root, opts: opts}

	foundEntry := opts.EntryPoint == ""
	for cur := mod.FirstDeclaration; cur.Valid(); cur = root.Stmt(cur).Next {
		st := root.Stmt(cur)
		if st.StmtKind() == ast.StmtFunction && st.Data.(ast.Function).Name == opts.EntryPoint {
			foundEntry = true
		}
		p.printTopLevel(cur)
		p.Newline()
	}
	if !foundEntry {
		return "", fmt.Errorf("hlsl: entry point %q not found", opts.EntryPoint)
	}
	return p.String(), nil
}

func (p *printer) printTopLevel(h ast.Handle) {
	st := p.arena.Stmt(h)
	switch st.StmtKind() {
	case ast.StmtStruct:
		p.printStruct(st.Data.(ast.Struct))
	case ast.StmtBuffer:
		p.printBuffer(st.Data.(ast.Buffer))
	case ast.StmtFunction:
		p.printFunction(h, st.Data.(ast.Function))
	case ast.StmtDeclaration:
		p.printDeclaration(st.Data.(ast.Declaration))
		p.Write(";")
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

func (p *printer) printBuffer(b ast.Buffer) {
	if b.IsTextureBuffer {
		p.Write("tbuffer ")
	} else {
		p.Write("cbuffer ")
	}
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

func (p *printer) printFunction(h ast.Handle, fn ast.Function) {
	if fn.Name == p.opts.EntryPoint {
		p.Write(fmt.Sprintf("// entry point (%s)", p.opts.Target))
		p.Newline()
	}
	if fn.HasNumThreads {
		p.Write(fmt.Sprintf("[numthreads(%d, %d, %d)]", fn.NumThreads[0], fn.NumThreads[1], fn.NumThreads[2]))
		p.Newline()
	}
	p.Write(p.typeName(fn.ReturnType))
	p.Space()
	p.Write(fn.Name)
	p.Write("(")
	first := true
	for cur := fn.FirstArgument; cur.Valid(); cur = p.arena.Stmt(cur).Next {
		arg := p.arena.Stmt(cur).Data.(ast.Argument)
		if !first {
			p.Write(", ")
		}
		first = false
		p.printArgModifier(arg.Modifier)
		p.Write(p.typeName(arg.Type))
		p.Space()
		p.Write(arg.Name)
		if arg.Semantic != "" {
			p.Write(" : ")
			p.Write(arg.Semantic)
		}
		if arg.DefaultValue.Valid() {
			p.Write(" = ")
			p.printExpr(arg.DefaultValue)
		}
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
	case ast.ArgUniform:
		p.Write("uniform ")
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
		p.Write("(")
		p.Write(p.typeName(c.Target))
		p.Write(")")
		p.printExpr(c.Expr)
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
		f := e.Data.(ast.FunctionCall)
		p.Write(f.Name)
		p.printArgs(f.FirstArgument)
	case ast.ExprMethodCall:
		m := e.Data.(ast.MethodCall)
		p.printExpr(m.Object)
		p.Write(".")
		p.Write(m.Name)
		p.printArgs(m.FirstArgument)
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

func (p *printer) printLiteral(l ast.Literal) {
	switch l.Kind {
	case ast.LiteralFloat:
		p.Write(fmt.Sprintf("%g", l.Float))
	case ast.LiteralHalf:
		p.Write(fmt.Sprintf("%gh", l.Float))
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
	ast.UnaryPlus:          "+",
	ast.UnaryMinus:         "-",
	ast.UnaryNot:           "!",
	ast.UnaryBitNot:        "~",
	ast.UnaryPreIncrement:  "++",
	ast.UnaryPreDecrement:  "--",
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

// compoundAssignText maps an Op carried on an Assign=true node back to
// its `op=` source spelling; OpAssign itself prints as plain `=`.
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

// typeName renders t the way SL source itself spells it; BaseType's
// own String() already yields HLSL-style names ("float4", "Texture2D",
// "SamplerState", ...) since the source language is HLSL-like.
func (p *printer) typeName(t types.Type) string {
	var base string
	switch {
	case t.Base == types.UserDefined || t.Base == types.Buffer:
		base = t.TypeName
	case types.IsReadTexture(t.Base) || types.IsWriteTexture(t.Base):
		base = t.Base.String()
		if t.SamplerType != types.Unknown {
			base += "<" + t.SamplerType.String() + ">"
		}
	default:
		base = t.Base.String()
	}
	if t.Array {
		base += "[]"
	}
	return base
}

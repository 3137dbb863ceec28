package ast_test

import (
	"testing"

	"github.com/dfranx/hlslparser/internal/ast"
	"github.com/dfranx/hlslparser/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZeroHandleIsInvalid(t *testing.T) {
	var h ast.Handle
	assert.False(t, h.Valid())
	assert.Equal(t, ast.InvalidHandle, h)
}

func TestArenaAllocatesDistinctHandles(t *testing.T) {
	a := ast.NewArena()
	origin := ast.Origin{File: "t.sl", Line: 1}

	h1 := a.NewExpr(ast.ExprLiteral, origin, ast.Literal{Kind: ast.LiteralInt, Int: 1})
	h2 := a.NewExpr(ast.ExprLiteral, origin, ast.Literal{Kind: ast.LiteralInt, Int: 2})

	assert.NotEqual(t, h1, h2)
	assert.True(t, h1.Valid())

	e1 := a.Expr(h1)
	lit, ok := e1.Data.(ast.Literal)
	require.True(t, ok)
	assert.EqualValues(t, 1, lit.Int)
}

func TestSetExprTypeRecordsInference(t *testing.T) {
	a := ast.NewArena()
	origin := ast.Origin{File: "t.sl", Line: 1}
	h := a.NewExpr(ast.ExprIdentifier, origin, ast.Identifier{Name: "x"})

	a.SetExprType(h, types.Type{Base: types.Float4})

	assert.Equal(t, types.Float4, a.Expr(h).Type.Base)
}

func TestLinkStmtChainsInOrder(t *testing.T) {
	a := ast.NewArena()
	origin := ast.Origin{File: "t.sl", Line: 1}

	first := a.NewStmt(ast.StmtBreak, origin, ast.Break{})
	second := a.NewStmt(ast.StmtContinue, origin, ast.Continue{})
	third := a.NewStmt(ast.StmtDiscard, origin, ast.Discard{})

	head := ast.InvalidHandle
	head = a.LinkStmt(head, first)
	head = a.LinkStmt(head, second)
	head = a.LinkStmt(head, third)

	assert.Equal(t, first, head)
	assert.Equal(t, second, a.Stmt(first).Next)
	assert.Equal(t, third, a.Stmt(second).Next)
	assert.Equal(t, ast.InvalidHandle, a.Stmt(third).Next)
}

func TestLinkExprChainsArguments(t *testing.T) {
	a := ast.NewArena()
	origin := ast.Origin{File: "t.sl", Line: 1}

	arg1 := a.NewExpr(ast.ExprLiteral, origin, ast.Literal{Kind: ast.LiteralInt, Int: 1})
	arg2 := a.NewExpr(ast.ExprLiteral, origin, ast.Literal{Kind: ast.LiteralInt, Int: 2})

	head := a.LinkExpr(ast.InvalidHandle, arg1)
	head = a.LinkExpr(head, arg2)

	assert.Equal(t, arg1, head)
	assert.Equal(t, arg2, a.Expr(arg1).Next)
}

func TestStmtKindDispatch(t *testing.T) {
	a := ast.NewArena()
	origin := ast.Origin{File: "t.sl", Line: 7}

	h := a.NewStmt(ast.StmtIf, origin, ast.If{Cond: 1, Then: 2, Else: ast.InvalidHandle})

	s := a.Stmt(h)
	assert.Equal(t, ast.StmtIf, s.StmtKind())
	ifData, ok := s.Data.(ast.If)
	require.True(t, ok)
	assert.False(t, ifData.Else.Valid())
}

func TestCounts(t *testing.T) {
	a := ast.NewArena()
	origin := ast.Origin{File: "t.sl", Line: 1}
	assert.Equal(t, 0, a.StmtCount())
	assert.Equal(t, 0, a.ExprCount())

	a.NewStmt(ast.StmtBreak, origin, ast.Break{})
	a.NewExpr(ast.ExprLiteral, origin, ast.Literal{})

	assert.Equal(t, 1, a.StmtCount())
	assert.Equal(t, 1, a.ExprCount())
}
